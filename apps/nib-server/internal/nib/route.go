package nib

import (
	"context"

	"github.com/oyaguma3/nib-server-poc/apps/nib-server/internal/routing"
	"github.com/oyaguma3/nib-server-poc/pkg/logging"
)

// Route はcall.routeを処理する。
func (s *Service) Route(_ context.Context, req routing.Request) Result {
	s.mu.Lock()
	d := s.resolver.Resolve(s.store.Table(), s.ledger, req)
	s.mu.Unlock()

	s.logger.Debug("route resolved",
		logging.WithEventID("ROUTE_RESOLVED"),
		"kind", d.Kind.String(),
		"target", d.Target,
		"reason", d.Reason,
	)

	switch d.Kind {
	case routing.KindDeclined:
		return declined()
	case routing.KindRejected:
		return rejected(d.Reason)
	}

	r := accepted(
		"caller", d.Caller,
		"callernumtype", d.CallerNumType,
		"called", d.Called,
		"line", d.Line,
	)
	r.RetValue = d.Target
	return r
}
