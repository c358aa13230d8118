package nib

import (
	"context"
	"fmt"

	"github.com/oyaguma3/nib-server-poc/apps/nib-server/internal/events"
	"github.com/oyaguma3/nib-server-poc/apps/nib-server/internal/subscriber"
	"github.com/oyaguma3/nib-server-poc/pkg/logging"
	"github.com/oyaguma3/nib-server-poc/pkg/model"
)

// ReloadReport は再読み込みの結果
type ReloadReport struct {
	Mode        string               `json:"mode"`
	Subscribers int                  `json:"subscribers"`
	Removed     []model.Registration `json:"removed"`
	Moved       []model.Registration `json:"moved"` // 新しい番号での登録
}

// Reload は加入者設定を読み直し、登録台帳を新しい設定に合わせる。
// 読み込みに失敗した場合は現在の設定と台帳をそのまま維持する。
func (s *Service) Reload(ctx context.Context) (*ReloadReport, error) {
	_, tbl, err := s.store.Load(ctx)
	if err != nil {
		s.alarm(fmt.Sprintf("Failed to load subscribers, keeping previous configuration: %v", err))
		return nil, err
	}

	switch {
	case tbl.Mode() == subscriber.ModeUnconfigured:
		s.alarm(alarmNoPolicy)
	case tbl.CountryCode() == "":
		s.alarm(alarmCountryCode)
	}

	s.mu.Lock()
	report := s.reconcile(tbl)
	s.mu.Unlock()

	for _, r := range report.Removed {
		s.challenger.Forget(r.IMSI)
		s.publish(ctx, events.Event{Type: events.TypeUnregistered, IMSI: r.IMSI, MSISDN: r.MSISDN, Reason: "reload"})
	}

	s.logger.Info("subscribers reloaded",
		logging.WithEventID("CONF_RELOAD"),
		"mode", report.Mode,
		"subscribers", report.Subscribers,
		"removed", len(report.Removed),
		"moved", len(report.Moved),
	)
	return report, nil
}

// reconcile は新しいテーブルに合わない登録を外し、設定番号が変わった登録を移す。
// muを保持して呼ぶ。
func (s *Service) reconcile(tbl *subscriber.Table) *ReloadReport {
	report := &ReloadReport{Mode: tbl.Mode().String(), Subscribers: tbl.Len()}

	switch tbl.Mode() {
	case subscriber.ModeExplicit:
		report.Removed = s.ledger.Retain(func(_, imsi string) bool {
			return tbl.Admissible(imsi)
		})
		for _, r := range s.ledger.Entries() {
			configured, ok := tbl.ConfiguredMSISDN(r.IMSI)
			if !ok || configured == r.MSISDN {
				continue
			}
			if s.ledger.Available(configured) {
				s.ledger.Register(configured, r.IMSI)
				report.Moved = append(report.Moved, model.Registration{MSISDN: configured, IMSI: r.IMSI})
				continue
			}
			// 新しい番号が使用中なら登録を外す
			s.ledger.RemoveIMSI(r.IMSI)
			report.Removed = append(report.Removed, r)
		}

	case subscriber.ModeRegexp:
		report.Removed = s.ledger.Retain(func(_, imsi string) bool {
			return tbl.MatchesPattern(imsi)
		})

	default:
		report.Removed = s.ledger.Retain(func(string, string) bool { return false })
	}
	return report
}
