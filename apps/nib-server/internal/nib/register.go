package nib

import (
	"context"
	"errors"
	"strings"

	"github.com/oyaguma3/nib-server-poc/apps/nib-server/internal/challenge"
	"github.com/oyaguma3/nib-server-poc/apps/nib-server/internal/events"
	"github.com/oyaguma3/nib-server-poc/apps/nib-server/internal/msisdn"
	"github.com/oyaguma3/nib-server-poc/apps/nib-server/internal/routing"
	"github.com/oyaguma3/nib-server-poc/apps/nib-server/internal/smsq"
	"github.com/oyaguma3/nib-server-poc/apps/nib-server/internal/subscriber"
	"github.com/oyaguma3/nib-server-poc/pkg/apperr"
	"github.com/oyaguma3/nib-server-poc/pkg/logging"
	"github.com/oyaguma3/nib-server-poc/pkg/model"
)

// アラーム文言
const (
	alarmNoPolicy    = "Please configure subscribers or regular expression to accept registration requests."
	alarmCountryCode = "Please configure country code for the subscriber table."
	alarmNoKey       = "Please configure ki and imsi_type for the subscriber, or accept subscribers by regexp instead."
	alarmExhausted   = "No free number could be allocated. Check the country code and registered subscribers."
)

// RegisterRequest はuser.registerの入力
type RegisterRequest struct {
	IMSI   string
	MSISDN string // 端末が希望する番号（空可）
	Auth   challenge.Input
}

// AuthRequest はauthの入力
type AuthRequest struct {
	IMSI string
	Auth challenge.Input
}

// AuthInput はメッセージの認証パラメータから認証入力を決める。
func AuthInput(response, auts, rand, errParam string) challenge.Input {
	switch {
	case response != "":
		return challenge.Response{Value: response}
	case auts != "":
		return challenge.Resync{AUTS: auts, RAND: rand}
	case errParam != "":
		return challenge.Aborted{Reason: errParam}
	default:
		return challenge.Start{}
	}
}

// Register は登録要求を処理する。
func (s *Service) Register(ctx context.Context, req RegisterRequest) Result {
	imsi := routing.StripIMSI(req.IMSI)
	if imsi == "" {
		s.logger.Warn("user.register without username", logging.WithEventID("REG_NO_IMSI"))
		return rejected("")
	}

	tbl := s.store.Table()
	switch tbl.Mode() {
	case subscriber.ModeUnconfigured:
		s.alarm(alarmNoPolicy)
		return rejected(ReasonForbidden)

	case subscriber.ModeExplicit:
		if !tbl.Admissible(imsi) {
			return s.reject(ctx, imsi)
		}
		sub, _ := tbl.Lookup(imsi)
		if r, ok := s.authenticate(ctx, sub, req.Auth); !ok {
			return r
		}

	case subscriber.ModeRegexp:
		if !tbl.MatchesPattern(imsi) {
			return s.reject(ctx, imsi)
		}
	}

	a, err := s.assign(tbl, imsi, req.MSISDN)
	if err != nil {
		s.alarm(alarmExhausted)
		s.logger.Error("number allocation failed",
			logging.WithEventID("REG_ALLOC_ERR"),
			s.fields.IMSI(imsi),
			logging.WithError(err),
		)
		return rejected(ReasonFailure)
	}
	if a.evicted != "" {
		s.challenger.Forget(a.evicted)
		s.logger.Info("registration taken over by configured owner",
			logging.WithEventID("UNREG_EVICTED"),
			s.fields.IMSI(a.evicted),
			s.fields.MSISDN(a.number),
		)
		s.publish(ctx, events.Event{Type: events.TypeUnregistered, IMSI: a.evicted, MSISDN: a.number})
	}

	s.logger.Info("subscriber registered",
		logging.WithEventID("REG_OK"),
		s.fields.IMSI(imsi),
		s.fields.MSISDN(a.number),
		"first", a.first,
	)
	if a.first {
		s.publish(ctx, events.Event{Type: events.TypeRegistered, IMSI: imsi, MSISDN: a.number})
	}
	return accepted("msisdn", a.number)
}

// authenticate は認証を1段階進める。認証済みならtrueを返す。
func (s *Service) authenticate(ctx context.Context, sub *model.Subscriber, in challenge.Input) (Result, bool) {
	if in == nil {
		in = challenge.Start{}
	}
	res := s.challenger.Step(ctx, sub, in)

	switch res.Outcome {
	case challenge.OutcomeAccepted:
		return accepted(), true
	case challenge.OutcomePending:
		r := Result{Outcome: OutcomePending, Reason: ReasonNoAuth}
		r.Params = pairs([]string{"auth.rand", res.RAND, "auth.autn", res.AUTN})
		return r, false
	}

	if errors.Is(res.Err, apperr.ErrNoKeyMaterial) {
		s.alarm(alarmNoKey)
	}
	s.logger.Info("authentication rejected",
		logging.WithEventID("AUTH_REJECTED"),
		s.fields.IMSI(sub.IMSI),
		"reason", res.Reason,
		logging.WithError(res.Err),
	)
	return rejected(res.Reason), false
}

// reject は受け入れ対象外のIMSIを拒否して回数を数える。
func (s *Service) reject(ctx context.Context, imsi string) Result {
	count := s.rejections.Add(imsi)
	s.logger.Info("registration rejected by policy",
		logging.WithEventID("REG_REJECTED"),
		s.fields.IMSI(imsi),
		"count", count,
	)
	s.publish(ctx, events.Event{Type: events.TypeRejected, IMSI: imsi, Count: count})
	return rejected(ReasonForbidden)
}

// assignment はassignの結果
type assignment struct {
	number  string
	first   bool   // このIMSIの初回登録
	evicted string // 設定番号を使っていたため登録を外した他のIMSI
}

// assign はIMSIの番号を決めて台帳に登録する。初回登録なら案内SMSを積む。
// 設定番号、登録済みの番号、端末の希望番号、新規払い出しの順に使う。
// 設定番号を他のIMSIが使っている場合はその登録を外す。
func (s *Service) assign(tbl *subscriber.Table, imsi, hint string) (assignment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var a assignment
	current, registered := s.ledger.LookupByIMSI(imsi)
	configured, hasConfigured := tbl.ConfiguredMSISDN(imsi)

	var number string
	switch {
	case hasConfigured:
		number = configured
		if holder, ok := s.ledger.LookupByNumber(number); ok && holder != imsi && !s.ledger.Available(number) {
			s.ledger.RemoveIMSI(holder)
			a.evicted = holder
		}
	case registered:
		number = current
	default:
		if c := msisdn.Canonical(hint); c != "" && s.available(tbl, c, imsi) {
			number = c
			break
		}
		if tbl.CountryCode() == "" {
			s.alarm(alarmCountryCode)
		}
		var err error
		number, err = s.allocator.Allocate(tbl.CountryCode(), imsi, func(n string) bool {
			return !s.available(tbl, n, imsi)
		})
		if err != nil {
			return assignment{}, err
		}
	}

	a.number = s.ledger.Register(number, imsi)
	a.first = !registered
	if a.first && s.settings.GreetingEnabled {
		s.greet(imsi, a.number)
	}
	return a, nil
}

// available は番号が台帳で未使用かつ他の加入者の設定番号でないかを返す。
func (s *Service) available(tbl *subscriber.Table, number, imsi string) bool {
	if !s.ledger.Available(number) {
		return false
	}
	owner, ok := tbl.FindByNumber(number)
	return !ok || owner == imsi
}

// greet は払い出し番号を知らせるSMSを積む。muを保持して呼ぶ。
func (s *Service) greet(imsi, number string) {
	text := strings.ReplaceAll(s.settings.GreetingText, "{msisdn}", msisdn.Digits(number))
	if text == "" {
		return
	}
	now := s.now()
	e := smsq.NewEntry(smsq.SystemIMSI, s.settings.SMSCNumber, s.settings.SMSCNumber,
		number, imsi, text, s.settings.SMSAttempts, now)
	e.NextTry = now.Add(s.settings.GreetingDelay)
	s.queue.Enqueue(e)
}

// Unregister は登録解除要求を処理する。
// 番号が指定されていてもIMSIの登録番号と異なる場合は何もしない。
func (s *Service) Unregister(ctx context.Context, imsi, number string) Result {
	imsi = routing.StripIMSI(imsi)
	if imsi == "" {
		return rejected("")
	}

	s.mu.Lock()
	current, ok := s.ledger.LookupByIMSI(imsi)
	if ok && (number == "" || msisdn.Canonical(number) == current) {
		s.ledger.RemoveIMSI(imsi)
	} else {
		ok = false
	}
	s.mu.Unlock()

	s.challenger.Forget(imsi)
	if !ok {
		s.logger.Debug("unregister for unknown registration",
			logging.WithEventID("UNREG_NOT_FOUND"),
			s.fields.IMSI(imsi),
		)
		return accepted()
	}

	s.logger.Info("subscriber unregistered",
		logging.WithEventID("UNREG_OK"),
		s.fields.IMSI(imsi),
		s.fields.MSISDN(current),
	)
	s.publish(ctx, events.Event{Type: events.TypeUnregistered, IMSI: imsi, MSISDN: current})
	return accepted()
}

// Auth は端末着信時などの認証要求を処理する。
func (s *Service) Auth(ctx context.Context, req AuthRequest) Result {
	imsi := routing.StripIMSI(req.IMSI)
	if imsi == "" {
		return rejected("")
	}
	sub, ok := s.store.Table().Lookup(imsi)
	if !ok {
		s.logger.Info("auth for unknown subscriber",
			logging.WithEventID("AUTH_UNKNOWN"),
			s.fields.IMSI(imsi),
		)
		return rejected(ReasonUnacceptable)
	}
	r, _ := s.authenticate(ctx, sub, req.Auth)
	return r
}
