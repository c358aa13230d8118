package nib

import (
	"context"
	"fmt"

	"github.com/oyaguma3/nib-server-poc/apps/nib-server/internal/events"
	"github.com/oyaguma3/nib-server-poc/apps/nib-server/internal/routing"
	"github.com/oyaguma3/nib-server-poc/apps/nib-server/internal/smsq"
	"github.com/oyaguma3/nib-server-poc/pkg/apperr"
	"github.com/oyaguma3/nib-server-poc/pkg/logging"
)

// SMSRequest はnib_smsc宛てmsg.executeの入力
type SMSRequest struct {
	Username  string // 送信元IMSI
	Called    string // 送信元が指定したSMSC番号
	SMSCalled string // 宛先番号
	Text      string
	RPDU      string
}

// SubmitSMS は端末発のSMSを受け付けて配信キューに積む。
func (s *Service) SubmitSMS(ctx context.Context, req SMSRequest) Result {
	imsi := routing.StripIMSI(req.Username)

	s.mu.Lock()
	defer s.mu.Unlock()

	from, ok := s.ledger.LookupByIMSI(imsi)
	if imsi == "" || !ok {
		s.logger.Info("sms from unregistered subscriber",
			logging.WithEventID("SMS_FORBIDDEN"),
			s.fields.IMSI(imsi),
		)
		return rejected(ReasonForbidden)
	}
	if req.Text == "" && req.RPDU == "" {
		return rejected(ReasonFailure)
	}

	now := s.now()
	dest := req.SMSCalled
	if s.settings.ChatNumber != "" && dest == s.settings.ChatNumber {
		reply := s.bot.Reply(req.Text, imsi)
		e := smsq.NewEntry(smsq.SystemIMSI, s.settings.ChatNumber, s.settings.SMSCNumber,
			from, imsi, reply, s.settings.SMSAttempts, now)
		e.NextTry = now.Add(s.settings.ChatReplyDelay)
		s.queue.Enqueue(e)
		return accepted()
	}

	tbl := s.store.Table()
	dest = routing.ResolveShort(tbl, s.ledger, dest)
	destIMSI, ok := tbl.FindByNumber(dest)
	if !ok {
		destIMSI, ok = s.ledger.LookupByNumber(dest)
	}
	if !ok {
		s.logger.Info("sms destination not found",
			logging.WithEventID("SMS_NO_ROUTE"),
			s.fields.IMSI(imsi),
		)
		return rejected(ReasonNoRoute)
	}

	e := smsq.NewEntry(imsi, from, req.Called, dest, destIMSI, req.Text, s.settings.SMSAttempts, now)
	e.RPDU = req.RPDU
	s.queue.Enqueue(e)

	s.logger.Info("sms accepted",
		logging.WithEventID("SMS_ACCEPTED"),
		s.fields.IMSI(imsi),
		"sms_id", e.ID,
	)
	return accepted()
}

// SendSystemSMS は登録中のIMSIへSMSC番号からSMSを積む。
func (s *Service) SendSystemSMS(_ context.Context, imsi, text string) (*smsq.Entry, error) {
	if text == "" {
		return nil, smsq.ErrEmptyBody
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	number, ok := s.ledger.LookupByIMSI(imsi)
	if !ok {
		return nil, fmt.Errorf("%w: %s", apperr.ErrNotRegistered, imsi)
	}
	e := smsq.NewEntry(smsq.SystemIMSI, s.settings.SMSCNumber, s.settings.SMSCNumber,
		number, imsi, text, s.settings.SMSAttempts, s.now())
	s.queue.Enqueue(e)
	return e, nil
}

// CustomSMS はIMSI宛てのSMSをキューを通さず1回だけ配信する。
func (s *Service) CustomSMS(ctx context.Context, imsi, text, rpdu string) bool {
	imsi = routing.StripIMSI(imsi)
	if imsi == "" || (text == "" && rpdu == "") {
		s.logger.Warn("custom sms without destination or body", logging.WithEventID("CUSTOM_SMS_INVALID"))
		return false
	}

	e := smsq.NewEntry(smsq.SystemIMSI, s.settings.SMSCNumber, s.settings.SMSCNumber,
		imsi, imsi, text, 0, s.now())
	e.RPDU = rpdu
	err := s.deliverer.Deliver(ctx, e)

	ok := err == nil
	if s.console != nil {
		_ = s.console.Output(fmt.Sprintf("msg.execute returned %t", ok))
	}
	if !ok {
		s.logger.Warn("custom sms not delivered",
			logging.WithEventID("CUSTOM_SMS_ERR"),
			s.fields.IMSI(imsi),
			logging.WithError(err),
		)
		return false
	}
	s.logger.Info("custom sms delivered",
		logging.WithEventID("CUSTOM_SMS_OK"),
		s.fields.IMSI(imsi),
	)
	return true
}

// Idle は配信待ちSMSを1件だけ処理し、次のアイドル処理を予定する。
func (s *Service) Idle(ctx context.Context) Result {
	e, res := s.queue.DrainOne(ctx, s.now())
	switch res {
	case smsq.ResultDelivered:
		s.publish(ctx, events.Event{Type: events.TypeSMSDelivered, IMSI: e.ToIMSI, MSISDN: e.ToMSISDN, SMSID: e.ID})
	case smsq.ResultDropped:
		s.publish(ctx, events.Event{Type: events.TypeSMSDropped, IMSI: e.ToIMSI, MSISDN: e.ToMSISDN, SMSID: e.ID})
	}
	if s.scheduler != nil {
		s.scheduler.IdleDone(s.now())
	}
	return accepted()
}
