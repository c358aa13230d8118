package nib

import (
	"context"
	"fmt"

	"github.com/oyaguma3/nib-server-poc/apps/nib-server/internal/challenge"
	"github.com/oyaguma3/nib-server-poc/apps/nib-server/internal/config"
	"github.com/oyaguma3/nib-server-poc/apps/nib-server/internal/extmod"
	"github.com/oyaguma3/nib-server-poc/apps/nib-server/internal/routing"
)

// Installer はエンジンへハンドラーを登録する。
type Installer interface {
	Install(ctx context.Context, priority int, name string, h extmod.Handler, filter ...string) error
}

// binding はハンドラー登録の1項目
type binding struct {
	priority int
	name     string
	handler  extmod.Handler
	filter   []string
}

func (s *Service) bindings() []binding {
	return []binding{
		{config.EngineInstallPriority, "user.unregister", s.onUnregister, nil},
		{config.EngineInstallPriority, "user.register", s.onRegister, nil},
		{config.EngineInstallPriority, "call.route", s.onRoute, nil},
		{config.EngineIdlePriority, "idle.execute", s.onIdle, []string{"module", config.QueueModuleTag}},
		{config.EngineInstallPriority, "msg.execute", s.onSMS, []string{"callto", config.SMSCRouteTag}},
		{config.EngineCommandPriority, "engine.command", s.onCommand, nil},
		{config.EngineCommandPriority, "engine.help", s.onHelp, nil},
		{config.EngineInstallPriority, "auth", s.onAuth, nil},
		{config.EngineInstallPriority, "chan.control", s.onControl, []string{"targetid", config.CustomSMSTag}},
	}
}

// Install は全てのハンドラーをエンジンへ登録する。
func (s *Service) Install(ctx context.Context, inst Installer) error {
	for _, b := range s.bindings() {
		if err := inst.Install(ctx, b.priority, b.name, b.handler, b.filter...); err != nil {
			return fmt.Errorf("install %s: %w", b.name, err)
		}
	}
	return nil
}

func (s *Service) onRegister(ctx context.Context, m *extmod.Message) bool {
	r := s.Register(ctx, RegisterRequest{
		IMSI:   m.Get("username"),
		MSISDN: m.Get("msisdn"),
		Auth:   messageAuthInput(m),
	})
	apply(m, r)
	return r.Outcome == OutcomeAccepted
}

func (s *Service) onUnregister(ctx context.Context, m *extmod.Message) bool {
	r := s.Unregister(ctx, m.Get("username"), m.Get("msisdn"))
	return r.Outcome == OutcomeAccepted
}

func (s *Service) onAuth(ctx context.Context, m *extmod.Message) bool {
	r := s.Auth(ctx, AuthRequest{IMSI: m.Get("imsi"), Auth: messageAuthInput(m)})
	apply(m, r)
	// 応答待ちも処理済みとして返す
	return r.Outcome == OutcomeAccepted || r.Outcome == OutcomePending
}

func (s *Service) onRoute(ctx context.Context, m *extmod.Message) bool {
	r := s.Route(ctx, routing.Request{
		RouteType: m.Get("route_type"),
		Caller:    m.Get("caller"),
		Called:    m.Get("called"),
		Username:  m.Get("username"),
		SMSCalled: m.Get("sms.called"),
	})
	if r.Outcome == OutcomeDeclined {
		return false
	}
	apply(m, r)
	return true
}

func (s *Service) onSMS(ctx context.Context, m *extmod.Message) bool {
	r := s.SubmitSMS(ctx, SMSRequest{
		Username:  m.Get("username"),
		Called:    m.Get("called"),
		SMSCalled: m.Get("sms.called"),
		Text:      m.Get("text"),
		RPDU:      m.Get("rpdu"),
	})
	apply(m, r)
	return true
}

func (s *Service) onIdle(ctx context.Context, _ *extmod.Message) bool {
	s.Idle(ctx)
	return true
}

func (s *Service) onCommand(ctx context.Context, m *extmod.Message) bool {
	out, handled := s.Command(ctx, CommandRequest{
		Line:     m.Get("line"),
		PartLine: m.Get("partline"),
		Partial:  m.Get("partial"),
		PartWord: m.Get("partword"),
		RetValue: m.RetValue,
	})
	if handled || m.Get("line") == "" {
		m.RetValue = out
	}
	return handled
}

func (s *Service) onHelp(_ context.Context, m *extmod.Message) bool {
	m.RetValue = Help(m.RetValue)
	return false
}

func (s *Service) onControl(ctx context.Context, m *extmod.Message) bool {
	return s.CustomSMS(ctx, m.Get("called"), m.Get("text"), m.Get("rpdu"))
}

// messageAuthInput はメッセージの認証パラメータから認証入力を決める。
// user.registerとauthではキー名が異なるため両方を見る。
func messageAuthInput(m *extmod.Message) challenge.Input {
	return AuthInput(
		m.Get("auth.response"),
		m.Get("auth.auts"),
		firstNonEmpty(m.Get("auth.rand"), m.Get("rand")),
		m.Get("error"),
	)
}

func firstNonEmpty(vs ...string) string {
	for _, v := range vs {
		if v != "" {
			return v
		}
	}
	return ""
}
