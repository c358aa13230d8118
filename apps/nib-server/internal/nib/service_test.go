package nib

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/oyaguma3/nib-server-poc/apps/nib-server/internal/authc"
	"github.com/oyaguma3/nib-server-poc/apps/nib-server/internal/challenge"
	"github.com/oyaguma3/nib-server-poc/apps/nib-server/internal/config"
	"github.com/oyaguma3/nib-server-poc/apps/nib-server/internal/extmod"
	"github.com/oyaguma3/nib-server-poc/apps/nib-server/internal/mocks"
	"github.com/oyaguma3/nib-server-poc/apps/nib-server/internal/msisdn"
	"github.com/oyaguma3/nib-server-poc/apps/nib-server/internal/routing"
	"github.com/oyaguma3/nib-server-poc/apps/nib-server/internal/smsq"
	"github.com/oyaguma3/nib-server-poc/apps/nib-server/internal/subscriber"
	"github.com/oyaguma3/nib-server-poc/pkg/model"
	"go.uber.org/mock/gomock"
)

const (
	imsiA    = "001990010001014"
	imsiB    = "001990010001015"
	testSRES = "1A2B3C4D"
)

type memSource struct {
	mu  sync.Mutex
	cfg *model.NetworkConfig
	err error
}

func (m *memSource) Fetch(context.Context) (*model.NetworkConfig, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cfg, m.err
}

func (m *memSource) set(cfg *model.NetworkConfig, err error) {
	m.mu.Lock()
	m.cfg, m.err = cfg, err
	m.mu.Unlock()
}

type fakeDeliverer struct {
	mu    sync.Mutex
	calls []*smsq.Entry
	err   error
}

func (f *fakeDeliverer) Deliver(_ context.Context, e *smsq.Entry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *e
	f.calls = append(f.calls, &cp)
	return f.err
}

type fakeConsole struct {
	mu    sync.Mutex
	lines []string
}

func (f *fakeConsole) Output(text string) error {
	f.mu.Lock()
	f.lines = append(f.lines, text)
	f.mu.Unlock()
	return nil
}

func (f *fakeConsole) count(substr string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, l := range f.lines {
		if strings.Contains(l, substr) {
			n++
		}
	}
	return n
}

type fakeEnqueuer struct{}

func (fakeEnqueuer) Enqueue(*extmod.Message) error { return nil }

type fixedReader struct{}

func (fixedReader) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = 0x5a
	}
	return len(p), nil
}

type harness struct {
	svc     *Service
	src     *memSource
	del     *fakeDeliverer
	console *fakeConsole
	now     time.Time
}

func newHarness(t *testing.T, cfg *model.NetworkConfig) *harness {
	t.Helper()

	ctrl := gomock.NewController(t)
	auth := mocks.NewMockAuthenticator(ctrl)
	auth.EXPECT().Authenticate(gomock.Any(), gomock.Any()).
		Return(&authc.Response{SRES: testSRES}, nil).AnyTimes()

	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	h := &harness{
		src:     &memSource{cfg: cfg},
		del:     &fakeDeliverer{},
		console: &fakeConsole{},
		now:     time.Unix(1_700_000_000, 0),
	}
	store := subscriber.NewStore(h.src, nil, logger)

	h.svc = NewService(Deps{
		Store:      store,
		Challenger: challenge.New(auth, store, 3, logger, challenge.WithRandom(fixedReader{})),
		Queue:      smsq.NewQueue(h.del, config.SMSRetryDelay, logger, nil),
		Scheduler:  smsq.NewScheduler(fakeEnqueuer{}, config.QueueModuleTag, config.IdlePeriod, logger),
		Deliverer:  h.del,
		Resolver:   routing.NewResolver(routing.Numbers{Conference: "333"}),
		Allocator:  msisdn.NewAllocator(1, 2, 100),
		Console:    h.console,
		Logger:     logger,
	}, Settings{
		SMSCNumber:      "12345",
		ChatNumber:      "35492",
		SMSAttempts:     3,
		GreetingEnabled: true,
		GreetingText:    "Your allocated phone no. is {msisdn}.",
		GreetingDelay:   config.GreetingDelay,
		ChatReplyDelay:  config.ChatReplyDelay,
	})
	h.svc.now = func() time.Time { return h.now }

	if _, err := h.svc.Reload(context.Background()); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}
	return h
}

// register は認証を含めて登録を完了させる。
func (h *harness) register(t *testing.T, imsi string) string {
	t.Helper()
	ctx := context.Background()

	r := h.svc.Register(ctx, RegisterRequest{IMSI: imsi, Auth: challenge.Start{}})
	if r.Outcome == OutcomePending {
		r = h.svc.Register(ctx, RegisterRequest{IMSI: imsi, Auth: challenge.Response{Value: strings.ToLower(testSRES)}})
	}
	if r.Outcome != OutcomeAccepted {
		t.Fatalf("Register(%s) = %+v, want accepted", imsi, r)
	}
	return r.Param("msisdn")
}

func explicitConfig() *model.NetworkConfig {
	return &model.NetworkConfig{
		CountryCode: "1",
		Subscribers: []*model.Subscriber{
			{IMSI: imsiA, Active: true, Ki: "00112233445566778899AABBCCDDEEFF", IMSIType: model.IMSIType2G, ShortNumber: "101"},
			{IMSI: imsiB, MSISDN: "+15550001015", Active: true, Ki: "00112233445566778899AABBCCDDEEFF", IMSIType: model.IMSIType2G},
		},
	}
}

func regexpConfig() *model.NetworkConfig {
	return &model.NetworkConfig{CountryCode: "1", Regexp: "^001"}
}

func TestRegisterAllocatesAndGreets(t *testing.T) {
	h := newHarness(t, explicitConfig())
	ctx := context.Background()

	// 最初の登録はチャレンジを返す
	r := h.svc.Register(ctx, RegisterRequest{IMSI: imsiA, Auth: challenge.Start{}})
	if r.Outcome != OutcomePending || r.Reason != ReasonNoAuth {
		t.Fatalf("Register() = %+v, want pending/noauth", r)
	}
	if got := r.Param("auth.rand"); len(got) != 32 {
		t.Errorf("auth.rand = %q, want 32 hex chars", got)
	}
	if r.Param("auth.autn") != "" {
		t.Error("auth.autn should not be set for 2G")
	}

	r = h.svc.Register(ctx, RegisterRequest{IMSI: imsiA, Auth: challenge.Response{Value: "1a2b3c4d"}})
	if r.Outcome != OutcomeAccepted {
		t.Fatalf("Register() = %+v, want accepted", r)
	}
	if got := r.Param("msisdn"); got != "+10001014" {
		t.Errorf("msisdn = %q, want %q", got, "+10001014")
	}

	regs := h.svc.Registrations()
	if len(regs) != 1 || regs[0].IMSI != imsiA || regs[0].MSISDN != "+10001014" {
		t.Errorf("Registrations() = %+v", regs)
	}

	pending := h.svc.queue.Snapshot()
	if len(pending) != 1 {
		t.Fatalf("queue length = %d, want 1", len(pending))
	}
	g := pending[0]
	if g.ToIMSI != imsiA || g.ToMSISDN != "+10001014" || g.FromMSISDN != "12345" {
		t.Errorf("greeting entry = %+v", g)
	}
	if g.Text != "Your allocated phone no. is 10001014." {
		t.Errorf("greeting text = %q", g.Text)
	}
	if !g.NextTry.Equal(h.now.Add(config.GreetingDelay)) {
		t.Errorf("greeting NextTry = %v, want now+%v", g.NextTry, config.GreetingDelay)
	}
}

func TestRegisterTwiceKeepsNumber(t *testing.T) {
	h := newHarness(t, explicitConfig())

	first := h.register(t, imsiA)
	second := h.register(t, imsiA)
	if first != second {
		t.Errorf("second registration number = %q, want %q", second, first)
	}
	if n := h.svc.queue.Len(); n != 1 {
		t.Errorf("queue length = %d, want 1 (no duplicate greeting)", n)
	}
	if n := len(h.svc.Registrations()); n != 1 {
		t.Errorf("registrations = %d, want 1", n)
	}
}

func TestRegisterConfiguredNumber(t *testing.T) {
	h := newHarness(t, explicitConfig())
	if got := h.register(t, imsiB); got != "+15550001015" {
		t.Errorf("msisdn = %q, want configured +15550001015", got)
	}
}

func TestRegisterRegexpPolicy(t *testing.T) {
	h := newHarness(t, regexpConfig())
	ctx := context.Background()

	if got := h.register(t, "001234567890123"); got != "+17890123" {
		t.Errorf("msisdn = %q, want +17890123", got)
	}

	for want := 1; want <= 2; want++ {
		r := h.svc.Register(ctx, RegisterRequest{IMSI: "002234567890123", Auth: challenge.Start{}})
		if r.Outcome != OutcomeRejected || r.Reason != ReasonForbidden {
			t.Fatalf("Register() = %+v, want forbidden", r)
		}
		rej := h.svc.Rejected()
		if len(rej) != 1 || rej[0].IMSI != "002234567890123" || rej[0].Count != want {
			t.Errorf("Rejected() = %+v, want count %d", rej, want)
		}
	}
}

func TestRegisterPreferredNumber(t *testing.T) {
	h := newHarness(t, regexpConfig())
	ctx := context.Background()

	r := h.svc.Register(ctx, RegisterRequest{IMSI: "001234567890123", MSISDN: "15551234567"})
	if r.Param("msisdn") != "+15551234567" {
		t.Errorf("msisdn = %q, want requested number", r.Param("msisdn"))
	}

	// 使用中の希望番号は使わない
	r = h.svc.Register(ctx, RegisterRequest{IMSI: "001234567890124", MSISDN: "+15551234567"})
	if got := r.Param("msisdn"); got == "+15551234567" || got == "" {
		t.Errorf("msisdn = %q, want a newly allocated number", got)
	}
}

func TestRegisterExplicitRejects(t *testing.T) {
	cfg := explicitConfig()
	cfg.Subscribers = append(cfg.Subscribers,
		&model.Subscriber{IMSI: "001990010001016", Active: false, Ki: "00"},
		&model.Subscriber{IMSI: "001990010001017", Active: true},
	)
	h := newHarness(t, cfg)
	ctx := context.Background()

	tests := []struct {
		name string
		imsi string
		want string
	}{
		{"未知のIMSI", "001990010009999", ReasonForbidden},
		{"無効な加入者", "001990010001016", ReasonForbidden},
		{"鍵がない加入者", "001990010001017", ReasonUnacceptable},
		{"IMSIなし", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := h.svc.Register(ctx, RegisterRequest{IMSI: tt.imsi, Auth: challenge.Start{}})
			if r.Outcome != OutcomeRejected || r.Reason != tt.want {
				t.Errorf("Register() = %+v, want rejected %q", r, tt.want)
			}
		})
	}
	if h.console.count(alarmNoKey) != 1 {
		t.Errorf("no-key alarm count = %d, want 1", h.console.count(alarmNoKey))
	}
}

func TestRegisterUnconfigured(t *testing.T) {
	h := newHarness(t, &model.NetworkConfig{CountryCode: "1"})
	before := h.console.count(alarmNoPolicy)

	for i := 0; i < 2; i++ {
		r := h.svc.Register(context.Background(), RegisterRequest{IMSI: imsiA, Auth: challenge.Start{}})
		if r.Outcome != OutcomeRejected || r.Reason != ReasonForbidden {
			t.Fatalf("Register() = %+v, want forbidden", r)
		}
	}
	if got := h.console.count(alarmNoPolicy) - before; got != 2 {
		t.Errorf("alarms raised = %d, want 2", got)
	}
}

func TestUnregister(t *testing.T) {
	h := newHarness(t, regexpConfig())
	ctx := context.Background()
	number := h.register(t, imsiA)

	// 別の番号を指定した解除は無視する
	if r := h.svc.Unregister(ctx, imsiA, "+19999999"); r.Outcome != OutcomeAccepted {
		t.Errorf("Unregister() = %+v", r)
	}
	if len(h.svc.Registrations()) != 1 {
		t.Fatal("registration should survive a mismatched unregister")
	}

	if r := h.svc.Unregister(ctx, imsiA, msisdn.Digits(number)); r.Outcome != OutcomeAccepted {
		t.Errorf("Unregister() = %+v", r)
	}
	if len(h.svc.Registrations()) != 0 {
		t.Error("registration should be removed")
	}

	// 未登録でもtrue
	if r := h.svc.Unregister(ctx, imsiA, ""); r.Outcome != OutcomeAccepted {
		t.Errorf("Unregister() of unknown = %+v", r)
	}
	if r := h.svc.Unregister(ctx, "", ""); r.Outcome != OutcomeRejected {
		t.Errorf("Unregister() without imsi = %+v", r)
	}
}

func TestRouteBetweenRegistered(t *testing.T) {
	h := newHarness(t, regexpConfig())
	a := h.register(t, "001234567890123")
	b := h.register(t, "001234567890124")

	r := h.svc.Route(context.Background(), routing.Request{
		Caller:   msisdn.Digits(a),
		Called:   strings.TrimPrefix(b, "+1"),
		Username: "001234567890123",
	})
	if r.Outcome != OutcomeAccepted || r.RetValue != "ybts/IMSI001234567890124" {
		t.Errorf("Route() = %+v, want internal route to B", r)
	}
	if r.Param("line") != "" {
		t.Errorf("line = %q, want no outbound line", r.Param("line"))
	}
}

func TestRouteResults(t *testing.T) {
	h := newHarness(t, regexpConfig())
	h.register(t, "001234567890123")
	ctx := context.Background()

	r := h.svc.Route(ctx, routing.Request{Caller: "17890123", Called: "4915112345678", Username: "001234567890123"})
	if r.Outcome != OutcomeAccepted || r.RetValue != "line/+4915112345678" ||
		r.Param("called") != "+4915112345678" || r.Param("line") != "outbound" {
		t.Errorf("outbound Route() = %+v", r)
	}

	r = h.svc.Route(ctx, routing.Request{Caller: "1", Called: "4915112345678", Username: "001999999999999"})
	if r.Outcome != OutcomeRejected || r.Reason != ReasonForbidden {
		t.Errorf("forbidden Route() = %+v", r)
	}

	r = h.svc.Route(ctx, routing.Request{RouteType: "ussd"})
	if r.Outcome != OutcomeDeclined {
		t.Errorf("declined Route() = %+v", r)
	}
}

func TestSubmitSMSUnregistered(t *testing.T) {
	h := newHarness(t, regexpConfig())

	r := h.svc.SubmitSMS(context.Background(), SMSRequest{
		Username: "IMSI001234567890123", Called: "12345", SMSCalled: "7890124", Text: "hello",
	})
	if r.Outcome != OutcomeRejected || r.Reason != ReasonForbidden {
		t.Errorf("SubmitSMS() = %+v, want forbidden", r)
	}
	if h.svc.queue.Len() != 0 {
		t.Errorf("queue length = %d, want 0", h.svc.queue.Len())
	}
}

func TestSubmitSMSDestinations(t *testing.T) {
	h := newHarness(t, explicitConfig())
	ctx := context.Background()
	a := h.register(t, imsiA)
	h.register(t, imsiB)

	t.Run("短縮番号", func(t *testing.T) {
		r := h.svc.SubmitSMS(ctx, SMSRequest{Username: imsiB, Called: "12345", SMSCalled: "101", Text: "hi A"})
		if r.Outcome != OutcomeAccepted {
			t.Fatalf("SubmitSMS() = %+v", r)
		}
		snap := h.svc.queue.Snapshot()
		e := snap[len(snap)-1]
		if e.ToIMSI != imsiA || e.ToMSISDN != a || e.FromMSISDN != "+15550001015" || e.SMSC != "12345" {
			t.Errorf("entry = %+v", e)
		}
		if !e.NextTry.Equal(h.now) || e.Attempts != 3 {
			t.Errorf("entry schedule = %v / %d", e.NextTry, e.Attempts)
		}
	})

	t.Run("自動応答番号", func(t *testing.T) {
		r := h.svc.SubmitSMS(ctx, SMSRequest{Username: imsiB, Called: "12345", SMSCalled: "35492", Text: "hello"})
		if r.Outcome != OutcomeAccepted {
			t.Fatalf("SubmitSMS() = %+v", r)
		}
		snap := h.svc.queue.Snapshot()
		e := snap[len(snap)-1]
		if e.FromMSISDN != "35492" || e.ToIMSI != imsiB || e.ToMSISDN != "+15550001015" {
			t.Errorf("reply entry = %+v", e)
		}
		if e.Text != "Hello. How are you today?" {
			t.Errorf("reply text = %q", e.Text)
		}
		if !e.NextTry.Equal(h.now.Add(config.ChatReplyDelay)) {
			t.Errorf("reply NextTry = %v", e.NextTry)
		}
	})

	t.Run("宛先なし", func(t *testing.T) {
		r := h.svc.SubmitSMS(ctx, SMSRequest{Username: imsiB, Called: "12345", SMSCalled: "4915112345678", Text: "x"})
		if r.Outcome != OutcomeRejected || r.Reason != ReasonNoRoute {
			t.Errorf("SubmitSMS() = %+v, want no route", r)
		}
	})

	t.Run("本文なし", func(t *testing.T) {
		r := h.svc.SubmitSMS(ctx, SMSRequest{Username: imsiB, Called: "12345", SMSCalled: "101"})
		if r.Outcome != OutcomeRejected || r.Reason != ReasonFailure {
			t.Errorf("SubmitSMS() = %+v, want failure", r)
		}
	})
}

func TestIdleBoundedRetry(t *testing.T) {
	h := newHarness(t, regexpConfig())
	h.svc.settings.GreetingEnabled = false
	ctx := context.Background()

	h.register(t, "001234567890123")
	b := h.register(t, "001234567890124")
	r := h.svc.SubmitSMS(ctx, SMSRequest{Username: "001234567890123", Called: "12345", SMSCalled: b, Text: "ping"})
	if r.Outcome != OutcomeAccepted {
		t.Fatalf("SubmitSMS() = %+v", r)
	}

	h.del.err = errors.New("offline")
	for i := 0; i < 60; i++ {
		h.svc.Idle(ctx)
		h.now = h.now.Add(time.Second)
	}

	if n := len(h.del.calls); n != 4 {
		t.Errorf("delivery attempts = %d, want 4", n)
	}
	if h.svc.queue.Len() != 0 {
		t.Errorf("queue length = %d, want 0", h.svc.queue.Len())
	}
	if _, armed := h.svc.scheduler.Next(); !armed {
		t.Error("scheduler should be re-armed after idle")
	}
}

func TestIdleUnansweredDelivery(t *testing.T) {
	h := newHarness(t, regexpConfig())
	h.svc.settings.GreetingEnabled = false
	ctx := context.Background()

	// 配信をエンジンへ送出するが、エンジンは一切応答しない
	a, b := net.Pipe()
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	engine := extmod.New(a, logger, extmod.WithDispatchTimeout(50*time.Millisecond))
	runCtx, cancel := context.WithCancel(ctx)
	go func() { _ = engine.Run(runCtx) }()
	go func() { _, _ = io.Copy(io.Discard, b) }()
	t.Cleanup(func() {
		cancel()
		_ = a.Close()
		_ = b.Close()
	})
	h.svc.queue = smsq.NewQueue(smsq.NewEngineDeliverer(engine), config.SMSRetryDelay, logger, nil)

	h.register(t, "001234567890123")
	dest := h.register(t, "001234567890124")
	for _, text := range []string{"first", "second"} {
		r := h.svc.SubmitSMS(ctx, SMSRequest{Username: "001234567890123", Called: "12345", SMSCalled: dest, Text: text})
		if r.Outcome != OutcomeAccepted {
			t.Fatalf("SubmitSMS() = %+v", r)
		}
	}

	if !h.svc.scheduler.Tick(h.now) {
		t.Fatal("Tick() = false, want true")
	}
	done := make(chan Result, 1)
	go func() { done <- h.svc.Idle(ctx) }()
	select {
	case r := <-done:
		if r.Outcome != OutcomeAccepted {
			t.Errorf("Idle() = %+v", r)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Idle() blocked on an unanswered msg.execute")
	}

	// 応答がなくても次のアイドル処理が予定され、SMSは再試行待ちで残る
	next, armed := h.svc.scheduler.Next()
	if !armed || !next.Equal(h.now.Add(config.IdlePeriod)) {
		t.Errorf("scheduler Next() = %v, %v", next, armed)
	}
	if !h.svc.scheduler.Tick(h.now.Add(config.IdlePeriod)) {
		t.Error("Tick() after idle = false, want true")
	}
	if n := h.svc.queue.Len(); n != 2 {
		t.Errorf("queue length = %d, want 2", n)
	}
	if head := h.svc.queue.Snapshot()[0]; head.Text != "second" {
		t.Errorf("queue head = %q, want second", head.Text)
	}
}

func TestIdleDelivers(t *testing.T) {
	h := newHarness(t, regexpConfig())
	h.register(t, "001234567890123")

	// 案内SMSは9秒後
	h.svc.Idle(context.Background())
	if len(h.del.calls) != 0 {
		t.Fatal("greeting delivered before its NextTry")
	}
	h.now = h.now.Add(config.GreetingDelay)
	h.svc.Idle(context.Background())
	if len(h.del.calls) != 1 || h.del.calls[0].ToIMSI != "001234567890123" {
		t.Errorf("delivered = %+v", h.del.calls)
	}
}

func TestSendSystemSMS(t *testing.T) {
	h := newHarness(t, regexpConfig())
	ctx := context.Background()

	if _, err := h.svc.SendSystemSMS(ctx, "001234567890123", "maintenance"); err == nil {
		t.Error("SendSystemSMS() to unregistered should fail")
	}
	number := h.register(t, "001234567890123")
	e, err := h.svc.SendSystemSMS(ctx, "001234567890123", "maintenance")
	if err != nil {
		t.Fatalf("SendSystemSMS() error = %v", err)
	}
	if e.ToMSISDN != number || e.FromMSISDN != "12345" || e.FromIMSI != smsq.SystemIMSI {
		t.Errorf("entry = %+v", e)
	}
	if _, err := h.svc.SendSystemSMS(ctx, "001234567890123", ""); !errors.Is(err, smsq.ErrEmptyBody) {
		t.Errorf("err = %v, want ErrEmptyBody", err)
	}
}

func TestCustomSMS(t *testing.T) {
	h := newHarness(t, regexpConfig())
	ctx := context.Background()

	if !h.svc.CustomSMS(ctx, imsiA, "hello", "") {
		t.Fatal("CustomSMS() = false, want true")
	}
	if len(h.del.calls) != 1 || h.del.calls[0].ToIMSI != imsiA || h.del.calls[0].FromMSISDN != "12345" {
		t.Errorf("delivered = %+v", h.del.calls)
	}
	if h.console.count("msg.execute returned true") != 1 {
		t.Error("console should report the delivery result")
	}

	h.del.err = errors.New("offline")
	if h.svc.CustomSMS(ctx, imsiA, "", "0011") {
		t.Error("CustomSMS() = true on delivery failure")
	}
	if h.svc.CustomSMS(ctx, "", "hello", "") {
		t.Error("CustomSMS() = true without destination")
	}
}

func TestAuth(t *testing.T) {
	h := newHarness(t, explicitConfig())
	ctx := context.Background()

	r := h.svc.Auth(ctx, AuthRequest{IMSI: imsiA, Auth: challenge.Start{}})
	if r.Outcome != OutcomePending {
		t.Fatalf("Auth() = %+v, want pending", r)
	}
	r = h.svc.Auth(ctx, AuthRequest{IMSI: imsiA, Auth: challenge.Response{Value: testSRES}})
	if r.Outcome != OutcomeAccepted {
		t.Errorf("Auth() = %+v, want accepted", r)
	}
	r = h.svc.Auth(ctx, AuthRequest{IMSI: "001990010009999", Auth: challenge.Start{}})
	if r.Outcome != OutcomeRejected || r.Reason != ReasonUnacceptable {
		t.Errorf("Auth() unknown = %+v", r)
	}
}

func TestAuthInput(t *testing.T) {
	tests := []struct {
		name string
		in   challenge.Input
		want challenge.Input
	}{
		{"開始", AuthInput("", "", "", ""), challenge.Start{}},
		{"応答", AuthInput("AB", "CD", "", ""), challenge.Response{Value: "AB"}},
		{"再同期", AuthInput("", "CD", "EF", ""), challenge.Resync{AUTS: "CD", RAND: "EF"}},
		{"中断", AuthInput("", "", "", "timeout"), challenge.Aborted{Reason: "timeout"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.in != tt.want {
				t.Errorf("AuthInput() = %#v, want %#v", tt.in, tt.want)
			}
		})
	}
}
