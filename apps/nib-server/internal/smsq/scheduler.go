package smsq

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/oyaguma3/nib-server-poc/apps/nib-server/internal/extmod"
	"github.com/oyaguma3/nib-server-poc/pkg/logging"
)

// MessageIdle はアイドル処理の要求に使うメッセージ名
const MessageIdle = "idle.execute"

// Enqueuer は応答を待たずにメッセージをエンジンへ投入する。
type Enqueuer interface {
	Enqueue(m *extmod.Message) error
}

// Scheduler は一定間隔でアイドル処理をエンジンへ要求する。
// キューの消化はアイドル処理のハンドラが行い、Schedulerは直接配信しない。
type Scheduler struct {
	enq    Enqueuer
	module string
	period time.Duration
	logger *slog.Logger

	mu       sync.Mutex
	armed    bool
	nextIdle time.Time
}

// NewScheduler は新しいSchedulerを生成する。最初のTickで即時に要求する。
func NewScheduler(enq Enqueuer, module string, period time.Duration, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		enq:    enq,
		module: module,
		period: period,
		logger: logger,
		armed:  true,
	}
}

// Tick は予定時刻に達していればアイドル処理を要求する。
// 要求した場合はtrueを返す。
func (s *Scheduler) Tick(now time.Time) bool {
	s.mu.Lock()
	if !s.armed || now.Before(s.nextIdle) {
		s.mu.Unlock()
		return false
	}
	s.armed = false
	s.mu.Unlock()

	m := extmod.NewMessage(MessageIdle, "module", s.module)
	if err := s.enq.Enqueue(m); err != nil {
		s.logger.Warn("failed to enqueue idle request",
			logging.WithEventID("IDLE_ENQUEUE_ERR"),
			logging.WithError(err),
		)
		s.rearm(now)
		return false
	}
	return true
}

// IdleDone はアイドル処理の完了を通知し、次回を予定する。
func (s *Scheduler) IdleDone(now time.Time) {
	s.rearm(now)
}

func (s *Scheduler) rearm(now time.Time) {
	s.mu.Lock()
	s.armed = true
	s.nextIdle = now.Add(s.period)
	s.mu.Unlock()
}

// Next は次回の予定時刻と予定の有無を返す。
func (s *Scheduler) Next() (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nextIdle, s.armed
}

// Run はctxが終了するまでintervalごとにTickを呼び出す。
func (s *Scheduler) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			s.Tick(now)
		}
	}
}
