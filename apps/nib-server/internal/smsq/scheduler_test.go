package smsq

import (
	"errors"
	"testing"
	"time"

	"github.com/oyaguma3/nib-server-poc/apps/nib-server/internal/extmod"
)

type fakeEnqueuer struct {
	msgs []*extmod.Message
	err  error
}

func (f *fakeEnqueuer) Enqueue(m *extmod.Message) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, m)
	return nil
}

func TestSchedulerTick(t *testing.T) {
	enq := &fakeEnqueuer{}
	s := NewScheduler(enq, "nib_cache", 5*time.Second, nil)
	now := time.Unix(1000, 0)

	// 初回は即時に要求する
	if !s.Tick(now) {
		t.Fatal("first Tick() = false, want true")
	}
	if len(enq.msgs) != 1 || enq.msgs[0].Name != MessageIdle || enq.msgs[0].Get("module") != "nib_cache" {
		t.Fatalf("enqueued = %+v", enq.msgs)
	}

	// アイドル処理の完了まで再要求しない
	if s.Tick(now.Add(time.Minute)) {
		t.Error("Tick() while disarmed = true, want false")
	}

	s.IdleDone(now.Add(2 * time.Second))
	if s.Tick(now.Add(6 * time.Second)) {
		t.Error("Tick() before period = true, want false")
	}
	if !s.Tick(now.Add(7 * time.Second)) {
		t.Error("Tick() after period = false, want true")
	}
	if len(enq.msgs) != 2 {
		t.Errorf("enqueued %d idle requests, want 2", len(enq.msgs))
	}
}

func TestSchedulerEnqueueFailure(t *testing.T) {
	enq := &fakeEnqueuer{err: errors.New("engine link closed")}
	s := NewScheduler(enq, "nib_cache", 5*time.Second, nil)
	now := time.Unix(1000, 0)

	if s.Tick(now) {
		t.Fatal("Tick() = true, want false on enqueue failure")
	}
	next, armed := s.Next()
	if !armed || !next.Equal(now.Add(5*time.Second)) {
		t.Errorf("Next() = %v, %v, want %v, true", next, armed, now.Add(5*time.Second))
	}

	enq.err = nil
	if s.Tick(now.Add(4 * time.Second)) {
		t.Error("Tick() before retry time = true, want false")
	}
	if !s.Tick(now.Add(5 * time.Second)) {
		t.Error("Tick() at retry time = false, want true")
	}
}
