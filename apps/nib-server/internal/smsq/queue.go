package smsq

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/oyaguma3/nib-server-poc/pkg/logging"
)

// Result はDrainOneの処理結果
type Result int

const (
	// ResultIdle は処理対象がなかったことを表す
	ResultIdle Result = iota
	// ResultDelivered は配信に成功して破棄したことを表す
	ResultDelivered
	// ResultRequeued は配信に失敗して末尾へ戻したことを表す
	ResultRequeued
	// ResultDropped は再試行回数を使い切って破棄したことを表す
	ResultDropped
)

// String は結果名を返す。
func (r Result) String() string {
	switch r {
	case ResultDelivered:
		return "delivered"
	case ResultRequeued:
		return "requeued"
	case ResultDropped:
		return "dropped"
	default:
		return "idle"
	}
}

// Queue は配信待ちSMSのFIFOキュー。
// 配信中はロックを保持しない。
type Queue struct {
	deliverer  Deliverer
	retryDelay time.Duration
	logger     *slog.Logger
	fields     *logging.Fields

	mu      sync.Mutex
	entries []*Entry
}

// NewQueue は新しいQueueを生成する。
func NewQueue(d Deliverer, retryDelay time.Duration, logger *slog.Logger, fields *logging.Fields) *Queue {
	if logger == nil {
		logger = slog.Default()
	}
	if fields == nil {
		fields = logging.NewFields(nil)
	}
	return &Queue{
		deliverer:  d,
		retryDelay: retryDelay,
		logger:     logger,
		fields:     fields,
	}
}

// Enqueue はSMSを末尾に追加する。
func (q *Queue) Enqueue(e *Entry) {
	q.mu.Lock()
	q.entries = append(q.entries, e)
	q.mu.Unlock()

	q.logger.Debug("sms queued",
		logging.WithEventID("SMS_QUEUED"),
		q.fields.IMSI(e.ToIMSI),
		"sms_id", e.ID,
	)
}

// DrainOne は先頭のSMSが配信時刻に達していれば1回だけ配信を試みる。
// 先頭以外は見ない。
func (q *Queue) DrainOne(ctx context.Context, now time.Time) (*Entry, Result) {
	q.mu.Lock()
	if len(q.entries) == 0 || !q.entries[0].Due(now) {
		q.mu.Unlock()
		return nil, ResultIdle
	}
	e := q.entries[0]
	q.entries[0] = nil
	q.entries = q.entries[1:]
	q.mu.Unlock()

	err := q.deliverer.Deliver(ctx, e)
	if err == nil {
		q.logger.Info("sms delivered",
			logging.WithEventID("SMS_DELIVERED"),
			q.fields.IMSI(e.ToIMSI),
			"sms_id", e.ID,
		)
		return e, ResultDelivered
	}

	e.Attempts--
	if e.Attempts < 0 {
		q.logger.Warn("sms dropped, attempts exceeded",
			logging.WithEventID("SMS_DROPPED"),
			q.fields.IMSI(e.ToIMSI),
			"sms_id", e.ID,
			logging.WithError(err),
		)
		return e, ResultDropped
	}

	e.NextTry = now.Add(q.retryDelay)
	q.mu.Lock()
	q.entries = append(q.entries, e)
	q.mu.Unlock()

	q.logger.Info("sms delivery failed, requeued",
		logging.WithEventID("SMS_RETRY"),
		q.fields.IMSI(e.ToIMSI),
		"sms_id", e.ID,
		logging.WithAttempts(e.Attempts),
		logging.WithError(err),
	)
	return e, ResultRequeued
}

// Snapshot はキューの内容を先頭から順に返す。
func (q *Queue) Snapshot() []*Entry {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make([]*Entry, len(q.entries))
	for i, e := range q.entries {
		cp := *e
		out[i] = &cp
	}
	return out
}

// Len はキューの件数を返す。
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.entries)
}
