// Package nib はエンジンから届くメッセージを処理し、登録・認証・ルーティング・SMS配信をまとめる。
package nib

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/oyaguma3/nib-server-poc/apps/nib-server/internal/challenge"
	"github.com/oyaguma3/nib-server-poc/apps/nib-server/internal/chatbot"
	"github.com/oyaguma3/nib-server-poc/apps/nib-server/internal/events"
	"github.com/oyaguma3/nib-server-poc/apps/nib-server/internal/ledger"
	"github.com/oyaguma3/nib-server-poc/apps/nib-server/internal/msisdn"
	"github.com/oyaguma3/nib-server-poc/apps/nib-server/internal/routing"
	"github.com/oyaguma3/nib-server-poc/apps/nib-server/internal/smsq"
	"github.com/oyaguma3/nib-server-poc/apps/nib-server/internal/subscriber"
	"github.com/oyaguma3/nib-server-poc/pkg/logging"
	"github.com/oyaguma3/nib-server-poc/pkg/model"
)

// Console はエンジンのコンソールへ1行出力する。
type Console interface {
	Output(text string) error
}

// Settings は特番とSMSの設定
type Settings struct {
	SMSCNumber      string
	ChatNumber      string
	SMSAttempts     int
	GreetingEnabled bool
	GreetingText    string // {msisdn}を払い出し番号に置き換える
	GreetingDelay   time.Duration
	ChatReplyDelay  time.Duration
}

// Deps はServiceが使うコンポーネント
type Deps struct {
	Store      *subscriber.Store
	Challenger *challenge.Challenger
	Queue      *smsq.Queue
	Scheduler  *smsq.Scheduler
	Deliverer  smsq.Deliverer
	Resolver   *routing.Resolver
	Allocator  *msisdn.Allocator
	Bot        *chatbot.Bot
	Publisher  events.Publisher // nilなら通知しない
	Console    Console          // nilならログのみ
	Logger     *slog.Logger
	Fields     *logging.Fields
}

// Service は登録台帳・拒否カウンタ・SMSキューを持つ処理本体。
// 台帳とキューをまたぐ更新はmuで直列化し、外部呼び出し中はmuを保持しない。
type Service struct {
	store      *subscriber.Store
	challenger *challenge.Challenger
	queue      *smsq.Queue
	scheduler  *smsq.Scheduler
	deliverer  smsq.Deliverer
	resolver   *routing.Resolver
	allocator  *msisdn.Allocator
	bot        *chatbot.Bot
	publisher  events.Publisher
	console    Console
	logger     *slog.Logger
	fields     *logging.Fields
	settings   Settings
	now        func() time.Time

	mu         sync.Mutex
	ledger     *ledger.Ledger
	rejections *ledger.Rejections
}

// NewService は新しいServiceを生成する。
func NewService(d Deps, s Settings) *Service {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.Fields == nil {
		d.Fields = logging.NewFields(nil)
	}
	if d.Publisher == nil {
		d.Publisher = events.Nop{}
	}
	if d.Bot == nil {
		d.Bot = chatbot.New()
	}
	return &Service{
		store:      d.Store,
		challenger: d.Challenger,
		queue:      d.Queue,
		scheduler:  d.Scheduler,
		deliverer:  d.Deliverer,
		resolver:   d.Resolver,
		allocator:  d.Allocator,
		bot:        d.Bot,
		publisher:  d.Publisher,
		console:    d.Console,
		logger:     d.Logger,
		fields:     d.Fields,
		settings:   s,
		now:        time.Now,
		ledger:     ledger.New(),
		rejections: ledger.NewRejections(),
	}
}

// Registrations は登録一覧を返す。
func (s *Service) Registrations() []model.Registration {
	return s.ledger.Entries()
}

// Rejected は拒否されたIMSIと回数を返す。
func (s *Service) Rejected() []model.Rejection {
	return s.rejections.Entries()
}

// PendingSMS は配信待ちSMSを先頭から順に返す。
func (s *Service) PendingSMS() []model.PendingSMS {
	entries := s.queue.Snapshot()
	out := make([]model.PendingSMS, len(entries))
	for i, e := range entries {
		out[i] = e.View()
	}
	return out
}

// alarm は運用者向けの設定アラームを出す。
func (s *Service) alarm(text string) {
	s.logger.Error(text, logging.WithEventID("CONF_ALARM"))
	if s.console == nil {
		return
	}
	if err := s.console.Output("nib: ALARM: " + text); err != nil {
		s.logger.Warn("failed to output alarm",
			logging.WithEventID("CONSOLE_OUTPUT_ERR"),
			logging.WithError(err),
		)
	}
}

// publish はイベントを通知する。失敗はログだけ残す。
func (s *Service) publish(ctx context.Context, ev events.Event) {
	if ev.Time.IsZero() {
		ev.Time = s.now().UTC()
	}
	if err := s.publisher.Publish(ctx, ev); err != nil {
		s.logger.Warn("failed to publish event",
			logging.WithEventID("EVENT_PUBLISH_ERR"),
			"type", ev.Type,
			logging.WithError(err),
		)
	}
}
