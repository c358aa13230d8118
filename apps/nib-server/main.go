// Package main はnib-server（GSMネットワーク・イン・ア・ボックスの加入者管理モジュール）のエントリーポイント。
package main

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/oyaguma3/nib-server-poc/apps/nib-server/internal/admin"
	"github.com/oyaguma3/nib-server-poc/apps/nib-server/internal/authc"
	"github.com/oyaguma3/nib-server-poc/apps/nib-server/internal/challenge"
	"github.com/oyaguma3/nib-server-poc/apps/nib-server/internal/config"
	"github.com/oyaguma3/nib-server-poc/apps/nib-server/internal/events"
	"github.com/oyaguma3/nib-server-poc/apps/nib-server/internal/extmod"
	"github.com/oyaguma3/nib-server-poc/apps/nib-server/internal/msisdn"
	"github.com/oyaguma3/nib-server-poc/apps/nib-server/internal/nib"
	"github.com/oyaguma3/nib-server-poc/apps/nib-server/internal/routing"
	"github.com/oyaguma3/nib-server-poc/apps/nib-server/internal/smsq"
	"github.com/oyaguma3/nib-server-poc/apps/nib-server/internal/store"
	"github.com/oyaguma3/nib-server-poc/apps/nib-server/internal/subscriber"
	"github.com/oyaguma3/nib-server-poc/pkg/logging"
)

func main() {
	// 1. .envがあれば読み込む
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("failed to read .env", logging.WithError(err))
	}

	// 2. 設定読み込み
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", logging.WithEventID("CONF_LOAD_ERR"), logging.WithError(err))
		os.Exit(1)
	}

	// 3. ロガー初期化（stdoutはエンジンとの通信に使うためstderrへ出力）
	logger := logging.NewLogger(os.Stderr, "nib-server", cfg.LogLevel)
	slog.SetDefault(logger)
	fields := logging.NewFields(logging.NewMasker(cfg.LogMaskIMSI))

	slog.Info("starting nib-server",
		"engine_addr", cfg.EngineAddr,
		"subscriber_source", cfg.SubscriberSource,
		"auth_backend", cfg.AuthBackend,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 4. 加入者設定の読み込み元
	src, writer, closeSource, err := openSource(ctx, cfg)
	if err != nil {
		slog.Error("failed to open subscriber source", logging.WithEventID("VALKEY_CONN_ERR"), logging.WithError(err))
		os.Exit(1)
	}
	defer closeSource()
	subscribers := subscriber.NewStore(src, writer, logger)

	// 5. エンジン接続
	engine, err := connectEngine(ctx, cfg, logger)
	if err != nil {
		slog.Error("failed to connect to engine", logging.WithEventID("ENGINE_CONN_ERR"), logging.WithError(err))
		os.Exit(1)
	}
	defer engine.Close()

	// 6. イベント通知
	var publisher events.Publisher = events.Nop{}
	if cfg.AMQPURL != "" {
		p, err := events.DialAMQP(cfg.AMQPURL, config.EventsExchange)
		if err != nil {
			slog.Error("failed to connect to AMQP broker", logging.WithEventID("AMQP_CONN_ERR"), logging.WithError(err))
			os.Exit(1)
		}
		publisher = p
	}
	defer publisher.Close()

	// 7. 依存オブジェクト生成
	auth, err := authc.New(cfg, engine)
	if err != nil {
		slog.Error("failed to create authenticator", logging.WithError(err))
		os.Exit(1)
	}
	deliverer := smsq.NewEngineDeliverer(engine)
	scheduler := smsq.NewScheduler(engine, config.QueueModuleTag, config.IdlePeriod, logger)
	resolver := routing.NewResolver(routing.Numbers{
		Conference: cfg.ConferenceNumber,
		Welcome:    cfg.WelcomeNumber,
	})

	svc := nib.NewService(nib.Deps{
		Store:      subscribers,
		Challenger: challenge.New(auth, subscribers, cfg.AuthMaxRetries, logger, challenge.WithFields(fields)),
		Queue:      smsq.NewQueue(deliverer, config.SMSRetryDelay, logger, fields),
		Scheduler:  scheduler,
		Deliverer:  deliverer,
		Resolver:   resolver,
		Allocator:  msisdn.NewRandomAllocator(config.AllocatorMaxAttempts),
		Publisher:  publisher,
		Console:    engine,
		Logger:     logger,
		Fields:     fields,
	}, nib.Settings{
		SMSCNumber:      cfg.SMSCNumber,
		ChatNumber:      cfg.ChatNumber,
		SMSAttempts:     cfg.SMSAttempts,
		GreetingEnabled: cfg.GreetingEnabled,
		GreetingText:    cfg.GreetingText,
		GreetingDelay:   config.GreetingDelay,
		ChatReplyDelay:  config.ChatReplyDelay,
	})

	// 8. 受信ループ開始後に初回読み込みとハンドラー登録
	runErr := make(chan error, 1)
	go func() { runErr <- engine.Run(ctx) }()

	// 処理したメッセージにモジュール名を記録させる
	if err := engine.SetLocal("trackparam", config.TrackParam); err != nil {
		slog.Warn("failed to set trackparam", logging.WithEventID("ENGINE_SETLOCAL_ERR"), logging.WithError(err))
	}

	if _, err := svc.Reload(ctx); err != nil {
		// 読み込みに失敗しても未設定として動作を続ける
		slog.Warn("initial subscriber load failed", logging.WithEventID("CONF_LOAD_ERR"), logging.WithError(err))
	}
	if err := svc.Install(ctx, engine); err != nil {
		slog.Error("failed to install handlers", logging.WithEventID("ENGINE_INSTALL_ERR"), logging.WithError(err))
		os.Exit(1)
	}
	slog.Info("handlers installed", logging.WithEventID("ENGINE_READY"))

	go scheduler.Run(ctx, config.IdleTickInterval)

	// 9. 管理API
	var srv *admin.Server
	if cfg.AdminListenAddr != "" {
		srv = admin.New(cfg.AdminListenAddr, svc, logger)
		go func() {
			if err := srv.Run(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("admin server error", logging.WithEventID("ADMIN_SERVER_ERR"), logging.WithError(err))
			}
		}()
	}

	// 10. シグナルかエンジン切断で終了
	select {
	case <-ctx.Done():
		slog.Info("shutting down", "reason", "signal")
	case err := <-runErr:
		slog.Info("shutting down", "reason", "engine link closed", logging.WithError(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
	defer cancel()
	if srv != nil {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Warn("admin server shutdown error", logging.WithError(err))
		}
	}

	slog.Info("nib-server stopped")
}

// openSource は設定に応じた加入者設定の読み込み元を開く。
func openSource(ctx context.Context, cfg *config.Config) (subscriber.Source, subscriber.SQNWriter, func(), error) {
	if cfg.SubscriberSource == config.SourceFile {
		fsrc := subscriber.NewFileSource(cfg.SubscribersFile)
		return fsrc, fsrc, func() {}, nil
	}

	vc, err := store.NewValkeyClient(ctx, cfg)
	if err != nil {
		return nil, nil, nil, err
	}
	slog.Info("connected to Valkey", "addr", cfg.ValkeyAddr())
	ss := store.NewSubscriberStore(vc)
	return ss, ss, func() { _ = vc.Close() }, nil
}

// connectEngine はエンジンへ接続する。アドレスが未設定ならstdin/stdoutを使う。
func connectEngine(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*extmod.Client, error) {
	timeout := extmod.WithDispatchTimeout(cfg.EngineDispatchTimeout)
	if cfg.UseStdio() {
		return extmod.NewStdio(logger, timeout), nil
	}
	dialCtx, cancel := context.WithTimeout(ctx, config.EngineDialTimeout)
	defer cancel()
	return extmod.Dial(dialCtx, cfg.EngineAddr, cfg.EngineRole, logger, timeout)
}
