package config

import "time"

// Valkey接続設定
const (
	ValkeyConnectTimeout = 3 * time.Second
	ValkeyCommandTimeout = 2 * time.Second
)

// エンジン接続設定
const (
	EngineDialTimeout     = 5 * time.Second
	EngineInstallPriority = 80
	EngineCommandPriority = 120
	EngineIdlePriority    = 110
)

// 認証ヘルパーAPI接続設定
const (
	AuthRequestTimeout = 5 * time.Second
)

// Circuit Breaker設定
const (
	CBName             = "auth-helper"
	CBMaxRequests      = 3
	CBInterval         = 10 * time.Second
	CBTimeout          = 30 * time.Second
	CBFailureThreshold = 5
)

// SMSキュー・アイドル処理のタイミング
const (
	IdleTickInterval = 1 * time.Second // 定期チェック間隔
	IdlePeriod       = 5 * time.Second // アイドル処理の最小間隔・再スケジュール間隔
	SMSRetryDelay    = 5 * time.Second // 配信失敗時の再試行待ち
	GreetingDelay    = 9 * time.Second // 払い出し通知SMSの初回配信待ち
	ChatReplyDelay   = 5 * time.Second // 自動応答SMSの初回配信待ち
)

// 番号払い出し設定
const (
	AllocatorMaxAttempts = 10000
)

// メッセージ上のタグ
const (
	QueueModuleTag = "nib_cache"
	SMSCRouteTag   = "nib_smsc"
	CustomSMSTag   = "custom-sms"
	EventsExchange = "nib.events"
	TrackParam     = "nib"
)

// サーバーシャットダウン設定
const (
	ShutdownTimeout = 5 * time.Second
)
