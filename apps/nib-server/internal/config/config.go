// Package config はnib-serverの設定を環境変数から読み込む。
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/oyaguma3/nib-server-poc/pkg/valkey"
)

// 加入者テーブルの読み込み元
const (
	SourceValkey = "valkey"
	SourceFile   = "file"
)

// 認証計算バックエンド
const (
	AuthBackendEngine = "engine" // エンジンへgsm.authを送出
	AuthBackendLocal  = "local"  // プロセス内でMilenage計算
	AuthBackendHTTP   = "http"   // 外部の認証ヘルパーAPI
)

// Config はアプリケーション設定を保持する
type Config struct {
	// エンジン接続設定（空ならstdin/stdoutで接続）
	EngineAddr            string        `envconfig:"ENGINE_ADDR"`
	EngineRole            string        `envconfig:"ENGINE_ROLE" default:"global"`
	EngineDispatchTimeout time.Duration `envconfig:"ENGINE_DISPATCH_TIMEOUT" default:"10s"`

	// 加入者テーブル設定
	SubscriberSource string `envconfig:"SUBSCRIBER_SOURCE" default:"valkey"`
	SubscribersFile  string `envconfig:"SUBSCRIBERS_FILE" default:"subscribers.yaml"`

	// Valkey接続設定
	RedisHost string `envconfig:"REDIS_HOST" default:"localhost"`
	RedisPort string `envconfig:"REDIS_PORT" default:"6379"`
	RedisPass string `envconfig:"REDIS_PASS"`

	// 認証設定
	AuthBackend    string `envconfig:"AUTH_BACKEND" default:"engine"`
	AuthAPIURL     string `envconfig:"AUTH_API_URL"`
	AuthMaxRetries int    `envconfig:"AUTH_MAX_RETRIES" default:"3"`

	// 管理API・イベント通知（空なら無効）
	AdminListenAddr string `envconfig:"ADMIN_LISTEN_ADDR" default:":8080"`
	AMQPURL         string `envconfig:"AMQP_URL"`

	// 特番設定
	SMSCNumber       string `envconfig:"SMSC_NUMBER" default:"12345"`
	ChatNumber       string `envconfig:"CHAT_NUMBER" default:"35492"`
	ConferenceNumber string `envconfig:"CONFERENCE_NUMBER" default:"333"`
	WelcomeNumber    string `envconfig:"WELCOME_NUMBER"`

	// SMS設定
	SMSAttempts     int    `envconfig:"SMS_ATTEMPTS" default:"3"`
	GreetingEnabled bool   `envconfig:"GREETING_ENABLED" default:"true"`
	GreetingText    string `envconfig:"GREETING_TEXT" default:"Your allocated phone no. is {msisdn}. Thank you for using this network."`

	// ログ設定
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
	LogMaskIMSI bool   `envconfig:"LOG_MASK_IMSI" default:"true"`
}

// Load は環境変数から設定を読み込む
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

// ValkeyAddr はValkey接続アドレスを "host:port" 形式で返す
func (c *Config) ValkeyAddr() string {
	return valkey.BuildAddr(c.RedisHost, c.RedisPort)
}

// UseStdio はエンジンとstdin/stdoutで接続するかどうかを返す
func (c *Config) UseStdio() bool {
	return strings.TrimSpace(c.EngineAddr) == ""
}

// validate は設定値のバリデーションを行う
func (c *Config) validate() error {
	switch c.SubscriberSource {
	case SourceValkey:
	case SourceFile:
		if strings.TrimSpace(c.SubscribersFile) == "" {
			return fmt.Errorf("SUBSCRIBERS_FILE must not be empty when SUBSCRIBER_SOURCE=file")
		}
	default:
		return fmt.Errorf("SUBSCRIBER_SOURCE must be %q or %q", SourceValkey, SourceFile)
	}

	switch c.AuthBackend {
	case AuthBackendEngine, AuthBackendLocal:
	case AuthBackendHTTP:
		if !strings.HasPrefix(c.AuthAPIURL, "http://") && !strings.HasPrefix(c.AuthAPIURL, "https://") {
			return fmt.Errorf("AUTH_API_URL must start with http:// or https://")
		}
	default:
		return fmt.Errorf("AUTH_BACKEND must be one of %q, %q, %q",
			AuthBackendEngine, AuthBackendLocal, AuthBackendHTTP)
	}

	if c.EngineDispatchTimeout <= 0 {
		return fmt.Errorf("ENGINE_DISPATCH_TIMEOUT must be positive")
	}

	if c.AuthMaxRetries < 0 {
		return fmt.Errorf("AUTH_MAX_RETRIES must not be negative")
	}
	if c.SMSAttempts < 0 {
		return fmt.Errorf("SMS_ATTEMPTS must not be negative")
	}

	for name, v := range map[string]string{
		"SMSC_NUMBER":       c.SMSCNumber,
		"CHAT_NUMBER":       c.ChatNumber,
		"CONFERENCE_NUMBER": c.ConferenceNumber,
		"WELCOME_NUMBER":    c.WelcomeNumber,
	} {
		if !isDigits(v) {
			return fmt.Errorf("%s must contain digits only", name)
		}
	}
	if c.SMSCNumber == "" {
		return fmt.Errorf("SMSC_NUMBER must not be empty")
	}
	return nil
}

// isDigits は空文字列または数字のみの文字列かどうかを判定する
func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
