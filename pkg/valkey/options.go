// Package valkey はValkeyクライアントの共通機能を提供する。
package valkey

import (
	"net"
	"time"
)

// Options はValkeyクライアントの接続オプション。
type Options struct {
	Addr           string        // 接続先アドレス（host:port形式）
	Password       string        // 認証パスワード
	DB             int           // データベース番号
	ConnectTimeout time.Duration // 接続タイムアウト（PINGにも使う）
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	PoolSize       int
}

// DefaultOptions はデフォルトのOptionsを返す。
// 加入者テーブルの読み込みとSQN書き戻しのみなのでプールは小さめ。
func DefaultOptions() *Options {
	return &Options{
		Addr:           BuildAddr("localhost", "6379"),
		ConnectTimeout: 3 * time.Second,
		ReadTimeout:    2 * time.Second,
		WriteTimeout:   2 * time.Second,
		PoolSize:       4,
	}
}

// WithAddr はアドレスを設定する。
func (o *Options) WithAddr(addr string) *Options {
	o.Addr = addr
	return o
}

// WithPassword はパスワードを設定する。
func (o *Options) WithPassword(password string) *Options {
	o.Password = password
	return o
}

// WithTimeouts は接続・読み取り・書き込みのタイムアウトを設定する。
func (o *Options) WithTimeouts(connect, read, write time.Duration) *Options {
	o.ConnectTimeout, o.ReadTimeout, o.WriteTimeout = connect, read, write
	return o
}

// BuildAddr はホストとポートから"host:port"を生成する。IPv6は角括弧で囲む。
func BuildAddr(host, port string) string {
	return net.JoinHostPort(host, port)
}
