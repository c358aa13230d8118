package valkey

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/oyaguma3/nib-server-poc/pkg/apperr"
	"github.com/redis/go-redis/v9"
)

// NewClient はPINGで疎通を確認したクライアントを返す。
// 疎通できない場合のエラーはapperr.ErrValkeyConnectionとして判定できる。
func NewClient(ctx context.Context, opts *Options) (*redis.Client, error) {
	if opts == nil {
		opts = DefaultOptions()
	}

	client := redis.NewClient(&redis.Options{
		Addr:         opts.Addr,
		Password:     opts.Password,
		DB:           opts.DB,
		DialTimeout:  opts.ConnectTimeout,
		ReadTimeout:  opts.ReadTimeout,
		WriteTimeout: opts.WriteTimeout,
		PoolSize:     opts.PoolSize,
	})

	pingCtx, cancel := context.WithTimeout(ctx, opts.ConnectTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, apperr.NewValkeyError("PING", opts.Addr, fmt.Errorf("%w: %w", apperr.ErrValkeyConnection, err))
	}
	return client, nil
}

// Classify はコマンドのエラーを接続エラーとコマンドエラーに分類する。
// 戻り値はapperr.ErrValkeyConnectionかapperr.ErrValkeyCommandで判定できる。
func Classify(err error) error {
	switch {
	case err == nil:
		return nil
	case IsConnectionError(err):
		return fmt.Errorf("%w: %w", apperr.ErrValkeyConnection, err)
	default:
		return fmt.Errorf("%w: %w", apperr.ErrValkeyCommand, err)
	}
}

// IsConnectionError は接続断やタイムアウトによるエラーかどうかを判定する。
func IsConnectionError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}
	// 閉じた接続プールからの応答
	return errors.Is(err, redis.ErrClosed)
}
