package authc

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/oyaguma3/nib-server-poc/pkg/httputil"
)

// センチネルエラー
var (
	// ErrUnsupportedProtocol はバックエンドが扱えないプロトコルの場合のエラー
	ErrUnsupportedProtocol = errors.New("unsupported auth protocol")
	// ErrMissingKey はKiが指定されていない場合のエラー
	ErrMissingKey = errors.New("ki is required")
	// ErrMissingRAND はRANDが指定されていない場合のエラー
	ErrMissingRAND = errors.New("rand is required")
	// ErrCircuitOpen は認証ヘルパーへの送信を遮断中の場合のエラー
	ErrCircuitOpen = errors.New("circuit breaker is open")
	// ErrInvalidResponse は認証ヘルパーからのレスポンスが不正な場合のエラー
	ErrInvalidResponse = errors.New("invalid response from auth helper")
)

// APIError は認証ヘルパーが200以外を返したことを表す。
type APIError struct {
	StatusCode int
	Message    string                  // problem+jsonでない場合の本文
	Details    *httputil.ProblemDetail // problem+jsonの場合のみ
}

func (e *APIError) Error() string {
	if e.Details != nil {
		return fmt.Sprintf("auth api error: %d %s - %s", e.StatusCode, e.Details.Title, e.Details.Detail)
	}
	return fmt.Sprintf("auth api error: %d %s", e.StatusCode, e.Message)
}

// IsBadRequest は要求内容の誤り（鍵の形式不正等）かどうかを判定する。
func (e *APIError) IsBadRequest() bool {
	return e.StatusCode == http.StatusBadRequest
}

// tripsBreaker はCircuit Breakerの失敗に数えるかどうかを判定する。
// 5xxのうち501（プロトコル未実装）は数えない。
func (e *APIError) tripsBreaker() bool {
	return e.StatusCode >= 500 && e.StatusCode != http.StatusNotImplemented
}

// ConnectionError は認証ヘルパーへ到達できなかったことを表す。
type ConnectionError struct {
	Cause error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connection error: %v", e.Cause)
}

func (e *ConnectionError) Unwrap() error {
	return e.Cause
}
