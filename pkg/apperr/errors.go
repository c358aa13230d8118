// Package apperr は共通エラー定義を提供する。
package apperr

import "errors"

// 加入者関連エラー
var (
	// ErrIMSINotFound はIMSIが見つからない場合のエラー
	ErrIMSINotFound = errors.New("IMSI not found")
	// ErrNotRegistered は加入者が未登録の場合のエラー
	ErrNotRegistered = errors.New("subscriber not registered")
	// ErrDuplicateMSISDN はMSISDN重複エラー
	ErrDuplicateMSISDN = errors.New("duplicate MSISDN")
)

// 認証関連エラー
var (
	// ErrNoKeyMaterial は認証鍵が未設定の場合のエラー
	ErrNoKeyMaterial = errors.New("no key material")
	// ErrAuthFailed は認証処理失敗エラー
	ErrAuthFailed = errors.New("authentication failed")
	// ErrAuthRetryLimit は再チャレンジ回数上限エラー
	ErrAuthRetryLimit = errors.New("auth retry limit exceeded")
)

// インフラ関連エラー
var (
	// ErrValkeyConnection はValkey接続エラー
	ErrValkeyConnection = errors.New("valkey connection error")
	// ErrValkeyCommand はValkeyコマンド実行エラー
	ErrValkeyCommand = errors.New("valkey command error")
	// ErrEngineDispatch はエンジンへのメッセージ送出エラー
	ErrEngineDispatch = errors.New("engine dispatch error")
)

// バリデーション関連エラー
var (
	// ErrInvalidIMSI は不正なIMSI形式エラー
	ErrInvalidIMSI = errors.New("invalid IMSI format")
	// ErrInvalidHex は不正な16進数文字列エラー
	ErrInvalidHex = errors.New("invalid hex string")
	// ErrInvalidRegexp は不正な受け入れ正規表現エラー
	ErrInvalidRegexp = errors.New("invalid acceptance regexp")
)
