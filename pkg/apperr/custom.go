package apperr

import "fmt"

// ValidationError はバリデーションエラーを表す。
type ValidationError struct {
	Field   string // エラーが発生したフィールド名
	Message string // エラーメッセージ
	Cause   error  // 分類用のセンチネルエラー（任意）
}

// Error はerrorインターフェースを実装する。
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: field=%s, message=%s", e.Field, e.Message)
}

// Unwrap は分類用のセンチネルエラーを返す。
func (e *ValidationError) Unwrap() error {
	return e.Cause
}

// NewValidationError はValidationErrorを生成する。
func NewValidationError(field, message string, cause error) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
		Cause:   cause,
	}
}

// ValkeyError はValkeyとの操作エラーを表す。
type ValkeyError struct {
	Operation string // 操作名（HGETALL, HSET, SCAN等）
	Key       string // 操作対象のキー
	Cause     error  // 根本原因
}

// Error はerrorインターフェースを実装する。
func (e *ValkeyError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("valkey error: operation=%s, key=%s, cause=%v",
			e.Operation, e.Key, e.Cause)
	}
	return fmt.Sprintf("valkey error: operation=%s, key=%s", e.Operation, e.Key)
}

// Unwrap は根本原因を返す。
func (e *ValkeyError) Unwrap() error {
	return e.Cause
}

// NewValkeyError はValkeyErrorを生成する。
func NewValkeyError(operation, key string, cause error) *ValkeyError {
	return &ValkeyError{
		Operation: operation,
		Key:       key,
		Cause:     cause,
	}
}

// DispatchError はエンジンへ送出したメッセージの失敗を表す。
type DispatchError struct {
	Message string // メッセージ名（gsm.auth, msg.execute等）
	Reason  string // エンジンが返したerrorパラメータ
	Cause   error  // 根本原因
}

// Error はerrorインターフェースを実装する。
func (e *DispatchError) Error() string {
	switch {
	case e.Cause != nil:
		return fmt.Sprintf("dispatch error: message=%s, cause=%v", e.Message, e.Cause)
	case e.Reason != "":
		return fmt.Sprintf("dispatch error: message=%s, reason=%s", e.Message, e.Reason)
	default:
		return fmt.Sprintf("dispatch error: message=%s, not processed", e.Message)
	}
}

// Unwrap は根本原因を返す。
func (e *DispatchError) Unwrap() error {
	if e.Cause != nil {
		return e.Cause
	}
	return ErrEngineDispatch
}

// NewDispatchError はDispatchErrorを生成する。
func NewDispatchError(message, reason string, cause error) *DispatchError {
	return &DispatchError{
		Message: message,
		Reason:  reason,
		Cause:   cause,
	}
}
