package logging

import "log/slog"

// ログフィールド名の定数
const (
	FieldEventID    = "event_id"
	FieldError      = "error"
	FieldIMSI       = "imsi"
	FieldMSISDN     = "msisdn"
	FieldMessage    = "message"
	FieldRetryCount = "retry_count"
	FieldAttempts   = "attempts"
	FieldLatencyMs  = "latency_ms"
)

// WithEventID はイベントIDのslog.Attrを返す。
func WithEventID(eventID string) slog.Attr {
	return slog.String(FieldEventID, eventID)
}

// WithError はエラーのslog.Attrを返す。
func WithError(err error) slog.Attr {
	if err == nil {
		return slog.String(FieldError, "")
	}
	return slog.String(FieldError, err.Error())
}

// WithRetryCount はリトライ回数のslog.Attrを返す。
func WithRetryCount(count int) slog.Attr {
	return slog.Int(FieldRetryCount, count)
}

// WithAttempts は残り試行回数のslog.Attrを返す。
func WithAttempts(n int) slog.Attr {
	return slog.Int(FieldAttempts, n)
}

// Fields はマスキング設定を保持するログフィールド生成器。
type Fields struct {
	masker *Masker
}

// NewFields は新しいFieldsを生成する。
func NewFields(masker *Masker) *Fields {
	if masker == nil {
		masker = NewMasker(false)
	}
	return &Fields{masker: masker}
}

// IMSI はマスキングされたIMSIのslog.Attrを返す。
func (f *Fields) IMSI(imsi string) slog.Attr {
	return slog.String(FieldIMSI, f.masker.IMSI(imsi))
}

// MSISDN はマスキングされた電話番号のslog.Attrを返す。
func (f *Fields) MSISDN(msisdn string) slog.Attr {
	return slog.String(FieldMSISDN, f.masker.MSISDN(msisdn))
}

// Subscriber は加入者ログ用の共通フィールドを返す。
func (f *Fields) Subscriber(eventID, imsi, msisdn string) []any {
	return []any{
		WithEventID(eventID),
		f.IMSI(imsi),
		f.MSISDN(msisdn),
	}
}
