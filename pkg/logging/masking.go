// Package logging はログ関連のユーティリティを提供する。
package logging

import "strings"

// MaskIMSI はIMSIをマスキングする。
// 先頭6桁（MCC+MNC相当） + マスク + 末尾1桁
// 例: 001990010001014 → 001990********4
// enabled=false の場合はマスキングせずにそのまま返す。
func MaskIMSI(imsi string, enabled bool) string {
	if !enabled {
		return imsi
	}
	return MaskPartial(imsi, 6, 1, '*')
}

// MaskMSISDN は電話番号をマスキングする。
// 先頭の"+"は保持し、数字部分の先頭3桁と末尾2桁を残す。
// 例: +15550001014 → +155******14
func MaskMSISDN(msisdn string, enabled bool) string {
	if !enabled {
		return msisdn
	}
	if rest, ok := strings.CutPrefix(msisdn, "+"); ok {
		return "+" + MaskPartial(rest, 3, 2, '*')
	}
	return MaskPartial(msisdn, 3, 2, '*')
}

// MaskPartial は文字列の先頭keepPrefix文字と末尾keepSuffix文字を残してマスキングする。
// 文字列が短すぎる場合はそのまま返す。
func MaskPartial(s string, keepPrefix, keepSuffix int, maskChar rune) string {
	runes := []rune(s)
	if len(runes) <= keepPrefix+keepSuffix {
		return s
	}

	for i := keepPrefix; i < len(runes)-keepSuffix; i++ {
		runes[i] = maskChar
	}
	return string(runes)
}

// Masker はマスキング設定を保持する構造体。
type Masker struct {
	enabled bool
}

// NewMasker は新しいMaskerを生成する。
func NewMasker(enabled bool) *Masker {
	return &Masker{enabled: enabled}
}

// IMSI はIMSIをマスキングする。
func (m *Masker) IMSI(imsi string) string {
	if m == nil {
		return imsi
	}
	return MaskIMSI(imsi, m.enabled)
}

// MSISDN は電話番号をマスキングする。
func (m *Masker) MSISDN(msisdn string) string {
	if m == nil {
		return msisdn
	}
	return MaskMSISDN(msisdn, m.enabled)
}

// IsEnabled はマスキングが有効かどうかを返す。
func (m *Masker) IsEnabled() bool {
	return m != nil && m.enabled
}
