// Package model は共通データ構造体を提供する。
package model

import "strings"

// SIM世代タグ
const (
	IMSIType2G = "2G"
	IMSIType3G = "3G"
)

// DefaultSQN はSQN未設定時に使用する初期値（12文字16進数）。
const DefaultSQN = "000000000000"

// Subscriber は加入者情報を表す。
// Valkeyキー: sub:{IMSI}
type Subscriber struct {
	IMSI        string `json:"imsi"`         // 国際移動体加入者識別番号（14-15桁）
	MSISDN      string `json:"msisdn"`       // 電話番号（未設定なら登録時に払い出す）
	Active      bool   `json:"active"`       // 有効フラグ
	Ki          string `json:"-"`            // 秘密鍵（32文字16進数）
	OP          string `json:"-"`            // オペレータ定数（32文字16進数、3Gのみ）
	IMSIType    string `json:"imsi_type"`    // SIM世代（2G/3G）
	ShortNumber string `json:"short_number"` // 短縮番号
	SQN         string `json:"-"`            // シーケンス番号（12文字16進数、3Gのみ）
}

// Is3G は3G SIM（Milenage認証）かどうかを返す。
func (s *Subscriber) Is3G() bool {
	return strings.EqualFold(s.IMSIType, IMSIType3G)
}

// HasKey は認証鍵が設定されているかどうかを返す。
func (s *Subscriber) HasKey() bool {
	return strings.TrimSpace(s.Ki) != ""
}

// Clone はSubscriberのコピーを返す。
func (s *Subscriber) Clone() *Subscriber {
	if s == nil {
		return nil
	}
	c := *s
	return &c
}

// ParseActive は有効フラグ文字列を判定する。
// 1, on, enable, yes, true（大文字小文字区別なし）を有効とみなす。
func ParseActive(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "on", "enable", "yes", "true":
		return true
	}
	return false
}

// NetworkConfig は設定ソースから読み込んだ受け入れポリシーの生データ。
type NetworkConfig struct {
	CountryCode string        // 国番号（MSISDN払い出し時のプレフィックス）
	Regexp      string        // 受け入れ用正規表現（加入者テーブルが空の場合のみ有効）
	Subscribers []*Subscriber // 明示的な加入者テーブル
}
