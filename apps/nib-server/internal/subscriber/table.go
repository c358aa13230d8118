// Package subscriber は受け入れポリシー（加入者テーブルまたは正規表現）を保持する。
package subscriber

import (
	"fmt"
	"regexp"
	"sort"

	"github.com/oyaguma3/nib-server-poc/apps/nib-server/internal/msisdn"
	"github.com/oyaguma3/nib-server-poc/pkg/apperr"
	"github.com/oyaguma3/nib-server-poc/pkg/model"
)

// Mode は受け入れポリシーの種別
type Mode int

const (
	ModeUnconfigured Mode = iota // テーブルも正規表現もない
	ModeExplicit                 // 加入者テーブル
	ModeRegexp                   // 正規表現（テーブルが空の場合のみ）
)

// String はModeの文字列表現を返す。
func (m Mode) String() string {
	switch m {
	case ModeExplicit:
		return "explicit"
	case ModeRegexp:
		return "regexp"
	default:
		return "unconfigured"
	}
}

// Table は読み込み済みの受け入れポリシー。生成後は変更しない。
type Table struct {
	mode        Mode
	countryCode string
	pattern     *regexp.Regexp
	byIMSI      map[string]*model.Subscriber
	imsis       []string
}

// Build は設定の生データを検証してTableを生成する。
// 加入者が1件以上あれば正規表現は無視する。
func Build(cfg *model.NetworkConfig) (*Table, error) {
	t := &Table{
		countryCode: msisdn.Digits(cfg.CountryCode),
		byIMSI:      make(map[string]*model.Subscriber, len(cfg.Subscribers)),
	}

	owners := make(map[string]string)
	for _, s := range cfg.Subscribers {
		if !validIMSI(s.IMSI) {
			return nil, apperr.NewValidationError("imsi", fmt.Sprintf("%q must be 14-15 digits", s.IMSI), apperr.ErrInvalidIMSI)
		}
		if _, dup := t.byIMSI[s.IMSI]; dup {
			return nil, apperr.NewValidationError("imsi", fmt.Sprintf("%s is listed twice", s.IMSI), apperr.ErrInvalidIMSI)
		}
		if n := msisdn.Canonical(s.MSISDN); n != "" {
			if other, dup := owners[n]; dup {
				return nil, apperr.NewValidationError("msisdn",
					fmt.Sprintf("%s is assigned to both %s and %s", n, other, s.IMSI), apperr.ErrDuplicateMSISDN)
			}
			owners[n] = s.IMSI
		}
		t.byIMSI[s.IMSI] = s.Clone()
		t.imsis = append(t.imsis, s.IMSI)
	}
	sort.Strings(t.imsis)

	switch {
	case len(t.byIMSI) > 0:
		t.mode = ModeExplicit
	case cfg.Regexp != "":
		re, err := regexp.Compile(cfg.Regexp)
		if err != nil {
			return nil, apperr.NewValidationError("regexp", err.Error(), apperr.ErrInvalidRegexp)
		}
		t.mode = ModeRegexp
		t.pattern = re
	default:
		t.mode = ModeUnconfigured
	}
	return t, nil
}

func validIMSI(s string) bool {
	if len(s) < 14 || len(s) > 15 {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// Mode はポリシー種別を返す。
func (t *Table) Mode() Mode { return t.mode }

// CountryCode は国番号（数字のみ）を返す。
func (t *Table) CountryCode() string { return t.countryCode }

// Pattern は受け入れ正規表現を返す。正規表現モード以外では空文字列。
func (t *Table) Pattern() string {
	if t.pattern == nil {
		return ""
	}
	return t.pattern.String()
}

// Len は加入者数を返す。
func (t *Table) Len() int { return len(t.imsis) }

// Lookup は加入者情報のコピーを返す。
func (t *Table) Lookup(imsi string) (*model.Subscriber, bool) {
	s, ok := t.byIMSI[imsi]
	if !ok {
		return nil, false
	}
	return s.Clone(), true
}

// Known はIMSIがテーブルに載っているかどうかを返す。
func (t *Table) Known(imsi string) bool {
	_, ok := t.byIMSI[imsi]
	return ok
}

// Admissible はIMSIの登録を受け入れるかどうかを返す。
// テーブルモードでは有効な加入者、正規表現モードでは一致するIMSIを受け入れる。
func (t *Table) Admissible(imsi string) bool {
	switch t.mode {
	case ModeExplicit:
		s, ok := t.byIMSI[imsi]
		return ok && s.Active
	case ModeRegexp:
		return t.pattern.MatchString(imsi)
	}
	return false
}

// ConfiguredMSISDN は有効な加入者に設定された番号（正規形）を返す。
func (t *Table) ConfiguredMSISDN(imsi string) (string, bool) {
	s, ok := t.byIMSI[imsi]
	if !ok || !s.Active {
		return "", false
	}
	n := msisdn.Canonical(s.MSISDN)
	return n, n != ""
}

// FindByNumber は設定番号が末尾一致するか短縮番号が一致する加入者のIMSIを返す。
// 複数該当する場合はIMSI順で先のものを返す。
func (t *Table) FindByNumber(number string) (string, bool) {
	if msisdn.Digits(number) == "" {
		return "", false
	}
	for _, imsi := range t.imsis {
		s := t.byIMSI[imsi]
		if msisdn.SuffixMatch(s.MSISDN, number) {
			return imsi, true
		}
		if s.ShortNumber != "" && s.ShortNumber == number {
			return imsi, true
		}
	}
	return "", false
}

// ShortNumberOwner は短縮番号の持ち主のIMSIを返す。
func (t *Table) ShortNumberOwner(number string) (string, bool) {
	if number == "" {
		return "", false
	}
	for _, imsi := range t.imsis {
		if t.byIMSI[imsi].ShortNumber == number {
			return imsi, true
		}
	}
	return "", false
}

// MatchesPattern は正規表現モードでIMSIが一致するかどうかを返す。
func (t *Table) MatchesPattern(imsi string) bool {
	return t.mode == ModeRegexp && t.pattern.MatchString(imsi)
}
