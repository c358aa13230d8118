// Package msisdn は電話番号の正規化・比較と新規番号の払い出しを提供する。
package msisdn

import "strings"

// International は国際形式を示すcallernumtype / nature の値。
const International = "international"

// Digits は番号から空白と先頭の"+"を取り除いた数字部分を返す。
func Digits(number string) string {
	s := strings.Join(strings.Fields(number), "")
	return strings.TrimPrefix(s, "+")
}

// Canonical は番号を正規形（"+" + 数字）に変換する。
// 数字部分が空の場合は空文字列を返す。
func Canonical(number string) string {
	d := Digits(number)
	if d == "" {
		return ""
	}
	return "+" + d
}

// IsInternational は番号が"+"付きの国際形式かどうかを返す。
func IsInternational(number string) bool {
	return strings.HasPrefix(strings.TrimSpace(number), "+")
}

// SuffixMatch は2つの番号が末尾一致するかどうかを判定する。
// "+"を除いた数字部分のどちらかが他方の末尾になっていれば一致とみなす。
// 空の番号は何とも一致しない。
func SuffixMatch(a, b string) bool {
	da, db := Digits(a), Digits(b)
	if da == "" || db == "" {
		return false
	}
	return strings.HasSuffix(da, db) || strings.HasSuffix(db, da)
}

// MatchLength は末尾一致した桁数を返す。一致しない場合は0。
func MatchLength(a, b string) int {
	if !SuffixMatch(a, b) {
		return 0
	}
	return min(len(Digits(a)), len(Digits(b)))
}
