// Package sqn はMilenage認証のSQN（シーケンス番号）計算を提供する。
package sqn

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	// Mask は48bit SQNのマスク
	Mask = (1 << 48) - 1

	// Step はSQN更新時の加算値
	// SQN = SEQ(43bit) || IND(5bit) なので、SEQ+1 = SQN+32
	Step = 32

	// HexLen はSQNの16進数表記の桁数
	HexLen = 12
)

// Next は現在のSQNからINDを変えずにSEQを1進めた値を返す。
// 48bitを超えた場合は折り返す。
func Next(current uint64) uint64 {
	return (current + Step) & Mask
}

// Resync は端末が報告したSQNから次に使うSQNを返す。
// 端末側のSQNは使用済みなので1ステップ進める。
func Resync(peer uint64) uint64 {
	return Next(peer)
}

// FormatHex はSQNを12桁Hex文字列に変換する。
func FormatHex(v uint64) string {
	return fmt.Sprintf("%012x", v&Mask)
}

// ParseHex は12桁以下のHex文字列をSQNに変換する。
// 空文字列は0として扱う。
func ParseHex(s string) (uint64, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "0x")
	if s == "" {
		return 0, nil
	}
	if len(s) > HexLen {
		return 0, fmt.Errorf("invalid SQN hex length: expected at most %d, got %d", HexLen, len(s))
	}
	return strconv.ParseUint(s, 16, 48)
}

// NextHex は16進数表記のSQNを1ステップ進めた値を返す。
func NextHex(current string) (string, error) {
	v, err := ParseHex(current)
	if err != nil {
		return "", err
	}
	return FormatHex(Next(v)), nil
}
