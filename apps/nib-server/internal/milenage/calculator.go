// Package milenage はプロセス内でのMilenage計算（認証ベクター生成とAUTS検証）を提供する。
package milenage

import (
	"crypto/subtle"
	"errors"
	"fmt"

	"github.com/wmnsk/milenage"
)

// ErrMACSInvalid はAUTSのMAC-S検証に失敗した場合のエラー
var ErrMACSInvalid = errors.New("MAC-S verification failed")

// 鍵・乱数・AUTSのバイト長
const (
	KeyLen  = 16
	RANDLen = 16
	AUTSLen = 14
)

// Vector はチャレンジに必要な計算結果を表す。
type Vector struct {
	XRES []byte // 8 bytes
	AUTN []byte // 16 bytes
	CK   []byte // 16 bytes
	IK   []byte // 16 bytes
}

// Calculator はMilenage計算を行う。
// AMFは固定値（既定0x0000）を使用する。
type Calculator struct {
	amf uint16
}

// NewCalculator は新しいCalculatorを生成する。
func NewCalculator(amf uint16) *Calculator {
	return &Calculator{amf: amf}
}

// Compute はKi/OP/RAND/SQNから期待応答XRESとAUTNを計算する。
func (c *Calculator) Compute(ki, op, randVal []byte, sqn uint64) (*Vector, error) {
	if err := checkLen(ki, op, randVal); err != nil {
		return nil, err
	}

	m := milenage.New(ki, op, randVal, sqn, c.amf)

	// f2345計算（RES, CK, IK, AK）
	res, ck, ik, ak, err := m.F2345()
	if err != nil {
		return nil, fmt.Errorf("failed to compute f2345: %w", err)
	}

	// f1計算（MAC-A）
	macA, err := m.F1()
	if err != nil {
		return nil, fmt.Errorf("failed to compute f1: %w", err)
	}

	// AUTN = (SQN ⊕ AK) || AMF || MAC-A
	autn := make([]byte, 16)
	sqnBytes := SQNToBytes(sqn)
	for i := range 6 {
		autn[i] = sqnBytes[i] ^ ak[i]
	}
	autn[6] = byte(c.amf >> 8)
	autn[7] = byte(c.amf)
	copy(autn[8:], macA)

	return &Vector{XRES: res, AUTN: autn, CK: ck, IK: ik}, nil
}

// ExtractSQN はAUTSから端末側のSQN（SQN_MS）を取り出す。
// AUTS = (SQN_MS ⊕ AK*) || MAC-S
func (c *Calculator) ExtractSQN(ki, op, randVal, auts []byte) (uint64, error) {
	if err := checkLen(ki, op, randVal); err != nil {
		return 0, err
	}
	if len(auts) != AUTSLen {
		return 0, fmt.Errorf("invalid AUTS length: expected %d, got %d", AUTSLen, len(auts))
	}

	m := milenage.New(ki, op, randVal, 0, 0)

	akStar, err := m.F5Star()
	if err != nil {
		return 0, fmt.Errorf("failed to compute f5*: %w", err)
	}

	sqnMS := make([]byte, 6)
	for i := range 6 {
		sqnMS[i] = auts[i] ^ akStar[i]
	}

	// 再同期時のAMFは0x0000固定
	macS, err := m.F1Star(sqnMS, []byte{0x00, 0x00})
	if err != nil {
		return 0, fmt.Errorf("failed to compute f1*: %w", err)
	}
	if subtle.ConstantTimeCompare(auts[6:], macS) != 1 {
		return 0, ErrMACSInvalid
	}

	return BytesToSQN(sqnMS), nil
}

func checkLen(ki, op, randVal []byte) error {
	switch {
	case len(ki) != KeyLen:
		return fmt.Errorf("invalid Ki length: expected %d, got %d", KeyLen, len(ki))
	case len(op) != KeyLen:
		return fmt.Errorf("invalid OP length: expected %d, got %d", KeyLen, len(op))
	case len(randVal) != RANDLen:
		return fmt.Errorf("invalid RAND length: expected %d, got %d", RANDLen, len(randVal))
	}
	return nil
}

// SQNToBytes はSQN（uint64）を6バイトのバイト列に変換する。
func SQNToBytes(v uint64) []byte {
	b := make([]byte, 6)
	for i := range 6 {
		b[i] = byte(v >> (8 * (5 - i)))
	}
	return b
}

// BytesToSQN は6バイトのバイト列をSQN（uint64）に変換する。
func BytesToSQN(b []byte) uint64 {
	var v uint64
	for _, x := range b[:6] {
		v = v<<8 | uint64(x)
	}
	return v
}
