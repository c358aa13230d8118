package msisdn

import (
	"errors"
	"math/rand/v2"
	"sync"
)

// ErrNumberSpaceExhausted は空き番号が見つからない場合のエラー
var ErrNumberSpaceExhausted = errors.New("number space exhausted")

// imsiSeedDigits はIMSIから優先候補を作る際に使う末尾桁数
const imsiSeedDigits = 7

// Allocator は覚えやすい新規番号を払い出す。
// 乱数は表示上の覚えやすさのためだけに使うので暗号学的強度は不要。
type Allocator struct {
	mu          sync.Mutex
	rng         *rand.Rand
	maxAttempts int
}

// NewAllocator は指定シードのAllocatorを生成する。
func NewAllocator(seed1, seed2 uint64, maxAttempts int) *Allocator {
	if maxAttempts <= 0 {
		maxAttempts = 1
	}
	return &Allocator{
		rng:         rand.New(rand.NewPCG(seed1, seed2)),
		maxAttempts: maxAttempts,
	}
}

// NewRandomAllocator はランダムなシードのAllocatorを生成する。
func NewRandomAllocator(maxAttempts int) *Allocator {
	return NewAllocator(rand.Uint64(), rand.Uint64(), maxAttempts)
}

// Allocate はcountryCodeを前置した未使用の番号を返す。
// 最初の候補はIMSI末尾7桁から作るため、同じSIMには同じ番号が付きやすい。
// taken は正規形の番号が使用中かどうかを返す。
func (a *Allocator) Allocate(countryCode, imsi string, taken func(canonical string) bool) (string, error) {
	prefix := Digits(countryCode)

	if imsi != "" {
		seed := imsi
		if len(seed) > imsiSeedDigits {
			seed = seed[len(seed)-imsiSeedDigits:]
		}
		if n := Canonical(prefix + seed); !taken(n) {
			return n, nil
		}
	}

	for range a.maxAttempts {
		if n := Canonical(prefix + a.Pattern()); !taken(n) {
			return n, nil
		}
	}
	return "", ErrNumberSpaceExhausted
}

// Pattern は25種類のパターンから1つを選び、7桁のローカル番号を生成する。
func (a *Allocator) Pattern() string {
	a.mu.Lock()
	defer a.mu.Unlock()

	d := func(n int) string { return string(rune('0' + n)) }
	A := d(2 + a.rng.IntN(8))
	B := d(a.rng.IntN(10))
	C := d(a.rng.IntN(10))
	D := d(a.rng.IntN(10))

	switch a.rng.IntN(25) {
	// 4桁連続
	case 0:
		return A + B + C + D + D + D + D
	case 1:
		return A + B + C + C + C + C + D
	case 2:
		return A + B + B + B + B + C + D
	case 3:
		return A + A + A + A + B + C + D
	// ABCCBA回文
	case 4:
		return A + B + C + C + B + A + D
	case 5:
		return A + B + C + D + D + C + B
	// ABCABC繰り返し
	case 6:
		return A + B + C + A + B + C + D
	case 7:
		return A + B + C + D + B + C + D
	case 8:
		return A + B + C + D + A + B + C
	// AABBCC繰り返し
	case 9:
		return A + A + B + B + C + C + D
	case 10:
		return A + B + B + C + C + D + D
	// AAABBB繰り返し
	case 11:
		return A + A + A + B + B + B + C
	case 12:
		return A + A + A + B + C + C + C
	case 13:
		return A + B + B + B + C + C + C
	// 4桁の昇順
	case 14:
		return "2345" + B + C + D
	case 15:
		return "3456" + B + C + D
	case 16:
		return "4567" + B + C + D
	case 17:
		return "5678" + B + C + D
	case 18:
		return "6789" + B + C + D
	case 19:
		return A + B + C + "1234"
	case 20:
		return A + B + C + "2345"
	case 21:
		return A + B + C + "3456"
	case 22:
		return A + B + C + "4567"
	case 23:
		return A + B + C + "5678"
	default:
		return A + B + C + "6789"
	}
}
