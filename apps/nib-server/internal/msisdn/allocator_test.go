package msisdn

import (
	"errors"
	"testing"
)

func TestAllocateUsesIMSISuffix(t *testing.T) {
	a := NewAllocator(1, 2, 100)

	got, err := a.Allocate("1", "001990010001014", func(string) bool { return false })
	if err != nil {
		t.Fatalf("Allocate() error = %v", err)
	}
	// 国番号 + IMSI末尾7桁
	if got != "+10001014" {
		t.Errorf("Allocate() = %q, want %q", got, "+10001014")
	}
}

func TestAllocateEmptyCountryCode(t *testing.T) {
	a := NewAllocator(1, 2, 100)

	got, err := a.Allocate("", "001990010001014", func(string) bool { return false })
	if err != nil {
		t.Fatalf("Allocate() error = %v", err)
	}
	if got != "+0001014" {
		t.Errorf("Allocate() = %q, want %q", got, "+0001014")
	}
}

func TestAllocateFallsBackToPattern(t *testing.T) {
	a := NewAllocator(42, 7, 100)
	taken := map[string]bool{"+10001014": true}

	got, err := a.Allocate("1", "001990010001014", func(n string) bool { return taken[n] })
	if err != nil {
		t.Fatalf("Allocate() error = %v", err)
	}
	if got == "+10001014" {
		t.Fatal("Allocate() returned a taken number")
	}
	// "+1" + 7桁
	if len(got) != 9 || got[:2] != "+1" {
		t.Errorf("Allocate() = %q, want +1 followed by 7 digits", got)
	}
}

func TestAllocateNeverReturnsTakenNumber(t *testing.T) {
	a := NewAllocator(3, 4, 10000)
	taken := map[string]bool{}

	// 末尾7桁が同じIMSIを続けて払い出しても衝突しないこと
	for i := range 200 {
		imsi := "00199" + string(rune('0'+i%10)) + "000001014"
		n, err := a.Allocate("1", imsi, func(c string) bool { return taken[c] })
		if err != nil {
			t.Fatalf("Allocate() #%d error = %v", i, err)
		}
		if taken[n] {
			t.Fatalf("Allocate() #%d returned taken number %q", i, n)
		}
		taken[n] = true
	}
}

func TestAllocateExhausted(t *testing.T) {
	a := NewAllocator(5, 6, 50)

	_, err := a.Allocate("1", "001990010001014", func(string) bool { return true })
	if !errors.Is(err, ErrNumberSpaceExhausted) {
		t.Errorf("Allocate() error = %v, want ErrNumberSpaceExhausted", err)
	}
}

func TestPatternShape(t *testing.T) {
	a := NewAllocator(9, 9, 1)

	for range 1000 {
		p := a.Pattern()
		if len(p) != 7 {
			t.Fatalf("Pattern() = %q, want 7 digits", p)
		}
		for _, r := range p {
			if r < '0' || r > '9' {
				t.Fatalf("Pattern() = %q contains non-digit", p)
			}
		}
		// 先頭は2-9のいずれか（"1234"系パターンでも先頭はA）
		if p[0] < '2' {
			t.Fatalf("Pattern() = %q starts with %c", p, p[0])
		}
	}
}

func TestPatternDeterministicWithSeed(t *testing.T) {
	a1 := NewAllocator(11, 22, 1)
	a2 := NewAllocator(11, 22, 1)

	for range 20 {
		if p1, p2 := a1.Pattern(), a2.Pattern(); p1 != p2 {
			t.Fatalf("same seed produced %q and %q", p1, p2)
		}
	}
}
