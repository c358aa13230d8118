package msisdn

import "testing"

func TestCanonical(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"15550001014", "+15550001014"},
		{"+15550001014", "+15550001014"},
		{" +1 555 0001014 ", "+15550001014"},
		{"", ""},
		{"+", ""},
	}
	for _, tt := range tests {
		if got := Canonical(tt.in); got != tt.want {
			t.Errorf("Canonical(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSuffixMatch(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want bool
	}{
		{"完全一致", "+15550001014", "+15550001014", true},
		{"プレフィックス有無", "15550001014", "+15550001014", true},
		{"国番号なし", "0001014", "+15550001014", true},
		{"逆方向", "+15550001014", "5550001014", true},
		{"不一致", "+15550001014", "+15550001015", false},
		{"空は一致しない", "", "+15550001014", false},
		{"両方空", "", "", false},
		{"+のみ", "+", "1", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SuffixMatch(tt.a, tt.b); got != tt.want {
				t.Errorf("SuffixMatch(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
			// 対称であること
			if got := SuffixMatch(tt.b, tt.a); got != tt.want {
				t.Errorf("SuffixMatch(%q, %q) = %v, want %v", tt.b, tt.a, got, tt.want)
			}
		})
	}
}

func TestMatchLength(t *testing.T) {
	if got := MatchLength("0001014", "+15550001014"); got != 7 {
		t.Errorf("MatchLength() = %d, want 7", got)
	}
	if got := MatchLength("123", "456"); got != 0 {
		t.Errorf("MatchLength() = %d, want 0", got)
	}
}

func TestIsInternational(t *testing.T) {
	if !IsInternational("+15550001014") {
		t.Error("IsInternational(+...) = false")
	}
	if IsInternational("15550001014") {
		t.Error("IsInternational(digits) = true")
	}
}
