package sqn

import "testing"

func TestNext(t *testing.T) {
	tests := []struct {
		name    string
		current uint64
		want    uint64
	}{
		{"zero", 0, 32},
		{"normal", 32, 64},
		{"IND保持", 0x21, 0x41},
		{"上限直前", Mask - 32, Mask},
		{"折り返し", Mask, 31},
		{"折り返しIND0", Mask - 31, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Next(tt.current); got != tt.want {
				t.Errorf("Next(%#x) = %#x, want %#x", tt.current, got, tt.want)
			}
		})
	}
}

func TestResync(t *testing.T) {
	if got := Resync(0x1000); got != 0x1020 {
		t.Errorf("Resync(0x1000) = %#x, want 0x1020", got)
	}
	if got := Resync(Mask); got != 31 {
		t.Errorf("Resync(Mask) = %#x, want 31", got)
	}
}

func TestMonotonicModulo(t *testing.T) {
	// 連続する更新は2^48を法として単調増加する
	v := uint64(0)
	for range 1000 {
		n := Next(v)
		if (n-v)&Mask != Step {
			t.Fatalf("Next(%#x) = %#x, diff != %d", v, n, Step)
		}
		v = n
	}
}

func TestFormatHex(t *testing.T) {
	tests := []struct {
		v    uint64
		want string
	}{
		{0, "000000000000"},
		{32, "000000000020"},
		{Mask, "ffffffffffff"},
	}
	for _, tt := range tests {
		if got := FormatHex(tt.v); got != tt.want {
			t.Errorf("FormatHex(%#x) = %q, want %q", tt.v, got, tt.want)
		}
	}
}

func TestParseHex(t *testing.T) {
	tests := []struct {
		in      string
		want    uint64
		wantErr bool
	}{
		{"000000000020", 32, false},
		{"FFFFFFFFFFFF", Mask, false},
		{"20", 32, false},
		{"0x20", 32, false},
		{"", 0, false},
		{"0000000000200", 0, true},
		{"zz", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseHex(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseHex(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseHex(%q) = %#x, want %#x", tt.in, got, tt.want)
			}
		})
	}
}

func TestNextHex(t *testing.T) {
	got, err := NextHex("000000000000")
	if err != nil {
		t.Fatalf("NextHex() error = %v", err)
	}
	if got != "000000000020" {
		t.Errorf("NextHex() = %q, want %q", got, "000000000020")
	}

	if _, err := NextHex("not-hex"); err == nil {
		t.Error("NextHex(invalid) expected error")
	}
}
