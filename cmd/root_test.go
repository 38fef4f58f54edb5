package cmd

import "testing"

func TestParsePTS(t *testing.T) {
	tests := []struct {
		arg  string
		want int
	}{
		{"4200", 4200},
		{"-150", -150},
		{"+20", 20},
		{" 0 ", 0},
	}
	for _, tt := range tests {
		got, err := parsePTS(tt.arg)
		if err != nil {
			t.Errorf("parsePTS(%q): %v", tt.arg, err)
			continue
		}
		if got != tt.want {
			t.Errorf("parsePTS(%q) = %d, want %d", tt.arg, got, tt.want)
		}
	}

	for _, bad := range []string{"", "4k", "1.5"} {
		if _, err := parsePTS(bad); err == nil {
			t.Errorf("parsePTS(%q) should fail", bad)
		}
	}
}
