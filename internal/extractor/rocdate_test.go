package extractor

import (
	"fmt"
	"strconv"
	"strings"
	"testing"
)

func TestConvertROCDate(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"113/06/02", "2024-06-02"},
		{"113/6/2", "2024-06-02"},
		{"99/12/31", "2010-12-31"},
		{"1/01/01", "1912-01-01"},
		{"113/02/29", "2024-02-29"},
		{" 113/06/02 ", "2024-06-02"},
		{"2024/06/02", "2024-06-02"},
		// malformed input comes back unchanged
		{"112/02/29", "112/02/29"},
		{"113/13/01", "113/13/01"},
		{"113/00/10", "113/00/10"},
		{"113/06/00", "113/06/00"},
		{"113/06", "113/06"},
		{"113/ab/02", "113/ab/02"},
		{"113/-6/02", "113/-6/02"},
		{"113-06-02", "113-06-02"},
		{"", ""},
		{"本週", "本週"},
	}
	for _, tt := range tests {
		if got := ConvertROCDate(tt.in); got != tt.want {
			t.Errorf("ConvertROCDate(%q): expected %q, got %q", tt.in, tt.want, got)
		}
	}
}

func TestConvertROCDate_RoundTrip(t *testing.T) {
	for _, year := range []int{1, 50, 99, 100, 113, 500, 999} {
		for _, md := range [][2]int{{1, 1}, {2, 28}, {6, 2}, {12, 31}} {
			in := fmt.Sprintf("%d/%02d/%02d", year, md[0], md[1])
			out := ConvertROCDate(in)

			parts := strings.Split(out, "-")
			if len(parts) != 3 {
				t.Fatalf("%s: expected YYYY-MM-DD, got %q", in, out)
			}
			y, _ := strconv.Atoi(parts[0])
			if y-1911 != year {
				t.Errorf("%s: year %d does not round-trip", in, y)
			}
			if parts[1] != fmt.Sprintf("%02d", md[0]) || parts[2] != fmt.Sprintf("%02d", md[1]) {
				t.Errorf("%s: month/day not preserved in %q", in, out)
			}
		}
	}
}

func TestConvertROCDate_IdempotentOnInvalid(t *testing.T) {
	for _, in := range []string{"112/02/30", "x/y/z", "113//02"} {
		once := ConvertROCDate(in)
		if twice := ConvertROCDate(once); once != in || twice != in {
			t.Errorf("%q: expected unchanged, got %q then %q", in, once, twice)
		}
	}
}
