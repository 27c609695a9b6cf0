package selfupdate

import "testing"

func TestIsNewer(t *testing.T) {
	cases := []struct {
		current, latest string
		want             bool
	}{
		{"v2026.01.01", "v2026.02.01", true},
		{"v2026.02.01", "v2026.02.01", false},
		{"", "v2026.02.01", false},
		{"v2026.02.01", "", false},
	}
	for _, c := range cases {
		if got := isNewer(c.current, c.latest); got != c.want {
			t.Errorf("isNewer(%q, %q) = %v, want %v", c.current, c.latest, got, c.want)
		}
	}
}
