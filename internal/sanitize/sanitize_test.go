package sanitize

import "testing"

func TestFilename(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"My Song (Official Video)", "My_Song_Official_Video"},
		{"../../etc/passwd", "etcpasswd"},
		{"  spaced   out  ", "spaced_out"},
		{"track.final", "track.final"},
		{"__hidden__", "hidden"},
		{"...", ""},
		{"naïve café", "nave_caf"},
		{"a/b\\c", "abc"},
	}

	for _, tc := range cases {
		if got := Filename(tc.in); got != tc.want {
			t.Errorf("Filename(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
