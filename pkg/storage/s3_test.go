package storage

import "testing"

func TestEncodeKeyKeepsSeparators(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"cases/2000/docs/w2.pdf", "cases/2000/docs/w2.pdf"},
		{"cases/2000/docs/w2-acme (2).pdf", "cases/2000/docs/w2-acme%20(2).pdf"},
		{"cases/2000/docs/100% done.pdf", "cases/2000/docs/100%25%20done.pdf"},
	}
	for _, tc := range cases {
		if got := encodeKey(tc.in); got != tc.want {
			t.Fatalf("encodeKey(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
