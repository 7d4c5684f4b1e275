package util

import (
	"errors"
	"testing"
)

func TestSanitizeFileName(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "scrape_failure_123.png", "scrape_failure_123.png"},
		{"path separators", "a/b\\c.png", "a_b_c.png"},
		{"whitespace", "  my shot.png ", "my_shot.png"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := SanitizeFileName(tc.in)
			if err != nil {
				t.Fatalf("SanitizeFileName(%q): %v", tc.in, err)
			}
			if got != tc.want {
				t.Fatalf("SanitizeFileName(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestSanitizeFileNameRejects(t *testing.T) {
	for _, in := range []string{"", "   ", "../../etc/passwd"} {
		if _, err := SanitizeFileName(in); !errors.Is(err, ErrInvalidFileName) {
			t.Fatalf("SanitizeFileName(%q) err = %v, want ErrInvalidFileName", in, err)
		}
	}
}
