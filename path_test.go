package diskkit

import (
	"errors"
	"testing"
)

func TestNormalizePath(t *testing.T) {
	cases := map[string]string{
		"/reports/a.txt":  "reports/a.txt",
		"reports/a.txt":   "reports/a.txt",
		"//reports/a.txt": "/reports/a.txt", // only one leading slash is stripped
		"/":               "",
	}
	for in, want := range cases {
		if got := NormalizePath(in); got != want {
			t.Errorf("NormalizePath(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestValidatePath(t *testing.T) {
	valid := []string{"a.txt", "/a.txt", "dir/sub/file", "with space.txt", "weird..name"}
	for _, p := range valid {
		if err := ValidatePath(p); err != nil {
			t.Errorf("ValidatePath(%q) = %v, want nil", p, err)
		}
	}

	invalid := []string{"", "/", "bad\x00byte", string([]byte{0xff, 0xfe})}
	for _, p := range invalid {
		if err := ValidatePath(p); !errors.Is(err, ErrInvalidPath) {
			t.Errorf("ValidatePath(%q) = %v, want ErrInvalidPath", p, err)
		}
	}
}
