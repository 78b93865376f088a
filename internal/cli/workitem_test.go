package cli

import (
	"errors"
	"testing"

	"github.com/valter-silva-au/lane/internal/core"
)

func TestParseID(t *testing.T) {
	cases := []struct {
		in     string
		want   int
		wantOK bool
	}{
		{"1", 1, true},
		{"42", 42, true},
		{"0", 0, false},
		{"-3", 0, false},
		{"abc", 0, false},
		{"1.5", 0, false},
		{"", 0, false},
	}
	for _, c := range cases {
		got, err := parseID(c.in)
		if c.wantOK {
			if err != nil {
				t.Errorf("parseID(%q) unexpected error: %v", c.in, err)
			}
			if got != c.want {
				t.Errorf("parseID(%q) = %d, want %d", c.in, got, c.want)
			}
			continue
		}
		if err == nil {
			t.Errorf("parseID(%q) expected an error", c.in)
			continue
		}
		// Bad IDs are precondition failures, not I/O errors, so they must
		// map to exit code 1.
		var verr *core.ValidationError
		if !errors.As(err, &verr) {
			t.Errorf("parseID(%q) expected *core.ValidationError, got %T", c.in, err)
		}
	}
}
