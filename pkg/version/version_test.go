package version

import (
	"strings"
	"testing"
)

func TestString(t *testing.T) {
	s := String()
	if !strings.HasPrefix(s, "mm "+Version) {
		t.Errorf("unexpected version line %q", s)
	}
}
