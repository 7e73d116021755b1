package monitoring

import (
	"fmt"
	"testing"
)

func TestSetLogger(t *testing.T) {
	var got []string
	SetLogger(func(format string, v ...interface{}) {
		got = append(got, fmt.Sprintf(format, v...))
	})
	defer SetLogger(nil)

	Logf("tick %d", 1)
	Debugf("hidden %d", 2)

	SetDebug(true)
	defer SetDebug(false)
	Debugf("shown %d", 3)

	if len(got) != 2 || got[0] != "tick 1" || got[1] != "shown 3" {
		t.Errorf("unexpected log lines: %q", got)
	}
}

func TestSetLogger_NilMutes(t *testing.T) {
	SetLogger(nil)
	// Must not panic
	Logf("nothing %s", "here")
}
