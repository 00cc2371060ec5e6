package script

import (
	"errors"
	"strings"
	"testing"
)

// FuzzSplit checks that splitting terminates and either fails with an
// *UnbalancedError or returns trimmed, non-empty commands.
func FuzzSplit(f *testing.F) {
	f.Add("SELECT 1; SELECT 2", 0)
	f.Add("BEGIN SELECT 1; END;", 0)
	f.Add("END;", 0)
	f.Add("SELECT 'unterminated", 0)
	f.Add("DO $$ BEGIN $$", 0)
	f.Add("/* open comment", 0)
	f.Add("A\nGO\nB", 1)
	f.Add("A\n/\nB", 2)
	f.Add("$", 0)

	f.Fuzz(func(t *testing.T, src string, sep int) {
		cmds, err := Split(src, WithSeparator(Separator(sep%3)))
		if err != nil {
			var unbalanced *UnbalancedError
			if !errors.As(err, &unbalanced) {
				t.Fatalf("unexpected error type %T: %v", err, err)
			}
			return
		}
		for _, cmd := range cmds {
			if cmd == "" || cmd != strings.TrimSpace(cmd) {
				t.Fatalf("command %q is not trimmed or is empty", cmd)
			}
		}
	})
}
