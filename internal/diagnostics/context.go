// Package diagnostics renders the source lines around a diagnostic with a
// caret under the reported column.
package diagnostics

import (
	"fmt"
	"strings"
)

// Context is a window of source lines around one position.
type Context struct {
	Lines       []string
	StartLine   int
	ErrorLine   int
	ErrorColumn int
}

// Extract returns the lines around line (1-based), contextLines on each
// side. column is counted in runes.
func Extract(content []byte, line, column, contextLines int) (Context, error) {
	lines := splitLines(string(content))
	if line < 1 || line > len(lines) {
		return Context{}, fmt.Errorf("line %d out of range [1, %d]", line, len(lines))
	}
	start := max(line-contextLines, 1)
	end := min(line+contextLines, len(lines))
	return Context{
		Lines:       lines[start-1 : end],
		StartLine:   start,
		ErrorLine:   line,
		ErrorColumn: column,
	}, nil
}

func splitLines(s string) []string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	lines := strings.Split(s, "\n")
	if n := len(lines); n > 1 && lines[n-1] == "" {
		lines = lines[:n-1]
	}
	return lines
}

// IsEmpty reports whether the context has no lines.
func (c Context) IsEmpty() bool { return len(c.Lines) == 0 }

// Format renders the lines with numbers, marking the error line with '>'
// and the error column with '^'.
func (c Context) Format() string {
	if c.IsEmpty() {
		return ""
	}

	var b strings.Builder
	width := len(fmt.Sprint(c.StartLine + len(c.Lines) - 1))
	for i, line := range c.Lines {
		num := c.StartLine + i
		marker := " "
		if num == c.ErrorLine {
			marker = ">"
		}
		fmt.Fprintf(&b, "%s %*d | %s\n", marker, width, num, line)
		if num != c.ErrorLine || c.ErrorColumn < 1 {
			continue
		}
		b.WriteString(strings.Repeat(" ", width+5))
		col := 1
		for _, r := range line {
			if col >= c.ErrorColumn {
				break
			}
			if r == '\t' {
				b.WriteByte('\t')
			} else {
				b.WriteByte(' ')
			}
			col++
		}
		b.WriteString("^\n")
	}
	return b.String()
}

// ErrorLineText returns the line holding the error.
func (c Context) ErrorLineText() string {
	idx := c.ErrorLine - c.StartLine
	if idx >= 0 && idx < len(c.Lines) {
		return c.Lines[idx]
	}
	return ""
}
