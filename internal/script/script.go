// Package script splits SQL scripts into individually executable commands
// without parsing the statements themselves.
package script

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Separator selects an additional dialect command separator.
type Separator int

const (
	// SeparatorNone only splits on ';'.
	SeparatorNone Separator = iota
	// SeparatorGo also splits on a line holding only GO (SQL Server).
	SeparatorGo
	// SeparatorSlash also splits on a line holding only / (Oracle).
	SeparatorSlash
)

func (s Separator) String() string {
	switch s {
	case SeparatorGo:
		return "go"
	case SeparatorSlash:
		return "slash"
	}
	return "none"
}

// ParseSeparator converts a configuration or flag value into a Separator.
// The empty string selects SeparatorNone.
func ParseSeparator(value string) (Separator, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "none":
		return SeparatorNone, nil
	case "go":
		return SeparatorGo, nil
	case "slash", "/":
		return SeparatorSlash, nil
	}
	return SeparatorNone, fmt.Errorf("unknown separator %q (want go, slash or none)", value)
}

// UnbalancedError reports an END that closes more blocks than were opened.
type UnbalancedError struct {
	Line    int
	Column  int
	Offset  int
	Snippet string
}

func (e *UnbalancedError) Error() string {
	return fmt.Sprintf("%d:%d: unbalanced BEGIN/CASE ... END: %s", e.Line, e.Column, e.Snippet)
}

// Option configures a Splitter.
type Option func(*Splitter)

// WithSeparator enables a dialect separator in addition to ';'.
func WithSeparator(sep Separator) Option {
	return func(s *Splitter) {
		s.separator = sep
	}
}

// Splitter splits scripts. It holds only configuration and may be reused
// and shared between goroutines.
type Splitter struct {
	separator Separator
}

// NewSplitter returns a Splitter configured by opts.
func NewSplitter(opts ...Option) *Splitter {
	s := &Splitter{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Split is shorthand for NewSplitter(opts...).Split(src).
func Split(src string, opts ...Option) ([]string, error) {
	return NewSplitter(opts...).Split(src)
}

// Split returns the trimmed, non-empty commands of src in order. A ';' ends a
// command only outside BEGIN/CASE ... END blocks. Comments, quoted text and
// $tag$ bodies never end a command. An END without a matching BEGIN or CASE
// yields an *UnbalancedError and no commands.
func (s *Splitter) Split(src string) ([]string, error) {
	st := &splitState{src: src, separator: s.separator}
	if err := st.run(); err != nil {
		return nil, err
	}
	return st.commands, nil
}

type splitState struct {
	src       string
	separator Separator
	pos       int
	start     int
	depth     int
	commands  []string
}

func (st *splitState) run() error {
	src := st.src
	for st.pos < len(src) {
		c := src[st.pos]
		switch {
		case c == '-' && st.peekAt(st.pos+1) == '-':
			st.skipLineComment()
		case c == '/' && st.peekAt(st.pos+1) == '*':
			st.skipBlockComment()
		case c == '\'' || c == '"' || c == '`':
			st.skipQuoted(c)
		case c == '$':
			st.skipDollarQuoted()
		case c == ';':
			if st.depth == 0 {
				st.emit(st.pos)
				st.start = st.pos + 1
			}
			st.pos++
		case c == '/' && st.separator == SeparatorSlash && st.aloneOnLine(st.pos, st.pos+1):
			st.pos++
			if st.depth == 0 {
				st.emit(st.pos - 1)
				st.start = st.pos
			}
		case isWordStart(c):
			if err := st.word(); err != nil {
				return err
			}
		default:
			st.pos++
		}
	}
	st.emit(len(src))
	return nil
}

func (st *splitState) word() error {
	begin := st.pos
	w := st.scanWord()
	switch strings.ToUpper(w) {
	case "BEGIN", "CASE":
		st.depth++
	case "END":
		switch strings.ToUpper(st.sameLineWord()) {
		case "IF", "LOOP":
			st.skipSameLineWord()
			return nil
		case "CASE":
			st.skipSameLineWord()
		}
		st.depth--
		if st.depth < 0 {
			return st.unbalanced(begin)
		}
	case "GO":
		if st.separator == SeparatorGo && st.depth == 0 && st.aloneOnLine(begin, st.pos) {
			st.emit(begin)
			st.start = st.pos
		}
	}
	return nil
}

func (st *splitState) emit(end int) {
	cmd := strings.TrimSpace(st.src[st.start:end])
	if cmd == "" || commentOnly(cmd) {
		return
	}
	st.commands = append(st.commands, cmd)
}

func (st *splitState) peekAt(i int) byte {
	if i >= len(st.src) {
		return 0
	}
	return st.src[i]
}

func (st *splitState) skipLineComment() {
	if i := strings.IndexByte(st.src[st.pos:], '\n'); i >= 0 {
		st.pos += i
		return
	}
	st.pos = len(st.src)
}

// skipBlockComment stops at the first "*/"; comments do not nest.
func (st *splitState) skipBlockComment() {
	if i := strings.Index(st.src[st.pos+2:], "*/"); i >= 0 {
		st.pos += i + 4
		return
	}
	st.pos = len(st.src)
}

// skipQuoted runs to the closing quote. A doubled quote closes and reopens
// the literal, which leaves it opaque as a whole.
func (st *splitState) skipQuoted(quote byte) {
	if i := strings.IndexByte(st.src[st.pos+1:], quote); i >= 0 {
		st.pos += i + 2
		return
	}
	st.pos = len(st.src)
}

// skipDollarQuoted skips a $tag$ ... $tag$ body. A '$' that does not open a
// tag is consumed alone.
func (st *splitState) skipDollarQuoted() {
	end := st.pos + 1
	for end < len(st.src) && isTagPart(st.src[end]) {
		end++
	}
	if end >= len(st.src) || st.src[end] != '$' || (end > st.pos+1 && isDigit(st.src[st.pos+1])) {
		st.pos++
		return
	}
	tag := st.src[st.pos : end+1]
	body := end + 1
	if i := strings.Index(st.src[body:], tag); i >= 0 {
		st.pos = body + i + len(tag)
		return
	}
	st.pos = len(st.src)
}

func (st *splitState) scanWord() string {
	begin := st.pos
	for st.pos < len(st.src) && isWordPart(st.src[st.pos]) {
		st.pos++
	}
	return st.src[begin:st.pos]
}

// sameLineWord peeks at the next word on the current line.
func (st *splitState) sameLineWord() string {
	i := st.pos
	for i < len(st.src) && (st.src[i] == ' ' || st.src[i] == '\t') {
		i++
	}
	j := i
	for j < len(st.src) && isWordPart(st.src[j]) {
		j++
	}
	if i == j || !isWordStart(st.src[i]) {
		return ""
	}
	return st.src[i:j]
}

func (st *splitState) skipSameLineWord() {
	for st.pos < len(st.src) && (st.src[st.pos] == ' ' || st.src[st.pos] == '\t') {
		st.pos++
	}
	st.scanWord()
}

// aloneOnLine reports whether src[from:to] is the only non-blank text on its
// line.
func (st *splitState) aloneOnLine(from, to int) bool {
	for i := from - 1; i >= 0 && st.src[i] != '\n'; i-- {
		if !isSpace(st.src[i]) {
			return false
		}
	}
	for i := to; i < len(st.src) && st.src[i] != '\n'; i++ {
		if !isSpace(st.src[i]) {
			return false
		}
	}
	return true
}

func (st *splitState) unbalanced(offset int) *UnbalancedError {
	line := 1 + strings.Count(st.src[:offset], "\n")
	lineStart := strings.LastIndexByte(st.src[:offset], '\n') + 1
	lineEnd := len(st.src)
	if i := strings.IndexByte(st.src[offset:], '\n'); i >= 0 {
		lineEnd = offset + i
	}
	snippet := st.src[lineStart:offset] + "[*]" + st.src[offset:lineEnd]
	return &UnbalancedError{
		Line:    line,
		Column:  utf8.RuneCountInString(st.src[lineStart:offset]) + 1,
		Offset:  offset,
		Snippet: strings.TrimSpace(snippet),
	}
}

// commentOnly reports whether cmd holds nothing but comments and blanks.
func commentOnly(cmd string) bool {
	for len(cmd) > 0 {
		cmd = strings.TrimSpace(cmd)
		switch {
		case cmd == "":
			return true
		case strings.HasPrefix(cmd, "--"):
			i := strings.IndexByte(cmd, '\n')
			if i < 0 {
				return true
			}
			cmd = cmd[i+1:]
		case strings.HasPrefix(cmd, "/*"):
			i := strings.Index(cmd[2:], "*/")
			if i < 0 {
				return true
			}
			cmd = cmd[i+4:]
		default:
			return false
		}
	}
	return true
}

func isWordStart(c byte) bool {
	return c == '_' || c >= 0x80 || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}

func isWordPart(c byte) bool {
	return isWordStart(c) || isDigit(c) || c == '$'
}

func isTagPart(c byte) bool {
	return c == '_' || c >= 0x80 || isDigit(c) || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}

func isDigit(c byte) bool { return '0' <= c && c <= '9' }

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n' || c == '\f' || c == '\v'
}
