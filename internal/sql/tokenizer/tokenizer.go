// Package tokenizer scans SQL source text into a token stream with one token of lookahead.
package tokenizer

import (
	"fmt"
	"io"
	"iter"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

const eofRune = -1

// Tokenizer produces tokens on demand. It is not safe for concurrent use;
// separate instances share no state.
type Tokenizer struct {
	name   string
	src    string
	index  int
	line   int
	column int

	peeked  Token
	hasPeek bool
}

// New reads r fully and returns a tokenizer over its contents. The name is
// only used to prefix diagnostics.
func New(name string, r io.Reader) (*Tokenizer, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		if name == "" {
			return nil, fmt.Errorf("read sql source: %w", err)
		}
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return NewString(name, string(data)), nil
}

// NewString returns a tokenizer over src.
func NewString(name, src string) *Tokenizer {
	return &Tokenizer{
		name:   name,
		src:    src,
		line:   1,
		column: 1,
	}
}

// Name returns the source name given at construction.
func (t *Tokenizer) Name() string { return t.name }

// Peek returns the next token without consuming it.
func (t *Tokenizer) Peek() Token {
	if !t.hasPeek {
		t.peeked = t.scan()
		t.hasPeek = true
	}
	return t.peeked
}

// Next consumes and returns the next token. Once the input is exhausted
// every call returns an EOF token.
func (t *Tokenizer) Next() Token {
	if t.hasPeek {
		t.hasPeek = false
		return t.peeked
	}
	return t.scan()
}

// All returns an iterator over the remaining tokens, ending with EOF.
func (t *Tokenizer) All() iter.Seq[Token] {
	return func(yield func(Token) bool) {
		for {
			tok := t.Next()
			if !yield(tok) || tok.Kind == EOF {
				return
			}
		}
	}
}

// Tokens scans src completely and returns every token including the final EOF.
func Tokens(name, src string) []Token {
	t := NewString(name, src)
	var out []Token
	for tok := range t.All() {
		out = append(out, tok)
	}
	return out
}

func (t *Tokenizer) scan() Token {
	for {
		r := t.peek()
		switch {
		case r == eofRune:
			return Token{Kind: EOF, Pos: t.position()}
		case unicode.IsSpace(r):
			t.advance()
		case r == '-' && t.peekNext() == '-':
			t.skipLineComment()
		case r == '/' && t.peekNext() == '*':
			t.skipBlockComment()
		default:
			return t.scanToken(r)
		}
	}
}

func (t *Tokenizer) scanToken(r rune) Token {
	switch {
	case r == '\'':
		return t.scanQuoted(String)
	case r == '"':
		return t.scanQuoted(Ident)
	case r == '@':
		return t.scanVariable()
	case isIdentStart(r):
		return t.scanWord()
	case isDigit(r) || r == '.':
		return t.scanNumber()
	}
	return t.scanOperator()
}

func (t *Tokenizer) skipLineComment() {
	for {
		r := t.peek()
		if r == eofRune || r == '\n' || r == '\r' {
			return
		}
		t.advance()
	}
}

// skipBlockComment does not nest: the first "*/" closes the comment.
// An unterminated comment runs to the end of input.
func (t *Tokenizer) skipBlockComment() {
	t.advance() // '/'
	t.advance() // '*'
	for {
		r := t.peek()
		if r == eofRune {
			return
		}
		if r == '*' && t.peekNext() == '/' {
			t.advance()
			t.advance()
			return
		}
		t.advance()
	}
}

func (t *Tokenizer) scanQuoted(kind Kind) Token {
	pos := t.position()
	quote := t.advance()
	start := t.index
	for {
		r := t.peek()
		if r == eofRune {
			return Token{Kind: Illegal, Text: t.src[start-1:], Pos: pos}
		}
		if r == quote {
			text := t.src[start:t.index]
			t.advance()
			return Token{Kind: kind, Text: text, Pos: pos}
		}
		t.advance()
	}
}

func (t *Tokenizer) scanWord() Token {
	pos := t.position()
	start := t.index
	for isIdentPart(t.peek()) {
		t.advance()
	}
	text := t.src[start:t.index]
	return Token{Kind: Lookup(text), Text: text, Pos: pos}
}

// scanVariable reads @name with an optional :type suffix. Types may be
// dotted and carry [] suffixes.
func (t *Tokenizer) scanVariable() Token {
	pos := t.position()
	t.advance() // '@'
	if !isIdentStart(t.peek()) {
		return Token{Kind: Illegal, Text: "@", Pos: pos}
	}
	start := t.index
	for isIdentPart(t.peek()) {
		t.advance()
	}
	tok := Token{Kind: Variable, Text: t.src[start:t.index], Pos: pos}
	if t.peek() != ':' || !isIdentStart(t.peekNext()) {
		return tok
	}
	t.advance() // ':'
	typeStart := t.index
	for {
		r := t.peek()
		switch {
		case isIdentPart(r):
			t.advance()
		case r == '.' && isIdentStart(t.peekNext()):
			t.advance()
		case r == '[' && t.peekNext() == ']':
			t.advance()
			t.advance()
		default:
			tok.TypeName = t.src[typeStart:t.index]
			return tok
		}
	}
}

// scanNumber reads the whole lexeme first and parses it afterwards. A dot
// that neither follows nor precedes a digit is a Period token.
func (t *Tokenizer) scanNumber() Token {
	pos := t.position()
	start := t.index
	t.skipDigits()
	isFloat := false
	if t.peek() == '.' {
		if t.index == start && !isDigit(t.peekNext()) {
			t.advance()
			return Token{Kind: Period, Text: ".", Pos: pos}
		}
		t.advance()
		t.skipDigits()
		isFloat = true
	}
	if r := t.peek(); (r == 'e' || r == 'E') && t.exponentFollows() {
		t.advance()
		if s := t.peek(); s == '+' || s == '-' {
			t.advance()
		}
		t.skipDigits()
		isFloat = true
	}
	lexeme := t.src[start:t.index]
	tok := Token{Kind: Integer, Text: lexeme, Pos: pos}
	normalized := normalizeNumber(lexeme)
	if d, err := decimal.NewFromString(normalized); err == nil {
		tok.Decimal = d
	}
	if !isFloat {
		n, err := strconv.ParseInt(lexeme, 10, 64)
		if err == nil {
			tok.Int = n
			tok.Float = float64(n)
			return tok
		}
	}
	// Integers that overflow int64 degrade to Float. Out of range values
	// come back from ParseFloat as ±Inf.
	tok.Kind = Float
	tok.Float, _ = strconv.ParseFloat(normalized, 64)
	return tok
}

func (t *Tokenizer) exponentFollows() bool {
	rest := t.src[t.index:]
	if len(rest) < 2 {
		return false
	}
	i := 1
	if rest[i] == '+' || rest[i] == '-' {
		i++
	}
	return i < len(rest) && rest[i] >= '0' && rest[i] <= '9'
}

func normalizeNumber(lexeme string) string {
	if strings.HasPrefix(lexeme, ".") {
		lexeme = "0" + lexeme
	}
	mantissa, exp, hasExp := strings.Cut(strings.ToLower(lexeme), "e")
	if strings.HasSuffix(mantissa, ".") {
		mantissa += "0"
	}
	if hasExp {
		return mantissa + "e" + exp
	}
	return mantissa
}

func (t *Tokenizer) scanOperator() Token {
	pos := t.position()
	start := t.index
	r := t.advance()
	kind := Illegal
	switch r {
	case '(':
		kind = LParen
	case ')':
		kind = RParen
	case ',':
		kind = Comma
	case ';':
		kind = Semicolon
	case ':':
		kind = Colon
	case '?':
		kind = Question
	case '+':
		kind = Add
	case '-':
		kind = Sub
	case '*':
		kind = Mul
	case '/':
		kind = Quo
	case '%':
		kind = Rem
	case '=':
		kind = Eq
	case '<':
		kind = Lss
		switch t.peek() {
		case '=':
			t.advance()
			kind = Leq
		case '>':
			t.advance()
			kind = Neq
		}
	case '>':
		kind = Gtr
		if t.peek() == '=' {
			t.advance()
			kind = Geq
		}
	case '!':
		if t.peek() == '=' {
			t.advance()
			kind = Neq
		}
	case '&':
		if t.peek() == '&' {
			t.advance()
			kind = Overlap
		}
	case '|':
		if t.peek() == '|' {
			t.advance()
			kind = Concat
		}
	}
	return Token{Kind: kind, Text: t.src[start:t.index], Pos: pos}
}

func (t *Tokenizer) skipDigits() {
	for isDigit(t.peek()) {
		t.advance()
	}
}

func (t *Tokenizer) position() Position {
	return Position{Line: t.line, Column: t.column, Offset: t.index}
}

func (t *Tokenizer) peek() rune {
	if t.index >= len(t.src) {
		return eofRune
	}
	r, _ := utf8.DecodeRuneInString(t.src[t.index:])
	return r
}

func (t *Tokenizer) peekNext() rune {
	if t.index >= len(t.src) {
		return eofRune
	}
	_, size := utf8.DecodeRuneInString(t.src[t.index:])
	if t.index+size >= len(t.src) {
		return eofRune
	}
	r, _ := utf8.DecodeRuneInString(t.src[t.index+size:])
	return r
}

// advance consumes one rune. "\r\n" and a lone "\r" count as a single line break.
func (t *Tokenizer) advance() rune {
	if t.index >= len(t.src) {
		return eofRune
	}
	r, size := utf8.DecodeRuneInString(t.src[t.index:])
	t.index += size
	switch r {
	case '\r':
		if t.index < len(t.src) && t.src[t.index] == '\n' {
			t.index++
		}
		t.line++
		t.column = 1
		return '\n'
	case '\n':
		t.line++
		t.column = 1
	default:
		t.column++
	}
	return r
}

func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return isIdentStart(r) || isDigit(r)
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}
