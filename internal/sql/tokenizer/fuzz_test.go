package tokenizer

import (
	"testing"
)

// FuzzTokenizer checks that scanning always terminates with EOF and that
// positions never move backwards.
func FuzzTokenizer(f *testing.F) {
	f.Add("CREATE TABLE users (id INTEGER PRIMARY KEY);")
	f.Add("SELECT * FROM users WHERE id = ?1;")
	f.Add("INSERT INTO t SET a = @a:int, b = 'x';")
	f.Add("-- comment\nSELECT 1.5e-3;")
	f.Add("/* block */ SELECT .5 . a")
	f.Add("'unterminated")
	f.Add("a\r\nb\rc")

	f.Fuzz(func(t *testing.T, input string) {
		tokens := Tokens("fuzz", input)
		if len(tokens) == 0 || tokens[len(tokens)-1].Kind != EOF {
			t.Fatalf("token stream must end with EOF")
		}
		if len(tokens) > len(input)+1 {
			t.Fatalf("got %d tokens for %d bytes", len(tokens), len(input))
		}
		prev := -1
		for _, tok := range tokens {
			if tok.Pos.Offset < prev {
				t.Fatalf("offset went backwards: %d after %d", tok.Pos.Offset, prev)
			}
			prev = tok.Pos.Offset
		}
	})
}
