package types

import (
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

var declLexer = lexer.MustStateful(lexer.Rules{
	"Root": {
		{Name: "Whitespace", Pattern: `\s+`},
		{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_]*`},
		{Name: "Int", Pattern: `[0-9]+`},
		{Name: "Punct", Pattern: `[(),]`},
	},
})

// typeDecl is the grammar of a standalone declaration like "DOUBLE PRECISION"
// or "DECIMAL(19, 4)".
//
//nolint:govet // Participle struct tags are DSL, not reflect tags
type typeDecl struct {
	Name      string `@Ident`
	Precision bool   `@"precision"?`
	Args      []int  `( "(" @Int ( "," @Int )? ")" )?`
}

var declParser = participle.MustBuild[typeDecl](
	participle.Lexer(declLexer),
	participle.Elide("Whitespace"),
	participle.CaseInsensitive("Ident"),
)

// ParseDecl parses a type declaration. The returned Decl has its Name set
// to the lower-cased base name; Type is left unresolved.
func ParseDecl(src string) (Decl, error) {
	parsed, err := declParser.ParseString("", src)
	if err != nil {
		return Decl{}, fmt.Errorf("parse type declaration %q: %w", src, err)
	}
	d := Decl{Name: strings.ToLower(parsed.Name)}
	if len(parsed.Args) > 0 {
		d.Size, d.HasSize = parsed.Args[0], true
	}
	if len(parsed.Args) > 1 {
		d.Scale, d.HasScale = parsed.Args[1], true
	}
	return d, nil
}
