// Package path implements structured paths into state documents: parsing
// of dotted string paths, structural reads with an existence flag, and
// persistent (copy-on-write) edits that never mutate the input document.
package path

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// pathAST is the parsed form of a dotted string path such as
// "user.cards[2].name" or `deck["draw pile"]`.
type pathAST struct {
	Elements []*elementAST `parser:"@@ ( '.' @@ )*"`
}

type elementAST struct {
	Name       string          `parser:"@Ident"`
	Subscripts []*subscriptAST `parser:"( '[' @@ ']' )*"`
}

type subscriptAST struct {
	Index     *int    `parser:"@Int"`
	StringKey *string `parser:"| @String"`
}

var pathLexer = lexer.MustStateful(lexer.Rules{
	"Root": {
		{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_-]*`},
		{Name: "Int", Pattern: `[0-9]+`},
		{Name: "String", Pattern: `"[^"]*"`},
		{Name: "Punct", Pattern: `[.\[\]]`},
	},
})

var pathParser = participle.MustBuild[pathAST](
	participle.Lexer(pathLexer),
)

// Parse converts a dotted string path into structured segments: strings
// for map keys, ints for slice indices. A quoted subscript is a map key
// that may contain characters an identifier cannot.
func Parse(pathStr string) ([]any, error) {
	if pathStr == "" {
		return nil, fmt.Errorf("empty path")
	}

	ast, err := pathParser.ParseString("", pathStr)
	if err != nil {
		return nil, fmt.Errorf("parsing path %q: %w", pathStr, err)
	}

	var segments []any
	for _, elem := range ast.Elements {
		segments = append(segments, elem.Name)
		for _, sub := range elem.Subscripts {
			switch {
			case sub.Index != nil:
				segments = append(segments, *sub.Index)
			case sub.StringKey != nil:
				segments = append(segments, strings.Trim(*sub.StringKey, `"`))
			}
		}
	}
	return segments, nil
}

// Render is the inverse of Parse, used for reporting residual paths.
func Render(segments []any) string {
	var b strings.Builder
	for i, seg := range segments {
		switch s := seg.(type) {
		case int:
			b.WriteString("[" + strconv.Itoa(s) + "]")
		case string:
			if i > 0 {
				b.WriteString(".")
			}
			b.WriteString(s)
		default:
			if i > 0 {
				b.WriteString(".")
			}
			fmt.Fprintf(&b, "%v", seg)
		}
	}
	return b.String()
}
