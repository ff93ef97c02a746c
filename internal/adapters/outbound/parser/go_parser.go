package parser

import (
	"fmt"
	"go/ast"
	goparser "go/parser"
	"go/token"
	"strconv"

	"github.com/complyai/comply/internal/domain/textnorm"
)

// GoParser tokenizes Go source through go/ast, so comments never produce
// evidence. Identifiers, import paths and string literals are kept in
// source order.
type GoParser struct{}

func New() *GoParser {
	return &GoParser{}
}

func (p *GoParser) Tokens(filename string, src []byte) (textnorm.Tokens, error) {
	fset := token.NewFileSet()
	file, err := goparser.ParseFile(fset, filename, src, goparser.SkipObjectResolution)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", filename, err)
	}

	out := textnorm.Tokens{}
	ast.Inspect(file, func(n ast.Node) bool {
		switch node := n.(type) {
		case *ast.Ident:
			out = append(out, textnorm.SplitIdentifier(node.Name)...)
		case *ast.BasicLit:
			if node.Kind != token.STRING {
				return true
			}
			out = append(out, textnorm.SplitIdentifier(unquote(node.Value))...)
		}
		return true
	})
	return out, nil
}

func unquote(lit string) string {
	s, err := strconv.Unquote(lit)
	if err != nil {
		return lit
	}
	return s
}
