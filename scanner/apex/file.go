// Package apex turns one class source into the traversable form the
// detectors consume. Inline query literals are extracted lexically, masked
// with placeholders of identical byte length, and the masked text is parsed
// with tree-sitter so structural facts (methods, loops, declarations) carry
// coordinates valid for the original source.
package apex

import (
	"context"
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/java"

	"github.com/apexinsight/apexinsight/scanner/soql"
)

// declarationWindow is the maximum distance in source lines between a
// variable declaration and a query for the two to be associated. A proximity
// heuristic, not def-use linkage.
const declarationWindow = 2

// File is the parsed form of one class under analysis. It is built fresh per
// scan and never shared: the underlying parser is not reentrant.
type File struct {
	ClassName string
	Source    []byte
	Root      *sitter.Node
	Queries   []*Query
	Methods   []*MethodSpan

	tree         *sitter.Tree
	masked       []byte
	lines        []string
	loopBodies   []span
	declarations []VarDecl
	classFields  map[string]bool
	returns      []varRef
}

// Query is one inline query expression with its structural context resolved.
type Query struct {
	Text             string
	StartLine        int
	EndLine          int
	StartByte        int
	EndByte          int
	MethodName       string
	InLoop           bool
	Fields           []string
	AssignedVariable string // empty unless a declaration sits within the window
	DeclarationLine  int
}

// MethodSpan locates one method or constructor in the source.
type MethodSpan struct {
	Name      string
	StartByte int
	EndByte   int
	StartLine int
	EndLine   int
}

type span struct {
	startByte int
	endByte   int
}

// VarDecl is a local or loop variable declaration.
type VarDecl struct {
	Name      string
	Line      int
	StartByte int
}

type varRef struct {
	name      string
	startByte int
}

// Parse builds a File from raw class source. A fresh parser is constructed on
// every call so concurrent scans of different files stay independent.
func Parse(ctx context.Context, className string, source []byte) (*File, error) {
	literals := ExtractQueryLiterals(source)
	masked := MaskQueryLiterals(source, literals)

	parser := sitter.NewParser()
	parser.SetLanguage(java.GetLanguage())

	tree, err := parser.ParseCtx(ctx, nil, masked)
	if err != nil {
		return nil, fmt.Errorf("failed to parse class %s: %w", className, err)
	}

	file := &File{
		ClassName:   className,
		Source:      source,
		Root:        tree.RootNode(),
		tree:        tree,
		masked:      masked,
		lines:       strings.Split(string(source), "\n"),
		classFields: map[string]bool{},
	}
	file.collect(file.Root)
	file.buildQueries(literals)
	return file, nil
}

// collect walks the masked tree once, recording method spans, loop body
// spans, variable declarations, class fields and returned identifiers.
func (f *File) collect(node *sitter.Node) {
	switch node.Type() {
	case "method_declaration", "constructor_declaration":
		if nameNode := node.ChildByFieldName("name"); nameNode != nil {
			f.Methods = append(f.Methods, &MethodSpan{
				Name:      nameNode.Content(f.masked),
				StartByte: int(node.StartByte()),
				EndByte:   int(node.EndByte()),
				StartLine: int(node.StartPoint().Row) + 1,
				EndLine:   int(node.EndPoint().Row) + 1,
			})
		}
	case "for_statement", "enhanced_for_statement", "while_statement", "do_statement":
		if bodyNode := node.ChildByFieldName("body"); bodyNode != nil {
			f.loopBodies = append(f.loopBodies, span{
				startByte: int(bodyNode.StartByte()),
				endByte:   int(bodyNode.EndByte()),
			})
		}
	case "local_variable_declaration":
		for i := uint32(0); i < node.NamedChildCount(); i++ {
			child := node.NamedChild(int(i))
			if child.Type() != "variable_declarator" {
				continue
			}
			if nameNode := child.ChildByFieldName("name"); nameNode != nil {
				f.declarations = append(f.declarations, VarDecl{
					Name:      nameNode.Content(f.masked),
					Line:      int(node.StartPoint().Row) + 1,
					StartByte: int(node.StartByte()),
				})
			}
		}
	case "field_declaration":
		for i := uint32(0); i < node.NamedChildCount(); i++ {
			child := node.NamedChild(int(i))
			if child.Type() != "variable_declarator" {
				continue
			}
			if nameNode := child.ChildByFieldName("name"); nameNode != nil {
				f.classFields[strings.ToLower(nameNode.Content(f.masked))] = true
			}
		}
	case "return_statement":
		if node.NamedChildCount() > 0 {
			expr := node.NamedChild(0)
			if expr.Type() == "identifier" {
				f.returns = append(f.returns, varRef{
					name:      strings.ToLower(expr.Content(f.masked)),
					startByte: int(node.StartByte()),
				})
			}
		}
	}

	if node.Type() == "enhanced_for_statement" {
		// The loop variable is a declaration too.
		if nameNode := node.ChildByFieldName("name"); nameNode != nil {
			f.declarations = append(f.declarations, VarDecl{
				Name:      nameNode.Content(f.masked),
				Line:      int(node.StartPoint().Row) + 1,
				StartByte: int(node.StartByte()),
			})
		}
	}

	for i := uint32(0); i < node.NamedChildCount(); i++ {
		f.collect(node.NamedChild(int(i)))
	}
}

// buildQueries resolves each extracted literal against the collected
// structural facts.
func (f *File) buildQueries(literals []QueryLiteral) {
	for _, literal := range literals {
		query := &Query{
			Text:      literal.Text,
			StartLine: literal.StartLine,
			EndLine:   literal.EndLine,
			StartByte: literal.StartByte,
			EndByte:   literal.EndByte,
			Fields:    soql.ExtractFields(literal.Text),
			InLoop:    f.inLoop(literal.StartByte),
		}
		if method := f.EnclosingMethod(literal.StartByte); method != nil {
			query.MethodName = method.Name
		}
		if decl, ok := f.nearestDeclaration(literal); ok {
			query.AssignedVariable = decl.Name
			query.DeclarationLine = decl.Line
		}
		f.Queries = append(f.Queries, query)
	}
}

// EnclosingMethod returns the innermost method span containing the byte
// offset, or nil for top-of-class code.
func (f *File) EnclosingMethod(byteOffset int) *MethodSpan {
	var innermost *MethodSpan
	for _, method := range f.Methods {
		if byteOffset < method.StartByte || byteOffset >= method.EndByte {
			continue
		}
		if innermost == nil || method.EndByte-method.StartByte < innermost.EndByte-innermost.StartByte {
			innermost = method
		}
	}
	return innermost
}

func (f *File) inLoop(byteOffset int) bool {
	for _, body := range f.loopBodies {
		if byteOffset >= body.startByte && byteOffset < body.endByte {
			return true
		}
	}
	return false
}

// nearestDeclaration finds the last variable declaration preceding the query
// whose line falls within the declaration window.
func (f *File) nearestDeclaration(literal QueryLiteral) (VarDecl, bool) {
	var best VarDecl
	found := false
	for _, decl := range f.declarations {
		if decl.StartByte >= literal.StartByte {
			continue
		}
		distance := literal.StartLine - decl.Line
		if distance < 0 || distance > declarationWindow {
			continue
		}
		if !found || decl.StartByte > best.StartByte {
			best = decl
			found = true
		}
	}
	return best, found
}

// IsClassField reports whether name is declared as a class-level field.
func (f *File) IsClassField(name string) bool {
	return f.classFields[strings.ToLower(name)]
}

// IsReturned reports whether the variable is returned anywhere inside the
// given method.
func (f *File) IsReturned(method *MethodSpan, varName string) bool {
	if method == nil || varName == "" {
		return false
	}
	lowered := strings.ToLower(varName)
	for _, ref := range f.returns {
		if ref.name != lowered {
			continue
		}
		if ref.startByte >= method.StartByte && ref.startByte < method.EndByte {
			return true
		}
	}
	return false
}

// CodeAfter returns the original source between the end of the query and the
// end of its enclosing method (or the end of file when the query sits outside
// any method).
func (f *File) CodeAfter(query *Query) string {
	end := len(f.Source)
	if method := f.EnclosingMethod(query.StartByte); method != nil {
		end = method.EndByte
	}
	if query.EndByte >= end {
		return ""
	}
	return string(f.Source[query.EndByte:end])
}

// LaterQueries returns the query texts that follow the given query within the
// same method.
func (f *File) LaterQueries(query *Query) []string {
	method := f.EnclosingMethod(query.StartByte)
	var later []string
	for _, other := range f.Queries {
		if other.StartByte <= query.StartByte {
			continue
		}
		otherMethod := f.EnclosingMethod(other.StartByte)
		if method == nil || otherMethod == nil || otherMethod != method {
			continue
		}
		later = append(later, other.Text)
	}
	return later
}

// Line returns the 1-based source line, trimmed, or an empty string when out
// of range.
func (f *File) Line(number int) string {
	if number < 1 || number > len(f.lines) {
		return ""
	}
	return strings.TrimSpace(f.lines[number-1])
}

// Snippet returns the trimmed source text of the line range covered by the
// query, used as the codeBefore excerpt on findings.
func (f *File) Snippet(startLine, endLine int) string {
	if startLine < 1 {
		startLine = 1
	}
	if endLine > len(f.lines) {
		endLine = len(f.lines)
	}
	if startLine > endLine {
		return ""
	}
	var parts []string
	for i := startLine; i <= endLine; i++ {
		parts = append(parts, strings.TrimSpace(f.lines[i-1]))
	}
	return strings.Join(parts, "\n")
}
