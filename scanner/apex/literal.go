package apex

import (
	"strings"
)

// QueryLiteral is one inline [SELECT ...] query expression found in the
// source, with byte and line coordinates into the original text.
type QueryLiteral struct {
	Text      string // query text without the enclosing brackets
	StartByte int
	EndByte   int // exclusive, past the closing bracket
	StartLine int // 1-based
	EndLine   int
}

// ExtractQueryLiterals lexically locates every inline query literal in the
// source. The scan is comment- and string-aware: bracket expressions inside
// line comments, block comments or single-quoted strings are ignored, and a
// bracket only opens a literal when its first token is SELECT.
func ExtractQueryLiterals(source []byte) []QueryLiteral {
	var literals []QueryLiteral
	line := 1

	for i := 0; i < len(source); i++ {
		switch {
		case source[i] == '\n':
			line++
		case source[i] == '/' && i+1 < len(source) && source[i+1] == '/':
			for i < len(source) && source[i] != '\n' {
				i++
			}
			if i < len(source) {
				line++
			}
		case source[i] == '/' && i+1 < len(source) && source[i+1] == '*':
			i += 2
			for i+1 < len(source) && !(source[i] == '*' && source[i+1] == '/') {
				if source[i] == '\n' {
					line++
				}
				i++
			}
			i++
		case source[i] == '\'':
			i = skipString(source, i)
		case source[i] == '[' && beginsSelect(source[i+1:]):
			literal, end, endLine := scanQueryLiteral(source, i, line)
			literals = append(literals, literal)
			line = endLine
			i = end - 1
		}
	}
	return literals
}

// MaskQueryLiterals returns a copy of the source where each query literal is
// replaced by a numeric placeholder padded with spaces. Byte length and line
// breaks are preserved so every AST coordinate of the masked parse maps
// one-to-one onto the original text.
func MaskQueryLiterals(source []byte, literals []QueryLiteral) []byte {
	masked := make([]byte, len(source))
	copy(masked, source)
	for _, literal := range literals {
		masked[literal.StartByte] = '0'
		for i := literal.StartByte + 1; i < literal.EndByte && i < len(masked); i++ {
			if masked[i] != '\n' {
				masked[i] = ' '
			}
		}
	}
	return masked
}

// scanQueryLiteral consumes a bracketed query starting at the opening bracket
// and returns the literal plus the byte offset and line just past it.
func scanQueryLiteral(source []byte, start, startLine int) (QueryLiteral, int, int) {
	depth := 0
	line := startLine
	i := start
	for ; i < len(source); i++ {
		switch source[i] {
		case '\n':
			line++
		case '\'':
			i = skipString(source, i)
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				i++
				return QueryLiteral{
					Text:      strings.TrimSpace(string(source[start+1 : i-1])),
					StartByte: start,
					EndByte:   i,
					StartLine: startLine,
					EndLine:   line,
				}, i, line
			}
		}
	}
	// Unbalanced bracket: take everything to EOF so the scan still terminates.
	return QueryLiteral{
		Text:      strings.TrimSpace(string(source[start+1:])),
		StartByte: start,
		EndByte:   len(source),
		StartLine: startLine,
		EndLine:   line,
	}, len(source), line
}

// skipString advances past a single-quoted string literal starting at idx and
// returns the index of its closing quote. An unterminated string stops just
// before the newline so line accounting stays correct.
func skipString(source []byte, idx int) int {
	i := idx + 1
	for i < len(source) {
		if source[i] == '\\' {
			i += 2
			continue
		}
		if source[i] == '\n' {
			return i - 1
		}
		if source[i] == '\'' {
			return i
		}
		i++
	}
	return len(source) - 1
}

// beginsSelect reports whether the text after an opening bracket starts with
// the SELECT keyword.
func beginsSelect(rest []byte) bool {
	i := 0
	for i < len(rest) && (rest[i] == ' ' || rest[i] == '\t' || rest[i] == '\n' || rest[i] == '\r') {
		i++
	}
	if i+6 > len(rest) {
		return false
	}
	return strings.EqualFold(string(rest[i:i+6]), "select")
}
