package clone

import (
	"sort"

	"github.com/clonewatch/clonewatch/pkg/parser"
)

// semanticFormats maps a clone.Format to the tree-sitter language it can
// be parsed with for semantic-token enrichment. Formats absent from this
// map simply skip enrichment; Tokenize still succeeds.
var semanticFormats = map[Format]parser.Language{
	FormatGo:         parser.LangGo,
	FormatPython:     parser.LangPython,
	FormatJavaScript: parser.LangJavaScript,
	FormatTypeScript: parser.LangTypeScript,
	FormatTSX:        parser.LangTSX,
	FormatJava:       parser.LangJava,
}

// EnrichWithSemanticTokens appends a zero-width TokenSemantic marker at
// the start of the line on which each function/class/struct declaration
// the tree-sitter grammar recognizes for format begins (§4.1 "Language grammars may additionally
// produce semantic tokens"). Markers participate in hashing under modes
// that don't collapse TokenSemantic to empty, letting two structurally
// identical-but-renamed bodies still line up at the same frame boundary.
// A parse failure or unsupported format is not an error: enrichment is
// best-effort and Tokenize's own result is always usable without it.
func EnrichWithSemanticTokens(source string, format Format, tokens []Token) []Token {
	lang, ok := semanticFormats[format]
	if !ok {
		return tokens
	}

	p := parser.New()
	defer p.Close()

	result, err := p.Parse([]byte(source), lang, "")
	if err != nil {
		return tokens
	}

	var markers []Token
	for _, fn := range parser.GetFunctions(result) {
		markers = append(markers, semanticMarker(fn.StartLine, byteOffsetForLine(source, fn.StartLine), format))
	}
	for _, cls := range parser.GetClasses(result) {
		markers = append(markers, semanticMarker(cls.StartLine, byteOffsetForLine(source, cls.StartLine), format))
	}
	if len(markers) == 0 {
		return tokens
	}

	merged := make([]Token, 0, len(tokens)+len(markers))
	merged = append(merged, tokens...)
	merged = append(merged, markers...)
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Range.Start < merged[j].Range.Start
	})
	return merged
}

func semanticMarker(line, offset int, format Format) Token {
	return Token{
		Type:   TokenSemantic,
		Value:  "container",
		Line:   line,
		Column: 1,
		Range:  Range{offset, offset},
		Format: format,
	}
}

// byteOffsetForLine returns the byte offset of the first character of the
// given 1-based line in source.
func byteOffsetForLine(source string, line int) int {
	if line <= 1 {
		return 0
	}
	seen := 1
	for i, c := range source {
		if c == '\n' {
			seen++
			if seen == line {
				return i + 1
			}
		}
	}
	return len(source)
}
