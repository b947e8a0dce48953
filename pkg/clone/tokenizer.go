package clone

import (
	"strings"
	"unicode/utf8"
)

// Tokenize maps source + format to an ordered token sequence (§4.1). The
// returned ranges partition source exactly: every byte is covered by
// exactly one token, including an unknown token for bytes the grammar
// doesn't recognize. Fails with UnknownFormat if format isn't registered.
func Tokenize(source string, format Format) ([]Token, error) {
	g, ok := registry[format]
	if !ok {
		return nil, UnknownFormat(format)
	}
	s := &scanner{src: source, format: format, grammar: g, line: 1, column: 1}
	var tokens []Token
	for s.pos < len(s.src) {
		tok := s.next()
		tokens = append(tokens, tok)
	}
	return tokens, nil
}

type scanner struct {
	src     string
	format  Format
	grammar grammar
	pos     int
	line    int
	column  int
}

// next scans exactly one token starting at s.pos, trying alternatives in
// the order the grammar prescribes: block comments, line comments,
// strings, whitespace, numbers, identifiers/keywords, operators, and
// finally a single unknown byte. Each branch is greedy and longest-match.
func (s *scanner) next() Token {
	start := s.pos
	startLine, startCol := s.line, s.column

	if tok, ok := s.tryBlockComment(start, startLine, startCol); ok {
		return tok
	}
	if tok, ok := s.tryLineComment(start, startLine, startCol); ok {
		return tok
	}
	r, size := utf8.DecodeRuneInString(s.src[s.pos:])

	if isQuote(r) {
		return s.scanString(start, startLine, startCol, r)
	}
	if isSpace(r) {
		return s.scanWhile(start, startLine, startCol, TokenWhitespace, isSpace)
	}
	if isDigit(r) || (r == '-' && s.peekIsDigit(size)) {
		return s.scanNumber(start, startLine, startCol)
	}
	if isIdentStart(r) {
		return s.scanIdentifier(start, startLine, startCol)
	}
	if tok, ok := s.tryOperator(start, startLine, startCol); ok {
		return tok
	}

	s.advance(r, size)
	return Token{Type: TokenUnknown, Value: s.src[start:s.pos], Line: startLine, Column: startCol,
		Range: Range{start, s.pos}, Format: s.format}
}

func (s *scanner) tryBlockComment(start, line, col int) (Token, bool) {
	for _, pair := range s.grammar.blockComments {
		open, close := pair[0], pair[1]
		if !strings.HasPrefix(s.src[s.pos:], open) {
			continue
		}
		s.advanceString(open)
		end := strings.Index(s.src[s.pos:], close)
		if end < 0 {
			s.advanceString(s.src[s.pos:])
		} else {
			s.advanceString(s.src[s.pos : s.pos+end+len(close)])
		}
		return Token{Type: TokenComment, Value: s.src[start:s.pos], Line: line, Column: col,
			Range: Range{start, s.pos}, Format: s.format}, true
	}
	return Token{}, false
}

func (s *scanner) tryLineComment(start, line, col int) (Token, bool) {
	for _, prefix := range s.grammar.lineComments {
		if !strings.HasPrefix(s.src[s.pos:], prefix) {
			continue
		}
		end := strings.IndexByte(s.src[s.pos:], '\n')
		if end < 0 {
			s.advanceString(s.src[s.pos:])
		} else {
			s.advanceString(s.src[s.pos : s.pos+end])
		}
		return Token{Type: TokenComment, Value: s.src[start:s.pos], Line: line, Column: col,
			Range: Range{start, s.pos}, Format: s.format}, true
	}
	return Token{}, false
}

func (s *scanner) scanString(start, line, col int, quote rune) Token {
	r, size := utf8.DecodeRuneInString(s.src[s.pos:])
	s.advance(r, size)
	for s.pos < len(s.src) {
		r, size := utf8.DecodeRuneInString(s.src[s.pos:])
		if r == '\\' && s.pos+size < len(s.src) {
			s.advance(r, size)
			r2, size2 := utf8.DecodeRuneInString(s.src[s.pos:])
			s.advance(r2, size2)
			continue
		}
		s.advance(r, size)
		if r == quote {
			break
		}
	}
	return Token{Type: TokenString, Value: s.src[start:s.pos], Line: line, Column: col,
		Range: Range{start, s.pos}, Format: s.format}
}

func (s *scanner) scanWhile(start, line, col int, typ TokenType, pred func(rune) bool) Token {
	for s.pos < len(s.src) {
		r, size := utf8.DecodeRuneInString(s.src[s.pos:])
		if !pred(r) {
			break
		}
		s.advance(r, size)
	}
	return Token{Type: typ, Value: s.src[start:s.pos], Line: line, Column: col,
		Range: Range{start, s.pos}, Format: s.format}
}

func (s *scanner) scanNumber(start, line, col int) Token {
	r, size := utf8.DecodeRuneInString(s.src[s.pos:])
	if r == '-' {
		s.advance(r, size)
		r, size = utf8.DecodeRuneInString(s.src[s.pos:])
	}
	for s.pos < len(s.src) {
		r, size = utf8.DecodeRuneInString(s.src[s.pos:])
		if isNumberRune(r) {
			s.advance(r, size)
			continue
		}
		break
	}
	return Token{Type: TokenNumber, Value: s.src[start:s.pos], Line: line, Column: col,
		Range: Range{start, s.pos}, Format: s.format}
}

func (s *scanner) scanIdentifier(start, line, col int) Token {
	for s.pos < len(s.src) {
		r, size := utf8.DecodeRuneInString(s.src[s.pos:])
		if !isIdentChar(r) {
			break
		}
		s.advance(r, size)
	}
	value := s.src[start:s.pos]
	typ := TokenIdentifier
	if s.grammar.keywords[value] {
		typ = TokenKeyword
	}
	return Token{Type: typ, Value: value, Line: line, Column: col,
		Range: Range{start, s.pos}, Format: s.format}
}

var multiCharOperators = []string{
	"<<=", ">>=", "...", "===", "!==",
	"==", "!=", "<=", ">=", "&&", "||", "<<", ">>",
	"+=", "-=", "*=", "/=", "%=", "&=", "|=", "^=",
	"++", "--", "->", "=>", "::", "..", "??",
}

func (s *scanner) tryOperator(start, line, col int) (Token, bool) {
	for _, op := range multiCharOperators {
		if strings.HasPrefix(s.src[s.pos:], op) {
			s.advanceString(op)
			return Token{Type: TokenOperator, Value: op, Line: line, Column: col,
				Range: Range{start, s.pos}, Format: s.format}, true
		}
	}
	r, size := utf8.DecodeRuneInString(s.src[s.pos:])
	if isDelimiter(r) {
		s.advance(r, size)
		return Token{Type: TokenDelimiter, Value: string(r), Line: line, Column: col,
			Range: Range{start, s.pos}, Format: s.format}, true
	}
	if isOperatorRune(r) {
		s.advance(r, size)
		return Token{Type: TokenOperator, Value: string(r), Line: line, Column: col,
			Range: Range{start, s.pos}, Format: s.format}, true
	}
	return Token{}, false
}

// advance moves the cursor past one decoded rune, maintaining line/column.
func (s *scanner) advance(r rune, size int) {
	if r == '\n' {
		s.line++
		s.column = 1
	} else {
		s.column++
	}
	s.pos += size
}

func (s *scanner) advanceString(str string) {
	for _, r := range str {
		s.advance(r, utf8.RuneLen(r))
	}
}

func (s *scanner) peekIsDigit(offset int) bool {
	if s.pos+offset >= len(s.src) {
		return false
	}
	r, _ := utf8.DecodeRuneInString(s.src[s.pos+offset:])
	return isDigit(r)
}

func isQuote(r rune) bool      { return r == '"' || r == '\'' || r == '`' }
func isSpace(r rune) bool      { return r == ' ' || r == '\t' || r == '\n' || r == '\r' }
func isDigit(r rune) bool      { return r >= '0' && r <= '9' }
func isIdentStart(r rune) bool {
	return r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r >= utf8.RuneSelf
}
func isIdentChar(r rune) bool { return isIdentStart(r) || isDigit(r) }
func isNumberRune(r rune) bool {
	return isDigit(r) || r == '.' || r == '_' || r == 'x' || r == 'X' ||
		r == 'b' || r == 'B' || r == 'o' || r == 'O' ||
		(r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F') || r == 'e' || r == 'E'
}
func isDelimiter(r rune) bool {
	switch r {
	case '(', ')', '[', ']', '{', '}', ',', ';', '.', ':':
		return true
	}
	return false
}
func isOperatorRune(r rune) bool {
	switch r {
	case '+', '-', '*', '/', '%', '=', '<', '>', '&', '|', '^', '!', '~', '?', '@', '#', '$':
		return true
	}
	return false
}
