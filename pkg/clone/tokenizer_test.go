package clone

import "testing"

func TestTokenizeUnknownFormat(t *testing.T) {
	_, err := Tokenize("x", Format("cobol"))
	if err == nil {
		t.Fatal("expected an error for an unregistered format")
	}
	de, ok := err.(*DetectionError)
	if !ok || de.Kind != ErrKindUnknownFormat {
		t.Fatalf("got %v, want ErrKindUnknownFormat", err)
	}
}

func TestTokenizeGoBasics(t *testing.T) {
	src := "func add(a, b int) int {\n\treturn a + b\n}\n"
	toks, err := Tokenize(src, FormatGo)
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}
	if len(toks) == 0 {
		t.Fatal("expected tokens")
	}
	if toks[0].Type != TokenKeyword || toks[0].Value != "func" {
		t.Errorf("first token = %+v, want keyword func", toks[0])
	}
	for i := 1; i < len(toks); i++ {
		if toks[i].Range.Start < toks[i-1].Range.End {
			t.Fatalf("token ranges overlap at %d: %+v then %+v", i, toks[i-1], toks[i])
		}
	}
}

func TestTokenizeLineComment(t *testing.T) {
	src := "// hello\nx := 1\n"
	toks, err := Tokenize(src, FormatGo)
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}
	found := false
	for _, tok := range toks {
		if tok.Type == TokenComment {
			found = true
			if tok.Value != "// hello" {
				t.Errorf("comment value = %q", tok.Value)
			}
		}
	}
	if !found {
		t.Fatal("expected a comment token")
	}
}

func TestTokenizeStringEscapes(t *testing.T) {
	src := `x := "a\"b"` + "\n"
	toks, err := Tokenize(src, FormatGo)
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}
	var str *Token
	for i := range toks {
		if toks[i].Type == TokenString {
			str = &toks[i]
		}
	}
	if str == nil {
		t.Fatal("expected a string token")
	}
	if str.Value != `"a\"b"` {
		t.Errorf("string value = %q", str.Value)
	}
}

func TestTokenizePythonHashComment(t *testing.T) {
	src := "# note\nx = 1\n"
	toks, err := Tokenize(src, FormatPython)
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}
	if toks[0].Type != TokenComment {
		t.Errorf("first token = %+v, want comment", toks[0])
	}
}

func TestMaskKeyModes(t *testing.T) {
	ident := Token{Type: TokenIdentifier, Value: "count"}
	comment := Token{Type: TokenComment, Value: "// x"}

	if MaskKey(comment, ModeStrict, false) == "" {
		t.Error("strict mode should hash comments")
	}
	if MaskKey(comment, ModeMild, false) != "" {
		t.Error("mild mode should drop comments")
	}
	if MaskKey(comment, ModeWeak, false) != "" {
		t.Error("weak mode should drop comments")
	}

	if MaskKey(ident, ModeStrict, false) == MaskKey(Token{Type: TokenIdentifier, Value: "total"}, ModeStrict, false) {
		t.Error("strict mode should distinguish identifier names")
	}
	if MaskKey(ident, ModeWeak, false) != MaskKey(Token{Type: TokenIdentifier, Value: "total"}, ModeWeak, false) {
		t.Error("weak mode should collapse identifiers regardless of name")
	}
}
