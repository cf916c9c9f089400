package pbrt

import "testing"

// scanAllNumbers drives the lexer to the end of the input (or the first
// error), returning the text of every token it produced. This distinguishes "maximal
// munch stopped early because the next token starts" from "this input is
// rejected": the FSA in spec.md §4.1 only guarantees correctness of a
// single numeric literal, not that two consecutive literals are malformed.
func scanAllNumbers(t *testing.T, src string) ([]string, error) {
	t.Helper()
	l := NewLexer([]byte(src), "test.pbrt", "test.pbrt")
	var texts []string
	for {
		tok, err := l.Next()
		if err == errEndOfInput {
			return texts, nil
		}
		if err != nil {
			return texts, err
		}
		texts = append(texts, tok.Text)
	}
}

func TestScanNumberAcceptsCommonForms(t *testing.T) {
	cases := []string{"0", "123", "-1", "+1", "1.5", "-1.5", ".5", "1.", "1e3", "1e-3", "1E+3", "-1.5e10"}
	for _, c := range cases {
		toks, err := scanAllNumbers(t, c)
		if err != nil {
			t.Errorf("scanning %q: unexpected error %v", c, err)
			continue
		}
		if len(toks) != 1 || toks[0] != c {
			t.Errorf("scanning %q: got tokens %v, want a single token %q", c, toks, c)
		}
	}
}

func TestScanNumberDotDotIsTwoTokens(t *testing.T) {
	// "1..2" is maximal-munched as "1." then ".2": not a rejection, but
	// also not a single numeric literal.
	toks, err := scanAllNumbers(t, "1..2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(toks) != 2 || toks[0] != "1." || toks[1] != ".2" {
		t.Fatalf("got %v, want [\"1.\" \".2\"]", toks)
	}
}

func TestScanNumberRejectsBareExponent(t *testing.T) {
	if _, err := scanAllNumbers(t, ".e3"); err == nil {
		t.Fatal("expected a lexical error for \".e3\" (state 1 requires a mandatory digit)")
	}
}

func TestScanNumberRejectsTruncatedExponent(t *testing.T) {
	if _, err := scanAllNumbers(t, "1e"); err == nil {
		t.Fatal("expected a lexical error for \"1e\" (truncated numeric literal)")
	}
}

func TestScanNumberRejectsDoubleSign(t *testing.T) {
	if _, err := scanAllNumbers(t, "+-1"); err == nil {
		t.Fatal("expected a lexical error for \"+-1\"")
	}
}

func TestLexerTokenizesIdentifiersStringsAndBrackets(t *testing.T) {
	l := NewLexer([]byte(`Shape "trianglemesh" "point P" [ 0 0 0 ]`), "f", "f")
	want := []struct {
		kind TokenKind
		text string
	}{
		{Identifier, "Shape"},
		{String, "trianglemesh"},
		{String, "point P"},
		{Punctuation, "["},
		{Number, "0"},
		{Number, "0"},
		{Number, "0"},
		{Punctuation, "]"},
	}
	for i, w := range want {
		tok, err := l.Next()
		if err != nil {
			t.Fatalf("token %d: unexpected error %v", i, err)
		}
		if tok.Kind != w.kind || tok.Text != w.text {
			t.Fatalf("token %d = {%v %q}, want {%v %q}", i, tok.Kind, tok.Text, w.kind, w.text)
		}
	}
	if _, err := l.Next(); err != errEndOfInput {
		t.Fatalf("expected errEndOfInput, got %v", err)
	}
}

func TestLexerSkipsCommentsAndWhitespace(t *testing.T) {
	l := NewLexer([]byte("# a comment\n  Shape # trailing\n"), "f", "f")
	tok, err := l.Next()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tok.Kind != Identifier || tok.Text != "Shape" {
		t.Fatalf("got %+v, want Identifier Shape", tok)
	}
}

func TestLexerUnterminatedStringIsLexicalError(t *testing.T) {
	l := NewLexer([]byte(`"unterminated`), "f", "f")
	_, err := l.Next()
	pe, ok := err.(*ParseError)
	if !ok {
		t.Fatalf("expected a *ParseError, got %T (%v)", err, err)
	}
	if pe.Kind != Lexical {
		t.Fatalf("expected Lexical error kind, got %v", pe.Kind)
	}
}
