package extractor

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func kinds(toks []Token) []TokenKind {
	out := make([]TokenKind, 0, len(toks))
	for _, tok := range toks {
		out = append(out, tok.Kind)
	}
	return out
}

func TestLexerBasicTokens(t *testing.T) {
	toks := NewLexer([]byte(`module m #(8) (input [7:0] a, {b});`)).Tokenize()

	want := []TokenKind{
		TokIdent, TokIdent, TokHash, TokLParen, TokNumber, TokRParen,
		TokLParen, TokIdent, TokLBracket, TokNumber, TokColon, TokNumber, TokRBracket, TokIdent, TokComma,
		TokLBrace, TokIdent, TokRBrace, TokRParen, TokSemicolon, TokEOF,
	}
	if diff := cmp.Diff(want, kinds(toks)); diff != "" {
		t.Fatalf("token kinds mismatch (-want +got):\n%s", diff)
	}
	if toks[0].Text != "module" || toks[1].Text != "m" {
		t.Fatalf("unexpected leading tokens %q %q", toks[0].Text, toks[1].Text)
	}
}

func TestLexerSkipsComments(t *testing.T) {
	src := "a // line comment ( ,\n/* block\n comment ; */ b"
	toks := NewLexer([]byte(src)).Tokenize()

	if diff := cmp.Diff([]TokenKind{TokIdent, TokIdent, TokEOF}, kinds(toks)); diff != "" {
		t.Fatalf("token kinds mismatch (-want +got):\n%s", diff)
	}
	if toks[1].Text != "b" || toks[1].Line != 3 {
		t.Fatalf("expected b on line 3, got %q on line %d", toks[1].Text, toks[1].Line)
	}
}

func TestLexerUnterminatedBlockComment(t *testing.T) {
	toks := NewLexer([]byte("a /* never closed")).Tokenize()
	if diff := cmp.Diff([]TokenKind{TokIdent, TokEOF}, kinds(toks)); diff != "" {
		t.Fatalf("token kinds mismatch (-want +got):\n%s", diff)
	}
}

func TestLexerStrings(t *testing.T) {
	toks := NewLexer([]byte(`x = "a, (b) \" ;"; y`)).Tokenize()

	want := []TokenKind{TokIdent, TokOther, TokString, TokSemicolon, TokIdent, TokEOF}
	if diff := cmp.Diff(want, kinds(toks)); diff != "" {
		t.Fatalf("token kinds mismatch (-want +got):\n%s", diff)
	}
	if toks[2].Text != `"a, (b) \" ;"` {
		t.Fatalf("unexpected string text %q", toks[2].Text)
	}
}

func TestLexerIdentifiers(t *testing.T) {
	toks := NewLexer([]byte("_x a$b c9 9c")).Tokenize()

	got := []string{}
	for _, tok := range toks[:len(toks)-1] {
		got = append(got, tok.Kind.String()+":"+tok.Text)
	}
	want := []string{"identifier:_x", "identifier:a$b", "identifier:c9", "number:9", "identifier:c"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("tokens mismatch (-want +got):\n%s", diff)
	}
}

func TestLexerEmptyInput(t *testing.T) {
	toks := NewLexer(nil).Tokenize()
	if len(toks) != 1 || toks[0].Kind != TokEOF {
		t.Fatalf("expected a single EOF token, got %+v", toks)
	}
}

func TestTokenKindString(t *testing.T) {
	if TokSemicolon.String() != "';'" {
		t.Fatalf("unexpected name %q", TokSemicolon.String())
	}
	if TokenKind(99).String() != "TokenKind(99)" {
		t.Fatalf("unexpected name %q", TokenKind(99).String())
	}
}
