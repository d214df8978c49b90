package extractor

import "fmt"

// TokenKind identifies a lexical token.
type TokenKind int

const (
	TokEOF TokenKind = iota
	TokIdent
	TokNumber
	TokString
	TokLParen
	TokRParen
	TokLBracket
	TokRBracket
	TokLBrace
	TokRBrace
	TokColon
	TokComma
	TokSemicolon
	TokHash
	// TokOther is any single byte with no structural meaning (operators, backticks, ...).
	TokOther
)

var tokenNames = [...]string{
	TokEOF:       "EOF",
	TokIdent:     "identifier",
	TokNumber:    "number",
	TokString:    "string",
	TokLParen:    "'('",
	TokRParen:    "')'",
	TokLBracket:  "'['",
	TokRBracket:  "']'",
	TokLBrace:    "'{'",
	TokRBrace:    "'}'",
	TokColon:     "':'",
	TokComma:     "','",
	TokSemicolon: "';'",
	TokHash:      "'#'",
	TokOther:     "symbol",
}

func (k TokenKind) String() string {
	if int(k) < len(tokenNames) {
		return tokenNames[k]
	}
	return fmt.Sprintf("TokenKind(%d)", int(k))
}

// Token is a token with its source text and position.
type Token struct {
	Kind TokenKind
	Text string
	Pos  int // byte offset
	Line int // 1-based
}

// Lexer tokenizes Verilog/SystemVerilog source text.
// Whitespace and comments are dropped; everything else becomes a token.
type Lexer struct {
	source []byte
	pos    int
	line   int
}

// NewLexer returns a Lexer over the given source bytes.
func NewLexer(source []byte) *Lexer {
	return &Lexer{source: source, line: 1}
}

// Tokenize consumes all source text and returns the token stream, terminated by TokEOF.
func (l *Lexer) Tokenize() []Token {
	tokens := make([]Token, 0, max(len(l.source)/4, 16))
	for {
		tok := l.NextToken()
		tokens = append(tokens, tok)
		if tok.Kind == TokEOF {
			return tokens
		}
	}
}

// NextToken returns the next token, or TokEOF once the input is consumed.
func (l *Lexer) NextToken() Token {
	l.skipTrivia()
	if l.pos >= len(l.source) {
		return Token{Kind: TokEOF, Pos: l.pos, Line: l.line}
	}

	start, line := l.pos, l.line
	b := l.source[l.pos]
	switch {
	case isIdentStart(b):
		for l.pos < len(l.source) && isIdentPart(l.source[l.pos]) {
			l.pos++
		}
		return l.token(TokIdent, start, line)
	case isDigit(b):
		for l.pos < len(l.source) && isDigit(l.source[l.pos]) {
			l.pos++
		}
		return l.token(TokNumber, start, line)
	case b == '"':
		l.skipString()
		return l.token(TokString, start, line)
	}

	l.pos++
	kind := TokOther
	switch b {
	case '(':
		kind = TokLParen
	case ')':
		kind = TokRParen
	case '[':
		kind = TokLBracket
	case ']':
		kind = TokRBracket
	case '{':
		kind = TokLBrace
	case '}':
		kind = TokRBrace
	case ':':
		kind = TokColon
	case ',':
		kind = TokComma
	case ';':
		kind = TokSemicolon
	case '#':
		kind = TokHash
	}
	return l.token(kind, start, line)
}

func (l *Lexer) token(kind TokenKind, start, line int) Token {
	return Token{Kind: kind, Text: string(l.source[start:l.pos]), Pos: start, Line: line}
}

// skipTrivia drops whitespace, line comments and block comments.
func (l *Lexer) skipTrivia() {
	for l.pos < len(l.source) {
		b := l.source[l.pos]
		switch {
		case b == '\n':
			l.line++
			l.pos++
		case b == ' ' || b == '\t' || b == '\r' || b == '\f' || b == '\v':
			l.pos++
		case b == '/' && l.peekAt(1) == '/':
			for l.pos < len(l.source) && l.source[l.pos] != '\n' {
				l.pos++
			}
		case b == '/' && l.peekAt(1) == '*':
			l.pos += 2
			for l.pos < len(l.source) {
				if l.source[l.pos] == '*' && l.peekAt(1) == '/' {
					l.pos += 2
					break
				}
				if l.source[l.pos] == '\n' {
					l.line++
				}
				l.pos++
			}
		default:
			return
		}
	}
}

// skipString advances past a double-quoted string literal, honoring backslash escapes.
// An unterminated string runs to the end of the line.
func (l *Lexer) skipString() {
	l.pos++ // opening quote
	for l.pos < len(l.source) {
		switch l.source[l.pos] {
		case '\\':
			l.pos += 2
			continue
		case '"':
			l.pos++
			return
		case '\n':
			return
		}
		l.pos++
	}
	if l.pos > len(l.source) {
		l.pos = len(l.source)
	}
}

func (l *Lexer) peekAt(offset int) byte {
	idx := l.pos + offset
	if idx >= len(l.source) {
		return 0
	}
	return l.source[idx]
}

func isIdentStart(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func isIdentPart(b byte) bool {
	return isIdentStart(b) || isDigit(b) || b == '$'
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}
