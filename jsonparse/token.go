package jsonparse

import (
	"fmt"
)

// TokenType represents the type of a lexer token.
type TokenType uint8

const (
	TokenEOF TokenType = iota

	// Structural
	TokenLBrace   // {
	TokenRBrace   // }
	TokenLBracket // [
	TokenRBracket // ]
	TokenColon    // :
	TokenComma    // ,

	// Literals
	TokenString // "quoted", payload excludes the quotes
	TokenNumber // raw numeric run, unvalidated
)

// String returns the token type name.
func (t TokenType) String() string {
	switch t {
	case TokenEOF:
		return "EOF"
	case TokenLBrace:
		return "{"
	case TokenRBrace:
		return "}"
	case TokenLBracket:
		return "["
	case TokenRBracket:
		return "]"
	case TokenColon:
		return ":"
	case TokenComma:
		return ","
	case TokenString:
		return "STRING"
	case TokenNumber:
		return "NUMBER"
	default:
		return "UNKNOWN"
	}
}

// Token represents a lexer token.
//
// Text is a substring of the tokenized input and shares its memory; it is
// empty for structural tokens. Offset is the byte offset of the token's first
// byte in the input (the opening quote for strings).
type Token struct {
	Type   TokenType
	Text   string
	Offset int
}

// String returns a debug representation of the token.
func (t Token) String() string {
	if t.Text == "" {
		return t.Type.String()
	}
	return fmt.Sprintf("%s(%q)", t.Type, t.Text)
}

// Lexer tokenizes JSON text.
type Lexer struct {
	input  string
	pos    int // Current position in input
	tokens []Token
}

// NewLexer creates a new lexer for the given input.
func NewLexer(input string) *Lexer {
	return &Lexer{input: input}
}

// Tokenize is shorthand for NewLexer(input).Tokenize().
func Tokenize(input string) ([]Token, error) {
	return NewLexer(input).Tokenize()
}

// Tokenize returns all tokens from the input, terminated by a TokenEOF.
// On a lexical error the tokens scanned so far are returned together with a
// *SyntaxError. Once the input is exhausted, later calls return the same
// tokens.
func (l *Lexer) Tokenize() ([]Token, error) {
	if n := len(l.tokens); n > 0 && l.tokens[n-1].Type == TokenEOF {
		return l.tokens, nil
	}
	if l.tokens == nil {
		// Heuristic: numeric-heavy JSON averages about one token per 6 bytes.
		l.tokens = make([]Token, 0, len(l.input)/6+1)
	}
	for {
		tok, err := l.nextToken()
		if err != nil {
			return l.tokens, err
		}
		l.tokens = append(l.tokens, tok)
		if tok.Type == TokenEOF {
			return l.tokens, nil
		}
	}
}

// nextToken returns the next token.
func (l *Lexer) nextToken() (Token, error) {
	l.skipWhitespace()

	if l.pos >= len(l.input) {
		return Token{Type: TokenEOF, Offset: l.pos}, nil
	}

	start := l.pos
	ch := l.input[l.pos]

	switch ch {
	case '{':
		l.pos++
		return Token{Type: TokenLBrace, Offset: start}, nil
	case '}':
		l.pos++
		return Token{Type: TokenRBrace, Offset: start}, nil
	case '[':
		l.pos++
		return Token{Type: TokenLBracket, Offset: start}, nil
	case ']':
		l.pos++
		return Token{Type: TokenRBracket, Offset: start}, nil
	case ':':
		l.pos++
		return Token{Type: TokenColon, Offset: start}, nil
	case ',':
		l.pos++
		return Token{Type: TokenComma, Offset: start}, nil
	case '"':
		return l.scanString()
	}

	if ch == '-' || isDigit(ch) {
		return l.scanNumber(), nil
	}

	return Token{}, l.errorAt(ErrUnexpectedChar, start, "unexpected character %q", ch)
}

// scanString scans a quoted string. Backslash has no special meaning, so an
// escaped quote ends the string.
func (l *Lexer) scanString() (Token, error) {
	start := l.pos
	l.pos++ // consume opening "

	for i := l.pos; i < len(l.input); i++ {
		if l.input[i] == '"' {
			tok := Token{Type: TokenString, Text: l.input[l.pos:i], Offset: start}
			l.pos = i + 1
			return tok, nil
		}
	}

	l.pos = len(l.input)
	return Token{}, l.errorAt(ErrUnterminatedString, start, "unterminated string")
}

// scanNumber scans a run of number characters. Structure is checked later by
// the parser.
func (l *Lexer) scanNumber() Token {
	start := l.pos
	for l.pos < len(l.input) && isNumberChar(l.input[l.pos]) {
		l.pos++
	}
	return Token{Type: TokenNumber, Text: l.input[start:l.pos], Offset: start}
}

// skipWhitespace skips JSON insignificant whitespace.
func (l *Lexer) skipWhitespace() {
	for l.pos < len(l.input) {
		switch l.input[l.pos] {
		case ' ', '\t', '\r', '\n':
			l.pos++
		default:
			return
		}
	}
}

func (l *Lexer) errorAt(kind ErrorKind, offset int, format string, args ...interface{}) *SyntaxError {
	line, col := lineCol(l.input, offset)
	err := &SyntaxError{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
		Offset:  offset,
		Line:    line,
		Column:  col,
		Token:   -1,
	}
	if kind == ErrUnexpectedChar {
		err.Char = l.input[offset]
	}
	return err
}

// Character classification

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isNumberChar(ch byte) bool {
	return isDigit(ch) || ch == '-' || ch == '+' || ch == '.' || ch == 'e' || ch == 'E'
}

// lineCol converts a byte offset into a 1-based line and column.
func lineCol(input string, offset int) (int, int) {
	if offset > len(input) {
		offset = len(input)
	}
	line, col := 1, 1
	for i := 0; i < offset; i++ {
		if input[i] == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	return line, col
}

// TokenStream provides a cursor over tokens. Its position only moves forward,
// and reads past the last token yield TokenEOF.
type TokenStream struct {
	tokens []Token
	pos    int
}

// NewTokenStream creates a token stream from tokens.
func NewTokenStream(tokens []Token) *TokenStream {
	return &TokenStream{tokens: tokens, pos: 0}
}

// Peek returns the current token without advancing.
func (ts *TokenStream) Peek() Token {
	if ts.pos >= len(ts.tokens) {
		return ts.eof()
	}
	return ts.tokens[ts.pos]
}

// Advance moves to the next token and returns the current one.
func (ts *TokenStream) Advance() Token {
	tok := ts.Peek()
	if ts.pos < len(ts.tokens) {
		ts.pos++
	}
	return tok
}

// Expect advances if the current token matches, otherwise returns error.
func (ts *TokenStream) Expect(typ TokenType, what string) (Token, error) {
	tok := ts.Peek()
	if tok.Type != typ {
		return tok, ts.unexpected(tok, what)
	}
	ts.Advance()
	return tok, nil
}

// Match returns true and advances if the current token matches.
func (ts *TokenStream) Match(typ TokenType) bool {
	if ts.Peek().Type == typ {
		ts.Advance()
		return true
	}
	return false
}

// AtEnd returns true if at end of stream.
func (ts *TokenStream) AtEnd() bool {
	return ts.Peek().Type == TokenEOF
}

// Position returns the index of the current token.
func (ts *TokenStream) Position() int {
	return ts.pos
}

// eof synthesizes an EOF token just past the last real token.
func (ts *TokenStream) eof() Token {
	if n := len(ts.tokens); n > 0 {
		last := ts.tokens[n-1]
		if last.Type == TokenEOF {
			return last
		}
		end := last.Offset + len(last.Text)
		switch last.Type {
		case TokenString:
			end += 2
		case TokenNumber:
		default:
			end++
		}
		return Token{Type: TokenEOF, Offset: end}
	}
	return Token{Type: TokenEOF}
}

// unexpected builds the error for tok appearing where what was required.
func (ts *TokenStream) unexpected(tok Token, what string) *SyntaxError {
	if tok.Type == TokenEOF {
		return &SyntaxError{
			Kind:    ErrUnexpectedEOF,
			Message: fmt.Sprintf("unexpected end of input, expected %s", what),
			Offset:  tok.Offset,
			Token:   ts.pos,
		}
	}
	return &SyntaxError{
		Kind:    ErrUnexpectedToken,
		Message: fmt.Sprintf("expected %s, got %s", what, tok),
		Offset:  tok.Offset,
		Token:   ts.pos,
	}
}
