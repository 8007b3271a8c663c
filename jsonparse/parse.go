package jsonparse

import (
	"fmt"
	"strconv"
)

// MaxDepth is the default limit on array and object nesting.
const MaxDepth = 10000

// Parser parses a token sequence into a Value tree.
type Parser struct {
	stream   *TokenStream
	depth    int
	maxDepth int
}

// ParseOptions configures the parser behavior.
type ParseOptions struct {
	MaxDepth int // Nesting limit; 0 means MaxDepth
}

// Parse parses one value from tokens. The whole sequence must be consumed.
func Parse(tokens []Token) (*Value, error) {
	return ParseWithOptions(tokens, ParseOptions{})
}

// ParseWithOptions parses with full options.
func ParseWithOptions(tokens []Token, opts ParseOptions) (*Value, error) {
	p := NewParser(tokens, opts)
	value, err := p.parseValue()
	if err != nil {
		return nil, err
	}
	if tok := p.stream.Peek(); tok.Type != TokenEOF {
		return nil, &SyntaxError{
			Kind:    ErrTrailingToken,
			Message: fmt.Sprintf("unexpected %s after top-level value", tok),
			Offset:  tok.Offset,
			Token:   p.stream.Position(),
		}
	}
	return value, nil
}

// ParseString tokenizes and parses input.
func ParseString(input string) (*Value, error) {
	tokens, err := Tokenize(input)
	if err != nil {
		return nil, err
	}
	value, err := Parse(tokens)
	if err != nil {
		return nil, Locate(err, input)
	}
	return value, nil
}

// ParseBytes tokenizes and parses input. The bytes are copied once into a
// string that the returned tree then references.
func ParseBytes(input []byte) (*Value, error) {
	return ParseString(string(input))
}

// NewParser creates a parser over tokens.
func NewParser(tokens []Token, opts ParseOptions) *Parser {
	maxDepth := opts.MaxDepth
	if maxDepth <= 0 {
		maxDepth = MaxDepth
	}
	return &Parser{
		stream:   NewTokenStream(tokens),
		maxDepth: maxDepth,
	}
}

// parseValue parses value -> object | array | number.
func (p *Parser) parseValue() (*Value, error) {
	tok := p.stream.Peek()

	switch tok.Type {
	case TokenLBrace:
		return p.parseObject()
	case TokenLBracket:
		return p.parseArray()
	case TokenNumber:
		return p.parseNumber()
	default:
		return nil, p.stream.unexpected(tok, "value")
	}
}

// parseObject parses object -> { (member (, member)*)? }.
func (p *Parser) parseObject() (*Value, error) {
	if err := p.enter(); err != nil {
		return nil, err
	}
	defer p.leave()
	p.stream.Advance() // consume {

	members := make(map[string]*Value)
	if p.stream.Match(TokenRBrace) {
		return Object(members), nil
	}

	for {
		keyTok, err := p.stream.Expect(TokenString, "object key")
		if err != nil {
			return nil, err
		}
		if _, err := p.stream.Expect(TokenColon, "':' after object key"); err != nil {
			return nil, err
		}
		value, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		// Last write wins for duplicate keys.
		members[keyTok.Text] = value

		tok := p.stream.Advance()
		switch tok.Type {
		case TokenComma:
			continue
		case TokenRBrace:
			return Object(members), nil
		default:
			return nil, p.unexpectedAt(tok, "',' or '}' in object")
		}
	}
}

// parseArray parses array -> [ (value (, value)*)? ].
func (p *Parser) parseArray() (*Value, error) {
	if err := p.enter(); err != nil {
		return nil, err
	}
	defer p.leave()
	p.stream.Advance() // consume [

	elements := []*Value{}
	if p.stream.Match(TokenRBracket) {
		return Array(elements...), nil
	}

	for {
		elem, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		elements = append(elements, elem)

		tok := p.stream.Advance()
		switch tok.Type {
		case TokenComma:
			continue
		case TokenRBracket:
			return Array(elements...), nil
		default:
			return nil, p.unexpectedAt(tok, "',' or ']' in array")
		}
	}
}

// parseNumber parses a number token as a float64.
func (p *Parser) parseNumber() (*Value, error) {
	index := p.stream.Position()
	tok := p.stream.Advance()
	v, err := strconv.ParseFloat(tok.Text, 64)
	if err != nil {
		return nil, &SyntaxError{
			Kind:    ErrBadNumber,
			Message: fmt.Sprintf("invalid number %q", tok.Text),
			Offset:  tok.Offset,
			Token:   index,
			Err:     err,
		}
	}
	return Number(v), nil
}

// unexpectedAt reports tok, which was already consumed.
func (p *Parser) unexpectedAt(tok Token, what string) *SyntaxError {
	err := p.stream.unexpected(tok, what)
	if tok.Type != TokenEOF {
		err.Token--
	}
	return err
}

func (p *Parser) enter() error {
	p.depth++
	if p.depth > p.maxDepth {
		tok := p.stream.Peek()
		return &SyntaxError{
			Kind:    ErrTooDeep,
			Message: fmt.Sprintf("nesting exceeds %d levels", p.maxDepth),
			Offset:  tok.Offset,
			Token:   p.stream.Position(),
		}
	}
	return nil
}

func (p *Parser) leave() {
	p.depth--
}
