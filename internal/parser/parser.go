// Package parser folds the lexer's token stream into PreSymbolicExpression
// trees: atoms, atom-values, lists, tuple-literals, sugared/qualified
// identifiers, and trait references, per spec.md §4.2.
package parser

import (
	"encoding/hex"
	"math/big"
	"strings"

	"clarity/internal/ast"
	"clarity/internal/errors"
	"clarity/internal/lexer"
	"clarity/internal/types"
)

type frameKind int

const (
	frameList frameKind = iota
	frameTuple
)

type tupleState int

const (
	expectKey tupleState = iota
	expectColon
	expectValue
	expectCommaOrClose
)

type frame struct {
	kind     frameKind
	start    ast.Position
	children []*ast.PreSymbolicExpression
	state    tupleState
	pendKey  *ast.PreSymbolicExpression
}

// Parser consumes a token slice and produces a sequence of top-level
// PreSymbolicExpression nodes, mirroring parse_lexed's frame-stack
// algorithm.
type Parser struct {
	tokens []lexer.Token
	pos    int
	stack  []*frame
	top    []*ast.PreSymbolicExpression
}

func New(tokens []lexer.Token) *Parser {
	return &Parser{tokens: tokens}
}

// Parse runs the full token stream through the frame-stack algorithm,
// returning the top-level pre-expressions or the first error encountered.
func Parse(source string) ([]*ast.PreSymbolicExpression, *errors.ParseError) {
	tokens, lexErr := lexer.Lex(source)
	if lexErr != nil {
		return nil, lexErr
	}
	p := New(tokens)
	return p.parseAll()
}

func (p *Parser) parseAll() ([]*ast.PreSymbolicExpression, *errors.ParseError) {
	for p.pos < len(p.tokens) {
		tok := p.tokens[p.pos]
		if err := p.step(tok); err != nil {
			return p.top, err
		}
		p.pos++
	}
	if len(p.stack) > 0 {
		return p.top, errors.NewParseError(errors.ClosingParenthesisExpected, tokenSpan(p.tokens[len(p.tokens)-1]), "unclosed collection at end of input")
	}
	return p.top, nil
}

func (p *Parser) step(tok lexer.Token) *errors.ParseError {
	switch tok.Type {
	case lexer.ItemLeftParen:
		p.stack = append(p.stack, &frame{kind: frameList, start: tokPos(tok)})
		return nil
	case lexer.ItemLeftBrace:
		p.stack = append(p.stack, &frame{kind: frameTuple, start: tokPos(tok)})
		return nil
	case lexer.ItemRightParen:
		return p.closeList(tok)
	case lexer.ItemRightBrace:
		return p.closeTuple(tok)
	case lexer.ItemColon:
		return p.colon(tok)
	case lexer.ItemComma:
		return p.comma(tok)
	default:
		leaf, err := p.buildLeaf(tok)
		if err != nil {
			return err
		}
		return p.appendChild(leaf, tok)
	}
}

func (p *Parser) closeList(tok lexer.Token) *errors.ParseError {
	if len(p.stack) == 0 {
		return errors.NewParseError(errors.ClosingParenthesisUnexpected, tokenSpan(tok), "unexpected `)`")
	}
	f := p.stack[len(p.stack)-1]
	if f.kind == frameTuple {
		return errors.NewParseError(errors.ClosingTupleLiteralExpected, tokenSpan(tok), "expected `}` to close tuple literal, found `)`")
	}
	p.stack = p.stack[:len(p.stack)-1]
	node := &ast.PreSymbolicExpression{
		Kind: ast.PreList,
		Span: ast.Span{Start: f.start, End: tokPos(tok)},
		List: f.children,
	}
	return p.appendChild(node, tok)
}

func (p *Parser) closeTuple(tok lexer.Token) *errors.ParseError {
	if len(p.stack) == 0 {
		return errors.NewParseError(errors.ClosingTupleLiteralUnexpected, tokenSpan(tok), "unexpected `}`")
	}
	f := p.stack[len(p.stack)-1]
	if f.kind == frameList {
		return errors.NewParseError(errors.ClosingParenthesisExpected, tokenSpan(tok), "expected `)` to close list, found `}`")
	}
	if f.state != expectKey && f.state != expectCommaOrClose {
		return errors.NewParseError(errors.ClosingTupleLiteralUnexpected, tokenSpan(tok), "tuple literal closed mid-pair")
	}
	p.stack = p.stack[:len(p.stack)-1]
	node := &ast.PreSymbolicExpression{
		Kind:  ast.PreTuple,
		Span:  ast.Span{Start: f.start, End: tokPos(tok)},
		Tuple: f.children,
	}
	return p.appendChild(node, tok)
}

func (p *Parser) colon(tok lexer.Token) *errors.ParseError {
	if len(p.stack) == 0 || p.stack[len(p.stack)-1].kind != frameTuple {
		return errors.NewParseError(errors.ColonSeparatorUnexpected, tokenSpan(tok), "`:` outside tuple literal")
	}
	f := p.stack[len(p.stack)-1]
	if f.state != expectColon {
		return errors.NewParseError(errors.ColonSeparatorUnexpected, tokenSpan(tok), "unexpected `:`")
	}
	f.state = expectValue
	return nil
}

func (p *Parser) comma(tok lexer.Token) *errors.ParseError {
	if len(p.stack) == 0 || p.stack[len(p.stack)-1].kind != frameTuple {
		return errors.NewParseError(errors.CommaSeparatorUnexpected, tokenSpan(tok), "`,` outside tuple literal")
	}
	f := p.stack[len(p.stack)-1]
	if f.state != expectCommaOrClose {
		return errors.NewParseError(errors.CommaSeparatorUnexpected, tokenSpan(tok), "unexpected `,`")
	}
	f.state = expectKey
	return nil
}

// appendChild routes a completed node (leaf or closed list/tuple) into
// whatever frame is on top of the stack, or the top-level sequence.
func (p *Parser) appendChild(node *ast.PreSymbolicExpression, tok lexer.Token) *errors.ParseError {
	if len(p.stack) == 0 {
		p.top = append(p.top, node)
		return nil
	}
	f := p.stack[len(p.stack)-1]
	if f.kind == frameList {
		f.children = append(f.children, node)
		return nil
	}
	switch f.state {
	case expectKey:
		if node.Kind != ast.PreAtom {
			return errors.NewParseError(errors.ColonSeparatorUnexpected, tokenSpan(tok), "tuple key must be an identifier")
		}
		f.pendKey = node
		f.state = expectColon
		return nil
	case expectValue:
		f.children = append(f.children, f.pendKey, node)
		f.pendKey = nil
		f.state = expectCommaOrClose
		return nil
	default:
		return errors.NewParseError(errors.CommaSeparatorUnexpected, tokenSpan(tok), "expected `,` or `}`")
	}
}

func tokPos(t lexer.Token) ast.Position {
	return ast.Position{Line: t.Line, Column: t.Column, Offset: t.Offset}
}

func tokenSpan(t lexer.Token) ast.Span {
	return ast.Span{Start: tokPos(t), End: ast.Position{Line: t.Line, Column: t.EndColumn(), Offset: t.Offset + len(t.Lexeme) - 1}}
}

func (p *Parser) buildLeaf(tok lexer.Token) (*ast.PreSymbolicExpression, *errors.ParseError) {
	sp := tokenSpan(tok)
	switch tok.Type {
	case lexer.ItemVariable:
		// Charset is already bounded by the lexer's Variable matcher;
		// only the length cap needs enforcing here, on the materialized
		// atom lexeme, since the lexer itself has no notion of a name's
		// overall identifier-vs-operator-symbol role.
		if len(tok.Lexeme) > types.ClarityMaxNameLength {
			return nil, errors.NewParseError(errors.IllegalVariableName, sp,
				"identifier %q exceeds max length of %d", tok.Lexeme, types.ClarityMaxNameLength)
		}
		return &ast.PreSymbolicExpression{Kind: ast.PreAtom, Span: sp, Atom: tok.Lexeme}, nil

	case lexer.ItemInt:
		n, ok := new(big.Int).SetString(tok.Lexeme, 10)
		if !ok {
			return nil, errors.NewParseError(errors.FailedParsingInt, sp, "could not parse int literal %q", tok.Lexeme)
		}
		v, err := types.IntValue(n)
		if err != nil {
			return nil, errors.NewParseError(errors.FailedParsingInt, sp, "%v", err)
		}
		return &ast.PreSymbolicExpression{Kind: ast.PreAtomValue, Span: sp, AtomValue: v}, nil

	case lexer.ItemUInt:
		n, ok := new(big.Int).SetString(tok.Lexeme[1:], 10)
		if !ok {
			return nil, errors.NewParseError(errors.FailedParsingInt, sp, "could not parse uint literal %q", tok.Lexeme)
		}
		v, err := types.UIntValue(n)
		if err != nil {
			return nil, errors.NewParseError(errors.FailedParsingInt, sp, "%v", err)
		}
		return &ast.PreSymbolicExpression{Kind: ast.PreAtomValue, Span: sp, AtomValue: v}, nil

	case lexer.ItemQuotedBool:
		return &ast.PreSymbolicExpression{Kind: ast.PreAtomValue, Span: sp, AtomValue: types.BoolValue(tok.Lexeme == "'true")}, nil

	case lexer.ItemHexString:
		decoded, err := hex.DecodeString(tok.Lexeme[2:])
		if err != nil {
			return nil, errors.NewParseError(errors.FailedParsingHex, sp, "malformed hex literal %q", tok.Lexeme)
		}
		v, verr := types.BuffFrom(decoded)
		if verr != nil {
			return nil, errors.NewParseError(errors.FailedParsingBuffer, sp, "%v", verr)
		}
		return &ast.PreSymbolicExpression{Kind: ast.PreAtomValue, Span: sp, AtomValue: v}, nil

	case lexer.ItemStringLiteral:
		content := unescapeString(tok.Lexeme[1 : len(tok.Lexeme)-1])
		v, verr := types.BuffFrom([]byte(content))
		if verr != nil {
			return nil, errors.NewParseError(errors.FailedParsingBuffer, sp, "%v", verr)
		}
		return &ast.PreSymbolicExpression{Kind: ast.PreAtomValue, Span: sp, AtomValue: v}, nil

	case lexer.ItemTraitReference:
		name := tok.Lexeme[1 : len(tok.Lexeme)-1]
		return &ast.PreSymbolicExpression{Kind: ast.PreTraitReference, Span: sp, TraitName: name}, nil

	case lexer.ItemPrincipalLiteral:
		principal, perr := principalFromBase58(tok.Lexeme[1:], sp)
		if perr != nil {
			return nil, perr
		}
		return &ast.PreSymbolicExpression{Kind: ast.PreAtomValue, Span: sp, AtomValue: types.PrincipalValue(types.NewStandardPrincipal(principal))}, nil

	case lexer.ItemSugaredContractIdentifier:
		return &ast.PreSymbolicExpression{Kind: ast.PreSugaredContractID, Span: sp, ContractName: tok.Lexeme[1:]}, nil

	case lexer.ItemContractIdentifier:
		issuer, name, ok := splitOnce(tok.Lexeme[1:], '.')
		if !ok {
			return nil, errors.NewParseError(errors.FailedParsingPrincipal, sp, "malformed contract identifier %q", tok.Lexeme)
		}
		if _, ok := types.DecodeBase58Principal(issuer); !ok {
			return nil, errors.NewParseError(errors.FailedParsingPrincipal, sp, "malformed base58 issuer %q", issuer)
		}
		return &ast.PreSymbolicExpression{Kind: ast.PreSugaredContractID, Span: sp, Issuer: issuer, ContractName: name}, nil

	case lexer.ItemSugaredFieldIdentifier:
		contract, field, ok := splitOnce(tok.Lexeme[1:], '.')
		if !ok {
			return nil, errors.NewParseError(errors.FailedParsingField, sp, "malformed field identifier %q", tok.Lexeme)
		}
		return &ast.PreSymbolicExpression{Kind: ast.PreSugaredFieldID, Span: sp, ContractName: contract, FieldName: field}, nil

	case lexer.ItemFieldIdentifier:
		rest := tok.Lexeme[1:]
		issuer, rest2, ok := splitOnce(rest, '.')
		if !ok {
			return nil, errors.NewParseError(errors.FailedParsingField, sp, "malformed field identifier %q", tok.Lexeme)
		}
		contract, field, ok := splitOnce(rest2, '.')
		if !ok {
			return nil, errors.NewParseError(errors.FailedParsingField, sp, "malformed field identifier %q", tok.Lexeme)
		}
		if _, ok := types.DecodeBase58Principal(issuer); !ok {
			return nil, errors.NewParseError(errors.FailedParsingPrincipal, sp, "malformed base58 issuer %q", issuer)
		}
		return &ast.PreSymbolicExpression{Kind: ast.PreFieldID, Span: sp, Issuer: issuer, ContractName: contract, FieldName: field}, nil

	default:
		return nil, errors.NewParseError(errors.FailedParsingRemainder, sp, "unexpected token %q", tok.Lexeme)
	}
}

func splitOnce(s string, sep byte) (string, string, bool) {
	idx := strings.IndexByte(s, sep)
	if idx < 0 {
		return "", "", false
	}
	return s[:idx], s[idx+1:], true
}

func unescapeString(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			i++
			switch s[i] {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			default:
				b.WriteByte(s[i])
			}
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

func principalFromBase58(s string, sp ast.Span) (types.StandardPrincipalData, *errors.ParseError) {
	p, ok := types.DecodeBase58Principal(s)
	if !ok {
		return types.StandardPrincipalData{}, errors.NewParseError(errors.FailedParsingPrincipal, sp, "malformed base58 principal %q", s)
	}
	return p, nil
}
