// Package lexer turns Clarity-style contract source into a flat token
// stream, reproducing the ordered regex matcher table and the
// separator-context rule of the reference implementation.
package lexer

// ItemType enumerates the lexical items spec.md §4.1 defines. Whitespace
// and comments are consumed by the lexer but never emitted as tokens;
// every other matcher produces exactly one Token.
type ItemType int

const (
	ItemIllegal ItemType = iota
	ItemEOF

	ItemStringLiteral
	ItemComma
	ItemColon
	ItemLeftParen
	ItemRightParen
	ItemLeftBrace
	ItemRightBrace
	ItemTraitReference
	ItemHexString
	ItemUInt
	ItemInt
	ItemQuotedBool
	ItemFieldIdentifier        // 'ISSUER.contract.name
	ItemSugaredFieldIdentifier // .contract.name
	ItemContractIdentifier     // 'ISSUER.contract
	ItemSugaredContractIdentifier
	ItemPrincipalLiteral // 'ISSUER
	ItemVariable
)

func (t ItemType) String() string {
	switch t {
	case ItemEOF:
		return "EOF"
	case ItemStringLiteral:
		return "StringLiteral"
	case ItemComma:
		return "Comma"
	case ItemColon:
		return "Colon"
	case ItemLeftParen:
		return "LeftParen"
	case ItemRightParen:
		return "RightParen"
	case ItemLeftBrace:
		return "LeftBrace"
	case ItemRightBrace:
		return "RightBrace"
	case ItemTraitReference:
		return "TraitReference"
	case ItemHexString:
		return "HexString"
	case ItemUInt:
		return "UInt"
	case ItemInt:
		return "Int"
	case ItemQuotedBool:
		return "QuotedBool"
	case ItemFieldIdentifier:
		return "FieldIdentifier"
	case ItemSugaredFieldIdentifier:
		return "SugaredFieldIdentifier"
	case ItemContractIdentifier:
		return "ContractIdentifier"
	case ItemSugaredContractIdentifier:
		return "SugaredContractIdentifier"
	case ItemPrincipalLiteral:
		return "PrincipalLiteral"
	case ItemVariable:
		return "Variable"
	default:
		return "Illegal"
	}
}

// Token is one lexical item with its source span.
type Token struct {
	Type    ItemType
	Lexeme  string
	Line    int
	Column  int
	Offset  int
}

// EndColumn returns the column of the token's last character, matching
// spec.md's "end column = start column + token length - 1" span rule.
func (t Token) EndColumn() int {
	if len(t.Lexeme) == 0 {
		return t.Column
	}
	return t.Column + len(t.Lexeme) - 1
}
