package lexer

import (
	"regexp"
	"strings"

	"clarity/internal/span"
	"clarity/internal/errors"
)

// MaxProgramLength bounds source length before AST_PARSE cost charging
// would dominate the budget; spec.md §6 notes the de-facto cap is cost,
// not a hard constant, but a sanity ceiling still guards against
// pathological inputs reaching the regex table at all.
const MaxProgramLength = 16 * 1024 * 1024

type matcher struct {
	item ItemType
	re   *regexp.Regexp
	skip bool // whitespace/comment/newline: consumed, never emitted
}

// matchers is the ordered table of spec.md §4.1; first match wins.
var matchers = []matcher{
	// Printable ASCII only (0x20-0x7E, excluding `"`), plus the single
	// `\"` escape — matching the reference lexer's
	// `((\\")|([[ -~]&&[^"]]))*` character class exactly; anything
	// outside that range (control bytes, multi-byte UTF-8) fails to lex.
	{ItemStringLiteral, regexp.MustCompile(`^"(?:\\"|[ -!#-~])*"`), false},
	{ItemIllegal, regexp.MustCompile(`^;;[^\n]*`), true}, // comment
	{ItemIllegal, regexp.MustCompile(`^\n+`), true},      // newline(s)
	{ItemIllegal, regexp.MustCompile(`^[ \t]+`), true},   // whitespace
	{ItemComma, regexp.MustCompile(`^,`), false},
	{ItemColon, regexp.MustCompile(`^:`), false},
	{ItemLeftParen, regexp.MustCompile(`^\(`), false},
	{ItemRightParen, regexp.MustCompile(`^\)`), false},
	{ItemLeftBrace, regexp.MustCompile(`^\{`), false},
	{ItemRightBrace, regexp.MustCompile(`^\}`), false},
	{ItemTraitReference, regexp.MustCompile(`^<[a-zA-Z]([a-zA-Z0-9]|[-!?+<>=/*])*>`), false},
	{ItemHexString, regexp.MustCompile(`^0x[0-9a-fA-F]+`), false},
	{ItemUInt, regexp.MustCompile(`^u[0-9]+`), false},
	{ItemInt, regexp.MustCompile(`^-?[0-9]+`), false},
	{ItemQuotedBool, regexp.MustCompile(`^'(true|false)`), false},
	{ItemFieldIdentifier, regexp.MustCompile(`^'[0-9A-Z]{28,41}\.[a-zA-Z]([a-zA-Z0-9]|[-!?+<>=/*]){4,39}\.[a-zA-Z]([a-zA-Z0-9]|[-!?+<>=/*]){0,127}`), false},
	{ItemSugaredFieldIdentifier, regexp.MustCompile(`^\.[a-zA-Z]([a-zA-Z0-9]|[-!?+<>=/*]){4,39}\.[a-zA-Z]([a-zA-Z0-9]|[-!?+<>=/*]){0,127}`), false},
	{ItemContractIdentifier, regexp.MustCompile(`^'[0-9A-Z]{28,41}\.[a-zA-Z]([a-zA-Z0-9]|[-!?+<>=/*]){4,39}`), false},
	{ItemSugaredContractIdentifier, regexp.MustCompile(`^\.[a-zA-Z]([a-zA-Z0-9]|[-!?+<>=/*]){4,39}`), false},
	{ItemPrincipalLiteral, regexp.MustCompile(`^'[0-9A-Z]{28,41}`), false},
	{ItemVariable, regexp.MustCompile(`^([a-zA-Z]|[-!?+<>=/*])([a-zA-Z0-9]|[-!?+<>=/*])*`), false},
}

// needsSeparator is the set of item types after which spec.md §4.1's
// context rule requires the next match to be whitespace or one of
// `) } , :`.
func needsSeparator(t ItemType) bool {
	switch t {
	case ItemStringLiteral, ItemTraitReference, ItemHexString, ItemUInt, ItemInt,
		ItemQuotedBool, ItemFieldIdentifier, ItemSugaredFieldIdentifier,
		ItemContractIdentifier, ItemSugaredContractIdentifier, ItemPrincipalLiteral,
		ItemVariable:
		return true
	default:
		return false
	}
}

func isSeparatorItem(t ItemType) bool {
	switch t {
	case ItemRightParen, ItemRightBrace, ItemComma, ItemColon:
		return true
	default:
		return false
	}
}

// Lex tokenizes source, returning the emitted (non-skip) tokens in order.
func Lex(source string) ([]Token, *errors.ParseError) {
	if len(source) > MaxProgramLength {
		return nil, errors.NewParseError(errors.ProgramTooLarge, span.Span{}, "source exceeds %d bytes", MaxProgramLength)
	}

	var tokens []Token
	line, col, offset := 1, 1, 0
	pendingSeparator := false

	for offset < len(source) {
		rest := source[offset:]
		m, text := matchAt(rest)
		if m == nil {
			return tokens, errors.NewParseError(errors.FailedParsingRemainder, spanAt(line, col, offset), "unrecognized input starting at %q", firstRunes(rest, 16))
		}

		if pendingSeparator {
			ok := m.skip || isSeparatorItem(m.item)
			if !ok {
				return tokens, errors.NewParseError(errors.SeparatorExpected, spanAt(line, col, offset), "expected a separator before %q", text)
			}
			pendingSeparator = false
		}

		startLine, startCol, startOffset := line, col, offset

		if m.skip {
			// Comments and plain whitespace advance column per character;
			// only `\n` resets column and advances line, matching the
			// reference lexer's documented (if surprising) behavior of
			// continuing to count columns through a comment body.
			for _, r := range text {
				if r == '\n' {
					line++
					col = 1
				} else {
					col++
				}
			}
			offset += len(text)
			continue
		}

		line2, col2 := line, col+len(text)
		tok := Token{Type: m.item, Lexeme: text, Line: startLine, Column: startCol, Offset: startOffset}
		tokens = append(tokens, tok)
		line, col, offset = line2, col2, offset+len(text)

		if needsSeparator(m.item) {
			pendingSeparator = true
		}
	}

	return tokens, nil
}

func matchAt(rest string) (*matcher, string) {
	for i := range matchers {
		loc := matchers[i].re.FindStringIndex(rest)
		if loc != nil && loc[0] == 0 {
			return &matchers[i], rest[loc[0]:loc[1]]
		}
	}
	return nil, ""
}

func spanAt(line, col, offset int) span.Span {
	p := span.Position{Line: line, Column: col, Offset: offset}
	return span.Span{Start: p, End: p}
}

func firstRunes(s string, n int) string {
	if idx := strings.IndexByte(s, '\n'); idx >= 0 && idx < n {
		n = idx
	}
	if len(s) <= n {
		return s
	}
	return s[:n]
}
