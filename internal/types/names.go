// Package types implements the Value tagged union and TypeSignature
// algebra of spec.md §3/§4.7: bounded identifier strings, principal and
// trait identity, and the admission (structural subtyping) relation.
package types

import (
	"regexp"

	"clarity/internal/errors"
	"clarity/internal/span"
)

const (
	ContractMinNameLength = 5
	ContractMaxNameLength = 40
	ClarityMaxNameLength  = 128
)

// clarityNameRe matches spec.md §3's ContractName/ClarityName
// charset, disallowing `#` and a leading digit or quote.
var clarityNameRe = regexp.MustCompile(`^[a-zA-Z]([a-zA-Z0-9]|[-!?+<>=/*])*$`)

// ClarityName is an interned, validated identifier (max 128 chars).
type ClarityName string

func NewClarityName(s string) (ClarityName, error) {
	if len(s) == 0 || len(s) > ClarityMaxNameLength {
		return "", errors.NewCheckError(errors.TypeError, span.Span{}, "clarity name %q must be 1-%d chars", s, ClarityMaxNameLength)
	}
	if !clarityNameRe.MatchString(s) {
		return "", errors.NewCheckError(errors.TypeError, span.Span{}, "clarity name %q has illegal characters", s)
	}
	return ClarityName(s), nil
}

// ContractName is a ClarityName additionally bounded to [5, 40] chars.
type ContractName string

func NewContractName(s string) (ContractName, error) {
	if len(s) < ContractMinNameLength || len(s) > ContractMaxNameLength {
		return "", errors.NewCheckError(errors.TypeError, span.Span{}, "contract name %q must be %d-%d chars", s, ContractMinNameLength, ContractMaxNameLength)
	}
	if !clarityNameRe.MatchString(s) {
		return "", errors.NewCheckError(errors.TypeError, span.Span{}, "contract name %q has illegal characters", s)
	}
	return ContractName(s), nil
}
