package types

import "fmt"

// StandardPrincipalData is a version byte plus a 20-byte hash, mirroring
// original_source/src/vm/types/mod.rs's StandardPrincipalData(u8, [u8;20]).
type StandardPrincipalData struct {
	Version byte
	Hash    [20]byte
}

func TransientPrincipal() StandardPrincipalData {
	return StandardPrincipalData{}
}

func (p StandardPrincipalData) String() string {
	return fmt.Sprintf("%02x%x", p.Version, p.Hash)
}

// QualifiedContractIdentifier identifies a deployed contract by issuer and
// name.
type QualifiedContractIdentifier struct {
	Issuer StandardPrincipalData
	Name   ContractName
}

func NewQualifiedContractIdentifier(issuer StandardPrincipalData, name ContractName) QualifiedContractIdentifier {
	return QualifiedContractIdentifier{Issuer: issuer, Name: name}
}

// TransientContractIdentifier returns a one-shot identity for CLI/REPL
// top-level evaluation, matching `QualifiedContractIdentifier::transient`.
func TransientContractIdentifier() QualifiedContractIdentifier {
	return QualifiedContractIdentifier{Issuer: TransientPrincipal(), Name: ContractName("__transient")}
}

func (c QualifiedContractIdentifier) String() string {
	return fmt.Sprintf("%s.%s", c.Issuer, c.Name)
}

// PrincipalKind distinguishes a standard principal from a contract one.
type PrincipalKind int

const (
	PrincipalStandard PrincipalKind = iota
	PrincipalContract
)

// PrincipalData is the Standard|Contract sum type from spec.md §3.
type PrincipalData struct {
	Kind     PrincipalKind
	Standard StandardPrincipalData
	Contract QualifiedContractIdentifier
}

func NewStandardPrincipal(p StandardPrincipalData) PrincipalData {
	return PrincipalData{Kind: PrincipalStandard, Standard: p}
}

func NewContractPrincipal(c QualifiedContractIdentifier) PrincipalData {
	return PrincipalData{Kind: PrincipalContract, Contract: c}
}

func (p PrincipalData) String() string {
	if p.Kind == PrincipalStandard {
		return p.Standard.String()
	}
	return p.Contract.String()
}

func (p PrincipalData) Equal(other PrincipalData) bool {
	if p.Kind != other.Kind {
		return false
	}
	if p.Kind == PrincipalStandard {
		return p.Standard == other.Standard
	}
	return p.Contract == other.Contract
}

// TraitIdentifier identifies a trait by the contract that defines it and
// its name within that contract.
type TraitIdentifier struct {
	Contract QualifiedContractIdentifier
	Name     ClarityName
}

func NewTraitIdentifier(contract QualifiedContractIdentifier, name ClarityName) TraitIdentifier {
	return TraitIdentifier{Contract: contract, Name: name}
}

func (t TraitIdentifier) String() string {
	return fmt.Sprintf("%s.%s", t.Contract, t.Name)
}
