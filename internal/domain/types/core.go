package types

// ProgramName is the name a program is registered under in an Anchor
// workspace, e.g. "example_cpi".
type ProgramName string

// String returns the string form of the program name.
func (n ProgramName) String() string { return string(n) }

// Fingerprint is a short identifier for public keys presented to users.
type Fingerprint string

// String returns the string form of the fingerprint.
func (f Fingerprint) String() string { return string(f) }

// Commitment is a Solana commitment level.
type Commitment string

// Commitment levels, weakest first.
const (
	CommitmentProcessed Commitment = "processed"
	CommitmentConfirmed Commitment = "confirmed"
	CommitmentFinalized Commitment = "finalized"
)

// String returns the string form of the commitment.
func (c Commitment) String() string { return string(c) }

// Rank orders commitments so that a status can be compared against a target.
// Unknown values rank below processed.
func (c Commitment) Rank() int {
	switch c {
	case CommitmentProcessed:
		return 1
	case CommitmentConfirmed:
		return 2
	case CommitmentFinalized:
		return 3
	}
	return 0
}
