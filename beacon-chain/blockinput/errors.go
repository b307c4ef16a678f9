package blockinput

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/orovalt/sentrybeacon/beacon-chain/p2p"
)

// ErrorCode classifies a BlockInput failure.
type ErrorCode string

const (
	CodeInvalidConstruction  ErrorCode = "INVALID_CONSTRUCTION"
	CodeIncompleteData       ErrorCode = "INCOMPLETE_DATA"
	CodeMissingBlock         ErrorCode = "MISSING_BLOCK"
	CodeMissingTimeComplete  ErrorCode = "MISSING_TIME_COMPLETE"
	CodeMismatchedRootHex    ErrorCode = "MISMATCHED_ROOT_HEX"
	CodeMismatchedCommitment ErrorCode = "MISMATCHED_KZG_COMMITMENT"
)

// Error is the shape of the coded BlockInput failures other than the two
// consistency errors: a stable Code for programmatic dispatch (errors.As)
// plus a human message. Construction errors are caller bugs. Consistency
// errors have their own types below: MismatchedRootError carries
// peer/source metadata for peer scoring, MismatchedCommitmentError carries
// the offending indices.
type Error struct {
	Code ErrorCode
	Msg  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Msg)
}

func newError(code ErrorCode, format string, args ...interface{}) error {
	return &Error{Code: code, Msg: fmt.Sprintf(format, args...)}
}

// MismatchedRootError is returned when a part's declared blockRootHex
// disagrees with the BlockInput's existing identity. It carries the
// originating peer and ingress path so the gossip layer can score the peer.
type MismatchedRootError struct {
	Expected string
	Got      string
	PeerID   p2p.PeerID
	Source   string
}

func (e *MismatchedRootError) Error() string {
	return fmt.Sprintf("%s: expected root %s, got %s from peer %q via %s",
		CodeMismatchedRootHex, e.Expected, e.Got, e.PeerID, e.Source)
}

// ErrorCode reports CodeMismatchedRootHex, so callers can check either via
// errors.As with a *MismatchedRootError target or by comparing ErrorCode().
func (e *MismatchedRootError) ErrorCode() ErrorCode { return CodeMismatchedRootHex }

// MismatchedCommitmentError is returned when a stored sidecar's commitment
// disagrees with the block body's commitment at the same index.
type MismatchedCommitmentError struct {
	SidecarIndex    uint64
	CommitmentIndex uint64
}

func (e *MismatchedCommitmentError) Error() string {
	return fmt.Sprintf("%s: sidecar index %d does not match block commitment index %d",
		CodeMismatchedCommitment, e.SidecarIndex, e.CommitmentIndex)
}

func (e *MismatchedCommitmentError) ErrorCode() ErrorCode { return CodeMismatchedCommitment }

var (
	// ErrWaitTimeout is returned by WaitFor* when the deadline passes before completion.
	ErrWaitTimeout = errors.New("timeout waiting for block input")
	// ErrWaitCancelled is returned by WaitFor* when the caller's context is
	// cancelled or the registry evicts the input before completion.
	ErrWaitCancelled = errors.New("cancelled waiting for block input")
)
