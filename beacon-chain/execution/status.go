package execution

import "github.com/orovalt/sentrybeacon/beacon-chain/forkchoice"

// Status is the payload validity verdict the engine API returns from
// both engine_newPayloadV3 and engine_forkchoiceUpdatedV3.
type Status int

const (
	StatusValid Status = iota
	StatusInvalid
	StatusSyncing
	StatusAccepted
	StatusInvalidBlockHash
	StatusUnknown
)

func (s Status) String() string {
	switch s {
	case StatusValid:
		return "VALID"
	case StatusInvalid:
		return "INVALID"
	case StatusSyncing:
		return "SYNCING"
	case StatusAccepted:
		return "ACCEPTED"
	case StatusInvalidBlockHash:
		return "INVALID_BLOCK_HASH"
	default:
		return "UNKNOWN"
	}
}

func parseStatus(raw string) Status {
	switch raw {
	case "VALID":
		return StatusValid
	case "INVALID":
		return StatusInvalid
	case "SYNCING":
		return StatusSyncing
	case "ACCEPTED":
		return StatusAccepted
	case "INVALID_BLOCK_HASH":
		return StatusInvalidBlockHash
	default:
		return StatusUnknown
	}
}

// ToExecutionStatus collapses the engine API's six-way status into the
// three-way status fork choice cares about: ACCEPTED and SYNCING are both
// "not yet known good", everything but INVALID/INVALID_BLOCK_HASH is
// optimistically valid.
func (s Status) ToExecutionStatus() forkchoice.ExecutionStatus {
	switch s {
	case StatusInvalid, StatusInvalidBlockHash:
		return forkchoice.ExecutionStatusInvalid
	case StatusValid:
		return forkchoice.ExecutionStatusValid
	default:
		return forkchoice.ExecutionStatusSyncing
	}
}

// NewPayloadResponse is engine_newPayloadV3's result.
type NewPayloadResponse struct {
	Status          Status
	LatestValidHash [32]byte
	ValidationError string
}

// ForkchoiceUpdatedResponse is engine_forkchoiceUpdatedV3's result.
type ForkchoiceUpdatedResponse struct {
	Status          Status
	LatestValidHash [32]byte
	PayloadID       *PayloadID
	ValidationError string
}
