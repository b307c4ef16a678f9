package execution

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/orovalt/sentrybeacon/beacon-chain/forkchoice"
)

func TestParseStatus(t *testing.T) {
	cases := map[string]Status{
		"VALID":              StatusValid,
		"INVALID":            StatusInvalid,
		"SYNCING":            StatusSyncing,
		"ACCEPTED":           StatusAccepted,
		"INVALID_BLOCK_HASH": StatusInvalidBlockHash,
		"garbage":            StatusUnknown,
	}
	for raw, want := range cases {
		require.Equal(t, want, parseStatus(raw))
	}
}

func TestStatus_ToExecutionStatus(t *testing.T) {
	require.Equal(t, forkchoice.ExecutionStatusValid, StatusValid.ToExecutionStatus())
	require.Equal(t, forkchoice.ExecutionStatusInvalid, StatusInvalid.ToExecutionStatus())
	require.Equal(t, forkchoice.ExecutionStatusInvalid, StatusInvalidBlockHash.ToExecutionStatus())
	require.Equal(t, forkchoice.ExecutionStatusSyncing, StatusSyncing.ToExecutionStatus())
	require.Equal(t, forkchoice.ExecutionStatusSyncing, StatusAccepted.ToExecutionStatus())
	require.Equal(t, forkchoice.ExecutionStatusSyncing, StatusUnknown.ToExecutionStatus())
}

func TestStatus_String(t *testing.T) {
	require.Equal(t, "VALID", StatusValid.String())
	require.Equal(t, "UNKNOWN", StatusUnknown.String())
}
