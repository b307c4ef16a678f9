// Package execution implements the ExecutionEngine adapter: a JSON-RPC
// client over the execution layer's engine API (engine_newPayloadV3,
// engine_forkchoiceUpdatedV3), JWT-authenticated per the standard engine
// API handshake.
package execution

import "github.com/ethereum/go-ethereum/common"

// ExecutionPayload is the subset of the execution-layer block header and
// body the beacon node round-trips through the engine API. Transactions
// and withdrawals are kept opaque ([]byte/RLP-encoded) since this adapter
// never interprets execution-layer state itself.
type ExecutionPayload struct {
	ParentHash    common.Hash
	FeeRecipient  common.Address
	StateRoot     common.Hash
	ReceiptsRoot  common.Hash
	LogsBloom     []byte
	PrevRandao    common.Hash
	BlockNumber   uint64
	GasLimit      uint64
	GasUsed       uint64
	Timestamp     uint64
	ExtraData     []byte
	BaseFeePerGas [32]byte
	BlockHash     common.Hash
	Transactions  [][]byte
	Withdrawals   []Withdrawal
	BlobGasUsed   uint64
	ExcessBlobGas uint64
}

// Withdrawal mirrors the execution layer's withdrawal receipt shape.
type Withdrawal struct {
	Index          uint64
	ValidatorIndex uint64
	Address        common.Address
	Amount         uint64
}

// PayloadAttributes requests building a new payload atop a given head
// during ForkchoiceUpdated, as used by the validator's proposal flow.
type PayloadAttributes struct {
	Timestamp             uint64
	PrevRandao            common.Hash
	SuggestedFeeRecipient common.Address
	Withdrawals           []Withdrawal
	ParentBeaconBlockRoot common.Hash
}

// PayloadID identifies a payload-build job the execution client started
// in response to ForkchoiceUpdated's attrs argument.
type PayloadID [8]byte

// ForkchoiceState names the three block hashes the execution engine needs
// to reconcile its own chain view with the beacon chain's fork choice.
type ForkchoiceState struct {
	HeadBlockHash      common.Hash
	SafeBlockHash      common.Hash
	FinalizedBlockHash common.Hash
}
