package execution

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// The engine API exchanges quantities and byte strings as 0x-prefixed hex
// JSON, so every wire struct below mirrors go-ethereum's hexutil types
// rather than the plain Go numeric/byte types ExecutionPayload uses.

type withdrawalJSON struct {
	Index          hexutil.Uint64 `json:"index"`
	ValidatorIndex hexutil.Uint64 `json:"validatorIndex"`
	Address        common.Address `json:"address"`
	Amount         hexutil.Uint64 `json:"amount"`
}

type executionPayloadJSON struct {
	ParentHash    common.Hash      `json:"parentHash"`
	FeeRecipient  common.Address   `json:"feeRecipient"`
	StateRoot     common.Hash      `json:"stateRoot"`
	ReceiptsRoot  common.Hash      `json:"receiptsRoot"`
	LogsBloom     hexutil.Bytes    `json:"logsBloom"`
	PrevRandao    common.Hash      `json:"prevRandao"`
	BlockNumber   hexutil.Uint64   `json:"blockNumber"`
	GasLimit      hexutil.Uint64   `json:"gasLimit"`
	GasUsed       hexutil.Uint64   `json:"gasUsed"`
	Timestamp     hexutil.Uint64   `json:"timestamp"`
	ExtraData     hexutil.Bytes    `json:"extraData"`
	BaseFeePerGas hexutil.Big      `json:"baseFeePerGas"`
	BlockHash     common.Hash      `json:"blockHash"`
	Transactions  []hexutil.Bytes  `json:"transactions"`
	Withdrawals   []withdrawalJSON `json:"withdrawals"`
	BlobGasUsed   hexutil.Uint64   `json:"blobGasUsed"`
	ExcessBlobGas hexutil.Uint64   `json:"excessBlobGas"`
}

func toPayloadJSON(p ExecutionPayload) executionPayloadJSON {
	txs := make([]hexutil.Bytes, len(p.Transactions))
	for i, tx := range p.Transactions {
		txs[i] = tx
	}
	wds := make([]withdrawalJSON, len(p.Withdrawals))
	for i, w := range p.Withdrawals {
		wds[i] = withdrawalJSON{
			Index:          hexutil.Uint64(w.Index),
			ValidatorIndex: hexutil.Uint64(w.ValidatorIndex),
			Address:        w.Address,
			Amount:         hexutil.Uint64(w.Amount),
		}
	}
	baseFee := hexutil.Big(*new(big.Int).SetBytes(p.BaseFeePerGas[:]))
	return executionPayloadJSON{
		ParentHash:    p.ParentHash,
		FeeRecipient:  p.FeeRecipient,
		StateRoot:     p.StateRoot,
		ReceiptsRoot:  p.ReceiptsRoot,
		LogsBloom:     p.LogsBloom,
		PrevRandao:    p.PrevRandao,
		BlockNumber:   hexutil.Uint64(p.BlockNumber),
		GasLimit:      hexutil.Uint64(p.GasLimit),
		GasUsed:       hexutil.Uint64(p.GasUsed),
		Timestamp:     hexutil.Uint64(p.Timestamp),
		ExtraData:     p.ExtraData,
		BaseFeePerGas: baseFee,
		BlockHash:     p.BlockHash,
		Transactions:  txs,
		Withdrawals:   wds,
		BlobGasUsed:   hexutil.Uint64(p.BlobGasUsed),
		ExcessBlobGas: hexutil.Uint64(p.ExcessBlobGas),
	}
}

type payloadAttributesJSON struct {
	Timestamp             hexutil.Uint64   `json:"timestamp"`
	PrevRandao            common.Hash      `json:"prevRandao"`
	SuggestedFeeRecipient common.Address   `json:"suggestedFeeRecipient"`
	Withdrawals           []withdrawalJSON `json:"withdrawals"`
	ParentBeaconBlockRoot common.Hash      `json:"parentBeaconBlockRoot"`
}

func toAttributesJSON(a *PayloadAttributes) *payloadAttributesJSON {
	if a == nil {
		return nil
	}
	wds := make([]withdrawalJSON, len(a.Withdrawals))
	for i, w := range a.Withdrawals {
		wds[i] = withdrawalJSON{
			Index:          hexutil.Uint64(w.Index),
			ValidatorIndex: hexutil.Uint64(w.ValidatorIndex),
			Address:        w.Address,
			Amount:         hexutil.Uint64(w.Amount),
		}
	}
	return &payloadAttributesJSON{
		Timestamp:             hexutil.Uint64(a.Timestamp),
		PrevRandao:            a.PrevRandao,
		SuggestedFeeRecipient: a.SuggestedFeeRecipient,
		Withdrawals:           wds,
		ParentBeaconBlockRoot: a.ParentBeaconBlockRoot,
	}
}

type forkchoiceStateJSON struct {
	HeadBlockHash      common.Hash `json:"headBlockHash"`
	SafeBlockHash      common.Hash `json:"safeBlockHash"`
	FinalizedBlockHash common.Hash `json:"finalizedBlockHash"`
}

func toForkchoiceStateJSON(s ForkchoiceState) forkchoiceStateJSON {
	return forkchoiceStateJSON{
		HeadBlockHash:      s.HeadBlockHash,
		SafeBlockHash:      s.SafeBlockHash,
		FinalizedBlockHash: s.FinalizedBlockHash,
	}
}

type payloadStatusJSON struct {
	Status          string       `json:"status"`
	LatestValidHash *common.Hash `json:"latestValidHash"`
	ValidationError *string      `json:"validationError"`
}

type forkchoiceUpdatedResultJSON struct {
	PayloadStatus payloadStatusJSON `json:"payloadStatus"`
	PayloadID     *PayloadID        `json:"payloadId"`
}
