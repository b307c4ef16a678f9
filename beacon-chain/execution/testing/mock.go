// Package testing provides a scriptable EngineCaller double for exercising
// the pipeline orchestrator and fork-choice integration without a real
// execution-layer JSON-RPC endpoint.
package testing

import (
	"context"

	"github.com/ethereum/go-ethereum/common"

	"github.com/orovalt/sentrybeacon/beacon-chain/execution"
)

// EngineClient is a fully in-memory execution.EngineCaller: every call is
// recorded and the next queued response is returned, so tests can script
// VALID/INVALID/SYNCING sequences without a server.
type EngineClient struct {
	NewPayloadResponses        []*execution.NewPayloadResponse
	NewPayloadErr              error
	ForkchoiceUpdatedResponses []*execution.ForkchoiceUpdatedResponse
	ForkchoiceUpdatedErr       error

	NewPayloadCalls        []execution.ExecutionPayload
	ForkchoiceUpdatedCalls []execution.ForkchoiceState
}

var _ execution.EngineCaller = (*EngineClient)(nil)

// NewPayload returns the next queued response, defaulting to VALID when
// none was queued.
func (m *EngineClient) NewPayload(_ context.Context, payload execution.ExecutionPayload, _ []common.Hash, _ *common.Hash) (*execution.NewPayloadResponse, error) {
	m.NewPayloadCalls = append(m.NewPayloadCalls, payload)
	if m.NewPayloadErr != nil {
		return nil, m.NewPayloadErr
	}
	if len(m.NewPayloadResponses) == 0 {
		return &execution.NewPayloadResponse{Status: execution.StatusValid, LatestValidHash: payload.BlockHash}, nil
	}
	resp := m.NewPayloadResponses[0]
	m.NewPayloadResponses = m.NewPayloadResponses[1:]
	return resp, nil
}

// ForkchoiceUpdated returns the next queued response, defaulting to VALID
// with no payload build job when none was queued.
func (m *EngineClient) ForkchoiceUpdated(_ context.Context, state execution.ForkchoiceState, _ *execution.PayloadAttributes) (*execution.ForkchoiceUpdatedResponse, error) {
	m.ForkchoiceUpdatedCalls = append(m.ForkchoiceUpdatedCalls, state)
	if m.ForkchoiceUpdatedErr != nil {
		return nil, m.ForkchoiceUpdatedErr
	}
	if len(m.ForkchoiceUpdatedResponses) == 0 {
		return &execution.ForkchoiceUpdatedResponse{Status: execution.StatusValid}, nil
	}
	resp := m.ForkchoiceUpdatedResponses[0]
	m.ForkchoiceUpdatedResponses = m.ForkchoiceUpdatedResponses[1:]
	return resp, nil
}
