package execution

import (
	"context"
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var log = logrus.WithField("prefix", "execution")

const (
	newPayloadMethod        = "engine_newPayloadV3"
	forkchoiceUpdatedMethod = "engine_forkchoiceUpdatedV3"
)

// EngineCaller is the ExecutionEngine contract: submit a candidate
// payload for validation, and reconcile the execution client's head/
// safe/finalized view with fork choice, optionally kicking off a new
// payload build job.
type EngineCaller interface {
	NewPayload(ctx context.Context, payload ExecutionPayload, versionedHashes []common.Hash, parentBeaconBlockRoot *common.Hash) (*NewPayloadResponse, error)
	ForkchoiceUpdated(ctx context.Context, state ForkchoiceState, attrs *PayloadAttributes) (*ForkchoiceUpdatedResponse, error)
}

// Client is an EngineCaller backed by a real engine-API JSON-RPC server.
type Client struct {
	rpcClient *rpc.Client
}

var _ EngineCaller = (*Client)(nil)

// NewClient dials an HTTP(S) engine API endpoint, attaching a fresh
// JWT bearer token to every request signed with secret.
func NewClient(ctx context.Context, endpoint string, jwtSecret []byte) (*Client, error) {
	httpClient := &http.Client{Transport: newJWTTransport(jwtSecret)}
	rpcClient, err := rpc.DialOptions(ctx, endpoint, rpc.WithHTTPClient(httpClient))
	if err != nil {
		return nil, errors.Wrap(err, "failed to dial execution engine endpoint")
	}
	return &Client{rpcClient: rpcClient}, nil
}

// Close releases the underlying RPC connection.
func (c *Client) Close() {
	c.rpcClient.Close()
}

// NewPayload submits payload for execution-layer validation.
func (c *Client) NewPayload(ctx context.Context, payload ExecutionPayload, versionedHashes []common.Hash, parentBeaconBlockRoot *common.Hash) (*NewPayloadResponse, error) {
	if versionedHashes == nil {
		versionedHashes = []common.Hash{}
	}
	var root common.Hash
	if parentBeaconBlockRoot != nil {
		root = *parentBeaconBlockRoot
	}
	var result payloadStatusJSON
	err := c.rpcClient.CallContext(ctx, &result, newPayloadMethod, toPayloadJSON(payload), versionedHashes, root)
	if err != nil {
		return nil, errors.Wrap(err, "engine_newPayloadV3 call failed")
	}
	resp := &NewPayloadResponse{Status: parseStatus(result.Status)}
	if result.LatestValidHash != nil {
		resp.LatestValidHash = *result.LatestValidHash
	}
	if result.ValidationError != nil {
		resp.ValidationError = *result.ValidationError
	}
	log.WithField("status", resp.Status).WithField("blockHash", payload.BlockHash).Debug("newPayload response")
	return resp, nil
}

// ForkchoiceUpdated reconciles the execution client's view of head/safe/
// finalized with fork choice, optionally starting a payload build job
// when attrs is non-nil.
func (c *Client) ForkchoiceUpdated(ctx context.Context, state ForkchoiceState, attrs *PayloadAttributes) (*ForkchoiceUpdatedResponse, error) {
	var result forkchoiceUpdatedResultJSON
	err := c.rpcClient.CallContext(ctx, &result, forkchoiceUpdatedMethod, toForkchoiceStateJSON(state), toAttributesJSON(attrs))
	if err != nil {
		return nil, errors.Wrap(err, "engine_forkchoiceUpdatedV3 call failed")
	}
	resp := &ForkchoiceUpdatedResponse{
		Status:    parseStatus(result.PayloadStatus.Status),
		PayloadID: result.PayloadID,
	}
	if result.PayloadStatus.LatestValidHash != nil {
		resp.LatestValidHash = *result.PayloadStatus.LatestValidHash
	}
	if result.PayloadStatus.ValidationError != nil {
		resp.ValidationError = *result.PayloadStatus.ValidationError
	}
	log.WithField("status", resp.Status).WithField("head", state.HeadBlockHash).Debug("forkchoiceUpdated response")
	return resp, nil
}
