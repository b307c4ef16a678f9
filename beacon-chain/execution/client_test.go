package execution

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/stretchr/testify/require"
)

func rpcResult(t *testing.T, method string, result interface{}) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() { require.NoError(t, r.Body.Close()) }()
		var req struct {
			Method string `json:"method"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, method, req.Method)

		w.Header().Set("Content-Type", "application/json")
		resp := map[string]interface{}{"jsonrpc": "2.0", "id": 1, "result": result}
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
}

func dialTestServer(t *testing.T, srv *httptest.Server) *Client {
	rpcClient, err := rpc.DialHTTP(srv.URL)
	require.NoError(t, err)
	t.Cleanup(rpcClient.Close)
	return &Client{rpcClient: rpcClient}
}

func TestClient_NewPayload_Valid(t *testing.T) {
	blockHash := common.HexToHash("0xaa")
	srv := rpcResult(t, newPayloadMethod, map[string]interface{}{
		"status":          "VALID",
		"latestValidHash": blockHash,
		"validationError": nil,
	})
	defer srv.Close()

	client := dialTestServer(t, srv)
	resp, err := client.NewPayload(context.Background(), ExecutionPayload{BlockHash: blockHash}, nil, nil)
	require.NoError(t, err)
	require.Equal(t, StatusValid, resp.Status)
	require.Equal(t, [32]byte(blockHash), resp.LatestValidHash)
}

func TestClient_NewPayload_Invalid(t *testing.T) {
	validHash := common.HexToHash("0xbb")
	srv := rpcResult(t, newPayloadMethod, map[string]interface{}{
		"status":          "INVALID",
		"latestValidHash": validHash,
		"validationError": "bad block",
	})
	defer srv.Close()

	client := dialTestServer(t, srv)
	resp, err := client.NewPayload(context.Background(), ExecutionPayload{}, nil, nil)
	require.NoError(t, err)
	require.Equal(t, StatusInvalid, resp.Status)
	require.Equal(t, "bad block", resp.ValidationError)
}

func TestClient_ForkchoiceUpdated_WithPayloadID(t *testing.T) {
	id := PayloadID{1, 2, 3}
	srv := rpcResult(t, forkchoiceUpdatedMethod, map[string]interface{}{
		"payloadStatus": map[string]interface{}{"status": "VALID", "latestValidHash": nil, "validationError": nil},
		"payloadId":     id,
	})
	defer srv.Close()

	client := dialTestServer(t, srv)
	resp, err := client.ForkchoiceUpdated(context.Background(), ForkchoiceState{}, &PayloadAttributes{Timestamp: 123})
	require.NoError(t, err)
	require.Equal(t, StatusValid, resp.Status)
	require.NotNil(t, resp.PayloadID)
	require.Equal(t, id, *resp.PayloadID)
}

func TestClient_ForkchoiceUpdated_Syncing(t *testing.T) {
	srv := rpcResult(t, forkchoiceUpdatedMethod, map[string]interface{}{
		"payloadStatus": map[string]interface{}{"status": "SYNCING", "latestValidHash": nil, "validationError": nil},
		"payloadId":     nil,
	})
	defer srv.Close()

	client := dialTestServer(t, srv)
	resp, err := client.ForkchoiceUpdated(context.Background(), ForkchoiceState{}, nil)
	require.NoError(t, err)
	require.Equal(t, StatusSyncing, resp.Status)
	require.Nil(t, resp.PayloadID)
}

func TestJWTTransport_SignsRequests(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"jsonrpc":"2.0","id":1,"result":null}`))
	}))
	defer srv.Close()

	secret := make([]byte, 32)
	httpClient := &http.Client{Transport: newJWTTransport(secret)}
	rpcClient, err := rpc.DialOptions(context.Background(), srv.URL, rpc.WithHTTPClient(httpClient))
	require.NoError(t, err)
	defer rpcClient.Close()

	var result interface{}
	require.NoError(t, rpcClient.CallContext(context.Background(), &result, "engine_exchangeCapabilities", []string{}))
	require.True(t, strings.HasPrefix(gotAuth, "Bearer "))
}
