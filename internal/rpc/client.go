package rpc

// #region imports
import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// #endregion imports

// #region client-struct

// Client wraps the gRPC connection to a running engine service.
type Client struct {
	conn *grpc.ClientConn
}

// #endregion client-struct

// #region constructor

// NewClient connects to an engine gRPC server.
func NewClient(addr string) (*Client, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("grpc dial %s: %w", addr, err)
	}
	return &Client{conn: conn}, nil
}

// Close shuts down the gRPC connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// #endregion constructor

// #region invoke

func (c *Client) invoke(ctx context.Context, method string, req, resp any) error {
	data, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("marshal %s request: %w", method, err)
	}
	out := new(wrapperspb.BytesValue)
	if err := c.conn.Invoke(ctx, "/"+ServiceName+"/"+method, wrapperspb.Bytes(data), out); err != nil {
		return fmt.Errorf("%s rpc: %w", method, err)
	}
	if resp == nil {
		return nil
	}
	if err := json.Unmarshal(out.GetValue(), resp); err != nil {
		return fmt.Errorf("unmarshal %s response: %w", method, err)
	}
	return nil
}

// #endregion invoke

// #region methods

// ProcessWearable sends a vendor payload through the stateful pipeline and
// returns the rendered documents.
func (c *Client) ProcessWearable(ctx context.Context, vendor string, payload []byte, timezone, deviceID string) ([]json.RawMessage, error) {
	var resp DocumentsResponse
	req := WearableRequest{Vendor: vendor, Payload: payload, Timezone: timezone, DeviceID: deviceID}
	if err := c.invoke(ctx, "ProcessWearable", req, &resp); err != nil {
		return nil, err
	}
	return resp.Documents, nil
}

// ProcessBehavior sends a session log through the stateful pipeline.
func (c *Client) ProcessBehavior(ctx context.Context, payload []byte, deviceID string) (json.RawMessage, error) {
	var resp DocumentResponse
	req := BehaviorRequest{Payload: payload, DeviceID: deviceID}
	if err := c.invoke(ctx, "ProcessBehavior", req, &resp); err != nil {
		return nil, err
	}
	return resp.Document, nil
}

// ConvertWearable runs the stateless one-shot conversion.
func (c *Client) ConvertWearable(ctx context.Context, vendor string, payload []byte, timezone, deviceID string) ([]json.RawMessage, error) {
	var resp DocumentsResponse
	req := WearableRequest{Vendor: vendor, Payload: payload, Timezone: timezone, DeviceID: deviceID}
	if err := c.invoke(ctx, "ConvertWearable", req, &resp); err != nil {
		return nil, err
	}
	return resp.Documents, nil
}

// ConvertBehavior runs the stateless one-shot session conversion.
func (c *Client) ConvertBehavior(ctx context.Context, payload []byte) (json.RawMessage, error) {
	var resp DocumentResponse
	if err := c.invoke(ctx, "ConvertBehavior", BehaviorRequest{Payload: payload}, &resp); err != nil {
		return nil, err
	}
	return resp.Document, nil
}

// Snapshot requests a read-only state snapshot at now, optionally combined
// with a fresh session.
func (c *Client) Snapshot(ctx context.Context, now time.Time, session []byte) (json.RawMessage, error) {
	var resp DocumentResponse
	req := SnapshotRequest{NowUTC: now.UTC().Format(time.RFC3339), Session: session}
	if err := c.invoke(ctx, "Snapshot", req, &resp); err != nil {
		return nil, err
	}
	return resp.Document, nil
}

// SaveBaselines fetches the serialized baseline state.
func (c *Client) SaveBaselines(ctx context.Context) ([]byte, error) {
	var resp StateResponse
	if err := c.invoke(ctx, "SaveBaselines", struct{}{}, &resp); err != nil {
		return nil, err
	}
	return resp.State, nil
}

// LoadBaselines restores previously saved baseline state.
func (c *Client) LoadBaselines(ctx context.Context, state []byte) error {
	return c.invoke(ctx, "LoadBaselines", StateRequest{State: state}, nil)
}

// #endregion methods
