// Package rpc exposes the engine over gRPC as plain functions on byte
// buffers. Requests and responses are JSON envelopes carried in
// wrapperspb.BytesValue messages, so no generated stubs are needed and
// hosts in any language can call the engine with a JSON codec alone.
// Engine errors surface as gRPC status codes.
package rpc

// #region imports
import (
	"encoding/json"
)

// #endregion imports

// #region requests

// WearableRequest asks for a vendor payload to be processed.
type WearableRequest struct {
	Vendor   string          `json:"vendor"`
	Payload  json.RawMessage `json:"payload"`
	Timezone string          `json:"timezone"`
	DeviceID string          `json:"device_id"`
}

// BehaviorRequest asks for a behavioral session to be processed.
type BehaviorRequest struct {
	Payload  json.RawMessage `json:"payload"`
	DeviceID string          `json:"device_id"`
}

// SnapshotRequest asks for a read-only state snapshot at a given instant,
// optionally combined with a fresh session.
type SnapshotRequest struct {
	NowUTC  string          `json:"now_utc"`
	Session json.RawMessage `json:"session,omitempty"`
}

// StateRequest carries a serialized baseline blob to restore.
type StateRequest struct {
	State json.RawMessage `json:"state"`
}

// #endregion requests

// #region responses

// DocumentsResponse returns rendered HSI documents, one per day or
// session.
type DocumentsResponse struct {
	Documents []json.RawMessage `json:"documents"`
}

// DocumentResponse returns a single rendered HSI document.
type DocumentResponse struct {
	Document json.RawMessage `json:"document"`
}

// StateResponse returns the serialized baseline state.
type StateResponse struct {
	State json.RawMessage `json:"state"`
}

// #endregion responses
