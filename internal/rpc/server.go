package rpc

// #region imports
import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/synheart/flux/go-engine/internal/engine"
	"github.com/synheart/flux/go-engine/internal/hsi"
	"github.com/synheart/flux/go-engine/internal/store"
)

// #endregion imports

// #region server

// Server adapts one processor to the EngineServer contract. It serializes
// access to the processor, which is not internally synchronized. The
// store is optional; when present, emitted documents, baseline blobs and
// run outcomes are persisted as a side effect.
type Server struct {
	mu        sync.Mutex
	processor *engine.Processor
	store     *store.Store
	now       func() time.Time
}

// NewServer wraps a processor, persisting through st when non-nil.
func NewServer(p *engine.Processor, st *store.Store) *Server {
	return &Server{processor: p, store: st, now: time.Now}
}

// #endregion server

// #region helpers

func decode[T any](in *wrapperspb.BytesValue) (T, error) {
	var req T
	if err := json.Unmarshal(in.GetValue(), &req); err != nil {
		var zero T
		return zero, status.Error(codes.InvalidArgument, fmt.Sprintf("request envelope: %v", err))
	}
	return req, nil
}

func encode(resp any) (*wrapperspb.BytesValue, error) {
	data, err := json.Marshal(resp)
	if err != nil {
		return nil, status.Error(codes.Internal, fmt.Sprintf("response envelope: %v", err))
	}
	return wrapperspb.Bytes(data), nil
}

func renderDocs(docs []*hsi.Document) (DocumentsResponse, error) {
	resp := DocumentsResponse{Documents: make([]json.RawMessage, 0, len(docs))}
	for _, doc := range docs {
		rendered, err := doc.MarshalIndent()
		if err != nil {
			return DocumentsResponse{}, err
		}
		resp.Documents = append(resp.Documents, rendered)
	}
	return resp, nil
}

func (s *Server) logRun(deviceID, operation string, err error, detail string) {
	if s.store == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
		detail = err.Error()
	}
	// Run-log failures never mask the processing result.
	_ = s.store.LogRun(deviceID, operation, outcome, detail)
}

func (s *Server) persistWearableRun(deviceID string, docs []*hsi.Document) {
	if s.store == nil {
		return
	}
	for _, doc := range docs {
		_ = s.store.SaveDocument(deviceID, "wearable", doc)
	}
	if blob, err := s.processor.SaveBaselines(); err == nil {
		_ = s.store.SaveBaselines(deviceID, blob)
	}
}

// #endregion helpers

// #region stateful-methods

// ProcessWearable runs a vendor payload through the stateful pipeline.
func (s *Server) ProcessWearable(ctx context.Context, in *wrapperspb.BytesValue) (*wrapperspb.BytesValue, error) {
	req, err := decode[WearableRequest](in)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var docs []*hsi.Document
	switch req.Vendor {
	case "whoop":
		docs, err = s.processor.ProcessWhoop(req.Payload, req.Timezone, req.DeviceID)
	case "garmin":
		docs, err = s.processor.ProcessGarmin(req.Payload, req.Timezone, req.DeviceID)
	default:
		return nil, status.Error(codes.InvalidArgument, fmt.Sprintf("unknown vendor %q", req.Vendor))
	}
	s.logRun(req.DeviceID, "process_"+req.Vendor, err, fmt.Sprintf("%d documents", len(docs)))
	if err != nil {
		return nil, statusError(err)
	}

	s.persistWearableRun(req.DeviceID, docs)
	resp, err := renderDocs(docs)
	if err != nil {
		return nil, statusError(err)
	}
	return encode(resp)
}

// ProcessBehavior runs a session log through the stateful pipeline.
func (s *Server) ProcessBehavior(ctx context.Context, in *wrapperspb.BytesValue) (*wrapperspb.BytesValue, error) {
	req, err := decode[BehaviorRequest](in)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.processor.ProcessBehavior(req.Payload)
	s.logRun(req.DeviceID, "process_behavior", err, "1 document")
	if err != nil {
		return nil, statusError(err)
	}

	rendered, err := doc.MarshalIndent()
	if err != nil {
		return nil, statusError(err)
	}
	if s.store != nil {
		_ = s.store.SaveDocument(req.DeviceID, "behavior", doc)
		if blob, err := s.processor.SaveBaselines(); err == nil {
			_ = s.store.SaveBaselines(req.DeviceID, blob)
		}
	}
	return encode(DocumentResponse{Document: rendered})
}

// Snapshot reads current state without mutating it.
func (s *Server) Snapshot(ctx context.Context, in *wrapperspb.BytesValue) (*wrapperspb.BytesValue, error) {
	req, err := decode[SnapshotRequest](in)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if req.NowUTC != "" {
		now, err = time.Parse(time.RFC3339, req.NowUTC)
		if err != nil {
			return nil, status.Error(codes.InvalidArgument, fmt.Sprintf("now_utc: %v", err))
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var session []byte
	if len(req.Session) > 0 {
		session = req.Session
	}
	doc, err := s.processor.SnapshotNow(now, session)
	if err != nil {
		return nil, statusError(err)
	}
	rendered, err := doc.MarshalIndent()
	if err != nil {
		return nil, statusError(err)
	}
	return encode(DocumentResponse{Document: rendered})
}

// SaveBaselines serializes the processor's state.
func (s *Server) SaveBaselines(ctx context.Context, in *wrapperspb.BytesValue) (*wrapperspb.BytesValue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	blob, err := s.processor.SaveBaselines()
	if err != nil {
		return nil, statusError(err)
	}
	return encode(StateResponse{State: blob})
}

// LoadBaselines restores previously saved state.
func (s *Server) LoadBaselines(ctx context.Context, in *wrapperspb.BytesValue) (*wrapperspb.BytesValue, error) {
	req, err := decode[StateRequest](in)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.processor.LoadBaselines(req.State); err != nil {
		return nil, statusError(err)
	}
	return encode(struct{}{})
}

// #endregion stateful-methods

// #region stateless-methods

// ConvertWearable is the one-shot conversion: no baselines, no retained
// state, deterministic output for identical input.
func (s *Server) ConvertWearable(ctx context.Context, in *wrapperspb.BytesValue) (*wrapperspb.BytesValue, error) {
	req, err := decode[WearableRequest](in)
	if err != nil {
		return nil, err
	}

	var docs []*hsi.Document
	switch req.Vendor {
	case "whoop":
		docs, err = engine.ConvertWhoop(req.Payload, req.Timezone, req.DeviceID, s.now())
	case "garmin":
		docs, err = engine.ConvertGarmin(req.Payload, req.Timezone, req.DeviceID, s.now())
	default:
		return nil, status.Error(codes.InvalidArgument, fmt.Sprintf("unknown vendor %q", req.Vendor))
	}
	if err != nil {
		return nil, statusError(err)
	}

	resp, err := renderDocs(docs)
	if err != nil {
		return nil, statusError(err)
	}
	return encode(resp)
}

// ConvertBehavior is the one-shot session conversion.
func (s *Server) ConvertBehavior(ctx context.Context, in *wrapperspb.BytesValue) (*wrapperspb.BytesValue, error) {
	req, err := decode[BehaviorRequest](in)
	if err != nil {
		return nil, err
	}

	doc, err := engine.ConvertSession(req.Payload, s.now())
	if err != nil {
		return nil, statusError(err)
	}
	rendered, err := doc.MarshalIndent()
	if err != nil {
		return nil, statusError(err)
	}
	return encode(DocumentResponse{Document: rendered})
}

// #endregion stateless-methods
