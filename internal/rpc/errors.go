package rpc

// #region imports
import (
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/synheart/flux/go-engine/internal/baseline"
	"github.com/synheart/flux/go-engine/internal/behavior"
	"github.com/synheart/flux/go-engine/internal/engine"
	"github.com/synheart/flux/go-engine/internal/wearable"
)

// #endregion imports

// #region mapping

// statusError maps the engine's error taxonomy onto gRPC status codes:
// undecodable input and invalid time ranges are the caller's fault,
// missing bio context and schema mismatches are state preconditions,
// everything else is internal.
func statusError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, wearable.ErrDecode),
		errors.Is(err, behavior.ErrDecode),
		errors.Is(err, behavior.ErrInvalidTimeRange):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, engine.ErrNoBioContext),
		errors.Is(err, baseline.ErrSchemaVersion):
		return status.Error(codes.FailedPrecondition, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}

// #endregion mapping
