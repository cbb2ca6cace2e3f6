package engine

// #region imports
import (
	"time"

	"github.com/synheart/flux/go-engine/internal/biocontext"
	"github.com/synheart/flux/go-engine/internal/hsi"
)

// #endregion imports

// #region snapshot

// SnapshotNow reads the current state without mutating it: the stored bio
// context decayed to now, plus, when sessionRaw is non-nil, a behavior
// axis for that session scored against the existing baselines. Returns
// ErrNoBioContext before the first wearable run.
func (p *Processor) SnapshotNow(now time.Time, sessionRaw []byte) (*hsi.Document, error) {
	if p.snapshot == nil {
		return nil, ErrNoBioContext
	}
	snap := *p.snapshot

	doc := p.encoder.NewDocument(snap.ObservedAtUTC, now)

	windowID := hsi.WindowID("snapshot")
	doc.AddWindow(windowID, hsi.Window{
		Start: hsi.Timestamp(snap.ObservedAtUTC),
		End:   hsi.Timestamp(now),
		Label: "snapshot",
	})

	decayed := biocontext.Decay(snap, snap.BaseConfidence(), now, p.config.HalfLife)
	doc.ContextReadings(decayed.Readings(windowID))
	doc.SetMeta("bio_context_age_sec", int64(decayed.Age.Seconds()))
	doc.SetMeta("bio_context_valid_until", hsi.Timestamp(decayed.ValidUntil))

	if sessionRaw != nil {
		derived, err := deriveSession(sessionRaw)
		if err != nil {
			return nil, err
		}
		stream := derived.DeviceID
		bl := behaviorBaseline{
			sessions: p.behavior.Observations(stream, "distraction"),
		}
		if stats := p.behavior.Stats(stream, "distraction"); stats.Count > 0 {
			mean := stats.Mean
			bl.distractionMean = &mean
			bl.distractionPct = pctDeviation(&derived.DistractionScore, stats)
		}
		attachBehavior(doc, derived, bl)
	}

	return doc, nil
}

// #endregion snapshot
