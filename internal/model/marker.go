package model

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"time"
)

// MarkerSize is the length in bytes of a category marker.
const MarkerSize = 4

// ErrReservedRunID is returned when a run identifier would collide with one
// of the two reserved markers.
var ErrReservedRunID = errors.New("run id collides with a reserved marker")

// Marker is the value stored for every category in the category store.
// It is a 4-byte big-endian signed integer compared bytewise, so the
// all-zero marker sorts below and the all-0xFF marker sorts above every
// positive run timestamp.
type Marker [MarkerSize]byte

var (
	// ZeroMarker is the implicit marker of a category never seen before.
	ZeroMarker = Marker{}

	// MaxMarker marks a category completed during the current run.
	MaxMarker = Marker{0xff, 0xff, 0xff, 0xff}
)

// MarkerFromBytes converts a stored value into a Marker.
func MarkerFromBytes(b []byte) (Marker, error) {
	var m Marker
	if len(b) != MarkerSize {
		return m, fmt.Errorf("invalid marker length %d: expected %d", len(b), MarkerSize)
	}
	copy(m[:], b)
	return m, nil
}

// Bytes returns the marker as a byte slice suitable for storage.
func (m Marker) Bytes() []byte {
	b := make([]byte, MarkerSize)
	copy(b, m[:])
	return b
}

// Compare orders markers bytewise.
func (m Marker) Compare(other Marker) int {
	return bytes.Compare(m[:], other[:])
}

// State classifies the marker relative to the given run.
func (m Marker) State(run RunID) MarkerState {
	switch {
	case m == ZeroMarker:
		return StateUnvisited
	case m == MaxMarker:
		return StateCompleted
	case m == run.Marker():
		return StateInProgress
	case m.Compare(run.Marker()) < 0:
		return StatePriorRun
	default:
		// A marker above the current run but below MaxMarker was written by
		// a run that started later (clock skew). It must not be re-walked.
		return StateCompleted
	}
}

// MarkerState is the tagged view of a category marker.
type MarkerState int

const (
	// StateUnvisited means the category has no stored marker.
	StateUnvisited MarkerState = iota

	// StatePriorRun means the marker was left by an earlier run.
	StatePriorRun

	// StateInProgress means an ancestor frame of the current run is walking
	// the category right now.
	StateInProgress

	// StateCompleted means the category was fully walked in the current run.
	StateCompleted
)

// String returns a human-readable name of the state.
func (s MarkerState) String() string {
	switch s {
	case StateUnvisited:
		return "unvisited"
	case StatePriorRun:
		return "prior-run"
	case StateInProgress:
		return "in-progress"
	case StateCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

// NeedsWalk reports whether a category in this state must be walked in the
// current run.
func (s MarkerState) NeedsWalk() bool {
	return s == StateUnvisited || s == StatePriorRun
}

// RunID identifies one crawl invocation. It is created once per run from the
// process start time and is read-only afterwards.
type RunID int32

// NewRunID derives the run identifier from a wall-clock time in Unix seconds.
// It fails if the value would collide with a reserved marker.
func NewRunID(t time.Time) (RunID, error) {
	sec := t.Unix()
	if sec <= 0 || sec > math.MaxInt32 {
		return 0, fmt.Errorf("%w: unix time %d out of range", ErrReservedRunID, sec)
	}
	id := RunID(sec)
	if err := id.Validate(); err != nil {
		return 0, err
	}
	return id, nil
}

// Validate checks that the run's marker sorts strictly between the reserved
// zero and max markers.
func (r RunID) Validate() error {
	m := r.Marker()
	if m.Compare(ZeroMarker) <= 0 || m.Compare(MaxMarker) >= 0 {
		return fmt.Errorf("%w: %d", ErrReservedRunID, int32(r))
	}
	return nil
}

// Marker returns the in-progress marker of this run.
func (r RunID) Marker() Marker {
	var m Marker
	binary.BigEndian.PutUint32(m[:], uint32(r)) //nolint:gosec // two's complement encoding is intended
	return m
}
