// pkg/model/event.go
package model

import (
	"fmt"
	"time"
)

// Kind identifies which side of a work session a raw event records.
type Kind int

const (
	// KindStart carries a start timestamp and no end timestamp.
	KindStart Kind = iota
	// KindEnd carries an end timestamp and no start timestamp.
	KindEnd
)

// String returns a string representation of the event kind.
func (k Kind) String() string {
	switch k {
	case KindStart:
		return "START"
	case KindEnd:
		return "END"
	default:
		return fmt.Sprintf("Unknown(%d)", int(k))
	}
}

// ParseKind converts a wire token into a Kind. Unrecognized tokens are rejected.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "START":
		return KindStart, nil
	case "END":
		return KindEnd, nil
	default:
		return 0, fmt.Errorf("unrecognized event kind %q", s)
	}
}

// Status is the ledger-side status tag of a unified operation. The persisted
// values are the ones the ERP reporting queries already filter on.
type Status int

const (
	// StatusStart marks a row originating from the start-event table.
	StatusStart Status = iota
	// StatusEnd marks a row originating from the pause/end-event table.
	StatusEnd
)

const (
	statusStartWire = "DEBUT"
	statusEndWire   = "PAUSE"
)

// String returns the persisted wire value of the status.
func (s Status) String() string {
	switch s {
	case StatusStart:
		return statusStartWire
	case StatusEnd:
		return statusEndWire
	default:
		return fmt.Sprintf("Unknown(%d)", int(s))
	}
}

// ParseStatus converts a persisted status value into a Status.
// Unrecognized values are an error, never silently defaulted.
func ParseStatus(s string) (Status, error) {
	switch s {
	case statusStartWire:
		return StatusStart, nil
	case statusEndWire:
		return StatusEnd, nil
	default:
		return 0, fmt.Errorf("unrecognized operation status %q", s)
	}
}

// StatusFor maps an event kind to the ledger status it produces.
func StatusFor(k Kind) Status {
	if k == KindEnd {
		return StatusEnd
	}
	return StatusStart
}

// RawEvent is one recorded fact from a source table, before normalization.
// Classification fields may carry surrounding whitespace or be empty; the
// normalizer decides what counts as absent.
type RawEvent struct {
	Identity    string
	LaunchCode  string
	Phase       string
	RubricCode  string
	Kind        Kind
	Timestamp   time.Time
	SourceTable string
}
