package core

import (
	"time"
)

// RunStampLayout formats the per-run artifact directory name.
const RunStampLayout = "2006_01_02_15_04_05"

// Timestamp represents a point in time with timezone awareness
type Timestamp time.Time

// NewTimestamp creates a new timestamp from time.Time
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp(t)
}

// Now returns the current timestamp
func Now() Timestamp {
	return Timestamp(time.Now())
}

// Time returns the underlying time.Time
func (t Timestamp) Time() time.Time {
	return time.Time(t)
}

// IsZero checks if the timestamp is zero
func (t Timestamp) IsZero() bool {
	return time.Time(t).IsZero()
}

// Stamp renders the timestamp as an artifact directory name
func (t Timestamp) Stamp() string {
	return time.Time(t).Format(RunStampLayout)
}

// String renders the timestamp as RFC3339 in UTC
func (t Timestamp) String() string {
	return time.Time(t).UTC().Format(time.RFC3339Nano)
}

// ParseTimestamp is the inverse of String
func ParseTimestamp(s string) (Timestamp, error) {
	tm, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return Timestamp{}, err
	}
	return Timestamp(tm), nil
}

// MarshalJSON encodes the timestamp like time.Time
func (t Timestamp) MarshalJSON() ([]byte, error) {
	return time.Time(t).MarshalJSON()
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var tm time.Time
	if err := tm.UnmarshalJSON(data); err != nil {
		return err
	}
	*t = Timestamp(tm)
	return nil
}
