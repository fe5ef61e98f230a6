package core

import (
	"encoding/json"
	"fmt"
	"time"
)

// jsonTime decodes an ISO-8601 timestamp with an explicit offset (spec
// §6.1 "All timestamps are ISO-8601 with an explicit offset") into a
// time.Time, rejecting the bare (offset-less) RFC3339 form.
type jsonTime struct {
	time.Time
}

func (t *jsonTime) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return fmt.Errorf("timestamp %q is not ISO-8601 with an explicit offset: %w", s, err)
	}
	t.Time = parsed
	return nil
}

func (t jsonTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Time.Format(time.RFC3339))
}

// UnmarshalJSON on Timeframe reuses jsonTime so Start/End always carry an
// explicit offset, then exposes them as ordinary time.Time fields to the
// rest of the engine.
func (tf *Timeframe) UnmarshalJSON(data []byte) error {
	var raw struct {
		Start     jsonTime  `json:"start"`
		End       jsonTime  `json:"end"`
		Frequency Frequency `json:"frequency"`
	}
	if err := strictUnmarshal(data, &raw); err != nil {
		return fmt.Errorf("timeframe: %w", err)
	}
	tf.Start = raw.Start.Time
	tf.End = raw.End.Time
	tf.Frequency = raw.Frequency
	return nil
}

func (tf Timeframe) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Start     string    `json:"start"`
		End       string    `json:"end"`
		Frequency Frequency `json:"frequency"`
	}{
		Start:     tf.Start.Format(time.RFC3339),
		End:       tf.End.Format(time.RFC3339),
		Frequency: tf.Frequency,
	})
}
