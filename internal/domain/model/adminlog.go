//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// DefaultLogPageSize matches the page size the backend is queried with.
const DefaultLogPageSize = 10

// LogEntry is one recorded LLM agent call.
type LogEntry struct {
	ID             string    `json:"_id"`
	AgentName      string    `json:"agent_name"`
	InputTokens    int64     `json:"input_tokens"`
	OutputTokens   int64     `json:"output_tokens"`
	ResponseTimeMS int64     `json:"response_time_ms"`
	Timestamp      Timestamp `json:"timestamp"`
}

// LogPage is one page of agent call logs.
type LogPage struct {
	Logs       []LogEntry `json:"logs"`
	Page       int        `json:"page"`
	TotalPages int        `json:"total_pages"`
}

// HasPrev reports whether a previous page exists.
func (p LogPage) HasPrev() bool { return p.Page > 1 }

// HasNext reports whether a next page exists.
func (p LogPage) HasNext() bool { return p.Page < p.TotalPages }

// LogMetrics aggregates agent call logs.
type LogMetrics struct {
	TotalCalls        int64   `json:"total_calls"`
	TotalInputTokens  int64   `json:"total_input_tokens"`
	TotalOutputTokens int64   `json:"total_output_tokens"`
	AvgResponseTimeMS float64 `json:"avg_response_time_ms"`
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

// Timestamp accepts RFC 3339 as well as zone-less ISO timestamps, which are read as UTC.
type Timestamp struct {
	time.Time
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Timestamp) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("timestamp: %w", err)
	}
	if s == "" {
		return nil
	}
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed.UTC()
			return nil
		}
	}
	return fmt.Errorf("timestamp: unrecognised format %q", s)
}

// MarshalJSON implements json.Marshaler.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.UTC().Format(time.RFC3339Nano))
}
