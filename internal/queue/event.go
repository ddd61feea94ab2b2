// Package queue defines message payloads exchanged over the message
// broker and the background consumer that drains them.
package queue

// ScanRecordedEvent is published after a scan outcome is persisted.
// It carries enough for downstream consumers to log, notify or feed
// analytics without querying the primary database.
type ScanRecordedEvent struct {
	ScanID     uint64  `json:"scan_id"`
	UserID     uint64  `json:"user_id"`
	Status     string  `json:"status"`
	Pest       string  `json:"pest"`
	Confidence float64 `json:"confidence"`
	Severity   string  `json:"severity"`
	CropType   string  `json:"crop_type,omitempty"`
	FieldName  string  `json:"field_name,omitempty"`
	RecordedAt string  `json:"recorded_at"`
}
