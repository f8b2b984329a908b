package chat

import (
	"time"

	"evalyze-client/internal/model"
)

// StatusLabel maps a session status to its user-facing label.
func StatusLabel(status model.SessionStatus) string {
	switch status {
	case model.SessionPending:
		return "Pending"
	case model.SessionActive:
		return "In Progress"
	case model.SessionCompleted:
		return "Completed"
	case model.SessionAbandoned:
		return "Abandoned"
	default:
		return string(status)
	}
}

// FormatTime renders a message timestamp as HH:MM local time. Unparsable
// input is returned as-is rather than hidden.
func FormatTime(timestamp string) string {
	t, err := time.Parse(time.RFC3339, timestamp)
	if err != nil {
		return timestamp
	}
	return t.Local().Format("15:04")
}
