package monitor

import (
	"fmt"
	"strings"
	"time"

	"github.com/Medicare-Call/Medicare-Call-Telephony-Frontend-JH/pkg/model"
)

const exportTimeLayout = "15:04:05"

// Displayable reports whether an item belongs in the transcript view.
func Displayable(item model.Item) bool {
	switch item.Type {
	case model.ItemTypeMessage, model.ItemTypeFunctionCall, model.ItemTypeFunctionCallOutput:
		return true
	}
	return false
}

// Filter keeps the displayable items and, when query is non-empty, only
// those whose text or function name contains it as typed, ignoring case.
func Filter(items []model.Item, query string) []model.Item {
	q := strings.ToLower(query)

	out := make([]model.Item, 0, len(items))
	for _, item := range items {
		if !Displayable(item) {
			continue
		}
		if q != "" && !matches(item, q) {
			continue
		}
		out = append(out, item)
	}
	return out
}

func matches(item model.Item, lowered string) bool {
	return strings.Contains(strings.ToLower(item.Text()), lowered) ||
		strings.Contains(strings.ToLower(item.Name), lowered)
}

// ExportSpeaker is the speaker label used in exported transcripts.
func ExportSpeaker(role model.Role) string {
	if role == model.RoleUser {
		return model.CallerLabel
	}
	return model.AssistantLabel
}

// SpeakerLabel is the label shown in the live view, which calls out tool messages.
func SpeakerLabel(role model.Role) string {
	switch role {
	case model.RoleUser:
		return model.CallerLabel
	case model.RoleTool:
		return model.SystemLabel
	default:
		return model.AssistantLabel
	}
}

// ExportTranscript renders the message items as plain text, one line each.
func ExportTranscript(items []model.Item) string {
	lines := make([]string, 0, len(items))
	for _, item := range items {
		if item.Type != model.ItemTypeMessage {
			continue
		}
		lines = append(lines, FormatLine(item))
	}
	return strings.Join(lines, "\n")
}

// FormatLine renders one message as "[time] speaker: text".
func FormatLine(item model.Item) string {
	var ts string
	if !item.Timestamp.IsZero() {
		ts = item.Timestamp.Format(exportTimeLayout)
	}
	return fmt.Sprintf("[%s] %s: %s", ts, ExportSpeaker(item.Role), item.Text())
}

// ExportFilename names the exported transcript file.
func ExportFilename(elderID string, now time.Time) string {
	if elderID == "" {
		elderID = "unknown"
	}
	return fmt.Sprintf("%s_%s_%s.txt", model.TranscriptName, elderID, now.UTC().Format(time.DateOnly))
}

// FormatDuration renders seconds as mm:ss, or hh:mm:ss from one hour up.
func FormatDuration(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	if h > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}
