package monitor

import (
	"time"

	"github.com/Medicare-Call/Medicare-Call-Telephony-Frontend-JH/pkg/model"
)

// ComputeStats derives call statistics from an item snapshot by a full rescan.
//
// totalSpeechTime spans the first to the last timestamped message.
// avgResponseTime averages the gap between each caller message and the
// assistant message that answers it; without such a pair it keeps its default.
func ComputeStats(items []model.Item) model.CallStats {
	stats := model.DefaultCallStats()

	var (
		first, last  time.Time
		pendingUser  time.Time
		responseSum  time.Duration
		responseSeen int
	)
	for _, item := range items {
		switch item.Type {
		case model.ItemTypeFunctionCall:
			stats.FunctionCallCount++
			continue
		case model.ItemTypeMessage:
			stats.MessageCount++
		default:
			continue
		}

		ts := item.Timestamp
		if ts.IsZero() {
			continue
		}
		if first.IsZero() || ts.Before(first) {
			first = ts
		}
		if ts.After(last) {
			last = ts
		}

		switch item.Role {
		case model.RoleUser:
			if pendingUser.IsZero() {
				pendingUser = ts
			}
		case model.RoleAssistant:
			if !pendingUser.IsZero() && !ts.Before(pendingUser) {
				responseSum += ts.Sub(pendingUser)
				responseSeen++
			}
			pendingUser = time.Time{}
		}
	}

	if !first.IsZero() && last.After(first) {
		stats.TotalSpeechTime = last.Sub(first).Seconds()
	}
	if responseSeen > 0 {
		stats.AvgResponseTime = float64(responseSum.Milliseconds()) / float64(responseSeen)
	}
	return stats
}
