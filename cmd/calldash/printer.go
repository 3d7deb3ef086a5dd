package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/Medicare-Call/Medicare-Call-Telephony-Frontend-JH/pkg/model"
	"github.com/Medicare-Call/Medicare-Call-Telephony-Frontend-JH/pkg/monitor"
)

// transcriptPrinter writes each transcript entry once, when it completes.
// Entries still running when the call ends are written by the final flush.
type transcriptPrinter struct {
	out     io.Writer
	theme   Theme
	printed map[string]bool
	status  model.CallStatus
	quality model.CallQuality
}

func newTranscriptPrinter(out io.Writer, theme Theme) *transcriptPrinter {
	return &transcriptPrinter{
		out:     out,
		theme:   theme,
		printed: make(map[string]bool),
	}
}

// Render prints what changed since the previous snapshot. With flush set,
// unsettled entries are printed too.
func (p *transcriptPrinter) Render(snap model.DashboardSnapshot, flush bool) {
	if snap.Call.Status != p.status {
		p.status = snap.Call.Status
		p.printStatus(snap.Call)
	}
	if snap.Quality != nil && !sameQuality(*snap.Quality, p.quality) {
		p.quality = *snap.Quality
		p.printQuality(p.quality)
	}

	for _, item := range snap.Items {
		if p.printed[item.ID] {
			continue
		}
		if !flush && item.Status != model.ItemStatusCompleted {
			continue
		}
		if item.Type == model.ItemTypeMessage && !hasTranscript(item) {
			continue
		}
		p.printed[item.ID] = true
		p.printItem(item)
	}
}

func hasTranscript(item model.Item) bool {
	text := strings.TrimSpace(item.Text())
	return text != "" && text != monitor.SpeechPlaceholder
}

func (p *transcriptPrinter) printItem(item model.Item) {
	stamp := p.theme.muted().Render("[" + item.Timestamp.Format("15:04:05") + "]")

	switch item.Type {
	case model.ItemTypeMessage:
		speaker := p.theme.speaker(item.Role).Render(monitor.SpeakerLabel(item.Role))
		fmt.Fprintf(p.out, "%s %s: %s\n", stamp, speaker, item.Text())
	case model.ItemTypeFunctionCall:
		speaker := p.theme.speaker(model.RoleTool).Render(monitor.SpeakerLabel(model.RoleTool))
		fmt.Fprintf(p.out, "%s %s: %s(%s)\n", stamp, speaker, item.Name, item.Arguments)
		if item.Output != "" {
			fmt.Fprintf(p.out, "%s   %s %s\n", stamp, p.theme.muted().Render("→"), item.Output)
		}
	}
}

func (p *transcriptPrinter) printStatus(call model.CallInfo) {
	line := fmt.Sprintf("call %s", p.theme.status(call.Status).Render(string(call.Status)))
	if call.SessionID != "" {
		line += p.theme.muted().Render(" session=" + call.SessionID)
	}
	if call.Status == model.CallStatusEnded || call.Status == model.CallStatusError {
		line += p.theme.muted().Render(" duration=" + monitor.FormatDuration(call.Duration))
	}
	fmt.Fprintln(p.out, line)
}

func (p *transcriptPrinter) printQuality(q model.CallQuality) {
	line := fmt.Sprintf("quality connection=%s audio=%s",
		p.theme.quality(q.ConnectionQuality).Render(string(q.ConnectionQuality)),
		p.theme.quality(q.AudioQuality).Render(string(q.AudioQuality)))
	if q.Latency != nil {
		line += fmt.Sprintf(" latency=%.0fms", *q.Latency)
	}
	fmt.Fprintln(p.out, p.theme.muted().Render("·")+" "+line)
}

// Summary prints the closing statistics of a call.
func (p *transcriptPrinter) Summary(stats model.CallStats) {
	fmt.Fprintln(p.out, p.theme.muted().Render(fmt.Sprintf(
		"messages=%d functionCalls=%d speech=%.0fs avgResponse=%.0fms",
		stats.MessageCount, stats.FunctionCallCount, stats.TotalSpeechTime, stats.AvgResponseTime)))
}

func sameQuality(a, b model.CallQuality) bool {
	return a.ConnectionQuality == b.ConnectionQuality &&
		a.AudioQuality == b.AudioQuality &&
		equalPtr(a.Latency, b.Latency) &&
		equalPtr(a.PacketsLost, b.PacketsLost) &&
		equalPtr(a.Jitter, b.Jitter)
}

func equalPtr[T comparable](a, b *T) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
