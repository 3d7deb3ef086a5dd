package main

import (
	"strings"
	"testing"
	"time"

	"github.com/Medicare-Call/Medicare-Call-Telephony-Frontend-JH/pkg/model"
)

func message(id string, role model.Role, text string, status model.ItemStatus) model.Item {
	return model.Item{
		ID:        id,
		Type:      model.ItemTypeMessage,
		Role:      role,
		Content:   []model.ContentPart{{Type: "text", Text: text}},
		Status:    status,
		Timestamp: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
	}
}

func TestTranscriptPrinterWaitsForCompletion(t *testing.T) {
	var out strings.Builder
	p := newTranscriptPrinter(&out, DefaultTheme())
	active := model.CallInfo{Status: model.CallStatusActive}

	// the reply starts before the caller's transcription is done
	p.Render(model.DashboardSnapshot{Call: active, Items: []model.Item{
		message("u1", model.RoleUser, "...", model.ItemStatusRunning),
		message("a1", model.RoleAssistant, "어디가", model.ItemStatusRunning),
	}}, false)
	if strings.Contains(out.String(), "...") || strings.Contains(out.String(), "어디가") {
		t.Fatalf("running entries were printed:\n%s", out.String())
	}

	p.Render(model.DashboardSnapshot{Call: active, Items: []model.Item{
		message("u1", model.RoleUser, "오늘 머리가 아파요", model.ItemStatusCompleted),
		message("a1", model.RoleAssistant, "어디가 아프신가요", model.ItemStatusCompleted),
	}}, true)

	got := out.String()
	for _, want := range []string{"오늘 머리가 아파요", "어디가 아프신가요"} {
		if strings.Count(got, want) != 1 {
			t.Errorf("%q printed %d times:\n%s", want, strings.Count(got, want), got)
		}
	}
}

func TestTranscriptPrinterFunctionCallOutput(t *testing.T) {
	var out strings.Builder
	p := newTranscriptPrinter(&out, DefaultTheme())
	active := model.CallInfo{Status: model.CallStatusActive}

	call := model.Item{ID: "fc1", Type: model.ItemTypeFunctionCall, Name: "save_health", Arguments: "{}", Status: model.ItemStatusRunning}
	reply := message("a1", model.RoleAssistant, "기록할게요", model.ItemStatusCompleted)

	p.Render(model.DashboardSnapshot{Call: active, Items: []model.Item{call, reply}}, false)
	if strings.Contains(out.String(), "save_health") {
		t.Fatalf("running function call was printed:\n%s", out.String())
	}

	call.Status = model.ItemStatusCompleted
	call.Output = `{"saved":true}`
	p.Render(model.DashboardSnapshot{Call: active, Items: []model.Item{call, reply}}, false)

	got := out.String()
	if !strings.Contains(got, "save_health({})") || !strings.Contains(got, `{"saved":true}`) {
		t.Errorf("function call printed without its output:\n%s", got)
	}
}

func TestTranscriptPrinterFlushSkipsPlaceholder(t *testing.T) {
	var out strings.Builder
	p := newTranscriptPrinter(&out, DefaultTheme())

	p.Render(model.DashboardSnapshot{Call: model.CallInfo{Status: model.CallStatusEnded}, Items: []model.Item{
		message("u1", model.RoleUser, "...", model.ItemStatusRunning),
		message("a1", model.RoleAssistant, "안녕히 계세요", model.ItemStatusRunning),
	}}, true)

	got := out.String()
	if strings.Contains(got, ": ...") {
		t.Errorf("placeholder printed:\n%s", got)
	}
	if !strings.Contains(got, "안녕히 계세요") {
		t.Errorf("running reply not flushed:\n%s", got)
	}
}
