package monitor

import (
	"errors"
	"testing"
	"time"

	"github.com/Medicare-Call/Medicare-Call-Telephony-Frontend-JH/pkg/model"
)

func textItem(id string, role model.Role, text string) model.Item {
	return model.Item{
		ID:      id,
		Type:    model.ItemTypeMessage,
		Role:    role,
		Content: []model.ContentPart{{Type: "text", Text: text}},
	}
}

func TestItemStoreAppend(t *testing.T) {
	s := NewItemStore()

	if err := s.Append(textItem("a", model.RoleUser, "hi")); err != nil {
		t.Fatalf("append a: %v", err)
	}
	if err := s.Append(textItem("b", model.RoleAssistant, "hello")); err != nil {
		t.Fatalf("append b: %v", err)
	}

	err := s.Append(textItem("a", model.RoleUser, "again"))
	if !errors.Is(err, ErrDuplicateItem) {
		t.Fatalf("duplicate append: got %v, want ErrDuplicateItem", err)
	}
	if err := s.Append(model.Item{}); err == nil {
		t.Fatal("append without id: expected error")
	}

	items := s.Snapshot()
	if len(items) != 2 || items[0].ID != "a" || items[1].ID != "b" {
		t.Fatalf("unexpected order: %+v", items)
	}
	if items[0].Text() != "hi" {
		t.Errorf("duplicate append changed item: %q", items[0].Text())
	}
}

func TestItemStoreUpdateByID(t *testing.T) {
	s := NewItemStore()
	ts := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	item := textItem("a", model.RoleUser, "...")
	item.Timestamp = ts
	_ = s.Append(item)

	ok := s.UpdateByID("a", func(it *model.Item) {
		it.ID = "changed"
		it.Timestamp = time.Time{}
		it.Content = []model.ContentPart{{Type: "text", Text: "안녕"}}
	})
	if !ok {
		t.Fatal("update of existing item reported false")
	}

	got, ok := s.Get("a")
	if !ok {
		t.Fatal("item lost its id after update")
	}
	if !got.Timestamp.Equal(ts) {
		t.Errorf("timestamp changed: %v", got.Timestamp)
	}
	if got.Text() != "안녕" {
		t.Errorf("text = %q, want 안녕", got.Text())
	}

	if s.UpdateByID("missing", func(it *model.Item) { it.Name = "x" }) {
		t.Error("update of missing item reported true")
	}
	if s.Len() != 1 {
		t.Errorf("len = %d, want 1", s.Len())
	}
}

func TestItemStoreSnapshotIsCopy(t *testing.T) {
	s := NewItemStore()
	_ = s.Append(textItem("a", model.RoleUser, "original"))

	snap := s.Snapshot()
	snap[0].Content[0].Text = "mutated"

	got, _ := s.Get("a")
	if got.Text() != "original" {
		t.Errorf("snapshot shares content with store: %q", got.Text())
	}
}

func TestItemStoreFindFunctionCallAndReset(t *testing.T) {
	s := NewItemStore()
	_ = s.Append(model.Item{ID: "fc1", Type: model.ItemTypeFunctionCall, CallID: "c1", Name: "lookup"})

	call, ok := s.FindFunctionCall("c1")
	if !ok || call.ID != "fc1" {
		t.Fatalf("FindFunctionCall(c1) = %+v, %v", call, ok)
	}
	if _, ok := s.FindFunctionCall(""); ok {
		t.Error("empty call id matched")
	}

	s.Reset()
	if s.Len() != 0 {
		t.Errorf("len after reset = %d", s.Len())
	}
	if err := s.Append(model.Item{ID: "fc1", Type: model.ItemTypeFunctionCall}); err != nil {
		t.Errorf("append after reset: %v", err)
	}
}
