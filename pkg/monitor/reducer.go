package monitor

import (
	"context"
	"errors"
	"time"

	"github.com/Medicare-Call/Medicare-Call-Telephony-Frontend-JH/pkg/model"

	"github.com/zeromicro/go-zero/core/logx"
)

// SpeechPlaceholder stands in for caller speech that is still being transcribed.
const SpeechPlaceholder = "..."

// Outcome reports what a reduced event changed.
type Outcome struct {
	ItemsChanged   bool
	QualityChanged bool
}

func (o Outcome) Changed() bool {
	return o.ItemsChanged || o.QualityChanged
}

// Reducer maps decoded stream events onto an ItemStore and a CallQuality.
// It does no I/O besides logging and must be driven by one goroutine at a time.
type Reducer struct {
	logx.Logger
	now func() time.Time
}

func NewReducer(logger logx.Logger, now func() time.Time) *Reducer {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = logx.WithContext(context.Background())
	}
	return &Reducer{Logger: logger, now: now}
}

func (r *Reducer) Apply(store *ItemStore, quality *model.CallQuality, ev Event) Outcome {
	switch e := ev.(type) {
	case ItemCreated:
		return Outcome{ItemsChanged: r.itemCreated(store, e.Item)}

	case SpeechStarted:
		if _, ok := store.Get(e.ItemID); ok {
			r.Debugf("speech already tracked for item %s", e.ItemID)
			return Outcome{}
		}
		item := model.Item{
			ID:      e.ItemID,
			Type:    model.ItemTypeMessage,
			Role:    model.RoleUser,
			Content: []model.ContentPart{{Type: "text", Text: SpeechPlaceholder}},
			Status:  model.ItemStatusRunning,
		}
		return Outcome{ItemsChanged: r.appendOrMerge(store, item)}

	case TranscriptionCompleted:
		ok := store.UpdateByID(e.ItemID, func(it *model.Item) {
			it.Content = []model.ContentPart{{Type: "text", Text: e.Transcript}}
			it.Status = model.ItemStatusCompleted
		})
		return Outcome{ItemsChanged: r.checkUpdate(ok, e.Type, e.ItemID)}

	case ContentPartAdded:
		if e.OutputIndex != 0 || e.Part.Type != "text" {
			return Outcome{}
		}
		item := model.Item{
			ID:      e.ItemID,
			Type:    model.ItemTypeMessage,
			Role:    model.RoleAssistant,
			Content: []model.ContentPart{{Type: "text", Text: e.Part.Text}},
			Status:  model.ItemStatusRunning,
		}
		return Outcome{ItemsChanged: r.appendOrMerge(store, item)}

	case TranscriptDelta:
		if e.OutputIndex != 0 || e.Delta == "" {
			return Outcome{}
		}
		ok := store.UpdateByID(e.ItemID, func(it *model.Item) {
			appendText(it, e.Delta)
		})
		return Outcome{ItemsChanged: r.checkUpdate(ok, e.Type, e.ItemID)}

	case ArgumentsDelta:
		if e.Delta == "" {
			return Outcome{}
		}
		ok := store.UpdateByID(e.ItemID, func(it *model.Item) {
			it.Arguments += e.Delta
		})
		return Outcome{ItemsChanged: r.checkUpdate(ok, e.Type, e.ItemID)}

	case OutputItemDone:
		return Outcome{ItemsChanged: r.outputItemDone(store, e.Item)}

	case QualityUpdate:
		if e.Patch.Empty() {
			return Outcome{}
		}
		*quality = quality.Merge(e.Patch)
		return Outcome{QualityChanged: true}

	case ErrorEvent:
		r.Errorf("backend reported error: %s", e.Message)
		return Outcome{}

	case SessionEvent:
		r.Debugf("session event %s", e.Type)
		return Outcome{}

	case IgnoredEvent:
		r.Debugf("ignoring event type %q", e.Type)
		return Outcome{}

	default:
		return Outcome{}
	}
}

func (r *Reducer) itemCreated(store *ItemStore, item model.Item) bool {
	switch item.Type {
	case model.ItemTypeMessage:
		item.Status = model.ItemStatusCompleted
		return r.appendOrMerge(store, item)

	case model.ItemTypeFunctionCall:
		if item.Status == "" {
			item.Status = model.ItemStatusRunning
		}
		return r.appendOrMerge(store, item)

	case model.ItemTypeFunctionCallOutput:
		if _, ok := store.FindFunctionCall(item.CallID); !ok {
			r.Errorf("dropping function_call_output %s: no function_call with call_id %q", item.ID, item.CallID)
			return false
		}
		item.Status = model.ItemStatusCompleted
		if !r.appendOrMerge(store, item) {
			return false
		}
		r.completeFunctionCall(store, item.CallID, item.Output)
		return true

	default:
		r.Debugf("ignoring item %s of type %q", item.ID, item.Type)
		return false
	}
}

func (r *Reducer) outputItemDone(store *ItemStore, item model.Item) bool {
	switch item.Type {
	case model.ItemTypeFunctionCall:
		item.Status = model.ItemStatusRunning
		return r.appendOrMerge(store, item)

	case model.ItemTypeMessage:
		ok := store.UpdateByID(item.ID, func(it *model.Item) {
			if len(item.Content) > 0 && it.Text() == "" {
				it.Content = item.Content
			}
			it.Status = model.ItemStatusCompleted
		})
		return r.checkUpdate(ok, EventOutputItemDone, item.ID)

	default:
		return false
	}
}

// completeFunctionCall marks the originating call completed once its output arrives.
func (r *Reducer) completeFunctionCall(store *ItemStore, callID, output string) {
	call, ok := store.FindFunctionCall(callID)
	if !ok {
		return
	}
	store.UpdateByID(call.ID, func(it *model.Item) {
		it.Status = model.ItemStatusCompleted
		if it.Output == "" {
			it.Output = output
		}
	})
}

// appendOrMerge appends a new item, or merges the announced fields into an
// item that was already created under the same id.
func (r *Reducer) appendOrMerge(store *ItemStore, item model.Item) bool {
	if item.Object == "" {
		item.Object = model.ItemObject
	}
	item.Timestamp = r.now()

	err := store.Append(item)
	if err == nil {
		return true
	}
	if !errors.Is(err, ErrDuplicateItem) {
		r.Errorf("dropping item %q: %v", item.ID, err)
		return false
	}

	return store.UpdateByID(item.ID, func(it *model.Item) {
		mergeItem(it, item)
	})
}

func (r *Reducer) checkUpdate(ok bool, eventType, itemID string) bool {
	if !ok {
		r.Errorf("dropping %s: %v: %s", eventType, ErrUnknownItem, itemID)
	}
	return ok
}

func mergeItem(dst *model.Item, src model.Item) {
	if src.Type != "" {
		dst.Type = src.Type
	}
	if src.Role != "" {
		dst.Role = src.Role
	}
	if len(src.Content) > 0 {
		dst.Content = src.Content
	}
	if src.Name != "" {
		dst.Name = src.Name
	}
	if src.CallID != "" {
		dst.CallID = src.CallID
	}
	if src.Arguments != "" {
		dst.Arguments = src.Arguments
	}
	if src.Output != "" {
		dst.Output = src.Output
	}
	// completed never goes back to running
	if src.Status != "" && dst.Status != model.ItemStatusCompleted {
		dst.Status = src.Status
	}
}

func appendText(it *model.Item, delta string) {
	if len(it.Content) == 0 {
		it.Content = []model.ContentPart{{Type: "text", Text: delta}}
		return
	}
	content := make([]model.ContentPart, len(it.Content))
	copy(content, it.Content)
	content[0].Text += delta
	it.Content = content
}
