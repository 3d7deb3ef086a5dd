package monitor

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Medicare-Call/Medicare-Call-Telephony-Frontend-JH/pkg/model"
)

// Wire event types relayed by the call-orchestration backend
const (
	EventItemCreated             = "item.created"
	EventConversationItemCreated = "conversation.item.created"
	EventSpeechStarted           = "input_audio_buffer.speech_started"
	EventTranscriptionCompleted  = "conversation.item.input_audio_transcription.completed"
	EventContentPartAdded        = "response.content_part.added"
	EventTranscriptDelta         = "response.audio_transcript.delta"
	EventArgumentsDelta          = "response.function_call_arguments.delta"
	EventOutputItemDone          = "response.output_item.done"
	EventQuality                 = "quality"
	EventSessionCreated          = "session.created"
	EventSessionUpdated          = "session.updated"
	EventError                   = "error"

	// client -> server
	EventSessionUpdate = "session.update"
)

// Event is one decoded inbound stream message. The set of variants is closed.
type Event interface {
	EventType() string
	isEvent()
}

type Base struct {
	Type string
}

func (b Base) EventType() string { return b.Type }
func (Base) isEvent() {}

type (
	// ItemCreated announces a new conversation item.
	ItemCreated struct {
		Base
		Item model.Item
	}

	// SpeechStarted means the caller began talking; the transcript follows later.
	SpeechStarted struct {
		Base
		ItemID string
	}

	TranscriptionCompleted struct {
		Base
		ItemID     string
		Transcript string
	}

	ContentPartAdded struct {
		Base
		ItemID      string
		OutputIndex int
		Part        model.ContentPart
	}

	TranscriptDelta struct {
		Base
		ItemID      string
		OutputIndex int
		Delta       string
	}

	ArgumentsDelta struct {
		Base
		ItemID string
		CallID string
		Delta  string
	}

	OutputItemDone struct {
		Base
		Item model.Item
	}

	QualityUpdate struct {
		Base
		Patch model.QualityPatch
	}

	SessionEvent struct {
		Base
	}

	ErrorEvent struct {
		Base
		Message string
	}

	// IgnoredEvent is any message whose type is not understood.
	IgnoredEvent struct {
		Base
	}
)

var ErrMalformedEvent = errors.New("malformed event")

type wireItem struct {
	ID        string              `json:"id"`
	Object    string              `json:"object"`
	Type      string              `json:"type"`
	Role      string              `json:"role"`
	Content   []model.ContentPart `json:"content"`
	Name      string              `json:"name"`
	CallID    string              `json:"call_id"`
	Arguments string              `json:"arguments"`
	Output    string              `json:"output"`
	Status    string              `json:"status"`
}

func (w *wireItem) toItem() (model.Item, error) {
	if w == nil {
		return model.Item{}, fmt.Errorf("%w: missing item", ErrMalformedEvent)
	}
	if w.ID == "" {
		return model.Item{}, fmt.Errorf("%w: item without id", ErrMalformedEvent)
	}

	return model.Item{
		ID:        w.ID,
		Object:    w.Object,
		Type:      model.ItemType(w.Type),
		Role:      model.Role(w.Role),
		Content:   w.Content,
		Name:      w.Name,
		CallID:    w.CallID,
		Arguments: w.Arguments,
		Output:    w.Output,
		Status:    model.ItemStatus(w.Status),
	}, nil
}

type wireEvent struct {
	Type        string             `json:"type"`
	Item        *wireItem          `json:"item"`
	ItemID      string             `json:"item_id"`
	OutputIndex int                `json:"output_index"`
	Part        *model.ContentPart `json:"part"`
	Delta       string             `json:"delta"`
	Transcript  string             `json:"transcript"`
	CallID      string             `json:"call_id"`
	Error       json.RawMessage    `json:"error"`
	Message     string             `json:"message"`

	model.QualityPatch
}

// DecodeEvent discriminates a raw stream message on its type field.
// Unknown types decode to IgnoredEvent; only undecodable JSON or a
// known type missing its required fields is an error.
func DecodeEvent(data []byte) (Event, error) {
	var w wireEvent
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	if w.Type == "" {
		return nil, fmt.Errorf("%w: missing type", ErrMalformedEvent)
	}

	base := Base{Type: w.Type}
	switch w.Type {
	case EventItemCreated, EventConversationItemCreated:
		item, err := w.Item.toItem()
		if err != nil {
			return nil, err
		}
		return ItemCreated{Base: base, Item: item}, nil

	case EventSpeechStarted:
		if w.ItemID == "" {
			return nil, fmt.Errorf("%w: %s without item_id", ErrMalformedEvent, w.Type)
		}
		return SpeechStarted{Base: base, ItemID: w.ItemID}, nil

	case EventTranscriptionCompleted:
		if w.ItemID == "" {
			return nil, fmt.Errorf("%w: %s without item_id", ErrMalformedEvent, w.Type)
		}
		return TranscriptionCompleted{Base: base, ItemID: w.ItemID, Transcript: w.Transcript}, nil

	case EventContentPartAdded:
		if w.ItemID == "" || w.Part == nil {
			return nil, fmt.Errorf("%w: %s without item_id or part", ErrMalformedEvent, w.Type)
		}
		return ContentPartAdded{Base: base, ItemID: w.ItemID, OutputIndex: w.OutputIndex, Part: *w.Part}, nil

	case EventTranscriptDelta:
		if w.ItemID == "" {
			return nil, fmt.Errorf("%w: %s without item_id", ErrMalformedEvent, w.Type)
		}
		return TranscriptDelta{Base: base, ItemID: w.ItemID, OutputIndex: w.OutputIndex, Delta: w.Delta}, nil

	case EventArgumentsDelta:
		if w.ItemID == "" {
			return nil, fmt.Errorf("%w: %s without item_id", ErrMalformedEvent, w.Type)
		}
		return ArgumentsDelta{Base: base, ItemID: w.ItemID, CallID: w.CallID, Delta: w.Delta}, nil

	case EventOutputItemDone:
		item, err := w.Item.toItem()
		if err != nil {
			return nil, err
		}
		return OutputItemDone{Base: base, Item: item}, nil

	case EventQuality:
		return QualityUpdate{Base: base, Patch: sanitizePatch(w.QualityPatch)}, nil

	case EventSessionCreated, EventSessionUpdated:
		return SessionEvent{Base: base}, nil

	case EventError:
		return ErrorEvent{Base: base, Message: errorMessage(w.Error, w.Message)}, nil

	default:
		return IgnoredEvent{Base: base}, nil
	}
}

// unknown quality levels are treated as absent
func sanitizePatch(p model.QualityPatch) model.QualityPatch {
	if p.ConnectionQuality != nil && !p.ConnectionQuality.Valid() {
		p.ConnectionQuality = nil
	}
	if p.AudioQuality != nil && !p.AudioQuality.Valid() {
		p.AudioQuality = nil
	}
	return p
}

func errorMessage(raw json.RawMessage, fallback string) string {
	if len(raw) == 0 {
		return fallback
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}

	var obj struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil && obj.Message != "" {
		return obj.Message
	}
	return string(raw)
}

// SessionUpdate is the only message the dashboard sends upstream.
type SessionUpdate struct {
	Type    string         `json:"type"`
	Session map[string]any `json:"session"`
}

func NewSessionUpdate(config map[string]any) SessionUpdate {
	if config == nil {
		config = map[string]any{}
	}
	return SessionUpdate{Type: EventSessionUpdate, Session: config}
}
