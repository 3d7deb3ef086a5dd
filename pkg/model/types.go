package model

import (
	"strings"
	"time"
)

type (
	ItemType     string
	Role         string
	ItemStatus   string
	CallStatus   string
	QualityLevel string
)

// Item is one conversation unit: a message, a function call, or its output
type Item struct {
	ID        string        `json:"id"`
	Object    string        `json:"object,omitempty"` // realtime.item
	Type      ItemType      `json:"type"`
	Role      Role          `json:"role,omitempty"`
	Content   []ContentPart `json:"content,omitempty"`
	Name      string        `json:"name,omitempty"`
	CallID    string        `json:"call_id,omitempty"`
	Arguments string        `json:"arguments,omitempty"`
	Output    string        `json:"output,omitempty"`
	Status    ItemStatus    `json:"status,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
}

type ContentPart struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Text concatenates all content fragments.
func (i Item) Text() string {
	if len(i.Content) == 0 {
		return ""
	}

	var sb strings.Builder
	for _, c := range i.Content {
		sb.WriteString(c.Text)
	}
	return sb.String()
}

// Clone returns a copy that shares no slices with i.
func (i Item) Clone() Item {
	if i.Content != nil {
		content := make([]ContentPart, len(i.Content))
		copy(content, i.Content)
		i.Content = content
	}
	return i
}

// Participants are the display labels of both call ends
type Participants struct {
	Caller    string `json:"caller"`
	Assistant string `json:"assistant"`
}

// CallInfo describes the single live call of a dashboard
type CallInfo struct {
	SessionID    string       `json:"sessionId,omitempty"`
	CallSid      string       `json:"callSid,omitempty"`
	ElderID      string       `json:"elderId,omitempty"`
	PhoneNumber  string       `json:"phoneNumber,omitempty"`
	Status       CallStatus   `json:"status"`
	StartTime    *time.Time   `json:"startTime,omitempty"`
	EndTime      *time.Time   `json:"endTime,omitempty"`
	Duration     int64        `json:"duration,omitempty"` // seconds
	Participants Participants `json:"participants"`
}

type CallQuality struct {
	ConnectionQuality QualityLevel `json:"connectionQuality"`
	AudioQuality      QualityLevel `json:"audioQuality"`
	Latency           *float64     `json:"latency,omitempty"` // ms
	PacketsLost       *int64       `json:"packetsLost,omitempty"`
	Jitter            *float64     `json:"jitter,omitempty"`
}

// QualityPatch carries only the fields present in a telemetry event.
type QualityPatch struct {
	ConnectionQuality *QualityLevel `json:"connectionQuality,omitempty"`
	AudioQuality      *QualityLevel `json:"audioQuality,omitempty"`
	Latency           *float64      `json:"latency,omitempty"`
	PacketsLost       *int64        `json:"packetsLost,omitempty"`
	Jitter            *float64      `json:"jitter,omitempty"`
}

// Empty reports whether the patch would leave any quality untouched.
func (p QualityPatch) Empty() bool {
	return p.ConnectionQuality == nil && p.AudioQuality == nil &&
		p.Latency == nil && p.PacketsLost == nil && p.Jitter == nil
}

// Merge applies the present fields of p onto q, field by field.
func (q CallQuality) Merge(p QualityPatch) CallQuality {
	if p.ConnectionQuality != nil {
		q.ConnectionQuality = *p.ConnectionQuality
	}
	if p.AudioQuality != nil {
		q.AudioQuality = *p.AudioQuality
	}
	if p.Latency != nil {
		v := *p.Latency
		q.Latency = &v
	}
	if p.PacketsLost != nil {
		v := *p.PacketsLost
		q.PacketsLost = &v
	}
	if p.Jitter != nil {
		v := *p.Jitter
		q.Jitter = &v
	}
	return q
}

type CallStats struct {
	MessageCount      int     `json:"messageCount"`
	FunctionCallCount int     `json:"functionCallCount"`
	TotalSpeechTime   float64 `json:"totalSpeechTime"` // seconds
	AvgResponseTime   float64 `json:"avgResponseTime"` // ms
}

// DashboardSnapshot is everything a dashboard view renders at one instant
type DashboardSnapshot struct {
	Call      CallInfo     `json:"call"`
	Quality   *CallQuality `json:"quality,omitempty"`
	Stats     CallStats    `json:"stats"`
	Items     []Item       `json:"items"`
	ItemCount int          `json:"itemCount"`
	Query     string       `json:"query,omitempty"`
}

// Constants for item types
const (
	ItemTypeMessage            ItemType = "message"
	ItemTypeFunctionCall       ItemType = "function_call"
	ItemTypeFunctionCallOutput ItemType = "function_call_output"
)

// Constants for roles
const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

const (
	ItemStatusRunning   ItemStatus = "running"
	ItemStatusCompleted ItemStatus = "completed"
)

// Constants for call status
const (
	CallStatusIdle       CallStatus = "idle"
	CallStatusConnecting CallStatus = "connecting"
	CallStatusConnected  CallStatus = "connected"
	CallStatusActive     CallStatus = "active"
	CallStatusEnded      CallStatus = "ended"
	CallStatusError      CallStatus = "error"
)

const (
	QualityExcellent QualityLevel = "excellent"
	QualityGood      QualityLevel = "good"
	QualityFair      QualityLevel = "fair"
	QualityPoor      QualityLevel = "poor"
)

// Valid reports whether l is one of the known quality levels.
func (l QualityLevel) Valid() bool {
	switch l {
	case QualityExcellent, QualityGood, QualityFair, QualityPoor:
		return true
	}
	return false
}

// Display labels
const (
	CallerLabel    = "어르신"
	AssistantLabel = "AI 어시스턴트"
	SystemLabel    = "시스템"
	TranscriptName = "통화기록"
)

const ItemObject = "realtime.item"

// DefaultCallQuality is the quality shown before any telemetry arrives.
func DefaultCallQuality() CallQuality {
	latency := 150.0
	return CallQuality{
		ConnectionQuality: QualityGood,
		AudioQuality:      QualityGood,
		Latency:           &latency,
	}
}

// DefaultCallStats are the stats of an empty transcript.
func DefaultCallStats() CallStats {
	return CallStats{AvgResponseTime: DefaultAvgResponseTime}
}

const DefaultAvgResponseTime = 1200.0
