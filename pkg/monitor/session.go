package monitor

import (
	"fmt"
	"time"

	"github.com/Medicare-Call/Medicare-Call-Telephony-Frontend-JH/pkg/model"
)

// CallMeta is what a successful call initiation hands to the dashboard.
type CallMeta struct {
	SessionID   string
	CallSid     string
	ElderID     string
	PhoneNumber string
}

// CallSession is the lifecycle of a single call:
//
//	idle -> connecting -> active -> ended
//	any  -> error
//
// ended and error are terminal; only a new call start leaves them.
type CallSession struct {
	info model.CallInfo
}

// NewCallSession returns an idle session with default participant labels.
func NewCallSession() *CallSession {
	return &CallSession{
		info: model.CallInfo{
			Status: model.CallStatusIdle,
			Participants: model.Participants{
				Caller:    model.CallerLabel,
				Assistant: model.AssistantLabel,
			},
		},
	}
}

// Start replaces the call info for a freshly initiated call and moves to connecting.
func (s *CallSession) Start(meta CallMeta, now time.Time) {
	start := now
	s.info = model.CallInfo{
		SessionID:   meta.SessionID,
		CallSid:     meta.CallSid,
		ElderID:     meta.ElderID,
		PhoneNumber: meta.PhoneNumber,
		Status:      model.CallStatusConnecting,
		StartTime:   &start,
		Participants: model.Participants{
			Caller:    fmt.Sprintf("%s (%s)", model.CallerLabel, meta.ElderID),
			Assistant: model.AssistantLabel,
		},
	}
}

// Opened folds the stream open acknowledgment into active. Only valid from connecting.
func (s *CallSession) Opened() bool {
	switch s.info.Status {
	case model.CallStatusConnecting, model.CallStatusConnected:
		s.info.Status = model.CallStatusActive
		return true
	}
	return false
}

// Closed ends an active call and stamps its end time.
func (s *CallSession) Closed(now time.Time) bool {
	if s.info.Status != model.CallStatusActive {
		return false
	}
	s.info.Status = model.CallStatusEnded
	s.stampEnd(now)
	return true
}

// Failed moves any state to error.
func (s *CallSession) Failed(now time.Time) bool {
	if s.info.Status == model.CallStatusError {
		return false
	}
	s.info.Status = model.CallStatusError
	s.stampEnd(now)
	return true
}

func (s *CallSession) stampEnd(now time.Time) {
	if s.info.StartTime == nil || s.info.EndTime != nil {
		return
	}
	end := now
	s.info.EndTime = &end
}

func (s *CallSession) Status() model.CallStatus {
	return s.info.Status
}

// Terminal reports whether the call ended or failed.
func (s *CallSession) Terminal() bool {
	return s.info.Status == model.CallStatusEnded || s.info.Status == model.CallStatusError
}

// Info returns a copy of the call info with its duration derived at now.
func (s *CallSession) Info(now time.Time) model.CallInfo {
	info := s.info
	if info.StartTime != nil {
		start := *info.StartTime
		info.StartTime = &start
	}
	if info.EndTime != nil {
		end := *info.EndTime
		info.EndTime = &end
	}

	switch {
	case info.StartTime == nil:
	case info.EndTime != nil:
		info.Duration = int64(info.EndTime.Sub(*info.StartTime) / time.Second)
	case info.Status == model.CallStatusActive:
		info.Duration = int64(now.Sub(*info.StartTime) / time.Second)
	}
	return info
}
