package main

import (
	"github.com/Medicare-Call/Medicare-Call-Telephony-Frontend-JH/pkg/model"

	"github.com/charmbracelet/lipgloss"
)

// Theme defines the terminal styling of the watch view.
type Theme struct {
	Caller    lipgloss.Color
	Assistant lipgloss.Color
	System    lipgloss.Color
	Success   lipgloss.Color
	Warning   lipgloss.Color
	Error     lipgloss.Color
	Muted     lipgloss.Color
}

func DefaultTheme() Theme {
	return Theme{
		Caller:    lipgloss.Color("12"),  // Blue
		Assistant: lipgloss.Color("10"),  // Green
		System:    lipgloss.Color("13"),  // Magenta
		Success:   lipgloss.Color("10"),  // Green
		Warning:   lipgloss.Color("11"),  // Yellow
		Error:     lipgloss.Color("9"),   // Red
		Muted:     lipgloss.Color("240"), // Gray
	}
}

func (t Theme) speaker(role model.Role) lipgloss.Style {
	style := lipgloss.NewStyle().Bold(true)
	switch role {
	case model.RoleUser:
		return style.Foreground(t.Caller)
	case model.RoleAssistant:
		return style.Foreground(t.Assistant)
	default:
		return style.Foreground(t.System)
	}
}

func (t Theme) status(status model.CallStatus) lipgloss.Style {
	style := lipgloss.NewStyle().Bold(true)
	switch status {
	case model.CallStatusActive:
		return style.Foreground(t.Success)
	case model.CallStatusConnecting, model.CallStatusConnected:
		return style.Foreground(t.Warning)
	case model.CallStatusError:
		return style.Foreground(t.Error)
	default:
		return style.Foreground(t.Muted)
	}
}

func (t Theme) quality(level model.QualityLevel) lipgloss.Style {
	switch level {
	case model.QualityExcellent, model.QualityGood:
		return lipgloss.NewStyle().Foreground(t.Success)
	case model.QualityFair:
		return lipgloss.NewStyle().Foreground(t.Warning)
	case model.QualityPoor:
		return lipgloss.NewStyle().Foreground(t.Error)
	default:
		return lipgloss.NewStyle().Foreground(t.Muted)
	}
}

func (t Theme) muted() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Muted)
}
