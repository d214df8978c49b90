// Package roles derives protocol-role hints from port names.
//
// Matching is a plain case-insensitive substring test. It is permissive on
// purpose ("forward" contains "rd"); templates were written against this
// behavior, so keep it as is.
package roles

import (
	"strings"

	"github.com/robert-at-pretension-io/uvm-tbgen/internal/extractor"
)

// controlKeywords mark an input as a control signal.
var controlKeywords = []string{"enable", "en", "write", "read", "wr", "rd"}

var (
	resetKeywords = []string{"rst", "reset"}
	clockKeywords = []string{"clk", "clock"}
)

// SignalRoles annotates a port list with handshake and control hints.
type SignalRoles struct {
	// ClockPort is the first input that looks like a clock, or "".
	ClockPort string `json:"clock_port"`
	// ResetPort is the first input that looks like a reset, or "".
	ResetPort              string   `json:"reset_port"`
	HasValidSignal         bool     `json:"has_valid_signal"`
	HasReadySignal         bool     `json:"has_ready_signal"`
	ControlSignals         []string `json:"control_signals"`
	MultipleControlSignals bool     `json:"multiple_control_signals"`
}

// HasClock reports whether a clock input was found.
func (r SignalRoles) HasClock() bool { return r.ClockPort != "" }

// HasReset reports whether a reset input was found.
func (r SignalRoles) HasReset() bool { return r.ResetPort != "" }

// Classify scans ports in order and returns their roles.
func Classify(ports []extractor.Port) SignalRoles {
	roles := SignalRoles{ControlSignals: []string{}}

	for _, p := range ports {
		name := strings.ToLower(p.Name)
		switch p.Direction {
		case extractor.Input:
			if roles.ClockPort == "" && containsAny(name, clockKeywords) {
				roles.ClockPort = p.Name
			}
			if roles.ResetPort == "" && containsAny(name, resetKeywords) {
				roles.ResetPort = p.Name
			}
			if strings.Contains(name, "ready") {
				roles.HasReadySignal = true
			}
			if containsAny(name, controlKeywords) {
				roles.ControlSignals = append(roles.ControlSignals, p.Name)
			}
		case extractor.Output:
			if strings.Contains(name, "valid") {
				roles.HasValidSignal = true
			}
		}
	}

	roles.MultipleControlSignals = len(roles.ControlSignals) > 1
	return roles
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
