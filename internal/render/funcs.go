package render

import (
	"strings"
	"text/template"
)

// FuncMap is available to every template, built-in or loaded from disk.
func FuncMap() template.FuncMap {
	return template.FuncMap{
		"upper":         strings.ToUpper,
		"lower":         strings.ToLower,
		"join":          strings.Join,
		"contains":      strings.Contains,
		"activeLow":     activeLow,
		"assertLevel":   assertLevel,
		"deassertLevel": deassertLevel,
		"flip":          flip,
	}
}

// activeLowSuffixes mark an active-low reset. A bare trailing "n" is not
// enough: rst_in and sys_reset_gen are active high.
var activeLowSuffixes = []string{"_n", "_b", "rstn", "resetn"}

// activeLow guesses reset polarity from the usual suffixes (rst_n, resetn, rst_b).
func activeLow(name string) bool {
	n := strings.ToLower(name)
	for _, suffix := range activeLowSuffixes {
		if strings.HasSuffix(n, suffix) {
			return true
		}
	}
	return false
}

func assertLevel(reset string) string {
	if activeLow(reset) {
		return "1'b0"
	}
	return "1'b1"
}

func deassertLevel(reset string) string {
	if activeLow(reset) {
		return "1'b1"
	}
	return "1'b0"
}

// flip returns the testbench-side direction for a DUT port direction.
func flip(dir string) string {
	switch dir {
	case "input":
		return "output"
	case "output":
		return "input"
	}
	return dir
}
