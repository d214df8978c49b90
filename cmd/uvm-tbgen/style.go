package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/robert-at-pretension-io/uvm-tbgen/internal/generator"
	"github.com/robert-at-pretension-io/uvm-tbgen/internal/lint"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4"))
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575"))
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFB86C"))
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5555"))
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6C7086"))
	boxStyle   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#6C7086")).
			Padding(0, 1)
)

// renderSummary formats a run report for the terminal.
func renderSummary(r *generator.Report) string {
	var b strings.Builder

	header := fmt.Sprintf("%s  %s → %s", titleStyle.Render(r.Module), mutedStyle.Render(r.Dut), r.OutDir)
	if r.Degraded {
		header += "  " + warnStyle.Render("(no module header, name from file)")
	}
	b.WriteString(header + "\n")

	var sigs []string
	if r.Roles.HasClock() {
		sigs = append(sigs, "clock "+r.Roles.ClockPort)
	}
	if r.Roles.HasReset() {
		sigs = append(sigs, "reset "+r.Roles.ResetPort)
	}
	if len(sigs) > 0 {
		b.WriteString(mutedStyle.Render(strings.Join(sigs, ", ")) + "\n")
	}

	nameWidth := 0
	for _, res := range r.Artifacts {
		nameWidth = max(nameWidth, len(res.File))
	}
	var rows []string
	for _, res := range r.Artifacts {
		name := fmt.Sprintf("%-*s", nameWidth, res.File)
		switch {
		case res.OK:
			rows = append(rows, okStyle.Render("✓")+" "+name+" "+mutedStyle.Render(fmt.Sprintf("%d bytes", res.Bytes)))
		case res.Fallback && res.Bytes > 0:
			rows = append(rows, warnStyle.Render("!")+" "+name+" "+warnStyle.Render("fallback: "+res.Error))
		default:
			rows = append(rows, errStyle.Render("✗")+" "+name+" "+errStyle.Render(res.Error))
		}
	}
	if r.RunScript != "" {
		rows = append(rows, okStyle.Render("✓")+" "+r.RunScript)
	}
	b.WriteString(boxStyle.Render(strings.Join(rows, "\n")) + "\n")

	if len(r.Findings) > 0 {
		sum := lint.Summarize(r.Findings)
		b.WriteString(fmt.Sprintf("lint: %d findings (%d errors, %d warnings, %d info)\n",
			sum.Total, sum.Errors, sum.Warnings, sum.Info))
	}
	for _, f := range r.Findings {
		style := mutedStyle
		if f.Severity == lint.SeverityWarning || f.Severity == lint.SeverityError {
			style = warnStyle
		}
		line := fmt.Sprintf("%s %s: %s", style.Render(f.Severity), f.Rule, f.Message)
		b.WriteString(line + "\n")
	}
	if r.ContractError != "" {
		b.WriteString(warnStyle.Render("contract: ") + r.ContractError + "\n")
	}

	b.WriteString(fmt.Sprintf("%d/%d artifacts written in %dms\n", r.Written(), len(r.Artifacts), r.DurationMS))
	return b.String()
}
