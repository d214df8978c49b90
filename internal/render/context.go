package render

import (
	"github.com/robert-at-pretension-io/uvm-tbgen/internal/extractor"
	"github.com/robert-at-pretension-io/uvm-tbgen/internal/roles"
)

// PortView is the name/direction/range form of a port handed to the
// interface and top-module templates.
type PortView struct {
	Name  string `json:"name"`
	Dir   string `json:"dir"`
	Width string `json:"width"`
}

// SignalDecl renders the view the same way extractor.Port.SignalDecl does.
func (v PortView) SignalDecl() string {
	if v.Width == "" {
		return "logic " + v.Name + ";"
	}
	return "logic " + v.Width + " " + v.Name + ";"
}

// NewPortView reshapes ports into their view form.
func NewPortView(ports []extractor.Port) []PortView {
	views := make([]PortView, 0, len(ports))
	for _, p := range ports {
		views = append(views, PortView{
			Name:  p.Name,
			Dir:   string(p.Direction),
			Width: p.RangeSuffix(),
		})
	}
	return views
}

// Context is the data every template renders against.
type Context struct {
	Module      string           `json:"module"`
	TopName     string           `json:"topname"`
	Ports       []extractor.Port `json:"ports"`
	AllPorts    []extractor.Port `json:"all_ports"`
	InputPorts  []extractor.Port `json:"input_ports"`
	OutputPorts []extractor.Port `json:"output_ports"`
	InoutPorts  []extractor.Port `json:"inout_ports"`

	ClockPort              string   `json:"clock_port"`
	ResetPort              string   `json:"reset_port"`
	HasValidSignal         bool     `json:"has_valid_signal"`
	HasReadySignal         bool     `json:"has_ready_signal"`
	MultipleControlSignals bool     `json:"multiple_control_signals"`
	ControlSignals         []string `json:"control_signals"`

	// PortView is only set for artifacts that ask for it.
	PortView []PortView `json:"port_view,omitempty"`
}

// NewContext builds the context for one generation run.
func NewContext(mod extractor.Module, topName string, r roles.SignalRoles) Context {
	ports := append([]extractor.Port{}, mod.Ports...)
	return Context{
		Module:                 mod.Name,
		TopName:                topName,
		Ports:                  ports,
		AllPorts:               append([]extractor.Port{}, ports...),
		InputPorts:             mod.Filter(extractor.Input),
		OutputPorts:            mod.Filter(extractor.Output),
		InoutPorts:             mod.Filter(extractor.Inout),
		ClockPort:              r.ClockPort,
		ResetPort:              r.ResetPort,
		HasValidSignal:         r.HasValidSignal,
		HasReadySignal:         r.HasReadySignal,
		MultipleControlSignals: r.MultipleControlSignals,
		ControlSignals:         append([]string{}, r.ControlSignals...),
	}
}

// Clone returns a deep copy, so a renderer never shares slices with another.
func (c Context) Clone() Context {
	out := c
	out.Ports = append([]extractor.Port{}, c.Ports...)
	out.AllPorts = append([]extractor.Port{}, c.AllPorts...)
	out.InputPorts = append([]extractor.Port{}, c.InputPorts...)
	out.OutputPorts = append([]extractor.Port{}, c.OutputPorts...)
	out.InoutPorts = append([]extractor.Port{}, c.InoutPorts...)
	out.ControlSignals = append([]string{}, c.ControlSignals...)
	if c.PortView != nil {
		out.PortView = append([]PortView{}, c.PortView...)
	}
	return out
}

// WithPortView returns a copy of c carrying the port view.
func (c Context) WithPortView() Context {
	out := c.Clone()
	out.PortView = NewPortView(c.Ports)
	return out
}
