package extractor

import "fmt"

// Direction is a port direction as written in the module interface.
type Direction string

const (
	Input  Direction = "input"
	Output Direction = "output"
	Inout  Direction = "inout"
)

// ParseDirection maps a direction token to a Direction.
// Anything that is not input, output or inout resolves to Input.
func ParseDirection(tok string) Direction {
	switch Direction(tok) {
	case Output:
		return Output
	case Inout:
		return Inout
	}
	return Input
}

// Range is a [msb:lsb] bit range. Bounds may be given in either order.
type Range struct {
	MSB int
	LSB int
}

// Width returns the number of bits covered by the range.
func (r Range) Width() int {
	d := r.MSB - r.LSB
	if d < 0 {
		d = -d
	}
	return d + 1
}

// Port represents one signal of a module interface.
type Port struct {
	Name      string    `json:"name"`
	Direction Direction `json:"direction"`
	Width     int       `json:"width"`
}

// NewPort builds a Port from a direction token, an optional range and a name.
func NewPort(direction string, rng *Range, name string) Port {
	width := 1
	if rng != nil {
		width = rng.Width()
	}
	return Port{
		Name:      name,
		Direction: ParseDirection(direction),
		Width:     width,
	}
}

// RangeSuffix returns "[w-1:0]" for vectors and "" for single bits.
func (p Port) RangeSuffix() string {
	if p.Width <= 1 {
		return ""
	}
	return fmt.Sprintf("[%d:0]", p.Width-1)
}

// SignalDecl returns the testbench declaration of the port, e.g. "logic [7:0] data;".
func (p Port) SignalDecl() string {
	if p.Width <= 1 {
		return fmt.Sprintf("logic %s;", p.Name)
	}
	return fmt.Sprintf("logic %s %s;", p.RangeSuffix(), p.Name)
}

// Connection returns the named instantiation connection ".name(<prefix>name)",
// e.g. ".clk(dut_if.clk)" for prefix "dut_if.".
func (p Port) Connection(prefix string) string {
	return fmt.Sprintf(".%s(%s%s)", p.Name, prefix, p.Name)
}

// Module is the structural description of one hardware module.
type Module struct {
	Name  string `json:"module"`
	Ports []Port `json:"ports"`
}

// Filter returns the ports with the given direction, in port order.
func (m Module) Filter(dir Direction) []Port {
	out := []Port{}
	for _, p := range m.Ports {
		if p.Direction == dir {
			out = append(out, p)
		}
	}
	return out
}
