package extractor

// Keywords recognized by the extractor. Everything else is an ordinary identifier.
const (
	kwModule = "module"
	kwInput  = "input"
	kwOutput = "output"
	kwInout  = "inout"
)

// netKeywords may sit between a direction and the port name
// ("output reg [7:0] q", "input wire signed [3:0] a"). They carry no width.
var netKeywords = map[string]bool{
	"wire":     true,
	"reg":      true,
	"logic":    true,
	"bit":      true,
	"var":      true,
	"tri":      true,
	"tri0":     true,
	"tri1":     true,
	"wand":     true,
	"wor":      true,
	"uwire":    true,
	"supply0":  true,
	"supply1":  true,
	"signed":   true,
	"unsigned": true,
	"integer":  true,
	"int":      true,
	"shortint": true,
	"longint":  true,
	"byte":     true,
	"real":     true,
	"time":     true,
}

// isDirection reports whether tok is a port direction keyword.
// Matching is case-sensitive, as in Verilog.
func isDirection(tok Token) bool {
	if tok.Kind != TokIdent {
		return false
	}
	switch tok.Text {
	case kwInput, kwOutput, kwInout:
		return true
	}
	return false
}

// isNetKeyword reports whether tok is a net or data type keyword.
func isNetKeyword(tok Token) bool {
	return tok.Kind == TokIdent && netKeywords[tok.Text]
}

// isPortName reports whether tok can name a port.
func isPortName(tok Token) bool {
	return tok.Kind == TokIdent && !isDirection(tok) && !isNetKeyword(tok) && tok.Text != kwModule
}
