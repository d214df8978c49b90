// =============================================================================
// EXTRACTOR: HEURISTIC, NOT A COMPILER
// =============================================================================
//
// The extractor recovers just enough of a Verilog/SystemVerilog module to
// scaffold a testbench: the module name and an ordered list of ports.
//
// THE RECOGNIZER:
//   1. Tokenize (comments and whitespace dropped)
//   2. Find the first `module <name> ( ... ) ;` header (`module <name> ;` and
//      a `#( ... )` parameter list are tolerated)
//   3. Split the header list on depth-0 commas and recognize each entry
//   4. Scan every token after the header for body port declarations
//
// KNOWN LIMITATIONS (kept on purpose, templates rely on them):
//   - A header entry without a direction keyword is recorded as input and is
//     never corrected by a later body declaration: first occurrence wins.
//   - `output [7:0] a, b` yields b as a 1-bit input.
//   - Entries that match nothing (e.g. `[WIDTH-1:0]` ranges) are skipped silently.
// =============================================================================

package extractor

import (
	"errors"
	"fmt"
	"os"
	"strconv"
)

// ErrNoModuleFound is returned when the text contains no module header.
var ErrNoModuleFound = errors.New("no module header found")

// Extract parses module text and returns its name and ports.
func Extract(text []byte) (Module, error) {
	toks := NewLexer(text).Tokenize()

	h, ok := findHeader(toks)
	if !ok {
		return Module{}, ErrNoModuleFound
	}

	mod := Module{Name: h.name, Ports: []Port{}}
	seen := make(map[string]bool)
	add := func(p Port) {
		if seen[p.Name] {
			return
		}
		seen[p.Name] = true
		mod.Ports = append(mod.Ports, p)
	}

	for _, entry := range splitTopLevel(h.list) {
		if p, ok := parseEntry(entry); ok {
			add(p)
		}
	}

	for _, p := range scanBody(toks[h.bodyStart:]) {
		add(p)
	}

	return mod, nil
}

// ExtractFile reads a file and extracts its module.
func ExtractFile(path string) (Module, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Module{}, fmt.Errorf("reading file: %w", err)
	}
	return Extract(content)
}

type header struct {
	name      string
	list      []Token // tokens strictly between the list parentheses
	bodyStart int     // index of the first token after the terminating ';'
}

// findHeader returns the first well-formed module header.
func findHeader(toks []Token) (header, bool) {
	at := func(i int) Token {
		if i < len(toks) {
			return toks[i]
		}
		return Token{Kind: TokEOF}
	}

	for i := range toks {
		if toks[i].Kind != TokIdent || toks[i].Text != kwModule {
			continue
		}
		nameTok := at(i + 1)
		if !isPortName(nameTok) {
			continue
		}

		j := i + 2
		if at(j).Kind == TokHash {
			if at(j+1).Kind != TokLParen {
				continue
			}
			end, ok := matchParen(toks, j+1)
			if !ok {
				continue
			}
			j = end + 1
		}

		switch at(j).Kind {
		case TokSemicolon:
			return header{name: nameTok.Text, bodyStart: j + 1}, true
		case TokLParen:
			end, ok := matchParen(toks, j)
			if !ok || at(end+1).Kind != TokSemicolon {
				continue
			}
			return header{name: nameTok.Text, list: toks[j+1 : end], bodyStart: end + 2}, true
		}
	}
	return header{}, false
}

// matchParen returns the index of the ')' closing the '(' at open.
func matchParen(toks []Token, open int) (int, bool) {
	depth := 0
	for i := open; i < len(toks); i++ {
		switch toks[i].Kind {
		case TokLParen:
			depth++
		case TokRParen:
			depth--
			if depth == 0 {
				return i, true
			}
		case TokEOF:
			return 0, false
		}
	}
	return 0, false
}

// splitTopLevel splits a port list on commas that are not nested inside
// parentheses, brackets or braces. Empty entries are dropped.
func splitTopLevel(list []Token) [][]Token {
	var entries [][]Token
	depth, start := 0, 0
	flush := func(end int) {
		if end > start {
			entries = append(entries, list[start:end])
		}
		start = end + 1
	}
	for i, tok := range list {
		switch tok.Kind {
		case TokLParen, TokLBracket, TokLBrace:
			depth++
		case TokRParen, TokRBracket, TokRBrace:
			if depth > 0 {
				depth--
			}
		case TokComma:
			if depth == 0 {
				flush(i)
			}
		}
	}
	flush(len(list))
	return entries
}

// parseEntry recognizes
//
//	<direction-or-other-word>? <net keyword>* <[msb:lsb]>? <name>
//
// Anything after the name (default values, unpacked dimensions) is ignored.
func parseEntry(toks []Token) (Port, bool) {
	at := func(i int) Token {
		if i < len(toks) {
			return toks[i]
		}
		return Token{Kind: TokEOF}
	}

	i := 0
	dir := ""
	switch {
	case isDirection(at(0)):
		dir = at(0).Text
		i++
	case at(0).Kind == TokIdent && (at(1).Kind == TokIdent || at(1).Kind == TokLBracket):
		// A leading word that is not a direction (a net type, an interface
		// type, a typedef) defaults the port to input.
		i++
	}
	for isNetKeyword(at(i)) {
		i++
	}

	rng, n, ok := parseRange(toks[min(i, len(toks)):])
	if !ok {
		return Port{}, false
	}
	i += n

	if !isPortName(at(i)) {
		return Port{}, false
	}
	return NewPort(dir, rng, at(i).Text), true
}

// scanBody collects `(input|output|inout) <net keyword>* <range>? <name>`
// declarations from the tokens following the header.
func scanBody(toks []Token) []Port {
	var ports []Port
	for i := range toks {
		if !isDirection(toks[i]) {
			continue
		}
		j := i + 1
		for j < len(toks) && isNetKeyword(toks[j]) {
			j++
		}
		rng, n, ok := parseRange(toks[j:])
		if !ok {
			continue
		}
		j += n
		if j >= len(toks) || !isPortName(toks[j]) {
			continue
		}
		ports = append(ports, NewPort(toks[i].Text, rng, toks[j].Text))
	}
	return ports
}

// parseRange recognizes an optional `[number:number]` prefix of toks.
// It returns the range (nil when absent), the number of tokens consumed, and
// false when a bracket is present but is not a plain numeric range.
func parseRange(toks []Token) (*Range, int, bool) {
	if len(toks) == 0 || toks[0].Kind != TokLBracket {
		return nil, 0, true
	}
	if len(toks) < 5 ||
		toks[1].Kind != TokNumber ||
		toks[2].Kind != TokColon ||
		toks[3].Kind != TokNumber ||
		toks[4].Kind != TokRBracket {
		return nil, 0, false
	}
	msb, err := strconv.Atoi(toks[1].Text)
	if err != nil {
		return nil, 0, false
	}
	lsb, err := strconv.Atoi(toks[3].Text)
	if err != nil {
		return nil, 0, false
	}
	return &Range{MSB: msb, LSB: lsb}, 5, true
}
