package asm

import "strings"

// stripComment removes a trailing comment from a source line. A `;` or
// `#` begins a comment only when it starts the line or is preceded by
// whitespace; a `#` glued directly onto a token (as in the `#-8`
// immediate syntax) is left alone. This is the one place the assembler
// has to disambiguate the immediate-prefix and comment-marker uses of
// `#` — see DESIGN.md.
func stripComment(line string) string {
	prevSpace := true
	for i, r := range line {
		if (r == ';' || r == '#') && prevSpace {
			return line[:i]
		}
		prevSpace = r == ' ' || r == '\t'
	}
	return line
}

// splitLabel recognizes a label-only line: a single token ending in
// `:`. Per spec.md §6 no instruction follows a label on the same line.
func splitLabel(line string) (label string, isLabel bool) {
	fields := strings.Fields(line)
	if len(fields) == 1 && strings.HasSuffix(fields[0], ":") {
		return strings.TrimSuffix(fields[0], ":"), true
	}
	return "", false
}

// splitMnemonic separates the leading mnemonic token from the rest of
// an instruction line (its operand text, unparsed).
func splitMnemonic(line string) (mnemonic, rest string) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return "", ""
	}
	mnemonic = strings.ToUpper(fields[0])
	idx := strings.Index(line, fields[0])
	rest = strings.TrimSpace(line[idx+len(fields[0]):])
	return mnemonic, rest
}

// splitOperands splits comma-separated operand text into trimmed
// tokens; an empty rest yields no operands.
func splitOperands(rest string) []string {
	if rest == "" {
		return nil
	}
	parts := strings.Split(rest, ",")
	out := make([]string, len(parts))
	for i, p := range parts {
		out[i] = strings.TrimSpace(p)
	}
	return out
}
