package trace

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// LaTeXWriter renders each cycle as a pair of booktabs-style LaTeX
// tables, the structured-document analogue of the source simulator's
// LaTeXTrace/LaTeXTable pair. There is no ecosystem LaTeX-table library
// in play here (see DESIGN.md); the template is small enough that
// text/template would add a layer of indirection without buying
// anything over direct string building, which is what the source did
// too.
type LaTeXWriter struct {
	w        io.Writer
	preamble bool
}

func NewLaTeXWriter(w io.Writer) *LaTeXWriter {
	return &LaTeXWriter{w: w}
}

func (l *LaTeXWriter) Update(s Snapshot) error {
	if !l.preamble {
		fmt.Fprint(l.w, latexPreamble)
		l.preamble = true
	}

	l.table(fmt.Sprintf("Reorder buffer, cycle %d", s.Cycle), []string{"Entry", "Instruction", "State", "Dest.", "Value"},
		func() [][]string {
			rows := make([][]string, 0, len(s.ROB))
			for _, r := range s.ROB {
				rows = append(rows, []string{strconv.Itoa(r.Entry), escape(r.Instr), r.State, escape(r.Dest), escape(r.Value)})
			}
			return rows
		}())

	l.table(fmt.Sprintf("Reservation stations, cycle %d", s.Cycle), []string{"Station", "Op", "Time", "Vj", "Vk", "Qj", "Qk", "Dest", "A"},
		func() [][]string {
			rows := make([][]string, 0, len(s.RS))
			for _, r := range s.RS {
				rows = append(rows, []string{r.Name, escape(r.Op), r.Time, escape(r.Vj), escape(r.Vk), escape(r.Qj), escape(r.Qk), escape(r.Dest), r.A})
			}
			return rows
		}())

	return nil
}

func (l *LaTeXWriter) table(caption string, header []string, rows [][]string) {
	align := strings.Repeat("c", len(header))
	fmt.Fprintf(l.w, "\\begin{center}\n%s\n\\begin{tabular}{%s} \\toprule\n%s \\\\ \\midrule\n",
		caption, align, strings.Join(header, " & "))
	for _, row := range rows {
		fmt.Fprintf(l.w, "%s \\\\\n", strings.Join(row, " & "))
	}
	fmt.Fprint(l.w, "\\bottomrule\n\\end{tabular}\n\\end{center}\n\n")
}

func (l *LaTeXWriter) Close() error {
	fmt.Fprint(l.w, "\\end{document}\n")
	if c, ok := l.w.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// escape guards against '#' in rename markers, which LaTeX treats as a
// macro-parameter token outside math mode.
func escape(s string) string {
	return strings.ReplaceAll(s, "#", "\\#")
}

const latexPreamble = `\documentclass{article}
\usepackage[utf8]{inputenc}
\usepackage[T1]{fontenc}
\usepackage{booktabs}
\begin{document}
`
