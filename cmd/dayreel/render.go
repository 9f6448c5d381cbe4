package main

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
)

// progressPrinter rewrites one terminal line as progress arrives. On a
// non-terminal writer it stays silent so piped output remains clean.
type progressPrinter struct {
	out      io.Writer
	label    string
	terminal bool
	active   bool
}

func newProgressPrinter(out io.Writer, label string) *progressPrinter {
	return &progressPrinter{out: out, label: label, terminal: isTerminal(out)}
}

func (p *progressPrinter) update(percent float64) {
	if !p.terminal {
		return
	}
	p.active = true
	fmt.Fprintf(p.out, "\r%s %5.1f%%", p.label, percent)
}

func (p *progressPrinter) finish() {
	if p.active {
		fmt.Fprintln(p.out)
	}
}

func isTerminal(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
