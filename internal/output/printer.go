package output

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

type Class int

const (
	Required Class = iota //explicitly requested information, e.g. shown fields
	Error
	Normal
	Verbose
)

type Printer struct {
	classes    map[Class]bool
	terminal   io.Writer
	diagnosis  io.Writer
	useEscapes bool
}

func NewPrinter(include []Class, allowEscapes bool, terminal io.Writer, diagnosis io.Writer) *Printer {
	p := &Printer{
		classes:    map[Class]bool{},
		terminal:   terminal,
		diagnosis:  diagnosis,
		useEscapes: allowEscapes,
	}
	for _, class := range include {
		p.classes[class] = true
	}
	return p
}

func (p *Printer) Enabled(class Class) bool {
	return p.classes[class]
}

func (p *Printer) Out(class Class, format string, values ...interface{}) {
	if !p.classes[class] {
		return
	}
	target := p.terminal
	if class == Error {
		target = p.diagnosis
	}
	fmt.Fprintf(target, format, values...)
}

// Paint applies the given SGR attributes unless escape sequences are disabled.
func (p *Printer) Paint(text string, attributes ...color.Attribute) string {
	c := color.New(attributes...)
	if p.useEscapes {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	return c.Sprint(text)
}
