package display

import (
	"fmt"
	"io"
	"sync"

	"github.com/cuemby/reportwatch/pkg/reports"
	"github.com/cuemby/reportwatch/pkg/types"
	"github.com/fatih/color"
)

// attributes maps palette indices to terminal colours
var attributes = [types.PaletteSize]color.Attribute{
	color.FgBlack,
	color.FgBlue,
	color.FgGreen,
	color.FgCyan,
	color.FgRed,
	color.FgMagenta,
	color.FgYellow, // brown
	color.FgWhite,  // light gray
	color.FgHiBlack,
	color.FgHiBlue,
	color.FgHiGreen,
	color.FgHiCyan,
	color.FgHiRed,
	color.FgHiMagenta,
	color.FgHiYellow,
	color.FgHiWhite,
}

// PrinterOptions configures a Printer
type PrinterOptions struct {
	// NoColor disables terminal colours
	NoColor bool
	// ShowRepeats prints a line when a shown event repeats again
	ShowRepeats bool
}

// Printer is a reports.Sink that writes newly inserted events to a terminal,
// one line per event, in the event's palette colour.
type Printer struct {
	mu     sync.Mutex
	out    io.Writer
	model  *reports.Model
	filter *Filter
	opts   PrinterOptions
	colors [types.PaletteSize]*color.Color
	dim    *color.Color

	// repeat count last printed per shown event
	printed map[int32]int32
}

var _ reports.Sink = (*Printer)(nil)

// NewPrinter creates a printer reading rows from model. filter may be nil.
func NewPrinter(out io.Writer, model *reports.Model, filter *Filter, opts PrinterOptions) *Printer {
	p := &Printer{
		out:     out,
		model:   model,
		filter:  filter,
		opts:    opts,
		dim:     color.New(color.Faint),
		printed: make(map[int32]int32),
	}
	for i, attr := range attributes {
		p.colors[i] = color.New(attr)
	}
	if opts.NoColor {
		for _, c := range p.colors {
			c.DisableColor()
		}
		p.dim.DisableColor()
	}
	return p
}

func (p *Printer) shown(ev types.Event) bool {
	return p.filter == nil || p.filter.Accept(ev)
}

func (p *Printer) color(index int) *color.Color {
	if index < 0 || index >= types.PaletteSize {
		return p.colors[7] // light gray
	}
	return p.colors[index]
}

func (p *Printer) print(ev types.Event) {
	p.dim.Fprintf(p.out, "%-22s ", ev.Time)
	p.color(ev.Color).Fprintln(p.out, ev.DisplayText())
	p.printed[ev.ID] = ev.Repeat
}

// Notify prints a server notification. Unlike the row callbacks it may be
// called from any goroutine.
func (p *Printer) Notify(color int, text string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.dim.Fprint(p.out, "* ")
	p.color(color).Fprintln(p.out, text)
}

func (p *Printer) RowsInserted(first, last int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i := first; i <= last; i++ {
		if ev := p.model.At(i); p.shown(ev) {
			p.print(ev)
		}
	}
}

func (p *Printer) RowsRemoved(first, last int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i := first; i <= last; i++ {
		delete(p.printed, p.model.At(i).ID)
	}
}

func (p *Printer) RowsChanged(first, last int, hint reports.Field) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.opts.ShowRepeats || hint != reports.FieldRepeat {
		return
	}
	for i := first; i <= last; i++ {
		ev := p.model.At(i)
		before, ok := p.printed[ev.ID]
		if !ok || ev.Repeat <= before {
			continue
		}
		p.print(ev)
	}
}

func (p *Printer) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.printed) > 0 {
		p.dim.Fprintln(p.out, "--- cleared ---")
	}
	clear(p.printed)
}

// PrintCategories writes one line per category with its flag
func PrintCategories(out io.Writer, categories []types.Category) {
	for _, c := range categories {
		mark := " "
		if c.Enabled {
			mark = "x"
		}
		fmt.Fprintf(out, "[%s] %s\n", mark, c.Name)
	}
}
