package report

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
	"golang.org/x/term"

	"dartlift/internal/diag"
	"dartlift/internal/il"
	"dartlift/internal/lift"
)

// Options controls listing output.
type Options struct {
	// Color forces colorized output on or off; "auto" keys off the terminal.
	Color string
	// Width caps line width; <=0 means detect from the terminal, falling
	// back to 120 when the output is not one.
	Width int
	// Diagnostics interleaves each function's diagnostics after its body.
	Diagnostics bool
}

type printer struct {
	w     io.Writer
	width int

	header  *color.Color
	addr    *color.Color
	unknown *color.Color
	warn    *color.Color
	errc    *color.Color
}

func newPrinter(w io.Writer, opts Options) *printer {
	enabled := false
	switch opts.Color {
	case "on":
		enabled = true
	case "off":
	default:
		if f, ok := w.(*os.File); ok {
			enabled = term.IsTerminal(int(f.Fd()))
		}
	}

	width := opts.Width
	if width <= 0 {
		width = 120
		if f, ok := w.(*os.File); ok {
			if tw, _, err := term.GetSize(int(f.Fd())); err == nil && tw > 0 {
				width = tw
			}
		}
	}

	mk := func(attrs ...color.Attribute) *color.Color {
		c := color.New(attrs...)
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
		return c
	}
	return &printer{
		w:       w,
		width:   width,
		header:  mk(color.FgCyan, color.Bold),
		addr:    mk(color.FgHiBlack),
		unknown: mk(color.FgYellow),
		warn:    mk(color.FgYellow),
		errc:    mk(color.FgRed, color.Bold),
	}
}

// Listing renders one lifted function as an address-annotated node listing.
func Listing(w io.Writer, res *lift.Result, bag *diag.Bag, opts Options) {
	p := newPrinter(w, opts)
	p.function(res, bag, opts.Diagnostics)
}

// Listings renders a whole run in address order.
func Listings(w io.Writer, run *lift.RunResult, opts Options) {
	p := newPrinter(w, opts)
	for i, res := range run.Functions {
		if i > 0 {
			fmt.Fprintln(p.w)
		}
		var bag *diag.Bag
		if i < len(run.Bags) {
			bag = run.Bags[i]
		}
		p.function(res, bag, opts.Diagnostics)
	}
}

func (p *printer) function(res *lift.Result, bag *diag.Bag, withDiags bool) {
	fn := res.Fn
	title := fmt.Sprintf("%s  // %#x..%#x", fn.FullName(), fn.Addr, fn.Addr+uint64(fn.Size))
	fmt.Fprintln(p.w, p.header.Sprint(title))

	for _, node := range res.Nodes {
		p.node(node)
	}

	if withDiags && bag != nil && bag.Len() > 0 {
		fmt.Fprintln(p.w)
		for _, d := range bag.Items() {
			p.diagnostic(d)
		}
	}
}

func (p *printer) node(node il.Instr) {
	prefix := p.addr.Sprintf("  %#8x: ", node.Range().Start)
	text := node.String()
	if node.Kind() == il.Unknown {
		if u, ok := node.(*il.UnknownInstr); ok && u.Text != "" {
			text = p.unknown.Sprint(u.Text)
		} else {
			text = p.unknown.Sprint(text)
		}
	}
	fmt.Fprintln(p.w, truncate(prefix+text, p.width))
}

func (p *printer) diagnostic(d diag.Diagnostic) {
	c := p.warn
	if d.Severity == diag.SevError {
		c = p.errc
	}
	line := fmt.Sprintf("  %s %s @ %s: %s", c.Sprint(d.Severity), d.Code, d.Addr, d.Message)
	fmt.Fprintln(p.w, truncate(line, p.width))
	for _, n := range d.Notes {
		fmt.Fprintln(p.w, truncate(fmt.Sprintf("      note @ %s: %s", n.Addr, n.Msg), p.width))
	}
}

func truncate(value string, width int) string {
	if width <= 0 {
		return value
	}
	if runewidth.StringWidth(value) <= width {
		return value
	}
	if width <= 3 {
		return runewidth.Truncate(value, width, "")
	}
	return runewidth.Truncate(value, width-3, "...")
}
