// Package console renders timestamped status lines for the operator.
package console

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
)

// Style selects the color of a console line.
type Style int

const (
	StylePlain Style = iota
	StyleOK
	StyleError
	StyleWarn
	StyleInfo
	StyleDebug
)

// TimestampLayout prefixes every console line.
const TimestampLayout = "2006-01-02 15:04:05.000000"

// Options configures a Printer.
type Options struct {
	Verbose bool
	Debug   bool
	// Now overrides the clock, for tests.
	Now func() time.Time
}

// Printer writes styled lines to a terminal and optionally mirrors them
// into the structured log.
type Printer struct {
	mu      sync.Mutex
	out     io.Writer
	styles  map[Style]lipgloss.Style
	verbose bool
	debug   bool
	now     func() time.Time
	logger  *zap.Logger
}

// NewPrinter creates a Printer writing to out. Colors are only emitted when
// out is a terminal that supports them.
func NewPrinter(out io.Writer, logger *zap.Logger, opts Options) *Printer {
	r := lipgloss.NewRenderer(out)
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Printer{
		out: out,
		styles: map[Style]lipgloss.Style{
			StylePlain: r.NewStyle(),
			StyleOK:    r.NewStyle().Foreground(lipgloss.Color("2")),
			StyleError: r.NewStyle().Foreground(lipgloss.Color("1")),
			StyleWarn:  r.NewStyle().Foreground(lipgloss.Color("3")),
			StyleInfo:  r.NewStyle().Foreground(lipgloss.Color("6")),
			StyleDebug: r.NewStyle().Foreground(lipgloss.Color("5")),
		},
		verbose: opts.Verbose,
		debug:   opts.Debug,
		now:     now,
		logger:  logger.Named("console"),
	}
}

// Emit writes msg in style. When mirror is set the plain text is also
// logged at info level.
func (p *Printer) Emit(style Style, mirror bool, msg string) {
	line := p.now().Format(TimestampLayout) + " " + p.styles[style].Render(msg)

	p.mu.Lock()
	fmt.Fprintln(p.out, line)
	p.mu.Unlock()

	if mirror {
		p.logger.Info(msg)
	}
}

func (p *Printer) Print(args ...any) { p.Emit(StylePlain, false, join(args)) }
func (p *Printer) OK(args ...any)    { p.Emit(StyleOK, false, join(args)) }
func (p *Printer) Warn(args ...any)  { p.Emit(StyleWarn, false, join(args)) }
func (p *Printer) Info(args ...any)  { p.Emit(StyleInfo, false, join(args)) }

// Error prints in red and always mirrors into the log.
func (p *Printer) Error(args ...any) { p.Emit(StyleError, true, join(args)) }

// Verbose prints only when verbose output was requested.
func (p *Printer) Verbose(args ...any) {
	if p.verbose {
		p.Emit(StylePlain, false, join(args))
	}
}

// Debug prints only in debug mode.
func (p *Printer) Debug(args ...any) {
	if p.debug {
		p.Emit(StyleDebug, false, join(args))
	}
}

func join(args []any) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = fmt.Sprint(a)
	}
	return strings.Join(parts, " ")
}
