package utils

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"
)

// Style is a specific style
type Style int

// Styles
const (
	StyleDoubleLine = iota
	StyleSingleLine
	StyleDashedLine
	StyleNoLine
)

// NewPen creates a new pen. A color of 0 draws without escape sequences.
func NewPen(style Style, color int) *Pen {
	bgcolor := 49
	if os.Getenv("CLICOLOR") == "0" {
		color = 0
		bgcolor = 0
	}
	return &Pen{
		style:   style,
		color:   color,
		bgcolor: bgcolor,
	}
}

type styleDef struct {
	cornerTL string
	cornerTR string
	cornerBL string
	cornerBR string
	lineH    string
	lineV    string
	bar      string
}

var styleDefs = []styleDef{
	{"╔", "╗", "╚", "╝", "═", "║", "█"},
	{"╭", "╮", "╰", "╯", "─", "│", "█"},
	{"┌", "┐", "└", "┘", "╌", "╎", "▒"},
	{" ", " ", " ", " ", " ", " ", "#"},
}

// Pen struct
type Pen struct {
	style   Style
	color   int
	bgcolor int
}

// Drawing struct
type Drawing struct {
	buf   *strings.Builder
	width int
}

// Bar is one row of a bar chart
type Bar struct {
	Label  string
	Value  float64
	Text   string // printed after the bar, defaults to the value
	Marked bool   // drawn with the dashed style
}

func (p *Pen) paint(buf io.Writer, color int, s string) {
	if p.color == 0 {
		fmt.Fprint(buf, s)
		return
	}
	fmt.Fprintf(buf, "\x1b[%d;%dm%s\x1b[%dm", color, p.bgcolor, s, 0)
}

func (p *Pen) drawTopBars(buf io.Writer, labels ...string) {
	style := styleDefs[p.style]
	for _, label := range labels {
		bar := strings.Repeat(style.lineH, len(label)+2)
		fmt.Fprintf(buf, " ")
		p.paint(buf, p.color, style.cornerTL+bar+style.cornerTR)
	}
	fmt.Fprintf(buf, "\n")
}

func (p *Pen) drawBottomBars(buf io.Writer, labels ...string) {
	style := styleDefs[p.style]
	for _, label := range labels {
		bar := strings.Repeat(style.lineH, len(label)+2)
		fmt.Fprintf(buf, " ")
		p.paint(buf, p.color, style.cornerBL+bar+style.cornerBR)
	}
	fmt.Fprintf(buf, "\n")
}

func (p *Pen) drawLabels(buf io.Writer, labels ...string) {
	style := styleDefs[p.style]
	for _, label := range labels {
		fmt.Fprintf(buf, " ")
		p.paint(buf, p.color, fmt.Sprintf("%s %s %s", style.lineV, label, style.lineV))
	}
	fmt.Fprintf(buf, "\n")
}

// DrawArrow between rounds
func (p *Pen) DrawArrow() *Drawing {
	drawing := &Drawing{
		buf:   new(strings.Builder),
		width: 1,
	}
	p.paint(drawing.buf, p.color, "⬇")
	fmt.Fprintf(drawing.buf, "\n")
	return drawing
}

// DrawBoxes to draw boxes
func (p *Pen) DrawBoxes(labels ...string) *Drawing {
	width := 0
	for _, l := range labels {
		width += len(l) + 2 + 2 + 1
	}
	drawing := &Drawing{
		buf:   new(strings.Builder),
		width: width,
	}
	p.drawTopBars(drawing.buf, labels...)
	p.drawLabels(drawing.buf, labels...)
	p.drawBottomBars(drawing.buf, labels...)

	return drawing
}

// DrawBars draws one horizontal bar per entry, scaled so the largest value fills width
func (p *Pen) DrawBars(width int, bars ...Bar) *Drawing {
	labelWidth := 0
	textWidth := 0
	largest := 0.0
	for _, b := range bars {
		labelWidth = max(labelWidth, len(b.Label))
		textWidth = max(textWidth, len(barText(b)))
		largest = math.Max(largest, b.Value)
	}
	room := width - labelWidth - textWidth - 3
	if room < 1 {
		room = 1
	}

	drawing := &Drawing{
		buf:   new(strings.Builder),
		width: labelWidth + room + textWidth + 3,
	}
	for _, b := range bars {
		length := 0
		if largest > 0 && b.Value > 0 {
			length = int(math.Round(b.Value / largest * float64(room)))
		}
		glyph := styleDefs[p.style].bar
		if b.Marked {
			glyph = styleDefs[StyleDashedLine].bar
		}
		fmt.Fprintf(drawing.buf, "%-*s ", labelWidth, b.Label)
		p.paint(drawing.buf, p.color, strings.Repeat(glyph, length))
		fmt.Fprintf(drawing.buf, "%s %s\n", strings.Repeat(" ", room-length), barText(b))
	}
	return drawing
}

func barText(b Bar) string {
	if b.Text != "" {
		return b.Text
	}
	return fmt.Sprint(b.Value)
}

// Draw to writer
func (d *Drawing) Draw(writer io.Writer, centerOnWidth int) {
	padSize := (centerOnWidth - d.GetWidth()) / 2
	if padSize < 0 {
		padSize = 0
	}
	for _, l := range strings.Split(d.buf.String(), "\n") {
		if len(l) > 0 {
			padding := strings.Repeat(" ", padSize)
			fmt.Fprintf(writer, "%s%s\n", padding, strings.TrimRight(l, " "))
		}
	}
}

// GetWidth of drawing
func (d *Drawing) GetWidth() int {
	return d.width
}
