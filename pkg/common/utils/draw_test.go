package utils

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDrawBars(t *testing.T) {
	pen := NewPen(StyleNoLine, 0)
	drawing := pen.DrawBars(20,
		Bar{Label: "Alice", Value: 4, Text: "4"},
		Bar{Label: "Bob", Value: 2, Text: "2"},
		Bar{Label: "Carol", Value: 1, Text: "1/2", Marked: true},
	)

	buf := &bytes.Buffer{}
	drawing.Draw(buf, 0)

	// room = 20 - 5 - 3 - 3
	assert.Equal(t, 20, drawing.GetWidth())
	assert.Equal(t, ""+
		"Alice ######### 4\n"+
		"Bob   #####     2\n"+
		"Carol ▒▒        1/2\n", buf.String())
}

func TestDrawBarsEmpty(t *testing.T) {
	buf := &bytes.Buffer{}
	NewPen(StyleNoLine, 0).DrawBars(10, Bar{Label: "a", Value: 0}).Draw(buf, 0)
	assert.Equal(t, "a       0\n", buf.String())
}

func TestDrawBoxes(t *testing.T) {
	buf := &bytes.Buffer{}
	drawing := NewPen(StyleSingleLine, 0).DrawBoxes("Bob")
	drawing.Draw(buf, 17)

	assert.Equal(t, 8, drawing.GetWidth())
	assert.Equal(t, ""+
		"     ╭─────╮\n"+
		"     │ Bob │\n"+
		"     ╰─────╯\n", buf.String())
}
