/**
 * OCR Types - Shared data structures for OCR operations
 *
 * Common types produced by both Tesseract backends (CLI and libtesseract)
 * and reshaped by OCREngine.
 */

package processor

import (
	"fmt"
	"time"
)

// OCRData is the engine's structured output: one position per detected
// element, columns aligned by index. Conf and Text are kept raw so callers
// decide how to parse them.
type OCRData struct {
	Level    []int
	PageNum  []int
	BlockNum []int
	ParNum   []int
	LineNum  []int
	WordNum  []int
	Left     []int
	Top      []int
	Width    []int
	Height   []int
	Conf     []string
	Text     []string
}

// Len returns the number of rows.
func (d *OCRData) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Text)
}

// Validate checks that every column has the same length.
func (d *OCRData) Validate() error {
	n := len(d.Text)
	cols := map[string]int{
		"level":     len(d.Level),
		"page_num":  len(d.PageNum),
		"block_num": len(d.BlockNum),
		"par_num":   len(d.ParNum),
		"line_num":  len(d.LineNum),
		"word_num":  len(d.WordNum),
		"left":      len(d.Left),
		"top":       len(d.Top),
		"width":     len(d.Width),
		"height":    len(d.Height),
		"conf":      len(d.Conf),
	}
	for name, l := range cols {
		if l != n {
			return fmt.Errorf("column %s has %d rows, text has %d", name, l, n)
		}
	}
	return nil
}

// appendRow adds one aligned row.
func (d *OCRData) appendRow(t Token, conf string) {
	d.Level = append(d.Level, t.Level)
	d.PageNum = append(d.PageNum, t.PageNum)
	d.BlockNum = append(d.BlockNum, t.BlockNum)
	d.ParNum = append(d.ParNum, t.ParNum)
	d.LineNum = append(d.LineNum, t.LineNum)
	d.WordNum = append(d.WordNum, t.WordNum)
	d.Left = append(d.Left, t.Left)
	d.Top = append(d.Top, t.Top)
	d.Width = append(d.Width, t.Width)
	d.Height = append(d.Height, t.Height)
	d.Conf = append(d.Conf, conf)
	d.Text = append(d.Text, t.Text)
}

// Token is a single recognized word with its position in the page hierarchy
type Token struct {
	Level      int     `json:"level"`
	PageNum    int     `json:"page_num"`
	BlockNum   int     `json:"block_num"`
	ParNum     int     `json:"par_num"`
	LineNum    int     `json:"line_num"`
	WordNum    int     `json:"word_num"`
	Left       int     `json:"left"`
	Top        int     `json:"top"`
	Width      int     `json:"width"`
	Height     int     `json:"height"`
	Confidence float64 `json:"conf"`
	Text       string  `json:"text"`
}

// BoundingBox returns the token's pixel rectangle.
func (t Token) BoundingBox() BoundingBox {
	return BoundingBox{X: t.Left, Y: t.Top, Width: t.Width, Height: t.Height}
}

// BoundingBox represents coordinates of a region
type BoundingBox struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// OCRResult is the combined outcome of one command-line run
type OCRResult struct {
	Text       string        `json:"text,omitempty"`
	Confidence float64       `json:"confidence"`
	Tokens     []Token       `json:"tokens,omitempty"`
	Engine     string        `json:"engine"`
	Params     string        `json:"params"`
	Duration   time.Duration `json:"duration_ns"`
}
