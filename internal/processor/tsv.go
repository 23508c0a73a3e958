package processor

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	ocrerrors "github.com/adverant/nexus/ocr-engine/internal/errors"
)

// tsvColumns is the header tesseract writes for the "tsv" config.
var tsvColumns = []string{
	"level", "page_num", "block_num", "par_num", "line_num", "word_num",
	"left", "top", "width", "height", "conf", "text",
}

// parseTSV reads tesseract TSV output into columnar OCRData. Columns are
// located by header name; the text column is last and may contain tabs.
func parseTSV(r io.Reader) (*OCRData, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	data := &OCRData{}
	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return nil, ocrerrors.NewInvalidOutputError("read tsv", err)
		}
		return data, nil
	}

	header := strings.Split(strings.TrimRight(sc.Text(), "\r"), "\t")
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(name)] = i
	}
	for _, col := range tsvColumns {
		if _, ok := index[col]; !ok {
			return nil, ocrerrors.NewInvalidOutputError("tsv header", fmt.Errorf("missing column %q", col))
		}
	}

	line := 1
	for sc.Scan() {
		line++
		raw := strings.TrimRight(sc.Text(), "\r")
		if raw == "" {
			continue
		}
		fields := strings.SplitN(raw, "\t", len(header))
		// Rows without recognized text may omit the trailing text column.
		for len(fields) < len(header) {
			fields = append(fields, "")
		}

		var t Token
		ints := []struct {
			col string
			dst *int
		}{
			{"level", &t.Level},
			{"page_num", &t.PageNum},
			{"block_num", &t.BlockNum},
			{"par_num", &t.ParNum},
			{"line_num", &t.LineNum},
			{"word_num", &t.WordNum},
			{"left", &t.Left},
			{"top", &t.Top},
			{"width", &t.Width},
			{"height", &t.Height},
		}
		for _, c := range ints {
			v, err := strconv.Atoi(strings.TrimSpace(fields[index[c.col]]))
			if err != nil {
				return nil, ocrerrors.NewInvalidOutputError(fmt.Sprintf("tsv line %d column %s", line, c.col), err)
			}
			*c.dst = v
		}
		t.Text = fields[index["text"]]
		data.appendRow(t, strings.TrimSpace(fields[index["conf"]]))
	}
	if err := sc.Err(); err != nil {
		return nil, ocrerrors.NewInvalidOutputError("read tsv", err)
	}
	return data, nil
}
