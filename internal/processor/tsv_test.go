package processor

import (
	"errors"
	"strings"
	"testing"

	ocrerrors "github.com/adverant/nexus/ocr-engine/internal/errors"
)

const sampleTSV = "level\tpage_num\tblock_num\tpar_num\tline_num\tword_num\tleft\ttop\twidth\theight\tconf\ttext\n" +
	"1\t1\t0\t0\t0\t0\t0\t0\t640\t480\t-1\t\n" +
	"2\t1\t1\t0\t0\t0\t36\t92\t582\t68\t-1\t\n" +
	"3\t1\t1\t1\t0\t0\t36\t92\t582\t68\t-1\t\n" +
	"4\t1\t1\t1\t1\t0\t36\t92\t582\t68\t-1\t\n" +
	"5\t1\t1\t1\t1\t1\t36\t92\t96\t68\t95.812\t23.4\n" +
	"5\t1\t1\t1\t1\t2\t150\t92\t40\t68\t88\tC\n"

func TestParseTSV(t *testing.T) {
	data, err := parseTSV(strings.NewReader(sampleTSV))
	if err != nil {
		t.Fatalf("parseTSV() error = %v", err)
	}
	if err := data.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if data.Len() != 6 {
		t.Fatalf("Len() = %d, want 6", data.Len())
	}

	if data.Level[4] != 5 || data.WordNum[4] != 1 || data.Left[4] != 36 || data.Width[4] != 96 {
		t.Fatalf("row 4 geometry wrong: %+v", data)
	}
	if data.Conf[4] != "95.812" || data.Text[4] != "23.4" {
		t.Fatalf("row 4 = conf %q text %q", data.Conf[4], data.Text[4])
	}
	if data.Conf[0] != "-1" || data.Text[0] != "" {
		t.Fatalf("row 0 = conf %q text %q", data.Conf[0], data.Text[0])
	}
}

func TestParseTSVToleratesCRLFAndMissingTextColumn(t *testing.T) {
	in := "level\tpage_num\tblock_num\tpar_num\tline_num\tword_num\tleft\ttop\twidth\theight\tconf\ttext\r\n" +
		"1\t1\t0\t0\t0\t0\t0\t0\t10\t10\t-1\r\n" +
		"\r\n" +
		"5\t1\t1\t1\t1\t1\t1\t1\t5\t5\t70\tok\r\n"

	data, err := parseTSV(strings.NewReader(in))
	if err != nil {
		t.Fatalf("parseTSV() error = %v", err)
	}
	if data.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", data.Len())
	}
	if data.Text[0] != "" || data.Text[1] != "ok" {
		t.Fatalf("texts = %q", data.Text)
	}
}

func TestParseTSVEmpty(t *testing.T) {
	data, err := parseTSV(strings.NewReader(""))
	if err != nil || data.Len() != 0 {
		t.Fatalf("parseTSV(\"\") = %v, %v", data, err)
	}
}

func TestParseTSVErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{name: "missing column", in: "level\tpage_num\tconf\ttext\n1\t1\t-1\t\n"},
		{name: "non-numeric geometry", in: strings.SplitN(sampleTSV, "\n", 2)[0] + "\n5\t1\t1\t1\t1\t1\tx\t92\t96\t68\t95\tA\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseTSV(strings.NewReader(tt.in))
			var ocrErr *ocrerrors.OCRError
			if !errors.As(err, &ocrErr) || ocrErr.Code != ocrerrors.ErrorInvalidOutput {
				t.Fatalf("parseTSV() error = %v, want INVALID_ENGINE_OUTPUT", err)
			}
		})
	}
}
