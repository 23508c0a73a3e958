package processor

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io/fs"
	"os/exec"
	"strings"

	ocrerrors "github.com/adverant/nexus/ocr-engine/internal/errors"
)

// TesseractCLI drives the tesseract executable, piping the image as PNG on
// stdin and reading results from stdout.
type TesseractCLI struct {
	path           string
	language       string
	tessdataPrefix string
}

// NewTesseractCLI creates a CLI-backed engine.
func NewTesseractCLI(cfg *TesseractConfig) *TesseractCLI {
	cfg = cfg.withDefaults()
	return &TesseractCLI{
		path:           cfg.TesseractPath,
		language:       cfg.Language,
		tessdataPrefix: cfg.TessdataPrefix,
	}
}

func (t *TesseractCLI) Name() string { return "tesseract-cli" }

// Path returns the executable being invoked.
func (t *TesseractCLI) Path() string { return t.path }

// ImageToString returns tesseract's plain text output.
func (t *TesseractCLI) ImageToString(ctx context.Context, img image.Image, params *Params) (string, error) {
	out, err := t.run(ctx, img, params)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// ImageToData runs tesseract with the tsv config and parses the result.
func (t *TesseractCLI) ImageToData(ctx context.Context, img image.Image, params *Params) (*OCRData, error) {
	out, err := t.run(ctx, img, params, "tsv")
	if err != nil {
		return nil, err
	}
	return parseTSV(bytes.NewReader(out))
}

// Version returns the first line of `tesseract --version`.
func (t *TesseractCLI) Version(ctx context.Context) (string, error) {
	cmd := exec.CommandContext(ctx, t.path, "--version")
	out, err := cmd.CombinedOutput()
	if err != nil {
		return "", t.classify(err, out)
	}
	sc := bufio.NewScanner(bytes.NewReader(out))
	if sc.Scan() {
		return strings.TrimSpace(sc.Text()), nil
	}
	return "", ocrerrors.NewInvalidOutputError("empty version output", nil)
}

// Available reports whether the executable can be run.
func (t *TesseractCLI) Available(ctx context.Context) bool {
	_, err := t.Version(ctx)
	return err == nil
}

// args builds: stdin stdout [-l lang] [--tessdata-dir dir] <params> <configs>
func (t *TesseractCLI) args(params *Params, configs ...string) []string {
	args := []string{"stdin", "stdout"}
	if t.language != "" {
		args = append(args, "-l", t.language)
	}
	if t.tessdataPrefix != "" {
		args = append(args, "--tessdata-dir", t.tessdataPrefix)
	}
	if params != nil {
		args = append(args, params.Args()...)
	}
	return append(args, configs...)
}

func (t *TesseractCLI) run(ctx context.Context, img image.Image, params *Params, configs ...string) ([]byte, error) {
	data, err := encodePNG(img)
	if err != nil {
		return nil, err
	}

	cmd := exec.CommandContext(ctx, t.path, t.args(params, configs...)...)
	cmd.Stdin = bytes.NewReader(data)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, t.classify(err, stderr.Bytes())
	}
	return stdout.Bytes(), nil
}

func (t *TesseractCLI) classify(err error, stderr []byte) error {
	if errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist) {
		return ocrerrors.NewEngineNotFoundError(t.path, err)
	}
	if msg := strings.TrimSpace(string(stderr)); msg != "" {
		err = fmt.Errorf("%w (stderr: %s)", err, msg)
	}
	return ocrerrors.NewEngineFailedError(t.Name(), err)
}
