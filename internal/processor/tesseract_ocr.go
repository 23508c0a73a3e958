/**
 * Tesseract OCR - libtesseract backend
 *
 * Binds libtesseract in-process through gosseract. One client is created
 * per call so concurrent calls never share TessBaseAPI state.
 */

package processor

import (
	"context"
	"fmt"
	"image"
	"os"
	"strconv"
	"strings"

	"github.com/otiai10/gosseract/v2"

	ocrerrors "github.com/adverant/nexus/ocr-engine/internal/errors"
)

// wordLevel is the TSV level tesseract assigns to word rows.
const wordLevel = 5

// TesseractConfig holds Tesseract configuration shared by both backends
type TesseractConfig struct {
	TesseractPath  string
	Language       string
	TessdataPrefix string
}

func (c *TesseractConfig) withDefaults() *TesseractConfig {
	out := TesseractConfig{}
	if c != nil {
		out = *c
	}
	if out.TesseractPath == "" {
		out.TesseractPath = "/usr/bin/tesseract"
	}
	return &out
}

// TesseractLibrary handles OCR using libtesseract via gosseract
type TesseractLibrary struct {
	language       string
	tessdataPrefix string
}

// NewTesseractLibrary creates a new libtesseract-backed engine
func NewTesseractLibrary(cfg *TesseractConfig) *TesseractLibrary {
	cfg = cfg.withDefaults()
	return &TesseractLibrary{
		language:       cfg.Language,
		tessdataPrefix: cfg.TessdataPrefix,
	}
}

func (t *TesseractLibrary) Name() string { return "tesseract-lib" }

// Version reports the linked libtesseract version.
func (t *TesseractLibrary) Version() string { return gosseract.Version() }

// ImageToString performs OCR and returns the recognized text
func (t *TesseractLibrary) ImageToString(ctx context.Context, img image.Image, params *Params) (string, error) {
	client, err := t.newClient(ctx, img, params)
	if err != nil {
		return "", err
	}
	defer client.Close()

	text, err := client.Text()
	if err != nil {
		return "", ocrerrors.NewEngineFailedError(t.Name(), fmt.Errorf("recognize text: %w", err))
	}
	return text, nil
}

// ImageToData returns one word-level row per recognized word. Block,
// paragraph, line and word numbers come from the verbose iterator; all
// words are on page 1.
func (t *TesseractLibrary) ImageToData(ctx context.Context, img image.Image, params *Params) (*OCRData, error) {
	client, err := t.newClient(ctx, img, params)
	if err != nil {
		return nil, err
	}
	defer client.Close()

	boxes, err := client.GetBoundingBoxesVerbose()
	if err != nil {
		return nil, ocrerrors.NewEngineFailedError(t.Name(), fmt.Errorf("bounding boxes: %w", err))
	}

	data := &OCRData{}
	for _, b := range boxes {
		data.appendRow(Token{
			Level:    wordLevel,
			PageNum:  1,
			BlockNum: b.BlockNum,
			ParNum:   b.ParNum,
			LineNum:  b.LineNum,
			WordNum:  b.WordNum,
			Left:     b.Box.Min.X,
			Top:      b.Box.Min.Y,
			Width:    b.Box.Dx(),
			Height:   b.Box.Dy(),
			Text:     b.Word,
		}, strconv.FormatFloat(b.Confidence, 'f', -1, 64))
	}
	return data, nil
}

// libClient is a configured gosseract client together with the init-time
// config file it reads. Close releases both.
type libClient struct {
	*gosseract.Client
	configPath string
}

func (c *libClient) Close() error {
	err := c.Client.Close()
	if c.configPath != "" {
		os.Remove(c.configPath)
	}
	return err
}

// newClient builds a configured gosseract client holding img. The caller
// must Close it.
func (t *TesseractLibrary) newClient(ctx context.Context, img image.Image, params *Params) (*libClient, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := encodePNG(img)
	if err != nil {
		return nil, err
	}

	client := &libClient{Client: gosseract.NewClient()}
	ok := false
	defer func() {
		if !ok {
			client.Close()
		}
	}()

	if t.language != "" {
		if err := client.SetLanguage(strings.Split(t.language, "+")...); err != nil {
			return nil, ocrerrors.NewInvalidConfigError("language", err)
		}
	}
	if t.tessdataPrefix != "" {
		if err := client.SetTessdataPrefix(t.tessdataPrefix); err != nil {
			return nil, ocrerrors.NewInvalidConfigError("tessdata prefix", err)
		}
	}
	if params != nil {
		initConfig, err := applyParams(client.Client, params)
		if err != nil {
			return nil, err
		}
		if initConfig != "" {
			if client.configPath, err = writeInitConfig(initConfig); err != nil {
				return nil, ocrerrors.NewEngineFailedError(t.Name(), err)
			}
			if err := client.SetConfigFile(client.configPath); err != nil {
				return nil, ocrerrors.NewInvalidConfigError("config file", err)
			}
		}
	}
	if err := client.SetImageFromBytes(data); err != nil {
		return nil, ocrerrors.NewEngineFailedError(t.Name(), fmt.Errorf("failed to set image: %w", err))
	}

	ok = true
	return client, nil
}

// writeInitConfig stores content as a tesseract config file and returns its path.
func writeInitConfig(content string) (string, error) {
	f, err := os.CreateTemp("", "ocr-engine-*.config")
	if err != nil {
		return "", fmt.Errorf("create init config: %w", err)
	}
	if _, err := f.WriteString(content); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("write init config: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("write init config: %w", err)
	}
	return f.Name(), nil
}

// initOnlySwitches are read by TessBaseAPI::Init only. SetVariable reports
// success for them but leaves the value untouched, so they go into the
// config file handed to Init.
var initOnlySwitches = map[string]string{
	ParamOEM: "tessedit_ocr_engine_mode",
}

// switchVariables maps command-line switches onto runtime variables.
var switchVariables = map[string]gosseract.SettableVariable{
	"--dpi": "user_defined_dpi",
}

// applyParams configures client from params and returns the config file
// content for init-only parameters ("" when there are none).
func applyParams(client *gosseract.Client, params *Params) (string, error) {
	var initConfig strings.Builder
	for _, key := range params.Keys() {
		value, _ := params.Get(key)
		switch {
		case key == ParamPSM:
			mode, err := intParam(key, value, 0, 13)
			if err != nil {
				return "", err
			}
			if err := client.SetPageSegMode(gosseract.PageSegMode(mode)); err != nil {
				return "", ocrerrors.NewInvalidConfigError(key, err)
			}
		case key == ParamOEM:
			mode, err := intParam(key, value, 0, 3)
			if err != nil {
				return "", err
			}
			fmt.Fprintf(&initConfig, "%s %d\n", initOnlySwitches[key], mode)
		case strings.HasPrefix(key, "--"):
			variable, ok := switchVariables[key]
			if !ok {
				return "", ocrerrors.NewInvalidConfigError(key, fmt.Errorf("switch not supported by libtesseract backend"))
			}
			if err := client.SetVariable(variable, value); err != nil {
				return "", ocrerrors.NewInvalidConfigError(key, err)
			}
		default:
			if err := client.SetVariable(gosseract.SettableVariable(key), value); err != nil {
				return "", ocrerrors.NewInvalidConfigError(key, err)
			}
		}
	}
	return initConfig.String(), nil
}

func intParam(key, value string, lo, hi int) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, ocrerrors.NewInvalidConfigError(key, err)
	}
	if v < lo || v > hi {
		return 0, ocrerrors.NewInvalidConfigError(key, fmt.Errorf("%d outside %d..%d", v, lo, hi))
	}
	return v, nil
}
