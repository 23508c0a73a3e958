/**
 * OCR Engine - configuration and invocation wrapper around Tesseract
 *
 * Holds the Tesseract parameter set, hands it to a backend together with
 * the caller's image and reshapes the output into text, a mean confidence
 * score or word-level tokens.
 */

package processor

import (
	"context"
	stderrors "errors"
	"fmt"
	"image"
	"math"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	ocrerrors "github.com/adverant/nexus/ocr-engine/internal/errors"
	"github.com/adverant/nexus/ocr-engine/internal/logging"
)

// Engine is the OCR backend the wrapper drives.
type Engine interface {
	// Name identifies the backend in logs and errors.
	Name() string
	// ImageToString recognizes img and returns the raw text.
	ImageToString(ctx context.Context, img image.Image, params *Params) (string, error)
	// ImageToData recognizes img and returns per-element structured output.
	ImageToData(ctx context.Context, img image.Image, params *Params) (*OCRData, error)
}

// FailurePolicy decides what the wrapper does with engine failures.
type FailurePolicy int

const (
	// FailSafe logs the failure and returns an empty result with a nil error.
	FailSafe FailurePolicy = iota
	// FailPropagate returns the failure as an *errors.OCRError.
	FailPropagate
)

// ParseFailurePolicy maps "safe" or "propagate" onto a FailurePolicy.
func ParseFailurePolicy(s string) (FailurePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "safe":
		return FailSafe, nil
	case "propagate":
		return FailPropagate, nil
	}
	return FailSafe, fmt.Errorf("unknown failure policy %q", s)
}

func (p FailurePolicy) String() string {
	if p == FailPropagate {
		return "propagate"
	}
	return "safe"
}

// Option configures an OCREngine.
type Option func(*OCREngine)

// WithParams replaces the default parameter set. The params are copied.
func WithParams(p *Params) Option {
	return func(e *OCREngine) {
		if p != nil {
			e.params = p.Clone()
		}
	}
}

// WithDeviceType records the device type hint. It has no effect on recognition.
func WithDeviceType(deviceType string) Option {
	return func(e *OCREngine) { e.deviceType = deviceType }
}

// WithFailurePolicy selects how engine failures are reported.
func WithFailurePolicy(policy FailurePolicy) Option {
	return func(e *OCREngine) { e.policy = policy }
}

// WithTimeout bounds every engine call. Zero means no bound.
func WithTimeout(d time.Duration) Option {
	return func(e *OCREngine) { e.timeout = d }
}

// WithLogger sets the logger failures are reported to.
func WithLogger(l *logging.Logger) Option {
	return func(e *OCREngine) {
		if l != nil {
			e.logger = l
		}
	}
}

// OCREngine wraps an Engine with a mutable parameter set.
type OCREngine struct {
	mu         sync.RWMutex
	params     *Params
	engine     Engine
	policy     FailurePolicy
	timeout    time.Duration
	deviceType string
	logger     *logging.Logger
}

// NewOCREngine creates a wrapper around engine using DefaultParams unless
// WithParams is given.
func NewOCREngine(engine Engine, opts ...Option) *OCREngine {
	e := &OCREngine{
		params: DefaultParams(),
		engine: engine,
		policy: FailSafe,
		logger: logging.NewLogger("ocr"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// SetPSM overwrites the page segmentation mode. Invalid modes surface as
// engine failures on the next call.
func (e *OCREngine) SetPSM(mode string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.params.SetPSM(mode)
}

// PSM returns the current page segmentation mode.
func (e *OCREngine) PSM() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.params.PSM()
}

// Params returns a copy of the current parameter set.
func (e *OCREngine) Params() *Params {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.params.Clone()
}

// DeviceType returns the hint given at construction.
func (e *OCREngine) DeviceType() string { return e.deviceType }

// Policy returns the failure policy in effect.
func (e *OCREngine) Policy() FailurePolicy { return e.policy }

// ExtractText recognizes img and returns its text trimmed of surrounding whitespace.
func (e *OCREngine) ExtractText(ctx context.Context, img image.Image) (string, error) {
	const op = "extract_text"
	requestID := uuid.NewString()
	params := e.Params()

	ctx, cancel := e.withTimeout(ctx)
	defer cancel()

	text, err := e.engine.ImageToString(ctx, img, params)
	if err != nil {
		return "", e.fail(ctx, op, requestID, params, err)
	}
	e.logger.Debug("text extracted", "op", op, "request_id", requestID, "chars", len(text))
	return strings.TrimSpace(text), nil
}

// Confidence returns the mean confidence of all tokens with non-blank text,
// or 0 when there are none.
func (e *OCREngine) Confidence(ctx context.Context, img image.Image) (float64, error) {
	const op = "get_confidence"
	requestID := uuid.NewString()
	params := e.Params()

	ctx, cancel := e.withTimeout(ctx)
	defer cancel()

	data, err := e.imageToData(ctx, img, params)
	if err != nil {
		return 0, e.fail(ctx, op, requestID, params, err)
	}

	var sum, n int
	for i, text := range data.Text {
		if strings.TrimSpace(text) == "" {
			continue
		}
		conf, err := parseConfInt(data.Conf[i])
		if err != nil {
			return 0, e.fail(ctx, op, requestID, params, ocrerrors.NewInvalidOutputError("conf", err))
		}
		sum += conf
		n++
	}
	if n == 0 {
		return 0, nil
	}
	return float64(sum) / float64(n), nil
}

// ExtractWithConfidence runs ExtractText and Confidence as two separate
// engine calls and returns both results.
func (e *OCREngine) ExtractWithConfidence(ctx context.Context, img image.Image) (string, float64, error) {
	text, err := e.ExtractText(ctx, img)
	if err != nil {
		return "", 0, err
	}
	conf, err := e.Confidence(ctx, img)
	if err != nil {
		return text, 0, err
	}
	return text, conf, nil
}

// ExtractDetailedData returns every token with positive confidence and
// non-blank text, in the order the engine reported them.
func (e *OCREngine) ExtractDetailedData(ctx context.Context, img image.Image) ([]Token, error) {
	const op = "extract_detailed_data"
	requestID := uuid.NewString()
	params := e.Params()

	ctx, cancel := e.withTimeout(ctx)
	defer cancel()

	data, err := e.imageToData(ctx, img, params)
	if err != nil {
		return []Token{}, e.fail(ctx, op, requestID, params, err)
	}

	tokens := make([]Token, 0, data.Len())
	for i := 0; i < data.Len(); i++ {
		conf, err := parseConf(data.Conf[i])
		if err != nil {
			return []Token{}, e.fail(ctx, op, requestID, params, ocrerrors.NewInvalidOutputError("conf", err))
		}
		if conf <= 0 || strings.TrimSpace(data.Text[i]) == "" {
			continue
		}
		tokens = append(tokens, Token{
			Level:      data.Level[i],
			PageNum:    data.PageNum[i],
			BlockNum:   data.BlockNum[i],
			ParNum:     data.ParNum[i],
			LineNum:    data.LineNum[i],
			WordNum:    data.WordNum[i],
			Left:       data.Left[i],
			Top:        data.Top[i],
			Width:      data.Width[i],
			Height:     data.Height[i],
			Confidence: conf,
			Text:       data.Text[i],
		})
	}
	return tokens, nil
}

func (e *OCREngine) imageToData(ctx context.Context, img image.Image, params *Params) (*OCRData, error) {
	data, err := e.engine.ImageToData(ctx, img, params)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return &OCRData{}, nil
	}
	if err := data.Validate(); err != nil {
		return nil, ocrerrors.NewInvalidOutputError("misaligned columns", err)
	}
	return data, nil
}

func (e *OCREngine) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if e.timeout > 0 {
		return context.WithTimeout(ctx, e.timeout)
	}
	return context.WithCancel(ctx)
}

// fail normalizes err into an OCRError, logs it and applies the failure policy.
func (e *OCREngine) fail(ctx context.Context, op, requestID string, params *Params, err error) error {
	var ocrErr *ocrerrors.OCRError
	switch {
	case stderrors.Is(ctx.Err(), context.DeadlineExceeded):
		ocrErr = ocrerrors.NewEngineTimeoutError(e.engine.Name(), err)
	case !stderrors.As(err, &ocrErr):
		ocrErr = ocrerrors.NewEngineFailedError(e.engine.Name(), err)
	}
	ocrErr.WithRequest(op, requestID)

	kv := []interface{}{"engine", e.engine.Name(), "params", fmt.Sprintf("%q", params.String())}
	fields := ocrErr.ToMap()
	delete(fields, "timestamp")
	delete(fields, "engine")
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		kv = append(kv, k, fields[k])
	}
	e.logger.Error("OCR engine call failed", kv...)

	if e.policy == FailSafe {
		return nil
	}
	return ocrErr
}

// parseConf reads a confidence value. NaN and infinities are rejected.
func parseConf(s string) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("confidence %q is not finite", s)
	}
	return f, nil
}

// parseConfInt reads a confidence value as an integer, truncating a
// fractional part the way newer Tesseract TSV output reports it.
func parseConfInt(s string) (int, error) {
	if v, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
		return v, nil
	}
	f, err := parseConf(s)
	if err != nil {
		return 0, err
	}
	return int(f), nil
}
