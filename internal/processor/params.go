package processor

import (
	"fmt"
	"strings"
)

// Well-known Tesseract parameter keys.
const (
	ParamOEM       = "--oem"
	ParamPSM       = "--psm"
	ParamWhitelist = "tessedit_char_whitelist"

	// DefaultPSM is fully automatic page segmentation without OSD.
	DefaultPSM = "3"
	// DefaultOEM selects the LSTM engine.
	DefaultOEM = "1"
	// DefaultWhitelist is digits, the separators used in meter readings and ASCII letters.
	DefaultWhitelist = "0123456789./-ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"
)

// Params is an ordered mapping of Tesseract parameters. Keys beginning with
// "--" are command-line switches; every other key is a config variable
// passed as "-c key=value". Setting an existing key replaces its value in place.
type Params struct {
	keys   []string
	values map[string]string
}

// NewParams builds Params from alternating key, value arguments.
// A trailing key without a value is ignored.
func NewParams(keysAndValues ...string) *Params {
	p := &Params{values: make(map[string]string)}
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		p.Set(keysAndValues[i], keysAndValues[i+1])
	}
	return p
}

// DefaultParams returns the configuration used when none is supplied.
func DefaultParams() *Params {
	return NewParams(
		ParamOEM, DefaultOEM,
		ParamPSM, DefaultPSM,
		ParamWhitelist, DefaultWhitelist,
	)
}

// ParseParams parses a serialized parameter string such as
// "--oem 1 --psm 6 -c tessedit_char_whitelist=0123456789". A -c value runs
// until the next token starting with "-", so it may contain spaces; runs of
// whitespace inside it collapse to one space and a word of the value cannot
// start with "-".
func ParseParams(s string) (*Params, error) {
	p := NewParams()
	fields := strings.Fields(s)
	for i := 0; i < len(fields); i++ {
		tok := fields[i]
		switch {
		case tok == "-c":
			if i+1 >= len(fields) {
				return nil, fmt.Errorf("-c without key=value at end of %q", s)
			}
			i++
			key, value, ok := strings.Cut(fields[i], "=")
			if !ok || key == "" {
				return nil, fmt.Errorf("malformed config variable %q", fields[i])
			}
			// Words up to the next flag belong to the value.
			for i+1 < len(fields) && !strings.HasPrefix(fields[i+1], "-") {
				i++
				value += " " + fields[i]
			}
			p.Set(key, value)
		case strings.HasPrefix(tok, "--"):
			if i+1 >= len(fields) || strings.HasPrefix(fields[i+1], "-") {
				return nil, fmt.Errorf("switch %s has no value", tok)
			}
			i++
			p.Set(tok, fields[i])
		default:
			return nil, fmt.Errorf("unexpected token %q", tok)
		}
	}
	return p, nil
}

// Set stores value under key.
func (p *Params) Set(key, value string) {
	if p.values == nil {
		p.values = make(map[string]string)
	}
	if _, ok := p.values[key]; !ok {
		p.keys = append(p.keys, key)
	}
	p.values[key] = value
}

// Get returns the value stored under key.
func (p *Params) Get(key string) (string, bool) {
	v, ok := p.values[key]
	return v, ok
}

// Delete removes key.
func (p *Params) Delete(key string) {
	if _, ok := p.values[key]; !ok {
		return
	}
	delete(p.values, key)
	for i, k := range p.keys {
		if k == key {
			p.keys = append(p.keys[:i], p.keys[i+1:]...)
			break
		}
	}
}

// Len returns the number of parameters.
func (p *Params) Len() int { return len(p.keys) }

// Keys returns the parameter keys in insertion order.
func (p *Params) Keys() []string {
	return append([]string(nil), p.keys...)
}

// Clone returns an independent copy.
func (p *Params) Clone() *Params {
	c := &Params{
		keys:   append([]string(nil), p.keys...),
		values: make(map[string]string, len(p.values)),
	}
	for k, v := range p.values {
		c.values[k] = v
	}
	return c
}

// PSM returns the page segmentation mode, or DefaultPSM when unset.
func (p *Params) PSM() string {
	if v, ok := p.values[ParamPSM]; ok {
		return v
	}
	return DefaultPSM
}

// SetPSM sets the page segmentation mode. The value is not validated.
func (p *Params) SetPSM(mode string) { p.Set(ParamPSM, mode) }

// OEM returns the engine mode and whether it is set.
func (p *Params) OEM() (string, bool) { return p.Get(ParamOEM) }

// SetOEM sets the engine mode.
func (p *Params) SetOEM(mode string) { p.Set(ParamOEM, mode) }

// Whitelist returns the character whitelist and whether it is set.
func (p *Params) Whitelist() (string, bool) { return p.Get(ParamWhitelist) }

// SetWhitelist restricts recognition to chars.
func (p *Params) SetWhitelist(chars string) { p.Set(ParamWhitelist, chars) }

// Args renders the parameters as command-line arguments.
func (p *Params) Args() []string {
	args := make([]string, 0, 2*len(p.keys))
	for _, k := range p.keys {
		v := p.values[k]
		if strings.HasPrefix(k, "--") {
			args = append(args, k, v)
		} else {
			args = append(args, "-c", k+"="+v)
		}
	}
	return args
}

// String renders the parameters the way the tesseract command line expects them.
func (p *Params) String() string {
	var b strings.Builder
	for _, k := range p.keys {
		v := p.values[k]
		if strings.HasPrefix(k, "--") {
			fmt.Fprintf(&b, "%s %s ", k, v)
		} else {
			fmt.Fprintf(&b, "-c %s=%s ", k, v)
		}
	}
	return strings.TrimSpace(b.String())
}
