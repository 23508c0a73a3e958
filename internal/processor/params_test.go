package processor

import (
	"reflect"
	"testing"
)

func TestParamsString(t *testing.T) {
	p := NewParams("--oem", "1", "--psm", "3", "tessedit_char_whitelist", "AB")

	want := "--oem 1 --psm 3 -c tessedit_char_whitelist=AB"
	if got := p.String(); got != want {
		t.Fatalf("String() = %q, want %q", got, want)
	}
}

func TestParamsStringFollowsInsertionOrder(t *testing.T) {
	p := NewParams("tessedit_char_whitelist", "0123", "--psm", "7")
	if got, want := p.String(), "-c tessedit_char_whitelist=0123 --psm 7"; got != want {
		t.Fatalf("String() = %q, want %q", got, want)
	}

	p.Set("tessedit_char_whitelist", "9")
	if got, want := p.String(), "-c tessedit_char_whitelist=9 --psm 7"; got != want {
		t.Fatalf("overwrite moved key: String() = %q, want %q", got, want)
	}
	if p.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", p.Len())
	}
}

func TestParamsEmpty(t *testing.T) {
	if got := NewParams().String(); got != "" {
		t.Fatalf("empty String() = %q", got)
	}
	var zero Params
	zero.SetPSM("6")
	if got := zero.String(); got != "--psm 6" {
		t.Fatalf("zero-value Params String() = %q", got)
	}
}

func TestParamsArgs(t *testing.T) {
	p := NewParams("--oem", "1", "tessedit_char_blacklist", "a b", "--psm", "6")
	want := []string{"--oem", "1", "-c", "tessedit_char_blacklist=a b", "--psm", "6"}
	if got := p.Args(); !reflect.DeepEqual(got, want) {
		t.Fatalf("Args() = %q, want %q", got, want)
	}
}

func TestDefaultParams(t *testing.T) {
	p := DefaultParams()
	if got := p.PSM(); got != "3" {
		t.Fatalf("PSM() = %q, want 3", got)
	}
	if oem, ok := p.OEM(); !ok || oem != "1" {
		t.Fatalf("OEM() = %q, %v", oem, ok)
	}
	if wl, ok := p.Whitelist(); !ok || wl != DefaultWhitelist {
		t.Fatalf("Whitelist() = %q, %v", wl, ok)
	}
	want := "--oem 1 --psm 3 -c tessedit_char_whitelist=" + DefaultWhitelist
	if got := p.String(); got != want {
		t.Fatalf("String() = %q, want %q", got, want)
	}
}

func TestParamsPSMDefaultsWhenUnset(t *testing.T) {
	p := NewParams("--oem", "1")
	if got := p.PSM(); got != DefaultPSM {
		t.Fatalf("PSM() = %q, want %q", got, DefaultPSM)
	}
	p.SetPSM("11")
	if got := p.PSM(); got != "11" {
		t.Fatalf("PSM() = %q, want 11", got)
	}
}

func TestParamsDeleteAndClone(t *testing.T) {
	p := DefaultParams()
	c := p.Clone()

	p.Delete(ParamWhitelist)
	p.Delete("missing")
	if _, ok := p.Whitelist(); ok {
		t.Fatal("whitelist still present after Delete")
	}
	if got, want := p.Keys(), []string{ParamOEM, ParamPSM}; !reflect.DeepEqual(got, want) {
		t.Fatalf("Keys() = %v, want %v", got, want)
	}
	if _, ok := c.Whitelist(); !ok {
		t.Fatal("Delete leaked into clone")
	}

	c.SetPSM("8")
	if p.PSM() != "3" {
		t.Fatal("SetPSM on clone leaked into original")
	}
}

func TestParseParams(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{name: "empty", in: "", want: ""},
		{name: "round trip", in: "--oem 1 --psm 3 -c tessedit_char_whitelist=AB", want: "--oem 1 --psm 3 -c tessedit_char_whitelist=AB"},
		{name: "extra whitespace", in: "  --psm   7\t-c  load_system_dawg=0 ", want: "--psm 7 -c load_system_dawg=0"},
		{name: "empty value", in: "-c tessedit_char_blacklist=", want: "-c tessedit_char_blacklist="},
		{name: "repeated key overwrites", in: "--psm 3 --psm 6", want: "--psm 6"},
		{name: "dangling -c", in: "--psm 3 -c", wantErr: true},
		{name: "missing equals", in: "-c novalue", wantErr: true},
		{name: "switch without value", in: "--psm", wantErr: true},
		{name: "switch followed by switch", in: "--psm --oem 1", wantErr: true},
		{name: "bare token", in: "eng", wantErr: true},
		{name: "bare token after switch", in: "--psm 7 eng", wantErr: true},
		{name: "value with spaces", in: "-c tessedit_char_blacklist=a b --psm 7", want: "-c tessedit_char_blacklist=a b --psm 7"},
		{name: "value with spaces at end", in: "--psm 7 -c tessedit_char_blacklist=a  b c", want: "--psm 7 -c tessedit_char_blacklist=a b c"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := ParseParams(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseParams(%q) expected error, got %q", tt.in, p.String())
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseParams(%q) error = %v", tt.in, err)
			}
			if got := p.String(); got != tt.want {
				t.Fatalf("ParseParams(%q).String() = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseParamsRoundTripsValuesWithSpaces(t *testing.T) {
	p := NewParams("--psm", "7", "tessedit_char_blacklist", "a b", "load_system_dawg", "0")

	parsed, err := ParseParams(p.String())
	if err != nil {
		t.Fatalf("ParseParams(%q) error = %v", p.String(), err)
	}
	if got, want := parsed.String(), p.String(); got != want {
		t.Fatalf("round trip = %q, want %q", got, want)
	}
	if v, _ := parsed.Get("tessedit_char_blacklist"); v != "a b" {
		t.Fatalf("blacklist = %q, want %q", v, "a b")
	}
}
