// Package camera provides the camera capability report, device access and
// the applied camera configuration derived from user settings.
package camera

import (
	"sort"
	"strings"
)

// Names of the current-value parameters.
const (
	ParamVideoQuality = "video-quality"
	ParamWhiteBalance = "whitebalance"
	ParamEffect       = "effect"
	ParamBrightness   = "brightness"
	ParamPictureSize  = "picture-size"
	ParamJPEGQuality  = "jpeg-quality"
	ParamFocusMode    = "focus-mode"
	ParamISO          = "iso"
)

// Names of the supported-value parameters. Values are comma-separated tokens.
const (
	SupportedWhiteBalance = "whitebalance-values"
	SupportedEffect       = "effect-values"
	SupportedBrightness   = "brightness-values"
	SupportedPictureSize  = "picture-size-values"
	SupportedISO          = "iso-values"
	SupportedFocusMode    = "focus-mode-values"
)

const (
	pairSeparator  = ";"
	valueSeparator = "="
	tokenSeparator = ","
)

// Parameters is a camera capability report: parameter name to raw string value.
// The zero value is an empty report ready to use.
type Parameters struct {
	values map[string]string
}

// NewParameters creates a report from a map. The map is copied.
func NewParameters(values map[string]string) Parameters {
	p := Parameters{values: make(map[string]string, len(values))}
	for k, v := range values {
		p.values[k] = v
	}
	return p
}

// Unflatten parses the driver form "k1=v1;k2=v2". Malformed pairs are skipped.
func Unflatten(flattened string) Parameters {
	p := Parameters{values: make(map[string]string)}
	for _, pair := range strings.Split(flattened, pairSeparator) {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		k, v, ok := strings.Cut(pair, valueSeparator)
		if !ok || k == "" {
			continue
		}
		p.values[k] = v
	}
	return p
}

// Flatten renders the report in the driver form with keys sorted.
func (p Parameters) Flatten() string {
	keys := p.Keys()
	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+valueSeparator+p.values[k])
	}
	return strings.Join(pairs, pairSeparator)
}

// Get returns the raw value for name and whether it is present.
func (p Parameters) Get(name string) (string, bool) {
	v, ok := p.values[name]
	return v, ok
}

// Set stores a raw value.
func (p *Parameters) Set(name, value string) {
	if p.values == nil {
		p.values = make(map[string]string)
	}
	p.values[name] = value
}

// Has reports whether name is present.
func (p Parameters) Has(name string) bool {
	_, ok := p.values[name]
	return ok
}

// Len returns the number of parameters.
func (p Parameters) Len() int {
	return len(p.values)
}

// Keys returns all parameter names, sorted.
func (p Parameters) Keys() []string {
	keys := make([]string, 0, len(p.values))
	for k := range p.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Supported returns the tokens of a supported-value parameter in reported order.
// Empty tokens are dropped and whitespace around tokens is trimmed.
// A missing parameter yields nil.
func (p Parameters) Supported(name string) []string {
	raw, ok := p.values[name]
	if !ok {
		return nil
	}
	return SplitTokens(raw)
}

// Map returns a copy of the report as a map.
func (p Parameters) Map() map[string]string {
	out := make(map[string]string, len(p.values))
	for k, v := range p.values {
		out[k] = v
	}
	return out
}

// Clone returns an independent copy.
func (p Parameters) Clone() Parameters {
	return NewParameters(p.values)
}

// SplitTokens splits a comma-separated token list.
func SplitTokens(raw string) []string {
	parts := strings.Split(raw, tokenSeparator)
	tokens := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		tokens = append(tokens, part)
	}
	return tokens
}

// JoinTokens is the inverse of SplitTokens.
func JoinTokens(tokens []string) string {
	return strings.Join(tokens, tokenSeparator)
}
