// Package parser decodes the JSON lines sent by the sensor board.
package parser

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"
)

var ErrMalformed = errors.New("malformed reading")

// RawReading is a decoded line in device units.
type RawReading struct {
	TemperatureC float64 `json:"temperature"`
	HumidityPct  float64 `json:"humidity"`
}

// Parse decodes one line such as {"temperature":20.0,"humidity":45.5}.
// A blank line yields ok=false and no error. Missing fields are zero.
// Anything that is not a single JSON object with numeric fields wraps ErrMalformed.
func Parse(line []byte) (RawReading, bool, error) {
	if !utf8.Valid(line) {
		return RawReading{}, false, fmt.Errorf("%w: invalid utf-8", ErrMalformed)
	}
	line = bytes.TrimSpace(line)
	if len(line) == 0 {
		return RawReading{}, false, nil
	}
	if line[0] != '{' {
		return RawReading{}, false, fmt.Errorf("%w: not a JSON object", ErrMalformed)
	}

	dec := json.NewDecoder(bytes.NewReader(line))
	var raw RawReading
	if err := dec.Decode(&raw); err != nil {
		return RawReading{}, false, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return RawReading{}, false, fmt.Errorf("%w: trailing data", ErrMalformed)
	}
	return raw, true, nil
}

func CelsiusToFahrenheit(c float64) float64 {
	return c*9.0/5.0 + 32.0
}
