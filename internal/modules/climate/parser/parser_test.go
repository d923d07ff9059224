package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCelsiusToFahrenheit(t *testing.T) {
	tests := []struct {
		c, want float64
	}{
		{c: 0, want: 32},
		{c: 100, want: 212},
		{c: -40, want: -40},
		{c: 20, want: 68},
		{c: 18, want: 64.4},
		{c: 25, want: 77},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, CelsiusToFahrenheit(tt.c), 1e-9, "c=%v", tt.c)
	}
}

func TestParse_valid(t *testing.T) {
	tests := []struct {
		name string
		line string
		want RawReading
	}{
		{name: "typical", line: `{"temperature":20.0,"humidity":45.5}`, want: RawReading{TemperatureC: 20, HumidityPct: 45.5}},
		{name: "trailing newline", line: "{\"temperature\":21.5,\"humidity\":40}\r\n", want: RawReading{TemperatureC: 21.5, HumidityPct: 40}},
		{name: "negative", line: `{"temperature":-5.25,"humidity":80}`, want: RawReading{TemperatureC: -5.25, HumidityPct: 80}},
		{name: "missing humidity", line: `{"temperature":19}`, want: RawReading{TemperatureC: 19}},
		{name: "empty object", line: `{}`, want: RawReading{}},
		{name: "extra fields", line: `{"temperature":20,"humidity":50,"sensor":"dht22"}`, want: RawReading{TemperatureC: 20, HumidityPct: 50}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok, err := Parse([]byte(tt.line))
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParse_blank(t *testing.T) {
	for _, line := range []string{"", "   ", "\n", "\r\n"} {
		got, ok, err := Parse([]byte(line))
		require.NoError(t, err, "line %q", line)
		assert.False(t, ok, "line %q", line)
		assert.Equal(t, RawReading{}, got)
	}
}

func TestParse_malformed(t *testing.T) {
	tests := []struct {
		name string
		line []byte
	}{
		{name: "not json", line: []byte("hello")},
		{name: "truncated", line: []byte(`{"temperature":20.0,"hum`)},
		{name: "array", line: []byte(`[1,2]`)},
		{name: "number", line: []byte(`42`)},
		{name: "string field", line: []byte(`{"temperature":"warm","humidity":40}`)},
		{name: "two objects", line: []byte(`{"temperature":1}{"temperature":2}`)},
		{name: "invalid utf-8", line: []byte{'{', 0xff, 0xfe, '}'}},
		{name: "null", line: []byte(`null`)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok, err := Parse(tt.line)
			assert.False(t, ok)
			assert.ErrorIs(t, err, ErrMalformed)
		})
	}
}
