package service

import (
	"context"
	"math"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Spok95/unitconv/internal/domain/units"
	"github.com/Spok95/unitconv/internal/infra/logger"
	"github.com/Spok95/unitconv/internal/infra/metrics"
)

func newTestConverter() (*Converter, *metrics.Metrics) {
	m := metrics.New()
	return NewConverter(logger.Discard(), m, DefaultPrecision), m
}

func TestConvert(t *testing.T) {
	s, _ := newTestConverter()

	res, err := s.Convert(context.Background(), Request{Category: "Length", From: "Kilometers", To: "Meters", Value: 1})
	require.NoError(t, err)
	assert.Equal(t, units.Length, res.Category)
	assert.Equal(t, 1000.0, res.Converted)
	assert.Equal(t, "1.0 Kilometers = 1000.0000 Meters", res.Display)
	_, err = uuid.Parse(res.ID)
	assert.NoError(t, err)
}

func TestConvertInfersCategory(t *testing.T) {
	s, _ := newTestConverter()

	res, err := s.Convert(context.Background(), Request{From: "c", To: "f", Value: -40})
	require.NoError(t, err)
	assert.Equal(t, units.Temperature, res.Category)
	assert.Equal(t, units.Celsius, res.From)
	assert.Equal(t, units.Fahrenheit, res.To)
	assert.Equal(t, -40.0, res.Converted)
	assert.Equal(t, "-40.0 Celsius = -40.0000 Fahrenheit", res.Display)
}

func TestConvertErrors(t *testing.T) {
	s, m := newTestConverter()
	ctx := context.Background()

	testCases := []struct {
		name string
		req  Request
		err  error
	}{
		{"unknown category", Request{Category: "Volume", From: "l", To: "ml"}, units.ErrInvalidCategory},
		{"unit from another category", Request{Category: "Weight", From: "km", To: "g"}, units.ErrInvalidUnit},
		{"mixed categories", Request{From: "km", To: "kg"}, units.ErrInvalidUnit},
		{"unknown unit", Request{From: "furlong", To: "m"}, units.ErrInvalidUnit},
		{"NaN value", Request{From: "g", To: "kg", Value: math.NaN()}, ErrInvalidValue},
		{"infinite value", Request{From: "s", To: "min", Value: math.Inf(-1)}, ErrInvalidValue},
		{"overflow", Request{From: "d", To: "s", Value: 1e306}, ErrOutOfRange},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := s.Convert(ctx, tc.req)
			assert.ErrorIs(t, err, tc.err)
		})
	}

	reg := m.Registry()
	n, err := testutil.GatherAndCount(reg, "unitconv_conversions_total")
	require.NoError(t, err)
	assert.Positive(t, n)
}

func TestConvertBatch(t *testing.T) {
	s, _ := newTestConverter()
	out := s.ConvertBatch(context.Background(), []Request{
		{Category: "Time", From: "Days", To: "Hours", Value: 1},
		{Category: "Time", From: "Days", To: "Kelvin", Value: 1},
		{Category: "Weight", From: "Kilograms", To: "Pounds", Value: 1},
	})
	require.Len(t, out, 3)
	assert.NoError(t, out[0].Err)
	assert.Equal(t, 24.0, out[0].Result.Converted)
	assert.ErrorIs(t, out[1].Err, units.ErrInvalidUnit)
	assert.NoError(t, out[2].Err)
	assert.InDelta(t, 2.20462, out[2].Result.Converted, 1e-5)
}

func TestTable(t *testing.T) {
	s, _ := newTestConverter()
	tbl, err := s.Table(context.Background(), "weight", 1)
	require.NoError(t, err)
	assert.Equal(t, units.Weight, tbl.Category)
	assert.Len(t, tbl.Cells, 4)

	_, err = s.Table(context.Background(), "volume", 1)
	assert.ErrorIs(t, err, units.ErrInvalidCategory)

	_, err = s.Table(context.Background(), "length", 1e308)
	assert.ErrorIs(t, err, ErrOutOfRange)

	_, err = s.Table(context.Background(), "length", math.NaN())
	assert.ErrorIs(t, err, ErrInvalidValue)
}

func TestFormatInput(t *testing.T) {
	testCases := []struct {
		value    float64
		expected string
	}{
		{1, "1.0"},
		{0, "0.0"},
		{-40, "-40.0"},
		{0.5, "0.5"},
		{12345.678, "12345.678"},
		{1e308, "1e+308"},
		{1e16, "1e+16"},
		{1e-5, "1e-05"},
	}
	for _, tc := range testCases {
		t.Run(tc.expected, func(t *testing.T) {
			assert.Equal(t, tc.expected, FormatInput(tc.value))
		})
	}
}

func TestFormatPrecision(t *testing.T) {
	s := NewConverter(logger.Discard(), nil, 2)
	assert.Equal(t, "2.20", s.Format(2.20462))

	s = NewConverter(logger.Discard(), nil, -1)
	assert.Equal(t, DefaultPrecision, s.Precision())
}
