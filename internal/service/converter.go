package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/Spok95/unitconv/internal/domain/units"
	"github.com/Spok95/unitconv/internal/infra/metrics"
)

const DefaultPrecision = 4

var (
	ErrInvalidValue = errors.New("value must be a finite number")
	ErrOutOfRange   = errors.New("result is out of float64 range")
)

// Request запрос от любого UI: строки как их ввёл пользователь.
// Category можно не указывать - тогда она берётся по юниту From.
type Request struct {
	Category string  `json:"category" msgpack:"category" yaml:"category"`
	From     string  `json:"from" msgpack:"from" yaml:"from"`
	To       string  `json:"to" msgpack:"to" yaml:"to"`
	Value    float64 `json:"value" msgpack:"value" yaml:"value"`
}

type Result struct {
	ID        string         `json:"id" msgpack:"id" yaml:"id"`
	Category  units.Category `json:"category" msgpack:"category" yaml:"category"`
	From      units.Unit     `json:"from" msgpack:"from" yaml:"from"`
	To        units.Unit     `json:"to" msgpack:"to" yaml:"to"`
	Value     float64        `json:"value" msgpack:"value" yaml:"value"`
	Converted float64        `json:"result" msgpack:"result" yaml:"result"`
	Display   string         `json:"display" msgpack:"display" yaml:"display"`
}

type Outcome struct {
	Request Request
	Result  Result
	Err     error
}

type Converter struct {
	log       *slog.Logger
	metrics   *metrics.Metrics
	precision int
}

func NewConverter(log *slog.Logger, m *metrics.Metrics, precision int) *Converter {
	if precision < 0 {
		precision = DefaultPrecision
	}
	return &Converter{log: log, metrics: m, precision: precision}
}

func (s *Converter) Precision() int { return s.precision }

// Resolve разбирает строки запроса в типы справочника.
func (s *Converter) Resolve(req Request) (units.Category, units.Unit, units.Unit, error) {
	var (
		cat  units.Category
		from units.Unit
		err  error
	)
	if req.Category != "" {
		if cat, err = units.ParseCategory(req.Category); err != nil {
			return "", "", "", err
		}
		if from, err = units.ParseUnitIn(cat, req.From); err != nil {
			return "", "", "", err
		}
	} else {
		if cat, from, err = units.ParseUnit(req.From); err != nil {
			return "", "", "", err
		}
	}
	to, err := units.ParseUnitIn(cat, req.To)
	if err != nil {
		return "", "", "", err
	}
	return cat, from, to, nil
}

func (s *Converter) Convert(ctx context.Context, req Request) (Result, error) {
	cat, from, to, err := s.Resolve(req)
	if err != nil {
		// в метку не пишем ввод пользователя
		s.metrics.ObserveConversion("", err)
		s.log.DebugContext(ctx, "conversion rejected", "category", req.Category, "from", req.From, "to", req.To, "err", err)
		return Result{}, err
	}

	if !finite(req.Value) {
		s.metrics.ObserveConversion(string(cat), ErrInvalidValue)
		return Result{}, ErrInvalidValue
	}

	converted, err := units.Convert(cat, req.Value, from, to)
	if err == nil && !finite(converted) {
		err = ErrOutOfRange
	}
	s.metrics.ObserveConversion(string(cat), err)
	if err != nil {
		return Result{}, err
	}

	res := Result{
		ID:        uuid.NewString(),
		Category:  cat,
		From:      from,
		To:        to,
		Value:     req.Value,
		Converted: converted,
	}
	res.Display = s.Describe(res)
	s.log.DebugContext(ctx, "converted",
		"id", res.ID,
		"category", cat,
		"from", from,
		"to", to,
		"value", req.Value,
		"result", converted,
	)
	return res, nil
}

// ConvertBatch каждая строка независима, ошибка одной не прерывает остальные.
func (s *Converter) ConvertBatch(ctx context.Context, reqs []Request) []Outcome {
	out := make([]Outcome, 0, len(reqs))
	for _, r := range reqs {
		res, err := s.Convert(ctx, r)
		out = append(out, Outcome{Request: r, Result: res, Err: err})
	}
	return out
}

func (s *Converter) Table(ctx context.Context, category string, value float64) (units.Table, error) {
	cat, err := units.ParseCategory(category)
	if err != nil {
		return units.Table{}, err
	}
	if !finite(value) {
		return units.Table{}, ErrInvalidValue
	}
	t, err := units.BuildTable(cat, value)
	if err != nil {
		return units.Table{}, err
	}
	for _, row := range t.Cells {
		for _, c := range row {
			if !finite(c) {
				return units.Table{}, ErrOutOfRange
			}
		}
	}
	s.log.DebugContext(ctx, "table built", "category", cat, "value", value)
	return t, nil
}

// Format округление только для показа, сам результат не трогаем.
func (s *Converter) Format(v float64) string {
	return strconv.FormatFloat(v, 'f', s.precision, 64)
}

// Describe строка вида "1.0 Kilometers = 1000.0000 Meters".
func (s *Converter) Describe(r Result) string {
	return fmt.Sprintf("%s %s = %s %s", FormatInput(r.Value), r.From, s.Format(r.Converted), r.To)
}

// FormatInput показывает введённое значение без округления:
// всегда с дробной частью, очень большие и очень малые - в экспоненте (1e+308).
func FormatInput(v float64) string {
	if !finite(v) {
		return strconv.FormatFloat(v, 'g', -1, 64)
	}
	var s string
	if abs := math.Abs(v); abs != 0 && (abs < 1e-4 || abs >= 1e16) {
		s = strconv.FormatFloat(v, 'g', -1, 64)
	} else {
		s = strconv.FormatFloat(v, 'f', -1, 64)
	}
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return s
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
