package http

import (
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/Spok95/unitconv/internal/domain/units"
	"github.com/Spok95/unitconv/internal/service"
)

type pageHandler struct {
	log  *slog.Logger
	conv *service.Converter
	tmpl *template.Template
}

type pageData struct {
	Categories []units.Info
	Selected   units.Info
	From       units.Unit
	To         units.Unit
	Value      string
	Result     string
	Error      string
}

// ServeHTTP форма конвертера. Смена категории отправляет форму без convert,
// тогда юниты сбрасываются на первые в списке новой категории.
func (h *pageHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	cat, err := units.ParseCategory(q.Get("category"))
	if err != nil {
		cat = units.Categories()[0]
	}
	info, _ := units.Lookup(cat)

	data := pageData{
		Categories: units.Catalog(),
		Selected:   info,
		From:       pickUnit(cat, q.Get("from"), info.Units[0]),
		To:         pickUnit(cat, q.Get("to"), info.Units[0]),
		Value:      strings.TrimSpace(q.Get("value")),
	}
	if data.Value == "" {
		data.Value = "0.0"
	}

	status := http.StatusOK
	if q.Get("convert") != "" {
		res, err := h.convert(r, cat, data)
		switch {
		case err == nil:
			data.Result = res.Display
		case errors.Is(err, errBadValue), errors.Is(err, service.ErrInvalidValue):
			status = http.StatusBadRequest
			data.Error = "Please enter a valid number."
		default:
			status = http.StatusBadRequest
			data.Error = err.Error()
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := h.tmpl.Execute(w, data); err != nil {
		h.log.Error("render page failed", "err", err)
	}
}

var errBadValue = errors.New("bad value")

func (h *pageHandler) convert(r *http.Request, cat units.Category, data pageData) (service.Result, error) {
	v, err := strconv.ParseFloat(data.Value, 64)
	if err != nil {
		return service.Result{}, errBadValue
	}
	return h.conv.Convert(r.Context(), service.Request{
		Category: string(cat),
		From:     string(data.From),
		To:       string(data.To),
		Value:    v,
	})
}

func pickUnit(cat units.Category, raw string, fallback units.Unit) units.Unit {
	if raw == "" {
		return fallback
	}
	u, err := units.ParseUnitIn(cat, raw)
	if err != nil {
		return fallback
	}
	return u
}
