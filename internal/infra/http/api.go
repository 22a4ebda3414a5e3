package http

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/Spok95/unitconv/internal/domain/units"
	"github.com/Spok95/unitconv/internal/infra/excel"
	"github.com/Spok95/unitconv/internal/service"
)

const maxUploadBytes = 10 << 20

type apiHandler struct {
	log  *slog.Logger
	conv *service.Converter
}

func (h *apiHandler) categories(w http.ResponseWriter, r *http.Request) {
	h.reply(w, r, http.StatusOK, units.Catalog())
}

// convert GET /api/convert?category=&from=&to=&value= или POST с телом JSON/msgpack.
func (h *apiHandler) convert(w http.ResponseWriter, r *http.Request) {
	var req service.Request
	if r.Method == http.MethodPost {
		if err := readData(r, &req); err != nil {
			h.fail(w, r, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
			return
		}
	} else {
		q := r.URL.Query()
		v, err := parseValue(q.Get("value"))
		if err != nil {
			h.fail(w, r, http.StatusBadRequest, err)
			return
		}
		req = service.Request{Category: q.Get("category"), From: q.Get("from"), To: q.Get("to"), Value: v}
	}

	res, err := h.conv.Convert(r.Context(), req)
	if err != nil {
		h.fail(w, r, statusFor(err), err)
		return
	}
	h.reply(w, r, http.StatusOK, res)
}

// table GET /api/table?category=&value=[&format=xlsx]
func (h *apiHandler) table(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	v := 1.0
	if raw := q.Get("value"); raw != "" {
		var err error
		if v, err = parseValue(raw); err != nil {
			h.fail(w, r, http.StatusBadRequest, err)
			return
		}
	}

	t, err := h.conv.Table(r.Context(), q.Get("category"), v)
	if err != nil {
		h.fail(w, r, statusFor(err), err)
		return
	}

	if q.Get("format") != "xlsx" {
		h.reply(w, r, http.StatusOK, t)
		return
	}
	data, err := excel.WriteTable(t, h.conv.Precision())
	if err != nil {
		h.fail(w, r, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", excel.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.xlsx"`, strings.ToLower(string(t.Category))))
	_, _ = w.Write(data)
}

// batch POST /api/batch: xlsx в multipart-поле file или сырым телом.
func (h *apiHandler) batch(w http.ResponseWriter, r *http.Request) {
	data, err := uploadedFile(w, r)
	if err != nil {
		h.fail(w, r, http.StatusBadRequest, err)
		return
	}

	out, sum, err := excel.ConvertBatch(r.Context(), h.conv, data)
	if err != nil {
		h.fail(w, r, http.StatusBadRequest, err)
		return
	}
	h.log.Info("batch converted", "rows", sum.Rows, "failed", sum.Failed)

	w.Header().Set("Content-Type", excel.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="converted.xlsx"`)
	w.Header().Set("X-Batch-Rows", strconv.Itoa(sum.Rows))
	w.Header().Set("X-Batch-Failed", strconv.Itoa(sum.Failed))
	_, _ = w.Write(out)
}

func uploadedFile(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
		f, _, err := r.FormFile("file")
		if err != nil {
			return nil, fmt.Errorf("form file: %w", err)
		}
		defer func() { _ = f.Close() }()
		return io.ReadAll(f)
	}
	data, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if len(data) == 0 {
		return nil, errors.New("empty upload")
	}
	return data, nil
}

func parseValue(raw string) (float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, errors.New("value is required")
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid value %q", raw)
	}
	return v, nil
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, units.ErrInvalidCategory),
		errors.Is(err, units.ErrInvalidUnit),
		errors.Is(err, service.ErrInvalidValue):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrOutOfRange):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func (h *apiHandler) reply(w http.ResponseWriter, r *http.Request, status int, v any) {
	if err := writeData(w, r, status, v); err != nil {
		h.log.Error("write response failed", "path", r.URL.Path, "err", err)
	}
}

func (h *apiHandler) fail(w http.ResponseWriter, r *http.Request, status int, err error) {
	if status >= http.StatusInternalServerError {
		h.log.Error("request failed", "path", r.URL.Path, "err", err)
	}
	h.reply(w, r, status, errorBody{Error: err.Error()})
}
