package http

import (
	"context"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/Spok95/unitconv/internal/infra/metrics"
	"github.com/Spok95/unitconv/internal/service"
	"github.com/Spok95/unitconv/internal/web"
)

type Server struct {
	srv *http.Server
}

type Deps struct {
	Log           *slog.Logger
	Conv          *service.Converter
	Metrics       *metrics.Metrics
	ExposeMetrics bool
}

func New(addr string, d Deps) *Server {
	return &Server{srv: &http.Server{
		Addr:              addr,
		Handler:           Routes(d),
		ReadHeaderTimeout: 5 * time.Second,
	}}
}

// Routes собирает все маршруты; отдельно от New, чтобы тестировать через httptest.
func Routes(d Deps) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	if d.ExposeMetrics && d.Metrics != nil {
		mux.Handle("GET /metrics", d.Metrics.Handler())
	}

	static, err := fs.Sub(web.FS, "static")
	if err != nil {
		panic(err)
	}
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(static)))

	page := &pageHandler{
		log:  d.Log,
		conv: d.Conv,
		tmpl: template.Must(template.ParseFS(web.FS, "templates/index.html")),
	}
	mux.Handle("GET /{$}", page)

	api := &apiHandler{log: d.Log, conv: d.Conv}
	mux.HandleFunc("GET /api/categories", api.categories)
	mux.HandleFunc("GET /api/convert", api.convert)
	mux.HandleFunc("POST /api/convert", api.convert)
	mux.HandleFunc("GET /api/table", api.table)
	mux.HandleFunc("POST /api/batch", api.batch)

	return withRequestID(d.Log, d.Metrics, mux)
}

func (s *Server) Start() error {
	return s.srv.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
