package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"mailproof/internal/config"
	"mailproof/internal/httpapi/handlers"
	"mailproof/internal/httpkit"
	"mailproof/internal/pkg/logger"
	"mailproof/internal/pkg/middleware"
	"mailproof/internal/ports"
)

type Deps struct {
	SP     ports.StorageProvider
	Log    *logger.Logger
	Prefix string
}

func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()

	log := d.Log
	if log == nil {
		log = logger.NewDefault()
	}

	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery(log))
	r.Use(middleware.Logging(log))

	allowedOrigins := config.CSVEnv("CORS_ALLOWED_ORIGINS")
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"http://localhost:5173"}
	}
	r.Use(httpkit.CORS(httpkit.CORSOptions{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "OPTIONS"},
	}))

	h := handlers.New(handlers.Deps{
		SP:     d.SP,
		Log:    log,
		Prefix: d.Prefix,
	})

	r.Get("/health", h.Health)

	r.Get("/previews/{task}", h.GetPreviews)
	r.Get("/previews/{task}/archive", h.ListArchive)
	r.Get("/previews/{task}/audits", h.ListAudits)

	return r
}
