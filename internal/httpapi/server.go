package httpapi

import (
	"log/slog"
	"net/http"
	"time"

	"Helpdesk/internal/domain"
	"Helpdesk/internal/usecase"
)

const defaultMaxUploadBytes = 20 << 20

// RequestObserver records served requests, typically into Prometheus.
type RequestObserver interface {
	ObserveRequest(method, route string, code int, elapsed time.Duration)
}

// Deps wires the use cases behind the HTTP surface.
type Deps struct {
	Auth      *usecase.AuthService
	Knowledge *usecase.KnowledgeService
	Chat      *usecase.ChatService
	Tickets   *usecase.TicketService
	Users     *usecase.UserService
	Stats     *usecase.StatsService

	Requests       RequestObserver
	MetricsHandler http.Handler
	Logger         *slog.Logger
	AllowedOrigin  string
	MaxUploadBytes int64
}

// Server routes helpdesk requests to use cases.
type Server struct {
	router         *http.ServeMux
	auth           *usecase.AuthService
	knowledge      *usecase.KnowledgeService
	chat           *usecase.ChatService
	tickets        *usecase.TicketService
	users          *usecase.UserService
	stats          *usecase.StatsService
	requests       RequestObserver
	logger         *slog.Logger
	allowedOrigin  string
	maxUploadBytes int64
}

// NewServer registers every route.
func NewServer(deps Deps) *Server {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.AllowedOrigin == "" {
		deps.AllowedOrigin = "*"
	}
	if deps.MaxUploadBytes <= 0 {
		deps.MaxUploadBytes = defaultMaxUploadBytes
	}

	s := &Server{
		router:         http.NewServeMux(),
		auth:           deps.Auth,
		knowledge:      deps.Knowledge,
		chat:           deps.Chat,
		tickets:        deps.Tickets,
		users:          deps.Users,
		stats:          deps.Stats,
		requests:       deps.Requests,
		logger:         deps.Logger,
		allowedOrigin:  deps.AllowedOrigin,
		maxUploadBytes: deps.MaxUploadBytes,
	}

	admin := func(r domain.Role) bool { return r == domain.RoleAdmin }
	triage := domain.Role.CanTriage
	anyone := func(domain.Role) bool { return true }

	s.router.HandleFunc("GET /healthz", s.handleHealth)
	if deps.MetricsHandler != nil {
		s.router.Handle("GET /metrics", deps.MetricsHandler)
	}

	s.router.HandleFunc("POST /auth/register", s.handleRegister)
	s.router.HandleFunc("POST /auth/login", s.handleLogin)

	s.router.HandleFunc("POST /knowledge/scrape", s.require(admin, s.handleScrape))
	s.router.HandleFunc("POST /knowledge/upload", s.require(admin, s.handleUpload))
	s.router.HandleFunc("GET /knowledge", s.require(admin, s.handleListDocuments))
	s.router.HandleFunc("DELETE /knowledge", s.require(admin, s.handleDeleteDocument))
	s.router.HandleFunc("GET /knowledge/config", s.require(admin, s.handleGetAPIKey))
	s.router.HandleFunc("POST /knowledge/config", s.require(admin, s.handleSetAPIKey))

	s.router.HandleFunc("POST /chat", s.require(anyone, s.handleChat))

	s.router.HandleFunc("GET /tickets", s.require(anyone, s.handleListTickets))
	s.router.HandleFunc("POST /tickets", s.require(anyone, s.handleCreateTicket))
	s.router.HandleFunc("GET /tickets/{id}", s.require(anyone, s.handleGetTicket))
	s.router.HandleFunc("PATCH /tickets/{id}", s.require(triage, s.handleUpdateTicket))
	s.router.HandleFunc("GET /tickets/{id}/comments", s.require(anyone, s.handleListComments))
	s.router.HandleFunc("POST /tickets/{id}/comments", s.require(anyone, s.handleAddComment))

	s.router.HandleFunc("GET /users", s.require(admin, s.handleListUsers))
	s.router.HandleFunc("POST /users", s.require(admin, s.handleCreateUser))
	s.router.HandleFunc("PUT /users/{id}", s.require(admin, s.handleUpdateUser))
	s.router.HandleFunc("DELETE /users/{id}", s.require(admin, s.handleDeleteUser))

	s.router.HandleFunc("GET /admin/stats", s.require(triage, s.handleStats))

	return s
}

// Handler returns the router wrapped in request id, logging and CORS middleware.
func (s *Server) Handler() http.Handler {
	return s.withRequestID(s.withLogging(s.withCORS(s.router)))
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
