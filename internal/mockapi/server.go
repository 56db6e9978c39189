// Package mockapi serves the notification endpoints of the marketplace
// backend from memory, for development against a backend that lacks them.
package mockapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"moul.io/chizap"

	"github.com/evtb/evtb/internal/notify"
	"github.com/evtb/evtb/pkg/domain"
)

const maxBody = 1 << 20 // 1MB

type createRequest struct {
	UserID  int64  `json:"userId" validate:"required,gt=0"`
	Type    string `json:"notificationType" validate:"required"`
	Title   string `json:"title" validate:"required,max=200"`
	Content string `json:"content" validate:"max=2000"`
}

type updateRequest struct {
	IsRead *bool `json:"isRead" validate:"required"`
}

// Server handles the mock endpoints.
type Server struct {
	store     *notify.MemoryStore
	logger    *zap.Logger
	validator *validator.Validate
}

// New returns a Server over store.
func New(store *notify.MemoryStore, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		store:     store,
		logger:    logger,
		validator: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Routes returns the router.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(chizap.New(s.logger, &chizap.Opts{
		WithReferer:   true,
		WithUserAgent: true,
	}))

	r.Get("/api/Health", s.health)
	r.Route("/api/Notification", func(r chi.Router) {
		r.Post("/", s.create)
		r.Get("/user/{userID}", s.listForUser)
		r.Put("/{id}", s.update)
		r.Delete("/{id}", s.delete)
	})
	return r
}

// ListenAndServe serves until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.logger.Info("mock api listening", zap.String("addr", addr))

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) create(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBody)
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.logger.Warn("failed to decode notification", zap.Error(err))
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.validator.Struct(req); err != nil {
		writeValidation(w, err)
		return
	}

	n, err := s.store.Create(r.Context(), domain.NewNotification{
		UserID:  req.UserID,
		Type:    req.Type,
		Title:   req.Title,
		Content: req.Content,
	})
	if err != nil {
		s.logger.Error("create notification", zap.Error(err))
		writeMessage(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusCreated, n)
}

// listForUser returns a page object when paging parameters are given and a
// plain array otherwise, as the real backend does.
func (s *Server) listForUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "userID")
	if !ok {
		return
	}

	q := r.URL.Query()
	if !q.Has("page") && !q.Has("pageSize") {
		writeJSON(w, http.StatusOK, s.store.All(userID))
		return
	}
	page, _ := strconv.Atoi(q.Get("page"))
	size, _ := strconv.Atoi(q.Get("pageSize"))
	p, err := s.store.UserNotifications(r.Context(), userID, page, size)
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBody)
	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.validator.Struct(req); err != nil {
		writeValidation(w, err)
		return
	}
	if !*req.IsRead {
		writeMessage(w, http.StatusBadRequest, "notifications cannot be marked unread")
		return
	}

	n, err := s.store.MarkAsRead(r.Context(), id)
	if errors.Is(err, notify.ErrNotFound) {
		writeMessage(w, http.StatusNotFound, "notification not found")
		return
	}
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, n)
}

func (s *Server) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	deleted, err := s.store.Delete(r.Context(), id)
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if !deleted {
		writeMessage(w, http.StatusNotFound, "notification not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		writeMessage(w, http.StatusBadRequest, "invalid "+name)
		return 0, false
	}
	return id, true
}
