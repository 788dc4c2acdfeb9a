// Package server exposes credential verification over HTTP so that terminals can
// submit their encPassword without talking to the registry directly.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"github.com/skandragon/gohealthcheck/health"

	"github.com/dcrodman/termcred/internal/core"
	"github.com/dcrodman/termcred/internal/core/auth"
	"github.com/dcrodman/termcred/internal/core/data"
)

const maxRequestBytes = 4096

var healthchecker = health.MakeHealth()

// Authenticator verifies a terminal login request.
type Authenticator interface {
	Verify(ctx context.Context, req auth.LoginRequest) (*data.Account, error)
}

// Server is the HTTP frontend for an Authenticator.
type Server struct {
	addr          string
	authenticator Authenticator
	log           *logrus.Logger
	// Feeds access log lines into log; closed by Start on shutdown.
	accessLog *io.PipeWriter
}

type loginResponse struct {
	Username string `json:"username,omitempty"`
	Error    string `json:"error,omitempty"`
}

// New returns a Server that will listen on the configured web port.
func New(cfg *core.Config, authenticator Authenticator, log *logrus.Logger) *Server {
	return &Server{
		addr:          fmt.Sprintf(":%d", cfg.Web.HTTPPort),
		authenticator: authenticator,
		log:           log,
		accessLog:     log.WriterLevel(logrus.InfoLevel),
	}
}

func (s *Server) routes(m *mux.Router) {
	m.HandleFunc("/health", healthchecker.HTTPHandler()).Methods(http.MethodGet)
	m.HandleFunc("/v1/auth/terminal", s.handleTerminalLogin).Methods(http.MethodPost)
}

// Handler returns the router with access logging applied.
func (s *Server) Handler() http.Handler {
	m := mux.NewRouter()
	s.routes(m)
	return handlers.LoggingHandler(s.accessLog, m)
}

// Start serves requests until ctx is cancelled, then shuts down gracefully.
// A Server can't be restarted once Start returns.
func (s *Server) Start(ctx context.Context) error {
	defer s.accessLog.Close()

	go healthchecker.RunCheckers(15)

	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errs := make(chan error, 1)
	go func() {
		s.log.Infof("waiting for terminal logins on %s", s.addr)
		errs <- srv.ListenAndServe()
	}()

	select {
	case err := <-errs:
		return fmt.Errorf("error serving http: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("error shutting down http server: %w", err)
	}
	s.log.Info("http server exiting")
	return nil
}

func (s *Server) handleTerminalLogin(w http.ResponseWriter, r *http.Request) {
	// Terminals may send more than this (a MAC next to encPassword, for one);
	// anything not listed in LoginRequest is ignored.
	var req auth.LoginRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes)).Decode(&req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, loginResponse{Error: "malformed request: " + err.Error()})
		return
	}
	if req.UserID == "" || req.EncPassword == "" || req.TerminalID == "" || req.ClientTime.IsZero() {
		s.writeJSON(w, http.StatusBadRequest, loginResponse{Error: "userId, encPassword, clientTime and terminalId are required"})
		return
	}

	account, err := s.authenticator.Verify(r.Context(), req)
	if err != nil {
		status := statusForError(err)
		if status == http.StatusInternalServerError {
			s.log.WithError(err).WithField("terminal", req.TerminalID).Error("terminal login failed")
			err = auth.ErrUnknown
		}
		s.writeJSON(w, status, loginResponse{Error: err.Error()})
		return
	}
	s.writeJSON(w, http.StatusOK, loginResponse{Username: account.Username})
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrUnknownTerminal),
		errors.Is(err, auth.ErrClockSkew),
		errors.Is(err, auth.ErrReplayed):
		return http.StatusUnauthorized
	case errors.Is(err, auth.ErrAccountBanned):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.log.WithError(err).Warn("error writing response")
	}
}
