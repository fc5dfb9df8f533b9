package server

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/voidshard/torque/pkg/api"
	"github.com/voidshard/torque/pkg/api/http/common"
	"github.com/voidshard/torque/pkg/structs"
)

const (
	wait = 30 * time.Second
)

type Server struct {
	addr       string
	debug      bool
	tlsConfig  *tls.Config
	svc        api.API
	exit       chan os.Signal
	httpserver *http.Server
}

// Handler returns the routes serving svc.
func (s *Server) Handler(svc api.API) http.Handler {
	s.svc = svc

	router := mux.NewRouter()
	router.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer)
	if s.debug {
		log.Debug().Msg("debug enabled, adding per-request logging middleware")
		router.Use(loggingMiddleware)
	}

	router.HandleFunc(common.API_HEALTH, s.Health).Methods(http.MethodGet)
	router.HandleFunc(common.API_TASK, s.Task).Methods(http.MethodGet)
	router.HandleFunc(common.API_CREATE, s.CreateTask).Methods(http.MethodPost)

	return router
}

// ServeForever serves svc until Close is called or the process is
// interrupted, then shuts down gracefully.
func (s *Server) ServeForever(svc api.API) error {
	s.httpserver = &http.Server{
		Handler:      s.Handler(svc),
		Addr:         s.addr,
		TLSConfig:    s.tlsConfig,
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
	}

	errs := make(chan error, 1)
	go func() {
		log.Info().Str("addr", s.httpserver.Addr).Bool("tls", s.tlsConfig != nil).Msg("listening")
		if s.tlsConfig != nil {
			errs <- s.httpserver.ListenAndServeTLS("", "")
		} else {
			errs <- s.httpserver.ListenAndServe()
		}
	}()

	signal.Notify(s.exit, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(s.exit)

	select {
	case err := <-errs:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-s.exit:
	}

	log.Info().Msg("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), wait)
	defer cancel()
	return s.httpserver.Shutdown(ctx)
}

// CreateTask stores the request as a task for the web hook given by the
// url query parameter.
func (s *Server) CreateTask(w http.ResponseWriter, r *http.Request) {
	req, err := unmarshalCreateTask(w, r)
	if err != nil {
		return
	}

	task, err := s.svc.CreateTask(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("%s/%d", common.API_TASKS, task.ID))
	writeJson(w, http.StatusCreated, structs.NewTaskResponse(task, false))
}

// Task returns a single task, including request data if the caller may
// see it.
func (s *Server) Task(w http.ResponseWriter, r *http.Request) {
	id, err := taskID(w, r)
	if err != nil {
		return
	}

	resp, err := s.svc.Task(r.Context(), id, apiKey(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJson(w, http.StatusOK, resp)
}

func (s *Server) Close() error {
	select {
	case s.exit <- os.Interrupt:
	default:
	}
	return nil
}

func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	writeJson(w, http.StatusOK, &common.HealthResponse{OK: true})
}

func writeJson(w http.ResponseWriter, code int, obj interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	err := json.NewEncoder(w).Encode(obj)
	if err != nil {
		log.Warn().Err(err).Msg("failed to write response")
	}
}

func NewServer(addr string, debug bool, tlsConfig *tls.Config) *Server {
	return &Server{
		addr:      addr,
		debug:     debug,
		tlsConfig: tlsConfig,
		exit:      make(chan os.Signal, 1),
	}
}
