package server

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"form_automation/application/session"
	"form_automation/domain/entities"
	"form_automation/domain/interfaces"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Server exposes the submit endpoint and the per-session websocket stream
type Server struct {
	router      chi.Router
	registry    *session.Registry
	interpreter interfaces.FormInterpreter
	cfg         session.Config
	logger      *logrus.Logger

	mu        sync.Mutex
	reporters map[string]*WSReporter
}

// NewServer - wires the routes onto a chi router
func NewServer(interpreter interfaces.FormInterpreter, cfg session.Config, logger *logrus.Logger) *Server {
	s := &Server{
		router:      chi.NewRouter(),
		registry:    session.NewRegistry(),
		interpreter: interpreter,
		cfg:         cfg,
		logger:      logger,
		reporters:   make(map[string]*WSReporter),
	}

	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Recoverer)

	s.router.Post("/api/submit", s.handleSubmit)
	s.router.Get("/ws", s.handleWebsocket)
	s.router.Get("/health", s.handleHealth)

	return s
}

// Handler - returns the root http handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// handleSubmit - validates the request, creates a session with its own
// browser, and kicks the run off in the background. The response returns
// immediately with the session id the observer uses to connect.
func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var req entities.SubmissionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.TargetURL == "" && req.SearchQuery == "" {
		s.writeError(w, http.StatusBadRequest, "either target_url or search_query is required")
		return
	}

	id := uuid.NewString()
	reporter := NewWSReporter(s.logger)

	sess, err := session.New(id, s.interpreter, reporter, s.cfg, s.logger)
	if err != nil {
		s.logger.Errorf("Failed to create session: %v", err)
		s.writeError(w, http.StatusInternalServerError, "failed to start browser session")
		return
	}

	s.registry.Add(sess)
	s.mu.Lock()
	s.reporters[id] = reporter
	s.mu.Unlock()

	go sess.Run(context.Background(), req)
	go s.reap(sess)

	s.logger.Infof("Session %s started", id)
	s.writeJSON(w, http.StatusAccepted, map[string]string{"session_id": id})
}

// reap - removes a session from the registry once its run has torn down.
// The reporter lingers briefly so a late observer still receives the
// buffered result event.
func (s *Server) reap(sess *session.Session) {
	<-sess.Done()
	s.registry.Remove(sess.ID)

	time.Sleep(time.Minute)
	s.mu.Lock()
	delete(s.reporters, sess.ID)
	s.mu.Unlock()
}

// handleWebsocket - upgrades the observer connection for a session and
// forwards its inbound answers to the session's input gate
func (s *Server) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("session_id")
	if id == "" {
		s.writeError(w, http.StatusBadRequest, "session_id query parameter is required")
		return
	}

	s.mu.Lock()
	reporter, ok := s.reporters[id]
	s.mu.Unlock()
	if !ok {
		s.writeError(w, http.StatusNotFound, "unknown session")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warnf("Websocket upgrade failed for session %s: %v", id, err)
		return
	}
	defer conn.Close()

	reporter.Attach(conn)
	defer reporter.Detach(conn)

	for {
		var msg struct {
			Event string          `json:"event"`
			Data  json.RawMessage `json:"data"`
		}
		if err := conn.ReadJSON(&msg); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Debugf("Websocket read ended for session %s: %v", id, err)
			}
			return
		}

		switch msg.Event {
		case "user-input":
			var input entities.UserInput
			if err := json.Unmarshal(msg.Data, &input); err != nil {
				s.logger.Warnf("Malformed user-input payload for session %s: %v", id, err)
				continue
			}
			if sess, err := s.registry.Get(id); err == nil {
				sess.Resolve(input)
			}
		case "cancel":
			if sess, err := s.registry.Get(id); err == nil {
				sess.Cancel()
			}
		default:
			s.logger.Debugf("Ignoring unknown inbound event %q on session %s", msg.Event, id)
		}
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":          "ok",
		"active_sessions": s.registry.Len(),
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Warnf("Failed to write response: %v", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}
