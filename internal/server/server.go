// Package server exposes the tool catalog over HTTP: discovery,
// invocation and a health probe. Transport errors (bad JSON, wrong
// method) are HTTP status codes; everything past decoding is a
// dispatcher envelope on 200.
package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/lumen-cms/toolgate/internal/dispatch"
	"github.com/lumen-cms/toolgate/internal/policy"
	"github.com/lumen-cms/toolgate/internal/principal"
	"go.uber.org/zap"
)

// Server is the HTTP tool host.
type Server struct {
	dispatcher *dispatch.Dispatcher
	resolver   principal.Resolver
	logger     *zap.Logger
}

// NewServer creates a Server.
func NewServer(dispatcher *dispatch.Dispatcher, resolver principal.Resolver, logger *zap.Logger) *Server {
	return &Server{dispatcher: dispatcher, resolver: resolver, logger: logger}
}

// Handler returns the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealthz)
	mux.HandleFunc("/v1/tools", s.handleDiscovery)
	mux.HandleFunc("/v1/tools/call", s.handleCall)
	return mux
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// toolDescriptor is one entry in the discovery response.
type toolDescriptor struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Domain      string         `json:"domain"`
	InputSchema map[string]any `json:"input_schema"`
}

func (s *Server) handleDiscovery(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	tools := s.dispatcher.Registry().List()
	descriptors := make([]toolDescriptor, 0, len(tools))
	for _, tool := range tools {
		descriptors = append(descriptors, toolDescriptor{
			Name:        tool.Name,
			Description: tool.Description,
			Domain:      tool.Domain,
			InputSchema: tool.Schema.JSONSchema(),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"tools": descriptors})
}

// callRequest is the invocation wire shape. Unknown top-level fields
// are ignored, same permissive policy as the argument validator: the
// transport may add envelope metadata.
type callRequest struct {
	Tool      string         `json:"tool"`
	Action    string         `json:"action"`
	Arguments map[string]any `json:"arguments"`
}

func (s *Server) handleCall(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req callRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dispatch.ErrorEnvelope("invalid json", nil))
		return
	}
	if req.Tool == "" {
		writeJSON(w, http.StatusBadRequest, dispatch.ErrorEnvelope("missing tool name", nil))
		return
	}

	// A top-level action feeds router tools; an action already inside
	// arguments wins.
	args := req.Arguments
	if req.Action != "" {
		if args == nil {
			args = map[string]any{}
		}
		if _, ok := args["action"]; !ok {
			args["action"] = req.Action
		}
	}

	cc := policy.CallerContext{
		Mode:      policy.ModeRemote,
		Principal: s.resolvePrincipal(r),
	}
	env := s.dispatcher.Dispatch(r.Context(), req.Tool, args, cc)
	writeJSON(w, http.StatusOK, env)
}

// resolvePrincipal turns the Authorization header into a principal, or
// nil. A missing or bad key is not a transport error: the dispatcher
// answers it with an authentication envelope.
func (s *Server) resolvePrincipal(r *http.Request) *principal.Principal {
	token, err := principal.ExtractBearerToken(r.Header.Get("Authorization"))
	if err != nil {
		return nil
	}
	p, err := s.resolver.Resolve(r.Context(), token)
	if err != nil {
		if !errors.Is(err, principal.ErrUnauthenticated) {
			s.logger.Warn("principal resolution failed", zap.Error(err))
		}
		return nil
	}
	return p
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
