// Package api exposes the request surface: REST routes for users, groups
// and channels, the image upload endpoint and the websocket entry of the
// realtime relay.
package api

import (
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/hashicorp/go-hclog"
	"github.com/huddlechat/huddle/auth"
	"github.com/huddlechat/huddle/engine"
	"github.com/huddlechat/huddle/errors"
	"github.com/huddlechat/huddle/storage"
	"github.com/huddlechat/huddle/ws"
)

type Server struct {
	engine  *engine.Engine
	relay   *ws.Relay
	storage storage.BlobStorage
	auth    auth.Authenticator
	log     hclog.Logger

	upgrader websocket.Upgrader
}

func NewServer(e *engine.Engine, relay *ws.Relay, blobs storage.BlobStorage, authenticator auth.Authenticator, logger hclog.Logger) *Server {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Server{
		engine:  e,
		relay:   relay,
		storage: blobs,
		auth:    authenticator,
		log:     logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

type messageBody struct {
	Message string `json:"message"`
}

// writeError maps the error taxonomy onto the response codes of the
// request surface. A partial cross-store application still reports the
// failure, the caller must treat the state as requiring reconciliation.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	if stderrors.Is(err, auth.ErrInvalidCredentials) {
		writeJSON(w, http.StatusUnauthorized, messageBody{Message: err.Error()})
		return
	}
	status := errors.HTTPStatus(err)
	if status == http.StatusInternalServerError {
		s.log.Error("request failed", "error", err)
	}
	if errors.IsPartial(err) {
		s.log.Error("cross-store mutation partially applied", "error", err)
	}
	writeJSON(w, status, messageBody{Message: err.Error()})
}

func decodeBody(r *http.Request, into interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(into); err != nil {
		return errors.Validation("invalid request body")
	}
	return nil
}
