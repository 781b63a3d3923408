package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/huddlechat/huddle/types"
	"github.com/huddlechat/huddle/ws"
)

func (s *Server) handleGetChannel(w http.ResponseWriter, r *http.Request) {
	channel, err := s.engine.GetChannel(mux.Vars(r)["channelId"])
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, channel)
}

func (s *Server) handleCreateChannel(w http.ResponseWriter, r *http.Request) {
	body := struct {
		Name         string   `json:"name"`
		ChannelUsers []string `json:"channelUsers"`
	}{}
	if err := decodeBody(r, &body); err != nil {
		s.writeError(w, err)
		return
	}
	group, channel, err := s.engine.CreateChannel(mux.Vars(r)["id"], body.Name, body.ChannelUsers)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, struct {
		Group      *types.Group   `json:"group"`
		NewChannel *types.Channel `json:"newChannel"`
	}{Group: group, NewChannel: channel})
}

func (s *Server) handleRenameChannel(w http.ResponseWriter, r *http.Request) {
	body := struct {
		NewChannelName string `json:"newChannelName"`
	}{}
	if err := decodeBody(r, &body); err != nil {
		s.writeError(w, err)
		return
	}
	_, changed, err := s.engine.RenameChannel(mux.Vars(r)["channelId"], body.NewChannelName)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if !changed {
		writeJSON(w, http.StatusOK, messageBody{Message: "Channel name is unchanged"})
		return
	}
	writeJSON(w, http.StatusOK, messageBody{Message: "Channel updated successfully"})
}

func (s *Server) handleDeleteChannel(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	if err := s.engine.DeleteChannel(vars["id"], vars["channelId"]); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, messageBody{Message: "Channel deleted successfully"})
}

func (s *Server) handleRequestToJoin(w http.ResponseWriter, r *http.Request) {
	body := userIdBody{}
	if err := decodeBody(r, &body); err != nil {
		s.writeError(w, err)
		return
	}
	channel, user, err := s.engine.RequestJoin(mux.Vars(r)["channelId"], body.UserId)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Message string         `json:"message"`
		Channel *types.Channel `json:"channel"`
		User    *types.User    `json:"user"`
	}{Message: "Request to join channel sent", Channel: channel, User: user})
}

func (s *Server) handleApproveUser(w http.ResponseWriter, r *http.Request) {
	body := userIdBody{}
	if err := decodeBody(r, &body); err != nil {
		s.writeError(w, err)
		return
	}
	_, user, err := s.engine.ApproveUser(mux.Vars(r)["channelId"], body.UserId)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		User *types.User `json:"user"`
	}{User: user})
}

func (s *Server) handleDeclineUser(w http.ResponseWriter, r *http.Request) {
	body := userIdBody{}
	if err := decodeBody(r, &body); err != nil {
		s.writeError(w, err)
		return
	}
	_, user, err := s.engine.DeclineUser(mux.Vars(r)["channelId"], body.UserId)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Message string      `json:"message"`
		User    *types.User `json:"user"`
	}{Message: "User request to join channel declined", User: user})
}

func (s *Server) handleBanUser(w http.ResponseWriter, r *http.Request) {
	body := userIdBody{}
	if err := decodeBody(r, &body); err != nil {
		s.writeError(w, err)
		return
	}
	_, user, err := s.engine.BanUser(mux.Vars(r)["channelId"], body.UserId)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Message string      `json:"message"`
		User    *types.User `json:"user"`
	}{Message: "User successfully banned", User: user})
}

func (s *Server) handleMessages(w http.ResponseWriter, r *http.Request) {
	messages, err := s.engine.Messages(mux.Vars(r)["channelId"])
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, messages)
}

// handleWebsocket upgrades the connection and runs a relay session on it.
func (s *Server) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	username := r.URL.Query().Get("username")
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Error("websocket upgrade error", "error", err)
		return
	}
	session := ws.NewSession(s.relay, conn, username)
	go session.WriteLoop()
	session.ReadLoop()
}
