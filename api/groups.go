package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/huddlechat/huddle/types"
)

type userIdBody struct {
	UserId string `json:"userId"`
}

func (s *Server) handleListGroups(w http.ResponseWriter, r *http.Request) {
	adminIds := r.URL.Query()["adminId"]
	writeJSON(w, http.StatusOK, s.engine.ListGroups(adminIds))
}

func (s *Server) handleGetGroup(w http.ResponseWriter, r *http.Request) {
	group, err := s.engine.GetGroup(mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, group)
}

func (s *Server) handleCreateGroup(w http.ResponseWriter, r *http.Request) {
	newGroup := &types.Group{}
	if err := decodeBody(r, newGroup); err != nil {
		s.writeError(w, err)
		return
	}
	group, err := s.engine.CreateGroup(newGroup)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, group)
}

func (s *Server) handleRenameGroup(w http.ResponseWriter, r *http.Request) {
	body := struct {
		NewGroupName string `json:"newGroupName"`
	}{}
	if err := decodeBody(r, &body); err != nil {
		s.writeError(w, err)
		return
	}
	group, err := s.engine.RenameGroup(mux.Vars(r)["id"], body.NewGroupName)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, group)
}

func (s *Server) handleDeleteGroup(w http.ResponseWriter, r *http.Request) {
	adminId := r.URL.Query().Get("adminId")
	if err := s.engine.DeleteGroup(mux.Vars(r)["id"], adminId); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRegisterInterest(w http.ResponseWriter, r *http.Request) {
	body := userIdBody{}
	if err := decodeBody(r, &body); err != nil {
		s.writeError(w, err)
		return
	}
	if _, err := s.engine.RegisterInterest(mux.Vars(r)["id"], body.UserId); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, messageBody{Message: "Interest registered successfully"})
}

func (s *Server) handleApprove(w http.ResponseWriter, r *http.Request) {
	body := userIdBody{}
	if err := decodeBody(r, &body); err != nil {
		s.writeError(w, err)
		return
	}
	group, err := s.engine.Approve(mux.Vars(r)["id"], body.UserId)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, group)
}

func (s *Server) handleDecline(w http.ResponseWriter, r *http.Request) {
	body := userIdBody{}
	if err := decodeBody(r, &body); err != nil {
		s.writeError(w, err)
		return
	}
	group, err := s.engine.Decline(mux.Vars(r)["id"], body.UserId)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, group)
}

func (s *Server) handleAdminToSuper(w http.ResponseWriter, r *http.Request) {
	if _, err := s.engine.PromoteAdminToSuper(mux.Vars(r)["id"]); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, messageBody{Message: `Group adminId updated to "super" successfully`})
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	body := userIdBody{}
	if err := decodeBody(r, &body); err != nil {
		s.writeError(w, err)
		return
	}
	group, err := s.engine.Report(mux.Vars(r)["id"], body.UserId)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, group)
}

func (s *Server) handleRemove(w http.ResponseWriter, r *http.Request) {
	body := userIdBody{}
	if err := decodeBody(r, &body); err != nil {
		s.writeError(w, err)
		return
	}
	group, err := s.engine.Remove(mux.Vars(r)["id"], body.UserId)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, group)
}
