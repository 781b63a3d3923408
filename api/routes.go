package api

import (
	"net/http"

	"github.com/gorilla/mux"
)

// Routes builds the request surface. All routes live under /api, matching
// the paths the frontend collaborator calls.
func (s *Server) Routes() *mux.Router {
	router := mux.NewRouter()
	api := router.PathPrefix("/api").Subrouter()

	api.HandleFunc("/auth", s.handleAuth).Methods(http.MethodPost)

	api.HandleFunc("/users", s.handleListUsers).Methods(http.MethodGet)
	api.HandleFunc("/users", s.handleCreateUser).Methods(http.MethodPost)
	api.HandleFunc("/users/{id}", s.handleGetUser).Methods(http.MethodGet)
	api.HandleFunc("/users/{id}/role", s.handleUpdateRole).Methods(http.MethodPut)
	api.HandleFunc("/users/{id}", s.handleUpdateProfile).Methods(http.MethodPut)
	api.HandleFunc("/users/{id}", s.handleDeleteUser).Methods(http.MethodDelete)

	api.HandleFunc("/groups", s.handleListGroups).Methods(http.MethodGet)
	api.HandleFunc("/groups", s.handleCreateGroup).Methods(http.MethodPost)
	api.HandleFunc("/groups/{id}", s.handleGetGroup).Methods(http.MethodGet)
	api.HandleFunc("/groups/{id}/name", s.handleRenameGroup).Methods(http.MethodPut)
	api.HandleFunc("/groups/{id}", s.handleDeleteGroup).Methods(http.MethodDelete)
	api.HandleFunc("/groups/{id}/register-interest", s.handleRegisterInterest).Methods(http.MethodPut)
	api.HandleFunc("/groups/{id}/approve", s.handleApprove).Methods(http.MethodPut)
	api.HandleFunc("/groups/{id}/decline", s.handleDecline).Methods(http.MethodPut)
	api.HandleFunc("/groups/{id}/admin-to-super", s.handleAdminToSuper).Methods(http.MethodPut)
	api.HandleFunc("/groups/{id}/report", s.handleReport).Methods(http.MethodPut)
	api.HandleFunc("/groups/{id}/remove", s.handleRemove).Methods(http.MethodPut)

	api.HandleFunc("/groups/{id}/channels", s.handleCreateChannel).Methods(http.MethodPost)
	api.HandleFunc("/groups/{id}/channels/{channelId}", s.handleDeleteChannel).Methods(http.MethodDelete)
	api.HandleFunc("/channels/{channelId}", s.handleGetChannel).Methods(http.MethodGet)
	api.HandleFunc("/channels/{channelId}", s.handleRenameChannel).Methods(http.MethodPut)
	api.HandleFunc("/channels/{channelId}/requestToJoin", s.handleRequestToJoin).Methods(http.MethodPut)
	api.HandleFunc("/channels/{channelId}/approveUser", s.handleApproveUser).Methods(http.MethodPut)
	api.HandleFunc("/channels/{channelId}/declineUser", s.handleDeclineUser).Methods(http.MethodPut)
	api.HandleFunc("/channels/{channelId}/banUser", s.handleBanUser).Methods(http.MethodPut)
	api.HandleFunc("/channels/{channelId}/messages", s.handleMessages).Methods(http.MethodGet)

	api.HandleFunc("/upload-image", s.handleUploadImage).Methods(http.MethodPost)

	api.HandleFunc("/chat", s.handleWebsocket).Methods(http.MethodGet)

	return router
}
