package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/huddlechat/huddle/types"
)

func (s *Server) handleAuth(w http.ResponseWriter, r *http.Request) {
	body := struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}{}
	if err := decodeBody(r, &body); err != nil {
		s.writeError(w, err)
		return
	}
	user, err := s.auth.Authenticate(body.Username, body.Password)
	if err != nil {
		s.writeError(w, err)
		return
	}
	// never echo the password back
	userInfo := *user
	userInfo.Password = ""
	writeJSON(w, http.StatusOK, struct {
		UserInfo types.User `json:"userInfo"`
	}{UserInfo: userInfo})
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.ListUsers())
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	user, err := s.engine.GetUser(mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user.Public())
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	newUser := &types.User{}
	if err := decodeBody(r, newUser); err != nil {
		s.writeError(w, err)
		return
	}
	user, err := s.engine.CreateUser(newUser)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

func (s *Server) handleUpdateRole(w http.ResponseWriter, r *http.Request) {
	body := struct {
		Role string `json:"role"`
	}{}
	if err := decodeBody(r, &body); err != nil {
		s.writeError(w, err)
		return
	}
	user, err := s.engine.UpdateRole(mux.Vars(r)["id"], body.Role)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// handleUpdateProfile accepts multipart form data (username, email and an
// optional profilePicture file) or a plain JSON body without image.
func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	userId := mux.Vars(r)["id"]
	var username, email, imgPath string

	if err := r.ParseMultipartForm(10 << 20); err == nil {
		username = r.FormValue("username")
		email = r.FormValue("email")
		if file, header, err := r.FormFile("profilePicture"); err == nil {
			defer file.Close()
			name, err := s.storage.StoreProfileImage(file, userId, header.Filename)
			if err != nil {
				s.writeError(w, err)
				return
			}
			imgPath = name
		}
	} else {
		body := struct {
			Username string `json:"username"`
			Email    string `json:"email"`
		}{}
		if err := decodeBody(r, &body); err != nil {
			s.writeError(w, err)
			return
		}
		username = body.Username
		email = body.Email
	}

	user, err := s.engine.UpdateProfile(userId, username, email, imgPath)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	if err := s.engine.DeleteUser(mux.Vars(r)["id"]); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, messageBody{Message: "User deleted successfully"})
}

func (s *Server) handleUploadImage(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		s.writeError(w, err)
		return
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		s.writeError(w, err)
		return
	}
	defer file.Close()
	url, err := s.storage.StoreImage(file, header.Filename)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Message  string `json:"message"`
		ImageUrl string `json:"imageUrl"`
	}{Message: "Image uploaded successfully", ImageUrl: url})
}
