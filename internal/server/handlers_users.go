package server

import (
	"net/http"

	"libris/internal/library"
)

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	list, err := s.svc.ListUsers(r.Context())
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	if prefersHTML(r) {
		s.renderPage(w, r, "users.html", list)
		return
	}
	s.writeJSON(w, r, http.StatusOK, list)
}

func (s *Server) handleUsersPage(w http.ResponseWriter, r *http.Request) {
	list, err := s.svc.ListUsers(r.Context())
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	s.renderPage(w, r, "users.html", list)
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "User")
	if !ok {
		return
	}
	user, err := s.svc.GetUser(r.Context(), id)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	if prefersHTML(r) {
		s.renderPage(w, r, "user.html", user)
		return
	}
	s.writeJSON(w, r, http.StatusOK, user)
}

func (s *Server) handleAddUser(w http.ResponseWriter, r *http.Request) {
	var in library.NewUser
	if !s.decodeBody(w, r, &in) {
		return
	}
	resp, err := s.svc.AddUser(r.Context(), in)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, resp)
}

func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "User")
	if !ok {
		return
	}
	var patch library.UserPatch
	if !s.decodeBody(w, r, &patch) {
		return
	}
	resp, err := s.svc.UpdateUser(r.Context(), id, patch)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, resp)
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "User")
	if !ok {
		return
	}
	resp, err := s.svc.DeleteUser(r.Context(), id)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, resp)
}
