package server

import (
	"net/http"

	"libris/internal/library"
)

func (s *Server) handleListBooks(w http.ResponseWriter, r *http.Request) {
	list, err := s.svc.ListBooks(r.Context())
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	if prefersHTML(r) {
		s.renderPage(w, r, "books.html", list)
		return
	}
	s.writeJSON(w, r, http.StatusOK, list)
}

func (s *Server) handleBooksPage(w http.ResponseWriter, r *http.Request) {
	list, err := s.svc.ListBooks(r.Context())
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	s.renderPage(w, r, "books.html", list)
}

func (s *Server) handleGetBook(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "Book")
	if !ok {
		return
	}
	book, err := s.svc.GetBook(r.Context(), id)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	if prefersHTML(r) {
		s.renderPage(w, r, "book.html", book)
		return
	}
	s.writeJSON(w, r, http.StatusOK, book)
}

func (s *Server) handleAddBook(w http.ResponseWriter, r *http.Request) {
	var in library.NewBook
	if !s.decodeBody(w, r, &in) {
		return
	}
	resp, err := s.svc.AddBook(r.Context(), in)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, resp)
}

func (s *Server) handleUpdateBook(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "Book")
	if !ok {
		return
	}
	var patch library.BookPatch
	if !s.decodeBody(w, r, &patch) {
		return
	}
	resp, err := s.svc.UpdateBook(r.Context(), id, patch)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, resp)
}

func (s *Server) handleDeleteBook(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "Book")
	if !ok {
		return
	}
	resp, err := s.svc.DeleteBook(r.Context(), id)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, resp)
}
