package server

import (
	"net/http"
	"strconv"
	"strings"

	"libris/internal/library"
)

func (s *Server) loanFilter(w http.ResponseWriter, r *http.Request) (library.LoanFilter, bool) {
	var filter library.LoanFilter
	query := r.URL.Query()
	if raw := strings.TrimSpace(query.Get("returned")); raw != "" {
		returned, err := strconv.ParseBool(raw)
		if err != nil {
			s.writeError(w, r, http.StatusBadRequest, "returned must be true or false", library.CodeInvalidField)
			return filter, false
		}
		filter.Returned = &returned
	}
	for _, param := range []struct {
		name string
		dst  **int64
	}{
		{"book_id", &filter.BookID},
		{"user_id", &filter.UserID},
	} {
		raw := strings.TrimSpace(query.Get(param.name))
		if raw == "" {
			continue
		}
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			s.writeError(w, r, http.StatusBadRequest, param.name+" must be an integer", library.CodeInvalidField)
			return filter, false
		}
		*param.dst = &id
	}
	return filter, true
}

func (s *Server) handleListLoans(w http.ResponseWriter, r *http.Request) {
	filter, ok := s.loanFilter(w, r)
	if !ok {
		return
	}
	list, err := s.svc.ListLoans(r.Context(), filter)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	if prefersHTML(r) {
		s.renderPage(w, r, "loans.html", list)
		return
	}
	s.writeJSON(w, r, http.StatusOK, list)
}

func (s *Server) handleLoansPage(w http.ResponseWriter, r *http.Request) {
	filter, ok := s.loanFilter(w, r)
	if !ok {
		return
	}
	list, err := s.svc.ListLoans(r.Context(), filter)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	s.renderPage(w, r, "loans.html", list)
}

func (s *Server) handleGetLoan(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "Loan")
	if !ok {
		return
	}
	loan, err := s.svc.GetLoan(r.Context(), id)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	if prefersHTML(r) {
		s.renderPage(w, r, "loan.html", loan)
		return
	}
	s.writeJSON(w, r, http.StatusOK, loan)
}

func (s *Server) handleAddLoan(w http.ResponseWriter, r *http.Request) {
	var in library.NewLoan
	if !s.decodeBody(w, r, &in) {
		return
	}
	resp, err := s.svc.CreateLoan(r.Context(), in)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, resp)
}

func (s *Server) handleUpdateLoan(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "Loan")
	if !ok {
		return
	}
	var patch library.LoanPatch
	if !s.decodeBody(w, r, &patch) {
		return
	}
	resp, err := s.svc.UpdateLoan(r.Context(), id, patch)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, resp)
}

func (s *Server) handleReturnLoan(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "Loan")
	if !ok {
		return
	}
	resp, err := s.svc.ReturnLoan(r.Context(), id)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, resp)
}

func (s *Server) handleDeleteLoan(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "Loan")
	if !ok {
		return
	}
	resp, err := s.svc.DeleteLoan(r.Context(), id)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, resp)
}
