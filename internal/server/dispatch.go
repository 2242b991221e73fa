package server

import "net/http"

type entityRoutes struct {
	update   http.HandlerFunc
	delete   http.HandlerFunc
	returner http.HandlerFunc
}

const (
	entityBook = iota
	entityUser
	entityLoan
)

func (s *Server) entityRoutes(kind int) entityRoutes {
	switch kind {
	case entityUser:
		return entityRoutes{update: s.handleUpdateUser, delete: s.handleDeleteUser}
	case entityLoan:
		return entityRoutes{update: s.handleUpdateLoan, delete: s.handleDeleteLoan, returner: s.handleReturnLoan}
	default:
		return entityRoutes{update: s.handleUpdateBook, delete: s.handleDeleteBook}
	}
}

// dispatch serves the two-segment PUT routes, which cannot be registered
// separately because /{id}/update and /update/{id} overlap:
//
//	PUT /{plural}/update/{id}
//	PUT /{plural}/{id}/update | /{id}/edit
//	PUT /{plural}/{id}/delete
//	PUT /loans/{id}/return
func (s *Server) dispatch(kind int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		e := s.entityRoutes(kind)
		first, second := r.PathValue("first"), r.PathValue("second")

		if first == "update" {
			if _, ok := parseID(second); ok {
				r.SetPathValue("id", second)
				e.update(w, r)
				return
			}
		}

		r.SetPathValue("id", first)
		switch second {
		case "update", "edit":
			e.update(w, r)
		case "delete":
			e.delete(w, r)
		case "return":
			if e.returner != nil {
				e.returner(w, r)
				return
			}
			s.writeError(w, r, http.StatusNotFound, "Not found", "")
		default:
			s.writeError(w, r, http.StatusNotFound, "Not found", "")
		}
	}
}
