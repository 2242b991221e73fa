package server_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"libris/internal/api"
	"libris/internal/config"
	"libris/internal/library"
	"libris/internal/logging"
	"libris/internal/server"
	"libris/internal/testsupport"
)

type harness struct {
	t       *testing.T
	store   *library.Store
	handler http.Handler
}

func newHarness(t *testing.T, opts ...testsupport.ConfigOption) *harness {
	t.Helper()
	cfg := testsupport.NewConfig(t, opts...)
	store := testsupport.MustOpenStore(t, cfg)
	srv, err := server.New(cfg, api.NewLibraryService(store, logging.NewNop()), logging.NewNop())
	if err != nil {
		t.Fatalf("server.New: %v", err)
	}
	return &harness{t: t, store: store, handler: srv.Handler()}
}

func (h *harness) do(method, path, body string, headers ...string) *httptest.ResponseRecorder {
	h.t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)
	return rec
}

func (h *harness) stock(bookID int64) int {
	h.t.Helper()
	book, err := h.store.GetBook(context.Background(), bookID)
	if err != nil {
		h.t.Fatalf("GetBook: %v", err)
	}
	return book.Stock
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return out
}

func TestLoanIssueScenario(t *testing.T) {
	h := newHarness(t)
	book := testsupport.SeedBook(t, h.store, "Scenario", 1)
	user := testsupport.SeedUser(t, h.store, "Reader")
	if book.ID != 1 || user.ID != 1 {
		t.Fatalf("expected fresh ids, got book %d user %d", book.ID, user.ID)
	}

	body := `{"book_id":1,"user_id":1,"loan_date":20240101,"loan_length":14}`
	rec := h.do(http.MethodPost, "/loans/add", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body)
	}
	resp := decode[api.LoanResponse](t, rec)
	if resp.Loan == nil || resp.Loan.Returned || resp.Loan.LoanLength != 14 {
		t.Fatalf("unexpected loan response %#v", resp)
	}
	if stock := h.stock(1); stock != 0 {
		t.Fatalf("expected stock 0, got %d", stock)
	}

	rec = h.do(http.MethodPost, "/loans/add", body)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body)
	}
	errBody := decode[api.ErrorResponse](t, rec)
	if errBody.Code != library.CodeOutOfStock {
		t.Fatalf("expected OutOfStock, got %#v", errBody)
	}
}

func TestReturnScenario(t *testing.T) {
	h := newHarness(t)
	book := testsupport.SeedBook(t, h.store, "Scenario", 1)
	user := testsupport.SeedUser(t, h.store, "Reader")
	loan := testsupport.SeedLoan(t, h.store, book.ID, user.ID)

	for _, path := range []string{"/loans/%d/update", "/loans/%d/edit", "/loans/update/%d"} {
		rec := h.do(http.MethodPut, fmt.Sprintf(path, loan.ID), `{"returned":true}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d: %s", path, rec.Code, rec.Body)
		}
		if stock := h.stock(book.ID); stock != 1 {
			t.Fatalf("%s: expected stock 1, got %d", path, stock)
		}
	}
}

func TestGetMissingBook(t *testing.T) {
	h := newHarness(t)
	rec := h.do(http.MethodGet, "/books/999", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if got := strings.TrimSpace(rec.Body.String()); got != `{"error":"Book not found"}` {
		t.Fatalf("unexpected body %s", got)
	}

	rec = h.do(http.MethodGet, "/books/abc", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for non-numeric id, got %d", rec.Code)
	}
}

func TestBookRoutes(t *testing.T) {
	h := newHarness(t)

	rec := h.do(http.MethodPost, "/books/add", `{"title":"Dune","author":"Herbert","year_published":1965}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("add: expected 200, got %d: %s", rec.Code, rec.Body)
	}
	added := decode[api.BookResponse](t, rec)
	if added.Message != "Book added successfully" || added.Book == nil || added.Book.Stock != 1 {
		t.Fatalf("unexpected add response %#v", added)
	}
	id := added.Book.ID

	rec = h.do(http.MethodPost, "/books/add", `{"title":"Dune"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("add missing fields: expected 400, got %d", rec.Code)
	}
	if body := decode[api.ErrorResponse](t, rec); body.Code != library.CodeMissingField {
		t.Fatalf("expected MissingField, got %#v", body)
	}

	for _, path := range []string{"/books/%d", "/books/%d/update", "/books/%d/edit", "/books/update/%d"} {
		rec = h.do(http.MethodPut, fmt.Sprintf(path, id), `{"stock":3}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d: %s", path, rec.Code, rec.Body)
		}
	}

	rec = h.do(http.MethodGet, "/books", "")
	list := decode[api.BookList](t, rec)
	if len(list.Books) != 1 || list.Books[0].Stock != 3 || list.Books[0].YearPublished != 1965 {
		t.Fatalf("unexpected list %#v", list)
	}

	rec = h.do(http.MethodPut, fmt.Sprintf("/books/%d", id), `{"title":null}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("null title: expected 400, got %d", rec.Code)
	}

	rec = h.do(http.MethodDelete, fmt.Sprintf("/books/delete/%d", id), "")
	if rec.Code != http.StatusOK {
		t.Fatalf("delete: expected 200, got %d: %s", rec.Code, rec.Body)
	}
	rec = h.do(http.MethodDelete, fmt.Sprintf("/books/%d", id), "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("second delete: expected 404, got %d", rec.Code)
	}
}

func TestUserRoutes(t *testing.T) {
	h := newHarness(t)

	rec := h.do(http.MethodPost, "/users/add", `{"name":"Ann","city":"Oslo","age":0}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("add: expected 200, got %d: %s", rec.Code, rec.Body)
	}
	user := decode[api.UserResponse](t, rec).User

	rec = h.do(http.MethodPut, fmt.Sprintf("/users/%d/edit", user.ID), `{"city":"Bergen"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("edit: expected 200, got %d: %s", rec.Code, rec.Body)
	}

	rec = h.do(http.MethodGet, fmt.Sprintf("/users/%d", user.ID), "")
	got := decode[api.User](t, rec)
	if got.City != "Bergen" || got.Age != 0 || got.Name != "Ann" {
		t.Fatalf("unexpected user %#v", got)
	}

	rec = h.do(http.MethodPut, fmt.Sprintf("/users/%d/delete", user.ID), "")
	if rec.Code != http.StatusOK {
		t.Fatalf("delete: expected 200, got %d: %s", rec.Code, rec.Body)
	}
}

func TestLoanDeleteAliases(t *testing.T) {
	h := newHarness(t)
	book := testsupport.SeedBook(t, h.store, "Aliases", 4)
	user := testsupport.SeedUser(t, h.store, "Reader")

	paths := []struct {
		method string
		path   string
	}{
		{http.MethodPut, "/loans/%d"},
		{http.MethodPut, "/loans/%d/delete"},
		{http.MethodDelete, "/loans/%d"},
		{http.MethodDelete, "/loans/delete/%d"},
	}
	for _, p := range paths {
		loan := testsupport.SeedLoan(t, h.store, book.ID, user.ID)
		rec := h.do(p.method, fmt.Sprintf(p.path, loan.ID), "")
		if rec.Code != http.StatusOK {
			t.Fatalf("%s %s: expected 200, got %d: %s", p.method, p.path, rec.Code, rec.Body)
		}
		if stock := h.stock(book.ID); stock != 4 {
			t.Fatalf("%s %s: expected stock restored to 4, got %d", p.method, p.path, stock)
		}
	}
}

func TestLoanReturnRouteAndFilters(t *testing.T) {
	h := newHarness(t)
	book := testsupport.SeedBook(t, h.store, "Filters", 2)
	user := testsupport.SeedUser(t, h.store, "Reader")
	first := testsupport.SeedLoan(t, h.store, book.ID, user.ID)
	testsupport.SeedLoan(t, h.store, book.ID, user.ID)

	rec := h.do(http.MethodPut, fmt.Sprintf("/loans/%d/return", first.ID), "")
	if rec.Code != http.StatusOK {
		t.Fatalf("return: expected 200, got %d: %s", rec.Code, rec.Body)
	}

	rec = h.do(http.MethodGet, "/loans?returned=false", "")
	list := decode[api.LoanList](t, rec)
	if len(list.Loans) != 1 || list.Loans[0].Returned {
		t.Fatalf("unexpected active loans %#v", list)
	}

	rec = h.do(http.MethodGet, "/loans?returned=maybe", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad filter, got %d", rec.Code)
	}
}

func TestCreateLoanValidationStatuses(t *testing.T) {
	h := newHarness(t)
	book := testsupport.SeedBook(t, h.store, "Validation", 1)
	testsupport.SeedUser(t, h.store, "Reader")

	cases := []struct {
		name   string
		body   string
		status int
	}{
		{"missing", `{"book_id":1}`, http.StatusBadRequest},
		{"malformed", `{"book_id":`, http.StatusBadRequest},
		{"wrong type", `{"book_id":"x","user_id":1,"loan_date":1,"loan_length":1}`, http.StatusBadRequest},
		{"unknown book", `{"book_id":99,"user_id":1,"loan_date":1,"loan_length":1}`, http.StatusNotFound},
		{"too long", `{"book_id":1,"user_id":1,"loan_date":1,"loan_length":366}`, http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := h.do(http.MethodPost, "/loans/add", tc.body)
			if rec.Code != tc.status {
				t.Fatalf("expected %d, got %d: %s", tc.status, rec.Code, rec.Body)
			}
		})
	}
	if stock := h.stock(book.ID); stock != 1 {
		t.Fatalf("failed requests must not change stock, got %d", stock)
	}
}

func TestHTMLNegotiation(t *testing.T) {
	h := newHarness(t)
	testsupport.SeedBook(t, h.store, "<Escaped & Shown>", 1)

	rec := h.do(http.MethodGet, "/books", "", "Accept", "text/html,application/xhtml+xml,*/*;q=0.8")
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Fatalf("expected html, got %q", ct)
	}
	if !strings.Contains(rec.Body.String(), "&lt;Escaped &amp; Shown&gt;") {
		t.Fatalf("expected escaped title in page, got %s", rec.Body)
	}

	rec = h.do(http.MethodGet, "/books", "", "Accept", "application/json, text/html;q=0.5")
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("expected json, got %q", ct)
	}

	for _, path := range []string{"/books/list", "/users/list", "/loans/list"} {
		rec = h.do(http.MethodGet, path, "")
		if rec.Code != http.StatusOK || !strings.HasPrefix(rec.Header().Get("Content-Type"), "text/html") {
			t.Fatalf("%s: expected html page, got %d %q", path, rec.Code, rec.Header().Get("Content-Type"))
		}
	}
}

func TestWrongMethod(t *testing.T) {
	h := newHarness(t)
	rec := h.do(http.MethodGet, "/books/add", "")
	if rec.Code != http.StatusNotFound {
		// GET /books/add resolves to GET /books/{id} with a non-numeric id.
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	rec = h.do(http.MethodPost, "/books", "")
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rec.Code)
	}
}

func TestRequestIDHeader(t *testing.T) {
	h := newHarness(t)
	rec := h.do(http.MethodGet, "/books", "")
	if rec.Header().Get("X-Request-ID") == "" {
		t.Fatal("expected generated request id")
	}
	rec = h.do(http.MethodGet, "/books", "", "X-Request-ID", "trace-42")
	if got := rec.Header().Get("X-Request-ID"); got != "trace-42" {
		t.Fatalf("expected echoed request id, got %q", got)
	}
}

func TestTokenRequiredForMutations(t *testing.T) {
	h := newHarness(t, testsupport.WithAPIToken("s3cret"))

	rec := h.do(http.MethodPost, "/books/add", `{"title":"t","author":"a","year_published":1}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}
	rec = h.do(http.MethodPost, "/books/add", `{"title":"t","author":"a","year_published":1}`, "Authorization", "Bearer wrong")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 with wrong token, got %d", rec.Code)
	}
	rec = h.do(http.MethodPost, "/books/add", `{"title":"t","author":"a","year_published":1}`, "Authorization", "Bearer s3cret")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with token, got %d: %s", rec.Code, rec.Body)
	}
	rec = h.do(http.MethodGet, "/books", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("reads must not require a token, got %d", rec.Code)
	}
}

func TestStatusEndpoint(t *testing.T) {
	h := newHarness(t)
	testsupport.SeedBook(t, h.store, "Counted", 2)

	rec := h.do(http.MethodGet, "/api/status", "")
	status := decode[api.DaemonStatus](t, rec)
	if !status.Running || status.Stats.Books != 1 || status.Stats.CopiesOnShelf != 2 {
		t.Fatalf("unexpected status %#v", status)
	}
	if !status.Health.Healthy {
		t.Fatalf("expected healthy database, got %#v", status.Health)
	}
}

func TestStorageFaultIsHidden(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	srv, err := server.New(cfg, api.NewLibraryService(store, logging.NewNop()), logging.NewNop())
	if err != nil {
		t.Fatalf("server.New: %v", err)
	}
	store.Close()

	req := httptest.NewRequest(http.MethodGet, "/books", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if body := decode[api.ErrorResponse](t, rec); body.Error != "Internal server error" {
		t.Fatalf("expected generic error, got %#v", body)
	}
}

func TestStartServesOnListener(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	srv, err := server.New(cfg, api.NewLibraryService(store, logging.NewNop()), logging.NewNop())
	if err != nil {
		t.Fatalf("server.New: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := srv.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer srv.Stop()

	resp, err := http.Get("http://" + srv.Addr() + "/books")
	if err != nil {
		t.Fatalf("GET /books: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}

func TestNewRequiresService(t *testing.T) {
	cfg := config.Default()
	if _, err := server.New(&cfg, nil, nil); err == nil {
		t.Fatal("expected error without service")
	}
}

func TestLoanMoveAndReturnInOneUpdate(t *testing.T) {
	h := newHarness(t)
	first := testsupport.SeedBook(t, h.store, "First", 1)
	second := testsupport.SeedBook(t, h.store, "Second", 1)
	user := testsupport.SeedUser(t, h.store, "Reader")
	loan := testsupport.SeedLoan(t, h.store, first.ID, user.ID)

	body := fmt.Sprintf(`{"book_id":%d,"returned":true}`, second.ID)
	rec := h.do(http.MethodPut, fmt.Sprintf("/loans/%d/update", loan.ID), body)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body)
	}
	resp := decode[api.LoanResponse](t, rec)
	if resp.Loan == nil || resp.Loan.BookID != second.ID || !resp.Loan.Returned {
		t.Fatalf("unexpected loan response %#v", resp)
	}
	if a, b := h.stock(first.ID), h.stock(second.ID); a != 1 || b != 1 {
		t.Fatalf("expected both books back to 1, got first=%d second=%d", a, b)
	}
}

func TestWrongFieldTypeNamesField(t *testing.T) {
	h := newHarness(t)
	testsupport.SeedBook(t, h.store, "Typed", 1)
	testsupport.SeedUser(t, h.store, "Reader")

	rec := h.do(http.MethodPost, "/loans/add", `{"book_id":1,"user_id":1,"loan_date":20240101,"loan_length":"14"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body)
	}
	errBody := decode[api.ErrorResponse](t, rec)
	if errBody.Code != library.CodeInvalidField || !strings.Contains(errBody.Error, "loan_length") {
		t.Fatalf("expected InvalidField naming loan_length, got %#v", errBody)
	}

	rec = h.do(http.MethodPost, "/loans/add", `[1,2]`)
	if errBody := decode[api.ErrorResponse](t, rec); errBody.Code != "MalformedBody" {
		t.Fatalf("expected MalformedBody for a non-object body, got %#v", errBody)
	}
}
