package http_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	goversion "github.com/caarlos0/go-version"
	"github.com/geocoder89/userroster/internal/domain/user"
	apphttp "github.com/geocoder89/userroster/internal/http"
	"github.com/geocoder89/userroster/internal/http/handlers"
	"github.com/geocoder89/userroster/internal/observability"
	"github.com/geocoder89/userroster/internal/roster"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

func setupRouter(t *testing.T) (*gin.Engine, *roster.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	reg := prometheus.NewRegistry()
	prom := observability.NewProm(reg)
	store := roster.NewStore(prom)

	logger := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
	router := apphttp.NewRouter(logger, apphttp.Deps{
		Env:                "test",
		Store:              store,
		Prom:               prom,
		Gatherer:           reg,
		Version:            goversion.GetVersionInfo(goversion.WithAppDetails("userroster", "test", "")),
		CORSAllowedOrigins: []string{"http://localhost:3000"},
	})

	return router, store
}

func call(t *testing.T, r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var rd io.Reader
	if body != "" {
		rd = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()

	var out T
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("unmarshal: %v body=%s", err, w.Body.String())
	}
	return out
}

func TestRouter_RosterGatedUntilLoaded(t *testing.T) {
	router, store := setupRouter(t)

	w := call(t, router, http.MethodGet, "/roster/users", "")
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("got %d, want 503 while loading", w.Code)
	}
	if !strings.Contains(w.Body.String(), "roster_loading") {
		t.Fatalf("expected roster_loading code, body=%s", w.Body.String())
	}

	w = call(t, router, http.MethodGet, "/roster", "")
	if w.Code != http.StatusOK {
		t.Fatalf("roster view got %d, want 200 while loading", w.Code)
	}
	if view := decode[handlers.RosterView](t, w); view.Status != roster.StatusLoading || view.Count != 0 {
		t.Fatalf("unexpected view while loading: %+v", view)
	}

	if w := call(t, router, http.MethodGet, "/healthz", ""); w.Code != http.StatusOK {
		t.Fatalf("healthz got %d", w.Code)
	}

	store.FailLoad(errors.New("unexpected upstream status: 500"))

	w = call(t, router, http.MethodPost, "/roster/users", "")
	if w.Code != http.StatusServiceUnavailable || !strings.Contains(w.Body.String(), "roster_unavailable") {
		t.Fatalf("got %d body=%s, want 503 roster_unavailable", w.Code, w.Body.String())
	}

	w = call(t, router, http.MethodGet, "/readyz", "")
	if w.Code != http.StatusServiceUnavailable || !strings.Contains(w.Body.String(), "upstream status: 500") {
		t.Fatalf("readyz got %d body=%s", w.Code, w.Body.String())
	}

	view := decode[handlers.RosterView](t, call(t, router, http.MethodGet, "/roster", ""))
	if view.Status != roster.StatusFailed || !strings.Contains(view.Error, "upstream status: 500") {
		t.Fatalf("expected failed view with reason, got %+v", view)
	}
}

func TestRouter_EditFlow(t *testing.T) {
	router, store := setupRouter(t)
	store.ApplyLoad([]user.User{
		{ID: 1, Name: "Ann", Address: user.Address{City: "Gwenborough", Geo: &user.Geo{Lat: "1", Lng: "2"}}},
		{ID: 2, Name: "Ervin"},
	})

	if w := call(t, router, http.MethodGet, "/readyz", ""); w.Code != http.StatusOK {
		t.Fatalf("readyz got %d", w.Code)
	}

	w := call(t, router, http.MethodPost, "/roster/edit", `{"id": 1}`)
	if w.Code != http.StatusOK {
		t.Fatalf("begin edit got %d body=%s", w.Code, w.Body.String())
	}

	w = call(t, router, http.MethodPut, "/roster/form/name", `{"value": "Annie"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("set field got %d body=%s", w.Code, w.Body.String())
	}

	w = call(t, router, http.MethodPut, "/roster/edit", "")
	if w.Code != http.StatusOK {
		t.Fatalf("update got %d body=%s", w.Code, w.Body.String())
	}
	updated := decode[user.User](t, w)
	if updated.ID != 1 || updated.Name != "Annie" || updated.Address.City != "Gwenborough" {
		t.Fatalf("unexpected updated user: %+v", updated)
	}
	if updated.Address.Geo == nil {
		t.Fatalf("geo should be preserved by update")
	}

	view := decode[handlers.RosterView](t, call(t, router, http.MethodGet, "/roster", ""))
	if view.EditingID != nil {
		t.Fatalf("expected no active edit, got %d", *view.EditingID)
	}
	if view.Count != 2 || view.Items[0].Name != "Annie" || view.Items[1].Name != "Ervin" {
		t.Fatalf("unexpected roster: %+v", view.Items)
	}
	if view.Form != (user.Form{}) || view.FormDirty {
		t.Fatalf("expected empty form, got %+v dirty=%v", view.Form, view.FormDirty)
	}

	w = call(t, router, http.MethodPut, "/roster/edit", "")
	if w.Code != http.StatusConflict {
		t.Fatalf("second update got %d, want 409", w.Code)
	}
}

func TestRouter_AddDeleteCancel(t *testing.T) {
	router, store := setupRouter(t)
	store.ApplyLoad([]user.User{{ID: 1, Name: "Ann"}, {ID: 2, Name: "Ervin"}})

	call(t, router, http.MethodPut, "/roster/form/name", `{"value": "Dana"}`)
	call(t, router, http.MethodPut, "/roster/form/companyName", `{"value": "Acme"}`)

	w := call(t, router, http.MethodPost, "/roster/users", "")
	if w.Code != http.StatusCreated {
		t.Fatalf("add got %d body=%s", w.Code, w.Body.String())
	}
	added := decode[user.User](t, w)
	if added.ID != 3 || added.Name != "Dana" || added.Company.Name != "Acme" {
		t.Fatalf("unexpected added user: %+v", added)
	}

	// delete the user being edited: the edit ends, the form stays
	call(t, router, http.MethodPost, "/roster/edit", `{"id": 2}`)
	if w := call(t, router, http.MethodDelete, "/roster/users/2", ""); w.Code != http.StatusNoContent {
		t.Fatalf("delete got %d", w.Code)
	}

	snap := store.Snapshot()
	if snap.EditingID != nil {
		t.Fatalf("expected editing pointer cleared after delete")
	}
	if snap.Form.Name != "Ervin" {
		t.Fatalf("form should be kept, got %+v", snap.Form)
	}
	if len(snap.Users) != 2 || snap.Users[0].ID != 1 || snap.Users[1].ID != 3 {
		t.Fatalf("unexpected users after delete: %+v", snap.Users)
	}

	// ids keep growing after a delete
	added = decode[user.User](t, call(t, router, http.MethodPost, "/roster/users", ""))
	if added.ID != 4 {
		t.Fatalf("expected id 4, got %d", added.ID)
	}

	call(t, router, http.MethodPost, "/roster/edit", `{"id": 1}`)
	if w := call(t, router, http.MethodDelete, "/roster/edit", ""); w.Code != http.StatusNoContent {
		t.Fatalf("cancel got %d", w.Code)
	}
	form := decode[user.Form](t, call(t, router, http.MethodGet, "/roster/form", ""))
	if form.Name != "Ann" {
		t.Fatalf("cancel should keep form values, got %+v", form)
	}
}

func TestRouter_RequireJSONOnBodies(t *testing.T) {
	router, store := setupRouter(t)
	store.ApplyLoad(nil)

	req := httptest.NewRequest(http.MethodPut, "/roster/form/name", strings.NewReader("value=x"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("got %d, want 415", w.Code)
	}
}

func TestRouter_MetricsVersionAndHeaders(t *testing.T) {
	router, store := setupRouter(t)
	store.ApplyLoad([]user.User{{ID: 1}})

	call(t, router, http.MethodPost, "/roster/users", "")

	w := call(t, router, http.MethodGet, "/metrics", "")
	if w.Code != http.StatusOK {
		t.Fatalf("metrics got %d", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, `userroster_roster_mutations_total{op="add_user",result="ok"} 1`) {
		t.Fatalf("missing mutation metric in:\n%s", body)
	}
	if !strings.Contains(body, "userroster_roster_users 2") {
		t.Fatalf("missing roster size metric in:\n%s", body)
	}

	w = call(t, router, http.MethodGet, "/version", "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"name":"userroster"`) {
		t.Fatalf("version got %d body=%s", w.Code, w.Body.String())
	}
	if w.Header().Get("X-Request-Id") == "" {
		t.Fatalf("expected X-Request-Id header")
	}
	if w.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Fatalf("expected security headers")
	}

	req := httptest.NewRequest(http.MethodOptions, "/roster", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent || rec.Header().Get("Access-Control-Allow-Origin") != "http://localhost:3000" {
		t.Fatalf("preflight got %d headers=%v", rec.Code, rec.Header())
	}
}

func TestRouter_OversizeBodyRejected(t *testing.T) {
	router, store := setupRouter(t)
	store.ApplyLoad(nil)

	body := `{"value": "` + strings.Repeat("x", 2<<20) + `"}`
	w := call(t, router, http.MethodPut, "/roster/form/name", body)

	if w.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("got %d, want 413", w.Code)
	}
	if store.Form().Name != "" {
		t.Fatalf("form should be untouched")
	}
}
