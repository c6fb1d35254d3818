package api

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	intconfig "simplecrud/internal/config"
	intdb "simplecrud/internal/db"
	"simplecrud/internal/events"
)

type testServer struct {
	t      *testing.T
	engine *gin.Engine
	db     *sql.DB
	bus    *events.Bus
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctx := context.Background()

	db, err := intconfig.OpenDB(ctx, intconfig.DriverSQLite, "file::memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	_, err = intdb.Migrate(ctx, db, intdb.SQLite)
	require.NoError(t, err)

	hash, err := bcrypt.GenerateFromPassword([]byte("rahasia123"), bcrypt.MinCost)
	require.NoError(t, err)
	for _, u := range [][2]string{{"owner", "owner"}, {"admin", "admin"}, {"biasa", "user"}} {
		_, err = db.ExecContext(ctx,
			`INSERT INTO users (name, username, email, phone, password_hash, role, status) VALUES (?, ?, ?, NULL, ?, ?, 'active')`,
			u[0], u[0], u[0]+"@example.com", string(hash), u[1])
		require.NoError(t, err)
	}

	env := intconfig.Env{
		AppAddr:     ":0",
		DBDriver:    intconfig.DriverSQLite,
		JWTSecret:   "test-secret",
		CORSOrigins: []string{"http://localhost:3000"},
		ListLimit:   20,
	}
	bus := events.NewBus()
	bus.Subscribe(events.AuditListener())
	r := NewRouter(Deps{Env: env, DB: db, Events: bus, BcryptCost: bcrypt.MinCost})
	return &testServer{t: t, engine: r, db: db, bus: bus}
}

func (s *testServer) do(method, path, token string, body any) *httptest.ResponseRecorder {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func (s *testServer) login(username string) string {
	s.t.Helper()
	w := s.do(http.MethodPost, "/api/auth/login", "", map[string]string{"email": username, "password": "rahasia123"})
	require.Equal(s.t, http.StatusOK, w.Code, w.Body.String())
	var out struct {
		Token string `json:"token"`
	}
	require.NoError(s.t, json.Unmarshal(w.Body.Bytes(), &out))
	return out.Token
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	out := map[string]any{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestVehicleRoundTrip(t *testing.T) {
	s := newTestServer(t)
	owner := s.login("owner")

	w := s.do(http.MethodPost, "/api/vehicles", owner, map[string]any{
		"vehicleCode": "V-01", "plateNumber": "B 1234 XY", "color": "Putih", "kilometers": 1500, "lastService": "2024-03-01",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode(t, w)
	id := fmt.Sprint(created["id"])
	assert.NotEqual(t, "0", id)

	w = s.do(http.MethodGet, "/api/vehicles/"+id, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, created, decode(t, w))

	w = s.do(http.MethodPut, "/api/vehicles/"+id, owner, map[string]any{"vehicleCode": "V-01", "plateNumber": "B 1234 XY", "color": "Hitam"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := decode(t, w)
	assert.Equal(t, "Hitam", updated["color"])
	_, hasKm := updated["kilometers"]
	assert.False(t, hasKm, "PUT replaces the whole resource")

	w = s.do(http.MethodDelete, "/api/vehicles/"+id, owner, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.Bytes())

	w = s.do(http.MethodGet, "/api/vehicles/"+id, "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "not_found", decode(t, w)["code"])
}

func TestVehicleListPagination(t *testing.T) {
	s := newTestServer(t)
	owner := s.login("owner")
	for i := 1; i <= 12; i++ {
		w := s.do(http.MethodPost, "/api/vehicles", owner, map[string]any{
			"vehicleCode": fmt.Sprintf("V-%02d", i), "plateNumber": fmt.Sprintf("B %d", i),
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}

	w := s.do(http.MethodGet, "/api/vehicles?limit=5&page=2&orderBy=id&order=asc", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var page struct {
		Limit       int              `json:"limit"`
		MaxResults  int              `json:"maxResults"`
		Pages       int              `json:"pages"`
		CurrentPage int              `json:"currentPage"`
		Results     []map[string]any `json:"results"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.Equal(t, 5, page.Limit)
	assert.Equal(t, 12, page.MaxResults)
	assert.Equal(t, 3, page.Pages)
	assert.Equal(t, 2, page.CurrentPage)
	require.Len(t, page.Results, 5)
	for i, item := range page.Results {
		assert.Equal(t, fmt.Sprintf("V-%02d", i+6), item["vehicleCode"])
		_, hasColor := item["color"]
		assert.False(t, hasColor, "list items use the summary view")
	}

	w = s.do(http.MethodGet, "/api/vehicles?vehicleCode=V-1&orderBy=vehicleCode&order=desc", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.Equal(t, 3, page.MaxResults)
	assert.Equal(t, "V-12", page.Results[0]["vehicleCode"])

	w = s.do(http.MethodGet, "/api/vehicles?plateNumber=%25", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.Equal(t, 0, page.MaxResults, "percent sign in the filter matches literally")
}

func TestPushdownPaginationMatchesInMemory(t *testing.T) {
	s := newTestServer(t)
	owner := s.login("owner")
	for i := 1; i <= 7; i++ {
		s.do(http.MethodPost, "/api/drivers", owner, map[string]any{"name": fmt.Sprintf("Driver %d", i), "phone": "0800"})
	}
	env := intconfig.Env{AppAddr: ":0", DBDriver: intconfig.DriverSQLite, JWTSecret: "test-secret", ListLimit: 3, ListPushdown: true}
	pushdown := NewRouter(Deps{Env: env, DB: s.db})

	req := httptest.NewRequest(http.MethodGet, "/api/drivers?page=3", nil)
	w := httptest.NewRecorder()
	pushdown.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.EqualValues(t, 7, body["maxResults"])
	assert.EqualValues(t, 3, body["pages"])
	assert.Len(t, body["results"], 1)
}

func TestListLargestPageIsEmpty(t *testing.T) {
	s := newTestServer(t)
	owner := s.login("owner")
	for i := 1; i <= 3; i++ {
		w := s.do(http.MethodPost, "/api/vehicles", owner, map[string]any{
			"vehicleCode": fmt.Sprintf("V-%02d", i), "plateNumber": fmt.Sprintf("B %d", i),
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}

	path := fmt.Sprintf("/api/vehicles?page=%d&limit=20", math.MaxInt64)
	w := s.do(http.MethodGet, path, "", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode(t, w)
	assert.EqualValues(t, 3, body["maxResults"])
	assert.EqualValues(t, 1, body["pages"])
	assert.Empty(t, body["results"])
	assert.NotNil(t, body["results"])

	env := intconfig.Env{AppAddr: ":0", DBDriver: intconfig.DriverSQLite, JWTSecret: "test-secret", ListLimit: 20, ListPushdown: true}
	pushdown := NewRouter(Deps{Env: env, DB: s.db})
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w = httptest.NewRecorder()
	pushdown.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body = decode(t, w)
	assert.EqualValues(t, 3, body["maxResults"])
	assert.Empty(t, body["results"])
}

func TestMutationsRespectCapabilities(t *testing.T) {
	s := newTestServer(t)
	payload := map[string]any{"vehicleCode": "V-1", "plateNumber": "B 1"}

	w := s.do(http.MethodPost, "/api/vehicles", "", payload)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(http.MethodPost, "/api/vehicles", s.login("biasa"), payload)
	assert.Equal(t, http.StatusForbidden, w.Code)

	admin := s.login("admin")
	w = s.do(http.MethodPost, "/api/vehicles", admin, payload)
	require.Equal(t, http.StatusCreated, w.Code)
	id := fmt.Sprint(decode(t, w)["id"])

	w = s.do(http.MethodDelete, "/api/vehicles/"+id, admin, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	var count int
	require.NoError(t, s.db.QueryRow("SELECT COUNT(*) FROM vehicles").Scan(&count))
	assert.Equal(t, 1, count)
}

func TestValidationAndFilterErrors(t *testing.T) {
	s := newTestServer(t)
	owner := s.login("owner")

	w := s.do(http.MethodPost, "/api/vehicles", owner, map[string]any{"vehicleCode": "V-1", "wheels": 4})
	require.Equal(t, http.StatusBadRequest, w.Code)
	body := decode(t, w)
	assert.Equal(t, "validation_error", body["code"])
	fields := body["details"].(map[string]any)["fields"].(map[string]any)
	assert.Contains(t, fields, "wheels")

	w = s.do(http.MethodGet, "/api/vehicles?minKilometers=banyak", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodGet, "/api/vehicles?limit=abc&page=xyz", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestDuplicateIsConflict(t *testing.T) {
	s := newTestServer(t)
	owner := s.login("owner")
	payload := map[string]any{"vehicleCode": "V-1", "plateNumber": "B 1"}

	require.Equal(t, http.StatusCreated, s.do(http.MethodPost, "/api/vehicles", owner, payload).Code)
	assert.Equal(t, http.StatusConflict, s.do(http.MethodPost, "/api/vehicles", owner, payload).Code)
}

func TestFormEndpoints(t *testing.T) {
	s := newTestServer(t)
	owner := s.login("owner")

	w := s.do(http.MethodGet, "/api/vehicles/new?color=Putih", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	view := decode(t, w)
	assert.Equal(t, "POST", view["method"])
	assert.Equal(t, "http://example.com/api/vehicles", view["action"])

	w = s.do(http.MethodPost, "/api/vehicles", owner, map[string]any{"vehicleCode": "V-1", "plateNumber": "B 1"})
	id := fmt.Sprint(decode(t, w)["id"])

	w = s.do(http.MethodGet, "/api/vehicles/"+id+"/edit", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	view = decode(t, w)
	assert.Equal(t, "PUT", view["method"])
	assert.Equal(t, "http://example.com/api/vehicles/"+id, view["action"])

	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, "/api/vehicles/999/edit", "", nil).Code)
}

func TestListAsPDF(t *testing.T) {
	s := newTestServer(t)
	w := s.do(http.MethodGet, "/api/users?_format=pdf", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF")))
}

func TestUsersResource(t *testing.T) {
	s := newTestServer(t)
	owner := s.login("owner")

	w := s.do(http.MethodPost, "/api/users", owner, map[string]any{
		"name": "Sari", "username": "sari", "email": "sari@example.com", "password": "rahasia123",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode(t, w)
	_, leaked := created["passwordHash"]
	assert.False(t, leaked)
	assert.Equal(t, "user", created["role"])

	sari := s.login("sari")
	id := fmt.Sprint(created["id"])
	w = s.do(http.MethodPut, "/api/users/"+id, sari, map[string]any{"name": "Sari W", "username": "sari", "email": "sari@example.com"})
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(http.MethodPut, "/api/users/1", sari, map[string]any{"name": "x", "username": "owner", "email": "owner@example.com"})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestAuthAndSystemRoutes(t *testing.T) {
	s := newTestServer(t)

	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodGet, "/api/vehicles", "not-a-token", nil).Code)

	w := s.do(http.MethodPost, "/api/auth/login", "", map[string]string{"email": "owner", "password": "salah"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(http.MethodGet, "/api/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	owner, biasa := s.login("owner"), s.login("biasa")
	for _, path := range []string{"/api/db-check", "/api/routes"} {
		assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodGet, path, "", nil).Code, path)
		assert.Equal(t, http.StatusForbidden, s.do(http.MethodGet, path, biasa, nil).Code, path)
	}

	w = s.do(http.MethodGet, "/api/db-check", owner, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 3, decode(t, w)["users_in_db"])

	w = s.do(http.MethodGet, "/api/routes", s.login("admin"), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(http.MethodGet, "/api/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
