package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"simplecrud/internal/domain"
	"simplecrud/internal/utils"
)

type parserFunc func(string) (domain.Actor, error)

func (f parserFunc) ParseToken(raw string) (domain.Actor, error) { return f(raw) }

func newEngine(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID())
	r.Use(handlers...)
	return r
}

func serve(r *gin.Engine, method, path string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequestIDPropagates(t *testing.T) {
	r := newEngine()
	var fromCtx string
	r.GET("/", func(c *gin.Context) {
		fromCtx = utils.RequestIDFrom(c.Request.Context())
		c.Status(http.StatusOK)
	})

	w := serve(r, http.MethodGet, "/", map[string]string{RequestIDHeader: "abc-123"})
	if w.Header().Get(RequestIDHeader) != "abc-123" || fromCtx != "abc-123" {
		t.Fatalf("incoming id not kept: header=%q ctx=%q", w.Header().Get(RequestIDHeader), fromCtx)
	}

	w = serve(r, http.MethodGet, "/", nil)
	if len(w.Header().Get(RequestIDHeader)) != 36 {
		t.Fatalf("expected generated uuid, got %q", w.Header().Get(RequestIDHeader))
	}
}

func TestAuthResolvesActor(t *testing.T) {
	parser := parserFunc(func(raw string) (domain.Actor, error) {
		if raw != "good" {
			return domain.Actor{}, domain.UnauthorizedError{Msg: "token tidak valid"}
		}
		return domain.Actor{UserID: 7, Role: "admin"}, nil
	})
	r := newEngine(Auth(parser))
	var actor domain.Actor
	r.GET("/", func(c *gin.Context) {
		actor = domain.ActorFrom(c.Request.Context())
		c.Status(http.StatusOK)
	})

	if w := serve(r, http.MethodGet, "/", nil); w.Code != http.StatusOK || !actor.Anonymous() {
		t.Fatalf("anonymous request: code=%d actor=%+v", w.Code, actor)
	}
	if w := serve(r, http.MethodGet, "/", map[string]string{"Authorization": "Bearer good"}); w.Code != http.StatusOK || actor.UserID != 7 {
		t.Fatalf("valid token: code=%d actor=%+v", w.Code, actor)
	}
	if w := serve(r, http.MethodGet, "/", map[string]string{"Authorization": "Bearer bad"}); w.Code != http.StatusUnauthorized {
		t.Fatalf("invalid token: code=%d", w.Code)
	}
	if w := serve(r, http.MethodGet, "/", map[string]string{"Authorization": "Basic Zm9vOmJhcg=="}); w.Code != http.StatusUnauthorized {
		t.Fatalf("wrong scheme: code=%d", w.Code)
	}
}

func TestRequireRoles(t *testing.T) {
	parser := parserFunc(func(raw string) (domain.Actor, error) {
		if raw == "" {
			return domain.Actor{}, errors.New("empty")
		}
		return domain.Actor{UserID: 1, Role: raw}, nil
	})
	r := newEngine(Auth(parser))
	r.GET("/owners", RequireRoles("owner"), func(c *gin.Context) { c.Status(http.StatusOK) })

	if w := serve(r, http.MethodGet, "/owners", nil); w.Code != http.StatusUnauthorized {
		t.Fatalf("no role: code=%d", w.Code)
	}
	if w := serve(r, http.MethodGet, "/owners", map[string]string{"Authorization": "Bearer admin"}); w.Code != http.StatusForbidden {
		t.Fatalf("admin: code=%d", w.Code)
	}
	if w := serve(r, http.MethodGet, "/owners", map[string]string{"Authorization": "Bearer OWNER"}); w.Code != http.StatusOK {
		t.Fatalf("owner: code=%d", w.Code)
	}
}

func TestRateLimitOnlyThrottlesMutations(t *testing.T) {
	r := newEngine(RateLimit(1, 2))
	ok := func(c *gin.Context) { c.Status(http.StatusOK) }
	r.GET("/", ok)
	r.POST("/", ok)

	for i := 0; i < 5; i++ {
		if w := serve(r, http.MethodGet, "/", nil); w.Code != http.StatusOK {
			t.Fatalf("GET %d throttled", i)
		}
	}
	codes := []int{}
	for i := 0; i < 3; i++ {
		codes = append(codes, serve(r, http.MethodPost, "/", nil).Code)
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusOK || codes[2] != http.StatusTooManyRequests {
		t.Fatalf("POST codes = %v, want burst of 2 then 429", codes)
	}
}

func TestCORSAllowsConfiguredOrigin(t *testing.T) {
	r := newEngine(CORS([]string{"http://localhost:3000"}))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := serve(r, http.MethodGet, "/", map[string]string{"Origin": "http://localhost:3000"})
	if w.Header().Get("Access-Control-Allow-Origin") != "http://localhost:3000" {
		t.Fatalf("allowed origin not echoed: %v", w.Header())
	}
	w = serve(r, http.MethodGet, "/", map[string]string{"Origin": "http://evil.test"})
	if w.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Fatalf("foreign origin allowed")
	}
}

func TestClientLimitersAreBoundedAndExpire(t *testing.T) {
	limiters := newClientLimiters(1, 1, 2, time.Hour)
	first := limiters.get("10.0.0.1")
	if !first.Allow() {
		t.Fatalf("fresh limiter denied")
	}
	if limiters.get("10.0.0.1") != first {
		t.Fatalf("limiter not reused for the same client")
	}
	limiters.get("10.0.0.2")
	limiters.get("10.0.0.3")
	if n := limiters.cache.Len(); n != 2 {
		t.Fatalf("tracked %d clients, want 2", n)
	}
	if again := limiters.get("10.0.0.1"); again == first || !again.Allow() {
		t.Fatalf("evicted client kept its drained limiter")
	}

	expiring := newClientLimiters(1, 1, 10, 20*time.Millisecond)
	drained := expiring.get("10.0.0.9")
	drained.Allow()
	time.Sleep(60 * time.Millisecond)
	if fresh := expiring.get("10.0.0.9"); fresh == drained {
		t.Fatalf("client kept its limiter past the ttl")
	}
}
