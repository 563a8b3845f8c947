package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestResolveAllowedOrigin(t *testing.T) {
	if got := resolveAllowedOrigin("https://shop.fixmore.co.ke", []string{"*"}, false); got != "*" {
		t.Fatalf("wildcard without credentials want *, got %s", got)
	}
	if got := resolveAllowedOrigin("https://shop.fixmore.co.ke", []string{"*"}, true); got != "https://shop.fixmore.co.ke" {
		t.Fatalf("wildcard with credentials should echo the origin, got %s", got)
	}

	allowList := []string{"https://shop.fixmore.co.ke", "https://admin.fixmore.co.ke"}
	if got := resolveAllowedOrigin("https://admin.fixmore.co.ke", allowList, true); got != "https://admin.fixmore.co.ke" {
		t.Fatalf("listed origin should match, got %s", got)
	}
	if got := resolveAllowedOrigin("https://evil.example.com", allowList, true); got != "" {
		t.Fatalf("unlisted origin should be rejected, got %s", got)
	}
}

func TestRequestIDMiddlewarePropagation(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"request_id": getRequestID(c)})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(requestIDHeader, "mpesa-cb-77")
	r.ServeHTTP(w, req)

	if w.Header().Get(requestIDHeader) != "mpesa-cb-77" {
		t.Fatalf("client request id should round-trip, got %s", w.Header().Get(requestIDHeader))
	}
	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if resp["request_id"] != "mpesa-cb-77" {
		t.Fatalf("handler should see the same request id, got %s", resp["request_id"])
	}
}

func TestRequestIDMiddlewareGeneratesID(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	seen := map[string]bool{}
	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
		id := w.Header().Get(requestIDHeader)
		if id == "" {
			t.Fatalf("request id should be generated when absent")
		}
		if seen[id] {
			t.Fatalf("generated request ids should differ, got %s twice", id)
		}
		seen[id] = true
	}
}

func TestJWTAuthMiddlewareRejectsAnonymous(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(JWTAuthMiddleware("", nil))
	r.GET("/orders", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/orders", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("envelope responses keep HTTP 200, got %d", w.Code)
	}
	var resp struct {
		StatusCode int `json:"status_code"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if resp.StatusCode != 401 {
		t.Fatalf("anonymous request want business code 401 got %d", resp.StatusCode)
	}
}

func TestJWTAuthMiddlewareRejectsGarbageToken(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(JWTAuthMiddleware("signing-key-for-tests", nil))
	r.GET("/orders", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/orders", nil)
	req.Header.Set("Authorization", "Bearer not.a.jwt")
	r.ServeHTTP(w, req)

	var resp struct {
		StatusCode int `json:"status_code"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if resp.StatusCode != 401 {
		t.Fatalf("garbage token want business code 401 got %d", resp.StatusCode)
	}
}
