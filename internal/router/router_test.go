package router

import (
	"fmt"
	"strings"
	"testing"

	"github.com/fixmore/mall/internal/config"
	"github.com/fixmore/mall/internal/models"
	"github.com/fixmore/mall/internal/provider"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func TestSetupRouterRegistersAPISurface(t *testing.T) {
	gin.SetMode(gin.TestMode)
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	previous := models.DB
	models.DB = db
	t.Cleanup(func() {
		models.DB = previous
	})
	if err := models.AutoMigrate(); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}

	cfg := &config.Config{}
	cfg.Server.Mode = gin.TestMode
	cfg.JWT.SecretKey = "test-secret"

	engine := SetupRouter(cfg, provider.NewContainer(cfg))

	registered := map[string]bool{}
	for _, route := range engine.Routes() {
		registered[route.Method+" "+route.Path] = true
	}

	for _, route := range []string{
		"POST /api/v1/auth/register",
		"POST /api/v1/auth/login",
		"GET /api/v1/public/products",
		"GET /api/v1/public/products/:id",
		"GET /api/v1/public/products/categories",
		"GET /api/v1/public/payments/methods",
		"GET /api/v1/cart",
		"POST /api/v1/cart",
		"PUT /api/v1/cart/:product_id",
		"DELETE /api/v1/cart/:product_id",
		"POST /api/v1/orders",
		"POST /api/v1/orders/:id/cancel",
		"GET /api/v1/orders/:id/track",
		"POST /api/v1/payments/mpesa",
		"POST /api/v1/payments/mpesa/callback",
		"POST /api/v1/payments/stripe/create-payment-intent",
		"POST /api/v1/payments/stripe/webhook",
		"GET /health",
	} {
		if !registered[route] {
			t.Fatalf("route %s not registered", route)
		}
	}
}
