package authz

import (
	"fmt"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func newAuthzService(t *testing.T) *Service {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	svc, err := NewService(db)
	if err != nil {
		t.Fatalf("new authz service failed: %v", err)
	}
	return svc
}

func TestEnforceAdminMatchesRoutePattern(t *testing.T) {
	svc := newAuthzService(t)
	if err := svc.GrantRolePolicy("catalog", "/admin/products/:id", "PUT"); err != nil {
		t.Fatalf("grant policy failed: %v", err)
	}
	if err := svc.SetAdminRoles(7, []string{"catalog"}); err != nil {
		t.Fatalf("assign role failed: %v", err)
	}

	allow, err := svc.EnforceAdmin(7, "/api/v1/admin/products/15", "put")
	if err != nil {
		t.Fatalf("enforce failed: %v", err)
	}
	if !allow {
		t.Fatalf("catalog role should update products")
	}

	allow, err = svc.EnforceAdmin(7, "/api/v1/admin/products/15", "DELETE")
	if err != nil {
		t.Fatalf("enforce failed: %v", err)
	}
	if allow {
		t.Fatalf("catalog role must not delete products")
	}

	allow, err = svc.EnforceAdmin(8, "/api/v1/admin/products/15", "PUT")
	if err != nil {
		t.Fatalf("enforce failed: %v", err)
	}
	if allow {
		t.Fatalf("admin without the role must be denied")
	}
}

func TestSetAdminRolesReplacesAssignment(t *testing.T) {
	svc := newAuthzService(t)
	if err := svc.GrantRolePolicy("catalog", "/admin/products", "GET"); err != nil {
		t.Fatalf("grant catalog policy failed: %v", err)
	}
	if err := svc.GrantRolePolicy("payments_desk", "/admin/payments", "GET"); err != nil {
		t.Fatalf("grant payments policy failed: %v", err)
	}

	if err := svc.SetAdminRoles(4, []string{"catalog"}); err != nil {
		t.Fatalf("first assignment failed: %v", err)
	}
	if err := svc.SetAdminRoles(4, []string{"payments_desk"}); err != nil {
		t.Fatalf("second assignment failed: %v", err)
	}

	roles, err := svc.GetAdminRoles(4)
	if err != nil {
		t.Fatalf("get roles failed: %v", err)
	}
	if len(roles) != 1 || roles[0] != "role:payments_desk" {
		t.Fatalf("assignment should be replaced, got %v", roles)
	}

	if allow, _ := svc.EnforceAdmin(4, "/admin/products", "GET"); allow {
		t.Fatalf("permission from the replaced role should be gone")
	}
	if allow, _ := svc.EnforceAdmin(4, "/admin/payments", "GET"); !allow {
		t.Fatalf("permission from the new role should hold")
	}
}

func TestRevokeRolePolicy(t *testing.T) {
	svc := newAuthzService(t)
	if err := svc.GrantRolePolicy("catalog", "/admin/coupons", "POST"); err != nil {
		t.Fatalf("grant failed: %v", err)
	}
	if err := svc.SetAdminRoles(5, []string{"catalog"}); err != nil {
		t.Fatalf("assign failed: %v", err)
	}

	if allow, _ := svc.EnforceAdmin(5, "/admin/coupons", "POST"); !allow {
		t.Fatalf("granted policy should allow")
	}
	if err := svc.RevokeRolePolicy("catalog", "/admin/coupons", "POST"); err != nil {
		t.Fatalf("revoke failed: %v", err)
	}
	if allow, _ := svc.EnforceAdmin(5, "/admin/coupons", "POST"); allow {
		t.Fatalf("revoked policy should deny")
	}
}

func TestNormalizeObjectStripsAPIPrefix(t *testing.T) {
	cases := map[string]string{
		"/api/v1/admin/orders/:id/ship": "/admin/orders/:id/ship",
		"/admin/inventory-logs":         "/admin/inventory-logs",
		"admin/settings/shop":           "/admin/settings/shop",
		"/api/v1":                       "/",
		"":                              "/",
	}
	for in, want := range cases {
		if got := NormalizeObject(in); got != want {
			t.Fatalf("NormalizeObject(%q) want %q got %q", in, want, got)
		}
	}
}

func TestBootstrapBuiltinRoles(t *testing.T) {
	svc := newAuthzService(t)
	if err := svc.BootstrapBuiltinRoles(); err != nil {
		t.Fatalf("bootstrap failed: %v", err)
	}
	// Idempotent on a second run.
	if err := svc.BootstrapBuiltinRoles(); err != nil {
		t.Fatalf("second bootstrap failed: %v", err)
	}

	roles, err := svc.ListRoles()
	if err != nil {
		t.Fatalf("list roles failed: %v", err)
	}
	seen := map[string]bool{}
	for _, role := range roles {
		seen[role] = true
	}
	for _, want := range []string{"role:readonly_auditor", "role:operations", "role:support", "role:finance"} {
		if !seen[want] {
			t.Fatalf("builtin role %s missing from %v", want, roles)
		}
	}

	if err := svc.SetAdminRoles(9, []string{"support"}); err != nil {
		t.Fatalf("assign support failed: %v", err)
	}
	if allow, _ := svc.EnforceAdmin(9, "/admin/orders/31/ship", "POST"); !allow {
		t.Fatalf("support should ship orders")
	}
	if allow, _ := svc.EnforceAdmin(9, "/admin/products", "GET"); !allow {
		t.Fatalf("support should inherit auditor reads")
	}
	if allow, _ := svc.EnforceAdmin(9, "/admin/products", "POST"); allow {
		t.Fatalf("support must not create products")
	}

	if err := svc.SetAdminRoles(10, []string{"finance"}); err != nil {
		t.Fatalf("assign finance failed: %v", err)
	}
	if allow, _ := svc.EnforceAdmin(10, "/admin/payments/3", "GET"); !allow {
		t.Fatalf("finance should read payments")
	}
	if allow, _ := svc.EnforceAdmin(10, "/admin/settings/shop", "PUT"); allow {
		t.Fatalf("finance must not change settings")
	}
}
