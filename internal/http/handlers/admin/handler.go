package admin

import "github.com/fixmore/mall/internal/provider"

// Handler serves the admin dashboard APIs.
type Handler struct {
	*provider.Container
}

// New creates the admin handler.
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
