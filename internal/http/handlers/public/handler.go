package public

import "github.com/fixmore/mall/internal/provider"

// Handler serves the storefront and buyer APIs.
type Handler struct {
	*provider.Container
}

// New creates the storefront handler.
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
