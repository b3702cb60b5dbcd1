package api

import (
	"fmt"

	project "example.com/project"
)

// Handler serves user lookups.
type Handler struct {
	svc *project.UserService
}

// Lookup returns a printable user description.
func (h *Handler) Lookup(id int) string {
	u, err := h.svc.GetUser(id)
	if err != nil {
		return fmt.Sprintf("error: %v", err)
	}
	return u.Name
}
