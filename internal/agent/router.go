package agent

import (
	"strings"

	promptdomain "github.com/luizpibo/WorkHub-AI/internal/prompts/domain"
)

// Persona is the agent personality a user is routed to.
type Persona string

const (
	PersonaSales Persona = "sales"
	PersonaAdmin Persona = "admin"
)

// PromptType maps the persona to the prompt template that drives it.
func (p Persona) PromptType() promptdomain.PromptType {
	if p == PersonaAdmin {
		return promptdomain.PromptAdminAgent
	}
	return promptdomain.PromptSalesAgent
}

// defaultAdminKeywords flag a user as admin when their display name contains
// one. Matching is case-insensitive so the cased variants are kept only for
// readability of the default config.
var defaultAdminKeywords = []string{"admin", "ADMIN", "administrador", "Administrador"}

// Router decides which persona handles a user. The decision is recomputed on
// every message, never cached on the user record, so renaming a user changes
// their privilege immediately.
type Router struct{}

func NewRouter() *Router {
	return &Router{}
}

// Select routes by display name: a user whose name contains any admin
// keyword (case-insensitive substring) gets the admin persona. This is a
// deliberately blunt policy carried over from the product's rules; it can
// misfire on names like "Administrative Assistant". An explicit role flag
// was considered and rejected to keep privilege switchable from the chat
// channel itself.
func (r *Router) Select(tenantSettings map[string]any, userName string) Persona {
	lowered := strings.ToLower(userName)
	for _, keyword := range adminKeywords(tenantSettings) {
		if keyword == "" {
			continue
		}
		if strings.Contains(lowered, strings.ToLower(keyword)) {
			return PersonaAdmin
		}
	}
	return PersonaSales
}

// adminKeywords reads the per-tenant override from settings, falling back
// to the defaults. The settings value is a JSON array of strings.
func adminKeywords(settings map[string]any) []string {
	raw, ok := settings["admin_keywords"]
	if !ok {
		return defaultAdminKeywords
	}
	list, ok := raw.([]any)
	if !ok {
		return defaultAdminKeywords
	}
	out := make([]string, 0, len(list))
	for _, item := range list {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return defaultAdminKeywords
	}
	return out
}
