package agent

import "testing"

func TestRouterSelect(t *testing.T) {
	router := NewRouter()

	tests := []struct {
		name     string
		settings map[string]any
		userName string
		want     Persona
	}{
		{"plain customer", nil, "Joana Lima", PersonaSales},
		{"empty name", nil, "", PersonaSales},
		{"default keyword lowercase", nil, "admin joao", PersonaAdmin},
		{"default keyword embedded", nil, "Carlos Administrador", PersonaAdmin},
		{"case insensitive", nil, "ADMIN", PersonaAdmin},
		{"mixed case substring", nil, "AdMiNistrador Silva", PersonaAdmin},
		{"known false positive stays admin", nil, "Administrative Assistant", PersonaAdmin},
		{
			"tenant override replaces defaults",
			map[string]any{"admin_keywords": []any{"gerente"}},
			"admin joao",
			PersonaSales,
		},
		{
			"tenant override matches",
			map[string]any{"admin_keywords": []any{"gerente"}},
			"Gerente Paula",
			PersonaAdmin,
		},
		{
			"malformed override falls back",
			map[string]any{"admin_keywords": "gerente"},
			"admin joao",
			PersonaAdmin,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := router.Select(tt.settings, tt.userName); got != tt.want {
				t.Errorf("Select(%q) = %s, want %s", tt.userName, got, tt.want)
			}
		})
	}
}

func TestPersonaPromptType(t *testing.T) {
	if got := PersonaSales.PromptType(); got != "sales_agent" {
		t.Errorf("sales prompt type = %s", got)
	}
	if got := PersonaAdmin.PromptType(); got != "admin_agent" {
		t.Errorf("admin prompt type = %s", got)
	}
}
