package agent

import (
	"fmt"
	"strings"

	promptdomain "github.com/luizpibo/WorkHub-AI/internal/prompts/domain"
)

// ContextVars are the per-turn variables interpolated into the system prompt.
type ContextVars struct {
	TenantName     string
	UserName       string
	FunnelStage    string
	ContextSummary string
}

// BuildSystemPrompt assembles the system message from the tenant's active
// prompt template, its knowledge base and the turn's context variables.
// Knowledge goes into the prompt rather than behind a tool so a single
// completion can answer most product questions.
func BuildSystemPrompt(template string, docs []promptdomain.KnowledgeDocument, vars ContextVars) string {
	var b strings.Builder
	b.WriteString(strings.TrimSpace(template))

	b.WriteString("\n\n## Contexto\n")
	if vars.TenantName != "" {
		fmt.Fprintf(&b, "Empresa: %s\n", vars.TenantName)
	}
	if vars.UserName != "" {
		fmt.Fprintf(&b, "Cliente: %s\n", vars.UserName)
	}
	if vars.FunnelStage != "" {
		fmt.Fprintf(&b, "Estagio do funil: %s\n", vars.FunnelStage)
	}
	if vars.ContextSummary != "" {
		fmt.Fprintf(&b, "Resumo da conversa: %s\n", vars.ContextSummary)
	}

	if len(docs) > 0 {
		b.WriteString("\n## Base de conhecimento\n")
		for _, doc := range docs {
			fmt.Fprintf(&b, "\n### %s (%s)\n%s\n", doc.Title, doc.DocumentType, strings.TrimSpace(doc.Content))
		}
	}

	return b.String()
}
