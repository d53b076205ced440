package domain

import (
	"strings"

	convdomain "github.com/luizpibo/WorkHub-AI/internal/conversations/domain"
)

// Assessment is the scoring verdict for one handoff.
type Assessment struct {
	Stage      Stage
	Score      int
	NextAction string
}

// closingSignals are reason fragments that mark a buyer ready to close.
// The match is a case-insensitive substring check over the handoff reason.
var closingSignals = []string{"pronto", "fechar"}

// Assess derives a lead stage and score from the conversation's funnel
// stage and the handoff reason. It is a pure function; merging with an
// existing lead (max score, overwritten stage) happens at the upsert.
func Assess(stage convdomain.FunnelStage, reason string) Assessment {
	switch stage {
	case convdomain.StageNegotiation, convdomain.StageClosedWon:
		if containsClosingSignal(reason) {
			return Assessment{Stage: StageHot, Score: 80, NextAction: "fechar a venda imediatamente"}
		}
		return Assessment{Stage: StageQualified, Score: 70, NextAction: "enviar proposta e acompanhar de perto"}
	case convdomain.StageConsideration:
		return Assessment{Stage: StageWarm, Score: 60, NextAction: "apresentar planos e responder objecoes"}
	default:
		return Assessment{Stage: StageWarm, Score: 50, NextAction: "entender a necessidade do cliente"}
	}
}

func containsClosingSignal(reason string) bool {
	lowered := strings.ToLower(reason)
	for _, signal := range closingSignals {
		if strings.Contains(lowered, signal) {
			return true
		}
	}
	return false
}

// ClampScore bounds a score to the valid [0,100] range.
func ClampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// MergeObjections appends the new tags to the existing set, de-duplicating
// by exact string equality and preserving first-seen order.
func MergeObjections(existing, incoming []string) []string {
	seen := make(map[string]struct{}, len(existing)+len(incoming))
	out := make([]string, 0, len(existing)+len(incoming))
	for _, tag := range existing {
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	for _, tag := range incoming {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}
