package domain

import (
	"reflect"
	"testing"

	convdomain "github.com/luizpibo/WorkHub-AI/internal/conversations/domain"
)

func TestAssess(t *testing.T) {
	tests := []struct {
		name      string
		stage     convdomain.FunnelStage
		reason    string
		wantStage Stage
		wantScore int
	}{
		{"negotiation ready to close", convdomain.StageNegotiation, "cliente pronto para assinar", StageHot, 80},
		{"negotiation wants to close deal", convdomain.StageNegotiation, "quer FECHAR o plano anual", StageHot, 80},
		{"closed_won with closing signal", convdomain.StageClosedWon, "Pronto, so falta o contrato", StageHot, 80},
		{"negotiation without signal", convdomain.StageNegotiation, "pediu desconto alto", StageQualified, 70},
		{"consideration", convdomain.StageConsideration, "comparando com concorrente", StageWarm, 60},
		{"interest", convdomain.StageInterest, "primeiras perguntas", StageWarm, 50},
		{"awareness", convdomain.StageAwareness, "", StageWarm, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Assess(tt.stage, tt.reason)
			if got.Stage != tt.wantStage || got.Score != tt.wantScore {
				t.Errorf("Assess(%s, %q) = %s/%d, want %s/%d",
					tt.stage, tt.reason, got.Stage, got.Score, tt.wantStage, tt.wantScore)
			}
			if got.NextAction == "" {
				t.Error("Assess() returned empty next action")
			}
		})
	}
}

func TestAssessHotScoreMeetsFloor(t *testing.T) {
	got := Assess(convdomain.StageNegotiation, "pronto para fechar")
	if got.Stage != StageHot || got.Score < 80 {
		t.Fatalf("Assess() = %s/%d, want hot with score >= 80", got.Stage, got.Score)
	}
}

func TestClampScore(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{-10, 0},
		{0, 0},
		{55, 55},
		{100, 100},
		{140, 100},
	}
	for _, tt := range tests {
		if got := ClampScore(tt.in); got != tt.want {
			t.Errorf("ClampScore(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestMergeObjections(t *testing.T) {
	got := MergeObjections(
		[]string{"preco alto", "sem integracao"},
		[]string{"preco alto", "  ", "contrato longo"},
	)
	want := []string{"preco alto", "sem integracao", "contrato longo"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("MergeObjections() = %v, want %v", got, want)
	}
}
