package gemini

import (
	"context"
	"strings"
	"testing"

	"github.com/oraculx/financewise/internal/core"
)

func TestTrimModelJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "clean array passes through",
			in:   `[{"a":1}]`,
			want: `[{"a":1}]`,
		},
		{
			name: "fenced json array",
			in:   "```json\n[{\"a\":1}]\n```",
			want: `[{"a":1}]`,
		},
		{
			name: "fenced object",
			in:   "```\n{\"summary\":\"ok\"}\n```",
			want: `{"summary":"ok"}`,
		},
		{
			name: "prose around object",
			in:   "Aquí tienes el análisis: {\"summary\":\"ok\"} espero que ayude",
			want: `{"summary":"ok"}`,
		},
		{
			name: "object containing arrays keeps the object",
			in:   "x {\"recommendations\":[\"a\",\"b\"]} y",
			want: `{"recommendations":["a","b"]}`,
		},
		{
			name: "array of objects with prose",
			in:   "resultado:\n[{\"amount\":3.5}]\ngracias",
			want: `[{"amount":3.5}]`,
		},
		{
			name: "whitespace only",
			in:   "   ",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := trimModelJSON(tt.in)
			if got != tt.want {
				t.Errorf("trimModelJSON(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestDecodeAnalysis(t *testing.T) {
	ctx := context.Background()

	t.Run("valid response", func(t *testing.T) {
		raw := `{"summary":"Gastas mucho en café","recommendations":["r1","r2","r3"],"savingsPotential":"50€"}`
		got := decodeAnalysis(ctx, raw)
		if got.Summary != "Gastas mucho en café" {
			t.Errorf("Summary = %q", got.Summary)
		}
		if len(got.Recommendations) != 3 {
			t.Errorf("Recommendations = %v, want 3 entries", got.Recommendations)
		}
		if got.SavingsPotential != "50€" {
			t.Errorf("SavingsPotential = %q", got.SavingsPotential)
		}
	})

	t.Run("fenced response still decodes", func(t *testing.T) {
		raw := "```json\n{\"summary\":\"s\",\"recommendations\":[],\"savingsPotential\":\"0€\"}\n```"
		got := decodeAnalysis(ctx, raw)
		if got.Summary != "s" {
			t.Errorf("Summary = %q, want %q", got.Summary, "s")
		}
	})

	t.Run("malformed response yields fallback", func(t *testing.T) {
		got := decodeAnalysis(ctx, "lo siento, no puedo")
		want := core.FallbackAnalysis()
		if got.Summary != want.Summary || got.SavingsPotential != want.SavingsPotential {
			t.Errorf("decodeAnalysis(garbage) = %+v, want fallback %+v", got, want)
		}
	})

	t.Run("empty response yields fallback", func(t *testing.T) {
		got := decodeAnalysis(ctx, "")
		if got.Summary != core.FallbackAnalysis().Summary {
			t.Errorf("decodeAnalysis(empty) = %+v, want fallback", got)
		}
	})
}

func TestDecodeRecords(t *testing.T) {
	ctx := context.Background()

	t.Run("valid array", func(t *testing.T) {
		raw := `[{"description":"Súper","amount":42.1,"category":"Alimentación","type":"expense","date":"2024-01-10"}]`
		got := decodeRecords(ctx, raw)
		if len(got) != 1 {
			t.Fatalf("len = %d, want 1", len(got))
		}
		if got[0].Description != "Súper" || got[0].Amount != 42.1 || got[0].Category != "Alimentación" {
			t.Errorf("record = %+v", got[0])
		}
	})

	t.Run("empty array", func(t *testing.T) {
		got := decodeRecords(ctx, "[]")
		if len(got) != 0 {
			t.Errorf("len = %d, want 0", len(got))
		}
	})

	t.Run("missing fields decode to zero values", func(t *testing.T) {
		got := decodeRecords(ctx, `[{"description":"Algo"}]`)
		if len(got) != 1 || got[0].Amount != 0 || got[0].Type != "" {
			t.Errorf("records = %+v", got)
		}
	})

	t.Run("malformed response yields empty list", func(t *testing.T) {
		got := decodeRecords(ctx, "no pude leer el archivo")
		if got == nil || len(got) != 0 {
			t.Errorf("decodeRecords(garbage) = %v, want empty non-nil list", got)
		}
	})
}

func TestBuildInsightsPrompt(t *testing.T) {
	txs := []core.Transaction{
		{Description: "Café", Amount: 3.5, Category: core.Food, Type: core.Expense, Date: "2024-01-15"},
		{Description: "Nómina", Amount: 1200, Category: core.Other, Type: core.Income, Date: "2024-01-01"},
	}
	got := buildInsightsPrompt(txs)

	for _, want := range []string{
		"2024-01-15: Café (Alimentación) - -3.5€",
		"2024-01-01: Nómina (Otros) - +1200€",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("prompt missing line %q in:\n%s", want, got)
		}
	}
}

func TestBuildExtractionPromptListsAllCategories(t *testing.T) {
	got := buildExtractionPrompt()
	for _, c := range core.Categories {
		if !strings.Contains(got, string(c)) {
			t.Errorf("prompt missing category %q", c)
		}
	}
}
