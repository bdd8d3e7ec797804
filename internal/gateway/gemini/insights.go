package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/oraculx/financewise/internal/core"

	"google.golang.org/genai"
)

const insightsSystemInstruction = "Eres un experto asesor financiero personal. " +
	"Analizas gastos, identificas patrones innecesarios y ofreces consejos prácticos. " +
	"Responde siempre en formato JSON estructurado."

// Insights asks the model for a spending summary, recommendations and a
// savings estimate over the given transactions. A response that cannot
// be decoded yields the fallback analysis and a nil error; only
// transport failures return an error.
func (c *Client) Insights(ctx context.Context, txs []core.Transaction) (core.AIAnalysis, error) {
	prompt := buildInsightsPrompt(txs)

	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{Text: prompt},
			},
		},
	}

	config := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: insightsSystemInstruction}},
		},
		ResponseMIMEType: "application/json",
		ResponseSchema: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"summary": {
					Type:        genai.TypeString,
					Description: "Un resumen ejecutivo del comportamiento de gasto del usuario.",
				},
				"recommendations": {
					Type:        genai.TypeArray,
					Items:       &genai.Schema{Type: genai.TypeString},
					Description: "Lista de al menos 3 recomendaciones específicas para ahorrar dinero basadas en los datos.",
				},
				"savingsPotential": {
					Type:        genai.TypeString,
					Description: "Una estimación de cuánto podría ahorrar el usuario siguiendo los consejos.",
				},
			},
			Required: []string{"summary", "recommendations", "savingsPotential"},
		},
	}

	resp, err := c.genai.Models.GenerateContent(ctx, c.model, contents, config)
	if err != nil {
		return core.AIAnalysis{}, fmt.Errorf("generate insights: %w", err)
	}

	return decodeAnalysis(ctx, resp.Text()), nil
}

// buildInsightsPrompt renders the transaction list into the analysis
// prompt, one movement per line: "date: description (category) - ±amount€".
func buildInsightsPrompt(txs []core.Transaction) string {
	lines := make([]string, 0, len(txs))
	for _, t := range txs {
		sign := "+"
		if t.Type == core.Expense {
			sign = "-"
		}
		lines = append(lines, fmt.Sprintf("%s: %s (%s) - %s%s€",
			t.Date, t.Description, t.Category, sign, strconv.FormatFloat(t.Amount, 'f', -1, 64)))
	}

	return "Analiza los siguientes movimientos financieros del mes y proporciona consejos " +
		"personalizados para ahorrar y una breve evaluación de la salud financiera del usuario. " +
		"Los datos son:\n" + strings.Join(lines, "\n")
}

// decodeAnalysis parses the model's JSON response, falling back to the
// documented apology object when it cannot be decoded.
func decodeAnalysis(ctx context.Context, raw string) core.AIAnalysis {
	var analysis core.AIAnalysis
	if err := json.Unmarshal([]byte(trimModelJSON(raw)), &analysis); err != nil {
		slog.ErrorContext(ctx, "Undecodable insights response", "error", err, "raw_len", len(raw))
		return core.FallbackAnalysis()
	}
	return analysis
}
