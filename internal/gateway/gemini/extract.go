package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/oraculx/financewise/internal/core"

	"google.golang.org/genai"
)

// Extract sends a statement file to the model and returns the partial
// transaction records it finds. A response that cannot be decoded yields
// an empty list and a nil error; only transport failures return an error.
func (c *Client) Extract(ctx context.Context, data []byte, mimeType string) ([]core.ExtractedRecord, error) {
	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{
					InlineData: &genai.Blob{
						MIMEType: mimeType,
						Data:     data,
					},
				},
				{Text: buildExtractionPrompt()},
			},
		},
	}

	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema: &genai.Schema{
			Type: genai.TypeArray,
			Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"description": {Type: genai.TypeString},
					"amount":      {Type: genai.TypeNumber},
					"category":    {Type: genai.TypeString},
					"type":        {Type: genai.TypeString},
					"date":        {Type: genai.TypeString},
				},
				Required: []string{"description", "amount", "category", "type", "date"},
			},
		},
	}

	resp, err := c.genai.Models.GenerateContent(ctx, c.model, contents, config)
	if err != nil {
		return nil, fmt.Errorf("extract transactions: %w", err)
	}

	return decodeRecords(ctx, resp.Text()), nil
}

func buildExtractionPrompt() string {
	categories := make([]string, len(core.Categories))
	for i, c := range core.Categories {
		categories[i] = string(c)
	}

	return "Extrae todas las transacciones financieras que encuentres en este archivo.\n" +
		"Para cada transacción, identifica:\n" +
		"1. Descripción del gasto o ingreso.\n" +
		"2. Importe numérico (sin símbolos de moneda).\n" +
		"3. Tipo (debe ser 'expense' para gastos o 'income' para ingresos).\n" +
		"4. Categoría (debe ser una de estas exactamente: " + strings.Join(categories, ", ") + ").\n" +
		"5. Fecha (en formato YYYY-MM-DD, si no existe usa la fecha actual).\n\n" +
		"Responde exclusivamente en formato JSON como un array de objetos."
}

// decodeRecords parses the model's JSON array, returning an empty list
// when it cannot be decoded.
func decodeRecords(ctx context.Context, raw string) []core.ExtractedRecord {
	var records []core.ExtractedRecord
	if err := json.Unmarshal([]byte(trimModelJSON(raw)), &records); err != nil {
		slog.ErrorContext(ctx, "Undecodable extraction response", "error", err, "raw_len", len(raw))
		return []core.ExtractedRecord{}
	}
	return records
}
