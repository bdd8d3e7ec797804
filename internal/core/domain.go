package core

import (
	"errors"
	"math"
	"strings"
	"time"
)

const (
	Income  TxType = "income"
	Expense TxType = "expense"
)

const (
	Food          Category = "Alimentación"
	Transport     Category = "Transporte"
	Housing       Category = "Vivienda"
	Entertainment Category = "Entretenimiento"
	Health        Category = "Salud"
	Education     Category = "Educación"
	Other         Category = "Otros"
)

// DateLayout is the calendar-date wire format used throughout the app.
const DateLayout = "2006-01-02"

type (
	TxType   string
	Category string

	// Transaction is a single income or expense entry. Immutable after
	// creation; removed only by explicit deletion.
	Transaction struct {
		ID          string   `json:"id"`
		Description string   `json:"description"`
		Amount      float64  `json:"amount"`
		Category    Category `json:"category"`
		Type        TxType   `json:"type"`
		Date        string   `json:"date"` // YYYY-MM-DD
	}

	// AIAnalysis is the structured result of a spending-insights request.
	AIAnalysis struct {
		Summary          string   `json:"summary"`
		Recommendations  []string `json:"recommendations"`
		SavingsPotential string   `json:"savingsPotential"`
	}

	// ExtractedRecord is a partially populated transaction as returned by
	// the statement-extraction gateway. Any field may be empty; defaults
	// are applied at import time.
	ExtractedRecord struct {
		Description string  `json:"description"`
		Amount      float64 `json:"amount"`
		Category    string  `json:"category"`
		Type        string  `json:"type"`
		Date        string  `json:"date"`
	}
)

// Categories lists the closed category enumeration in display order.
var Categories = []Category{Food, Transport, Housing, Entertainment, Health, Education, Other}

var (
	ErrEmptyDescription = errors.New("empty description")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidCategory  = errors.New("invalid category")
	ErrInvalidType      = errors.New("invalid transaction type")
	ErrInvalidDate      = errors.New("invalid date")
)

func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

func (t TxType) Valid() bool {
	return t == Income || t == Expense
}

func (t Transaction) Validate() error {
	if len(strings.TrimSpace(t.Description)) == 0 {
		return ErrEmptyDescription
	}
	if math.IsNaN(t.Amount) || math.IsInf(t.Amount, 0) || t.Amount < 0 {
		return ErrInvalidAmount
	}
	if !t.Category.Valid() {
		return ErrInvalidCategory
	}
	if !t.Type.Valid() {
		return ErrInvalidType
	}
	if _, err := time.Parse(DateLayout, t.Date); err != nil {
		return ErrInvalidDate
	}
	return nil
}

// FallbackAnalysis is the documented failure result of the insights
// gateway: shown whenever the model call fails or returns something
// that cannot be decoded.
func FallbackAnalysis() AIAnalysis {
	return AIAnalysis{
		Summary:          "No pudimos analizar tus datos en este momento.",
		Recommendations:  []string{"Sigue registrando tus gastos para obtener mejores consejos."},
		SavingsPotential: "0€",
	}
}
