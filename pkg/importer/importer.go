package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/settlex-hq/settlex-settler/pkg/metrics"
	"github.com/settlex-hq/settlex-settler/pkg/models"
	"github.com/settlex-hq/settlex-settler/pkg/tokens"
)

// Result holds the outcome of a CSV import: the rows that passed validation
// and one message per rejected row. Row numbers are 1-indexed and count the
// header row, matching what a spreadsheet user sees.
type Result struct {
	Intents []models.PaymentIntent `json:"intents"`
	Errors  []string               `json:"errors"`
}

// Importer parses employee CSV uploads into payment intents.
type Importer struct {
	registry *tokens.Registry
}

func New(registry *tokens.Registry) *Importer {
	return &Importer{registry: registry}
}

// column aliases accepted in the header row, lowercased.
var headerAliases = map[string]string{
	"name":           "name",
	"full name":      "name",
	"employee":       "name",
	"email":          "email",
	"e-mail":         "email",
	"wallet":         "wallet",
	"wallet address": "wallet",
	"address":        "wallet",
	"amount":         "amount",
	"salary":         "amount",
	"currency":       "currency",
	"token":          "currency",
	"memo":           "memo",
	"note":           "memo",
	"country":        "country",
}

// Parse reads a CSV document and validates each data row. Rows that fail
// validation are reported individually; the valid subset is still returned.
func (im *Importer) Parse(r io.Reader) (*Result, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("empty file")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %v", err)
	}

	columns := make(map[string]int)
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(h))
		if canonical, ok := headerAliases[key]; ok {
			columns[canonical] = i
		}
	}
	for _, required := range []string{"name", "email", "wallet"} {
		if _, ok := columns[required]; !ok {
			return nil, fmt.Errorf("missing required column: %s", required)
		}
	}

	result := &Result{}
	rowNum := 1 // header
	nextID := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		rowNum++
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", rowNum, err))
			metrics.ImportRows.WithLabelValues("rejected").Inc()
			continue
		}

		intent, rowErr := im.parseRow(record, columns)
		if rowErr != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", rowNum, rowErr))
			metrics.ImportRows.WithLabelValues("rejected").Inc()
			continue
		}
		intent.EmployeeID = nextID
		nextID++
		result.Intents = append(result.Intents, intent)
		metrics.ImportRows.WithLabelValues("accepted").Inc()
	}

	return result, nil
}

func (im *Importer) parseRow(record []string, columns map[string]int) (models.PaymentIntent, error) {
	field := func(name string) string {
		idx, ok := columns[name]
		if !ok || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	intent := models.PaymentIntent{
		Name:      field("name"),
		Email:     field("email"),
		Recipient: field("wallet"),
		Memo:      field("memo"),
	}

	if intent.Name == "" {
		return intent, fmt.Errorf("name is required")
	}
	if intent.Email == "" || !strings.Contains(intent.Email, "@") {
		return intent, fmt.Errorf("invalid email address")
	}
	if !strings.HasPrefix(intent.Recipient, "0x") || len(intent.Recipient) != 42 {
		return intent, fmt.Errorf("invalid wallet address")
	}

	amount := normalizeAmount(field("amount"))
	if amount == "" {
		return intent, fmt.Errorf("amount is required")
	}
	units, err := tokens.ParseAmount(amount)
	if err != nil {
		return intent, fmt.Errorf("invalid amount: %v", err)
	}
	if units.Sign() <= 0 {
		return intent, fmt.Errorf("amount must be positive")
	}
	intent.Amount = amount

	currency := field("currency")
	if currency == "" || !im.registry.Known(currency) {
		currency = im.registry.Default().Symbol
	}
	intent.Currency = currency

	return intent, nil
}

// normalizeAmount strips currency decoration like "$1,250.00".
func normalizeAmount(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	return s
}
