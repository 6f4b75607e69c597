package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sannskruti/cashflow-ai-dashboard/internal/domain"
)

// RowError reports a malformed upload row. It is surfaced to the API
// boundary as a client error.
type RowError struct {
	Line   int // 1-based line number in the uploaded file, header included
	Field  string
	Reason string
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %d: field %q: %s", e.Line, e.Field, e.Reason)
}

// ParseCSV reads transactions from a CSV upload. The expected header is
// date,description,amount,type,category (description and category optional);
// fields are trimmed, the type tag is upper-cased and must be INCOME or
// EXPENSE, and expense amounts are normalized to be negative. The first
// malformed row aborts the parse with a *RowError.
func ParseCSV(r io.Reader, datasetID string) ([]domain.Transaction, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, &RowError{Line: 1, Field: "header", Reason: "empty file"}
	}
	if err != nil {
		return nil, fmt.Errorf("ParseCSV: reading header: %w", err)
	}

	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{"date", "amount", "type"} {
		if _, ok := col[required]; !ok {
			return nil, &RowError{Line: 1, Field: required, Reason: "missing column"}
		}
	}

	field := func(record []string, name string) string {
		idx, ok := col[name]
		if !ok || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	var txs []domain.Transaction
	for line := 2; ; line++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &RowError{Line: line, Field: "row", Reason: err.Error()}
		}

		date, err := time.Parse(domain.DateFormat, field(record, "date"))
		if err != nil {
			return nil, &RowError{Line: line, Field: "date", Reason: "want YYYY-MM-DD"}
		}

		amount, err := strconv.ParseFloat(field(record, "amount"), 64)
		if err != nil {
			return nil, &RowError{Line: line, Field: "amount", Reason: "not a number"}
		}

		txType := domain.TxType(strings.ToUpper(field(record, "type")))
		switch txType {
		case domain.TxTypeIncome:
		case domain.TxTypeExpense:
			// Expenses are stored signed negative regardless of input sign.
			amount = -math.Abs(amount)
		default:
			return nil, &RowError{Line: line, Field: "type", Reason: "want INCOME or EXPENSE"}
		}

		txs = append(txs, domain.Transaction{
			ID:          uuid.NewString(),
			DatasetID:   datasetID,
			Date:        date,
			Description: field(record, "description"),
			Amount:      amount,
			Type:        txType,
			Category:    field(record, "category"),
		})
	}

	return txs, nil
}
