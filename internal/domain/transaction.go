package domain

import (
	"time"
)

// TxType tags a transaction as money in or money out. Any other value is
// ignored by the analytics layer and rejected at ingestion.
type TxType string

const (
	TxTypeIncome  TxType = "INCOME"
	TxTypeExpense TxType = "EXPENSE"
)

// Transaction is one dated, categorized cash movement belonging to exactly
// one dataset. Amounts are signed: income positive, expenses negative (the
// ingestion layer normalizes expense rows). Immutable once created.
type Transaction struct {
	ID          string    `json:"id"`
	DatasetID   string    `json:"datasetId"`
	Date        time.Time `json:"date"`        // day precision, YYYY-MM-DD on the wire
	Description string    `json:"description"` // free text; never forwarded to the reasoning service
	Amount      float64   `json:"amount"`
	Type        TxType    `json:"type"`
	Category    string    `json:"category"` // blank allowed; ranked as "uncategorized"
}

// Dataset is an uploaded batch of transactions.
type Dataset struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	UploadedAt time.Time `json:"uploadedAt"`
}
