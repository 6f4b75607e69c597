package bigquery

import (
	"time"

	"cloud.google.com/go/civil"
)

// DatasetRow mirrors the cashflow.datasets table schema.
type DatasetRow struct {
	DatasetID  string    `bigquery:"dataset_id"`
	Name       string    `bigquery:"name"`
	UploadedTS time.Time `bigquery:"uploaded_ts"`
}

// TransactionRow mirrors the cashflow.transactions table schema.
type TransactionRow struct {
	TransactionID string     `bigquery:"transaction_id"`
	DatasetID     string     `bigquery:"dataset_id"`
	TxDate        civil.Date `bigquery:"tx_date"`
	Description   string     `bigquery:"description"`
	Amount        float64    `bigquery:"amount"`
	TxType        string     `bigquery:"tx_type"`
	Category      string     `bigquery:"category"`
}
