package bigquery

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
	"google.golang.org/api/iterator"

	"github.com/sannskruti/cashflow-ai-dashboard/internal/domain"
	"github.com/sannskruti/cashflow-ai-dashboard/internal/store"
)

const (
	datasetsTable     = "datasets"
	transactionsTable = "transactions"
)

// Repository is a BigQuery-backed implementation of store.Repository. It
// holds a shared BigQuery client to avoid creating a new connection for
// each operation.
type Repository struct {
	client    *bigquery.Client
	projectID string
	datasetID string // BigQuery dataset holding the two tables, e.g. "cashflow"
}

// NewRepository creates a Repository with a shared BigQuery client.
func NewRepository(ctx context.Context, projectID, datasetID string) (*Repository, error) {
	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("NewRepository: creating client: %w", err)
	}
	return &Repository{client: client, projectID: projectID, datasetID: datasetID}, nil
}

// Close releases the underlying BigQuery client.
func (r *Repository) Close() error {
	if r.client != nil {
		return r.client.Close()
	}
	return nil
}

// CreateDataset implements store.Repository.
func (r *Repository) CreateDataset(ctx context.Context, ds *domain.Dataset) error {
	row := &DatasetRow{
		DatasetID:  ds.ID,
		Name:       ds.Name,
		UploadedTS: ds.UploadedAt,
	}
	inserter := r.client.DatasetInProject(r.projectID, r.datasetID).Table(datasetsTable).Inserter()
	if err := inserter.Put(ctx, row); err != nil {
		return fmt.Errorf("CreateDataset: inserting row: %w", err)
	}
	return nil
}

// GetDataset implements store.Repository.
func (r *Repository) GetDataset(ctx context.Context, datasetID string) (*domain.Dataset, error) {
	q := r.client.Query(fmt.Sprintf(`
		SELECT dataset_id, name, uploaded_ts
		FROM %s.%s
		WHERE dataset_id = @dataset_id
		LIMIT 1
	`, r.datasetID, datasetsTable))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "dataset_id", Value: datasetID},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("GetDataset: running query: %w", err)
	}

	var row DatasetRow
	err = it.Next(&row)
	if errors.Is(err, iterator.Done) {
		return nil, fmt.Errorf("GetDataset %s: %w", datasetID, store.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("GetDataset: reading row: %w", err)
	}

	return &domain.Dataset{
		ID:         row.DatasetID,
		Name:       row.Name,
		UploadedAt: row.UploadedTS,
	}, nil
}

// ListDatasets implements store.Repository. Results are ordered by upload
// time, oldest first.
func (r *Repository) ListDatasets(ctx context.Context) ([]*domain.Dataset, error) {
	q := r.client.Query(fmt.Sprintf(`
		SELECT dataset_id, name, uploaded_ts
		FROM %s.%s
		ORDER BY uploaded_ts
	`, r.datasetID, datasetsTable))

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("ListDatasets: running query: %w", err)
	}

	var result []*domain.Dataset
	for {
		var row DatasetRow
		err := it.Next(&row)
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ListDatasets: reading row: %w", err)
		}
		result = append(result, &domain.Dataset{
			ID:         row.DatasetID,
			Name:       row.Name,
			UploadedAt: row.UploadedTS,
		})
	}
	return result, nil
}

// InsertTransactions implements store.Repository using the streaming
// inserter, one batch per upload.
func (r *Repository) InsertTransactions(ctx context.Context, datasetID string, txs []domain.Transaction) error {
	if len(txs) == 0 {
		return nil
	}
	if _, err := r.GetDataset(ctx, datasetID); err != nil {
		return err
	}

	rows := make([]*TransactionRow, 0, len(txs))
	for _, tx := range txs {
		rows = append(rows, &TransactionRow{
			TransactionID: tx.ID,
			DatasetID:     datasetID,
			TxDate:        civil.DateOf(tx.Date),
			Description:   tx.Description,
			Amount:        tx.Amount,
			TxType:        string(tx.Type),
			Category:      tx.Category,
		})
	}

	inserter := r.client.DatasetInProject(r.projectID, r.datasetID).Table(transactionsTable).Inserter()
	if err := inserter.Put(ctx, rows); err != nil {
		return fmt.Errorf("InsertTransactions: inserting rows: %w", err)
	}
	return nil
}

// ListTransactions implements store.Repository.
func (r *Repository) ListTransactions(ctx context.Context, datasetID string) ([]domain.Transaction, error) {
	if _, err := r.GetDataset(ctx, datasetID); err != nil {
		return nil, err
	}

	q := r.client.Query(fmt.Sprintf(`
		SELECT transaction_id, dataset_id, tx_date, description, amount, tx_type, category
		FROM %s.%s
		WHERE dataset_id = @dataset_id
		ORDER BY tx_date
	`, r.datasetID, transactionsTable))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "dataset_id", Value: datasetID},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("ListTransactions: running query: %w", err)
	}

	var result []domain.Transaction
	for {
		var row TransactionRow
		err := it.Next(&row)
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ListTransactions: reading row: %w", err)
		}
		result = append(result, domain.Transaction{
			ID:          row.TransactionID,
			DatasetID:   row.DatasetID,
			Date:        row.TxDate.In(time.UTC),
			Description: row.Description,
			Amount:      row.Amount,
			Type:        domain.TxType(row.TxType),
			Category:    row.Category,
		})
	}
	return result, nil
}

// DeleteDataset implements store.Repository. Dependent transactions are
// removed first so a mid-delete failure never orphans the dataset row.
func (r *Repository) DeleteDataset(ctx context.Context, datasetID string) error {
	if _, err := r.GetDataset(ctx, datasetID); err != nil {
		return err
	}

	for _, table := range []string{transactionsTable, datasetsTable} {
		q := r.client.Query(fmt.Sprintf(`
			DELETE FROM %s.%s
			WHERE dataset_id = @dataset_id
		`, r.datasetID, table))
		q.Parameters = []bigquery.QueryParameter{
			{Name: "dataset_id", Value: datasetID},
		}

		job, err := q.Run(ctx)
		if err != nil {
			return fmt.Errorf("DeleteDataset: running delete on %s: %w", table, err)
		}
		status, err := job.Wait(ctx)
		if err != nil {
			return fmt.Errorf("DeleteDataset: waiting for delete on %s: %w", table, err)
		}
		if err := status.Err(); err != nil {
			return fmt.Errorf("DeleteDataset: delete job on %s: %w", table, err)
		}
	}
	return nil
}

// Ensure Repository implements the repository contract.
var _ store.Repository = (*Repository)(nil)
