package store

import (
	"context"
	"errors"

	"github.com/sannskruti/cashflow-ai-dashboard/internal/domain"
)

// ErrNotFound is returned when a dataset does not exist.
var ErrNotFound = errors.New("dataset not found")

// Repository is the storage contract for datasets and their transactions.
// DeleteDataset removes the dataset's transactions along with the dataset
// itself; there is no cascade managed anywhere else.
type Repository interface {
	CreateDataset(ctx context.Context, ds *domain.Dataset) error
	GetDataset(ctx context.Context, datasetID string) (*domain.Dataset, error)
	ListDatasets(ctx context.Context) ([]*domain.Dataset, error)
	InsertTransactions(ctx context.Context, datasetID string, txs []domain.Transaction) error
	ListTransactions(ctx context.Context, datasetID string) ([]domain.Transaction, error)
	DeleteDataset(ctx context.Context, datasetID string) error
}
