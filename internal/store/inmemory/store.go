package inmemory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/sannskruti/cashflow-ai-dashboard/internal/domain"
	"github.com/sannskruti/cashflow-ai-dashboard/internal/store"
)

// Store is an in-memory implementation of store.Repository. It is safe for
// concurrent use; data is lost on restart. Reads and writes copy values so
// callers can never mutate shared state.
type Store struct {
	mu           sync.RWMutex
	datasets     map[string]*domain.Dataset
	transactions map[string][]domain.Transaction // keyed by dataset ID
}

// New creates an empty in-memory repository.
func New() *Store {
	return &Store{
		datasets:     make(map[string]*domain.Dataset),
		transactions: make(map[string][]domain.Transaction),
	}
}

// CreateDataset implements store.Repository.
func (s *Store) CreateDataset(ctx context.Context, ds *domain.Dataset) error {
	if ds.ID == "" {
		return fmt.Errorf("dataset ID is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dsCopy := *ds
	s.datasets[ds.ID] = &dsCopy
	return nil
}

// GetDataset implements store.Repository.
func (s *Store) GetDataset(ctx context.Context, datasetID string) (*domain.Dataset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ds, ok := s.datasets[datasetID]
	if !ok {
		return nil, fmt.Errorf("get dataset %s: %w", datasetID, store.ErrNotFound)
	}

	dsCopy := *ds
	return &dsCopy, nil
}

// ListDatasets implements store.Repository. Results are ordered by upload
// time, oldest first.
func (s *Store) ListDatasets(ctx context.Context) ([]*domain.Dataset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.Dataset, 0, len(s.datasets))
	for _, ds := range s.datasets {
		dsCopy := *ds
		result = append(result, &dsCopy)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].UploadedAt.Before(result[j].UploadedAt)
	})
	return result, nil
}

// InsertTransactions implements store.Repository.
func (s *Store) InsertTransactions(ctx context.Context, datasetID string, txs []domain.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.datasets[datasetID]; !ok {
		return fmt.Errorf("insert transactions for %s: %w", datasetID, store.ErrNotFound)
	}

	s.transactions[datasetID] = append(s.transactions[datasetID], txs...)
	return nil
}

// ListTransactions implements store.Repository.
func (s *Store) ListTransactions(ctx context.Context, datasetID string) ([]domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.datasets[datasetID]; !ok {
		return nil, fmt.Errorf("list transactions for %s: %w", datasetID, store.ErrNotFound)
	}

	txs := s.transactions[datasetID]
	result := make([]domain.Transaction, len(txs))
	copy(result, txs)
	return result, nil
}

// DeleteDataset implements store.Repository. The dataset's transactions are
// removed together with the dataset itself.
func (s *Store) DeleteDataset(ctx context.Context, datasetID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.datasets[datasetID]; !ok {
		return fmt.Errorf("delete dataset %s: %w", datasetID, store.ErrNotFound)
	}

	delete(s.datasets, datasetID)
	delete(s.transactions, datasetID)
	return nil
}

// Ensure Store implements the repository contract.
var _ store.Repository = (*Store)(nil)
