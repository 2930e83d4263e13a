// Package storage defines persistence for catalog entries and the query log.
package storage

import (
	"context"
	"errors"

	"github.com/hyperjump/windguide/internal/models"
)

// ErrNotFound is returned when a stored row does not exist.
var ErrNotFound = errors.New("not found")

// Storage persists catalog entries and logged searches.
type Storage interface {
	// Entry operations
	SaveEntries(ctx context.Context, entries []*models.IndexEntry) error
	ListEntries(ctx context.Context) ([]*models.IndexEntry, error)
	GetEntry(ctx context.Context, id string) (*models.IndexEntry, error)
	CountEntries(ctx context.Context) (int64, error)

	// Query log
	RecordQuery(ctx context.Context, rec *models.QueryRecord) error
	TopQueries(ctx context.Context, limit int) ([]models.QueryStat, error)
	CountQueries(ctx context.Context) (int64, error)

	Close() error
}
