// Package memory provides an in-memory Repository, used in tests and for
// running the service without a database.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/tendant/course-upload/pkg/courseupload"
)

// Repository implements courseupload.Repository using in-memory storage
type Repository struct {
	mu      sync.RWMutex
	records map[uuid.UUID]*courseupload.FileRecord
}

// New creates a new in-memory repository
func New() *Repository {
	return &Repository{
		records: make(map[uuid.UUID]*courseupload.FileRecord),
	}
}

func (r *Repository) Insert(ctx context.Context, record *courseupload.FileRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Copy to avoid external modifications
	recordCopy := *record
	r.records[record.ID] = &recordCopy
	return nil
}

func (r *Repository) List(ctx context.Context, filter courseupload.ListFilter) ([]*courseupload.FileRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*courseupload.FileRecord
	for _, record := range r.records {
		if filter.MimePrefix != "" && !strings.HasPrefix(record.MimeType, filter.MimePrefix) {
			continue
		}
		recordCopy := *record
		result = append(result, &recordCopy)
	}

	// Newest first; id breaks ties so ordering stays stable
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].ID.String() > result[j].ID.String()
	})
	return result, nil
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.records, id)
	return nil
}
