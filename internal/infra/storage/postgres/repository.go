package postgres

import (
	"github.com/vietddude/goodnews/internal/infra/storage"
)

// Repository bundles the PostgreSQL repositories behind storage.Repository.
type Repository struct {
	*RecordRepo
	*CollectionLogRepo
	*DB
}

// NewRepository wires every repository over one connection pool.
func NewRepository(db *DB) *Repository {
	return &Repository{
		RecordRepo:        NewRecordRepo(db),
		CollectionLogRepo: NewCollectionLogRepo(db),
		DB:                db,
	}
}

var _ storage.Repository = (*Repository)(nil)
