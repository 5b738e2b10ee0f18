// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package badger

import (
	"context"
	"errors"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/poiesic/grantlens/core"
	"github.com/poiesic/grantlens/storage"
)

// EmbeddingRepository implements storage.EmbeddingRepository for BadgerDB.
type EmbeddingRepository struct {
	backend *Backend
}

var _ storage.EmbeddingRepository = (*EmbeddingRepository)(nil)

// NewEmbeddingRepository creates a new EmbeddingRepository.
func NewEmbeddingRepository(backend *Backend) (storage.EmbeddingRepository, error) {
	return &EmbeddingRepository{
		backend: backend,
	}, nil
}

// Close releases resources. EmbeddingRepository has no resources of its
// own; the backend is closed by its owner.
func (r *EmbeddingRepository) Close() error {
	return nil
}

// PutEmbeddings stores one or more embedding records.
func (r *EmbeddingRepository) PutEmbeddings(ctx context.Context, records ...*core.EmbeddingRecord) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, record := range records {
			if record.InsertedAt.IsZero() {
				record.InsertedAt = time.Now().UTC()
			}

			// Store primary record
			key := makeEmbeddingKey(record.Key)
			value := storage.MarshalEmbeddingRecord(record)
			if err := tx.Set(key, value); err != nil {
				return err
			}

			// Store model index
			modelKey := makeEmbeddingModelKey(record.Model, record.Key)
			if err := tx.Set(modelKey, storage.MarshalID(record.Key)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// GetEmbedding retrieves a single embedding record by key.
func (r *EmbeddingRepository) GetEmbedding(ctx context.Context, key core.ID) (*core.EmbeddingRecord, error) {
	var result *core.EmbeddingRecord
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		record, err := readEmbedding(tx, makeEmbeddingKey(key))
		if err != nil {
			return err
		}
		if record == nil {
			return storage.ErrNotFound
		}
		result = record
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// GetEmbeddings retrieves multiple embedding records by key. Missing
// entries are skipped; the returned slice follows the requested key order.
func (r *EmbeddingRepository) GetEmbeddings(ctx context.Context, keys ...core.ID) ([]*core.EmbeddingRecord, error) {
	var results []*core.EmbeddingRecord
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, key := range keys {
			record, err := readEmbedding(tx, makeEmbeddingKey(key))
			if err != nil {
				return err
			}
			if record != nil {
				results = append(results, record)
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return results, nil
}

// DeleteModel removes every cached entry produced by the named model.
func (r *EmbeddingRepository) DeleteModel(ctx context.Context, model string) (int, error) {
	var removed int
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		prefix := makePartialEmbeddingModelKey(model)

		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		iter := tx.NewIterator(opts)

		// Collect first: deleting while iterating invalidates the iterator.
		var recordKeys []core.ID
		var indexKeys [][]byte
		for iter.Rewind(); iter.Valid(); iter.Next() {
			item := iter.Item()
			var key core.ID
			err := item.Value(func(val []byte) error {
				var err error
				key, err = storage.UnmarshalID(val)
				return err
			})
			if err != nil {
				iter.Close()
				return err
			}
			recordKeys = append(recordKeys, key)
			indexKeys = append(indexKeys, item.KeyCopy(nil))
		}
		iter.Close()

		for i, key := range recordKeys {
			if err := tx.Delete(makeEmbeddingKey(key)); err != nil {
				return err
			}
			if err := tx.Delete(indexKeys[i]); err != nil {
				return err
			}
			removed++
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return 0, err
	}
	return removed, nil
}

// readEmbedding reads an embedding record within a transaction.
// Returns nil (no error) if the key doesn't exist.
func readEmbedding(tx *badger.Txn, key []byte) (*core.EmbeddingRecord, error) {
	item, err := tx.Get(key)
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var record *core.EmbeddingRecord
	err = item.Value(func(val []byte) error {
		var err error
		record, err = storage.UnmarshalEmbeddingRecord(val)
		return err
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}
