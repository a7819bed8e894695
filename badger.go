package jobboard

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// BadgerBackend implements the Backend interface using BadgerDB.
// Records are stored under big-endian id keys so a prefix scan returns them
// in id order.
type BadgerBackend struct {
	db     *badger.DB
	logger *slog.Logger
	codec  Codec
	closed atomic.Bool
}

// NewBadgerBackend creates a new BadgerDB backend.
// The database directory will be created if it doesn't exist.
// dbPath is the path to the BadgerDB database directory.
// codec encodes stored records; nil means JSON.
// Note: BadgerDB uses its own logger interface, so its internal logging is disabled.
func NewBadgerBackend(dbPath string, logger *slog.Logger, codec Codec) (*BadgerBackend, error) {
	opts := badger.DefaultOptions(dbPath)
	opts.Logger = nil // Disable BadgerDB's internal logging (uses different logger interface)
	return openBadger(opts, logger, codec)
}

// NewInMemoryBadgerBackend creates a BadgerDB backend that keeps everything
// in memory. Useful for tests and throwaway sessions.
func NewInMemoryBadgerBackend(logger *slog.Logger, codec Codec) (*BadgerBackend, error) {
	opts := badger.DefaultOptions("").WithInMemory(true)
	opts.Logger = nil
	return openBadger(opts, logger, codec)
}

func openBadger(opts badger.Options, logger *slog.Logger, codec Codec) (*BadgerBackend, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if codec == nil {
		codec = &JSONCodec{}
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open BadgerDB: %w", err)
	}

	return &BadgerBackend{
		db:     db,
		logger: logger,
		codec:  codec,
	}, nil
}

// Close closes the database connection
func (b *BadgerBackend) Close() error {
	if b.closed.Swap(true) {
		return nil
	}
	return b.db.Close()
}

// retryUpdate retries a BadgerDB update operation on transaction conflicts.
// Fixed delay, no jitter.
func (b *BadgerBackend) retryUpdate(ctx context.Context, fn func(txn *badger.Txn) error) error {
	const maxRetries = 50
	const retryDelay = 1 * time.Millisecond

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
			time.Sleep(retryDelay)
		}

		err := b.db.Update(fn)
		if err == nil {
			return nil
		}
		if errors.Is(err, badger.ErrConflict) {
			lastErr = err
			continue
		}
		return err
	}
	return fmt.Errorf("transaction conflict after %d retries: %w", maxRetries, lastErr)
}

// key prefixes
const (
	keyPrefixJob = "job:"
)

// jobKey returns the key for a job record
func jobKey(jobID uint) []byte {
	key := make([]byte, 0, len(keyPrefixJob)+8)
	key = append(key, keyPrefixJob...)
	return binary.BigEndian.AppendUint64(key, uint64(jobID))
}

func (b *BadgerBackend) ensureOpen() error {
	if b.closed.Load() {
		return ErrBackendClosed
	}
	return nil
}

// SaveJobs inserts or replaces records by id in one transaction.
func (b *BadgerBackend) SaveJobs(ctx context.Context, records []*JobRecord) error {
	var err error
	if ctx, err = normalizeContext(ctx); err != nil {
		return err
	}
	if err := b.ensureOpen(); err != nil {
		return err
	}
	if err := validateRecords(records); err != nil {
		return err
	}
	if len(records) == 0 {
		return nil
	}

	encoded := make([][]byte, len(records))
	for i, rec := range records {
		data, err := b.codec.Encode(rec)
		if err != nil {
			return fmt.Errorf("failed to encode job %d: %w", rec.ID, err)
		}
		encoded[i] = data
	}

	err = b.retryUpdate(ctx, func(txn *badger.Txn) error {
		for i, rec := range records {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := txn.Set(jobKey(rec.ID), encoded[i]); err != nil {
				return fmt.Errorf("failed to store job %d: %w", rec.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	b.logger.Debug("SaveJobs", "count", len(records), "codec", b.codec.Name())
	return nil
}

// DeleteJobs deletes records by id.
func (b *BadgerBackend) DeleteJobs(ctx context.Context, jobIDs []uint) error {
	var err error
	if ctx, err = normalizeContext(ctx); err != nil {
		return err
	}
	if err := b.ensureOpen(); err != nil {
		return err
	}
	if len(jobIDs) == 0 {
		return nil
	}

	err = b.retryUpdate(ctx, func(txn *badger.Txn) error {
		for _, id := range jobIDs {
			if err := txn.Delete(jobKey(id)); err != nil {
				return fmt.Errorf("failed to delete job %d: %w", id, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	b.logger.Debug("DeleteJobs", "count", len(jobIDs))
	return nil
}

// LoadJobs returns every stored record, sorted by id.
func (b *BadgerBackend) LoadJobs(ctx context.Context) ([]*JobRecord, error) {
	var err error
	if ctx, err = normalizeContext(ctx); err != nil {
		return nil, err
	}
	if err := b.ensureOpen(); err != nil {
		return nil, err
	}

	var records []*JobRecord
	err = b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(keyPrefixJob)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			data, err := it.Item().ValueCopy(nil)
			if err != nil {
				return fmt.Errorf("failed to copy job data: %w", err)
			}
			rec, err := b.codec.Decode(data)
			if err != nil {
				return fmt.Errorf("failed to decode job: %w", err)
			}
			records = append(records, rec)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

// Count returns the number of stored records.
func (b *BadgerBackend) Count(ctx context.Context) (int, error) {
	var err error
	if ctx, err = normalizeContext(ctx); err != nil {
		return 0, err
	}
	if err := b.ensureOpen(); err != nil {
		return 0, err
	}

	count := 0
	err = b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(keyPrefixJob)
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			count++
		}
		return nil
	})
	return count, err
}
