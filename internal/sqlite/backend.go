package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/gridfields/internal/logging"
	"github.com/mesh-intelligence/gridfields/pkg/types"
)

// dbFile is the SQLite database created in DataDir. It is rebuilt from the
// JSONL files on every Attach.
const dbFile = "gridfields.db"

var _ types.Store = (*Backend)(nil)

// Backend implements types.Store on SQLite with JSONL files as the source
// of truth.
type Backend struct {
	mu       sync.RWMutex
	attached bool
	config   types.Config
	db       *sql.DB
	logger   *zap.Logger

	syncStrategy  string
	batchSize     int
	batchInterval time.Duration
	pendingWrites []pendingWrite
	batchTimer    *time.Timer
	batchMu       sync.Mutex // protects pendingWrites and batchTimer
}

// pendingWrite is a deferred JSONL write used by the on_close and batch
// strategies.
type pendingWrite struct {
	file      string // JSONL file the write rewrites
	operation string // "persist", "remove" or "reorder"
	persist   func() error
}

// Option configures a Backend.
type Option func(*Backend)

// WithLogger sets the logger used for load warnings and background flush
// failures.
func WithLogger(l *zap.Logger) Option {
	return func(b *Backend) { b.logger = l }
}

// NewBackend returns a detached backend. Call Attach before use.
func NewBackend(opts ...Option) *Backend {
	b := &Backend{}
	for _, opt := range opts {
		opt(b)
	}
	b.logger = logging.OrNop(b.logger)
	return b
}

// Attach validates config, creates DataDir if needed, builds a fresh SQLite
// database, and loads the JSONL files into it.
// Returns ErrAlreadyAttached if already attached.
func (b *Backend) Attach(config types.Config) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.attached {
		return types.ErrAlreadyAttached
	}
	if err := config.Validate(); err != nil {
		return err
	}

	dataDir := config.DataDir
	if dataDir == "" {
		dataDir = "."
		config.DataDir = dataDir
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return fmt.Errorf("creating data dir: %w", err)
	}

	dbPath := filepath.Join(dataDir, dbFile)
	_ = os.Remove(dbPath)

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return fmt.Errorf("opening %s: %w", dbPath, err)
	}
	// One connection keeps every statement on the same database handle.
	db.SetMaxOpenConns(1)

	for _, ddl := range append(append([]string{}, tableDDL...), indexDDL...) {
		if _, err := db.Exec(ddl); err != nil {
			db.Close()
			return fmt.Errorf("creating schema: %w", err)
		}
	}

	if err := initJSONLFiles(dataDir); err != nil {
		db.Close()
		return err
	}
	if err := loadAllJSONL(db, dataDir); err != nil {
		db.Close()
		return fmt.Errorf("load JSONL: %w", err)
	}

	b.db = db
	b.config = config
	b.syncStrategy = config.SQLiteConfig.GetSyncStrategy()
	b.batchSize = config.SQLiteConfig.GetBatchSize()
	b.batchInterval = time.Duration(config.SQLiteConfig.GetBatchInterval()) * time.Second
	b.pendingWrites = nil
	b.attached = true

	if b.syncStrategy == types.SyncBatch && b.batchInterval > 0 {
		b.startBatchTimer()
	}

	b.logger.Debug("sqlite store attached",
		zap.String("data_dir", dataDir),
		zap.String("sync_strategy", b.syncStrategy),
	)
	return nil
}

// Detach flushes pending writes and closes the database. Idempotent.
func (b *Backend) Detach() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return nil
	}

	b.stopBatchTimer()
	if err := b.flushPendingWritesLocked(); err != nil {
		return fmt.Errorf("flush pending writes: %w", err)
	}

	if b.db != nil {
		if err := b.db.Close(); err != nil {
			return err
		}
		b.db = nil
	}
	b.attached = false
	return nil
}

// shouldPersistImmediately reports whether JSONL writes happen inline.
func (b *Backend) shouldPersistImmediately() bool {
	return b.syncStrategy == types.SyncImmediate || b.syncStrategy == ""
}

// writeJSONLFiles persists the JSONL files now or queues the write,
// depending on the sync strategy. The caller must hold b.mu.
func (b *Backend) writeJSONLFiles(operation string) error {
	persist := func() error {
		if err := b.persistFieldsJSONL(); err != nil {
			return err
		}
		return b.persistTypeOptionsJSONL()
	}
	if b.shouldPersistImmediately() {
		return persist()
	}
	b.queueWrite(fieldsJSONL, operation, persist)
	return nil
}

// queueWrite adds a write to the pending queue and flushes when a batch is
// full. The caller must hold b.mu.
func (b *Backend) queueWrite(file, operation string, persist func() error) {
	b.batchMu.Lock()
	defer b.batchMu.Unlock()

	b.pendingWrites = append(b.pendingWrites, pendingWrite{
		file:      file,
		operation: operation,
		persist:   persist,
	})

	if b.syncStrategy == types.SyncBatch && b.batchSize > 0 && len(b.pendingWrites) >= b.batchSize {
		if err := b.flushPendingWritesBatchLocked(); err != nil {
			b.logger.Warn("batch flush failed", zap.Error(err))
		}
	}
}

// flushPendingWritesLocked flushes all pending writes.
// The caller must hold b.mu.
func (b *Backend) flushPendingWritesLocked() error {
	b.batchMu.Lock()
	defer b.batchMu.Unlock()

	return b.flushPendingWritesBatchLocked()
}

// flushPendingWritesBatchLocked runs the queued writes. Each write rewrites
// whole files from the current database, so only the last write per file
// runs. The caller must hold b.batchMu.
func (b *Backend) flushPendingWritesBatchLocked() error {
	if len(b.pendingWrites) == 0 {
		return nil
	}

	last := make(map[string]int, len(b.pendingWrites))
	for i, pw := range b.pendingWrites {
		last[pw.file] = i
	}
	for i, pw := range b.pendingWrites {
		if last[pw.file] != i {
			continue
		}
		if err := pw.persist(); err != nil {
			return fmt.Errorf("flush %s %s: %w", pw.file, pw.operation, err)
		}
	}

	b.pendingWrites = nil
	return nil
}

// startBatchTimer starts the periodic flush for the batch strategy.
func (b *Backend) startBatchTimer() {
	b.batchMu.Lock()
	defer b.batchMu.Unlock()

	if b.batchTimer != nil {
		return
	}

	b.batchTimer = time.AfterFunc(b.batchInterval, func() {
		b.mu.Lock()
		defer b.mu.Unlock()

		if !b.attached {
			return
		}
		if err := b.flushPendingWritesLocked(); err != nil {
			b.logger.Warn("interval flush failed", zap.Error(err))
		}

		b.batchMu.Lock()
		if b.batchTimer != nil && b.attached {
			b.batchTimer.Reset(b.batchInterval)
		}
		b.batchMu.Unlock()
	})
}

// stopBatchTimer stops the periodic flush if running.
func (b *Backend) stopBatchTimer() {
	b.batchMu.Lock()
	defer b.batchMu.Unlock()

	if b.batchTimer != nil {
		b.batchTimer.Stop()
		b.batchTimer = nil
	}
}
