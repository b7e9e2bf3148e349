// Package indexer is the sibling ingest pipeline spec.md §6 sketches as an
// external collaborator: batch features, run a tokenize/frequency pass,
// write grid entries into an embedded KV store and word entries into a
// dictionary, then pack-and-swap the grid file under a file lock and
// commit the backing store (spec.md §6, §1: "document tokenization,
// replacement-token expansion, tile geometry, and the RocksDB-backed grid
// cache are... collaborators").
//
// bbolt stands in for the "RocksDB-backed grid cache" named in spec.md:
// both are embedded, ordered-byte-range KV stores with a single-writer
// transaction model, which is the property this package actually needs.
package indexer

import (
	"database/sql"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"
	bolt "go.etcd.io/bbolt"
	_ "modernc.org/sqlite"
)

// MaxBatchSize is the largest feature batch the writer accepts per
// WriteBatch call (spec.md §6: "batches up to 10,000").
const MaxBatchSize = 10000

var gridBucket = []byte("grid")

// Feature is one ingested document: a tile-level cover plus the text used
// to build the word-frequency dictionary.
type Feature struct {
	Idx  int    `json:"idx"`
	X    int    `json:"x"`
	Y    int    `json:"y"`
	Zoom int    `json:"zoom"`
	ID   uint64 `json:"id"`
	Text string `json:"text"`
}

// Writer drives the indexer's ingest → grid/dictionary write → pack-and-swap
// → commit protocol. Not safe for concurrent use by multiple writers; the
// flock taken by StartWriting serializes writers, and PackAndSwap itself
// does not acquire it.
type Writer struct {
	gridPath string
	tmpPath  string
	grid     *bolt.DB
	dict     *sql.DB
	lock     *flock.Flock
}

// NewWriter opens a temporary grid store alongside gridPath (the eventual
// live grid file) and the sqlite dictionary at dictPath.
func NewWriter(gridPath, dictPath string) (*Writer, error) {
	tmpPath := gridPath + ".tmp"
	grid, err := bolt.Open(tmpPath, 0o644, nil)
	if err != nil {
		return nil, fmt.Errorf("indexer: open grid store: %w", err)
	}

	err = grid.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(gridBucket)
		return err
	})
	if err != nil {
		grid.Close()
		return nil, fmt.Errorf("indexer: create grid bucket: %w", err)
	}

	dict, err := sql.Open("sqlite", dictPath)
	if err != nil {
		grid.Close()
		return nil, fmt.Errorf("indexer: open dictionary: %w", err)
	}
	if _, err := dict.Exec(`CREATE TABLE IF NOT EXISTS word_frequency (word TEXT PRIMARY KEY, count INTEGER NOT NULL)`); err != nil {
		grid.Close()
		dict.Close()
		return nil, fmt.Errorf("indexer: create dictionary schema: %w", err)
	}

	return &Writer{
		gridPath: gridPath,
		tmpPath:  tmpPath,
		grid:     grid,
		dict:     dict,
		lock:     flock.New(gridPath + ".lock"),
	}, nil
}

// StartWriting acquires the exclusive pack-and-swap lock, blocking other
// writers out for the duration of this ingest run.
func (w *Writer) StartWriting() error {
	if err := w.lock.Lock(); err != nil {
		return fmt.Errorf("indexer: acquire write lock: %w", err)
	}
	return nil
}

// StopWriting releases the pack-and-swap lock.
func (w *Writer) StopWriting() error {
	return w.lock.Unlock()
}

// WriteBatch tokenizes each feature's text for the word-frequency pass and
// writes its tile cover into the grid store. Rejects batches over
// MaxBatchSize so callers chunk ingest the way the source does.
func (w *Writer) WriteBatch(features []Feature) error {
	if len(features) > MaxBatchSize {
		return fmt.Errorf("indexer: batch of %d exceeds max %d", len(features), MaxBatchSize)
	}

	freq := make(map[string]int)
	err := w.grid.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(gridBucket)
		for _, f := range features {
			key := tileKey(f.Zoom, f.X, f.Y, f.Idx)
			value := make([]byte, 8)
			binary.BigEndian.PutUint64(value, f.ID)
			if err := b.Put(key, value); err != nil {
				return err
			}
			for _, word := range strings.Fields(strings.ToLower(f.Text)) {
				freq[word]++
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("indexer: write grid batch: %w", err)
	}

	if err := w.writeFrequencies(freq); err != nil {
		return err
	}
	return nil
}

func (w *Writer) writeFrequencies(freq map[string]int) error {
	if len(freq) == 0 {
		return nil
	}
	tx, err := w.dict.Begin()
	if err != nil {
		return fmt.Errorf("indexer: begin dictionary tx: %w", err)
	}
	stmt, err := tx.Prepare(`INSERT INTO word_frequency(word, count) VALUES (?, ?)
		ON CONFLICT(word) DO UPDATE SET count = count + excluded.count`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("indexer: prepare dictionary upsert: %w", err)
	}
	defer stmt.Close()

	for word, count := range freq {
		if _, err := stmt.Exec(word, count); err != nil {
			tx.Rollback()
			return fmt.Errorf("indexer: upsert word %q: %w", word, err)
		}
	}
	return tx.Commit()
}

// tileKey orders entries first by zoom/tile then by index id, so a
// range scan over one tile returns every index's covers for it together.
func tileKey(zoom, x, y, idx int) []byte {
	key := make([]byte, 16)
	binary.BigEndian.PutUint32(key[0:4], uint32(zoom))
	binary.BigEndian.PutUint32(key[4:8], uint32(x))
	binary.BigEndian.PutUint32(key[8:12], uint32(y))
	binary.BigEndian.PutUint32(key[12:16], uint32(idx))
	return key
}

// PackAndSwap atomically replaces gridPath with the temp store written by
// WriteBatch, under temp-move-clobber discipline (spec.md §6).
func (w *Writer) PackAndSwap() error {
	if err := w.grid.Close(); err != nil {
		return fmt.Errorf("indexer: close temp grid store: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(w.gridPath), 0o755); err != nil {
		return fmt.Errorf("indexer: create grid directory: %w", err)
	}
	if err := os.Rename(w.tmpPath, w.gridPath); err != nil {
		return fmt.Errorf("indexer: pack-and-swap rename: %w", err)
	}

	grid, err := bolt.Open(w.gridPath, 0o644, nil)
	if err != nil {
		return fmt.Errorf("indexer: reopen swapped grid store: %w", err)
	}
	w.grid = grid
	return nil
}

// Commit runs the backing store's `_commit` step: flushing the dictionary
// and confirming the grid store is durable on disk.
func (w *Writer) Commit() error {
	if _, err := w.dict.Exec("PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		return fmt.Errorf("indexer: commit dictionary: %w", err)
	}
	return w.grid.Sync()
}

// Close releases the grid store and dictionary handles.
func (w *Writer) Close() error {
	var firstErr error
	if err := w.grid.Close(); err != nil {
		firstErr = err
	}
	if err := w.dict.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}
