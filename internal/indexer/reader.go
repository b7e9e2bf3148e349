package indexer

import (
	"fmt"

	bolt "go.etcd.io/bbolt"
)

// GridRefResolver implements coalesce.GridRefs over a packed grid store:
// an index's grid reference is its idx plus one, as the opaque uint64 the
// coalesce primitive expects, once the store confirms that index actually
// has entries.
type GridRefResolver struct {
	db    *bolt.DB
	known map[int]bool
}

// OpenGridRefResolver opens the live (packed) grid store read-only and
// scans it once to learn which indexes have data.
func OpenGridRefResolver(gridPath string) (*GridRefResolver, error) {
	db, err := bolt.Open(gridPath, 0o444, &bolt.Options{ReadOnly: true})
	if err != nil {
		return nil, fmt.Errorf("indexer: open grid store read-only: %w", err)
	}

	known := make(map[int]bool)
	err = db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(gridBucket)
		if b == nil {
			return nil
		}
		return b.ForEach(func(k, _ []byte) error {
			if len(k) != 16 {
				return nil
			}
			idx := int(uint32(k[12])<<24 | uint32(k[13])<<16 | uint32(k[14])<<8 | uint32(k[15]))
			known[idx] = true
			return nil
		})
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("indexer: scan grid store: %w", err)
	}

	return &GridRefResolver{db: db, known: known}, nil
}

// GridRef returns idx+1 as the opaque grid reference for idx when the store
// has entries for it.
func (r *GridRefResolver) GridRef(idx int) (uint64, bool) {
	if !r.known[idx] {
		return 0, false
	}
	return uint64(idx) + 1, true
}

// Close releases the read-only grid store handle.
func (r *GridRefResolver) Close() error {
	return r.db.Close()
}
