// Package sourcestore persists a durable snapshot of each telemetry
// source's last-known counters in a Pebble key/value store, so a gateway
// restart can report continuity instead of every source appearing to
// start from zero. It is a derived cache, not a system of record: losing
// this database only costs history, never correctness, since the live
// stats.Aggregator is always the authority while the gateway is running.
package sourcestore

import (
	"encoding/binary"
	"fmt"
	"os"
	"strings"

	"github.com/cockroachdb/pebble"

	"sentrygate/cmdhandler"
	"sentrygate/stats"
)

const recordSize = 2 + 8*5 + 4 + 8 // src_id + 5 u64 counters + last_seq + last_ts_ns

// Store durably records per-source snapshots.
type Store struct {
	db *pebble.DB
}

// Open opens (or creates) a Pebble database at path.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("sourcestore: database path is empty")
	}
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, fmt.Errorf("sourcestore: ensure directory: %w", err)
	}
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("sourcestore: open: %w", err)
	}
	return &Store{db: db}, nil
}

func sourceKey(srcID uint16) []byte {
	key := make([]byte, 2)
	binary.BigEndian.PutUint16(key, srcID)
	return key
}

func encode(s stats.SourceStats) []byte {
	buf := make([]byte, recordSize)
	binary.BigEndian.PutUint16(buf[0:2], s.SrcID)
	binary.BigEndian.PutUint64(buf[2:10], s.RxCount)
	binary.BigEndian.PutUint64(buf[10:18], s.Malformed)
	binary.BigEndian.PutUint64(buf[18:26], s.Gaps)
	binary.BigEndian.PutUint64(buf[26:34], s.Reorders)
	binary.BigEndian.PutUint64(buf[34:42], s.Duplicates)
	binary.BigEndian.PutUint32(buf[42:46], s.LastSeq)
	binary.BigEndian.PutUint64(buf[46:54], s.LastTSNs)
	return buf
}

func decode(raw []byte) (stats.SourceStats, error) {
	if len(raw) != recordSize {
		return stats.SourceStats{}, fmt.Errorf("sourcestore: malformed record (%d bytes)", len(raw))
	}
	return stats.SourceStats{
		SrcID:      binary.BigEndian.Uint16(raw[0:2]),
		RxCount:    binary.BigEndian.Uint64(raw[2:10]),
		Malformed:  binary.BigEndian.Uint64(raw[10:18]),
		Gaps:       binary.BigEndian.Uint64(raw[18:26]),
		Reorders:   binary.BigEndian.Uint64(raw[26:34]),
		Duplicates: binary.BigEndian.Uint64(raw[34:42]),
		LastSeq:    binary.BigEndian.Uint32(raw[42:46]),
		LastTSNs:   binary.BigEndian.Uint64(raw[46:54]),
	}, nil
}

// Put durably records s's current snapshot, overwriting any prior one for
// the same source.
func (st *Store) Put(s stats.SourceStats) error {
	if err := st.db.Set(sourceKey(s.SrcID), encode(s), pebble.Sync); err != nil {
		return fmt.Errorf("sourcestore: put src %d: %w", s.SrcID, err)
	}
	return nil
}

// Get returns the last persisted snapshot for srcID, and false if none exists.
func (st *Store) Get(srcID uint16) (stats.SourceStats, bool, error) {
	value, closer, err := st.db.Get(sourceKey(srcID))
	if err != nil {
		if err == pebble.ErrNotFound {
			return stats.SourceStats{}, false, nil
		}
		return stats.SourceStats{}, false, fmt.Errorf("sourcestore: get src %d: %w", srcID, err)
	}
	defer closer.Close()
	s, err := decode(value)
	if err != nil {
		return stats.SourceStats{}, false, err
	}
	return s, true, nil
}

// All returns every persisted source snapshot, ordered by src_id.
func (st *Store) All() ([]stats.SourceStats, error) {
	iter, err := st.db.NewIter(&pebble.IterOptions{})
	if err != nil {
		return nil, fmt.Errorf("sourcestore: iterator: %w", err)
	}
	defer iter.Close()

	var out []stats.SourceStats
	for iter.First(); iter.Valid(); iter.Next() {
		s, err := decode(iter.Value())
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if err := iter.Error(); err != nil {
		return nil, fmt.Errorf("sourcestore: iterate: %w", err)
	}
	return out, nil
}

// ListSources implements cmdhandler.SourceLister directly off the
// persisted snapshots, so GET SOURCES still answers from the last
// durable state even before the live aggregator has seen a single frame
// since restart.
func (st *Store) ListSources() []cmdhandler.SourceEntry {
	all, err := st.All()
	if err != nil {
		return nil
	}
	out := make([]cmdhandler.SourceEntry, 0, len(all))
	for _, s := range all {
		out = append(out, cmdhandler.SourceEntry{
			SrcID:      s.SrcID,
			RxCount:    s.RxCount,
			Gaps:       s.Gaps,
			Reorders:   s.Reorders,
			Duplicates: s.Duplicates,
			Malformed:  s.Malformed,
			LastSeq:    s.LastSeq,
		})
	}
	return out
}

// Close closes the underlying database.
func (st *Store) Close() error {
	if st.db == nil {
		return nil
	}
	err := st.db.Close()
	st.db = nil
	return err
}
