// Package stats aggregates gateway-wide and per-source ingestion counters.
// Every Record* call holds the gateway-wide lock across both its global
// and per-source update, so a concurrent reader can never observe the
// global counter bumped without its matching per-source counter also
// bumped, or vice versa, the same joint-atomicity guarantee the original
// gateway's stats manager gets from guarding both under one shared_mutex.
// Per-source counters still live in a fixed shard table keyed by a hash of
// the source ID, the same shard-by-hash layout the upstream cluster
// tooling uses for its secondary deduplicator, so reads of different
// sources don't serialize on one map lock even though writes do.
package stats

import (
	"sync"

	"github.com/zeebo/xxh3"
)

// GlobalStats is the gateway-wide counter set.
type GlobalStats struct {
	RxTotal        uint64
	MalformedTotal uint64
	GapTotal       uint64
	ReorderTotal   uint64
	DuplicateTotal uint64
	CrcFailTotal   uint64
}

// SourceStats is the per-source counter set.
type SourceStats struct {
	SrcID      uint16
	RxCount    uint64
	Malformed  uint64
	Gaps       uint64
	Reorders   uint64
	Duplicates uint64
	LastSeq    uint32
	LastTSNs   uint64
}

// Health is the coarse rollup of the current counters.
type Health int

const (
	HealthOK Health = iota
	HealthDegraded
	HealthError
)

func (h Health) String() string {
	switch h {
	case HealthOK:
		return "OK"
	case HealthDegraded:
		return "DEGRADED"
	case HealthError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// sourceShardCount is kept small and power-of-two for fast masking.
const sourceShardCount = 64

type sourceShard struct {
	mu      sync.RWMutex
	sources map[uint16]*SourceStats
}

// Aggregator accumulates ingestion counters. All methods are safe for
// concurrent use.
type Aggregator struct {
	globalMu sync.RWMutex
	global   GlobalStats
	shards   [sourceShardCount]sourceShard
}

// New returns an empty Aggregator.
func New() *Aggregator {
	a := &Aggregator{}
	for i := range a.shards {
		a.shards[i].sources = make(map[uint16]*SourceStats)
	}
	return a
}

func (a *Aggregator) shardFor(srcID uint16) *sourceShard {
	var key [2]byte
	key[0] = byte(srcID)
	key[1] = byte(srcID >> 8)
	idx := xxh3.Hash(key[:]) & (sourceShardCount - 1)
	return &a.shards[idx]
}

func (sh *sourceShard) getOrCreateLocked(srcID uint16) *SourceStats {
	s, ok := sh.sources[srcID]
	if !ok {
		s = &SourceStats{SrcID: srcID}
		sh.sources[srcID] = s
	}
	return s
}

// Seed installs a persisted snapshot as a source's starting counters, for
// restoring state saved by the source store before the first live frame
// arrives. It overwrites any existing entry for s.SrcID outright.
func (a *Aggregator) Seed(s SourceStats) {
	sh := a.shardFor(s.SrcID)
	sh.mu.Lock()
	v := s
	sh.sources[s.SrcID] = &v
	sh.mu.Unlock()
}

// RecordRx records a successfully parsed frame from srcID, regardless of
// its sequence verdict. The global and per-source counters are updated
// under one held globalMu, so a concurrent GlobalSnapshot or SourceSnapshot
// can never observe one counter bumped without the other: globalMu stays
// locked across the nested shard update, and is only released once both
// are done.
func (a *Aggregator) RecordRx(srcID uint16, seq uint32, tsNanos uint64) {
	a.globalMu.Lock()
	defer a.globalMu.Unlock()
	a.global.RxTotal++

	sh := a.shardFor(srcID)
	sh.mu.Lock()
	s := sh.getOrCreateLocked(srcID)
	s.RxCount++
	s.LastSeq = seq
	s.LastTSNs = tsNanos
	sh.mu.Unlock()
}

// RecordMalformed records a frame that failed header or length validation.
func (a *Aggregator) RecordMalformed(srcID uint16) {
	a.globalMu.Lock()
	defer a.globalMu.Unlock()
	a.global.MalformedTotal++

	sh := a.shardFor(srcID)
	sh.mu.Lock()
	sh.getOrCreateLocked(srcID).Malformed++
	sh.mu.Unlock()
}

// RecordGap records a sequence gap of gapSize missing frames.
func (a *Aggregator) RecordGap(srcID uint16, gapSize uint32) {
	a.globalMu.Lock()
	defer a.globalMu.Unlock()
	a.global.GapTotal += uint64(gapSize)

	sh := a.shardFor(srcID)
	sh.mu.Lock()
	sh.getOrCreateLocked(srcID).Gaps += uint64(gapSize)
	sh.mu.Unlock()
}

// RecordReorder records an out-of-order-but-not-previously-seen frame.
func (a *Aggregator) RecordReorder(srcID uint16) {
	a.globalMu.Lock()
	defer a.globalMu.Unlock()
	a.global.ReorderTotal++

	sh := a.shardFor(srcID)
	sh.mu.Lock()
	sh.getOrCreateLocked(srcID).Reorders++
	sh.mu.Unlock()
}

// RecordDuplicate records a frame already observed in the dedup window.
func (a *Aggregator) RecordDuplicate(srcID uint16) {
	a.globalMu.Lock()
	defer a.globalMu.Unlock()
	a.global.DuplicateTotal++

	sh := a.shardFor(srcID)
	sh.mu.Lock()
	sh.getOrCreateLocked(srcID).Duplicates++
	sh.mu.Unlock()
}

// RecordCrcFail records a CRC mismatch. It also counts as malformed for
// the affected source, since the frame's contents cannot be trusted.
func (a *Aggregator) RecordCrcFail(srcID uint16) {
	a.globalMu.Lock()
	defer a.globalMu.Unlock()
	a.global.CrcFailTotal++

	sh := a.shardFor(srcID)
	sh.mu.Lock()
	sh.getOrCreateLocked(srcID).Malformed++
	sh.mu.Unlock()
}

// GlobalSnapshot returns a consistent copy of the gateway-wide counters.
func (a *Aggregator) GlobalSnapshot() GlobalStats {
	a.globalMu.RLock()
	defer a.globalMu.RUnlock()
	return a.global
}

// SourceSnapshot returns a consistent copy of one source's counters. A
// source never observed returns its zero value with SrcID set.
func (a *Aggregator) SourceSnapshot(srcID uint16) SourceStats {
	sh := a.shardFor(srcID)
	sh.mu.RLock()
	defer sh.mu.RUnlock()
	if s, ok := sh.sources[srcID]; ok {
		return *s
	}
	return SourceStats{SrcID: srcID}
}

// AllSourceSnapshots returns a consistent copy of every source's counters,
// in no particular order.
func (a *Aggregator) AllSourceSnapshots() []SourceStats {
	var out []SourceStats
	for i := range a.shards {
		sh := &a.shards[i]
		sh.mu.RLock()
		for _, s := range sh.sources {
			out = append(out, *s)
		}
		sh.mu.RUnlock()
	}
	return out
}

// HealthRollup derives the coarse health state from the current global
// counters: ERROR dominates DEGRADED, which dominates OK.
func (a *Aggregator) HealthRollup() Health {
	a.globalMu.RLock()
	defer a.globalMu.RUnlock()
	switch {
	case a.global.MalformedTotal > 0 || a.global.CrcFailTotal > 0:
		return HealthError
	case a.global.GapTotal > 0 || a.global.ReorderTotal > 0:
		return HealthDegraded
	default:
		return HealthOK
	}
}

// Reset clears every counter, global and per-source.
func (a *Aggregator) Reset() {
	a.globalMu.Lock()
	a.global = GlobalStats{}
	a.globalMu.Unlock()

	for i := range a.shards {
		sh := &a.shards[i]
		sh.mu.Lock()
		sh.sources = make(map[uint16]*SourceStats)
		sh.mu.Unlock()
	}
}
