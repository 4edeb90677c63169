// Package eventarchive persists eventbus.Records to SQLite for later
// querying through the command channel's GET EVENTS. Like the gridstore
// archive it's modeled on, inserts are batched off the hot path: Enqueue
// never blocks the event bus, and backpressure drops the oldest pending
// write rather than stall ingestion.
package eventarchive

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"sentrygate/cmdhandler"
	"sentrygate/eventbus"
)

// Config controls batching behavior.
type Config struct {
	DBPath          string
	QueueSize       int
	BatchSize       int
	BatchIntervalMS int
}

func (c Config) sanitized() Config {
	if c.QueueSize <= 0 {
		c.QueueSize = 4096
	}
	if c.BatchSize <= 0 {
		c.BatchSize = 100
	}
	if c.BatchIntervalMS <= 0 {
		c.BatchIntervalMS = 500
	}
	return c
}

// Archive writes events to SQLite asynchronously and serves recent-event
// queries back out.
type Archive struct {
	cfg       Config
	db        *sql.DB
	queue     chan eventbus.Record
	stop      chan struct{}
	done      chan struct{}
	dropCount uint64
}

// Open creates (or reuses) the database at cfg.DBPath and prepares its schema.
func Open(cfg Config) (*Archive, error) {
	cfg = cfg.sanitized()
	if dir := filepath.Dir(cfg.DBPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("eventarchive: mkdir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("eventarchive: open db: %w", err)
	}
	if _, err := db.Exec(`pragma journal_mode=WAL; pragma synchronous=NORMAL;`); err != nil {
		db.Close()
		return nil, fmt.Errorf("eventarchive: pragmas: %w", err)
	}
	if err := ensureSchema(db); err != nil {
		db.Close()
		return nil, err
	}

	a := &Archive{
		cfg:   cfg,
		db:    db,
		queue: make(chan eventbus.Record, cfg.QueueSize),
		stop:  make(chan struct{}),
		done:  make(chan struct{}),
	}
	go a.insertLoop()
	return a, nil
}

func ensureSchema(db *sql.DB) error {
	_, err := db.Exec(`create table if not exists events (
		rowid integer primary key autoincrement,
		ts_ns integer not null,
		event_id integer not null,
		category integer not null,
		severity integer not null,
		detail text not null
	)`)
	if err != nil {
		return fmt.Errorf("eventarchive: ensure schema: %w", err)
	}
	return nil
}

// Enqueue queues r for archival without blocking. If the queue is full,
// the record is dropped and DroppedCount is incremented.
func (a *Archive) Enqueue(r eventbus.Record) {
	select {
	case a.queue <- r:
	default:
		a.dropCount++
	}
}

// DroppedCount reports how many records were dropped due to queue pressure.
func (a *Archive) DroppedCount() uint64 {
	return a.dropCount
}

func (a *Archive) insertLoop() {
	defer close(a.done)

	batch := make([]eventbus.Record, 0, a.cfg.BatchSize)
	interval := time.Duration(a.cfg.BatchIntervalMS) * time.Millisecond
	timer := time.NewTimer(interval)
	defer timer.Stop()

	for {
		select {
		case <-a.stop:
			a.flush(batch)
			return
		case r := <-a.queue:
			batch = append(batch, r)
			if len(batch) >= a.cfg.BatchSize {
				a.flush(batch)
				batch = batch[:0]
				resetTimer(timer, interval)
			}
		case <-timer.C:
			if len(batch) > 0 {
				a.flush(batch)
				batch = batch[:0]
			}
			timer.Reset(interval)
		}
	}
}

func resetTimer(t *time.Timer, d time.Duration) {
	if !t.Stop() {
		<-t.C
	}
	t.Reset(d)
}

func (a *Archive) flush(batch []eventbus.Record) {
	if len(batch) == 0 {
		return
	}
	tx, err := a.db.Begin()
	if err != nil {
		return
	}
	stmt, err := tx.Prepare(`insert into events(ts_ns, event_id, category, severity, detail) values(?,?,?,?,?)`)
	if err != nil {
		tx.Rollback()
		return
	}
	for _, r := range batch {
		stmt.Exec(int64(r.TimestampNs), int(r.ID), int(r.Category), int(r.Severity), r.Detail)
	}
	stmt.Close()
	tx.Commit()
}

// Recent returns the n most recently archived events, newest first.
func (a *Archive) Recent(n int) ([]cmdhandler.EventEntry, error) {
	rows, err := a.db.Query(
		`select ts_ns, event_id, category, severity, detail from events order by rowid desc limit ?`, n)
	if err != nil {
		return nil, fmt.Errorf("eventarchive: query recent: %w", err)
	}
	defer rows.Close()

	var out []cmdhandler.EventEntry
	for rows.Next() {
		var tsNs int64
		var eventID, category, severity int
		var detail string
		if err := rows.Scan(&tsNs, &eventID, &category, &severity, &detail); err != nil {
			return nil, fmt.Errorf("eventarchive: scan row: %w", err)
		}
		out = append(out, cmdhandler.EventEntry{
			ID:          uint16(eventID),
			Name:        eventbus.ID(eventID).String(),
			Category:    eventbus.Category(category).String(),
			Severity:    eventbus.Severity(severity).String(),
			TimestampNs: uint64(tsNs),
			Detail:      detail,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("eventarchive: iterate rows: %w", err)
	}
	return out, nil
}

// Close stops the insert loop, flushing any pending batch, then closes the
// underlying database.
func (a *Archive) Close() error {
	close(a.stop)
	<-a.done
	return a.db.Close()
}
