package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	_ "modernc.org/sqlite"

	"GEWatch/internal/model"
)

var (
	// ErrNotFound: the name did not resolve to a catalog id.
	ErrNotFound = errors.New("item not found")
	// ErrNoData: the id resolved but the index has no price for it.
	ErrNoData = errors.New("no price data")
	// ErrUnavailable: the index could not be reached this cycle; the
	// stored baseline is untouched.
	ErrUnavailable = errors.New("price source unavailable")
)

// PriceSource is the slice of the price client the store depends on.
type PriceSource interface {
	ResolveID(ctx context.Context, name string) (int, error)
	FetchLatest(ctx context.Context, ids []int) (map[int]model.Quote, error)
}

// Store is the tracking store. SQLite is the single source of truth;
// the in-memory id map is only a cache of resolved ids, rebuilt from
// the table at open. All mutation goes through the single caller-side
// refresh loop, the mutex just keeps ad-hoc commands safe.
type Store struct {
	db  *sql.DB
	src PriceSource
	mu  sync.Mutex
	ids map[string]int
}

// Open opens (or creates) the tracking database and rebuilds the id
// cache from it.
func Open(dbPath string, src PriceSource) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	s := &Store{db: db, src: src, ids: make(map[string]int)}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	if err := s.loadIDs(); err != nil {
		db.Close()
		return nil, fmt.Errorf("load ids: %w", err)
	}

	log.Printf("[INFO] tracking store opened: %s (%d items)", dbPath, len(s.ids))
	return s, nil
}

func (s *Store) migrate() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS items (
		name      TEXT PRIMARY KEY COLLATE NOCASE,
		item_id   INTEGER NOT NULL,
		high      REAL NOT NULL,
		low       REAL NOT NULL,
		last_high REAL NOT NULL,
		last_low  REAL NOT NULL
	)`)
	return err
}

// cachedID looks the name up in the id cache, case-insensitively. A
// hit means the name resolved successfully at some point, so reusing
// the id keeps the resolution invariant intact without a catalog fetch.
func (s *Store) cachedID(name string) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for n, id := range s.ids {
		if strings.EqualFold(n, name) {
			return id, true
		}
	}
	return 0, false
}

func (s *Store) loadIDs() error {
	rows, err := s.db.Query(`SELECT name, item_id FROM items`)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var name string
		var id int
		if err := rows.Scan(&name, &id); err != nil {
			return err
		}
		s.ids[name] = id
	}
	return rows.Err()
}

// Add resolves the name, fetches one snapshot, and starts tracking the
// item with its baseline seeded from the current prices. Seeding last
// equal to current means the first reported delta is always zero; that
// hides momentum present before the add and is a deliberate policy,
// not an accident.
func (s *Store) Add(ctx context.Context, name string) (*model.TrackedItem, error) {
	id, ok := s.cachedID(name)
	if !ok {
		resolved, err := s.src.ResolveID(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
		}
		id = resolved
	}

	quotes, err := s.src.FetchLatest(ctx, []int{id})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	q, ok := quotes[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q (id %d)", ErrNoData, name, id)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err = s.db.ExecContext(ctx, `INSERT INTO items (name, item_id, high, low, last_high, last_low)
		VALUES (?,?,?,?,?,?)
		ON CONFLICT(name) DO UPDATE SET
			item_id=excluded.item_id,
			high=excluded.high, low=excluded.low,
			last_high=excluded.last_high, last_low=excluded.last_low`,
		name, id, q.High, q.Low, q.High, q.Low)
	if err != nil {
		return nil, fmt.Errorf("upsert %q: %w", name, err)
	}
	s.ids[name] = id

	log.Printf("[INFO] tracking %q (id %d) high=%.0f low=%.0f", name, id, q.High, q.Low)
	return &model.TrackedItem{
		Name: name, ID: id,
		CurrentHigh: q.High, CurrentLow: q.Low,
		LastHigh: q.High, LastLow: q.Low,
	}, nil
}

// Remove stops tracking the named item. Removing a name that is not
// tracked is a no-op.
func (s *Store) Remove(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx, `DELETE FROM items WHERE name = ?`, name); err != nil {
		return fmt.Errorf("delete %q: %w", name, err)
	}
	delete(s.ids, name)
	return nil
}

// List returns all tracked items, sorted by name.
func (s *Store) List(ctx context.Context) ([]model.TrackedItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.list(ctx)
}

func (s *Store) list(ctx context.Context) ([]model.TrackedItem, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, item_id, high, low, last_high, last_low FROM items ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	var items []model.TrackedItem
	for rows.Next() {
		var it model.TrackedItem
		if err := rows.Scan(&it.Name, &it.ID, &it.CurrentHigh, &it.CurrentLow, &it.LastHigh, &it.LastLow); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// Refresh fetches one batched snapshot for every tracked id, computes
// signed deltas against each item's stored prices, and advances the
// baseline. Items the snapshot has no data for are reported stale with
// their baseline retained. A transport failure returns ErrUnavailable
// and mutates nothing.
func (s *Store) Refresh(ctx context.Context) ([]model.ItemUpdate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.list(ctx)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}

	ids := make([]int, len(items))
	for i, it := range items {
		ids[i] = it.ID
	}
	quotes, err := s.src.FetchLatest(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	updates := make([]model.ItemUpdate, 0, len(items))
	for _, it := range items {
		q, ok := quotes[it.ID]
		if !ok {
			updates = append(updates, model.ItemUpdate{
				Name: it.Name, High: it.CurrentHigh, Low: it.CurrentLow, Stale: true,
			})
			continue
		}

		// Both price columns move in one statement so a crash never
		// leaves a half-written pair.
		_, err := s.db.ExecContext(ctx, `UPDATE items
			SET high = ?, low = ?, last_high = ?, last_low = ?
			WHERE name = ?`,
			q.High, q.Low, it.CurrentHigh, it.CurrentLow, it.Name)
		if err != nil {
			return nil, fmt.Errorf("update %q: %w", it.Name, err)
		}

		updates = append(updates, model.ItemUpdate{
			Name:      it.Name,
			High:      q.High,
			Low:       q.Low,
			DeltaHigh: q.High - it.CurrentHigh,
			DeltaLow:  q.Low - it.CurrentLow,
		})
	}
	return updates, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	log.Println("[INFO] closing tracking store")
	return s.db.Close()
}
