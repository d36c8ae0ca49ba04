package analytics

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	_ "modernc.org/sqlite"
)

// ErrUnknownKind is returned when recording an event of an unknown kind.
var ErrUnknownKind = errors.New("analytics: unknown event kind")

// Store persists events in SQLite.
type Store struct {
	db   *sql.DB
	salt string
	now  func() time.Time
}

// NewStore opens (or creates) the analytics database at dbPath.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open analytics db: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA busy_timeout=5000;",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("%s: %w", pragma, err)
		}
	}

	s := &Store{db: db, now: time.Now}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS events (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			visitor_hash TEXT NOT NULL,
			kind TEXT NOT NULL,
			project_id TEXT NOT NULL DEFAULT '',
			path TEXT NOT NULL DEFAULT '',
			browser TEXT NOT NULL,
			os TEXT NOT NULL,
			device TEXT NOT NULL,
			ts INTEGER NOT NULL
		);

		CREATE TABLE IF NOT EXISTS bot_visits (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			bot_name TEXT NOT NULL,
			path TEXT NOT NULL,
			ts INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_events_ts ON events(ts);
		CREATE INDEX IF NOT EXISTS idx_events_kind ON events(kind);
		CREATE INDEX IF NOT EXISTS idx_bot_visits_ts ON bot_visits(ts);

		CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
	`)
	return err
}

const currentSchemaVersion = 1

func (s *Store) migrate() error {
	verStr, err := s.GetSetting("schema_version")
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	version := 0
	if verStr != "" {
		if version, err = strconv.Atoi(verStr); err != nil {
			return fmt.Errorf("parse schema version %q: %w", verStr, err)
		}
	}
	if version < currentSchemaVersion {
		version = currentSchemaVersion
	}
	return s.SetSetting("schema_version", strconv.Itoa(version))
}

// GetSetting returns the value stored under key, or "" if there is none.
func (s *Store) GetSetting(key string) (string, error) {
	var val string
	err := s.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&val)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return val, err
}

// SetSetting upserts a setting.
func (s *Store) SetSetting(key, value string) error {
	_, err := s.db.Exec(`INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	return err
}

// Track records h as a bot visit or a human event.
func (s *Store) Track(ctx context.Context, h Hit) error {
	if !h.Kind.valid() {
		return fmt.Errorf("%w: %q", ErrUnknownKind, h.Kind)
	}
	now := s.now().UTC()
	if IsBot(h.UserAgent) {
		// Crawlers only ever show up as page views.
		if h.Kind != KindView {
			return nil
		}
		return s.SaveBotVisit(ctx, BotVisit{BotName: BotName(h.UserAgent), Path: h.Path, Timestamp: now})
	}
	browser, os, device := ParseUserAgent(h.UserAgent)
	return s.SaveEvent(ctx, Event{
		VisitorHash: HashVisitor(s.salt, h.IP, h.UserAgent),
		Kind:        h.Kind,
		ProjectID:   h.ProjectID,
		Path:        h.Path,
		Browser:     browser,
		OS:          os,
		Device:      device,
		Timestamp:   now,
	})
}

// SaveEvent inserts a human event.
func (s *Store) SaveEvent(ctx context.Context, e Event) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO events
		(visitor_hash, kind, project_id, path, browser, os, device, ts)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.VisitorHash, string(e.Kind), e.ProjectID, e.Path,
		e.Browser, e.OS, e.Device, e.Timestamp.UTC().Unix())
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

// SaveBotVisit inserts a crawler visit.
func (s *Store) SaveBotVisit(ctx context.Context, b BotVisit) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO bot_visits (bot_name, path, ts) VALUES (?, ?, ?)`,
		b.BotName, b.Path, b.Timestamp.UTC().Unix())
	if err != nil {
		return fmt.Errorf("insert bot visit: %w", err)
	}
	return nil
}

// Summary aggregates events with from <= ts < to. The queries run
// concurrently.
func (s *Store) Summary(ctx context.Context, from, to time.Time) (*Summary, error) {
	lo, hi := from.UTC().Unix(), to.UTC().Unix()
	sum := &Summary{
		From:        from,
		To:          to,
		ByKind:      make(map[Kind]int, len(Kinds)),
		TopProjects: []DimensionStat{},
		Browsers:    []DimensionStat{},
		Devices:     []DimensionStat{},
		DailyViews:  []DailyView{},
	}

	var mu sync.Mutex
	var wg sync.WaitGroup
	var firstErr error
	run := func(name string, fn func() error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := fn(); err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = fmt.Errorf("%s: %w", name, err)
				}
				mu.Unlock()
			}
		}()
	}

	run("unique visitors", func() error {
		var n int
		err := s.db.QueryRowContext(ctx, `SELECT COUNT(DISTINCT visitor_hash) FROM events
			WHERE ts >= ? AND ts < ?`, lo, hi).Scan(&n)
		mu.Lock()
		sum.UniqueVisitors = n
		mu.Unlock()
		return err
	})

	run("by kind", func() error {
		rows, err := s.dimension(ctx, `SELECT kind, COUNT(*) FROM events
			WHERE ts >= ? AND ts < ? GROUP BY kind`, lo, hi)
		if err != nil {
			return err
		}
		mu.Lock()
		for _, r := range rows {
			sum.ByKind[Kind(r.Name)] = r.Count
		}
		mu.Unlock()
		return nil
	})

	run("top projects", func() error {
		rows, err := s.dimension(ctx, `SELECT project_id, COUNT(*) AS n FROM events
			WHERE ts >= ? AND ts < ? AND kind = 'project_open'
			GROUP BY project_id ORDER BY n DESC, project_id LIMIT 10`, lo, hi)
		if err != nil {
			return err
		}
		mu.Lock()
		sum.TopProjects = rows
		mu.Unlock()
		return nil
	})

	run("browsers", func() error {
		rows, err := s.dimension(ctx, `SELECT browser, COUNT(DISTINCT visitor_hash) AS n FROM events
			WHERE ts >= ? AND ts < ? GROUP BY browser ORDER BY n DESC, browser`, lo, hi)
		if err != nil {
			return err
		}
		mu.Lock()
		sum.Browsers = rows
		mu.Unlock()
		return nil
	})

	run("devices", func() error {
		rows, err := s.dimension(ctx, `SELECT device, COUNT(DISTINCT visitor_hash) AS n FROM events
			WHERE ts >= ? AND ts < ? GROUP BY device ORDER BY n DESC, device`, lo, hi)
		if err != nil {
			return err
		}
		mu.Lock()
		sum.Devices = rows
		mu.Unlock()
		return nil
	})

	run("daily views", func() error {
		rows, err := s.dimension(ctx, `SELECT date(ts, 'unixepoch') AS d, COUNT(*) FROM events
			WHERE ts >= ? AND ts < ? AND kind = 'view' GROUP BY d ORDER BY d`, lo, hi)
		if err != nil {
			return err
		}
		days := make([]DailyView, len(rows))
		for i, r := range rows {
			days[i] = DailyView{Date: r.Name, Views: r.Count}
		}
		mu.Lock()
		sum.DailyViews = days
		mu.Unlock()
		return nil
	})

	run("bot visits", func() error {
		var n int
		err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM bot_visits
			WHERE ts >= ? AND ts < ?`, lo, hi).Scan(&n)
		mu.Lock()
		sum.BotVisits = n
		mu.Unlock()
		return err
	})

	wg.Wait()
	if firstErr != nil {
		return nil, firstErr
	}
	return sum, nil
}

func (s *Store) dimension(ctx context.Context, query string, args ...any) ([]DimensionStat, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []DimensionStat{}
	for rows.Next() {
		var d DimensionStat
		if err := rows.Scan(&d.Name, &d.Count); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// SortedKinds returns the kinds present in ByKind in display order.
func (sum *Summary) SortedKinds() []Kind {
	out := make([]Kind, 0, len(sum.ByKind))
	for k := range sum.ByKind {
		out = append(out, k)
	}
	order := make(map[Kind]int, len(Kinds))
	for i, k := range Kinds {
		order[k] = i
	}
	sort.Slice(out, func(i, j int) bool { return order[out[i]] < order[out[j]] })
	return out
}

// Cleanup removes events and bot visits older than retentionDays.
func (s *Store) Cleanup(ctx context.Context, retentionDays int) (int64, error) {
	cutoff := s.now().UTC().AddDate(0, 0, -retentionDays).Unix()
	var total int64
	for _, table := range []string{"events", "bot_visits"} {
		res, err := s.db.ExecContext(ctx, `DELETE FROM `+table+` WHERE ts < ?`, cutoff)
		if err != nil {
			return total, fmt.Errorf("cleanup %s: %w", table, err)
		}
		n, _ := res.RowsAffected()
		total += n
	}
	return total, nil
}

// StartCleanupScheduler runs Cleanup every interval until the returned stop
// function is called.
func (s *Store) StartCleanupScheduler(retentionDays int, interval time.Duration, logger echo.Logger) func() {
	ticker := time.NewTicker(interval)
	done := make(chan struct{})
	var once sync.Once

	go func() {
		for {
			select {
			case <-ticker.C:
				n, err := s.Cleanup(context.Background(), retentionDays)
				if err != nil {
					logger.Errorf("analytics cleanup: %v", err)
					continue
				}
				if n > 0 {
					logger.Infof("analytics cleanup removed %d rows", n)
				}
			case <-done:
				ticker.Stop()
				return
			}
		}
	}()

	return func() { once.Do(func() { close(done) }) }
}
