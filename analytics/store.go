package analytics

import (
	"context"
	"crypto/rand"
	"database/sql"
	"embed"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/pressly/goose/v3"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// timeLayout is how timestamps are stored. It sorts lexically and is
// understood by SQLite's date functions.
const timeLayout = "2006-01-02 15:04:05"

const topLimit = 10

// Store provides database operations for analytics.
type Store struct {
	db   *sql.DB
	sb   sq.StatementBuilderType
	salt string
}

// NewStore opens (creating if needed) the SQLite database at dbPath, applies
// pending migrations and loads the hashing salt.
func NewStore(ctx context.Context, dbPath string) (*Store, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("create analytics dir: %w", err)
		}
	}

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
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("%s: %w", pragma, err)
		}
	}

	if err := migrate(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	s := &Store{
		db: db,
		sb: sq.StatementBuilder.PlaceholderFormat(sq.Question),
	}
	if err := s.loadSalt(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// goose keeps its base FS and dialect in package state.
var migrateMu sync.Mutex

func migrate(ctx context.Context, db *sql.DB) error {
	migrateMu.Lock()
	defer migrateMu.Unlock()

	goose.SetBaseFS(embedMigrations)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}

// Version returns the applied schema version.
func (s *Store) Version() (int64, error) {
	migrateMu.Lock()
	defer migrateMu.Unlock()
	if err := goose.SetDialect("sqlite3"); err != nil {
		return 0, err
	}
	return goose.GetDBVersion(s.db)
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Salt returns the per-installation salt used to hash visitor identifiers.
func (s *Store) Salt() string {
	return s.salt
}

func (s *Store) loadSalt(ctx context.Context) error {
	salt, err := s.GetSetting(ctx, "hash_salt")
	if err != nil {
		return fmt.Errorf("read hash salt: %w", err)
	}
	if salt == "" {
		b := make([]byte, 32)
		if _, err := rand.Read(b); err != nil {
			return fmt.Errorf("generate salt: %w", err)
		}
		salt = hex.EncodeToString(b)
		if err := s.SetSetting(ctx, "hash_salt", salt); err != nil {
			return fmt.Errorf("store hash salt: %w", err)
		}
	}
	s.salt = salt
	return nil
}

// GetSetting returns a setting value, or "" if it is not set.
func (s *Store) GetSetting(ctx context.Context, key string) (string, error) {
	query, args, err := s.sb.Select("value").From("settings").Where(sq.Eq{"key": key}).ToSql()
	if err != nil {
		return "", fmt.Errorf("build query: %w", err)
	}
	var val string
	err = s.db.QueryRowContext(ctx, query, args...).Scan(&val)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return val, err
}

// SetSetting upserts a setting value.
func (s *Store) SetSetting(ctx context.Context, key, value string) error {
	query, args, err := s.sb.Insert("settings").
		Columns("key", "value").
		Values(key, value).
		Suffix("ON CONFLICT(key) DO UPDATE SET value = excluded.value").
		ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}
	_, err = s.db.ExecContext(ctx, query, args...)
	return err
}

// SaveVisit stores a new visit.
func (s *Store) SaveVisit(ctx context.Context, v *Visit) error {
	query, args, err := s.sb.Insert("visits").
		Columns("visitor_id", "session_id", "ip_hash", "browser", "os", "device",
			"path", "referrer", "screen_size", "timestamp", "duration_sec").
		Values(v.VisitorID, v.SessionID, v.IPHash, v.Browser, v.OS, v.Device,
			v.Path, v.Referrer, v.ScreenSize, v.Timestamp.UTC().Format(timeLayout), v.DurationSec).
		ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("insert visit: %w", err)
	}
	v.ID, _ = res.LastInsertId()
	return nil
}

// UpdateVisitDuration sets the duration of the visitor's latest view of path.
func (s *Store) UpdateVisitDuration(ctx context.Context, visitorID, path string, durationSec int) error {
	query, args, err := s.sb.Update("visits").
		Set("duration_sec", durationSec).
		Where("id = (SELECT id FROM visits WHERE visitor_id = ? AND path = ? ORDER BY timestamp DESC, id DESC LIMIT 1)",
			visitorID, path).
		ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}
	_, err = s.db.ExecContext(ctx, query, args...)
	return err
}

// SaveBotVisit stores a new crawler visit.
func (s *Store) SaveBotVisit(ctx context.Context, bv *BotVisit) error {
	query, args, err := s.sb.Insert("bot_visits").
		Columns("bot_name", "ip_hash", "user_agent", "path", "timestamp").
		Values(bv.BotName, bv.IPHash, bv.UserAgent, bv.Path, bv.Timestamp.UTC().Format(timeLayout)).
		ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("insert bot visit: %w", err)
	}
	bv.ID, _ = res.LastInsertId()
	return nil
}

func inRange(from, to time.Time) sq.And {
	return sq.And{
		sq.GtOrEq{"timestamp": from.UTC().Format(timeLayout)},
		sq.Lt{"timestamp": to.UTC().Format(timeLayout)},
	}
}

func (s *Store) scalar(ctx context.Context, b sq.SelectBuilder, dst any) error {
	query, args, err := b.ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}
	return s.db.QueryRowContext(ctx, query, args...).Scan(dst)
}

func (s *Store) dimension(ctx context.Context, table, col string, from, to time.Time) ([]DimensionStat, error) {
	query, args, err := s.sb.Select(col, "COUNT(*) AS c").
		From(table).
		Where(inRange(from, to)).
		GroupBy(col).
		OrderBy("c DESC", col).
		Limit(topLimit).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
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

func bucketExpr(b Bucket) string {
	switch b {
	case Hourly:
		return "strftime('%H:00', timestamp)"
	case Monthly:
		return "strftime('%Y-%m', timestamp)"
	default:
		return "strftime('%Y-%m-%d', timestamp)"
	}
}

func (s *Store) series(ctx context.Context, table string, from, to time.Time, b Bucket) ([]DailyView, error) {
	views, err := s.buckets(ctx, table, bucketExpr(b), from, to)
	if err != nil {
		return nil, err
	}
	if b == Hourly {
		return fillHours(views, from), nil
	}
	return views, nil
}

func (s *Store) buckets(ctx context.Context, table, expr string, from, to time.Time) ([]DailyView, error) {
	query, args, err := s.sb.Select(expr+" AS bucket", "COUNT(*)").
		From(table).
		Where(inRange(from, to)).
		GroupBy("bucket").
		OrderBy("bucket").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []DailyView{}
	for rows.Next() {
		var v DailyView
		if err := rows.Scan(&v.Date, &v.Views); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// fillHours returns all 24 hourly slots starting at from, zero where sparse
// has no entry.
func fillHours(sparse []DailyView, from time.Time) []DailyView {
	counts := make(map[string]int, len(sparse))
	for _, v := range sparse {
		counts[v.Date] = v.Views
	}
	out := make([]DailyView, 24)
	for i := range out {
		label := fmt.Sprintf("%02d:00", from.Add(time.Duration(i)*time.Hour).Hour())
		out[i] = DailyView{Date: label, Views: counts[label]}
	}
	return out
}

func (s *Store) topPages(ctx context.Context, table string, from, to time.Time) ([]PageStat, error) {
	dims, err := s.dimension(ctx, table, "path", from, to)
	if err != nil {
		return nil, err
	}
	pages := make([]PageStat, len(dims))
	for i, d := range dims {
		pages[i] = PageStat{Path: d.Name, Views: d.Count}
	}
	return pages, nil
}

func (s *Store) latestPages(ctx context.Context, from, to time.Time) ([]LatestPageVisit, error) {
	query, args, err := s.sb.Select("path", "timestamp", "browser").
		From("visits").
		Where(inRange(from, to)).
		OrderBy("timestamp DESC", "id DESC").
		Limit(topLimit).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []LatestPageVisit{}
	for rows.Next() {
		var l LatestPageVisit
		if err := rows.Scan(&l.Path, &l.Timestamp, &l.Browser); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// GetStats aggregates visitor data in [from, to). The queries run
// concurrently; the first error wins.
func (s *Store) GetStats(ctx context.Context, from, to time.Time, bucket Bucket) (*Stats, error) {
	stats := &Stats{Period: periodLabel(from, to)}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
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

	visits := s.sb.Select().From("visits").Where(inRange(from, to))
	run("count views", func() error {
		return s.scalar(ctx, visits.Column("COUNT(*)"), &stats.TotalViews)
	})
	run("count unique visitors", func() error {
		return s.scalar(ctx, visits.Column("COUNT(DISTINCT visitor_id)"), &stats.UniqueVisitors)
	})
	run("avg duration", func() error {
		var avg float64
		if err := s.scalar(ctx, visits.Column("COALESCE(AVG(NULLIF(duration_sec, 0)), 0)"), &avg); err != nil {
			return err
		}
		stats.AvgDuration = int(avg)
		return nil
	})
	run("top pages", func() (err error) {
		stats.TopPages, err = s.topPages(ctx, "visits", from, to)
		return err
	})
	run("latest pages", func() (err error) {
		stats.LatestPages, err = s.latestPages(ctx, from, to)
		return err
	})
	run("browser stats", func() (err error) {
		stats.BrowserStats, err = s.dimension(ctx, "visits", "browser", from, to)
		return err
	})
	run("os stats", func() (err error) {
		stats.OSStats, err = s.dimension(ctx, "visits", "os", from, to)
		return err
	})
	run("device stats", func() (err error) {
		stats.DeviceStats, err = s.dimension(ctx, "visits", "device", from, to)
		return err
	})
	run("referrer stats", func() (err error) {
		stats.ReferrerStats, err = s.dimension(ctx, "visits", "referrer", from, to)
		return err
	})
	run("views", func() (err error) {
		stats.Views, err = s.series(ctx, "visits", from, to, bucket)
		return err
	})
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	return stats, nil
}

// GetBotStats aggregates crawler data in [from, to).
func (s *Store) GetBotStats(ctx context.Context, from, to time.Time, bucket Bucket) (*BotStats, error) {
	stats := &BotStats{Period: periodLabel(from, to)}
	var err error

	count := s.sb.Select("COUNT(*)").From("bot_visits").Where(inRange(from, to))
	if err = s.scalar(ctx, count, &stats.TotalVisits); err != nil {
		return nil, fmt.Errorf("count bot visits: %w", err)
	}
	if stats.TopBots, err = s.dimension(ctx, "bot_visits", "bot_name", from, to); err != nil {
		return nil, fmt.Errorf("top bots: %w", err)
	}
	if stats.TopPages, err = s.topPages(ctx, "bot_visits", from, to); err != nil {
		return nil, fmt.Errorf("top bot pages: %w", err)
	}
	if stats.Visits, err = s.series(ctx, "bot_visits", from, to, bucket); err != nil {
		return nil, fmt.Errorf("bot visits: %w", err)
	}
	return stats, nil
}

func periodLabel(from, to time.Time) string {
	return from.Format("2006-01-02") + " to " + to.Format("2006-01-02")
}

// RealtimeVisitors returns the number of distinct visitors in the five
// minutes before now.
func (s *Store) RealtimeVisitors(ctx context.Context, now time.Time) (int, error) {
	var n int
	b := s.sb.Select("COUNT(DISTINCT visitor_id)").
		From("visits").
		Where(sq.GtOrEq{"timestamp": now.UTC().Add(-5 * time.Minute).Format(timeLayout)})
	return n, s.scalar(ctx, b, &n)
}

// DeleteBefore removes visits and crawler visits older than cutoff and
// returns the number of deleted rows.
func (s *Store) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	var total int64
	for _, table := range []string{"visits", "bot_visits"} {
		query, args, err := s.sb.Delete(table).
			Where(sq.Lt{"timestamp": cutoff.UTC().Format(timeLayout)}).
			ToSql()
		if err != nil {
			return total, fmt.Errorf("build query: %w", err)
		}
		res, err := s.db.ExecContext(ctx, query, args...)
		if err != nil {
			return total, fmt.Errorf("cleanup %s: %w", table, err)
		}
		n, _ := res.RowsAffected()
		total += n
	}
	return total, nil
}

// StartCleanupScheduler deletes data older than retentionDays every night
// at 03:30 UTC. The returned function stops the scheduler and waits for a
// running cleanup to finish.
func (s *Store) StartCleanupScheduler(retentionDays int, log *zap.SugaredLogger) (func(), error) {
	c := cron.New()
	_, err := c.AddFunc("CRON_TZ=UTC 30 3 * * *", func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		cutoff := time.Now().UTC().AddDate(0, 0, -retentionDays)
		n, err := s.DeleteBefore(ctx, cutoff)
		if err != nil {
			log.Errorw("analytics cleanup failed", "err", err)
			return
		}
		log.Infow("analytics cleanup", "deleted", n, "cutoff", cutoff.Format(time.DateOnly))
	})
	if err != nil {
		return nil, fmt.Errorf("schedule cleanup: %w", err)
	}
	c.Start()
	return func() { <-c.Stop().Done() }, nil
}
