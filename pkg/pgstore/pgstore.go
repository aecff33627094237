package pgstore

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	migrate "github.com/rubenv/sql-migrate"
	"github.com/sirupsen/logrus"

	"github.com/pershin-daniil/bsa-site/pkg/metrics"
	"github.com/pershin-daniil/bsa-site/pkg/models"
)

//go:embed migrations
var migrations embed.FS

const retries = 3

type Store struct {
	log *logrus.Entry
	db  *sqlx.DB
}

func NewStore(ctx context.Context, log *logrus.Logger, dsn string) (*Store, error) {
	db, err := sqlx.ConnectContext(ctx, "pgx", dsn)
	if err != nil {
		return nil, err
	}
	return &Store{
		log: log.WithField("component", "pgstore"),
		db:  db,
	}, nil
}

func (s *Store) Migrate(direction migrate.MigrationDirection) error {
	assetDir := func() func(string) ([]string, error) {
		return func(path string) ([]string, error) {
			dirEntry, er := migrations.ReadDir(path)
			if er != nil {
				return nil, er
			}
			entries := make([]string, 0)
			for _, e := range dirEntry {
				entries = append(entries, e.Name())
			}

			return entries, nil
		}
	}()
	asset := migrate.AssetMigrationSource{
		Asset:    migrations.ReadFile,
		AssetDir: assetDir,
		Dir:      "migrations",
	}
	_, err := migrate.Exec(s.db.DB, "postgres", asset, direction)
	return err
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ResetTables(ctx context.Context, tables []string) error {
	_, err := s.db.ExecContext(ctx, `TRUNCATE TABLE `+strings.Join(tables, `, `)+` RESTART IDENTITY`)
	return err
}

func observe(method string, start time.Time, err error) {
	metrics.PgDuration.WithLabelValues(method).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.PgErrCount.WithLabelValues(method).Inc()
	}
}

// Collection stores records of one kind as JSON documents, ordered by
// insertion.
type Collection[T models.Entity[T]] struct {
	store *Store
	name  string
}

func NewCollection[T models.Entity[T]](store *Store, name string) *Collection[T] {
	return &Collection[T]{store: store, name: name}
}

func (c *Collection[T]) List(ctx context.Context) (items []T, err error) {
	defer func(start time.Time) { observe("list", start, err) }(time.Now())
	query := `
SELECT payload FROM records
WHERE collection = $1
ORDER BY seq;`
	var payloads [][]byte
	for i := 0; i < retries; i++ {
		if err = c.store.db.SelectContext(ctx, &payloads, query, c.name); err != nil {
			continue
		}
		break
	}
	if err != nil {
		return nil, fmt.Errorf("err listing %s: %w", c.name, err)
	}
	items = make([]T, 0, len(payloads))
	for _, payload := range payloads {
		var item T
		if err = json.Unmarshal(payload, &item); err != nil {
			return nil, fmt.Errorf("err decoding %s record: %w", c.name, err)
		}
		items = append(items, item)
	}
	return items, nil
}

func (c *Collection[T]) Insert(ctx context.Context, item T) (_ T, err error) {
	defer func(start time.Time) { observe("insert", start, err) }(time.Now())
	var zero T
	payload, err := json.Marshal(item)
	if err != nil {
		return zero, fmt.Errorf("err encoding %s record: %w", c.name, err)
	}
	query := `
INSERT INTO records (collection, id, payload)
VALUES ($1, $2, $3)
ON CONFLICT (collection, id) DO NOTHING
RETURNING id;`
	var id string
	for i := 0; i < retries; i++ {
		err = c.store.db.QueryRowxContext(ctx, query, c.name, item.EntityID(), payload).Scan(&id)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return zero, fmt.Errorf("err inserting %s %s: %w", c.name, item.EntityID(), models.ErrDuplicateID)
		case err != nil:
			continue
		}
		return item, nil
	}
	return zero, fmt.Errorf("err inserting %s %s: %w", c.name, item.EntityID(), err)
}

func (c *Collection[T]) Delete(ctx context.Context, id string) (_ T, err error) {
	defer func(start time.Time) { observe("delete", start, err) }(time.Now())
	var zero T
	query := `
DELETE FROM records
WHERE collection = $1 AND id = $2
RETURNING payload;`
	var payload []byte
	for i := 0; i < retries; i++ {
		err = c.store.db.GetContext(ctx, &payload, query, c.name, id)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return zero, fmt.Errorf("err deleting %s %s: %w", c.name, id, models.ErrNotFound)
		case err != nil:
			continue
		}
		var item T
		if err = json.Unmarshal(payload, &item); err != nil {
			return zero, fmt.Errorf("err decoding %s record: %w", c.name, err)
		}
		return item, nil
	}
	return zero, fmt.Errorf("err deleting %s %s: %w", c.name, id, err)
}
