package store

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lukman83/promobot/internal/models"
)

const table = "posted_products"

const schema = `
CREATE TABLE IF NOT EXISTS posted_products (
	product_id      TEXT PRIMARY KEY,
	product_name    TEXT NOT NULL,
	product_link    TEXT NOT NULL,
	product_price   DOUBLE PRECISION NOT NULL DEFAULT 0,
	posted_telegram BOOLEAN NOT NULL DEFAULT FALSE,
	posted_whatsapp BOOLEAN NOT NULL DEFAULT FALSE,
	posted_twitter  BOOLEAN NOT NULL DEFAULT FALSE,
	posted_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_posted_products_posted_at ON posted_products (posted_at DESC);
`

// DB is the slice of pgxpool.Pool the store needs.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// NewPool opens and pings a pgx pool.
func NewPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse db dsn: %w", err)
	}

	cfg.MaxConns = 5
	cfg.MinConns = 1
	cfg.MaxConnIdleTime = 5 * time.Minute
	cfg.HealthCheckPeriod = 1 * time.Minute

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pg pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	return pool, nil
}

// PostgresStore implements Store on the posted_products table.
type PostgresStore struct {
	db DB
	sb sq.StatementBuilderType
}

func NewPostgresStore(db DB) *PostgresStore {
	return &PostgresStore{
		db: db,
		sb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// Migrate creates the table when missing.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("migrate posted_products: %w", err)
	}
	return nil
}

func (s *PostgresStore) PostedIDs(ctx context.Context, ids []string) (map[string]bool, error) {
	out := make(map[string]bool, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	sqlStr, args, err := s.postedIDsQuery(ids)
	if err != nil {
		return nil, fmt.Errorf("build posted ids sql: %w", err)
	}

	rows, err := s.db.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("query posted ids: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan posted id: %w", err)
		}
		out[id] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate posted ids: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) MarkPosted(ctx context.Context, p models.Product, ch models.Channel) error {
	if p.ID == "" {
		return fmt.Errorf("product id is empty")
	}
	sqlStr, args, err := s.upsertQuery(p, ch)
	if err != nil {
		return fmt.Errorf("build upsert posted product sql: %w", err)
	}
	if _, err := s.db.Exec(ctx, sqlStr, args...); err != nil {
		return fmt.Errorf("upsert posted product: %w", err)
	}
	return nil
}

func (s *PostgresStore) Recent(ctx context.Context, limit int) ([]models.PostedProduct, error) {
	if limit <= 0 {
		limit = 20
	}
	sqlStr, args, err := s.sb.
		Select(
			"product_id",
			"product_name",
			"product_link",
			"product_price",
			"posted_telegram",
			"posted_whatsapp",
			"posted_twitter",
			"posted_at",
		).
		From(table).
		OrderBy("posted_at DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build recent sql: %w", err)
	}

	rows, err := s.db.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("query recent: %w", err)
	}
	defer rows.Close()

	var out []models.PostedProduct
	for rows.Next() {
		var r models.PostedProduct
		if err := rows.Scan(
			&r.ProductID,
			&r.ProductName,
			&r.ProductLink,
			&r.ProductPrice,
			&r.PostedTelegram,
			&r.PostedWhatsapp,
			&r.PostedTwitter,
			&r.PostedAt,
		); err != nil {
			return nil, fmt.Errorf("scan recent row: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate recent: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) postedIDsQuery(ids []string) (string, []any, error) {
	return s.sb.
		Select("product_id").
		From(table).
		Where(sq.Eq{"product_id": ids}).
		ToSql()
}

// upsertQuery inserts the record or OR-merges the channel flags into the
// existing one, refreshing posted_at.
func (s *PostgresStore) upsertQuery(p models.Product, ch models.Channel) (string, []any, error) {
	return s.sb.
		Insert(table).
		Columns(
			"product_id",
			"product_name",
			"product_link",
			"product_price",
			"posted_telegram",
			"posted_whatsapp",
			"posted_twitter",
			"posted_at",
		).
		Values(
			p.ID,
			p.Name,
			p.Link,
			p.Price,
			ch == models.ChannelTelegram,
			ch == models.ChannelWhatsApp,
			ch == models.ChannelTwitter,
			sq.Expr("NOW()"),
		).
		Suffix(`
ON CONFLICT (product_id)
DO UPDATE SET
	product_name = EXCLUDED.product_name,
	product_link = EXCLUDED.product_link,
	product_price = EXCLUDED.product_price,
	posted_telegram = posted_products.posted_telegram OR EXCLUDED.posted_telegram,
	posted_whatsapp = posted_products.posted_whatsapp OR EXCLUDED.posted_whatsapp,
	posted_twitter = posted_products.posted_twitter OR EXCLUDED.posted_twitter,
	posted_at = NOW()
`).
		ToSql()
}
