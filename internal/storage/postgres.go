package storage

import (
	"context"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	internalmodels "eatery/internal/models"
)

const schema = `
CREATE TABLE IF NOT EXISTS candidates (
	query TEXT NOT NULL,
	location TEXT NOT NULL,
	candidate_id TEXT NOT NULL,
	position INTEGER NOT NULL,
	listing_name TEXT NOT NULL,
	lat DOUBLE PRECISION NOT NULL,
	lon DOUBLE PRECISION NOT NULL,
	total_user_ratings DOUBLE PRECISION,
	rating DOUBLE PRECISION,
	price_level DOUBLE PRECISION,
	great_circle_distance DOUBLE PRECISION,
	great_circle_unit TEXT NOT NULL,
	routed_distance DOUBLE PRECISION,
	distance_unit TEXT NOT NULL,
	routed_duration DOUBLE PRECISION,
	duration_unit TEXT NOT NULL,
	mode TEXT NOT NULL,
	route_status TEXT NOT NULL,
	loaded_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (query, location, candidate_id)
);
CREATE INDEX IF NOT EXISTS candidates_location_idx ON candidates (location);
`

const insertCandidate = `
INSERT INTO candidates (
	query, location, candidate_id, position, listing_name, lat, lon,
	total_user_ratings, rating, price_level,
	great_circle_distance, great_circle_unit,
	routed_distance, distance_unit, routed_duration, duration_unit, mode, route_status
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`

// Postgres persists merged tables, one row per candidate.
type Postgres struct {
	pool *pgxpool.Pool
}

func OpenPostgres(ctx context.Context, databaseURL string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &Postgres{pool: pool}, nil
}

func (p *Postgres) Close() {
	p.pool.Close()
}

func (p *Postgres) InitSchema(ctx context.Context) error {
	_, err := p.pool.Exec(ctx, schema)
	return err
}

// SaveTable replaces the stored rows of table's query and location.
func (p *Postgres) SaveTable(ctx context.Context, table internalmodels.MergedTable) error {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM candidates WHERE query = $1 AND location = $2`, table.Query, table.Location.Name); err != nil {
		return fmt.Errorf("clear %q: %w", table.Location.Name, err)
	}

	batch := &pgx.Batch{}
	for _, args := range rowArgs(table) {
		batch.Queue(insertCandidate, args...)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("insert %q: %w", table.Location.Name, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return err
	}
	log.Printf("Saved %d rows for %q (query %q)", table.Len(), table.Location.Name, table.Query)
	return nil
}

// CountRows returns how many candidates are stored for query.
func (p *Postgres) CountRows(ctx context.Context, query string) (int, error) {
	var n int
	err := p.pool.QueryRow(ctx, `SELECT count(*) FROM candidates WHERE query = $1`, query).Scan(&n)
	return n, err
}

// rowArgs orders the insert arguments. Missing values are nil pointers and
// become NULL.
func rowArgs(table internalmodels.MergedTable) [][]any {
	out := make([][]any, len(table.Rows))
	for i, r := range table.Rows {
		out[i] = []any{
			table.Query,
			table.Location.Name,
			r.ID,
			i,
			r.Name,
			r.Coordinates.Lat,
			r.Coordinates.Lon,
			r.RatingCount.Ptr(),
			r.Rating.Ptr(),
			r.PriceLevel.Ptr(),
			r.GreatCircle.Ptr(),
			table.GreatCircleUnit,
			r.RoutedDistance.Ptr(),
			table.DistanceUnit,
			r.RoutedDuration.Ptr(),
			table.DurationUnit,
			table.Mode,
			r.RouteStatus,
		}
	}
	return out
}
