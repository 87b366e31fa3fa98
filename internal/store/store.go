package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/JonMunkholm/reorganizer/internal/core"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// uniqueViolation is the PostgreSQL error code for a unique constraint failure.
const uniqueViolation = "23505"

var schema = []string{
	`CREATE TABLE IF NOT EXISTS campaigns (
		uuid UUID PRIMARY KEY,
		name VARCHAR(50) NOT NULL,
		description TEXT,
		output_filename_template TEXT,
		fields JSONB NOT NULL DEFAULT '[]'::jsonb,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS campaigns_name_key ON campaigns (name)`,
}

// Store implements core.CampaignStore on a pgx pool.
type Store struct {
	pool *pgxpool.Pool
	q    *Queries
}

var _ core.CampaignStore = (*Store)(nil)

func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool, q: NewQueries(pool)}
}

// Migrate creates the campaigns table and its indexes in one transaction.
func (s *Store) Migrate(ctx context.Context) error {
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		for _, stmt := range schema {
			if _, err := tx.Exec(ctx, stmt); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
		}
		return nil
	})
}

func (s *Store) Create(ctx context.Context, c core.Campaign) (core.Campaign, error) {
	arg, err := toRow(c)
	if err != nil {
		return core.Campaign{}, err
	}
	row, err := s.q.InsertCampaign(ctx, arg)
	if err != nil {
		return core.Campaign{}, mapError(err)
	}
	return fromRow(row)
}

func (s *Store) List(ctx context.Context, skip, limit int) ([]core.Campaign, error) {
	rows, err := s.q.ListCampaigns(ctx, ListCampaignsParams{
		Offset: int32(skip),
		Limit:  int32(limit),
	})
	if err != nil {
		return nil, mapError(err)
	}

	campaigns := make([]core.Campaign, 0, len(rows))
	for _, row := range rows {
		c, err := fromRow(row)
		if err != nil {
			return nil, err
		}
		campaigns = append(campaigns, c)
	}
	return campaigns, nil
}

func (s *Store) Get(ctx context.Context, id uuid.UUID) (core.Campaign, error) {
	row, err := s.q.GetCampaign(ctx, toPgUUID(id))
	if err != nil {
		return core.Campaign{}, mapError(err)
	}
	return fromRow(row)
}

func (s *Store) Update(ctx context.Context, c core.Campaign) (core.Campaign, error) {
	arg, err := toRow(c)
	if err != nil {
		return core.Campaign{}, err
	}
	row, err := s.q.UpdateCampaign(ctx, arg)
	if err != nil {
		return core.Campaign{}, mapError(err)
	}
	return fromRow(row)
}

func (s *Store) Delete(ctx context.Context, id uuid.UUID) error {
	n, err := s.q.DeleteCampaign(ctx, toPgUUID(id))
	if err != nil {
		return mapError(err)
	}
	if n == 0 {
		return core.ErrCampaignNotFound
	}
	return nil
}

// mapError translates driver errors into core sentinels.
func mapError(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return core.ErrCampaignNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%w: %s", core.ErrCampaignExists, pgErr.ConstraintName)
	}
	return err
}

func toRow(c core.Campaign) (CampaignRow, error) {
	fields := c.Fields
	if fields == nil {
		fields = []core.Field{}
	}
	raw, err := json.Marshal(fields)
	if err != nil {
		return CampaignRow{}, fmt.Errorf("encode fields: %w", err)
	}
	return CampaignRow{
		Uuid:                   toPgUUID(c.ID),
		Name:                   c.Name,
		Description:            toPgText(c.Description),
		OutputFilenameTemplate: toPgText(c.OutputFilenameTemplate),
		Fields:                 raw,
		CreatedAt:              toPgTimestamptz(c.CreatedAt),
		UpdatedAt:              toPgTimestamptz(c.UpdatedAt),
	}, nil
}

func fromRow(row CampaignRow) (core.Campaign, error) {
	var fields []core.Field
	if len(row.Fields) > 0 {
		if err := json.Unmarshal(row.Fields, &fields); err != nil {
			return core.Campaign{}, fmt.Errorf("decode fields of campaign %q: %w", row.Name, err)
		}
	}
	return core.Campaign{
		ID:                     uuid.UUID(row.Uuid.Bytes),
		Name:                   row.Name,
		Description:            row.Description.String,
		OutputFilenameTemplate: row.OutputFilenameTemplate.String,
		Fields:                 fields,
		CreatedAt:              row.CreatedAt.Time,
		UpdatedAt:              row.UpdatedAt.Time,
	}, nil
}

func toPgUUID(id uuid.UUID) pgtype.UUID {
	if id == uuid.Nil {
		return pgtype.UUID{Valid: false}
	}
	return pgtype.UUID{Bytes: id, Valid: true}
}

func toPgText(s string) pgtype.Text {
	if s == "" {
		return pgtype.Text{Valid: false}
	}
	return pgtype.Text{String: s, Valid: true}
}

func toPgTimestamptz(t time.Time) pgtype.Timestamptz {
	if t.IsZero() {
		return pgtype.Timestamptz{Time: time.Now().UTC(), Valid: true}
	}
	return pgtype.Timestamptz{Time: t, Valid: true}
}
