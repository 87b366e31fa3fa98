package store

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

// CampaignRow mirrors one row of the campaigns table.
type CampaignRow struct {
	Uuid                   pgtype.UUID
	Name                   string
	Description            pgtype.Text
	OutputFilenameTemplate pgtype.Text
	Fields                 []byte
	CreatedAt              pgtype.Timestamptz
	UpdatedAt              pgtype.Timestamptz
}

const campaignColumns = `uuid, name, description, output_filename_template, fields, created_at, updated_at`

func scanCampaign(row pgx.Row) (CampaignRow, error) {
	var i CampaignRow
	err := row.Scan(
		&i.Uuid,
		&i.Name,
		&i.Description,
		&i.OutputFilenameTemplate,
		&i.Fields,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const insertCampaign = `
INSERT INTO campaigns (` + campaignColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING ` + campaignColumns

func (q *Queries) InsertCampaign(ctx context.Context, arg CampaignRow) (CampaignRow, error) {
	row := q.db.QueryRow(ctx, insertCampaign,
		arg.Uuid,
		arg.Name,
		arg.Description,
		arg.OutputFilenameTemplate,
		arg.Fields,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
	return scanCampaign(row)
}

const listCampaigns = `
SELECT ` + campaignColumns + `
FROM campaigns
ORDER BY created_at, name
OFFSET $1 LIMIT $2`

type ListCampaignsParams struct {
	Offset int32
	Limit  int32
}

func (q *Queries) ListCampaigns(ctx context.Context, arg ListCampaignsParams) ([]CampaignRow, error) {
	rows, err := q.db.Query(ctx, listCampaigns, arg.Offset, arg.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []CampaignRow
	for rows.Next() {
		i, err := scanCampaign(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const getCampaign = `
SELECT ` + campaignColumns + `
FROM campaigns
WHERE uuid = $1`

func (q *Queries) GetCampaign(ctx context.Context, id pgtype.UUID) (CampaignRow, error) {
	return scanCampaign(q.db.QueryRow(ctx, getCampaign, id))
}

const updateCampaign = `
UPDATE campaigns
SET name = $2,
    description = $3,
    output_filename_template = $4,
    fields = $5,
    updated_at = $6
WHERE uuid = $1
RETURNING ` + campaignColumns

func (q *Queries) UpdateCampaign(ctx context.Context, arg CampaignRow) (CampaignRow, error) {
	row := q.db.QueryRow(ctx, updateCampaign,
		arg.Uuid,
		arg.Name,
		arg.Description,
		arg.OutputFilenameTemplate,
		arg.Fields,
		arg.UpdatedAt,
	)
	return scanCampaign(row)
}

const deleteCampaign = `DELETE FROM campaigns WHERE uuid = $1`

func (q *Queries) DeleteCampaign(ctx context.Context, id pgtype.UUID) (int64, error) {
	tag, err := q.db.Exec(ctx, deleteCampaign, id)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
