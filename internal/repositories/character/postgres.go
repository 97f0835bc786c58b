package character

import (
	"context"
	stderrors "errors"

	"github.com/jackc/pgx/v5"

	"github.com/HillPhelmuth/AgenticRpg-sub000/internal/errors"
	"github.com/HillPhelmuth/AgenticRpg-sub000/internal/postgres"
)

const recordColumns = `id, player_id, campaign_id, name, max_hp, current_hp, gold, updated_at`

// PostgresConfig holds the configuration for the Postgres ledger
type PostgresConfig struct {
	DB postgres.DBTX
}

// Validate ensures all required dependencies are provided
func (c *PostgresConfig) Validate() error {
	vb := errors.NewValidationBuilder()
	if c.DB == nil {
		vb.RequiredField("DB")
	}
	return vb.Build()
}

type postgresRepository struct {
	db postgres.DBTX
}

// NewPostgresRepository creates a ledger backed by the character_ledger table
func NewPostgresRepository(cfg *PostgresConfig) (Repository, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}
	return &postgresRepository{db: cfg.DB}, nil
}

var _ Repository = (*postgresRepository)(nil)

func (r *postgresRepository) Get(ctx context.Context, input GetInput) (*GetOutput, error) {
	if input.ID == "" {
		return nil, errors.InvalidArgument("character ID is required")
	}

	row := r.db.QueryRow(ctx, `SELECT `+recordColumns+` FROM character_ledger WHERE id = $1`, input.ID)
	rec, err := scanRecord(row)
	if err != nil {
		if stderrors.Is(err, pgx.ErrNoRows) {
			return nil, errors.NotFoundf("character %s not found", input.ID)
		}
		return nil, errors.Wrapf(err, "failed to get character %s", input.ID)
	}
	return &GetOutput{Record: rec}, nil
}

func (r *postgresRepository) Upsert(ctx context.Context, input UpsertInput) (*UpsertOutput, error) {
	if err := validateRecord(input.Record); err != nil {
		return nil, err
	}
	in := input.Record

	row := r.db.QueryRow(ctx, `
		INSERT INTO character_ledger (id, player_id, campaign_id, name, max_hp, current_hp, gold, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, now())
		ON CONFLICT (id) DO UPDATE SET
			player_id = EXCLUDED.player_id,
			campaign_id = EXCLUDED.campaign_id,
			name = EXCLUDED.name,
			max_hp = EXCLUDED.max_hp,
			current_hp = EXCLUDED.current_hp,
			gold = EXCLUDED.gold,
			updated_at = now()
		RETURNING `+recordColumns,
		in.ID, in.PlayerID, in.CampaignID, in.Name, in.MaxHP, in.CurrentHP, in.Gold)
	rec, err := scanRecord(row)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to upsert character %s", in.ID)
	}
	return &UpsertOutput{Record: rec}, nil
}

func (r *postgresRepository) ApplyCombatResult(ctx context.Context, input ApplyCombatResultInput) (*ApplyCombatResultOutput, error) {
	if err := validateCombatResult(input); err != nil {
		return nil, err
	}

	row := r.db.QueryRow(ctx, `
		INSERT INTO character_ledger (id, player_id, campaign_id, name, max_hp, current_hp, gold, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, now())
		ON CONFLICT (id) DO UPDATE SET
			max_hp = EXCLUDED.max_hp,
			current_hp = EXCLUDED.current_hp,
			gold = character_ledger.gold + EXCLUDED.gold,
			updated_at = now()
		RETURNING `+recordColumns,
		input.CharacterID, input.PlayerID, input.CampaignID, input.Name, input.MaxHP, input.CurrentHP, input.GoldDelta)
	rec, err := scanRecord(row)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to apply combat result for %s", input.CharacterID)
	}
	return &ApplyCombatResultOutput{Record: rec}, nil
}

func (r *postgresRepository) ListByCampaign(ctx context.Context, input ListByCampaignInput) (*ListByCampaignOutput, error) {
	if input.CampaignID == "" {
		return nil, errors.InvalidArgument("campaign ID is required")
	}

	rows, err := r.db.Query(ctx,
		`SELECT `+recordColumns+` FROM character_ledger WHERE campaign_id = $1 ORDER BY id`, input.CampaignID)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list characters for campaign %s", input.CampaignID)
	}
	defer rows.Close()

	out := make([]*Record, 0)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to scan character")
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrapf(err, "failed to iterate characters")
	}
	return &ListByCampaignOutput{Records: out}, nil
}

func scanRecord(row pgx.Row) (*Record, error) {
	var rec Record
	if err := row.Scan(
		&rec.ID, &rec.PlayerID, &rec.CampaignID, &rec.Name,
		&rec.MaxHP, &rec.CurrentHP, &rec.Gold, &rec.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &rec, nil
}
