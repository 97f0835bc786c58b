package narrative

import (
	"context"
	"encoding/json"

	"github.com/HillPhelmuth/AgenticRpg-sub000/internal/entities"
	"github.com/HillPhelmuth/AgenticRpg-sub000/internal/errors"
	"github.com/HillPhelmuth/AgenticRpg-sub000/internal/postgres"
)

// PostgresConfig holds the configuration for the Postgres narrative log
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

// NewPostgresRepository creates a narrative log backed by the narrative_log table
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

func (r *postgresRepository) Append(ctx context.Context, input AppendInput) (*AppendOutput, error) {
	if err := validateEntry(input.Entry); err != nil {
		return nil, err
	}
	stored := *input.Entry

	var summary []byte
	if stored.Summary != nil {
		var err error
		summary, err = json.Marshal(stored.Summary)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to marshal combat summary")
		}
	}

	err := r.db.QueryRow(ctx, `
		INSERT INTO narrative_log (campaign_id, kind, title, body, summary)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`,
		stored.CampaignID, string(stored.Kind), stored.Title, stored.Body, summary,
	).Scan(&stored.ID, &stored.CreatedAt)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to append narrative entry for campaign %s", stored.CampaignID)
	}

	return &AppendOutput{Entry: &stored}, nil
}

func (r *postgresRepository) List(ctx context.Context, input ListInput) (*ListOutput, error) {
	if input.CampaignID == "" {
		return nil, errors.InvalidArgument("campaign ID is required")
	}

	rows, err := r.db.Query(ctx, `
		SELECT id, campaign_id, kind, title, body, summary, created_at FROM (
			SELECT * FROM narrative_log
			WHERE campaign_id = $1 AND ($2 = '' OR kind = $2)
			ORDER BY id DESC
			LIMIT $3
		) newest ORDER BY id`,
		input.CampaignID, string(input.Kind), limitOrDefault(input.Limit))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list narrative for campaign %s", input.CampaignID)
	}
	defer rows.Close()

	entries := make([]*Entry, 0)
	for rows.Next() {
		var (
			e       Entry
			kind    string
			summary []byte
		)
		if err := rows.Scan(&e.ID, &e.CampaignID, &kind, &e.Title, &e.Body, &summary, &e.CreatedAt); err != nil {
			return nil, errors.Wrapf(err, "failed to scan narrative entry")
		}
		e.Kind = Kind(kind)
		if len(summary) > 0 {
			e.Summary = &entities.CombatSummary{}
			if err := json.Unmarshal(summary, e.Summary); err != nil {
				return nil, errors.Wrapf(err, "failed to unmarshal combat summary %d", e.ID)
			}
		}
		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrapf(err, "failed to iterate narrative entries")
	}

	return &ListOutput{Entries: entries}, nil
}
