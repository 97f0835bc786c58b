// Package external is the location for the dnd5e-api client. The combat
// core only needs spell facts from it: level, damage dice and save.
package external

//go:generate mockgen -destination=mock/mock_client.go -package=externalmock github.com/HillPhelmuth/AgenticRpg-sub000/internal/clients/external Client

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/fadedpez/dnd5e-api/clients/dnd5e"
	"github.com/fadedpez/dnd5e-api/entities"

	"github.com/HillPhelmuth/AgenticRpg-sub000/internal/errors"
)

// Client defines the interface for spell lookups
type Client interface {
	// GetSpellData fetches a spell by key, e.g. "fireball" or "SPELL_FIREBALL"
	// Returns errors.InvalidArgument for empty keys
	// Returns errors.NotFound when the catalog has no such spell
	GetSpellData(ctx context.Context, spellID string) (*SpellData, error)
}

// spellSource is the part of dnd5e.Interface this package reads
type spellSource interface {
	GetSpell(key string) (*entities.Spell, error)
}

// SpellData is what the combat core needs to know about a spell
type SpellData struct {
	ID    string
	Name  string
	Level int
	// DamageDice is the base damage notation at the spell's own level, e.g. "8d6"
	DamageDice string
	// SaveAttribute is the DC type abbreviation, e.g. "DEX"; empty for attack spells
	SaveAttribute string
	// HalfOnSave is set when a successful save halves the damage
	HalfOnSave bool
}

// Config contains configuration options for the external client.
type Config struct {
	// BaseURL for the D&D 5e API (optional, defaults to https://www.dnd5eapi.co/api/2014/)
	BaseURL string
	// HTTPTimeout for API requests (optional, defaults to 30 seconds)
	HTTPTimeout time.Duration
	// CacheTTL for the cached client (optional, defaults to 24 hours)
	CacheTTL time.Duration
}

// Validate validates the Config and sets defaults if not provided.
func (cfg *Config) Validate() error {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://www.dnd5eapi.co/api/2014/"
	}
	if cfg.HTTPTimeout == 0 {
		cfg.HTTPTimeout = 30 * time.Second
	}
	if cfg.CacheTTL == 0 {
		cfg.CacheTTL = 24 * time.Hour
	}
	if cfg.HTTPTimeout < 0 || cfg.CacheTTL < 0 {
		return errors.InvalidArgument("timeouts cannot be negative")
	}
	return nil
}

type client struct {
	spells spellSource
}

// New creates a new external client with the given configuration.
func New(cfg *Config) (Client, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	baseClient, err := dnd5e.NewDND5eAPI(&dnd5e.DND5eAPIConfig{
		Client:  &http.Client{Timeout: cfg.HTTPTimeout},
		BaseURL: cfg.BaseURL,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to create D&D 5e API client")
	}

	return &client{
		spells: dnd5e.NewCachedClient(baseClient, cfg.CacheTTL),
	}, nil
}

// toAPIFormat converts our internal constant format to API format
// e.g., "SPELL_MAGIC_MISSILE" -> "magic-missile"
func toAPIFormat(id string) string {
	id = strings.TrimSpace(id)
	if rest, ok := strings.CutPrefix(strings.ToUpper(id), "SPELL_"); ok {
		id = rest
	}
	return strings.ToLower(strings.ReplaceAll(strings.ReplaceAll(id, "_", "-"), " ", "-"))
}

func (c *client) GetSpellData(_ context.Context, spellID string) (*SpellData, error) {
	apiID := toAPIFormat(spellID)
	if apiID == "" {
		return nil, errors.InvalidArgument("spell ID is required")
	}

	spell, err := c.spells.GetSpell(apiID)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeNotFound,
			"failed to get spell "+spellID+" (api: "+apiID+")")
	}
	if spell == nil {
		return nil, errors.NotFoundf("spell %s not found", spellID)
	}

	return convertSpell(spell), nil
}

func convertSpell(spell *entities.Spell) *SpellData {
	data := &SpellData{
		ID:    spell.Key,
		Name:  spell.Name,
		Level: spell.SpellLevel,
	}
	if spell.SpellDamage != nil && spell.SpellDamage.SpellDamageAtSlotLevel != nil {
		data.DamageDice = baseDamageForSpellLevel(spell.SpellLevel, spell.SpellDamage.SpellDamageAtSlotLevel)
	}
	if spell.DC != nil {
		if spell.DC.DCType != nil {
			data.SaveAttribute = strings.ToUpper(spell.DC.DCType.Name)
		}
		data.HalfOnSave = strings.EqualFold(spell.DC.DCSuccess, "half")
	}
	return data
}

// baseDamageForSpellLevel returns the damage at the spell's minimum casting level
func baseDamageForSpellLevel(level int, damageAtSlotLevel *entities.SpellDamageAtSlotLevel) string {
	switch level {
	case 0, 1:
		return damageAtSlotLevel.FirstLevel
	case 2:
		return damageAtSlotLevel.SecondLevel
	case 3:
		return damageAtSlotLevel.ThirdLevel
	case 4:
		return damageAtSlotLevel.FourthLevel
	case 5:
		return damageAtSlotLevel.FifthLevel
	case 6:
		return damageAtSlotLevel.SixthLevel
	case 7:
		return damageAtSlotLevel.SeventhLevel
	case 8:
		return damageAtSlotLevel.EighthLevel
	case 9:
		return damageAtSlotLevel.NinthLevel
	default:
		return ""
	}
}
