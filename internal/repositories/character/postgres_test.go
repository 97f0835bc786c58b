package character_test

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/HillPhelmuth/AgenticRpg-sub000/internal/errors"
	"github.com/HillPhelmuth/AgenticRpg-sub000/internal/repositories/character"
	"github.com/HillPhelmuth/AgenticRpg-sub000/internal/testutils"
)

type PostgresRepositoryTestSuite struct {
	suite.Suite
	db   *testutils.FakeDB
	repo character.Repository
	ctx  context.Context
	now  time.Time
}

func TestPostgresRepositorySuite(t *testing.T) {
	suite.Run(t, new(PostgresRepositoryTestSuite))
}

func (s *PostgresRepositoryTestSuite) SetupTest() {
	s.db = testutils.NewFakeDB()
	repo, err := character.NewPostgresRepository(&character.PostgresConfig{DB: s.db})
	s.Require().NoError(err)
	s.repo = repo
	s.ctx = context.Background()
	s.now = time.Date(2025, 3, 1, 20, 0, 0, 0, time.UTC)
}

func (s *PostgresRepositoryTestSuite) row(id string, hp, gold int) []any {
	return []any{id, "player-1", "camp-1", "Aria", 20, hp, gold, s.now}
}

func (s *PostgresRepositoryTestSuite) TestNewRequiresDB() {
	_, err := character.NewPostgresRepository(&character.PostgresConfig{})
	s.Error(err)

	_, err = character.NewPostgresRepository(nil)
	s.True(errors.IsInvalidArgument(err))
}

func (s *PostgresRepositoryTestSuite) TestGet() {
	s.db.QueueRows(testutils.NewFakeRows(s.row("char-aria", 18, 10)))

	out, err := s.repo.Get(s.ctx, character.GetInput{ID: "char-aria"})
	s.Require().NoError(err)
	s.Equal(18, out.Record.CurrentHP)
	s.Equal(s.now, out.Record.UpdatedAt)

	queries := s.db.Queries()
	s.Require().Len(queries, 1)
	s.Equal([]any{"char-aria"}, queries[0].Args)
}

func (s *PostgresRepositoryTestSuite) TestGetNoRowsIsNotFound() {
	_, err := s.repo.Get(s.ctx, character.GetInput{ID: "nobody"})
	s.True(errors.IsNotFound(err), "got %v", err)
}

func (s *PostgresRepositoryTestSuite) TestGetStorageFailureIsInternal() {
	s.db.QueueRows(&testutils.FakeRows{QueryErr: stderrors.New("connection reset")})

	_, err := s.repo.Get(s.ctx, character.GetInput{ID: "char-aria"})
	s.True(errors.IsInternal(err), "got %v", err)
}

func (s *PostgresRepositoryTestSuite) TestApplyCombatResultPassesDelta() {
	s.db.QueueRows(testutils.NewFakeRows(s.row("char-aria", 7, 25)))

	out, err := s.repo.ApplyCombatResult(s.ctx, character.ApplyCombatResultInput{
		CharacterID: "char-aria", CampaignID: "camp-1", Name: "Aria", MaxHP: 20, CurrentHP: 7, GoldDelta: 15,
	})
	s.Require().NoError(err)
	s.Equal(25, out.Record.Gold)

	queries := s.db.Queries()
	s.Require().Len(queries, 1)
	s.Contains(queries[0].SQL, "character_ledger.gold + EXCLUDED.gold")
	s.Equal(15, queries[0].Args[6])
}

func (s *PostgresRepositoryTestSuite) TestApplyCombatResultValidates() {
	_, err := s.repo.ApplyCombatResult(s.ctx, character.ApplyCombatResultInput{CharacterID: "a", MaxHP: 5, CurrentHP: 9})
	s.True(errors.IsInvalidArgument(err))
	s.Empty(s.db.Queries())
}

func (s *PostgresRepositoryTestSuite) TestListByCampaign() {
	s.db.QueueRows(testutils.NewFakeRows(s.row("a", 1, 0), s.row("b", 2, 0)))

	out, err := s.repo.ListByCampaign(s.ctx, character.ListByCampaignInput{CampaignID: "camp-1"})
	s.Require().NoError(err)
	s.Require().Len(out.Records, 2)
	s.Equal("b", out.Records[1].ID)
}
