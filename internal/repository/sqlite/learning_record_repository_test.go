package sqlite_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/takei-shg/word-anki/internal/repository"
	"github.com/takei-shg/word-anki/internal/repository/sqlite"
	"github.com/takei-shg/word-anki/internal/testutil"
)

type LearningRecordRepositorySuite struct {
	suite.Suite
	db   *sql.DB
	repo repository.LearningRecordRepository
}

func (s *LearningRecordRepositorySuite) SetupTest() {
	s.db = testutil.NewTestDB(s.T())
	s.repo = sqlite.NewLearningRecordRepository(s.db)
}

func (s *LearningRecordRepositorySuite) TearDownTest() {
	testutil.MustClose(s.T(), s.db)
}

func (s *LearningRecordRepositorySuite) TestUpsertCreatesThenIncrements() {
	ctx := context.Background()

	rec, err := s.repo.Upsert(ctx, "w1", true, time.Now().UTC())
	s.Require().NoError(err)
	s.Assert().Equal("w1", rec.WordID)
	s.Assert().Equal(1, rec.ReviewCount)
	s.Assert().True(rec.IsMemorized)
	s.Assert().False(rec.Synced)

	// Repeated responses update the same row; review count follows the
	// number of calls exactly.
	for i := 0; i < 4; i++ {
		rec, err = s.repo.Upsert(ctx, "w1", false, time.Now().UTC())
		s.Require().NoError(err)
	}
	s.Assert().Equal(5, rec.ReviewCount)
	s.Assert().False(rec.IsMemorized)

	var count int
	err = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM learning_records WHERE word_id = ?`, "w1").Scan(&count)
	s.Require().NoError(err)
	s.Assert().Equal(1, count)
}

func (s *LearningRecordRepositorySuite) TestUpsertResetsSyncedFlag() {
	ctx := context.Background()

	_, err := s.repo.Upsert(ctx, "w1", true, time.Now().UTC())
	s.Require().NoError(err)
	s.Require().NoError(s.repo.MarkSynced(ctx, []string{"w1"}))

	rec, err := s.repo.Get(ctx, "w1")
	s.Require().NoError(err)
	s.Require().NotNil(rec)
	s.Assert().True(rec.Synced)

	rec, err = s.repo.Upsert(ctx, "w1", true, time.Now().UTC())
	s.Require().NoError(err)
	s.Assert().False(rec.Synced, "local update must reset the synced flag")
}

func (s *LearningRecordRepositorySuite) TestGetMissingReturnsNil() {
	rec, err := s.repo.Get(context.Background(), "missing")
	s.Require().NoError(err)
	s.Assert().Nil(rec)
}

func (s *LearningRecordRepositorySuite) TestMarkSyncedUnknownWordIsNoop() {
	ctx := context.Background()

	err := s.repo.MarkSynced(ctx, []string{"never-seen"})
	s.Require().NoError(err)

	rec, err := s.repo.Get(ctx, "never-seen")
	s.Require().NoError(err)
	s.Assert().Nil(rec, "markSynced must not create records")
}

func (s *LearningRecordRepositorySuite) TestListOrderedByLastReviewed() {
	ctx := context.Background()
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	_, err := s.repo.Upsert(ctx, "w1", true, base)
	s.Require().NoError(err)
	_, err = s.repo.Upsert(ctx, "w2", false, base.Add(2*time.Hour))
	s.Require().NoError(err)
	_, err = s.repo.Upsert(ctx, "w3", true, base.Add(time.Hour))
	s.Require().NoError(err)

	records, err := s.repo.List(ctx)
	s.Require().NoError(err)
	s.Require().Len(records, 3)
	s.Assert().Equal("w2", records[0].WordID)
	s.Assert().Equal("w3", records[1].WordID)
	s.Assert().Equal("w1", records[2].WordID)
}

func (s *LearningRecordRepositorySuite) TestListUnsynced() {
	ctx := context.Background()

	_, err := s.repo.Upsert(ctx, "w1", true, time.Now().UTC())
	s.Require().NoError(err)
	_, err = s.repo.Upsert(ctx, "w2", false, time.Now().UTC())
	s.Require().NoError(err)
	s.Require().NoError(s.repo.MarkSynced(ctx, []string{"w1"}))

	unsynced, err := s.repo.ListUnsynced(ctx)
	s.Require().NoError(err)
	s.Require().Len(unsynced, 1)
	s.Assert().Equal("w2", unsynced[0].WordID)
}

func (s *LearningRecordRepositorySuite) TestStatistics() {
	ctx := context.Background()

	_, err := s.repo.Upsert(ctx, "w1", true, time.Now().UTC())
	s.Require().NoError(err)
	_, err = s.repo.Upsert(ctx, "w2", false, time.Now().UTC())
	s.Require().NoError(err)
	_, err = s.repo.Upsert(ctx, "w3", true, time.Now().UTC())
	s.Require().NoError(err)

	stats, err := s.repo.Statistics(ctx)
	s.Require().NoError(err)
	s.Assert().Equal(3, stats.TotalWords)
	s.Assert().Equal(2, stats.MemorizedWords)
	s.Assert().Equal(1, stats.NotMemorizedWords)
	s.Assert().Equal(3, stats.TotalReviews)
}

func (s *LearningRecordRepositorySuite) TestStatisticsEmpty() {
	stats, err := s.repo.Statistics(context.Background())
	s.Require().NoError(err)
	s.Assert().Equal(0, stats.TotalWords)
	s.Assert().Equal(0, stats.TotalReviews)
}

func (s *LearningRecordRepositorySuite) TestDeleteByWords() {
	ctx := context.Background()

	_, err := s.repo.Upsert(ctx, "w1", true, time.Now().UTC())
	s.Require().NoError(err)
	_, err = s.repo.Upsert(ctx, "w2", false, time.Now().UTC())
	s.Require().NoError(err)

	s.Require().NoError(s.repo.DeleteByWords(ctx, []string{"w1", "w-unknown"}))

	rec, err := s.repo.Get(ctx, "w1")
	s.Require().NoError(err)
	s.Assert().Nil(rec)

	rec, err = s.repo.Get(ctx, "w2")
	s.Require().NoError(err)
	s.Assert().NotNil(rec)
}

func TestLearningRecordRepositorySuite(t *testing.T) {
	suite.Run(t, new(LearningRecordRepositorySuite))
}
