package syncq_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"github.com/takei-shg/word-anki/internal/models"
	"github.com/takei-shg/word-anki/internal/repository"
	"github.com/takei-shg/word-anki/internal/repository/sqlite"
	"github.com/takei-shg/word-anki/internal/syncq"
	"github.com/takei-shg/word-anki/internal/testutil"
	"github.com/takei-shg/word-anki/internal/testutil/mocks"
)

type QueueSuite struct {
	suite.Suite
	db      *sql.DB
	ops     repository.SyncOperationRepository
	records repository.LearningRecordRepository
	sources repository.TextSourceRepository
	client  *mocks.MockBackendClient
	queue   *syncq.Queue
}

func (s *QueueSuite) SetupTest() {
	s.db = testutil.NewTestDB(s.T())
	s.ops = sqlite.NewSyncOperationRepository(s.db)
	s.records = sqlite.NewLearningRecordRepository(s.db)
	s.sources = sqlite.NewTextSourceRepository(s.db)
	s.client = new(mocks.MockBackendClient)
	s.queue = syncq.New(s.ops, s.records, s.sources, s.client, 3)
}

func (s *QueueSuite) TearDownTest() {
	testutil.MustClose(s.T(), s.db)
}

func (s *QueueSuite) record(wordID string, memorized bool) models.LearningRecord {
	return models.LearningRecord{
		WordID:       wordID,
		IsMemorized:  memorized,
		ReviewCount:  1,
		LastReviewed: time.Now().UTC(),
	}
}

// matchWord matches a SyncProgress batch carrying exactly one record for the
// given word.
func matchWord(wordID string) any {
	return mock.MatchedBy(func(records []models.LearningRecord) bool {
		return len(records) == 1 && records[0].WordID == wordID
	})
}

func (s *QueueSuite) TestDrainKeepsFIFOOrderAcrossFailures() {
	ctx := context.Background()

	for _, id := range []string{"w1", "w2", "w3"} {
		s.Require().NoError(s.queue.EnqueueProgressSync(ctx, s.record(id, true)))
		time.Sleep(2 * time.Millisecond)
	}

	s.client.On("SyncProgress", mock.Anything, matchWord("w1")).Return(nil).Once()
	s.client.On("SyncProgress", mock.Anything, matchWord("w2")).Return(errors.New("backend down")).Once()
	s.client.On("SyncProgress", mock.Anything, matchWord("w3")).Return(nil).Once()

	res, err := s.queue.Drain(ctx)
	s.Require().NoError(err)
	s.Assert().Equal(3, res.Attempted)
	s.Assert().Equal(2, res.Succeeded)
	s.Assert().Equal(1, res.Failed)
	s.Assert().False(res.Skipped)

	// The failed middle entry stays pending with one retry recorded; the
	// entries around it are processed.
	all, err := s.queue.ListAll(ctx)
	s.Require().NoError(err)
	s.Require().Len(all, 3)

	byWord := map[string]models.SyncOperation{}
	for _, op := range all {
		byWord[op.RelatedID] = op
	}
	s.Assert().True(byWord["w1"].Processed)
	s.Assert().True(byWord["w3"].Processed)
	s.Assert().False(byWord["w2"].Processed)
	s.Assert().Equal(1, byWord["w2"].RetryCount)
	s.Assert().NotNil(byWord["w2"].LastRetryAt)

	s.client.AssertExpectations(s.T())
}

func (s *QueueSuite) TestDrainMarksRecordsSynced() {
	ctx := context.Background()

	_, err := s.records.Upsert(ctx, "w1", true, time.Now().UTC())
	s.Require().NoError(err)
	s.Require().NoError(s.queue.EnqueueProgressSync(ctx, s.record("w1", true)))

	s.client.On("SyncProgress", mock.Anything, matchWord("w1")).Return(nil).Once()

	_, err = s.queue.Drain(ctx)
	s.Require().NoError(err)

	rec, err := s.records.Get(ctx, "w1")
	s.Require().NoError(err)
	s.Require().NotNil(rec)
	s.Assert().True(rec.Synced)
}

func (s *QueueSuite) TestRetryCeilingRetiresOperation() {
	ctx := context.Background()

	s.Require().NoError(s.queue.EnqueueProgressSync(ctx, s.record("w1", false)))
	s.client.On("SyncProgress", mock.Anything, mock.Anything).Return(errors.New("still down")).Times(3)

	for i := 0; i < 3; i++ {
		res, err := s.queue.Drain(ctx)
		s.Require().NoError(err)
		s.Assert().Equal(1, res.Attempted)
		s.Assert().Equal(1, res.Failed)
	}

	// Fourth drain must not touch the backend at all.
	res, err := s.queue.Drain(ctx)
	s.Require().NoError(err)
	s.Assert().Equal(0, res.Attempted)

	pending, err := s.queue.PendingCount(ctx)
	s.Require().NoError(err)
	s.Assert().Equal(0, pending)

	exhausted, err := s.queue.ListExhausted(ctx)
	s.Require().NoError(err)
	s.Require().Len(exhausted, 1)
	s.Assert().Equal(3, exhausted[0].RetryCount)
	s.Assert().False(exhausted[0].Processed)

	s.client.AssertExpectations(s.T())
}

func (s *QueueSuite) TestPayloadIsSnapshottedAtEnqueueTime() {
	ctx := context.Background()

	rec := s.record("w1", false)
	s.Require().NoError(s.queue.EnqueueProgressSync(ctx, rec))

	// A later response flips the local state; the earlier queue entry still
	// carries the state it was enqueued with.
	rec.IsMemorized = true
	rec.ReviewCount = 2
	s.Require().NoError(s.queue.EnqueueProgressSync(ctx, rec))

	all, err := s.queue.ListAll(ctx)
	s.Require().NoError(err)
	s.Require().Len(all, 2)

	var first, second models.LearningRecord
	s.Require().NoError(json.Unmarshal(all[0].Payload, &first))
	s.Require().NoError(json.Unmarshal(all[1].Payload, &second))
	s.Assert().False(first.IsMemorized)
	s.Assert().Equal(1, first.ReviewCount)
	s.Assert().True(second.IsMemorized)
	s.Assert().Equal(2, second.ReviewCount)
}

func (s *QueueSuite) TestDrainWhileOfflineIsSkipped() {
	ctx := context.Background()

	s.Require().NoError(s.queue.EnqueueProgressSync(ctx, s.record("w1", true)))
	s.queue.SetOnline(ctx, false)

	res, err := s.queue.Drain(ctx)
	s.Require().NoError(err)
	s.Assert().True(res.Skipped)

	pending, err := s.queue.PendingCount(ctx)
	s.Require().NoError(err)
	s.Assert().Equal(1, pending)

	s.client.AssertNotCalled(s.T(), "SyncProgress", mock.Anything, mock.Anything)
}

func (s *QueueSuite) TestReconnectTriggersDrain() {
	ctx := context.Background()

	s.queue.SetOnline(ctx, false)
	s.Require().NoError(s.queue.EnqueueProgressSync(ctx, s.record("w1", true)))

	s.client.On("SyncProgress", mock.Anything, matchWord("w1")).Return(nil).Once()

	s.queue.SetOnline(ctx, true)

	pending, err := s.queue.PendingCount(ctx)
	s.Require().NoError(err)
	s.Assert().Equal(0, pending)
	s.client.AssertExpectations(s.T())
}

func (s *QueueSuite) TestSourceUploadAndDeletionKinds() {
	ctx := context.Background()

	src := models.TextSource{ID: "s1", Title: "t", Content: "c", CreatedAt: time.Now().UTC()}
	s.Require().NoError(s.sources.Insert(ctx, src))
	s.Require().NoError(s.queue.EnqueueSourceUpload(ctx, src))
	s.Require().NoError(s.queue.EnqueueSourceDeletion(ctx, "s2"))

	s.client.On("UploadTextSource", mock.Anything, mock.MatchedBy(func(got models.TextSource) bool {
		return got.ID == "s1"
	})).Return(&src, nil).Once()
	s.client.On("DeleteTextSource", mock.Anything, "s2").Return(nil).Once()

	res, err := s.queue.Drain(ctx)
	s.Require().NoError(err)
	s.Assert().Equal(2, res.Succeeded)

	stored, err := s.sources.Get(ctx, "s1")
	s.Require().NoError(err)
	s.Require().NotNil(stored)
	s.Assert().True(stored.Uploaded)

	s.client.AssertExpectations(s.T())
}

func (s *QueueSuite) TestStatus() {
	ctx := context.Background()

	s.Require().NoError(s.queue.EnqueueProgressSync(ctx, s.record("w1", true)))

	status, err := s.queue.Status(ctx)
	s.Require().NoError(err)
	s.Assert().True(status.Online)
	s.Assert().Equal(1, status.PendingCount)
	s.Assert().Equal(0, status.ExhaustedCount)
	s.Assert().False(status.Draining)
	s.Assert().Nil(status.LastDrainAt)

	s.client.On("SyncProgress", mock.Anything, mock.Anything).Return(nil).Once()
	_, err = s.queue.Drain(ctx)
	s.Require().NoError(err)

	status, err = s.queue.Status(ctx)
	s.Require().NoError(err)
	s.Assert().Equal(0, status.PendingCount)
	s.Assert().NotNil(status.LastDrainAt)
}

func (s *QueueSuite) TestCleanupRemovesOldProcessedOnly() {
	ctx := context.Background()
	old := time.Now().UTC().AddDate(0, 0, -30)

	s.Require().NoError(s.ops.Insert(ctx, models.SyncOperation{
		ID: "old-done", Kind: models.OpProgressSync, Payload: []byte(`{}`), RelatedID: "w1", CreatedAt: old,
	}))
	s.Require().NoError(s.ops.Insert(ctx, models.SyncOperation{
		ID: "old-pending", Kind: models.OpProgressSync, Payload: []byte(`{}`), RelatedID: "w2", CreatedAt: old,
	}))
	s.Require().NoError(s.ops.MarkProcessed(ctx, "old-done", old))

	n, err := s.queue.Cleanup(ctx, 7)
	s.Require().NoError(err)
	s.Assert().Equal(int64(1), n)

	remaining, err := s.queue.ListAll(ctx)
	s.Require().NoError(err)
	s.Require().Len(remaining, 1)
	s.Assert().Equal("old-pending", remaining[0].ID)
}

func TestQueueSuite(t *testing.T) {
	suite.Run(t, new(QueueSuite))
}
