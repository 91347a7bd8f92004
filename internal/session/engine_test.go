package session_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	apperrors "github.com/takei-shg/word-anki/internal/errors"
	"github.com/takei-shg/word-anki/internal/models"
	"github.com/takei-shg/word-anki/internal/session"
	"github.com/takei-shg/word-anki/internal/testutil/mocks"
)

type EngineSuite struct {
	suite.Suite
	progress *mocks.MockProgressService
	engine   *session.Engine
}

func (s *EngineSuite) SetupTest() {
	s.progress = new(mocks.MockProgressService)
	s.engine = session.NewEngine(s.progress)
}

func (s *EngineSuite) words(ids ...string) []models.WordTest {
	out := make([]models.WordTest, 0, len(ids))
	for _, id := range ids {
		out = append(out, models.WordTest{
			ID:       id,
			SourceID: "s1",
			Word:     "word-" + id,
			Meaning:  "meaning-" + id,
		})
	}
	return out
}

func (s *EngineSuite) assertCode(err error, code string) {
	var appErr *apperrors.AppError
	s.Require().ErrorAs(err, &appErr)
	s.Assert().Equal(code, appErr.Code)
}

func (s *EngineSuite) expectRecord(wordID string, memorized bool) {
	s.progress.On("RecordResponse", mock.Anything, wordID, memorized).
		Return(&models.LearningRecord{WordID: wordID, IsMemorized: memorized, ReviewCount: 1}, nil).Once()
}

func (s *EngineSuite) TestStartPresentsFirstWord() {
	snap, err := s.engine.Start(context.Background(), s.words("w1", "w2"), false)
	s.Require().NoError(err)
	s.Assert().Equal(session.StateInProgress, snap.State)
	s.Assert().Equal(session.PhaseWordShown, snap.Phase)
	s.Require().NotNil(snap.CurrentWord)
	s.Assert().Equal("w1", snap.CurrentWord.ID)
	s.Assert().Equal(0, snap.CurrentIndex)
	s.Assert().Equal(2, snap.TotalWords)
	s.Assert().Equal(2, snap.RemainingCount)
}

func (s *EngineSuite) TestStartWithNoWordsEntersErrorState() {
	snap, err := s.engine.Start(context.Background(), nil, false)
	s.Require().Error(err)
	s.assertCode(err, apperrors.ErrCodeValidation)
	s.Require().NotNil(snap)
	s.Assert().Equal(session.StateError, snap.State)
	s.Assert().Equal("no words available", snap.ErrorReason)
}

func (s *EngineSuite) TestShuffleKeepsTheSameWordSet() {
	words := s.words("w1", "w2", "w3", "w4", "w5")
	snap, err := s.engine.Start(context.Background(), words, true)
	s.Require().NoError(err)
	s.Assert().Equal(5, snap.TotalWords)

	// Walk the whole session skipping and collect what was shown.
	seen := map[string]bool{snap.CurrentWord.ID: true}
	for i := 0; i < 4; i++ {
		snap, err = s.engine.Skip(context.Background())
		s.Require().NoError(err)
		if snap.CurrentWord != nil {
			seen[snap.CurrentWord.ID] = true
		}
	}
	s.Assert().Len(seen, 5)
	// The caller's slice is untouched.
	s.Assert().Equal("w1", words[0].ID)
}

func (s *EngineSuite) TestFullWalkToCompletion() {
	ctx := context.Background()
	_, err := s.engine.Start(ctx, s.words("w1", "w2", "w3"), false)
	s.Require().NoError(err)

	s.expectRecord("w1", true)
	s.expectRecord("w2", false)
	s.expectRecord("w3", true)

	for _, memorized := range []bool{true, false, true} {
		_, err = s.engine.Reveal(ctx)
		s.Require().NoError(err)
		_, err = s.engine.Respond(ctx, memorized)
		s.Require().NoError(err)
	}

	snap := s.engine.Snapshot()
	s.Assert().Equal(session.StateCompleted, snap.State)
	s.Assert().Equal(2, snap.MemorizedCount)
	s.Assert().Equal(1, snap.NotMemorizedCount)
	s.Assert().Equal(float64(100), snap.ProgressPercentage)
	s.Assert().Equal(0, snap.RemainingCount)
	s.progress.AssertExpectations(s.T())
}

func (s *EngineSuite) TestRespondBeforeRevealIsRejected() {
	ctx := context.Background()
	_, err := s.engine.Start(ctx, s.words("w1"), false)
	s.Require().NoError(err)

	_, err = s.engine.Respond(ctx, true)
	s.Require().Error(err)
	s.assertCode(err, apperrors.ErrCodeInvalidTransition)
	s.progress.AssertNotCalled(s.T(), "RecordResponse", mock.Anything, mock.Anything, mock.Anything)

	// The session is still usable.
	snap := s.engine.Snapshot()
	s.Assert().Equal(session.StateInProgress, snap.State)
}

func (s *EngineSuite) TestRevealIsIdempotent() {
	ctx := context.Background()
	_, err := s.engine.Start(ctx, s.words("w1"), false)
	s.Require().NoError(err)

	snap, err := s.engine.Reveal(ctx)
	s.Require().NoError(err)
	s.Assert().Equal(session.PhaseMeaningShown, snap.Phase)

	snap, err = s.engine.Reveal(ctx)
	s.Require().NoError(err)
	s.Assert().Equal(session.PhaseMeaningShown, snap.Phase)
}

func (s *EngineSuite) TestSkipRecordsNothing() {
	ctx := context.Background()
	_, err := s.engine.Start(ctx, s.words("w1", "w2"), false)
	s.Require().NoError(err)

	snap, err := s.engine.Skip(ctx)
	s.Require().NoError(err)
	s.Assert().Equal(1, snap.CurrentIndex)
	s.Assert().Equal(0, snap.MemorizedCount)
	s.Assert().Equal(0, snap.NotMemorizedCount)
	s.progress.AssertNotCalled(s.T(), "RecordResponse", mock.Anything, mock.Anything, mock.Anything)
}

func (s *EngineSuite) TestGoToPreviousReversesExactCounter() {
	ctx := context.Background()
	_, err := s.engine.Start(ctx, s.words("w1", "w2", "w3"), false)
	s.Require().NoError(err)

	s.expectRecord("w1", true)
	_, err = s.engine.Reveal(ctx)
	s.Require().NoError(err)
	_, err = s.engine.Respond(ctx, true)
	s.Require().NoError(err)

	_, err = s.engine.Skip(ctx)
	s.Require().NoError(err)

	// Undo the skip: no counter moves.
	snap, err := s.engine.GoToPrevious(ctx)
	s.Require().NoError(err)
	s.Assert().Equal(1, snap.CurrentIndex)
	s.Assert().Equal(1, snap.MemorizedCount)
	s.Assert().Equal(0, snap.NotMemorizedCount)
	s.Assert().Equal(session.PhaseWordShown, snap.Phase)

	// Undo the memorized response: exactly that counter is decremented.
	snap, err = s.engine.GoToPrevious(ctx)
	s.Require().NoError(err)
	s.Assert().Equal(0, snap.CurrentIndex)
	s.Assert().Equal(0, snap.MemorizedCount)
}

func (s *EngineSuite) TestGoToPreviousAtFirstWordIsNoop() {
	ctx := context.Background()
	_, err := s.engine.Start(ctx, s.words("w1", "w2"), false)
	s.Require().NoError(err)

	snap, err := s.engine.GoToPrevious(ctx)
	s.Require().NoError(err)
	s.Assert().Equal(0, snap.CurrentIndex)
	s.Assert().Equal(session.StateInProgress, snap.State)
}

func (s *EngineSuite) TestGoToPreviousFromCompleted() {
	ctx := context.Background()
	_, err := s.engine.Start(ctx, s.words("w1"), false)
	s.Require().NoError(err)

	s.expectRecord("w1", false)
	_, err = s.engine.Reveal(ctx)
	s.Require().NoError(err)
	snap, err := s.engine.Respond(ctx, false)
	s.Require().NoError(err)
	s.Require().Equal(session.StateCompleted, snap.State)

	snap, err = s.engine.GoToPrevious(ctx)
	s.Require().NoError(err)
	s.Assert().Equal(session.StateInProgress, snap.State)
	s.Assert().Equal(0, snap.CurrentIndex)
	s.Assert().Equal(0, snap.NotMemorizedCount)
}

func (s *EngineSuite) TestPersistenceFailureEntersErrorThenRetryResumes() {
	ctx := context.Background()
	_, err := s.engine.Start(ctx, s.words("w1", "w2"), false)
	s.Require().NoError(err)

	s.progress.On("RecordResponse", mock.Anything, "w1", true).
		Return(nil, errors.New("disk full")).Once()

	_, err = s.engine.Reveal(ctx)
	s.Require().NoError(err)
	_, err = s.engine.Respond(ctx, true)
	s.Require().Error(err)

	snap := s.engine.Snapshot()
	s.Require().Equal(session.StateError, snap.State)
	s.Assert().Equal("disk full", snap.ErrorReason)
	s.Assert().Equal(0, snap.MemorizedCount, "a failed response must not count")

	// Retry resumes on the same word, meaning hidden again.
	snap, err = s.engine.Retry(ctx)
	s.Require().NoError(err)
	s.Assert().Equal(session.StateInProgress, snap.State)
	s.Assert().Equal(session.PhaseWordShown, snap.Phase)
	s.Require().NotNil(snap.CurrentWord)
	s.Assert().Equal("w1", snap.CurrentWord.ID)
}

func (s *EngineSuite) TestRetryOutsideErrorIsRejected() {
	ctx := context.Background()
	_, err := s.engine.Start(ctx, s.words("w1"), false)
	s.Require().NoError(err)

	_, err = s.engine.Retry(ctx)
	s.Require().Error(err)
	s.assertCode(err, apperrors.ErrCodeInvalidTransition)
}

func (s *EngineSuite) TestResetReturnsToNotStarted() {
	ctx := context.Background()
	_, err := s.engine.Start(ctx, s.words("w1", "w2"), false)
	s.Require().NoError(err)
	_, err = s.engine.Skip(ctx)
	s.Require().NoError(err)

	snap := s.engine.Reset(ctx)
	s.Assert().Equal(session.StateNotStarted, snap.State)
	s.Assert().Equal(0, snap.TotalWords)
	s.Assert().Equal(0, snap.CurrentIndex)

	// A fresh start works after a reset.
	snap, err = s.engine.Start(ctx, s.words("w3"), false)
	s.Require().NoError(err)
	s.Assert().Equal("w3", snap.CurrentWord.ID)
}

func (s *EngineSuite) TestCommandsBeforeStartAreRejected() {
	ctx := context.Background()

	_, err := s.engine.Reveal(ctx)
	s.assertCode(err, apperrors.ErrCodeInvalidTransition)
	_, err = s.engine.Respond(ctx, true)
	s.assertCode(err, apperrors.ErrCodeInvalidTransition)
	_, err = s.engine.Skip(ctx)
	s.assertCode(err, apperrors.ErrCodeInvalidTransition)
	_, err = s.engine.GoToPrevious(ctx)
	s.assertCode(err, apperrors.ErrCodeInvalidTransition)
}

func (s *EngineSuite) TestProgressPercentage() {
	ctx := context.Background()
	s.Assert().Equal(float64(0), s.engine.ProgressPercentage())

	_, err := s.engine.Start(ctx, s.words("w1", "w2", "w3", "w4"), false)
	s.Require().NoError(err)
	s.Assert().Equal(float64(0), s.engine.ProgressPercentage())

	_, err = s.engine.Skip(ctx)
	s.Require().NoError(err)
	s.Assert().Equal(float64(25), s.engine.ProgressPercentage())
	s.Assert().Equal(3, s.engine.RemainingCount())
}

func TestEngineSuite(t *testing.T) {
	suite.Run(t, new(EngineSuite))
}
