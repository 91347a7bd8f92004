package session

import (
	"context"
	"math/rand"
	"sync"

	"github.com/takei-shg/word-anki/internal/errors"
	"github.com/takei-shg/word-anki/internal/logger"
	"github.com/takei-shg/word-anki/internal/models"
	"github.com/takei-shg/word-anki/internal/services"
)

// State is the lifecycle state of a study session.
type State string

const (
	StateNotStarted State = "not_started"
	StateLoading    State = "loading"
	StateReady      State = "ready"
	StateInProgress State = "in_progress"
	StateCompleted  State = "completed"
	StateError      State = "error"
)

// Phase is the display phase of the word currently presented.
type Phase string

const (
	PhaseWordShown    Phase = "word_shown"
	PhaseMeaningShown Phase = "meaning_shown"
)

// outcome is one recorded step, kept on an undo stack so going back reverses
// the exact counter the step incremented.
type outcome int

const (
	outcomeMemorized outcome = iota
	outcomeNotMemorized
	outcomeSkipped
)

// Snapshot is the engine state published to the UI. The UI holds no session
// logic; it renders snapshots and issues commands.
type Snapshot struct {
	State              State            `json:"state"`
	Phase              Phase            `json:"phase,omitempty"`
	CurrentWord        *models.WordTest `json:"currentWord,omitempty"`
	CurrentIndex       int              `json:"currentIndex"`
	TotalWords         int              `json:"totalWords"`
	MemorizedCount     int              `json:"memorizedCount"`
	NotMemorizedCount  int              `json:"notMemorizedCount"`
	ProgressPercentage float64          `json:"progressPercentage"`
	RemainingCount     int              `json:"remainingCount"`
	ErrorReason        string           `json:"errorReason,omitempty"`
}

// Engine drives exactly one study session as a strict state machine. All
// operations are synchronous transitions except Respond, which suspends on the
// progress store; a second Respond or Reveal while one is in flight is
// rejected, not queued.
type Engine struct {
	progress services.ProgressService
	log      *logger.Logger

	mu           sync.Mutex
	busy         bool
	state        State
	phase        Phase
	words        []models.WordTest
	index        int
	memorized    int
	notMemorized int
	history      []outcome
	errReason    string
}

// NewEngine creates an Engine in NotStarted.
func NewEngine(progress services.ProgressService) *Engine {
	return &Engine{
		progress: progress,
		state:    StateNotStarted,
		log:      logger.Default().WithPrefix("session"),
	}
}

// Start begins a session over the given words. Empty input moves straight to
// the error state; the meaning of every other input is a fresh session with
// counters at zero and the first word shown.
func (e *Engine) Start(ctx context.Context, words []models.WordTest, shuffle bool) (*Snapshot, error) {
	log := logger.FromContext(ctx).WithPrefix("session")

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.busy {
		return nil, errors.NewInvalidTransition("start", "respond in flight")
	}

	e.state = StateLoading
	e.reset()

	if len(words) == 0 {
		e.state = StateError
		e.errReason = "no words available"
		log.Warn("session start rejected: no words available")
		return e.snapshotLocked(), errors.NewValidationError("words", "no words available")
	}

	e.words = make([]models.WordTest, len(words))
	copy(e.words, words)
	if shuffle {
		rand.Shuffle(len(e.words), func(i, j int) {
			e.words[i], e.words[j] = e.words[j], e.words[i]
		})
	}

	e.state = StateReady
	// The first word is presented immediately.
	e.state = StateInProgress
	e.phase = PhaseWordShown

	log.Info("session started: %d words, shuffle=%v", len(e.words), shuffle)
	return e.snapshotLocked(), nil
}

// Reveal shows the current word's meaning. Revealing an already revealed
// meaning is a no-op.
func (e *Engine) Reveal(ctx context.Context) (*Snapshot, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != StateInProgress {
		return nil, errors.NewInvalidTransition("reveal", string(e.state))
	}
	if e.busy {
		return nil, errors.NewInvalidTransition("reveal", "respond in flight")
	}

	e.phase = PhaseMeaningShown
	return e.snapshotLocked(), nil
}

// Respond records the user's answer for the current word. The meaning must
// have been revealed first: no scoring without engagement.
func (e *Engine) Respond(ctx context.Context, memorized bool) (*Snapshot, error) {
	log := logger.FromContext(ctx).WithPrefix("session")

	e.mu.Lock()
	if e.state != StateInProgress {
		e.mu.Unlock()
		return nil, errors.NewInvalidTransition("respond", string(e.state))
	}
	if e.busy {
		e.mu.Unlock()
		return nil, errors.NewInvalidTransition("respond", "respond in flight")
	}
	if e.phase != PhaseMeaningShown {
		e.mu.Unlock()
		return nil, errors.NewInvalidTransition("respond", string(e.phase))
	}
	word := e.words[e.index]
	e.busy = true
	e.mu.Unlock()

	// Persistence happens outside the lock; the busy flag keeps the session
	// closed to other commands meanwhile.
	_, err := e.progress.RecordResponse(ctx, word.ID, memorized)

	e.mu.Lock()
	defer e.mu.Unlock()
	e.busy = false

	if err != nil {
		log.Error("failed to persist response for word %s: %v", word.ID, err)
		e.state = StateError
		e.errReason = err.Error()
		return nil, err
	}

	if memorized {
		e.memorized++
		e.history = append(e.history, outcomeMemorized)
	} else {
		e.notMemorized++
		e.history = append(e.history, outcomeNotMemorized)
	}
	e.advanceLocked()

	log.Debug("response recorded: word=%s, memorized=%v, index=%d/%d", word.Word, memorized, e.index, len(e.words))
	return e.snapshotLocked(), nil
}

// Skip advances past the current word without recording a response.
func (e *Engine) Skip(ctx context.Context) (*Snapshot, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != StateInProgress {
		return nil, errors.NewInvalidTransition("skip", string(e.state))
	}
	if e.busy {
		return nil, errors.NewInvalidTransition("skip", "respond in flight")
	}

	e.history = append(e.history, outcomeSkipped)
	e.advanceLocked()
	return e.snapshotLocked(), nil
}

// GoToPrevious steps back one word. The undo stack holds what each forward
// step actually did, so the matching counter is decremented exactly; a
// skipped step decrements nothing.
func (e *Engine) GoToPrevious(ctx context.Context) (*Snapshot, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != StateInProgress && e.state != StateCompleted {
		return nil, errors.NewInvalidTransition("previous", string(e.state))
	}
	if e.busy {
		return nil, errors.NewInvalidTransition("previous", "respond in flight")
	}
	if e.index == 0 {
		return e.snapshotLocked(), nil
	}

	e.index--
	e.phase = PhaseWordShown
	e.state = StateInProgress

	last := e.history[len(e.history)-1]
	e.history = e.history[:len(e.history)-1]
	switch last {
	case outcomeMemorized:
		e.memorized--
	case outcomeNotMemorized:
		e.notMemorized--
	}
	return e.snapshotLocked(), nil
}

// Retry returns an errored session to the current word.
func (e *Engine) Retry(ctx context.Context) (*Snapshot, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != StateError {
		return nil, errors.NewInvalidTransition("retry", string(e.state))
	}
	if len(e.words) == 0 || e.index >= len(e.words) {
		return nil, errors.NewInvalidTransition("retry", "no session to resume")
	}

	e.state = StateInProgress
	e.phase = PhaseWordShown
	e.errReason = ""
	return e.snapshotLocked(), nil
}

// Reset abandons the session and returns to NotStarted.
func (e *Engine) Reset(ctx context.Context) *Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.state = StateNotStarted
	e.reset()
	return e.snapshotLocked()
}

// Snapshot returns the current published state.
func (e *Engine) Snapshot() *Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

// ProgressPercentage returns how far through the word list the session is.
func (e *Engine) ProgressPercentage() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.progressLocked()
}

// RemainingCount returns how many words are left, the current one included.
func (e *Engine) RemainingCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.words) - e.index
}

func (e *Engine) reset() {
	e.phase = ""
	e.words = nil
	e.index = 0
	e.memorized = 0
	e.notMemorized = 0
	e.history = nil
	e.errReason = ""
	e.busy = false
}

func (e *Engine) advanceLocked() {
	e.index++
	if e.index == len(e.words) {
		e.state = StateCompleted
		e.phase = ""
		e.log.Info("session completed: memorized=%d, not_memorized=%d", e.memorized, e.notMemorized)
		return
	}
	e.phase = PhaseWordShown
}

func (e *Engine) progressLocked() float64 {
	if len(e.words) == 0 {
		return 0
	}
	return float64(e.index) / float64(len(e.words)) * 100
}

func (e *Engine) snapshotLocked() *Snapshot {
	snap := &Snapshot{
		State:              e.state,
		Phase:              e.phase,
		CurrentIndex:       e.index,
		TotalWords:         len(e.words),
		MemorizedCount:     e.memorized,
		NotMemorizedCount:  e.notMemorized,
		ProgressPercentage: e.progressLocked(),
		RemainingCount:     len(e.words) - e.index,
		ErrorReason:        e.errReason,
	}
	if e.state == StateInProgress && e.index < len(e.words) {
		word := e.words[e.index]
		snap.CurrentWord = &word
	}
	return snap
}
