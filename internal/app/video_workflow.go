package app

import (
	"context"
	"sync"
	"time"

	"github.com/facebookgo/clock"

	"study-client/internal/domain"
	"study-client/internal/gateway"
	"study-client/internal/logger"
)

const (
	ProgressStep     = 10
	ProgressCeiling  = 90
	ProgressInterval = 3 * time.Second
	// CleanupDelay keeps the finished progress visible before it is cleared.
	CleanupDelay = 500 * time.Millisecond

	defaultGenerationError = "Failed to generate video"
)

// VideoGenerator dispatches a generation request to the remote service.
type VideoGenerator interface {
	GenerateVideo(ctx context.Context, req domain.VideoGenerationRequest) (domain.VideoResult, error)
}

type VideoState int

const (
	VideoIdle VideoState = iota
	VideoPromptOpen
	VideoGenerating
	VideoSucceeded
	VideoFailed
)

func (s VideoState) String() string {
	switch s {
	case VideoPromptOpen:
		return "prompt_open"
	case VideoGenerating:
		return "generating"
	case VideoSucceeded:
		return "succeeded"
	case VideoFailed:
		return "failed"
	default:
		return "idle"
	}
}

func (s VideoState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// VideoSnapshot is everything a renderer needs to draw the prompt dialog,
// the progress dialog and the player.
type VideoSnapshot struct {
	State      VideoState `json:"state"`
	QuestionID string     `json:"questionId"`
	Prompt     string     `json:"prompt"`
	DialogOpen bool       `json:"dialogOpen"`
	Generating bool       `json:"generating"`
	Progress   int        `json:"progress"`
	Error      string     `json:"error,omitempty"`
	VideoURL   string     `json:"videoUrl,omitempty"`
	PlayerOpen bool       `json:"playerOpen"`
}

// VideoWorkflow drives one video generation at a time for a question context.
// Progress is a timer on the injected clock and never reflects server progress.
type VideoWorkflow struct {
	generator VideoGenerator
	clock     clock.Clock
	log       *logger.Logger

	mu          sync.Mutex
	snap        VideoSnapshot
	run         int
	detached    int
	tick        *clock.Timer
	subscribers map[chan VideoSnapshot]struct{}
}

func NewVideoWorkflow(generator VideoGenerator, clk clock.Clock, log *logger.Logger) *VideoWorkflow {
	return &VideoWorkflow{
		generator:   generator,
		clock:       clk,
		log:         log.With("component", "VideoWorkflow"),
		subscribers: make(map[chan VideoSnapshot]struct{}),
	}
}

// Snapshot returns the current workflow state.
func (w *VideoWorkflow) Snapshot() VideoSnapshot {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.snap
}

// Open shows the prompt dialog for questionID. No request is made yet.
func (w *VideoWorkflow) Open(questionID string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.snap.Generating {
		return domain.ErrGenerationInProgress
	}
	if w.snap.QuestionID != questionID {
		w.snap.Error = ""
		w.snap.Prompt = ""
	}
	w.snap.QuestionID = questionID
	w.snap.State = VideoPromptOpen
	w.snap.DialogOpen = true
	w.broadcastLocked()
	return nil
}

// SetPrompt stores the optional free-text prompt while the dialog is open.
func (w *VideoWorkflow) SetPrompt(prompt string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.snap.DialogOpen {
		return domain.ErrPromptNotOpen
	}
	w.snap.Prompt = prompt
	w.broadcastLocked()
	return nil
}

// Dismiss closes the dialog without generating, discarding prompt and error.
func (w *VideoWorkflow) Dismiss() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.snap.DialogOpen {
		return
	}
	w.snap.DialogOpen = false
	w.snap.Prompt = ""
	w.snap.Error = ""
	if w.snap.State == VideoPromptOpen {
		w.snap.State = VideoIdle
	}
	w.broadcastLocked()
}

// Reset drops the dialog, prompt and error left by the previous question.
// A request still in flight keeps running, but its failure no longer
// reopens the dialog. The player is left alone.
func (w *VideoWorkflow) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.snap.State == VideoGenerating {
		w.detached = w.run
	} else {
		w.snap.QuestionID = ""
	}
	if w.snap.State == VideoPromptOpen {
		w.snap.State = VideoIdle
	}
	w.snap.DialogOpen = false
	w.snap.Prompt = ""
	w.snap.Error = ""
	w.broadcastLocked()
}

// Confirm dispatches the generation request and starts the progress timer.
// The request runs detached from ctx's cancellation: once started it is not
// abortable.
func (w *VideoWorkflow) Confirm(ctx context.Context) error {
	w.mu.Lock()
	if w.snap.Generating {
		w.mu.Unlock()
		return domain.ErrGenerationInProgress
	}
	if w.snap.State != VideoPromptOpen {
		w.mu.Unlock()
		return domain.ErrPromptNotOpen
	}

	w.run++
	run := w.run
	req := domain.VideoGenerationRequest{QuestionID: w.snap.QuestionID, Prompt: w.snap.Prompt}

	w.snap.State = VideoGenerating
	w.snap.Generating = true
	w.snap.DialogOpen = false
	w.snap.Error = ""
	w.snap.Progress = 0
	w.tick = w.clock.AfterFunc(ProgressInterval, func() { w.advance(run) })
	w.broadcastLocked()
	w.mu.Unlock()

	go w.generate(context.WithoutCancel(ctx), run, req)
	return nil
}

// ClosePlayer hides the player and forgets the generated URL.
func (w *VideoWorkflow) ClosePlayer() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.snap.PlayerOpen = false
	w.snap.VideoURL = ""
	w.broadcastLocked()
}

// Subscribe returns a channel of snapshots starting with the current one.
// The caller must invoke the returned cancel function to avoid leaks.
func (w *VideoWorkflow) Subscribe() (<-chan VideoSnapshot, func()) {
	ch := make(chan VideoSnapshot, 16)

	// The initial snapshot is queued under the lock so no broadcast can overtake it.
	w.mu.Lock()
	w.subscribers[ch] = struct{}{}
	ch <- w.snap
	w.mu.Unlock()

	cancel := func() {
		w.mu.Lock()
		if _, ok := w.subscribers[ch]; ok {
			delete(w.subscribers, ch)
			close(ch)
		}
		w.mu.Unlock()
	}
	return ch, cancel
}

func (w *VideoWorkflow) advance(run int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if run != w.run || w.snap.State != VideoGenerating {
		return
	}
	w.snap.Progress = min(w.snap.Progress+ProgressStep, ProgressCeiling)
	w.broadcastLocked()
	if w.snap.Progress < ProgressCeiling {
		w.tick = w.clock.AfterFunc(ProgressInterval, func() { w.advance(run) })
	} else {
		w.tick = nil
	}
}

func (w *VideoWorkflow) generate(ctx context.Context, run int, req domain.VideoGenerationRequest) {
	res, err := w.generator.GenerateVideo(ctx, req)

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.tick != nil {
		w.tick.Stop()
		w.tick = nil
	}
	switch {
	case err != nil && w.detached == run:
		w.log.Warn("video generation failed after leaving question", "question_id", req.QuestionID, "error", err)
		w.snap.State = VideoFailed
		w.snap.Prompt = ""
	case err != nil:
		w.log.Warn("video generation failed", "question_id", req.QuestionID, "error", err)
		w.snap.State = VideoFailed
		w.snap.Error = gateway.ErrorMessage(err, defaultGenerationError)
		w.snap.DialogOpen = true
	default:
		w.snap.State = VideoSucceeded
		w.snap.Progress = 100
		w.snap.Prompt = ""
		w.snap.VideoURL = res.VideoURL
		w.snap.PlayerOpen = true
	}
	w.broadcastLocked()
	w.clock.AfterFunc(CleanupDelay, func() { w.cleanup(run) })
}

func (w *VideoWorkflow) cleanup(run int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if run != w.run {
		return
	}
	w.snap.Generating = false
	w.snap.Progress = 0
	switch {
	case w.snap.DialogOpen:
		w.snap.State = VideoPromptOpen
	default:
		w.snap.State = VideoIdle
	}
	w.broadcastLocked()
}

func (w *VideoWorkflow) broadcastLocked() {
	snap := w.snap
	for ch := range w.subscribers {
		select {
		case ch <- snap:
		default:
			// drop the oldest snapshot so a slow reader never blocks the workflow
			select {
			case <-ch:
			default:
			}
			ch <- snap
		}
	}
}
