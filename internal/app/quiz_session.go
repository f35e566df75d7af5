package app

import (
	"context"
	"sync"

	"study-client/internal/domain"
	"study-client/internal/gateway"
	"study-client/internal/grading"
	"study-client/internal/logger"
)

const defaultQuestionsError = "Failed to load questions"

// QuestionRepository loads question lists (from cache/backing store).
type QuestionRepository interface {
	GetQuestions(ctx context.Context, courseID string) ([]domain.Question, error)
}

// AnswerRecorder persists answer records on the remote service.
type AnswerRecorder interface {
	SaveAnswer(ctx context.Context, answer domain.AnswerSubmission) error
}

// AnswerOutcome is the local grading result for the current question.
type AnswerOutcome struct {
	QuestionID    string `json:"questionId"`
	Selected      string `json:"selected"`
	Correct       bool   `json:"correct"`
	DisplayAnswer string `json:"displayAnswer"`
	Explanation   string `json:"explanation,omitempty"`
}

// OptionView is the per-option render decision.
type OptionView struct {
	Label    string `json:"label"`
	Text     string `json:"text"`
	Selected bool   `json:"selected"`
	// Correct and Wrong are only set once the question is answered.
	Correct bool `json:"correct"`
	Wrong   bool `json:"wrong"`
}

// QuizView is a render-ready snapshot of the active course.
type QuizView struct {
	CourseID    string         `json:"courseId"`
	QuestionID  string         `json:"questionId,omitempty"`
	Prompt      string         `json:"prompt,omitempty"`
	Index       int            `json:"index"`
	Total       int            `json:"total"`
	Options     []OptionView   `json:"options"`
	Answered    bool           `json:"answered"`
	Outcome     *AnswerOutcome `json:"outcome,omitempty"`
	CanPrevious bool           `json:"canPrevious"`
	CanNext     bool           `json:"canNext"`
	Error       string         `json:"error,omitempty"`
}

// QuizSession holds question traversal and answer state for one user. The
// index is kept per course so leaving a course and coming back keeps position.
type QuizSession struct {
	questions QuestionRepository
	answers   AnswerRecorder
	video     *VideoWorkflow
	log       *logger.Logger

	mu       sync.Mutex
	byCourse map[string][]domain.Question
	index    map[string]int
	courseID string
	outcome  *AnswerOutcome
	err      string

	pending sync.WaitGroup
}

func NewQuizSession(questions QuestionRepository, answers AnswerRecorder, video *VideoWorkflow, log *logger.Logger) *QuizSession {
	return &QuizSession{
		questions: questions,
		answers:   answers,
		video:     video,
		log:       log.With("component", "QuizSession"),
		byCourse:  make(map[string][]domain.Question),
		index:     make(map[string]int),
	}
}

// Open loads a course's questions and makes it the active course. A load
// failure becomes the inline error of the view and is also returned.
func (s *QuizSession) Open(ctx context.Context, courseID string) error {
	s.video.Reset()
	questions, err := s.questions.GetQuestions(ctx, courseID)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.courseID = courseID
	s.outcome = nil
	if err != nil {
		s.log.Warn("failed to load questions", "course_id", courseID, "error", err)
		s.err = gateway.ErrorMessage(err, defaultQuestionsError)
		delete(s.byCourse, courseID)
		return err
	}
	s.err = ""
	s.byCourse[courseID] = questions
	if s.index[courseID] >= len(questions) {
		s.index[courseID] = 0
	}
	return nil
}

// Answer grades selected against the current question. The result is final
// for this question instance; persistence is dispatched afterwards and its
// failure never changes the outcome.
func (s *QuizSession) Answer(ctx context.Context, selected string) (AnswerOutcome, error) {
	s.mu.Lock()
	question, err := s.currentLocked()
	if err != nil {
		s.mu.Unlock()
		return AnswerOutcome{}, err
	}
	if s.outcome != nil {
		out := *s.outcome
		s.mu.Unlock()
		return out, domain.ErrAlreadyAnswered
	}
	if !hasOption(question.Options, selected) {
		s.mu.Unlock()
		return AnswerOutcome{}, domain.ErrUnknownOption
	}

	outcome := AnswerOutcome{
		QuestionID:    question.ID,
		Selected:      selected,
		Correct:       grading.IsCorrect(selected, question.CorrectAnswer, question.Options),
		DisplayAnswer: grading.DisplayAnswer(question.CorrectAnswer, question.Options),
		Explanation:   question.Explanation,
	}
	s.outcome = &outcome
	s.mu.Unlock()

	s.persist(ctx, domain.AnswerSubmission{
		QuestionID:     outcome.QuestionID,
		SelectedAnswer: outcome.Selected,
		IsCorrect:      outcome.Correct,
	})
	return outcome, nil
}

// Next moves to the following question; it is a no-op on the last one.
func (s *QuizSession) Next() bool {
	return s.move(1)
}

// Previous moves to the preceding question; it is a no-op on the first one.
func (s *QuizSession) Previous() bool {
	return s.move(-1)
}

// OpenVideoPrompt opens the video workflow for the current question.
func (s *QuizSession) OpenVideoPrompt() error {
	s.mu.Lock()
	question, err := s.currentLocked()
	s.mu.Unlock()
	if err != nil {
		return err
	}
	return s.video.Open(question.ID)
}

// Video exposes the session's generation workflow.
func (s *QuizSession) Video() *VideoWorkflow {
	return s.video
}

// View returns the render-ready state of the active course.
func (s *QuizSession) View() QuizView {
	s.mu.Lock()
	defer s.mu.Unlock()

	view := QuizView{CourseID: s.courseID, Error: s.err}
	questions := s.byCourse[s.courseID]
	if len(questions) == 0 {
		return view
	}
	idx := s.index[s.courseID]
	q := questions[idx]
	view.QuestionID = q.ID
	view.Prompt = q.Text
	view.Index = idx
	view.Total = len(questions)
	view.CanPrevious = idx > 0
	view.CanNext = idx < len(questions)-1
	view.Answered = s.outcome != nil
	if s.outcome != nil {
		out := *s.outcome
		view.Outcome = &out
	}

	view.Options = make([]OptionView, len(q.Options))
	for i, option := range q.Options {
		ov := OptionView{Label: grading.OptionLabel(i), Text: option}
		if s.outcome != nil {
			ov.Selected = s.outcome.Selected == option
			ov.Correct = grading.IsCorrectOption(i, option, q.CorrectAnswer)
			ov.Wrong = ov.Selected && !s.outcome.Correct
		}
		view.Options[i] = ov
	}
	return view
}

// Wait blocks until every dispatched answer persistence call has settled.
func (s *QuizSession) Wait() {
	s.pending.Wait()
}

func (s *QuizSession) move(delta int) bool {
	s.mu.Lock()
	questions := s.byCourse[s.courseID]
	next := s.index[s.courseID] + delta
	if next < 0 || next >= len(questions) {
		s.mu.Unlock()
		return false
	}
	s.index[s.courseID] = next
	s.outcome = nil
	s.err = ""
	s.mu.Unlock()

	s.video.Reset()
	return true
}

func (s *QuizSession) currentLocked() (domain.Question, error) {
	questions, ok := s.byCourse[s.courseID]
	if !ok {
		return domain.Question{}, domain.ErrCourseNotLoaded
	}
	if len(questions) == 0 {
		return domain.Question{}, domain.ErrNoQuestion
	}
	return questions[s.index[s.courseID]], nil
}

func (s *QuizSession) persist(ctx context.Context, answer domain.AnswerSubmission) {
	ctx = context.WithoutCancel(ctx)
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		if err := s.answers.SaveAnswer(ctx, answer); err != nil {
			s.log.Error("error saving answer", "question_id", answer.QuestionID, "error", err)
		}
	}()
}

func hasOption(options []string, selected string) bool {
	for _, option := range options {
		if option == selected {
			return true
		}
	}
	return false
}
