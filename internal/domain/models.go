package domain

import "time"

// Course is a named collection of questions.
type Course struct {
	ID          string    `json:"id"`
	Label       string    `json:"label"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Question models an MCQ item. CorrectAnswer holds either the exact text of one
// option or a single letter A-D pointing at an option by position.
type Question struct {
	ID            string    `json:"id"`
	CourseID      string    `json:"course_id"`
	Text          string    `json:"question_text"`
	Options       []string  `json:"options"`
	CorrectAnswer string    `json:"correct_answer"`
	Explanation   string    `json:"explanation,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// AnswerSubmission is the record persisted after a question is answered.
type AnswerSubmission struct {
	QuestionID     string `json:"question_id"`
	SelectedAnswer string `json:"selected_answer"`
	IsCorrect      bool   `json:"is_correct"`
}

// Video is a generated explanation owned by the current user.
type Video struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	QuestionID string    `json:"question_id"`
	VideoURL   string    `json:"video_url"`
	Prompt     string    `json:"prompt,omitempty"`
	ShareToken string    `json:"share_token"`
	CreatedAt  time.Time `json:"created_at"`
	IsPublic   bool      `json:"is_public"`
}

// VideoGenerationRequest asks the remote service to render a video. An empty
// prompt is omitted so the server applies its default.
type VideoGenerationRequest struct {
	QuestionID string `json:"question_id"`
	Prompt     string `json:"prompt,omitempty"`
}

// VideoResult is the response to a generation request.
type VideoResult struct {
	VideoURL string `json:"video_url"`
}
