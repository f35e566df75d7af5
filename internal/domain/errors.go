package domain

import "errors"

var (
	// ErrCourseNotLoaded is returned when a quiz action targets a course whose questions are not loaded.
	ErrCourseNotLoaded = errors.New("course questions not loaded")
	// ErrNoQuestion indicates there is no current question to act on.
	ErrNoQuestion = errors.New("no current question")
	// ErrAlreadyAnswered is returned when the current question was already answered.
	ErrAlreadyAnswered = errors.New("question already answered")
	// ErrUnknownOption indicates the submitted text is not one of the question's options.
	ErrUnknownOption = errors.New("option not found")
	// ErrGenerationInProgress is returned when a video generation is still outstanding.
	ErrGenerationInProgress = errors.New("video generation already in progress")
	// ErrPromptNotOpen indicates a prompt action was attempted with the dialog closed.
	ErrPromptNotOpen = errors.New("video prompt is not open")
	// ErrSessionNotFound is returned by session providers without a stored token.
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionExpired is returned by session providers holding an expired token.
	ErrSessionExpired = errors.New("session expired")
	// ErrVideoUnavailable collapses missing, invalid and private shared videos.
	ErrVideoUnavailable = errors.New("video not found or access denied")
)
