package app

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"study-client/internal/domain"
	"study-client/internal/gateway"
	"study-client/internal/logger"
)

const (
	defaultCoursesError = "Failed to load courses"
	sharedVideoError    = "Video not found or access denied"
)

// RemoteCatalog is the subset of the remote API the library needs.
type RemoteCatalog interface {
	ListCourses(ctx context.Context) ([]domain.Course, error)
	ListVideos(ctx context.Context) ([]domain.Video, error)
	SharedVideo(ctx context.Context, token string) (domain.Video, error)
	SetVideoPublic(ctx context.Context, videoID string, public bool) (domain.Video, error)
	DeleteVideo(ctx context.Context, videoID string) error
}

// CourseList is the course list view: either courses or an inline error.
type CourseList struct {
	Courses []domain.Course `json:"courses"`
	Error   string          `json:"error,omitempty"`
}

// SharedVideoView is what a share link renders. Missing, invalid and private
// videos all become the same unavailable state so existence is not leaked.
type SharedVideoView struct {
	Available bool          `json:"available"`
	Video     *domain.Video `json:"video,omitempty"`
	Message   string        `json:"message,omitempty"`
}

// Library covers the course list, the user's videos and share links.
type Library struct {
	remote      RemoteCatalog
	shareOrigin string
	log         *logger.Logger
}

func NewLibrary(remote RemoteCatalog, shareOrigin string, log *logger.Logger) *Library {
	return &Library{
		remote:      remote,
		shareOrigin: strings.TrimRight(shareOrigin, "/"),
		log:         log.With("component", "Library"),
	}
}

// Courses loads the course list; failures are folded into CourseList.Error.
func (l *Library) Courses(ctx context.Context) CourseList {
	courses, err := l.remote.ListCourses(ctx)
	if err != nil {
		l.log.Warn("failed to load courses", "error", err)
		return CourseList{Error: gateway.ErrorMessage(err, defaultCoursesError)}
	}
	if courses == nil {
		courses = []domain.Course{}
	}
	return CourseList{Courses: courses}
}

// Videos lists the current user's generated videos.
func (l *Library) Videos(ctx context.Context) ([]domain.Video, error) {
	videos, err := l.remote.ListVideos(ctx)
	if err != nil {
		l.log.Error("error fetching videos", "error", err)
		return nil, err
	}
	return videos, nil
}

func (l *Library) SetPublic(ctx context.Context, videoID string, public bool) (domain.Video, error) {
	return l.remote.SetVideoPublic(ctx, videoID, public)
}

func (l *Library) Delete(ctx context.Context, videoID string) error {
	return l.remote.DeleteVideo(ctx, videoID)
}

// ShareURL builds the public link for a share token.
func (l *Library) ShareURL(token string) string {
	return l.shareOrigin + "/s/" + url.PathEscape(token)
}

// Shared resolves a share token into a playable video or the unavailable state.
func (l *Library) Shared(ctx context.Context, token string) SharedVideoView {
	unavailable := SharedVideoView{Message: sharedVideoError}
	if strings.TrimSpace(token) == "" {
		return unavailable
	}
	video, err := l.remote.SharedVideo(ctx, token)
	if err != nil {
		// the error carries the request path, which embeds the token
		var serverErr *gateway.ServerError
		if errors.As(err, &serverErr) {
			l.log.Debug("shared video unavailable", "status", serverErr.Status)
		} else {
			l.log.Debug("shared video unavailable")
		}
		return unavailable
	}
	if !video.IsPublic {
		return unavailable
	}
	return SharedVideoView{Available: true, Video: &video}
}
