package gateway

import (
	"context"
	"net/http"
	"net/url"

	"study-client/internal/domain"
)

func (g *Gateway) ListCourses(ctx context.Context) ([]domain.Course, error) {
	var courses []domain.Course
	if err := g.Do(ctx, http.MethodGet, "/courses", nil, &courses); err != nil {
		return nil, err
	}
	return courses, nil
}

func (g *Gateway) ListQuestions(ctx context.Context, courseID string) ([]domain.Question, error) {
	var questions []domain.Question
	if err := g.Do(ctx, http.MethodGet, "/courses/"+url.PathEscape(courseID)+"/questions", nil, &questions); err != nil {
		return nil, err
	}
	return questions, nil
}

// SaveAnswer persists an answer record. Callers treat failures as best-effort.
func (g *Gateway) SaveAnswer(ctx context.Context, answer domain.AnswerSubmission) error {
	return g.Do(ctx, http.MethodPost, "/answers", answer, nil)
}

func (g *Gateway) GenerateVideo(ctx context.Context, req domain.VideoGenerationRequest) (domain.VideoResult, error) {
	var res domain.VideoResult
	if err := g.Do(ctx, http.MethodPost, "/videos", req, &res); err != nil {
		return domain.VideoResult{}, err
	}
	return res, nil
}

// ListVideos returns the current user's generated videos.
func (g *Gateway) ListVideos(ctx context.Context) ([]domain.Video, error) {
	var videos []domain.Video
	if err := g.Do(ctx, http.MethodGet, "/videos", nil, &videos); err != nil {
		return nil, err
	}
	return videos, nil
}

// SharedVideo fetches a video by share token, independent of authentication.
func (g *Gateway) SharedVideo(ctx context.Context, token string) (domain.Video, error) {
	var video domain.Video
	if err := g.Do(ctx, http.MethodGet, "/videos/share/"+url.PathEscape(token), nil, &video); err != nil {
		return domain.Video{}, err
	}
	return video, nil
}

func (g *Gateway) SetVideoPublic(ctx context.Context, videoID string, public bool) (domain.Video, error) {
	body := struct {
		IsPublic bool `json:"is_public"`
	}{IsPublic: public}
	var video domain.Video
	if err := g.Do(ctx, http.MethodPatch, "/videos/"+url.PathEscape(videoID)+"/public", body, &video); err != nil {
		return domain.Video{}, err
	}
	return video, nil
}

func (g *Gateway) DeleteVideo(ctx context.Context, videoID string) error {
	return g.Do(ctx, http.MethodDelete, "/videos/"+url.PathEscape(videoID), nil, nil)
}
