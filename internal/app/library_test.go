package app_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"study-client/internal/app"
	"study-client/internal/domain"
	"study-client/internal/gateway"
	"study-client/internal/logger"
)

type fakeRemote struct {
	courses    []domain.Course
	coursesErr error
	videos     map[string]domain.Video
	deleted    []string
}

func (f *fakeRemote) ListCourses(context.Context) ([]domain.Course, error) {
	return f.courses, f.coursesErr
}

func (f *fakeRemote) ListVideos(context.Context) ([]domain.Video, error) {
	out := make([]domain.Video, 0, len(f.videos))
	for _, v := range f.videos {
		out = append(out, v)
	}
	return out, nil
}

func (f *fakeRemote) SharedVideo(_ context.Context, token string) (domain.Video, error) {
	for _, v := range f.videos {
		if v.ShareToken == token {
			return v, nil
		}
	}
	return domain.Video{}, &gateway.ServerError{Status: http.StatusNotFound, Message: "Video not found"}
}

func (f *fakeRemote) SetVideoPublic(_ context.Context, id string, public bool) (domain.Video, error) {
	v, ok := f.videos[id]
	if !ok {
		return domain.Video{}, &gateway.ServerError{Status: http.StatusNotFound}
	}
	v.IsPublic = public
	f.videos[id] = v
	return v, nil
}

func (f *fakeRemote) DeleteVideo(_ context.Context, id string) error {
	delete(f.videos, id)
	f.deleted = append(f.deleted, id)
	return nil
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{
		courses: []domain.Course{{ID: "geo", Label: "Geography"}},
		videos: map[string]domain.Video{
			"v1": {ID: "v1", QuestionID: "q1", VideoURL: "https://cdn/v1.mp4", ShareToken: "tok-public", IsPublic: true},
			"v2": {ID: "v2", QuestionID: "q2", VideoURL: "https://cdn/v2.mp4", ShareToken: "tok-private"},
		},
	}
}

func TestCoursesInlineError(t *testing.T) {
	remote := newFakeRemote()
	lib := app.NewLibrary(remote, "https://study.example/", logger.Nop())

	list := lib.Courses(context.Background())
	if list.Error != "" || len(list.Courses) != 1 {
		t.Fatalf("unexpected course list %+v", list)
	}

	remote.coursesErr = &gateway.TransportError{Method: "GET", Path: "/courses", Err: errors.New("dial tcp: refused")}
	list = lib.Courses(context.Background())
	if list.Error != "Failed to load courses" || len(list.Courses) != 0 {
		t.Fatalf("expected fallback inline error, got %+v", list)
	}

	remote.coursesErr = &gateway.ServerError{Status: http.StatusServiceUnavailable, Message: "maintenance"}
	if list = lib.Courses(context.Background()); list.Error != "maintenance" {
		t.Fatalf("expected server message, got %+v", list)
	}
}

func TestSharedVideoStates(t *testing.T) {
	lib := app.NewLibrary(newFakeRemote(), "https://study.example", logger.Nop())
	ctx := context.Background()

	view := lib.Shared(ctx, "tok-public")
	if !view.Available || view.Video == nil || view.Video.ID != "v1" {
		t.Fatalf("expected playable public video, got %+v", view)
	}

	private := lib.Shared(ctx, "tok-private")
	missing := lib.Shared(ctx, "tok-unknown")
	empty := lib.Shared(ctx, " ")
	for _, v := range []app.SharedVideoView{private, missing, empty} {
		if v.Available || v.Video != nil || v.Message != "Video not found or access denied" {
			t.Fatalf("expected collapsed unavailable state, got %+v", v)
		}
	}
}

func TestVideoManagement(t *testing.T) {
	remote := newFakeRemote()
	lib := app.NewLibrary(remote, "https://study.example/", logger.Nop())
	ctx := context.Background()

	if got := lib.ShareURL("tok-public"); got != "https://study.example/s/tok-public" {
		t.Fatalf("unexpected share url %q", got)
	}

	v, err := lib.SetPublic(ctx, "v2", true)
	if err != nil || !v.IsPublic {
		t.Fatalf("set public: %+v %v", v, err)
	}
	if view := lib.Shared(ctx, "tok-private"); !view.Available {
		t.Fatalf("expected video viewable once public")
	}

	if err := lib.Delete(ctx, "v1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	videos, err := lib.Videos(ctx)
	if err != nil || len(videos) != 1 || videos[0].ID != "v2" {
		t.Fatalf("unexpected videos %+v %v", videos, err)
	}
}
