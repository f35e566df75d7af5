package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"study-client/internal/domain"
)

type authLog struct {
	mu      sync.Mutex
	headers []string
}

func (a *authLog) add(h string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.headers = append(a.headers, h)
}

func (a *authLog) all() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.headers...)
}

func newAPI(t *testing.T) (*httptest.Server, *authLog) {
	t.Helper()
	auth := &authLog{}
	mux := http.NewServeMux()
	mux.HandleFunc("/courses/geo/questions", func(w http.ResponseWriter, r *http.Request) {
		auth.add(r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode([]domain.Question{{
			ID:            "q1",
			Text:          "What is the capital of France?",
			Options:       []string{"Paris", "Lyon", "Nice"},
			CorrectAnswer: "a",
		}})
	})
	mux.HandleFunc("/videos/v2/public", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			IsPublic bool `json:"is_public"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		_ = json.NewEncoder(w).Encode(domain.Video{ID: "v2", ShareToken: "tok-2", IsPublic: body.IsPublic})
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server, auth
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("STUDY_TOKEN", "")
	t.Setenv("REDIS_ADDR", "")
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestQuestionsCommandPrintsResolvedAnswer(t *testing.T) {
	api, auth := newAPI(t)
	path := writeConfig(t, "api:\n  base_url: "+api.URL+"\nsession:\n  token: opaque-token\nlog:\n  mode: prod\n")

	out, err := run(t, "--config", path, "questions", "geo")
	if err != nil {
		t.Fatalf("questions: %v", err)
	}
	if !strings.Contains(out, "* A) Paris") || !strings.Contains(out, "answer: Paris") {
		t.Fatalf("unexpected output:\n%s", out)
	}
	if got := auth.all(); len(got) != 1 || got[0] != "Bearer opaque-token" {
		t.Fatalf("expected bearer token on request, got %v", got)
	}
}

func TestPublishPrintsShareLink(t *testing.T) {
	api, _ := newAPI(t)
	path := writeConfig(t, "api:\n  base_url: "+api.URL+"\nshare:\n  origin: https://study.example\nlog:\n  mode: prod\n")

	out, err := run(t, "--config", path, "videos", "publish", "v2")
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	if strings.TrimSpace(out) != "https://study.example/s/tok-2" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestSessionLoginSharesTokenThroughRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	api, auth := newAPI(t)
	path := writeConfig(t, "api:\n  base_url: "+api.URL+"\nredis:\n  addr: "+mr.Addr()+"\nsession:\n  user_id: u1\nlog:\n  mode: prod\n")

	if _, err := run(t, "--config", path, "session", "login", "--token", "shared-token"); err != nil {
		t.Fatalf("login: %v", err)
	}
	if _, err := run(t, "--config", path, "questions", "geo"); err != nil {
		t.Fatalf("questions: %v", err)
	}
	if got := auth.all(); len(got) != 1 || got[0] != "Bearer shared-token" {
		t.Fatalf("expected token read back from redis, got %v", got)
	}

	if _, err := run(t, "--config", path, "session", "logout"); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if mr.Exists("study:session:u1") {
		t.Fatalf("expected session key removed")
	}
}

func TestMissingAPIURLFailsFast(t *testing.T) {
	t.Setenv("STUDY_API_URL", "")
	path := writeConfig(t, "log:\n  mode: prod\n")
	if _, err := run(t, "--config", path, "courses"); err == nil {
		t.Fatalf("expected missing API URL error")
	}
}

func TestAPITimeoutDefaultsToNone(t *testing.T) {
	t.Setenv("STUDY_API_URL", "http://localhost:9000")
	t.Setenv("REDIS_ADDR", "")
	rt, err := loadRuntime(context.Background(), filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("load runtime: %v", err)
	}
	defer rt.Close()
	if got := rt.gateway.Timeout(); got != 0 {
		t.Fatalf("expected no request timeout by default, got %v", got)
	}

	path := writeConfig(t, "api:\n  timeout: 45s\nlog:\n  mode: prod\n")
	configured, err := loadRuntime(context.Background(), path)
	if err != nil {
		t.Fatalf("load runtime: %v", err)
	}
	defer configured.Close()
	if got := configured.gateway.Timeout(); got != 45*time.Second {
		t.Fatalf("expected configured timeout, got %v", got)
	}
}

func TestQuestionsRefreshDropsRedisCache(t *testing.T) {
	mr := miniredis.RunT(t)
	api, auth := newAPI(t)
	path := writeConfig(t, "api:\n  base_url: "+api.URL+"\nredis:\n  addr: "+mr.Addr()+"\nlog:\n  mode: prod\n")

	for i := 0; i < 2; i++ {
		if _, err := run(t, "--config", path, "questions", "geo"); err != nil {
			t.Fatalf("questions: %v", err)
		}
	}
	if got := len(auth.all()); got != 1 {
		t.Fatalf("expected second run served from redis, api calls %d", got)
	}

	if _, err := run(t, "--config", path, "questions", "geo", "--refresh"); err != nil {
		t.Fatalf("questions --refresh: %v", err)
	}
	if got := len(auth.all()); got != 2 {
		t.Fatalf("expected refresh to reload from the api, api calls %d", got)
	}
}
