package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"study-client/internal/domain"
)

// QuestionLoader fetches a course's questions from the remote API.
type QuestionLoader interface {
	ListQuestions(ctx context.Context, courseID string) ([]domain.Question, error)
}

// QuestionRepository caches question lists with TTL to avoid repeated remote calls.
type QuestionRepository struct {
	loader QuestionLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand

	mu    sync.RWMutex
	cache map[string]cachedQuestions
}

type cachedQuestions struct {
	questions []domain.Question
	expiresAt time.Time
}

func NewQuestionRepository(loader QuestionLoader, ttl time.Duration) *QuestionRepository {
	return &QuestionRepository{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[string]cachedQuestions),
	}
}

func (r *QuestionRepository) GetQuestions(ctx context.Context, courseID string) ([]domain.Question, error) {
	if questions, ok := r.lookup(courseID); ok {
		return questions, nil
	}

	result, err, _ := r.sf.Do(courseID, func() (interface{}, error) {
		if questions, ok := r.lookup(courseID); ok {
			return questions, nil
		}

		questions, err := r.loader.ListQuestions(ctx, courseID)
		if err != nil {
			return nil, err
		}

		// rnd is not safe for concurrent use; draw jitter under the lock
		r.mu.Lock()
		if ttl := r.ttlWithJitter(); ttl > 0 {
			r.cache[courseID] = cachedQuestions{
				questions: questions,
				expiresAt: r.clock().Add(ttl),
			}
		}
		r.mu.Unlock()
		return questions, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Question), nil
}

// Invalidate drops a cached course so the next read reloads it.
func (r *QuestionRepository) Invalidate(_ context.Context, courseID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.cache, courseID)
	return nil
}

func (r *QuestionRepository) lookup(courseID string) ([]domain.Question, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.cache[courseID]
	if !ok || !entry.expiresAt.After(r.clock()) {
		return nil, false
	}
	return entry.questions, true
}

// StaticQuestionLoader is a simple loader backed by an in-memory map (useful for tests/demos).
type StaticQuestionLoader struct {
	questions map[string][]domain.Question
}

func NewStaticQuestionLoader(questions map[string][]domain.Question) *StaticQuestionLoader {
	return &StaticQuestionLoader{questions: questions}
}

func (l *StaticQuestionLoader) ListQuestions(_ context.Context, courseID string) ([]domain.Question, error) {
	if questions, ok := l.questions[courseID]; ok {
		return questions, nil
	}
	return nil, domain.ErrCourseNotLoaded
}

func (r *QuestionRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
