package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"study-client/internal/domain"
	"study-client/internal/logger"
)

// QuestionLoader fetches a course's questions from the remote API.
type QuestionLoader interface {
	ListQuestions(ctx context.Context, courseID string) ([]domain.Question, error)
}

// QuestionRepository caches question lists in Redis and falls back to a loader on cache miss.
// Lists are stored as JSON: SET course:{courseID}:questions <json> EX <ttl>
type QuestionRepository struct {
	client *redis.Client
	loader QuestionLoader
	ttl    time.Duration
	log    *logger.Logger
	sf     singleflight.Group

	rndMu sync.Mutex
	rnd   *rand.Rand
}

func NewQuestionRepository(client *redis.Client, loader QuestionLoader, ttl time.Duration, log *logger.Logger) *QuestionRepository {
	return &QuestionRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
		log:    log.With("component", "RedisQuestionRepository"),
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *QuestionRepository) GetQuestions(ctx context.Context, courseID string) ([]domain.Question, error) {
	if questions, ok := r.cached(ctx, courseID); ok {
		return questions, nil
	}

	result, err, _ := r.sf.Do(courseID, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if questions, ok := r.cached(ctx, courseID); ok {
			return questions, nil
		}

		questions, err := r.loader.ListQuestions(ctx, courseID)
		if err != nil {
			return nil, err
		}

		if ttl := r.ttlWithJitter(); ttl > 0 {
			data, err := json.Marshal(questions)
			if err == nil {
				err = r.client.Set(ctx, r.key(courseID), data, ttl).Err()
			}
			if err != nil {
				// the cache is best-effort; the loaded list is still served
				r.log.Warn("failed to cache questions", "course_id", courseID, "error", err)
			}
		}
		return questions, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Question), nil
}

// Invalidate drops a cached course so the next read reloads it.
func (r *QuestionRepository) Invalidate(ctx context.Context, courseID string) error {
	return r.client.Del(ctx, r.key(courseID)).Err()
}

func (r *QuestionRepository) cached(ctx context.Context, courseID string) ([]domain.Question, bool) {
	data, err := r.client.Get(ctx, r.key(courseID)).Bytes()
	if err != nil {
		if err != redis.Nil {
			r.log.Warn("question cache read failed", "course_id", courseID, "error", err)
		}
		return nil, false
	}
	var questions []domain.Question
	if err := json.Unmarshal(data, &questions); err != nil {
		return nil, false
	}
	return questions, true
}

func (r *QuestionRepository) key(courseID string) string {
	return "course:" + courseID + ":questions"
}

func (r *QuestionRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	r.rndMu.Lock()
	defer r.rndMu.Unlock()
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
