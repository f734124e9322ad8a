package wizard

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/redis/go-redis/v9"

	"github.com/pageza/chefbook/backend/internal/errors"
)

const (
	// DefaultTTL bounds how long an idle wizard session is kept.
	DefaultTTL = 24 * time.Hour

	// LockTTL bounds how long a crashed holder can keep a session locked.
	LockTTL = 30 * time.Second

	keyPrefix  = "wizard:"
	lockPrefix = "wizard:lock:"
)

// Store keeps wizard sessions between requests. Get returns a NotFound error
// for unknown or expired sessions.
//
// Lock takes an exclusive, non-blocking claim on a session. While it is held
// every other Lock call for the same id fails with a Conflict error. The
// returned func releases the claim and is safe to call more than once.
type Store interface {
	Save(ctx context.Context, sess *Session) error
	Get(ctx context.Context, id string) (*Session, error)
	Delete(ctx context.Context, id string) error
	Lock(ctx context.Context, id string) (unlock func(), err error)
}

func errSessionBusy() error {
	return errors.Conflict("wizard session is being updated by another request")
}

// RedisStore keeps sessions as JSON values with a sliding TTL.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) Save(ctx context.Context, sess *Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshal wizard session: %w", err)
	}
	if err := s.client.Set(ctx, keyPrefix+sess.ID, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("save wizard session: %w", err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, id string) (*Session, error) {
	data, err := s.client.Get(ctx, keyPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, errors.NotFound("wizard session not found")
		}
		return nil, fmt.Errorf("get wizard session: %w", err)
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("unmarshal wizard session: %w", err)
	}
	return &sess, nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, keyPrefix+id).Err(); err != nil {
		return fmt.Errorf("delete wizard session: %w", err)
	}
	return nil
}

// unlockScript deletes the lock only if it still carries our token, so an
// expired lock re-taken by another request is left alone.
var unlockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

func (s *RedisStore) Lock(ctx context.Context, id string) (func(), error) {
	key := lockPrefix + id
	token := uuid.NewString()

	ok, err := s.client.SetNX(ctx, key, token, LockTTL).Result()
	if err != nil {
		return nil, fmt.Errorf("lock wizard session: %w", err)
	}
	if !ok {
		return nil, errSessionBusy()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			// Release even when the request context is already cancelled.
			_ = unlockScript.Run(context.WithoutCancel(ctx), s.client, []string{key}, token).Err()
		})
	}, nil
}

// MemoryStore keeps sessions in a bounded in-process LRU. Sessions are lost
// on restart and are not shared between replicas.
type MemoryStore struct {
	cache *expirable.LRU[string, Session]

	mu     sync.Mutex
	locked map[string]struct{}
}

func NewMemoryStore(size int, ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryStore{
		cache:  expirable.NewLRU[string, Session](size, nil, ttl),
		locked: make(map[string]struct{}),
	}
}

func (s *MemoryStore) Save(_ context.Context, sess *Session) error {
	s.cache.Add(sess.ID, *sess)
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (*Session, error) {
	sess, ok := s.cache.Get(id)
	if !ok {
		return nil, errors.NotFound("wizard session not found")
	}
	return &sess, nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.cache.Remove(id)
	return nil
}

func (s *MemoryStore) Lock(_ context.Context, id string) (func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, held := s.locked[id]; held {
		return nil, errSessionBusy()
	}
	s.locked[id] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.locked, id)
			s.mu.Unlock()
		})
	}, nil
}

var (
	_ Store = (*RedisStore)(nil)
	_ Store = (*MemoryStore)(nil)
)
