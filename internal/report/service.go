package report

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"restaurant_chat/src/logger"
	"strings"
	"sync"
	"time"

	"github.com/bytedance/sonic"
)

// Snapshot files read from the data directory
const (
	OrdersFile    = "orders_summary.json"
	FeedbacksFile = "feedbacks.json"
	StoreFile     = "store.json"
)

const DefaultCacheTTL = 5 * time.Minute

// Cache is an optional second level shared between processes
type Cache interface {
	Get(ctx context.Context, name string, dest any) (bool, error)
	Set(ctx context.Context, name string, value any) error
}

type fileState struct {
	modTime time.Time
	size    int64
}

type entry struct {
	value    any
	storedAt time.Time
}

// Service computes report figures from exported JSON snapshots. Unfiltered
// results are cached until the TTL passes or the source file changes.
type Service struct {
	dataDir string
	ttl     time.Duration
	shared  Cache
	now     func() time.Time

	mu      sync.Mutex
	entries map[string]map[string]entry // file -> result name
	states  map[string]fileState
}

type Option func(*Service)

// WithSharedCache adds a second level cache such as storage.RedisCache
func WithSharedCache(cache Cache) Option {
	return func(s *Service) { s.shared = cache }
}

// WithTTL changes how long unfiltered results stay fresh
func WithTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

func NewService(dataDir string, opts ...Option) *Service {
	s := &Service{
		dataDir: dataDir,
		ttl:     DefaultCacheTTL,
		now:     time.Now,
		entries: make(map[string]map[string]entry),
		states:  make(map[string]fileState),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) path(file string) string {
	return filepath.Join(s.dataDir, file)
}

// observe drops cached results for file when its mtime or size moved
func (s *Service) observe(file string) (fileState, bool) {
	info, err := os.Stat(s.path(file))
	if err != nil {
		return fileState{}, false
	}
	state := fileState{modTime: info.ModTime(), size: info.Size()}

	s.mu.Lock()
	defer s.mu.Unlock()
	if prev, ok := s.states[file]; ok && (!prev.modTime.Equal(state.modTime) || prev.size != state.size) {
		delete(s.entries, file)
		logger.Debug().Str("file", file).Msg("snapshot changed, cache dropped")
	}
	s.states[file] = state
	return state, true
}

func (s *Service) lookup(file, name string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[file][name]
	if !ok || s.now().Sub(e.storedAt) >= s.ttl {
		return nil, false
	}
	return e.value, true
}

func (s *Service) store(file, name string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.entries[file] == nil {
		s.entries[file] = make(map[string]entry)
	}
	s.entries[file][name] = entry{value: value, storedAt: s.now()}
}

// cachedResult serves name from the in-process cache, then the shared
// cache, then compute. Filtered queries always compute and are never
// stored. The boolean reports a cache hit.
func cachedResult[T any](ctx context.Context, s *Service, file, name string, filtered bool, compute func() (T, error)) (T, bool, error) {
	state, statted := s.observe(file)

	if filtered {
		v, err := compute()
		return v, false, err
	}

	if v, ok := s.lookup(file, name); ok {
		return v.(T), true, nil
	}

	var sharedKey string
	if s.shared != nil && statted {
		sharedKey = fmt.Sprintf("%s:%s:%d:%d", strings.TrimSuffix(file, ".json"), name, state.modTime.UnixNano(), state.size)
		var v T
		found, err := s.shared.Get(ctx, sharedKey, &v)
		if err != nil {
			logger.Warn().Err(err).Str("key", sharedKey).Msg("shared report cache read failed")
		}
		if found {
			s.store(file, name, v)
			return v, true, nil
		}
	}

	v, err := compute()
	if err != nil {
		return v, false, err
	}
	s.store(file, name, v)

	if sharedKey != "" {
		if err := s.shared.Set(ctx, sharedKey, v); err != nil {
			logger.Warn().Err(err).Str("key", sharedKey).Msg("shared report cache write failed")
		}
	}
	return v, false, nil
}

func (s *Service) readJSON(file string, dest any) error {
	raw, err := os.ReadFile(s.path(file))
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", file, err)
	}
	if err := sonic.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("failed to parse %s: %w", file, err)
	}
	return nil
}
