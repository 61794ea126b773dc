package repository

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/mansoorceksport/ironrank/internal/domain"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// Catalog cache keys. Benchmark keys are derived per (tier, gender).
const (
	catalogKeyExercises        = "exercises"
	catalogKeyExerciseMuscles  = "exercise-muscles"
	catalogKeyMuscles          = "muscles"
	catalogKeyMuscleGroups     = "muscle-groups"
	catalogKeyRanks            = "ranks"
	catalogKeyInterRanks       = "inter-ranks"
	catalogKeyLevelDefinitions = "level-definitions"

	catalogRedisPrefix = "refcatalog:"

	// DefaultCatalogTTL is how long a loaded table is served before the
	// next Get goes back to the datastore.
	DefaultCatalogTTL = 24 * time.Hour
)

type catalogEntry struct {
	value   interface{}
	expires time.Time
}

// RefCatalog serves the immutable reference tables at in-process cost.
// Lookup order is local map -> Redis -> Mongo; loader errors propagate
// and are never cached. Concurrent misses for the same key coalesce to
// a single loader execution.
type RefCatalog struct {
	loader domain.ReferenceRepository
	cache  *RedisCacheRepository // nil disables the Redis tier
	ttl    time.Duration

	mu      sync.RWMutex
	entries map[string]catalogEntry
	group   singleflight.Group
}

// NewRefCatalog creates a catalog over the given loader. ttl <= 0 falls
// back to DefaultCatalogTTL.
func NewRefCatalog(loader domain.ReferenceRepository, cache *RedisCacheRepository, ttl time.Duration) *RefCatalog {
	if ttl <= 0 {
		ttl = DefaultCatalogTTL
	}
	return &RefCatalog{
		loader:  loader,
		cache:   cache,
		ttl:     ttl,
		entries: make(map[string]catalogEntry),
	}
}

// get serves key from the local map or runs load under singleflight.
func (c *RefCatalog) get(ctx context.Context, key string, load func(context.Context) (interface{}, error)) (interface{}, error) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if ok && time.Now().Before(entry.expires) {
		return entry.value, nil
	}

	value, err, _ := c.group.Do(key, func() (interface{}, error) {
		// Another caller may have filled the entry while we queued.
		c.mu.RLock()
		entry, ok := c.entries[key]
		c.mu.RUnlock()
		if ok && time.Now().Before(entry.expires) {
			return entry.value, nil
		}

		v, err := load(ctx)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.entries[key] = catalogEntry{value: v, expires: time.Now().Add(c.ttl)}
		c.mu.Unlock()
		return v, nil
	})
	if err != nil {
		return nil, err
	}
	return value, nil
}

// Refresh invalidates one key in both cache tiers. The next Get reloads.
func (c *RefCatalog) Refresh(ctx context.Context, key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
	if c.cache != nil {
		if err := c.cache.Delete(ctx, catalogRedisPrefix+key); err != nil {
			log.Printf("Warning: failed to invalidate catalog key %s in redis: %v", key, err)
		}
	}
}

// Prewarm loads every recognized key in parallel. Failures are logged
// but never abort startup; the failing key simply loads on first use.
func (c *RefCatalog) Prewarm(ctx context.Context) {
	g, gCtx := errgroup.WithContext(ctx)

	warm := func(name string, fn func(context.Context) error) {
		g.Go(func() error {
			if err := fn(gCtx); err != nil {
				log.Printf("Warning: catalog prewarm failed for %s: %v", name, err)
			}
			return nil
		})
	}

	warm(catalogKeyExercises, func(ctx context.Context) error { _, err := c.Exercises(ctx); return err })
	warm(catalogKeyExerciseMuscles, func(ctx context.Context) error { _, err := c.ExerciseMuscles(ctx); return err })
	warm(catalogKeyMuscles, func(ctx context.Context) error { _, err := c.Muscles(ctx); return err })
	warm(catalogKeyMuscleGroups, func(ctx context.Context) error { _, err := c.MuscleGroups(ctx); return err })
	warm(catalogKeyRanks, func(ctx context.Context) error { _, err := c.Ranks(ctx); return err })
	warm(catalogKeyInterRanks, func(ctx context.Context) error { _, err := c.InterRanks(ctx); return err })
	warm(catalogKeyLevelDefinitions, func(ctx context.Context) error { _, err := c.LevelDefinitions(ctx); return err })

	for _, tier := range []string{domain.TierExercise, domain.TierMuscle, domain.TierMuscleGroup, domain.TierOverall} {
		for _, gender := range []string{domain.GenderMale, domain.GenderFemale} {
			tier, gender := tier, gender
			warm(benchmarkKey(tier, gender), func(ctx context.Context) error {
				_, err := c.Benchmarks(ctx, tier, gender)
				return err
			})
		}
	}

	_ = g.Wait()
}

func benchmarkKey(tier, gender string) string {
	return "benchmarks:" + tier + ":" + gender
}

// Exercises returns the global exercise library.
func (c *RefCatalog) Exercises(ctx context.Context) ([]*domain.Exercise, error) {
	v, err := c.get(ctx, catalogKeyExercises, func(ctx context.Context) (interface{}, error) {
		var rows []*domain.Exercise
		if c.fromRedis(ctx, catalogKeyExercises, &rows) {
			return rows, nil
		}
		rows, err := c.loader.ListExercises(ctx)
		if err != nil {
			return nil, err
		}
		c.toRedis(ctx, catalogKeyExercises, rows)
		return rows, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]*domain.Exercise), nil
}

// ExerciseByID resolves one exercise from the cached library.
func (c *RefCatalog) ExerciseByID(ctx context.Context, id string) (*domain.Exercise, error) {
	exercises, err := c.Exercises(ctx)
	if err != nil {
		return nil, err
	}
	for _, ex := range exercises {
		if ex.ID == id {
			return ex, nil
		}
	}
	return nil, domain.ErrExerciseNotFound
}

// ExerciseMuscles returns every exercise-muscle link.
func (c *RefCatalog) ExerciseMuscles(ctx context.Context) ([]*domain.ExerciseMuscle, error) {
	v, err := c.get(ctx, catalogKeyExerciseMuscles, func(ctx context.Context) (interface{}, error) {
		var rows []*domain.ExerciseMuscle
		if c.fromRedis(ctx, catalogKeyExerciseMuscles, &rows) {
			return rows, nil
		}
		rows, err := c.loader.ListExerciseMuscles(ctx)
		if err != nil {
			return nil, err
		}
		c.toRedis(ctx, catalogKeyExerciseMuscles, rows)
		return rows, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]*domain.ExerciseMuscle), nil
}

// Muscles returns every muscle.
func (c *RefCatalog) Muscles(ctx context.Context) ([]*domain.Muscle, error) {
	v, err := c.get(ctx, catalogKeyMuscles, func(ctx context.Context) (interface{}, error) {
		var rows []*domain.Muscle
		if c.fromRedis(ctx, catalogKeyMuscles, &rows) {
			return rows, nil
		}
		rows, err := c.loader.ListMuscles(ctx)
		if err != nil {
			return nil, err
		}
		c.toRedis(ctx, catalogKeyMuscles, rows)
		return rows, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]*domain.Muscle), nil
}

// MuscleGroups returns every muscle group.
func (c *RefCatalog) MuscleGroups(ctx context.Context) ([]*domain.MuscleGroup, error) {
	v, err := c.get(ctx, catalogKeyMuscleGroups, func(ctx context.Context) (interface{}, error) {
		var rows []*domain.MuscleGroup
		if c.fromRedis(ctx, catalogKeyMuscleGroups, &rows) {
			return rows, nil
		}
		rows, err := c.loader.ListMuscleGroups(ctx)
		if err != nil {
			return nil, err
		}
		c.toRedis(ctx, catalogKeyMuscleGroups, rows)
		return rows, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]*domain.MuscleGroup), nil
}

// Ranks returns the rank tiers ordered by id.
func (c *RefCatalog) Ranks(ctx context.Context) ([]*domain.Rank, error) {
	v, err := c.get(ctx, catalogKeyRanks, func(ctx context.Context) (interface{}, error) {
		var rows []*domain.Rank
		if c.fromRedis(ctx, catalogKeyRanks, &rows) {
			return rows, nil
		}
		rows, err := c.loader.ListRanks(ctx)
		if err != nil {
			return nil, err
		}
		c.toRedis(ctx, catalogKeyRanks, rows)
		return rows, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]*domain.Rank), nil
}

// InterRanks returns the sub-rank bands ordered by (rank, sort order).
func (c *RefCatalog) InterRanks(ctx context.Context) ([]*domain.InterRank, error) {
	v, err := c.get(ctx, catalogKeyInterRanks, func(ctx context.Context) (interface{}, error) {
		var rows []*domain.InterRank
		if c.fromRedis(ctx, catalogKeyInterRanks, &rows) {
			return rows, nil
		}
		rows, err := c.loader.ListInterRanks(ctx)
		if err != nil {
			return nil, err
		}
		c.toRedis(ctx, catalogKeyInterRanks, rows)
		return rows, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]*domain.InterRank), nil
}

// LevelDefinitions returns the XP level table.
func (c *RefCatalog) LevelDefinitions(ctx context.Context) ([]*domain.LevelDefinition, error) {
	v, err := c.get(ctx, catalogKeyLevelDefinitions, func(ctx context.Context) (interface{}, error) {
		var rows []*domain.LevelDefinition
		if c.fromRedis(ctx, catalogKeyLevelDefinitions, &rows) {
			return rows, nil
		}
		rows, err := c.loader.ListLevelDefinitions(ctx)
		if err != nil {
			return nil, err
		}
		c.toRedis(ctx, catalogKeyLevelDefinitions, rows)
		return rows, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]*domain.LevelDefinition), nil
}

// Benchmarks returns the descending threshold ladder for one
// (tier, gender).
func (c *RefCatalog) Benchmarks(ctx context.Context, tier, gender string) ([]*domain.Benchmark, error) {
	key := benchmarkKey(tier, gender)
	v, err := c.get(ctx, key, func(ctx context.Context) (interface{}, error) {
		var rows []*domain.Benchmark
		if c.fromRedis(ctx, key, &rows) {
			return rows, nil
		}
		rows, err := c.loader.ListBenchmarks(ctx, tier, gender)
		if err != nil {
			return nil, err
		}
		c.toRedis(ctx, key, rows)
		return rows, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]*domain.Benchmark), nil
}

func (c *RefCatalog) fromRedis(ctx context.Context, key string, dest interface{}) bool {
	if c.cache == nil {
		return false
	}
	return c.cache.Get(ctx, catalogRedisPrefix+key, dest) == nil
}

func (c *RefCatalog) toRedis(ctx context.Context, key string, value interface{}) {
	if c.cache == nil {
		return
	}
	if err := c.cache.Set(ctx, catalogRedisPrefix+key, value, c.ttl); err != nil {
		log.Printf("Warning: failed to cache catalog key %s in redis: %v", key, err)
	}
}
