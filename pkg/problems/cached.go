package problems

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"sync/atomic"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/pelago/pelago/pkg/framework"
	"github.com/pelago/pelago/pkg/problem"
)

// Cached is a meta-problem that memoizes fitness evaluations of an inner
// problem, keyed by the exact bit pattern of the decision vector. Useful when
// the inner evaluation is expensive and algorithms revisit points.
type Cached struct {
	inner *problem.Problem
	ttl   time.Duration
	cache *gocache.Cache

	hits   atomic.Uint64
	misses atomic.Uint64
}

// NewCached wraps inner with a fitness cache. Entries expire after ttl;
// ttl <= 0 keeps them forever.
func NewCached(inner *problem.Problem, ttl time.Duration) (*Cached, error) {
	if inner == nil {
		return nil, fmt.Errorf("%w: nil inner problem", framework.ErrInvalidArgument)
	}
	if ttl <= 0 {
		ttl = gocache.NoExpiration
	}
	return &Cached{
		inner: inner,
		ttl:   ttl,
		cache: gocache.New(ttl, 2*time.Minute),
	}, nil
}

// Inner returns the wrapped problem.
func (p *Cached) Inner() *problem.Problem { return p.inner }

// Hits is the number of fitness calls answered from the cache.
func (p *Cached) Hits() uint64 { return p.hits.Load() }

// Misses is the number of fitness calls forwarded to the inner problem.
func (p *Cached) Misses() uint64 { return p.misses.Load() }

func (p *Cached) Name() string { return p.inner.Name() + " [cached]" }

// Tag keeps the serialization key independent of the inner problem's name.
func (p *Cached) Tag() string { return "cached" }

func (p *Cached) NObj() int { return p.inner.NObj() }

func (p *Cached) NEC() int { return p.inner.NEC() }

func (p *Cached) NIC() int { return p.inner.NIC() }

func (p *Cached) Bounds() (lb, ub []float64) { return p.inner.Bounds() }

func (p *Cached) ThreadSafety() framework.ThreadSafety { return p.inner.ThreadSafety() }

func (p *Cached) ExtraInfo() string {
	return fmt.Sprintf("Cache hits: %d, misses: %d", p.Hits(), p.Misses())
}

func (p *Cached) Fitness(x []float64) ([]float64, error) {
	key := cacheKey(x)
	if f, ok := p.cache.Get(key); ok {
		p.hits.Add(1)
		return append([]float64(nil), f.([]float64)...), nil
	}
	f, err := p.inner.Fitness(x)
	if err != nil {
		return nil, err
	}
	p.misses.Add(1)
	p.cache.Set(key, append([]float64(nil), f...), p.ttl)
	return f, nil
}

func (p *Cached) CloneUDP() problem.UDP {
	inner, err := p.inner.Clone()
	if err != nil {
		panic(fmt.Sprintf("cached: cloning inner problem: %v", err))
	}
	// The clone starts with a cold cache.
	c, _ := NewCached(inner, p.ttl)
	return c
}

func cacheKey(x []float64) string {
	buf := make([]byte, 8*len(x))
	for i, v := range x {
		binary.BigEndian.PutUint64(buf[i*8:], math.Float64bits(v))
	}
	return string(buf)
}

type cachedJSON struct {
	Inner *problem.Problem `json:"inner"`
	TTL   time.Duration    `json:"ttl"`
}

func (p *Cached) MarshalJSON() ([]byte, error) {
	return json.Marshal(cachedJSON{Inner: p.inner, TTL: p.ttl})
}

func (p *Cached) UnmarshalJSON(data []byte) error {
	cj := cachedJSON{Inner: &problem.Problem{}}
	if err := json.Unmarshal(data, &cj); err != nil {
		return err
	}
	np, err := NewCached(cj.Inner, cj.TTL)
	if err != nil {
		return err
	}
	p.inner = np.inner
	p.ttl = np.ttl
	p.cache = np.cache
	return nil
}
