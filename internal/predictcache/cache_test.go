package predictcache

import (
	"testing"
	"time"

	"turnipmarket/internal/engine"
)

func missingObs() [engine.Slots]float64 {
	var obs [engine.Slots]float64
	for i := range obs {
		obs[i] = engine.Missing()
	}
	return obs
}

func TestCache_GetOrCompute_CachesIdenticalRequests(t *testing.T) {
	c := New(time.Minute)
	obs := missingObs()
	obs[0], obs[1] = 100, 100

	first := c.GetOrCompute(obs, false, engine.UnknownPattern)
	if _, ok := c.Get(obs, false, engine.UnknownPattern); !ok {
		t.Fatal("expected cache hit after GetOrCompute")
	}
	second := c.GetOrCompute(obs, false, engine.UnknownPattern)
	if len(first) != len(second) {
		t.Fatalf("cached result length changed: %d vs %d", len(first), len(second))
	}
}

func TestCache_GetOrCompute_NaNFilledRequestsHitCache(t *testing.T) {
	// Every slot left missing (NaN) is a common real request shape (no
	// observations yet). Since NaN != NaN, a cache keyed directly on the
	// raw float64 fields would never register a hit for this request.
	c := New(time.Minute)
	obs := missingObs()

	c.GetOrCompute(obs, true, engine.UnknownPattern)
	if _, ok := c.Get(obs, true, engine.UnknownPattern); !ok {
		t.Fatal("expected cache hit for repeated NaN-filled request")
	}
}

func TestCache_DistinctRequestsDoNotCollide(t *testing.T) {
	c := New(time.Minute)
	obsA := missingObs()
	obsA[0], obsA[1] = 100, 100
	obsB := missingObs()
	obsB[0], obsB[1] = 95, 95

	c.GetOrCompute(obsA, false, engine.UnknownPattern)
	if _, ok := c.Get(obsB, false, engine.UnknownPattern); ok {
		t.Fatal("expected cache miss for a different observation vector")
	}
}

func TestCache_ExpiresAfterTTL(t *testing.T) {
	c := New(-time.Second) // already-expired entries
	obs := missingObs()
	obs[0], obs[1] = 100, 100

	c.GetOrCompute(obs, false, engine.UnknownPattern)
	if _, ok := c.Get(obs, false, engine.UnknownPattern); ok {
		t.Fatal("expected cache miss for an already-expired entry")
	}
}

func TestCache_Clear_RemovesEntries(t *testing.T) {
	c := New(time.Minute)
	obs := missingObs()
	obs[0], obs[1] = 100, 100
	c.GetOrCompute(obs, false, engine.UnknownPattern)

	if n := c.Clear(); n != 1 {
		t.Errorf("Clear() = %d, want 1", n)
	}
	if _, ok := c.Get(obs, false, engine.UnknownPattern); ok {
		t.Fatal("expected cache miss after Clear")
	}
}
