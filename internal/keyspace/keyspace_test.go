package keyspace_test

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mickamy/respkv/internal/keyspace"
)

func TestInsertGetNoExpiry(t *testing.T) {
	t.Parallel()
	k := keyspace.New()
	k.Insert("foo", []byte("bar"))

	for _, now := range []time.Time{time.Now(), time.Now().Add(24 * time.Hour)} {
		v, ok := k.Get("foo", now)
		if !ok {
			t.Fatalf("expected foo present at %v", now)
		}
		if string(v) != "bar" {
			t.Fatalf("got %q, want bar", v)
		}
	}
}

func TestInsertGetMissing(t *testing.T) {
	t.Parallel()
	k := keyspace.New()
	if _, ok := k.Get("nope", time.Now()); ok {
		t.Fatal("expected missing key to be absent")
	}
}

func TestTTLExpiry(t *testing.T) {
	t.Parallel()
	k := keyspace.New()
	t0 := time.Now()
	k.Insert("k", []byte("v"), keyspace.WithTTL(100*time.Millisecond))

	if v, ok := k.Get("k", t0.Add(50*time.Millisecond)); !ok || string(v) != "v" {
		t.Fatalf("expected live before ttl, got ok=%v v=%q", ok, v)
	}

	if _, ok := k.Get("k", t0.Add(200*time.Millisecond)); ok {
		t.Fatal("expected missing after ttl")
	}

	keys := k.Keys()
	for _, key := range keys {
		if key == "k" {
			t.Fatal("expired key should have been removed by lazy expiry")
		}
	}
}

func TestInsertReplacesPriorExpiry(t *testing.T) {
	t.Parallel()
	k := keyspace.New()
	t0 := time.Now()
	k.Insert("k", []byte("v1"), keyspace.WithTTL(10*time.Millisecond))
	k.Insert("k", []byte("v2")) // no TTL: must clear the prior expiry

	v, ok := k.Get("k", t0.Add(time.Second))
	if !ok {
		t.Fatal("expected v2 to survive past v1's original ttl")
	}
	if string(v) != "v2" {
		t.Fatalf("got %q, want v2", v)
	}
}

func TestAbsoluteDeadlineInThePast(t *testing.T) {
	t.Parallel()
	k := keyspace.New()
	k.Insert("k", []byte("v"), keyspace.WithAbsoluteDeadline(time.Now().Add(-time.Hour)))

	_, ok := k.Get("k", time.Now())
	require.False(t, ok, "entry with a past absolute deadline must be missing")
}

func TestSizeCountsOnlyLiveKeys(t *testing.T) {
	t.Parallel()
	k := keyspace.New()
	now := time.Now()
	k.Insert("a", []byte("1"))
	k.Insert("b", []byte("2"), keyspace.WithTTL(-time.Second)) // already expired

	require.Equal(t, 1, k.Size(now))
}

// Concurrent inserts of distinct keys and concurrent gets must never
// observe torn or ghost values: every Get either sees a known inserted
// value or "missing".
func TestConcurrentInsertGetNoTearing(t *testing.T) {
	t.Parallel()
	k := keyspace.New()

	const n = 200
	values := make(map[string]string, n)
	for i := range n {
		key := fmt.Sprintf("key-%d", i)
		values[key] = fmt.Sprintf("val-%d", i)
	}

	var wg sync.WaitGroup
	for key, val := range values {
		wg.Add(1)
		go func(key, val string) {
			defer wg.Done()
			k.Insert(key, []byte(val))
		}(key, val)
	}

	errs := make(chan error, n)
	for key := range values {
		wg.Add(1)
		go func(key string) {
			defer wg.Done()
			// Poll briefly: the insert for this key may not have landed yet,
			// but once observed it must be exactly the expected value.
			for range 1000 {
				v, ok := k.Get(key, time.Now())
				if !ok {
					continue
				}
				if string(v) != values[key] {
					errs <- fmt.Errorf("key %s: got %q, want %q", key, v, values[key])
				}
				return
			}
		}(key)
	}

	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}
