package replay

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veridian-systems/evidentia/ai/mock"
)

func TestParseMode(t *testing.T) {
	m, err := ParseMode("fetch")
	require.NoError(t, err)
	assert.Equal(t, ModeFetch, m)

	m, err = ParseMode("replay")
	require.NoError(t, err)
	assert.Equal(t, ModeReplay, m)

	_, err = ParseMode("live")
	assert.ErrorIs(t, err, ErrUnknownMode)
}

func TestCacheKeyStability(t *testing.T) {
	k1, err := CacheKey("embed", Params{"model": "m1"}, InputDigest([]byte("hello")))
	require.NoError(t, err)
	k2, err := CacheKey("embed", Params{"model": "m1"}, InputDigest([]byte("hello")))
	require.NoError(t, err)
	assert.Equal(t, k1, k2)

	k3, err := CacheKey("embed", Params{"model": "m2"}, InputDigest([]byte("hello")))
	require.NoError(t, err)
	assert.NotEqual(t, k1, k3)

	k4, err := CacheKey("generate", Params{"model": "m1"}, InputDigest([]byte("hello")))
	require.NoError(t, err)
	assert.NotEqual(t, k1, k4)
}

func TestFetchModeStoresAndHits(t *testing.T) {
	dir := t.TempDir()
	cache, err := NewCache(dir, ModeFetch,
		WithClock(func() time.Time { return time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC) }))
	require.NoError(t, err)

	calls := 0
	fn := func(ctx context.Context) ([]byte, error) {
		calls++
		return []byte(`"result"`), nil
	}

	out, err := cache.Do(context.Background(), CallTypeGenerate, Params{"model": "m"}, []byte("prompt"), fn)
	require.NoError(t, err)
	assert.JSONEq(t, `"result"`, string(out))
	assert.Equal(t, 1, calls)

	// Second call with identical inputs must be served from disk.
	out, err = cache.Do(context.Background(), CallTypeGenerate, Params{"model": "m"}, []byte("prompt"), fn)
	require.NoError(t, err)
	assert.JSONEq(t, `"result"`, string(out))
	assert.Equal(t, 1, calls)
}

func TestReplayMissIsFatal(t *testing.T) {
	dir := t.TempDir()

	fetch, err := NewCache(dir, ModeFetch)
	require.NoError(t, err)

	seed := func(input string) {
		_, err := fetch.Do(context.Background(), CallTypeGenerate, Params{"model": "m"}, []byte(input),
			func(ctx context.Context) ([]byte, error) { return []byte(`"ok"`), nil })
		require.NoError(t, err)
	}
	seed("query A")
	seed("query B")

	rp, err := NewCache(dir, ModeReplay)
	require.NoError(t, err)

	// Seeded entries replay fine.
	out, err := rp.Do(context.Background(), CallTypeGenerate, Params{"model": "m"}, []byte("query A"),
		func(ctx context.Context) ([]byte, error) {
			t.Fatal("live call in replay mode")
			return nil, nil
		})
	require.NoError(t, err)
	assert.JSONEq(t, `"ok"`, string(out))

	// An unseen input must fail without ever invoking the live call.
	_, err = rp.Do(context.Background(), CallTypeGenerate, Params{"model": "m"}, []byte("query C"),
		func(ctx context.Context) ([]byte, error) {
			t.Fatal("live call in replay mode")
			return nil, nil
		})
	assert.ErrorIs(t, err, ErrReplayMiss)
}

func TestEntryIsWriteOnce(t *testing.T) {
	dir := t.TempDir()
	cache, err := NewCache(dir, ModeFetch)
	require.NoError(t, err)

	_, err = cache.Do(context.Background(), CallTypeGenerate, Params{"model": "m"}, []byte("p"),
		func(ctx context.Context) ([]byte, error) { return []byte(`"first"`), nil })
	require.NoError(t, err)

	key, err := CacheKey(CallTypeGenerate, Params{"model": "m"}, InputDigest([]byte("p")))
	require.NoError(t, err)

	before, err := os.ReadFile(filepath.Join(dir, key+".json"))
	require.NoError(t, err)

	// A hit never rewrites the entry file.
	_, err = cache.Do(context.Background(), CallTypeGenerate, Params{"model": "m"}, []byte("p"),
		func(ctx context.Context) ([]byte, error) { return []byte(`"second"`), nil })
	require.NoError(t, err)

	after, err := os.ReadFile(filepath.Join(dir, key+".json"))
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestLiveCallErrorIsNotCached(t *testing.T) {
	dir := t.TempDir()
	cache, err := NewCache(dir, ModeFetch)
	require.NoError(t, err)

	wantErr := errors.New("service unavailable")
	_, err = cache.Do(context.Background(), CallTypeEmbed, Params{"model": "m"}, []byte("x"),
		func(ctx context.Context) ([]byte, error) { return nil, wantErr })
	assert.ErrorIs(t, err, wantErr)

	// Retry succeeds and there is no stale failure entry in the way.
	out, err := cache.Do(context.Background(), CallTypeEmbed, Params{"model": "m"}, []byte("x"),
		func(ctx context.Context) ([]byte, error) { return []byte(`[[1]]`), nil })
	require.NoError(t, err)
	assert.JSONEq(t, `[[1]]`, string(out))
}

func TestLedgerRecordsStores(t *testing.T) {
	dir := t.TempDir()
	cache, err := NewCache(dir, ModeFetch)
	require.NoError(t, err)

	for _, input := range []string{"a", "b"} {
		_, err := cache.Do(context.Background(), CallTypeGenerate, Params{"model": "m"}, []byte(input),
			func(ctx context.Context) ([]byte, error) { return []byte(`"ok"`), nil })
		require.NoError(t, err)
	}
	// A hit must not add a ledger line.
	_, err = cache.Do(context.Background(), CallTypeGenerate, Params{"model": "m"}, []byte("a"),
		func(ctx context.Context) ([]byte, error) { return []byte(`"ok"`), nil })
	require.NoError(t, err)

	f, err := os.Open(filepath.Join(dir, "ledger.jsonl"))
	require.NoError(t, err)
	defer f.Close()

	var lines []ledgerLine
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var line ledgerLine
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &line))
		lines = append(lines, line)
	}
	require.NoError(t, scanner.Err())

	require.Len(t, lines, 2)
	for _, line := range lines {
		assert.Equal(t, CallTypeGenerate, line.CallType)
		assert.NotEmpty(t, line.CacheKey)
		assert.NotEmpty(t, line.OutputDigest)
	}
}

func TestCachedEmbedderRoundTrip(t *testing.T) {
	dir := t.TempDir()
	cache, err := NewCache(dir, ModeFetch)
	require.NoError(t, err)

	inner := mock.NewMockEmbedder()
	embedder := NewCachedEmbedder(inner, cache, "mock-embedder")

	texts := []string{"ghg emissions", "water use"}
	first, err := embedder.EmbedTexts(context.Background(), texts)
	require.NoError(t, err)
	require.Len(t, first, 2)
	assert.Equal(t, 1, inner.CallCount())

	// Same batch hits the cache; the inner embedder is not called again.
	second, err := embedder.EmbedTexts(context.Background(), texts)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, inner.CallCount())

	// Replay mode over the same directory serves the seeded batch.
	rp, err := NewCache(dir, ModeReplay)
	require.NoError(t, err)
	replayed := NewCachedEmbedder(mock.NewMockEmbedder(), rp, "mock-embedder")

	third, err := replayed.EmbedTexts(context.Background(), texts)
	require.NoError(t, err)
	assert.Equal(t, first, third)

	_, err = replayed.EmbedTexts(context.Background(), []string{"unseen"})
	assert.ErrorIs(t, err, ErrReplayMiss)
}

func TestCachedGeneratorRoundTrip(t *testing.T) {
	dir := t.TempDir()
	cache, err := NewCache(dir, ModeFetch)
	require.NoError(t, err)

	inner := mock.NewMockGenerator()
	inner.GenerateFunc = func(ctx context.Context, prompt string) (string, error) {
		return "completion for " + prompt, nil
	}
	gen := NewCachedGenerator(inner, cache, "mock-generator")

	out, err := gen.Generate(context.Background(), "summarize")
	require.NoError(t, err)
	assert.Equal(t, "completion for summarize", out)

	// Cached result survives even if the inner generator changes.
	inner.GenerateFunc = func(ctx context.Context, prompt string) (string, error) {
		return "different", nil
	}
	out, err = gen.Generate(context.Background(), "summarize")
	require.NoError(t, err)
	assert.Equal(t, "completion for summarize", out)
}
