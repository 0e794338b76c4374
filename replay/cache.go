// Copyright 2025 Veridian Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package replay

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// Mode selects the cache's behavior on a miss.
type Mode string

const (
	// ModeFetch performs the live call on a miss and persists the result.
	ModeFetch Mode = "fetch"

	// ModeReplay treats a miss as a fatal error.
	ModeReplay Mode = "replay"
)

// ParseMode converts a configuration string into a Mode.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeFetch:
		return ModeFetch, nil
	case ModeReplay:
		return ModeReplay, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
	}
}

// Entry is a single persisted call result. Entries are write-once and
// never mutated.
type Entry struct {
	CacheKey     string          `json:"cache_key"`
	CallType     string          `json:"call_type"`
	InputDigest  string          `json:"input_digest"`
	Output       json.RawMessage `json:"output"`
	OutputDigest string          `json:"output_digest"`
	CreatedAt    time.Time       `json:"created_at"`
}

// Cache is a file-backed content-addressed store for external call
// results. One file per entry under the cache directory, named by the
// cache key, plus an append-only ledger.
type Cache struct {
	dir    string
	mode   Mode
	ledger *ledger
	logger *slog.Logger
	now    func() time.Time
}

// Option configures a Cache.
type Option func(*Cache) error

// WithLogger sets the logger used by the cache.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Cache) error {
		if logger == nil {
			return fmt.Errorf("logger must not be nil")
		}
		c.logger = logger
		return nil
	}
}

// WithClock overrides the entry timestamp source. Used by tests.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) error {
		if now == nil {
			return fmt.Errorf("clock must not be nil")
		}
		c.now = now
		return nil
	}
}

// NewCache opens a cache rooted at dir, creating the directory if needed.
func NewCache(dir string, mode Mode, opts ...Option) (*Cache, error) {
	if mode != ModeFetch && mode != ModeReplay {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMode, mode)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}

	c := &Cache{
		dir:    dir,
		mode:   mode,
		ledger: newLedger(filepath.Join(dir, "ledger.jsonl")),
		logger: slog.Default().With("component", "replay-cache"),
		now:    func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Mode reports the cache's configured mode.
func (c *Cache) Mode() Mode {
	return c.mode
}

// CallFunc performs the live external call on a fetch-mode miss.
type CallFunc func(ctx context.Context) ([]byte, error)

// Do resolves one external call through the cache. A hit returns the
// stored output unchanged regardless of mode. On a miss, fetch mode runs
// fn and persists the result before returning it; replay mode returns
// ErrReplayMiss without ever invoking fn.
func (c *Cache) Do(ctx context.Context, callType string, params Params, input []byte, fn CallFunc) ([]byte, error) {
	digest := InputDigest(input)
	key, err := CacheKey(callType, params, digest)
	if err != nil {
		return nil, err
	}

	entry, err := c.lookup(key)
	if err != nil {
		return nil, err
	}
	if entry != nil {
		c.logger.Debug("cache hit", "callType", callType, "cacheKey", key)
		return entry.Output, nil
	}

	if c.mode == ModeReplay {
		c.logger.Error("cache miss in replay mode", "callType", callType, "cacheKey", key)
		return nil, fmt.Errorf("%w: callType=%s cacheKey=%s", ErrReplayMiss, callType, key)
	}

	c.logger.Debug("cache miss, fetching", "callType", callType, "cacheKey", key)
	output, err := fn(ctx)
	if err != nil {
		return nil, fmt.Errorf("external call %s: %w", callType, err)
	}

	entry = &Entry{
		CacheKey:     key,
		CallType:     callType,
		InputDigest:  digest,
		Output:       output,
		OutputDigest: InputDigest(output),
		CreatedAt:    c.now(),
	}
	if err := c.store(entry); err != nil {
		return nil, err
	}
	return output, nil
}

// lookup reads an entry by key. A missing file is a miss, not an error.
func (c *Cache) lookup(key string) (*Entry, error) {
	data, err := os.ReadFile(c.entryPath(key))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read cache entry %s: %w", key, err)
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrEntryCorrupt, key, err)
	}
	return &entry, nil
}

// store persists an entry write-once and appends the ledger line. A
// concurrent writer landing the same key first is treated as success
// since entries for the same key are identical by construction.
func (c *Cache) store(entry *Entry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode cache entry: %w", err)
	}

	path := c.entryPath(entry.CacheKey)
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if os.IsExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("create cache entry %s: %w", entry.CacheKey, err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("write cache entry %s: %w", entry.CacheKey, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close cache entry %s: %w", entry.CacheKey, err)
	}

	if err := c.ledger.append(entry); err != nil {
		return err
	}

	c.logger.Info("stored cache entry",
		"callType", entry.CallType,
		"cacheKey", entry.CacheKey,
		"outputBytes", len(entry.Output))
	return nil
}

func (c *Cache) entryPath(key string) string {
	return filepath.Join(c.dir, key+".json")
}
