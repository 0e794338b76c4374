package replay

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// ledgerLine is one audit record in the append-only JSONL ledger.
type ledgerLine struct {
	RecordedAt   time.Time `json:"recorded_at"`
	CacheKey     string    `json:"cache_key"`
	CallType     string    `json:"call_type"`
	InputDigest  string    `json:"input_digest"`
	OutputDigest string    `json:"output_digest"`
}

// ledger appends one line per stored entry. It is never read by the
// cache itself; it exists as an audit trail of every external call that
// was actually made.
type ledger struct {
	path string
}

func newLedger(path string) *ledger {
	return &ledger{path: path}
}

func (l *ledger) append(entry *Entry) error {
	line, err := json.Marshal(ledgerLine{
		RecordedAt:   entry.CreatedAt,
		CacheKey:     entry.CacheKey,
		CallType:     entry.CallType,
		InputDigest:  entry.InputDigest,
		OutputDigest: entry.OutputDigest,
	})
	if err != nil {
		return fmt.Errorf("encode ledger line: %w", err)
	}
	line = append(line, '\n')

	f, err := os.OpenFile(l.path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open ledger: %w", err)
	}
	if _, err := f.Write(line); err != nil {
		f.Close()
		return fmt.Errorf("append ledger: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close ledger: %w", err)
	}
	return nil
}
