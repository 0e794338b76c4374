package core

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"strconv"
	"strings"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// It is generated by content-based hashing so identical inputs
// always produce identical IDs.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// HashText returns the lowercase hex sha256 digest of text.
// Used for ContentHash on evidence records and TextSHA on chunks.
func HashText(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// EvidenceRecord is a raw ("bronze") evidence fact extracted from a source
// document. Records are immutable once written; the bronze store only ever
// appends them.
type EvidenceRecord struct {
	EvidenceID          ID
	OrgID               string
	FiscalYear          int
	Theme               string
	StageIndicator      int
	DocID               string
	PageNo              int
	SpanStart           int
	SpanEnd             int
	ExtractText         string
	ContentHash         string
	Confidence          float64
	EvidenceType        string
	ExtractionTimestamp time.Time
	SnapshotID          string
	IngestionID         string
}

// Finalize populates the derived identity fields of a record built by an
// upstream extractor. ContentHash is the sha256 of the extract text and
// EvidenceID hashes the full locator (org, doc, page, span, extract), so
// re-extracting the same quote yields the same identity.
func (r *EvidenceRecord) Finalize() {
	if r.ContentHash == "" {
		r.ContentHash = HashText(r.ExtractText)
	}
	if r.EvidenceID == 0 {
		locator := r.OrgID + "|" + r.DocID + "|" + strconv.Itoa(r.PageNo) + "|" +
			strconv.Itoa(r.SpanStart) + ":" + strconv.Itoa(r.SpanEnd) + "|" + r.ExtractText
		r.EvidenceID = IDFromContent(locator)
	}
}

// PartitionKey identifies the physical partition an evidence record
// belongs to.
type PartitionKey struct {
	OrgID      string
	FiscalYear int
	Theme      string
}

// String renders the key in its physical directory form.
func (k PartitionKey) String() string {
	return "org_id=" + k.OrgID + "/fiscal_year=" + strconv.Itoa(k.FiscalYear) + "/theme=" + k.Theme
}

// Partition returns the partition key of the record.
func (r *EvidenceRecord) Partition() PartitionKey {
	return PartitionKey{OrgID: r.OrgID, FiscalYear: r.FiscalYear, Theme: r.Theme}
}

// DedupKey returns the grouping key used by the normalizer: records sharing
// a dedup key collapse to a single silver record.
func (r *EvidenceRecord) DedupKey() string {
	return r.ContentHash + "|" + r.OrgID + "|" + strconv.Itoa(r.FiscalYear)
}

// SilverEvidenceRecord is a deduplicated, freshness-aged evidence record.
// Silver records are a pure function of the bronze tree and are rebuilt
// wholesale on every normalizer run.
type SilverEvidenceRecord struct {
	EvidenceRecord
	IsMostRecent       bool
	FreshnessPenalty   float64
	AdjustedConfidence float64
}

// Chunk is a unit of retrievable text inside a per-document index.
// Text is canonicalized (trimmed, lowercased) and TextSHA is the sha256 of
// the canonical text. The chunk's embedding lives in the index vector file
// at row ChunkID.
type Chunk struct {
	ChunkID int
	DocID   string
	Page    int
	Text    string
	TextSHA string
}

// CanonicalizeText normalizes chunk text before hashing and indexing.
func CanonicalizeText(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}

// RetrievalResult is one ranked row of a hybrid retrieval query.
// Purely derived; never persisted beyond a single query's artifacts.
type RetrievalResult struct {
	ChunkID       int
	LexicalScore  float64
	SemanticScore float64
	FusedScore    float64
	Rank          int
}

const extractWindowWords = 15

// ExtractWindow builds the quoted extract for a matched span: up to 15 words
// of context on each side of the match, joined with ellipsis markers. Offsets
// are clamped to the text bounds.
func ExtractWindow(text string, spanStart, spanEnd int) string {
	if spanStart < 0 {
		spanStart = 0
	}
	if spanEnd > len(text) {
		spanEnd = len(text)
	}
	if spanStart >= spanEnd {
		return ""
	}

	before := strings.Fields(text[:spanStart])
	if len(before) > extractWindowWords {
		before = before[len(before)-extractWindowWords:]
	}
	after := strings.Fields(text[spanEnd:])
	if len(after) > extractWindowWords {
		after = after[:extractWindowWords]
	}

	var b strings.Builder
	if len(before) > 0 {
		b.WriteString("… ")
		b.WriteString(strings.Join(before, " "))
		b.WriteString(" ")
	}
	b.WriteString(text[spanStart:spanEnd])
	if len(after) > 0 {
		b.WriteString(" ")
		b.WriteString(strings.Join(after, " "))
		b.WriteString(" …")
	}
	return b.String()
}
