package index

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-crypt/x/blake2b"

	"github.com/veridian-systems/evidentia/core"
)

const (
	manifestFile = "manifest.json"
	chunksFile   = "chunks.seg"
	vectorsFile  = "vectors.bin"
)

// Manifest records the provenance of one per-document index build.
type Manifest struct {
	DocID       string    `json:"doc_id"`
	ModelID     string    `json:"model_id"`
	Dim         int       `json:"dim"`
	Count       int       `json:"count"`
	BuiltAt     time.Time `json:"built_at"`
	ChunkDigest string    `json:"chunk_digest"`
}

// chunkDigest hashes every chunk's TextSHA in chunk-id order. Two builds
// over the same silver input produce the same digest, which is how
// downstream consumers verify index lineage.
func chunkDigest(chunks []*core.Chunk) string {
	h, _ := blake2b.New(32, nil)
	for _, chunk := range chunks {
		h.Write([]byte(chunk.TextSHA))
	}
	return hex.EncodeToString(h.Sum(nil))
}

func indexDir(root, docID string) string {
	return filepath.Join(root, docID)
}

func writeManifest(path string, manifest *Manifest) error {
	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	return os.WriteFile(path, append(data, '\n'), 0644)
}

// loadManifest reads a manifest, mapping a missing file to (nil, nil) so
// callers can distinguish "no prior build" from a decode failure.
func loadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var manifest Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("%w: manifest %s: %w", ErrIndexCorrupt, path, err)
	}
	return &manifest, nil
}
