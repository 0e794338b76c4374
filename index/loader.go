package index

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/veridian-systems/evidentia/core"
)

// Index is a fully loaded per-document index. Vectors are row-aligned
// with Chunks: Vectors[i] embeds Chunks[i], whose ChunkID is i.
type Index struct {
	Manifest *Manifest
	Chunks   []*core.Chunk
	Vectors  [][]float32
}

// Load reads a built index from disk and cross-checks its artifacts
// against the manifest. Returns ErrNoIndex if no build exists for the
// document, and DimensionMismatchError if the vector file disagrees with
// the recorded dimension.
func Load(root, docID string) (*Index, error) {
	dir := indexDir(root, docID)

	manifest, err := loadManifest(filepath.Join(dir, manifestFile))
	if err != nil {
		return nil, err
	}
	if manifest == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoIndex, docID)
	}

	chunks, err := readChunkTable(filepath.Join(dir, chunksFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNoIndex, docID)
		}
		return nil, err
	}

	vectors, err := readVectors(filepath.Join(dir, vectorsFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNoIndex, docID)
		}
		return nil, err
	}

	if len(chunks) != manifest.Count || len(vectors) != manifest.Count {
		return nil, fmt.Errorf("%w: %s: manifest count %d, chunks %d, vectors %d",
			ErrIndexCorrupt, docID, manifest.Count, len(chunks), len(vectors))
	}
	if manifest.Count > 0 && len(vectors[0]) != manifest.Dim {
		return nil, &DimensionMismatchError{DocID: docID, Want: manifest.Dim, Got: len(vectors[0])}
	}
	if got := chunkDigest(chunks); got != manifest.ChunkDigest {
		return nil, fmt.Errorf("%w: %s: chunk digest %s does not match manifest %s",
			ErrIndexCorrupt, docID, got, manifest.ChunkDigest)
	}

	return &Index{Manifest: manifest, Chunks: chunks, Vectors: vectors}, nil
}
