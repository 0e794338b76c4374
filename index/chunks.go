package index

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/veridian-systems/evidentia/core"
	"github.com/veridian-systems/evidentia/storage"
)

// The chunk table uses the same framing as evidence segments: one
// uvarint length prefix per mus-encoded chunk, in chunk-id order.

func writeChunkTable(path string, chunks []*core.Chunk) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return err
	}

	w := bufio.NewWriter(f)
	var prefix [binary.MaxVarintLen64]byte
	for _, chunk := range chunks {
		payload := storage.MarshalChunk(chunk)
		n := binary.PutUvarint(prefix[:], uint64(len(payload)))
		if _, err := w.Write(prefix[:n]); err != nil {
			f.Close()
			return err
		}
		if _, err := w.Write(payload); err != nil {
			f.Close()
			return err
		}
	}

	if err := w.Flush(); err != nil {
		f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func readChunkTable(path string) ([]*core.Chunk, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var chunks []*core.Chunk
	r := bufio.NewReader(f)
	for {
		length, err := binary.ReadUvarint(r)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return chunks, nil
			}
			return nil, fmt.Errorf("%w: chunk table %s", ErrIndexCorrupt, path)
		}

		payload := make([]byte, length)
		if _, err := io.ReadFull(r, payload); err != nil {
			return nil, fmt.Errorf("%w: chunk table %s", ErrIndexCorrupt, path)
		}

		chunk, err := storage.UnmarshalChunk(payload)
		if err != nil {
			return nil, fmt.Errorf("%w: chunk table %s: %w", ErrIndexCorrupt, path, err)
		}
		chunks = append(chunks, chunk)
	}
}
