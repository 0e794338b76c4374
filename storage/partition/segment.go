package partition

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/veridian-systems/evidentia/storage"
)

// Segment files hold a sequence of uvarint-length-prefixed mus-encoded
// records. Files are written once with O_EXCL and never modified.

// writeSegment creates a new segment file containing the given encoded
// records. Fails with storage.ErrSegmentExists if the path already exists.
func writeSegment(path string, payloads [][]byte) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		if os.IsExist(err) {
			return fmt.Errorf("%w: %s", storage.ErrSegmentExists, path)
		}
		return err
	}

	w := bufio.NewWriter(f)
	var prefix [binary.MaxVarintLen64]byte
	for _, payload := range payloads {
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

// readSegment streams the encoded records of a segment file into decode.
// A file ending mid-record reports storage.ErrTruncatedData.
func readSegment(path string, decode func(payload []byte) error) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	r := bufio.NewReader(f)
	for {
		length, err := binary.ReadUvarint(r)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("%w: %s", storage.ErrTruncatedData, path)
		}

		payload := make([]byte, length)
		if _, err := io.ReadFull(r, payload); err != nil {
			return fmt.Errorf("%w: %s", storage.ErrTruncatedData, path)
		}

		if err := decode(payload); err != nil {
			return fmt.Errorf("%w: %s: %w", storage.ErrSerializationFailed, path, err)
		}
	}
}
