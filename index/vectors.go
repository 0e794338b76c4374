package index

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
)

// Vector file layout: a 12-byte header (magic, count, dim as little-endian
// uint32) followed by count*dim float32 values in row-major order. Row i
// is the embedding of chunk i.

const vectorMagic uint32 = 0x45564958 // "EVIX"

func writeVectors(path string, vectors [][]float32) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return err
	}

	dim := 0
	if len(vectors) > 0 {
		dim = len(vectors[0])
	}

	w := bufio.NewWriter(f)
	var header [12]byte
	binary.LittleEndian.PutUint32(header[0:4], vectorMagic)
	binary.LittleEndian.PutUint32(header[4:8], uint32(len(vectors)))
	binary.LittleEndian.PutUint32(header[8:12], uint32(dim))
	if _, err := w.Write(header[:]); err != nil {
		f.Close()
		return err
	}

	var buf [4]byte
	for _, vector := range vectors {
		for _, x := range vector {
			binary.LittleEndian.PutUint32(buf[:], math.Float32bits(x))
			if _, err := w.Write(buf[:]); err != nil {
				f.Close()
				return err
			}
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

func readVectors(path string) ([][]float32, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := bufio.NewReader(f)
	var header [12]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, fmt.Errorf("%w: short vector header: %s", ErrIndexCorrupt, path)
	}
	if binary.LittleEndian.Uint32(header[0:4]) != vectorMagic {
		return nil, fmt.Errorf("%w: bad vector magic: %s", ErrIndexCorrupt, path)
	}
	count := int(binary.LittleEndian.Uint32(header[4:8]))
	dim := int(binary.LittleEndian.Uint32(header[8:12]))

	vectors := make([][]float32, count)
	var buf [4]byte
	for i := 0; i < count; i++ {
		row := make([]float32, dim)
		for j := 0; j < dim; j++ {
			if _, err := io.ReadFull(r, buf[:]); err != nil {
				return nil, fmt.Errorf("%w: truncated vector file: %s", ErrIndexCorrupt, path)
			}
			row[j] = math.Float32frombits(binary.LittleEndian.Uint32(buf[:]))
		}
		vectors[i] = row
	}
	return vectors, nil
}
