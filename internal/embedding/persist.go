// Vibecatalog - Media Catalog Consolidation and Vibe Search
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vibecatalog

package embedding

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// On-disk layout of <base>.vec:
//
//	magic   [4]byte "VCX\n"
//	version uint32
//	rows    uint32
//	dims    uint32
//	rows*dims little-endian float32, row-major, in catalog order
//
// <base>.meta is a msgpack-encoded indexMeta. It is optional; without it the
// index is aligned positionally.
const (
	vecFileMagic   = "VCX\n"
	vecFileVersion = 1
	vecHeaderSize  = 16
)

// ErrIndexNotFound is returned by Load when no persisted index exists.
var ErrIndexNotFound = errors.New("embedding index not found")

type indexMeta struct {
	Version    int       `msgpack:"version"`
	Dimensions int       `msgpack:"dimensions"`
	IDs        []string  `msgpack:"ids"`
	BuiltAt    time.Time `msgpack:"built_at"`
}

// Save writes the index to base.vec and base.meta, replacing any previous
// files atomically.
func (ix *Index) Save(base string) error {
	if err := os.MkdirAll(filepath.Dir(base), 0o755); err != nil {
		return fmt.Errorf("create index dir: %w", err)
	}

	if err := writeAtomic(base+".vec", ix.writeVectors); err != nil {
		return fmt.Errorf("write vectors: %w", err)
	}

	meta := indexMeta{
		Version:    vecFileVersion,
		Dimensions: ix.Dimensions,
		IDs:        ix.IDs,
		BuiltAt:    ix.BuiltAt,
	}
	err := writeAtomic(base+".meta", func(w io.Writer) error {
		return msgpack.NewEncoder(w).Encode(&meta)
	})
	if err != nil {
		return fmt.Errorf("write meta: %w", err)
	}
	return nil
}

func (ix *Index) writeVectors(w io.Writer) error {
	header := make([]byte, vecHeaderSize)
	copy(header, vecFileMagic)
	binary.LittleEndian.PutUint32(header[4:8], vecFileVersion)
	binary.LittleEndian.PutUint32(header[8:12], uint32(len(ix.Vectors)))
	binary.LittleEndian.PutUint32(header[12:16], uint32(ix.Dimensions))
	if _, err := w.Write(header); err != nil {
		return err
	}

	row := make([]byte, 4*ix.Dimensions)
	for i, vec := range ix.Vectors {
		if len(vec) != ix.Dimensions {
			return fmt.Errorf("row %d has %d dimensions, want %d", i, len(vec), ix.Dimensions)
		}
		for j, f := range vec {
			binary.LittleEndian.PutUint32(row[j*4:], math.Float32bits(f))
		}
		if _, err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

func writeAtomic(path string, write func(io.Writer) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // no-op after a successful rename

	bw := bufio.NewWriter(tmp)
	if err := write(bw); err != nil {
		tmp.Close() //nolint:errcheck // write error takes precedence
		return err
	}
	if err := bw.Flush(); err != nil {
		tmp.Close() //nolint:errcheck // flush error takes precedence
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// Load reads an index saved by Save. A missing or unreadable sidecar is
// tolerated: the index is then positional only.
func Load(base string) (*Index, error) {
	f, err := os.Open(base + ".vec")
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrIndexNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("open vectors: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat vectors: %w", err)
	}

	ix, err := readVectors(bufio.NewReader(f), info.Size())
	if err != nil {
		return nil, fmt.Errorf("read %s.vec: %w", base, err)
	}

	meta, err := readMeta(base + ".meta")
	if err == nil && meta.Dimensions == ix.Dimensions && len(meta.IDs) == len(ix.Vectors) {
		ix.IDs = meta.IDs
		ix.BuiltAt = meta.BuiltAt
	}
	return ix, nil
}

// readVectors decodes a vector file of size bytes. The header must describe
// exactly the payload that follows it.
func readVectors(r io.Reader, size int64) (*Index, error) {
	header := make([]byte, vecHeaderSize)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if string(header[:4]) != vecFileMagic {
		return nil, errors.New("invalid vector file magic")
	}
	if v := binary.LittleEndian.Uint32(header[4:8]); v != vecFileVersion {
		return nil, fmt.Errorf("unsupported vector file version %d", v)
	}
	rows := uint64(binary.LittleEndian.Uint32(header[8:12]))
	dims := uint64(binary.LittleEndian.Uint32(header[12:16]))

	if rows > 0 && dims == 0 {
		return nil, fmt.Errorf("vector header has %d rows of zero dimensions", rows)
	}
	if dims != 0 && rows > (math.MaxInt64-vecHeaderSize)/4/dims {
		return nil, fmt.Errorf("vector header %d x %d overflows", rows, dims)
	}
	if want := int64(vecHeaderSize + rows*dims*4); want != size {
		return nil, fmt.Errorf("vector header %d x %d needs %d bytes, file has %d", rows, dims, want, size)
	}
	if rows == 0 {
		return &Index{Vectors: [][]float32{}}, nil
	}
	return decodeRows(r, int(rows), int(dims))
}

func decodeRows(r io.Reader, rows, dims int) (*Index, error) {
	ix := &Index{Dimensions: dims, Vectors: make([][]float32, 0, rows)}
	buf := make([]byte, 4*dims)
	for i := 0; i < rows; i++ {
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, fmt.Errorf("read row %d: %w", i, err)
		}
		vec := make([]float32, dims)
		for j := range vec {
			vec[j] = math.Float32frombits(binary.LittleEndian.Uint32(buf[j*4:]))
		}
		ix.Vectors = append(ix.Vectors, vec)
	}
	return ix, nil
}

func readMeta(path string) (indexMeta, error) {
	var meta indexMeta
	f, err := os.Open(path)
	if err != nil {
		return meta, err
	}
	defer f.Close()
	err = msgpack.NewDecoder(bufio.NewReader(f)).Decode(&meta)
	return meta, err
}
