// Package compression provides transparent stream decompression for roster
// files, plus the matching writers used to produce compressed fixtures.
//
// # Overview
//
// A roster file may be stored compressed next to (or instead of) the plain
// text file. The algorithm is either named explicitly or detected from the
// file extension:
//
//	.gz, .gzip     Gzip
//	.zst, .zstd    Zstd
//	.lz4           LZ4
//	.sz, .snappy   Snappy (framed)
//	.s2            S2
//
// # Basic Usage
//
//	alg := compression.Detect("cohort_data.txt.zst")
//	rc, err := compression.NewReader(file, alg)
//	if err != nil {
//	    return err
//	}
//	defer rc.Close()
//
// Closing the returned reader never closes the underlying source.
package compression

import (
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/s2"
	"github.com/klauspost/compress/snappy"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Algorithm represents a compression algorithm.
type Algorithm string

const (
	// Auto selects the algorithm from the file extension
	Auto Algorithm = "auto"
	// None represents no compression
	None Algorithm = "none"
	// Gzip represents gzip compression
	Gzip Algorithm = "gzip"
	// Snappy represents framed snappy compression
	Snappy Algorithm = "snappy"
	// LZ4 represents lz4 frame compression
	LZ4 Algorithm = "lz4"
	// Zstd represents zstandard compression
	Zstd Algorithm = "zstd"
	// S2 represents s2 compression (Snappy compatible)
	S2 Algorithm = "s2"
)

// Level represents compression level for writers.
type Level int

const (
	// Fastest prioritizes speed over compression ratio.
	Fastest Level = 1
	// Default balances speed and compression.
	Default Level = 5
	// Better improves compression at cost of speed.
	Better Level = 7
	// Best maximizes compression ratio.
	Best Level = 9
)

var extensions = map[string]Algorithm{
	".gz":     Gzip,
	".gzip":   Gzip,
	".zst":    Zstd,
	".zstd":   Zstd,
	".lz4":    LZ4,
	".sz":     Snappy,
	".snappy": Snappy,
	".s2":     S2,
}

// Algorithms lists every concrete algorithm, in a stable order.
func Algorithms() []Algorithm {
	return []Algorithm{None, Gzip, Zstd, LZ4, Snappy, S2}
}

// ParseAlgorithm converts a user-supplied name into an Algorithm. The empty
// string means Auto.
func ParseAlgorithm(name string) (Algorithm, error) {
	switch alg := Algorithm(strings.ToLower(strings.TrimSpace(name))); alg {
	case "":
		return Auto, nil
	case Auto, None, Gzip, Snappy, LZ4, Zstd, S2:
		return alg, nil
	case "gz":
		return Gzip, nil
	case "zst":
		return Zstd, nil
	default:
		return "", fmt.Errorf("unsupported compression algorithm: %s", name)
	}
}

// Detect returns the algorithm implied by the extension of name, or None.
// name may be a local path or a URI.
func Detect(name string) Algorithm {
	if i := strings.IndexAny(name, "?#"); i >= 0 {
		name = name[:i]
	}
	if alg, ok := extensions[strings.ToLower(path.Ext(name))]; ok {
		return alg
	}
	return None
}

// Resolve turns Auto into a concrete algorithm using name's extension.
func Resolve(alg Algorithm, name string) Algorithm {
	if alg == Auto || alg == "" {
		return Detect(name)
	}
	return alg
}

// NewReader wraps src in a decompressing reader. Auto must be resolved by the
// caller (see Resolve).
func NewReader(src io.Reader, alg Algorithm) (io.ReadCloser, error) {
	switch alg {
	case None:
		return io.NopCloser(src), nil
	case Gzip:
		r, err := gzip.NewReader(src)
		if err != nil {
			return nil, fmt.Errorf("failed to open gzip stream: %w", err)
		}
		return r, nil
	case Zstd:
		dec, err := zstd.NewReader(src)
		if err != nil {
			return nil, fmt.Errorf("failed to open zstd stream: %w", err)
		}
		return dec.IOReadCloser(), nil
	case LZ4:
		return io.NopCloser(lz4.NewReader(src)), nil
	case Snappy:
		return io.NopCloser(snappy.NewReader(src)), nil
	case S2:
		return io.NopCloser(s2.NewReader(src)), nil
	default:
		return nil, fmt.Errorf("unsupported compression algorithm: %s", alg)
	}
}

// NewWriter wraps dst in a compressing writer. Close must be called to flush
// the stream; it does not close dst.
func NewWriter(dst io.Writer, alg Algorithm, level Level) (io.WriteCloser, error) {
	switch alg {
	case None:
		return nopWriteCloser{dst}, nil
	case Gzip:
		w, err := gzip.NewWriterLevel(dst, mapGzipLevel(level))
		if err != nil {
			return nil, err
		}
		return w, nil
	case Zstd:
		enc, err := zstd.NewWriter(dst, zstd.WithEncoderLevel(mapZstdLevel(level)))
		if err != nil {
			return nil, err
		}
		return enc, nil
	case LZ4:
		w := lz4.NewWriter(dst)
		if err := w.Apply(lz4.CompressionLevelOption(mapLZ4Level(level))); err != nil {
			return nil, err
		}
		return w, nil
	case Snappy:
		return snappy.NewBufferedWriter(dst), nil
	case S2:
		return s2.NewWriter(dst), nil
	default:
		return nil, fmt.Errorf("unsupported compression algorithm: %s", alg)
	}
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }

func mapGzipLevel(level Level) int {
	switch level {
	case Fastest:
		return gzip.BestSpeed
	case Best:
		return gzip.BestCompression
	default:
		return gzip.DefaultCompression
	}
}

func mapLZ4Level(level Level) lz4.CompressionLevel {
	switch level {
	case Fastest:
		return lz4.Fast
	case Best:
		return lz4.Level9
	default:
		return lz4.Level5
	}
}

func mapZstdLevel(level Level) zstd.EncoderLevel {
	switch level {
	case Fastest:
		return zstd.SpeedFastest
	case Better:
		return zstd.SpeedBetterCompression
	case Best:
		return zstd.SpeedBestCompression
	default:
		return zstd.SpeedDefault
	}
}
