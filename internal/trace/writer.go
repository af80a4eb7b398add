// Package trace streams resolution frames as JSON Lines, optionally zstd
// compressed, for replay by a renderer.
package trace

import (
	"bufio"
	"encoding/json"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/klauspost/compress/zstd"

	"github.com/xtding233/dispatch-bounce/internal/dispatch"
)

// Writer appends one JSON value per line.
type Writer struct {
	mu  sync.Mutex
	c   io.Closer // underlying file, nil when the caller owns the stream
	enc *zstd.Encoder
	w   *bufio.Writer
}

// NewWriter wraps out; compress selects zstd framing.
func NewWriter(out io.Writer, compress bool) (*Writer, error) {
	tw := &Writer{}
	if compress {
		enc, err := zstd.NewWriter(out, zstd.WithEncoderLevel(zstd.SpeedFastest))
		if err != nil {
			return nil, err
		}
		tw.enc = enc
		out = enc
	}
	tw.w = bufio.NewWriterSize(out, 64*1024)
	return tw, nil
}

// Create opens path for writing; a ".zst" suffix turns on compression.
func Create(path string) (*Writer, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, err
	}
	w, err := NewWriter(f, strings.HasSuffix(path, ".zst"))
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	w.c = f
	return w, nil
}

func (w *Writer) Write(v any) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if _, err := w.w.Write(b); err != nil {
		return err
	}
	return w.w.WriteByte('\n')
}

// Flush pushes buffered lines to the underlying stream.
func (w *Writer) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.w.Flush(); err != nil {
		return err
	}
	if w.enc != nil {
		return w.enc.Flush()
	}
	return nil
}

func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	err := w.w.Flush()
	if w.enc != nil {
		if cerr := w.enc.Close(); err == nil {
			err = cerr
		}
		w.enc = nil
	}
	if w.c != nil {
		if cerr := w.c.Close(); err == nil {
			err = cerr
		}
		w.c = nil
	}
	return err
}

// Entry is one trace line.
type Entry struct {
	Kind     string           `json:"kind"` // "frame" or "result"
	Run      uint64           `json:"run"`
	Absolute dispatch.Point   `json:"absolute"` // position in layout coordinates
	Frame    *dispatch.Frame  `json:"frame,omitempty"`
	Result   *dispatch.Result `json:"result,omitempty"`
}

// Recorder turns frames and results of one run into entries. Frame fits
// Resolver.Play's emit callback; the first write error is kept for Err.
type Recorder struct {
	w      *Writer
	run    uint64
	layout dispatch.Layout
	err    error
}

func NewRecorder(w *Writer, run dispatch.RunID, l dispatch.Layout) *Recorder {
	return &Recorder{w: w, run: uint64(run), layout: l}
}

func (r *Recorder) Frame(f dispatch.Frame) {
	if r.err != nil {
		return
	}
	r.err = r.w.Write(Entry{Kind: "frame", Run: r.run, Absolute: r.layout.Absolute(f.Position), Frame: &f})
}

func (r *Recorder) Result(res dispatch.Result) error {
	if r.err != nil {
		return r.err
	}
	r.err = r.w.Write(Entry{Kind: "result", Run: r.run, Absolute: r.layout.Absolute(res.Final), Result: &res})
	return r.err
}

func (r *Recorder) Err() error { return r.err }
