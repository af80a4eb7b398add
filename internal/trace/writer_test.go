package trace

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/xtding233/dispatch-bounce/internal/dispatch"
)

func record(t *testing.T, w *Writer) dispatch.Result {
	t.Helper()
	r := dispatch.NewResolver(dispatch.WithRNG(dispatch.NewSeededRNG(5)))
	id, err := r.Start(dispatch.DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	rec := NewRecorder(w, id, r.Layout())
	for {
		f, ok := r.Step(id)
		if !ok {
			t.Fatalf("run stopped early")
		}
		rec.Frame(f)
		if f.Terminal {
			break
		}
	}
	res, _ := r.Result()
	if err := rec.Result(res); err != nil {
		t.Fatal(err)
	}
	return res
}

func checkEntries(t *testing.T, entries []Entry, res dispatch.Result) {
	t.Helper()
	if len(entries) != res.Steps+1 {
		t.Fatalf("want %d entries, got %d", res.Steps+1, len(entries))
	}
	for i, e := range entries[:len(entries)-1] {
		if e.Kind != "frame" || e.Frame == nil || e.Frame.Step != i+1 || e.Run != 1 {
			t.Fatalf("entry %d: %+v", i, e)
		}
	}
	last := entries[len(entries)-1]
	if last.Kind != "result" || last.Result == nil || *last.Result != res {
		t.Fatalf("result entry %+v want %+v", last, res)
	}
	if want := dispatch.DefaultLayout().Absolute(res.Final); last.Absolute != want {
		t.Fatalf("absolute %v want %v", last.Absolute, want)
	}
}

func TestPlainRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	w, err := NewWriter(&buf, false)
	if err != nil {
		t.Fatal(err)
	}
	res := record(t, w)
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	entries, err := ReadAll(&buf, false)
	if err != nil {
		t.Fatal(err)
	}
	checkEntries(t, entries, res)
}

func TestZstdFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.jsonl.zst")
	w, err := Create(path)
	if err != nil {
		t.Fatal(err)
	}
	res := record(t, w)
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	entries, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	checkEntries(t, entries, res)
}

func TestReadAllBadLine(t *testing.T) {
	if _, err := ReadAll(bytes.NewBufferString("{\"kind\":\"frame\"}\nnot json\n"), false); err == nil {
		t.Fatalf("expected decode error")
	}
}
