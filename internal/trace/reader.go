package trace

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/zstd"
)

// ReadAll decodes every entry from in. compressed selects zstd framing.
func ReadAll(in io.Reader, compressed bool) ([]Entry, error) {
	if compressed {
		dec, err := zstd.NewReader(in)
		if err != nil {
			return nil, err
		}
		defer dec.Close()
		in = dec
	}
	var out []Entry
	sc := bufio.NewScanner(in)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	line := 0
	for sc.Scan() {
		line++
		if len(sc.Bytes()) == 0 {
			continue
		}
		var e Entry
		if err := json.Unmarshal(sc.Bytes(), &e); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		out = append(out, e)
	}
	return out, sc.Err()
}

// Open reads a trace file written by Create.
func Open(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadAll(f, strings.HasSuffix(path, ".zst"))
}
