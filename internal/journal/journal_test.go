package journal

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/klauspost/compress/zstd"
)

func readEntries(t *testing.T, path string) []Entry {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer f.Close()
	dec, err := zstd.NewReader(f)
	if err != nil {
		t.Fatalf("zstd reader: %v", err)
	}
	defer dec.Close()
	var out []Entry
	sc := bufio.NewScanner(dec)
	for sc.Scan() {
		var e Entry
		if err := json.Unmarshal(sc.Bytes(), &e); err != nil {
			t.Fatalf("decode line %q: %v", sc.Text(), err)
		}
		out = append(out, e)
	}
	if err := sc.Err(); err != nil {
		t.Fatalf("scan: %v", err)
	}
	return out
}

func TestWriterRoundTrip(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir, "telemetry")
	at := time.Date(2024, 6, 1, 10, 30, 0, 0, time.UTC)
	w.nowFn = func() time.Time { return at }

	if err := w.Write(Entry{AtMs: 1, Level: "warning", Event: "command_queue_overflow"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := w.Write(Entry{AtMs: 2, Level: "tick", Event: "engine_step"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	entries := readEntries(t, filepath.Join(dir, "telemetry-2024-06-01-10.jsonl.zst"))
	if len(entries) != 2 {
		t.Fatalf("read back %d entries", len(entries))
	}
	if entries[0].Event != "command_queue_overflow" || entries[1].Event != "engine_step" {
		t.Fatalf("unexpected entries %+v", entries)
	}
}

func TestWriterRotatesHourly(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir, "telemetry")
	at := time.Date(2024, 6, 1, 10, 59, 0, 0, time.UTC)
	w.nowFn = func() time.Time { return at }

	if err := w.Write(Entry{AtMs: 1, Event: "first"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	at = at.Add(2 * time.Minute) // crosses into hour 11
	if err := w.Write(Entry{AtMs: 2, Event: "second"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	first := readEntries(t, filepath.Join(dir, "telemetry-2024-06-01-10.jsonl.zst"))
	second := readEntries(t, filepath.Join(dir, "telemetry-2024-06-01-11.jsonl.zst"))
	if len(first) != 1 || first[0].Event != "first" {
		t.Fatalf("hour-10 file: %+v", first)
	}
	if len(second) != 1 || second[0].Event != "second" {
		t.Fatalf("hour-11 file: %+v", second)
	}
}

func TestSinkJournalsLevels(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir, "telemetry")
	at := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	w.nowFn = func() time.Time { return at }

	s := NewSink(w, nil)
	s.nowFn = func() time.Time { return at }
	s.RecordError("command_execution_failed", map[string]any{"type": "a"})
	s.RecordCounters("engine_commands", map[string]float64{"executed": 3})
	s.RecordTick("engine_step", map[string]any{"step": 1})
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	entries := readEntries(t, filepath.Join(dir, "telemetry-2024-06-01-12.jsonl.zst"))
	if len(entries) != 3 {
		t.Fatalf("journaled %d entries", len(entries))
	}
	if entries[0].Level != "error" || entries[0].Data["type"] != "a" {
		t.Fatalf("error entry: %+v", entries[0])
	}
	if entries[1].Level != "counters" || entries[1].Counters["executed"] != 3 {
		t.Fatalf("counters entry: %+v", entries[1])
	}
	if entries[2].Level != "tick" || entries[2].AtMs != at.UnixMilli() {
		t.Fatalf("tick entry: %+v", entries[2])
	}
}
