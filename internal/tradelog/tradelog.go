// Package tradelog keeps a per-day JSON-lines journal of what each pass did
// with each trade.
package tradelog

import (
	"bufio"
	"compress/gzip"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"notion-trade-sync/internal/interfaces"
	"notion-trade-sync/internal/types"
)

const (
	dayLayout = "2006-01-02"
	ext       = ".jsonl"
)

type Journal struct {
	mu  sync.Mutex
	dir string
	now func() time.Time
}

var _ interfaces.Journal = (*Journal)(nil)

func New(dir string) *Journal {
	return &Journal{dir: dir, now: time.Now}
}

// WithClock replaces the clock used to pick day files.
func (j *Journal) WithClock(now func() time.Time) *Journal {
	j.now = now
	return j
}

func (j *Journal) Dir() string { return j.dir }

func (j *Journal) dayPath(t time.Time) string {
	return filepath.Join(j.dir, t.In(time.Local).Format(dayLayout)+ext)
}

// Append writes one entry to today's file.
func (j *Journal) Append(e types.JournalEntry) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	now := j.now()
	if e.Time == "" {
		e.Time = now.UTC().Format(time.RFC3339)
	}
	p := j.dayPath(now)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(p, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	b, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode journal entry: %w", err)
	}
	_, err = fmt.Fprintln(f, string(b))
	return err
}

// ReadDay returns the entries recorded on t's local date, reading the
// compressed file if the plain one has already been rotated.
func (j *Journal) ReadDay(t time.Time) ([]types.JournalEntry, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	p := j.dayPath(t)
	var r io.Reader
	f, err := os.Open(p)
	if errors.Is(err, os.ErrNotExist) {
		f, err = os.Open(p + ".gz")
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		defer f.Close()
		gr, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("open %s.gz: %w", p, err)
		}
		defer gr.Close()
		r = gr
	} else if err != nil {
		return nil, err
	} else {
		defer f.Close()
		r = f
	}

	var entries []types.JournalEntry
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		var e types.JournalEntry
		if err := json.Unmarshal([]byte(line), &e); err != nil {
			return entries, fmt.Errorf("decode journal line: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, sc.Err()
}

// CompressOlder gzips day files older than retentionDays and removes the
// plain copies. Today's file is never touched.
func (j *Journal) CompressOlder(retentionDays int) error {
	if retentionDays <= 0 {
		return nil
	}
	j.mu.Lock()
	defer j.mu.Unlock()

	now := j.now().In(time.Local)
	cutoff := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.Local).AddDate(0, 0, -retentionDays)

	files, err := filepath.Glob(filepath.Join(j.dir, "*"+ext))
	if err != nil {
		return err
	}
	var errs []error
	for _, p := range files {
		day, err := time.ParseInLocation(dayLayout, strings.TrimSuffix(filepath.Base(p), ext), time.Local)
		if err != nil || !day.Before(cutoff) {
			continue
		}
		if err := gzipFile(p); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func gzipFile(p string) error {
	gz := p + ".gz"
	if _, err := os.Stat(gz); err == nil {
		return os.Remove(p)
	}

	in, err := os.Open(p)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(gz, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	gw := gzip.NewWriter(out)
	if _, err := io.Copy(gw, in); err != nil {
		gw.Close()
		out.Close()
		os.Remove(gz)
		return fmt.Errorf("compress %s: %w", p, err)
	}
	if err := gw.Close(); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	return os.Remove(p)
}
