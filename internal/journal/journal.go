package journal

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/osse101/HarvestRealm_Go/internal/domain"
)

// Entry kinds
const (
	KindPlant   = "plant"
	KindHarvest = "harvest"
)

const (
	filePrefix    = "economy"
	hourLayout    = "2006-01-02-15"
	bufferSize    = 64 * 1024
	dirPermission = 0o755
)

// Entry is one committed economy event
type Entry struct {
	TS         time.Time       `json:"ts"`
	World      string          `json:"world"`
	Player     string          `json:"player"`
	Kind       string          `json:"kind"`
	CropID     string          `json:"cropId"`
	SeedType   domain.SeedType `json:"seedType"`
	X          float64         `json:"x"`
	Y          float64         `json:"y"`
	Investment float64         `json:"investment"`
	Yield      float64         `json:"yield,omitempty"`
	XP         int64           `json:"xp"`
}

// Writer appends entries to hourly zstd-compressed JSONL files named
// economy-YYYY-MM-DD-HH.jsonl.zst. It is safe for concurrent use.
type Writer struct {
	dir   string
	clock func() time.Time

	mu      sync.Mutex
	curHour string
	f       *os.File
	enc     *zstd.Encoder
	w       *bufio.Writer
}

// NewWriter creates a writer rooted at dir. Files are opened lazily on the first write.
func NewWriter(dir string) *Writer {
	return &Writer{dir: dir, clock: time.Now}
}

// WithClock overrides the clock used for rotation
func (w *Writer) WithClock(clock func() time.Time) *Writer {
	w.clock = clock
	return w
}

// Write appends e, rotating to a new file when the UTC hour changes
func (w *Writer) Write(e Entry) error {
	b, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal journal entry: %w", err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	hour := w.clock().UTC().Format(hourLayout)
	if hour != w.curHour {
		if err := w.rotateLocked(hour); err != nil {
			return err
		}
	}

	if _, err := w.w.Write(b); err != nil {
		return err
	}
	if err := w.w.WriteByte('\n'); err != nil {
		return err
	}
	return w.w.Flush()
}

// Close flushes and closes the current file
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.closeLocked()
}

// PathForHour returns the file an entry written at t lands in
func (w *Writer) PathForHour(t time.Time) string {
	return filepath.Join(w.dir, fmt.Sprintf("%s-%s.jsonl.zst", filePrefix, t.UTC().Format(hourLayout)))
}

func (w *Writer) rotateLocked(hour string) error {
	if err := w.closeLocked(); err != nil {
		return err
	}
	if err := os.MkdirAll(w.dir, dirPermission); err != nil {
		return fmt.Errorf("create journal dir: %w", err)
	}

	path := filepath.Join(w.dir, fmt.Sprintf("%s-%s.jsonl.zst", filePrefix, hour))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		_ = f.Close()
		return err
	}

	w.f = f
	w.enc = enc
	w.w = bufio.NewWriterSize(enc, bufferSize)
	w.curHour = hour
	return nil
}

func (w *Writer) closeLocked() error {
	var err error
	if w.w != nil {
		err = w.w.Flush()
	}
	if w.enc != nil {
		if cerr := w.enc.Close(); err == nil {
			err = cerr
		}
		w.enc = nil
	}
	if w.f != nil {
		if cerr := w.f.Close(); err == nil {
			err = cerr
		}
		w.f = nil
	}
	w.w = nil
	w.curHour = ""
	return err
}

// ReadFile decodes every entry of one journal file
func ReadFile(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return nil, err
	}
	defer dec.Close()

	var entries []Entry
	scanner := bufio.NewScanner(dec)
	for scanner.Scan() {
		var e Entry
		if err := json.Unmarshal(scanner.Bytes(), &e); err != nil {
			return entries, fmt.Errorf("decode journal line: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, scanner.Err()
}
