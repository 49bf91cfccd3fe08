package results

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/wonny/schloss/internal/contracts"
	"github.com/wonny/schloss/pkg/config"
	"github.com/wonny/schloss/pkg/logger"
)

const (
	// SnapshotHeader is the first line of every snapshot file
	SnapshotHeader = "Stocks meeting Walter Schloss criteria:"

	// TimestampLayout is YYYYMMDD_HHMMSS
	TimestampLayout = "20060102_150405"

	snapshotPrefix = "results_"
	snapshotExt    = ".txt"
)

// Store persists run results as flat files
// ⭐ SSOT: 결과 파일 생성/삭제는 여기서만
type Store struct {
	auditPath    string
	dir          string
	maxSnapshots int
	now          func() time.Time
	logger       *logger.Logger
}

// NewStore creates a store from storage configuration
func NewStore(cfg config.StorageConfig, log *logger.Logger) *Store {
	return &Store{
		auditPath:    cfg.AuditLogPath,
		dir:          cfg.ResultsDir,
		maxSnapshots: cfg.MaxSnapshots,
		now:          time.Now,
		logger:       log,
	}
}

// WithClock replaces the clock used for timestamps
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

// AuditPath returns the audit log location
func (s *Store) AuditPath() string {
	return s.auditPath
}

// AppendAudit appends one "Run at" block with every verdict line and a
// blank separator. Existing content is never touched.
func (s *Store) AppendAudit(result *contracts.RunResult) error {
	if dir := filepath.Dir(s.auditPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return &contracts.PersistenceError{Op: "create audit dir", Path: dir, Err: err}
		}
	}

	f, err := os.OpenFile(s.auditPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return &contracts.PersistenceError{Op: "open audit log", Path: s.auditPath, Err: err}
	}

	w := bufio.NewWriter(f)
	fmt.Fprintf(w, "Run at %s\n", s.now().Format(TimestampLayout))
	for _, line := range result.AuditLines() {
		w.WriteString(line)
		w.WriteByte('\n')
	}
	w.WriteByte('\n')

	if err := w.Flush(); err != nil {
		f.Close()
		return &contracts.PersistenceError{Op: "append audit log", Path: s.auditPath, Err: err}
	}
	if err := f.Close(); err != nil {
		return &contracts.PersistenceError{Op: "close audit log", Path: s.auditPath, Err: err}
	}

	s.logger.WithFields(map[string]interface{}{
		"path":  s.auditPath,
		"lines": len(result.Audit),
	}).Infof("All stock results appended to %s", s.auditPath)
	return nil
}

// SaveSnapshot writes results_<timestamp>.txt and prunes to the retention
// limit. A name already taken in the same second gets a _N suffix.
func (s *Store) SaveSnapshot(qualifying []contracts.TickerSymbol) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", &contracts.PersistenceError{Op: "create results dir", Path: s.dir, Err: err}
	}

	f, path, err := s.createSnapshot(s.now().Format(TimestampLayout))
	if err != nil {
		return "", err
	}

	w := bufio.NewWriter(f)
	w.WriteString(SnapshotHeader)
	w.WriteByte('\n')
	for _, symbol := range qualifying {
		w.WriteString(symbol.String())
		w.WriteByte('\n')
	}

	if err := w.Flush(); err != nil {
		f.Close()
		return "", &contracts.PersistenceError{Op: "write snapshot", Path: path, Err: err}
	}
	if err := f.Close(); err != nil {
		return "", &contracts.PersistenceError{Op: "close snapshot", Path: path, Err: err}
	}

	s.logger.WithFields(map[string]interface{}{
		"path":       path,
		"qualifying": len(qualifying),
	}).Infof("Recommended results saved to %s", path)

	if _, err := s.Prune(s.maxSnapshots); err != nil {
		return path, err
	}
	return path, nil
}

// createSnapshot opens a fresh file, never truncating an existing one
func (s *Store) createSnapshot(ts string) (*os.File, string, error) {
	for n := 0; ; n++ {
		name := snapshotPrefix + ts + snapshotExt
		if n > 0 {
			name = fmt.Sprintf("%s%s_%d%s", snapshotPrefix, ts, n, snapshotExt)
		}
		path := filepath.Join(s.dir, name)

		f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
		if err == nil {
			return f, path, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return nil, "", &contracts.PersistenceError{Op: "create snapshot", Path: path, Err: err}
		}
	}
}

// Snapshots lists snapshot files oldest first (mtime, then name)
func (s *Store) Snapshots() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, &contracts.PersistenceError{Op: "list results dir", Path: s.dir, Err: err}
	}

	type snapshot struct {
		path    string
		modTime time.Time
	}
	files := make([]snapshot, 0, len(entries))

	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, snapshotPrefix) || !strings.HasSuffix(name, snapshotExt) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			// removed between ReadDir and Info
			continue
		}
		files = append(files, snapshot{path: filepath.Join(s.dir, name), modTime: info.ModTime()})
	}

	sort.Slice(files, func(i, j int) bool {
		if files[i].modTime.Equal(files[j].modTime) {
			return files[i].path < files[j].path
		}
		return files[i].modTime.Before(files[j].modTime)
	})

	paths := make([]string, len(files))
	for i, f := range files {
		paths[i] = f.path
	}
	return paths, nil
}

// Prune deletes all but the newest max snapshots and returns what it removed.
// Safe to call repeatedly; fewer than max files is a no-op.
func (s *Store) Prune(max int) ([]string, error) {
	if max < 1 {
		return nil, fmt.Errorf("prune: max must be at least 1, got %d", max)
	}

	files, err := s.Snapshots()
	if err != nil {
		return nil, err
	}
	if len(files) <= max {
		return nil, nil
	}

	stale := files[:len(files)-max]
	removed := make([]string, 0, len(stale))
	for _, path := range stale {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return removed, &contracts.PersistenceError{Op: "remove snapshot", Path: path, Err: err}
		}
		removed = append(removed, path)
		s.logger.WithField("path", path).Infof("Removed old result file: %s", path)
	}
	return removed, nil
}

// ReadSnapshot parses a snapshot file back into its symbol list
func (s *Store) ReadSnapshot(path string) ([]contracts.TickerSymbol, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &contracts.PersistenceError{Op: "open snapshot", Path: path, Err: err}
	}
	defer f.Close()

	symbols := make([]contracts.TickerSymbol, 0)
	scanner := bufio.NewScanner(f)
	first := true
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if first {
			first = false
			if line == SnapshotHeader {
				continue
			}
		}
		if line != "" {
			symbols = append(symbols, contracts.TickerSymbol(line))
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, &contracts.PersistenceError{Op: "read snapshot", Path: path, Err: err}
	}
	return symbols, nil
}

// Latest returns the newest snapshot path and its symbols; "" when none exist
func (s *Store) Latest() (string, []contracts.TickerSymbol, error) {
	files, err := s.Snapshots()
	if err != nil || len(files) == 0 {
		return "", nil, err
	}

	path := files[len(files)-1]
	symbols, err := s.ReadSnapshot(path)
	if err != nil {
		return "", nil, err
	}
	return path, symbols, nil
}
