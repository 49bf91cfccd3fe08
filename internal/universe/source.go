package universe

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/wonny/schloss/internal/contracts"
	"github.com/wonny/schloss/pkg/logger"
)

// Source produces the working universe of symbols
// ⭐ SSOT: 티커 유니버스 로드는 여기서만
type Source struct {
	cachePath string
	providers []contracts.IndexProvider
	logger    *logger.Logger
}

// NewSource creates a Source backed by cachePath and the given providers
func NewSource(cachePath string, providers []contracts.IndexProvider, log *logger.Logger) *Source {
	return &Source{
		cachePath: cachePath,
		providers: providers,
		logger:    log,
	}
}

// Load returns the cached list verbatim when the cache exists, otherwise
// builds it from the providers. Failures degrade to an empty universe.
func (s *Source) Load(ctx context.Context) ([]contracts.TickerSymbol, error) {
	symbols, err := readCache(s.cachePath)
	if err == nil {
		s.logger.WithFields(map[string]interface{}{
			"path":  s.cachePath,
			"count": len(symbols),
		}).Infof("Loaded %d tickers from %s", len(symbols), s.cachePath)
		return symbols, nil
	}

	if !errors.Is(err, os.ErrNotExist) {
		s.logger.WithError(err).WithField("path", s.cachePath).Error("Error loading tickers")
		return nil, nil
	}

	s.logger.Infof("%s not found. Generating ticker list...", s.cachePath)
	return s.Refresh(ctx)
}

// Refresh ignores the cache, unions every provider and rewrites the cache.
// Any provider or write failure is logged and yields an empty universe.
func (s *Source) Refresh(ctx context.Context) ([]contracts.TickerSymbol, error) {
	lists := make([][]contracts.TickerSymbol, 0, len(s.providers))

	for _, p := range s.providers {
		list, err := p.Constituents(ctx)
		if err != nil {
			s.logger.WithError(err).WithField("index", p.Name()).Error("Error generating ticker list")
			return nil, nil
		}
		lists = append(lists, list)
	}

	symbols := contracts.UnionSymbols(lists...)

	if err := writeCache(s.cachePath, symbols); err != nil {
		s.logger.WithError(err).WithField("path", s.cachePath).Error("Error generating ticker list")
		return nil, nil
	}

	s.logger.WithFields(map[string]interface{}{
		"path":      s.cachePath,
		"count":     len(symbols),
		"providers": len(s.providers),
	}).Infof("Generated and saved %d tickers to %s", len(symbols), s.cachePath)
	return symbols, nil
}

// readCache reads one symbol per line, trimming and dropping blank lines.
// No validation: invalid symbols are the pipeline's concern.
func readCache(path string) ([]contracts.TickerSymbol, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var symbols []contracts.TickerSymbol
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		symbols = append(symbols, contracts.TickerSymbol(line))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return symbols, nil
}

// writeCache replaces the cache through a temp file in the same directory
func writeCache(path string, symbols []contracts.TickerSymbol) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".tickers-*")
	if err != nil {
		return fmt.Errorf("create temp cache: %w", err)
	}
	defer os.Remove(tmp.Name())

	w := bufio.NewWriter(tmp)
	for _, s := range symbols {
		w.WriteString(s.String())
		w.WriteByte('\n')
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		return fmt.Errorf("write cache: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close cache: %w", err)
	}

	return os.Rename(tmp.Name(), path)
}
