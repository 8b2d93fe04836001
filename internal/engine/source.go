package engine

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/sha3"
	"golang.org/x/sync/singleflight"

	"github.com/nao1215/a11yscan/internal/fsutil"
)

// maxScriptSize bounds a downloaded axe-core script.
const maxScriptSize = 10 * 1024 * 1024 // 10 MB

// defaultFetchTimeout bounds the download of a remote script.
const defaultFetchTimeout = 60 * time.Second

// ScriptLoader loads the axe-core script from a file path or an http(s) URL.
// Remote scripts are cached in a directory and reused across processes.
// The script is read once per loader; concurrent first calls share one load.
type ScriptLoader struct {
	location string
	cacheDir string
	client   *http.Client
	logger   *slog.Logger

	group singleflight.Group

	mu     sync.Mutex
	script string
}

// LoaderOption configures a ScriptLoader.
type LoaderOption func(*ScriptLoader)

// WithCacheDir sets where remote scripts are cached. Empty disables the cache.
func WithCacheDir(dir string) LoaderOption {
	return func(l *ScriptLoader) {
		l.cacheDir = dir
	}
}

// WithHTTPClient sets the client used for remote scripts.
func WithHTTPClient(client *http.Client) LoaderOption {
	return func(l *ScriptLoader) {
		if client != nil {
			l.client = client
		}
	}
}

// WithLoaderLogger sets the logger.
func WithLoaderLogger(logger *slog.Logger) LoaderOption {
	return func(l *ScriptLoader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// NewScriptLoader creates a loader for location.
func NewScriptLoader(location string, opts ...LoaderOption) *ScriptLoader {
	l := &ScriptLoader{
		location: location,
		client:   &http.Client{Timeout: defaultFetchTimeout},
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Script returns the script text.
func (l *ScriptLoader) Script(ctx context.Context) (string, error) {
	l.mu.Lock()
	script := l.script
	l.mu.Unlock()
	if script != "" {
		return script, nil
	}

	v, err, _ := l.group.Do(l.location, func() (any, error) {
		s, err := l.load(ctx)
		if err != nil {
			return "", err
		}
		l.mu.Lock()
		l.script = s
		l.mu.Unlock()
		return s, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (l *ScriptLoader) load(ctx context.Context) (string, error) {
	if !isRemote(l.location) {
		data, err := os.ReadFile(l.location)
		if err != nil {
			return "", fmt.Errorf("failed to read axe-core script: %w", err)
		}
		return nonEmpty(string(data), l.location)
	}

	cachePath := l.cachePath()
	if cachePath != "" {
		if data, err := os.ReadFile(cachePath); err == nil && len(data) > 0 {
			l.logger.Debug("axe-core loaded from cache", "path", cachePath)
			return string(data), nil
		}
	}

	data, err := l.fetch(ctx)
	if err != nil {
		return "", err
	}

	if cachePath != "" {
		if err := fsutil.WriteAtomic(cachePath, data); err != nil {
			l.logger.Warn("failed to cache axe-core", "path", cachePath, "error", err)
		}
	}
	return nonEmpty(string(data), l.location)
}

func (l *ScriptLoader) fetch(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.location, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid axe-core URL: %w", err)
	}

	l.logger.Info("downloading axe-core", "url", l.location)
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download axe-core: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download axe-core: unexpected status %s", resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxScriptSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read axe-core: %w", err)
	}
	if len(data) > maxScriptSize {
		return nil, fmt.Errorf("axe-core script exceeds %d bytes", maxScriptSize)
	}
	return data, nil
}

// cachePath names the cache file after a digest of the URL, so a different
// pinned version never reuses a stale file.
func (l *ScriptLoader) cachePath() string {
	if l.cacheDir == "" {
		return ""
	}
	sum := sha3.Sum256([]byte(l.location))
	return filepath.Join(l.cacheDir, hex.EncodeToString(sum[:16])+".js")
}

func isRemote(location string) bool {
	return strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://")
}

func nonEmpty(script, location string) (string, error) {
	if strings.TrimSpace(script) == "" {
		return "", errors.New("axe-core script is empty: " + location)
	}
	return script, nil
}
