// Package schemacache resolves schema references to local files, downloading
// http(s) schemas once into a content-addressed directory.
package schemacache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

// DefaultTimeout bounds a single schema download.
const DefaultTimeout = 30 * time.Second

// Store is a file-based implementation of domain.SchemaResolver. Entries are
// never evicted.
type Store struct {
	dir     string
	client  *http.Client
	timeout time.Duration
	log     *logrus.Logger
	group   singleflight.Group
}

// Option configures a Store.
type Option func(*Store)

// WithHTTPClient sets the client used for downloads.
func WithHTTPClient(c *http.Client) Option {
	return func(s *Store) { s.client = c }
}

// WithTimeout sets the per-download timeout.
func WithTimeout(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(log *logrus.Logger) Option {
	return func(s *Store) { s.log = log }
}

// New creates a store rooted at dir, or DefaultDir when dir is empty.
func New(dir string, opts ...Option) *Store {
	if dir == "" {
		dir = DefaultDir()
	}
	s := &Store{
		dir:     dir,
		client:  http.DefaultClient,
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = logrus.New()
		s.log.SetOutput(io.Discard)
	}
	return s
}

// DefaultDir returns the user cache location for downloaded schemas.
func DefaultDir() string {
	base, err := os.UserCacheDir()
	if err != nil {
		base = os.TempDir()
	}
	return filepath.Join(base, "dataval", "schemas")
}

// Dir returns the cache directory.
func (s *Store) Dir() string { return s.dir }

// Path returns the cache file for a schema URL: the hex SHA-256 of the URL
// followed by the URL path's extension.
func (s *Store) Path(rawURL string) string {
	sum := sha256.Sum256([]byte(rawURL))
	ext := ""
	if u, err := url.Parse(rawURL); err == nil {
		ext = path.Ext(u.Path)
	}
	return filepath.Join(s.dir, hex.EncodeToString(sum[:])+ext)
}

// IsRemote reports whether ref is an http(s) URL.
func IsRemote(ref string) bool {
	return strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://")
}

// Resolve returns a readable local path for ref. Local refs must name an
// existing regular file. Remote refs are served from the cache, fetching
// at most once per URL across concurrent callers.
func (s *Store) Resolve(ctx context.Context, ref string) (string, error) {
	if !IsRemote(ref) {
		return resolveLocal(ref)
	}

	dest := s.Path(ref)
	if isFile(dest) {
		s.log.WithFields(logrus.Fields{"url": ref, "path": dest}).Debug("schema cache hit")
		return dest, nil
	}

	_, err, _ := s.group.Do(ref, func() (any, error) {
		if isFile(dest) {
			return nil, nil
		}
		return nil, s.fetch(ctx, ref, dest)
	})
	if err != nil {
		return "", err
	}
	return dest, nil
}

func (s *Store) fetch(ctx context.Context, rawURL, dest string) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	s.log.WithField("url", rawURL).Info("fetching schema")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("fetching schema %s: %w", rawURL, err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("fetching schema %s: %w", rawURL, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetching schema %s: unexpected status %s", rawURL, resp.Status)
	}

	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("creating schema cache: %w", err)
	}
	tmp, err := os.CreateTemp(s.dir, ".fetch-*")
	if err != nil {
		return fmt.Errorf("creating schema cache entry: %w", err)
	}
	tmpName := tmp.Name()
	_, copyErr := io.Copy(tmp, resp.Body)
	closeErr := tmp.Close()
	if err := errors.Join(copyErr, closeErr); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("fetching schema %s: %w", rawURL, err)
	}
	if err := os.Rename(tmpName, dest); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("storing schema %s: %w", rawURL, err)
	}
	return nil
}

func resolveLocal(ref string) (string, error) {
	abs, err := filepath.Abs(ref)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("schema %s: %w", ref, err)
	}
	if !info.Mode().IsRegular() {
		return "", fmt.Errorf("schema %s: not a regular file", ref)
	}
	return abs, nil
}

func isFile(p string) bool {
	info, err := os.Stat(p)
	return err == nil && info.Mode().IsRegular()
}
