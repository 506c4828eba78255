// Package storage is the proof-screenshot blob store: objects are immutable
// files under a local root, addressed as `{user_id}/{filename}` and exposed
// to clients only through time-limited HMAC signed URLs.
package storage

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	ErrObjectExists = errors.New("object already exists")
	ErrInvalidPath  = errors.New("invalid object path")
	ErrNotFound     = errors.New("object not found")
	ErrBadSignature = errors.New("invalid or expired signature")
)

// AllowedContentTypes for proof uploads, keyed to the extension written.
var AllowedContentTypes = map[string]string{
	"image/png":  "png",
	"image/jpeg": "jpg",
	"image/webp": "webp",
}

type ObjectInfo struct {
	Name string    `json:"name"`
	Size int64     `json:"size"`
	Mod  time.Time `json:"updated_at"`
}

// Store is a filesystem-backed blob store. Signed URLs are optionally cached
// in Redis for their remaining lifetime so repeated page renders do not
// re-sign the same path.
type Store struct {
	root   string
	secret []byte
	ttl    time.Duration
	cache  *redis.Client
}

func New(root, secret string, ttl time.Duration, cache *redis.Client) (*Store, error) {
	if secret == "" {
		return nil, errors.New("storage: signing secret is required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("storage: create root: %w", err)
	}
	return &Store{root: root, secret: []byte(secret), ttl: ttl, cache: cache}, nil
}

// Upload writes an immutable object. Overwrites are refused (upsert=false in
// the store contract), so concurrent writers can never clobber each other.
func (s *Store) Upload(path string, data []byte, contentType string) (string, error) {
	if _, ok := AllowedContentTypes[contentType]; !ok {
		return "", fmt.Errorf("%w: content type %q", ErrInvalidPath, contentType)
	}
	full, err := s.resolve(path)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("storage: mkdir: %w", err)
	}

	f, err := os.OpenFile(full, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return "", ErrObjectExists
		}
		return "", fmt.Errorf("storage: create: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(data); err != nil {
		os.Remove(full)
		return "", fmt.Errorf("storage: write: %w", err)
	}
	return path, nil
}

// List returns objects under the given prefix (typically a user id).
func (s *Store) List(prefix string) ([]ObjectInfo, error) {
	dir, err := s.resolve(prefix)
	if err != nil {
		return nil, err
	}

	var out []ObjectInfo
	err = filepath.Walk(dir, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if info.IsDir() {
			return nil
		}
		rel, relErr := filepath.Rel(s.root, p)
		if relErr != nil {
			return relErr
		}
		out = append(out, ObjectInfo{
			Name: filepath.ToSlash(rel),
			Size: info.Size(),
			Mod:  info.ModTime(),
		})
		return nil
	})
	if err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	return out, nil
}

// FilePath resolves an object path for serving, verifying the file exists.
func (s *Store) FilePath(path string) (string, error) {
	full, err := s.resolve(path)
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(full); err != nil {
		if os.IsNotExist(err) {
			return "", ErrNotFound
		}
		return "", err
	}
	return full, nil
}

// CreateSignedURL returns a relative URL valid for the store's TTL.
func (s *Store) CreateSignedURL(ctx context.Context, path string) (string, error) {
	if _, err := s.FilePath(path); err != nil {
		return "", err
	}

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey(path)).Result(); err == nil && cached != "" {
			return cached, nil
		}
	}

	exp := time.Now().Add(s.ttl).Unix()
	url := fmt.Sprintf("/proofs/%s?exp=%d&sig=%s", path, exp, s.sign(path, exp))

	if s.cache != nil {
		// Keep the cache entry shorter than the signature lifetime so a
		// cached URL is never handed out already expired.
		cacheTTL := s.ttl - time.Minute
		if cacheTTL > 0 {
			s.cache.Set(ctx, cacheKey(path), url, cacheTTL)
		}
	}
	return url, nil
}

// Verify checks a signed URL's signature and expiry.
func (s *Store) Verify(path string, exp int64, sig string) error {
	if time.Now().Unix() > exp {
		return ErrBadSignature
	}
	expected := s.sign(path, exp)
	if !hmac.Equal([]byte(expected), []byte(sig)) {
		return ErrBadSignature
	}
	return nil
}

func (s *Store) sign(path string, exp int64) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(path))
	mac.Write([]byte{'\n'})
	mac.Write([]byte(strconv.FormatInt(exp, 10)))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

// resolve maps an object path to a filesystem path, rejecting traversal.
func (s *Store) resolve(path string) (string, error) {
	path = strings.TrimPrefix(path, "/")
	if path == "" || strings.Contains(path, "..") || strings.Contains(path, "\\") {
		return "", ErrInvalidPath
	}
	full := filepath.Join(s.root, filepath.FromSlash(path))
	if !strings.HasPrefix(full, filepath.Clean(s.root)+string(os.PathSeparator)) {
		return "", ErrInvalidPath
	}
	return full, nil
}

func cacheKey(path string) string {
	return "proofurl:" + path
}
