package speech

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

const cacheLang = "zh-CN"

// Cache stores synthesized clips on disk, keyed by a hash of language and text.
type Cache struct {
	dir string
}

// NewCache creates the cache directory if needed.
func NewCache(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create speech cache dir: %w", err)
	}
	return &Cache{dir: dir}, nil
}

// Get returns a cached clip for text in any format.
func (c *Cache) Get(text string) (*Audio, bool) {
	for _, format := range []Format{FormatWAV, FormatMP3} {
		data, err := os.ReadFile(c.path(text, format))
		if err != nil {
			continue
		}
		return &Audio{Text: text, Data: data, Format: format}, true
	}
	return nil, false
}

// Put writes the clip atomically so concurrent readers never see a partial file.
func (c *Cache) Put(audio *Audio) error {
	path := c.path(audio.Text, audio.Format)

	tmp, err := os.CreateTemp(c.dir, "speech-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err = tmp.Write(audio.Data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename cached clip: %w", err)
	}
	return nil
}

// Remove deletes every cached clip for text.
func (c *Cache) Remove(text string) error {
	var errs []error
	for _, format := range []Format{FormatWAV, FormatMP3} {
		if err := os.Remove(c.path(text, format)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (c *Cache) path(text string, format Format) string {
	sum := sha256.Sum256([]byte(cacheLang + ":" + text))
	return filepath.Join(c.dir, hex.EncodeToString(sum[:])+"."+string(format))
}
