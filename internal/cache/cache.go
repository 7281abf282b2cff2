// Package cache keeps downloaded source archives and the pipeline run
// journal between invocations.
//
// Archives are large and immutable for a given URL, so the cache stores:
//
//  1. Metadata per URL (file name, size, SHA256) in BoltDB
//  2. The archive itself under artifacts/<key>/<file name>
//  3. A journal of pipeline runs in a second BoltDB bucket
//
// A restored archive is re-hashed and rejected if it no longer matches the
// recorded digest.
package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"
)

const (
	// DefaultCacheDir is the default cache directory name
	DefaultCacheDir = ".hdf5pkg-cache"

	// archivesBucket is the BoltDB bucket name for downloaded archives
	archivesBucket = "archives"

	// runsBucket is the BoltDB bucket name for the pipeline journal
	runsBucket = "runs"
)

// Cache manages downloaded archives and run metadata using BoltDB
type Cache struct {
	db   *bbolt.DB
	root string // Root directory for cache (.hdf5pkg-cache/)
}

// New creates a new cache instance
// If cacheDir is empty, uses DefaultCacheDir in current working directory
func New(cacheDir string) (*Cache, error) {
	if cacheDir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}

		cacheDir = filepath.Join(cwd, DefaultCacheDir)
	}

	// Ensure cache directory exists
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	// Open BoltDB
	dbPath := filepath.Join(cacheDir, "cache.db")
	db, err := bbolt.Open(dbPath, 0o600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}

	// Create buckets if they don't exist
	err = db.Update(func(tx *bbolt.Tx) error {
		for _, name := range []string{archivesBucket, runsBucket} {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create cache buckets: %w", err)
	}

	return &Cache{
		db:   db,
		root: cacheDir,
	}, nil
}

// Close closes the cache database
func (c *Cache) Close() error {
	if c.db != nil {
		return c.db.Close()
	}

	return nil
}

// Root returns the cache directory
func (c *Cache) Root() string {
	return c.root
}

// Get retrieves the cache entry for a download URL
// Returns nil if cache miss
func (c *Cache) Get(url string) (*Entry, error) {
	key := HashKey(url)

	var entry Entry
	err := c.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(archivesBucket))

		data := b.Get([]byte(key))
		if data == nil {
			return nil // Cache miss
		}

		return json.Unmarshal(data, &entry)
	})
	if err != nil {
		return nil, err
	}

	if entry.Key == "" {
		return nil, nil // Cache miss
	}

	// An entry whose file disappeared is a miss
	if _, err := os.Stat(c.artifactPath(&entry)); err != nil {
		return nil, nil
	}

	return &entry, nil
}

// Store records a downloaded archive and copies it into the cache
func (c *Cache) Store(url, archivePath string) (*Entry, error) {
	digest, err := HashFile(archivePath)
	if err != nil {
		return nil, fmt.Errorf("failed to hash archive: %w", err)
	}

	info, err := os.Stat(archivePath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat archive: %w", err)
	}

	entry := Entry{
		Key:       HashKey(url),
		URL:       url,
		FileName:  filepath.Base(archivePath),
		SHA256:    digest,
		Size:      info.Size(),
		Timestamp: time.Now(),
	}

	// Copy first so a stored entry always has its file
	if err := CopyArtifact(archivePath, c.artifactPath(&entry)); err != nil {
		return nil, fmt.Errorf("failed to copy archive to cache: %w", err)
	}

	err = c.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(archivesBucket))

		data, err := json.Marshal(entry)
		if err != nil {
			return err
		}

		return b.Put([]byte(entry.Key), data)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to store cache entry: %w", err)
	}

	return &entry, nil
}

// Restore copies a cached archive to destPath after verifying its digest
func (c *Cache) Restore(entry *Entry, destPath string) error {
	src := c.artifactPath(entry)

	digest, err := HashFile(src)
	if err != nil {
		return fmt.Errorf("failed to hash cached archive: %w", err)
	}

	if digest != entry.SHA256 {
		return fmt.Errorf("cached archive %s is corrupt (sha256 %s, expected %s)", entry.FileName, digest, entry.SHA256)
	}

	return RestoreArtifact(src, destPath)
}

// Clear removes all archive entries and artifacts. The run journal is kept.
func (c *Cache) Clear() error {
	// Clear BoltDB
	err := c.db.Update(func(tx *bbolt.Tx) error {
		return tx.DeleteBucket([]byte(archivesBucket))
	})
	if err != nil {
		return err
	}

	// Recreate bucket
	err = c.db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucket([]byte(archivesBucket))
		return err
	})
	if err != nil {
		return err
	}

	// Remove artifacts directory
	artifactsDir := filepath.Join(c.root, "artifacts")
	if err := os.RemoveAll(artifactsDir); err != nil {
		return fmt.Errorf("failed to remove artifacts: %w", err)
	}

	return nil
}

// Stats returns the number of cached archives and their total size
func (c *Cache) Stats() (int, int64, error) {
	var count int
	var totalSize int64

	err := c.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(archivesBucket))

		return b.ForEach(func(_, v []byte) error {
			var entry Entry
			if err := json.Unmarshal(v, &entry); err != nil {
				return err
			}

			count++
			totalSize += entry.Size

			return nil
		})
	})
	if err != nil {
		return 0, 0, err
	}

	return count, totalSize, nil
}

// artifactPath returns the file path for a given cache entry
func (c *Cache) artifactPath(entry *Entry) string {
	return filepath.Join(c.root, "artifacts", entry.Key, entry.FileName)
}
