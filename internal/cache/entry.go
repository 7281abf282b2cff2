package cache

import "time"

// Entry represents a cached source archive
type Entry struct {
	// Key is the unique identifier for this cache entry, the SHA256 of the URL
	Key string `json:"key"`

	// URL the archive was downloaded from
	URL string `json:"url"`

	// FileName is the archive's base name (e.g. CMake-hdf5-1.14.2.tar.gz)
	FileName string `json:"file_name"`

	// SHA256 of the archive content
	SHA256 string `json:"sha256"`

	// Size in bytes
	Size int64 `json:"size"`

	// Timestamp when this entry was created
	Timestamp time.Time `json:"timestamp"`
}
