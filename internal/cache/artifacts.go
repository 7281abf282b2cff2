package cache

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// CopyArtifact copies a downloaded file into the cache
func CopyArtifact(src, dst string) error {
	if err := copyFile(src, dst); err != nil {
		return fmt.Errorf("failed to copy %s: %w", filepath.Base(src), err)
	}

	return nil
}

// RestoreArtifact copies a cached file back to the working directory
func RestoreArtifact(src, dst string) error {
	if err := copyFile(src, dst); err != nil {
		return fmt.Errorf("failed to restore %s: %w", filepath.Base(src), err)
	}

	return nil
}

// copyFile copies a file from src to dst
func copyFile(src, dst string) error {
	srcFile, err := os.Open(src)
	if err != nil {
		return err
	}

	defer srcFile.Close()

	// Create parent directory if needed
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}

	dstFile, err := os.Create(dst)
	if err != nil {
		return err
	}

	defer dstFile.Close()

	if _, err := io.Copy(dstFile, srcFile); err != nil {
		return err
	}

	// Preserve file permissions
	srcInfo, err := os.Stat(src)
	if err != nil {
		return err
	}

	return os.Chmod(dst, srcInfo.Mode())
}
