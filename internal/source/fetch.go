// Package source downloads and unpacks the HDF5 CMake source distribution.
package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/schollz/progressbar/v3"

	"github.com/biovault/hdf5pkg/internal/cache"
	"github.com/biovault/hdf5pkg/internal/logging"
)

// Fetcher downloads archives, going through the download cache when one is set
type Fetcher struct {
	Client  *retryablehttp.Client
	Cache   *cache.Cache
	Printer *logging.Printer
}

// NewFetcher creates a fetcher retrying failed downloads up to retries times.
// c may be nil to disable caching.
func NewFetcher(retries int, c *cache.Cache, p *logging.Printer) *Fetcher {
	if p == nil {
		p = logging.Discard()
	}

	client := retryablehttp.NewClient()
	client.RetryMax = retries
	client.Logger = nil

	return &Fetcher{Client: client, Cache: c, Printer: p}
}

// Fetch stores the content of url at dest
func (f *Fetcher) Fetch(ctx context.Context, url, dest string) error {
	if f.Cache != nil {
		restored, err := f.restore(url, dest)
		if err != nil {
			f.Printer.Warnf("%v, downloading again", err)
		}

		if restored {
			f.Printer.Infof("Using cached %s", filepath.Base(dest))
			return nil
		}
	}

	if err := f.download(ctx, url, dest); err != nil {
		return err
	}

	if f.Cache != nil {
		if _, err := f.Cache.Store(url, dest); err != nil {
			f.Printer.Warnf("failed to cache %s: %v", filepath.Base(dest), err)
		}
	}

	return nil
}

func (f *Fetcher) restore(url, dest string) (bool, error) {
	entry, err := f.Cache.Get(url)
	if err != nil || entry == nil {
		return false, err
	}

	if err := f.Cache.Restore(entry, dest); err != nil {
		return false, err
	}

	return true, nil
}

func (f *Fetcher) download(ctx context.Context, url, dest string) error {
	f.Printer.Infof("Downloading %s", url)

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := f.Client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to download %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to download %s: %s", url, resp.Status)
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	part := dest + ".part"
	out, err := os.Create(part)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", part, err)
	}

	_, err = io.Copy(io.MultiWriter(out, f.progress(resp.ContentLength, filepath.Base(dest))), resp.Body)
	if cerr := out.Close(); err == nil {
		err = cerr
	}

	if err != nil {
		os.Remove(part)
		return fmt.Errorf("failed to download %s: %w", url, err)
	}

	return os.Rename(part, dest)
}

func (f *Fetcher) progress(size int64, name string) io.Writer {
	out := f.Printer.Writer()
	if out == io.Discard {
		return out
	}

	return progressbar.NewOptions64(size,
		progressbar.OptionSetWriter(out),
		progressbar.OptionSetDescription(name),
		progressbar.OptionShowBytes(true),
		progressbar.OptionSetWidth(30),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionOnCompletion(func() { fmt.Fprintln(out) }),
	)
}
