package dataset

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/paulmach/orb/geojson"
	"github.com/valegio/MapaRelaveCL/internal/metrics"
	"golang.org/x/sync/errgroup"
)

const defaultDownloadTimeout = 5 * time.Minute

// HTTPClient performs dataset downloads.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Loader fetches reference datasets into a local cache directory and decodes them.
type Loader struct {
	dir     string
	files   map[Name]File
	order   []Name
	client  HTTPClient
	log     *slog.Logger
	metrics *metrics.Metrics
}

// NewLoader creates a loader storing files under dir. A nil client uses an http.Client with a
// generous timeout; m may be nil.
func NewLoader(dir string, files []File, client HTTPClient, log *slog.Logger, m *metrics.Metrics) *Loader {
	if client == nil {
		client = &http.Client{Timeout: defaultDownloadTimeout}
	}

	l := &Loader{
		dir:     dir,
		files:   make(map[Name]File, len(files)),
		client:  client,
		log:     log,
		metrics: m,
	}
	for _, f := range files {
		l.files[f.Name] = f
		l.order = append(l.order, f.Name)
	}

	return l
}

// File returns the description of a dataset.
func (l *Loader) File(name Name) (File, error) {
	f, ok := l.files[name]
	if !ok {
		return File{}, fmt.Errorf("%w: %q", ErrUnknownDataset, name)
	}

	return f, nil
}

// Path returns the local cache path of a dataset.
func (l *Loader) Path(name Name) (string, error) {
	f, err := l.File(name)
	if err != nil {
		return "", err
	}

	return filepath.Join(l.dir, f.FileName), nil
}

// Fetch downloads every dataset that is not cached yet, concurrently.
// When force is set cached files are replaced.
func (l *Loader) Fetch(ctx context.Context, force bool) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, name := range l.order {
		g.Go(func() error {
			return l.ensure(gctx, name, force)
		})
	}

	return g.Wait()
}

// Load returns the decoded dataset, downloading it on first use.
func (l *Loader) Load(ctx context.Context, name Name) (*geojson.FeatureCollection, error) {
	if err := l.ensure(ctx, name, false); err != nil {
		return nil, err
	}

	path, err := l.Path(name)
	if err != nil {
		return nil, err
	}

	fc, err := Decode(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load dataset %s: %w", name, err)
	}
	l.log.DebugContext(ctx, "Dataset loaded", "dataset", name, "path", path, "features", len(fc.Features))

	return fc, nil
}

func (l *Loader) ensure(ctx context.Context, name Name, force bool) error {
	path, err := l.Path(name)
	if err != nil {
		return err
	}

	if !force {
		_, err = os.Stat(path)
		if err == nil {
			return nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to stat dataset %s: %w", name, err)
		}
	}

	f := l.files[name]
	l.log.InfoContext(ctx, "Downloading dataset", "dataset", name, "url", f.URL)

	if err = l.download(ctx, f.URL, path); err != nil {
		l.observe(name, "error")
		return fmt.Errorf("failed to download dataset %s: %w", name, err)
	}
	l.observe(name, "ok")

	return nil
}

// download writes the response body to a temporary file and renames it into place, so a
// failed transfer never leaves a truncated dataset behind.
func (l *Loader) download(ctx context.Context, url, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download returned status %d", resp.StatusCode)
	}

	if err = os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("failed to create cache dir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dest), filepath.Base(dest)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err = io.Copy(tmp, resp.Body); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err = os.Rename(tmp.Name(), dest); err != nil {
		return fmt.Errorf("failed to move dataset into place: %w", err)
	}

	return nil
}

func (l *Loader) observe(name Name, status string) {
	if l.metrics != nil {
		l.metrics.DatasetDownloads.WithLabelValues(string(name), status).Inc()
	}
}
