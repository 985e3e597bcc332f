package acquire

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dailybulletin/bulletin/pkg/bulletin/models"
)

// URLFetcher downloads documents over HTTP. A "{date}" placeholder in a URL
// is replaced by the week's YYYYMMDD start date.
type URLFetcher struct {
	Client *http.Client
	URLs   map[Kind]string
}

// NewURLFetcher returns a fetcher with a bounded client timeout.
func NewURLFetcher(urls map[Kind]string) *URLFetcher {
	return &URLFetcher{
		Client: &http.Client{Timeout: 60 * time.Second},
		URLs:   urls,
	}
}

// Fetch implements Fetcher.
func (f *URLFetcher) Fetch(ctx context.Context, kind Kind, week models.Date, dest string) error {
	raw, ok := f.URLs[kind]
	if !ok || raw == "" {
		return fmt.Errorf("no URL configured for %s", kind)
	}
	url := strings.ReplaceAll(raw, "{date}", week.Compact())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: %s", url, resp.Status)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dest), "."+filepath.Base(dest)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), dest)
}
