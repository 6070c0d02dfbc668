package fragment

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/kattalitextile/sitekit/internal/errors"
)

// Source obtains raw markup for a page id.
type Source interface {
	Fetch(ctx context.Context, pageID string) (string, error)
}

// pageIDPattern restricts page ids to what the route table can produce. This
// keeps ids safe to splice into URLs and file paths.
var pageIDPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*$`)

// ValidatePageID rejects page ids that could escape the partials namespace.
func ValidatePageID(pageID string) error {
	if !pageIDPattern.MatchString(pageID) {
		return errors.NewFetchError("E_PAGE_ID", fmt.Sprintf("invalid page id %q", pageID), nil)
	}

	return nil
}

// HTTPSource fetches fragments from {base}/partials/{pageID}.html.
type HTTPSource struct {
	base   string
	client *http.Client
}

// NewHTTPSource creates an HTTP fragment source rooted at base. The fetch has
// no deadline of its own; callers bound it through the context.
func NewHTTPSource(base string, client *http.Client) *HTTPSource {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}

	return &HTTPSource{
		base:   strings.TrimRight(base, "/"),
		client: client,
	}
}

// Fetch retrieves the fragment over HTTP. A non-2xx status is a failure.
func (s *HTTPSource) Fetch(ctx context.Context, pageID string) (string, error) {
	if err := ValidatePageID(pageID); err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/partials/%s.html", s.base, pageID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", errors.NewInternalError("E_REQUEST", "building fragment request", err).WithPage(pageID)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return "", errors.NewFetchError("E_NETWORK", "fragment fetch failed", err).WithPage(pageID)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", errors.NewFetchError("E_STATUS",
			fmt.Sprintf("fragment fetch returned status %d", resp.StatusCode), nil).WithPage(pageID)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.NewFetchError("E_BODY", "reading fragment body", err).WithPage(pageID)
	}

	return string(body), nil
}

// DirSource reads fragments from {dir}/{pageID}.html on disk. Used by the dev
// server process, which owns the partials directory.
type DirSource struct {
	dir string
}

// NewDirSource creates a filesystem fragment source.
func NewDirSource(dir string) *DirSource {
	return &DirSource{dir: dir}
}

// Fetch reads the fragment file for a page id.
func (s *DirSource) Fetch(ctx context.Context, pageID string) (string, error) {
	if err := ValidatePageID(pageID); err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	path := filepath.Join(s.dir, pageID+".html")

	data, err := os.ReadFile(path)
	if err != nil {
		return "", errors.NewFetchError("E_READ", "reading fragment file", err).WithPage(pageID)
	}

	return string(data), nil
}
