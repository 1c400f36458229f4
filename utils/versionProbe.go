package utils

import (
	"context"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"time"
)

var versionMarker = regexp.MustCompile(`data-client-version="(\d+)"`)

// ProbeClientVersion fetches an HTML page and extracts the embedded client
// version integer. Any failure resolves to -1; the probe is best-effort only.
func ProbeClientVersion(ctx context.Context, pageURL string) int {
	if pageURL == "" {
		return -1
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return -1
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return -1
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return -1
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return -1
	}
	m := versionMarker.FindSubmatch(body)
	if m == nil {
		return -1
	}
	v, err := strconv.Atoi(string(m[1]))
	if err != nil {
		return -1
	}
	return v
}
