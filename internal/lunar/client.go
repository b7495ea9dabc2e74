package lunar

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Client scrapes moon data from an external page. When the page is
// unreachable or unparseable, callers fall back to Compute.
type Client struct {
	sourceURL string
	http      *http.Client
	logger    *zap.Logger
}

// NewClient creates a lunar client for the given source page.
func NewClient(sourceURL string, timeout time.Duration, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		sourceURL: sourceURL,
		http:      &http.Client{Timeout: timeout},
		logger:    logger,
	}
}

var (
	rePhase    = regexp.MustCompile(`(?i)Phase de la lune\s*:\s*([^<]+)`)
	reIllum    = regexp.MustCompile(`(?i)Illumination\s*:\s*(\d+)\s*%`)
	reDistance = regexp.MustCompile(`(?i)Distance à la terre\s*:\s*([\d\s]+)\s*km`)
	reFullMoon = regexp.MustCompile(`(?i)Prochaine pleine lune\s*:\s*(\d+)\s*jours`)
)

// Fetch retrieves and parses current moon data from the source page.
func (c *Client) Fetch(ctx context.Context) (*Info, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.sourceURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch lunar page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("lunar page returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 2<<20))
	if err != nil {
		return nil, fmt.Errorf("read lunar page: %w", err)
	}
	return parsePage(string(body))
}

func parsePage(html string) (*Info, error) {
	m := rePhase.FindStringSubmatch(html)
	if m == nil {
		return nil, fmt.Errorf("phase not found in lunar page")
	}
	info := &Info{Phase: strings.TrimSpace(m[1]), ImageURL: moonImageURL}

	if m := reIllum.FindStringSubmatch(html); m != nil {
		info.Illumination, _ = strconv.Atoi(m[1])
	}
	if m := reDistance.FindStringSubmatch(html); m != nil {
		info.Distance = strings.ReplaceAll(strings.TrimSpace(m[1]), " ", "")
	}
	if m := reFullMoon.FindStringSubmatch(html); m != nil {
		if days, err := strconv.Atoi(m[1]); err == nil {
			info.NextFullMoon = &days
		}
	}
	return info, nil
}
