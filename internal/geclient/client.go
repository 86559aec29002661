package geclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"GEWatch/internal/model"
)

// ErrNotFound is returned by ResolveID when no catalog entry matches
// the requested name, or when the catalog could not be fetched at all.
var ErrNotFound = errors.New("item not found")

// DefaultBaseURL points at the public OSRS price index.
const DefaultBaseURL = "https://prices.runescape.wiki/api/v1/osrs"

// Client talks to the price-index API: name resolution via the full
// item mapping, and batched latest prices by id. It holds no item
// state between calls.
type Client struct {
	BaseURL   string
	UserAgent string
	HTTP      *http.Client
}

// New creates a Client. The index asks for a descriptive User-Agent;
// the timeout applies to every request (the upstream publishes none,
// 10s is this package's documented default).
func New(baseURL, userAgent string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		BaseURL:   baseURL,
		UserAgent: userAgent,
		HTTP:      &http.Client{Timeout: timeout},
	}
}

// FetchCatalog returns the full item mapping.
func (c *Client) FetchCatalog(ctx context.Context) ([]model.CatalogEntry, error) {
	var entries []model.CatalogEntry
	if err := c.getJSON(ctx, c.BaseURL+"/mapping", &entries); err != nil {
		return nil, fmt.Errorf("fetch catalog: %w", err)
	}
	return entries, nil
}

// ResolveID returns the id whose catalog name matches case-insensitively.
// Both "no such name" and a failed catalog fetch yield ErrNotFound; the
// caller's refresh interval is the de facto retry.
func (c *Client) ResolveID(ctx context.Context, name string) (int, error) {
	entries, err := c.FetchCatalog(ctx)
	if err != nil {
		return 0, ErrNotFound
	}
	for _, e := range entries {
		if strings.EqualFold(e.Name, name) {
			return e.ID, nil
		}
	}
	return 0, ErrNotFound
}

// latestResponse is the JSON shape of the /latest endpoint. Prices are
// pointers because the index reports null for sides it has never
// observed.
type latestResponse struct {
	Data map[string]struct {
		High     *float64 `json:"high"`
		HighTime int64    `json:"highTime"`
		Low      *float64 `json:"low"`
		LowTime  int64    `json:"lowTime"`
	} `json:"data"`
}

// FetchLatest fetches the latest price snapshot in a single request and
// returns quotes for the requested ids. Ids missing from the response
// (or with a null side) are omitted from the result; the caller treats
// that as "no data this cycle", not as an error.
func (c *Client) FetchLatest(ctx context.Context, ids []int) (map[int]model.Quote, error) {
	var resp latestResponse
	if err := c.getJSON(ctx, c.BaseURL+"/latest", &resp); err != nil {
		return nil, fmt.Errorf("fetch latest: %w", err)
	}

	quotes := make(map[int]model.Quote, len(ids))
	for _, id := range ids {
		entry, ok := resp.Data[strconv.Itoa(id)]
		if !ok || entry.High == nil || entry.Low == nil {
			continue
		}
		quotes[id] = model.Quote{
			High:     *entry.High,
			Low:      *entry.Low,
			HighTime: time.Unix(entry.HighTime, 0),
			LowTime:  time.Unix(entry.LowTime, 0),
		}
	}
	return quotes, nil
}

func (c *Client) getJSON(ctx context.Context, url string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("get %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("get %s: status %d", url, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", url, err)
	}
	return nil
}
