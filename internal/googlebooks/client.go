// Package googlebooks implements a client for the Google Books volumes API
// and maps its responses into flat book records.
package googlebooks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// API hard limit for maxResults on volume searches.
const maxResults = 40

var (
	// ErrNoAPIKey is returned when the client has no API key configured.
	ErrNoAPIKey = errors.New("google books api key is not configured")

	// ErrNotFound is returned by single-result lookups with zero matches.
	ErrNotFound = errors.New("book not found")
)

// Book is the normalized result of a volume lookup. Fields absent from the
// remote response are empty strings or zero; consumers never see nulls.
type Book struct {
	GoogleID      string  `json:"google_id"`
	Title         string  `json:"title"`
	Subtitle      string  `json:"subtitle"`
	Authors       string  `json:"authors"`
	Publisher     string  `json:"publisher"`
	PublishedDate string  `json:"published_date"`
	Description   string  `json:"description"`
	ISBN          string  `json:"isbn"`
	ISBN10        string  `json:"isbn_10"`
	ISBN13        string  `json:"isbn_13"`
	PageCount     int     `json:"page_count"`
	Categories    string  `json:"categories"`
	Language      string  `json:"language"`
	ImageURL      string  `json:"image_url"`
	ListPrice     float64 `json:"list_price"`
	PreviewLink   string  `json:"preview_link"`
	InfoLink      string  `json:"info_link"`
}

// KeyFunc supplies the API key for a request. The client consults it on
// every call, so a key stored through the settings API takes effect
// without a restart.
type KeyFunc func() string

// StaticKey returns a KeyFunc that always yields the given key.
func StaticKey(key string) KeyFunc {
	return func() string { return key }
}

// Client fetches book data from the Google Books API.
type Client struct {
	httpClient  *http.Client
	probeClient *http.Client
	baseURL     string
	keyFunc     KeyFunc
	rateLimiter *rateLimiter
}

type rateLimiter struct {
	mu       sync.Mutex
	lastCall time.Time
	interval time.Duration
}

func newRateLimiter(interval time.Duration) *rateLimiter {
	return &rateLimiter{interval: interval}
}

func (r *rateLimiter) wait() {
	r.mu.Lock()
	defer r.mu.Unlock()

	since := time.Since(r.lastCall)
	if since < r.interval {
		time.Sleep(r.interval - since)
	}
	r.lastCall = time.Now()
}

// NewClient creates a Google Books client resolving its API key through
// keyFunc. Content calls use a 30s timeout; the key probe uses a shorter
// 15s one.
func NewClient(keyFunc KeyFunc) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		probeClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		baseURL:     "https://www.googleapis.com/books/v1",
		keyFunc:     keyFunc,
		rateLimiter: newRateLimiter(time.Second),
	}
}

func (c *Client) key() string {
	if c.keyFunc == nil {
		return ""
	}
	return c.keyFunc()
}

// SearchBook looks up the single most relevant volume for a title.
// Returns ErrNotFound when the API yields no results.
func (c *Client) SearchBook(ctx context.Context, title string) (*Book, error) {
	key := c.key()
	if key == "" {
		return nil, ErrNoAPIKey
	}
	if strings.TrimSpace(title) == "" {
		return nil, fmt.Errorf("title is required")
	}

	params := url.Values{}
	params.Set("q", title)
	params.Set("key", key)
	params.Set("maxResults", "1")

	result, err := c.fetchVolumes(ctx, params)
	if err != nil {
		return nil, err
	}
	if len(result.Items) == 0 {
		return nil, ErrNotFound
	}

	book := projectVolume(&result.Items[0])
	return &book, nil
}

// Search performs a multi-result lookup ordered by relevance. Filter is one
// of "", "author" or "subject"; when set, the query is scoped to that field.
// Max is clamped to the API ceiling of 40.
func (c *Client) Search(ctx context.Context, query, filter string, max int) ([]Book, error) {
	key := c.key()
	if key == "" {
		return nil, ErrNoAPIKey
	}
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("query is required")
	}

	searchQuery := query
	if filter == "author" || filter == "subject" {
		searchQuery = "in" + filter + ":" + query
	}

	if max <= 0 || max > maxResults {
		max = maxResults
	}

	params := url.Values{}
	params.Set("q", searchQuery)
	params.Set("key", key)
	params.Set("maxResults", fmt.Sprintf("%d", max))
	params.Set("orderBy", "relevance")

	result, err := c.fetchVolumes(ctx, params)
	if err != nil {
		return nil, err
	}

	books := make([]Book, 0, len(result.Items))
	for i := range result.Items {
		books = append(books, projectVolume(&result.Items[i]))
	}
	return books, nil
}

// ByISBN looks up a volume by ISBN. Returns ErrNotFound on zero matches.
func (c *Client) ByISBN(ctx context.Context, isbn string) (*Book, error) {
	key := c.key()
	if key == "" {
		return nil, ErrNoAPIKey
	}

	isbn = strings.ReplaceAll(strings.TrimSpace(isbn), "-", "")
	if isbn == "" {
		return nil, fmt.Errorf("isbn is required")
	}

	params := url.Values{}
	params.Set("q", "isbn:"+isbn)
	params.Set("key", key)

	result, err := c.fetchVolumes(ctx, params)
	if err != nil {
		return nil, err
	}
	if len(result.Items) == 0 {
		return nil, ErrNotFound
	}

	book := projectVolume(&result.Items[0])
	return &book, nil
}

// TestKey issues a minimal lookup with the given key and reports validity
// based solely on the response status. An empty key falls back to the
// configured one.
func (c *Client) TestKey(ctx context.Context, key string) bool {
	if key == "" {
		key = c.key()
	}
	if key == "" {
		return false
	}

	params := url.Values{}
	params.Set("q", "test")
	params.Set("key", key)
	params.Set("maxResults", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/volumes?"+params.Encode(), nil)
	if err != nil {
		return false
	}

	resp, err := c.probeClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode == http.StatusOK
}

func (c *Client) fetchVolumes(ctx context.Context, params url.Values) (*volumesResponse, error) {
	c.rateLimiter.wait()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/volumes?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "Bookstock/1.0 (https://github.com/mustafahasanain/bookstock)")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch volumes: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	var result volumesResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	return &result, nil
}

// projectVolume maps a raw volume into the flat Book record: ISBN-13 is
// preferred over ISBN-10, the largest available image wins, and image links
// are upgraded to https.
func projectVolume(item *volumeItem) Book {
	info := item.VolumeInfo

	var isbn10, isbn13 string
	for _, id := range info.IndustryIdentifiers {
		switch id.Type {
		case "ISBN_10":
			isbn10 = id.Identifier
		case "ISBN_13":
			isbn13 = id.Identifier
		}
	}
	isbn := isbn13
	if isbn == "" {
		isbn = isbn10
	}

	imageURL := bestImage(info.ImageLinks)
	if imageURL != "" {
		imageURL = strings.Replace(imageURL, "http://", "https://", 1)
	}

	return Book{
		GoogleID:      item.ID,
		Title:         info.Title,
		Subtitle:      info.Subtitle,
		Authors:       strings.Join(info.Authors, ", "),
		Publisher:     info.Publisher,
		PublishedDate: info.PublishedDate,
		Description:   info.Description,
		ISBN:          isbn,
		ISBN10:        isbn10,
		ISBN13:        isbn13,
		PageCount:     info.PageCount,
		Categories:    strings.Join(info.Categories, ", "),
		Language:      info.Language,
		ImageURL:      imageURL,
		ListPrice:     item.SaleInfo.ListPrice.Amount,
		PreviewLink:   info.PreviewLink,
		InfoLink:      info.InfoLink,
	}
}

// bestImage picks the highest-fidelity image in a fixed preference order.
func bestImage(links imageLinks) string {
	switch {
	case links.Large != "":
		return links.Large
	case links.Medium != "":
		return links.Medium
	case links.Thumbnail != "":
		return links.Thumbnail
	default:
		return links.SmallThumbnail
	}
}

// Google Books API response types (internal)

type volumesResponse struct {
	TotalItems int          `json:"totalItems"`
	Items      []volumeItem `json:"items"`
}

type volumeItem struct {
	ID         string     `json:"id"`
	VolumeInfo volumeInfo `json:"volumeInfo"`
	SaleInfo   saleInfo   `json:"saleInfo"`
}

type volumeInfo struct {
	Title               string               `json:"title"`
	Subtitle            string               `json:"subtitle"`
	Authors             []string             `json:"authors"`
	Publisher           string               `json:"publisher"`
	PublishedDate       string               `json:"publishedDate"`
	Description         string               `json:"description"`
	IndustryIdentifiers []industryIdentifier `json:"industryIdentifiers"`
	PageCount           int                  `json:"pageCount"`
	Categories          []string             `json:"categories"`
	Language            string               `json:"language"`
	ImageLinks          imageLinks           `json:"imageLinks"`
	PreviewLink         string               `json:"previewLink"`
	InfoLink            string               `json:"infoLink"`
}

type industryIdentifier struct {
	Type       string `json:"type"`
	Identifier string `json:"identifier"`
}

type imageLinks struct {
	SmallThumbnail string `json:"smallThumbnail"`
	Thumbnail      string `json:"thumbnail"`
	Small          string `json:"small"`
	Medium         string `json:"medium"`
	Large          string `json:"large"`
	ExtraLarge     string `json:"extraLarge"`
}

type listPrice struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currencyCode"`
}

type saleInfo struct {
	Saleability string    `json:"saleability"`
	ListPrice   listPrice `json:"listPrice"`
}
