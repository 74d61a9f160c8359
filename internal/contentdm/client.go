package contentdm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/sethgrid/pester"

	"github.com/mrlokans/cdm-migrate/internal/compound"
	"github.com/mrlokans/cdm-migrate/internal/xmltree"
)

const (
	UserAgent = "cdm-migrate/1.0"

	// NotFoundBody is what the file endpoint answers for unknown items,
	// sometimes with a 200 status.
	NotFoundBody = "Requested item not found"
	// notFoundPeek bounds the body prefix inspected for NotFoundBody.
	notFoundPeek = 1000

	defaultTimeout         = 5 * time.Minute
	defaultDownloadTimeout = time.Hour
)

// HTTPDoer lets us use pester, http.DefaultClient or a test client
// interchangeably.
type HTTPDoer interface {
	Do(*http.Request) (*http.Response, error)
}

// Options configure a Client.
type Options struct {
	APIURL          string
	FileURL         string
	Timeout         time.Duration
	DownloadTimeout time.Duration
	Attempts        int
	Verbose         bool
}

// Client talks to the CONTENTdm web services API and file endpoint.
type Client struct {
	apiURL  string
	fileURL string
	// api serves metadata requests, files serves binary downloads; they
	// differ only in timeout.
	api     HTTPDoer
	files   HTTPDoer
	verbose bool
}

// NewClient creates a client backed by pester.
func NewClient(opts Options) *Client {
	return NewClientDoer(opts,
		newPester(opts.Timeout, defaultTimeout, opts.Attempts),
		newPester(opts.DownloadTimeout, defaultDownloadTimeout, opts.Attempts))
}

// NewClientDoer creates a client with user supplied HTTP doers for metadata
// and file requests.
func NewClientDoer(opts Options, api, files HTTPDoer) *Client {
	return &Client{
		apiURL:  opts.APIURL,
		fileURL: opts.FileURL,
		api:     api,
		files:   files,
		verbose: opts.Verbose,
	}
}

func newPester(timeout, fallback time.Duration, attempts int) *pester.Client {
	if timeout <= 0 {
		timeout = fallback
	}
	if attempts < 1 {
		attempts = 1
	}
	c := pester.New()
	c.Timeout = timeout
	c.MaxRetries = attempts
	c.Backoff = pester.ExponentialBackoff
	return c
}

// CleanAlias strips the leading slash dmQuery puts in front of aliases.
func CleanAlias(alias string) string {
	return strings.TrimPrefix(alias, "/")
}

// QueryResult is the decoded answer of dmQuery.
type QueryResult struct {
	Pager   Pager         `json:"pager"`
	Records []QueryRecord `json:"records"`
}

type Pager struct {
	Start   flexInt `json:"start"`
	MaxRecs flexInt `json:"maxrecs"`
	Total   flexInt `json:"total"`
}

type QueryRecord struct {
	Collection string  `json:"collection"`
	Pointer    flexInt `json:"pointer"`
	Filetype   string  `json:"filetype"`
}

// Alias returns the record's collection alias without the leading slash.
func (r QueryRecord) Alias() string {
	return CleanAlias(r.Collection)
}

// ID returns the record pointer.
func (r QueryRecord) ID() int {
	return int(r.Pointer)
}

// TotalRecords returns the collection size reported by the pager.
func (q *QueryResult) TotalRecords() int {
	return int(q.Pager.Total)
}

// flexInt accepts both JSON numbers and numeric strings, the API uses both.
type flexInt int

func (f *flexInt) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("invalid integer %s: %w", b, err)
	}
	*f = flexInt(n)
	return nil
}

// apiErrorDoc is the error shape returned by the JSON endpoints.
type apiErrorDoc struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (c *Client) endpoint(parts ...string) string {
	return c.apiURL + strings.Join(parts, "/")
}

func (c *Client) get(ctx context.Context, doer HTTPDoer, link string) (*http.Response, error) {
	if c.verbose {
		log.Println(link)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", UserAgent)

	resp, err := doer.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request %s failed: %w", link, wrapTimeout(err))
	}
	return resp, nil
}

// fetch performs a metadata request and returns the full body.
func (c *Client) fetch(ctx context.Context, link string) ([]byte, error) {
	resp, err := c.get(ctx, c.api, link)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{StatusCode: resp.StatusCode, URL: link}
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", wrapTimeout(err))
	}
	return body, nil
}

// Query lists up to maxrecs records of a collection, starting at start,
// sorted by creation date and record number.
func (c *Client) Query(ctx context.Context, alias string, start, maxrecs int) (*QueryResult, error) {
	link := c.endpoint("dmQuery", alias, "0", "dmcreated", "dmcreated!dmrecord",
		strconv.Itoa(maxrecs), strconv.Itoa(start), "0", "0", "0", "json")

	body, err := c.fetch(ctx, link)
	if err != nil {
		return nil, err
	}

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, ErrEmptyResponse
	}

	var doc apiErrorDoc
	if err := json.Unmarshal(trimmed, &doc); err == nil && doc.Code != "" && doc.Code != "0" {
		return nil, &APIError{Code: doc.Code, Message: doc.Message}
	}

	var result QueryResult
	if err := json.Unmarshal(trimmed, &result); err != nil {
		return nil, fmt.Errorf("failed to decode query response: %w", err)
	}
	return &result, nil
}

// CountRecords runs the preliminary query and returns the collection size.
// A collection without records yields ErrNoRecords.
func (c *Client) CountRecords(ctx context.Context, alias string, start int) (int, error) {
	result, err := c.Query(ctx, alias, start, 1)
	if err != nil {
		return 0, err
	}
	total := result.TotalRecords()
	if total == 0 {
		return 0, ErrNoRecords
	}
	return total, nil
}

// ItemInfoXML returns the bibliographic fields of an item as an element
// tree rooted at <xml>.
func (c *Client) ItemInfoXML(ctx context.Context, alias string, id int) (*xmltree.Element, error) {
	body, err := c.fetch(ctx, c.endpoint("dmGetItemInfo", alias, strconv.Itoa(id), "xml"))
	if err != nil {
		return nil, err
	}
	root, err := xmltree.Parse(body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse item info of %d: %w", id, err)
	}
	if root.Name() == "error" {
		return nil, &APIError{Code: root.ChildText("code"), Message: root.ChildText("message")}
	}
	return root, nil
}

// ItemInfoJSON returns the bibliographic fields of an item as a map.
func (c *Client) ItemInfoJSON(ctx context.Context, alias string, id int) (map[string]any, error) {
	body, err := c.fetch(ctx, c.endpoint("dmGetItemInfo", alias, strconv.Itoa(id), "json"))
	if err != nil {
		return nil, err
	}
	var fields map[string]any
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, fmt.Errorf("failed to decode item info of %d: %w", id, err)
	}
	return fields, nil
}

// CompoundObjectInfo returns the structure of a compound object. Items
// that are not compound objects yield a nil structure and no error.
func (c *Client) CompoundObjectInfo(ctx context.Context, alias string, id int) (*compound.Structure, error) {
	body, err := c.fetch(ctx, c.endpoint("dmGetCompoundObjectInfo", alias, strconv.Itoa(id), "xml"))
	if err != nil {
		return nil, err
	}
	root, err := xmltree.Parse(body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse compound info of %d: %w", id, err)
	}
	if root.Child(compound.TagType) == nil {
		return nil, nil
	}
	root.Rename(compound.TagStructure)
	return compound.FromElement(root), nil
}

// FileURL returns the download URL of a file.
func (c *Client) FileURL(alias, key, filename string) string {
	return c.fileURL + alias + "/id/" + key + "/filename/" + filename
}

// GetFile opens the body of a file download. The caller must close the
// returned reader. Unknown items yield ErrItemNotFound, other failures a
// *StatusError or an error wrapping ErrTimeout.
func (c *Client) GetFile(ctx context.Context, alias, key, filename string) (io.ReadCloser, error) {
	link := c.FileURL(alias, key, filename)
	resp, err := c.get(ctx, c.files, link)
	if err != nil {
		return nil, err
	}

	br := bufio.NewReaderSize(resp.Body, notFoundPeek)
	head, err := br.Peek(notFoundPeek)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		resp.Body.Close()
		return nil, fmt.Errorf("failed to read %s: %w", link, wrapTimeout(err))
	}
	if len(head) < notFoundPeek && string(head) == NotFoundBody {
		resp.Body.Close()
		return nil, ErrItemNotFound
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, &StatusError{StatusCode: resp.StatusCode, URL: link}
	}

	return &fileBody{Reader: br, body: resp.Body}, nil
}

type fileBody struct {
	*bufio.Reader
	body io.Closer
}

func (f *fileBody) Close() error {
	return f.body.Close()
}
