// Package catalogue lists the collections offered by a catalogue API and
// resolves a collection to the process that retrieves it. It is a thin
// mapping from the catalogue's JSON documents to accessor methods; all
// temporal behavior (polling, downloads) lives in pkg/processing.
package catalogue

import (
	"context"
	"errors"
	"strings"

	"github.com/zakjan/cads-api-client/pkg/processing"
)

// supportedAPIVersion is appended to the catalogue base URL.
const supportedAPIVersion = "v1"

// Client talks to a catalogue API. Requests go through the processing
// client's transport, so retry policy and auth headers apply uniformly.
type Client struct {
	baseURL string
	api     *processing.Client
}

// NewClient creates a catalogue client rooted at url. The processing client
// provides the transport and is used to resolve retrieve links into process
// descriptions.
func NewClient(url string, api *processing.Client) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(url, "/") + "/" + supportedAPIVersion,
		api:     api,
	}
}

// Collections is one page of the collection listing.
type Collections struct {
	*processing.Response
	c *Client
}

// Collections fetches the first page of the collection listing.
func (c *Client) Collections(ctx context.Context) (*Collections, error) {
	return c.collectionsAt(ctx, c.baseURL+"/collections")
}

func (c *Client) collectionsAt(ctx context.Context, url string) (*Collections, error) {
	resp, err := c.api.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	return &Collections{Response: resp, c: c}, nil
}

// CollectionIDs returns the identifiers of the collections on this page.
func (l *Collections) CollectionIDs() []string {
	raw, ok := l.Doc()["collections"].([]any)
	if !ok {
		return nil
	}
	var ids []string
	for _, entry := range raw {
		m, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		if id, ok := m["id"].(string); ok {
			ids = append(ids, id)
		}
	}
	return ids
}

// Next fetches the next page, or nil when there is none.
func (l *Collections) Next(ctx context.Context) (*Collections, error) {
	return l.follow(ctx, "next")
}

// Prev fetches the previous page, or nil when there is none.
func (l *Collections) Prev(ctx context.Context) (*Collections, error) {
	return l.follow(ctx, "prev")
}

func (l *Collections) follow(ctx context.Context, rel string) (*Collections, error) {
	href, err := l.LinkHref(rel)
	if err != nil {
		// Pagination links are optional; their absence ends the walk.
		// An ambiguous link is still a protocol problem.
		var linkErr *processing.LinkResolutionError
		if errors.As(err, &linkErr) && linkErr.Matches == 0 {
			return nil, nil
		}
		return nil, err
	}
	return l.c.collectionsAt(ctx, href)
}

// Collection is the description document of a single catalogue entry.
type Collection struct {
	*processing.Response
	c *Client
}

// Collection fetches the description of a single catalogue entry.
func (c *Client) Collection(ctx context.Context, collectionID string) (*Collection, error) {
	resp, err := c.api.Fetch(ctx, c.baseURL+"/collections/"+collectionID)
	if err != nil {
		return nil, err
	}
	return &Collection{Response: resp, c: c}, nil
}

// ID returns the collection identifier.
func (col *Collection) ID() (string, error) {
	id, ok := col.Doc()["id"].(string)
	if !ok {
		return "", &processing.ProtocolError{URL: col.URL(), Reason: `missing "id" field`}
	}
	return id, nil
}

// RetrieveProcess resolves the collection's retrieve link to the process
// that produces its data.
func (col *Collection) RetrieveProcess(ctx context.Context) (*processing.Process, error) {
	href, err := col.LinkHref("retrieve")
	if err != nil {
		return nil, err
	}
	return col.c.api.ProcessFromURL(ctx, href)
}
