package processing

import (
	"encoding/json"
	"fmt"
)

// Link is one entry of a document's links array.
type Link struct {
	Rel  string `json:"rel"`
	Href string `json:"href"`
}

// Response wraps one JSON document returned by the API together with the URL
// it was fetched from. The body is decoded exactly once, at construction,
// and a Response is immutable afterwards.
type Response struct {
	url   string
	doc   map[string]any
	links []Link
}

// NewResponse decodes body into a Response. An undecodable body is a
// ProtocolError.
func NewResponse(url string, body []byte) (*Response, error) {
	var doc map[string]any
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, &ProtocolError{URL: url, Reason: fmt.Sprintf("invalid JSON document: %v", err)}
	}

	r := &Response{url: url, doc: doc}

	if raw, ok := doc["links"].([]any); ok {
		for _, entry := range raw {
			m, ok := entry.(map[string]any)
			if !ok {
				continue
			}
			rel, _ := m["rel"].(string)
			href, _ := m["href"].(string)
			r.links = append(r.links, Link{Rel: rel, Href: href})
		}
	}

	return r, nil
}

// URL returns the request URL the document was fetched from.
func (r *Response) URL() string {
	return r.url
}

// Doc returns the decoded document. Callers must not modify it.
func (r *Response) Doc() map[string]any {
	return r.doc
}

// Links returns all links, or when rel is non-empty only the links matching
// that relation. It never fails; an absent relation yields an empty slice.
func (r *Response) Links(rel string) []Link {
	if rel == "" {
		links := make([]Link, len(r.links))
		copy(links, r.links)
		return links
	}
	var links []Link
	for _, l := range r.links {
		if l.Rel == rel {
			links = append(links, l)
		}
	}
	return links
}

// LinkHref resolves rel to its unique target URL. Zero or multiple matches
// yield a LinkResolutionError, never a silent default.
func (r *Response) LinkHref(rel string) (string, error) {
	links := r.Links(rel)
	if len(links) != 1 {
		return "", &LinkResolutionError{URL: r.url, Rel: rel, Matches: len(links)}
	}
	return links[0].Href, nil
}

// stringField returns the named top-level field when present and a string.
func (r *Response) stringField(key string) (string, bool) {
	s, ok := r.doc[key].(string)
	return s, ok
}

// idList extracts the "id" of every entry of the named top-level array.
func (r *Response) idList(key string) []string {
	raw, ok := r.doc[key].([]any)
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
