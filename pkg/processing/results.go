package processing

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
)

// Result locates the results document for the job. The "results" link
// relation is tried first; when it is absent or ambiguous the conventional
// <monitor-url>/results path is used instead. The fallback is expected
// behavior, not an error.
func (r *Remote) Result(ctx context.Context) (*Results, error) {
	resp, err := r.c.Fetch(ctx, r.url)
	if err != nil {
		return nil, err
	}

	resultsURL, err := resp.LinkHref("results")
	if err != nil {
		var linkErr *LinkResolutionError
		if !errors.As(err, &linkErr) {
			return nil, err
		}
		resultsURL = r.url + "/results"
	}

	res, err := r.c.Fetch(ctx, resultsURL)
	if err != nil {
		return nil, err
	}
	return &Results{Response: res, c: r.c}, nil
}

// Results is the document describing a completed job's output.
type Results struct {
	*Response
	c *Client
}

// Asset describes the downloadable artifact: its absolute URL and the size
// and checksum the server declared for it. Size is -1 when the server did
// not declare one; Checksum is empty when absent.
type Asset struct {
	Href     string
	Size     int64
	Checksum string
}

// Asset extracts the artifact description from the asset.value object. A
// missing href is a ProtocolError; size and checksum are optional. Relative
// hrefs are resolved against the results document's own URL.
func (r *Results) Asset() (Asset, error) {
	value, _ := r.Doc()["asset"].(map[string]any)
	inner, _ := value["value"].(map[string]any)

	href, _ := inner["href"].(string)
	if href == "" {
		return Asset{}, &ProtocolError{URL: r.URL(), Reason: `missing "asset.value.href" field`}
	}

	abs, err := resolveHref(r.URL(), href)
	if err != nil {
		return Asset{}, &ProtocolError{URL: r.URL(), Reason: fmt.Sprintf("invalid asset href %q: %v", href, err)}
	}

	asset := Asset{Href: abs, Size: -1}

	if raw, ok := inner["file:size"]; ok {
		size, err := toInt64(raw)
		if err != nil {
			return Asset{}, &ProtocolError{URL: r.URL(), Reason: fmt.Sprintf("invalid \"file:size\" value %v", raw)}
		}
		asset.Size = size
	}
	if sum, ok := inner["file:checksum"].(string); ok {
		asset.Checksum = sum
	}

	return asset, nil
}

// resolveHref resolves href against base, returning an absolute URL.
func resolveHref(base, href string) (string, error) {
	b, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	h, err := url.Parse(href)
	if err != nil {
		return "", err
	}
	return b.ResolveReference(h).String(), nil
}

// toInt64 converts the JSON representations a size field shows up as.
func toInt64(v any) (int64, error) {
	switch n := v.(type) {
	case float64:
		return int64(n), nil
	case string:
		return strconv.ParseInt(n, 10, 64)
	}
	return 0, fmt.Errorf("unsupported type %T", v)
}
