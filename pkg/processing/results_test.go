package processing

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

func TestResultFollowsResultsLink(t *testing.T) {
	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	defer server.Close()

	mux.HandleFunc("/jobs/42", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{
			"status": "successful",
			"links": [{"rel": "results", "href": "%s/results-store/42"}]
		}`, server.URL)
	})
	mux.HandleFunc("/results-store/42", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"asset":{"value":{"href":"https://downloads.example/42.nc"}}}`))
	})

	client := NewClient(server.URL, WithExactURL())
	remote := client.NewRemote(server.URL + "/jobs/42")

	results, err := remote.Result(context.Background())
	if err != nil {
		t.Fatalf("Result: %v", err)
	}

	asset, err := results.Asset()
	if err != nil {
		t.Fatalf("Asset: %v", err)
	}
	if asset.Href != "https://downloads.example/42.nc" {
		t.Errorf("unexpected asset href: %s", asset.Href)
	}
}

func TestResultFallsBackToConventionalPath(t *testing.T) {
	var fallbackHit atomic.Bool
	mux := http.NewServeMux()
	mux.HandleFunc("/jobs/42", func(w http.ResponseWriter, r *http.Request) {
		// No results link at all; resolution must recover, not fail.
		w.Write([]byte(`{"status":"successful","links":[]}`))
	})
	mux.HandleFunc("/jobs/42/results", func(w http.ResponseWriter, r *http.Request) {
		fallbackHit.Store(true)
		w.Write([]byte(`{"asset":{"value":{"href":"https://downloads.example/42.nc"}}}`))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := NewClient(server.URL, WithExactURL())
	remote := client.NewRemote(server.URL + "/jobs/42")

	if _, err := remote.Result(context.Background()); err != nil {
		t.Fatalf("Result: %v", err)
	}
	if !fallbackHit.Load() {
		t.Error("expected fallback /results path to be fetched")
	}
}

func TestAssetMissingHref(t *testing.T) {
	resp, err := NewResponse("https://api.example/jobs/42/results",
		[]byte(`{"asset":{"value":{"file:size":1024}}}`))
	if err != nil {
		t.Fatalf("NewResponse: %v", err)
	}
	results := &Results{Response: resp}

	_, err = results.Asset()
	var protoErr *ProtocolError
	if !errors.As(err, &protoErr) {
		t.Fatalf("expected ProtocolError, got %v", err)
	}
}

func TestAssetRelativeHrefResolved(t *testing.T) {
	resp, err := NewResponse("https://api.example/v1/jobs/42/results",
		[]byte(`{"asset":{"value":{"href":"./data/result.grib"}}}`))
	if err != nil {
		t.Fatalf("NewResponse: %v", err)
	}
	results := &Results{Response: resp}

	asset, err := results.Asset()
	if err != nil {
		t.Fatalf("Asset: %v", err)
	}
	if asset.Href != "https://api.example/v1/jobs/42/data/result.grib" {
		t.Errorf("unexpected resolved href: %s", asset.Href)
	}
}

func TestAssetMetadata(t *testing.T) {
	resp, err := NewResponse("https://api.example/jobs/42/results", []byte(`{
		"asset": {"value": {
			"href": "https://downloads.example/result.nc",
			"file:size": 1048576,
			"file:checksum": "sha256:deadbeef"
		}}
	}`))
	if err != nil {
		t.Fatalf("NewResponse: %v", err)
	}
	results := &Results{Response: resp}

	asset, err := results.Asset()
	if err != nil {
		t.Fatalf("Asset: %v", err)
	}
	if asset.Size != 1048576 {
		t.Errorf("expected size 1048576, got %d", asset.Size)
	}
	if asset.Checksum != "sha256:deadbeef" {
		t.Errorf("unexpected checksum: %s", asset.Checksum)
	}
}

func TestAssetSizeAbsent(t *testing.T) {
	resp, err := NewResponse("https://api.example/jobs/42/results",
		[]byte(`{"asset":{"value":{"href":"https://downloads.example/result.nc"}}}`))
	if err != nil {
		t.Fatalf("NewResponse: %v", err)
	}
	results := &Results{Response: resp}

	asset, err := results.Asset()
	if err != nil {
		t.Fatalf("Asset: %v", err)
	}
	if asset.Size != -1 {
		t.Errorf("expected size -1 for undeclared size, got %d", asset.Size)
	}
	if asset.Checksum != "" {
		t.Errorf("expected empty checksum, got %s", asset.Checksum)
	}
}

func TestAssetInvalidSize(t *testing.T) {
	resp, err := NewResponse("https://api.example/jobs/42/results",
		[]byte(`{"asset":{"value":{"href":"https://downloads.example/r.nc","file:size":"huge"}}}`))
	if err != nil {
		t.Fatalf("NewResponse: %v", err)
	}
	results := &Results{Response: resp}

	_, err = results.Asset()
	var protoErr *ProtocolError
	if !errors.As(err, &protoErr) {
		t.Fatalf("expected ProtocolError, got %v", err)
	}
}

func TestAssetSizeWithTrailingGarbage(t *testing.T) {
	resp, err := NewResponse("https://api.example/jobs/42/results",
		[]byte(`{"asset":{"value":{"href":"https://downloads.example/r.nc","file:size":"1024garbage"}}}`))
	if err != nil {
		t.Fatalf("NewResponse: %v", err)
	}
	results := &Results{Response: resp}

	// The whole string must be a number; a parseable prefix is not enough.
	_, err = results.Asset()
	var protoErr *ProtocolError
	if !errors.As(err, &protoErr) {
		t.Fatalf("expected ProtocolError, got %v", err)
	}
}

func TestAssetSizeAsString(t *testing.T) {
	resp, err := NewResponse("https://api.example/jobs/42/results",
		[]byte(`{"asset":{"value":{"href":"https://downloads.example/r.nc","file:size":"2048"}}}`))
	if err != nil {
		t.Fatalf("NewResponse: %v", err)
	}
	results := &Results{Response: resp}

	asset, err := results.Asset()
	if err != nil {
		t.Fatalf("Asset: %v", err)
	}
	if asset.Size != 2048 {
		t.Errorf("expected size 2048, got %d", asset.Size)
	}
}
