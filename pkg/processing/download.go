package processing

import (
	"context"
	"crypto/md5"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"net/url"
	"os"
	"path"
	"strings"
)

// Download extracts the artifact description from the results document and
// transfers it to target with integrity verification. An empty target
// derives the local file name from the asset URL.
func (r *Results) Download(ctx context.Context, target string) (string, error) {
	asset, err := r.Asset()
	if err != nil {
		return "", err
	}
	return r.c.DownloadAsset(ctx, asset, target)
}

// DownloadAsset streams the asset to target, then verifies the transferred
// byte count and checksum against the declared metadata. A mismatch is a
// DownloadIntegrityError even though the HTTP transfer itself succeeded,
// since a truncated or proxy-mangled transfer can still return 200.
//
// The whole transfer is bounded by the client's download timeout. There is
// no internal retry: the operation is idempotent and the caller may simply
// run it again.
func (c *Client) DownloadAsset(ctx context.Context, asset Asset, target string) (string, error) {
	if target == "" {
		derived, err := targetFromURL(asset.Href)
		if err != nil {
			return "", err
		}
		target = derived
	}

	digest, want := newDigest(asset.Checksum)

	ctx, cancel := context.WithTimeout(ctx, c.downloadTimeout)
	defer cancel()

	tn, _ := c.notifier.(TransferNotifier)

	// When the results document declared no size, ask the server so the
	// transfer display can still show totals. Best effort only.
	size := asset.Size
	if tn != nil && size < 0 {
		if info, err := c.http.Head(ctx, asset.Href); err == nil {
			size = info.Size
		}
	}

	body, err := c.http.Get(ctx, asset.Href)
	if err != nil {
		return "", &CommunicationError{URL: asset.Href, Err: err}
	}
	defer body.Close()

	f, err := os.Create(target)
	if err != nil {
		return "", fmt.Errorf("create target file: %w", err)
	}

	var w io.Writer = f
	if digest != nil {
		w = io.MultiWriter(f, digest)
	}

	// TransferDone must run on every exit, including failed transfers;
	// it is what stops the notifier's display.
	var n int64
	if tn != nil {
		tn.TransferStarted(asset.Href, size)
		w = io.MultiWriter(w, progressWriter{tn})
		defer func() { tn.TransferDone(n) }()
	}

	n, err = io.Copy(w, body)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return "", fmt.Errorf("download %s: %w", asset.Href, err)
	}

	if asset.Size >= 0 && n != asset.Size {
		return "", &DownloadIntegrityError{URL: asset.Href, GotSize: n, WantSize: asset.Size}
	}
	if digest != nil {
		got := hex.EncodeToString(digest.Sum(nil))
		if !strings.EqualFold(got, want) {
			return "", &DownloadIntegrityError{
				URL:          asset.Href,
				GotSize:      n,
				WantSize:     n,
				GotChecksum:  got,
				WantChecksum: want,
			}
		}
	}

	return target, nil
}

// targetFromURL derives a local file name from the final path segment of the
// asset URL.
func targetFromURL(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", &ProtocolError{URL: rawURL, Reason: fmt.Sprintf("invalid asset URL: %v", err)}
	}
	target := path.Base(strings.TrimSuffix(u.Path, "/"))
	if target == "." || target == "/" || target == "" {
		return "", &ProtocolError{URL: rawURL, Reason: "asset URL has no file name"}
	}
	return target, nil
}

// newDigest picks the hash for a declared checksum. Supported forms are
// "sha256:<hex>", "md5:<hex>" and bare hex (length selects the algorithm).
// Other schemes are treated as opaque and skipped rather than failing the
// download.
func newDigest(checksum string) (hash.Hash, string) {
	if checksum == "" {
		return nil, ""
	}

	algo, value, found := strings.Cut(checksum, ":")
	if !found {
		value = checksum
		switch len(checksum) {
		case sha256.Size * 2:
			algo = "sha256"
		case md5.Size * 2:
			algo = "md5"
		default:
			return nil, ""
		}
	}

	switch strings.ToLower(algo) {
	case "sha256", "sha-256":
		return sha256.New(), value
	case "md5":
		return md5.New(), value
	}
	return nil, ""
}

// progressWriter forwards written byte counts to a TransferNotifier.
type progressWriter struct {
	tn TransferNotifier
}

func (w progressWriter) Write(p []byte) (int, error) {
	w.tn.TransferProgress(int64(len(p)))
	return len(p), nil
}
