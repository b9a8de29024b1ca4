// Package ianadist downloads releases of the IANA time zone database and
// turns their data files into tzdata source.
//
// Releases are served by the [IANA data server]. Callers should keep the
// [ETag] of a download and pass it to later calls so an unchanged release is
// not transferred again.
//
// [ETag]: https://developer.mozilla.org/en-US/docs/Web/HTTP/Headers/ETag
// [IANA data server]: https://www.iana.org/time-zones
package ianadist

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"maps"
	"net/http"
	"net/url"
	"slices"
	"strings"

	"github.com/ngrash/tzmatch/tzdata"
)

// DataFiles maps the names of the data files of a release to their contents.
// Every file starts with one of the lines
//
//	# tzdb data for ...
//	# tzdb links for ...
type DataFiles map[string][]byte

// Release is an unpacked release of the IANA time zone database.
type Release struct {
	// Version is the release name, for example "2024b".
	Version   string
	DataFiles DataFiles
}

// excluded lists data files that Parse skips. backzone holds pre-1970 data
// for zones that are links in the main data and would redefine them.
var excluded = map[string]bool{"backzone": true}

// Parse parses the data files of r in file name order and merges them.
func (r *Release) Parse() (tzdata.File, error) {
	var merged tzdata.File
	for _, name := range slices.Sorted(maps.Keys(r.DataFiles)) {
		if excluded[name] {
			continue
		}
		f, err := tzdata.Parse(bytes.NewReader(r.DataFiles[name]))
		if err != nil {
			return tzdata.File{}, fmt.Errorf("tzdata %s, file %s: %w", r.Version, name, err)
		}
		merged.Merge(f)
	}
	return merged, nil
}

// DefaultClient is used by the package level Latest and Download.
var DefaultClient = &Client{}

// Client downloads from the IANA data server. The zero value is ready to use.
type Client struct {
	// HTTPClient is used for requests, http.DefaultClient if nil.
	// Tests replace its transport to avoid network access.
	HTTPClient *http.Client
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient == nil {
		return http.DefaultClient
	}
	return c.HTTPClient
}

const (
	baseURL         = "https://data.iana.org/time-zones/"
	latestDataPath  = "tzdata-latest.tar.gz"
	versionFilename = "version"
)

// dataFileMagics are the first lines of files with Zone, Rule or Link lines.
// backward starts with the links form.
var dataFileMagics = [][]byte{
	[]byte("# tzdb data for"),
	[]byte("# tzdb links for"),
}

func isDataFile(data []byte) bool {
	for _, magic := range dataFileMagics {
		if bytes.HasPrefix(data, magic) {
			return true
		}
	}
	return false
}

// ReadArchive unpacks a gzip-compressed tar archive as published at
// https://data.iana.org/time-zones/releases/. Files other than the version
// file and data files are ignored.
func ReadArchive(r io.Reader) (*Release, error) {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("read gzip: %w", err)
	}
	tr := tar.NewReader(gz)
	release := Release{DataFiles: make(DataFiles)}
	for {
		header, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read tar: %w", err)
		}
		if header.Typeflag != tar.TypeReg {
			continue
		}
		data, err := io.ReadAll(tr)
		if err != nil {
			return nil, fmt.Errorf("read %q: %w", header.Name, err)
		}
		switch {
		case header.Name == versionFilename:
			release.Version = strings.TrimSpace(string(data))
			if release.Version == "" {
				return nil, fmt.Errorf("empty version file")
			}
		case isDataFile(data):
			release.DataFiles[header.Name] = data
		}
	}
	if len(release.DataFiles) == 0 {
		return nil, fmt.Errorf("no data files found")
	}
	if release.Version == "" {
		return nil, fmt.Errorf("no version found")
	}
	return &release, nil
}

// Latest calls DefaultClient.Latest.
func Latest(ctx context.Context, etag string) (*Release, string, error) {
	return DefaultClient.Latest(ctx, etag)
}

// Latest downloads and unpacks the latest release.
//
// If the release still has the given ETag, Latest returns a nil Release,
// the same ETag and no error. On error the returned ETag is empty.
func (c *Client) Latest(ctx context.Context, etag string) (*Release, string, error) {
	body, newEtag, err := c.Download(ctx, latestDataPath, etag)
	if err != nil || body == nil {
		return nil, newEtag, err
	}
	defer func() {
		_, _ = io.Copy(io.Discard, body)
		_ = body.Close()
	}()
	release, err := ReadArchive(body)
	if err != nil {
		return nil, "", err
	}
	return release, newEtag, nil
}

// Download calls DefaultClient.Download.
func Download(ctx context.Context, path, etag string) (io.ReadCloser, string, error) {
	return DefaultClient.Download(ctx, path, etag)
}

// Download requests the resource at path on the IANA data server, sending
// etag in If-None-Match when it is not empty.
//
// On 200 OK it returns the response body, which the caller must drain and
// close, and the new ETag. On 304 Not Modified it returns a nil body and the
// given ETag. Any other status is an error, and errors come with an empty
// ETag.
func (c *Client) Download(ctx context.Context, path, etag string) (io.ReadCloser, string, error) {
	u, err := url.JoinPath(baseURL, path)
	if err != nil {
		return nil, "", fmt.Errorf("join URL: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, "", fmt.Errorf("create request for %q: %w", u, err)
	}
	if etag != "" {
		req.Header.Set("If-None-Match", etag)
	}
	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("GET %q: %w", u, err)
	}
	if resp.StatusCode == http.StatusOK {
		return resp.Body, resp.Header.Get("ETag"), nil
	}
	// Drain so the connection can be reused.
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
	if resp.StatusCode == http.StatusNotModified {
		return nil, etag, nil
	}
	return nil, "", fmt.Errorf("response for %q: unexpected status: %s", u, resp.Status)
}
