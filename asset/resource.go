package asset

import (
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// The client used for fetching remote resources.
var httpClient = &http.Client{Timeout: 30 * time.Second}

// A Resource wraps a local file or a remote (http/https) mesh or material
// library as a stream.
type Resource struct {
	io.ReadCloser
	location *url.URL
}

// Returns the path to this resource.
func (r *Resource) Path() string {
	return r.location.String()
}

// Returns the file name of this resource without any directory or URL
// prefix. It is used to label parse errors.
func (r *Resource) Name() string {
	if r.IsRemote() {
		return path.Base(r.location.Path)
	}
	return filepath.Base(r.location.Path)
}

// Returns true if the Resource is streamed over http/https.
func (r *Resource) IsRemote() bool {
	return r.location.Scheme != ""
}

// Open a resource. If relTo is specified and pathToResource is neither a URL
// nor an absolute path, the new resource is located relative to the
// directory containing relTo. This allows OBJ files to reference material
// libraries next to them.
//
// The caller must close the returned resource.
func NewResource(pathToResource string, relTo *Resource) (*Resource, error) {
	location, err := resolve(pathToResource, relTo)
	if err != nil {
		return nil, err
	}

	var reader io.ReadCloser
	switch location.Scheme {
	case "":
		reader, err = os.Open(filepath.Clean(location.Path))
		if err != nil {
			return nil, errors.Wrap(err, "resource")
		}
	case "http", "https":
		resp, err := httpClient.Get(location.String())
		if err != nil {
			return nil, errors.Wrapf(err, "resource: could not fetch '%s'", location.String())
		}
		if resp.StatusCode >= 400 {
			resp.Body.Close()
			return nil, errors.Errorf("resource: could not fetch '%s': status %d", location.String(), resp.StatusCode)
		}
		reader = resp.Body
	default:
		return nil, errors.Errorf("resource: unsupported scheme '%s'", location.Scheme)
	}

	return &Resource{
		ReadCloser: reader,
		location:   location,
	}, nil
}

// Create a resource from a reader.
func NewResourceFromStream(name string, source io.Reader) *Resource {
	location, err := url.Parse(name)
	if err != nil {
		location = &url.URL{Path: name}
	}
	return &Resource{
		ReadCloser: io.NopCloser(source),
		location:   location,
	}
}

// Resolve the location of a resource, optionally relative to another one.
func resolve(pathToResource string, relTo *Resource) (*url.URL, error) {
	// Windows-style paths are common in exported mtllib statements
	location, err := url.Parse(strings.Replace(pathToResource, `\`, `/`, -1))
	if err != nil {
		return nil, errors.Wrapf(err, "resource: invalid path '%s'", pathToResource)
	}

	if location.Scheme != "" || relTo == nil || filepath.IsAbs(location.Path) {
		return location, nil
	}

	if relTo.IsRemote() {
		return relTo.location.ResolveReference(&url.URL{Path: location.Path}), nil
	}

	parentDir, err := filepath.Abs(filepath.Dir(relTo.location.Path))
	if err != nil {
		return nil, errors.Wrapf(err, "resource: could not detect abs path for %s", relTo.Path())
	}
	return &url.URL{Path: filepath.Join(parentDir, location.Path)}, nil
}
