package program

import (
	"fmt"
	"net/url"
	"path"
	"path/filepath"
	"strings"
)

// RelPath returns the slash separated path of uri relative to root.
func RelPath(root, uri string) (string, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return "", fmt.Errorf("failed to parse uri: %w", err)
	}

	r, err := url.Parse(root)
	if err != nil {
		return "", fmt.Errorf("failed to parse root uri: %w", err)
	}

	if u.Scheme != r.Scheme || u.Host != r.Host {
		return "", fmt.Errorf("uri %s and root uri %s do not share the same scheme or host", uri, root)
	}

	rel := strings.TrimPrefix(u.Path, r.Path)
	rel = strings.TrimLeft(rel, "/") // Remove leading slash if any
	return rel, nil
}

// JoinURI resolves the slash separated relpath against root.
func JoinURI(root, relpath string) (string, error) {
	r, err := url.Parse(root)
	if err != nil {
		return "", fmt.Errorf("failed to parse root uri: %w", err)
	}

	// Join the root path and the relative path
	r.Path = path.Join(r.Path, relpath)

	// Rebuild the full URI
	return r.String(), nil
}

// PathToURI converts an absolute filesystem path to a file URI.
func PathToURI(p string) string {
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(p)}
	return u.String()
}

// URIToPath converts a file URI to a filesystem path.
func URIToPath(uri string) (string, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return "", fmt.Errorf("failed to parse uri: %w", err)
	}
	if u.Scheme != "file" {
		return "", fmt.Errorf("not a file uri: %s", uri)
	}
	return filepath.FromSlash(u.Path), nil
}

func normalizeRoot(root string) string {
	if u, err := url.Parse(root); err == nil {
		root = u.String()
	}
	return strings.TrimSuffix(root, "/")
}

// within reports whether uri lies inside the workspace rooted at root.
func within(root, uri string) bool {
	return uri == root || strings.HasPrefix(uri, root+"/")
}
