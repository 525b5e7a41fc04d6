package utils

import (
	"path/filepath"
	"strings"
)

// GetAbsolutePath returns path if it was absolute, otherwise joins it with baseDir
func GetAbsolutePath(path, baseDir string) string {
	// Check if the path is already absolute
	if filepath.IsAbs(path) {
		return path
	}

	// Join the relative path with the config directory
	absolutePath := filepath.Join(baseDir, path)

	// Clean the resulting path
	absolutePath = filepath.Clean(absolutePath)

	return absolutePath
}

// NormalizeURLPath ensures a leading slash and strips trailing slashes
// except for the root path. Inner slashes are left as they are.
func NormalizeURLPath(path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if path != "/" && strings.HasSuffix(path, "/") {
		path = strings.TrimRight(path, "/")
		if path == "" {
			path = "/"
		}
	}
	return path
}

// JoinURLPath joins a base path and a route path into the full route path.
//
// The suffix is appended as is: JoinURLPath("/api", "items") yields
// "/apiitems" and JoinURLPath("/api", "/") yields "/api/". Callers normalize
// both parts first. Runs of slashes are collapsed.
func JoinURLPath(base, suffix string) string {
	if base == "" {
		base = "/"
	}
	if suffix == "" {
		suffix = "/"
	}

	// Remove trailing slash from base unless it is root
	if base != "/" && strings.HasSuffix(base, "/") {
		base = strings.TrimRight(base, "/")
		if base == "" {
			base = "/"
		}
	}

	var full string
	if base == "/" {
		full = suffix
	} else {
		full = base + suffix
	}

	for strings.Contains(full, "//") {
		full = strings.ReplaceAll(full, "//", "/")
	}

	return full
}
