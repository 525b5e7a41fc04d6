// Package hashing computes MD5 checksums of data streams.
//
// The config watcher uses it to tell real content changes from repeated
// filesystem events for the same content.
//
//	content, sum, err := hashing.ReadFile("zyro.yaml")
package hashing
