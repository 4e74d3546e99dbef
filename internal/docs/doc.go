// Package docs loads the documentation index (docs.json) and attaches its
// markdown entries to choices as previews.
package docs
