// Package medialocator classifies media URLs into the two playback sources
// clients know how to render: embedded streaming players and direct files.
package medialocator

import (
	"net/url"
	"strings"
)

const (
	KindStreamed     = "streamed"
	KindUploadedFile = "uploaded-file"
)

// Hosts served through an embedded streaming player.
var streamedHosts = []string{
	"youtube.com",
	"youtu.be",
}

// Classify derives the media kind from the URL alone. Any caller-supplied
// hint is ignored so every client in a room resolves the same kind.
func Classify(rawURL string) string {
	host := hostOf(rawURL)

	for _, streamed := range streamedHosts {
		if host == streamed || strings.HasSuffix(host, "."+streamed) {
			return KindStreamed
		}
	}

	return KindUploadedFile
}

func hostOf(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.Host == "" {
		// Not a well-formed absolute URL, e.g. "youtu.be/xyz".
		return strings.ToLower(strings.SplitN(strings.TrimSpace(rawURL), "/", 2)[0])
	}

	return strings.ToLower(u.Hostname())
}
