// Package playlist resolves HLS media playlist text into an ordered list of
// absolute segment URLs. The format is treated as a loose line-oriented
// list: the only structural requirement is the #EXTM3U header.
package playlist

import (
	"net/url"
	"strings"

	"github.com/hlsget/hlsget/internal/domain"
)

var (
	ErrMissingHeader = domain.Errf(domain.CodeInvalidPlaylist, "invalid M3U8 content: missing #EXTM3U header")
	ErrNoSegments    = domain.Errf(domain.CodeEmptyPlaylist, "no TS segments found in M3U8 content")
)

// Segment is one playlist entry. Index is the 0-based position in playlist
// order and must be preserved through download and merge.
type Segment struct {
	Index int
	URL   string
}

// Resolve parses playlist text against the playlist's own URL. Absolute
// segment references are used verbatim; relative ones are resolved against
// base with standard URL semantics (dot segments, query strings preserved).
// Pure parsing: no network, no retry.
func Resolve(text string, base *url.URL) ([]Segment, error) {
	if !strings.Contains(text, "#EXTM3U") {
		return nil, ErrMissingHeader
	}

	var segments []Segment
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		ref, err := url.Parse(line)
		if err != nil || !strings.HasSuffix(ref.Path, ".ts") {
			continue
		}

		abs := ref
		if !ref.IsAbs() {
			abs = base.ResolveReference(ref)
		}

		segments = append(segments, Segment{Index: len(segments), URL: abs.String()})
	}

	if len(segments) == 0 {
		return nil, ErrNoSegments
	}

	return segments, nil
}
