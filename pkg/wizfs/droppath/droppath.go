// Package droppath resolves the heterogeneous payloads a drag/drop gesture
// carries into a single canonical filesystem path. A gesture exposes the
// same sources under several competing text encodings; resolution picks one
// in priority order and parses its first usable line. Unresolvable payloads
// never error: the caller treats the drop as ignored.
package droppath

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/wizkit/wizfs/pkg/wizfs/filesystem"
)

// Encoding keys a gesture may populate, highest priority first.
const (
	MimeResources   = "application/vnd.wizfs.resources"
	MimeCodeURIList = "application/vnd.code.uri-list"
	MimeURIList     = "text/uri-list"
	MimePlainText   = "text/plain"
)

// resourceScheme is the internal scheme the editor surface uses for files
// it owns; it decodes like file:// but parse failures fall through to the
// raw-path rules.
const resourceScheme = "wiz-resource://"

var priority = []string{MimeResources, MimeCodeURIList, MimeURIList, MimePlainText}

// trailingMarker matches the editor-internal "$<digits>" suffix appended to
// dragged resource lines.
var trailingMarker = regexp.MustCompile(`\$\d+$`)

// Payload is the ephemeral per-gesture set of text encodings.
type Payload map[string]string

// Resolve picks the highest-priority non-empty encoding, scans its lines
// past blanks and "#" comments, and parses the first usable one into an
// absolute path. ok is false when nothing resolves.
func Resolve(p Payload) (path string, ok bool) {
	for _, mime := range priority {
		text := p[mime]
		if strings.TrimSpace(text) == "" {
			continue
		}
		return resolveText(text)
	}
	return "", false
}

func resolveText(text string) (string, bool) {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		return ParseLine(line)
	}
	return "", false
}

// ParseLine resolves one payload line to an absolute filesystem path.
func ParseLine(line string) (string, bool) {
	line = trailingMarker.ReplaceAllString(line, "")

	if strings.HasPrefix(line, "file://") {
		return decodeURL(line)
	}
	if strings.HasPrefix(line, resourceScheme) {
		if path, ok := decodeURL(line); ok {
			return path, true
		}
		// fall through to the raw-path rules
	}
	if strings.HasPrefix(line, "/") {
		return line, true
	}
	if strings.HasPrefix(line, "Users/") {
		return "/" + line, true
	}
	return "", false
}

func decodeURL(line string) (string, bool) {
	u, err := url.Parse(line)
	if err != nil || u.Path == "" {
		return "", false
	}
	return u.Path, true
}

// Kind classifies an internal drag reference.
type Kind int

const (
	KindFile Kind = iota
	KindDir
	KindOpen // stat failed; classification left open
)

// Ref is one structured source carried on the extension-internal drag
// channel. Paths are rooted names, not host paths.
type Ref struct {
	Path string
	Kind Kind
}

// ClassifyRefs stats each path to decide file versus directory. A failed
// stat is tolerated and reported as KindOpen instead of aborting the
// gesture.
func ClassifyRefs(fsys filesystem.StatFS, paths []string) []Ref {
	refs := make([]Ref, 0, len(paths))
	for _, p := range paths {
		info, err := fsys.Stat(p)
		switch {
		case err != nil:
			refs = append(refs, Ref{Path: p, Kind: KindOpen})
		case info.IsDir():
			refs = append(refs, Ref{Path: p, Kind: KindDir})
		default:
			refs = append(refs, Ref{Path: p, Kind: KindFile})
		}
	}
	return refs
}

// AsURIList renders refs as a text/uri-list encoding for consumers outside
// the internal channel. Directories carry a trailing slash by convention;
// open refs are rendered without one.
func AsURIList(refs []Ref) string {
	var b strings.Builder
	for i, r := range refs {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString("file://")
		b.WriteString((&url.URL{Path: "/" + strings.TrimPrefix(r.Path, "/")}).EscapedPath())
		if r.Kind == KindDir {
			b.WriteString("/")
		}
	}
	return b.String()
}
