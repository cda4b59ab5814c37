// Package identity derives the canonical identifiers of a Wiz folder
// (mode-prefixed id, namespace, template string) from user input and
// folder paths. Pure functions, no I/O.
package identity

import (
	"fmt"
	"path"
	"strings"
)

// Modes a Wiz folder can be created with. ModeUnknown is never a creation
// mode; it is what a reader reports when app.json is missing or malformed.
const (
	ModePage      = "page"
	ModeComponent = "component"
	ModeLayout    = "layout"
	ModePortal    = "portal"
	ModeUnknown   = "unknown"
)

// AllModes lists the creation modes in their default prompt order.
var AllModes = []string{ModePage, ModeComponent, ModeLayout, ModePortal}

// IsCreationMode reports whether mode is one of the four creatable modes.
func IsCreationMode(mode string) bool {
	switch mode {
	case ModePage, ModeComponent, ModeLayout, ModePortal:
		return true
	}
	return false
}

// DeriveIDAndNamespace computes the persisted id and namespace from raw
// user input. Portal mode takes the input as-is for both. Every other mode
// requires the "<mode>." prefix on the id, prepending it when absent; the
// namespace is the remainder after the prefix with outer dots trimmed.
func DeriveIDAndNamespace(mode, raw string) (id, namespace string) {
	raw = strings.TrimSpace(raw)
	if mode == ModePortal {
		return raw, raw
	}
	prefix := mode + "."
	id = raw
	if !strings.HasPrefix(id, prefix) {
		id = prefix + id
	}
	namespace = NormalizeNamespace(strings.TrimPrefix(id, prefix))
	return id, namespace
}

// NormalizeNamespace trims whitespace, then leading and trailing dots.
// Internal dots are preserved. An all-dots or empty string becomes "".
func NormalizeNamespace(s string) string {
	return strings.Trim(strings.TrimSpace(s), ".")
}

// NamespaceToDash converts a dot namespace to its dashed form used in
// template names. Runs of dots collapse: "..a..b.." becomes "a-b".
func NamespaceToDash(ns string) string {
	var segs []string
	for _, seg := range strings.Split(NormalizeNamespace(ns), ".") {
		if seg != "" {
			segs = append(segs, seg)
		}
	}
	return strings.Join(segs, "-")
}

// BuildTemplate renders the component-invocation string for a Wiz folder.
// Non-portal modes yield "wiz-<mode>[-<dashed-namespace>]()". Portal mode
// additionally names the owning app, found in the folder's ancestry as the
// segment after "portal"; a basePath without that shape is an error.
func BuildTemplate(mode, namespace, basePath string) (string, error) {
	dashed := NamespaceToDash(namespace)
	if mode != ModePortal {
		if dashed == "" {
			return fmt.Sprintf("wiz-%s()", mode), nil
		}
		return fmt.Sprintf("wiz-%s-%s()", mode, dashed), nil
	}
	app := PortalFromAncestry(basePath)
	if app == "" {
		return "", fmt.Errorf("portal app not found in path %q: expected a portal/<app> ancestry", basePath)
	}
	if dashed == "" {
		return fmt.Sprintf("wiz-portal-%s()", app), nil
	}
	return fmt.Sprintf("wiz-portal-%s-%s()", app, dashed), nil
}

// PortalFromAncestry returns the path segment following the last "portal"
// segment in basePath, or "" when "portal" is absent or is the final
// segment.
func PortalFromAncestry(basePath string) string {
	segs := strings.Split(path.Clean(strings.ReplaceAll(basePath, "\\", "/")), "/")
	last := -1
	for i, seg := range segs {
		if seg == "portal" {
			last = i
		}
	}
	if last < 0 || last == len(segs)-1 {
		return ""
	}
	return segs[last+1]
}

// SplitName splits a filename into base and extension, the extension
// including its dot. Names without an extension, including leading-dot
// names like ".bashrc", yield ext == "".
func SplitName(filename string) (base, ext string) {
	i := strings.LastIndex(filename, ".")
	if i <= 0 {
		return filename, ""
	}
	return filename[:i], filename[i:]
}
