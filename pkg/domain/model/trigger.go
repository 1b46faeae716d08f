package model

import (
	"path"
	"strings"
)

// TagPattern is a glob over tag names, e.g. "v*.*.*". Wildcards do not cross
// "/", matching the filter semantics of the CI trigger it replaces.
type TagPattern string

// DefaultTagPattern gates release runs on semver-looking tags.
const DefaultTagPattern TagPattern = "v*.*.*"

// TagName extracts the tag name from a pushed ref. It returns "" for
// non-tag refs such as refs/heads/main. A bare name without a refs/
// prefix is returned as-is.
func TagName(ref string) string {
	if tag, ok := strings.CutPrefix(ref, "refs/tags/"); ok {
		return tag
	}
	if strings.HasPrefix(ref, "refs/") {
		return ""
	}
	return ref
}

// Match reports whether the pushed ref is a tag matching the pattern.
func (p TagPattern) Match(ref string) bool {
	tag := TagName(ref)
	if tag == "" {
		return false
	}
	ok, err := path.Match(string(p), tag)
	return err == nil && ok
}
