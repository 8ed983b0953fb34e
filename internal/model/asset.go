package model

import "strings"

// CurrentKey holds the identifier of the nightly build currently designated as current.
const CurrentKey = "CURRENT"

// Kind selects how a stored value is decoded on read.
type Kind int

const (
	KindText Kind = iota
	KindStream
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindStream:
		return "stream"
	default:
		return "unknown"
	}
}

type contentTypeRule struct {
	match func(id string) bool
	mime  string
}

func hasSuffix(suffix string) func(string) bool {
	return func(id string) bool { return strings.HasSuffix(id, suffix) }
}

// Evaluated top to bottom, first match wins.
// signify .sig files and cosign blob attestations have no reserved extension and stay untyped.
var contentTypeRules = []contentTypeRule{
	{match: hasSuffix(".zip"), mime: "application/zip"},
	{match: hasSuffix(".txt"), mime: "text/plain; charset=US-ASCII"},
	{match: func(id string) bool { return id == CurrentKey }, mime: "text/plain; charset=US-ASCII"},
	{match: hasSuffix(".tar.gz"), mime: "application/x-tar-gz"},
	{match: hasSuffix(".asc"), mime: "application/pgp-signature"},
}

// ContentTypeFor infers the MIME type of an asset from its identifier alone.
// Matching is case-sensitive; the second return is false when no rule applies.
func ContentTypeFor(id string) (string, bool) {
	for _, rule := range contentTypeRules {
		if rule.match(id) {
			return rule.mime, true
		}
	}
	return "", false
}
