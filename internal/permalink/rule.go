// Package permalink compiles the CMS's bracket-based rewrite-rule
// syntax into filled, human-previewable URLs.
//
// A raw rule like "/archives/[cid:digital]/" decodes to the template
// "/archives/{cid}/". Templates are filled against a specific content
// item; the {slug} token is deliberately left unfilled so the caller
// can split the preview around an editable slug input.
package permalink

import (
	"regexp"
	"strings"
)

// placeholderName matches the identifier inside a bracket rule:
// lowercase letters, digits, underscore, hyphen. Anything after the
// first colon is a type/length hint that filling does not need.
var bracketRule = regexp.MustCompile(`\[([a-z0-9_-]+)(?::[^\[\]]*)?\]`)

// DecodeRule rewrites every [name:type:len] occurrence into {name},
// discarding the hints. Unmatched or malformed brackets pass through
// untouched; rule text is user-entered and never an error here.
func DecodeRule(rule string) string {
	return bracketRule.ReplaceAllString(rule, "{$1}")
}

// ComposeURL joins a possibly-relative template path onto an absolute
// base prefix: a leading "./" is stripped, duplicate slashes inside the
// path collapse to one, and exactly one slash separates prefix and
// path. An empty prefix yields the normalized path alone.
func ComposeURL(prefix, path string) string {
	path = strings.TrimPrefix(path, "./")
	path = collapseSlashes(path)

	if prefix == "" {
		return path
	}

	prefix = strings.TrimRight(prefix, "/")
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return prefix + path
}

func collapseSlashes(s string) string {
	for strings.Contains(s, "//") {
		s = strings.ReplaceAll(s, "//", "/")
	}
	return s
}

// Preset is one recognized rule shape offered as a UI choice.
type Preset struct {
	// ID is the stable token the UI stores ("default", "wordpress", ...).
	ID string

	// Rule is the literal rewrite pattern the server persists.
	Rule string
}

// Custom classifies any rule that matches no preset. Callers must keep
// the user's literal rule text alongside the token so it round-trips.
const Custom = "custom"

// PostPresets is the fixed table of recognized post-permalink shapes.
var PostPresets = []Preset{
	{ID: "default", Rule: "/archives/[cid:digital]/"},
	{ID: "wordpress", Rule: "/archives/[slug].html"},
	{ID: "date", Rule: "/archives/[year:digital:4]/[month:digital:2]/[day:digital:2]/[slug].html"},
	{ID: "category", Rule: "/[category]/[slug].html"},
}

// Classify matches a raw rule against the preset table after
// leading-slash normalization. Non-matching rules are Custom.
func Classify(rule string, presets []Preset) string {
	normalized := ensureLeadingSlash(rule)
	for _, p := range presets {
		if normalized == ensureLeadingSlash(p.Rule) {
			return p.ID
		}
	}
	return Custom
}

// PresetRule returns the literal rule for a preset token, or ok=false
// for unknown tokens (including Custom).
func PresetRule(id string, presets []Preset) (string, bool) {
	for _, p := range presets {
		if p.ID == id {
			return p.Rule, true
		}
	}
	return "", false
}

// NormalizeRule trims a rule and guarantees a leading slash. Classify
// and the permalink dirty evaluator must agree on this normalization.
func NormalizeRule(s string) string {
	return ensureLeadingSlash(s)
}

func ensureLeadingSlash(s string) string {
	s = strings.TrimSpace(s)
	if s == "" || strings.HasPrefix(s, "/") {
		return s
	}
	return "/" + s
}
