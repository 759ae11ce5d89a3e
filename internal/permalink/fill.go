package permalink

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Item carries the identifiers of the content entry being previewed.
// The hosting edit screen provides it; this package never fetches data.
type Item struct {
	// CID is the persisted id, or 0 for new/unsaved content.
	CID int64

	// Created is the creation timestamp; zero when not yet set.
	Created time.Time

	// CategoryIDs lists associated categories, first one primary.
	CategoryIDs []int64
}

// FillOptions supplies the lookup context for placeholder filling.
type FillOptions struct {
	// Categories indexes the category forest by id.
	Categories map[int64]Category

	// DefaultCategory is used when the item has no category of its own.
	DefaultCategory int64

	// ServerNow is the server-reported current time, zero when unknown.
	ServerNow time.Time

	// Now overrides the client clock; nil means time.Now.
	Now func() time.Time
}

var placeholder = regexp.MustCompile(`\{[A-Za-z0-9_-]+\}`)

// FillPost substitutes the known post placeholders case-insensitively:
// {cid}, {category}, {directory}, {year}, {month}, {day}. {slug} is
// never substituted, so the caller can split the result around an
// editable slug input. Unknown placeholders pass through untouched.
//
// A not-yet-created item (CID <= 0) returns the template unchanged:
// without a persisted id there is no stable category assignment or
// date to preview against. Mirrors the legacy console; see the known
// behaviors section of DESIGN.md.
func FillPost(tpl string, item Item, opts FillOptions) string {
	if item.CID <= 0 {
		return tpl
	}

	t := timeFor(item, opts)

	return placeholder.ReplaceAllStringFunc(tpl, func(tok string) string {
		name := strings.ToLower(tok[1 : len(tok)-1])
		switch name {
		case "slug":
			return tok
		case "cid":
			if item.CID > 0 {
				return strconv.FormatInt(item.CID, 10)
			}
			return tok
		case "category":
			if cat, ok := resolveCategory(item, opts); ok && strings.TrimSpace(cat.Slug) != "" {
				return strings.TrimSpace(cat.Slug)
			}
			return tok
		case "directory":
			if cat, ok := resolveCategory(item, opts); ok {
				if dir := DirectoryPath(cat, opts.Categories); dir != "" {
					return dir
				}
			}
			return tok
		case "year":
			return strconv.Itoa(t.Year())
		case "month":
			return fmt.Sprintf("%02d", int(t.Month()))
		case "day":
			return fmt.Sprintf("%02d", t.Day())
		default:
			// Forward compatibility: never corrupt what we don't know.
			return tok
		}
	})
}

// FillPage is FillPost for pages, which only carry {cid} in this
// routing scheme. The new-item short-circuit applies the same way.
func FillPage(tpl string, item Item) string {
	if item.CID <= 0 {
		return tpl
	}

	return placeholder.ReplaceAllStringFunc(tpl, func(tok string) string {
		name := strings.ToLower(tok[1 : len(tok)-1])
		switch name {
		case "slug":
			return tok
		case "cid":
			return strconv.FormatInt(item.CID, 10)
		default:
			return tok
		}
	})
}

// timeFor picks the timestamp for date placeholders: the item's own
// creation time, else the server's reported time, else the client
// clock.
func timeFor(item Item, opts FillOptions) time.Time {
	if !item.Created.IsZero() {
		return item.Created
	}
	if !opts.ServerNow.IsZero() {
		return opts.ServerNow
	}
	if opts.Now != nil {
		return opts.Now()
	}
	return time.Now()
}

// resolveCategory picks the item's first associated category, falling
// back to the configured default category.
func resolveCategory(item Item, opts FillOptions) (Category, bool) {
	for _, id := range item.CategoryIDs {
		if cat, ok := opts.Categories[id]; ok {
			return cat, true
		}
	}
	if opts.DefaultCategory > 0 {
		if cat, ok := opts.Categories[opts.DefaultCategory]; ok {
			return cat, true
		}
	}
	return Category{}, false
}

// Preview is a filled permalink split around the editable slug input.
type Preview struct {
	Prefix  string `json:"prefix"`
	Suffix  string `json:"suffix"`
	HasSlug bool   `json:"hasSlug"`
}

// SplitAtSlug splits a filled string at the first case-insensitive
// {slug} token. Without one, the entire string is the prefix. Behavior
// past the first occurrence is deliberately unspecified upstream; only
// the first is used as the split point.
func SplitAtSlug(filled string) Preview {
	const token = "{slug}"
	// The token is ASCII, so folding byte windows in place keeps the
	// offsets valid even when the surrounding text is multi-byte.
	for i := 0; i+len(token) <= len(filled); i++ {
		if filled[i] != '{' {
			continue
		}
		if strings.EqualFold(filled[i:i+len(token)], token) {
			return Preview{
				Prefix:  filled[:i],
				Suffix:  filled[i+len(token):],
				HasSlug: true,
			}
		}
	}
	return Preview{Prefix: filled}
}

// PostPreview runs the whole pipeline for a post rule: decode, fill,
// compose onto the site URL, split. An unset site URL yields the empty
// conservative preview (HasSlug true): no preview is computable yet.
func PostPreview(rule, siteURL string, item Item, opts FillOptions) Preview {
	if strings.TrimSpace(siteURL) == "" {
		return Preview{HasSlug: true}
	}
	filled := FillPost(DecodeRule(rule), item, opts)
	return SplitAtSlug(ComposeURL(siteURL, filled))
}

// PagePreview is PostPreview for page rules.
func PagePreview(rule, siteURL string, item Item) Preview {
	if strings.TrimSpace(siteURL) == "" {
		return Preview{HasSlug: true}
	}
	filled := FillPage(DecodeRule(rule), item)
	return SplitAtSlug(ComposeURL(siteURL, filled))
}
