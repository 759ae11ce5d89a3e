package settings

import (
	"slices"
	"strings"

	"github.com/roach88/quill/internal/permalink"
)

// The eight domain evaluators. All of them are pure functions of the
// (baseline, buffer) pair, and all of them short-circuit to "clean"
// when either side is nil: an unloaded domain is never dirty.
//
// Numeric coercion and null/"" noise are handled at the decode and
// edit-overlay boundaries, so fields here are already typed; string
// comparisons still run through NormString because surrounding
// whitespace survives the decode.

func profileDirty(base, buf *Profile) bool {
	if base == nil || buf == nil {
		return false
	}
	return NormString(base.ScreenName) != NormString(buf.ScreenName) ||
		NormString(base.Mail) != NormString(buf.Mail) ||
		NormString(base.URL) != NormString(buf.URL)
}

func userOptionsDirty(base, buf *UserOptions) bool {
	if base == nil || buf == nil {
		return false
	}
	if base.Markdown != buf.Markdown ||
		base.XMLRPCMarkdown != buf.XMLRPCMarkdown ||
		base.AutoSave != buf.AutoSave {
		return true
	}
	return !StringSetsEqual(base.DefaultAllow, buf.DefaultAllow)
}

func siteDirty(base, buf *Site) bool {
	if base == nil || buf == nil {
		return false
	}
	if NormString(base.SiteURL) != NormString(buf.SiteURL) ||
		NormString(base.Title) != NormString(buf.Title) ||
		NormString(base.Description) != NormString(buf.Description) ||
		NormString(base.Keywords) != NormString(buf.Keywords) ||
		NormString(base.Lang) != NormString(buf.Lang) {
		return true
	}
	return base.AllowRegister != buf.AllowRegister ||
		base.AllowXMLRPC != buf.AllowXMLRPC ||
		base.Timezone != buf.Timezone
}

func storageDirty(base, buf *Storage) bool {
	if base == nil || buf == nil {
		return false
	}
	if !StringSetsEqual(base.AttachmentTypes, buf.AttachmentTypes) {
		return true
	}
	// The free-text extension list is invisible (and irrelevant) while
	// the @other@ marker is unselected.
	if slices.Contains(buf.AttachmentTypes, OtherTypesMarker) {
		return NormString(base.OtherTypes) != NormString(buf.OtherTypes)
	}
	return false
}

func readingDirty(base, buf *Reading) bool {
	if base == nil || buf == nil {
		return false
	}
	if NormString(base.PostDateFormat) != NormString(buf.PostDateFormat) {
		return true
	}
	if NormString(base.FrontPageType) != NormString(buf.FrontPageType) {
		return true
	}
	// FrontPageValue is reconstructed from the page/file picker; it
	// only exists while the front page is non-default.
	if NormString(buf.FrontPageType) != FrontPageRecent &&
		NormString(base.FrontPageValue) != NormString(buf.FrontPageValue) {
		return true
	}
	if base.FrontArchive != buf.FrontArchive {
		return true
	}
	if buf.FrontArchive != 0 && NormString(buf.FrontPageType) != FrontPageRecent &&
		NormString(base.ArchivePattern) != NormString(buf.ArchivePattern) {
		return true
	}
	return base.PostsListSize != buf.PostsListSize ||
		base.FeedListSize != buf.FeedListSize ||
		NormString(base.FeedFullText) != NormString(buf.FeedFullText)
}

func discussionDirty(base, buf *Discussion) bool {
	if base == nil || buf == nil {
		return false
	}
	if NormString(base.DateFormat) != NormString(buf.DateFormat) ||
		NormString(base.Order) != NormString(buf.Order) {
		return true
	}
	if base.ListSize != buf.ListSize ||
		base.Threaded != buf.Threaded ||
		base.MaxNestingLevels != buf.MaxNestingLevels ||
		base.PageBreak != buf.PageBreak ||
		base.RequireModeration != buf.RequireModeration ||
		base.RequireMail != buf.RequireMail ||
		base.RequireURL != buf.RequireURL ||
		base.AntiSpam != buf.AntiSpam ||
		base.Markdown != buf.Markdown ||
		base.PostIntervalEnable != buf.PostIntervalEnable {
		return true
	}
	// Page size is hidden while pagination is off.
	if buf.PageBreak != 0 {
		if base.PageSize != buf.PageSize ||
			NormString(base.PageDisplay) != NormString(buf.PageDisplay) {
			return true
		}
	}
	// Interval minutes are hidden while the limiter is off.
	if buf.PostIntervalEnable != 0 && base.PostInterval != buf.PostInterval {
		return true
	}
	return false
}

func notifyDirty(base, buf *Notify) bool {
	if base == nil || buf == nil {
		return false
	}
	// Write-only password: the server never echoes it, so any typed
	// value is an edit regardless of baseline.
	if strings.TrimSpace(buf.Password) != "" {
		return true
	}
	return base.Enabled != buf.Enabled ||
		NormString(base.Host) != NormString(buf.Host) ||
		base.Port != buf.Port ||
		base.Secure != buf.Secure ||
		NormString(base.User) != NormString(buf.User) ||
		NormString(base.From) != NormString(buf.From)
}

func permalinkDirty(base, buf *Permalink) bool {
	if base == nil || buf == nil {
		return false
	}
	// The buffer stores a UI selection while the baseline stores the
	// literal stored pattern; re-run the display classification to
	// compare like with like.
	baseToken := permalink.Classify(base.Pattern, permalink.PostPresets)
	if buf.Preset != baseToken {
		return true
	}
	if buf.Preset == permalink.Custom &&
		permalink.NormalizeRule(buf.CustomPattern) != permalink.NormalizeRule(base.Pattern) {
		return true
	}
	return NormString(base.PagePattern) != NormString(buf.PagePattern) ||
		NormString(base.CategoryPattern) != NormString(buf.CategoryPattern)
}
