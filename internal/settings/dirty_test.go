package settings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// fullSnapshot builds a populated snapshot whose buffer copy reads
// clean against itself for every domain.
func fullSnapshot() Snapshot {
	return Snapshot{
		Profile: &Profile{ScreenName: "admin", Mail: "admin@example.com", URL: "http://example.com"},
		UserOptions: &UserOptions{
			Markdown: 1, XMLRPCMarkdown: 0, AutoSave: 1,
			DefaultAllow: []string{"comment", "ping", "feed"},
		},
		Site: &Site{
			SiteURL: "http://example.com", Title: "Example", Description: "demo",
			Keywords: "a,b", Lang: "en_US",
			AllowRegister: 0, AllowXMLRPC: 1, Timezone: DefaultTimezoneOffset,
		},
		Storage: &Storage{
			AttachmentTypes: []string{"@image@", "@media@"},
			OtherTypes:      "zip,rar",
		},
		Reading: &Reading{
			PostDateFormat: "n. j, Y", FrontPageType: FrontPageRecent,
			FrontPageValue: "", FrontArchive: 0, ArchivePattern: "/blog/",
			PostsListSize: 10, FeedListSize: 10, FeedFullText: "excerpt",
		},
		Discussion: &Discussion{
			DateFormat: "F jS, Y", ListSize: 10, Order: "DESC",
			Threaded: 1, MaxNestingLevels: 5,
			PageBreak: 0, PageSize: 20, PageDisplay: "last",
			RequireModeration: 0, RequireMail: 1, RequireURL: 0,
			AntiSpam: 1, Markdown: 1,
			PostIntervalEnable: 0, PostInterval: 1,
		},
		Notify: &Notify{
			Enabled: 1, Host: "smtp.example.com", Port: 25, Secure: 0,
			User: "mailer", Password: "", From: "no-reply@example.com",
		},
		Permalink: &Permalink{
			Pattern:         "/archives/[cid:digital]/",
			PagePattern:     "/[slug].html",
			CategoryPattern: "/category/[slug]/",
		},
	}
}

func TestCleanAfterLoad(t *testing.T) {
	st := NewState(fullSnapshot())
	for _, d := range SaveOrder {
		assert.False(t, st.Dirty(d), "domain %s must load clean", d)
	}
	assert.Empty(t, st.DirtyDomains())
}

func TestUnloadedDomainIsClean(t *testing.T) {
	st := NewState(Snapshot{})
	for _, d := range SaveOrder {
		assert.False(t, st.Dirty(d), "nil domain %s must be clean", d)
	}

	// A populated buffer against a nil baseline is still clean.
	st.Buffer.Profile = &Profile{ScreenName: "someone"}
	assert.False(t, st.Dirty(DomainProfile))
}

func TestProfileDirty(t *testing.T) {
	st := NewState(fullSnapshot())

	st.Buffer.Profile.ScreenName = "root"
	assert.True(t, st.Dirty(DomainProfile))

	// Whitespace-only difference is not an edit.
	st.Buffer.Profile.ScreenName = "  admin  "
	assert.False(t, st.Dirty(DomainProfile))
}

func TestUserOptionsDirty(t *testing.T) {
	st := NewState(fullSnapshot())

	// Reordering a membership set is not an edit.
	st.Buffer.UserOptions.DefaultAllow = []string{"feed", "comment", "ping"}
	assert.False(t, st.Dirty(DomainUserOptions))

	st.Buffer.UserOptions.DefaultAllow = []string{"comment"}
	assert.True(t, st.Dirty(DomainUserOptions))

	st = NewState(fullSnapshot())
	st.Buffer.UserOptions.AutoSave = 0
	assert.True(t, st.Dirty(DomainUserOptions))
}

func TestStorageDirtyOtherTypesRelevance(t *testing.T) {
	st := NewState(fullSnapshot())

	// @other@ unselected: the extension list is invisible, so editing
	// it changes nothing.
	st.Buffer.Storage.OtherTypes = "exe,bat"
	assert.False(t, st.Dirty(DomainStorage))

	// Selecting @other@ is itself an edit...
	st.Buffer.Storage = &Storage{
		AttachmentTypes: []string{"@image@", "@media@", OtherTypesMarker},
		OtherTypes:      "zip,rar",
	}
	assert.True(t, st.Dirty(DomainStorage))

	// ...and with @other@ selected on both sides, the list matters.
	snap := fullSnapshot()
	snap.Storage.AttachmentTypes = []string{"@image@", OtherTypesMarker}
	st = NewState(snap)
	assert.False(t, st.Dirty(DomainStorage))
	st.Buffer.Storage.OtherTypes = "exe"
	assert.True(t, st.Dirty(DomainStorage))
}

func TestReadingDirtyConditionalFields(t *testing.T) {
	st := NewState(fullSnapshot())

	// Front page is "recent": the page/file selector value is inert.
	st.Buffer.Reading.FrontPageValue = "9"
	assert.False(t, st.Dirty(DomainReading))

	// Archive pattern is inert while the archive toggle is off.
	st.Buffer.Reading = st.Baseline.Reading.clone()
	st.Buffer.Reading.ArchivePattern = "/posts/"
	assert.False(t, st.Dirty(DomainReading))

	// Switching the front page type is an edit by itself.
	st.Buffer.Reading = st.Baseline.Reading.clone()
	st.Buffer.Reading.FrontPageType = FrontPagePage
	assert.True(t, st.Dirty(DomainReading))

	// With a non-default front page, the selector value matters.
	snap := fullSnapshot()
	snap.Reading.FrontPageType = FrontPagePage
	snap.Reading.FrontPageValue = "2"
	st = NewState(snap)
	assert.False(t, st.Dirty(DomainReading))
	st.Buffer.Reading.FrontPageValue = "3"
	assert.True(t, st.Dirty(DomainReading))

	// Archive pattern matters once archive is on and front page is
	// non-default, on both sides.
	snap = fullSnapshot()
	snap.Reading.FrontPageType = FrontPagePage
	snap.Reading.FrontPageValue = "2"
	snap.Reading.FrontArchive = 1
	st = NewState(snap)
	st.Buffer.Reading.ArchivePattern = "/posts/"
	assert.True(t, st.Dirty(DomainReading))
}

func TestDiscussionDirtyConditionalFields(t *testing.T) {
	st := NewState(fullSnapshot())

	// Pagination off: page size and display are hidden.
	st.Buffer.Discussion.PageSize = 50
	st.Buffer.Discussion.PageDisplay = "first"
	assert.False(t, st.Dirty(DomainDiscussion))

	// Turning pagination on is an edit and exposes both fields.
	st.Buffer.Discussion.PageBreak = 1
	assert.True(t, st.Dirty(DomainDiscussion))

	// Interval minutes hidden while the limiter is off.
	st = NewState(fullSnapshot())
	st.Buffer.Discussion.PostInterval = 30
	assert.False(t, st.Dirty(DomainDiscussion))

	snap := fullSnapshot()
	snap.Discussion.PostIntervalEnable = 1
	st = NewState(snap)
	st.Buffer.Discussion.PostInterval = 30
	assert.True(t, st.Dirty(DomainDiscussion))
}

func TestNotifyDirtyPasswordAsymmetry(t *testing.T) {
	st := NewState(fullSnapshot())
	assert.False(t, st.Dirty(DomainNotify))

	// Any typed password is an edit: the server never echoes one, so
	// there is no baseline to compare against.
	st.Buffer.Notify.Password = "secret"
	assert.True(t, st.Dirty(DomainNotify))

	// Whitespace is not a password.
	st.Buffer.Notify.Password = "   "
	assert.False(t, st.Dirty(DomainNotify))

	// Clearing it back out clears the flag.
	st.Buffer.Notify.Password = ""
	assert.False(t, st.Dirty(DomainNotify))

	st.Buffer.Notify.Host = "smtp2.example.com"
	assert.True(t, st.Dirty(DomainNotify))
}

func TestNotifyPasswordClearedOnLoad(t *testing.T) {
	snap := fullSnapshot()
	snap.Notify.Password = "leaked"
	st := NewState(snap)

	assert.Empty(t, st.Baseline.Notify.Password)
	assert.Empty(t, st.Buffer.Notify.Password)
	assert.False(t, st.Dirty(DomainNotify))
}

func TestPermalinkDirtyPresetReclassification(t *testing.T) {
	st := NewState(fullSnapshot())

	// Load derived the selection from the stored pattern.
	assert.Equal(t, "default", st.Buffer.Permalink.Preset)
	assert.False(t, st.Dirty(DomainPermalink))

	// Picking a different preset is an edit.
	st.Buffer.Permalink.Preset = "wordpress"
	assert.True(t, st.Dirty(DomainPermalink))

	// Re-picking the baseline's own shape clears it.
	st.Buffer.Permalink.Preset = "default"
	assert.False(t, st.Dirty(DomainPermalink))
}

func TestPermalinkDirtyCustomPattern(t *testing.T) {
	snap := fullSnapshot()
	snap.Permalink.Pattern = "/posts/[slug]/"
	st := NewState(snap)

	// A stored non-preset pattern loads as the custom selection with
	// the literal rule carried along.
	assert.Equal(t, PresetCustom, st.Buffer.Permalink.Preset)
	assert.Equal(t, "/posts/[slug]/", st.Buffer.Permalink.CustomPattern)
	assert.False(t, st.Dirty(DomainPermalink))

	// Editing the custom rule text is an edit.
	st.Buffer.Permalink.CustomPattern = "/entries/[slug]/"
	assert.True(t, st.Dirty(DomainPermalink))

	// A missing leading slash is normalized away before comparing.
	st.Buffer.Permalink.CustomPattern = "posts/[slug]/"
	assert.False(t, st.Dirty(DomainPermalink))
}

func TestPermalinkDirtySecondaryPatterns(t *testing.T) {
	st := NewState(fullSnapshot())

	st.Buffer.Permalink.PagePattern = "/pages/[slug].html"
	assert.True(t, st.Dirty(DomainPermalink))

	st = NewState(fullSnapshot())
	st.Buffer.Permalink.CategoryPattern = "/cat/[slug]/"
	assert.True(t, st.Dirty(DomainPermalink))
}

func TestDirtyDomainsOrder(t *testing.T) {
	st := NewState(fullSnapshot())

	// Dirty three domains out of declaration order; the report comes
	// back in save priority order.
	st.Buffer.Notify.Host = "x"
	st.Buffer.Profile.ScreenName = "x"
	st.Buffer.Reading.PostsListSize = 25

	assert.Equal(t, []Domain{DomainProfile, DomainReading, DomainNotify}, st.DirtyDomains())

	state := st.DirtyState()
	assert.Len(t, state, len(SaveOrder))
	assert.True(t, state[DomainProfile])
	assert.False(t, state[DomainSite])
}
