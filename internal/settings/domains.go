// Package settings holds the typed schemas for the eight configuration
// domains of the console, the baseline/buffer state records, and the
// per-domain dirty evaluators.
//
// Each domain is saved and loaded independently. The baseline is the
// last value acknowledged by the server; the buffer is the user's
// in-progress edits. Dirty detection is a pure function of the pair and
// is recomputed on demand, never cached.
package settings

// Domain identifies one independently saved settings group.
type Domain string

const (
	DomainProfile     Domain = "profile"
	DomainUserOptions Domain = "userOptions"
	DomainSite        Domain = "site"
	DomainStorage     Domain = "storage"
	DomainReading     Domain = "reading"
	DomainDiscussion  Domain = "discussion"
	DomainNotify      Domain = "notify"
	DomainPermalink   Domain = "permalink"
)

// SaveOrder is the fixed priority order for batch saves. It mirrors the
// declared section order of the console; later domains may causally
// depend on earlier ones being persisted (the permalink preview reads
// the site URL, for example).
//
// This order NEVER changes after declaration. Orchestration, reporting
// and tests all rely on it.
var SaveOrder = []Domain{
	DomainProfile,
	DomainUserOptions,
	DomainSite,
	DomainStorage,
	DomainReading,
	DomainDiscussion,
	DomainNotify,
	DomainPermalink,
}

// Valid reports whether d names a known domain.
func (d Domain) Valid() bool {
	for _, known := range SaveOrder {
		if d == known {
			return true
		}
	}
	return false
}

// Profile holds the signed-in user's public identity fields.
type Profile struct {
	ScreenName string `json:"screenName"`
	Mail       string `json:"mail"`
	URL        string `json:"url"`
}

// UserOptions holds the signed-in user's editor preferences.
// Numeric toggles are 0/1 as the server stores them.
type UserOptions struct {
	Markdown       int64 `json:"markdown"`
	XMLRPCMarkdown int64 `json:"xmlrpcMarkdown"`
	AutoSave       int64 `json:"autoSave"`

	// DefaultAllow is a membership set ("comment", "ping", "feed");
	// the UI reorders it freely, so comparison is order-insensitive.
	DefaultAllow []string `json:"defaultAllow"`
}

// DefaultTimezoneOffset is the fallback timezone offset in seconds
// (UTC+8) used when the stored value does not coerce to a number.
const DefaultTimezoneOffset = 28800

// Site holds the site-wide identity and access options.
type Site struct {
	SiteURL     string `json:"siteUrl"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Keywords    string `json:"keywords"`
	Lang        string `json:"lang"`

	AllowRegister int64 `json:"allowRegister"`
	AllowXMLRPC   int64 `json:"allowXmlRpc"`
	Timezone      int64 `json:"timezone"`
}

// OtherTypesMarker is the member of Storage.AttachmentTypes that makes
// the free-text extension list relevant.
const OtherTypesMarker = "@other@"

// Storage holds upload policy options. AttachmentTypes carries
// @-wrapped group markers (@image@, @media@, @doc@, @other@); the
// free-text OtherTypes extension list only matters while the @other@
// marker is selected.
type Storage struct {
	AttachmentTypes []string `json:"attachmentTypes"`
	OtherTypes      string   `json:"attachmentTypesOther"`
}

// Front-page modes for Reading.FrontPageType.
const (
	FrontPageRecent = "recent"
	FrontPagePage   = "page"
	FrontPageFile   = "file"
)

// Reading holds the reading/front-page options. FrontPageValue is the
// page id or file name selected for non-default front pages; it is
// irrelevant while FrontPageType is "recent". ArchivePattern is
// irrelevant unless the front archive is enabled AND the front page is
// non-default.
type Reading struct {
	PostDateFormat string `json:"postDateFormat"`
	FrontPageType  string `json:"frontPageType"`
	FrontPageValue string `json:"frontPageValue"`
	FrontArchive   int64  `json:"frontArchive"`
	ArchivePattern string `json:"archivePattern"`
	PostsListSize  int64  `json:"postsListSize"`
	FeedListSize   int64  `json:"feedListSize"`
	FeedFullText   string `json:"feedFullText"`
}

// Discussion holds comment policy options. PageSize only matters while
// pagination (PageBreak) is on; PostInterval minutes only matter while
// PostIntervalEnable is on.
type Discussion struct {
	DateFormat         string  `json:"dateFormat"`
	ListSize           int64   `json:"listSize"`
	Order              string  `json:"order"`
	Threaded           int64   `json:"threaded"`
	MaxNestingLevels   int64   `json:"maxNestingLevels"`
	PageBreak          int64   `json:"pageBreak"`
	PageSize           int64   `json:"pageSize"`
	PageDisplay        string  `json:"pageDisplay"`
	RequireModeration  int64   `json:"requireModeration"`
	RequireMail        int64   `json:"requireMail"`
	RequireURL         int64   `json:"requireUrl"`
	AntiSpam           int64   `json:"antiSpam"`
	Markdown           int64   `json:"markdown"`
	PostIntervalEnable int64   `json:"postIntervalEnable"`
	PostInterval       float64 `json:"postInterval"`
}

// Notify holds the outbound mail notification options. Password is
// write-only: the server never echoes it back, so a loaded baseline
// always carries an empty password and any non-empty buffer value is
// treated as an edit.
type Notify struct {
	Enabled  int64  `json:"enabled"`
	Host     string `json:"host"`
	Port     int64  `json:"port"`
	Secure   int64  `json:"secure"`
	User     string `json:"user"`
	Password string `json:"password"`
	From     string `json:"from"`
}

// PresetCustom is the Permalink.Preset value meaning "free-form rule".
const PresetCustom = "custom"

// Permalink holds the URL-rewrite options. The baseline side stores the
// literal post pattern the server persists (Pattern); the buffer side
// stores the UI selection (Preset, plus CustomPattern when the preset
// is "custom"). The dirty evaluator bridges the two representations by
// re-classifying the baseline pattern.
type Permalink struct {
	Pattern         string `json:"postPattern"`
	Preset          string `json:"postPatternPreset"`
	CustomPattern   string `json:"customPattern"`
	PagePattern     string `json:"pagePattern"`
	CategoryPattern string `json:"categoryPattern"`
}

func (p *Profile) clone() *Profile {
	if p == nil {
		return nil
	}
	cp := *p
	return &cp
}

func (u *UserOptions) clone() *UserOptions {
	if u == nil {
		return nil
	}
	cp := *u
	cp.DefaultAllow = append([]string(nil), u.DefaultAllow...)
	return &cp
}

func (s *Site) clone() *Site {
	if s == nil {
		return nil
	}
	cp := *s
	return &cp
}

func (s *Storage) clone() *Storage {
	if s == nil {
		return nil
	}
	cp := *s
	cp.AttachmentTypes = append([]string(nil), s.AttachmentTypes...)
	return &cp
}

func (r *Reading) clone() *Reading {
	if r == nil {
		return nil
	}
	cp := *r
	return &cp
}

func (d *Discussion) clone() *Discussion {
	if d == nil {
		return nil
	}
	cp := *d
	return &cp
}

func (n *Notify) clone() *Notify {
	if n == nil {
		return nil
	}
	cp := *n
	return &cp
}

func (p *Permalink) clone() *Permalink {
	if p == nil {
		return nil
	}
	cp := *p
	return &cp
}
