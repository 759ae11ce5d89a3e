// Package schema is the single conversion point between the server's
// loosely typed JSON payloads and the console's typed settings
// domains. Payloads are validated against an embedded CUE schema
// before decoding, so shape mismatches fail loudly here instead of
// surfacing as silent coercions inside a comparison somewhere.
package schema

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"time"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	cuejson "cuelang.org/go/encoding/json"

	"github.com/roach88/quill/internal/settings"
)

//go:embed settings.cue
var schemaSource string

// Lookups carries the auxiliary lists the settings.get payload ships
// alongside the domain objects.
type Lookups struct {
	Languages  []string
	FrontPages []FrontPageCandidate

	// ServerTime is the server-reported current time, zero when the
	// payload omitted it.
	ServerTime time.Time
}

// FrontPageCandidate is one selectable front-page target.
type FrontPageCandidate struct {
	Value string
	Name  string
}

// PayloadError reports a payload that failed schema validation.
type PayloadError struct {
	Source string // which payload ("settings.get", a save echo, ...)
	Detail string
}

func (e *PayloadError) Error() string {
	return fmt.Sprintf("%s: payload rejected: %s", e.Source, e.Detail)
}

// DecodePayload validates and decodes a full settings.get payload into
// a baseline snapshot plus the auxiliary lookups.
func DecodePayload(raw []byte) (settings.Snapshot, Lookups, error) {
	var snap settings.Snapshot
	var lookups Lookups

	if err := validate("settings.get", "#Payload", raw); err != nil {
		return snap, lookups, err
	}

	root, err := decodeLoose(raw)
	if err != nil {
		return snap, lookups, &PayloadError{Source: "settings.get", Detail: err.Error()}
	}

	for _, d := range settings.SaveOrder {
		section, ok := root[string(d)].(map[string]any)
		if !ok {
			return snap, lookups, &PayloadError{
				Source: "settings.get",
				Detail: fmt.Sprintf("missing %s section", d),
			}
		}
		if err := buildInto(&snap, d, section); err != nil {
			return snap, lookups, err
		}
	}

	if langs, ok := root["languages"]; ok {
		list, err := settings.StringList(langs)
		if err != nil {
			return snap, lookups, &PayloadError{Source: "settings.get", Detail: "languages: " + err.Error()}
		}
		lookups.Languages = list
	}
	if fps, ok := root["frontPages"].([]any); ok {
		for _, fp := range fps {
			m, ok := fp.(map[string]any)
			if !ok {
				continue
			}
			lookups.FrontPages = append(lookups.FrontPages, FrontPageCandidate{
				Value: settings.NormString(m["value"]),
				Name:  settings.NormString(m["name"]),
			})
		}
	}
	if ts, ok := root["serverTime"]; ok {
		if unix := settings.NormNumber(ts, 0); unix > 0 {
			lookups.ServerTime = time.Unix(int64(unix), 0).UTC()
		}
	}

	return snap, lookups, nil
}

// DecodeDomainEcho validates and decodes one domain's save-action echo
// into the corresponding typed value, writing it into snap.
func DecodeDomainEcho(snap *settings.Snapshot, d settings.Domain, raw []byte) error {
	def, ok := domainDefs[d]
	if !ok {
		return fmt.Errorf("unknown settings domain %q", d)
	}
	source := fmt.Sprintf("%s echo", d)
	if err := validate(source, def, raw); err != nil {
		return err
	}
	section, err := decodeLoose(raw)
	if err != nil {
		return &PayloadError{Source: source, Detail: err.Error()}
	}
	return buildInto(snap, d, section)
}

var domainDefs = map[settings.Domain]string{
	settings.DomainProfile:     "#Profile",
	settings.DomainUserOptions: "#UserOptions",
	settings.DomainSite:        "#Site",
	settings.DomainStorage:     "#Storage",
	settings.DomainReading:     "#Reading",
	settings.DomainDiscussion:  "#Discussion",
	settings.DomainNotify:      "#Notify",
	settings.DomainPermalink:   "#Permalink",
}

// validate unifies raw JSON with the named schema definition and
// requires the result to be concrete.
func validate(source, def string, raw []byte) error {
	cctx := cuecontext.New()

	schemaVal := cctx.CompileString(schemaSource, cue.Filename("settings.cue"))
	if err := schemaVal.Err(); err != nil {
		// Embedded schema is compiled at init in practice; a broken
		// schema is a programming error, not a payload error.
		return fmt.Errorf("compile embedded schema: %w", err)
	}

	defVal := schemaVal.LookupPath(cue.ParsePath(def))
	if err := defVal.Err(); err != nil {
		return fmt.Errorf("lookup %s: %w", def, err)
	}

	expr, err := cuejson.Extract(source, raw)
	if err != nil {
		return &PayloadError{Source: source, Detail: err.Error()}
	}
	dataVal := cctx.BuildExpr(expr)
	if err := dataVal.Err(); err != nil {
		return &PayloadError{Source: source, Detail: err.Error()}
	}

	unified := defVal.Unify(dataVal)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return &PayloadError{Source: source, Detail: cueerrors.Details(err, nil)}
	}
	return nil
}

// decodeLoose decodes raw JSON with UseNumber so numeric noise reaches
// the normalizers intact.
func decodeLoose(raw []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var root map[string]any
	if err := dec.Decode(&root); err != nil {
		return nil, err
	}
	return root, nil
}

func buildInto(snap *settings.Snapshot, d settings.Domain, m map[string]any) error {
	switch d {
	case settings.DomainProfile:
		snap.Profile = buildProfile(m)
	case settings.DomainUserOptions:
		u, err := buildUserOptions(m)
		if err != nil {
			return err
		}
		snap.UserOptions = u
	case settings.DomainSite:
		snap.Site = buildSite(m)
	case settings.DomainStorage:
		s, err := buildStorage(m)
		if err != nil {
			return err
		}
		snap.Storage = s
	case settings.DomainReading:
		snap.Reading = buildReading(m)
	case settings.DomainDiscussion:
		snap.Discussion = buildDiscussion(m)
	case settings.DomainNotify:
		snap.Notify = buildNotify(m)
	case settings.DomainPermalink:
		snap.Permalink = buildPermalink(m)
	}
	return nil
}

func toggle(v any) int64 {
	return int64(settings.NormNumber(v, 0))
}

func buildProfile(m map[string]any) *settings.Profile {
	return &settings.Profile{
		ScreenName: settings.NormString(m["screenName"]),
		Mail:       settings.NormString(m["mail"]),
		URL:        settings.NormString(m["url"]),
	}
}

func buildUserOptions(m map[string]any) (*settings.UserOptions, error) {
	allow, err := settings.StringList(m["defaultAllow"])
	if err != nil {
		return nil, &PayloadError{Source: "userOptions", Detail: "defaultAllow: " + err.Error()}
	}
	return &settings.UserOptions{
		Markdown:       toggle(m["markdown"]),
		XMLRPCMarkdown: toggle(m["xmlrpcMarkdown"]),
		AutoSave:       toggle(m["autoSave"]),
		DefaultAllow:   allow,
	}, nil
}

func buildSite(m map[string]any) *settings.Site {
	return &settings.Site{
		SiteURL:       settings.NormString(m["siteUrl"]),
		Title:         settings.NormString(m["title"]),
		Description:   settings.NormString(m["description"]),
		Keywords:      settings.NormString(m["keywords"]),
		Lang:          settings.NormString(m["lang"]),
		AllowRegister: toggle(m["allowRegister"]),
		AllowXMLRPC:   toggle(m["allowXmlRpc"]),
		Timezone:      int64(settings.NormNumber(m["timezone"], settings.DefaultTimezoneOffset)),
	}
}

func buildStorage(m map[string]any) (*settings.Storage, error) {
	types, err := settings.StringList(m["attachmentTypes"])
	if err != nil {
		return nil, &PayloadError{Source: "storage", Detail: "attachmentTypes: " + err.Error()}
	}
	return &settings.Storage{
		AttachmentTypes: types,
		OtherTypes:      settings.NormString(m["attachmentTypesOther"]),
	}, nil
}

func buildReading(m map[string]any) *settings.Reading {
	return &settings.Reading{
		PostDateFormat: settings.NormString(m["postDateFormat"]),
		FrontPageType:  settings.NormString(m["frontPageType"]),
		FrontPageValue: settings.NormString(m["frontPageValue"]),
		FrontArchive:   toggle(m["frontArchive"]),
		ArchivePattern: settings.NormString(m["archivePattern"]),
		PostsListSize:  int64(settings.NormNumber(m["postsListSize"], 0)),
		FeedListSize:   int64(settings.NormNumber(m["feedListSize"], 0)),
		FeedFullText:   settings.NormString(m["feedFullText"]),
	}
}

func buildDiscussion(m map[string]any) *settings.Discussion {
	return &settings.Discussion{
		DateFormat:         settings.NormString(m["dateFormat"]),
		ListSize:           int64(settings.NormNumber(m["listSize"], 0)),
		Order:              settings.NormString(m["order"]),
		Threaded:           toggle(m["threaded"]),
		MaxNestingLevels:   int64(settings.NormNumber(m["maxNestingLevels"], 0)),
		PageBreak:          toggle(m["pageBreak"]),
		PageSize:           int64(settings.NormNumber(m["pageSize"], 0)),
		PageDisplay:        settings.NormString(m["pageDisplay"]),
		RequireModeration:  toggle(m["requireModeration"]),
		RequireMail:        toggle(m["requireMail"]),
		RequireURL:         toggle(m["requireUrl"]),
		AntiSpam:           toggle(m["antiSpam"]),
		Markdown:           toggle(m["markdown"]),
		PostIntervalEnable: toggle(m["postIntervalEnable"]),
		PostInterval:       settings.NormNumber(m["postInterval"], 0),
	}
}

func buildNotify(m map[string]any) *settings.Notify {
	return &settings.Notify{
		Enabled: toggle(m["enabled"]),
		Host:    settings.NormString(m["host"]),
		Port:    int64(settings.NormNumber(m["port"], 25)),
		Secure:  toggle(m["secure"]),
		User:    settings.NormString(m["user"]),
		// Password is write-only; the server never echoes it and the
		// baseline never carries one.
		From: settings.NormString(m["from"]),
	}
}

func buildPermalink(m map[string]any) *settings.Permalink {
	return &settings.Permalink{
		Pattern:         settings.NormString(m["postPattern"]),
		PagePattern:     settings.NormString(m["pagePattern"]),
		CategoryPattern: settings.NormString(m["categoryPattern"]),
	}
}
