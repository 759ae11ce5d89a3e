package api

import (
	"context"
	"fmt"
	"strings"

	"github.com/roach88/quill/internal/permalink"
	"github.com/roach88/quill/internal/reconcile"
	"github.com/roach88/quill/internal/schema"
	"github.com/roach88/quill/internal/settings"
)

// Fetch pulls the full settings.get payload and decodes it into a
// baseline snapshot plus the auxiliary lookups.
func Fetch(ctx context.Context, c *Client) (settings.Snapshot, schema.Lookups, error) {
	data, err := c.Do(ctx, ActionSettingsGet, nil)
	if err != nil {
		return settings.Snapshot{}, schema.Lookups{}, err
	}
	return schema.DecodePayload(data)
}

// SaveOptions tweaks the per-domain save parameter encoding.
type SaveOptions struct {
	// ForceRewrite asks the server to enable the requested rewrite
	// mode even when its capability check fails. Only meaningful for
	// the permalink domain, after a CodeRewriteCheckFailed rejection.
	ForceRewrite bool
}

// Savers builds one SaveFunc per domain over c. Each saver encodes its
// domain's buffer the way the save action expects (numeric toggles as
// "0"/"1", conditional fields included even while visually hidden),
// then replaces the baseline with the validated server echo.
func Savers(c *Client, opts SaveOptions) map[settings.Domain]reconcile.SaveFunc {
	return map[settings.Domain]reconcile.SaveFunc{
		settings.DomainProfile:     saveDomain(c, ActionProfileSave, settings.DomainProfile, profileParams),
		settings.DomainUserOptions: saveDomain(c, ActionUserOptionsSave, settings.DomainUserOptions, userOptionsParams),
		settings.DomainSite:        saveDomain(c, ActionSiteSave, settings.DomainSite, siteParams),
		settings.DomainStorage:     saveDomain(c, ActionStorageSave, settings.DomainStorage, storageParams),
		settings.DomainReading:     saveDomain(c, ActionReadingSave, settings.DomainReading, readingParams),
		settings.DomainDiscussion:  saveDomain(c, ActionDiscussionSave, settings.DomainDiscussion, discussionParams),
		settings.DomainNotify:      saveDomain(c, ActionNotifySave, settings.DomainNotify, notifyParams),
		settings.DomainPermalink:   saveDomain(c, ActionPermalinkSave, settings.DomainPermalink, permalinkParams(opts)),
	}
}

// paramsFunc encodes one domain's buffer into action parameters.
type paramsFunc func(buf settings.Snapshot) (map[string]string, error)

func saveDomain(c *Client, action string, d settings.Domain, encode paramsFunc) reconcile.SaveFunc {
	return func(ctx context.Context, st *settings.State) error {
		params, err := encode(st.Buffer)
		if err != nil {
			return err
		}
		data, err := c.Do(ctx, action, params)
		if err != nil {
			return err
		}
		return schema.DecodeDomainEcho(&st.Baseline, d, data)
	}
}

func profileParams(buf settings.Snapshot) (map[string]string, error) {
	p := buf.Profile
	if p == nil {
		return nil, fmt.Errorf("profile buffer not loaded")
	}
	return map[string]string{
		"screenName": p.ScreenName,
		"mail":       p.Mail,
		"url":        p.URL,
	}, nil
}

func userOptionsParams(buf settings.Snapshot) (map[string]string, error) {
	u := buf.UserOptions
	if u == nil {
		return nil, fmt.Errorf("userOptions buffer not loaded")
	}
	return map[string]string{
		"markdown":       settings.FormatToggle(u.Markdown),
		"xmlrpcMarkdown": settings.FormatToggle(u.XMLRPCMarkdown),
		"autoSave":       settings.FormatToggle(u.AutoSave),
		"defaultAllow":   strings.Join(u.DefaultAllow, ","),
	}, nil
}

func siteParams(buf settings.Snapshot) (map[string]string, error) {
	s := buf.Site
	if s == nil {
		return nil, fmt.Errorf("site buffer not loaded")
	}
	return map[string]string{
		"siteUrl":       s.SiteURL,
		"title":         s.Title,
		"description":   s.Description,
		"keywords":      s.Keywords,
		"lang":          s.Lang,
		"allowRegister": settings.FormatToggle(s.AllowRegister),
		"allowXmlRpc":   settings.FormatToggle(s.AllowXMLRPC),
		"timezone":      settings.FormatNumber(float64(s.Timezone)),
	}, nil
}

func storageParams(buf settings.Snapshot) (map[string]string, error) {
	s := buf.Storage
	if s == nil {
		return nil, fmt.Errorf("storage buffer not loaded")
	}
	// attachmentTypesOther rides along even while the @other@ marker is
	// unselected; the server keeps it for the next time the box is
	// ticked.
	return map[string]string{
		"attachmentTypes":      strings.Join(s.AttachmentTypes, ","),
		"attachmentTypesOther": s.OtherTypes,
	}, nil
}

func readingParams(buf settings.Snapshot) (map[string]string, error) {
	r := buf.Reading
	if r == nil {
		return nil, fmt.Errorf("reading buffer not loaded")
	}
	return map[string]string{
		"postDateFormat": r.PostDateFormat,
		"frontPageType":  r.FrontPageType,
		"frontPageValue": r.FrontPageValue,
		"frontArchive":   settings.FormatToggle(r.FrontArchive),
		"archivePattern": r.ArchivePattern,
		"postsListSize":  settings.FormatNumber(float64(r.PostsListSize)),
		"feedListSize":   settings.FormatNumber(float64(r.FeedListSize)),
		"feedFullText":   r.FeedFullText,
	}, nil
}

func discussionParams(buf settings.Snapshot) (map[string]string, error) {
	d := buf.Discussion
	if d == nil {
		return nil, fmt.Errorf("discussion buffer not loaded")
	}
	return map[string]string{
		"dateFormat":         d.DateFormat,
		"listSize":           settings.FormatNumber(float64(d.ListSize)),
		"order":              d.Order,
		"threaded":           settings.FormatToggle(d.Threaded),
		"maxNestingLevels":   settings.FormatNumber(float64(d.MaxNestingLevels)),
		"pageBreak":          settings.FormatToggle(d.PageBreak),
		"pageSize":           settings.FormatNumber(float64(d.PageSize)),
		"pageDisplay":        d.PageDisplay,
		"requireModeration":  settings.FormatToggle(d.RequireModeration),
		"requireMail":        settings.FormatToggle(d.RequireMail),
		"requireUrl":         settings.FormatToggle(d.RequireURL),
		"antiSpam":           settings.FormatToggle(d.AntiSpam),
		"markdown":           settings.FormatToggle(d.Markdown),
		"postIntervalEnable": settings.FormatToggle(d.PostIntervalEnable),
		"postInterval":       settings.FormatNumber(d.PostInterval),
	}, nil
}

func notifyParams(buf settings.Snapshot) (map[string]string, error) {
	n := buf.Notify
	if n == nil {
		return nil, fmt.Errorf("notify buffer not loaded")
	}
	// An empty password means "unchanged" server-side; it is sent
	// either way so the field set stays stable.
	return map[string]string{
		"enabled":  settings.FormatToggle(n.Enabled),
		"host":     n.Host,
		"port":     settings.FormatNumber(float64(n.Port)),
		"secure":   settings.FormatToggle(n.Secure),
		"user":     n.User,
		"password": n.Password,
		"from":     n.From,
	}, nil
}

func permalinkParams(opts SaveOptions) paramsFunc {
	return func(buf settings.Snapshot) (map[string]string, error) {
		p := buf.Permalink
		if p == nil {
			return nil, fmt.Errorf("permalink buffer not loaded")
		}

		// Resolve the UI selection back into a literal pattern; custom
		// selections keep the user's text verbatim apart from the
		// leading slash the router requires.
		pattern := permalink.NormalizeRule(p.CustomPattern)
		if p.Preset != permalink.Custom {
			rule, ok := permalink.PresetRule(p.Preset, permalink.PostPresets)
			if !ok {
				return nil, fmt.Errorf("unknown permalink preset %q", p.Preset)
			}
			pattern = rule
		}

		params := map[string]string{
			"postPattern":     pattern,
			"pagePattern":     p.PagePattern,
			"categoryPattern": p.CategoryPattern,
		}
		if opts.ForceRewrite {
			params["enableRewriteAnyway"] = "1"
		}
		return params, nil
	}
}
