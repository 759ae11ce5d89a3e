package settings

import (
	"fmt"

	"github.com/roach88/quill/internal/permalink"
)

// ApplyEdits applies a per-domain field overlay onto the buffer side.
// Keys use the wire field names; values are coerced through the
// normalizers (numeric strings, null, reordered lists are all fine).
// Unknown domains, unloaded domains, and unknown field names are
// errors: a typo in an edits file must not silently change nothing.
func (st *State) ApplyEdits(edits map[Domain]map[string]any) error {
	for d, fields := range edits {
		if !d.Valid() {
			return fmt.Errorf("unknown settings domain %q", d)
		}
		if err := st.applyDomainEdits(d, fields); err != nil {
			return fmt.Errorf("domain %s: %w", d, err)
		}
	}
	return nil
}

func (st *State) applyDomainEdits(d Domain, fields map[string]any) error {
	switch d {
	case DomainProfile:
		return applyProfile(st.Buffer.Profile, fields)
	case DomainUserOptions:
		return applyUserOptions(st.Buffer.UserOptions, fields)
	case DomainSite:
		return applySite(st.Buffer.Site, fields)
	case DomainStorage:
		return applyStorage(st.Buffer.Storage, fields)
	case DomainReading:
		return applyReading(st.Buffer.Reading, fields)
	case DomainDiscussion:
		return applyDiscussion(st.Buffer.Discussion, fields)
	case DomainNotify:
		return applyNotify(st.Buffer.Notify, fields)
	case DomainPermalink:
		return applyPermalink(st.Buffer.Permalink, fields)
	}
	return nil
}

func toggle(v any) int64 {
	return int64(NormNumber(v, 0))
}

func applyProfile(p *Profile, fields map[string]any) error {
	if p == nil {
		return fmt.Errorf("not loaded")
	}
	for k, v := range fields {
		switch k {
		case "screenName":
			p.ScreenName = NormString(v)
		case "mail":
			p.Mail = NormString(v)
		case "url":
			p.URL = NormString(v)
		default:
			return fmt.Errorf("unknown field %q", k)
		}
	}
	return nil
}

func applyUserOptions(u *UserOptions, fields map[string]any) error {
	if u == nil {
		return fmt.Errorf("not loaded")
	}
	for k, v := range fields {
		switch k {
		case "markdown":
			u.Markdown = toggle(v)
		case "xmlrpcMarkdown":
			u.XMLRPCMarkdown = toggle(v)
		case "autoSave":
			u.AutoSave = toggle(v)
		case "defaultAllow":
			list, err := StringList(v)
			if err != nil {
				return fmt.Errorf("defaultAllow: %w", err)
			}
			u.DefaultAllow = list
		default:
			return fmt.Errorf("unknown field %q", k)
		}
	}
	return nil
}

func applySite(s *Site, fields map[string]any) error {
	if s == nil {
		return fmt.Errorf("not loaded")
	}
	for k, v := range fields {
		switch k {
		case "siteUrl":
			s.SiteURL = NormString(v)
		case "title":
			s.Title = NormString(v)
		case "description":
			s.Description = NormString(v)
		case "keywords":
			s.Keywords = NormString(v)
		case "lang":
			s.Lang = NormString(v)
		case "allowRegister":
			s.AllowRegister = toggle(v)
		case "allowXmlRpc":
			s.AllowXMLRPC = toggle(v)
		case "timezone":
			s.Timezone = int64(NormNumber(v, DefaultTimezoneOffset))
		default:
			return fmt.Errorf("unknown field %q", k)
		}
	}
	return nil
}

func applyStorage(s *Storage, fields map[string]any) error {
	if s == nil {
		return fmt.Errorf("not loaded")
	}
	for k, v := range fields {
		switch k {
		case "attachmentTypes":
			list, err := StringList(v)
			if err != nil {
				return fmt.Errorf("attachmentTypes: %w", err)
			}
			s.AttachmentTypes = list
		case "attachmentTypesOther":
			s.OtherTypes = NormString(v)
		default:
			return fmt.Errorf("unknown field %q", k)
		}
	}
	return nil
}

func applyReading(r *Reading, fields map[string]any) error {
	if r == nil {
		return fmt.Errorf("not loaded")
	}
	for k, v := range fields {
		switch k {
		case "postDateFormat":
			r.PostDateFormat = NormString(v)
		case "frontPageType":
			r.FrontPageType = NormString(v)
		case "frontPageValue":
			r.FrontPageValue = NormString(v)
		case "frontArchive":
			r.FrontArchive = toggle(v)
		case "archivePattern":
			r.ArchivePattern = NormString(v)
		case "postsListSize":
			r.PostsListSize = int64(NormNumber(v, 0))
		case "feedListSize":
			r.FeedListSize = int64(NormNumber(v, 0))
		case "feedFullText":
			r.FeedFullText = NormString(v)
		default:
			return fmt.Errorf("unknown field %q", k)
		}
	}
	return nil
}

func applyDiscussion(d *Discussion, fields map[string]any) error {
	if d == nil {
		return fmt.Errorf("not loaded")
	}
	for k, v := range fields {
		switch k {
		case "dateFormat":
			d.DateFormat = NormString(v)
		case "listSize":
			d.ListSize = int64(NormNumber(v, 0))
		case "order":
			d.Order = NormString(v)
		case "threaded":
			d.Threaded = toggle(v)
		case "maxNestingLevels":
			d.MaxNestingLevels = int64(NormNumber(v, 0))
		case "pageBreak":
			d.PageBreak = toggle(v)
		case "pageSize":
			d.PageSize = int64(NormNumber(v, 0))
		case "pageDisplay":
			d.PageDisplay = NormString(v)
		case "requireModeration":
			d.RequireModeration = toggle(v)
		case "requireMail":
			d.RequireMail = toggle(v)
		case "requireUrl":
			d.RequireURL = toggle(v)
		case "antiSpam":
			d.AntiSpam = toggle(v)
		case "markdown":
			d.Markdown = toggle(v)
		case "postIntervalEnable":
			d.PostIntervalEnable = toggle(v)
		case "postInterval":
			d.PostInterval = NormNumber(v, 0)
		default:
			return fmt.Errorf("unknown field %q", k)
		}
	}
	return nil
}

func applyNotify(n *Notify, fields map[string]any) error {
	if n == nil {
		return fmt.Errorf("not loaded")
	}
	for k, v := range fields {
		switch k {
		case "enabled":
			n.Enabled = toggle(v)
		case "host":
			n.Host = NormString(v)
		case "port":
			n.Port = int64(NormNumber(v, 25))
		case "secure":
			n.Secure = toggle(v)
		case "user":
			n.User = NormString(v)
		case "password":
			n.Password = NormString(v)
		case "from":
			n.From = NormString(v)
		default:
			return fmt.Errorf("unknown field %q", k)
		}
	}
	return nil
}

func applyPermalink(p *Permalink, fields map[string]any) error {
	if p == nil {
		return fmt.Errorf("not loaded")
	}
	for k, v := range fields {
		switch k {
		case "postPatternPreset":
			preset := NormString(v)
			if preset != permalink.Custom {
				if _, ok := permalink.PresetRule(preset, permalink.PostPresets); !ok {
					return fmt.Errorf("unknown permalink preset %q", preset)
				}
			}
			p.Preset = preset
		case "customPattern":
			p.CustomPattern = NormString(v)
		case "pagePattern":
			p.PagePattern = NormString(v)
		case "categoryPattern":
			p.CategoryPattern = NormString(v)
		default:
			return fmt.Errorf("unknown field %q", k)
		}
	}
	return nil
}
