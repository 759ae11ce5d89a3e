package settings

import "github.com/roach88/quill/internal/permalink"

// Snapshot holds one value per domain. A nil pointer means the domain
// has never been loaded; evaluators treat that as clean, never as an
// error.
type Snapshot struct {
	Profile     *Profile     `json:"profile,omitempty"`
	UserOptions *UserOptions `json:"userOptions,omitempty"`
	Site        *Site        `json:"site,omitempty"`
	Storage     *Storage     `json:"storage,omitempty"`
	Reading     *Reading     `json:"reading,omitempty"`
	Discussion  *Discussion  `json:"discussion,omitempty"`
	Notify      *Notify      `json:"notify,omitempty"`
	Permalink   *Permalink   `json:"permalink,omitempty"`
}

// Clone deep-copies the snapshot so baseline and buffer never share
// backing slices.
func (s Snapshot) Clone() Snapshot {
	return Snapshot{
		Profile:     s.Profile.clone(),
		UserOptions: s.UserOptions.clone(),
		Site:        s.Site.clone(),
		Storage:     s.Storage.clone(),
		Reading:     s.Reading.clone(),
		Discussion:  s.Discussion.clone(),
		Notify:      s.Notify.clone(),
		Permalink:   s.Permalink.clone(),
	}
}

// State is the baseline/buffer pair for all domains.
//
// Baseline is owned here and replaced wholesale after a successful
// fetch or save. Buffer is owned by the editing layer and mutated
// freely; it is only synced from baseline on an explicit (re)load.
type State struct {
	Baseline Snapshot
	Buffer   Snapshot
}

// NewState builds a State from a freshly fetched baseline. The buffer
// starts buffer-equivalent, so every domain reads clean.
func NewState(baseline Snapshot) *State {
	st := &State{}
	st.Load(baseline)
	return st
}

// Load replaces the baseline with server data and resets the buffer to
// match. The permalink buffer stores a UI selection rather than the
// literal pattern, so loading derives the selection by classifying the
// stored rule.
func (st *State) Load(baseline Snapshot) {
	st.Baseline = baseline
	st.Buffer = baseline.Clone()

	if p := st.Buffer.Permalink; p != nil {
		p.Preset = permalink.Classify(p.Pattern, permalink.PostPresets)
		if p.Preset == permalink.Custom {
			p.CustomPattern = p.Pattern
		} else {
			p.CustomPattern = ""
		}
	}

	// The server never echoes the notification password; the loaded
	// baseline is conceptually password-empty on both sides.
	if n := st.Baseline.Notify; n != nil {
		n.Password = ""
	}
	if n := st.Buffer.Notify; n != nil {
		n.Password = ""
	}
}

// Dirty reports whether domain d's buffer differs from its baseline
// under that domain's comparison rules. Pure: recomputable on every
// keystroke.
func (st *State) Dirty(d Domain) bool {
	switch d {
	case DomainProfile:
		return profileDirty(st.Baseline.Profile, st.Buffer.Profile)
	case DomainUserOptions:
		return userOptionsDirty(st.Baseline.UserOptions, st.Buffer.UserOptions)
	case DomainSite:
		return siteDirty(st.Baseline.Site, st.Buffer.Site)
	case DomainStorage:
		return storageDirty(st.Baseline.Storage, st.Buffer.Storage)
	case DomainReading:
		return readingDirty(st.Baseline.Reading, st.Buffer.Reading)
	case DomainDiscussion:
		return discussionDirty(st.Baseline.Discussion, st.Buffer.Discussion)
	case DomainNotify:
		return notifyDirty(st.Baseline.Notify, st.Buffer.Notify)
	case DomainPermalink:
		return permalinkDirty(st.Baseline.Permalink, st.Buffer.Permalink)
	default:
		return false
	}
}

// DirtyState recomputes the full domain -> dirty map.
func (st *State) DirtyState() map[Domain]bool {
	out := make(map[Domain]bool, len(SaveOrder))
	for _, d := range SaveOrder {
		out[d] = st.Dirty(d)
	}
	return out
}

// DirtyDomains returns the dirty subset in save priority order.
func (st *State) DirtyDomains() []Domain {
	var out []Domain
	for _, d := range SaveOrder {
		if st.Dirty(d) {
			out = append(out, d)
		}
	}
	return out
}
