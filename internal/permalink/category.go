package permalink

import "strings"

// Category is one node of the parent-linked category forest.
// MID is the node id; Parent is 0 at a root. The data is user-entered
// and untrusted, so traversal must survive broken or circular links.
type Category struct {
	MID    int64
	Parent int64
	Slug   string
	Name   string
}

// DirectoryPath walks from leaf to root and returns the slash-joined
// slug chain, root first. Nodes without a slug contribute nothing.
// Returns "" when the leaf has no id or no ancestor has a slug.
//
// The seen set is mandatory: circular parent links must terminate, not
// hang the caller.
func DirectoryPath(leaf Category, byID map[int64]Category) string {
	seen := make(map[int64]bool)
	var slugs []string

	current := leaf
	for {
		if current.MID <= 0 || seen[current.MID] {
			break
		}
		seen[current.MID] = true

		if slug := strings.TrimSpace(current.Slug); slug != "" {
			slugs = append(slugs, slug)
		}

		parent, ok := byID[current.Parent]
		if !ok {
			break
		}
		current = parent
	}

	if len(slugs) == 0 {
		return ""
	}

	// Collected leaf-first; the path reads root-first.
	for i, j := 0, len(slugs)-1; i < j; i, j = i+1, j-1 {
		slugs[i], slugs[j] = slugs[j], slugs[i]
	}
	return strings.Join(slugs, "/")
}
