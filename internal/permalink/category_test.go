package permalink

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDirectoryPath(t *testing.T) {
	forest := map[int64]Category{
		1: {MID: 1, Parent: 0, Slug: "tech"},
		2: {MID: 2, Parent: 1, Slug: "go"},
		3: {MID: 3, Parent: 2, Slug: "tooling"},
		4: {MID: 4, Parent: 1, Slug: ""},
		5: {MID: 5, Parent: 4, Slug: "deep"},
		6: {MID: 6, Parent: 99, Slug: "orphan"},
	}

	tests := []struct {
		name     string
		leaf     Category
		expected string
	}{
		{"root node", forest[1], "tech"},
		{"two levels", forest[2], "tech/go"},
		{"three levels", forest[3], "tech/go/tooling"},
		{"slugless ancestor skipped", forest[5], "tech/deep"},
		{"dangling parent stops walk", forest[6], "orphan"},
		{"zero id leaf", Category{}, ""},
		{"whitespace slug trimmed", Category{MID: 7, Slug: "  padded  "}, "padded"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DirectoryPath(tt.leaf, forest))
		})
	}
}

func TestDirectoryPathCycles(t *testing.T) {
	tests := []struct {
		name     string
		forest   map[int64]Category
		leaf     int64
		expected string
	}{
		{
			"self parent",
			map[int64]Category{
				1: {MID: 1, Parent: 1, Slug: "loop"},
			},
			1, "loop",
		},
		{
			"two node cycle",
			map[int64]Category{
				1: {MID: 1, Parent: 2, Slug: "a"},
				2: {MID: 2, Parent: 1, Slug: "b"},
			},
			1, "b/a",
		},
		{
			"cycle above a clean chain",
			map[int64]Category{
				1: {MID: 1, Parent: 2, Slug: "leaf"},
				2: {MID: 2, Parent: 3, Slug: "mid"},
				3: {MID: 3, Parent: 2, Slug: "top"},
			},
			1, "top/mid/leaf",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Must terminate; a hang here fails via the test timeout.
			assert.Equal(t, tt.expected, DirectoryPath(tt.forest[tt.leaf], tt.forest))
		})
	}
}
