package cli

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/roach88/quill/internal/permalink"
	"github.com/roach88/quill/internal/store"
)

// categoryFile is the YAML shape accepted by --categories.
type categoryFile struct {
	Categories []struct {
		MID    int64  `yaml:"mid"`
		Parent int64  `yaml:"parent"`
		Slug   string `yaml:"slug"`
		Name   string `yaml:"name"`
	} `yaml:"categories"`
}

func NewPreviewCommand(opts *RootOptions) *cobra.Command {
	var (
		rule        string
		page        bool
		cid         int64
		createdStr  string
		categoryIDs []int64
		catsPath    string
	)

	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Render a permalink for a sample item",
		Long: `Preview expands a permalink rule against a sample content item and
prints the URL split around the {slug} placeholder. Without --rule
the stored permalink pattern is used. Items without a saved id (a
non-positive --cid) have no permalink yet and render as slug-only.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := opts.formatter(cmd)

			environ, err := openEnv(opts, formatter)
			if err != nil {
				return err
			}
			defer environ.Close()

			snap, lookups, err := environ.Store.LoadBaseline(cmd.Context())
			if err != nil {
				if errors.Is(err, store.ErrNoSnapshot) {
					formatter.Error(ErrCodeStore, "no snapshot; run quill pull first", nil)
					return NewExitError(ExitCommandError, "no snapshot")
				}
				formatter.Error(ErrCodeStore, err.Error(), nil)
				return WrapExitError(ExitFailure, "load snapshot", err)
			}

			siteURL := ""
			if snap.Site != nil {
				siteURL = snap.Site.SiteURL
			}
			if rule == "" {
				if snap.Permalink == nil {
					return NewExitError(ExitCommandError, "no permalink settings in snapshot; pass --rule")
				}
				if page {
					rule = snap.Permalink.PagePattern
				} else {
					rule = snap.Permalink.Pattern
				}
			}

			item := permalink.Item{CID: cid, CategoryIDs: categoryIDs}
			if createdStr != "" {
				created, err := time.Parse(time.RFC3339, createdStr)
				if err != nil {
					return WrapExitError(ExitCommandError, "parse --created", err)
				}
				item.Created = created
			}

			fillOpts := permalink.FillOptions{
				DefaultCategory: environ.Config.DefaultCategory,
				ServerNow:       lookups.ServerTime,
			}
			if catsPath != "" {
				cats, err := loadCategories(catsPath)
				if err != nil {
					return err
				}
				fillOpts.Categories = cats
			}

			var pv permalink.Preview
			if page {
				pv = permalink.PagePreview(rule, siteURL, item)
			} else {
				pv = permalink.PostPreview(rule, siteURL, item, fillOpts)
			}

			text := fmt.Sprintf("%s{slug}%s\n", pv.Prefix, pv.Suffix)
			if !pv.HasSlug {
				text = pv.Prefix + "\n"
			}
			return formatter.SuccessText(text, pv)
		},
	}

	cmd.Flags().StringVar(&rule, "rule", "", "permalink rule to expand (defaults to the stored pattern)")
	cmd.Flags().BoolVar(&page, "page", false, "preview the page pattern instead of the post pattern")
	cmd.Flags().Int64Var(&cid, "cid", 1, "sample content id")
	cmd.Flags().StringVar(&createdStr, "created", "", "sample creation time (RFC3339)")
	cmd.Flags().Int64SliceVar(&categoryIDs, "category", nil, "sample category ids")
	cmd.Flags().StringVar(&catsPath, "categories", "", "YAML file describing the category tree")
	return cmd
}

func loadCategories(path string) (map[int64]permalink.Category, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "read categories file", err)
	}
	var doc categoryFile
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, WrapExitError(ExitCommandError, "parse categories file", err)
	}
	cats := make(map[int64]permalink.Category, len(doc.Categories))
	for _, c := range doc.Categories {
		cats[c.MID] = permalink.Category{MID: c.MID, Parent: c.Parent, Slug: c.Slug, Name: c.Name}
	}
	return cats, nil
}
