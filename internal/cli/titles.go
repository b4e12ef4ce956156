package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"partrep/internal/domain"
	"partrep/internal/search"
)

var errNoResults = errors.New("no matching titles")

// titlesOptions holds CLI flags for titles
type titlesOptions struct {
	contentType string
	limit       int
}

func newTitlesCmd(g *globalOptions) *cobra.Command {
	var opts titlesOptions

	cmd := &cobra.Command{
		Use:   "titles <query>",
		Short: "Search the member's journal titles",
		Long: `Fuzzy-search the titles the member has registered for a content type.

Examples:
  partrep titles nature
  partrep titles "jrnl of chemstry" --limit 3`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTitles(cmd, g, strings.Join(args, " "), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.contentType, "type", "t", "", "Content type (default: filters.content_type)")
	cmd.Flags().IntVarP(&opts.limit, "limit", "n", 0, "Maximum number of results (default: search.limit)")

	return cmd
}

func runTitles(cmd *cobra.Command, g *globalOptions, query string, opts titlesOptions) error {
	if err := g.cfg.Validate(); err != nil {
		return err
	}
	client, err := g.newClient()
	if err != nil {
		return err
	}

	contentType := g.cfg.Filters.ContentType
	if opts.contentType != "" {
		contentType = opts.contentType
	}
	limit := g.cfg.Search.Limit
	if opts.limit > 0 {
		limit = opts.limit
	}

	matches, records, err := searchTitles(cmd.Context(), g, client, contentType, query, limit)
	if err != nil {
		return err
	}
	if len(matches) == 0 {
		return fmt.Errorf("%w for %q", errNoResults, query)
	}
	return writeTitles(cmd.OutOrStdout(), matches, records)
}

func writeTitles(out io.Writer, matches []search.Match, records []domain.TitleRecord) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TITLE\tPRINT ISSN\tONLINE ISSN\tSCORE")
	for _, m := range matches {
		r := records[m.Index]
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2f\n", r.Title, dash(r.PISSN), dash(r.EISSN), m.Score)
	}
	return w.Flush()
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
