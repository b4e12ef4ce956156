package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"partrep/internal/coverage"
	"partrep/internal/domain"
	"partrep/internal/filter"
	"partrep/internal/search"
	"partrep/internal/ui"
)

// reportOptions holds CLI flags for report
type reportOptions struct {
	contentType string
	dateRange   string
	title       string
	pager       string // "auto", "always", "never"
}

func newReportCmd(g *globalOptions) *cobra.Command {
	var opts reportOptions

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print a participation report",
		Long: `Print the coverage checks for one content type, date range and
optional journal title.

On a terminal the report opens in a pager; otherwise it is written to
standard output.

Examples:
  partrep report --member 78
  partrep report --type Books --range backfile
  partrep report --title "nature physics" --pager never`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(cmd.Context(), g, opts, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&opts.contentType, "type", "t", "", "Content type (default: filters.content_type)")
	cmd.Flags().StringVarP(&opts.dateRange, "range", "r", "", "Date range: all, current, backfile")
	cmd.Flags().StringVar(&opts.title, "title", "", "Journal title to narrow to (fuzzy matched)")
	cmd.Flags().StringVar(&opts.pager, "pager", "auto", "Use the pager: auto, always, never")

	return cmd
}

func runReport(ctx context.Context, g *globalOptions, opts reportOptions, out io.Writer) error {
	cfg := g.cfg
	if err := cfg.Validate(); err != nil {
		return err
	}
	logger := g.logger.Logger

	client, err := g.newClient()
	if err != nil {
		return err
	}

	contentType := cfg.Filters.ContentType
	if opts.contentType != "" {
		contentType = opts.contentType
	}
	rangeName := cfg.Filters.DateRange
	if opts.dateRange != "" {
		rangeName = opts.dateRange
	}
	dateRange, err := domain.ParseDateRange(rangeName)
	if err != nil {
		return err
	}

	coord := filter.New(client, filter.Options{
		MemberID:     cfg.Member.ID,
		FetchTimeout: time.Duration(cfg.API.TimeoutSeconds) * time.Second,
		Paths:        coverage.DefaultPaths(),
		Logger:       logger,
	})
	defer coord.Close()

	explicitType := opts.contentType != ""
	initial := domain.FilterSelection{ContentType: contentType}
	if !explicitType {
		// the configured type may fall back to the first one with data
		initial.DateRange = dateRange
	}
	// A failed mount still leaves a snapshot carrying the error message
	if err := coord.Mount(ctx, initial); err != nil {
		logger.Warn("report_mount_failed", "error", err)
	} else if explicitType {
		if coord.Selection().ContentType != contentType {
			if err := coord.SetContentType(contentType); err != nil {
				return err
			}
		}
		if err := coord.SetDateRange(dateRange, false); err != nil {
			return err
		}
	}
	coord.Wait()

	if opts.title != "" && !coord.ErrorFlag() {
		record, err := findTitle(ctx, g, client, coord.Selection().ContentType, opts.title)
		if err != nil {
			return err
		}
		if err := coord.SelectTitle(record.Title, record); err != nil {
			return err
		}
		coord.Wait()
	}

	text := ui.RenderReportText(coord.Snapshot(), cfg)
	if usePager(opts.pager, out) {
		return ui.RunPager(text)
	}
	_, err = io.WriteString(out, text)
	return err
}

// findTitle returns the best fuzzy match for query among the titles of
// one content type
func findTitle(ctx context.Context, g *globalOptions, titles ui.TitleSource, contentType, query string) (domain.TitleRecord, error) {
	matches, records, err := searchTitles(ctx, g, titles, contentType, query, 1)
	if err != nil {
		return domain.TitleRecord{}, err
	}
	if len(matches) == 0 {
		return domain.TitleRecord{}, fmt.Errorf("%w: no %s title matches %q", errNoResults, contentType, query)
	}
	return records[matches[0].Index], nil
}

// searchTitles loads the titles of a content type and runs one search
// over them through a short-lived search proxy
func searchTitles(ctx context.Context, g *globalOptions, titles ui.TitleSource, contentType, query string, limit int) ([]search.Match, []domain.TitleRecord, error) {
	records, err := titles.Publications(ctx, g.cfg.Member.ID, contentType)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load titles: %w", err)
	}

	proxy := search.NewProxy(g.logger.Logger)
	defer proxy.Close()

	if err := proxy.SetCandidates(search.TitleDocuments(records)); err != nil {
		return nil, nil, err
	}
	opts := search.Options{Keys: g.cfg.Search.Keys, Fuzziness: g.cfg.Search.Fuzziness, Limit: limit}
	if err := proxy.Search(query, opts); err != nil {
		return nil, nil, err
	}

	select {
	case resp, ok := <-proxy.Responses():
		if !ok {
			return nil, nil, search.ErrClosed
		}
		if resp.Err != nil {
			return nil, nil, resp.Err
		}
		var matches []search.Match
		for m := range resp.Matches() {
			matches = append(matches, m)
		}
		return matches, records, nil
	case <-ctx.Done():
		return nil, nil, ctx.Err()
	}
}

// usePager decides whether the report goes through the pager
func usePager(mode string, out io.Writer) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	}
	f, ok := out.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
