package commands

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/stackit-qa/stackit-api/internal/app"
	"github.com/stackit-qa/stackit-api/internal/config"
)

// NewRoutesCmd creates the routes command
func NewRoutesCmd() *cobra.Command {
	var check bool

	cmd := &cobra.Command{
		Use:   "routes",
		Short: "Show route groups and their upstreams",
		Long:  "Print every route group with its prefix, OpenAPI tag and resolved upstream. With --check each upstream is probed.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadUpstreams()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			var client *http.Client
			if check {
				client = &http.Client{Timeout: 10 * time.Second}
			}
			return writeRoutes(cmd.Context(), cmd.OutOrStdout(), cfg, client)
		},
	}
	cmd.Flags().BoolVar(&check, "check", false, "Probe each upstream with a GET request")
	return cmd
}

// writeRoutes prints the route table. A non-nil client adds a reachability column.
func writeRoutes(ctx context.Context, out io.Writer, cfg *config.Config, client *http.Client) error {
	if ctx == nil {
		ctx = context.Background()
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	if client != nil {
		fmt.Fprintln(tw, "PREFIX\tTAG\tUPSTREAM\tSTATUS")
	} else {
		fmt.Fprintln(tw, "PREFIX\tTAG\tUPSTREAM")
	}

	for _, spec := range app.Layout {
		upstream := cfg.Upstream(spec.Key)
		if client == nil {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", spec.Prefix, spec.Tag, upstream)
			continue
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", spec.Prefix, spec.Tag, upstream, probe(ctx, client, upstream))
	}
	return tw.Flush()
}

// probe reports how an upstream answers a GET on its base URL. Any HTTP
// status counts as reachable; only transport failures are reported as down.
func probe(ctx context.Context, client *http.Client, upstream string) string {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, upstream, nil)
	if err != nil {
		return "invalid: " + err.Error()
	}
	resp, err := client.Do(req)
	if err != nil {
		return "unreachable: " + err.Error()
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	return fmt.Sprintf("reachable (%d)", resp.StatusCode)
}
