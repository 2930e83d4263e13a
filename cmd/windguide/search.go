package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/hyperjump/windguide/internal/cli"
	"github.com/hyperjump/windguide/internal/models"
)

func newSearchCmd(opts *rootOptions) *cobra.Command {
	var (
		output    string
		limit     int
		group     bool
		suggest   bool
		serverURL string
	)
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search the guide index",
		Long: `Search the guide index. The query is all remaining arguments joined by
spaces, so multi-word queries work with or without quotes. Every word must
appear in an entry's topic, description or keywords.`,
		Example: `  windguide search flex
  windguide search "grid gap" --group
  windguide search gird --output json
  windguide search padding --server http://localhost:8080`,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := cli.ParseOutputFormat(output)
			if err != nil {
				return err
			}
			query := &models.SearchQuery{
				Query:          buildSearchQuery(args),
				Limit:          limit,
				GroupBySection: group,
				Suggest:        suggest,
			}

			var resp *models.SearchResponse
			if serverURL != "" {
				resp, err = searchViaHTTP(serverURL, query)
			} else {
				resp, err = searchLocal(cmd, opts, query)
			}
			if err != nil {
				return err
			}
			return cli.WriteSearchResults(cmd.OutOrStdout(), resp, format)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "text", "output format: text, compact or json")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "maximum results (capped at 20)")
	cmd.Flags().BoolVar(&group, "group", false, "group results by section")
	cmd.Flags().BoolVar(&suggest, "suggest", true, `offer "did you mean" corrections when nothing matches`)
	cmd.Flags().StringVar(&serverURL, "server", "", "query a running windguide server instead of the local catalog")
	return cmd
}

func searchLocal(cmd *cobra.Command, opts *rootOptions, query *models.SearchQuery) (*models.SearchResponse, error) {
	cfg, logger, err := setup(opts)
	if err != nil {
		return nil, err
	}
	defer logger.Sync()

	comps, err := initializeComponents(cmd.Context(), cfg, logger, componentOptions{source: "cli"})
	if err != nil {
		return nil, err
	}
	defer comps.Close()
	return comps.Service.Search(cmd.Context(), query)
}

// buildSearchQuery joins args into a single query string.
func buildSearchQuery(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

var httpClient = &http.Client{Timeout: 10 * time.Second}

func searchViaHTTP(serverURL string, query *models.SearchQuery) (*models.SearchResponse, error) {
	body, err := json.Marshal(query)
	if err != nil {
		return nil, err
	}
	url := strings.TrimRight(serverURL, "/") + "/api/v1/search"
	resp, err := httpClient.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}
	var response models.SearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &response, nil
}
