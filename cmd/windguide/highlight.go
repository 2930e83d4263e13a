package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hyperjump/windguide/internal/models"
)

func newHighlightCmd(opts *rootOptions) *cobra.Command {
	var (
		lineNumbers bool
		asJSON      bool
		language    string
	)
	cmd := &cobra.Command{
		Use:   "highlight [file|-]",
		Short: "Render a code sample as highlighted HTML",
		Long: `Render a code sample as highlighted HTML. Reads the named file, or stdin when
the argument is "-" or missing.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := &models.HighlightRequest{Language: language, LineNumbers: &lineNumbers}
			var (
				data []byte
				err  error
			)
			if len(args) == 0 || args[0] == "-" {
				data, err = io.ReadAll(cmd.InOrStdin())
			} else {
				data, err = os.ReadFile(args[0])
				req.Filename = filepath.Base(args[0])
				if req.Language == "" {
					req.Language = strings.TrimPrefix(filepath.Ext(args[0]), ".")
				}
			}
			if err != nil {
				return fmt.Errorf("failed to read code: %w", err)
			}
			req.Code = string(data)

			cfg, logger, err := setup(opts)
			if err != nil {
				return err
			}
			defer logger.Sync()
			comps, err := initializeComponents(cmd.Context(), cfg, logger, componentOptions{source: "cli"})
			if err != nil {
				return err
			}
			defer comps.Close()

			resp, err := comps.Service.Highlight(cmd.Context(), req)
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(resp)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), resp.HTML)
			return err
		},
	}
	cmd.Flags().BoolVar(&lineNumbers, "line-numbers", true, "prefix each line with its number")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the per-line response as JSON")
	cmd.Flags().StringVar(&language, "language", "", "language label (defaults to the file extension, or jsx)")
	return cmd
}
