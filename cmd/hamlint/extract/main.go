package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/hamlint/pkg/config"
	"github.com/walteh/hamlint/pkg/debug"
	"github.com/walteh/hamlint/pkg/extractor"
	"github.com/walteh/hamlint/pkg/finder"
	"github.com/walteh/hamlint/pkg/haml"
	"github.com/walteh/hamlint/pkg/sourcemap"
)

type fileResult struct {
	File    string         `json:"file"`
	Script  string         `json:"script"`
	LineMap *sourcemap.Map `json:"line_map"`
}

// NewExtractCommand creates the `hamlint extract` command. It parses the
// given HAML files (or every matching file under a given directory) and
// prints the synthetic Ruby script each one extracts to.
func NewExtractCommand() *cobra.Command {
	var (
		configPath string
		asJSON     bool
		verbose    bool
	)

	cmd := &cobra.Command{
		Use:   "extract [files or directories]",
		Short: "Extract lintable Ruby source from HAML templates",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := debug.NewLogger(os.Stderr, false).
				With().Str("run_id", uuid.NewString()).Logger()
			if !verbose {
				logger = logger.Level(zerolog.WarnLevel)
			}
			ctx := logger.WithContext(cmd.Context())

			cfg := config.Default()
			if configPath != "" {
				loaded, err := config.Load(configPath)
				if err != nil {
					return err
				}
				cfg = loaded
			}

			files, err := resolveInputs(ctx, cfg, args)
			if err != nil {
				return err
			}

			ext := extractor.New(extractor.WithRubyFilterPredicate(cfg.IsRubyFilter))

			var failures *multierror.Error
			results := make([]fileResult, 0, len(files))
			for _, file := range files {
				res, err := extractFile(ctx, ext, file)
				if err != nil {
					// One broken template should not hide the rest.
					failures = multierror.Append(failures, errors.Errorf("%s: %w", file, err))
					continue
				}
				results = append(results, res)
			}

			if asJSON {
				out, err := json.MarshalIndent(results, "", "  ")
				if err != nil {
					return errors.Errorf("encoding results: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(out))
			} else {
				for _, res := range results {
					if len(results) > 1 {
						fmt.Fprintf(cmd.OutOrStdout(), "# ==> %s\n", res.File)
					}
					fmt.Fprintln(cmd.OutOrStdout(), res.Script)
				}
			}

			return failures.ErrorOrNil()
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to a .hamlint.hcl or .hamlint.yaml config file")
	cmd.Flags().BoolVar(&asJSON, "json", false, "emit script and line map as JSON")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	return cmd
}

func resolveInputs(ctx context.Context, cfg *config.Config, args []string) ([]string, error) {
	find := finder.NewDefaultFinder(nil)

	var files []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, errors.Errorf("stat %s: %w", arg, err)
		}
		if !info.IsDir() {
			files = append(files, arg)
			continue
		}

		found, err := find.FindTemplates(ctx, arg, cfg.Include, cfg.Exclude)
		if err != nil {
			return nil, err
		}
		for _, rel := range found {
			files = append(files, filepath.Join(arg, rel))
		}
	}
	return files, nil
}

func extractFile(ctx context.Context, ext *extractor.RubyExtractor, file string) (fileResult, error) {
	content, err := os.ReadFile(file)
	if err != nil {
		return fileResult{}, errors.Errorf("reading file: %w", err)
	}

	doc, err := haml.Parse(ctx, content, file)
	if err != nil {
		return fileResult{}, err
	}

	src, err := ext.Extract(ctx, doc)
	if err != nil {
		return fileResult{}, err
	}

	return fileResult{File: file, Script: src.Script, LineMap: src.LineMap}, nil
}
