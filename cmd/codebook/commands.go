package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/hrstools/codebook/catalog"
	"github.com/hrstools/codebook/categorize"
	"github.com/hrstools/codebook/discovery"
	"github.com/hrstools/codebook/naming"
)

func parseCmd(app *appContext) *cobra.Command {
	var (
		source string
		outDir string
	)

	cmd := &cobra.Command{
		Use:   "parse [path...]",
		Short: "Parse codebook documents into JSON records",
		Long: `Parse codebook documents into normalized JSON records.

With no arguments every discovered file is parsed. Paths given as
arguments are resolved against the configured sources; files no source
claims are an error.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var parsed []*parsedFile

			if len(args) == 0 {
				all, err := app.parseAll(source)
				if err != nil {
					return err
				}
				parsed = all
			} else {
				for _, arg := range args {
					file, ok := app.finder.Resolve(arg)
					if !ok {
						return fmt.Errorf("no source claims %s", arg)
					}
					pf, err := app.parseFile(file)
					if err != nil {
						return err
					}
					parsed = append(parsed, pf)
				}
			}

			if outDir == "" {
				return writeJSON(cmd.OutOrStdout(), parsed)
			}

			if err := os.MkdirAll(outDir, 0755); err != nil {
				return fmt.Errorf("create output directory: %w", err)
			}
			for _, pf := range parsed {
				name := fmt.Sprintf("%s_%d.json", pf.File.Source, pf.File.Year)
				f, err := os.Create(filepath.Join(outDir, name))
				if err != nil {
					return err
				}
				err = writeJSON(f, pf)
				if cerr := f.Close(); err == nil {
					err = cerr
				}
				if err != nil {
					return err
				}
			}
			app.log.Info("wrote parse output", "dir", outDir, "files", len(parsed))
			return nil
		},
	}

	cmd.Flags().StringVar(&source, "source", "", "Only parse files of this source")
	cmd.Flags().StringVar(&outDir, "out", "", "Write one JSON file per codebook to this directory")
	return cmd
}

func catalogCmd(app *appContext) *cobra.Command {
	var source string

	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Build the cross-year variable catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed, err := app.parseAll(source)
			if err != nil {
				return err
			}

			b := catalog.New()
			for _, pf := range parsed {
				b.Add(pf.Codebook)
			}
			return writeJSON(cmd.OutOrStdout(), b.Build())
		},
	}

	cmd.Flags().StringVar(&source, "source", "", "Only include files of this source")
	return cmd
}

func categorizeCmd(app *appContext) *cobra.Command {
	var source string

	cmd := &cobra.Command{
		Use:   "categorize",
		Short: "Bucket parsed variables by section, level, type, and class",
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed, err := app.parseAll(source)
			if err != nil {
				return err
			}

			c := categorize.New(app.cfg.Markers)
			return writeJSON(cmd.OutOrStdout(), c.Categorize(collectVariables(parsed)))
		},
	}

	cmd.Flags().StringVar(&source, "source", "", "Only include files of this source")
	return cmd
}

func nameCmd(app *appContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "name",
		Short: "Query the variable-naming codec",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "decompose <name>",
			Short: "Split a variable name into wave prefix and base name",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				codec := naming.NewCodec(app.cfg.WaveTable)
				prefix, base := codec.Decompose(args[0])

				out := map[string]any{
					"name":      args[0],
					"prefix":    prefix,
					"base_name": base,
				}
				if prefix != "" {
					if year, err := codec.YearForPrefix(prefix); err == nil {
						out["year"] = year
					}
					if wave, err := codec.WaveForPrefix(prefix); err == nil {
						out["wave"] = wave
					}
				}
				return writeJSON(cmd.OutOrStdout(), out)
			},
		},
		&cobra.Command{
			Use:   "compose <base-name> <year>",
			Short: "Build the year-specific spelling of a base name",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				year, err := strconv.Atoi(args[1])
				if err != nil {
					return fmt.Errorf("year %q is not a number", args[1])
				}
				codec := naming.NewCodec(app.cfg.WaveTable)
				name, err := codec.ComposeForYear(args[0], year)
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), map[string]any{
					"base_name": args[0],
					"year":      year,
					"name":      name,
				})
			},
		},
		&cobra.Command{
			Use:   "wave <year>",
			Short: "Look up the wave number and prefix for a survey year",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				year, err := strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("year %q is not a number", args[0])
				}
				codec := naming.NewCodec(app.cfg.WaveTable)
				wave, err := codec.WaveForYear(year)
				if err != nil {
					return err
				}
				prefix, err := codec.PrefixForWave(wave)
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), map[string]any{
					"year":   year,
					"wave":   wave,
					"prefix": prefix,
				})
			},
		},
	)

	return cmd
}

func discoverCmd(app *appContext) *cobra.Command {
	return &cobra.Command{
		Use:   "discover",
		Short: "List the codebook files the configured sources claim",
		RunE: func(cmd *cobra.Command, args []string) error {
			files, err := app.finder.Discover()
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), files)
		},
	}
}

func watchCmd(app *appContext) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Re-parse codebook files as they change",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			err := app.finder.Watch(ctx, func(file discovery.File) {
				if _, err := app.parseFile(file); err != nil {
					app.log.Error("parse failed", "path", file.Path, "error", err)
				}
			})
			if ctx.Err() != nil {
				app.log.Info("watch stopped")
				return nil
			}
			return err
		},
	}
}
