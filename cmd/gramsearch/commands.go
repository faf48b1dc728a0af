package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/hupe1980/gramsearch"
	"github.com/hupe1980/gramsearch/fmindex"
	"github.com/hupe1980/gramsearch/prg"
	"github.com/hupe1980/gramsearch/resource"
)

type globalFlags struct {
	logLevel string
}

func newRootCmd() *cobra.Command {
	var g globalFlags
	root := &cobra.Command{
		Use:           "gramsearch",
		Short:         "Variant-aware exact search over population reference graphs",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&g.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	root.AddCommand(newBuildCmd(&g), newSearchCmd(&g), newInfoCmd(&g))
	return root
}

func (g *globalFlags) logger() (*gramsearch.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(g.logLevel)); err != nil {
		return nil, fmt.Errorf("invalid --log-level %q", g.logLevel)
	}
	return gramsearch.NewJSONLogger(level), nil
}

func newBuildCmd(g *globalFlags) *cobra.Command {
	var (
		prgPath     string
		out         string
		compression string
	)
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Index a linearized PRG and write a snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			comp, err := fmindex.ParseCompression(compression)
			if err != nil {
				return err
			}
			logger, err := g.logger()
			if err != nil {
				return err
			}

			p, err := prg.ReadFile(prgPath)
			if err != nil {
				return err
			}
			start := time.Now()
			eng, err := gramsearch.Build(ctx, p, gramsearch.WithLogger(logger), gramsearch.WithCompression(comp))
			if err != nil {
				return err
			}
			defer eng.Close()

			store, name, err := openLocation(ctx, out)
			if err != nil {
				return err
			}
			if err := eng.Save(ctx, store, name); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "indexed %d symbols, %d sites in %s -> %s\n",
				p.Len(), p.NumSites(), time.Since(start).Round(time.Millisecond), out)
			return nil
		},
	}
	cmd.Flags().StringVar(&prgPath, "prg", "", "linearized PRG file (plain, FASTA or gzip)")
	cmd.Flags().StringVar(&out, "out", "", "snapshot location")
	cmd.Flags().StringVar(&compression, "compression", "zstd", "snapshot compression (zstd, lz4, none)")
	_ = cmd.MarkFlagRequired("prg")
	_ = cmd.MarkFlagRequired("out")
	return cmd
}

type searchFlags struct {
	index       string
	workers     int
	maxFrontier int
	ioLimit     int64
}

type jsonSite struct {
	Site   uint32 `json:"site"`
	Allele uint32 `json:"allele"`
}

type jsonMatch struct {
	Positions []uint64   `json:"positions"`
	Path      []jsonSite `json:"path"`
	State     string     `json:"state"`
}

type jsonResult struct {
	Query   string      `json:"query"`
	Count   uint64      `json:"count"`
	Matches []jsonMatch `json:"matches"`
	Error   string      `json:"error,omitempty"`
}

func newSearchCmd(g *globalFlags) *cobra.Command {
	var f searchFlags
	cmd := &cobra.Command{
		Use:   "search QUERY...",
		Short: "Search queries against a snapshot, one JSON line per query",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger, err := g.logger()
			if err != nil {
				return err
			}
			store, name, err := openLocation(ctx, f.index)
			if err != nil {
				return err
			}

			rc := resource.NewController(resource.Config{IOLimitBytesPerSec: f.ioLimit})
			eng, err := gramsearch.Open(ctx, store, name,
				gramsearch.WithLogger(logger),
				gramsearch.WithWorkers(f.workers),
				gramsearch.WithMaxFrontier(f.maxFrontier),
				gramsearch.WithResourceController(rc),
			)
			if err != nil {
				return err
			}
			defer eng.Close()

			enc := json.NewEncoder(cmd.OutOrStdout())
			var failed int
			for _, q := range args {
				line := jsonResult{Query: q, Matches: []jsonMatch{}}
				res, err := eng.Search(ctx, q)
				if err != nil {
					failed++
					line.Error = err.Error()
				} else {
					line.Count = res.Count()
					for _, m := range res.Matches {
						line.Matches = append(line.Matches, toJSON(m))
					}
				}
				if err := enc.Encode(line); err != nil {
					return err
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d queries failed", failed, len(args))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&f.index, "index", "", "snapshot location")
	cmd.Flags().IntVar(&f.workers, "workers", 1, "states extended concurrently per generation")
	cmd.Flags().IntVar(&f.maxFrontier, "max-frontier", 0, "abort queries whose frontier exceeds this size (0 = unlimited)")
	cmd.Flags().Int64Var(&f.ioLimit, "io-limit", 0, "snapshot read limit in bytes per second (0 = unlimited)")
	_ = cmd.MarkFlagRequired("index")
	return cmd
}

func toJSON(m gramsearch.Match) jsonMatch {
	out := jsonMatch{
		Positions: m.Positions,
		Path:      make([]jsonSite, 0, len(m.Path)),
		State:     m.SiteState.String(),
	}
	for _, v := range m.Path {
		out.Path = append(out.Path, jsonSite{Site: uint32(v.Site), Allele: v.Allele})
	}
	return out
}

func newInfoCmd(g *globalFlags) *cobra.Command {
	var index string
	cmd := &cobra.Command{
		Use:   "info",
		Short: "Describe a snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			logger, err := g.logger()
			if err != nil {
				return err
			}
			store, name, err := openLocation(ctx, index)
			if err != nil {
				return err
			}
			eng, err := gramsearch.Open(ctx, store, name, gramsearch.WithLogger(logger))
			if err != nil {
				return err
			}
			defer eng.Close()

			p := eng.PRG()
			var alleles int
			for _, st := range p.Sites() {
				alleles += len(st.Alleles)
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "symbols:   %d\n", p.Len())
			fmt.Fprintf(w, "sites:     %d\n", p.NumSites())
			fmt.Fprintf(w, "alleles:   %d\n", alleles)
			fmt.Fprintf(w, "rows:      %d\n", eng.Index().Len())
			fmt.Fprintf(w, "memory:    %d bytes\n", eng.Index().SizeInBytes()+eng.Ranks().SizeInBytes())
			if p.Len() <= 80 {
				fmt.Fprintf(w, "prg:       %s\n", strings.TrimSpace(p.String()))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&index, "index", "", "snapshot location")
	_ = cmd.MarkFlagRequired("index")
	return cmd
}
