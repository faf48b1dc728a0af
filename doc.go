// Package gramsearch finds exact matches of DNA queries in a population
// reference graph (PRG).
//
// A PRG is a reference sequence in which variant sites list their
// alternative alleles inline, delimited by numbered markers:
//
//	AC5G6T5TA     site 5 with alleles "G" and "T"
//
// The graph is indexed as a single string with an FM index. Searching runs
// backwards over the query; whenever the match runs into a site it branches
// into every allele consistent with the query and records the
// (site, allele) pairs each surviving match passes through.
//
// # Quick Start
//
//	p, _ := prg.ReadFile("chr1.prg.gz")
//	eng, _ := gramsearch.Build(ctx, p)
//	defer eng.Close()
//
//	res, _ := eng.Search(ctx, "GTTAGG")
//	for _, m := range res.Matches {
//	    fmt.Println(m.Positions, m.Path, m.SiteState)
//	}
//
// # Snapshots
//
// Built indexes are stored as compressed snapshots in any blobstore.Store:
//
//	_ = eng.Save(ctx, blobstore.NewLocalStore("./indexes"), "chr1.gsix")
//
//	s3Store, _ := s3.New(ctx, "my-bucket", s3.WithPrefix("indexes/"))
//	eng, _ := gramsearch.Open(ctx, s3Store, "chr1.gsix")
//
// # Observability
//
// Engines log through a slog-based Logger, report to a MetricsCollector
// (BasicMetricsCollector, PrometheusCollector) and emit OpenTelemetry
// spans for builds, loads and searches.
package gramsearch
