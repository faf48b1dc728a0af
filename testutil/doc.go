// Package testutil provides helpers for tests and benchmarks: a seeded,
// thread-safe RNG, random PRG and query generators, and a brute-force
// graph walker that serves as ground truth for the search engine.
//
//	rng := testutil.NewRNG(seed)
//	p := rng.RandomPRG(testutil.PRGOptions{Sites: 5})
//	query := rng.SampleQuery(p, 6)
//	want := testutil.Occurrences(p, query)
package testutil
