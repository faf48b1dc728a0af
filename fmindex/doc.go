// Package fmindex builds an FM index over a linearized PRG.
//
// The indexed text is the PRG followed by the terminator. Besides the BWT
// and the C table, the index keeps the full suffix array (so Locate is
// constant time), one roaring bitmap of BWT rows per marker (rank over
// markers) and a bitmap of rows whose suffix starts inside an allele (site
// classification). Base ranks are served by package rank.
//
// Indexes are persisted as snapshots: a small header with a CRC32 of the
// payload, followed by the text and suffix array, optionally compressed
// with LZ4 or zstd.
package fmindex
