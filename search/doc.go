// Package search implements variant-aware backward search over an FM
// index of a linearized PRG.
//
// A query is matched right to left. Each generation extends every partial
// match (a State) by one base. Before extending, states whose interval
// contains rows preceded by a site marker are branched: entering a site
// from its right flank fans out into one state per allele, and leaving an
// allele to the left jumps to the site's opening boundary. Every state
// records the (site, allele) pairs it traversed in its Path.
//
// The result of a search is the final Frontier. Each of its states names
// an SA interval whose rows are exact occurrences of the query along the
// state's path.
package search
