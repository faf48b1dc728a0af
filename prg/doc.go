// Package prg models a linearized population reference graph (PRG).
//
// A PRG is a reference sequence in which every variant site is spelled out
// inline, delimited by integer markers:
//
//	AC 5 G 6 T 5 TA
//	   │ │ │ │ └─ closing boundary marker of site 5
//	   │ │ │ └─── allele 2
//	   │ │ └───── allele marker (separates alleles of site 5)
//	   │ └─────── allele 1
//	   └───────── opening boundary marker of site 5
//
// # Alphabet
//
// Symbols are small unsigned integers. 0 is reserved for the text
// terminator, 1..4 encode the bases A, C, G, T, and every value >= 5 is a
// marker. Site k (k = 0, 1, ...) owns the odd boundary marker 5+2k and the
// even allele marker 6+2k. The boundary marker doubles as the site
// identifier. Alleles are numbered from 1 in left-to-right order and may be
// empty (a deletion). Sites never nest.
//
// # Text format
//
// Parse accepts the conventional text rendering: bases as letters
// (case-insensitive), markers as decimal integers. Whitespace or ','
// separates adjacent markers ("5G6,5" has an empty second allele). Lines
// starting with '>' are FASTA headers and are ignored. Read additionally
// detects gzip-compressed input.
package prg
