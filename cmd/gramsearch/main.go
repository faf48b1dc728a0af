// Command gramsearch builds PRG index snapshots and searches them.
//
//	gramsearch build --prg chr1.prg.gz --out chr1.gsix
//	gramsearch search --index chr1.gsix GTTAGG ACGT
//
// Snapshot locations are local paths or s3://bucket/key and
// minio://endpoint/bucket/key URLs.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
