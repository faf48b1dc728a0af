// Package mmap maps snapshot and blob files read-only into memory.
//
//	m, err := mmap.Open("index.gsix")
//	if err != nil { ... }
//	defer m.Close()
//	data := m.Bytes()
//
// Unix platforms use mmap(2) with madvise(2) hints; Windows uses
// CreateFileMapping/MapViewOfFile and ignores hints. Callers must not touch
// Bytes after Close.
package mmap
