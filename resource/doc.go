// Package resource bounds concurrent searches, index memory and snapshot
// IO across all engines sharing a Controller.
package resource
