package main

import (
	"io"
	"log/slog"
)

// newCleanup releases the shift source before the store it may be backed by.
func newCleanup(source, store io.Closer) func() {
	return func() {
		if source != nil {
			if err := source.Close(); err != nil {
				slog.Error("failed to close shift source", "error", err)
			}
		}
		if store != nil {
			if err := store.Close(); err != nil {
				slog.Error("failed to close store", "error", err)
			}
		}
	}
}
