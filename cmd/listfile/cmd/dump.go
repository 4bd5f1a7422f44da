/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"github.com/UbimoLTD/listfile/pkg/listfile"
)

// dumpCmd inspects a list file without requiring the caller to write
// any code: header metadata, record/byte counts, and any corruption
// the reader had to recover from.
var dumpCmd = &cobra.Command{
	Use:   "dump <path>",
	Short: "Print a list file's header, record count, and corruption stats",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]

		var corruptionEvents int
		var bytesLost int
		reporter := func(lost int, reason string) {
			corruptionEvents++
			bytesLost += lost
			cmd.Printf("corruption: lost %d bytes: %s\n", lost, reason)
		}

		r, err := listfile.OpenReader(path, cfg.VerifyChecksums, reporter)
		if err != nil {
			return fmt.Errorf("open %s: %w", path, err)
		}
		defer r.Close()

		meta := r.GetMetadata()
		cmd.Println("metadata:")
		keys := make([]string, 0, len(meta))
		for k := range meta {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			cmd.Printf("  %s = %q\n", k, meta[k])
		}

		var records int
		var totalBytes int64
		for {
			rec, err := r.ReadRecord()
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				return fmt.Errorf("read record %d: %w", records, err)
			}
			records++
			totalBytes += int64(len(rec))
		}

		cmd.Printf("records: %d\n", records)
		cmd.Printf("total record bytes: %d\n", totalBytes)
		cmd.Printf("corruption events: %d (bytes lost: %d)\n", corruptionEvents, bytesLost)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(dumpCmd)
}
