/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/UbimoLTD/listfile/pkg/listfile"
	"github.com/UbimoLTD/listfile/pkg/metrics"
)

var serveAddr string

// serveCmd writes a demo record stream while exposing its Prometheus
// metrics over HTTP, so the write path can be watched live instead of
// only inspected after the fact with dump.
var serveCmd = &cobra.Command{
	Use:   "serve <path>",
	Short: "Write a demo stream while exposing /metrics",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		m := metrics.NewMetrics()

		method, err := parseCompressMethod(cfg.Compress)
		if err != nil {
			return err
		}

		w, err := listfile.OpenWriter(path, listfile.Options{
			BlockSizeMultiplier: cfg.BlockSizeMultiplier,
			Compress:            method,
			CompressLevel:       cfg.CompressLevel,
		})
		if err != nil {
			return fmt.Errorf("open writer: %w", err)
		}
		if err := w.Init(); err != nil {
			return err
		}

		go func() {
			record := make([]byte, 256)
			var prevBytesWritten, prevSavings int64
			for {
				err := w.AddRecord(record)
				m.RecordWrite(len(record), err)
				if err != nil {
					return
				}
				if err := w.Flush(); err != nil {
					return
				}
				_, bytesWritten, savings := w.Stats()
				m.AddBytesWritten(bytesWritten - prevBytesWritten)
				m.AddCompressionSavings(savings - prevSavings)
				prevBytesWritten = bytesWritten
				prevSavings = savings
				time.Sleep(10 * time.Millisecond)
			}
		}()

		http.Handle("/metrics", promhttp.Handler())
		cmd.Printf("serving metrics on %s/metrics, writing demo records to %s\n", serveAddr, path)
		return http.ListenAndServe(serveAddr, nil)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":9090", "address to serve /metrics on")
}
