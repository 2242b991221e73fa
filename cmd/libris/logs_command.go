package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"libris/internal/logs"
)

func newLogsCommand(ctx *commandContext) *cobra.Command {
	var lines int
	var followFlag bool
	var requestID string

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show the daemon log",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			match := ""
			if requestID != "" {
				match = "request_id=" + requestID
				if cfg.Logging.Format == "json" {
					match = fmt.Sprintf("%q:%q", "request_id", requestID)
				}
			}

			out := cmd.OutOrStdout()
			result, err := logs.Tail(cmd.Context(), cfg.LogPath(), logs.TailOptions{Offset: -1, Limit: lines, Match: match})
			if err != nil {
				return err
			}
			for _, line := range result.Lines {
				fmt.Fprintln(out, line)
			}
			if !followFlag {
				return nil
			}

			offset := result.Offset
			for {
				next, err := logs.Tail(cmd.Context(), cfg.LogPath(), logs.TailOptions{
					Offset: offset,
					Follow: true,
					Wait:   30 * time.Second,
					Match:  match,
				})
				if err != nil {
					if errors.Is(err, context.Canceled) {
						return nil
					}
					return err
				}
				for _, line := range next.Lines {
					fmt.Fprintln(out, line)
				}
				offset = next.Offset
			}
		},
	}
	cmd.Flags().IntVarP(&lines, "lines", "n", 50, "Number of lines to show")
	cmd.Flags().BoolVarP(&followFlag, "follow", "f", false, "Keep printing new lines")
	cmd.Flags().StringVar(&requestID, "request", "", "Only lines for this request ID")
	return cmd
}
