package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func runCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [extractor...]",
		Short: "Run the named extractors, or all extractors",
		RunE:  runRunCmd,
	}
	cmd.Flags().Duration(timeoutFlag, 0, "Abort extractions which have not completed within this time (0 means no timeout)")
	_ = viper.BindPFlag(timeoutFlag, cmd.Flags().Lookup(timeoutFlag))
	return cmd
}

func runRunCmd(cmd *cobra.Command, args []string) (err error) {
	// an interrupt cancels in flight extractions, leaving them ABORTED
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if timeout := viper.GetDuration(timeoutFlag); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	h, err := newHost(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := h.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	if err := h.manager.StartAll(ctx, args...); err != nil {
		return err
	}

	printStatus(cmd.OutOrStdout(), h.manager)
	if ctx.Err() != nil {
		return fmt.Errorf("extraction interrupted: %w", ctx.Err())
	}
	return nil
}
