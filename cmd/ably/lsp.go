package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"ably/internal/lsp"
	"ably/internal/version"
)

var lspCmd = &cobra.Command{
	Use:          "lsp",
	Short:        "Run the ably language server over stdio",
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE:         runLSP,
}

func init() {
	lspCmd.Flags().Duration("debounce", 0, "delay before validating an opened or saved document (0 = default)")
}

func runLSP(cmd *cobra.Command, _ []string) error {
	debounce, err := cmd.Flags().GetDuration("debounce")
	if err != nil {
		return fmt.Errorf("failed to get debounce flag: %w", err)
	}
	maxProblems, err := cmd.Root().PersistentFlags().GetInt("max-problems")
	if err != nil {
		return fmt.Errorf("failed to get max-problems flag: %w", err)
	}
	cfg := state.cfg
	logger := state.logger

	// бюджет задаётся настройками клиента, движок получает его на каждый проход
	eng, cleanup, err := buildEngine(cfg, 0, &logger)
	if err != nil {
		return err
	}
	defer cleanup()

	server := lsp.NewServer(os.Stdin, os.Stdout, lsp.ServerOptions{
		Engine:      eng,
		Debounce:    debounce,
		MaxProblems: effectiveMaxProblems(maxProblems, cfg),
		Logger:      &logger,
		Version:     version.Version,
	})
	if err := server.Run(cmd.Context()); err != nil {
		if errors.Is(err, lsp.ErrExit) {
			return nil
		}
		if errors.Is(err, lsp.ErrExitWithoutShutdown) {
			return fmt.Errorf("lsp exit without shutdown")
		}
		return err
	}
	return nil
}
