package main

import (
	"fmt"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/sandeepkv93/duecast/internal/app"
	"github.com/sandeepkv93/duecast/internal/update"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Run the terminal interface (default)",
	Args:  cobra.NoArgs,
	RunE:  runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, args []string) error {
	cfg, err := loadSettings()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(cfg.Storage.DataDir, 0o755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	logFile, err := os.OpenFile(cfg.LogPath(), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer logFile.Close()

	a, err := openApp(app.Options{Logger: log.New(logFile, "", log.LstdFlags)})
	if err != nil {
		return err
	}
	defer a.Close()

	program := tea.NewProgram(update.NewModel(cmd.Context(), a), tea.WithAltScreen(), tea.WithReportFocus())
	update.Listen(program, a)
	a.SetFocused(true)
	a.Start()
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("duecast failed: %w", err)
	}
	return nil
}
