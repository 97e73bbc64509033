// Package main provides the CLI entrypoint for gridmem.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/avolkov/gridmem/internal/config"
	"github.com/avolkov/gridmem/internal/generator"
	"github.com/avolkov/gridmem/internal/model"
	"github.com/avolkov/gridmem/internal/settings"
	"github.com/avolkov/gridmem/internal/stats"
	"github.com/avolkov/gridmem/internal/statsui"
	"github.com/avolkov/gridmem/internal/store"
	"github.com/avolkov/gridmem/internal/tui"
)

var (
	storageKind string

	playGridSize     int
	playShowTimeMs   int
	playAnswerTimeMs int
	playActiveCells  int
	playTargetStreak int

	statsPlain bool

	exportOut string
	backupOut string

	clearYes bool
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "gridmem",
		Short:         "TUI grid memory trainer",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runPlayCmd,
	}

	rootCmd.PersistentFlags().StringVar(&storageKind, "storage", "", "force storage backend: structured or flat")

	def := settings.Defaults()
	rootCmd.Flags().IntVar(&playGridSize, "grid", def.GridSize, "grid size (2-8)")
	rootCmd.Flags().IntVar(&playShowTimeMs, "show", def.ShowTimeMs, "pattern display time in ms (100-10000)")
	rootCmd.Flags().IntVar(&playAnswerTimeMs, "answer", def.AnswerTimeMs, "answer time limit in ms, 0 = unlimited (0-30000)")
	rootCmd.Flags().IntVar(&playActiveCells, "cells", def.ActiveCells, "active cells per pattern (1-grid²)")
	rootCmd.Flags().IntVar(&playTargetStreak, "target", def.TargetStreak, "consecutive-correct goal (1-100)")

	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newExportCmd())
	rootCmd.AddCommand(newImportCmd())
	rootCmd.AddCommand(newBackupCmd())
	rootCmd.AddCommand(newRestoreCmd())
	rootCmd.AddCommand(newSyncCmd())
	rootCmd.AddCommand(newEnvCmd())
	rootCmd.AddCommand(newClearCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

func newManager(fileCfg config.FileConfig) *store.Manager {
	force := storageKind
	if force == "" && fileCfg.Storage.Backend != nil {
		force = *fileCfg.Storage.Backend
	}
	return store.NewManager(store.Options{
		DataDir:   config.DefaultDataDir(),
		FlatDir:   config.DefaultFlatDir(),
		ForceKind: model.StorageKind(force),
	})
}

func runPlayCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	manager := newManager(fileCfg)
	defer closeManager(manager)

	// Precedence: flags > config file > last stored settings > defaults.
	stored, err := manager.LoadSettings(context.Background())
	if err != nil {
		logErrf("failed to load stored settings: %v\n", err)
		stored = settings.Defaults()
	}
	playGridSize = resolveInt(cmd, "grid", fileCfg.Game.GridSize, stored.GridSize, playGridSize)
	playShowTimeMs = resolveInt(cmd, "show", fileCfg.Game.ShowTimeMs, stored.ShowTimeMs, playShowTimeMs)
	playAnswerTimeMs = resolveInt(cmd, "answer", fileCfg.Game.AnswerTimeMs, stored.AnswerTimeMs, playAnswerTimeMs)
	playActiveCells = resolveInt(cmd, "cells", fileCfg.Game.ActiveCells, stored.ActiveCells, playActiveCells)
	playTargetStreak = resolveInt(cmd, "target", fileCfg.Game.TargetStreak, stored.TargetStreak, playTargetStreak)

	cfg := settings.Normalize(settings.Partial{
		GridSize:     &playGridSize,
		ShowTimeMs:   &playShowTimeMs,
		AnswerTimeMs: &playAnswerTimeMs,
		ActiveCells:  &playActiveCells,
		TargetStreak: &playTargetStreak,
	})

	if err := manager.SaveSettings(context.Background(), cfg); err != nil {
		logErrf("failed to persist settings: %v\n", err)
	}

	gameModel := tui.NewModel(cfg, manager, generator.New())
	program := tea.NewProgram(gameModel, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

// resolveInt layers one settings field: a changed flag wins, then the
// config file, then the value recovered from the store.
func resolveInt(cmd *cobra.Command, name string, fileValue *int, storedValue, flagValue int) int {
	if cmd.Flags().Changed(name) {
		return flagValue
	}
	if fileValue != nil {
		return *fileValue
	}
	return storedValue
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show per-configuration statistics",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
	cmd.Flags().BoolVar(&statsPlain, "plain", false, "print a plain table instead of the TUI")
	return cmd
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	manager := newManager(fileCfg)
	defer closeManager(manager)

	if statsPlain || !term.IsTerminal(int(os.Stdout.Fd())) {
		all, err := manager.GetAllStats(context.Background())
		if err != nil {
			return fmt.Errorf("failed to load stats: %w", err)
		}
		return stats.RenderReport(cmd.OutOrStdout(), all)
	}

	program := tea.NewProgram(statsui.NewModel(manager), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run stats TUI: %w", err)
	}
	return nil
}

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export statistics as JSON",
		Args:  cobra.NoArgs,
		RunE:  runExportCmd,
	}
	cmd.Flags().StringVar(&exportOut, "out", "", "write to file instead of stdout")
	return cmd
}

func runExportCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	manager := newManager(fileCfg)
	defer closeManager(manager)

	payload, err := manager.ExportStats(context.Background())
	if err != nil {
		return fmt.Errorf("failed to export stats: %w", err)
	}
	if exportOut == "" {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), payload)
		return err
	}
	if err := os.WriteFile(exportOut, []byte(payload+"\n"), 0o644); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}
	logErrf("Wrote %s\n", exportOut)
	return nil
}

func newImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Import statistics from an export file",
		Args:  cobra.ExactArgs(1),
		RunE:  runImportCmd,
	}
}

func runImportCmd(_ *cobra.Command, args []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	manager := newManager(fileCfg)
	defer closeManager(manager)

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read import file: %w", err)
	}
	if err := manager.ImportStats(context.Background(), string(data)); err != nil {
		return fmt.Errorf("failed to import stats: %w", err)
	}
	n, err := manager.CountStats(context.Background())
	if err != nil {
		return err
	}
	logErrf("Imported; store now holds %d configurations\n", n)
	return nil
}

func newBackupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Write a backup envelope",
		Args:  cobra.NoArgs,
		RunE:  runBackupCmd,
	}
	cmd.Flags().StringVar(&backupOut, "out", "", "backup file path (default: backups dir, timestamped)")
	return cmd
}

func runBackupCmd(_ *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	manager := newManager(fileCfg)
	defer closeManager(manager)

	envelope, err := manager.CreateBackup(context.Background())
	if err != nil {
		return fmt.Errorf("failed to create backup: %w", err)
	}
	data, err := json.MarshalIndent(envelope, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode backup: %w", err)
	}

	out := backupOut
	if out == "" {
		dir := config.DefaultBackupDir()
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create backup dir: %w", err)
		}
		out = filepath.Join(dir, fmt.Sprintf("gridmem-%s.json", time.Now().Format("20060102-150405")))
	}
	if err := os.WriteFile(out, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write backup: %w", err)
	}
	logErrf("Wrote %s\n", out)
	return nil
}

func newRestoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "restore <file>",
		Short: "Restore statistics from a backup envelope",
		Args:  cobra.ExactArgs(1),
		RunE:  runRestoreCmd,
	}
}

func runRestoreCmd(_ *cobra.Command, args []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	manager := newManager(fileCfg)
	defer closeManager(manager)

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read backup file: %w", err)
	}
	var envelope model.BackupEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		return fmt.Errorf("failed to decode backup: %w", err)
	}
	if err := manager.RestoreFromBackup(context.Background(), envelope); err != nil {
		return fmt.Errorf("failed to restore backup: %w", err)
	}
	logErrf("Restored backup from %s (%s)\n", envelope.Timestamp, envelope.Environment)
	return nil
}

func newSyncCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Copy statistics between storage backends (best effort)",
		Args:  cobra.NoArgs,
		RunE:  runSyncCmd,
	}
}

func runSyncCmd(_ *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	manager := newManager(fileCfg)
	defer closeManager(manager)

	if err := manager.SyncEnvironments(context.Background()); err != nil {
		return fmt.Errorf("failed to sync: %w", err)
	}
	info := manager.EnvironmentInfo()
	logErrf("Synced from %s backend\n", info.Environment.Kind)
	return nil
}

func newEnvCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "env",
		Short: "Show storage environment diagnostics",
		Args:  cobra.NoArgs,
		RunE:  runEnvCmd,
	}
}

func runEnvCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	manager := newManager(fileCfg)
	defer closeManager(manager)

	if err := manager.Init(context.Background()); err != nil {
		return fmt.Errorf("failed to init storage: %w", err)
	}
	info := manager.EnvironmentInfo()
	out := cmd.OutOrStdout()
	lines := []string{
		fmt.Sprintf("backend:        %s", info.Environment.Kind),
		fmt.Sprintf("durable:        %t", info.Environment.Durable),
		fmt.Sprintf("structured:     %t (%s)", info.Environment.HasStructured, info.DataDir),
		fmt.Sprintf("flat:           %t (%s)", info.Environment.HasFlat, info.FlatDir),
		fmt.Sprintf("initialized:    %t", info.Initialized),
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(out, line); err != nil {
			return err
		}
	}
	return nil
}

func newClearCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete all recorded statistics",
		Args:  cobra.NoArgs,
		RunE:  runClearCmd,
	}
	cmd.Flags().BoolVar(&clearYes, "yes", false, "confirm deletion")
	return cmd
}

func runClearCmd(_ *cobra.Command, _ []string) error {
	if !clearYes {
		return fmt.Errorf("refusing to delete statistics without --yes")
	}
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	manager := newManager(fileCfg)
	defer closeManager(manager)

	if err := manager.ClearAllStats(context.Background()); err != nil {
		return fmt.Errorf("failed to clear stats: %w", err)
	}
	logErrln("Cleared all statistics")
	return nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func defaultConfigTemplate() string {
	def := settings.Defaults()
	return fmt.Sprintf(`# gridmem configuration
# Uncomment a value to enable it. CLI flags override config values.

[game]
# grid-size = %d        # Grid size (2-8)
# show-time = %d     # Pattern display time in ms (100-10000)
# answer-time = %d      # Answer time limit in ms, 0 = unlimited (0-30000)
# active-cells = %d     # Active cells per pattern (1-grid²)
# target-streak = %d   # Consecutive-correct goal (1-100)

[storage]
# backend = "structured"  # Force "structured" or "flat" instead of probing
`,
		def.GridSize,
		def.ShowTimeMs,
		def.AnswerTimeMs,
		def.ActiveCells,
		def.TargetStreak,
	)
}

func closeManager(m *store.Manager) {
	if err := m.Close(); err != nil {
		logErrf("failed to close store: %v\n", err)
	}
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

func logErrln(args ...any) {
	if _, err := fmt.Fprintln(os.Stderr, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
