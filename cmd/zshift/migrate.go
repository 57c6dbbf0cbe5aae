package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/kettleby/zshift/internal/generate"
	"github.com/kettleby/zshift/internal/service"
	"github.com/kettleby/zshift/internal/shell"
	"github.com/kettleby/zshift/internal/shellparse"
	"github.com/kettleby/zshift/internal/transaction"
)

// runMigrate handles the `zshift migrate` subcommand
func runMigrate(args []string) error {
	showHelp := false
	showStatus := false
	dryRun := false
	verbose := false

	for _, arg := range args {
		switch arg {
		case "--help", "-h":
			showHelp = true
		case "--status":
			showStatus = true
		case "--dry-run", "-n":
			dryRun = true
		case "--verbose", "-v":
			verbose = true
		default:
			return fmt.Errorf("unknown option: %s\nRun 'zshift migrate --help' for usage", arg)
		}
	}

	if showHelp {
		printMigrateHelp()
		return nil
	}
	if showStatus {
		return printMigrateStatus()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	env, err := loadEnvironment(ctx, verbose)
	if err != nil {
		return err
	}

	// Warn when the login shell isn't zsh; the migration still targets ~/.zshrc.
	detection := shell.DetectShell()
	if detection.Shell != shell.ShellZsh {
		env.logger.Warn("login shell is not zsh, migrating ~/.zshrc anyway",
			"detected", detection.Shell.String())
	}

	rcPath, err := shell.RCFilePath(shell.ShellZsh)
	if err != nil {
		return err
	}
	promptPath, err := promptConfigPath()
	if err != nil {
		return err
	}
	stateDir, err := service.DefaultStateDir()
	if err != nil {
		return err
	}

	svc := service.NewMigrationService(
		shellparse.NewParser(generate.ReservedNames()),
		generate.NewGenerator(shell.PathToolChecker{}, generate.WithLogger(env.logger)),
		env.backups,
		&shell.ZshChecker{},
		service.RealClock{},
		env.logger,
		stateDir,
	)

	result, err := svc.Execute(ctx, service.MigrateRequest{
		SourcePath: rcPath,
		ShellPath:  rcPath,
		PromptPath: promptPath,
		Settings:   env.settings,
		DryRun:     dryRun,
	})
	if err != nil {
		return err
	}

	if dryRun {
		fmt.Println("Dry run - no changes made")
		fmt.Printf("Would write %s (%d bytes)\n", rcPath, len(result.ShellDoc.Content))
		fmt.Printf("Would write %s (%d bytes)\n", promptPath, len(result.PromptDoc.Content))
		return nil
	}

	fmt.Println("Migration complete")
	fmt.Printf("  %s\n", rcPath)
	fmt.Printf("  %s\n", promptPath)
	fmt.Printf("Pre-migration snapshot: %s\n", result.SnapshotID)
	if len(result.Warnings) > 0 {
		fmt.Printf("%d parse warning(s); the affected lines were not carried over\n", len(result.Warnings))
	}
	fmt.Println("Restart your shell or run 'source ~/.zshrc' to pick up the new configuration.")
	return nil
}

// printMigrateStatus reports the most recent migration journal, so an
// interrupted or failed run can be inspected.
func printMigrateStatus() error {
	stateDir, err := service.DefaultStateDir()
	if err != nil {
		return err
	}

	journal, err := transaction.LoadLatest(stateDir)
	if errors.Is(err, os.ErrNotExist) {
		fmt.Println("No migrations recorded")
		return nil
	}
	if err != nil {
		return err
	}

	fmt.Printf("Last migration: %s\n", journal.ID)
	fmt.Printf("  State:   %s\n", journal.State)
	fmt.Printf("  Started: %s\n", journal.Timestamp.Format(time.RFC3339))
	fmt.Printf("  Source:  %s\n", journal.SourcePath)
	if journal.SnapshotID != "" {
		fmt.Printf("  Snapshot: %s\n", journal.SnapshotID)
	}
	for _, artifact := range journal.Artifacts {
		fmt.Printf("  %s: %s", artifact.Path, artifact.State)
		if artifact.LastError != "" {
			fmt.Printf(" (%s)", artifact.LastError)
		}
		fmt.Println()
	}
	if journal.State == transaction.StateFailed && journal.SnapshotID != "" {
		fmt.Printf("Run 'zshift backup restore %s' to roll back.\n", journal.SnapshotID)
	}
	return nil
}

func printMigrateHelp() {
	fmt.Println("Usage: zshift migrate [options]")
	fmt.Println()
	fmt.Println("Migrate the current zsh configuration to zinit + starship. The existing")
	fmt.Println("rc file's aliases, exports, and functions are preserved in the output,")
	fmt.Println("and a snapshot of the tracked files is taken before anything is written.")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  -n, --dry-run    Render the documents without writing anything")
	fmt.Println("      --status     Show the most recent migration's journal and exit")
	fmt.Println("  -v, --verbose    Print debug logging")
	fmt.Println("  -h, --help       Show this help")
}
