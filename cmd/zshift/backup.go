package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/kettleby/zshift/internal/backup"
	"github.com/kettleby/zshift/internal/settings"
)

// runBackup dispatches the `zshift backup` actions
func runBackup(action string, args []string) error {
	switch action {
	case "create":
		return runBackupCreate(args)
	case "list":
		return runBackupList(args)
	case "validate":
		return runBackupValidate(args)
	case "restore":
		return runBackupRestore(args)
	case "cleanup":
		return runBackupCleanup(args)
	case "delete":
		return runBackupDelete(args)
	case "--help", "-h":
		printBackupUsage(os.Stdout)
		return nil
	default:
		printBackupUsage(os.Stderr)
		return fmt.Errorf("unknown backup action: %s", action)
	}
}

func printBackupUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: zshift backup create [--name <name>] [--description <text>]")
	fmt.Fprintln(w, "       zshift backup list")
	fmt.Fprintln(w, "       zshift backup validate <id>")
	fmt.Fprintln(w, "       zshift backup restore <id>")
	fmt.Fprintln(w, "       zshift backup cleanup [--days <n>] [--dry-run]")
	fmt.Fprintln(w, "       zshift backup delete <id> [--force]")
}

func runBackupCreate(args []string) error {
	name := "manual"
	description := ""
	verbose := false

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--name":
			if i+1 >= len(args) {
				return fmt.Errorf("--name requires a value")
			}
			i++
			name = args[i]
		case "--description":
			if i+1 >= len(args) {
				return fmt.Errorf("--description requires a value")
			}
			i++
			description = args[i]
		case "--verbose", "-v":
			verbose = true
		default:
			return fmt.Errorf("unknown option: %s", args[i])
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	env, err := loadEnvironment(ctx, verbose)
	if err != nil {
		return err
	}

	snap, err := env.backups.CreateSnapshot(ctx, name, description)
	if err != nil {
		return err
	}

	fmt.Printf("Created snapshot %s (%d items, %d bytes)\n", snap.ID, snap.Items, snap.SizeBytes)
	for _, skipped := range snap.Skipped {
		fmt.Printf("  skipped (missing): %s\n", skipped)
	}
	return nil
}

func runBackupList(args []string) error {
	if len(args) > 0 {
		return fmt.Errorf("backup list takes no arguments")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	env, err := loadEnvironment(ctx, false)
	if err != nil {
		return err
	}

	summaries, err := env.backups.ListSnapshots()
	if err != nil {
		return err
	}
	if len(summaries) == 0 {
		fmt.Println("No snapshots found")
		return nil
	}

	for _, s := range summaries {
		fmt.Printf("%s  %s  %d items  %d bytes", s.ID, s.CreatedAt.Format(time.RFC3339), s.Items, s.SizeBytes)
		if s.Description != "" {
			fmt.Printf("  %s", s.Description)
		}
		fmt.Println()
	}
	return nil
}

func runBackupValidate(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: zshift backup validate <id>")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	env, err := loadEnvironment(ctx, false)
	if err != nil {
		return err
	}

	if err := env.backups.ValidateSnapshot(args[0]); err != nil {
		return err
	}
	fmt.Printf("Snapshot %s is valid\n", args[0])
	return nil
}

func runBackupRestore(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: zshift backup restore <id>")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	env, err := loadEnvironment(ctx, false)
	if err != nil {
		return err
	}

	report, err := env.backups.RestoreSnapshot(ctx, args[0])
	if err != nil {
		return err
	}

	fmt.Printf("Restored %d item(s) from %s\n", report.Restored, report.SnapshotID)
	fmt.Printf("Safety snapshot of the replaced state: %s\n", report.SafetyID)
	if report.Failed > 0 {
		fmt.Printf("%d item(s) failed:\n", report.Failed)
		for _, failure := range report.Failures {
			fmt.Printf("  %s\n", failure)
		}
		return fmt.Errorf("restore finished with %d failure(s)", report.Failed)
	}
	return nil
}

func runBackupCleanup(args []string) error {
	days := 0
	dryRun := false

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--days":
			if i+1 >= len(args) {
				return fmt.Errorf("--days requires a value")
			}
			i++
			n, err := strconv.Atoi(args[i])
			if err != nil {
				return fmt.Errorf("invalid --days value %q", args[i])
			}
			days = n
		case "--dry-run", "-n":
			dryRun = true
		default:
			return fmt.Errorf("unknown option: %s", args[i])
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	env, err := loadEnvironment(ctx, false)
	if err != nil {
		return err
	}

	if days == 0 {
		days = env.settings.Options.BackupRetentionDays
	}
	if days == 0 {
		days = settings.DefaultRetentionDays
	}

	removed, err := env.backups.CleanupOlderThan(days, dryRun)
	if err != nil {
		return err
	}

	if dryRun {
		fmt.Printf("Dry run - would remove %d snapshot(s) older than %d days\n", removed, days)
	} else {
		fmt.Printf("Removed %d snapshot(s) older than %d days\n", removed, days)
	}
	return nil
}

func runBackupDelete(args []string) error {
	force := false
	id := ""

	for _, arg := range args {
		switch arg {
		case "--force", "-f":
			force = true
		default:
			if id != "" {
				return fmt.Errorf("usage: zshift backup delete <id> [--force]")
			}
			id = arg
		}
	}
	if id == "" {
		return fmt.Errorf("usage: zshift backup delete <id> [--force]")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	env, err := loadEnvironment(ctx, false)
	if err != nil {
		return err
	}

	if err := env.backups.DeleteSnapshot(id, force); err != nil {
		if err == backup.ErrDeleteAborted {
			fmt.Println("Aborted")
			return nil
		}
		return err
	}
	fmt.Printf("Deleted snapshot %s\n", id)
	return nil
}
