package main

import (
	"fmt"
	"os"
)

// Version will be set at build time via -ldflags
var Version = "v0.1.0"

func main() {
	// Handle subcommands
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version":
			fmt.Printf("zshift %s\n", Version)
			fmt.Println("zsh environment migration tool")
			return
		case "migrate":
			// Handle zshift migrate subcommand
			if err := runMigrate(os.Args[2:]); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			return
		case "backup":
			// Handle zshift backup subcommand
			if len(os.Args) < 3 {
				fmt.Fprintln(os.Stderr, "Error: backup subcommand requires an action")
				printBackupUsage(os.Stderr)
				os.Exit(1)
			}
			if err := runBackup(os.Args[2], os.Args[3:]); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			return
		}
	}

	// Default: show help
	fmt.Println("zshift - migrate a grown zsh setup to zinit + starship")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  zshift --version                   Show version information")
	fmt.Println("  zshift migrate [options]           Migrate the current shell configuration")
	fmt.Println("  zshift backup create [options]     Snapshot the tracked configuration files")
	fmt.Println("  zshift backup list                 List snapshots")
	fmt.Println("  zshift backup validate <id>        Check a snapshot's structure")
	fmt.Println("  zshift backup restore <id>         Restore a snapshot (takes a safety snapshot first)")
	fmt.Println("  zshift backup cleanup [options]    Remove snapshots past the retention window")
	fmt.Println("  zshift backup delete <id>          Delete a single snapshot")
}
