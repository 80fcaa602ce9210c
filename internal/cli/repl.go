package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a
// lightweight stub.
type execIface interface {
	isUnlocked() bool
	Unlock(ctx context.Context) error
	Lock(ctx context.Context) error
	Add(ctx context.Context) error
	List(ctx context.Context) error
	Export(ctx context.Context, path string) error
	BackupNow(ctx context.Context) error
	Backups(ctx context.Context) error
	Restore(ctx context.Context, name string) error
	Rotate(ctx context.Context) error
	Checksum(ctx context.Context) error
}

// runREPL starts a simple read–eval–print loop for the journal keeper.
//
// It reads a line from the provided scanner, parses the first token as the
// command, and dispatches to methods on 'a'. Unknown commands are reported
// back to the user. The loop exits on scanner EOF or when the user types
// "exit" or "quit".
//
// Commands while locked: help, unlock, backup, backups, restore <name>,
// rotate, exit. Commands while unlocked additionally: add, list,
// export <path>, checksum, lock.
//
// Any errors returned by command handlers are ignored here; handlers print
// their own errors. This keeps the REPL loop resilient and focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("journal> %s > ", statusFn()))
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]
		arg := ""
		if len(parts) > 1 {
			arg = parts[1]
		}

		switch cmd {
		case "help":
			if a.isUnlocked() {
				printlnFn("Available commands: add, (l)ist, export [path], backup, backups, restore <name>, rotate, checksum, lock, exit")
			} else {
				printlnFn("Available commands: unlock, backup, backups, restore <name>, rotate, exit")
			}

		case "unlock":
			_ = a.Unlock(ctx)

		case "lock":
			_ = a.Lock(ctx)

		case "add":
			_ = a.Add(ctx)

		case "l", "list":
			_ = a.List(ctx)

		case "export":
			if arg == "" {
				arg = "journal_entries.zip"
			}
			_ = a.Export(ctx, arg)

		case "backup":
			_ = a.BackupNow(ctx)

		case "backups":
			_ = a.Backups(ctx)

		case "restore":
			if arg == "" {
				printlnFn("Usage: restore <snapshot-name>")
				continue
			}
			_ = a.Restore(ctx, arg)

		case "rotate":
			_ = a.Rotate(ctx)

		case "checksum":
			_ = a.Checksum(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
