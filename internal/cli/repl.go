package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = func(args ...any) { fmt.Println(args...) }

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a
// lightweight stub.
type execIface interface {
	List(ctx context.Context) error
	Add(ctx context.Context) error
	Show(ctx context.Context, args []string) error
	Edit(ctx context.Context, args []string) error
	Delete(ctx context.Context, args []string) error
	Search(ctx context.Context, args []string) error
	Generate(ctx context.Context) error
	ImportVault(ctx context.Context) error
	Inspect(ctx context.Context) error
	ImportCSV(ctx context.Context) error
	ExportCSV(ctx context.Context) error
	ImportPlain(ctx context.Context) error
	ExportPlain(ctx context.Context) error
	Export(ctx context.Context) error
	BackupNow(ctx context.Context) error
	Backups(ctx context.Context) error
	Restore(ctx context.Context, args []string) error
	Prune(ctx context.Context) error
	Schedule(ctx context.Context) error
}

// runREPL reads a line, parses the first token as the command, and
// dispatches to methods on a. Unknown commands are reported back to the
// user. The loop exits on scanner EOF or when the user types "exit" or
// "quit". Handler errors are printed here so one failed command never ends
// the session.
func runREPL(ctx context.Context, a execIface, scanner *bufio.Scanner) {
	printlnFn("Type 'help' for commands.")

	for {
		printlnFn("vk> ")
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		var err error
		switch cmd {
		case "help":
			printlnFn("Entries:  (l)ist, add, show <site>, edit <site>, delete <site>, search <term>, generate")
			printlnFn("Transfer: importvault, inspect, importcsv, exportcsv, importplain, exportplain, export")
			printlnFn("Backups:  backup, backups, restore [key], prune, schedule")
			printlnFn("Other:    help, exit")

		case "l", "list":
			err = a.List(ctx)
		case "add":
			err = a.Add(ctx)
		case "show":
			err = a.Show(ctx, args)
		case "edit":
			err = a.Edit(ctx, args)
		case "delete":
			err = a.Delete(ctx, args)
		case "search":
			err = a.Search(ctx, args)
		case "generate":
			err = a.Generate(ctx)

		case "importvault":
			err = a.ImportVault(ctx)
		case "inspect":
			err = a.Inspect(ctx)
		case "importcsv":
			err = a.ImportCSV(ctx)
		case "exportcsv":
			err = a.ExportCSV(ctx)
		case "importplain":
			err = a.ImportPlain(ctx)
		case "exportplain":
			err = a.ExportPlain(ctx)
		case "export":
			err = a.Export(ctx)

		case "backup":
			err = a.BackupNow(ctx)
		case "backups":
			err = a.Backups(ctx)
		case "restore":
			err = a.Restore(ctx, args)
		case "prune":
			err = a.Prune(ctx)
		case "schedule":
			err = a.Schedule(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if err != nil {
			printlnFn("Error:", err.Error())
		}
	}
}
