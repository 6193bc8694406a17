package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/schooladmin/internal/models"
)

// printlnFn is a test seam for user-facing output.
var printlnFn = fmt.Println

// execIface is the command surface the REPL drives. *App satisfies it;
// tests use a recording stub.
type execIface interface {
	isLoggedIn() bool
	status() string
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Theme(ctx context.Context) error
	Go(ctx context.Context, path string) error
	List(ctx context.Context) error
	Search(ctx context.Context, query string) error
	Clear(ctx context.Context) error
	New(ctx context.Context) error
	Edit(ctx context.Context, id string) error
	Set(ctx context.Context, field, value string) error
	Save(ctx context.Context) error
	Cancel(ctx context.Context) error
	Delete(ctx context.Context, id string) error
}

const (
	helpAnonymous = "Available commands: help, login, theme, go <page>, home, exit"
	helpSignedIn  = "Available commands: help, logout, theme, go <page> | alunos | professores | materias | usuarios, home, exit\n" +
		"Page commands: list, search <id>, clear, new, edit <id>, set <field> <value>, save, cancel, delete <id>"
)

// runREPL reads commands line by line from reader and dispatches them to a
// until EOF, "exit" or "quit". Errors from handlers are printed and the loop
// goes on.
//
//	help                 show available commands
//	login | logout       start or end the session
//	theme                toggle dark/light
//	go <path>            navigate; page names and "home" work as shortcuts
//	list                 redraw the current page
//	search <id>          show one record; "search" alone clears the filter
//	clear                show every record
//	new | edit <id>      open the form
//	set <field> <value>  change one field of the open form
//	save | cancel        submit or discard the form
//	delete <id>          delete after confirmation
func runREPL(ctx context.Context, a execIface, reader *bufio.Reader) {
	pages := make(map[string]string)
	for _, res := range models.All() {
		pages[res.Name] = res.Path
	}

	for {
		printlnFn(fmt.Sprintf("school %s> ", a.status()))
		line, readErr := reader.ReadString('\n')
		if readErr != nil && line == "" {
			return
		}
		cmd, rest := splitCommand(line)
		if cmd == "" {
			continue
		}

		var err error
		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn(helpSignedIn)
			} else {
				printlnFn(helpAnonymous)
			}
		case "login":
			err = a.Login(ctx)
		case "logout":
			err = a.Logout(ctx)
		case "theme":
			err = a.Theme(ctx)
		case "go":
			err = a.Go(ctx, rest)
		case "home":
			err = a.Go(ctx, "/")
		case "l", "list":
			err = a.List(ctx)
		case "search":
			err = a.Search(ctx, rest)
		case "clear":
			err = a.Clear(ctx)
		case "new":
			err = a.New(ctx)
		case "edit":
			err = a.Edit(ctx, rest)
		case "set":
			field, value := splitCommand(rest)
			if field == "" {
				printlnFn("Usage: set <field> <value>")
				continue
			}
			err = a.Set(ctx, field, value)
		case "save":
			err = a.Save(ctx)
		case "cancel":
			err = a.Cancel(ctx)
		case "delete":
			err = a.Delete(ctx, rest)
		case "exit", "quit":
			printlnFn("Bye!")
			return
		default:
			if path, ok := pages[cmd]; ok {
				err = a.Go(ctx, path)
				break
			}
			printlnFn("Unknown command:", cmd)
		}
		if err != nil {
			printlnFn("Error:", err)
		}
	}
}

// splitCommand returns the first word of line and the trimmed remainder,
// whose inner spacing is preserved.
func splitCommand(line string) (string, string) {
	line = strings.TrimSpace(line)
	cmd, rest, _ := strings.Cut(line, " ")
	return strings.ToLower(cmd), strings.TrimSpace(rest)
}
