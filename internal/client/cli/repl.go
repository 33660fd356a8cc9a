package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// execIface is the command surface the REPL dispatches to.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	WhoAmI(ctx context.Context) error
	Refresh(ctx context.Context) error
	Logout(ctx context.Context) error

	Songs(ctx context.Context, args []string) error
	AddSong(ctx context.Context) error
	ShowSong(ctx context.Context, args []string) error
	PlaySong(ctx context.Context, args []string) error
	FavoriteSong(ctx context.Context, args []string, on bool) error
	RateSong(ctx context.Context, args []string) error
	DeleteSong(ctx context.Context, args []string) error
}

// runREPL reads commands line by line from reader until EOF, "exit" or
// "quit". Handler errors are reported by the handlers themselves.
//
//	Not logged in:  help, register, login, exit
//	Logged in:      help, whoami, refresh, logout, songs, add, show, play,
//	                fav, unfav, rate, delete, exit
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader, w io.Writer) {
	for {
		fmt.Fprintf(w, "tk %s > ", statusFn())

		line, err := reader.ReadString('\n')
		parts := strings.Fields(line)
		if len(parts) == 0 {
			if err != nil {
				return
			}
			continue
		}

		switch cmd := parts[0]; cmd {
		case "help":
			if a.isLoggedIn() {
				fmt.Fprintln(w, "Available commands: whoami, refresh, logout, songs [page] [search], add, show <id>, play <id>, fav <id>, unfav <id>, rate <id> <0-5>, delete <id>, exit")
			} else {
				fmt.Fprintln(w, "Available commands: register, login, exit")
			}

		case "register":
			_ = a.Register(ctx)

		case "login":
			_ = a.Login(ctx)

		case "whoami", "me":
			_ = a.WhoAmI(ctx)

		case "refresh":
			_ = a.Refresh(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "songs", "ls":
			_ = a.Songs(ctx, parts[1:])

		case "add":
			_ = a.AddSong(ctx)

		case "show":
			_ = a.ShowSong(ctx, parts[1:])

		case "play":
			_ = a.PlaySong(ctx, parts[1:])

		case "fav", "unfav":
			_ = a.FavoriteSong(ctx, parts[1:], cmd == "fav")

		case "rate":
			_ = a.RateSong(ctx, parts[1:])

		case "delete", "rm":
			_ = a.DeleteSong(ctx, parts[1:])

		case "exit", "quit":
			fmt.Fprintln(w, "Bye!")
			return

		default:
			fmt.Fprintln(w, "Unknown command:", cmd)
		}

		if err != nil {
			return
		}
	}
}
