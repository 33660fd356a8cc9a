package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dmitrijs2005/tunekeeper/internal/client/client"
	"github.com/dmitrijs2005/tunekeeper/internal/client/config"
	"github.com/dmitrijs2005/tunekeeper/internal/client/services"
	pb "github.com/dmitrijs2005/tunekeeper/internal/proto"
)

type App struct {
	session services.SessionService
	library services.LibraryService
	timeout time.Duration
	account *pb.Account
	reader  *bufio.Reader
	out     io.Writer
}

// NewApp opens the local store, dials the server and wires the session and
// library services. Nothing is sent over the network yet.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	db, err := client.InitDatabase(ctx, c.LocalDBPath)
	if err != nil {
		return nil, fmt.Errorf("local store: %w", err)
	}

	apiClient, err := client.NewGRPCClient(c.ServerEndpointAddr)
	if err != nil {
		db.Close()
		return nil, err
	}

	return newApp(services.NewSessionService(apiClient, db), services.NewLibraryService(apiClient),
		c.RequestTimeout, os.Stdin, os.Stdout), nil
}

func newApp(s services.SessionService, l services.LibraryService, timeout time.Duration, in io.Reader, out io.Writer) *App {
	return &App{session: s, library: l, timeout: timeout, reader: bufio.NewReader(in), out: out}
}

// Run resumes a stored session if there is one and then starts the REPL.
func (a *App) Run(ctx context.Context) {
	defer a.session.Close()

	fmt.Fprintln(a.out, "TuneKeeper CLI (type 'help' for commands)")
	a.resume(ctx)

	runREPL(ctx, a, a.status, a.reader, a.out)
}

func (a *App) resume(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	acc, ok, err := a.session.Resume(ctx)
	if err != nil {
		fmt.Fprintf(a.out, "Could not resume previous session: %v\n", err)
		return
	}
	if ok {
		a.account = &acc
		fmt.Fprintf(a.out, "Welcome back, %s\n", acc.Username)
	}
}

func (a *App) isLoggedIn() bool {
	return a.account != nil
}

func (a *App) status() string {
	if a.account == nil {
		return "(anonymous)"
	}
	return a.account.Username
}
