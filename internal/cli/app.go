package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	ucli "github.com/urfave/cli/v2"

	"github.com/oksasatya/library-catalog/internal/client"
)

const defaultServer = "http://localhost:5000"

// freshSession lists commands that replace or drop the saved token and so
// must work without reaching the server first.
var freshSession = map[string]bool{
	"login":    true,
	"register": true,
	"logout":   true,
}

// App is the library-catalog command line client.
type App struct {
	Out io.Writer
	In  *bufio.Reader
	// Store overrides the token file; used by tests.
	Store client.TokenStore
	// HTTP overrides the http client; used by tests.
	HTTP *http.Client

	session *client.Session
}

func NewApp(in io.Reader, out io.Writer) *App {
	return &App{In: bufio.NewReader(in), Out: out}
}

// Run parses args (including the program name) and executes one command.
func (a *App) Run(ctx context.Context, args []string) error {
	return a.Command().RunContext(ctx, args)
}

func (a *App) Command() *ucli.App {
	return &ucli.App{
		Name:  "library",
		Usage: "library catalog client",
		Flags: []ucli.Flag{
			&ucli.StringFlag{
				Name:    "server",
				Usage:   "API base URL",
				Value:   defaultServer,
				EnvVars: []string{"LIBRARY_API_URL"},
			},
		},
		Before:    a.before,
		Writer:    a.Out,
		ErrWriter: a.Out,
		Commands: []*ucli.Command{
			a.registerCommand(),
			a.loginCommand(),
			a.logoutCommand(),
			a.whoamiCommand(),
			a.booksCommand(),
			a.usersCommand(),
		},
	}
}

// before opens the session and, unless the command starts a fresh one,
// re-verifies any saved token.
func (a *App) before(c *ucli.Context) error {
	store := a.Store
	if store == nil {
		path, err := client.DefaultTokenPath()
		if err != nil {
			return err
		}
		store = client.FileTokenStore{Path: path}
	}
	httpClient := a.HTTP
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	a.session = client.NewSession(client.New(c.String("server"), httpClient), store)
	if freshSession[c.Args().First()] {
		return nil
	}
	if err := a.session.Restore(c.Context); err != nil {
		return fmt.Errorf("restore session: %w", err)
	}
	return nil
}

func (a *App) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(a.Out, format, args...)
}
