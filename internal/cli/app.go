// Package cli implements rentctl, a terminal client for the rental API
// built on the client SDK.
package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/iliyamo/property-rental/internal/client"
	"github.com/iliyamo/property-rental/internal/logging"
	"github.com/iliyamo/property-rental/internal/model"
)

// ErrUsage is returned for unknown commands or missing arguments.
var ErrUsage = errors.New("usage: rentctl [-server URL] [-store PATH] login|register|logout|whoami|open <path>")

// App holds one CLI invocation.
type App struct {
	API     *client.API
	Session *client.Session
	Router  *client.Router

	in  *bufio.Reader
	out io.Writer
}

// NewApp wires the SDK. store may be nil for an in-memory session.
func NewApp(serverURL string, store client.Storage, in io.Reader, out io.Writer) *App {
	a := &App{in: bufio.NewReader(in), out: out}
	nav := client.NavigatorFunc(func(path string) { fmt.Fprintf(out, "-> %s\n", path) })
	a.API = client.NewAPI(serverURL, nil)
	a.Session = client.NewSession(a.API, store, nav)
	a.Router = client.NewRouter(a.Session, nav)
	<-a.Session.Ready()
	return a
}

// DefaultStorePath is where the session database lives unless -store says
// otherwise.
func DefaultStorePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "rentctl", "session.db")
}

// Main parses args, runs one command and returns the process exit code.
func Main(ctx context.Context, args []string, in io.Reader, out, errOut io.Writer) int {
	fs := flag.NewFlagSet("rentctl", flag.ContinueOnError)
	fs.SetOutput(errOut)
	server := fs.String("server", envOr("RENTCTL_SERVER", "http://localhost:3000/api"), "API base URL")
	storePath := fs.String("store", DefaultStorePath(), "session database path; empty keeps the session in memory")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	logging.Setup("cli", false, errOut)

	var store client.Storage
	if *storePath != "" {
		st, err := client.OpenSQLiteStorage(ctx, *storePath)
		if err != nil {
			fmt.Fprintln(errOut, "error:", err)
			return 1
		}
		defer st.Close()
		store = st
	}

	app := NewApp(*server, store, in, out)
	if err := app.Run(ctx, fs.Args()); err != nil {
		fmt.Fprintln(errOut, "error:", err)
		if errors.Is(err, ErrUsage) {
			return 2
		}
		return 1
	}
	return 0
}

func envOr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

// Run executes one command.
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return ErrUsage
	}
	switch args[0] {
	case "login":
		return a.login(ctx)
	case "register":
		return a.register(ctx)
	case "logout":
		a.Session.Logout()
		fmt.Fprintln(a.out, "Logged out")
		return nil
	case "whoami":
		return a.whoami(ctx)
	case "open":
		if len(args) < 2 {
			return ErrUsage
		}
		return a.open(ctx, args[1])
	}
	return ErrUsage
}

func (a *App) login(ctx context.Context) error {
	email, err := promptLine(a.in, a.out, "Email")
	if err != nil {
		return err
	}
	password, err := promptPassword(a.out)
	if err != nil {
		return err
	}
	u, err := a.Session.Login(ctx, email, password)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Logged in as %s %s (%s)\n", u.FirstName, u.LastName, u.Role)
	return nil
}

func (a *App) register(ctx context.Context) error {
	var req client.RegisterRequest
	fields := []struct {
		prompt string
		dst    *string
	}{
		{"Email", &req.Email},
		{"First name", &req.FirstName},
		{"Last name", &req.LastName},
		{"Phone number (optional)", &req.PhoneNumber},
	}
	for _, f := range fields {
		v, err := promptLine(a.in, a.out, f.prompt)
		if err != nil {
			return err
		}
		*f.dst = v
	}
	role, err := promptLine(a.in, a.out, "Role (admin/owner/tenant)")
	if err != nil {
		return err
	}
	req.Role = model.Role(strings.ToLower(role))
	if req.Password, err = promptPassword(a.out); err != nil {
		return err
	}

	u, err := a.Session.Register(ctx, req)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Registered %s as %s\n", u.Email, u.Role)
	return nil
}

func (a *App) whoami(ctx context.Context) error {
	if !a.Session.IsAuthenticated() {
		fmt.Fprintln(a.out, "Not logged in")
		return nil
	}
	me, err := a.API.Me(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s (id %d, %s)\n", me.Email, me.UserID, me.Role)
	return nil
}

// views maps client paths to the endpoint that backs them.
var views = map[string]string{
	"/":            "/properties",
	"/tenant":      "/tenant/dashboard",
	"/owner":       "/owner/dashboard",
	"/admin":       "/admin/dashboard",
	"/admin/users": "/admin/users",
}

// open navigates to path and, when the guard admits it, prints the data
// behind the view.
func (a *App) open(ctx context.Context, path string) error {
	if !a.Router.CanActivate(path) {
		return nil
	}
	key := path
	if key != "/" {
		key = strings.TrimRight(key, "/")
	}
	endpoint, ok := views[key]
	if !ok {
		fmt.Fprintf(a.out, "Opened %s\n", path)
		return nil
	}
	var data json.RawMessage
	if err := a.API.Get(ctx, endpoint, &data); err != nil {
		return err
	}
	var pretty any
	if err := json.Unmarshal(data, &pretty); err != nil {
		return err
	}
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(pretty)
}
