package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync/atomic"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/evtb/evtb/internal/config"
	"github.com/evtb/evtb/internal/logging"
	"github.com/evtb/evtb/internal/notify"
	"github.com/evtb/evtb/internal/storage"
	"github.com/evtb/evtb/internal/tui"
	"github.com/evtb/evtb/pkg/client"
	"github.com/evtb/evtb/pkg/domain"
	"github.com/evtb/evtb/pkg/session"
	"github.com/evtb/evtb/pkg/token"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger, err := logging.New(cfg.Debug)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck

	store, err := storage.NewFileStore(cfg.StateDir)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	app := newApp(cfg, logger, store, os.Stdout, os.Stdin)
	return app.dispatch(ctx, args)
}

// app holds everything a command needs.
type app struct {
	cfg    *config.Config
	logger *zap.Logger
	store  storage.Store
	out    io.Writer
	in     *bufio.Reader
	stdin  io.Reader

	api    *client.Client
	tokens *token.Manager
	sess   *session.Store
	notes  notify.Service
}

func newApp(cfg *config.Config, logger *zap.Logger, store storage.Store, out io.Writer, in io.Reader) *app {
	a := &app{
		cfg:    cfg,
		logger: logger,
		store:  store,
		out:    out,
		in:     bufio.NewReader(in),
		stdin:  in,
	}

	// Refresh calls go out without a token source so they never recurse
	// into the manager.
	anon := client.New(cfg.APIBase, client.WithTimeout(cfg.HTTPTimeout), client.WithLogger(logger))

	var sess *session.Store
	a.tokens = token.NewManager(store, anon,
		token.ClearFunc(func() { sess.Clear() }),
		token.WithLogger(logger),
		token.WithDemoMode(cfg.DemoMode),
	)
	a.api = client.New(cfg.APIBase,
		client.WithTimeout(cfg.HTTPTimeout),
		client.WithLogger(logger),
		client.WithTokenSource(a.tokens),
		client.WithUnauthorizedHandler(func() { sess.Clear() }),
	)
	sess = session.New(a.api, store, logger)
	a.sess = sess
	a.notes = notify.New(cfg.MockNotifications, a.api, logger)
	return a
}

func (a *app) dispatch(ctx context.Context, args []string) error {
	if err := a.sess.Hydrate(); err != nil {
		return err
	}

	cmd, rest := "", []string(nil)
	if len(args) > 0 {
		cmd, rest = args[0], args[1:]
	}

	switch cmd {
	case "":
		if a.sess.User() == nil {
			a.printGreeting()
			return nil
		}
		return a.runTUI(ctx)
	case "--version", "version", "-v":
		fmt.Fprintln(a.out, "evtb "+version)
		return nil
	case "help", "--help", "-h":
		a.printHelp()
		return nil
	case "login":
		return a.runLogin(ctx, rest)
	case "register":
		return a.runRegister(ctx)
	case "logout":
		return a.runLogout()
	case "whoami":
		return a.runWhoami()
	case "token":
		return a.runToken(ctx, rest)
	case "demo":
		return a.runDemo(rest)
	case "listings":
		return a.runListings(ctx, rest)
	case "favorites":
		return a.runFavorites(ctx, rest)
	case "notify":
		return a.runNotify(ctx, rest)
	case "inbox":
		return a.runTUI(ctx)
	case "health":
		return a.runHealth(ctx)
	case "mock-server":
		return a.runMockServer(ctx, rest)
	default:
		return fmt.Errorf("unknown command %q (try: evtb help)", cmd)
	}
}

func (a *app) runTUI(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	m := tui.NewApp(tui.Options{
		Notifications: a.notes,
		Market:        a.api,
		User:          a.sess.User(),
		TokenStatus:   a.tokens.Status,
		BaseURL:       a.cfg.APIBase,
	})
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))

	var expired atomic.Bool
	go a.tokens.Monitor(ctx, a.cfg.TokenCheckEvery, func(st token.State) {
		a.logger.Warn("session token needs attention", zap.Stringer("state", st))
		if st == token.Expired {
			expired.Store(true)
			p.Quit()
		}
	})

	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("tui error: %w", err)
	}
	if expired.Load() {
		fmt.Fprintln(a.out, "Your session expired. Sign in again with: evtb login")
	}
	return nil
}

// requireUser returns the signed-in user or a hint to log in.
func (a *app) requireUser() (*domain.User, error) {
	u := a.sess.User()
	if u == nil {
		return nil, fmt.Errorf("%w -- run: evtb login", session.ErrNotSignedIn)
	}
	return u, nil
}

// prompt prints label and reads one line.
func (a *app) prompt(label string) (string, error) {
	fmt.Fprint(a.out, label)
	line, err := a.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("read %s: %w", strings.TrimSpace(strings.TrimSuffix(label, ":")), err)
	}
	return strings.TrimSpace(line), nil
}
