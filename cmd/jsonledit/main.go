// Package main is the entry point for the jsonledit server.
//
// jsonledit serves an HTTP API to browse the JSON Lines files of a data
// directory and edit their records in sessions: select records, edit them as
// indented text, commit valid edits and delete records after confirmation.
// Every change rewrites the whole file. Configuration is read from CLI flags
// and an optional YAML file in the data directory.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/lmittmann/tint"
	"github.com/maruel/jsonledit/internal/jsonldb"
	"github.com/maruel/jsonledit/internal/server"
	"github.com/maruel/jsonledit/internal/server/ratelimit"
	"github.com/maruel/jsonledit/internal/session"
	"github.com/maruel/jsonledit/internal/storage"
	"github.com/maruel/jsonledit/internal/storage/git"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
)

func main() {
	if err := mainImpl(); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "jsonledit: %v\n", err)
		os.Exit(1)
	}
}

func mainImpl() error {
	version := flag.Bool("version", false, "Print version and exit")
	httpAddr := flag.String("http", "localhost:8080", "Address to listen on (e.g., localhost:8080, :8080)")
	dataDir := flag.String("data-dir", "./data", "Data directory; each subdirectory is a folder of .jsonl files")
	logLevel := flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	configPath := flag.String("config", "", "YAML config file (default <data-dir>/jsonledit.yaml)")
	useGit := flag.Bool("git", false, "Commit every rewrite to a git repository in the data directory")
	jwtSecret := flag.String("jwt-secret", "", "Require HS256 bearer tokens signed with this secret on /api/")
	sessionTTL := flag.Duration("session-ttl", 30*time.Minute, "Drop sessions idle for this long; 0 keeps them")
	rateLimit := flag.Int("rate-limit", 120, "Mutating requests allowed per minute per client; 0 disables")
	printToken := flag.String("print-token", "", "Print a bearer token for this subject and exit")
	flag.Parse()
	if len(flag.Args()) > 0 {
		return fmt.Errorf("unknown arguments: %v", flag.Args())
	}

	if *version {
		printVersion()
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	defer stop()
	ll := &slog.LevelVar{}
	ll.Set(slog.LevelInfo)
	slog.SetDefault(newLogger(ll))

	// Config file values only apply to flags not explicitly set.
	if *configPath == "" {
		*configPath = filepath.Join(*dataDir, "jsonledit.yaml")
	}
	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	set := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) {
		set[f.Name] = true
	})
	if err := cfg.apply(set, &options{
		http:       httpAddr,
		logLevel:   logLevel,
		git:        useGit,
		jwtSecret:  jwtSecret,
		sessionTTL: sessionTTL,
		rateLimit:  rateLimit,
	}); err != nil {
		return fmt.Errorf("invalid config %s: %w", *configPath, err)
	}

	switch *logLevel {
	case "debug":
		ll.Set(slog.LevelDebug)
	case "info":
	case "warn":
		ll.Set(slog.LevelWarn)
	case "error":
		ll.Set(slog.LevelError)
	default:
		return fmt.Errorf("unknown log level: %q", *logLevel)
	}

	if *printToken != "" {
		if *jwtSecret == "" {
			return errors.New("-print-token requires -jwt-secret")
		}
		tok, err := server.NewToken([]byte(*jwtSecret), *printToken, 30*24*time.Hour)
		if err != nil {
			return err
		}
		fmt.Println(tok)
		return nil
	}

	store := &jsonldb.Store{}
	browser, err := storage.NewBrowser(*dataDir, store)
	if err != nil {
		return err
	}
	versioned := &storage.VersionedStore{Store: store}
	var repo *git.Repo
	if *useGit {
		if repo, err = git.Open(browser.RootDir(), "jsonledit", "jsonledit@localhost"); err != nil {
			return err
		}
		versioned.Repo = repo
		slog.InfoContext(ctx, "History enabled", "dir", repo.Dir())
	}
	if err := browser.Watch(ctx); err != nil {
		slog.WarnContext(ctx, "Failed to watch data directory; listings are not refreshed", "err", err)
	}
	sessions := session.NewManager(versioned, *sessionTTL)
	defer sessions.Stop()
	var limiter *ratelimit.Limiter
	if *rateLimit > 0 {
		limiter = ratelimit.NewLimiter(*rateLimit, max(*rateLimit/6, 1))
		defer limiter.Close()
	}

	if err := watchExecutable(ctx, stop); err != nil {
		slog.WarnContext(ctx, "Failed to watch executable", "err", err)
	}

	buildVersion, _, _, _ := getBuildInfo()
	httpServer := &http.Server{
		Addr: *httpAddr,
		Handler: server.NewRouter(&server.Config{
			Sessions:  sessions,
			Browser:   browser,
			Repo:      repo,
			Version:   buildVersion,
			JWTSecret: []byte(*jwtSecret),
			Limiter:   limiter,
		}),
		BaseContext:       func(_ net.Listener) context.Context { return ctx },
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Run server in goroutine
	serverErr := make(chan error, 1)
	go func() {
		slog.InfoContext(ctx, "Starting server", "addr", *httpAddr, "data", browser.RootDir(), "auth", *jwtSecret != "", "version", buildVersion)
		serverErr <- httpServer.ListenAndServe()
	}()

	// Wait for either context cancellation or server error
	select {
	case err := <-serverErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
		// Graceful shutdown
		slog.InfoContext(ctx, "Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown error: %w", err)
		}
		slog.InfoContext(ctx, "Server stopped")
	}
	return nil
}

// newLogger returns a tint logger on stderr. Zero-valued attributes are
// dropped, and so are timestamps under systemd (it adds its own).
func newLogger(ll *slog.LevelVar) *slog.Logger {
	underSystemd := os.Getenv("JOURNAL_STREAM") != ""
	return slog.New(tint.NewHandler(colorable.NewColorable(os.Stderr), &tint.Options{
		Level:      ll,
		TimeFormat: "15:04:05.000", // Like time.TimeOnly plus milliseconds.
		NoColor:    !isatty.IsTerminal(os.Stderr.Fd()),
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if underSystemd && a.Key == slog.TimeKey && len(groups) == 0 {
				return slog.Attr{}
			}
			if isZero(a.Value.Any()) {
				return slog.Attr{}
			}
			return a
		},
	}))
}

func isZero(val any) bool {
	switch t := val.(type) {
	case string:
		return t == ""
	case bool:
		return !t
	case uint64:
		return t == 0
	case int64:
		return t == 0
	case float64:
		return t == 0
	case time.Time:
		return t.IsZero()
	case time.Duration:
		return t == 0
	case nil:
		return true
	}
	return false
}

// watchExecutable watches the current executable for modifications and calls
// stop to trigger graceful shutdown when detected.
func watchExecutable(ctx context.Context, stop context.CancelFunc) error {
	exe, err := os.Executable()
	if err != nil {
		return err
	}
	exe, err = filepath.EvalSymlinks(exe)
	if err != nil {
		return err
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := w.Add(exe); err != nil {
		_ = w.Close()
		return err
	}
	go func() {
		defer func() { _ = w.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-w.Events:
				if !ok {
					return
				}
				if event.Has(fsnotify.Write) || event.Has(fsnotify.Chmod) {
					slog.InfoContext(ctx, "Executable modified, initiating shutdown")
					stop()
					return
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				slog.WarnContext(ctx, "Error watching executable", "err", err)
			}
		}
	}()
	return nil
}

func printVersion() {
	version, goVersion, revision, dirty := getBuildInfo()
	fmt.Printf("jsonledit %s\n", version)
	fmt.Printf("  Go version: %s\n", goVersion)
	fmt.Printf("  Revision:   %s\n", revision)
	if dirty {
		fmt.Printf("  Modified:   true\n")
	}
}

func getBuildInfo() (version, goVersion, revision string, dirty bool) {
	version = "unknown"
	goVersion = "unknown"
	revision = "unknown"
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}
	version = info.Main.Version
	if version == "" || version == "(devel)" {
		version = "dev"
	}
	goVersion = info.GoVersion
	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			revision = setting.Value
		case "vcs.modified":
			dirty = setting.Value == "true"
		}
	}
	return
}
