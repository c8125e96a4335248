package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"

	"rss_digest/internal/archive"
	"rss_digest/internal/collector"
	"rss_digest/internal/config"
	"rss_digest/internal/fetcher"
	"rss_digest/internal/notify"
	"rss_digest/internal/report"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	opts, err := parseFlags(args, os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		return 1
	}

	log, closeLog, err := newLogger(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		slog.Error("open log file", "path", cfg.LogFile, "error", err)
		return 1
	}
	defer func() { _ = closeLog() }()

	if opts.cleanArchive != "" {
		removed, err := archive.Clean(opts.cleanArchive, archive.DefaultKeepDays, time.Now())
		if err != nil {
			log.Warn("clean archive", "dir", opts.cleanArchive, "error", err)
		}
		if removed > 0 {
			fmt.Fprintf(os.Stderr, "Removed %d archived digests older than %d days from %s\n",
				removed, archive.DefaultKeepDays, opts.cleanArchive)
		}
	}

	feeds, err := config.LoadFeeds(opts.feedsPath)
	if err != nil {
		log.Error("load feeds", "path", opts.feedsPath, "error", err)
		return 1
	}

	f := fetcher.New(&http.Client{}, log)
	f.SetUserAgent(cfg.UserAgent)
	coll := collector.New(f, log)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if opts.check {
		results := coll.Check(ctx, f, feeds)
		if printCheck(os.Stdout, results) > 0 {
			return 1
		}
		return 0
	}

	var notifier *notify.Telegram
	if cfg.NotifyEnabled() {
		notifier, err = notify.New(cfg.TelegramBotToken, cfg.TelegramChatID, log)
		if err != nil {
			log.Warn("telegram summary disabled", "error", err)
		}
	}

	digest := func(ctx context.Context) error {
		fmt.Fprintf(os.Stderr, "Fetching %d RSS feeds (window: %dh)...\n", len(feeds), opts.hours)
		r := coll.Collect(ctx, feeds, opts.hours)

		path := opts.output
		if path == "" {
			tmp, err := report.TempPath()
			if err != nil {
				return err
			}
			path = tmp
		}
		if err := report.WriteFile(path, r); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Done: %d/%d feeds ok, %d articles → %s\n", r.FeedsOK, r.FeedsTotal, r.TotalArticles, path)

		if notifier != nil {
			if err := notifier.Notify(r); err != nil {
				log.Warn("telegram summary", "error", err)
			}
		}
		return nil
	}

	if opts.every > 0 {
		log.Info("watching feeds", "every", opts.every)
		collector.Watch(ctx, opts.every, func(ctx context.Context) {
			if err := digest(ctx); err != nil {
				log.Error("write report", "error", err)
			}
		})
		log.Info("watch stopped")
		return 0
	}

	if err := digest(ctx); err != nil {
		log.Error("write report", "error", err)
		return 1
	}
	return 0
}

type options struct {
	hours        int
	output       string
	cleanArchive string
	check        bool
	every        time.Duration
	feedsPath    string
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var opts options

	fs := flag.NewFlagSet("digest", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.IntVar(&opts.hours, "hours", 48, "only include articles published within the last `N` hours")
	fs.StringVar(&opts.output, "output", "", "write the report to `path` (default: a new temp file)")
	fs.StringVar(&opts.output, "o", "", "shorthand for -output")
	fs.StringVar(&opts.cleanArchive, "clean-archive", "", "remove dated *.md digests older than 30 days from `dir`")
	fs.BoolVar(&opts.check, "check", false, "validate every feed and exit without writing a report")
	fs.DurationVar(&opts.every, "every", 0, "repeat the digest every `interval` until interrupted")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "Usage: digest [flags] <feeds.json>")
		fmt.Fprintln(stderr, "")
		fmt.Fprintln(stderr, "Flags:")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return options{}, errors.New("expected exactly one feed config path")
	}
	if opts.hours <= 0 {
		return options{}, fmt.Errorf("invalid -hours %d: must be positive", opts.hours)
	}
	if opts.every < 0 {
		return options{}, fmt.Errorf("invalid -every %s: must not be negative", opts.every)
	}
	opts.feedsPath = fs.Arg(0)
	return opts, nil
}

// printCheck writes one line per probed feed and returns the number of
// failures.
func printCheck(w io.Writer, results []collector.CheckResult) int {
	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
			fmt.Fprintf(w, "FAIL %s [%s] %s: %v\n", r.Feed.Name, r.Feed.Category, r.Feed.URL, r.Err)
			continue
		}
		fmt.Fprintf(w, "OK   %s [%s] %s %s, %d items: %s\n",
			r.Feed.Name, r.Feed.Category, r.Probe.Type, r.Probe.Version, r.Probe.Items, r.Probe.Title)
	}
	fmt.Fprintf(w, "%d/%d feeds valid\n", len(results)-failed, len(results))
	return failed
}

// newLogger builds the text logger on stderr. When file is set, records are
// also written to a rotating log file.
func newLogger(level, file string) (*slog.Logger, func() error, error) {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	var out io.Writer = os.Stderr
	closeFn := func() error { return nil }
	if file != "" {
		if err := os.MkdirAll(filepath.Dir(file), 0o750); err != nil {
			return nil, nil, fmt.Errorf("create log directory: %w", err)
		}
		lj := &lumberjack.Logger{
			Filename:   file,
			MaxSize:    64, // MB
			MaxBackups: 3,
			MaxAge:     7, // days
		}
		out = io.MultiWriter(os.Stderr, lj)
		closeFn = lj.Close
	}
	return slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: lvl})), closeFn, nil
}
