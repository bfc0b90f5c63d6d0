package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/eringen/postsite"
	"github.com/eringen/postsite/content"
)

// version is set at build time via ldflags.
var version = "dev"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var err error
	args := os.Args[2:]
	switch os.Args[1] {
	case "new":
		if len(args) < 1 {
			fmt.Fprintln(os.Stderr, "Usage: postsite new <dir>")
			os.Exit(1)
		}
		err = runNew(args[0])
	case "post":
		err = runPost(args)
	case "build":
		err = runBuild(ctx, args)
	case "check":
		err = runCheck(ctx, args)
	case "serve":
		err = runServe(ctx, args)
	case "crosspost":
		err = runCrosspost(ctx, args)
	case "version":
		fmt.Printf("postsite %s\n", version)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`postsite - A static blog generator and preview server

Usage:
  postsite <command> [arguments]

Commands:
  new <dir>          Create a new site
  post <title>       Create _posts/<today>-<slug>.md
  build [--drafts]   Render the site into the destination directory
  check              Parse and render every post without writing
  serve              Serve a live preview with the admin area
  crosspost          Send flagged posts to Medium (--dry-run to preview)
  version            Print the postsite version
  help               Show this help message

Common flags:
  -s <dir>           Site source directory (default ".")

Examples:
  postsite new myblog
  postsite post --tags java,spring "JAXB episodes"
  postsite build --drafts`)
}

// siteFlags registers the -s flag shared by every site command.
func siteFlags(name string) (*flag.FlagSet, *string) {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	src := fs.String("s", ".", "site source directory")
	return fs, src
}

func runPost(args []string) error {
	fs, src := siteFlags("post")
	layout := fs.String("layout", content.DefaultLayout, "layout name")
	comments := fs.Bool("comments", false, "enable comments")
	github := fs.String("github", "", "GitHub repository URL")
	medium := fs.Bool("medium", false, "crosspost to Medium")
	tags := fs.String("tags", "", "comma-separated tags")
	fs.Parse(args)
	if fs.NArg() == 0 {
		return errors.New("usage: postsite post [flags] <title>")
	}
	title := strings.Join(fs.Args(), " ")

	path, err := content.NewPostFile(*src, title, time.Now(), content.NewPostOptions{
		Layout:            *layout,
		Comments:          *comments,
		GitHub:            *github,
		CrosspostToMedium: *medium,
		Tags:              postsite.FilterEmpty(strings.Split(*tags, ",")),
	})
	if err != nil {
		return err
	}
	fmt.Printf("created %s\n", path)
	return nil
}

func runBuild(ctx context.Context, args []string) error {
	fs, src := siteFlags("build")
	drafts := fs.Bool("drafts", false, "include posts from _drafts")
	fs.Parse(args)

	cfg, err := postsite.LoadConfig(*src)
	if err != nil {
		return err
	}
	logger := postsite.NewLogger("build")
	b, err := postsite.NewBuilder(cfg, logger, postsite.BuildOptions{IncludeDrafts: *drafts})
	if err != nil {
		return err
	}
	report, err := b.Build(ctx)
	if err != nil {
		return err
	}
	logger.Infof("built %s into %s", report, cfg.Destination)
	return nil
}

func runCheck(ctx context.Context, args []string) error {
	fs, src := siteFlags("check")
	drafts := fs.Bool("drafts", false, "include posts from _drafts")
	fs.Parse(args)

	cfg, err := postsite.LoadConfig(*src)
	if err != nil {
		return err
	}
	b, err := postsite.NewBuilder(cfg, postsite.NewLogger("check"), postsite.BuildOptions{IncludeDrafts: *drafts})
	if err != nil {
		return err
	}
	report, err := b.Check(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("ok: %d posts, %d pages\n", report.Posts, report.Pages)
	return nil
}

func runServe(ctx context.Context, args []string) error {
	fs, src := siteFlags("serve")
	addr := fs.String("addr", "", "listen address (overrides config)")
	fs.Parse(args)

	cfg, err := postsite.LoadConfig(*src)
	if err != nil {
		return err
	}
	if *addr != "" {
		cfg.Addr = *addr
	}
	app, err := postsite.New(cfg)
	if err != nil {
		return err
	}
	defer app.Close()
	if err := app.Setup(ctx); err != nil {
		return err
	}

	errc := make(chan error, 1)
	go func() { errc <- app.Echo.Start(cfg.Addr) }()
	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return app.Echo.Shutdown(shutdownCtx)
	}
}

func runCrosspost(ctx context.Context, args []string) error {
	fs, src := siteFlags("crosspost")
	dryRun := fs.Bool("dry-run", false, "list what would be posted without calling Medium")
	fs.Parse(args)

	cfg, err := postsite.LoadConfig(*src)
	if err != nil {
		return err
	}
	res, err := postsite.Crosspost(ctx, cfg, postsite.NewLogger("crosspost"), *dryRun)
	if *dryRun {
		fmt.Printf("would post %d, skipped %d\n", res.WouldPost, res.Skipped)
	} else {
		fmt.Printf("posted %d, skipped %d, failed %d\n", res.Posted, res.Skipped, res.Failed)
	}
	return err
}
