package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"spiritlife-frontend/internal/audio"
	"spiritlife-frontend/internal/config"
	"spiritlife-frontend/internal/logging"
	"spiritlife-frontend/internal/search"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

// Version is set at build time.
var Version = "dev"

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newApp(os.Stdout).RunContext(ctx, os.Args); err != nil {
		color.New(color.FgRed).Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newApp(out io.Writer) *cli.App {
	return &cli.App{
		Name:    "sermonctl",
		Usage:   "search sermons and download audio teachings from the command line",
		Version: Version,
		Writer:  out,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "warn",
				Usage:   "debug, info, warn, error or quiet",
				EnvVars: []string{"LOG_LEVEL"},
			},
		},
		Before: func(c *cli.Context) error {
			logging.Setup(c.String("log-level"))
			return nil
		},
		Commands: []*cli.Command{
			searchCommand(),
			downloadCommand(),
		},
	}
}

func searchCommand() *cli.Command {
	return &cli.Command{
		Name:  "search",
		Usage: "run a manual or AI prompt search",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "api-url", Value: config.DefaultSearchAPIURL, EnvVars: []string{"SEARCH_API_URL"}},
			&cli.DurationFlag{Name: "timeout", Value: 60 * time.Second, EnvVars: []string{"SEARCH_TIMEOUT"}},
			&cli.StringFlag{Name: "keywords", Usage: "manual search keywords"},
			&cli.StringFlag{Name: "preacher", Usage: "manual search preacher name"},
			&cli.StringFlag{Name: "start-date", Usage: "YYYY-MM-DD"},
			&cli.StringFlag{Name: "end-date", Usage: "YYYY-MM-DD"},
			&cli.StringFlag{Name: "prompt", Usage: "AI chat prompt; switches to prompt mode"},
		},
		Action: runSearch,
	}
}

func runSearch(c *cli.Context) error {
	p := search.Payload{Mode: search.ModeManual}
	if c.IsSet("prompt") {
		p.Mode = search.ModePrompt
		p.Prompt = c.String("prompt")
	} else {
		p.Keywords = c.String("keywords")
		p.Preacher = c.String("preacher")
		var err error
		if p.StartDate, err = search.ParseDate(c.String("start-date")); err != nil {
			return fmt.Errorf("start-date: %w", err)
		}
		if p.EndDate, err = search.ParseDate(c.String("end-date")); err != nil {
			return fmt.Errorf("end-date: %w", err)
		}
	}

	client := search.NewClient(c.String("api-url"), c.Duration("timeout"), 0)
	resp, err := client.FetchResults(c.Context, p)
	if err != nil {
		return err
	}
	printResults(c.App.Writer, resp)
	return nil
}

func printResults(w io.Writer, resp search.SearchResponse) {
	heading := color.New(color.FgCyan, color.Bold)
	dim := color.New(color.Faint)

	heading.Fprintln(w, "Video Results")
	if len(resp.Videos) == 0 {
		dim.Fprintln(w, "  No video results found")
	}
	for i, v := range resp.Videos {
		fmt.Fprintf(w, "  %d. %s\n     %s\n", i+1, v.Title, v.URL)
	}

	fmt.Fprintln(w)
	heading.Fprintln(w, "Audio Results")
	if len(resp.Audios) == 0 {
		dim.Fprintln(w, "  No audio results found")
	}
	for i, a := range resp.Audios {
		fmt.Fprintf(w, "  %d. %s\n     %s\n", i+1, audio.SectionTitle(a.MessageTitle, a.Preacher), a.URL)
	}
}

func downloadCommand() *cli.Command {
	return &cli.Command{
		Name:  "download",
		Usage: "download one audio teaching as mp3",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "url", Required: true},
			&cli.StringFlag{Name: "title", Usage: "message title used for the file name"},
			&cli.StringFlag{Name: "out", Value: ".", Usage: "output directory"},
			&cli.DurationFlag{Name: "timeout", Value: audio.DefaultTimeout, EnvVars: []string{"AUDIO_FETCH_TIMEOUT"}},
		},
		Action: runDownload,
	}
}

func runDownload(c *cli.Context) error {
	w := c.App.Writer
	f := audio.NewFetcher(c.Duration("timeout"), nil)

	b, err := f.FetchWithProgress(c.Context, c.String("url"), progressPrinter(w))
	fmt.Fprintln(w)
	if err != nil {
		return err
	}

	dst := filepath.Join(c.String("out"), audio.DownloadFilename(c.String("title")))
	if err := os.WriteFile(dst, b, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", dst, err)
	}
	log.WithField("bytes", len(b)).Debug("audio saved")
	color.New(color.FgGreen).Fprintf(w, "Saved %s\n", dst)
	return nil
}

// progressPrinter redraws a single status line, once per whole percent
// when the size is known and once per 256 KB otherwise.
func progressPrinter(w io.Writer) audio.ProgressFunc {
	lastPercent := -1
	var lastKB int64 = -256
	return func(p audio.Progress) {
		kb := p.Downloaded / 1024
		if p.Known() {
			pct := int(p.Fraction * 100)
			if pct == lastPercent {
				return
			}
			lastPercent = pct
			fmt.Fprintf(w, "\rDownloading... %3d%% (%d KB)", pct, kb)
			return
		}
		if kb-lastKB < 256 {
			return
		}
		lastKB = kb
		fmt.Fprintf(w, "\rDownloading... %d KB", kb)
	}
}
