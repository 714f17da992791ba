package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/jessevdk/go-flags"

	"github.com/kbukum/scribe/bootstrap"
	"github.com/kbukum/scribe/config"
	"github.com/kbukum/scribe/session"
	"github.com/kbukum/scribe/version"
)

const (
	exitOK        = 0
	exitUsage     = 1
	exitFailed    = 2
	exitCancelled = 130
)

var errCancelled = errors.New("transcription cancelled")

type options struct {
	ConfigFile string `short:"c" long:"config" value-name:"FILE" description:"path to a YAML config file"`
	Backend    string `short:"b" long:"backend" choice:"local" choice:"cloud" description:"transcription backend"`
	Language   string `short:"l" long:"language" description:"spoken language code, or auto"`
	Prompt     string `short:"p" long:"prompt" description:"hint text passed to the engine"`
	Version    bool   `long:"version" description:"print the version and exit"`

	Args struct {
		Audio string `positional-arg-name:"audio-file"`
	} `positional-args:"yes"`
}

func parseFlags(args []string) (*options, error) {
	o := &options{}
	parser := flags.NewParser(o, flags.HelpFlag|flags.PassDoubleDash)
	parser.Name = "scribe"
	parser.Usage = "[OPTIONS] <audio-file>"

	rest, err := parser.ParseArgs(args)
	if err != nil {
		return nil, err
	}
	if o.Version {
		return o, nil
	}
	if o.Args.Audio == "" || len(rest) > 0 {
		return nil, errors.New("exactly one audio file is required")
	}
	return o, nil
}

// apply overrides settings with the flags that were given.
func (o *options) apply(s *config.Settings) {
	if o.Backend != "" {
		s.Backend = o.Backend
	}
	if o.Language != "" {
		s.Language = o.Language
	}
	if o.Prompt != "" {
		s.Prompt = o.Prompt
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	o, err := parseFlags(args)
	if err != nil {
		var ferr *flags.Error
		if errors.As(err, &ferr) && ferr.Type == flags.ErrHelp {
			_, _ = fmt.Fprintln(stdout, ferr.Message)
			return exitOK
		}
		_, _ = fmt.Fprintln(stderr, "scribe:", err)
		return exitUsage
	}
	if o.Version {
		_, _ = fmt.Fprintln(stdout, version.String())
		return exitOK
	}

	var loadOpts []config.LoaderOption
	if o.ConfigFile != "" {
		loadOpts = append(loadOpts, config.WithConfigFile(o.ConfigFile))
	}
	settings, err := config.Load(loadOpts...)
	if err != nil {
		_, _ = fmt.Fprintln(stderr, "scribe:", err)
		return exitUsage
	}
	o.apply(settings)

	app, err := bootstrap.New(settings)
	if err != nil {
		_, _ = fmt.Fprintln(stderr, "scribe:", err)
		return exitUsage
	}

	err = app.RunTask(ctx, func(ctx context.Context) error {
		out := app.NewSession(app.NewJob(o.Args.Audio)).Run(ctx)
		switch out.Phase {
		case session.Completed:
			_, _ = fmt.Fprintln(stdout, out.Result.FinalText())
			return nil
		case session.Cancelled:
			return errCancelled
		default:
			return out.Err
		}
	})
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, errCancelled):
		_, _ = fmt.Fprintln(stderr, "scribe:", err)
		return exitCancelled
	default:
		_, _ = fmt.Fprintln(stderr, "scribe:", err)
		return exitFailed
	}
}

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}
