package main

import (
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"github.com/awnumar/memguard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/fahmaliyi/lockbox/cli"
	"github.com/fahmaliyi/lockbox/command"
	"github.com/fahmaliyi/lockbox/config"
	"github.com/fahmaliyi/lockbox/core"
	"github.com/fahmaliyi/lockbox/logger"
	"github.com/fahmaliyi/lockbox/vault"
	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	os.Exit(run(os.Args, os.Stdin, os.Stdout, os.Stderr))
}

// run starts one session for the command line args, program name first,
// and returns the exit status.
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	opts, err := config.Parse(args[1:], stderr)
	if errors.Is(err, pflag.ErrHelp) {
		return 0
	}
	if err != nil {
		fmt.Fprintln(stderr, "Error:", err)
		return 2
	}
	if opts.Version {
		fmt.Fprintln(stdout, "lockbox", vault.Version)
		return 0
	}

	log := logger.New()
	defer func() { _ = log.Log.Sync() }()
	var outputs []string
	if opts.LogFile != "" {
		outputs = append(outputs, opts.LogFile)
	}
	if err := log.Init(opts.LogLevel, outputs...); err != nil {
		fmt.Fprintln(stderr, "Error initializing logger:", err)
		return 2
	}

	ignoreSignals()
	defer memguard.Purge()

	if err := vault.CheckAccessInterval(opts.Data, opts.Interval, time.Now()); err != nil {
		if errors.Is(err, vault.ErrTooSoon) {
			fmt.Fprintf(stderr, "Potential brute force attack detected! Wait %d seconds before retrying.\n",
				int(math.Ceil(opts.Interval.Seconds())))
			log.Log.Warn("access refused", zap.String("file", opts.Data), zap.Duration("interval", opts.Interval))
		} else {
			fmt.Fprintln(stderr, "Error:", err)
		}
		_ = vault.Touch(opts.Data, time.Now())
		return 1
	}

	code := serve(opts, args[0], stdin, stdout, stderr, log.Log)
	if err := vault.Touch(opts.Data, time.Now()); err != nil {
		log.Log.Warn("touch failed", zap.Error(err))
	}
	return code
}

// serve runs the UI worker and the processor until both have stopped.
func serve(opts *config.Options, exe string, stdin io.Reader, stdout, stderr io.Writer, log *zap.Logger) int {
	ch := command.NewChannel()
	ch.PushBack(command.UILoop)

	p := core.New(ch, vault.NewStore(opts.Data, log), exe, opts.Mask, log)
	defer p.Close()

	var g errgroup.Group
	var fatal string
	var uiErr error
	g.Go(p.Run)
	g.Go(func() error {
		if opts.Plain {
			uiErr = cli.NewConsole(ch, stdin, stdout).Run()
		} else {
			fatal, uiErr = cli.RunTUI(ch, tea.WithInput(stdin), tea.WithOutput(stdout))
		}
		if uiErr != nil {
			ch.PushFront(command.CoreExit)
		}
		return uiErr
	})

	// Processor failures have already been shown by the UI.
	err := g.Wait()
	if fatal != "" {
		fmt.Fprintln(stderr, "error:", fatal)
	}
	if uiErr != nil {
		fmt.Fprintln(stderr, "Error:", uiErr)
	}
	log.Info("session ended", zap.Bool("signedIn", p.SignedIn()))
	if err != nil {
		log.Error("session ended with an error", zap.Error(err))
		return 1
	}
	return 0
}
