// Command modeldemo calls completion and embedding providers from the shell
// or serves the same operations over HTTP.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/kailas-cloud/modeldemo/internal/config"
	logpkg "github.com/kailas-cloud/modeldemo/internal/logger"
	"github.com/kailas-cloud/modeldemo/internal/metrics"
	"github.com/kailas-cloud/modeldemo/internal/version"
)

const usage = `usage: modeldemo [-env name | -config file] <command> [flags] [args]

commands:
  complete [-raw] <prompt>          send one prompt to the completion provider
  embed [-head N] <text>            print the embedding dimensions and first N values
  similarity <doc> <doc> [doc...]   print cosine similarity for every pair
  rank <query> <doc> [doc...]       order documents by similarity to query
  serve                             run the HTTP API
  version                           print build information
`

var errUsage = errors.New("invalid usage")

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("modeldemo", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { fmt.Fprint(stderr, usage) }
	env := fs.String("env", config.GetEnv(), "config environment (config/<env>.yaml)")
	configPath := fs.String("config", "", "explicit config file path")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	if fs.NArg() == 0 {
		fs.Usage()
		return 2
	}
	cmd, cmdArgs := fs.Arg(0), fs.Args()[1:]

	if cmd == "version" {
		fmt.Fprintln(stdout, version.String())
		return 0
	}

	cfg, err := loadConfig(*env, *configPath)
	if err != nil {
		fmt.Fprintf(stderr, "failed to load config: %v\n", err)
		return 1
	}

	logger, err := logpkg.NewLogger(*env, cfg.Logging.Level)
	if err != nil {
		fmt.Fprintf(stderr, "failed to create logger: %v\n", err)
		return 1
	}
	defer func() { _ = logger.Sync() }()

	metrics.Register()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := &app{cfg: &cfg, logger: logger, out: stdout}
	defer a.close()

	if err := a.dispatch(ctx, cmd, cmdArgs); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprintf(stderr, "%v\n\n%s", err, usage)
			return 2
		}
		logger.Error("Command failed", zap.String("command", cmd), zap.Error(err))
		return 1
	}
	return 0
}

func loadConfig(env, path string) (config.Config, error) {
	if path != "" {
		return config.LoadFile(path) //nolint:wrapcheck // already descriptive
	}
	return config.Load(env) //nolint:wrapcheck // already descriptive
}
