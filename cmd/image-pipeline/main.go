package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/iluckin/image/internal/config"
	"github.com/iluckin/image/internal/fetch"
	"github.com/iluckin/image/internal/httpapi"
	"github.com/iluckin/image/internal/imaging"
	"github.com/iluckin/image/internal/logging"
	"github.com/iluckin/image/internal/recipe"
	"github.com/iluckin/image/internal/server"
	"github.com/iluckin/image/internal/storage"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

const usage = `image-pipeline - image transformation pipeline

Usage:
  image-pipeline [flags] [mcp]          Serve MCP over stdin/stdout (default)
  image-pipeline [flags] http           Serve the HTTP API
  image-pipeline [flags] run <recipe>   Apply a JSON recipe file and print the result

Flags:
`

func main() {
	flags := pflag.NewFlagSet("image-pipeline", pflag.ContinueOnError)
	configPath := flags.StringP("config", "c", "", "Path to a YAML, JSON or TOML config file")
	showVersion := flags.BoolP("version", "v", false, "Print version information")
	showHelp := flags.BoolP("help", "h", false, "Print this help message")
	flags.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		flags.PrintDefaults()
		fmt.Fprintln(os.Stderr)
		fmt.Fprintln(os.Stderr, "Environment variables override config keys with the IMAGE_PIPELINE_ prefix,")
		fmt.Fprintln(os.Stderr, "e.g. IMAGE_PIPELINE_LOG_LEVEL=debug or IMAGE_PIPELINE_HTTP_ADDR=:9000.")
	}

	if err := flags.Parse(os.Args[1:]); err != nil {
		os.Exit(2)
	}
	if *showHelp {
		flags.Usage()
		return
	}
	if *showVersion {
		fmt.Printf("image-pipeline %s\n", Version)
		fmt.Printf("  Build time: %s\n", BuildTime)
		fmt.Printf("  Git commit: %s\n", GitCommit)
		return
	}

	args := flags.Args()
	command := "mcp"
	if len(args) > 0 {
		command = args[0]
		args = args[1:]
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "image-pipeline: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Log)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := execute(ctx, command, args, cfg, logger); err != nil {
		logger.Error("command failed", zap.String("command", command), zap.Error(err))
		stop()
		logger.Sync()
		os.Exit(1)
	}
}

func execute(ctx context.Context, command string, args []string, cfg *config.Config, logger *zap.Logger) error {
	switch command {
	case "mcp", "http", "run":
	default:
		return fmt.Errorf("unknown command %q (want mcp, http or run)", command)
	}

	runner, cleanup, err := buildRunner(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	switch command {
	case "http":
		api := httpapi.New(runner, logger.Named("http"), cfg.HTTP.MaxBodyBytes)
		return api.ListenAndServe(ctx, httpapi.Options{
			Addr:            cfg.HTTP.Addr,
			ReadTimeout:     cfg.HTTP.ReadTimeout,
			WriteTimeout:    cfg.HTTP.WriteTimeout,
			ShutdownTimeout: cfg.HTTP.ShutdownTimeout,
			MaxBodyBytes:    cfg.HTTP.MaxBodyBytes,
		})
	case "run":
		if len(args) != 1 {
			return fmt.Errorf("run needs exactly one recipe file")
		}
		return runRecipe(ctx, runner, args[0])
	default:
		logger.Debug("starting MCP server",
			zap.String("version", Version),
			zap.String("build_time", BuildTime),
			zap.String("commit", GitCommit),
		)
		return server.New(runner, logger.Named("mcp"), Version).Run(ctx)
	}
}

// buildRunner wires the fetcher, its cache, storage and the loader from cfg.
func buildRunner(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*recipe.Runner, func(), error) {
	cleanup := func() {}

	var fetcher imaging.Fetcher = fetch.NewHTTPFetcher(cfg.Fetch.Config, logger.Named("fetch"))
	if cfg.Fetch.Cache.Enabled {
		var store fetch.Store
		if addr := cfg.Fetch.Cache.RedisAddr; addr != "" {
			client, err := fetch.DialRedis(ctx, addr, cfg.Fetch.Cache.RedisPassword, cfg.Fetch.Cache.RedisDB)
			if err != nil {
				return nil, nil, err
			}
			cleanup = func() { _ = client.Close() }
			store = fetch.NewRedisCache(client, cfg.Fetch.Cache.TTL)
		} else {
			store = fetch.NewMemoryCache(cfg.Fetch.Cache.MaxEntries)
		}
		fetcher = fetch.NewCachingFetcher(fetcher, store, logger.Named("cache"))
	}

	provider, err := storage.New(cfg.Storage)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("failed to set up storage: %w", err)
	}

	loader := imaging.NewLoader(nil, fetcher,
		imaging.WithLogger(logger.Named("imaging")),
		imaging.WithWorkers(cfg.Pipeline.Workers),
		imaging.WithFontPath(cfg.Pipeline.FontPath),
	)
	return recipe.NewRunner(loader, provider, logger.Named("recipe")), cleanup, nil
}

func runRecipe(ctx context.Context, runner *recipe.Runner, path string) error {
	rc, err := recipe.ParseFile(path)
	if err != nil {
		return err
	}
	res, err := runner.Run(ctx, rc)
	if err != nil {
		return err
	}

	out, err := jsoniter.ConfigCompatibleWithStandardLibrary.MarshalIndent(res, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
