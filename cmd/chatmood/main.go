package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var rootCmd = &cobra.Command{
	Use:           "chatmood",
	Short:         "Lexicon-based sentiment labels for chat messages",
	Long:          `chatmood labels chat messages positive, neutral or negative by combining per-token distributions from text, emote and emoji lexicons.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// main registers subcommands and global flags, then runs the root command.
// Any command error is printed and exits with status 1.
func main() {
	rootCmd.Version = Version

	rootCmd.AddCommand(scoreCmd)
	rootCmd.AddCommand(explainCmd)
	rootCmd.AddCommand(accuracyCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().String("config", "", "path to a chatmood.toml file")
	rootCmd.PersistentFlags().String("env-file", ".env", "dotenv file loaded before reading the environment")
	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug|info|warn|error), overrides config")
	rootCmd.PersistentFlags().Bool("quiet", false, "suppress the run summary")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintln(os.Stderr, color.RedString("error:"), err)
		os.Exit(1)
	}
}

// env is what every subcommand needs after flags, .env and config are merged.
type env struct {
	cfg    config
	logger zerolog.Logger
	color  bool
	quiet  bool
}

func setup(cmd *cobra.Command) (*env, error) {
	flags := cmd.Root().PersistentFlags()

	envFile, _ := flags.GetString("env-file")
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}

	configPath, _ := flags.GetString("config")
	cfg, err := loadConfig(configPath)
	if err != nil {
		return nil, err
	}
	if lvl, _ := flags.GetString("log-level"); lvl != "" {
		cfg.Log.Level = lvl
	}

	colorFlag, _ := flags.GetString("color")
	useColor := colorFlag == "on" || (colorFlag == "auto" && isTerminal(os.Stderr))
	color.NoColor = !useColor

	logger, err := newLogger(cfg.Log, os.Stderr, useColor)
	if err != nil {
		return nil, err
	}

	quiet, _ := flags.GetBool("quiet")
	return &env{cfg: cfg, logger: logger, color: useColor, quiet: quiet}, nil
}

// newLogger writes human-readable lines to a terminal and JSON elsewhere,
// unless the format is forced.
func newLogger(lc logConfig, w *os.File, useColor bool) (zerolog.Logger, error) {
	level := zerolog.InfoLevel
	if lc.Level != "" {
		parsed, err := zerolog.ParseLevel(lc.Level)
		if err != nil {
			return zerolog.Logger{}, fmt.Errorf("invalid log level %q: %w", lc.Level, err)
		}
		level = parsed
	}

	var out io.Writer = w
	switch lc.Format {
	case "console":
		out = zerolog.ConsoleWriter{Out: w, NoColor: !useColor}
	case "json":
	case "", "auto":
		if isTerminal(w) {
			out = zerolog.ConsoleWriter{Out: w, NoColor: !useColor}
		}
	default:
		return zerolog.Logger{}, fmt.Errorf("invalid log format %q", lc.Format)
	}

	return zerolog.New(out).Level(level).With().Timestamp().Logger(), nil
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
