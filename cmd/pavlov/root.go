package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap/zapcore"

	"digital.vasic.pavlov/pkg/env"
	"digital.vasic.pavlov/pkg/logging"
)

var errChecksFailed = errors.New("checks failed")

// app carries what every subcommand needs once the root command
// has resolved configuration.
type app struct {
	out    io.Writer
	errOut io.Writer

	envFile string
	envVars map[string]string
	cfg     env.Config
	logger  logging.Logger
}

func newApp(out, errOut io.Writer) *app {
	return &app{
		out:    out,
		errOut: errOut,
		logger: logging.NullLogger{},
	}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "pavlov",
		Short: "Run assertion check plans against structured values",
		Long: `pavlov evaluates declarative check plans (YAML or JSON) against a
values document using the built-in assertion catalog.

Configuration is read from a .env file and the environment
(PAVLOV_* variables); command-line flags take precedence.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.configure(cmd.Flags())
		},
	}
	root.SetOut(a.out)
	root.SetErr(a.errOut)

	bindGlobalFlags(root.PersistentFlags(), a)

	root.AddCommand(
		newChecksCmd(a),
		newRunCmd(a),
		newConfigCmd(a),
	)
	return root
}

// bindGlobalFlags declares the persistent flags. Apart from
// --env-file they are read back through viper in configure.
func bindGlobalFlags(fs *pflag.FlagSet, a *app) {
	d := env.DefaultConfig()
	fs.StringVar(&a.envFile, "env-file", ".env", "dotenv file to load if present")
	fs.String(env.KeyLogFormat, d.LogFormat, "log format: console or json")
	fs.String(env.KeyLogLevel, d.LogLevel, "log level: debug, info, warn, error")
	fs.String(env.KeyLogFile, "", "append JSON logs to this file")
	fs.BoolP(env.KeyVerbose, "v", false, "enable debug logging")
}

// configure layers flags over the environment over the .env file
// and builds the logger.
func (a *app) configure(fs *pflag.FlagSet) error {
	v := env.NewViper()
	if err := env.BindFlags(v, fs); err != nil {
		return err
	}
	vars, err := env.ReadEnvFile(v, a.envFile)
	if err != nil {
		return err
	}
	a.envVars = vars

	cfg, err := env.FromViper(v)
	if err != nil {
		return fmt.Errorf("configuration: %w", err)
	}
	a.cfg = cfg

	logger, err := buildLogger(cfg, a.errOut)
	if err != nil {
		return err
	}
	a.logger = logger
	return nil
}

// buildLogger picks the console or JSON logger. A log file always
// gets JSON lines, alongside the chosen stream logger.
func buildLogger(cfg env.Config, errOut io.Writer) (logging.Logger, error) {
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	if cfg.Verbose {
		level = logging.LevelDebug
	}

	var stream logging.Logger
	switch cfg.LogFormat {
	case "json":
		stream = logging.NewZapLoggerTo(zapSink(errOut), level)
	default:
		stream = logging.NewConsoleLoggerTo(errOut, level)
	}

	if cfg.LogFile == "" {
		return stream, nil
	}
	file, err := logging.NewZapLogger(logging.LoggerConfig{
		OutputPath: cfg.LogFile,
		Level:      level,
	})
	if err != nil {
		return nil, err
	}
	return logging.NewMultiLogger(stream, file), nil
}

func zapSink(w io.Writer) zapcore.WriteSyncer {
	return zapcore.Lock(zapcore.AddSync(w))
}
