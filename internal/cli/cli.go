package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/vk/varflow/internal/app"
	"github.com/vk/varflow/internal/tracing"
)

// EnvPrefix prefixes every environment variable the CLI reads, for example
// VARFLOW_PARTITION_SIZE.
const EnvPrefix = "VARFLOW"

var version = "dev"

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

func usageError(format string, args ...any) *ExitError {
	return &ExitError{Code: 2, Message: fmt.Sprintf(format, args...)}
}

// Parse processes command-line arguments. It returns a populated Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
//
// Settings are taken from flags, then VARFLOW_* environment variables, then
// the YAML file named by --config, then defaults.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")

	v := viper.New()
	var parsed *app.Config
	cmd := newRootCommand(v, func(cfg *app.Config) { parsed = cfg })
	cmd.SetArgs(args)
	cmd.SetOut(output)
	cmd.SetErr(output)

	if err := cmd.Execute(); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			return nil, false, exitErr
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	if parsed == nil {
		// Help or version was printed.
		return nil, true, nil
	}

	slog.Debug("CLI parser finished successfully.", "config", parsed)
	return parsed, false, nil
}

func newRootCommand(v *viper.Viper, done func(*app.Config)) *cobra.Command {
	var cfgFile string

	cmd := &cobra.Command{
		Use:   "varflow [flags] SOURCE...",
		Short: "Compute derived dataset columns from declarative transforms",
		Long: `varflow - dependency-graph driven column transforms.

Each SOURCE is a transform file (.hcl), a directory of transform files, or a
dotted module identifier such as "features.base" (features/base.hcl). The
transforms are planned into a dependency order and applied to the dataset
given with --data.`,
		Version:       version,
		Args:          cobra.ArbitraryArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfgFile != "" {
				v.SetConfigFile(cfgFile)
				if err := v.ReadInConfig(); err != nil {
					return usageError("failed to read config file %s: %v", cfgFile, err)
				}
				slog.Debug("Config file loaded.", "path", v.ConfigFileUsed())
			}

			sources := args
			if len(sources) == 0 {
				sources = v.GetStringSlice("sources")
			}
			if len(sources) == 0 {
				slog.Debug("No transform sources provided, printing usage and exiting.")
				return cmd.Help()
			}

			cfg, err := configFromViper(v, sources)
			if err != nil {
				return err
			}
			done(cfg)
			return nil
		},
	}

	cmd.Flags().StringVarP(&cfgFile, "config", "c", "", "YAML config file.")
	flags := cmd.Flags()
	flags.StringP("data", "d", "", "Input dataset (.csv or .json). Required.")
	flags.StringP("output", "o", "", "Output file (.csv, .json or .yaml). Without it the first rows are printed as a table.")
	flags.Int("head", 5, "Number of rows printed when no output file is given. 0 prints all rows.")
	flags.Int("partition-size", 0, "Rows per partition. 0 disables partitioned execution.")
	flags.Int("workers", 0, "Partitions processed at once. 0 uses the number of CPUs.")
	flags.Bool("allow-undeclared", true, "Allow dataset columns that no transform mentions.")
	flags.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	flags.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	flags.String("trace", tracing.ExporterNone, "Trace exporter. Options: 'none', 'stdout', 'otlp'.")
	flags.String("otlp-endpoint", "localhost:4317", "Collector address for the otlp trace exporter.")
	flags.Int("healthcheck-port", 0, "Port for the HTTP health check server. 0 is disabled.")

	bindings := map[string]string{
		"data":                     "data",
		"output":                   "output",
		"head":                     "head",
		"partition_size":           "partition-size",
		"workers":                  "workers",
		"allow_undeclared_columns": "allow-undeclared",
		"log_format":               "log-format",
		"log_level":                "log-level",
		"trace.exporter":           "trace",
		"trace.otlp_endpoint":      "otlp-endpoint",
		"healthcheck_port":         "healthcheck-port",
	}
	for key, flag := range bindings {
		_ = v.BindPFlag(key, flags.Lookup(flag))
	}
	v.SetDefault("trace.sample_rate", 1.0)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	return cmd
}

func configFromViper(v *viper.Viper, sources []string) (*app.Config, error) {
	logFormat := strings.ToLower(v.GetString("log_format"))
	if logFormat != "text" && logFormat != "json" {
		return nil, usageError("invalid log-format: must be 'text' or 'json'")
	}

	logLevel := strings.ToLower(v.GetString("log_level"))
	switch logLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, usageError("invalid log-level: must be 'debug', 'info', 'warn', or 'error'")
	}

	if v.GetString("data") == "" {
		return nil, usageError("required flag \"data\" not set")
	}

	trace := tracing.DefaultConfig()
	trace.Exporter = strings.ToLower(v.GetString("trace.exporter"))
	trace.OTLPEndpoint = v.GetString("trace.otlp_endpoint")
	trace.SampleRate = v.GetFloat64("trace.sample_rate")
	slog.Debug("CLI parameter validation complete.")

	cfg, err := app.NewConfig(app.Config{
		Sources:         sources,
		DataPath:        v.GetString("data"),
		OutputPath:      v.GetString("output"),
		Head:            v.GetInt("head"),
		PartitionSize:   v.GetInt("partition_size"),
		Workers:         v.GetInt("workers"),
		AllowUndeclared: v.GetBool("allow_undeclared_columns"),
		LogFormat:       logFormat,
		LogLevel:        logLevel,
		HealthcheckPort: v.GetInt("healthcheck_port"),
		Trace:           trace,
	})
	if err != nil {
		return nil, usageError("%s", err.Error())
	}
	return cfg, nil
}
