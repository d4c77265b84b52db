package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/abhisek/learnforge/internal/assess"
	"github.com/abhisek/learnforge/internal/logging"
	"github.com/abhisek/learnforge/internal/questions"
	"github.com/abhisek/learnforge/internal/store"
)

// viperForCmd binds a command's flags and environment to a fresh viper instance.
func viperForCmd(cmd *cobra.Command) (*viper.Viper, error) {
	v := viper.New()
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return nil, fmt.Errorf("bind flags: %w", err)
	}

	v.SetEnvPrefix("LEARNFORGE")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetConfigName("learnforge")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/learnforge")
	v.AddConfigPath("/etc/learnforge")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}
	return v, nil
}

// cli holds the dependencies shared by subcommands. Everything except the
// logger is opened on first use.
type cli struct {
	v        *viper.Viper
	logger   *zap.Logger
	out      io.Writer
	registry *prometheus.Registry
	st       *store.Store
}

func setup(cmd *cobra.Command) (*cli, error) {
	v, err := viperForCmd(cmd)
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(logging.Options{
		Level:  v.GetString("log-level"),
		Format: v.GetString("log-format"),
		File:   v.GetString("log-file"),
		Output: cmd.ErrOrStderr(),
	})
	if err != nil {
		return nil, fmt.Errorf("configure logging: %w", err)
	}
	if used := v.ConfigFileUsed(); used != "" {
		logger.Info("loaded config file", zap.String("path", used))
	}

	return &cli{
		v:        v,
		logger:   logger,
		out:      cmd.OutOrStdout(),
		registry: prometheus.NewRegistry(),
	}, nil
}

func (c *cli) close() {
	c.logMetrics()
	if c.st != nil {
		if err := c.st.Close(); err != nil {
			c.logger.Warn("close database", zap.Error(err))
		}
	}
	_ = c.logger.Sync()
}

// logMetrics writes the counters and histograms collected during the command at debug level.
func (c *cli) logMetrics() {
	if !c.logger.Core().Enabled(zap.DebugLevel) {
		return
	}
	families, err := c.registry.Gather()
	if err != nil {
		c.logger.Debug("gather metrics", zap.Error(err))
		return
	}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			fields := []zap.Field{zap.String("name", mf.GetName())}
			for _, lp := range m.GetLabel() {
				fields = append(fields, zap.String(lp.GetName(), lp.GetValue()))
			}
			if h := m.GetHistogram(); h != nil {
				fields = append(fields,
					zap.Uint64("count", h.GetSampleCount()),
					zap.Float64("sum", h.GetSampleSum()))
			} else {
				fields = append(fields, zap.Float64("value", m.GetCounter().GetValue()))
			}
			c.logger.Debug("metric", fields...)
		}
	}
}

// resolveDBPath returns the database path from --db (or LEARNFORGE_DB), then
// the default XDG path.
func (c *cli) resolveDBPath() (string, error) {
	if p := c.v.GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	return store.DefaultDBPath()
}

func (c *cli) store() (*store.Store, error) {
	if c.st != nil {
		return c.st, nil
	}
	path, err := c.resolveDBPath()
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	st, err := store.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	c.logger.Debug("opened database", zap.String("path", path))
	c.st = st
	return st, nil
}

func (c *cli) importer() (*questions.Importer, error) {
	return questions.NewImporter(c.v.GetString("data-dir"), c.logger)
}

func (c *cli) assessConfig() assess.Config {
	cfg := assess.DefaultConfig()
	cfg.HTTP.BaseURL = c.v.GetString("base-url")
	cfg.HTTP.Token = c.v.GetString("token")
	cfg.HTTP.Timeout = c.v.GetDuration("timeout")
	cfg.Retry.MaxAttempts = c.v.GetInt("retries")
	cfg.RateLimit = c.v.GetFloat64("rate")
	return cfg
}

// client builds the assessment client. Every call is recorded in the
// database's call log.
func (c *cli) client() (*assess.Client, error) {
	st, err := c.store()
	if err != nil {
		return nil, err
	}
	transport, err := assess.NewTransport(c.assessConfig(), nil, st.CallEvents(), c.logger)
	if err != nil {
		return nil, fmt.Errorf("assessment transport: %w", err)
	}
	return assess.NewClient(transport, assess.Options{
		Logger:     c.logger,
		Registerer: c.registry,
	})
}

func (c *cli) printJSON(v any) error {
	enc := json.NewEncoder(c.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// readJSONFile decodes path into v. "-" reads standard input.
func readJSONFile(path string, v any) error {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		r = f
	}
	if err := json.NewDecoder(r).Decode(v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
