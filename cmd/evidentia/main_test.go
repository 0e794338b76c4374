package main

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func TestPipelineFlagDefaults(t *testing.T) {
	flags := pipelineFlags()

	stringDefaults := map[string]string{
		"host":             "http://localhost:11434/v1",
		"embedding-model":  "embeddinggemma",
		"generation-model": "qwen2.5:3b",
		"cache-mode":       "fetch",
	}
	intDefaults := map[string]int{
		"k":          20,
		"batch-size": 32,
		"pool-size":  4,
	}

	for _, flag := range flags {
		switch f := flag.(type) {
		case *cli.StringFlag:
			if want, ok := stringDefaults[f.Name]; ok {
				assert.Equal(t, want, f.Value, f.Name)
				delete(stringDefaults, f.Name)
			}
			if f.Name == "root" {
				assert.True(t, f.Required, "root must be required")
			}
		case *cli.IntFlag:
			if want, ok := intDefaults[f.Name]; ok {
				assert.Equal(t, want, f.Value, f.Name)
				delete(intDefaults, f.Name)
			}
		case *cli.Float64Flag:
			if f.Name == "alpha" {
				assert.Equal(t, 0.6, f.Value)
			}
		}
	}
	assert.Empty(t, stringDefaults, "all expected string flags present")
	assert.Empty(t, intDefaults, "all expected int flags present")
}

func TestQueryCommandRequiresDoc(t *testing.T) {
	app := &cli.App{
		Name: "evidentia",
		Commands: []*cli.Command{
			{
				Name:   "query",
				Action: queryCommand,
				Flags: append(pipelineFlags(),
					&cli.StringFlag{
						Name:     "doc",
						Required: true,
					},
				),
			},
		},
	}

	err := app.Run([]string{"evidentia", "query", "--root", t.TempDir(), "climate risk"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "doc")
}

func TestSetupLogger(t *testing.T) {
	newApp := func() *cli.App {
		return &cli.App{
			Name: "test",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "log-level",
					Value: "info",
				},
			},
			Before: setupLogger,
			Action: func(c *cli.Context) error { return nil },
		}
	}

	t.Run("valid log levels", func(t *testing.T) {
		for _, level := range []string{"debug", "info", "warn", "error", "DEBUG", "WaRn"} {
			require.NoError(t, newApp().Run([]string{"test", "--log-level", level}), level)
		}
	})

	t.Run("invalid log level returns error", func(t *testing.T) {
		err := newApp().Run([]string{"test", "--log-level", "verbose"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid log level")
	})

	t.Run("configures the default logger", func(t *testing.T) {
		require.NoError(t, newApp().Run([]string{"test", "--log-level", "error"}))
		assert.False(t, slog.Default().Enabled(nil, slog.LevelInfo))
	})
}
