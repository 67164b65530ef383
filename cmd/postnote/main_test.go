package main

import (
	"bytes"
	"errors"
	"flag"
	"testing"

	"github.com/entrhq/postnote/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    CLIConfig
		wantErr bool
	}{
		{
			name: "long flags",
			args: []string{"--title", "T", "--body", "B", "--image", "a.png", "--tags", "x,y", "--publish"},
			want: CLIConfig{Title: "T", Body: "B", Image: "a.png", Tags: "x,y", Publish: true, EnvFile: ".env"},
		},
		{
			name: "short flags",
			args: []string{"-t", "T", "-b", "B", "-i", "a.png", "-p"},
			want: CLIConfig{Title: "T", Body: "B", Image: "a.png", Publish: true, EnvFile: ".env"},
		},
		{
			name: "draft by default",
			args: []string{"-t", "T", "-b", "B"},
			want: CLIConfig{Title: "T", Body: "B", EnvFile: ".env"},
		},
		{
			name: "ambient flags",
			args: []string{"-t", "T", "-b", "B", "--config", "c.yaml", "--env-file", "x.env", "--verbosity", "debug", "--headed", "--report-dir", "out"},
			want: CLIConfig{Title: "T", Body: "B", ConfigFile: "c.yaml", EnvFile: "x.env", Verbosity: "debug", Headed: true, ReportDir: "out"},
		},
		{
			name: "version skips required flags",
			args: []string{"--version"},
			want: CLIConfig{EnvFile: ".env", ShowVersion: true},
		},
		{name: "missing title", args: []string{"-b", "B"}, wantErr: true},
		{name: "missing body", args: []string{"-t", "T"}, wantErr: true},
		{name: "unknown flag", args: []string{"-t", "T", "-b", "B", "--nope"}, wantErr: true},
		{name: "positional", args: []string{"-t", "T", "-b", "B", "extra"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			got, err := parseFlags(tt.args, &out)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, *got)
		})
	}
}

func TestParseFlagsHelp(t *testing.T) {
	var out bytes.Buffer
	_, err := parseFlags([]string{"-h"}, &out)
	assert.True(t, errors.Is(err, flag.ErrHelp))
	assert.Contains(t, out.String(), "postnote - Post articles to note.com")
}

func TestApplyFlags(t *testing.T) {
	base := *config.DefaultConfig()

	got := applyFlags(base, &CLIConfig{Headed: true, Verbosity: "quiet", ReportDir: "out"})
	assert.False(t, got.Browser.Headless)
	assert.Equal(t, "quiet", got.Logging.Verbosity)
	assert.True(t, got.Diagnostics.ReportEnabled)
	assert.Equal(t, "out", got.Diagnostics.ReportDir)

	// The loaded value is not modified
	assert.True(t, base.Browser.Headless)
	assert.False(t, base.Diagnostics.ReportEnabled)

	unchanged := applyFlags(base, &CLIConfig{})
	assert.Equal(t, base, unchanged)
}
