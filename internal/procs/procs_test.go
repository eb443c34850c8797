package procs

import (
	"context"
	"errors"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLister struct {
	names []string
	err   error
}

func (f fakeLister) ProcessNames(context.Context) ([]string, error) {
	return f.names, f.err
}

func TestDetectRunningBrowsers(t *testing.T) {
	tests := []struct {
		name   string
		lister ProcessLister
		want   []string
	}{
		{"nil lister", nil, nil},
		{"lister error", fakeLister{err: errors.New("denied")}, nil},
		{"no browsers", fakeLister{names: []string{"bash", "sshd", "systemd"}}, []string{}},
		{"firefox", fakeLister{names: []string{"bash", "Firefox"}}, []string{"firefox"}},
		{
			"google chrome matches both names",
			fakeLister{names: []string{"google-chrome"}},
			[]string{"chrome", "google-chrome"},
		},
		{
			"chromium is not chrome",
			fakeLister{names: []string{"chromium-browser"}},
			[]string{"chromium"},
		},
		{
			"several",
			fakeLister{names: []string{"brave", "firefox-esr", "firefox"}},
			[]string{"brave", "firefox"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectRunningBrowsers(context.Background(), tt.lister))
		})
	}
}

func TestNew(t *testing.T) {
	l, err := New(KindTable)
	require.NoError(t, err)
	assert.IsType(t, TableLister{}, l)

	l, err = New(KindCommand)
	require.NoError(t, err)
	assert.IsType(t, CommandLister{}, l)

	l, err = New(KindAuto)
	require.NoError(t, err)
	assert.NotNil(t, l)

	_, err = New("psutil")
	assert.Error(t, err)
}

func TestParseNames(t *testing.T) {
	got := parseNames("systemd\n  bash \n\nfirefox\n")
	assert.Equal(t, []string{"systemd", "bash", "firefox"}, got)
	assert.Nil(t, parseNames(""))
}

func TestCommandListerMissingCommand(t *testing.T) {
	_, err := CommandLister{Command: "stellar-clean-no-such-ps"}.ProcessNames(context.Background())
	assert.Error(t, err)
}

func TestCommandListerRunsPs(t *testing.T) {
	if _, err := exec.LookPath("ps"); err != nil {
		t.Skip("ps not available")
	}

	names, err := CommandLister{}.ProcessNames(context.Background())
	if err != nil {
		t.Skipf("ps failed in this environment: %v", err)
	}
	assert.NotEmpty(t, names)
}

func TestTableListerListsProcesses(t *testing.T) {
	names, err := TableLister{}.ProcessNames(context.Background())
	if err != nil {
		t.Skipf("process table unavailable: %v", err)
	}
	assert.NotEmpty(t, names)
}
