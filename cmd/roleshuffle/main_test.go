package main

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/roleshuffle/internal/blobstore/afsblob"
	"github.com/fyrsmithlabs/roleshuffle/internal/configstore"
	"github.com/fyrsmithlabs/roleshuffle/internal/reveal"
	"github.com/fyrsmithlabs/roleshuffle/internal/roster"
)

// setupEnv isolates the CLI in a temporary home with a fast reveal.
func setupEnv(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("ROLESHUFFLE_REVEAL_INTERVAL", "1ms")
	t.Setenv("ROLESHUFFLE_LOGGING_LEVEL", "error")
}

type result struct {
	code   int
	stdout string
	stderr string
}

func execute(t *testing.T, args ...string) result {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, &stdout, &stderr)
	return result{code: code, stdout: stdout.String(), stderr: stderr.String()}
}

func TestRootCmd_Subcommands(t *testing.T) {
	root := newRootCmd()
	names := map[string]bool{}
	for _, cmd := range root.Commands() {
		names[cmd.Name()] = true
		assert.NotEmpty(t, cmd.Short, cmd.Name())
	}
	for _, want := range []string{"assign", "reveal", "config", "serve", "version"} {
		assert.True(t, names[want], "missing %s command", want)
	}

	for _, flag := range []string{"config", "log-level", "json"} {
		assert.NotNil(t, root.PersistentFlags().Lookup(flag), flag)
	}
}

func TestVersionCmd(t *testing.T) {
	res := execute(t, "version")
	require.Equal(t, 0, res.code)
	assert.Contains(t, res.stdout, "Version:    dev")
	assert.Contains(t, res.stdout, "Commit:")
}

func TestAssignCmd(t *testing.T) {
	setupEnv(t)

	res := execute(t, "assign", "-p", "Alice", "-p", "Bob", "-p", "Carol", "-r", "Driver", "-r", "Navigator")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stdout, "MEMBER")
	assert.Contains(t, res.stdout, "Alice")
	assert.Contains(t, res.stdout, "Roles assigned!")
}

func TestAssignCmd_JSON(t *testing.T) {
	setupEnv(t)

	res := execute(t, "assign", "--json", "-p", "Alice", "-p", "Bob", "-r", "Driver", "-r", "Navigator")
	require.Equal(t, 0, res.code, res.stderr)

	var participants []roster.Participant
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &participants))
	require.Len(t, participants, 2)

	// Two members and two roles is a bijection.
	got := []string{participants[0].AssignedRole, participants[1].AssignedRole}
	assert.ElementsMatch(t, []string{"Driver", "Navigator"}, got)
	assert.Equal(t, "Alice", participants[0].Name)
}

func TestAssignCmd_Rejected(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		code    int
		message string
	}{
		{"no members", []string{"assign", "-r", "Driver"}, 2, "add team members first"},
		{"no roles", []string{"assign", "-p", "Alice"}, 2, "add roles first"},
		{"duplicate member", []string{"assign", "-p", "Alice", "-p", "alice", "-r", "Driver"}, 2, "already exists"},
		{"blank role", []string{"assign", "-p", "Alice", "-r", " "}, 2, "name is required"},
		{"unknown saved team", []string{"assign", "--from", "nope"}, 1, "not found"},
		{"exclusive flags", []string{"assign", "--from", "x", "-p", "Alice"}, 1, "none of the others"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setupEnv(t)
			res := execute(t, tt.args...)
			assert.Equal(t, tt.code, res.code)
			assert.True(t, strings.HasPrefix(res.stderr, "Error: "), res.stderr)
			assert.Contains(t, res.stderr, tt.message)
			assert.NotContains(t, res.stderr, "goroutine")
		})
	}
}

func TestRevealCmd_Plain(t *testing.T) {
	setupEnv(t)

	res := execute(t, "reveal", "--plain", "-p", "Alice", "-p", "Bob", "-r", "Driver")
	require.Equal(t, 0, res.code, res.stderr)

	lines := strings.Split(strings.TrimSpace(res.stdout), "\n")
	require.Len(t, lines, 6)
	for i := 0; i < 5; i++ {
		assert.True(t, strings.HasPrefix(lines[i], "["+string(rune('1'+i))+"/5]"), lines[i])
	}
	assert.Equal(t, "[5/5] Alice → Driver, Bob → Driver", lines[4])
	assert.Equal(t, "Roles assigned!", lines[5])
}

func TestRevealCmd_JSONFrames(t *testing.T) {
	setupEnv(t)

	res := execute(t, "reveal", "--json", "-p", "Alice", "-p", "Bob", "-r", "Driver", "-r", "Navigator")
	require.Equal(t, 0, res.code, res.stderr)

	dec := json.NewDecoder(strings.NewReader(res.stdout))
	var frames []reveal.Frame
	for dec.More() {
		var f reveal.Frame
		require.NoError(t, dec.Decode(&f))
		frames = append(frames, f)
	}

	require.Len(t, frames, 5)
	for i, f := range frames {
		assert.Equal(t, i+1, f.Tick)
		assert.Equal(t, 5, f.Total)
		assert.Equal(t, frames[0].RunID, f.RunID)
		assert.Equal(t, i == 4, f.Final)
	}
}

func TestRevealCmd_Rejected(t *testing.T) {
	setupEnv(t)

	res := execute(t, "reveal", "--plain", "-p", "Alice")
	assert.Equal(t, 2, res.code)
	assert.Contains(t, res.stderr, "add roles first")
	assert.Empty(t, res.stdout)
}

func TestConfigCmd_Lifecycle(t *testing.T) {
	setupEnv(t)

	res := execute(t, "config", "list")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stdout, "No saved teams")

	res = execute(t, "config", "save", "Sprint 12", "-p", "Alice", "-p", "Bob", "-r", "Driver")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stdout, `Team saved: "Sprint 12"`)

	res = execute(t, "config", "list", "--json")
	require.Equal(t, 0, res.code, res.stderr)
	var items []configstore.Configuration
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &items))
	require.Len(t, items, 1)
	id := items[0].ID
	assert.Len(t, items[0].TeamMembers, 2)
	assert.Equal(t, time.Now().Format(configstore.DateLayout), items[0].Date)

	res = execute(t, "config", "list")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stdout, "NAME")
	assert.Contains(t, res.stdout, "Sprint 12")

	res = execute(t, "config", "show", "sprint 12")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stdout, "ID:    "+id)
	assert.Contains(t, res.stdout, "  - Alice")
	assert.Contains(t, res.stdout, "  - Driver")

	res = execute(t, "config", "load", id, "--assign")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stdout, `Team loaded: "Sprint 12"`)
	assert.Contains(t, res.stdout, "Roles assigned!")

	res = execute(t, "assign", "--from", "Sprint 12", "--json")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stdout, `"assignedRole": "Driver"`)

	res = execute(t, "config", "delete", id)
	require.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stdout, `Team deleted: "Sprint 12"`)

	res = execute(t, "config", "show", id)
	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stderr, "not found")
}

func TestConfigSaveCmd_Rejected(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		message string
	}{
		{"blank name", []string{"config", "save", "  ", "-p", "Alice", "-r", "Driver"}, "name is required"},
		{"empty team", []string{"config", "save", "Empty"}, "cannot save an empty team configuration"},
		{"no roles", []string{"config", "save", "Half", "-p", "Alice"}, "cannot save an empty team configuration"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setupEnv(t)
			res := execute(t, tt.args...)
			assert.Equal(t, 2, res.code)
			assert.Contains(t, res.stderr, tt.message)

			res = execute(t, "config", "list")
			assert.Contains(t, res.stdout, "No saved teams")
		})
	}
}

func TestServeCmd_Shutdown(t *testing.T) {
	setupEnv(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan int, 1)
	var stdout, stderr bytes.Buffer
	go func() {
		done <- run(ctx, []string{"serve", "--port", "0"}, &stdout, &stderr)
	}()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case code := <-done:
		assert.Equal(t, 0, code, stderr.String())
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not stop after cancel")
	}
}

func TestFindConfiguration(t *testing.T) {
	ctx := context.Background()
	blobs, err := afsblob.Open(ctx, afsblob.MemoryScheme+uuid.NewString())
	require.NoError(t, err)
	store, err := configstore.Open(ctx, blobs)
	require.NoError(t, err)
	defer store.Close()

	ps := []roster.Participant{roster.NewParticipant("Alice")}
	rs := []roster.Role{roster.NewRole("Driver")}
	older, err := store.Save(ctx, "Daily", ps, rs)
	require.NoError(t, err)
	newer, err := store.Save(ctx, "daily", ps, rs)
	require.NoError(t, err)

	got, err := findConfiguration(ctx, store, older.ID)
	require.NoError(t, err)
	assert.Equal(t, older.ID, got.ID)

	got, err = findConfiguration(ctx, store, " DAILY ")
	require.NoError(t, err)
	assert.Equal(t, newer.ID, got.ID)

	_, err = findConfiguration(ctx, store, "weekly")
	assert.ErrorIs(t, err, configstore.ErrNotFound)
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 2, exitCode(roster.ErrEmptyRoles))
	assert.Equal(t, 1, exitCode(configstore.ErrNotFound))
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		maxLen int
		want   string
	}{
		{"shorter than max", "hello", 10, "hello"},
		{"equal to max", "hello", 5, "hello"},
		{"longer than max", "hello world", 8, "hello..."},
		{"very short max", "hello", 3, "..."},
		{"multibyte", "héllo wörld", 8, "héllo..."},
		{"empty", "", 10, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, truncate(tt.input, tt.maxLen))
		})
	}
}
