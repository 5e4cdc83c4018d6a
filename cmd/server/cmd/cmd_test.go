package cmd

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/ahmetcoskunkizilkaya/crud-backend/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/crud-backend/internal/services/servicestest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	root := newRootCommand()
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.Execute()
	return buf.String(), err
}

func stubPasswords(t *testing.T, answers ...string) {
	t.Helper()
	orig := readPassword
	t.Cleanup(func() { readPassword = orig })
	readPassword = func() ([]byte, error) {
		if len(answers) == 0 {
			return nil, errors.New("no more input")
		}
		next := answers[0]
		answers = answers[1:]
		return []byte(next), nil
	}
}

func TestVersionCommand(t *testing.T) {
	origVersion, origCommit := Version, GitCommit
	defer func() { Version, GitCommit = origVersion, origCommit }()
	Version, GitCommit = "1.2.3", "abc123"

	out, err := execute(t, "", "version")
	require.NoError(t, err)
	assert.Contains(t, out, "Version:    1.2.3")
	assert.Contains(t, out, "Git commit: abc123")
	assert.Contains(t, out, "Go version:")
}

func TestCommandTree(t *testing.T) {
	root := newRootCommand()
	for _, path := range [][]string{
		{"serve"},
		{"version"},
		{"users", "create-user"},
		{"users", "promote-to-superuser"},
		{"database", "upgrade"},
		{"database", "reset"},
		{"database", "purge"},
		{"database", "show-revision"},
	} {
		found, _, err := root.Find(path)
		require.NoError(t, err, path)
		assert.Equal(t, path[len(path)-1], found.Name())
	}

	reset, _, err := root.Find([]string{"database", "reset"})
	require.NoError(t, err)
	assert.NotNil(t, reset.Flags().Lookup("no-prompt"))
	assert.NotNil(t, root.Flags().Lookup("port"))
}

func TestDestructiveCommandAbortsWithoutYes(t *testing.T) {
	out, err := execute(t, "n\n", "database", "purge", "--env-file", "")
	require.NoError(t, err)
	assert.Contains(t, out, "Are you sure you want to purge the database?")
	assert.Contains(t, out, "Aborted")
}

func TestConfirm(t *testing.T) {
	for input, want := range map[string]bool{"y\n": true, "YES\n": true, "n\n": false, "\n": false, "": false} {
		var out bytes.Buffer
		got, err := newPrompter(strings.NewReader(input), &out).confirm("Proceed?")
		require.NoError(t, err)
		assert.Equal(t, want, got, "input %q", input)
	}
}

func TestNewUserPromptsForMissingValues(t *testing.T) {
	stubPasswords(t, "password123", "password123")
	var out bytes.Buffer
	in := newUser{superuser: true}

	require.NoError(t, in.complete(newPrompter(strings.NewReader("ann@example.com\nAnn\n"), &out)))
	assert.Equal(t, "ann@example.com", in.email)
	assert.Equal(t, "Ann", in.name)
	assert.Equal(t, "password123", in.password)
	assert.Contains(t, out.String(), "Repeat for confirmation")
}

func TestNewUserPasswordMismatch(t *testing.T) {
	stubPasswords(t, "password123", "password124")
	in := newUser{email: "ann@example.com", name: "Ann"}

	err := in.complete(newPrompter(strings.NewReader(""), new(bytes.Buffer)))
	assert.EqualError(t, err, "passwords do not match")
}

func TestCreateUser(t *testing.T) {
	users := servicestest.NewStores().Set().Users
	ctx := context.Background()

	u, err := createUser(ctx, users, newUser{email: "root@example.com", name: "Root", password: "password123", superuser: true})
	require.NoError(t, err)
	assert.True(t, u.IsSuperuser)
	assert.True(t, u.IsActive)
	require.NotNil(t, u.Name)
	assert.Equal(t, "Root", *u.Name)

	_, err = createUser(ctx, users, newUser{email: "root@example.com", password: "password123"})
	assert.True(t, errors.Is(err, apperr.ErrConflict))

	_, err = createUser(ctx, users, newUser{email: "nope", password: "short"})
	assert.True(t, errors.Is(err, apperr.ErrValidation))
}
