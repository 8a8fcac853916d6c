package main

import (
	"errors"
	"testing"

	"github.com/golang-migrate/migrate/v4"
	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeMigrator records calls and returns the configured error from every operation
type fakeMigrator struct {
	err    error
	calls  []string
	closed int
}

func (f *fakeMigrator) Up() error {
	f.calls = append(f.calls, "up")
	return f.err
}

func (f *fakeMigrator) Steps(n int) error {
	f.calls = append(f.calls, "steps")
	return f.err
}

func (f *fakeMigrator) Migrate(version uint) error {
	f.calls = append(f.calls, "migrate")
	return f.err
}

func (f *fakeMigrator) Version() (uint, bool, error) {
	f.calls = append(f.calls, "version")
	return 3, false, f.err
}

func (f *fakeMigrator) Force(version int) error {
	f.calls = append(f.calls, "force")
	return f.err
}

func (f *fakeMigrator) Close() (error, error) {
	f.closed++
	return nil, nil
}

func useFakeMigrator(t *testing.T, fake *fakeMigrator) {
	t.Helper()

	prevMigrator, prevLogger := newMigrator, logger
	newMigrator = func() (migrator, error) { return fake, nil }
	logger = hclog.NewNullLogger()
	t.Cleanup(func() {
		newMigrator, logger = prevMigrator, prevLogger
	})
}

func TestCommands_CloseMigrator(t *testing.T) {
	failure := errors.New("dirty database")

	commands := []struct {
		name string
		run  func() error
		call string
	}{
		{name: "up", run: func() error { return runUp(upCmd, nil) }, call: "up"},
		{name: "down", run: func() error { return runDown(downCmd, []string{"2"}) }, call: "steps"},
		{name: "goto", run: func() error { return runGoto(gotoCmd, []string{"1"}) }, call: "migrate"},
		{name: "version", run: func() error { return runVersion(versionCmd, nil) }, call: "version"},
		{name: "force", run: func() error { return runForce(forceCmd, []string{"1"}) }, call: "force"},
	}

	for _, tc := range commands {
		t.Run(tc.name+" success", func(t *testing.T) {
			fake := &fakeMigrator{}
			useFakeMigrator(t, fake)

			require.NoError(t, tc.run())
			assert.Equal(t, []string{tc.call}, fake.calls)
			assert.Equal(t, 1, fake.closed)
		})

		t.Run(tc.name+" failure", func(t *testing.T) {
			fake := &fakeMigrator{err: failure}
			useFakeMigrator(t, fake)

			err := tc.run()
			require.Error(t, err)
			assert.ErrorIs(t, err, failure)
			assert.Equal(t, 1, fake.closed, "migrator must be closed when the command fails")
		})
	}
}

func TestCommands_NoChangeIsNotAnError(t *testing.T) {
	fake := &fakeMigrator{err: migrate.ErrNoChange}
	useFakeMigrator(t, fake)

	assert.NoError(t, runUp(upCmd, nil))
	assert.NoError(t, runDown(downCmd, nil))
	assert.NoError(t, runGoto(gotoCmd, []string{"1"}))
	assert.Equal(t, 3, fake.closed)
}

func TestCommands_NilVersion(t *testing.T) {
	fake := &fakeMigrator{err: migrate.ErrNilVersion}
	useFakeMigrator(t, fake)

	assert.NoError(t, runVersion(versionCmd, nil))
	assert.Equal(t, 1, fake.closed)
}

func TestCommands_InvalidVersion(t *testing.T) {
	tests := []struct {
		name string
		run  func() error
	}{
		{name: "goto not a number", run: func() error { return runGoto(gotoCmd, []string{"abc"}) }},
		{name: "goto negative", run: func() error { return runGoto(gotoCmd, []string{"-1"}) }},
		{name: "down not a number", run: func() error { return runDown(downCmd, []string{"x"}) }},
		{name: "force not a number", run: func() error { return runForce(forceCmd, []string{"v2"}) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeMigrator{}
			useFakeMigrator(t, fake)

			assert.Error(t, tt.run())
			assert.Empty(t, fake.calls, "no migration should run on invalid input")
			assert.Equal(t, 0, fake.closed)
		})
	}
}
