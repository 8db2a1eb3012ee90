package migrate

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMigrator struct {
	name string
	err  error
	log  *[]string
}

func (f *fakeMigrator) Name() string { return f.name }

func (f *fakeMigrator) Migrate(context.Context) error {
	*f.log = append(*f.log, f.name)
	return f.err
}

func TestRunAllExecutesInRegisteredOrder(t *testing.T) {
	var ran []string
	Register(2, &fakeMigrator{name: "second", log: &ran})
	Register(1, &fakeMigrator{name: "first", log: &ran})

	require.NoError(t, RunAll(context.Background()))
	assert.Equal(t, []string{"first", "second"}, ran)
}

func TestRunAllStopsAtFirstFailure(t *testing.T) {
	var ran []string
	boom := errors.New("boom")
	Register(10, &fakeMigrator{name: "broken", err: boom, log: &ran})
	Register(11, &fakeMigrator{name: "after", log: &ran})

	err := RunAll(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "broken")
	assert.NotContains(t, ran, "after")
}
