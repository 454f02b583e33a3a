package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sqlh/sqlh"
	"github.com/sqlh/sqlh/databases"
)

func TestRunDatabases(t *testing.T) {
	var out bytes.Buffer
	logger := zerolog.Nop()

	err := runDatabases(context.Background(), &out, &logger, databases.Config{
		DefaultURL: "sqlite::memory:",
		Secondary: map[string]string{
			"cache":  "sqlite::memory:",
			"broken": "oracle://host/db",
			"gtra":   "mysql://tw@127.0.0.1:1/gtra?timeout=1s",
		},
	}, databasesOptions{defaultMaxConns: 2, secondaryMaxConns: 1})
	require.NoError(t, err)

	assert.Equal(t, ""+
		"CODE     KIND    STATUS\n"+
		"default  sqlite  ok\n"+
		"broken   -       unavailable\n"+
		"cache    sqlite  ok\n"+
		"gtra     mysql   unavailable\n",
		out.String(),
	)
}

func TestRunDatabases_Empty(t *testing.T) {
	var out bytes.Buffer
	logger := zerolog.Nop()

	err := runDatabases(context.Background(), &out, &logger, databases.Config{}, databasesOptions{})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "No databases configured")
}

func TestRunDatabases_DefaultFailure(t *testing.T) {
	var out bytes.Buffer
	logger := zerolog.Nop()

	err := runDatabases(context.Background(), &out, &logger, databases.Config{
		DefaultURL: "oracle://host/db",
	}, databasesOptions{})
	require.Error(t, err)
	assert.ErrorIs(t, err, sqlh.ErrUnsupportedDatabase)
	assert.Empty(t, out.String())
}

func TestDatabasesCommand(t *testing.T) {
	t.Setenv("DATABASE_URL", "sqlite::memory:")

	out, err := execute(t, "databases")
	require.NoError(t, err)
	assert.Contains(t, out, "default")
	assert.Contains(t, out, "ok")
}
