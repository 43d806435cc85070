package cmd

import (
	"context"
	"testing"

	"github.com/go-redis/redis/v8"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackendCloseReleasesRedis(t *testing.T) {
	// neither handle dials until first use
	db, err := sqlx.Open("postgres", "postgres://modctl@127.0.0.1:1/none?sslmode=disable")
	require.NoError(t, err)
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})

	b := &backend{db: db, redis: client}
	require.NoError(t, b.Close())

	assert.ErrorContains(t, client.Ping(context.Background()).Err(), "client is closed")
	assert.ErrorContains(t, db.Ping(), "database is closed")
}

func TestBackendCloseWithoutRedis(t *testing.T) {
	db, err := sqlx.Open("postgres", "postgres://modctl@127.0.0.1:1/none?sslmode=disable")
	require.NoError(t, err)

	b := &backend{db: db}
	require.NoError(t, b.Close())
	assert.ErrorContains(t, db.Ping(), "database is closed")
}
