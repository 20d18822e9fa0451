package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/hexsheet/internal/config"
	"github.com/cory-johannsen/hexsheet/internal/game/rest"
	"github.com/cory-johannsen/hexsheet/internal/httpapi"
	"github.com/cory-johannsen/hexsheet/internal/storage/memory"
	"github.com/cory-johannsen/hexsheet/internal/storage/postgres"
	"github.com/cory-johannsen/hexsheet/internal/storage/redisstore"
)

var (
	_ httpapi.Repository = (*memory.Store)(nil)
	_ httpapi.Repository = (*postgres.Store)(nil)
	_ httpapi.Repository = (*redisstore.Store)(nil)
)

func TestRulesFromConfig(t *testing.T) {
	rules := rulesFromConfig(config.RestConfig{
		Short: config.RecoveryConfig{APPercent: 50, MPPercent: 50, HEXPercent: 25},
		Long:  config.RecoveryConfig{APPercent: 100, MPPercent: 100, HEXPercent: 100},
	})
	assert.Equal(t, rest.DefaultRules(), rules)
}

func TestOpenBackend_Memory(t *testing.T) {
	be, err := openBackend(context.Background(), config.Config{Server: config.ServerConfig{Storage: config.StorageMemory}})
	require.NoError(t, err)
	assert.IsType(t, &memory.Store{}, be.repo)
	assert.Nil(t, be.health)
	assert.NoError(t, be.close())
}
