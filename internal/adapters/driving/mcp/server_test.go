package mcp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docthemes/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/docthemes/internal/core/services"
)

func TestNewServer(t *testing.T) {
	t.Run("nil session service returns error", func(t *testing.T) {
		ports := &Ports{}
		server, err := NewServer(ports)
		require.Error(t, err)
		assert.Nil(t, server)
		assert.ErrorIs(t, err, ErrMissingSessionService)
	})

	t.Run("valid ports creates server", func(t *testing.T) {
		ports := &Ports{
			Session: services.NewSession(&stubAnswering{}, memory.NewSnapshotStore(), ""),
		}
		server, err := NewServer(ports)
		require.NoError(t, err)
		assert.NotNil(t, server)
	})
}

func TestPorts_Validate(t *testing.T) {
	t.Run("nil session service returns error", func(t *testing.T) {
		ports := &Ports{}
		err := ports.Validate()
		assert.ErrorIs(t, err, ErrMissingSessionService)
	})

	t.Run("session only is valid", func(t *testing.T) {
		ports := &Ports{
			Session: services.NewSession(&stubAnswering{}, memory.NewSnapshotStore(), ""),
		}
		assert.NoError(t, ports.Validate())
	})
}
