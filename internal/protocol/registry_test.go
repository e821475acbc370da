package protocol_test

import (
	"context"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/robgonnella/fleetprobe/internal/exception"
	mock_protocol "github.com/robgonnella/fleetprobe/internal/mock/protocol"
	"github.com/robgonnella/fleetprobe/internal/protocol"
	"github.com/stretchr/testify/assert"
)

func TestRegistry(t *testing.T) {
	ctrl := gomock.NewController(t)

	defer ctrl.Finish()

	t.Run("dispatches by scheme", func(st *testing.T) {
		connector := mock_protocol.NewMockConnector(ctrl)
		session := mock_protocol.NewMockSession(ctrl)

		registry := protocol.NewRegistry()
		registry.Register("HTTPS", connector)

		req := protocol.Request{Address: "10.0.0.1", Port: 5989, Scheme: "https"}

		connector.EXPECT().Connect(gomock.Any(), req).Return(session, nil)

		got, err := registry.Connect(context.Background(), req)

		assert.NoError(st, err)
		assert.Equal(st, session, got)
	})

	t.Run("rejects unknown scheme", func(st *testing.T) {
		registry := protocol.NewRegistry()

		_, err := registry.Connect(context.Background(), protocol.Request{Scheme: "gopher"})

		assert.ErrorIs(st, err, exception.ErrUnsupportedScheme)
	})

	t.Run("default registry knows built-in schemes", func(st *testing.T) {
		registry := protocol.DefaultRegistry(protocol.WBEMOptions{})

		assert.Equal(
			st,
			[]string{"http", "https", "postgres", "redis", "snmp", "ssh"},
			registry.Schemes(),
		)
	})

	t.Run("guesses scheme from port", func(st *testing.T) {
		assert.Equal(st, "http", protocol.SchemeForPort(5988))
		assert.Equal(st, "https", protocol.SchemeForPort(5989))
		assert.Equal(st, "ssh", protocol.SchemeForPort(22))
		assert.Equal(st, "redis", protocol.SchemeForPort(6379))
		assert.Equal(st, "postgres", protocol.SchemeForPort(5432))
		assert.Equal(st, "snmp", protocol.SchemeForPort(161))
	})
}
