package pubsub

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
)

func TestProcessMessage(t *testing.T) {
	c := &client{}

	type payload struct {
		ID    string
		Count int
	}
	data, err := msgpack.Marshal(payload{ID: "m1", Count: 3})
	require.NoError(t, err)

	var got payload
	require.NoError(t, c.ProcessMessage(data, &got))
	assert.Equal(t, payload{ID: "m1", Count: 3}, got)

	t.Run("invalid payload", func(t *testing.T) {
		// 0xc1 is the one byte MessagePack never uses.
		var got payload
		assert.Error(t, c.ProcessMessage([]byte{0xc1}, &got))
	})
}
