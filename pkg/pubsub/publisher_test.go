package pubsub

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewJSONPack(t *testing.T) {
	pack, err := NewJSONPack("payout1", map[string]string{"status": "pending"})
	require.NoError(t, err)
	require.Equal(t, "payout1", string(pack.Key))
	require.JSONEq(t, `{"status":"pending"}`, string(pack.Msg))

	_, err = NewJSONPack("payout1", make(chan int))
	require.Error(t, err)
}
