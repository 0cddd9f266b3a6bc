package pubsub

import (
	"context"
	"encoding/json"
)

// Pack is one message. Messages sharing a Key land on the same partition and stay ordered,
// so events of one payout request are keyed by its id.
type Pack struct {
	Key []byte
	Msg []byte
}

// NewJSONPack encodes v as the message body.
func NewJSONPack(key string, v any) (*Pack, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}

	return &Pack{Key: []byte(key), Msg: b}, nil
}

// Publisher delivers packs to a topic. Publishing happens after the database commit, so a
// failed delivery never undoes the write it announces.
type Publisher interface {
	Publish(ctx context.Context, topic string, pack *Pack) error
}
