// Package rpc defines the melodia.v1 Connect services: message types,
// procedure names, handler constructors and clients.
package rpc

import (
	"encoding/json"

	"connectrpc.com/connect"
	"github.com/cockroachdb/errors"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
)

// CodecName is the codec name used in Content-Type negotiation.
const CodecName = "json"

// jsonCodec marshals protobuf messages with protojson and plain Go structs
// with encoding/json.
type jsonCodec struct{}

var _ connect.Codec = jsonCodec{}

// Codec returns the JSON codec shared by handlers and clients.
func Codec() connect.Codec {
	return jsonCodec{}
}

func (jsonCodec) Name() string {
	return CodecName
}

func (jsonCodec) Marshal(message any) ([]byte, error) {
	if m, ok := message.(proto.Message); ok {
		return protojson.MarshalOptions{EmitUnpopulated: false}.Marshal(m)
	}
	data, err := json.Marshal(message)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal message")
	}
	return data, nil
}

func (jsonCodec) Unmarshal(data []byte, message any) error {
	if m, ok := message.(proto.Message); ok {
		if len(data) == 0 {
			return nil
		}
		return protojson.UnmarshalOptions{DiscardUnknown: true}.Unmarshal(data, m)
	}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, message); err != nil {
		return errors.Wrap(err, "failed to unmarshal message")
	}
	return nil
}
