package jobboard

import (
	"encoding/json"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// Codec serializes job records for key-value backends.
type Codec interface {
	// Encode serializes a record to bytes.
	Encode(rec *JobRecord) ([]byte, error)

	// Decode deserializes bytes into a record.
	Decode(data []byte) (*JobRecord, error)

	// Name returns the codec identifier ("json" or "msgpack").
	Name() string
}

// Codec names accepted by GetCodec and JOBBOARD_RECORD_CODEC.
const (
	CodecNameJSON    = "json"
	CodecNameMsgpack = "msgpack"
)

// GetCodec returns a codec by name. An empty name means JSON.
func GetCodec(name string) (Codec, error) {
	switch name {
	case CodecNameJSON, "":
		return &JSONCodec{}, nil
	case CodecNameMsgpack:
		return &MsgpackCodec{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCodec, name)
	}
}

// JSONCodec encodes records as JSON.
type JSONCodec struct{}

func (c *JSONCodec) Encode(rec *JobRecord) ([]byte, error) {
	return json.Marshal(rec)
}

func (c *JSONCodec) Decode(data []byte) (*JobRecord, error) {
	var rec JobRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (c *JSONCodec) Name() string { return CodecNameJSON }

// MsgpackCodec encodes records as MessagePack.
type MsgpackCodec struct{}

func (c *MsgpackCodec) Encode(rec *JobRecord) ([]byte, error) {
	return msgpack.Marshal(rec)
}

func (c *MsgpackCodec) Decode(data []byte) (*JobRecord, error) {
	var rec JobRecord
	if err := msgpack.Unmarshal(data, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (c *MsgpackCodec) Name() string { return CodecNameMsgpack }
