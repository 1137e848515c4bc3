package persistence

import (
	"bytes"
	"encoding/gob"

	"github.com/petrijr/flume/pkg/api"
)

func init() {
	gob.Register(api.MapEvent{})
}

// EncodeEvents serializes an event log using encoding/gob. Callers using a
// custom Event implementation must gob.Register it.
func EncodeEvents(events []api.Event) ([]byte, error) {
	if len(events) == 0 {
		return nil, nil
	}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(events); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeEvents deserializes an event log produced by EncodeEvents.
func DecodeEvents(data []byte) ([]api.Event, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var events []api.Event
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&events); err != nil {
		return nil, err
	}
	return events, nil
}
