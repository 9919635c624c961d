package algorithm

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/pelago/pelago/pkg/framework"
)

// The registry maps UDA names to factories so that wrapped algorithms can be
// restored from their serialized form. pkg/algorithms registers the built-ins
// from init.
var (
	regMu    sync.RWMutex
	registry = map[string]func() UDA{}
)

// Register associates a UDA name with a factory returning a zero-value
// instance to decode into. Registering the same name twice panics.
func Register(name string, factory func() UDA) {
	regMu.Lock()
	defer regMu.Unlock()
	if _, dup := registry[name]; dup {
		panic(fmt.Sprintf("algorithm: Register called twice for %q", name))
	}
	registry[name] = factory
}

func decodeUDA(name string, params json.RawMessage) (UDA, error) {
	regMu.RLock()
	factory, ok := registry[name]
	regMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: no algorithm registered under %q", framework.ErrInvalidArgument, name)
	}
	uda := factory()
	if len(params) > 0 {
		if err := json.Unmarshal(params, uda); err != nil {
			return nil, fmt.Errorf("decoding algorithm %q: %w", name, err)
		}
	}
	return uda, nil
}

func mustMarshal(v any) json.RawMessage {
	raw, err := json.Marshal(v)
	if err != nil {
		panic(fmt.Sprintf("algorithm: marshaling %T: %v", v, err))
	}
	return raw
}

type algorithmJSON struct {
	UDA    string          `json:"uda"`
	Params json.RawMessage `json:"params,omitempty"`
}

// MarshalJSON encodes the UDA name and its parameters.
func (a *Algorithm) MarshalJSON() ([]byte, error) {
	return json.Marshal(algorithmJSON{
		UDA:    a.uda.Name(),
		Params: mustMarshal(a.uda),
	})
}

// UnmarshalJSON restores an algorithm through the registry.
func (a *Algorithm) UnmarshalJSON(data []byte) error {
	var aj algorithmJSON
	if err := json.Unmarshal(data, &aj); err != nil {
		return err
	}
	uda, err := decodeUDA(aj.UDA, aj.Params)
	if err != nil {
		return err
	}
	a.uda = uda
	return nil
}
