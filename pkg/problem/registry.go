package problem

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/pelago/pelago/pkg/framework"
)

// The registry maps UDP names to factories so that wrapped problems can be
// restored from their serialized form. It is populated explicitly from
// package init functions (pkg/problems registers the built-ins); there is no
// implicit load-time merging.
var (
	regMu    sync.RWMutex
	registry = map[string]func() UDP{}
)

// Register associates a UDP name with a factory returning a zero-value
// instance to decode into. Registering the same name twice is a programmer
// error and panics.
func Register(name string, factory func() UDP) {
	regMu.Lock()
	defer regMu.Unlock()
	if _, dup := registry[name]; dup {
		panic(fmt.Sprintf("problem: Register called twice for %q", name))
	}
	registry[name] = factory
}

func decodeUDP(name string, params json.RawMessage) (UDP, error) {
	regMu.RLock()
	factory, ok := registry[name]
	regMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: no problem registered under %q", framework.ErrInvalidArgument, name)
	}
	udp := factory()
	if len(params) > 0 {
		if err := json.Unmarshal(params, udp); err != nil {
			return nil, fmt.Errorf("decoding problem %q: %w", name, err)
		}
	}
	return udp, nil
}

func mustMarshal(v any) json.RawMessage {
	raw, err := json.Marshal(v)
	if err != nil {
		// UDPs are plain parameter structs; a marshal failure is a defect.
		panic(fmt.Sprintf("problem: marshaling %T: %v", v, err))
	}
	return raw
}

type problemJSON struct {
	UDP    string          `json:"udp"`
	Params json.RawMessage `json:"params,omitempty"`
	Fevals uint64          `json:"fevals"`
	Gevals uint64          `json:"gevals"`
	Hevals uint64          `json:"hevals"`
}

// MarshalJSON encodes the UDP name, its parameters and the counters.
func (p *Problem) MarshalJSON() ([]byte, error) {
	return json.Marshal(problemJSON{
		UDP:    tagOf(p.udp),
		Params: mustMarshal(p.udp),
		Fevals: p.fevals.Load(),
		Gevals: p.gevals.Load(),
		Hevals: p.hevals.Load(),
	})
}

// UnmarshalJSON restores a problem through the registry.
func (p *Problem) UnmarshalJSON(data []byte) error {
	var pj problemJSON
	if err := json.Unmarshal(data, &pj); err != nil {
		return err
	}
	udp, err := decodeUDP(pj.UDP, pj.Params)
	if err != nil {
		return err
	}
	np, err := New(udp)
	if err != nil {
		return err
	}
	p.udp = np.udp
	p.dim = np.dim
	p.lb, p.ub = np.lb, np.ub
	p.nobj, p.nec, p.nic = np.nobj, np.nec, np.nic
	p.fevals.Store(pj.Fevals)
	p.gevals.Store(pj.Gevals)
	p.hevals.Store(pj.Hevals)
	return nil
}
