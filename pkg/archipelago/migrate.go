package archipelago

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"k8s.io/klog/v2"

	"github.com/pelago/pelago/pkg/population"
)

// Migrate performs one ring migration step: the champion of island i replaces
// the worst individual of island (i+1) mod n. Champions are snapshotted
// before any replacement, so one step never propagates an individual across
// more than one edge. Defined for single-objective unconstrained problems
// with non-empty populations.
func (a *Archipelago) Migrate() error {
	islands := a.snapshot()
	if len(islands) < 2 {
		return nil
	}

	champions := make([]population.Individual, len(islands))
	for i, isl := range islands {
		champ, err := isl.Population().Champion()
		if err != nil {
			return fmt.Errorf("archipelago: migrate: island %d: %w", i, err)
		}
		champions[i] = champ
	}

	for i := range islands {
		dstIdx := (i + 1) % len(islands)
		dst := islands[dstIdx].Population()
		f0 := make([]float64, dst.Size())
		for k := range f0 {
			f0[k] = dst.F(k)[0]
		}
		worst := floats.MaxIdx(f0)
		if champions[i].F[0] >= f0[worst] {
			continue
		}
		if err := dst.SetXF(worst, champions[i].X, champions[i].F); err != nil {
			return fmt.Errorf("archipelago: migrate: island %d: %w", dstIdx, err)
		}
		islands[dstIdx].SetPopulation(dst)
		klog.V(5).InfoS("migrated champion", "from", i, "to", dstIdx, "fitness", champions[i].F[0])
	}
	return nil
}
