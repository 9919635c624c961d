// Command pelago runs an archipelago of islands over a benchmark problem and
// reports the outcome: the overall champion for single-objective runs, the
// merged front's hypervolume for multi-objective runs.
package main

import (
	goflag "flag"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"k8s.io/klog/v2"

	"github.com/pelago/pelago/pkg/algorithm"
	"github.com/pelago/pelago/pkg/algorithms"
	"github.com/pelago/pelago/pkg/archipelago"
	"github.com/pelago/pelago/pkg/framework"
	"github.com/pelago/pelago/pkg/hypervolume"
	"github.com/pelago/pelago/pkg/problem"
	"github.com/pelago/pelago/pkg/problems"
	"github.com/pelago/pelago/pkg/util"
)

func main() {
	var (
		problemName   = pflag.String("problem", "rosenbrock", "benchmark problem: rosenbrock, schwefel, sphere, zdt1, dtlz1, dtlz2")
		algorithmName = pflag.String("algorithm", "de", "algorithm: de, pso, nsga2")
		dim           = pflag.Int("dim", 10, "decision vector dimension")
		nobj          = pflag.Int("objectives", 2, "objective count (dtlz problems only)")
		islands       = pflag.Int("islands", 4, "number of islands")
		popSize       = pflag.Int("pop-size", 40, "population size per island")
		gens          = pflag.Int("generations", 100, "generations per evolve task")
		rounds        = pflag.Int("rounds", 5, "evolve/migrate rounds")
		seed          = pflag.Uint64("seed", 0, "master seed, 0 picks a random one")
		verbosity     = pflag.Int("algo-verbosity", 0, "algorithm log interval in generations, 0 disables")
		plotPath      = pflag.String("plot", "", "write a scatter plot of the final front to this HTML file")
	)
	klog.InitFlags(nil)
	pflag.CommandLine.AddGoFlagSet(goflag.CommandLine)
	pflag.Parse()

	if err := run(*problemName, *algorithmName, *dim, *nobj, *islands, *popSize, *gens, *rounds, *seed, *verbosity, *plotPath); err != nil {
		klog.ErrorS(err, "run failed")
		os.Exit(1)
	}
}

func run(problemName, algorithmName string, dim, nobj, islands, popSize, gens, rounds int, seed uint64, verbosity int, plotPath string) error {
	prob, err := buildProblem(problemName, dim, nobj)
	if err != nil {
		return err
	}
	algo, err := buildAlgorithm(algorithmName, gens, seed)
	if err != nil {
		return err
	}
	if verbosity > 0 && algo.HasSetVerbosity() {
		if err := algo.SetVerbosity(verbosity); err != nil {
			return err
		}
	}

	var archi *archipelago.Archipelago
	if seed != 0 {
		archi, err = archipelago.NewTemplateSeeded(islands, algo, prob, popSize, seed)
	} else {
		archi, err = archipelago.NewTemplate(islands, algo, prob, popSize)
	}
	if err != nil {
		return err
	}

	singleObjective := prob.NObj() == 1
	for r := 0; r < rounds; r++ {
		archi.Evolve(1)
		if err := archi.Get(); err != nil {
			return err
		}
		if singleObjective && islands > 1 {
			if err := archi.Migrate(); err != nil {
				return err
			}
		}
		klog.V(2).InfoS("round finished", "round", r+1, "of", rounds)
	}

	if singleObjective {
		return reportChampion(archi)
	}
	return reportFront(archi, prob, algo.Name(), plotPath)
}

func reportChampion(archi *archipelago.Archipelago) error {
	var best *float64
	var bestX []float64
	for i := 0; i < archi.Size(); i++ {
		isl, err := archi.At(i)
		if err != nil {
			return err
		}
		champ, err := isl.Population().Champion()
		if err != nil {
			return err
		}
		if best == nil || champ.F[0] < *best {
			f := champ.F[0]
			best, bestX = &f, champ.X
		}
	}
	fmt.Printf("Champion fitness: %g\n", *best)
	fmt.Printf("Champion decision vector: %v\n", bestX)
	return nil
}

func reportFront(archi *archipelago.Archipelago, prob *problem.Problem, algoName, plotPath string) error {
	var merged [][]float64
	for i := 0; i < archi.Size(); i++ {
		isl, err := archi.At(i)
		if err != nil {
			return err
		}
		merged = append(merged, isl.Population().Front()...)
	}

	// Keep only the non-dominated points of the merged fronts.
	fronts := framework.NonDominatedSort(merged)
	front := make([][]float64, 0, len(fronts[0]))
	for _, idx := range fronts[0] {
		front = append(front, merged[idx])
	}

	hv, err := hypervolume.New(front)
	if err != nil {
		return err
	}
	vol, err := hv.Compute(hv.RefPoint(1.0))
	if err != nil {
		return err
	}
	fmt.Printf("Non-dominated front size: %d\n", len(front))
	fmt.Printf("Hypervolume (reference offset 1.0): %g\n", vol)

	if plotPath == "" {
		return nil
	}
	var trueFront [][]float64
	if tf, ok := prob.UDP().(problems.TrueFronter); ok {
		trueFront = tf.TrueParetoFront(100)
	}
	return util.PlotFront(front, trueFront, prob.Name(), algoName, plotPath)
}

func buildProblem(name string, dim, nobj int) (*problem.Problem, error) {
	var (
		udp problem.UDP
		err error
	)
	switch strings.ToLower(name) {
	case "rosenbrock":
		udp, err = problems.NewRosenbrock(dim)
	case "schwefel":
		udp, err = problems.NewSchwefel(dim)
	case "sphere":
		udp, err = problems.NewSphere(dim)
	case "zdt1":
		udp, err = problems.NewZDT1(dim)
	case "dtlz1":
		udp, err = problems.NewDTLZ1(dim, nobj)
	case "dtlz2":
		udp, err = problems.NewDTLZ2(dim, nobj)
	default:
		return nil, fmt.Errorf("%w: unknown problem %q", framework.ErrInvalidArgument, name)
	}
	if err != nil {
		return nil, err
	}
	return problem.New(udp)
}

func buildAlgorithm(name string, gens int, seed uint64) (*algorithm.Algorithm, error) {
	if seed == 0 {
		seed = 42
	}
	var uda algorithm.UDA
	switch strings.ToLower(name) {
	case "de":
		uda = algorithms.NewDE(gens, seed)
	case "pso":
		uda = algorithms.NewPSO(gens, seed)
	case "nsga2", "nsga-ii":
		uda = algorithms.NewNSGAII(gens, seed)
	default:
		return nil, fmt.Errorf("%w: unknown algorithm %q", framework.ErrInvalidArgument, name)
	}
	return algorithm.New(uda)
}
