// Package slic implements the joint-domain (feature + physical-space)
// superpixel clustering engine: cluster initialization on a regular grid,
// low-gradient perturbation, iterative assign/update with per-cluster local
// search, and parallel reduction of per-thread partials under a
// barrier-synchronized worker pool.
package slic

// Config holds the run parameters for the clustering engine. A higher-level
// nested config (see pkg/config) embeds this alongside CLI-facing settings.
type Config struct {
	// SuperGridSize is the per-axis stride S between initial cluster
	// centers; it also sets the radius of each cluster's per-iteration
	// search window. Defaults to 50 along every axis.
	SuperGridSize []int `yaml:"superGridSize"`

	// MaxIterations is the fixed iteration budget T. A negative value
	// means "unset": it resolves to 10 when the input has at most 2 axes,
	// else 5. 0 is a distinct, explicit choice accepted by the engine (per
	// §7, not an error): it skips the update/reduce loop but still runs one
	// assignment pass against the perturbed initial centers, so the label
	// image is determined solely by initialization, never left zero-valued.
	MaxIterations int `yaml:"maxIterations"`

	// SpatialProximityWeight trades off feature similarity against
	// spatial proximity. Defaults to 10.
	SpatialProximityWeight float64 `yaml:"spatialProximityWeight"`

	// EnforceConnectivity enables the post-pass that relabels spatially
	// disconnected components.
	EnforceConnectivity bool `yaml:"enforceConnectivity"`

	// ConnectivityMinRatio sets the minimum component size, expressed as
	// a ratio of the super-grid cell volume. Defaults to 0.25.
	ConnectivityMinRatio float64 `yaml:"connectivityMinRatio"`

	// ConnectivityRelabelSequential, when true, performs connectivity
	// enforcement single-threaded in scan order, producing a dense
	// sequential label range [0,K). When false, workers may process
	// disjoint tiles concurrently with an atomic label counter, and the
	// resulting label values are not guaranteed to be scan-order stable.
	ConnectivityRelabelSequential bool `yaml:"connectivityRelabelSequential"`

	// LabelBits is the bit width of the output label type the caller
	// intends to store labels in (8, 16 or 32). The façade fails with a
	// capacity error before doing any work unless C is below the type's
	// maximum value, 2^LabelBits - 1. Defaults to 32.
	LabelBits int `yaml:"labelBits"`

	// NumWorkers is the width of the worker pool. 0 means "let the
	// façade choose" (runtime.NumCPU(), capped by the number of tiles the
	// output's slowest axis can produce).
	NumWorkers int `yaml:"numWorkers"`

	// LogResidual, when true, has the engine compute the cluster store's
	// convergence residual after every iteration's reduction and report it
	// through the caller's progress reporter if it implements
	// harness.ResidualReporter. Debug logging only; never affects when the
	// engine stops.
	LogResidual bool `yaml:"logResidual"`
}

// DefaultConfig returns the configuration defaults from §3: super-grid 50
// per axis (resized to match the input's dimensionality at Run time),
// MaxIterations depending on dimensionality, spatial weight 10, and
// connectivity enforcement off.
func DefaultConfig() Config {
	return Config{
		SuperGridSize:                 nil, // resolved against input dimensionality in Run
		MaxIterations:                 -1,  // resolved against input dimensionality in Run
		SpatialProximityWeight:        10,
		EnforceConnectivity:           false,
		ConnectivityMinRatio:          0.25,
		ConnectivityRelabelSequential: false,
		LabelBits:                     32,
		NumWorkers:                    0,
	}
}

// resolved returns a copy of cfg with dimensionality-dependent defaults
// filled in against an input of the given number of axes.
func (cfg Config) resolved(dims int) Config {
	out := cfg
	if out.SuperGridSize == nil {
		out.SuperGridSize = make([]int, dims)
		for i := range out.SuperGridSize {
			out.SuperGridSize[i] = 50
		}
	}
	if out.MaxIterations < 0 {
		if dims <= 2 {
			out.MaxIterations = 10
		} else {
			out.MaxIterations = 5
		}
	}
	if out.LabelBits == 0 {
		out.LabelBits = 32
	}
	return out
}
