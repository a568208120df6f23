package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"image/jpeg"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"slicseg/pkg/config"
	"slicseg/pkg/ndimage"
	"slicseg/pkg/render"
	"slicseg/pkg/slic"
)

// cliReporter prints progress to stdout and, when the engine has
// LogResidual enabled, the per-iteration convergence residual. It
// implements harness.ProgressReporter and harness.ResidualReporter by
// structural typing; pkg/slic never imports this package.
type cliReporter struct{}

func (cliReporter) Report(fraction float64) {
	fmt.Printf("\rClustering: %.1f%% complete", fraction*100)
}

func (cliReporter) ReportResidual(iteration int, residual float64) {
	fmt.Printf("\n  iteration %d residual: %.6f", iteration, residual)
}

func main() {
	inputDir := flag.String("input", "", "Directory containing grayscale JPEG slices; if empty, a synthetic test volume is generated")
	configPath := flag.String("config", "", "Path to a YAML config file; if empty, defaults are used")
	superGrid := flag.Int("super-grid", 0, "Super-grid size per axis (0 keeps the config/default value)")
	maxIterations := flag.Int("iterations", -1, "Iteration budget (-1 keeps the config/default value)")
	enforceConnectivity := flag.Bool("connectivity", false, "Enforce label connectivity after clustering")
	logResidual := flag.Bool("log-residual", false, "Print the cluster store's convergence residual after every iteration")
	slicesDir := flag.String("slices-dir", "", "Directory to save color-coded label slices (overrides output.labelSlicesDir); rendering is off when neither is set")
	synWidth := flag.Int("syn-width", 128, "Width of the synthetic volume when -input is empty")
	synHeight := flag.Int("syn-height", 128, "Height of the synthetic volume when -input is empty")
	synDepth := flag.Int("syn-depth", 1, "Depth of the synthetic volume when -input is empty (1 produces a 2-D image)")
	flag.Parse()

	fmt.Println("================================")
	fmt.Println("JOINT-DOMAIN SUPERPIXEL SEGMENTATION")
	fmt.Println("================================")

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if *enforceConnectivity {
		cfg.Engine.EnforceConnectivity = true
	}
	if *maxIterations >= 0 {
		cfg.Engine.MaxIterations = *maxIterations
	}
	if *logResidual {
		cfg.Engine.LogResidual = true
	}

	var input *ndimage.Image
	if *inputDir != "" {
		input, err = loadVolume(*inputDir)
		if err != nil {
			log.Fatalf("failed to load input: %v", err)
		}
	} else {
		input = syntheticVolume(*synWidth, *synHeight, *synDepth)
		fmt.Printf("Generated synthetic volume %dx%dx%d\n", *synWidth, *synHeight, *synDepth)
	}

	if *superGrid > 0 {
		grid := make([]int, input.Dim())
		for i := range grid {
			grid[i] = *superGrid
		}
		cfg.Engine.SuperGridSize = grid
	}

	if cfg.Engine.NumWorkers <= 0 {
		cfg.Engine.NumWorkers = cfg.Runtime.NumCores
	}

	filter := slic.NewFilter(cfg.Engine).WithProgress(cliReporter{})

	fmt.Println("Starting joint-domain clustering...")
	start := time.Now()
	labels, diag, err := filter.Run(context.Background(), input)
	fmt.Println()
	if err != nil {
		log.Fatalf("clustering failed: %v", err)
	}
	elapsed := time.Since(start)

	fmt.Printf("\nCompleted in %.2f seconds\n", elapsed.Seconds())
	fmt.Printf("Clusters requested: %d\n", diag.ClusterCount)
	fmt.Printf("Iterations run: %d\n", diag.IterationsRun)
	fmt.Printf("Workers used: %d\n", diag.WorkersUsed)
	if cfg.Engine.EnforceConnectivity {
		fmt.Printf("Connected components after enforcement: %d\n", diag.ConnectivityComponents)
	}

	outDir := *slicesDir
	if outDir == "" {
		outDir = cfg.Output.LabelSlicesDir
	}
	if outDir != "" {
		fmt.Printf("\nRendering label slices to: %s\n", outDir)
		viewer, err := render.NewViewer(labels)
		if err != nil {
			log.Printf("warning: could not render label slices: %v", err)
		} else if err := viewer.SaveSliceSequence(2, outDir); err != nil {
			log.Printf("warning: failed to save label slices: %v", err)
		}
	}
}

// loadVolume reads every grayscale JPEG in dir, sorted by the numeric part
// of its filename, and stacks them into a 3-D single-component image. A
// directory containing exactly one file produces a 2-D image.
func loadVolume(dir string) (*ndimage.Image, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var names []string
	for _, e := range entries {
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if ext == ".jpg" || ext == ".jpeg" {
			names = append(names, e.Name())
		}
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("no JPEG images found in %s", dir)
	}

	sort.Slice(names, func(i, j int) bool {
		return extractNumber(names[i]) < extractNumber(names[j])
	})

	var width, height int
	var slices []*image.Gray

	for _, name := range names {
		img, err := loadGray(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("failed to load image %s: %w", name, err)
		}
		bounds := img.Bounds()
		if len(slices) == 0 {
			width, height = bounds.Dx(), bounds.Dy()
		} else if bounds.Dx() != width || bounds.Dy() != height {
			return nil, fmt.Errorf("slice %s has dimensions %dx%d, expected %dx%d", name, bounds.Dx(), bounds.Dy(), width, height)
		}
		slices = append(slices, img)
	}

	fmt.Printf("Loaded %d slices with dimensions %dx%d\n", len(slices), width, height)

	if len(slices) == 1 {
		out := ndimage.NewImage([]int{width, height}, 1)
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				out.Set(ndimage.Index{x, y}, []float64{float64(slices[0].GrayAt(x, y).Y) / 255})
			}
		}
		return out, nil
	}

	out := ndimage.NewImage([]int{width, height, len(slices)}, 1)
	for z, img := range slices {
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				out.Set(ndimage.Index{x, y, z}, []float64{float64(img.GrayAt(x, y).Y) / 255})
			}
		}
	}
	return out, nil
}

func loadGray(path string) (*image.Gray, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	img, err := jpeg.Decode(file)
	if err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	gray := image.NewGray(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			gray.Set(x, y, img.At(x, y))
		}
	}
	return gray, nil
}

// extractNumber pulls the digits out of a filename for numeric slice
// ordering; non-numeric filenames all sort to 0.
func extractNumber(filename string) int {
	base := filepath.Base(filename)
	var digits strings.Builder
	for _, c := range base {
		if c >= '0' && c <= '9' {
			digits.WriteRune(c)
		}
	}
	if digits.Len() == 0 {
		return 0
	}
	n, err := strconv.Atoi(digits.String())
	if err != nil {
		return 0
	}
	return n
}

// syntheticVolume generates a binary (0/1) checkerboard volume of 16-pixel
// cells so the CLI is runnable without real data.
func syntheticVolume(width, height, depth int) *ndimage.Image {
	if depth <= 1 {
		out := ndimage.NewImage([]int{width, height}, 1)
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				out.Set(ndimage.Index{x, y}, []float64{checkerValue(x, y, 0)})
			}
		}
		return out
	}

	out := ndimage.NewImage([]int{width, height, depth}, 1)
	for z := 0; z < depth; z++ {
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				out.Set(ndimage.Index{x, y, z}, []float64{checkerValue(x, y, z)})
			}
		}
	}
	return out
}

func checkerValue(x, y, z int) float64 {
	cell := (x/16 + y/16 + z/16) % 2
	return float64(cell)
}
