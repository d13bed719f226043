// Package main provides the resnet CLI: build pre-activation ResNets, write
// initial checkpoints and evaluate trained ones on CIFAR-10 style data.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"runtime/debug"
	"strconv"
	"strings"

	"github.com/born-ml/resnet/internal/backend/cpu"
	"github.com/born-ml/resnet/internal/checkpoint"
	"github.com/born-ml/resnet/internal/dataset"
	"github.com/born-ml/resnet/internal/evaluate"
	"github.com/born-ml/resnet/internal/parallel"
	"github.com/born-ml/resnet/internal/resnet"
)

const version = "v0.1.0"

const usage = `Usage: resnet <command> [flags]

Commands:
  eval      Evaluate a checkpoint on a test set
  init      Write a freshly initialized checkpoint
  summary   Print the layer table of a network
  version   Show version

Run "resnet <command> -h" for the flags of a command.
`

func main() {
	log.SetFlags(0)
	log.SetPrefix("resnet: ")

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cmd, args := os.Args[1], os.Args[2:]
	var err error
	switch cmd {
	case "eval":
		err = runEval(args)
	case "init":
		err = runInit(args)
	case "summary":
		err = runSummary(args)
	case "version", "-version", "--version":
		fmt.Printf("resnet %s\n", buildVersion())
	case "help", "-h", "--help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", cmd, usage)
		os.Exit(2)
	}
	if err != nil {
		log.Fatalf("%s: %v", cmd, err)
	}
}

func buildVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return version
}

// modelFlags are the flags shared by every command that builds a network.
type modelFlags struct {
	fs       *flag.FlagSet
	config   *string
	variant  *string
	n        *int
	stem     *int
	classes  *int
	size     *int
	seed     *uint64
	skipPre  *bool
	workers  *int
	parallel *bool
}

func addModelFlags(fs *flag.FlagSet) *modelFlags {
	return &modelFlags{
		fs:       fs,
		config:   fs.String("config", "", "YAML model description; explicit flags override it"),
		variant:  fs.String("variant", "bottleneck", "Block variant: basic (6n+2 layers) or bottleneck (9n+2 layers); with -config it replaces the file's variant"),
		n:        fs.Int("n", 18, "Residual blocks per stage"),
		stem:     fs.Int("stem", 0, "Stem width (0 = 16 for basic, 64 for bottleneck)"),
		classes:  fs.Int("classes", dataset.DefaultNumClasses, "Number of classes"),
		size:     fs.Int("size", dataset.DefaultImageSize, "Input image side"),
		seed:     fs.Uint64("seed", 1, "Weight initialization seed"),
		skipPre:  fs.Bool("skip-stage1-preact", false, "Skip pre-activation in every stage-1 block"),
		workers:  fs.Int("workers", 0, "Worker goroutines for convolutions (0 = physical cores)"),
		parallel: fs.Bool("parallel", true, "Process batch items in parallel"),
	}
}

// modelConfig merges the YAML file, if any, with the flags set explicitly.
func (m *modelFlags) modelConfig() (resnet.Config, error) {
	set := make(map[string]bool)
	m.fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	variant, err := resnet.ParseVariant(*m.variant)
	if err != nil {
		return resnet.Config{}, err
	}
	cfg := resnet.DefaultConfig(variant)
	switch {
	case *m.config != "" && set["variant"]:
		cfg, err = resnet.LoadConfigAs(*m.config, variant)
	case *m.config != "":
		cfg, err = resnet.LoadConfig(*m.config)
	}
	if err != nil {
		return resnet.Config{}, err
	}

	if *m.config == "" || set["n"] {
		cfg.N = *m.n
	}
	if *m.config == "" || set["seed"] {
		cfg.Seed = *m.seed
	}
	if *m.config == "" || set["classes"] {
		cfg.NumClasses = *m.classes
	}
	if *m.config == "" || set["size"] {
		cfg.ImageSize = *m.size
	}
	if set["skip-stage1-preact"] {
		cfg.SkipStageOnePreActivation = *m.skipPre
	}
	if *m.stem > 0 {
		cfg.StemChannels = *m.stem
	}
	return cfg, cfg.Validate()
}

func (m *modelFlags) backend() *cpu.CPUBackend {
	cfg := parallel.DefaultConfig()
	if *m.workers > 0 {
		cfg.NumWorkers = *m.workers
		cfg.Enabled = *m.workers > 1
	}
	if !*m.parallel {
		cfg = parallel.Sequential()
	}
	return cpu.NewWithConfig(cfg)
}

func (m *modelFlags) build() (*resnet.Network[*cpu.CPUBackend], *cpu.CPUBackend, error) {
	cfg, err := m.modelConfig()
	if err != nil {
		return nil, nil, err
	}
	backend := m.backend()
	net, err := resnet.New(cfg, backend)
	if err != nil {
		return nil, nil, err
	}
	return net, backend, nil
}

func runEval(args []string) error {
	fs := flag.NewFlagSet("eval", flag.ExitOnError)
	model := addModelFlags(fs)
	weights := fs.String("weights", "", "Checkpoint to evaluate (required)")
	cifar := fs.String("data", "", "Comma-separated CIFAR-10 binary batch files")
	images := fs.String("images", "", "Image folder laid out as <root>/<class>/<file>")
	mean := fs.String("mean", "", "Per-channel mean to subtract, as r,g,b in [0,1], or \"auto\" for the mean of the loaded images")
	batch := fs.Int("batch", evaluate.DefaultBatchSize, "Images per forward pass")
	maxSamples := fs.Int("max", 0, "Evaluate at most this many images (0 = all)")
	report := fs.String("report", "", "Write a JSON report to this path")
	details := fs.Bool("details", false, "Print per-class accuracy and the confusion matrix")
	_ = fs.Parse(args)

	if *weights == "" {
		return fmt.Errorf("-weights is required")
	}
	if (*cifar == "") == (*images == "") {
		return fmt.Errorf("exactly one of -data and -images is required")
	}

	net, backend, err := model.build()
	if err != nil {
		return err
	}

	opts := dataset.Options{
		ImageSize:  net.Config().ImageSize,
		NumClasses: net.Config().NumClasses,
		MaxSamples: *maxSamples,
	}
	if *mean != "" && *mean != "auto" {
		if opts.Mean, err = parseMean(*mean); err != nil {
			return err
		}
	}

	var data *dataset.Dataset
	if *cifar != "" {
		data, err = dataset.LoadCIFAR10(strings.Split(*cifar, ","), opts)
	} else {
		data, err = dataset.LoadImageFolder(*images, opts)
	}
	if err != nil {
		return err
	}
	if *mean == "auto" {
		if err := data.SubtractMean(data.ChannelMean()); err != nil {
			return err
		}
	}

	f, err := checkpoint.Load(*weights)
	if err != nil {
		return err
	}
	if err := checkpoint.Bind(net, f); err != nil {
		return err
	}

	res, err := evaluate.Run(net, data, backend, evaluate.Options{
		BatchSize:  *batch,
		NumClasses: net.Config().NumClasses,
	})
	if err != nil {
		return err
	}
	res.Model = net.String()

	if err := res.WriteText(os.Stdout); err != nil {
		return err
	}
	if *details {
		if err := res.WriteDetails(os.Stdout); err != nil {
			return err
		}
	}
	if *report != "" {
		return res.SaveJSON(*report)
	}
	return nil
}

func runInit(args []string) error {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	model := addModelFlags(fs)
	out := fs.String("out", "", "Checkpoint path to write (required)")
	_ = fs.Parse(args)

	if *out == "" {
		return fmt.Errorf("-out is required")
	}

	net, _, err := model.build()
	if err != nil {
		return err
	}

	cfgYAML, err := resnet.MarshalConfig(net.Config())
	if err != nil {
		return err
	}
	meta := checkpoint.Meta{
		Model: net.String(),
		Metadata: map[string]string{
			"config": string(cfgYAML),
			"seed":   strconv.FormatUint(net.Config().Seed, 10),
		},
	}
	if err := checkpoint.Save(*out, checkpoint.Entries(net.Parameters()), meta); err != nil {
		return err
	}

	fmt.Printf("wrote %s: %s, %d arrays, %d parameters\n",
		*out, net, len(net.Parameters()), net.NumParameters())
	return nil
}

func runSummary(args []string) error {
	fs := flag.NewFlagSet("summary", flag.ExitOnError)
	model := addModelFlags(fs)
	_ = fs.Parse(args)

	net, _, err := model.build()
	if err != nil {
		return err
	}
	return resnet.WriteSummary(os.Stdout, net)
}

func parseMean(s string) ([]float32, error) {
	parts := strings.Split(s, ",")
	if len(parts) != dataset.DefaultChannels {
		return nil, fmt.Errorf("-mean needs %d values, got %q", dataset.DefaultChannels, s)
	}
	mean := make([]float32, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 32)
		if err != nil {
			return nil, fmt.Errorf("-mean: %w", err)
		}
		mean[i] = float32(v)
	}
	return mean, nil
}
