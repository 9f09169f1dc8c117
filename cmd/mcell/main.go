package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/nuclab/mcell/internal/config"
	"github.com/nuclab/mcell/internal/experiment"
	"github.com/nuclab/mcell/internal/storage"
	"github.com/nuclab/mcell/internal/tally"
	"github.com/nuclab/mcell/internal/tui"
	"github.com/spf13/cobra"
)

var (
	dataDir    string
	inactive   int
	active     int
	particles  int
	seed       int64
	workers    int
	engine     string
	pitch      float64
	configFile string
	preset     string
	live       bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "mcell",
		Short: "constructive solid geometry monte carlo batch driver",
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".mcell", "data directory")

	runCmd := &cobra.Command{
		Use:   "run [model]",
		Short: "run a batch plan on a model",
		Args:  cobra.ExactArgs(1),
		RunE:  runModel,
	}
	runCmd.Flags().IntVar(&inactive, "inactive", config.DefaultInactive, "inactive batches discarded before statistics")
	runCmd.Flags().IntVar(&active, "active", config.DefaultActive, "active batches committed to statistics")
	runCmd.Flags().IntVar(&particles, "particles", config.DefaultParticles, "particles per batch")
	runCmd.Flags().Int64Var(&seed, "seed", time.Now().UnixNano(), "random seed")
	runCmd.Flags().IntVar(&workers, "workers", 0, "worker goroutines (0 = all cpus)")
	runCmd.Flags().StringVar(&engine, "engine", config.DefaultEngine, "transport engine")
	runCmd.Flags().Float64Var(&pitch, "pitch", config.DefaultPitch, "lattice pitch in cm")
	runCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	runCmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	runCmd.Flags().BoolVar(&live, "live", false, "watch batches in a live terminal view")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list saved runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot batch convergence for a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run metadata as json",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	modelsCmd := &cobra.Command{
		Use:   "models",
		Short: "list models, engines and presets",
		RunE:  listModels,
	}

	checkCmd := &cobra.Command{
		Use:   "check [model]",
		Short: "validate a model's topology without running it",
		Args:  cobra.ExactArgs(1),
		RunE:  checkModel,
	}
	checkCmd.Flags().Float64Var(&pitch, "pitch", config.DefaultPitch, "lattice pitch in cm")

	rootCmd.AddCommand(runCmd, listCmd, plotCmd, exportCmd, modelsCmd, checkCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// resolveConfig applies preset values first, then config file values,
// with changed CLI flags winning over both.
func resolveConfig(cmd *cobra.Command, model string) (experiment.Config, error) {
	if preset != "" {
		cfg := config.GetPreset(model, preset)
		if cfg == nil {
			return experiment.Config{}, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets(model))
		}
		inactive = cfg.InactiveBatches
		active = cfg.ActiveBatches
		particles = cfg.ParticlesPerBatch
		engine = cfg.Engine
		if cfg.Seed != 0 {
			seed = cfg.Seed
		}
		if cfg.Lattice.Pitch != 0 {
			pitch = cfg.Lattice.Pitch
		}
	}

	if configFile != "" {
		cfg, err := config.Load(configFile)
		if err != nil {
			return experiment.Config{}, fmt.Errorf("failed to load config: %w", err)
		}
		if !cmd.Flags().Changed("inactive") {
			inactive = cfg.InactiveBatches
		}
		if !cmd.Flags().Changed("active") {
			active = cfg.ActiveBatches
		}
		if !cmd.Flags().Changed("particles") {
			particles = cfg.ParticlesPerBatch
		}
		if !cmd.Flags().Changed("engine") {
			engine = cfg.Engine
		}
		if !cmd.Flags().Changed("workers") {
			workers = cfg.Workers
		}
		if cfg.Seed != 0 && !cmd.Flags().Changed("seed") {
			seed = cfg.Seed
		}
		if cfg.Lattice.Pitch != 0 && !cmd.Flags().Changed("pitch") {
			pitch = cfg.Lattice.Pitch
		}
	}

	return experiment.Config{
		Model:     model,
		Engine:    engine,
		Workers:   workers,
		Inactive:  inactive,
		Active:    active,
		Particles: particles,
		Seed:      seed,
		Pitch:     pitch,
	}, nil
}

func runModel(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args[0])
	if err != nil {
		return err
	}

	exp, err := experiment.New(cfg, experiment.NewRegistry())
	if err != nil {
		return err
	}

	if live {
		if err := tui.Run(exp); err != nil {
			return err
		}
		if err := exp.Close(); err != nil {
			return err
		}
		results, err := exp.Driver().TallyResults()
		if err != nil {
			return err
		}
		printTallies(results)
		return nil
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	fmt.Printf("running %s: %d inactive + %d active batches, %d particles each\n",
		cfg.Model, cfg.Inactive, cfg.Active, cfg.Particles)
	start := time.Now()

	result, err := exp.Run(context.Background(), nil)
	if err != nil {
		return err
	}

	elapsed := time.Since(start)

	runID, err := st.Save(result)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("batches: %d (%d committed)\n", result.BatchesRun, result.BatchesRun-result.Inactive)

	printTallies(result.Tallies)

	return nil
}

func printTallies(results []tally.Result) {
	for _, res := range results {
		fmt.Printf("\ntally %s (%d samples):\n", res.Name, res.Samples)
		for _, bin := range res.Bins {
			for i, score := range res.Scores {
				fmt.Printf("  %-16s %-10s %.6g ± %.3g\n", bin.Label, score, bin.Mean[i], bin.StdErrOfMean[i])
			}
		}
	}
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tMODEL\tENGINE\tTIME\tBATCHES\tINACTIVE\tPARTICLES")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%d\t%d\n",
			run.ID,
			run.Model,
			run.Engine,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Batches,
			run.Inactive,
			run.Particles,
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	points, err := st.LoadSeries(runID)
	if err != nil {
		return err
	}

	// Inactive batches carry no statistics, so only plot committed ones.
	data := make([]float64, 0, len(points))
	for _, p := range points {
		if p.Phase == "active" {
			data = append(data, p.Mean)
		}
	}
	if len(data) < 2 {
		return fmt.Errorf("not enough active batches to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("model: %s\n", meta.Model)
	fmt.Printf("active batches: %d\n\n", len(data))

	graph := asciigraph.Plot(data,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption("tracked tally mean by committed batch"),
	)
	fmt.Println(graph)

	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func listModels(cmd *cobra.Command, args []string) error {
	reg := experiment.NewRegistry()

	fmt.Println("models:")
	for _, name := range reg.ListModels() {
		fmt.Printf("  %s", name)
		if presets := config.ListPresets(name); len(presets) > 0 {
			fmt.Printf("  (presets: %v)", presets)
		}
		fmt.Println()
	}

	fmt.Println("engines:")
	for _, name := range reg.ListEngines() {
		fmt.Printf("  %s\n", name)
	}

	return nil
}

func checkModel(cmd *cobra.Command, args []string) error {
	reg := experiment.NewRegistry()
	model, err := reg.GetModel(args[0], experiment.Config{Pitch: pitch})
	if err != nil {
		return err
	}

	if err := model.Topo.Freeze(); err != nil {
		return fmt.Errorf("topology check failed: %w", err)
	}

	fmt.Printf("%s: topology ok\n", model.Name)
	fmt.Printf("  cells: %d\n", len(model.Topo.Cells()))
	fmt.Printf("  materials: %d\n", len(model.Topo.Materials()))
	fmt.Printf("  tallies: %d\n", len(model.Tallies.All()))
	return nil
}
