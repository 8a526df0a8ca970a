package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/san-kum/musclesim/internal/analysis"
	"github.com/san-kum/musclesim/internal/automation"
	"github.com/san-kum/musclesim/internal/config"
	"github.com/san-kum/musclesim/internal/experiment"
	"github.com/san-kum/musclesim/internal/plot"
	"github.com/san-kum/musclesim/internal/sim"
	"github.com/san-kum/musclesim/internal/storage"
	"github.com/san-kum/musclesim/internal/viz"
)

var (
	dataDir string
	backend string
	verbose bool
	logger  *zap.Logger

	configFile string
	preset     string
	runName    string
	logSteps   bool

	dt         float64
	duration   float64
	theta      float64
	omega      float64
	muscleLen  float64
	activation float64
	schedule   string
	fraction   float64
	maxForce   float64
	inertia    float64
	gravity    float64

	outPath   string
	outDir    string
	format    string
	dpi       int
	gifPath   string
	themeName string
	showPhase bool

	sweepParam string
	sweepMin   float64
	sweepMax   float64
	sweepSteps int
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(20)
	valueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "musclesim",
		Short:         "single-joint rigid-tendon muscle simulator",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			logger, err = newLogger(verbose)
			return err
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logger != nil {
				_ = logger.Sync()
			}
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".musclesim", "data directory")
	rootCmd.PersistentFlags().StringVar(&backend, "store", "dir", "storage backend (dir, sqlite)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "development logging at debug level")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a simulation and store it",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	runCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	runCmd.Flags().StringVar(&preset, "preset", "", "start from a named preset")
	runCmd.Flags().StringVar(&runName, "name", "", "run name (defaults to preset or \"run\")")
	runCmd.Flags().BoolVar(&logSteps, "log-steps", false, "log force and torques every step (needs --verbose)")
	runCmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "timestep (s)")
	runCmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "duration (s)")
	runCmd.Flags().Float64Var(&theta, "theta", config.DefaultTheta, "initial joint angle (rad)")
	runCmd.Flags().Float64Var(&omega, "omega", 0, "initial angular velocity (rad/s)")
	runCmd.Flags().Float64Var(&muscleLen, "length", config.DefaultMuscleLength, "initial musculotendon length (m)")
	runCmd.Flags().Float64Var(&activation, "activation", config.DefaultActivation, "initial activation [0,1]")
	runCmd.Flags().StringVar(&schedule, "schedule", config.DefaultSchedule, "activation schedule")
	runCmd.Flags().Float64Var(&fraction, "pulse-fraction", config.DefaultPulseFrac, "pulse length as a fraction of the run")
	runCmd.Flags().Float64Var(&maxForce, "max-force", 1500, "max isometric force (N)")
	runCmd.Flags().Float64Var(&inertia, "inertia", 20, "joint inertia")
	runCmd.Flags().Float64Var(&gravity, "gravity", 9.83, "gravitational acceleration")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	showCmd := &cobra.Command{
		Use:   "show [run_id]",
		Short: "show run parameters and metrics",
		Args:  cobra.ExactArgs(1),
		RunE:  showRun,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot run results in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default stdout)")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run data to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}
	exportCSVCmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default stdout)")

	renderCmd := &cobra.Command{
		Use:   "render [run_id]",
		Short: "render joint angle, velocity, force and length diagrams",
		Args:  cobra.ExactArgs(1),
		RunE:  renderRun,
	}
	renderCmd.Flags().StringVar(&outDir, "out", "plots", "output directory")
	renderCmd.Flags().StringVar(&format, "format", "png", "image format (png, svg)")
	renderCmd.Flags().IntVar(&dpi, "dpi", 150, "png resolution")

	replayCmd := &cobra.Command{
		Use:   "replay [run_id]",
		Short: "animate a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  replayRun,
	}
	replayCmd.Flags().StringVar(&gifPath, "gif", "", "write an animated GIF instead of opening the viewer")
	replayCmd.Flags().StringVar(&themeName, "theme", "cyberpunk", "color theme")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "summary statistics and dominant frequency",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().BoolVar(&showPhase, "phase", false, "draw the theta-omega phase portrait")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list presets and activation schedules",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("presets:")
			for _, p := range config.ListPresets() {
				fmt.Printf("  %s\n", p)
			}
			fmt.Println("schedules:")
			for _, s := range experiment.NewRegistry().ListSchedules() {
				fmt.Printf("  %s\n", s)
			}
			fmt.Println("sweep parameters:")
			for _, p := range automation.SweepParams() {
				fmt.Printf("  %s\n", p)
			}
		},
	}

	initConfigCmd := &cobra.Command{
		Use:   "init-config [path]",
		Short: "write a config file with default or preset values",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.DefaultConfig()
			if preset != "" {
				if cfg = config.GetPreset(preset); cfg == nil {
					return fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
				}
			}
			if err := config.Save(args[0], cfg); err != nil {
				return err
			}
			fmt.Printf("wrote %s\n", args[0])
			return nil
		},
	}
	initConfigCmd.Flags().StringVar(&preset, "preset", "", "preset to write")

	batchCmd := &cobra.Command{
		Use:   "batch [scenario.yaml]",
		Short: "run every entry of a scenario file concurrently and store them",
		Args:  cobra.ExactArgs(1),
		RunE:  runBatch,
	}

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "vary one parameter and compare run metrics",
		Args:  cobra.NoArgs,
		RunE:  runParamSweep,
	}
	sweepCmd.Flags().StringVar(&configFile, "config", "", "base config file (yaml)")
	sweepCmd.Flags().StringVar(&preset, "preset", "", "base preset")
	sweepCmd.Flags().StringVar(&sweepParam, "param", "joint.inertia", "parameter to vary")
	sweepCmd.Flags().Float64Var(&sweepMin, "min", 5, "first value")
	sweepCmd.Flags().Float64Var(&sweepMax, "max", 40, "last value")
	sweepCmd.Flags().IntVar(&sweepSteps, "steps", 8, "number of values")

	rootCmd.AddCommand(runCmd, batchCmd, sweepCmd, listCmd, showCmd, plotCmd, exportJSONCmd, exportCSVCmd,
		renderCmd, replayCmd, analyzeCmd, presetsCmd, initConfigCmd)
	return rootCmd
}

func newLogger(dev bool) (*zap.Logger, error) {
	if dev {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func openStore() (storage.Backend, error) {
	path := dataDir
	if backend == "sqlite" {
		if err := os.MkdirAll(dataDir, 0755); err != nil {
			return nil, err
		}
		path = filepath.Join(dataDir, "runs.db")
	}
	st, err := storage.Open(backend, path)
	if err != nil {
		return nil, err
	}
	if err := st.Init(); err != nil {
		st.Close()
		return nil, err
	}
	return st, nil
}

// loadRun opens the store and reads one run.
func loadRun(runID string) (*storage.RunMetadata, sim.TimeHistory, error) {
	st, err := openStore()
	if err != nil {
		return nil, nil, err
	}
	defer st.Close()

	meta, err := st.Load(runID)
	if err != nil {
		return nil, nil, err
	}
	history, err := st.LoadHistory(runID)
	if err != nil {
		return nil, nil, err
	}
	return meta, history, nil
}

// buildConfig layers defaults, preset, config file and changed flags, in
// that order.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		if cfg = config.GetPreset(preset); cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("dt") {
		cfg.Dt = dt
	}
	if flags.Changed("time") {
		cfg.Duration = duration
	}
	if flags.Changed("theta") {
		cfg.InitState.Theta = theta
	}
	if flags.Changed("omega") {
		cfg.InitState.Omega = omega
	}
	if flags.Changed("length") {
		cfg.InitState.MuscleLength = muscleLen
	}
	if flags.Changed("activation") {
		cfg.InitState.Activation = activation
	}
	if flags.Changed("schedule") {
		cfg.Activation.Schedule = schedule
	}
	if flags.Changed("pulse-fraction") {
		cfg.Activation.Fraction = fraction
	}
	if flags.Changed("max-force") {
		cfg.Muscle.MaxIsometricForce = maxForce
	}
	if flags.Changed("inertia") {
		cfg.Joint.Inertia = inertia
	}
	if flags.Changed("gravity") {
		cfg.Joint.Gravity = gravity
	}
	return cfg, nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	name := runName
	if name == "" {
		name = preset
	}
	if name == "" {
		name = "run"
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	log := logger.With(zap.String("run", name))
	exp := experiment.New(cfg, experiment.NewRegistry(), log)

	var observers []sim.Observer
	if logSteps {
		observers = append(observers, sim.NewLogObserver(log))
	}
	if err := exp.Setup(observers...); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("running %s simulation...\n", name)
	start := time.Now()

	result, err := exp.Run(ctx)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	runID, err := st.Save(storage.NewRunMetadata(name, cfg, result.Metrics), result.History)
	if err != nil {
		return fmt.Errorf("save run: %w", err)
	}
	log.Info("run stored", zap.String("id", runID), zap.String("backend", backend))

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("steps: %d\n", len(result.History))
	fmt.Println()
	printMetrics(result.Metrics)
	return nil
}

func runBatch(cmd *cobra.Command, args []string) error {
	scenario, err := automation.LoadScenario(args[0])
	if err != nil {
		return fmt.Errorf("failed to load scenario: %w", err)
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("running scenario %s (%d runs)...\n", scenario.Name, len(scenario.Runs))
	start := time.Now()
	results, err := automation.RunScenario(ctx, scenario, experiment.NewRegistry(), logger)
	if err != nil {
		return err
	}
	fmt.Printf("completed in %v\n\n", time.Since(start))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RUN\tID\tSTEPS\tPEAK FORCE\tLIMIT CONTACTS")
	for _, r := range results {
		name := r.Name
		if scenario.Name != "" {
			name = scenario.Name + "-" + r.Name
		}
		runID, err := st.Save(storage.NewRunMetadata(name, r.Config, r.Metrics), r.History)
		if err != nil {
			return fmt.Errorf("save %s: %w", r.Name, err)
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%.2f\t%.0f\n", r.Name, runID, len(r.History),
			r.Metrics["peak_force"], r.Metrics["limit_contacts"])
	}
	return w.Flush()
}

func runParamSweep(cmd *cobra.Command, args []string) error {
	base, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	results, err := automation.RunSweep(cmd.Context(), &automation.ParameterSweep{
		Base:  base,
		Param: sweepParam,
		Min:   sweepMin,
		Max:   sweepMax,
		Steps: sweepSteps,
	}, experiment.NewRegistry())
	if err != nil {
		return err
	}

	names := sortedKeys(results[0].Metrics)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprint(w, strings.ToUpper(sweepParam))
	for _, n := range names {
		fmt.Fprintf(w, "\t%s", strings.ToUpper(n))
	}
	fmt.Fprintln(w)
	for _, r := range results {
		fmt.Fprintf(w, "%.4g", r.ParamValue)
		for _, n := range names {
			fmt.Fprintf(w, "\t%.4f", r.Metrics[n])
		}
		fmt.Fprintln(w)
	}
	return w.Flush()
}

func printMetrics(metrics map[string]float64) {
	fmt.Println(titleStyle.Render("metrics"))
	for _, k := range sortedKeys(metrics) {
		fmt.Println(labelStyle.Render("  "+k) + valueStyle.Render(fmt.Sprintf("%.6f", metrics[k])))
	}
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func listRuns(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tTIME\tDURATION\tDT\tSCHEDULE\tSTEPS")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2fs\t%.4fs\t%s\t%d\n",
			run.ID,
			run.Name,
			run.Timestamp.Local().Format("2006-01-02 15:04:05"),
			run.Duration,
			run.Dt,
			run.Schedule,
			run.Steps,
		)
	}

	return w.Flush()
}

func showRun(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	fmt.Println(titleStyle.Render("run " + meta.ID))
	fmt.Println(labelStyle.Render("  created") + valueStyle.Render(meta.Timestamp.Local().Format(time.RFC1123)))
	fmt.Println(labelStyle.Render("  dt / duration") + valueStyle.Render(fmt.Sprintf("%g s / %g s", meta.Dt, meta.Duration)))
	fmt.Println(labelStyle.Render("  steps") + valueStyle.Render(fmt.Sprintf("%d", meta.Steps)))
	fmt.Println(labelStyle.Render("  schedule") + valueStyle.Render(meta.Schedule))

	for _, section := range []struct {
		title  string
		values map[string]float64
	}{
		{"muscle", meta.Muscle},
		{"joint", meta.Joint},
	} {
		fmt.Println(titleStyle.Render(section.title))
		for _, k := range sortedKeys(section.values) {
			fmt.Println(labelStyle.Render("  "+k) + valueStyle.Render(fmt.Sprintf("%g", section.values[k])))
		}
	}
	printMetrics(meta.Metrics)
	return nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	meta, history, err := loadRun(args[0])
	if err != nil {
		return err
	}
	if len(history) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("samples: %d\n\n", len(history))

	series := []struct {
		caption string
		data    []float64
	}{
		{"joint angle (rad)", history.Thetas()},
		{"angular velocity (rad/s)", history.Omegas()},
		{"muscle force (N)", history.Forces()},
		{"muscle-tendon length (m)", history.Lengths()},
	}

	for _, s := range series {
		graph := asciigraph.Plot(s.data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(s.caption),
		)
		fmt.Println(graph)
		fmt.Println()
	}
	return nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	meta, history, err := loadRun(args[0])
	if err != nil {
		return err
	}
	if outPath == "" {
		return storage.ExportJSON(os.Stdout, *meta, history)
	}
	if err := storage.ExportJSONFile(outPath, *meta, history); err != nil {
		return err
	}
	fmt.Printf("exported to %s\n", outPath)
	return nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	_, history, err := loadRun(args[0])
	if err != nil {
		return err
	}
	if outPath == "" {
		return storage.WriteCSV(os.Stdout, history)
	}
	if err := storage.ExportCSVFile(outPath, history); err != nil {
		return err
	}
	fmt.Printf("exported to %s\n", outPath)
	return nil
}

func renderRun(cmd *cobra.Command, args []string) error {
	meta, history, err := loadRun(args[0])
	if err != nil {
		return err
	}
	_, limits, err := meta.JointSetup()
	if err != nil {
		return err
	}

	opts := plot.DefaultOptions()
	opts.Format = format
	opts.DPI = dpi
	opts.Limits = &limits

	paths, err := plot.Render(history, outDir, opts)
	if err != nil {
		return err
	}
	for _, p := range paths {
		fmt.Printf("wrote %s\n", p)
	}
	return nil
}

func replayRun(cmd *cobra.Command, args []string) error {
	meta, history, err := loadRun(args[0])
	if err != nil {
		return err
	}
	joint, limits, err := meta.JointSetup()
	if err != nil {
		return err
	}

	if gifPath != "" {
		f, err := os.Create(gifPath)
		if err != nil {
			return err
		}
		defer f.Close()

		if err := viz.WriteGIF(f, history, viz.NewScene(joint, limits), viz.DefaultGIFOptions()); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", gifPath)
		return nil
	}

	return viz.RunReplay(viz.NewReplay(meta.ID, history, joint, limits).WithTheme(themeName))
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	meta, history, err := loadRun(args[0])
	if err != nil {
		return err
	}
	if len(history) == 0 {
		return fmt.Errorf("no data to analyze")
	}

	report := analysis.Summarize(history, meta.Dt)

	fmt.Printf("run: %s\n\n", meta.ID)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "CHANNEL\tMEAN\tSTD\tMIN\tMAX\tRMS")
	for _, ch := range []string{"theta", "omega", "force", "length", "activation"} {
		s := report.Channels[ch]
		fmt.Fprintf(w, "%s\t%.4f\t%.4f\t%.4f\t%.4f\t%.4f\n", ch, s.Mean, s.StdDev, s.Min, s.Max, s.RMS)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Println()
	fmt.Printf("dominant theta frequency: %.3f Hz\n", report.ThetaFrequency)
	fmt.Printf("time at limit: %.1f%%\n", 100*report.LimitFraction)
	if report.FirstLimitContact >= 0 {
		fmt.Printf("first limit contact: %.2fs\n", report.FirstLimitContact)
	}
	fmt.Printf("force/theta correlation: %.3f\n", report.ForceThetaCorrel)

	mid := report.Channels["theta"].Mean
	crossings := analysis.Crossings(history.Times(), history.Thetas(), mid)
	fmt.Printf("upward crossings of mean angle: %d\n", len(crossings))

	if showPhase {
		fmt.Println()
		fmt.Println("phase portrait (theta vs omega):")
		fmt.Print(analysis.NewPhasePortrait(history).ASCII(70, 20))
	}
	return nil
}
