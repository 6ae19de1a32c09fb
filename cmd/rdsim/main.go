package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/rdsim/internal/analysis"
	"github.com/san-kum/rdsim/internal/automation"
	"github.com/san-kum/rdsim/internal/config"
	"github.com/san-kum/rdsim/internal/dynamo"
	"github.com/san-kum/rdsim/internal/experiment"
	"github.com/san-kum/rdsim/internal/export"
	"github.com/san-kum/rdsim/internal/logging"
	"github.com/san-kum/rdsim/internal/reaction"
	"github.com/san-kum/rdsim/internal/sim"
	"github.com/san-kum/rdsim/internal/storage"
	"github.com/san-kum/rdsim/internal/stream"
	"github.com/san-kum/rdsim/internal/sweep"
	"github.com/san-kum/rdsim/internal/viz"
)

var (
	dataDir    string
	logLevel   string
	configFile string
	preset     string

	n             int
	stepsPerFrame int
	frames        int
	workers       int
	validate      bool
	du, dv        float64
	feed, kill    float64
	spacing       float64

	format  string
	outPath string
	fps     int
	scale   int
	palette string

	column   string
	addr     string
	delay    time.Duration
	gifPath  string
	fMin     float64
	fMax     float64
	fCount   int
	kMin     float64
	kMax     float64
	kCount   int
	metric   string
	minimize bool
	parallel int

	logger *log.Logger
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "rdsim",
		Short:         "gray-scott reaction-diffusion lab",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			l, err := logging.New(os.Stderr, logLevel)
			if err != nil {
				return err
			}
			logger = l
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", config.DefaultDataDir, "run catalog directory (overrides output.dir)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a simulation and store its statistics",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	addSimFlags(runCmd)
	addOutputFlags(runCmd)
	runCmd.Flags().StringVar(&outPath, "render", "", "also encode every frame to this path")

	renderCmd := &cobra.Command{
		Use:   "render",
		Short: "run a simulation and encode the V frames as a movie",
		Args:  cobra.NoArgs,
		RunE:  renderMovie,
	}
	addSimFlags(renderCmd)
	addOutputFlags(renderCmd)
	renderCmd.Flags().StringVarP(&outPath, "out", "o", "", "output path (default movie.<ext>, a directory for png)")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot per-frame statistics of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&column, "column", "", "only plot one column (min, max, mean, std)")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run metadata and statistics as json",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}
	exportCmd.Flags().StringVarP(&outPath, "out", "o", "", "write to file instead of stdout")

	spectrumCmd := &cobra.Command{
		Use:   "spectrum [run_id]",
		Short: "radial power spectrum of a run's final frame",
		Args:  cobra.ExactArgs(1),
		RunE:  spectrumRun,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list parameter presets",
		Args:  cobra.NoArgs,
		RunE:  listPresets,
	}

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "watch the pattern form in the terminal",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	addSimFlags(liveCmd)
	liveCmd.Flags().StringVar(&gifPath, "gif", "rdsim.gif", "where G recordings are saved")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "stream frames to browsers over websocket",
		Args:  cobra.NoArgs,
		RunE:  serveRun,
	}
	addSimFlags(serveCmd)
	serveCmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	serveCmd.Flags().DurationVar(&delay, "delay", 50*time.Millisecond, "pause between frames")

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "scan a grid of feed and kill rates",
		Args:  cobra.NoArgs,
		RunE:  sweepRun,
	}
	addSimFlags(sweepCmd)
	sweepCmd.Flags().Float64Var(&fMin, "f-min", 0.02, "lowest feed rate")
	sweepCmd.Flags().Float64Var(&fMax, "f-max", 0.06, "highest feed rate")
	sweepCmd.Flags().IntVar(&fCount, "f-count", 5, "feed rate samples")
	sweepCmd.Flags().Float64Var(&kMin, "k-min", 0.055, "lowest kill rate")
	sweepCmd.Flags().Float64Var(&kMax, "k-max", 0.065, "highest kill rate")
	sweepCmd.Flags().IntVar(&kCount, "k-count", 5, "kill rate samples")
	sweepCmd.Flags().StringVar(&metric, "metric", "coverage", "metric to rank points by")
	sweepCmd.Flags().BoolVar(&minimize, "minimize", false, "pick the smallest metric value")
	sweepCmd.Flags().IntVar(&parallel, "parallel", 0, "simulations in flight (0 = one per cpu)")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run a yaml list of simulations and store each",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}
	addSimFlags(scenarioCmd)
	addOutputFlags(scenarioCmd)

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "write the resolved configuration as yaml",
		Args:  cobra.NoArgs,
		RunE:  writeConfig,
	}
	addSimFlags(configCmd)
	addOutputFlags(configCmd)
	configCmd.Flags().StringVarP(&outPath, "out", "o", "", "output path (default rdsim.yaml)")

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "benchmark the stepper over grid sizes and worker counts",
		Args:  cobra.NoArgs,
		RunE:  benchStepper,
	}

	rootCmd.AddCommand(runCmd, renderCmd, listCmd, plotCmd, exportCmd, spectrumCmd, presetsCmd, liveCmd, serveCmd, sweepCmd, scenarioCmd, configCmd, benchCmd)

	if err := rootCmd.Execute(); err != nil {
		if logger != nil {
			logger.Error(err)
		} else {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
		os.Exit(1)
	}
}

func addSimFlags(cmd *cobra.Command) {
	def := config.DefaultConfig()
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "parameter preset (see rdsim presets)")
	cmd.Flags().IntVarP(&n, "size", "n", def.N, "interior grid size")
	cmd.Flags().IntVar(&stepsPerFrame, "steps-per-frame", def.StepsPerFrame, "euler steps between frames")
	cmd.Flags().IntVar(&frames, "frames", def.Frames, "number of frames")
	cmd.Flags().IntVar(&workers, "workers", def.Workers, "row-parallel workers per step")
	cmd.Flags().BoolVar(&validate, "validate", false, "fail when the state stops being finite")
	cmd.Flags().Float64Var(&du, "du", def.Params.Du, "diffusion rate of U")
	cmd.Flags().Float64Var(&dv, "dv", def.Params.Dv, "diffusion rate of V")
	cmd.Flags().Float64VarP(&feed, "feed", "f", def.Params.F, "feed rate")
	cmd.Flags().Float64VarP(&kill, "kill", "k", def.Params.K, "kill rate")
	cmd.Flags().Float64Var(&spacing, "spacing", 0, "grid spacing; 0 keeps the unnormalized stencil")
}

func addOutputFlags(cmd *cobra.Command) {
	def := config.DefaultConfig()
	cmd.Flags().StringVar(&format, "format", def.Output.Format, "movie format (gif, mjpeg, png)")
	cmd.Flags().IntVar(&fps, "fps", def.Output.FPS, "movie frame rate")
	cmd.Flags().IntVar(&scale, "scale", def.Output.Scale, "pixels per cell")
	cmd.Flags().StringVar(&palette, "palette", def.Output.Palette, "color palette ("+strings.Join(export.Palettes(), ", ")+")")
}

// resolveConfig layers defaults, preset, config file and explicitly set
// flags, in that order.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		if cfg = config.GetPreset(preset); cfg == nil {
			return nil, dynamo.Invalid("unknown preset %q (available: %v)", preset, config.ListPresets())
		}
	}

	if configFile != "" {
		loaded, err := config.Load(configFile, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("size") {
		cfg.N = n
	}
	if flags.Changed("steps-per-frame") {
		cfg.StepsPerFrame = stepsPerFrame
	}
	if flags.Changed("frames") {
		cfg.Frames = frames
	}
	if flags.Changed("workers") {
		cfg.Workers = workers
	}
	if flags.Changed("validate") {
		cfg.ValidateState = validate
	}
	if flags.Changed("du") {
		cfg.Params.Du = du
	}
	if flags.Changed("dv") {
		cfg.Params.Dv = dv
	}
	if flags.Changed("feed") {
		cfg.Params.F = feed
	}
	if flags.Changed("kill") {
		cfg.Params.K = kill
	}
	if flags.Changed("spacing") {
		cfg.Params.Spacing = spacing
	}
	if flags.Lookup("format") != nil {
		if flags.Changed("format") {
			cfg.Output.Format = format
		}
		if flags.Changed("fps") {
			cfg.Output.FPS = fps
		}
		if flags.Changed("scale") {
			cfg.Output.Scale = scale
		}
		if flags.Changed("palette") {
			cfg.Output.Palette = palette
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// storeDir picks the run catalog: an explicit --data wins, then output.dir
// from the resolved config.
func storeDir(cmd *cobra.Command, cfg *config.Config) string {
	if f := cmd.Flag("data"); f != nil && f.Changed {
		return dataDir
	}
	if cfg.Output.Dir != "" {
		return cfg.Output.Dir
	}
	return dataDir
}

func writeConfig(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	path := outPath
	if path == "" {
		path = "rdsim.yaml"
	}
	if err := config.Save(path, cfg); err != nil {
		return err
	}
	logger.Info("config written", "path", absPath(path))
	return nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

func exportOptions(cfg *config.Config) export.Options {
	opts := export.DefaultOptions()
	opts.FPS = cfg.Output.FPS
	opts.Scale = cfg.Output.Scale
	opts.Palette = cfg.Output.Palette
	return opts
}

func defaultMoviePath(format string) string {
	switch format {
	case export.FormatPNG:
		return "frames"
	case export.FormatMJPEG:
		return "movie.avi"
	default:
		return "movie.gif"
	}
}

// progress logs every tenth of the run and encodes frames when an encoder
// is attached.
type progress struct {
	total   int
	every   int
	enc     export.Encoder
	err     error
	started time.Time
}

func newProgress(total int, enc export.Encoder) *progress {
	every := total / 10
	if every < 1 {
		every = 1
	}
	return &progress{total: total, every: every, enc: enc, started: time.Now()}
}

func (p *progress) OnStep(int) {}

func (p *progress) OnFrame(f *sim.Frame) {
	if p.enc != nil && p.err == nil {
		p.err = p.enc.Encode(f)
	}
	if (f.Index+1)%p.every == 0 || f.Index+1 == p.total {
		lo, hi := f.MinMax()
		logger.Info("frame", "n", fmt.Sprintf("%d/%d", f.Index+1, p.total), "step", f.Step,
			"v_min", fmt.Sprintf("%.4f", lo), "v_max", fmt.Sprintf("%.4f", hi),
			"elapsed", time.Since(p.started).Round(time.Millisecond))
	}
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	st := storage.New(storeDir(cmd, cfg))
	if err := st.Init(); err != nil {
		return err
	}

	var enc export.Encoder
	if outPath != "" {
		enc, err = export.Create(cfg.Output.Format, outPath, cfg.N, exportOptions(cfg))
		if err != nil {
			return err
		}
	}
	prog := newProgress(cfg.Frames, enc)

	registry := experiment.NewRegistry()
	exp := experiment.New(cfg)
	if err := exp.Setup(registry.DefaultMetrics(), prog); err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	logger.Info("running", "preset", cfg.Preset, "n", cfg.N, "f", cfg.Params.F, "k", cfg.Params.K,
		"steps", cfg.SimConfig().TotalSteps())
	out, err := exp.Run(ctx)
	if enc != nil {
		if cerr := enc.Close(); err == nil && prog.err == nil {
			prog.err = cerr
		}
	}
	if err != nil {
		return err
	}
	if prog.err != nil {
		return fmt.Errorf("encode frames: %w", prog.err)
	}

	meta := out.Metadata(cfg)
	runID, err := st.Save(meta, out.Stats, out.Result.Last().Data)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", out.Elapsed.Round(time.Millisecond))
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("steps: %d\n", out.Result.Steps)
	fmt.Printf("wavelength: %.2f cells\n", out.Wavelength)
	fmt.Println("\nmetrics:")
	for _, name := range registry.ListMetrics() {
		fmt.Printf("  %s: %.6f\n", name, out.Result.Metrics[name])
	}
	if outPath != "" {
		fmt.Printf("\nframes written to %s\n", absPath(outPath))
	}
	return nil
}

func renderMovie(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	path := outPath
	if path == "" {
		path = defaultMoviePath(cfg.Output.Format)
	}

	s, err := sim.NewSeeded(cfg.N, cfg.ReactionParams(), cfg.SimConfig())
	if err != nil {
		return err
	}
	enc, err := export.Create(cfg.Output.Format, path, cfg.N, exportOptions(cfg))
	if err != nil {
		return err
	}
	prog := newProgress(cfg.Frames, nil)
	s.AddObserver(prog)

	ctx, cancel := signalContext()
	defer cancel()

	for frame, err := range s.Frames(ctx) {
		if err != nil {
			enc.Close()
			return err
		}
		if err := enc.Encode(frame); err != nil {
			enc.Close()
			return err
		}
	}
	if err := enc.Close(); err != nil {
		return err
	}
	fmt.Printf("%d frames written to %s\n", cfg.Frames, absPath(path))
	return nil
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
	fmt.Fprintln(w, "ID\tPRESET\tTIME\tN\tF\tK\tSTEPS\tWAVELENGTH\tCOVERAGE")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%.4f\t%.4f\t%d\t%.2f\t%.3f\n",
			run.ID,
			run.Preset,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.N,
			run.F,
			run.K,
			run.Steps,
			run.Wavelength,
			run.Metrics["coverage"],
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
	stats, err := st.LoadStats(runID)
	if err != nil {
		return err
	}
	if len(stats) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("F=%.4f k=%.4f n=%d\n", meta.F, meta.K, meta.N)
	fmt.Printf("frames: %d\n\n", len(stats))

	columns := []string{"mean", "std", "max"}
	if column != "" {
		columns = []string{column}
	}
	for _, c := range columns {
		graph := asciigraph.Plot(analysis.Series(stats, c),
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(fmt.Sprintf("V %s per frame", c)),
		)
		fmt.Println(graph)
		fmt.Println()
	}
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	if outPath == "" {
		return st.ExportJSON(os.Stdout, args[0])
	}

	f, err := os.Create(outPath)
	if err != nil {
		return err
	}
	if err := st.ExportJSON(f, args[0]); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Printf("exported to %s\n", outPath)
	return nil
}

func spectrumRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	final, err := st.LoadFinal(args[0])
	if err != nil {
		return err
	}

	power, err := analysis.RadialSpectrum(final)
	if err != nil {
		return err
	}
	wl, k, err := analysis.DominantWavelength(final)
	if err != nil {
		return err
	}

	if graph := spectrumGraph(power); graph != "" {
		fmt.Println(graph)
		fmt.Println()
	}
	if k == 0 {
		fmt.Println("no pattern: the final frame is uniform")
		return nil
	}
	fmt.Printf("dominant wavenumber: %d\n", k)
	fmt.Printf("wavelength: %.2f cells\n", wl)
	return nil
}

// spectrumGraph plots the power for k >= 1, or returns "" when the field is
// too small to have any such bin.
func spectrumGraph(power []float64) string {
	if len(power) < 2 {
		return ""
	}
	return asciigraph.Plot(power[1:],
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption("radial power by wavenumber (k >= 1)"),
	)
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tDU\tDV\tF\tK\tPATTERN")
	for _, name := range config.ListPresets() {
		p := config.Presets[name]
		fmt.Fprintf(w, "%s\t%.3f\t%.3f\t%.4f\t%.4f\t%s\n", name, p.Du, p.Dv, p.F, p.K, p.Description)
	}
	return w.Flush()
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	// the terminal only has room for a few hundred cells a side
	if !cmd.Flags().Changed("size") && cfg.N > 128 {
		cfg.N = 128
	}

	m, err := viz.NewModel(cfg.N, cfg.ReactionParams(), cfg.StepsPerFrame, cfg.Workers, cfg.Preset)
	if err != nil {
		return err
	}
	p := tea.NewProgram(m.WithGIFPath(gifPath), tea.WithAltScreen())
	_, err = p.Run()
	return err
}

func serveRun(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	hub := stream.NewHub(stream.Hello{
		N:             cfg.N,
		StepsPerFrame: cfg.StepsPerFrame,
		Frames:        cfg.Frames,
		F:             cfg.Params.F,
		K:             cfg.Params.K,
	}, logger)

	s, err := sim.NewSeeded(cfg.N, cfg.ReactionParams(), cfg.SimConfig())
	if err != nil {
		return err
	}
	s.AddObserver(hub)
	s.AddObserver(newProgress(cfg.Frames, nil))

	ctx, cancel := signalContext()
	defer cancel()

	go func() {
		err := s.RunWithCallback(ctx, func(*sim.Frame) bool {
			select {
			case <-ctx.Done():
				return false
			case <-time.After(delay):
				return true
			}
		})
		if err != nil && ctx.Err() == nil {
			logger.Error("simulation stopped", "err", err)
			return
		}
		logger.Info("simulation finished; still serving, ctrl+c to stop", "steps", s.Steps())
	}()

	return hub.ListenAndServe(ctx, addr)
}

func sweepRun(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	if !cmd.Flags().Changed("size") && cfg.N > 96 {
		cfg.N = 96
	}
	if !cmd.Flags().Changed("frames") && cfg.Frames > 50 {
		cfg.Frames = 50
	}

	fs := sweep.Linspace(fMin, fMax, fCount)
	ks := sweep.Linspace(kMin, kMax, kCount)

	ctx, cancel := signalContext()
	defer cancel()

	logger.Info("sweeping", "points", len(fs)*len(ks), "n", cfg.N, "steps", cfg.SimConfig().TotalSteps())
	start := time.Now()
	points, err := sweep.NewGridSearch(fs, ks, parallel).Run(ctx, cfg)
	if err != nil {
		return err
	}
	logger.Info("sweep done", "elapsed", time.Since(start).Round(time.Millisecond))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "F\tK\t%s\tWAVELENGTH\tSTATUS\n", strings.ToUpper(metric))
	for _, p := range sweep.Sorted(points) {
		status := "ok"
		if p.Err != nil {
			status = p.Err.Error()
		}
		fmt.Fprintf(w, "%.4f\t%.4f\t%.4f\t%.2f\t%s\n", p.F, p.K, p.Metrics[metric], p.Wavelength, status)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	best, ok := sweep.Best(points, metric, !minimize)
	if !ok {
		return fmt.Errorf("no point produced metric %q", metric)
	}
	fmt.Printf("\nbest %s: %.4f at F=%.4f k=%.4f\n", metric, best.Metrics[metric], best.F, best.K)
	return nil
}

func runScenario(cmd *cobra.Command, args []string) error {
	base, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}

	st := storage.New(storeDir(cmd, base))
	if err := st.Init(); err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	logger.Info("scenario", "name", sc.Name, "steps", len(sc.Steps))
	results, err := automation.RunScenario(ctx, sc, base, st, logger)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STEP\tRUN ID\tSTEPS\tWAVELENGTH\tCOVERAGE\tTIME")
	for _, r := range results {
		fmt.Fprintf(w, "%s\t%s\t%d\t%.2f\t%.3f\t%v\n", r.Name, r.RunID, r.Outcome.Result.Steps,
			r.Outcome.Wavelength, r.Outcome.Result.Metrics["coverage"], r.Outcome.Elapsed.Round(time.Millisecond))
	}
	if ferr := w.Flush(); err == nil {
		err = ferr
	}
	return err
}

func benchStepper(cmd *cobra.Command, args []string) error {
	const steps = 100
	sizes := []int{64, 128, 256, 512}
	workerCounts := []int{1, runtime.NumCPU()}
	p := reaction.DefaultParams()

	fmt.Printf("benchmarking %d steps per case\n\n", steps)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "N\tMODE\tWORKERS\tTIME\tSTEPS/SEC\tCELLS/SEC")

	report := func(size int, mode string, workers int, elapsed time.Duration) {
		sps := float64(steps) / elapsed.Seconds()
		fmt.Fprintf(w, "%d\t%s\t%d\t%v\t%.0f\t%.3g\n", size, mode, workers, elapsed.Round(time.Microsecond), sps, sps*float64(size*size))
	}

	for _, size := range sizes {
		u, v, err := reaction.Init(size)
		if err != nil {
			return err
		}
		start := time.Now()
		for i := 0; i < steps; i++ {
			if err := reaction.Step(u, v, p); err != nil {
				return err
			}
		}
		report(size, "alloc", 1, time.Since(start))

		for _, wk := range workerCounts {
			u, v, err := reaction.Init(size)
			if err != nil {
				return err
			}
			g, err := reaction.New(p)
			if err != nil {
				return err
			}
			g.WithWorkers(wk)
			start := time.Now()
			for i := 0; i < steps; i++ {
				if err := g.Advance(u, v); err != nil {
					return err
				}
			}
			report(size, "stepper", wk, time.Since(start))
		}
	}
	return w.Flush()
}

func absPath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}
