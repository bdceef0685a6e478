package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/san-kum/mbsim/internal/analysis"
	"github.com/san-kum/mbsim/internal/mbs"
	"github.com/san-kum/mbsim/internal/render"
	"github.com/san-kum/mbsim/internal/storage"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var stateLabels = []string{"theta (angle)", "omega (angular velocity)"}

func newRunsCmds() []*cobra.Command {
	var pngPath string
	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot run results",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return plotRun(cmd, args[0], pngPath)
		},
	}
	plotCmd.Flags().StringVar(&pngPath, "png", "", "also write a PNG plot to this path")

	var (
		width, height int
		svgPath       string
	)
	phaseCmd := &cobra.Command{
		Use:   "phase [run_id]",
		Short: "phase portrait of angle against angular velocity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := openStore().LoadResult(args[0])
			if err != nil {
				return err
			}
			p := analysis.NewPhasePortrait(res, 0, 1)
			if p == nil {
				return fmt.Errorf("no data to plot")
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, render.Title.Render("phase portrait: "+args[0]))
			fmt.Fprint(out, p.ASCII(width, height))
			fmt.Fprintln(out, render.Subtle.Render("x: theta, y: omega"))

			if svgPath == "" {
				return nil
			}
			pts := make([]render.Point, len(p.Points))
			for i, pt := range p.Points {
				pts[i] = render.Point(pt)
			}
			return os.WriteFile(svgPath, []byte(render.TrajectorySVG(pts, 600, 600, "#1f77b4")), 0644)
		},
	}
	phaseCmd.Flags().IntVar(&width, "width", 80, "columns")
	phaseCmd.Flags().IntVar(&height, "height", 24, "rows")
	phaseCmd.Flags().StringVar(&svgPath, "svg", "", "also write the portrait as SVG to this path")

	return []*cobra.Command{
		{
			Use:   "list",
			Short: "list runs",
			RunE:  listRuns,
		},
		plotCmd,
		phaseCmd,
		{
			Use:   "analyze [run_id]",
			Short: "frequency analysis",
			Args:  cobra.ExactArgs(1),
			RunE:  analyzeRun,
		},
		{
			Use:   "export [run_id]",
			Short: "export run metadata",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				meta, err := openStore().Load(args[0])
				if err != nil {
					return err
				}
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(meta)
			},
		},
		{
			Use:   "export-csv [run_id]",
			Short: "export run data to CSV",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				f, err := os.Open(openStore().CSVPath(args[0]))
				if err != nil {
					return err
				}
				defer f.Close()
				_, err = io.Copy(cmd.OutOrStdout(), f)
				return err
			},
		},
		{
			Use:   "export-json [run_id]",
			Short: "export run data to JSON",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return openStore().ExportJSON(args[0], cmd.OutOrStdout())
			},
		},
	}
}

func openStore() *storage.Store {
	return storage.New(dataDir, logger)
}

func listRuns(cmd *cobra.Command, args []string) error {
	runs, err := openStore().List()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(out, "no runs found")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tMODEL\tTIME\tDURATION\tDT\tINTEG\tCTRL\tSTEPS")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2fs\t%.4fs\t%s\t%s\t%d\n",
			run.ID,
			run.Model,
			run.Timestamp.Local().Format("2006-01-02 15:04:05"),
			run.Duration,
			run.Dt,
			run.Integrator,
			run.Controller,
			run.Steps,
		)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, runID, pngPath string) error {
	st := openStore()
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	res, err := st.LoadResult(runID)
	if err != nil {
		return err
	}
	if len(res.States) == 0 {
		return fmt.Errorf("no data to plot")
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, render.KV("run", meta.ID))
	fmt.Fprintln(out, render.KV("model", meta.Model))
	fmt.Fprintln(out, render.KV("samples", fmt.Sprint(len(res.States))))
	fmt.Fprintln(out)

	series := make([][]float64, len(res.States[0]))
	for i := range series {
		series[i] = res.Series(i)
		caption := fmt.Sprintf("x%d vs time", i)
		if i < len(stateLabels) {
			caption = stateLabels[i]
		}
		fmt.Fprintln(out, render.Graph(series[i], caption, 80, 10))
		fmt.Fprintln(out)
	}

	if pngPath != "" {
		if err := render.SaveTrajectoryPNG(pngPath, meta.ID, res.Times, series, []string{"theta", "omega"}); err != nil {
			return err
		}
		logger.Info("plot written", zap.String("path", pngPath))
	}
	return nil
}

// modelFromRun rebuilds the pendulum a run was produced with.
func modelFromRun(meta *storage.RunMetadata) (*mbs.Pendulum, error) {
	model := mbs.Default()
	for _, name := range []string{"mass", "length", "inertia", "gravity", "damping"} {
		v, ok := meta.Params[name]
		if !ok {
			continue
		}
		if err := model.SetParam(name, v); err != nil {
			return nil, err
		}
	}
	return model, nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := openStore()
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	res, err := st.LoadResult(runID)
	if err != nil {
		return err
	}
	if len(res.States) < 4 {
		return fmt.Errorf("no data")
	}

	model, err := modelFromRun(meta)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, render.Title.Render("frequency analysis: "+meta.ID))
	fmt.Fprintln(out)

	// Variable-step runs are put on the nominal grid before any FFT.
	theta, err := analysis.Resample(res.Times, res.Series(0), meta.Dt)
	if err != nil {
		return err
	}
	ps := analysis.PowerSpectrum(theta)
	fmt.Fprintln(out, render.Graph(ps[:max(len(ps)/4, 2)], "power spectrum (theta)", 80, 15))
	fmt.Fprintln(out)

	period, err := analysis.SpectralPeriod(res, 0, meta.Dt)
	if err != nil {
		return err
	}
	if period > 0 {
		fmt.Fprintln(out, render.KV("dominant frequency", fmt.Sprintf("%.4f Hz", 1/period)))
		fmt.Fprintln(out, render.KV("spectral period", fmt.Sprintf("%.4f s", period)))
	}
	if p := analysis.Period(res, 0); p > 0 {
		fmt.Fprintln(out, render.KV("crossing period", fmt.Sprintf("%.4f s", p)))
	}

	t0 := model.SmallAnglePeriod()
	fmt.Fprintln(out, render.KV("small-angle period", fmt.Sprintf("%.4f s", t0)))
	if meta.Controller == "none" && meta.Params["damping"] == 0 && res.States[0][1] == 0 {
		amp := res.States[0][0]
		fmt.Fprintln(out, render.KV("large-amplitude period", fmt.Sprintf("%.4f s", analysis.LargeAmplitudePeriod(t0, amp))))
	}
	return nil
}
