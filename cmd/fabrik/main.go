// Command fabrik solves the IK chains described by YAML scene files.
//
//	fabrik solve arm.yaml
//	fabrik solve --closed --output yaml loop.yaml
//	fabrik inspect arm.yaml
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/akmonengine/fabrik"
	"github.com/akmonengine/fabrik/chain"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

type options struct {
	settingsPath string
	logLevel     string
	output       string
	closed       bool
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:          "fabrik",
		Short:        "Range-limited FABRIK inverse kinematics solver",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&opts.settingsPath, "settings", "", "YAML settings file, overridden by FABRIK_* variables and the scene settings")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "log level: debug, info, warn, error")

	solve := &cobra.Command{
		Use:   "solve <scene.yaml>",
		Short: "Solve a scene and print the resulting chain",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSolve(cmd.OutOrStdout(), cmd.ErrOrStderr(), args[0], opts)
		},
	}
	solve.Flags().BoolVar(&opts.closed, "closed", false, "use the closed loop convergence criterion")
	solve.Flags().StringVarP(&opts.output, "output", "o", "text", "output format: text or yaml")

	inspect := &cobra.Command{
		Use:   "inspect <scene.yaml>",
		Short: "Print the bone lengths and reach of a scene",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(cmd.OutOrStdout(), args[0], opts)
		},
	}

	root.AddCommand(solve, inspect)

	return root
}

func newLogger(w io.Writer, level string) (*slog.Logger, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}

	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: l})), nil
}

func loadScene(path string, opts *options) (*Scene, error) {
	settings, err := fabrik.LoadSettings(opts.settingsPath)
	if err != nil {
		return nil, err
	}

	return LoadScene(path, settings)
}

type solveOutput struct {
	Mode       string      `yaml:"mode"`
	Changed    bool        `yaml:"changed"`
	Converged  bool        `yaml:"converged"`
	Iterations int         `yaml:"iterations"`
	Slop       float64     `yaml:"slop"`
	Joints     []JointSpec `yaml:"joints"`
}

func runSolve(stdout, stderr io.Writer, path string, opts *options) error {
	logger, err := newLogger(stderr, opts.logLevel)
	if err != nil {
		return err
	}

	scene, err := loadScene(path, opts)
	if err != nil {
		return err
	}

	mode, _ := scene.SolveMode()
	if opts.closed {
		mode = fabrik.ClosedLoop
	}
	target, _ := scene.TargetPosition()
	input, _ := scene.Chain()
	constraints, _ := scene.ConstraintTable()

	solver := &fabrik.Solver{Settings: scene.Settings, Logger: logger.With("scene", path)}
	result := solver.Solve(mode, input, constraints, target, path)

	if !result.Changed {
		logger.Info("chain unchanged", "scene", path, "joints", len(input))
	} else if !result.Converged {
		logger.Warn("target not reached", "scene", path, "iterations", result.Iterations, "slop", result.Slop)
	}

	output := solveOutput{
		Mode:       mode.String(),
		Changed:    result.Changed,
		Converged:  result.Converged,
		Iterations: result.Iterations,
		Slop:       result.Slop,
		Joints:     jointSpecs(result.Chain),
	}

	switch strings.ToLower(opts.output) {
	case "yaml":
		encoder := yaml.NewEncoder(stdout)
		encoder.SetIndent(2)
		if err := encoder.Encode(output); err != nil {
			return fmt.Errorf("encode result: %w", err)
		}
		return encoder.Close()
	case "text":
		return writeText(stdout, output)
	default:
		return fmt.Errorf("unknown output format %q", opts.output)
	}
}

func writeText(w io.Writer, output solveOutput) error {
	if _, err := fmt.Fprintf(w, "mode=%s changed=%t converged=%t iterations=%d slop=%.6f\n",
		output.Mode, output.Changed, output.Converged, output.Iterations, output.Slop); err != nil {
		return err
	}
	for i, joint := range output.Joints {
		if _, err := fmt.Fprintf(w, "joint %d: position=%v rotation=%v\n", i, joint.Position, joint.Rotation); err != nil {
			return err
		}
	}

	return nil
}

func runInspect(stdout io.Writer, path string, opts *options) error {
	scene, err := loadScene(path, opts)
	if err != nil {
		return err
	}

	input, _ := scene.Chain()
	target, _ := scene.TargetPosition()
	lengths, maximumReach := chain.ComputeBoneLengths(input)

	for i := 1; i < len(lengths); i++ {
		if _, err := fmt.Fprintf(stdout, "bone %d: length=%.6f\n", i, lengths[i]); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(stdout, "maximum reach: %.6f\n", maximumReach); err != nil {
		return err
	}

	if len(input) > 0 {
		distance := target.Sub(input[0].Position).Len()
		if _, err := fmt.Fprintf(stdout, "target distance: %.6f reachable=%t\n", distance, distance <= maximumReach); err != nil {
			return err
		}
	}

	return nil
}

func jointSpecs(c chain.Chain) []JointSpec {
	specs := make([]JointSpec, len(c))
	for i, joint := range c {
		specs[i] = JointSpec{
			Position: []float64{joint.Position.X(), joint.Position.Y(), joint.Position.Z()},
			Rotation: []float64{joint.Rotation.W, joint.Rotation.X(), joint.Rotation.Y(), joint.Rotation.Z()},
		}
	}

	return specs
}
