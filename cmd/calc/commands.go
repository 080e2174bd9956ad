package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"calculat0r-api/internal/brain"
	"calculat0r-api/internal/graph"
	"calculat0r-api/internal/session"
)

func newRootCmd() *cobra.Command {
	var vars []string

	root := &cobra.Command{
		Use:          "calc",
		Short:        "Replay calculator programs",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringArrayVar(&vars, "var", nil, "bind a variable, NAME=VALUE (repeatable)")

	root.AddCommand(newEvalCmd(&vars), newGraphCmd(&vars), newSymbolsCmd())
	return root
}

func newEvalCmd(vars *[]string) *cobra.Command {
	return &cobra.Command{
		Use:   "eval FILE",
		Short: "Evaluate a program file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, bindings, err := load(args[0], *vars)
			if err != nil {
				return err
			}

			format := brain.DecimalFormatter()
			res := b.Evaluate(bindings, format)

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, res.Caption())
			if res.HasValue {
				fmt.Fprintln(out, format(res.Value))
			}
			if res.HasError() {
				fmt.Fprintln(out, "error:", res.Error)
			}
			return nil
		},
	}
}

func newGraphCmd(vars *[]string) *cobra.Command {
	var (
		req      = graph.PlotRequest{Bounds: graph.Size{Width: 320, Height: 480}, Density: 1}
		variable string
		scale    float64
	)

	cmd := &cobra.Command{
		Use:   "graph FILE",
		Short: "Sample a program as y(variable) and print the segments as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, bindings, err := load(args[0], *vars)
			if err != nil {
				return err
			}

			if err := req.Validate(); err != nil {
				return err
			}

			res := b.Evaluate(bindings, nil)
			if res.Pending {
				return fmt.Errorf("program %s: result is pending", args[0])
			}

			segs := []graph.Segment{}
			if res.HasValue {
				v := graph.DefaultViewport()
				v.Zoom(scale)
				plotted, err := v.Plot(b.Func(variable, bindings), req)
				if err != nil {
					return err
				}
				segs = append(segs, plotted...)
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(segs)
		},
	}

	cmd.Flags().Float64Var(&req.Bounds.Width, "width", req.Bounds.Width, "plot width in points")
	cmd.Flags().Float64Var(&req.Bounds.Height, "height", req.Bounds.Height, "plot height in points")
	cmd.Flags().Float64Var(&req.Density, "density", req.Density, "samples per point")
	cmd.Flags().Float64Var(&scale, "scale", 1, "zoom factor")
	cmd.Flags().StringVar(&variable, "variable", session.MemoryVariable, "variable on the x axis")
	return cmd
}

func newSymbolsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "symbols",
		Short: "List the recognised operation symbols",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), strings.Join(brain.Symbols(), " "))
		},
	}
}

// load reads a program file and parses the variable bindings.
func load(path string, vars []string) (*brain.Brain, map[string]float64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read program: %w", err)
	}

	// YAML is a superset of JSON, so one decoder serves both.
	var prog brain.Program
	if err := yaml.Unmarshal(data, &prog); err != nil {
		return nil, nil, fmt.Errorf("parse program %s: %w", path, err)
	}

	bindings, err := parseVars(vars)
	if err != nil {
		return nil, nil, err
	}

	b := brain.New()
	b.SetProgram(prog)
	return b, bindings, nil
}

func parseVars(vars []string) (map[string]float64, error) {
	bindings := make(map[string]float64, len(vars))
	for _, kv := range vars {
		name, raw, ok := strings.Cut(kv, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid --var %q: want NAME=VALUE", kv)
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid --var %q: %w", kv, err)
		}
		bindings[name] = v
	}
	return bindings, nil
}
