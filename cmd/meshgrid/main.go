// meshgrid rescales meshes into a target box and lays out copies of them on
// serial or staggered grids.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/Faultbox/meshgrid/internal/config"
	"github.com/Faultbox/meshgrid/internal/logger"
	"github.com/Faultbox/meshgrid/internal/pipeline"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case config.CommandRescale:
		cmdRescale(args)
	case config.CommandArrange:
		cmdArrange(args)
	case config.CommandCylinders, "cyl":
		cmdCylinders(args)
	case config.CommandTranslate:
		cmdTranslate(args)
	case config.CommandConfig:
		cmdConfig(args)
	case "info":
		cmdInfo(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`meshgrid - mesh rescaling and grid layout tool

Usage:
  meshgrid <command> [options]

Commands:
  rescale    Fit one mesh into the target box
  arrange    Fit a mesh into the box and lay out serial/staggered grids
  cylinders  Lay out generated cylinders on serial/staggered grids
  translate  Offset meshes by a fixed vector
  info       Show vertex, face, group and bounds information of a mesh
  config     Print the effective config or write it to a file

Every job command accepts -config, -debug, -log-file, -direct and -format.
Run "meshgrid <command> -h" for the options of a command.

Examples:
  meshgrid arrange -i coral.obj -rows 4 -cols 4
  meshgrid arrange -mode staggered -o out/staggered.glb
  meshgrid cylinders -stagger-axis y -stagger-driver column
  meshgrid translate -offset 0.06,0.08,-0.002 -i in.obj -o out.obj
  meshgrid info branching_serial.obj`)
}

// setup parses flags, loads the config and starts logging. It exits on any
// error.
func setup(command string, args []string) *config.Config {
	flags := config.NewFlags(command)
	if err := flags.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		os.Exit(1)
	}
	if flags.FlagSet().NArg() > 0 {
		fail(fmt.Errorf("unexpected arguments: %v", flags.Args()))
	}

	cfg, err := config.Load(flags)
	if err != nil {
		fail(err)
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fail(err)
	}
	logger.Debug("config loaded", zap.String("command", command), zap.Bool("atomic", cfg.Export.Atomic))
	return cfg
}

func fail(err error) {
	logger.Error("command failed", zap.Error(err))
	logger.Sync()
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

func printOutputs(outputs []pipeline.Output) {
	for _, out := range outputs {
		mode := string(out.Mode)
		if mode == "" {
			mode = "-"
		}
		fmt.Printf("%-10s %5d instances %9d vertices %9d faces  %s\n",
			mode, out.Instances, out.Vertices, out.Faces, out.Path)
	}
}

func cmdRescale(args []string) {
	cfg := setup(config.CommandRescale, args)
	defer logger.Sync()

	out, err := pipeline.NewRunner(cfg).Rescale()
	if err != nil {
		fail(err)
	}
	printOutputs([]pipeline.Output{out})
}

func cmdArrange(args []string) {
	cfg := setup(config.CommandArrange, args)
	defer logger.Sync()

	outputs, err := pipeline.NewRunner(cfg).Arrange()
	printOutputs(outputs)
	if err != nil {
		fail(err)
	}
}

func cmdCylinders(args []string) {
	cfg := setup(config.CommandCylinders, args)
	defer logger.Sync()

	outputs, err := pipeline.NewRunner(cfg).Cylinders()
	printOutputs(outputs)
	if err != nil {
		fail(err)
	}
}

func cmdTranslate(args []string) {
	cfg := setup(config.CommandTranslate, args)
	defer logger.Sync()

	outputs, err := pipeline.NewRunner(cfg).Translate()
	printOutputs(outputs)
	if err != nil {
		fail(err)
	}
}

func cmdInfo(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: meshgrid info <mesh>")
		os.Exit(1)
	}

	for i, path := range args {
		info, err := pipeline.Info(path)
		if err != nil {
			fail(err)
		}
		if i > 0 {
			fmt.Println()
		}
		info.Print(os.Stdout)
	}
}

func cmdConfig(args []string) {
	flags := config.NewFlags(config.CommandConfig)
	fs := flags.FlagSet()
	output := fs.String("o", "", "Write the config to this file instead of stdout")
	user := fs.Bool("user", false, "Write the config to the user config directory")
	if err := flags.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		os.Exit(1)
	}

	cfg, err := config.Load(flags)
	if err != nil {
		fail(err)
	}

	switch {
	case *user:
		path, err := cfg.Save()
		if err != nil {
			fail(err)
		}
		fmt.Printf("Wrote %s\n", path)
	case *output != "":
		if err := cfg.SaveTo(*output); err != nil {
			fail(err)
		}
		fmt.Printf("Wrote %s\n", *output)
	default:
		data, err := cfg.Marshal()
		if err != nil {
			fail(err)
		}
		os.Stdout.Write(data)
	}
}
