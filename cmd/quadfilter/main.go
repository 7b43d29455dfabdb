package main

import (
	"errors"
	"flag"
	"fmt"
	"image"
	"io"
	"log"
	"log/slog"
	"os"
	"runtime"
	"time"

	"gioui.org/app"
	"github.com/esimov/quadfilter"
	"github.com/esimov/quadfilter/device"
	"github.com/esimov/quadfilter/device/soft"
	"github.com/esimov/quadfilter/device/webgpu"
	"github.com/esimov/quadfilter/filter"
	"github.com/esimov/quadfilter/utils"
)

const HelpBanner = `
┌─┐ ┬ ┬┌─┐┌┬┐┌─┐┬┬ ┌┬┐┌─┐┬─┐
│─┼┐│ │├─┤ ││├┤ ││  │ ├┤ ├┬┘
└─┘└└─┘┴ ┴─┴┘└  ┴┴─┘┴ └─┘┴└─

CPU and GPU image filter comparison.
    Version: %s

`

// Version indicates the current build version.
var Version string

// errUsage is returned when the command line does not hold exactly one file name.
var errUsage = errors.New("wrong number of arguments")

// config holds the command line options.
type config struct {
	source          string
	backend         string
	filter          string
	out             string
	fallbackAdapter bool
	lowPower        bool
	verbose         bool
}

// parseArgs parses the command line of the program called name.
func parseArgs(name string, args []string, stderr io.Writer) (*config, error) {
	cfg := &config{}

	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&cfg.backend, "backend", "auto", "GPU backend: auto, wgpu or soft")
	fs.StringVar(&cfg.filter, "filter", filter.Default, fmt.Sprintf("Filter pipeline %v", filter.Names()))
	fs.StringVar(&cfg.out, "out", "", "Write the comparison to this image file instead of opening a window")
	fs.BoolVar(&cfg.fallbackAdapter, "fallback-adapter", false, "Force the software adapter of the wgpu backend")
	fs.BoolVar(&cfg.lowPower, "low-power", false, "Prefer a low power GPU")
	fs.BoolVar(&cfg.verbose, "v", false, "Verbose logging")

	fs.Usage = func() {
		fmt.Fprintf(stderr, HelpBanner, Version)
		fmt.Fprintf(stderr, "Usage: %s [flags] filename\n", name)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return nil, errUsage
	}
	cfg.source = fs.Arg(0)

	return cfg, nil
}

// provider returns the GPU context provider selected by the backend option.
func (cfg *config) provider() (device.ContextProvider, error) {
	opts := webgpu.Options{
		ForceFallbackAdapter: cfg.fallbackAdapter,
		LowPower:             cfg.lowPower,
	}
	switch cfg.backend {
	case "auto":
		return device.FallbackProvider(webgpu.NewProvider(opts), soft.Provider()), nil
	case webgpu.Name:
		return webgpu.NewProvider(opts), nil
	case soft.Name:
		return soft.Provider(), nil
	}
	return nil, fmt.Errorf("unknown backend %q", cfg.backend)
}

func main() {
	log.SetFlags(0)

	cfg, err := parseArgs(os.Args[0], os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		os.Exit(1)
	}

	if cfg.verbose {
		quadfilter.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
	}

	// Headless mode does not need the gio main loop.
	if cfg.out != "" {
		if err := run(cfg, nil); err != nil {
			fail(err)
		}
		return
	}

	go func() {
		var w app.Window
		if err := run(cfg, &w); err != nil {
			fail(err)
		}
		os.Exit(0)
	}()
	app.Main()
}

// run loads the image, compares the three strategies and shows the result
// in w, or writes it to cfg.out when w is nil.
func run(cfg *config, w *app.Window) error {
	p, err := filter.Lookup(cfg.filter)
	if err != nil {
		return err
	}
	provider, err := cfg.provider()
	if err != nil {
		return err
	}

	img, err := quadfilter.LoadImage(cfg.source)
	if err != nil {
		return err
	}
	width, height := img.Bounds().Dx(), img.Bounds().Dy()
	l := quadfilter.NewLayout(width, height)

	panels, backend, err := compare(provider, p, img)
	if err != nil {
		return err
	}
	for _, q := range quadfilter.Quadrants[1:] {
		fmt.Fprintf(os.Stderr, "%s %s\n",
			utils.DecorateText("⚡", utils.StatusMessage),
			utils.DecorateText(panels[q].Caption, utils.DefaultMessage),
		)
	}

	if w == nil {
		if err := quadfilter.SaveComposite(cfg.out, l, panels); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "\nThe comparison has been saved as: %s\n",
			utils.DecorateText(cfg.out, utils.SuccessMessage))
		return nil
	}

	gui := quadfilter.NewGUI(l, fmt.Sprintf("%s filter: CPU vs %s", p.Name(), backend))
	for _, q := range quadfilter.Quadrants {
		gui.DrawImage(q, panels[q].Image, panels[q].Caption)
	}
	return gui.Run(w)
}

// compare runs the three strategies on a runtime that is released before returning.
func compare(provider device.ContextProvider, p filter.Pipeline, img *image.NRGBA) (panels [len(quadfilter.Quadrants)]quadfilter.Panel, backend string, err error) {
	// Every device call happens on this goroutine; keep it on one OS thread.
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	rt := device.NewRuntime(provider)
	defer rt.ContextLost()

	spinner := utils.NewSpinner(os.Stderr, fmt.Sprintf("%s %s",
		utils.DecorateText("⚡ QUADFILTER", utils.StatusMessage),
		utils.DecorateText("is running the "+p.Name()+" filter...", utils.DefaultMessage),
	), 100*time.Millisecond, true)
	if utils.Colorize {
		spinner.Start()
		defer spinner.Stop()
	}

	panels, err = quadfilter.Compare(rt, p, img)
	return panels, rt.Backend(), err
}

// fail prints the error and exits with a non-zero status.
func fail(err error) {
	fmt.Fprintf(os.Stderr, "%s %s\n",
		utils.DecorateText("Error:", utils.ErrorMessage),
		utils.DecorateText(err.Error(), utils.DefaultMessage),
	)
	os.Exit(1)
}
