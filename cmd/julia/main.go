// julia renders a Julia set into a 24-bit bitmap file.
//
//	julia [flags] <c real> <c imag> <file> <scheme> <x-offset> <y-offset> <size>
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"strconv"
	"strings"

	julia "github.com/JulianKunkel/julia-sets"
	"github.com/JulianKunkel/julia-sets/bmp"
)

const usageText = `Syntax: julia [flags] <c real> <c imag> <file> <scheme> <x-offset> <y-offset> <size>
 scheme: <R|G|B> = 2 | 4 | 8, i.e. a value of 10 is purple
         add 1 to use a single color, otherwise multicolor
 example: julia -0.39 0.6 test.bmp 11 0 0 1000
flags:
`

var errUsage = errors.New("usage")

// config is everything one invocation asks for.
type config struct {
	params  julia.Params
	scheme  julia.Scheme
	file    string
	verbose bool
}

func main() {
	if err := run(os.Args[1:], os.Stderr); err != nil {
		if errors.Is(err, errUsage) {
			os.Exit(1)
		}
		log.Fatalf("FATAL: %v", err)
	}
}

func run(args []string, stderr io.Writer) error {
	cfg, err := parseArgs(args, stderr)
	if err != nil {
		return err
	}

	if cfg.verbose {
		julia.SetLogger(slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	scheme := cfg.scheme.Normalize()
	if scheme != cfg.scheme {
		log.Printf("color scheme %d does not make sense, using %d instead", cfg.scheme, scheme)
	}
	p := cfg.params.WithDefaults(scheme)

	log.Printf("Julia set %f + %fi into file %s", p.C.Re, p.C.Im, cfg.file)
	res := julia.Compute(p)
	log.Printf("Time: %s Max iterations %d - bounded pixels: %d", res.Elapsed, res.ObservedMax, res.Bounded)

	rgb := julia.ColorizeWorkers(res, scheme, p.Workers)
	if err := bmp.WriteFile(cfg.file, p.Size, p.Size, rgb); err != nil {
		return fmt.Errorf("write %q: %w", cfg.file, err)
	}
	return nil
}

func parseArgs(args []string, stderr io.Writer) (config, error) {
	var cfg config

	fs := flag.NewFlagSet("julia", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.IntVar(&cfg.params.Budget, "budget", 0, "iteration budget per pixel (0: the color maximum of the scheme)")
	fs.IntVar(&cfg.params.Workers, "workers", 0, "worker goroutines (0: number of CPUs)")
	fs.BoolVar(&cfg.verbose, "v", false, "debug logging")
	fs.Usage = func() {
		fmt.Fprint(fs.Output(), usageText)
		fs.PrintDefaults()
	}

	flags, pos := splitArgs(fs, args)
	if err := fs.Parse(flags); err != nil {
		return cfg, errUsage
	}
	pos = append(pos, fs.Args()...)

	usage := func(format string, a ...any) (config, error) {
		fmt.Fprintf(stderr, "Error: "+format+"\n", a...)
		fs.Usage()
		return cfg, errUsage
	}

	if len(pos) != 7 {
		return usage("expected 7 arguments, got %d", len(pos))
	}

	floats := make([]float64, 0, 4)
	for _, i := range []int{0, 1, 4, 5} {
		v, err := strconv.ParseFloat(pos[i], 64)
		if err != nil {
			return usage("argument %d: %v", i+1, err)
		}
		floats = append(floats, v)
	}
	scheme, err := strconv.Atoi(pos[3])
	if err != nil {
		return usage("scheme: %v", err)
	}
	size, err := strconv.Atoi(pos[6])
	if err != nil {
		return usage("size: %v", err)
	}

	cfg.file = pos[2]
	cfg.scheme = julia.Scheme(scheme)
	cfg.params.C = julia.Complex{Re: floats[0], Im: floats[1]}
	cfg.params.XOffset = floats[2]
	cfg.params.YOffset = floats[3]
	cfg.params.Size = size

	if cfg.params.Budget < 0 {
		return usage("budget must not be negative")
	}
	if err := cfg.params.Validate(); err != nil && !errors.Is(err, julia.ErrInvalidBudget) {
		return usage("%v", err)
	}
	return cfg, nil
}

// splitArgs separates flags from positional arguments. Negative numbers
// such as -0.39 are positional even though they start with a dash.
func splitArgs(fs *flag.FlagSet, args []string) (flags, pos []string) {
	for i := 0; i < len(args); i++ {
		a := args[i]
		if a == "--" {
			return flags, append(pos, args[i+1:]...)
		}
		if !strings.HasPrefix(a, "-") || a == "-" || isNumber(a) {
			pos = append(pos, a)
			continue
		}

		flags = append(flags, a)
		name, _, hasValue := strings.Cut(strings.TrimLeft(a, "-"), "=")
		f := fs.Lookup(name)
		if hasValue || f == nil || isBoolFlag(f) {
			continue
		}
		if i+1 < len(args) {
			i++
			flags = append(flags, args[i])
		}
	}
	return flags, pos
}

func isNumber(s string) bool {
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}

func isBoolFlag(f *flag.Flag) bool {
	b, ok := f.Value.(interface{ IsBoolFlag() bool })
	return ok && b.IsBoolFlag()
}
