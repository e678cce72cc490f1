// Command resarc inspects id-Tech resource containers: list entries,
// extract payloads, or round-trip an archive through its codec.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"

	"github.com/resarc/resarc"
)

type config struct {
	extract   string
	out       string
	roundtrip string
	verbose   bool
}

func main() {
	if err := run(); err != nil {
		os.Exit(1)
	}
}

func run() error {
	cfg := config{}
	flag.StringVar(&cfg.extract, "extract", "", "extract the named entry instead of listing")
	flag.StringVar(&cfg.out, "o", "", "output path for -extract (default: the entry name)")
	flag.StringVar(&cfg.roundtrip, "roundtrip", "", "re-encode the archive to this path (round-trip formats only)")
	flag.BoolVar(&cfg.verbose, "v", false, "verbose logging")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: resarc [flags] FILE\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	path := flag.Arg(0)

	level := slog.LevelInfo
	if cfg.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(tint.NewHandler(colorable.NewColorable(os.Stderr), &tint.Options{
		Level:   level,
		NoColor: !isatty.IsTerminal(os.Stderr.Fd()),
	}))

	arc, err := resarc.OpenFile(path, resarc.WithLogger(logger))
	if err != nil {
		var ferr *resarc.FormatError
		if errors.As(err, &ferr) {
			logger.Error("corrupt or unsupported container",
				"format", ferr.Format, "offset", ferr.Offset, "detail", ferr.Detail, "error", ferr.Err)
		} else {
			logger.Error("open failed", "error", err)
		}
		return err
	}
	defer arc.Close()

	switch {
	case cfg.extract != "":
		return extract(arc, cfg, logger)
	case cfg.roundtrip != "":
		return roundtrip(arc, cfg, logger)
	default:
		list(arc)
		return nil
	}
}

func list(arc *resarc.Archive) {
	fmt.Printf("format: %s, %d entries\n", arc.Format(), arc.Len())
	i := 0
	for e := range arc.Entries() {
		fmt.Printf("%4d  %-16s  %8d bytes  offset %d\n", i, e.Name, e.Size, e.SourceOffset)
		i++
	}
}

func extract(arc *resarc.Archive, cfg config, logger *slog.Logger) error {
	e, ok := arc.Lookup(cfg.extract)
	if !ok {
		logger.Error("no such entry", "name", cfg.extract)
		return fmt.Errorf("no such entry: %s", cfg.extract)
	}
	data, err := arc.Read(e)
	if err != nil {
		logger.Error("read entry failed", "name", e.Name, "error", err)
		return err
	}
	out := cfg.out
	if out == "" {
		out = e.Name
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		logger.Error("write failed", "path", out, "error", err)
		return err
	}
	logger.Info("extracted", "name", e.Name, "bytes", len(data), "path", out)
	return nil
}

func roundtrip(arc *resarc.Archive, cfg config, logger *slog.Logger) error {
	data, err := arc.Write()
	if err != nil {
		if errors.Is(err, resarc.ErrUnsupported) {
			logger.Error("format does not support encoding", "format", arc.Format())
		} else {
			logger.Error("encode failed", "error", err)
		}
		return err
	}
	if err := os.WriteFile(cfg.roundtrip, data, 0o644); err != nil {
		logger.Error("write failed", "path", cfg.roundtrip, "error", err)
		return err
	}
	logger.Info("re-encoded", "format", arc.Format(), "bytes", len(data), "path", cfg.roundtrip)
	return nil
}
