// Command intcode runs Intcode programs and searches for the noun and verb
// that make a program produce a given value.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"runtime/pprof"
	"strconv"

	"github.com/nf/intcode/intcode"
	"github.com/nf/intcode/search"
	"github.com/nf/intcode/store"
)

func main() {
	log.SetPrefix("intcode: ")
	log.SetFlags(0)

	var (
		configFlag = flag.String("config", defaultConfigFile, "read settings from `file`")
		devFlag    = flag.Bool("dev", false, "enable developer mode (re-run when the input changes)")
		debugFlag  = flag.Bool("debug", false, "enable debugger (implies -dev)")

		cpuProfileFlag = flag.String("cpu_profile", "", "write CPU profile to `file`")
	)
	def := defaultConfig()
	flag.Int64("noun", def.Noun, "value stored in cell 1 before running")
	flag.Int64("verb", def.Verb, "value stored in cell 2 before running")
	flag.Bool("search", false, "search for the noun and verb that produce -target")
	flag.Int64("target", def.Target, "value of cell 0 to search for")
	flag.Int("workers", def.Workers, "number of concurrent search workers")
	flag.String("cache", "", "cache search answers in the database `file`")
	flag.Bool("trace", false, "log every executed instruction")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] [program.txt]\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "       %s <-dev | -debug> [flags] [program.txt]\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(2)
	}
	flag.Parse()
	if flag.NArg() > 1 {
		flag.Usage()
	}

	configSet := false
	flag.Visit(func(f *flag.Flag) { configSet = configSet || f.Name == "config" })
	cfg, err := loadConfig(*configFlag, configSet)
	if err != nil {
		log.Fatal(err)
	}
	if err := applyFlags(&cfg, flag.CommandLine); err != nil {
		log.Fatal(err)
	}
	if flag.NArg() == 1 {
		cfg.Input = flag.Arg(0)
	}
	if cfg.Input == "" {
		flag.Usage()
	}

	if *devFlag || *debugFlag {
		if err := devMode(cfg, *debugFlag); err != nil {
			log.Fatal(err)
		}
		return
	}

	var cpuProfile io.Closer
	if prof := *cpuProfileFlag; prof != "" {
		f, err := os.Create(prof)
		if err != nil {
			log.Fatalf("creating CPU profile file: %v", err)
		}
		pprof.StartCPUProfile(f)
		cpuProfile = f
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	v, err := run(ctx, cfg)
	stop()

	if f := cpuProfile; f != nil {
		pprof.StopCPUProfile()
		f.Close()
	}

	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(v)
}

// applyFlags copies the flags that were set explicitly in fs into cfg.
func applyFlags(cfg *Config, fs *flag.FlagSet) (err error) {
	fs.Visit(func(f *flag.Flag) {
		if err != nil {
			return
		}
		s := f.Value.String()
		switch f.Name {
		case "noun":
			cfg.Noun, err = strconv.ParseInt(s, 10, 64)
		case "verb":
			cfg.Verb, err = strconv.ParseInt(s, 10, 64)
		case "target":
			cfg.Target, err = strconv.ParseInt(s, 10, 64)
		case "search":
			cfg.Search, err = strconv.ParseBool(s)
		case "trace":
			cfg.Trace, err = strconv.ParseBool(s)
		case "cache":
			cfg.Cache = s
		case "workers":
			cfg.Workers, err = strconv.Atoi(s)
			if err == nil && cfg.Workers < 1 {
				err = fmt.Errorf("workers must be at least 1, got %d", cfg.Workers)
			}
		}
		if err != nil {
			err = fmt.Errorf("-%s: %w", f.Name, err)
		}
	})
	return err
}

// run loads the configured program and either runs it with the configured
// noun and verb or searches for the pair that produces the target.
func run(ctx context.Context, cfg Config) (int64, error) {
	mem, err := readProgram(cfg.Input)
	if err != nil {
		return 0, err
	}
	if cfg.Search {
		return solve(ctx, cfg, mem)
	}
	p := intcode.New(mem)
	if err := p.SetParameters(cfg.Noun, cfg.Verb); err != nil {
		return 0, err
	}
	var logf intcode.Logf
	if cfg.Trace {
		logf = log.Printf
	}
	if err := p.Exec(logf); err != nil {
		return 0, err
	}
	return p.ReadCell(0)
}

// solve searches mem for cfg.Target, consulting the answer cache first if
// one is configured.
func solve(ctx context.Context, cfg Config, mem []int64) (int64, error) {
	var (
		cache *store.BoltStore
		key   []byte
	)
	if cfg.Cache != "" {
		var err error
		cache, err = store.Open(store.DefaultConfig(cfg.Cache))
		if err != nil {
			return 0, fmt.Errorf("cache: %w", err)
		}
		defer cache.Close()
		key = store.Key(mem, cfg.Target)
		if v, ok, err := cache.Get(key); err != nil {
			log.Printf("cache: %v", err)
		} else if ok {
			log.Printf("cache: hit for target %d", cfg.Target)
			return v, nil
		}
	}

	var (
		v   int64
		err error
	)
	if cfg.Workers > 1 {
		v, err = search.SearchParallel(ctx, mem, cfg.Target, cfg.Workers)
	} else {
		v, err = search.Search(mem, cfg.Target)
	}
	if errors.Is(err, search.ErrNoSolution) {
		return 0, fmt.Errorf("target %d: %w", cfg.Target, err)
	}
	if err != nil {
		return 0, err
	}

	if cache != nil {
		if err := cache.Put(key, v); err != nil {
			log.Printf("cache: %v", err)
		}
	}
	return v, nil
}
