// Classrun CLI - the entry point for running compiled classes.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/chazu/classrun/pkg/classfile"
	"github.com/chazu/classrun/pkg/classfinder"
	"github.com/chazu/classrun/pkg/config"
	"github.com/chazu/classrun/pkg/crashlog"
	"github.com/chazu/classrun/pkg/heap"
	"github.com/chazu/classrun/pkg/interp"
	"github.com/chazu/classrun/pkg/natives"
	"github.com/chazu/classrun/pkg/profile"
)

func main() {
	// run, not main itself, carries the body: os.Exit skips every
	// deferred call in the frame that calls it, so closing the crash
	// log, profile sink, and resolution cache has to happen before
	// main returns the exit code up to this one os.Exit.
	os.Exit(run())
}

func run() int {
	configDir := flag.String("config", ".", "Directory containing classrun.toml")
	classpath := flag.String("cp", "", "Classpath root to search (repeatable via classrun.toml's classpath list)")
	trace := flag.Bool("trace", false, "Log every dispatched opcode to stderr")
	noCrashLog := flag.Bool("no-crashlog", false, "Don't persist uncaught exceptions to the crash log")
	noProfile := flag.Bool("no-profile", false, "Don't record opcode frequencies")
	noRescache := flag.Bool("no-rescache", false, "Don't warm or update the cross-run resolution-hint cache")
	threads := flag.Int("threads", 1, "Run main() concurrently on this many threads, for benchmark/stress runs")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: classrun [options] <main-class> [args...]\n\n")
		fmt.Fprintf(os.Stderr, "Runs <main-class>'s main([Ljava/lang/String;)V against the configured classpath.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  classrun Main                      # Run Main using ./classrun.toml\n")
		fmt.Fprintf(os.Stderr, "  classrun -cp ./out Main a b c       # Run with an extra classpath root\n")
		fmt.Fprintf(os.Stderr, "  classrun -trace Main                # Log every opcode dispatched\n")
		fmt.Fprintf(os.Stderr, "  classrun -threads 8 Main             # Run main() on 8 concurrent threads\n")
	}
	flag.Parse()

	args := flag.Args()
	if len(args) < 1 {
		flag.Usage()
		return 2
	}
	className, programArgs := args[0], args[1:]

	cfg, err := config.Load(*configDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "classrun: %v\n", err)
		return 1
	}
	roots := cfg.Classpath
	if *classpath != "" {
		roots = append(roots, *classpath)
	}

	finder := classfinder.NewPathFinder(roots...)
	h := heap.NewArenaHeap()
	builtins := natives.NewTable()

	var libs []interp.Library
	for _, path := range cfg.LibPath {
		lib, err := interp.OpenPluginLibrary(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "classrun: warning: could not open native library %s: %v\n", path, err)
			continue
		}
		libs = append(libs, lib)
	}

	vm := interp.NewMachine(h, finder, interp.NewLibraryChain(libs, builtins))
	vm.Trace = *trace || cfg.Trace

	if cfg.Crash.Enabled && !*noCrashLog {
		log, err := crashlog.Open(cfg.Crash.DBPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "classrun: warning: could not open crash log: %v\n", err)
		} else {
			defer log.Close()
			vm.Crash = log
		}
	}

	if cfg.Profile.Enabled && !*noProfile {
		sink, err := profile.Open(cfg.Profile.DBPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "classrun: warning: could not open profile sink: %v\n", err)
		} else {
			defer sink.Close()
			vm.Profile = sink
		}
	}

	if cfg.Resolve.Enabled && !*noRescache {
		rc, err := classfile.LoadResolutionCache(cfg.Resolve.CachePath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "classrun: warning: could not load resolution cache: %v\n", err)
		} else {
			vm.ResCache = rc
			defer func() {
				if err := rc.Save(cfg.Resolve.CachePath); err != nil {
					fmt.Fprintf(os.Stderr, "classrun: warning: could not save resolution cache: %v\n", err)
				}
			}()
		}
	}

	return vm.RunMainN(className, cfg.StackWords, programArgs, *threads)
}
