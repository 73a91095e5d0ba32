package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/howeyc/fsnotify"

	"github.com/nf/intcode/runner"
)

// devMode re-runs the configured program every time its input file
// changes. If debug is set the program runs under the interactive debugger
// instead, and each change swaps the new program into the debug session.
func devMode(cfg Config, debug bool) error {
	input := filepath.Clean(cfg.Input)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()
	if err := watcher.Watch(filepath.Dir(input)); err != nil {
		return err
	}

	if !debug {
		rerun := time.After(1 * time.Millisecond)
		for {
			select {
			case <-rerun:
				log.Printf("dev: run %s", filepath.Base(input))
				v, err := run(context.Background(), cfg)
				if err != nil {
					log.Printf("dev: %v", err)
					break
				}
				fmt.Println(v)
			case ev := <-watcher.Event:
				if ev.Name == input && !ev.IsAttrib() {
					rerun = time.After(100 * time.Millisecond)
				}
			case err := <-watcher.Error:
				log.Printf("dev: watcher: %v", err)
			}
		}
	}

	debugger := newDebugView()
	r := runner.New(true, cfg.Noun, cfg.Verb, debugger.StateFunc)
	debugger.r = r
	log.SetPrefix("")
	log.SetOutput(debugger.log)
	quit := make(chan bool)
	go func() {
		if err := debugger.Run(); err != nil {
			log.Fatalf("debug: %v", err)
		}
		log.SetOutput(os.Stderr)
		log.SetPrefix("intcode: ")
		close(quit)
	}()

	memCh := make(chan []int64)
	go func() {
		started := false
		reload := time.After(1 * time.Millisecond)
		for {
			select {
			case <-reload:
				log.Printf("dev: load %s", filepath.Base(input))
				mem, err := readProgram(input)
				if err != nil {
					log.Printf("dev: %v", err)
					break
				}
				if !started {
					log.Printf("dev: start")
					memCh <- mem
					started = true
				} else {
					log.Printf("dev: reset")
					r.Swap(mem)
				}
			case ev := <-watcher.Event:
				if ev.Name == input && !ev.IsAttrib() {
					reload = time.After(100 * time.Millisecond)
				}
			case err := <-watcher.Error:
				log.Printf("dev: watcher: %v", err)
			}
		}
	}()
	var mem []int64
	select {
	case mem = <-memCh:
	case <-quit:
		return nil
	}
	go func() {
		<-quit
		r.Debug("exit", 0)
	}()
	v, err := r.Run(mem)
	return debugResult(os.Stdout, v, err)
}

// debugResult prints the value a debug session halted with. Leaving the
// debugger before the program halts is not an error.
func debugResult(w io.Writer, v int64, err error) error {
	if errors.Is(err, runner.ErrExited) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("dev: %w", err)
	}
	_, err = fmt.Fprintln(w, v)
	return err
}
