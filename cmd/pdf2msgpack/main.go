package main

import (
	stderrors "errors"
	"fmt"
	"io"
	"log"
	"os"
	"runtime"

	"github.com/a3tai/pdf2msgpack/internal/app"
	"github.com/a3tai/pdf2msgpack/internal/config"
	"github.com/a3tai/pdf2msgpack/internal/pdf/errors"
	"github.com/a3tai/pdf2msgpack/internal/sandbox"
	"golang.org/x/term"
)

var (
	version   = "dev"     // This will be set by build flags
	buildTime = "unknown" // This will be set by build flags
	gitCommit = "unknown" // This will be set by build flags
)

// setupLogging sends log output to stderr, since stdout carries the stream
func setupLogging(cfg *config.Config, stderr io.Writer) {
	log.SetPrefix("pdf2msgpack: ")
	log.SetFlags(0)
	log.SetOutput(stderr)

	switch {
	case cfg.LogLevel == "error":
		log.SetOutput(io.Discard)
	case cfg.IsDebug():
		log.SetFlags(log.Lshortfile)
	}
}

// warnIfTerminal notes when the binary stream is about to be written to a
// terminal.
func warnIfTerminal(stdout io.Writer) {
	f, ok := stdout.(*os.File)
	if ok && term.IsTerminal(int(f.Fd())) {
		log.Println("warning: writing binary output to a terminal")
	}
}

// run executes the tool and returns the process exit status.
func run(args []string, stdout, stderr io.Writer, install func() error) int {
	cfg, err := config.LoadFromArgs(args)
	if stderrors.Is(err, config.ErrVersionRequested) {
		printVersion(stdout)
		return errors.ExitOK
	}
	if err != nil {
		usageError(stderr, err)
		return errors.ExitUsage
	}

	setupLogging(cfg, stderr)
	if cfg.IsDebug() {
		log.Printf("configuration: %s", cfg)
	}
	warnIfTerminal(stdout)

	err = app.NewRunner(cfg, stdout, install).Run()
	if err == nil {
		return errors.ExitOK
	}

	code := errors.ExitCodeOf(err)
	if code == errors.ExitUsage {
		usageError(stderr, err)
	} else {
		fmt.Fprintf(stderr, "pdf2msgpack: %v\n", err)
	}
	return code
}

func usageError(stderr io.Writer, err error) {
	fmt.Fprintf(stderr, "Error: %v\n", err)
	fmt.Fprintln(stderr, config.Usage)
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr, sandbox.Install))
}

// printVersion prints version information
func printVersion(w io.Writer) {
	fmt.Fprintf(w, "pdf2msgpack\n")
	fmt.Fprintf(w, "Version: %s\n", version)
	fmt.Fprintf(w, "Build Time: %s\n", buildTime)
	fmt.Fprintf(w, "Git Commit: %s\n", gitCommit)
	fmt.Fprintf(w, "Sandbox: %t\n", sandbox.Enabled)
	fmt.Fprintf(w, "Built with: %s\n", runtime.Version())
}
