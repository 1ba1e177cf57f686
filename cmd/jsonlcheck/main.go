// Command jsonlcheck validates JSON Lines files.
//
// Each argument is a file or a directory searched recursively for .jsonl
// files. Every file is loaded the way the server loads it; the first invalid
// line of a file is reported with its 1-based line number. The exit code is 1
// when any file fails.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/maruel/jsonledit/internal/jsonldb"
	"github.com/maruel/jsonledit/internal/storage"
)

var (
	okString   = color.New(color.FgGreen).SprintFunc()
	failString = color.New(color.FgRed, color.Bold).SprintFunc()
	lineString = color.New(color.FgYellow).SprintfFunc()
)

func main() {
	if err := mainImpl(); err != nil {
		fmt.Fprintf(os.Stderr, "jsonlcheck: %v\n", err)
		os.Exit(1)
	}
}

func mainImpl() error {
	maxLine := flag.Int("max-line", jsonldb.DefaultMaxLineBytes, "Longest accepted line in bytes")
	quiet := flag.Bool("q", false, "Only print failures")
	noColor := flag.Bool("no-color", false, "Disable colors")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: jsonlcheck [flags] [path...]\n")
		flag.PrintDefaults()
	}
	flag.Parse()
	if *noColor {
		color.NoColor = true
	}
	args := flag.Args()
	if len(args) == 0 {
		args = []string{"."}
	}
	files, err := expand(args)
	if err != nil {
		return err
	}
	c := checker{store: &jsonldb.Store{MaxLineBytes: *maxLine}, w: os.Stdout, quiet: *quiet}
	if failed := c.run(files); failed != 0 {
		return fmt.Errorf("%d of %d file(s) failed", failed, len(files))
	}
	return nil
}

// expand replaces directories in paths with the record files they contain.
// Hidden directories are skipped.
func expand(paths []string) ([]string, error) {
	var out []string
	for _, p := range paths {
		fi, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if !fi.IsDir() {
			out = append(out, p)
			continue
		}
		err = filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if path != p && strings.HasPrefix(d.Name(), ".") {
					return filepath.SkipDir
				}
				return nil
			}
			if filepath.Ext(path) == storage.Extension {
				out = append(out, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

type checker struct {
	store *jsonldb.Store
	w     io.Writer
	quiet bool
}

// run checks every file and returns the number of failures.
func (c *checker) run(files []string) int {
	failed := 0
	for _, f := range files {
		rows, err := c.store.Load(f)
		if err == nil {
			if !c.quiet {
				fmt.Fprintf(c.w, "%s  %s (%d records)\n", okString("ok"), f, len(rows))
			}
			continue
		}
		failed++
		var pe *jsonldb.ParseError
		if errors.As(err, &pe) {
			fmt.Fprintf(c.w, "%s %s: %v\n", failString("FAIL"), lineString("%s:%d", f, pe.Line), pe.Err)
		} else {
			fmt.Fprintf(c.w, "%s %s: %v\n", failString("FAIL"), f, err)
		}
	}
	return failed
}
