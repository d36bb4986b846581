package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/jfmengels/elm-language-server/internal/config"
	"github.com/jfmengels/elm-language-server/internal/program"
)

// runDump loads the workspace in dir and writes every top-level value
// with its type, followed by the diagnostics of each file.
func runDump(dir, configPath string, w io.Writer) error {
	cfg := config.Default()
	if configPath != "" {
		f, err := os.Open(configPath)
		if err != nil {
			return err
		}
		defer f.Close()
		if cfg, err = config.LoadFromJSON(f); err != nil {
			return fmt.Errorf("failed to read %s: %w", configPath, err)
		}
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return err
	}
	p, err := program.New(program.PathToURI(abs), cfg)
	if err != nil {
		return err
	}
	defer p.Close()
	if err := p.Load(context.Background(), osfs.New(abs)); err != nil {
		return err
	}

	tc := p.GetTypeChecker()
	for sf := range p.GetForest(true).Values() {
		rel, err := program.RelPath(p.RootPath(), sf.URI)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "-- %s (%s)\n", sf.ModuleName, rel)
		for _, d := range sf.Tree.Values() {
			if d.Name == "" {
				continue
			}
			fmt.Fprintf(w, "%s : %s\n", d.Name, tc.TypeToStringIn(tc.DeclarationType(sf, d), sf))
		}
		for _, d := range tc.CheckFile(sf) {
			fmt.Fprintf(w, "%s:%d:%d: %s\n", rel, d.Span.Start.Row+1, d.Span.Start.Column+1, d.Message)
		}
	}
	return nil
}
