// Package program owns the analysis state of one workspace folder.
package program

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"
	"sync"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	"github.com/jfmengels/elm-language-server/internal/checker"
	"github.com/jfmengels/elm-language-server/internal/config"
	"github.com/jfmengels/elm-language-server/internal/forest"
	"github.com/jfmengels/elm-language-server/internal/parser"
	"github.com/jfmengels/elm-language-server/internal/prelude"
	"github.com/jfmengels/elm-language-server/internal/scanner"
	"github.com/jfmengels/elm-language-server/internal/syntax"
	"github.com/oklog/ulid/v2"
	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("elmls.program")

// Program is the single entry point to the files and types of one
// workspace root.
type Program struct {
	ID     ulid.ULID
	root   string
	cfg    config.Config
	forest *forest.Forest
	pool   *parser.Pool
	elm    config.ElmJSON

	mu               sync.Mutex
	checker          *checker.TypeChecker
	checkerStructure uint64
	closed           bool
}

// New creates a Program for the workspace at root (a file URI) with the
// core modules already installed.
func New(root string, cfg config.Config) (*Program, error) {
	root = normalizeRoot(root)
	p := &Program{
		ID:     ulid.Make(),
		root:   root,
		cfg:    cfg,
		forest: forest.New(root),
		pool:   parser.NewPool(cfg.ParserPoolSize),
	}

	modules, err := prelude.Modules()
	if err != nil {
		p.pool.Close()
		return nil, err
	}
	for _, m := range modules {
		tree, err := syntax.Parse(context.Background(), p.pool, m.URI, m.Source)
		if err != nil {
			p.pool.Close()
			return nil, fmt.Errorf("failed to install %s: %w", m.Name, err)
		}
		p.forest.SetDependency(m.URI, tree)
	}
	log.Infof("program %s created for %s", p.ID, root)
	return p, nil
}

// RootPath returns the workspace root URI.
func (p *Program) RootPath() string { return p.root }

// ElmJSON returns the project file read by Load.
func (p *Program) ElmJSON() config.ElmJSON { return p.elm }

// Forest gives write access to the files. Consumers use GetForest.
func (p *Program) Forest() *forest.Forest { return p.forest }

// GetForest returns a read-only view of the workspace files.
func (p *Program) GetForest(includeTestFiles bool) forest.View {
	return p.forest.View(includeTestFiles)
}

// GetTypeChecker returns the type checker for the current forest. It is
// rebuilt when files were added or removed since the last call.
func (p *Program) GetTypeChecker() *checker.TypeChecker {
	p.mu.Lock()
	defer p.mu.Unlock()

	structure := p.forest.Structure()
	if p.checker == nil || p.checkerStructure != structure {
		log.Debugf("program %s: new type checker (structure %d)", p.ID, structure)
		p.checker = checker.New(p.forest)
		p.checkerStructure = structure
	}
	return p.checker
}

// Contains reports whether uri belongs to this workspace.
func (p *Program) Contains(uri string) bool {
	return within(p.root, uri)
}

// SetSource parses source and installs it as the content of uri.
func (p *Program) SetSource(ctx context.Context, uri string, source []byte) (*forest.SourceFile, error) {
	tree, err := syntax.Parse(ctx, p.pool, uri, source)
	if err != nil {
		return nil, err
	}
	return p.forest.Set(uri, tree), nil
}

// SetTree installs an already translated tree.
func (p *Program) SetTree(uri string, tree *syntax.Tree) *forest.SourceFile {
	return p.forest.Set(uri, tree)
}

// Remove drops uri from the workspace.
func (p *Program) Remove(uri string) error {
	return p.forest.Remove(uri)
}

// Load reads elm.json from fsys, which is rooted at the workspace root,
// and installs every module of the source directories and of tests/.
func (p *Program) Load(ctx context.Context, fsys billy.Filesystem) error {
	elm, err := readElmJSON(fsys, p.cfg.ElmJSON)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		log.Warningf("program %s: no %s, assuming an application in src/", p.ID, p.cfg.ElmJSON)
	case err != nil:
		return err
	}
	if err := elm.CheckVersion(config.CompilerVersion); err != nil {
		return err
	}
	p.elm = elm

	base := path.Dir(p.cfg.ElmJSON)
	seen := map[string]bool{}
	count := 0
	for _, d := range append(elm.Sources(), "tests") {
		dir := path.Join(base, d)
		if dir == ".." || strings.HasPrefix(dir, "../") {
			log.Warningf("program %s: source directory %s is outside the workspace", p.ID, d)
			continue
		}
		if seen[dir] {
			continue
		}
		seen[dir] = true
		if _, err := fsys.Stat(dir); err != nil {
			log.Debugf("program %s: skipping %s: %s", p.ID, dir, err)
			continue
		}

		skip := func(relPath string, _ fs.FileInfo) bool {
			return p.cfg.Excluded(relPath)
		}
		callback := func(relPath string, document []byte) {
			if ctx.Err() != nil {
				return
			}
			uri, err := JoinURI(p.root, relPath)
			if err != nil {
				log.Errorf("program %s: %s", p.ID, err)
				return
			}
			if _, err := p.SetSource(ctx, uri, document); err != nil {
				log.Errorf("program %s: %s", p.ID, err)
				return
			}
			count++
		}
		if err := scanner.Scan(fsys, dir, skip, callback); err != nil {
			return fmt.Errorf("failed to scan %s: %w", dir, err)
		}
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	log.Infof("program %s: loaded %d module(s)", p.ID, count)
	return nil
}

func readElmJSON(fsys billy.Filesystem, name string) (config.ElmJSON, error) {
	data, err := util.ReadFile(fsys, name)
	if err != nil {
		return config.ElmJSON{}, fmt.Errorf("failed to read %s: %w", name, err)
	}
	return config.ParseElmJSON(strings.NewReader(string(data)))
}

// Close releases the parsers. The Program must not be used afterwards.
func (p *Program) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	p.checker = nil
	log.Infof("program %s closed", p.ID)
	return p.pool.Close()
}
