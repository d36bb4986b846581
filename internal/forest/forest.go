// Package forest holds every source file of a workspace together with
// the import graph between them.
package forest

import (
	"errors"
	"fmt"
	"iter"
	"strings"
	"sync"

	"github.com/jfmengels/elm-language-server/internal/ast"
	"github.com/jfmengels/elm-language-server/internal/syntax"
	"github.com/tliron/commonlog"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

var log = commonlog.GetLogger("elmls.forest")

// ErrNotFound is returned when no file is installed for a URI.
var ErrNotFound = errors.New("forest: file not found")

// Forest is the set of source files of one workspace. Writes are
// expected from a single goroutine; reads may happen concurrently.
type Forest struct {
	mu        sync.RWMutex
	root      string
	ids       map[string]FileID
	files     map[FileID]*SourceFile
	modules   map[string]idSet
	graph     graph
	stamps    map[FileID]uint64
	clock     uint64
	structure uint64
	nextID    FileID

	subMu       sync.Mutex
	subscribers map[int]chan Event
	nextSubID   int
}

// New creates an empty Forest for the workspace rooted at root (a URI
// without trailing slash).
func New(root string) *Forest {
	return &Forest{
		root:        strings.TrimSuffix(root, "/"),
		ids:         make(map[string]FileID),
		files:       make(map[FileID]*SourceFile),
		modules:     make(map[string]idSet),
		graph:       newGraph(),
		stamps:      make(map[FileID]uint64),
		subscribers: make(map[int]chan Event),
	}
}

// Root returns the workspace root URI.
func (f *Forest) Root() string { return f.root }

// Set installs tree as the content of uri, replacing any previous file,
// and marks every file that transitively imports it dirty.
func (f *Forest) Set(uri string, tree *syntax.Tree) *SourceFile {
	return f.set(uri, tree, false)
}

// SetDependency installs a file that belongs to a package rather than to
// the workspace. Dependencies are never listed by Values.
func (f *Forest) SetDependency(uri string, tree *syntax.Tree) *SourceFile {
	return f.set(uri, tree, true)
}

func (f *Forest) set(uri string, tree *syntax.Tree, dependency bool) *SourceFile {
	f.mu.Lock()
	defer f.mu.Unlock()

	id, existed := f.ids[uri]
	if !existed {
		f.nextID++
		id = f.nextID
		f.ids[uri] = id
	}
	old := f.files[id]
	if old == nil {
		f.structure++
	}

	sf := newSourceFile(id, uri, tree.File, tree.Source, tree.Diagnostics)
	sf.IsDependency = dependency
	sf.IsTestFile = !dependency && isTestFile(f.root, uri)
	if old != nil {
		sf.Version = old.Version + 1
	}

	affected := []FileID{id}
	if old != nil {
		affected = append(affected, sorted(f.graph.back[id])...)
		for _, m := range old.ImportedModules() {
			f.graph.removeImporter(m, id)
		}
		if old.ModuleName != sf.ModuleName {
			f.removeProvider(old.ModuleName, id)
			affected = append(affected, f.relinkImportersOf(old.ModuleName)...)
		}
	}
	f.files[id] = sf
	if old == nil {
		f.emit(Event{Type: CreateFile, File: fileEvent(sf)})
	} else {
		f.emit(Event{Type: UpdateFile, File: fileEvent(sf)})
	}
	for _, m := range sf.ImportedModules() {
		f.graph.addImporter(m, id)
	}
	if old == nil || old.ModuleName != sf.ModuleName {
		f.addProvider(sf.ModuleName, id)
		affected = append(affected, f.relinkImportersOf(sf.ModuleName)...)
	}
	f.relink(id)

	dirty := f.markDirty(affected...)
	log.Debugf("set %s (module %s, version %d), %d file(s) dirty", uri, sf.ModuleName, sf.Version, len(dirty))
	return sf
}

// Remove deletes the file installed for uri and marks its importers dirty.
func (f *Forest) Remove(uri string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	id, ok := f.ids[uri]
	if !ok || f.files[id] == nil {
		return fmt.Errorf("%w: %s", ErrNotFound, uri)
	}
	sf := f.files[id]
	importers := sorted(f.graph.back[id])

	for _, m := range sf.ImportedModules() {
		f.graph.removeImporter(m, id)
	}
	for _, tgt := range sorted(f.graph.forward[id]) {
		f.emit(Event{Type: DeleteImport, Import: &ImportEvent{Source: id, Target: tgt}})
	}
	f.graph.setEdges(id, nil)
	delete(f.files, id)
	f.removeProvider(sf.ModuleName, id)
	importers = append(importers, f.relinkImportersOf(sf.ModuleName)...)
	delete(f.stamps, id)
	f.structure++

	f.emit(Event{Type: DeleteFile, File: fileEvent(sf)})
	f.markDirty(importers...)
	log.Debugf("removed %s", uri)
	return nil
}

func (f *Forest) addProvider(module string, id FileID) {
	if f.modules[module] == nil {
		f.modules[module] = make(idSet)
	}
	f.modules[module][id] = struct{}{}
}

func (f *Forest) removeProvider(module string, id FileID) {
	if set := f.modules[module]; set != nil {
		delete(set, id)
		if len(set) == 0 {
			delete(f.modules, module)
		}
	}
}

// provider picks the file that answers for a module name: workspace files
// before dependencies, then the lowest URI.
func (f *Forest) provider(module string) (*SourceFile, bool) {
	var best *SourceFile
	for id := range f.modules[module] {
		sf := f.files[id]
		if best == nil ||
			(best.IsDependency && !sf.IsDependency) ||
			(best.IsDependency == sf.IsDependency && sf.URI < best.URI) {
			best = sf
		}
	}
	return best, best != nil
}

// relink recomputes the forward import edges of id.
func (f *Forest) relink(id FileID) {
	sf := f.files[id]
	targets := make(idSet)
	for _, m := range sf.ImportedModules() {
		if p, ok := f.provider(m); ok && p.ID != id {
			targets[p.ID] = struct{}{}
		}
	}
	added, removed := f.graph.setEdges(id, targets)
	for _, tgt := range removed {
		f.emit(Event{Type: DeleteImport, Import: &ImportEvent{Source: id, Target: tgt}})
	}
	for _, tgt := range added {
		f.emit(Event{Type: CreateImport, Import: &ImportEvent{Source: id, Target: tgt}})
	}
}

// relinkImportersOf relinks every file importing module and returns them.
func (f *Forest) relinkImportersOf(module string) []FileID {
	importers := sorted(f.graph.importers[module])
	for _, id := range importers {
		if f.files[id] != nil {
			f.relink(id)
		}
	}
	return importers
}

// markDirty invalidates the start files and everything that transitively
// imports them. Analysis caches compare stamps to notice.
func (f *Forest) markDirty(start ...FileID) []FileID {
	dirty := f.graph.reachableBack(f.nextID, start...)
	for _, id := range dirty {
		sf, ok := f.files[id]
		if !ok {
			continue
		}
		f.clock++
		f.stamps[id] = f.clock
		sf.clearTypeDiagnostics()
	}
	return dirty
}

// Get returns the file installed for uri.
func (f *Forest) Get(uri string) (*SourceFile, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if id, ok := f.ids[uri]; ok {
		if sf := f.files[id]; sf != nil {
			return sf, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, uri)
}

// ByID returns the file with the given id.
func (f *Forest) ByID(id FileID) (*SourceFile, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	sf, ok := f.files[id]
	return sf, ok
}

// Lookup returns the file that provides module.
func (f *Forest) Lookup(module string) (*SourceFile, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.provider(module)
}

// FileOf returns the installed file that owns node, failing for nodes of
// replaced trees.
func (f *Forest) FileOf(n ast.Node) (*SourceFile, bool) {
	tree := n.File()
	if tree == nil {
		return nil, false
	}
	sf, err := f.Get(tree.URI)
	if err != nil || sf.Tree != tree {
		return nil, false
	}
	return sf, true
}

// Stamp returns the analysis stamp of id. It changes whenever the file or
// anything it imports, directly or not, changes.
func (f *Forest) Stamp(id FileID) uint64 {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.stamps[id]
}

// Structure changes whenever a file is added or removed.
func (f *Forest) Structure() uint64 {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.structure
}

// Imports returns the files id imports.
func (f *Forest) Imports(id FileID) []FileID {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return sorted(f.graph.forward[id])
}

// Importers returns the files importing id.
func (f *Forest) Importers(id FileID) []FileID {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return sorted(f.graph.back[id])
}

// Values returns the workspace files ordered by URI, test files only when
// includeTests is set. Every range over the result takes a fresh snapshot.
func (f *Forest) Values(includeTests bool) iter.Seq[*SourceFile] {
	return func(yield func(*SourceFile) bool) {
		f.mu.RLock()
		snapshot := make([]*SourceFile, 0, len(f.files))
		for _, sf := range f.files {
			if sf.IsDependency || (sf.IsTestFile && !includeTests) {
				continue
			}
			snapshot = append(snapshot, sf)
		}
		f.mu.RUnlock()
		slices.SortFunc(snapshot, func(a, b *SourceFile) int {
			return strings.Compare(a.URI, b.URI)
		})
		for _, sf := range snapshot {
			if !yield(sf) {
				return
			}
		}
	}
}

// Modules returns the module names that have a provider, sorted.
func (f *Forest) Modules() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := maps.Keys(f.modules)
	slices.Sort(out)
	return out
}

// View is a read-only window on a Forest that filters test files.
type View struct {
	forest       *Forest
	includeTests bool
}

// View returns a read-only window on f.
func (f *Forest) View(includeTests bool) View {
	return View{forest: f, includeTests: includeTests}
}

// Get returns the file for uri, hiding test files when the view excludes
// them.
func (v View) Get(uri string) (*SourceFile, error) {
	sf, err := v.forest.Get(uri)
	if err != nil {
		return nil, err
	}
	if sf.IsTestFile && !v.includeTests {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, uri)
	}
	return sf, nil
}

// Values is Forest.Values with the view's test filter.
func (v View) Values() iter.Seq[*SourceFile] {
	return v.forest.Values(v.includeTests)
}

// Lookup returns the provider of module.
func (v View) Lookup(module string) (*SourceFile, bool) {
	return v.forest.Lookup(module)
}
