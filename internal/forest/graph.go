package forest

import (
	"github.com/bits-and-blooms/bitset"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

type idSet map[FileID]struct{}

// graph is the import adjacency between files. Importers are also indexed
// by module name so a module that appears later can be linked to them.
type graph struct {
	forward   map[FileID]idSet
	back      map[FileID]idSet
	importers map[string]idSet
}

func newGraph() graph {
	return graph{
		forward:   make(map[FileID]idSet),
		back:      make(map[FileID]idSet),
		importers: make(map[string]idSet),
	}
}

func (g *graph) addImporter(module string, id FileID) {
	if g.importers[module] == nil {
		g.importers[module] = make(idSet)
	}
	g.importers[module][id] = struct{}{}
}

func (g *graph) removeImporter(module string, id FileID) {
	if set := g.importers[module]; set != nil {
		delete(set, id)
		if len(set) == 0 {
			delete(g.importers, module)
		}
	}
}

// setEdges replaces the forward edges of src and returns the edges that
// were added and removed.
func (g *graph) setEdges(src FileID, targets idSet) (added, removed []FileID) {
	existing := g.forward[src]
	for tgt := range existing {
		if _, keep := targets[tgt]; keep {
			continue
		}
		if bl := g.back[tgt]; bl != nil {
			delete(bl, src)
			if len(bl) == 0 {
				delete(g.back, tgt)
			}
		}
		removed = append(removed, tgt)
	}
	for tgt := range targets {
		if _, ok := existing[tgt]; ok {
			continue
		}
		if g.back[tgt] == nil {
			g.back[tgt] = make(idSet)
		}
		g.back[tgt][src] = struct{}{}
		added = append(added, tgt)
	}
	if len(targets) == 0 {
		delete(g.forward, src)
	} else {
		g.forward[src] = targets
	}
	slices.Sort(added)
	slices.Sort(removed)
	return added, removed
}

func sorted(set idSet) []FileID {
	out := maps.Keys(set)
	slices.Sort(out)
	return out
}

// reachableBack walks importer edges breadth first from the start files,
// start files included. Cycles are fine: each file is visited once.
func (g *graph) reachableBack(limit FileID, start ...FileID) []FileID {
	visited := bitset.New(uint(limit) + 1)
	queue := make([]FileID, 0, len(start))
	for _, id := range start {
		if !visited.Test(uint(id)) {
			visited.Set(uint(id))
			queue = append(queue, id)
		}
	}
	for i := 0; i < len(queue); i++ {
		for _, importer := range sorted(g.back[queue[i]]) {
			if visited.Test(uint(importer)) {
				continue
			}
			visited.Set(uint(importer))
			queue = append(queue, importer)
		}
	}
	return queue
}
