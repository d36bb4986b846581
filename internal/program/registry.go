package program

import (
	"errors"
	"fmt"
	"sort"

	"github.com/jfmengels/elm-language-server/internal/config"
	cmap "github.com/orcaman/concurrent-map/v2"
)

var ErrWorkspaceNotFound = errors.New("workspace not found")

// WorkspaceNotFoundError is returned for a URI outside every open root.
type WorkspaceNotFoundError struct {
	URI string
}

func (e *WorkspaceNotFoundError) Error() string {
	return fmt.Sprintf("workspace not found for %s", e.URI)
}

func (e *WorkspaceNotFoundError) Is(target error) bool {
	return target == ErrWorkspaceNotFound
}

// Registry holds the Programs of every open workspace folder.
type Registry struct {
	programs cmap.ConcurrentMap[string, *Program]
}

func NewRegistry() *Registry {
	return &Registry{programs: cmap.New[*Program]()}
}

// Open returns the Program for root, creating it on first use.
func (r *Registry) Open(root string, cfg config.Config) (*Program, error) {
	root = normalizeRoot(root)
	if p, ok := r.programs.Get(root); ok {
		return p, nil
	}
	p, err := New(root, cfg)
	if err != nil {
		return nil, err
	}
	if !r.programs.SetIfAbsent(root, p) {
		p.Close()
		existing, _ := r.programs.Get(root)
		return existing, nil
	}
	return p, nil
}

// Close tears down the Program for root.
func (r *Registry) Close(root string) error {
	root = normalizeRoot(root)
	p, ok := r.programs.Pop(root)
	if !ok {
		return &WorkspaceNotFoundError{URI: root}
	}
	return p.Close()
}

// CloseAll tears down every Program.
func (r *Registry) CloseAll() {
	for _, p := range r.Programs() {
		r.programs.Remove(p.RootPath())
		if err := p.Close(); err != nil {
			log.Errorf("closing %s: %s", p.RootPath(), err)
		}
	}
}

// Route returns the Program whose root is the longest prefix of uri.
func (r *Registry) Route(uri string) (*Program, error) {
	var best *Program
	for item := range r.programs.IterBuffered() {
		if !within(item.Key, uri) {
			continue
		}
		if best == nil || len(item.Key) > len(best.RootPath()) {
			best = item.Val
		}
	}
	if best == nil {
		return nil, &WorkspaceNotFoundError{URI: uri}
	}
	return best, nil
}

// Programs returns the open Programs ordered by root.
func (r *Registry) Programs() []*Program {
	out := make([]*Program, 0, r.programs.Count())
	for _, p := range r.programs.Items() {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].RootPath() < out[j].RootPath()
	})
	return out
}
