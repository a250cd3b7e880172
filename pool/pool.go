// Package pool indexes the exported symbols of many artifacts and reports
// the names more than one of them exports.
package pool

import (
	"errors"
	"slices"
	"strings"
	"sync"

	"github.com/ZenLiuCN/fn"
)

type (
	// Exports are the symbol names one artifact exports.
	Exports struct {
		Path    string
		Symbols []string
	}
	// Duplicate is a symbol exported by more than one artifact.
	Duplicate struct {
		Symbol string
		Owners []string // sorted artifact paths
	}
	// Pool is a reverse index from symbol to the artifacts exporting it.
	// It is safe for concurrent use.
	Pool struct {
		artifacts map[string][]string
		owners    map[string]map[string]struct{}
		sync.RWMutex
	}
)

var (
	ErrAlreadyLoad = errors.New("artifact already added")
	ErrNotLoad     = errors.New("artifact not added")
)

// NewPool create new pool
func NewPool() *Pool {
	return &Pool{
		artifacts: make(map[string][]string),
		owners:    make(map[string]map[string]struct{}),
	}
}

// Add indexes e. An artifact can only be added once; use Replace to update it.
func (p *Pool) Add(e Exports) error {
	p.Lock()
	defer p.Unlock()
	if _, ok := p.artifacts[e.Path]; ok {
		return ErrAlreadyLoad
	}
	p.register(e)
	return nil
}

// Replace indexes e, dropping what was indexed for the same path before.
func (p *Pool) Replace(e Exports) {
	p.Lock()
	defer p.Unlock()
	if _, ok := p.artifacts[e.Path]; ok {
		p.unregister(e.Path)
	}
	p.register(e)
}

// Remove drops an artifact from the index.
func (p *Pool) Remove(path string) error {
	p.Lock()
	defer p.Unlock()
	if _, ok := p.artifacts[path]; !ok {
		return ErrNotLoad
	}
	p.unregister(path)
	return nil
}

func (p *Pool) register(e Exports) {
	syms := make([]string, 0, len(e.Symbols))
	for _, s := range e.Symbols {
		set, ok := p.owners[s]
		if !ok {
			set = make(map[string]struct{})
			p.owners[s] = set
		}
		if _, ok = set[e.Path]; ok {
			continue
		}
		set[e.Path] = struct{}{}
		syms = append(syms, s)
	}
	p.artifacts[e.Path] = syms
}

func (p *Pool) unregister(path string) {
	for _, s := range p.artifacts[path] {
		delete(p.owners[s], path)
		if len(p.owners[s]) == 0 {
			delete(p.owners, s)
		}
	}
	delete(p.artifacts, path)
}

// Owners returns the sorted paths exporting symbol.
func (p *Pool) Owners(symbol string) []string {
	p.RLock()
	defer p.RUnlock()
	return sorted(p.owners[symbol])
}

// Artifacts returns the sorted paths in the pool.
func (p *Pool) Artifacts() []string {
	p.RLock()
	defer p.RUnlock()
	v := fn.MapKeys(p.artifacts)
	slices.Sort(v)
	return v
}

// Duplicates lists the symbols with more than one owner, sorted by symbol.
func (p *Pool) Duplicates() (v []Duplicate) {
	p.RLock()
	defer p.RUnlock()
	for s, set := range p.owners {
		if len(set) > 1 {
			v = append(v, Duplicate{Symbol: s, Owners: sorted(set)})
		}
	}
	slices.SortFunc(v, func(a, b Duplicate) int {
		return strings.Compare(a.Symbol, b.Symbol)
	})
	return
}

// FindDuplicates reports the symbols exported by more than one artifact.
// Repeats inside one artifact, or the same path listed twice, count once.
func FindDuplicates(list []Exports) []Duplicate {
	p := NewPool()
	for _, e := range list {
		if err := p.Add(e); err != nil {
			prev := p.artifacts[e.Path]
			p.Replace(Exports{Path: e.Path, Symbols: append(slices.Clip(prev), e.Symbols...)})
		}
	}
	return p.Duplicates()
}

func sorted(set map[string]struct{}) []string {
	if len(set) == 0 {
		return nil
	}
	v := fn.MapKeys(set)
	slices.Sort(v)
	return v
}
