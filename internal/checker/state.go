package checker

import (
	"github.com/jfmengels/elm-language-server/internal/ast"
	"github.com/jfmengels/elm-language-server/internal/forest"
	"github.com/jfmengels/elm-language-server/internal/infer"
	"github.com/jfmengels/elm-language-server/internal/types"
)

// Status is the inference state of one declaration.
type Status int

const (
	StatusNotStarted Status = iota
	StatusInProgress
	StatusDone
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusInProgress:
		return "in progress"
	case StatusDone:
		return "done"
	case StatusFailed:
		return "failed"
	}
	return "not started"
}

type declState struct {
	status Status
	result *infer.Result
}

// fileState caches everything derived from one source file. It is valid
// while the forest stamp of the file is unchanged.
type fileState struct {
	stamp uint64
	file  *forest.SourceFile

	decls    map[*ast.ValueDecl]*declState
	nodes    map[ast.Node]types.Type
	schemes  map[ast.Node]*types.Scheme
	typeDefs map[ast.Decl]*infer.TypeDef
	busy     map[ast.Decl]bool
}

func newFileState(sf *forest.SourceFile, stamp uint64) *fileState {
	return &fileState{
		stamp:    stamp,
		file:     sf,
		decls:    map[*ast.ValueDecl]*declState{},
		nodes:    map[ast.Node]types.Type{},
		schemes:  map[ast.Node]*types.Scheme{},
		typeDefs: map[ast.Decl]*infer.TypeDef{},
		busy:     map[ast.Decl]bool{},
	}
}
