package sitteradapter_test

import (
	"testing"

	"github.com/jfmengels/elm-language-server/internal/ast"
	"github.com/jfmengels/elm-language-server/internal/sitteradapter"
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/stretchr/testify/assert"
	lsp "github.com/tliron/glsp/protocol_3_16"
)

func change(startLine, startChar, endLine, endChar uint32, text string) lsp.TextDocumentContentChangeEvent {
	return lsp.TextDocumentContentChangeEvent{
		Range: &lsp.Range{
			Start: lsp.Position{Line: startLine, Character: startChar},
			End:   lsp.Position{Line: endLine, Character: endChar},
		},
		Text: text,
	}
}

func TestEditInput(t *testing.T) {
	doc := "module Main exposing (..)\n\nanswer =\n    42\n"

	tests := []struct {
		name    string
		change  lsp.TextDocumentContentChangeEvent
		want    sitter.EditInput
		updated string
	}{
		{
			name:   "replace on one line",
			change: change(3, 4, 3, 6, "4200"),
			want: sitter.EditInput{
				StartIndex:  40,
				OldEndIndex: 42,
				NewEndIndex: 44,
				StartPoint:  sitter.Point{Row: 3, Column: 4},
				OldEndPoint: sitter.Point{Row: 3, Column: 6},
				NewEndPoint: sitter.Point{Row: 3, Column: 8},
			},
			updated: "module Main exposing (..)\n\nanswer =\n    4200\n",
		},
		{
			name:   "insert lines",
			change: change(2, 0, 2, 0, "x =\n    1\n\n"),
			want: sitter.EditInput{
				StartIndex:  27,
				OldEndIndex: 27,
				NewEndIndex: 38,
				StartPoint:  sitter.Point{Row: 2, Column: 0},
				OldEndPoint: sitter.Point{Row: 2, Column: 0},
				NewEndPoint: sitter.Point{Row: 5, Column: 0},
			},
			updated: "module Main exposing (..)\n\nx =\n    1\n\nanswer =\n    42\n",
		},
		{
			name:   "delete across lines",
			change: change(2, 6, 3, 6, ""),
			want: sitter.EditInput{
				StartIndex:  33,
				OldEndIndex: 42,
				NewEndIndex: 33,
				StartPoint:  sitter.Point{Row: 2, Column: 6},
				OldEndPoint: sitter.Point{Row: 3, Column: 6},
				NewEndPoint: sitter.Point{Row: 2, Column: 6},
			},
			updated: "module Main exposing (..)\n\nanswer\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, sitteradapter.EditInput(tt.change, doc))
			assert.Equal(t, tt.updated, sitteradapter.ApplyTextEdit(tt.change, doc))
		})
	}
}

func TestUTF16Positions(t *testing.T) {
	// "é" is two bytes and one code unit, "𝔼" four bytes and two code units
	doc := "x = \"é𝔼\" ++ y\n"

	assert.Equal(t, uint32(7), sitteradapter.PositionToOffset(doc, lsp.Position{Line: 0, Character: 6}))
	assert.Equal(t, uint32(11), sitteradapter.PositionToOffset(doc, lsp.Position{Line: 0, Character: 8}))
	assert.Equal(t,
		lsp.Position{Line: 0, Character: 8},
		sitteradapter.PointToPosition(ast.Point{Row: 0, Column: 11}, doc))

	// out of range lines clamp to the last line
	assert.Equal(t, uint32(len(doc)), sitteradapter.PositionToOffset(doc, lsp.Position{Line: 9, Character: 0}))
}

func TestSpanToRange(t *testing.T) {
	doc := "a =\n    \"é\"\n"
	span := ast.Span{Start: ast.Point{Row: 1, Column: 4}, End: ast.Point{Row: 1, Column: 8}}
	assert.Equal(t, lsp.Range{
		Start: lsp.Position{Line: 1, Character: 4},
		End:   lsp.Position{Line: 1, Character: 7},
	}, sitteradapter.SpanToRange(span, doc))
}
