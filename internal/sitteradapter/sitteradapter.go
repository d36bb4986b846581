// Package sitteradapter converts between LSP positions, tree-sitter
// points and the spans of the ast package.
package sitteradapter

import (
	"strings"
	"unicode/utf8"

	"github.com/jfmengels/elm-language-server/internal/ast"
	sitter "github.com/smacker/go-tree-sitter"
	lsp "github.com/tliron/glsp/protocol_3_16"
)

// EditInput converts a ranged LSP change into a tree-sitter EditInput
// against document, the content before the change.
func EditInput(change lsp.TextDocumentContentChangeEvent, document string) sitter.EditInput {
	newText := change.Text

	startByte, startPoint := positionToOffset(document, change.Range.Start)
	oldEndByte, oldEndPoint := positionToOffset(document, change.Range.End)

	newEndByte := startByte + len(newText)
	newEndPoint := computeNewEndPoint(startPoint, newText)

	return sitter.EditInput{
		StartIndex:  uint32(startByte),
		OldEndIndex: uint32(oldEndByte),
		NewEndIndex: uint32(newEndByte),
		StartPoint:  startPoint,
		OldEndPoint: oldEndPoint,
		NewEndPoint: newEndPoint,
	}
}

// PositionToOffset returns the byte offset of an LSP position.
func PositionToOffset(document string, pos lsp.Position) uint32 {
	offset, _ := positionToOffset(document, pos)
	return uint32(offset)
}

// positionToOffset computes the byte offset and tree-sitter Point for an
// LSP Position, whose character counts UTF-16 code units.
func positionToOffset(document string, pos lsp.Position) (offset int, point sitter.Point) {
	lines := strings.Split(document, "\n")
	// Clamp line number
	if int(pos.Line) >= len(lines) {
		pos.Line = uint32(len(lines) - 1)
	}
	// Sum bytes for all lines before the target line (including newline)
	for i := uint32(0); i < pos.Line; i++ {
		offset += len(lines[i]) + 1
	}
	var charCount, byteCount int
	for _, r := range lines[pos.Line] {
		unitCount := 1
		if r > 0xFFFF {
			unitCount = 2
		}
		if uint32(charCount+unitCount) > pos.Character {
			break
		}
		charCount += unitCount
		byteCount += utf8.RuneLen(r)
	}
	offset += byteCount
	point = sitter.Point{Row: pos.Line, Column: uint32(byteCount)}
	return
}

// computeNewEndPoint computes the tree-sitter Point after inserting newText at startPoint.
func computeNewEndPoint(startPoint sitter.Point, newText string) sitter.Point {
	lines := strings.Split(newText, "\n")
	last := lines[len(lines)-1]
	if len(lines) == 1 {
		return sitter.Point{Row: startPoint.Row, Column: startPoint.Column + uint32(len(last))}
	}
	return sitter.Point{Row: startPoint.Row + uint32(len(lines)-1), Column: uint32(len(last))}
}

// ApplyTextEdit applies a single ranged LSP change to document, using
// the same offsets EditInput computes.
func ApplyTextEdit(change lsp.TextDocumentContentChangeEvent, document string) string {
	startOffset, _ := positionToOffset(document, change.Range.Start)
	endOffset, _ := positionToOffset(document, change.Range.End)
	return document[:startOffset] + change.Text + document[endOffset:]
}

// PointToPosition converts a row and byte column to an LSP Position.
func PointToPosition(pt ast.Point, document string) lsp.Position {
	lines := strings.Split(document, "\n")
	// Clamp row to existing lines
	if int(pt.Row) >= len(lines) {
		pt.Row = uint32(len(lines) - 1)
	}
	line := lines[pt.Row]
	if int(pt.Column) > len(line) {
		pt.Column = uint32(len(line))
	}
	// Count UTF-16 code units in prefix
	var charCount uint32
	for _, r := range line[:pt.Column] {
		if r > 0xFFFF {
			charCount += 2
		} else {
			charCount++
		}
	}
	return lsp.Position{Line: pt.Row, Character: charCount}
}

// SpanToRange converts an ast span to an LSP range.
func SpanToRange(span ast.Span, document string) lsp.Range {
	return lsp.Range{
		Start: PointToPosition(span.Start, document),
		End:   PointToPosition(span.End, document),
	}
}
