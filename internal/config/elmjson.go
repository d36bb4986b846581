package config

import (
	"errors"
	"fmt"
	"io"
	"regexp"

	"github.com/Masterminds/semver/v3"
	"github.com/goccy/go-json"
)

// CompilerVersion is the Elm release the analysis follows.
const CompilerVersion = "0.19.1"

var ErrUnsupportedVersion = errors.New("unsupported elm version")

// ElmJSON is the part of elm.json the language server reads.
type ElmJSON struct {
	Type              string   `json:"type"`
	Name              string   `json:"name"`
	SourceDirectories []string `json:"source-directories"`
	ElmVersion        string   `json:"elm-version"`
}

func ParseElmJSON(r io.Reader) (ElmJSON, error) {
	var e ElmJSON
	if err := json.NewDecoder(r).Decode(&e); err != nil {
		return ElmJSON{}, fmt.Errorf("failed to decode elm.json: %w", err)
	}
	return e, nil
}

// Sources returns the directories holding the project's modules.
func (e ElmJSON) Sources() []string {
	if e.Type == "package" || len(e.SourceDirectories) == 0 {
		return []string{"src"}
	}
	return e.SourceDirectories
}

// packageRange matches the "0.19.0 <= v < 0.20.0" form packages use.
var packageRange = regexp.MustCompile(`^\s*(\S+)\s*<=\s*v\s*<\s*(\S+)\s*$`)

// Constraint returns the elm-version field as a semver constraint.
func (e ElmJSON) Constraint() (*semver.Constraints, error) {
	expr := e.ElmVersion
	if m := packageRange.FindStringSubmatch(expr); m != nil {
		expr = fmt.Sprintf(">= %s, < %s", m[1], m[2])
	}
	c, err := semver.NewConstraint(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid elm-version %q: %w", e.ElmVersion, err)
	}
	return c, nil
}

// CheckVersion fails with ErrUnsupportedVersion unless the project
// accepts the given compiler version.
func (e ElmJSON) CheckVersion(version string) error {
	if e.ElmVersion == "" {
		return nil
	}
	c, err := e.Constraint()
	if err != nil {
		return err
	}
	v, err := semver.NewVersion(version)
	if err != nil {
		return err
	}
	if !c.Check(v) {
		return fmt.Errorf("%w: project wants %s, analysis follows %s", ErrUnsupportedVersion, e.ElmVersion, version)
	}
	return nil
}
