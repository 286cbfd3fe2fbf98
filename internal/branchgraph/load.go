// Package branchgraph loads the cached branch-graph file the stacked-diff
// tool maintains and exposes it as a model.BranchGraph (spec §4.C).
package branchgraph

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"workstack.dev/workstack/internal/model"
	"workstack.dev/workstack/internal/wserrors"
)

// CacheFileName is the historical name of the stacked-diff tool's cache
// file; treated as an opaque path component.
const CacheFileName = ".graphite_cache_persist"

// ErrMissing is returned by Load when no cache file exists. Callers that
// can tolerate a missing graph check for this with errors.Is; callers that
// require one should wrap it into a hard failure with guidance.
var ErrMissing = errors.New("branch graph cache missing")

type cacheNode struct {
	ParentBranchName *string  `json:"parentBranchName"`
	Children         []string `json:"children"`
	ValidationResult *string  `json:"validationResult"`
}

// cacheEntry models one ["name", {...}] pair in the cache file's "branches" list.
type cacheEntry struct {
	Name string
	Node cacheNode
}

func (e *cacheEntry) UnmarshalJSON(data []byte) error {
	var pair [2]json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if err := json.Unmarshal(pair[0], &e.Name); err != nil {
		return err
	}
	return json.Unmarshal(pair[1], &e.Node)
}

type cacheFile struct {
	Branches []cacheEntry `json:"branches"`
}

// Load reads and parses the cache file under vcsCommonDir. A missing file
// returns ErrMissing (a soft failure for most consumers); a malformed file
// is a hard wserrors.Corruption failure — the design deliberately refuses to
// silently proceed on a corrupt cache (spec §4.C, §9).
func Load(vcsCommonDir string) (*model.BranchGraph, error) {
	path := filepath.Join(vcsCommonDir, CacheFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrMissing
		}
		return nil, wserrors.Wrap(wserrors.External, err, "failed to read branch graph cache at %s", path)
	}

	var cf cacheFile
	if err := json.Unmarshal(data, &cf); err != nil {
		return nil, wserrors.Wrap(wserrors.Corruption, err, "branch graph cache at %s is malformed", path)
	}

	graph := model.NewBranchGraph()
	for _, e := range cf.Branches {
		parent := ""
		if e.Node.ParentBranchName != nil {
			parent = *e.Node.ParentBranchName
		}
		isTrunk := e.Node.ValidationResult != nil && *e.Node.ValidationResult == "TRUNK"
		graph.AddBranch(e.Name, parent, isTrunk)
	}
	return graph, nil
}

// RequireLoad is Load, but a missing cache becomes a hard failure with
// guidance, for commands that cannot proceed without the graph (spec §4.C).
func RequireLoad(vcsCommonDir string) (*model.BranchGraph, error) {
	g, err := Load(vcsCommonDir)
	if errors.Is(err, ErrMissing) {
		return nil, wserrors.New(wserrors.Precondition,
			"no branch graph found; this command needs the stacked-diff tool's cache").
			WithRemedy("run the stacked-diff tool's sync command first")
	}
	return g, err
}
