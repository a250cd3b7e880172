package symbaker

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"slices"

	"github.com/tidwall/gjson"
)

type (
	// MetadataQuery returns the build tool's package graph as JSON.
	MetadataQuery interface {
		Metadata(ctx context.Context) ([]byte, error)
	}
	// CargoMetadata runs `cargo metadata --format-version 1`.
	CargoMetadata struct {
		Cargo        string // executable, "cargo" when empty
		ManifestPath string // optional --manifest-path
		NoDeps       bool
	}
)

func (c CargoMetadata) Metadata(ctx context.Context) ([]byte, error) {
	bin := c.Cargo
	if bin == "" {
		bin = "cargo"
	}
	args := []string{"metadata", "--format-version", "1"}
	if c.NoDeps {
		args = append(args, "--no-deps")
	}
	if c.ManifestPath != "" {
		args = append(args, "--manifest-path", c.ManifestPath)
	}
	cmd := exec.CommandContext(ctx, bin, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("%s metadata: %w: %s", bin, err, bytes.TrimSpace(stderr.Bytes()))
	}
	if !gjson.ValidBytes(out) {
		return nil, errors.New("metadata output is not valid JSON")
	}
	return out, nil
}

// packageNames maps package ids to names.
func packageNames(doc []byte) map[string]string {
	names := make(map[string]string)
	gjson.GetBytes(doc, "packages").ForEach(func(_, p gjson.Result) bool {
		id, name := p.Get("id").String(), p.Get("name").String()
		if id != "" && name != "" {
			names[id] = name
		}
		return true
	})
	return names
}

// RootPackage returns the name of the package the metadata document was
// produced for: resolve.root, else the first default workspace member.
func RootPackage(doc []byte) (string, bool) {
	root := gjson.GetBytes(doc, "resolve.root").String()
	if root == "" {
		root = gjson.GetBytes(doc, "workspace_default_members.0").String()
	}
	if root == "" {
		return "", false
	}
	name, ok := packageNames(doc)[root]
	return name, ok
}

// DependencyGraph returns, per package name, the sorted unique names of its
// direct dependencies.
func DependencyGraph(doc []byte) map[string][]string {
	names := packageNames(doc)
	graph := make(map[string][]string)
	gjson.GetBytes(doc, "resolve.nodes").ForEach(func(_, n gjson.Result) bool {
		name, ok := names[n.Get("id").String()]
		if !ok {
			return true
		}
		var deps []string
		n.Get("deps").ForEach(func(_, d gjson.Result) bool {
			if dep, ok := names[d.Get("pkg").String()]; ok && !slices.Contains(deps, dep) {
				deps = append(deps, dep)
			}
			return true
		})
		slices.Sort(deps)
		graph[name] = deps
		return true
	})
	return graph
}
