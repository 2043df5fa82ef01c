package index

import (
	"sort"
	"strings"

	"github.com/symbolmap/codemap/internal/types"
)

// Tree builds a ProjectTreeNode rooted at "" from the current index
// contents: directories before files, both case-insensitive alphabetical
// (spec.md §4.3). It is always derived on demand; nothing about it is
// persisted independently of the flat file map.
func (idx *Index) Tree() *types.ProjectTreeNode {
	files := idx.snapshot()

	root := &types.ProjectTreeNode{Name: "", Path: "", IsDir: true}
	dirs := map[string]*types.ProjectTreeNode{"": root}

	for _, f := range files {
		parent := ensureDir(root, dirs, dirOf(f.Path))
		parent.Children = append(parent.Children, &types.ProjectTreeNode{
			Name:    baseOf(f.Path),
			Path:    f.Path,
			IsDir:   false,
			Symbols: f.Symbols,
		})
	}

	sortTree(root)
	return root
}

func ensureDir(root *types.ProjectTreeNode, dirs map[string]*types.ProjectTreeNode, path string) *types.ProjectTreeNode {
	if node, ok := dirs[path]; ok {
		return node
	}
	parent := ensureDir(root, dirs, dirOf(path))
	node := &types.ProjectTreeNode{Name: baseOf(path), Path: path, IsDir: true}
	parent.Children = append(parent.Children, node)
	dirs[path] = node
	return node
}

func dirOf(path string) string {
	i := strings.LastIndex(path, "/")
	if i < 0 {
		return ""
	}
	return path[:i]
}

func baseOf(path string) string {
	i := strings.LastIndex(path, "/")
	if i < 0 {
		return path
	}
	return path[i+1:]
}

func sortTree(node *types.ProjectTreeNode) {
	sort.Slice(node.Children, func(i, j int) bool {
		a, b := node.Children[i], node.Children[j]
		if a.IsDir != b.IsDir {
			return a.IsDir
		}
		return strings.ToLower(a.Name) < strings.ToLower(b.Name)
	})
	for _, child := range node.Children {
		if child.IsDir {
			sortTree(child)
		}
	}
}
