package report

import "strings"

// TreeNode is one entry of the directory tree. Files carry their own size
// and a null children list; directories carry the summed size of every file
// beneath them and an array of children, empty included.
type TreeNode struct {
	Name      string      `json:"name"`
	Type      string      `json:"type"`
	SizeBytes int64       `json:"size_bytes"`
	Children  []*TreeNode `json:"children"`
}

// TreeBuilder assembles a directory tree from walk entries. Entries must
// arrive parent before child, the order the walker produces them in; child
// order is preserved as given.
type TreeBuilder struct {
	root *TreeNode
	dirs map[string]*TreeNode
}

// NewTreeBuilder starts a tree rooted at a directory with the given name.
func NewTreeBuilder(rootName string) *TreeBuilder {
	root := &TreeNode{
		Name:     rootName,
		Type:     "directory",
		Children: []*TreeNode{},
	}
	return &TreeBuilder{
		root: root,
		dirs: map[string]*TreeNode{"": root},
	}
}

// Add records one entry by its slash-separated path relative to the root.
func (b *TreeBuilder) Add(rel string, dir bool, size int64) {
	parentPath := ""
	name := rel
	if i := strings.LastIndexByte(rel, '/'); i >= 0 {
		parentPath, name = rel[:i], rel[i+1:]
	}
	parent, ok := b.dirs[parentPath]
	if !ok {
		return
	}
	node := &TreeNode{Name: name}
	if dir {
		node.Type = "directory"
		node.Children = []*TreeNode{}
		b.dirs[rel] = node
	} else {
		node.Type = "file"
		node.SizeBytes = size
	}
	parent.Children = append(parent.Children, node)
}

// Root finalises directory sizes and returns the root node. Each directory's
// size_bytes is recomputed as the sum over its subtree, so calling Root more
// than once is safe.
func (b *TreeBuilder) Root() *TreeNode {
	sumSizes(b.root)
	return b.root
}

func sumSizes(node *TreeNode) int64 {
	if node.Type != "directory" {
		return node.SizeBytes
	}
	var total int64
	for _, child := range node.Children {
		total += sumSizes(child)
	}
	node.SizeBytes = total
	return total
}
