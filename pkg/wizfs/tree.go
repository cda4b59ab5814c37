package wizfs

import (
	"io/fs"
	"path"
	"sort"

	"github.com/wizkit/wizfs/pkg/wizfs/filesystem"
	"github.com/wizkit/wizfs/pkg/wizfs/identity"
	"github.com/wizkit/wizfs/pkg/wizfs/wizfolder"
)

// NodeKind is the closed set of tree node variants. Every consumer
// switches exhaustively over it instead of probing fields.
type NodeKind string

const (
	NodeWorkspace NodeKind = "workspace"
	NodeFolder    NodeKind = "folder"
	NodeFile      NodeKind = "file"
	NodeDocument  NodeKind = "document"
	NodeGroup     NodeKind = "group"
)

// Node is one entry of the workspace listing. Group nodes are placeholders
// with no path of their own; Mode is set on documents and groups.
type Node struct {
	Kind     NodeKind `json:"kind"`
	Name     string   `json:"name"`
	Path     string   `json:"path,omitempty"`
	Mode     string   `json:"mode,omitempty"`
	Children []*Node  `json:"children,omitempty"`
}

// BuildTree produces the grouped workspace listing: one group per
// configured mode holding the documents found anywhere under the root (an
// "unknown" group trails when needed), followed by the plain folder/file
// hierarchy with documents elided.
func BuildTree(fsys filesystem.FullFileSystem, modes []string) (*Node, error) {
	root := &Node{Kind: NodeWorkspace, Name: "workspace"}

	byMode := make(map[string][]*Node)
	rest, err := scan(fsys, "", byMode)
	if err != nil {
		return nil, err
	}

	order := append(append([]string(nil), modes...), identity.ModeUnknown)
	for _, mode := range order {
		docs := byMode[mode]
		if len(docs) == 0 {
			continue
		}
		sort.Slice(docs, func(i, j int) bool { return docs[i].Path < docs[j].Path })
		root.Children = append(root.Children, &Node{
			Kind:     NodeGroup,
			Name:     mode,
			Mode:     mode,
			Children: docs,
		})
	}
	root.Children = append(root.Children, rest...)
	return root, nil
}

// scan walks dir, collecting documents into byMode and returning the
// remaining folder/file nodes in name order.
func scan(fsys filesystem.FullFileSystem, dir string, byMode map[string][]*Node) ([]*Node, error) {
	name := dir
	if name == "" {
		name = "."
	}
	entries, err := fs.ReadDir(fsys, name)
	if err != nil {
		return nil, err
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	var nodes []*Node
	for _, entry := range entries {
		p := path.Join(dir, entry.Name())
		if !entry.IsDir() {
			nodes = append(nodes, &Node{Kind: NodeFile, Name: entry.Name(), Path: p})
			continue
		}
		if wizfolder.IsWizFolder(fsys, p) {
			mode := wizfolder.ReadMode(fsys, p)
			byMode[mode] = append(byMode[mode], &Node{
				Kind: NodeDocument,
				Name: entry.Name(),
				Path: p,
				Mode: mode,
			})
			continue
		}
		children, err := scan(fsys, p, byMode)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, &Node{Kind: NodeFolder, Name: entry.Name(), Path: p, Children: children})
	}
	return nodes, nil
}
