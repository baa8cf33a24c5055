package smd

// Node is one bone entry from the "nodes" section.
type Node struct {
	ID     int
	Name   string
	Parent int // -1 for root bones
}

// Issue records a line the parser could not interpret. Parsing never stops on one.
type Issue struct {
	Line   int // 1-based
	Text   string
	Reason string
}

// Mesh holds what the pipeline needs from one SMD file.
type Mesh struct {
	Path      string
	Nodes     []Node
	Materials []string // unique, in first-occurrence order
	Issues    []Issue
}

// HasMaterial reports whether name was declared in the triangles section.
func (m *Mesh) HasMaterial(name string) bool {
	for _, mat := range m.Materials {
		if mat == name {
			return true
		}
	}
	return false
}
