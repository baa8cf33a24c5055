package smd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"
)

// section is the parser state. Keyword lines move between states via transitions.
type section int

const (
	sectionNone section = iota
	sectionNodes
	sectionSkeleton
	sectionTriangles
)

func (s section) String() string {
	switch s {
	case sectionNodes:
		return "nodes"
	case sectionSkeleton:
		return "skeleton"
	case sectionTriangles:
		return "triangles"
	default:
		return "none"
	}
}

// transitions maps a keyword line to the state it enters. "end" leaves any section.
var transitions = map[string]section{
	"nodes":     sectionNodes,
	"skeleton":  sectionSkeleton,
	"triangles": sectionTriangles,
	"end":       sectionNone,
}

// triangleStride is the number of vertex lines that follow each material line.
// Faces are assumed to be triangles; the lines are skipped without inspection.
const triangleStride = 3

var nodeRe = regexp.MustCompile(`^(\d+)\s+"(.+?)"\s+(-?\d+)`)

// ParseFile reads an SMD file and returns its nodes and material names.
// Only I/O failures are returned as errors; malformed lines become Issues.
func ParseFile(path string) (*Mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("smd: open %s: %w", path, err)
	}
	defer f.Close()

	m, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("smd: %s: %w", path, err)
	}
	m.Path = path
	return m, nil
}

// Parse reads SMD text from r.
func Parse(r io.Reader) (*Mesh, error) {
	p := &parser{
		mesh: &Mesh{},
		seen: make(map[string]struct{}),
	}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 4*1024*1024)

	n := 0
	for sc.Scan() {
		n++
		text := sc.Text()
		if n == 1 {
			text = strings.TrimPrefix(text, "\ufeff")
		}
		p.feed(n, strings.TrimSpace(text))
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}

	return p.mesh, nil
}

type parser struct {
	mesh  *Mesh
	state section
	skip  int // vertex lines still to discard after a material line
	seen  map[string]struct{}
}

func (p *parser) feed(n int, line string) {
	if p.skip > 0 {
		p.skip--
		return
	}

	if next, ok := transitions[line]; ok {
		p.state = next
		return
	}

	switch p.state {
	case sectionNodes:
		p.node(n, line)
	case sectionTriangles:
		p.material(n, line)
	}
}

func (p *parser) node(n int, line string) {
	if line == "" {
		return
	}
	m := nodeRe.FindStringSubmatch(line)
	if m == nil {
		p.issue(n, line, "malformed node line")
		return
	}
	id, err := strconv.Atoi(m[1])
	if err != nil {
		p.issue(n, line, "node id out of range")
		return
	}
	parent, err := strconv.Atoi(m[3])
	if err != nil {
		p.issue(n, line, "parent id out of range")
		return
	}
	p.mesh.Nodes = append(p.mesh.Nodes, Node{ID: id, Name: m[2], Parent: parent})
}

func (p *parser) material(n int, line string) {
	if line == "" {
		p.issue(n, line, "empty material name")
		return
	}

	if _, ok := p.seen[line]; !ok {
		p.seen[line] = struct{}{}
		p.mesh.Materials = append(p.mesh.Materials, line)
	}
	p.skip = triangleStride
}

func (p *parser) issue(n int, line, reason string) {
	p.mesh.Issues = append(p.mesh.Issues, Issue{Line: n, Text: line, Reason: reason})
}
