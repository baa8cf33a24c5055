package qc

// Descriptor holds what was extracted from one QC file.
type Descriptor struct {
	Path        string
	CDMaterials []string // forward slashes, no trailing slash
	Meshes      []string // absolute SMD paths
}

// Result aggregates the descriptors found under a set of roots.
type Result struct {
	CDMaterials []string // unique, sorted
	Meshes      []string // unique, sorted
	Files       int      // descriptors read successfully
	Skipped     int      // descriptors that could not be read
}
