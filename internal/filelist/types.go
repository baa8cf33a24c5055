package filelist

// InputList holds the paths read from a generator file list.
type InputList struct {
	Inputs    []string // model descriptor directories or files
	Materials string   // the materials root; exactly one per list
}

// CompileFile holds the settings read from a compile file.
type CompileFile struct {
	QC        []string
	Game      string
	Studiomdl string
	QCFolder  string
}

// IOPair is one input/output folder pair of a conversion list.
type IOPair struct {
	Input  string `json:"input"`
	Output string `json:"output"`
}
