package main

import (
	"flag"
	"fmt"
	"os"

	"lambdaconstruct/internal/qc"
)

func main() {
	parent := flag.String("parent", "", "Folder searched for subfolders containing .smd files")
	modelDir := flag.String("modeldir", "", "$modelname prefix, e.g. weapons/custom")
	cdmaterials := flag.String("cdmaterials", "", "$cdmaterials prefix, e.g. models/weapons/custom")
	scale := flag.Float64("scale", qc.DefaultScale, "$scale value")

	flag.Parse()

	if *parent == "" {
		fmt.Fprintln(os.Stderr, "Error: -parent is required.")
		flag.Usage()
		os.Exit(2)
	}

	written, err := qc.Generate(qc.GenerateOptions{
		ParentDir:   *parent,
		ModelDir:    *modelDir,
		MaterialDir: *cdmaterials,
		Scale:       *scale,
	})
	for _, p := range written {
		fmt.Printf("Generated: %s\n", p)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if len(written) == 0 {
		fmt.Println("No folders with .smd files found.")
	}
}
