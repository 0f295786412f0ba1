package main

import (
	"fmt"
	"os"

	"github.com/go-extras/cobraflags"
	"github.com/spf13/cobra"

	"github.com/stokaro/stepwright/generator/golang"
)

const (
	generateFileFlag = "file"
	generatePkgFlag  = "package"
	generateOutFlag  = "out"
)

var generateFlags = map[string]cobraflags.Flag{
	generateFileFlag: &cobraflags.StringFlag{
		Name:  generateFileFlag,
		Value: "",
		Usage: "Path to the EXPRESS schema file to generate bindings for (required)",
	},
	generatePkgFlag: &cobraflags.StringFlag{
		Name:  generatePkgFlag,
		Value: "schema",
		Usage: "Go package name for the generated source",
	},
	generateOutFlag: &cobraflags.StringFlag{
		Name:  generateOutFlag,
		Value: "",
		Usage: "Write generated source to this file instead of stdout",
	},
}

func newGenerateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Emit Go holder/owned bindings for an EXPRESS schema",
		Long: `Generate parses and legalizes the EXPRESS schema at --file, then emits
Go source implementing the holder/owned/table bindings for every entity,
via generator/golang. The emitted source is never consulted by this CLI's
own load command -- it is a standalone artifact, matching how the runtime
is decoupled from the generator.`,
		RunE: runGenerate,
	}
	cobraflags.RegisterMap(cmd, generateFlags)
	return cmd
}

func runGenerate(_ *cobra.Command, _ []string) error {
	path := generateFlags[generateFileFlag].GetString()
	if path == "" {
		return fmt.Errorf("--%s is required", generateFileFlag)
	}

	resolved, err := newCompiler().Run(path)
	if err != nil {
		return err
	}

	pkg := generateFlags[generatePkgFlag].GetString()
	src, err := golang.Generate(resolved, pkg)
	if err != nil {
		return fmt.Errorf("generating Go source: %w", err)
	}

	out := generateFlags[generateOutFlag].GetString()
	if out == "" {
		fmt.Println(src)
		return nil
	}
	if err := os.WriteFile(out, []byte(src), 0o644); err != nil {
		return fmt.Errorf("writing generated source: %w", err)
	}
	return nil
}
