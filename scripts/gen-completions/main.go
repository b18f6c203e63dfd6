// Command gen-completions writes the critpath completion scripts for bash,
// zsh, fish and PowerShell into one directory for release archives.
//
// Usage:
//
//	go run ./scripts/gen-completions [output-dir]
//
// The default output directory is "completions".
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/AbdelazizMoustafa10m/critpath/internal/cli"
)

func main() {
	outDir := "completions"
	if len(os.Args) > 1 {
		outDir = os.Args[1]
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "error creating output dir %q: %v\n", outDir, err)
		os.Exit(1)
	}

	root := cli.NewRootCmd()
	scripts := []struct {
		name string
		gen  func(*cobra.Command, io.Writer) error
	}{
		{"critpath.bash", func(c *cobra.Command, w io.Writer) error { return c.GenBashCompletionV2(w, true) }},
		{"_critpath", func(c *cobra.Command, w io.Writer) error { return c.GenZshCompletion(w) }},
		{"critpath.fish", func(c *cobra.Command, w io.Writer) error { return c.GenFishCompletion(w, true) }},
		{"critpath.ps1", func(c *cobra.Command, w io.Writer) error { return c.GenPowerShellCompletionWithDesc(w) }},
	}

	for _, s := range scripts {
		path := filepath.Join(outDir, s.name)
		if err := write(path, func(w io.Writer) error { return s.gen(root, w) }); err != nil {
			fmt.Fprintf(os.Stderr, "error generating %q: %v\n", path, err)
			os.Exit(1)
		}
		fmt.Printf("Generated %s\n", path)
	}
}

func write(path string, gen func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := gen(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
