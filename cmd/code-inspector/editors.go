package main

import (
	"runtime"

	"bennypowers.dev/code-inspector/internal/editor"
	"github.com/spf13/cobra"
)

var editorsOS string

var editorsCmd = &cobra.Command{
	Use:   "editors",
	Short: "List the editors that can be launched",
	Long: `List the editors known on a platform, the binary each one is started with,
its argument template and the process names used to detect it.

Set ` + editor.EnvVar + ` (or add it to ` + editor.EnvFile + `) to choose one explicitly.`,
	RunE: runEditors,
}

func init() {
	editorsCmd.Flags().StringVar(&editorsOS, "os", runtime.GOOS, "Platform table to print: darwin, linux, windows")
}

func runEditors(cmd *cobra.Command, args []string) error {
	editor.WriteTable(cmd.OutOrStdout(), editorsOS)
	return nil
}
