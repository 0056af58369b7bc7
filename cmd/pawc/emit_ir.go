package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var emitIRCmd = &cobra.Command{
	Use:   "emit-ir [path]",
	Short: "Compile and print the IR to stdout",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runEmitIR,
}

func runEmitIR(cmd *cobra.Command, args []string) error {
	res, err := buildProject(cmd, args)
	if err != nil {
		return err
	}
	res.RenderDiagnostics(os.Stderr, useColor(cmd, os.Stderr))
	if res.Bag.HasErrors() {
		return fmt.Errorf("build failed with %d diagnostics", res.Bag.Len())
	}
	fmt.Fprint(cmd.OutOrStdout(), res.IRText)
	return nil
}
