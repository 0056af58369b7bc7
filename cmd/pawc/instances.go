package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"paw/internal/types"
)

var instancesCmd = &cobra.Command{
	Use:   "instances [path]",
	Short: "List every recorded generic instantiation",
	Long:  "Compile the project and dump the instantiation table: kind, base entity, type arguments, and mangled name.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runInstances,
}

func runInstances(cmd *cobra.Command, args []string) error {
	// The table only exists after a real middle-end pass, so the
	// build cache is bypassed here.
	if err := cmd.Flags().Set("no-cache", "true"); err != nil {
		return err
	}
	res, err := buildProject(cmd, args)
	if err != nil {
		return err
	}
	res.RenderDiagnostics(os.Stderr, useColor(cmd, os.Stderr))

	out := cmd.OutOrStdout()
	for _, inst := range res.Table.Sorted() {
		labels := make([]string, len(inst.Args))
		for i, arg := range inst.Args {
			labels[i] = types.Label(res.Types, arg)
		}
		entity := inst.Base
		if inst.Method != "" {
			entity += "::" + inst.Method
		}
		fmt.Fprintf(out, "%-8s %s<%s> -> %s\n", inst.Kind, entity, strings.Join(labels, ", "), res.Table.MangledName(inst))
	}
	if res.Bag.HasErrors() {
		return fmt.Errorf("build finished with %d diagnostics", res.Bag.Len())
	}
	return nil
}
