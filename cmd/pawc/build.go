package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"paw/internal/driver"
	"paw/internal/project"
)

var buildCmd = &cobra.Command{
	Use:   "build [path]",
	Short: "Build a Paw project",
	Long:  "Build a Paw project using paw.toml as the entrypoint definition.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runBuild,
}

func init() {
	buildCmd.Flags().String("ui", "auto", "interactive progress (auto|on|off)")
}

func runBuild(cmd *cobra.Command, args []string) error {
	opts, files, err := buildOptions(cmd, args)
	if err != nil {
		return err
	}
	tui, err := useTUI(cmd)
	if err != nil {
		return err
	}

	var res *driver.Result
	if tui && len(files) > 0 {
		res, err = runBuildWithUI(cmd.Context(), "pawc build", files, opts)
	} else {
		res, err = driver.Build(cmd.Context(), opts)
	}
	if err != nil {
		return err
	}
	res.RenderDiagnostics(os.Stderr, useColor(cmd, os.Stderr))
	if res.Bag.HasErrors() {
		return fmt.Errorf("build failed with %d diagnostics", res.Bag.Len())
	}

	output := res.Manifest.Output
	if output == "" {
		output = res.Manifest.Name + ".ir"
	}
	if !filepath.IsAbs(output) {
		output = filepath.Join(res.Manifest.Root, output)
	}
	if err := os.WriteFile(output, []byte(res.IRText), 0o644); err != nil {
		return err
	}
	if res.CacheHit {
		fmt.Fprintf(cmd.OutOrStdout(), "%s (cached)\n", output)
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), output)
	return nil
}

// buildProject locates the manifest and runs the driver with the
// persistent flags applied.
func buildProject(cmd *cobra.Command, args []string) (*driver.Result, error) {
	opts, _, err := buildOptions(cmd, args)
	if err != nil {
		return nil, err
	}
	return driver.Build(cmd.Context(), opts)
}

// buildOptions resolves the manifest and flags into driver options,
// plus the source file list for progress display.
func buildOptions(cmd *cobra.Command, args []string) (driver.Options, []string, error) {
	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}
	manifestPath, err := project.Find(dir)
	if err != nil {
		return driver.Options{}, nil, err
	}
	manifest, err := project.Load(manifestPath)
	if err != nil {
		return driver.Options{}, nil, err
	}
	files, err := manifest.Sources()
	if err != nil {
		return driver.Options{}, nil, err
	}

	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return driver.Options{}, nil, err
	}
	maxDiags, err := cmd.Flags().GetInt("max-diagnostics")
	if err != nil {
		return driver.Options{}, nil, err
	}
	noCache, err := cmd.Flags().GetBool("no-cache")
	if err != nil {
		return driver.Options{}, nil, err
	}

	return driver.Options{
		ManifestPath:   manifestPath,
		Jobs:           jobs,
		MaxDiagnostics: maxDiags,
		UseCache:       !noCache,
	}, files, nil
}
