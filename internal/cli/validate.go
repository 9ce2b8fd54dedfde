package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/redux/internal/harness"
)

// FileValidation holds the validation result for one scenario file.
type FileValidation struct {
	Path   string   `json:"path"`
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors,omitempty"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid bool             `json:"valid"`
	Files []FileValidation `json:"files"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <scenario|dir>...",
		Short: "Validate scenario files without running them",
		Long: `Check scenario files against the CUE schema, decode them strictly, and
confirm that each names a registered application. Directories are searched
for .yaml and .yml files.

Exit codes:
  0 - All files are valid
  1 - One or more files are invalid
  2 - Command error (path not found)`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args, cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, args []string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)

	paths, err := expandPaths(args)
	if err != nil {
		_ = f.Error(ErrCodeNotFound, err.Error(), nil)
		return WrapExitError(ExitCommandError, "invalid path", err)
	}

	registry := harness.DefaultApps()
	result := ValidationResult{Valid: true, Files: make([]FileValidation, 0, len(paths))}
	for _, path := range paths {
		f.VerboseLog("Validating %s", path)
		fv := validateFile(path, registry.Has)
		if !fv.Valid {
			result.Valid = false
		}
		result.Files = append(result.Files, fv)
	}

	if f.JSON() {
		if result.Valid {
			err = f.Success(result)
		} else {
			err = f.Fail(result)
		}
		if err != nil {
			return err
		}
	} else {
		for _, fv := range result.Files {
			if fv.Valid {
				f.Text("✓ %s\n", fv.Path)
				continue
			}
			f.Text("✗ %s\n", fv.Path)
			for _, e := range fv.Errors {
				f.Text("  %s\n", e)
			}
		}
	}

	if !result.Valid {
		return NewExitError(ExitFailure, "validation failed")
	}
	return nil
}

func validateFile(path string, knownApp func(string) bool) FileValidation {
	fv := FileValidation{Path: path, Valid: true}
	fail := func(msg string) {
		fv.Valid = false
		fv.Errors = append(fv.Errors, msg)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		fail(err.Error())
		return fv
	}

	if errs := harness.CheckSchema(data); len(errs) > 0 {
		for _, e := range errs {
			fail(fmt.Sprintf("[%s] %v", ErrCodeSchema, e))
		}
		return fv
	}

	s, err := harness.ParseScenario(data)
	if err != nil {
		fail(fmt.Sprintf("[%s] %v", ErrCodeLoadFailed, err))
		return fv
	}
	if !knownApp(s.App) {
		fail(fmt.Sprintf("[%s] unknown app %q", ErrCodeUnknownApp, s.App))
	}
	return fv
}

// expandPaths replaces directories with the scenario files inside them.
func expandPaths(args []string) ([]string, error) {
	var paths []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			paths = append(paths, arg)
			continue
		}
		found, err := harness.Discover(arg, "")
		if err != nil {
			return nil, err
		}
		paths = append(paths, found...)
	}
	return paths, nil
}
