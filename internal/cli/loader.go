package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"cuelang.org/go/cue/token"

	"github.com/syn-ce/os/internal/compiler"
	"github.com/syn-ce/os/internal/ir"
)

// LoadMode controls how errors are handled during yard loading.
type LoadMode int

const (
	// LoadModeFailFast stops on the first error encountered.
	LoadModeFailFast LoadMode = iota
	// LoadModeCollectAll collects all errors before returning.
	LoadModeCollectAll
)

// LoadResult contains the yards loaded from a directory or file.
type LoadResult struct {
	Yards     []*ir.YardSpec
	Files     map[string]string // yard name -> file it was declared in
	FileCount int               // Number of CUE files found
}

// LoadError represents an error that occurred during yard loading.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// LoadYards loads and compiles every yard from path, which may be a single
// CUE file or a directory searched recursively. Files are read in lexical
// order and yards keep their declaration order within a file.
// If mode is LoadModeFailFast, returns on first error.
// If mode is LoadModeCollectAll, collects all errors.
func LoadYards(path string, mode LoadMode) (*LoadResult, []error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("yards path not found: %s", path)}}
	}
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing yards path: %v", err)}}
	}

	var cueFiles []string
	if info.IsDir() {
		cueFiles, err = FindCUEFiles(path)
		if err != nil {
			return nil, []error{&LoadError{Code: ErrCodeScanError, Message: fmt.Sprintf("error scanning directory: %v", err)}}
		}
	} else {
		cueFiles = []string{path}
	}
	if len(cueFiles) == 0 {
		return nil, []error{&LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no CUE files found in %s", path)}}
	}

	result := &LoadResult{
		Files:     make(map[string]string),
		FileCount: len(cueFiles),
	}

	var errs []error
	for _, file := range cueFiles {
		specs, err := compiler.LoadYardFile(file)
		if err != nil {
			errs = append(errs, convertCompileError(err, file))
			if mode == LoadModeFailFast {
				return result, errs
			}
			continue
		}
		for _, spec := range specs {
			if prev, dup := result.Files[spec.Name]; dup {
				errs = append(errs, &LoadError{
					Code:    compiler.ErrDuplicateYardName,
					Message: fmt.Sprintf("yard %q declared in %s and %s", spec.Name, prev, file),
				})
				if mode == LoadModeFailFast {
					return result, errs
				}
				continue
			}
			result.Files[spec.Name] = file
			result.Yards = append(result.Yards, spec)
		}
	}

	// Check if we found anything
	if len(result.Yards) == 0 && len(errs) == 0 {
		errs = append(errs, &LoadError{Code: ErrCodeGeneric, Message: "no yards found"})
	}

	return result, errs
}

// Find returns the yard called name. An empty name selects the only yard.
func (r *LoadResult) Find(name string) (*ir.YardSpec, error) {
	if name == "" {
		if len(r.Yards) == 1 {
			return r.Yards[0], nil
		}
		names := make([]string, len(r.Yards))
		for i, y := range r.Yards {
			names[i] = y.Name
		}
		return nil, fmt.Errorf("--yard is required, choose one of: %s", strings.Join(names, ", "))
	}
	for _, y := range r.Yards {
		if y.Name == name {
			return y, nil
		}
	}
	return nil, fmt.Errorf("yard %q not found", name)
}

// FindCUEFiles walks the directory and returns all .cue file paths, sorted.
func FindCUEFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && filepath.Ext(path) == ".cue" {
			files = append(files, path)
		}
		return nil
	})
	sort.Strings(files)
	return files, err
}

// convertCompileError converts a compiler error to a LoadError with position info.
func convertCompileError(err error, file string) *LoadError {
	var compileErr *compiler.CompileError
	if errors.As(err, &compileErr) {
		// Keep the "yard <name>: " context added by the compiler.
		prefix := strings.TrimSuffix(err.Error(), compileErr.Error())
		return &LoadError{
			Code:    MapFieldToErrorCode(compileErr.Field),
			Message: prefix + compileErr.Message,
			Pos:     compileErr.Pos,
		}
	}
	return &LoadError{
		Code:    ErrCodeLoadFailed,
		Message: fmt.Sprintf("%s: %v", file, err),
	}
}

// Error code constants - unified across all CLI commands.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeScanError   = "E002" // Directory scan error
	ErrCodeNoFiles     = "E003" // No CUE files found
	ErrCodeLoadFailed  = "E004" // CUE file could not be read
	ErrCodeNotFound    = "E005" // Path not found
	ErrCodeBuildFailed = "E006" // CUE syntax or evaluation error
	ErrCodeWriteFailed = "E007" // File write error

	// Yard definition errors
	ErrCodeParking   = "E010" // parking missing or not a list of integers
	ErrCodeDecisions = "E011" // decisions not a string or list of strings
	ErrCodeOracle    = "E012" // unknown oracle
)

// MapFieldToErrorCode maps a compiler error field to an error code.
func MapFieldToErrorCode(field string) string {
	switch field {
	case "cue":
		return ErrCodeBuildFailed
	case "parking":
		return ErrCodeParking
	case "decisions":
		return ErrCodeDecisions
	case "oracle":
		return ErrCodeOracle
	default:
		return ErrCodeGeneric
	}
}
