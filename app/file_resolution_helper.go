package app

import "github.com/pycfg-go/pycfg/domain"

// ResolveFilePaths resolves file paths for a build. If every path given is
// already a file (not a directory), it returns them directly; otherwise it
// walks the paths collecting Python files with the given filters.
func ResolveFilePaths(
	fileReader domain.FileReader,
	paths []string,
	recursive bool,
	includePatterns []string,
	excludePatterns []string,
	validatePythonFile bool,
) ([]string, error) {
	// Check if all paths are already files (not directories)
	// This happens when the caller passes individual file paths
	allFiles := true
	for _, path := range paths {
		// Optional: Validate that path is a Python file
		if validatePythonFile && !fileReader.IsValidPythonFile(path) {
			allFiles = false
			break
		}

		// Check if file exists (FileExists returns true only for files, not directories)
		exists, err := fileReader.FileExists(path)
		if err != nil || !exists {
			allFiles = false
			break
		}
	}

	// If all paths are already files, no need to collect again
	if allFiles {
		return paths, nil
	}

	// Collect Python files from directories
	files, err := fileReader.CollectPythonFiles(
		paths,
		recursive,
		includePatterns,
		excludePatterns,
	)
	if err != nil {
		return nil, err
	}

	return files, nil
}
