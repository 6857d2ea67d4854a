// Where: internal/version/version.go
// What: Version information retrieval.
// Why: Surface build-time VCS information through the version command.
package version

import (
	"fmt"
	"runtime/debug"
)

// GetVersion returns the version derived from build info: the short VCS
// revision, with "(dirty)" appended when the tree was modified. Falls
// back to "dev" when build info is unavailable.
func GetVersion() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "dev"
	}

	var revision string
	var modified bool
	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			revision = setting.Value
			if len(revision) > 7 {
				revision = revision[:7]
			}
		case "vcs.modified":
			modified = setting.Value == "true"
		}
	}

	if revision == "" {
		return "dev"
	}
	if modified {
		return fmt.Sprintf("%s (dirty)", revision)
	}
	return revision
}
