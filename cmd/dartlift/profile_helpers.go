package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"dartlift/internal/dartrt"
)

// defaultProfileName is picked up from the working directory when --profile
// is not set.
const defaultProfileName = "dartlift.toml"

// loadThreadInfo resolves the runtime registry for a command: an explicit
// --profile wins, then a dartlift.toml next to the invocation, then the
// builtin tables.
func loadThreadInfo(cmd *cobra.Command) (*dartrt.ThreadInfo, error) {
	path, err := cmd.Root().PersistentFlags().GetString("profile")
	if err != nil {
		return nil, fmt.Errorf("failed to get profile flag: %w", err)
	}

	if path == "" {
		if _, statErr := os.Stat(defaultProfileName); statErr == nil {
			path = defaultProfileName
		}
	}
	if path == "" {
		return dartrt.Default(), nil
	}

	profile, err := dartrt.LoadProfile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load profile %s: %w", path, err)
	}
	return dartrt.New(profile), nil
}
