package convert

import (
	"fmt"
	"os"

	"bookbinder/internal/inventory"
	"bookbinder/internal/services"
)

// VerifyArtifactSize checks that the artifact is plausibly complete: at
// least minRatio of the summed source bytes. Failing this check always
// blocks destructive cleanup.
func VerifyArtifactSize(artifactPath string, sourceTotal int64, minRatio float64) error {
	info, err := os.Stat(artifactPath)
	if err != nil {
		return services.Wrap(services.ErrOutputTooSmall, "cleanup", "verify", "stat artifact", err)
	}
	if sourceTotal <= 0 {
		return nil
	}
	ratio := float64(info.Size()) / float64(sourceTotal)
	if ratio < minRatio {
		return services.Wrap(services.ErrOutputTooSmall, "cleanup", "verify",
			fmt.Sprintf("artifact is %.0f%% of source size, need %.0f%%", ratio*100, minRatio*100), nil)
	}
	return nil
}

// DeleteOriginals removes the inventory's source audio files. It must
// only run after VerifyArtifactSize has passed. Files that fail to delete
// are reported but do not stop the rest.
func DeleteOriginals(inv inventory.Inventory) error {
	var firstErr error
	for _, file := range inv.Files {
		if err := os.Remove(file); err != nil && firstErr == nil {
			firstErr = services.Wrap(services.ErrDirectoryUnwritable, "cleanup", "delete",
				fmt.Sprintf("remove %s", file), err)
		}
	}
	return firstErr
}
