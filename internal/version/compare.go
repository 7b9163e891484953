package version

import (
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/rxtech-lab/argo-features/pkg/errors"
)

// CheckVersionCompatibility checks whether a pipeline configuration written for
// configVersion can be executed by a library at libraryVersion.
//
// Compatibility Rules:
//   - If either version is "main" (development build), compatibility check is skipped
//   - Major and minor versions must match exactly
//   - Patch versions can differ (e.g., 1.2.0 is compatible with 1.2.5)
func CheckVersionCompatibility(libraryVersion, configVersion string) error {
	libraryVersion = strings.TrimPrefix(libraryVersion, "v")
	configVersion = strings.TrimPrefix(configVersion, "v")

	if libraryVersion == "main" || configVersion == "main" {
		return nil
	}

	librarySemver, err := semver.NewVersion(libraryVersion)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeInvalidVersion, err, "invalid library version '%s'", libraryVersion)
	}

	configSemver, err := semver.NewVersion(configVersion)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeInvalidVersion, err, "invalid config version '%s'", configVersion)
	}

	if librarySemver.Major() != configSemver.Major() {
		return errors.Newf(errors.ErrCodeInvalidVersion, "major version mismatch: library is %d.x.x but config requires %d.x.x",
			librarySemver.Major(), configSemver.Major())
	}

	if librarySemver.Minor() != configSemver.Minor() {
		return errors.Newf(errors.ErrCodeInvalidVersion, "minor version mismatch: library is %d.%d.x but config requires %d.%d.x",
			librarySemver.Major(), librarySemver.Minor(),
			configSemver.Major(), configSemver.Minor())
	}

	return nil
}
