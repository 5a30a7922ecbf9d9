// Package compat checks whether a viewer understands a given DHAT report.
package compat

import (
	"fmt"

	semver "github.com/Masterminds/semver/v3"
)

// ViewerVersion is the version string dhatctl reports for its own built-in
// JSON-validating viewer logic. It advances only when the accepted report
// schema changes.
const ViewerVersion = "2.0.0"

// RequireViewer checks that a viewer satisfying constraint can load a
// report at the given dhatFileVersion. dhatFileVersion 2 is satisfied by
// any viewer constraint compatible with "2.x".
func RequireViewer(dhatFileVersion int, constraint string) error {
	c, err := semver.NewConstraint(constraint)
	if err != nil {
		return fmt.Errorf("dhat: parsing viewer constraint %q: %w", constraint, err)
	}

	reportVersion, err := semver.NewVersion(fmt.Sprintf("%d.0.0", dhatFileVersion))
	if err != nil {
		return fmt.Errorf("dhat: deriving version for dhatFileVersion %d: %w", dhatFileVersion, err)
	}

	if !c.Check(reportVersion) {
		return fmt.Errorf("dhat: report version %s does not satisfy viewer constraint %q", reportVersion, constraint)
	}

	return nil
}
