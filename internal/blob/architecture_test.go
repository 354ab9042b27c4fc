package blob

import (
	"testing"

	"reliefcore/testutil"
)

// TestOnlyBlobPackageImportsInfra ensures that only the top-level blob
// package wraps the infra-backed implementations. Other packages must depend
// on the blob.Store interface instead of importing infra packages directly.
func TestOnlyBlobPackageImportsInfra(t *testing.T) {
	infraPrefix := testutil.ModulePath + "/internal/infra/blob"
	allowedPrefix := testutil.ModulePath + "/internal/blob"

	testutil.AssertModuleImports(t, testutil.ModulePath+"/...",
		[]string{allowedPrefix, infraPrefix},
		testutil.PackageImportForbidden(infraPrefix),
		"use reliefcore/internal/blob")
}
