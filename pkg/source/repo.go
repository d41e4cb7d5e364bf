package source

import (
	"fmt"

	"github.com/pkgpulse/pkgpulse/pkg/integrations"
)

// splitRepo parses an "owner/repo" item name.
func splitRepo(name string) (owner, repo string, ok bool) {
	return integrations.SplitRepo(name)
}

func errBadRepoName(name string) error {
	return fmt.Errorf("github item %q is not in owner/repo form", name)
}
