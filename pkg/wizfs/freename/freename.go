// Package freename resolves destination name collisions deterministically:
// an occupied name probes "<base> (1)<ext>", "<base> (2)<ext>", ... until a
// free slot is found.
package freename

import (
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/wizkit/wizfs/pkg/wizfs/filesystem"
	"github.com/wizkit/wizfs/pkg/wizfs/identity"
)

// maxProbes bounds the probe loop. It exists as a safety limit, not a real
// constraint.
const maxProbes = 10000

// ErrExhausted is returned when every probe up to maxProbes collides.
var ErrExhausted = errors.New("freename: no free name found")

// Reserved tracks destination paths already claimed earlier in the same
// gesture, so two same-named items dropped together cannot both resolve to
// the same final name. Keys are lower-cased joined paths.
type Reserved map[string]struct{}

// Add claims dir/name for the remainder of the gesture.
func (r Reserved) Add(dir, name string) {
	r[key(dir, name)] = struct{}{}
}

func (r Reserved) has(dir, name string) bool {
	_, ok := r[key(dir, name)]
	return ok
}

func key(dir, name string) string {
	return strings.ToLower(path.Join(dir, name))
}

// Pick returns desired unchanged when dir/desired is free, otherwise the
// first "<base> (<i>)<ext>" that collides with neither the filesystem nor
// the gesture's reservations. reserved may be nil.
func Pick(fsys filesystem.StatFS, dir, desired string, reserved Reserved) (string, error) {
	if free(fsys, dir, desired, reserved) {
		return desired, nil
	}
	base, ext := identity.SplitName(desired)
	for i := 1; i <= maxProbes; i++ {
		name := fmt.Sprintf("%s (%d)%s", base, i, ext)
		if free(fsys, dir, name, reserved) {
			return name, nil
		}
	}
	return "", fmt.Errorf("%w for %q in %q", ErrExhausted, desired, dir)
}

func free(fsys filesystem.StatFS, dir, name string, reserved Reserved) bool {
	if reserved != nil && reserved.has(dir, name) {
		return false
	}
	return !filesystem.Exists(fsys, path.Join(dir, name))
}
