package sheet2png

import (
	"path/filepath"
	"strconv"
	"strings"
)

const imageExt = ".png"

var unsafeNameChars = strings.NewReplacer(" ", "_", "/", "_", `\`, "_")

// SafeFileName maps a sheet name to its image file name.
// Spaces and path separators become underscores.
//
// Examples:
//   - "Summary" -> "Summary.png"
//   - "Q1 Report/Final" -> "Q1_Report_Final.png"
func SafeFileName(sheet string) string {
	return unsafeNameChars.Replace(sheet) + imageExt
}

// nameAllocator hands out output file names for one run.
// Keys are lowercased so names that differ only in case count as
// collisions on case-insensitive filesystems.
type nameAllocator struct {
	policy CollisionPolicy
	used   map[string]bool
}

func newNameAllocator(policy CollisionPolicy) *nameAllocator {
	return &nameAllocator{policy: policy, used: make(map[string]bool)}
}

// allocate returns the file name for sheet and whether it collided with a
// name handed out earlier in the run.
func (a *nameAllocator) allocate(sheet string) (string, bool) {
	name := SafeFileName(sheet)
	if !a.used[strings.ToLower(name)] {
		a.used[strings.ToLower(name)] = true
		return name, false
	}

	if a.policy != CollisionSuffix {
		return name, true
	}

	base := strings.TrimSuffix(name, filepath.Ext(name))
	for n := 2; ; n++ {
		candidate := base + "_" + strconv.Itoa(n) + imageExt
		if !a.used[strings.ToLower(candidate)] {
			a.used[strings.ToLower(candidate)] = true
			return candidate, true
		}
	}
}
