package config

import (
	"path"
	"path/filepath"
	"strings"
)

// componentsDirName is the directory name that marks a path as holding
// components. Entries rooted in such a directory are scanned independently
// from generic source directories and are exempt from sub-path removal.
const componentsDirName = "components"

// DedupSrcDirs removes entries that are sub-paths of another configured
// directory. An entry that is, or lives under, a components directory is
// kept even when a shorter entry contains it. Equal paths are never treated
// as redundant with themselves. Input order is preserved.
func DedupSrcDirs(dirs []string) []string {
	out := make([]string, 0, len(dirs))
	for i, a := range dirs {
		if isComponentsPath(a) {
			out = append(out, a)
			continue
		}
		redundant := false
		for j, b := range dirs {
			if i == j || a == b {
				continue
			}
			if isSubPath(a, b) {
				redundant = true
				break
			}
		}
		if !redundant {
			out = append(out, a)
		}
	}
	return out
}

// isSubPath reports whether a is strictly nested under b.
func isSubPath(a, b string) bool {
	ca := cleanSlash(a)
	cb := cleanSlash(b)
	return ca != cb && strings.HasPrefix(ca, cb+"/")
}

// isComponentsPath reports whether any element of the cleaned path is a
// components directory.
func isComponentsPath(p string) bool {
	for _, el := range strings.Split(cleanSlash(p), "/") {
		if el == componentsDirName {
			return true
		}
	}
	return false
}

func cleanSlash(p string) string {
	return path.Clean(filepath.ToSlash(p))
}
