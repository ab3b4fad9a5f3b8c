package cgroup

import (
	"sort"
	"strings"
)

// applyUnified writes caller-supplied raw key/value pairs after every
// structured writer has run, so callers can override anything the
// structured writers set. Keys must be a single path component; values are
// split on newlines and each non-empty line is issued as its own write, so
// the kernel parses each independently instead of receiving one multi-line
// buffer.
//
// The upstream resource type carries these pairs as a map, which has no
// inherent order; keys are sorted so a given spec always produces the same
// write sequence.
func applyUnified(dir string, kv map[string]string) error {
	keys := make([]string, 0, len(kv))
	for k := range kv {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		if strings.Contains(key, "/") {
			return errConfig("unified.apply", "unified key \""+key+"\" must not contain '/'")
		}
		value := kv[key]
		if value == "" {
			continue
		}
		for _, line := range strings.Split(value, "\n") {
			if line == "" {
				continue
			}
			if err := writeFile(dir, key, line); err != nil {
				return err
			}
		}
	}
	return nil
}
