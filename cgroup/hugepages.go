package cgroup

import (
	"fmt"
	"strconv"

	"crun-go/spec"
)

// applyHugepages writes hugetlb.<page_size>.max on v2 and
// hugetlb.<page_size>.limit_in_bytes on v1, one write per entry.
func applyHugepages(path string, pages []spec.LinuxHugepageLimit, mode spec.CgroupMode) error {
	suffix := "limit_in_bytes"
	if mode == spec.ModeUnified {
		suffix = "max"
	}
	dir := subsystemDir(mode, path, "hugetlb")
	for _, p := range pages {
		name := fmt.Sprintf("hugetlb.%s.%s", p.Pagesize, suffix)
		if err := writeFile(dir, name, strconv.FormatUint(p.Limit, 10)); err != nil {
			return err
		}
	}
	return nil
}
