package cgroup

import (
	"fmt"
	"strconv"

	"crun-go/spec"
)

// writeAliased tries primary, falling back to alias on ENOENT. It reports
// which name accepted the write.
func writeAliased(dir, primary, alias, value string) (used string, err error) {
	err = writeFile(dir, primary, value)
	if err == nil {
		return primary, nil
	}
	if !isMissing(err) {
		return "", err
	}
	err = writeFile(dir, alias, value)
	if err != nil {
		return "", err
	}
	return alias, nil
}

func applyBlkio(path string, blkio *spec.LinuxBlockIO, mode spec.CgroupMode) error {
	if blkio == nil {
		return nil
	}
	dir := subsystemDir(mode, path, "blkio")
	unified := mode == spec.ModeUnified

	if unified && blkio.LeafWeight != nil && *blkio.LeafWeight != 0 {
		return errConfig("blkio.apply", "leaf_weight is not supported on cgroup v2")
	}

	if blkio.Weight != nil {
		if err := applyBlkioWeight(dir, *blkio.Weight, unified); err != nil {
			return err
		}
	}
	if !unified && blkio.LeafWeight != nil {
		if _, err := writeAliased(dir, "blkio.leaf_weight", "blkio.bfq.leaf_weight",
			strconv.FormatUint(uint64(*blkio.LeafWeight), 10)); err != nil {
			if !isMissing(err) {
				return err
			}
		}
	}

	if err := applyBlkioWeightDevices(dir, blkio.WeightDevice, unified); err != nil {
		return err
	}

	if err := applyBlkioThrottles(dir, blkio, unified); err != nil {
		return err
	}

	return nil
}

// applyBlkioWeight writes the top-level weight, preferring io.bfq.weight on
// v2 and rescaling onto io.weight's [1,10000] range only when bfq isn't
// available.
func applyBlkioWeight(dir string, weight uint16, unified bool) error {
	if !unified {
		_, err := writeAliased(dir, "blkio.weight", "blkio.bfq.weight", strconv.FormatUint(uint64(weight), 10))
		return err
	}

	err := writeFile(dir, "io.bfq.weight", strconv.FormatUint(uint64(weight), 10))
	if err == nil {
		return nil
	}
	if !isMissing(err) {
		return err
	}
	rescaled := 1 + (int64(weight)-10)*9999/990
	return writeFile(dir, "io.weight", strconv.FormatInt(rescaled, 10))
}

// applyBlkioWeightDevices writes per-device weights. v2 funnels every
// device line into io.bfq.weight and silently drops leaf_weight (the
// kernel's io controller has no leaf_weight concept). v1 writes the
// primary weight to blkio.weight_device (aliased) and, when a leaf weight
// is present, also to blkio.leaf_weight_device (aliased); a missing leaf
// weight file is swallowed even though a missing primary weight file is
// surfaced.
func applyBlkioWeightDevices(dir string, devices []spec.LinuxWeightDevice, unified bool) error {
	for _, d := range devices {
		if d.Weight == nil {
			continue
		}
		line := fmt.Sprintf("%d:%d %d", d.Major, d.Minor, *d.Weight)
		if unified {
			if err := writeFile(dir, "io.bfq.weight", line); err != nil {
				return err
			}
			continue
		}
		if _, err := writeAliased(dir, "blkio.weight_device", "blkio.bfq.weight_device", line); err != nil {
			return err
		}
		if d.LeafWeight != nil {
			leafLine := fmt.Sprintf("%d:%d %d", d.Major, d.Minor, *d.LeafWeight)
			if _, err := writeAliased(dir, "blkio.leaf_weight_device", "blkio.bfq.leaf_weight_device", leafLine); err != nil {
				if !isMissing(err) {
					return err
				}
			}
		}
	}
	return nil
}

type throttleList struct {
	devices []spec.LinuxThrottleDevice
	v1File  string
	v2Type  string
}

// applyBlkioThrottles writes the four throttle lists. v2 funnels all of
// them into a single io.max file with a TYPE=RATE token per line; v1 keeps
// one dedicated file per type.
func applyBlkioThrottles(dir string, blkio *spec.LinuxBlockIO, unified bool) error {
	lists := []throttleList{
		{blkio.ThrottleReadBpsDevice, "blkio.throttle.read_bps_device", "rbps"},
		{blkio.ThrottleWriteBpsDevice, "blkio.throttle.write_bps_device", "wbps"},
		{blkio.ThrottleReadIOPSDevice, "blkio.throttle.read_iops_device", "riops"},
		{blkio.ThrottleWriteIOPSDevice, "blkio.throttle.write_iops_device", "wiops"},
	}

	for _, l := range lists {
		for _, d := range l.devices {
			if unified {
				line := fmt.Sprintf("%d:%d %s=%d", d.Major, d.Minor, l.v2Type, d.Rate)
				if err := writeFile(dir, "io.max", line); err != nil {
					return err
				}
				continue
			}
			line := fmt.Sprintf("%d:%d %d", d.Major, d.Minor, d.Rate)
			if err := writeFile(dir, l.v1File, line); err != nil {
				return err
			}
		}
	}
	return nil
}
