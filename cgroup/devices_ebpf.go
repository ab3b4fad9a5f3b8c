package cgroup

import (
	"fmt"

	"github.com/cilium/ebpf"
	"github.com/cilium/ebpf/asm"
	"github.com/cilium/ebpf/link"

	cerrors "crun-go/errors"
	"crun-go/spec"
)

// The kernel hands a cgroup/device program a pointer to
//
//	struct bpf_cgroup_dev_ctx {
//	        __u32 access_type; // low 16 bits: BPF_DEVCG_DEV_{BLOCK,CHAR}, high 16: access bitmask
//	        __u32 major;
//	        __u32 minor;
//	};
//
// in R1. The program returns 1 to allow the access, 0 to deny it.
const (
	devCgroupDevBlock = 1
	devCgroupDevChar  = 2

	accRead  = 1
	accWrite = 2
	accMknod = 4
)

func accessMask(access string) uint32 {
	var mask uint32
	for _, c := range access {
		switch c {
		case 'r':
			mask |= accRead
		case 'w':
			mask |= accWrite
		case 'm':
			mask |= accMknod
		}
	}
	return mask
}

func devTypeConst(t string) uint32 {
	if t == "b" {
		return devCgroupDevBlock
	}
	return devCgroupDevChar
}

// buildDeviceProgram assembles a CGROUP_DEVICE classifier implementing the
// ordered allow/deny rule list. Rules are appended in reverse declaration
// order (most-recently-listed first); defaults are unioned in by the
// caller before this function runs, after the user's own rules, so the
// reversal walks defaults first and the user's rules last.
//
// A matching rule sets R0 to its verdict and falls through to the next
// rule instead of returning immediately, so a later-positioned rule in
// the walk order can still overwrite an earlier one's verdict for the
// same device range. Since user rules are walked last, their verdict is
// the one still in R0 when the epilogue finally returns it, letting a
// user rule override a default for the same device. Only the epilogue
// performs the actual return.
func buildDeviceProgram(rules []spec.LinuxDeviceCgroup) (asm.Instructions, error) {
	var insts asm.Instructions

	// Prologue: classify the incoming request and default to deny.
	// R2 = ctx->access_type, R3 = ctx->major, R4 = ctx->minor.
	insts = append(insts,
		asm.LoadMem(asm.R2, asm.R1, 0, asm.Word),
		asm.LoadMem(asm.R3, asm.R1, 4, asm.Word),
		asm.LoadMem(asm.R4, asm.R1, 8, asm.Word),
		asm.Mov.Imm(asm.R0, 0),
	)

	n := len(rules)
	label := func(i int) string { return fmt.Sprintf("rule_%d", i) }

	for idx := 0; idx < n; idx++ {
		// Walk the rule list back to front: defaults are evaluated
		// before user rules, so a user rule's verdict is the last one
		// written to R0 for a device range both match.
		r := rules[n-1-idx]
		nextLabel := label(idx + 1)

		var block asm.Instructions
		if r.Type != "a" {
			block = append(block,
				asm.Mov.Reg(asm.R5, asm.R2),
				asm.And.Imm(asm.R5, 0xFFFF),
				asm.JNE.Imm(asm.R5, int32(devTypeConst(r.Type)), nextLabel),
			)
		}

		accessBits := accessMask(r.Access)
		block = append(block,
			asm.Mov.Reg(asm.R5, asm.R2),
			asm.Rsh.Imm(asm.R5, 16),
			asm.And.Imm(asm.R5, int32(accessBits)),
			asm.JEq.Imm(asm.R5, 0, nextLabel),
		)

		if r.Major != nil {
			block = append(block, asm.JNE.Imm(asm.R3, int32(*r.Major), nextLabel))
		}
		if r.Minor != nil {
			block = append(block, asm.JNE.Imm(asm.R4, int32(*r.Minor), nextLabel))
		}

		verdict := int32(0)
		if r.Allow {
			verdict = 1
		}
		block = append(block, asm.Mov.Imm(asm.R0, verdict))

		// The previous block's mismatch jump lands on this block's first
		// instruction.
		block[0] = block[0].WithSymbol(label(idx))
		insts = append(insts, block...)
	}

	// Epilogue: return whatever verdict survived the walk, deny if no
	// rule ever matched.
	insts = append(insts,
		asm.Return().WithSymbol(label(n)),
	)

	return insts, nil
}

// deviceProgram is the compiled, loaded form of buildDeviceProgram, kept
// alive only for the duration of a single apply call per the no-internal-
// state rule: callers must Close it once attached.
type deviceProgram struct {
	prog *ebpf.Program
	link link.Link
}

func (p *deviceProgram) Close() error {
	var err error
	if p.link != nil {
		err = p.link.Close()
	}
	if p.prog != nil {
		if cerr := p.prog.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}

// loadAndAttachDeviceProgram builds, loads, and attaches the cgroup/device
// program for dir (a v2 cgroup directory). The caller is responsible for
// closing the returned handle once it has replaced any previously attached
// program for this cgroup.
func loadAndAttachDeviceProgram(dir string, rules []spec.LinuxDeviceCgroup) (*deviceProgram, error) {
	insts, err := buildDeviceProgram(rules)
	if err != nil {
		return nil, cerrors.Wrap(err, cerrors.ErrInvalidConfig, "devices.ebpf.build")
	}

	prog, err := ebpf.NewProgram(&ebpf.ProgramSpec{
		Type:         ebpf.CGroupDevice,
		License:      "GPL",
		Instructions: insts,
	})
	if err != nil {
		return nil, cerrors.Wrap(err, cerrors.ErrKernelRejected, "devices.ebpf.load")
	}

	cg, err := link.AttachCgroup(link.CgroupOptions{
		Path:    dir,
		Attach:  ebpf.AttachCGroupDevice,
		Program: prog,
	})
	if err != nil {
		prog.Close()
		return nil, cerrors.Wrap(err, cerrors.ErrKernelRejected, "devices.ebpf.attach")
	}

	return &deviceProgram{prog: prog, link: cg}, nil
}

// applyDevicesV2 builds the default-unioned rule set and attaches the
// resulting classifier to dir. Rootless tolerance mirrors the v1 writer:
// an all-allow rule set is permitted to fail silently under rootless
// delegation.
func applyDevicesV2(dir string, rules []spec.LinuxDeviceCgroup, needDeviceProgram bool) error {
	if !needDeviceProgram && len(rules) == 0 {
		return nil
	}

	anyDeny := false
	for _, r := range rules {
		if !r.Allow {
			anyDeny = true
			break
		}
	}

	full := spec.WithDefaultDevices(rules)
	prog, err := loadAndAttachDeviceProgram(dir, full)
	if err != nil {
		if !anyDeny && isRootless() {
			return nil
		}
		return err
	}
	prog.Close()
	return nil
}
