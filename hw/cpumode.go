package hw

// CPUMode is one of the seven ARM7TDMI processor modes, encoded as the
// 5-bit CPSR mode field value.
type CPUMode uint8

//go:generate go tool stringer -type=CPUMode -trimprefix=Mode

const (
	ModeUser       CPUMode = 0x10
	ModeFIQ        CPUMode = 0x11
	ModeIRQ        CPUMode = 0x12
	ModeSupervisor CPUMode = 0x13
	ModeAbort      CPUMode = 0x17
	ModeUndefined  CPUMode = 0x1B
	ModeSystem     CPUMode = 0x1F
)

// ModeFromBits decodes a CPSR mode field, falling back to System for the
// unused encodings.
func ModeFromBits(bits uint32) CPUMode {
	switch m := CPUMode(bits & 0x1F); m {
	case ModeUser, ModeFIQ, ModeIRQ, ModeSupervisor, ModeAbort, ModeUndefined, ModeSystem:
		return m
	}
	return ModeSystem
}

// Privileged reports whether the mode may modify the CPSR control bits.
func (m CPUMode) Privileged() bool {
	return m != ModeUser
}

// Exception reports whether the mode owns a saved status register.
func (m CPUMode) Exception() bool {
	return m != ModeUser && m != ModeSystem
}
