package hw

// bankID indexes the per-mode private register storage. User and System
// share the non-banked set.
type bankID uint8

const (
	bankFIQ bankID = iota
	bankIRQ
	bankSupervisor
	bankAbort
	bankUndefined
	bankSystem

	numBanks
)

var modeBanks = map[CPUMode]bankID{
	ModeUser:       bankSystem,
	ModeSystem:     bankSystem,
	ModeFIQ:        bankFIQ,
	ModeIRQ:        bankIRQ,
	ModeSupervisor: bankSupervisor,
	ModeAbort:      bankAbort,
	ModeUndefined:  bankUndefined,
}

func (m CPUMode) bank() bankID {
	return modeBanks[m]
}

// RegisterBanks holds the private register copies of each processor mode.
// Every mode owns R13, R14 and (exception modes only) a saved status
// register; FIQ additionally owns R8-R12. The CPU keeps the current mode's
// values live in its register file and swaps them against this storage on
// every mode transition.
type RegisterBanks struct {
	SP   [numBanks]uint32
	LR   [numBanks]uint32
	SPSR [numBanks]PSR

	// R8-R12 for the FIQ mode and for everyone else. One of the two rows
	// is live in the register file at any time.
	FIQ    [5]uint32
	Common [5]uint32
}

// swap exchanges the live R13/R14 (and R8-R12 when FIQ is involved) between
// the register file r and the banked storage, moving from mode from to mode
// to. The caller saves/restores SPSR separately.
func (b *RegisterBanks) swap(r *[16]uint32, from, to CPUMode) {
	if from == to {
		return
	}

	b.SP[from.bank()] = r[13]
	b.LR[from.bank()] = r[14]
	r[13] = b.SP[to.bank()]
	r[14] = b.LR[to.bank()]

	if from != ModeFIQ && to == ModeFIQ {
		copy(b.Common[:], r[8:13])
		copy(r[8:13], b.FIQ[:])
	} else if from == ModeFIQ && to != ModeFIQ {
		copy(b.FIQ[:], r[8:13])
		copy(r[8:13], b.Common[:])
	}
}

func (b *RegisterBanks) reset() {
	*b = RegisterBanks{}
}
