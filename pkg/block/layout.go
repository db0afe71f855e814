package block

// Layout enumerates the ECC word layouts a codeword can be extracted from
// within a cacheline, grounded on dram_error_sim's ECCLayout enum
// (block.hh).
type Layout int

const (
	Linear Layout = iota
	AMD
	AMD32BL
	Pin
	DPin
	MultiX4
	MultiX8
	Pin2
	Pin9
	Pin16
	OnChipX4
	OnChipX4_2
	OnChipX8
	DuoBL9
	DuoBL9Full
	DuoBL17
	DuoBL17x8
	DuoBL33
	DuoBL34
	OnChip17x4
	OnChip17x8
	OnChip17x16
	OnChip17x32
	OnChip18x32
	OnChipX4IECC8BL17Duo1
	OnChipX4IECC8BL17Duo2
	OnChipX4IECC8BL16_128Overfetch
	OnChipX4IECC16BL16_128Overfetch
	OnChipX4IECC8BL16_256Overfetch
	OnChipX4IECC16BL16_256Overfetch
	OnChipX4IECC32BL16_256Overfetch
	UseMsgConfig
)

// RedundancyMode controls where USEMESGCONFIG's extra ECC bits live
// relative to the base message (message.hh's RedundancyMode).
type RedundancyMode int

const (
	ExtraBeat RedundancyMode = iota
	ExtraChip
	ExtraPin
	Both
)

// MSGConfig parameterizes the USEMESGCONFIG / onchip-overfetch layouts,
// grounded on message.hh's MSGConfig.
type MSGConfig struct {
	HeightBase     int
	DRAMBaseBL     int
	DRAMExtraBeat  int
	ExtraHeight    int
	OverfetchMult  int
	ChipWidth      int
	ChipNumber     int
	ExtraPinCount  int
	Mode           RedundancyMode
}

// ExtraPin returns the chip's total pin count including ECC redundancy
// (MSGConfig::get_extrapin: Extra_pin + CHIP_width).
func (m MSGConfig) ExtraPin() int { return m.ExtraPinCount + m.ChipWidth }
