package block

// ECCWord is the data block handed to a Codec: one codeword extracted from
// a CacheLine according to a Layout (message.hh/message.cc).
type ECCWord struct {
	Block
	bitK int
}

// NewECCWord allocates an (n,k) codeword container.
func NewECCWord(bitN, bitK int) *ECCWord {
	return &ECCWord{Block: *NewBlock(bitN), bitK: bitK}
}

func (w *ECCWord) BitK() int { return w.bitK }

// Extract fills w's bits from data according to layout, mirroring
// ECCWord::extract in message.cc symbol-for-symbol. pos selects which
// codeword within the cacheline (meaning varies per layout); channelWidth is
// the DIMM channel's pin count; cfg only matters for the MSGConfig-driven
// layouts.
func (w *ECCWord) Extract(data *Block, layout Layout, pos, channelWidth int, cfg MSGConfig) {
	switch layout {
	case Linear:
		for i := 0; i < channelWidth; i++ {
			w.SetBit(i, data.GetBit(channelWidth*pos+i))
		}

	case Pin:
		for i := 0; i < channelWidth; i++ {
			for beat := 0; beat < 8; beat++ {
				w.SetBit(i*8+beat, data.GetBit(channelWidth*beat+i))
			}
		}

	case Pin2:
		for i := 0; i < channelWidth-2; i++ {
			for beat := 0; beat < 8; beat++ {
				w.SetBit(i*8+beat, data.GetBit(channelWidth*beat+i))
			}
		}

	case Pin9:
		for i := 0; i < channelWidth; i++ {
			for beat := 0; beat < 9; beat++ {
				w.SetBit(i*9+beat, data.GetBit(channelWidth*beat+i))
			}
		}

	case Pin16:
		const burst, chipWidth = 16, 4
		for i := 0; i < channelWidth/chipWidth; i++ {
			for j := 0; j < burst; j++ {
				for k := 0; k < chipWidth; k++ {
					w.SetBit((burst*i+j)*chipWidth+k, data.GetBit(channelWidth*j+chipWidth*i+k))
				}
			}
		}

	case DPin:
		for i := 0; i < channelWidth/2; i++ {
			for beat := 0; beat < 4; beat++ {
				for k := 0; k < 2; k++ {
					w.SetBit(i*8+beat*2+k, data.GetBit(channelWidth*beat+i*2+k))
				}
			}
		}

	case AMD:
		const chipWidth = 4
		for i := 0; i < channelWidth/chipWidth; i++ {
			for beat := 0; beat < 2; beat++ {
				for k := 0; k < chipWidth; k++ {
					w.SetBit(i*8+beat*chipWidth+k, data.GetBit(channelWidth*(pos*2+beat)+i*chipWidth+k))
				}
			}
		}

	case AMD32BL:
		const chipWidth = 4
		for i := 0; i < channelWidth/chipWidth; i++ {
			for beat := 0; beat < 8; beat++ {
				for k := 0; k < chipWidth; k++ {
					w.SetBit(i*32+beat*chipWidth+k, data.GetBit(channelWidth*(pos*8+beat)+i*chipWidth+k))
				}
			}
		}

	case MultiX8:
		const chipWidth = 8
		for i := 0; i < channelWidth/chipWidth; i++ {
			for beat := 0; beat < 2; beat++ {
				for k := 0; k < chipWidth; k++ {
					w.SetBit(i*16+beat*chipWidth+k, data.GetBit(channelWidth*(pos*2+beat)+i*chipWidth+k))
				}
			}
		}

	case MultiX4:
		const chipWidth = 4
		for i := 0; i < channelWidth/chipWidth; i++ {
			for beat := 0; beat < 4; beat++ {
				for k := 0; k < chipWidth; k++ {
					w.SetBit(i*16+beat*chipWidth+k, data.GetBit(channelWidth*(pos*4+beat)+i*chipWidth+k))
				}
			}
		}

	case OnChipX4:
		extractOnChip(w, data, channelWidth, pos, 18, 4)

	case OnChipX4_2:
		extractOnChip(w, data, channelWidth, pos, 17, 4)

	case OnChipX8:
		extractOnChip(w, data, channelWidth, pos, 9, 8)

	case OnChip17x8:
		extractOnChip(w, data, channelWidth, pos, 17, 8)

	case OnChip17x4:
		extractOnChip(w, data, channelWidth, pos, 17, 4)

	case OnChip17x16:
		extractOnChip(w, data, channelWidth, pos, 17, 16)

	case OnChip17x32:
		extractOnChip(w, data, channelWidth, pos, 17, 32)

	case OnChip18x32:
		extractOnChip(w, data, channelWidth, pos, 18, 32)

	case DuoBL34:
		extractDuo(w, data, channelWidth, 34, 4, 8)

	case DuoBL33:
		extractDuoOdd(w, data, channelWidth, 33, 4)

	case DuoBL9:
		extractDuoBL9(w, data, channelWidth)

	case DuoBL9Full:
		extractDuoFull(w, data, channelWidth, 9, 4)

	case DuoBL17, OnChipX4IECC8BL17Duo2:
		extractDuoFull(w, data, channelWidth, 17, 4)

	case DuoBL17x8:
		extractDuoWide(w, data, channelWidth, 17, 8)

	case OnChipX4IECC8BL17Duo1:
		for i := 0; i < 16; i++ {
			for j := 0; j < 4; j++ {
				w.SetBit(i*4+j, data.GetBit(channelWidth*i+pos*4+j))
			}
		}
		for i := 17; i < 19; i++ {
			for j := 0; j < 4; j++ {
				w.SetBit((i+15)*4+j, data.GetBit(channelWidth*i+pos*4+j))
			}
		}

	case OnChipX4IECC8BL16_128Overfetch:
		extractOverfetchIECC(w, data, channelWidth, pos, 16*2, 2)

	case OnChipX4IECC16BL16_128Overfetch:
		extractOverfetchIECC(w, data, channelWidth, pos, 16*2, 4)

	case OnChipX4IECC8BL16_256Overfetch:
		extractOverfetchIECC(w, data, channelWidth, pos, 16*4, 2)

	case OnChipX4IECC16BL16_256Overfetch:
		extractOverfetchIECC(w, data, channelWidth, pos, 16*4, 4)

	case OnChipX4IECC32BL16_256Overfetch:
		extractOverfetchConfigured(w, data, channelWidth, pos, cfg)

	case UseMsgConfig:
		extractUseMsgConfig(w, data, channelWidth, pos, cfg)

	default:
		panic("block: unsupported layout in Extract")
	}
}

func extractOnChip(w *ECCWord, data *Block, channelWidth, pos, height, chipWidth int) {
	for i := 0; i < height; i++ {
		for k := 0; k < chipWidth; k++ {
			w.SetBit(i*chipWidth+k, data.GetBit(channelWidth*i+pos*chipWidth+k))
		}
	}
}

// extractDuo implements the duoBL34-style layout: (burst-2) full beats
// packed per chip group, followed by the final two beats packed two-per-symSize.
func extractDuo(w *ECCWord, data *Block, channelWidth, burst, chipWidth, tailSymSize int) {
	for i := 0; i < channelWidth/chipWidth; i++ {
		for j := 0; j < burst-2; j++ {
			for k := 0; k < chipWidth; k++ {
				w.SetBit(((burst-2)*i+j)*chipWidth+k, data.GetBit(channelWidth*j+chipWidth*i+k))
			}
		}
	}
	offset := channelWidth * (burst - 2)
	for i := 0; i < channelWidth/chipWidth; i++ {
		for k := 0; k < chipWidth; k++ {
			w.SetBit(offset+i*tailSymSize+k, data.GetBit(channelWidth*(burst-2)+chipWidth*i+k))
			w.SetBit(offset+i*tailSymSize+chipWidth+k, data.GetBit(channelWidth*(burst-1)+chipWidth*i+k))
		}
	}
}

// extractDuoOdd implements the duoBL33-style layout: (burst-1) full beats,
// then one final beat packed chipWidth-wide.
func extractDuoOdd(w *ECCWord, data *Block, channelWidth, burst, chipWidth int) {
	for i := 0; i < channelWidth/chipWidth; i++ {
		for j := 0; j < burst-1; j++ {
			for k := 0; k < chipWidth; k++ {
				w.SetBit(((burst-1)*i+j)*chipWidth+k, data.GetBit(channelWidth*j+chipWidth*i+k))
			}
		}
	}
	offset := channelWidth * (burst - 1)
	for i := 0; i < channelWidth/chipWidth; i++ {
		for k := 0; k < chipWidth; k++ {
			w.SetBit(offset+i*chipWidth+k, data.GetBit(channelWidth*(burst-1)+chipWidth*i+k))
		}
	}
}

// extractDuoBL9 implements duoBL9: 8 full beats packed x4, plus 16 chips'
// two-bit tails packed two-per-symbol.
func extractDuoBL9(w *ECCWord, data *Block, channelWidth int) {
	const burst, chipWidth = 9, 4
	for i := 0; i < channelWidth/chipWidth; i++ {
		for j := 0; j < burst-1; j++ {
			for k := 0; k < chipWidth; k++ {
				w.SetBit(((burst-1)*i+j)*chipWidth+k, data.GetBit(channelWidth*j+chipWidth*i+k))
			}
		}
	}
	offset := channelWidth * (burst - 1)
	for i := 0; i < 16; i++ {
		for k := 0; k < 2; k++ {
			w.SetBit(offset+i*2+k, data.GetBit(channelWidth*(burst-1)+chipWidth*i+k))
		}
	}
}

// extractDuoFull implements duoBL9full/duoBL17/ONCHIPx4_IECC8_BL17DUO_2:
// (burst-1) full beats packed x4, plus the final beat packed x4 per chip
// group (12.5%-style on-chip redundancy).
func extractDuoFull(w *ECCWord, data *Block, channelWidth, burst, chipWidth int) {
	for i := 0; i < channelWidth/chipWidth; i++ {
		for j := 0; j < burst-1; j++ {
			for k := 0; k < chipWidth; k++ {
				w.SetBit(((burst-1)*i+j)*chipWidth+k, data.GetBit(channelWidth*j+chipWidth*i+k))
			}
		}
	}
	offset := channelWidth * (burst - 1)
	for i := 0; i < channelWidth/chipWidth; i++ {
		for k := 0; k < chipWidth; k++ {
			w.SetBit(offset+i*chipWidth+k, data.GetBit(channelWidth*(burst-1)+chipWidth*i+k))
		}
	}
}

// extractDuoWide implements duoBL17x8: chipWidth=8 variant of extractDuoFull.
func extractDuoWide(w *ECCWord, data *Block, channelWidth, burst, chipWidth int) {
	extractDuoFull(w, data, channelWidth, burst, chipWidth)
}

// extractOverfetchIECC implements the ONCHIPx4_IECC{8,16}_BL16_{128,256}_Overfetch
// family: `base` beats of plain x4 data followed by `tail` beats of IECC
// redundancy, all packed x4.
func extractOverfetchIECC(w *ECCWord, data *Block, channelWidth, pos, base, tail int) {
	for i := 0; i < base; i++ {
		for j := 0; j < 4; j++ {
			w.SetBit(i*4+j, data.GetBit(channelWidth*i+pos*4+j))
		}
	}
	for i := base; i < base+tail; i++ {
		for j := 0; j < 4; j++ {
			w.SetBit(i*4+j, data.GetBit(channelWidth*i+pos*4+j))
		}
	}
}

// extractOverfetchConfigured implements ONCHIPx4_IECC32_BL16_256_Overfetch,
// which reads its beat geometry from cfg instead of hard-coded constants.
func extractOverfetchConfigured(w *ECCWord, data *Block, channelWidth, pos int, cfg MSGConfig) {
	height := cfg.HeightBase
	baseBL := cfg.DRAMBaseBL
	extraBeat := cfg.DRAMExtraBeat
	msgWidth := cfg.ChipWidth
	extraHeight := cfg.ExtraHeight
	overfetchMult := cfg.OverfetchMult

	for k := 0; k < baseBL*overfetchMult/height; k++ {
		for i := 0; i < msgWidth; i++ {
			for j := 0; j < height; j++ {
				w.SetBit(msgWidth*height*k+i*height+j,
					data.GetBit(channelWidth*j+pos*msgWidth+i+channelWidth*height*k))
			}
		}
	}
	if extraBeat != 0 && extraHeight != 0 {
		offsetRedundancy := baseBL * overfetchMult / height
		for k := 0; k < extraBeat/extraHeight; k++ {
			for i := 0; i < msgWidth; i++ {
				for j := 0; j < extraHeight; j++ {
					w.SetBit(msgWidth*height*offsetRedundancy+msgWidth*extraHeight*k+i*extraHeight+j,
						data.GetBit(channelWidth*j+pos*msgWidth+i+channelWidth*baseBL*overfetchMult+channelWidth*extraHeight*k))
				}
			}
		}
	}
}

// extractUseMsgConfig implements the fully-generic USEMESGCONFIG layout:
// cfg drives both the base-message geometry and where (beat/chip/pin)
// redundancy is appended (message.hh's RedundancyMode).
func extractUseMsgConfig(w *ECCWord, data *Block, channelWidth, pos int, cfg MSGConfig) {
	height := cfg.HeightBase
	baseBL := cfg.DRAMBaseBL
	extraBeat := cfg.DRAMExtraBeat
	msgWidth := cfg.ChipWidth
	chipNumber := cfg.ChipNumber
	extraHeight := cfg.ExtraHeight
	overfetchMult := cfg.OverfetchMult
	chipWidth := cfg.ExtraPin()

	if cfg.Mode != ExtraChip {
		if pos == -1 {
			panic("block: USEMESGCONFIG requires pos != -1 outside ExtraChip mode")
		}
		for k := 0; k < baseBL*overfetchMult/height; k++ {
			for i := 0; i < msgWidth; i++ {
				for j := 0; j < height; j++ {
					w.SetBit(msgWidth*height*k+i*height+j,
						data.GetBit(channelWidth*j+pos*chipWidth+i+channelWidth*height*k))
				}
			}
		}
		switch cfg.Mode {
		case ExtraBeat:
			if extraBeat != 0 && extraHeight != 0 {
				offsetRedundancy := baseBL * overfetchMult / height
				for k := 0; k < extraBeat/extraHeight; k++ {
					for i := 0; i < chipWidth; i++ {
						for j := 0; j < extraHeight; j++ {
							w.SetBit(chipWidth*height*offsetRedundancy+chipWidth*extraHeight*k+i*extraHeight+j,
								data.GetBit(channelWidth*j+pos*chipWidth+i+channelWidth*baseBL*overfetchMult+channelWidth*extraHeight*k))
						}
					}
				}
			}
		case ExtraPin:
			if extraHeight != 0 {
				offsetRedundancy := baseBL * overfetchMult / height
				for i := 0; i < chipWidth-msgWidth; i++ {
					for j := 0; j < extraHeight; j++ {
						w.SetBit(msgWidth*height*offsetRedundancy+i*extraHeight+j,
							data.GetBit(channelWidth*j+pos*chipWidth+msgWidth+i))
					}
				}
			}
		}
		return
	}

	// ExtraChip: redundancy lives in a separate chip, bypassing extra pin/beat.
	if pos == -1 {
		for chipnum := 0; chipnum < chipNumber; chipnum++ {
			for k := 0; k < baseBL*overfetchMult/height; k++ {
				for i := 0; i < msgWidth; i++ {
					for j := 0; j < height; j++ {
						w.SetBit(chipnum*baseBL*overfetchMult*msgWidth+msgWidth*height*k+i*height+j,
							data.GetBit(channelWidth*j+chipnum*chipWidth+i+channelWidth*height*k))
					}
				}
			}
		}
	} else {
		for chipnum := 0; chipnum < chipNumber; chipnum++ {
			for i := 0; i < msgWidth; i++ {
				for j := 0; j < height; j++ {
					w.SetBit(chipnum*height*overfetchMult*msgWidth+i*height+j,
						data.GetBit(channelWidth*j+chipnum*chipWidth+i+channelWidth*height*pos))
				}
			}
		}
	}

	if extraHeight != 0 {
		if pos == -1 {
			panic("block: USEMESGCONFIG ExtraChip redundancy tail requires pos != -1")
		}
		offsetRedundancy := baseBL * overfetchMult / height
		for i := 0; i < chipWidth; i++ {
			for j := 0; j < extraHeight; j++ {
				w.SetBit(msgWidth*height*offsetRedundancy+i*extraHeight+j,
					data.GetBit(channelWidth*j+pos*chipWidth+i+channelWidth*baseBL*overfetchMult))
			}
		}
	}
}
