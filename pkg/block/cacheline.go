package block

// CacheLine is the fetched-from-memory data block an ECCWord is extracted
// from; it can hold multiple ECCWords depending on ECC and codec (message.hh).
type CacheLine struct {
	Block
	chipWidth     int
	channelWidth  int
	beatHeight    int
	messageConfig MSGConfig
}

// NewCacheLine allocates a cacheline of chipWidth-bit chips spanning
// channelWidth bits per beat, beatHeight beats deep.
func NewCacheLine(chipWidth, channelWidth, beatHeight int, cfg MSGConfig) *CacheLine {
	return &CacheLine{
		Block:         *NewBlock(channelWidth * beatHeight),
		chipWidth:     chipWidth,
		channelWidth:  channelWidth,
		beatHeight:    beatHeight,
		messageConfig: cfg,
	}
}

func (c *CacheLine) ChipWidth() int         { return c.chipWidth }
func (c *CacheLine) ChipCount() int         { return c.channelWidth / c.chipWidth }
func (c *CacheLine) ChannelWidth() int      { return c.channelWidth }
func (c *CacheLine) BeatHeight() int        { return c.beatHeight }
func (c *CacheLine) MessageConfig() MSGConfig { return c.messageConfig }

// SetBeatHeight overwrites the cacheline's burst-length accounting (does not
// resize the underlying storage).
func (c *CacheLine) SetBeatHeight(h int) { c.beatHeight = h }
