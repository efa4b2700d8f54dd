package gifbolt

// Frame is one fully composed animation frame in straight-alpha RGBA32.
// Frames are immutable after decode and live for the decoder's lifetime;
// premultiplied and scaled variants are derived on demand and cached
// separately.
type Frame struct {
	// Pixels is width*height*4 bytes of RGBA data, row-major, no padding.
	Pixels []byte

	// Width and Height are the frame dimensions in pixels. Every frame
	// of a decoded animation shares the logical screen dimensions.
	Width  int
	Height int

	// DelayMs is the raw presentation delay from the stream in
	// milliseconds, before the minimum-delay floor is applied.
	DelayMs int
}

// ByteLen returns the pixel payload size in bytes.
func (f *Frame) ByteLen() int { return f.Width * f.Height * 4 }
