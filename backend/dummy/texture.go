package dummy

import (
	"fmt"

	"github.com/gogpu/gifbolt/render"
	"github.com/gogpu/gputypes"
)

// Texture holds pixels in process memory.
type Texture struct {
	width     uint32
	height    uint32
	data      []byte
	destroyed bool
}

// Width returns the texture width in pixels.
func (t *Texture) Width() uint32 { return t.width }

// Height returns the texture height in pixels.
func (t *Texture) Height() uint32 { return t.height }

// Format returns the frame texture format.
func (t *Texture) Format() gputypes.TextureFormat { return render.FrameTextureFormat }

// Update replaces the texture contents. pixels must hold exactly
// width*height*4 bytes.
func (t *Texture) Update(pixels []byte) error {
	if t.destroyed {
		return render.ErrTextureDestroyed
	}
	if len(pixels) != len(t.data) {
		return fmt.Errorf("got %d bytes, need %d: %w", len(pixels), len(t.data), render.ErrTextureDataSize)
	}
	copy(t.data, pixels)
	return nil
}

// NativeHandle returns 0; a memory texture has no GPU object.
func (t *Texture) NativeHandle() uintptr { return 0 }

// Destroy releases the pixel storage. Safe to call more than once.
func (t *Texture) Destroy() {
	t.destroyed = true
	t.data = nil
}

// Pixels returns the texture's current contents without copying.
// The slice is invalidated by Update and Destroy.
func (t *Texture) Pixels() []byte { return t.data }
