// Package gifmeta scans a raw GIF stream for metadata the image decoder
// does not surface: comment extensions, the Netscape loop extension,
// per-frame transparency flags and the logical screen background color.
//
// The scanner walks the container block structure without decompressing
// image data, so a full-file scan costs a fraction of a decode.
package gifmeta

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"golang.org/x/text/encoding/charmap"
)

// Block introducers and extension labels from the GIF89a specification.
const (
	blockExtension = 0x21
	blockImage     = 0x2C
	blockTrailer   = 0x3B

	labelGraphicControl = 0xF9
	labelComment        = 0xFE
	labelApplication    = 0xFF
)

// ErrNotGIF is returned when the stream does not start with a GIF signature.
var ErrNotGIF = errors.New("gifmeta: not a GIF stream")

// Metadata holds everything gathered from one scan.
type Metadata struct {
	// Version is "87a" or "89a".
	Version string

	// Width and Height are the logical screen dimensions.
	Width  int
	Height int

	// HasGlobalPalette reports whether a global color table is present.
	HasGlobalPalette bool

	// BackgroundIndex is the background color index into the global table.
	BackgroundIndex byte

	// BackgroundRGBA is the background color resolved against the global
	// table, alpha 255. Zero when there is no global table.
	BackgroundRGBA [4]byte

	// HasLoop reports whether a Netscape/animation application extension
	// was present.
	HasLoop bool

	// LoopCount is the raw loop value from the application extension:
	// 0 means repeat forever, N means N additional repeats.
	// Only meaningful when HasLoop is true.
	LoopCount int

	// HasTransparency reports whether any graphic control extension set
	// the transparent color flag.
	HasTransparency bool

	// Comments holds each comment extension decoded from Latin-1.
	Comments []string

	// ImageCount is the number of image descriptors seen.
	ImageCount int
}

// Scan reads a GIF stream and gathers its metadata.
// Image data sub-blocks are skipped, not decompressed. A truncated stream
// returns what was gathered along with the read error.
func Scan(r io.Reader) (*Metadata, error) {
	br := bufio.NewReader(r)
	meta := &Metadata{}

	var header [13]byte
	if _, err := io.ReadFull(br, header[:6]); err != nil {
		return meta, fmt.Errorf("gifmeta: reading header: %w", err)
	}
	if string(header[:3]) != "GIF" {
		return meta, ErrNotGIF
	}
	meta.Version = string(header[3:6])

	// Logical screen descriptor.
	if _, err := io.ReadFull(br, header[6:13]); err != nil {
		return meta, fmt.Errorf("gifmeta: reading screen descriptor: %w", err)
	}
	meta.Width = int(binary.LittleEndian.Uint16(header[6:8]))
	meta.Height = int(binary.LittleEndian.Uint16(header[8:10]))
	packed := header[10]
	meta.BackgroundIndex = header[11]

	if packed&0x80 != 0 {
		meta.HasGlobalPalette = true
		tableSize := 3 * (1 << ((packed & 0x07) + 1))
		table := make([]byte, tableSize)
		if _, err := io.ReadFull(br, table); err != nil {
			return meta, fmt.Errorf("gifmeta: reading global color table: %w", err)
		}
		if off := int(meta.BackgroundIndex) * 3; off+2 < len(table) {
			meta.BackgroundRGBA = [4]byte{table[off], table[off+1], table[off+2], 0xFF}
		}
	}

	for {
		introducer, err := br.ReadByte()
		if err != nil {
			if err == io.EOF {
				// Missing trailer; tolerate like most decoders do.
				return meta, nil
			}
			return meta, fmt.Errorf("gifmeta: reading block introducer: %w", err)
		}

		switch introducer {
		case blockTrailer:
			return meta, nil

		case blockExtension:
			if err := scanExtension(br, meta); err != nil {
				return meta, err
			}

		case blockImage:
			if err := skipImage(br); err != nil {
				return meta, err
			}
			meta.ImageCount++

		default:
			return meta, fmt.Errorf("gifmeta: unknown block introducer 0x%02X", introducer)
		}
	}
}

// scanExtension dispatches one extension block.
func scanExtension(br *bufio.Reader, meta *Metadata) error {
	label, err := br.ReadByte()
	if err != nil {
		return fmt.Errorf("gifmeta: reading extension label: %w", err)
	}

	switch label {
	case labelGraphicControl:
		data, err := readSubBlocks(br)
		if err != nil {
			return err
		}
		if len(data) >= 1 && data[0]&0x01 != 0 {
			meta.HasTransparency = true
		}
		return nil

	case labelComment:
		data, err := readSubBlocks(br)
		if err != nil {
			return err
		}
		text, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
		if err != nil {
			// Latin-1 decodes every byte; treat failure as raw bytes.
			text = data
		}
		meta.Comments = append(meta.Comments, string(text))
		return nil

	case labelApplication:
		data, err := readSubBlocks(br)
		if err != nil {
			return err
		}
		// 11-byte identifier+auth code, then data sub-blocks flattened.
		// NETSCAPE2.0 and ANIMEXTS1.0 both carry the loop sub-block
		// {0x01, lo, hi}.
		if len(data) >= 14 {
			id := string(data[:11])
			if (id == "NETSCAPE2.0" || id == "ANIMEXTS1.0") && data[11] == 0x01 {
				meta.HasLoop = true
				meta.LoopCount = int(binary.LittleEndian.Uint16(data[12:14]))
			}
		}
		return nil

	default:
		_, err := readSubBlocks(br)
		return err
	}
}

// skipImage skips an image descriptor, its optional local color table and
// its LZW data sub-blocks.
func skipImage(br *bufio.Reader) error {
	var desc [9]byte
	if _, err := io.ReadFull(br, desc[:]); err != nil {
		return fmt.Errorf("gifmeta: reading image descriptor: %w", err)
	}

	if desc[8]&0x80 != 0 {
		tableSize := 3 * (1 << ((desc[8] & 0x07) + 1))
		if _, err := br.Discard(tableSize); err != nil {
			return fmt.Errorf("gifmeta: skipping local color table: %w", err)
		}
	}

	// LZW minimum code size byte.
	if _, err := br.ReadByte(); err != nil {
		return fmt.Errorf("gifmeta: reading LZW code size: %w", err)
	}

	_, err := readSubBlocks(br)
	return err
}

// readSubBlocks reads a sub-block chain into one flat slice, consuming the
// zero-length terminator.
func readSubBlocks(br *bufio.Reader) ([]byte, error) {
	var out []byte
	for {
		size, err := br.ReadByte()
		if err != nil {
			return out, fmt.Errorf("gifmeta: reading sub-block size: %w", err)
		}
		if size == 0 {
			return out, nil
		}
		block := make([]byte, int(size))
		if _, err := io.ReadFull(br, block); err != nil {
			return out, fmt.Errorf("gifmeta: reading sub-block: %w", err)
		}
		out = append(out, block...)
	}
}
