// Command gifboltdemo inspects GIF animations and exports decoded frames.
package main

import (
	"flag"
	"fmt"
	"image"
	"image/png"
	"log"
	"os"

	"github.com/gogpu/gifbolt"
)

func main() {
	var (
		frame  = flag.Int("frame", 0, "frame index to export")
		output = flag.String("output", "frame.png", "output file")
		info   = flag.Bool("info", false, "print metadata and exit")
		steps  = flag.Int("steps", 0, "print a playback schedule for this many ticks")
	)
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: gifboltdemo [flags] input.gif")
		flag.PrintDefaults()
		os.Exit(2)
	}

	dec := gifbolt.NewDecoder()
	defer dec.Close()
	if !dec.LoadFile(flag.Arg(0)) {
		log.Fatalf("Failed to load %s: %v", flag.Arg(0), dec.LastError())
	}

	printMetadata(dec, flag.Arg(0))
	if *info {
		return
	}

	if *steps > 0 {
		printSchedule(dec, *steps)
	}

	if err := exportFrame(dec, *frame, *output); err != nil {
		log.Fatalf("Failed to export frame %d: %v", *frame, err)
	}
	log.Printf("Frame %d saved to %s (%dx%d)\n", *frame, *output, dec.Width(), dec.Height())
}

func printMetadata(dec *gifbolt.Decoder, path string) {
	fmt.Printf("%s: %dx%d, %d frames\n", path, dec.Width(), dec.Height(), dec.FrameCount())
	if dec.IsLooping() {
		fmt.Println("loop: forever")
	} else {
		fmt.Println("loop: play once")
	}
	fmt.Printf("background: #%08X\n", dec.BackgroundColor())
	fmt.Printf("transparency: %v\n", dec.HasTransparency())
	for i, c := range dec.Comments() {
		fmt.Printf("comment %d: %s\n", i, c)
	}
}

// printSchedule walks the playback state machine without touching pixel
// data, showing which frame a render loop would present on each tick.
func printSchedule(dec *gifbolt.Decoder, steps int) {
	current := 0
	repeat := 0
	if dec.IsLooping() {
		repeat = -1
	}
	for i := 0; i < steps; i++ {
		fmt.Printf("tick %2d: frame %d for %dms\n", i, current, dec.FrameDelayMs(current))
		adv := gifbolt.AdvanceFrame(current, dec.FrameCount(), repeat)
		if adv.Complete {
			fmt.Println("animation complete")
			return
		}
		current, repeat = adv.NextFrame, adv.RepeatCount
	}
}

func exportFrame(dec *gifbolt.Decoder, index int, path string) error {
	f, err := dec.Frame(index)
	if err != nil {
		return err
	}

	// Frames are straight-alpha RGBA, which is exactly NRGBA layout.
	img := &image.NRGBA{
		Pix:    f.Pixels,
		Stride: f.Width * 4,
		Rect:   image.Rect(0, 0, f.Width, f.Height),
	}

	out, err := os.Create(path)
	if err != nil {
		return err
	}
	defer out.Close()
	return png.Encode(out, img)
}
