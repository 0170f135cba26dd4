package main

import (
	"fmt"
	"os"

	"github.com/ancientwizard/karaoke-composer-cdg/internal/cdgclip"
	"github.com/ancientwizard/karaoke-composer-cdg/internal/cdgexport"
	"github.com/ancientwizard/karaoke-composer-cdg/internal/cdgpacket"
	"github.com/ancientwizard/karaoke-composer-cdg/internal/cdgtext"
	"github.com/ancientwizard/karaoke-composer-cdg/internal/cdgtransition"
	"github.com/ancientwizard/karaoke-composer-cdg/internal/diagnostics"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: cdgauthor <output.cdg>")
		os.Exit(1)
	}
	outputPath := os.Args[1]

	anomalies := 0
	sink := diagnostics.New(func(e diagnostics.Event) {
		anomalies++
		fmt.Fprintf(os.Stderr, "diagnostic: %s\n", e.Error())
	})

	transitions, err := cdgtransition.LoadString(demoTransitions)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading transitions: %v\n", err)
		os.Exit(1)
	}

	// A four-second target at 300 packets/second, filled out with the demo
	// clips below and padded with idle packets past the last one.
	exporter := cdgexport.New(1200, transitions, sink)

	// Establish a small opening palette: black background, white text,
	// a highlight color reserved for karaoke fill-in.
	var openingPalette [16]cdgpacket.RGB6
	openingPalette[1] = cdgpacket.RGB6{R: 63, G: 63, B: 63} // white
	openingPalette[2] = cdgpacket.RGB6{R: 63, G: 20, B: 0}  // amber highlight
	paletteClip := cdgclip.NewPalette(0, 0, 4, 1, openingPalette)
	if err := exporter.Register(paletteClip); err != nil {
		fmt.Fprintf(os.Stderr, "Error registering palette clip: %v\n", err)
		os.Exit(1)
	}

	face, err := cdgtext.LoadFace(nil, 12)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading font face: %v\n", err)
		os.Exit(1)
	}
	lyric, err := cdgclip.NewText(1, 0, 100, 600, cdgtext.Params{
		Text:       "NOW PLAYING",
		Face:       face,
		Width:      288,
		Height:     12,
		Foreground: 1,
		Background: 0,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error rasterizing lyric clip: %v\n", err)
		os.Exit(1)
	}
	lyric.SetTransitionName("wipe-left")
	if err := exporter.Register(lyric); err != nil {
		fmt.Fprintf(os.Stderr, "Error registering lyric clip: %v\n", err)
		os.Exit(1)
	}

	data, err := exporter.Export()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error exporting stream: %v\n", err)
		os.Exit(1)
	}

	if err := os.WriteFile(outputPath, data, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", outputPath, err)
		os.Exit(1)
	}

	fmt.Printf("CD+G stream written: %s\n", outputPath)
	fmt.Printf("Stream size: %d bytes (%d packets, %d anomalies)\n", len(data), len(data)/cdgpacket.Size, anomalies)
}

// demoTransitions names one small wipe ordering over the lyric clip's own
// 48x1 tile grid (288/6 columns, 12/12 row), left to right.
const demoTransitions = `
[[transition]]
name = "wipe-left"
no_transition = false
order = [[0,0],[1,0],[2,0],[3,0],[4,0],[5,0],[6,0],[7,0],[8,0],[9,0],[10,0],[11,0],
         [12,0],[13,0],[14,0],[15,0],[16,0],[17,0],[18,0],[19,0],[20,0],[21,0],[22,0],[23,0],
         [24,0],[25,0],[26,0],[27,0],[28,0],[29,0],[30,0],[31,0],[32,0],[33,0],[34,0],[35,0],
         [36,0],[37,0],[38,0],[39,0],[40,0],[41,0],[42,0],[43,0],[44,0],[45,0],[46,0],[47,0]]
`
