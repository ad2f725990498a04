// Command framestab runs the stabilization engine over a directory of
// extracted frames (frame_0001.png, ...) and writes stabilized frames, plus
// optional preview thumbnails.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"video-stabilizer/internal/frameio"
	"video-stabilizer/internal/stabilize"
	"video-stabilizer/internal/version"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	framesDir := flag.String("frames", "", "Directory of input frames")
	outDir := flag.String("out", "", "Directory for stabilized frames")
	thumbsDir := flag.String("thumbs", "", "Optional directory for preview thumbnails")
	thumbSize := flag.Int("thumbsize", 256, "Thumbnail bounding size in pixels")
	verbose := flag.Bool("v", false, "Log per-frame diagnostics")
	flag.Parse()

	if *framesDir == "" || *outDir == "" {
		fmt.Println("Usage: framestab -frames <dir> -out <dir> [-thumbs <dir>] [-v]")
		os.Exit(1)
	}

	log.Printf("framestab %s", version.Version)

	if err := run(*framesDir, *outDir, *thumbsDir, *thumbSize, *verbose); err != nil {
		log.Fatalf("stabilization failed: %v", err)
	}
}

func run(framesDir, outDir, thumbsDir string, thumbSize int, verbose bool) error {
	frames, err := frameio.ListFrames(framesDir)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("cannot create output directory: %w", err)
	}
	if thumbsDir != "" {
		if err := os.MkdirAll(thumbsDir, 0o755); err != nil {
			return fmt.Errorf("cannot create thumbnail directory: %w", err)
		}
	}

	engine := stabilize.NewEngine()
	engine.Verbose = verbose
	defer engine.Close()

	for i, path := range frames {
		img, err := frameio.LoadImage(path)
		if err != nil {
			return fmt.Errorf("frame %d: %w", i, err)
		}
		frame, err := frameio.ToMat(img)
		if err != nil {
			return fmt.Errorf("frame %d: %w", i, err)
		}

		stabilized, err := engine.Process(frame)
		frame.Close()
		if err != nil {
			return fmt.Errorf("frame %d: %w", i, err)
		}

		out, err := frameio.ToImage(stabilized)
		stabilized.Close()
		if err != nil {
			return fmt.Errorf("frame %d: %w", i, err)
		}

		name := filepath.Base(path)
		if err := frameio.SaveImage(filepath.Join(outDir, name), out); err != nil {
			return fmt.Errorf("frame %d: %w", i, err)
		}
		if thumbsDir != "" {
			thumb := frameio.Preview(out, thumbSize)
			if err := frameio.SaveImage(filepath.Join(thumbsDir, name), thumb); err != nil {
				return fmt.Errorf("frame %d thumbnail: %w", i, err)
			}
		}

		if verbose && (i+1)%50 == 0 {
			log.Printf("processed %d/%d frames, phase=%s", i+1, len(frames), engine.State().Phase)
		}
	}

	log.Printf("stabilized %d frames into %s", len(frames), outDir)
	return nil
}
