// Command frameprep prepares a video for inspection: extracts frames with
// ffmpeg (or takes an already-extracted directory), then writes original,
// contrast-enhanced, and edge renditions of every frame.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"video-stabilizer/internal/enhance"
	"video-stabilizer/internal/frameio"
	"video-stabilizer/internal/version"
)

const (
	extractFPS    = 3
	edgeThreshold = 60
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	video := flag.String("video", "", "Input video (frames extracted with ffmpeg)")
	framesDir := flag.String("frames", "", "Already-extracted frame directory (alternative to -video)")
	outBase := flag.String("out", "", "Base output directory")
	flag.Parse()

	if *outBase == "" || (*video == "" && *framesDir == "") {
		fmt.Println("Usage: frameprep (-video <file> | -frames <dir>) -out <dir>")
		os.Exit(1)
	}

	log.Printf("frameprep %s", version.Version)

	if err := run(*video, *framesDir, *outBase); err != nil {
		log.Fatalf("frame preparation failed: %v", err)
	}
}

func run(video, framesDir, outBase string) error {
	if video != "" {
		tmp, err := os.MkdirTemp(outBase, "extract-*")
		if err != nil {
			return fmt.Errorf("cannot create extraction directory: %w", err)
		}
		defer os.RemoveAll(tmp)
		if err := extractFrames(video, tmp); err != nil {
			return err
		}
		framesDir = tmp
	}

	dirs := map[string]string{
		"original": filepath.Join(outBase, "original_frames"),
		"enhanced": filepath.Join(outBase, "enhanced_frames"),
		"edges":    filepath.Join(outBase, "edge_frames"),
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("cannot create %s: %w", dir, err)
		}
	}

	frames, err := frameio.ListFrames(framesDir)
	if err != nil {
		return err
	}

	for i, path := range frames {
		if err := prepFrame(path, i, dirs); err != nil {
			return fmt.Errorf("frame %d: %w", i, err)
		}
	}

	log.Printf("prepared %d frames under %s", len(frames), outBase)
	return nil
}

// extractFrames shells out to ffmpeg to dump frames at a fixed rate.
func extractFrames(video, dir string) error {
	cmd := exec.Command("ffmpeg", "-i", video,
		"-vf", fmt.Sprintf("fps=%d", extractFPS),
		filepath.Join(dir, "frame_%04d.png"))
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	log.Printf("extracting frames: %s", strings.Join(cmd.Args, " "))
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg extraction: %w", err)
	}
	return nil
}

func prepFrame(path string, index int, dirs map[string]string) error {
	img, err := frameio.LoadImage(path)
	if err != nil {
		return err
	}
	name := filepath.Base(path)

	if err := frameio.SaveImage(filepath.Join(dirs["original"], name), img); err != nil {
		return err
	}

	// Contrast-enhanced rendition
	m, err := frameio.ToMat(img)
	if err != nil {
		return err
	}
	enhanced := enhance.Contrast(m)
	m.Close()
	enhancedImg, err := frameio.ToImage(enhanced)
	enhanced.Close()
	if err != nil {
		return err
	}
	if err := frameio.SaveImage(filepath.Join(dirs["enhanced"], name), enhancedImg); err != nil {
		return err
	}

	// Edge rendition, stamped with frame number and timestamp
	edges := enhance.Edges(img, edgeThreshold)
	em, err := frameio.ToMat(edges)
	if err != nil {
		return err
	}
	enhance.Label(&em, fmt.Sprintf("Frame: %04d | %s", index+1, timestamp(index)))
	edgeImg, err := frameio.ToImage(em)
	em.Close()
	if err != nil {
		return err
	}
	return frameio.SaveImage(filepath.Join(dirs["edges"], name), edgeImg)
}

// timestamp formats a frame index as mm:ss at the extraction rate.
func timestamp(index int) string {
	seconds := index / extractFPS
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
