// Command stabilize runs the stabilization engine over a video file and
// writes the "with points" and "without points" output streams at the source
// frame rate and resolution.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"video-stabilizer/internal/stabilize"
	"video-stabilizer/internal/version"

	"gocv.io/x/gocv"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	input := flag.String("i", "", "Path to the input video file")
	codec := flag.String("codec", "mp4v", "FourCC codec for the output videos")
	verbose := flag.Bool("v", false, "Log per-frame diagnostics")
	flag.Parse()

	if *input == "" {
		fmt.Println("Usage: stabilize -i <video> [-codec mp4v] [-v]")
		os.Exit(1)
	}

	log.Printf("stabilize %s", version.Version)

	if err := run(*input, *codec, *verbose); err != nil {
		log.Fatalf("stabilization failed: %v", err)
	}
}

func run(input, codec string, verbose bool) error {
	capture, err := gocv.VideoCaptureFile(input)
	if err != nil {
		return fmt.Errorf("cannot open video %s: %w", input, err)
	}
	defer capture.Close()

	width := int(capture.Get(gocv.VideoCaptureFrameWidth))
	height := int(capture.Get(gocv.VideoCaptureFrameHeight))
	fps := capture.Get(gocv.VideoCaptureFPS)
	if fps <= 0 {
		fps = 30
	}

	markedPath := outputName(input, "_with_points")
	cleanPath := outputName(input, "_without_points")

	outMarked, err := gocv.VideoWriterFile(markedPath, codec, fps, width, height, true)
	if err != nil {
		return fmt.Errorf("cannot create %s: %w", markedPath, err)
	}
	defer outMarked.Close()

	outClean, err := gocv.VideoWriterFile(cleanPath, codec, fps, width, height, true)
	if err != nil {
		return fmt.Errorf("cannot create %s: %w", cleanPath, err)
	}
	defer outClean.Close()

	engine := stabilize.NewEngine()
	engine.Verbose = verbose
	defer engine.Close()

	// Cancellation is coarse-grained: the loop only stops between frames.
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(interrupt)

	frame := gocv.NewMat()
	defer frame.Close()

	frames := 0
	for {
		select {
		case <-interrupt:
			log.Printf("interrupted after %d frames", frames)
			return nil
		default:
		}

		if ok := capture.Read(&frame); !ok {
			break
		}
		if frame.Empty() {
			continue
		}

		stabilized, err := engine.Process(frame)
		if err != nil {
			return fmt.Errorf("frame %d: %w", frames, err)
		}

		marked := engine.Annotated(stabilized)
		if err := outClean.Write(stabilized); err != nil {
			marked.Close()
			stabilized.Close()
			return fmt.Errorf("writing %s: %w", cleanPath, err)
		}
		if err := outMarked.Write(marked); err != nil {
			marked.Close()
			stabilized.Close()
			return fmt.Errorf("writing %s: %w", markedPath, err)
		}
		marked.Close()
		stabilized.Close()

		frames++
		if verbose && frames%100 == 0 {
			log.Printf("processed %d frames, phase=%s", frames, engine.State().Phase)
		}
	}

	if frames == 0 {
		return fmt.Errorf("no frames read from %s", input)
	}

	log.Printf("processed %d frames", frames)
	log.Printf("videos saved as:\n - with points: %s\n - without points: %s", markedPath, cleanPath)
	return nil
}

// outputName derives an output path by suffixing the input's base name.
func outputName(path, suffix string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + suffix + ext
}
