package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"log"

	"github.com/example/magicstudio/internal/capture"
	"github.com/example/magicstudio/internal/editor"
	"github.com/example/magicstudio/internal/imageio"
)

var captureScreenshotFn = capture.Screenshot

type editCmd struct {
	file        string
	reference   string
	instruction string
	output      string
	backend     string
	capture     bool
	*root
	fs *flag.FlagSet
}

func (ec *editCmd) FlagSet() *flag.FlagSet {
	return ec.fs
}

func parseEditCmd(args []string, r *root) (*editCmd, error) {
	fs := flag.NewFlagSet("edit", flag.ExitOnError)
	ec := &editCmd{root: r, fs: fs}
	fs.Usage = usageFunc(ec)
	fs.StringVar(&ec.file, "file", "", "image to open")
	fs.StringVar(&ec.reference, "reference", "", "style reference image")
	fs.StringVar(&ec.instruction, "prompt", "", "initial edit instruction")
	fs.StringVar(&ec.output, "output", "", "file written by save (default: timestamped PNG in the save directory)")
	fs.StringVar(&ec.backend, "backend", "gemini", "generation backend (gemini or preview)")
	fs.BoolVar(&ec.capture, "capture", false, "start from a screenshot instead of a file")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if ec.file == "" && fs.NArg() > 0 {
		ec.file = fs.Arg(0)
	}
	if ec.capture && ec.file != "" {
		return nil, fmt.Errorf("-capture cannot be combined with -file")
	}
	return ec, nil
}

func grabScreen(ctx context.Context) (image.Image, error) {
	img, err := captureScreenshotFn(ctx, capture.Options{Interactive: true})
	if err != nil {
		return nil, err
	}
	return img, nil
}

func (ec *editCmd) Run() error {
	ctx := context.Background()
	cfg := ec.root.cfg()

	var img image.Image
	switch {
	case ec.capture:
		shot, err := grabScreen(ctx)
		if err != nil {
			return fmt.Errorf("failed to capture screen: %w", err)
		}
		img = shot
	case ec.file != "":
		loaded, err := imageio.Load(ec.file)
		if err != nil {
			return err
		}
		img = loaded
	}

	var ref image.Image
	if ec.reference != "" {
		loaded, err := imageio.Load(ec.reference)
		if err != nil {
			return fmt.Errorf("reference: %w", err)
		}
		ref = loaded
	}

	gen, err := ec.root.newGenerator(ctx, ec.backend)
	if err != nil {
		return err
	}

	saveDir := cfg.SaveDir
	if saveDir == "" {
		saveDir = "."
	}
	e := editor.New(
		editor.WithImage(img),
		editor.WithReference(ref),
		editor.WithInstruction(ec.instruction),
		editor.WithTheme(ec.root.activeTheme),
		editor.WithGenerator(gen),
		editor.WithOutput(ec.output),
		editor.WithSaveDir(saveDir),
		editor.WithMaxUpload(cfg.Generate.MaxUpload),
		editor.WithTimeout(cfg.Generate.Timeout),
		editor.WithNotifier(ec.root.notifier),
		editor.WithRecorderOptions(cfg.RecorderOptions()...),
		editor.WithCapture(grabScreen),
		editor.WithOnClose(func() { log.Printf("editor closed") }),
	)
	e.Run()
	return nil
}
