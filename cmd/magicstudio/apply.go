package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image"
	"os"
	"time"

	"github.com/example/magicstudio/internal/editor"
	"github.com/example/magicstudio/internal/generate"
	"github.com/example/magicstudio/internal/imageio"
	"github.com/example/magicstudio/internal/mask"
)

type applyCmd struct {
	file        string
	mask        string
	reference   string
	instruction string
	output      string
	backend     string
	*root
	fs *flag.FlagSet
}

func (ac *applyCmd) FlagSet() *flag.FlagSet {
	return ac.fs
}

func parseApplyCmd(args []string, r *root) (*applyCmd, error) {
	fs := flag.NewFlagSet("apply", flag.ExitOnError)
	ac := &applyCmd{root: r, fs: fs}
	fs.Usage = usageFunc(ac)
	fs.StringVar(&ac.file, "file", "", "image to edit")
	fs.StringVar(&ac.mask, "mask", "", "PNG mask, white marks the area to change")
	fs.StringVar(&ac.reference, "reference", "", "style reference image")
	fs.StringVar(&ac.instruction, "prompt", "", "edit instruction")
	fs.StringVar(&ac.output, "output", "", "output file")
	fs.StringVar(&ac.backend, "backend", "gemini", "generation backend (gemini or preview)")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if ac.file == "" {
		return nil, &UsageError{of: ac, msg: "-file is required"}
	}
	if ac.output == "" {
		return nil, &UsageError{of: ac, msg: "-output is required"}
	}
	return ac, nil
}

func loadMask(path string) (*image.Gray, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return mask.Decode(f)
}

func (ac *applyCmd) Run() error {
	cfg := ac.root.cfg()
	src, err := imageio.Load(ac.file)
	if err != nil {
		return err
	}
	var ref image.Image
	if ac.reference != "" {
		if ref, err = imageio.Load(ac.reference); err != nil {
			return fmt.Errorf("reference: %w", err)
		}
	}
	var sel *image.Gray
	if ac.mask != "" {
		if sel, err = loadMask(ac.mask); err != nil {
			return fmt.Errorf("mask: %w", err)
		}
	}

	req, err := editor.BuildRequest(src, ref, sel, ac.instruction, cfg.Generate.MaxUpload)
	if err != nil {
		return err
	}

	ctx := context.Background()
	if cfg.Generate.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Generate.Timeout)
		defer cancel()
	}
	gen, err := ac.root.newGenerator(ctx, ac.backend)
	if err != nil {
		return err
	}
	start := time.Now()
	res, err := gen.Generate(ctx, req)
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("request timed out after %s", cfg.Generate.Timeout)
	}
	if err != nil {
		ac.root.notifier.Failed(generate.Message(err))
		return fmt.Errorf("generate: %w", err)
	}
	if res == nil || res.Image == nil {
		return generate.ErrNoImage
	}
	if err := imageio.Save(ac.output, res.Image); err != nil {
		return err
	}
	if res.Text != "" {
		fmt.Println(res.Text)
	}
	fmt.Fprintf(os.Stderr, "edited image saved to %s in %s\n", ac.output, time.Since(start).Round(time.Millisecond))
	ac.root.notifier.Generate(ac.instruction, res.Image)
	ac.root.notifier.Save(ac.output)
	return nil
}
