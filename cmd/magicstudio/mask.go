package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"seehuhn.de/go/geom/vec"

	"github.com/example/magicstudio/internal/mask"
)

type maskCmd struct {
	width     int
	height    int
	fillRule  string
	antiAlias bool
	points    string
	output    string
	*root
	fs *flag.FlagSet
}

func (mc *maskCmd) FlagSet() *flag.FlagSet {
	return mc.fs
}

func parseMaskCmd(args []string, r *root) (*maskCmd, error) {
	fs := flag.NewFlagSet("mask", flag.ExitOnError)
	mc := &maskCmd{root: r, fs: fs}
	fs.Usage = usageFunc(mc)
	fs.IntVar(&mc.width, "width", 0, "mask width in pixels")
	fs.IntVar(&mc.height, "height", 0, "mask height in pixels")
	fs.StringVar(&mc.fillRule, "fill-rule", "", "nonzero or evenodd (default from config)")
	fs.BoolVar(&mc.antiAlias, "antialias", false, "keep soft edges instead of a binary mask")
	fs.StringVar(&mc.points, "points", "", "file of x,y points, one per line (- for stdin)")
	fs.StringVar(&mc.output, "output", "mask.png", "output PNG")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if mc.width <= 0 || mc.height <= 0 {
		return nil, fmt.Errorf("mask size must be positive, got %dx%d", mc.width, mc.height)
	}
	return mc, nil
}

// parsePoints reads "x,y" pairs. Blank entries and lines starting with # are
// skipped.
func parsePoints(fields []string) ([]vec.Vec2, error) {
	var pts []vec.Vec2
	for _, f := range fields {
		f = strings.TrimSpace(f)
		if f == "" || strings.HasPrefix(f, "#") {
			continue
		}
		xs, ys, ok := strings.Cut(f, ",")
		if !ok {
			return nil, fmt.Errorf("point %q: want x,y", f)
		}
		x, err := strconv.ParseFloat(strings.TrimSpace(xs), 64)
		if err != nil {
			return nil, fmt.Errorf("point %q: %w", f, err)
		}
		y, err := strconv.ParseFloat(strings.TrimSpace(ys), 64)
		if err != nil {
			return nil, fmt.Errorf("point %q: %w", f, err)
		}
		pts = append(pts, vec.Vec2{X: x, Y: y})
	}
	return pts, nil
}

func readPointLines(r io.Reader) ([]string, error) {
	var lines []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	return lines, sc.Err()
}

func (mc *maskCmd) loadPoints() ([]vec.Vec2, error) {
	fields := mc.fs.Args()
	if mc.points != "" {
		var r io.Reader = os.Stdin
		if mc.points != "-" {
			f, err := os.Open(mc.points)
			if err != nil {
				return nil, err
			}
			defer f.Close()
			r = f
		}
		lines, err := readPointLines(r)
		if err != nil {
			return nil, fmt.Errorf("read points: %w", err)
		}
		fields = append(fields, lines...)
	}
	return parsePoints(fields)
}

func (mc *maskCmd) Run() error {
	pts, err := mc.loadPoints()
	if err != nil {
		return err
	}
	if len(pts) < mask.MinPoints {
		return fmt.Errorf("need at least %d points, got %d", mask.MinPoints, len(pts))
	}
	opts := mask.Options{Rule: mc.root.cfg().Selection.FillRule, AntiAlias: mc.antiAlias}
	if mc.fillRule != "" {
		rule, err := mask.ParseFillRule(mc.fillRule)
		if err != nil {
			return err
		}
		opts.Rule = rule
	}
	m := mask.Rasterize(pts, mc.width, mc.height, opts)
	data, err := mask.EncodePNG(m)
	if err != nil {
		return err
	}
	if err := os.WriteFile(mc.output, data, 0o644); err != nil {
		return fmt.Errorf("write mask: %w", err)
	}
	fmt.Fprintf(os.Stderr, "mask %dx%d (%.1f%% selected) saved to %s\n", mc.width, mc.height, mask.Coverage(m)*100, mc.output)
	return nil
}
