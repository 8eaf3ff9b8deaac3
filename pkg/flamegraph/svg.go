package flamegraph

import (
	"bufio"
	"errors"
	"fmt"
	"html"
	"io"
	"sort"
	"strconv"
	"strings"
)

// ErrEmpty is returned when the folded input holds no weight.
var ErrEmpty = errors.New("no weight found in collapsed stacks")

// SVGOptions configures the flame graph SVG output.
type SVGOptions struct {
	Title       string
	Unit        string
	Width       int
	Height      int
	ColorScheme string // "hot", "cold", "mem"
}

// DefaultSVGOptions returns sensible defaults.
func DefaultSVGOptions() SVGOptions {
	return SVGOptions{
		Title:       "Kokkos Flame Graph",
		Unit:        "µs",
		Width:       1200,
		ColorScheme: "hot",
	}
}

const (
	frameHeight  = 16
	fontSize     = 12
	headerHeight = 40
	margin       = 10
)

// frame represents a node of the flame graph tree.
type frame struct {
	name     string
	value    int64
	children map[string]*frame
}

func newFrame(name string) *frame {
	return &frame{
		name:     name,
		children: make(map[string]*frame),
	}
}

// parseCollapsed builds the frame tree from folded stacks.
func parseCollapsed(r io.Reader) (*frame, error) {
	root := newFrame("all")
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		idx := strings.LastIndexByte(line, ' ')
		if idx <= 0 {
			continue
		}
		weight, err := strconv.ParseInt(line[idx+1:], 10, 64)
		if err != nil || weight <= 0 {
			continue
		}

		node := root
		for _, name := range strings.Split(line[:idx], ";") {
			child, ok := node.children[name]
			if !ok {
				child = newFrame(name)
				node.children[name] = child
			}
			child.value += weight
			node = child
		}
		root.value += weight
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return root, nil
}

// GenerateSVG renders collapsed stacks as an SVG flame graph.
func GenerateSVG(collapsed io.Reader, svg io.Writer, opts SVGOptions) error {
	if opts.Width == 0 {
		opts.Width = 1200
	}

	root, err := parseCollapsed(collapsed)
	if err != nil {
		return fmt.Errorf("cannot read collapsed stacks: %w", err)
	}
	if root.value == 0 {
		return ErrEmpty
	}

	chartHeight := (maxDepth(root, 0) + 2) * frameHeight
	if opts.Height == 0 {
		opts.Height = chartHeight + headerHeight + 20
	}

	bw := bufio.NewWriter(svg)
	fmt.Fprintf(bw, `<?xml version="1.0" standalone="no"?>
<!DOCTYPE svg PUBLIC "-//W3C//DTD SVG 1.1//EN" "http://www.w3.org/Graphics/SVG/1.1/DTD/svg1.1.dtd">
<svg version="1.1" width="%d" height="%d" xmlns="http://www.w3.org/2000/svg">
<style>
  .func:hover { stroke:black; stroke-width:0.5; cursor:pointer; }
  text { font-family: monospace; font-size: %dpx; }
</style>
<rect x="0" y="0" width="%d" height="%d" fill="white"/>
<text x="%d" y="20" text-anchor="middle" style="font-size:16px; font-weight:bold;">%s</text>
<text x="%d" y="35" text-anchor="middle" style="font-size:12px; fill:#666;">(%d %s)</text>
`,
		opts.Width, opts.Height, fontSize,
		opts.Width, opts.Height,
		opts.Width/2, html.EscapeString(opts.Title),
		opts.Width/2, root.value, html.EscapeString(opts.Unit))

	r := &renderer{w: bw, total: root.value, unit: opts.Unit, scheme: opts.ColorScheme, baseY: opts.Height - 20}
	r.render(root, margin, opts.Width-2*margin, 0)

	fmt.Fprintln(bw, "</svg>")
	return bw.Flush()
}

type renderer struct {
	w      io.Writer
	total  int64
	unit   string
	scheme string
	baseY  int
}

func (r *renderer) render(f *frame, x, width, depth int) {
	if width < 1 || f.value == 0 {
		return
	}

	y := r.baseY - (depth * frameHeight)
	red, green, blue := frameColor(depth, r.scheme)

	fmt.Fprintf(r.w, `<g class="func">
<rect x="%d" y="%d" width="%d" height="%d" fill="rgb(%d,%d,%d)" rx="1"/>
`, x, y-frameHeight, width, frameHeight-1, red, green, blue)

	if width > 40 {
		label := f.name
		maxChars := (width - 4) / 7 // approximate char width
		if len(label) > maxChars {
			if maxChars > 3 {
				label = label[:maxChars-2] + ".."
			} else {
				label = ""
			}
		}
		if label != "" {
			fmt.Fprintf(r.w, `<text x="%d" y="%d" fill="black">%s</text>
`, x+2, y-4, html.EscapeString(label))
		}
	}

	fmt.Fprintf(r.w, `<title>%s (%d %s, %.1f%%)</title>
</g>
`, html.EscapeString(f.name), f.value, html.EscapeString(r.unit),
		float64(f.value)/float64(r.total)*100)

	names := make([]string, 0, len(f.children))
	for name := range f.children {
		names = append(names, name)
	}
	sort.Strings(names)

	childX := x
	for _, name := range names {
		child := f.children[name]
		childWidth := max(1, int(float64(width)*float64(child.value)/float64(f.value)))
		r.render(child, childX, childWidth, depth+1)
		childX += childWidth
	}
}

func frameColor(depth int, scheme string) (int, int, int) {
	switch scheme {
	case "cold":
		g := 50 + (depth*30)%150
		b := 150 + (depth*20)%100
		return 30, g, b
	case "mem":
		g := 190 + (depth*15)%60
		return 30, g, 30
	default: // "hot"
		r := 200 + (depth*15)%55
		g := 50 + (depth*40)%150
		return r, g, 30
	}
}

func maxDepth(f *frame, depth int) int {
	deepest := depth
	for _, child := range f.children {
		deepest = max(deepest, maxDepth(child, depth+1))
	}
	return deepest
}
