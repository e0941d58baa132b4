package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/san-kum/bhsim/internal/particles"
	"github.com/san-kum/bhsim/internal/sim"
)

// Frame draws snap into a new image sized by v. Later particles overwrite
// earlier ones sharing a pixel.
func Frame(snap *particles.Snapshot, v View) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, v.Width, v.Height))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: color.Black}, image.Point{}, draw.Src)

	for i, b := range snap.Bodies() {
		px, py, ok := v.Project(b.Position)
		if !ok {
			continue
		}
		r, g, bl := SpeedColor(snap.Speed(i)).RGB255()
		img.SetRGBA(px, py, color.RGBA{R: r, G: g, B: bl, A: 0xff})
	}
	return img
}

func WritePNG(w io.Writer, img image.Image) error {
	return png.Encode(w, img)
}

// SavePNG renders snap and writes it to path.
func SavePNG(path string, snap *particles.Snapshot, v View) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := WritePNG(f, Frame(snap, v)); err != nil {
		return err
	}
	return f.Close()
}

// FrameWriter writes frame_NNNNNN.png into Dir for every Every-th step. The
// first error stops further writes and is reported by Err.
type FrameWriter struct {
	Dir   string
	Every int
	View  View

	mu     sync.Mutex
	frames int
	err    error
}

var _ sim.Observer = (*FrameWriter)(nil)

func NewFrameWriter(dir string, every int, v View) (*FrameWriter, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	if every < 1 {
		every = 1
	}
	return &FrameWriter{Dir: dir, Every: every, View: v}, nil
}

func (fw *FrameWriter) OnStep(snap *particles.Snapshot, _ sim.StepStats) {
	if snap.Step%fw.Every != 0 {
		return
	}
	fw.Write(snap)
}

func (fw *FrameWriter) Write(snap *particles.Snapshot) error {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	if fw.err != nil {
		return fw.err
	}
	path := filepath.Join(fw.Dir, fmt.Sprintf("frame_%06d.png", snap.Step))
	if err := SavePNG(path, snap, fw.View); err != nil {
		fw.err = err
		return err
	}
	fw.frames++
	return nil
}

func (fw *FrameWriter) Frames() int {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	return fw.frames
}

func (fw *FrameWriter) Err() error {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	return fw.err
}
