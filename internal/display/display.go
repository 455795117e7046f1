// Package display implements the bit plane frame buffer that sprite drawing
// and scrolling instructions operate on.
package display

import (
	"github.com/retroenv/retrochip8/internal/profile"
)

// MaxPlanes is the highest number of bit planes a profile can have.
const MaxPlanes = 2

// Display is a frame buffer of one or more bit planes.
//
// The buffer always has the full resolution of the profile. Modes that support
// a low resolution draw every low resolution pixel as a 2x2 block, which keeps
// half pixel scrolling of low resolution content representable.
type Display struct {
	width  int
	height int
	planes [][]bool

	lowWidth         int
	lowHeight        int
	resolutionSwitch bool
	highRes          bool

	clip            bool
	lowResScrollAll bool

	selected uint8 // bit mask of the planes that drawing, clearing and scrolling affect
}

// New returns a cleared display sized for the profile.
func New(p profile.Profile) *Display {
	d := &Display{
		width:            p.DisplayWidth,
		height:           p.DisplayHeight,
		lowWidth:         p.LowResWidth,
		lowHeight:        p.LowResHeight,
		resolutionSwitch: p.HasResolutionSwitch(),
		clip:             p.Has(profile.ClipSprites),
		lowResScrollAll:  p.Has(profile.LowResScrollFull),
		selected:         1,
	}

	planes := min(max(p.Planes, 1), MaxPlanes)
	d.planes = make([][]bool, planes)
	for i := range d.planes {
		d.planes[i] = make([]bool, d.width*d.height)
	}
	return d
}

// Reset clears all planes, selects the first plane and switches to low resolution.
func (d *Display) Reset() {
	for _, plane := range d.planes {
		clear(plane)
	}
	d.highRes = false
	d.selected = 1
}

// Width returns the width of the frame buffer.
func (d *Display) Width() int {
	return d.width
}

// Height returns the height of the frame buffer.
func (d *Display) Height() int {
	return d.height
}

// PlaneCount returns the number of bit planes.
func (d *Display) PlaneCount() int {
	return len(d.planes)
}

// HighRes returns whether the high resolution mode is active.
func (d *Display) HighRes() bool {
	return d.highRes
}

// SetHighRes switches between low and high resolution and clears all planes.
func (d *Display) SetHighRes(enabled bool) {
	d.highRes = enabled
	for _, plane := range d.planes {
		clear(plane)
	}
}

// SelectPlanes sets the bit mask of planes that are affected by drawing.
// Bits for planes that do not exist are ignored.
func (d *Display) SelectPlanes(mask uint8) {
	d.selected = mask & (1<<len(d.planes) - 1)
}

// SelectedPlanes returns the bit mask of selected planes.
func (d *Display) SelectedPlanes() uint8 {
	return d.selected
}

// SelectedPlaneCount returns the number of selected planes.
func (d *Display) SelectedPlaneCount() int {
	count := 0
	for i := range d.planes {
		if d.isSelected(i) {
			count++
		}
	}
	return count
}

// LogicalSize returns the resolution that sprite coordinates refer to.
func (d *Display) LogicalSize() (int, int) {
	if d.resolutionSwitch && !d.highRes {
		return d.lowWidth, d.lowHeight
	}
	return d.width, d.height
}

// Clear clears the selected planes.
func (d *Display) Clear() {
	for i, plane := range d.planes {
		if d.isSelected(i) {
			clear(plane)
		}
	}
}

// SpriteSize returns the number of sprite bytes that a draw with the given
// row count reads, covering all selected planes. A wide sprite is 16x16.
func (d *Display) SpriteSize(rows int, wide bool) int {
	if wide {
		return 32 * d.SelectedPlaneCount()
	}
	return rows * d.SelectedPlaneCount()
}

// Draw XORs a sprite onto the selected planes at the given logical coordinates.
// The sprite data contains the rows of each selected plane in plane order.
// It returns whether any set pixel was cleared.
func (d *Display) Draw(x, y uint8, data []byte, rows int, wide bool) bool {
	logicalWidth, logicalHeight := d.LogicalSize()
	originX := int(x) % logicalWidth
	originY := int(y) % logicalHeight

	bytesPerRow := 1
	if wide {
		bytesPerRow = 2
		rows = 16
	}
	planeSize := rows * bytesPerRow

	collision := false
	offset := 0
	for i := range d.planes {
		if !d.isSelected(i) {
			continue
		}
		if offset+planeSize > len(data) {
			break
		}
		sprite := data[offset : offset+planeSize]
		offset += planeSize

		for row := range rows {
			for col := range 8 * bytesPerRow {
				b := sprite[row*bytesPerRow+col/8]
				if b&(0x80>>(col%8)) == 0 {
					continue
				}

				px, py, ok := d.wrapOrClip(originX+col, originY+row, logicalWidth, logicalHeight)
				if !ok {
					continue
				}
				if d.flip(i, px, py) {
					collision = true
				}
			}
		}
	}
	return collision
}

func (d *Display) wrapOrClip(x, y, logicalWidth, logicalHeight int) (int, int, bool) {
	if x >= logicalWidth || y >= logicalHeight {
		if d.clip {
			return 0, 0, false
		}
		x %= logicalWidth
		y %= logicalHeight
	}
	return x, y, true
}

// flip toggles a logical pixel and returns whether it was set before.
func (d *Display) flip(plane, x, y int) bool {
	scale := d.scale()
	bits := d.planes[plane]
	index := y*scale*d.width + x*scale
	wasSet := bits[index]

	for dy := range scale {
		for dx := range scale {
			i := index + dy*d.width + dx
			bits[i] = !bits[i]
		}
	}
	return wasSet
}

// ScrollDown moves the selected planes down by n logical pixels.
func (d *Display) ScrollDown(n int) {
	d.scroll(0, n*d.scrollScale())
}

// ScrollUp moves the selected planes up by n logical pixels.
func (d *Display) ScrollUp(n int) {
	d.scroll(0, -n*d.scrollScale())
}

// ScrollLeft moves the selected planes left by n logical pixels.
func (d *Display) ScrollLeft(n int) {
	d.scroll(-n*d.scrollScale(), 0)
}

// ScrollRight moves the selected planes right by n logical pixels.
func (d *Display) ScrollRight(n int) {
	d.scroll(n*d.scrollScale(), 0)
}

// scroll shifts the selected planes by a buffer pixel offset,
// pixels moved in from outside the buffer are cleared.
func (d *Display) scroll(dx, dy int) {
	for i, plane := range d.planes {
		if !d.isSelected(i) {
			continue
		}

		shifted := make([]bool, len(plane))
		for y := range d.height {
			srcY := y - dy
			if srcY < 0 || srcY >= d.height {
				continue
			}
			for x := range d.width {
				srcX := x - dx
				if srcX < 0 || srcX >= d.width {
					continue
				}
				shifted[y*d.width+x] = plane[srcY*d.width+srcX]
			}
		}
		d.planes[i] = shifted
	}
}

// scale returns the number of buffer pixels per logical pixel in each direction.
func (d *Display) scale() int {
	if d.resolutionSwitch && !d.highRes {
		return d.width / d.lowWidth
	}
	return 1
}

// scrollScale returns the number of buffer pixels that one scroll unit moves.
// Low resolution scrolling moves half pixels unless the profile scrolls whole ones.
func (d *Display) scrollScale() int {
	if d.lowResScrollAll {
		return d.scale()
	}
	return 1
}

func (d *Display) isSelected(plane int) bool {
	return d.selected&(1<<plane) != 0
}

// Frame returns a copy of all planes.
func (d *Display) Frame() Frame {
	f := Frame{
		Width:  d.width,
		Height: d.height,
		Planes: make([][]bool, len(d.planes)),
	}
	for i, plane := range d.planes {
		f.Planes[i] = make([]bool, len(plane))
		copy(f.Planes[i], plane)
	}
	return f
}
