package display

// Frame is a read only snapshot of the display planes for a renderer.
type Frame struct {
	Width  int
	Height int
	Planes [][]bool // Planes[plane][y*Width+x]
}

// Pixel returns whether the pixel of the given plane is set.
// Coordinates outside of the frame return false.
func (f Frame) Pixel(plane, x, y int) bool {
	if plane < 0 || plane >= len(f.Planes) || x < 0 || x >= f.Width || y < 0 || y >= f.Height {
		return false
	}
	return f.Planes[plane][y*f.Width+x]
}

// Color returns the merged value of all planes for a pixel,
// bit n of the result is set if the pixel is set in plane n.
func (f Frame) Color(x, y int) uint8 {
	var color uint8
	for plane := range f.Planes {
		if f.Pixel(plane, x, y) {
			color |= 1 << plane
		}
	}
	return color
}

// Empty returns whether no pixel of any plane is set.
func (f Frame) Empty() bool {
	for _, plane := range f.Planes {
		for _, set := range plane {
			if set {
				return false
			}
		}
	}
	return true
}

// Equal returns whether both frames have the same size and content.
func (f Frame) Equal(other Frame) bool {
	if f.Width != other.Width || f.Height != other.Height || len(f.Planes) != len(other.Planes) {
		return false
	}
	for i, plane := range f.Planes {
		for j, set := range plane {
			if other.Planes[i][j] != set {
				return false
			}
		}
	}
	return true
}
