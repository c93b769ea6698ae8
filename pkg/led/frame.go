package led

// Pixel is one RGBW LED value. RGB-only rings ignore W.
type Pixel struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
	W uint8 `json:"w"`
}

// Frame is the output value of every LED in the ring.
type Frame []Pixel

// NewFrame creates a Frame of n dark pixels.
func NewFrame(n int) Frame {
	return make(Frame, n)
}

// Set sets pixel i. Indices outside the ring are ignored.
func (f Frame) Set(i int, p Pixel) {
	if i >= 0 && i < len(f) {
		f[i] = p
	}
}

// Fill sets every pixel to p.
func (f Frame) Fill(p Pixel) {
	for i := range f {
		f[i] = p
	}
}

// Clone returns a copy of the frame.
func (f Frame) Clone() Frame {
	return append(Frame(nil), f...)
}
