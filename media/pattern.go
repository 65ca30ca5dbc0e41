package media

// TestPatternUYVY renders a packed 4:2:2 gradient test card: chroma ramps
// left to right, luma ramps top to bottom. Useful for exercising a send
// path without a real video source. Width is rounded down to an even
// number of pixels per macropixel pair.
func TestPatternUYVY(width, height int) []byte {
	if width < 0 || height < 0 {
		return nil
	}
	stride := width * 2
	data := make([]byte, stride*height)
	for y := 0; y < height; y++ {
		luma := byte(16 + (219*y)/max(height, 1))
		row := data[y*stride : (y+1)*stride]
		for x := 0; x+1 < width; x += 2 {
			i := x * 2
			row[i] = byte((x * 255) / max(width, 1)) // U
			row[i+1] = luma                          // Y0
			row[i+2] = 128                           // V
			row[i+3] = luma                          // Y1
		}
	}
	return data
}
