package transform

import "fmt"

// Crop is a rectangle in source pixels.
type Crop struct {
	Width  int
	Height int
	X      int
	Y      int
}

// VerticalCrop computes the centered 9:16 window for a width x height frame.
// Frames wider than 9:16 lose their sides; narrower frames lose top and
// bottom. All divisions floor.
func VerticalCrop(width, height int) Crop {
	if width <= 0 || height <= 0 {
		return Crop{}
	}
	if width*16 > height*9 {
		cropWidth := height * 9 / 16
		return Crop{Width: cropWidth, Height: height, X: (width - cropWidth) / 2}
	}
	cropHeight := width * 16 / 9
	return Crop{Width: width, Height: cropHeight, Y: (height - cropHeight) / 2}
}

// Filter renders the crop as a transcoder video filter.
func (c Crop) Filter() string {
	return fmt.Sprintf("crop=%d:%d:%d:%d", c.Width, c.Height, c.X, c.Y)
}
