package models

// Pixel is one rendered LED value: a color and the brightness the sink should show it at.
type Pixel struct {
	Color      Color
	Brightness uint8
}
