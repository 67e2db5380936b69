// Package image565 provides a 16-bit RGB565 image format for QDTech/ST7735
// TFT display controllers.
//
// The controller receives one 16-bit word per pixel, most significant byte
// first: 5 bits of red, 6 bits of green and 5 bits of blue.
//
// Memory layout example for a 2-pixel row:
//
//	Pixels: 0        1
//	Colors: red      blue
//	Words:  0xF800   0x001F
//	Bytes:  F8 00    00 1F
//
// This package provides:
//
// - Color: a packed RGB565 color value
// - Model: a color model converting standard Go colors to Color
// - Image: an image.Image laid out exactly as the controller expects it
//
// Example usage:
//
//	// Create a 128x160 image
//	img := image565.NewImage(image.Rect(0, 0, 128, 160))
//
//	// Set a pixel to pure green
//	img.SetRGB565(10, 20, image565.Pack(0, 255, 0))
//
//	// Use with standard Go image operations
//	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
package image565
