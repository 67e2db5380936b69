package image565

import (
	"image"
	"image/color"
	"image/draw"
	"testing"
)

func TestPackBitExact(t *testing.T) {
	for r := 0; r < 256; r++ {
		for g := 0; g < 256; g++ {
			for b := 0; b < 256; b++ {
				c := uint16(Pack(uint8(r), uint8(g), uint8(b)))
				if got, want := c>>11, uint16(r>>3); got != want {
					t.Fatalf("Pack(%d, %d, %d) red = %#x, want %#x", r, g, b, got, want)
				}
				if got, want := (c>>5)&0x3F, uint16(g>>2); got != want {
					t.Fatalf("Pack(%d, %d, %d) green = %#x, want %#x", r, g, b, got, want)
				}
				if got, want := c&0x1F, uint16(b>>3); got != want {
					t.Fatalf("Pack(%d, %d, %d) blue = %#x, want %#x", r, g, b, got, want)
				}
			}
		}
	}
}

func TestPack(t *testing.T) {
	tests := []struct {
		name    string
		r, g, b uint8
		want    Color
	}{
		{"black", 0, 0, 0, 0x0000},
		{"white", 0xFF, 0xFF, 0xFF, 0xFFFF},
		{"red", 0xFF, 0, 0, 0xF800},
		{"green", 0, 0xFF, 0, 0x07E0},
		{"blue", 0, 0, 0xFF, 0x001F},
		{"low bits dropped", 0x07, 0x03, 0x07, 0x0000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Pack(tt.r, tt.g, tt.b); got != tt.want {
				t.Errorf("Pack(%d, %d, %d) = %#04x, want %#04x", tt.r, tt.g, tt.b, got, tt.want)
			}
		})
	}
}

func TestColorRGBA(t *testing.T) {
	tests := []struct {
		name       string
		c          Color
		wr, wg, wb uint32
	}{
		{"black", 0x0000, 0, 0, 0},
		{"white", 0xFFFF, 0xFFFF, 0xFFFF, 0xFFFF},
		{"red", 0xF800, 0xFFFF, 0, 0},
		{"green", 0x07E0, 0, 0xFFFF, 0},
		{"blue", 0x001F, 0, 0, 0xFFFF},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, g, b, a := tt.c.RGBA()
			if r != tt.wr || g != tt.wg || b != tt.wb || a != 0xFFFF {
				t.Errorf("RGBA() = (%x, %x, %x, %x), want (%x, %x, %x, ffff)", r, g, b, a, tt.wr, tt.wg, tt.wb)
			}
		})
	}
}

func TestModelConvert(t *testing.T) {
	tests := []struct {
		name  string
		input color.Color
		want  Color
	}{
		{"passthrough", Color(0x1234), 0x1234},
		{"black", color.Black, 0x0000},
		{"white", color.White, 0xFFFF},
		{"rgba red", color.RGBA{0xFF, 0x00, 0x00, 0xFF}, 0xF800},
		{"rgba mixed", color.RGBA{0x88, 0x44, 0x22, 0xFF}, Pack(0x88, 0x44, 0x22)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Model.Convert(tt.input).(Color); got != tt.want {
				t.Errorf("Model.Convert(%v) = %#04x, want %#04x", tt.input, got, tt.want)
			}
		})
	}
}

func TestRoundTripThroughRGB(t *testing.T) {
	for _, c := range []Color{0x0000, 0xFFFF, 0xF800, 0x07E0, 0x001F, 0x1234, 0xA5A5} {
		r, g, b := c.RGB()
		if got := Pack(r, g, b); got != c {
			t.Errorf("Pack(%#04x.RGB()) = %#04x", c, got)
		}
	}
}

func TestNewImage(t *testing.T) {
	tests := []struct {
		name       string
		rect       image.Rectangle
		wantStride int
		wantPixLen int
	}{
		{"128x160", image.Rect(0, 0, 128, 160), 256, 40960},
		{"160x128", image.Rect(0, 0, 160, 128), 320, 40960},
		{"1x1", image.Rect(0, 0, 1, 1), 2, 2},
		{"offset rect", image.Rect(10, 20, 13, 22), 6, 12},
		{"empty", image.Rect(0, 0, 0, 5), 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img := NewImage(tt.rect)
			if img.Rect != tt.rect {
				t.Errorf("Rect = %v, want %v", img.Rect, tt.rect)
			}
			if img.Stride != tt.wantStride {
				t.Errorf("Stride = %d, want %d", img.Stride, tt.wantStride)
			}
			if len(img.Pix) != tt.wantPixLen {
				t.Errorf("len(Pix) = %d, want %d", len(img.Pix), tt.wantPixLen)
			}
		})
	}
}

func TestImageByteLayout(t *testing.T) {
	img := NewImage(image.Rect(0, 0, 2, 1))
	img.SetRGB565(0, 0, 0xF800)
	img.SetRGB565(1, 0, 0x001F)

	want := []byte{0xF8, 0x00, 0x00, 0x1F}
	for i, b := range want {
		if img.Pix[i] != b {
			t.Errorf("Pix[%d] = 0x%02X, want 0x%02X", i, img.Pix[i], b)
		}
	}
}

func TestImageSetAt(t *testing.T) {
	img := NewImage(image.Rect(0, 0, 4, 2))
	img.Set(3, 1, color.RGBA{0, 0xFF, 0, 0xFF})

	c, ok := img.At(3, 1).(Color)
	if !ok {
		t.Fatalf("At(3, 1) returned %T, want Color", img.At(3, 1))
	}
	if c != 0x07E0 {
		t.Errorf("At(3, 1) = %#04x, want 0x07e0", c)
	}
	if img.ColorModel() != Model {
		t.Error("ColorModel() did not return Model")
	}
}

func TestImageOutOfBounds(t *testing.T) {
	img := NewImage(image.Rect(0, 0, 2, 2))

	img.SetRGB565(-1, 0, 0xFFFF)
	img.SetRGB565(0, 2, 0xFFFF)
	img.SetRGB565(2, 0, 0xFFFF)

	for i, b := range img.Pix {
		if b != 0 {
			t.Errorf("Pix[%d] = 0x%02X after out-of-bounds writes, want 0", i, b)
		}
	}
	if c := img.RGB565At(5, 5); c != 0 {
		t.Errorf("RGB565At(5, 5) = %#04x, want 0", c)
	}
}

func TestImageOffsetRect(t *testing.T) {
	img := NewImage(image.Rect(100, 50, 102, 52))
	img.SetRGB565(101, 51, 0xABCD)

	if got := img.RGB565At(101, 51); got != 0xABCD {
		t.Errorf("RGB565At(101, 51) = %#04x, want 0xabcd", got)
	}
	if off := img.PixOffset(101, 51); off != 6 {
		t.Errorf("PixOffset(101, 51) = %d, want 6", off)
	}
}

func TestImageDraw(t *testing.T) {
	img := NewImage(image.Rect(0, 0, 3, 3))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	for y := 0; y < 3; y++ {
		for x := 0; x < 3; x++ {
			if c := img.RGB565At(x, y); c != 0xFFFF {
				t.Errorf("RGB565At(%d, %d) = %#04x, want 0xffff", x, y, c)
			}
		}
	}
}
