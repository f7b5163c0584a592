package render

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"strconv"
	"strings"

	"github.com/chai2010/webp"
	xdraw "golang.org/x/image/draw"
)

// iconScale is the supersampling factor used to smooth the circle edges.
const iconScale = 4

// ParseHexColor parses "#RRGGBB" or "#RGB".
func ParseHexColor(s string) (color.RGBA, error) {
	hex := strings.TrimPrefix(s, "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return color.RGBA{}, fmt.Errorf("invalid color %q", s)
	}

	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
	}

	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}

// MarkerImage draws a round marker of the given pixel size: a filled dot
// with a white ring and a soft shadow, as used on the map.
func MarkerImage(fill color.RGBA, size int) *image.RGBA {
	big := size * iconScale
	src := image.NewRGBA(image.Rect(0, 0, big, big))

	c := float64(big) / 2
	outer := c - float64(iconScale)      // leave room for the shadow
	ring := outer - float64(2*iconScale) // 2px white border
	shadow := color.RGBA{A: 0x99}
	white := color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}

	for y := 0; y < big; y++ {
		for x := 0; x < big; x++ {
			dx := float64(x) + 0.5 - c
			dy := float64(y) + 0.5 - c
			d2 := dx*dx + dy*dy

			switch {
			case d2 <= ring*ring:
				src.SetRGBA(x, y, fill)
			case d2 <= outer*outer:
				src.SetRGBA(x, y, white)
			case d2 <= c*c:
				src.SetRGBA(x, y, shadow)
			}
		}
	}

	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)

	return dst
}

// MarkerIcon encodes a marker as lossless WebP.
func MarkerIcon(hexColor string, size int) ([]byte, error) {
	fill, err := ParseHexColor(hexColor)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := webp.Encode(&buf, MarkerImage(fill, size), &webp.Options{Lossless: true}); err != nil {
		return nil, fmt.Errorf("encode webp: %w", err)
	}

	return buf.Bytes(), nil
}

// MarkerPNG encodes a marker as PNG, used for the favicon.
func MarkerPNG(hexColor string, size int) ([]byte, error) {
	fill, err := ParseHexColor(hexColor)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, MarkerImage(fill, size)); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}

	return buf.Bytes(), nil
}
