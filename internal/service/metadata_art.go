package service

import (
	"bytes"
	"hash/fnv"
	"image"
	"image/color"
	"image/png"
	"strings"
	"unicode"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const placeholderSize = 256

// placeholderPalette holds the muted background tones placeholder tiles
// cycle through. The token hash picks one, so a given track always gets
// the same tile.
var placeholderPalette = []color.RGBA{
	{R: 0x25, G: 0x30, B: 0x44, A: 0xff},
	{R: 0x2b, G: 0x3a, B: 0x2d, A: 0xff},
	{R: 0x3a, G: 0x2a, B: 0x3f, A: 0xff},
	{R: 0x2d, G: 0x22, B: 0x39, A: 0xff},
	{R: 0x3c, G: 0x2a, B: 0x2a, A: 0xff},
	{R: 0x23, G: 0x33, B: 0x3a, A: 0xff},
}

var placeholderForeground = color.RGBA{R: 0xe6, G: 0xe6, B: 0xe6, A: 0xff}

// PlaceholderArt renders a deterministic stand-in tile for tracks without
// embedded artwork: a solid background chosen by hashing the token, with
// the token's first letter centered on it. The same token always yields
// byte-identical PNG output.
func PlaceholderArt(token string) []byte {
	normalized := strings.ToLower(strings.TrimSpace(token))

	hasher := fnv.New32a()
	hasher.Write([]byte(normalized))
	background := placeholderPalette[int(hasher.Sum32())%len(placeholderPalette)]

	img := image.NewRGBA(image.Rect(0, 0, placeholderSize, placeholderSize))
	xdraw.Draw(img, img.Bounds(), image.NewUniform(background), image.Point{}, xdraw.Src)

	drawPlaceholderGlyph(img, placeholderGlyph(token))

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil
	}
	return buf.Bytes()
}

// placeholderGlyph picks the character shown on the tile: the token's
// first letter or digit, uppercased. Tokens without one get a generic mark.
func placeholderGlyph(token string) rune {
	for _, r := range strings.TrimSpace(token) {
		if r < 128 && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			return unicode.ToUpper(r)
		}
	}
	return '*'
}

// drawPlaceholderGlyph rasterizes the glyph at the bitmap face's native
// size and scales it up onto the center of the tile. Nearest-neighbor
// keeps the chunky pixel look instead of smearing the bitmap font.
func drawPlaceholderGlyph(dst *image.RGBA, glyph rune) {
	face := basicfont.Face7x13

	cell := image.NewRGBA(image.Rect(0, 0, face.Advance, face.Height))
	drawer := &font.Drawer{
		Dst:  cell,
		Src:  image.NewUniform(placeholderForeground),
		Face: face,
		Dot:  fixed.P(0, face.Ascent),
	}
	drawer.DrawString(string(glyph))

	const scale = 8
	width := face.Advance * scale
	height := face.Height * scale
	target := image.Rect(
		(placeholderSize-width)/2,
		(placeholderSize-height)/2,
		(placeholderSize-width)/2+width,
		(placeholderSize-height)/2+height,
	)
	xdraw.NearestNeighbor.Scale(dst, target, cell, cell.Bounds(), xdraw.Over, nil)
}
