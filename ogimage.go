package gofromts

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"strings"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const (
	ogWidth   = 1200
	ogHeight  = 630
	ogMargin  = 80
	ogLineGap = 3
)

var (
	ogBackground = color.RGBA{0x0d, 0x11, 0x17, 0xff}
	ogAccent     = color.RGBA{0x00, 0xad, 0xd8, 0xff}
	ogText       = color.RGBA{0xe6, 0xed, 0xf3, 0xff}
	ogMuted      = color.RGBA{0x91, 0x98, 0xa1, 0xff}
)

// RenderSocialImage draws the preview image shown when a page is shared:
// the title large, the description below it, on a dark background.
func RenderSocialImage(title, description string) ([]byte, error) {
	img := image.NewRGBA(image.Rect(0, 0, ogWidth, ogHeight))
	draw.Draw(img, img.Bounds(), image.NewUniform(ogBackground), image.Point{}, draw.Src)
	draw.Draw(img, image.Rect(0, 0, ogWidth, 16), image.NewUniform(ogAccent), image.Point{}, draw.Src)

	y := drawText(img, wrapText(title, 30, 3), ogText, 5, ogMargin, 120)
	drawText(img, wrapText(description, 50, 3), ogMuted, 3, ogMargin, y+40)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode social image: %w", err)
	}
	return buf.Bytes(), nil
}

// drawText renders lines with the 7x13 bitmap face, scales them up by scale
// and draws them at (x, y). It returns the y coordinate below the text.
func drawText(dst *image.RGBA, lines []string, c color.Color, scale, x, y int) int {
	if len(lines) == 0 {
		return y
	}
	face := basicfont.Face7x13
	lineHeight := face.Height + ogLineGap
	width := 0
	for _, l := range lines {
		width = max(width, len([]rune(l))*face.Advance)
	}

	small := image.NewRGBA(image.Rect(0, 0, width, lineHeight*len(lines)))
	d := font.Drawer{Dst: small, Src: image.NewUniform(c), Face: face}
	for i, l := range lines {
		d.Dot = fixed.P(0, i*lineHeight+face.Ascent)
		d.DrawString(l)
	}

	r := image.Rect(x, y, x+width*scale, y+small.Bounds().Dy()*scale)
	draw.NearestNeighbor.Scale(dst, r, small, small.Bounds(), draw.Over, nil)
	return r.Max.Y
}

// wrapText breaks s into at most maxLines lines of at most width runes.
// Text that does not fit ends in "...".
func wrapText(s string, width, maxLines int) []string {
	var (
		lines []string
		cur   string
	)
	for _, w := range strings.Fields(s) {
		if r := []rune(w); len(r) > width {
			w = string(r[:width])
		}
		switch {
		case cur == "":
			cur = w
		case len([]rune(cur))+1+len([]rune(w)) <= width:
			cur += " " + w
		default:
			lines = append(lines, cur)
			cur = w
		}
	}
	if cur != "" {
		lines = append(lines, cur)
	}
	if len(lines) > maxLines {
		lines = lines[:maxLines]
		last := []rune(lines[maxLines-1])
		if len(last) > width-3 {
			last = last[:width-3]
		}
		lines[maxLines-1] = strings.TrimRight(string(last), " ") + "..."
	}
	return lines
}
