package gofromts

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderSocialImage(t *testing.T) {
	data, err := RenderSocialImage("Go from TS", DefaultDescription)
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 1200, img.Bounds().Dx())
	assert.Equal(t, 630, img.Bounds().Dy())

	// Background in the corner, accent bar at the top.
	r, g, b, _ := img.At(5, 600).RGBA()
	assert.Equal(t, [3]uint32{0x0d0d, 0x1111, 0x1717}, [3]uint32{r, g, b})
	r, g, b, _ = img.At(5, 5).RGBA()
	assert.Equal(t, [3]uint32{0, 0xadad, 0xd8d8}, [3]uint32{r, g, b})
}

func TestWrapText(t *testing.T) {
	assert.Equal(t, []string{"Use your", "TypeScript", "knowledge"}, wrapText("Use your TypeScript knowledge", 10, 3))
	assert.Equal(t, []string{"one two", "thre..."}, wrapText("one two three four five", 7, 2))
	assert.Empty(t, wrapText("   ", 10, 2))
}
