package assets

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	_ "image/jpeg"

	"golang.org/x/image/draw"
)

// Social-card dimensions expected by link-preview crawlers.
const (
	CardWidth  = 1200
	CardHeight = 630
)

// RenderCard decodes an image, center-crops it to the social-card aspect
// ratio, scales it to 1200x630, and re-encodes it as PNG. Generated images
// arrive wider than 1200x630 so the crop trims edges, never pads.
func RenderCard(data []byte) ([]byte, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("assets: decode image: %w", err)
	}

	crop := coverRect(src.Bounds(), CardWidth, CardHeight)
	dst := image.NewRGBA(image.Rect(0, 0, CardWidth, CardHeight))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, crop, draw.Over, nil)

	var out bytes.Buffer
	if err := png.Encode(&out, dst); err != nil {
		return nil, fmt.Errorf("assets: encode card: %w", err)
	}
	return out.Bytes(), nil
}

// coverRect returns the largest centered sub-rectangle of bounds with the
// target aspect ratio.
func coverRect(bounds image.Rectangle, targetW, targetH int) image.Rectangle {
	srcW := bounds.Dx()
	srcH := bounds.Dy()
	if srcW == 0 || srcH == 0 {
		return bounds
	}
	if srcW*targetH > srcH*targetW {
		// Source is wider than the target ratio, trim the sides.
		cropW := srcH * targetW / targetH
		x0 := bounds.Min.X + (srcW-cropW)/2
		return image.Rect(x0, bounds.Min.Y, x0+cropW, bounds.Max.Y)
	}
	// Source is taller, trim top and bottom.
	cropH := srcW * targetH / targetW
	y0 := bounds.Min.Y + (srcH-cropH)/2
	return image.Rect(bounds.Min.X, y0, bounds.Max.X, y0+cropH)
}
