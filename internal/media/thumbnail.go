package media

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"

	_ "image/gif"
	_ "image/png"

	_ "golang.org/x/image/webp"

	"github.com/rwcarlsen/goexif/exif"
	"golang.org/x/image/draw"
)

const thumbnailQuality = 85

// Thumbnail decodes an image, applies its EXIF orientation, and scales it to
// fit within size x size pixels, returning JPEG bytes.
func Thumbnail(imageData []byte, size int) ([]byte, error) {
	orientation := imageOrientation(imageData)

	img, _, err := image.Decode(bytes.NewReader(imageData))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	if orientation != 1 {
		img = correctOrientation(img, orientation)
	}

	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	scaleX := float64(size) / float64(width)
	scaleY := float64(size) / float64(height)
	scale := scaleX
	if scaleY < scaleX {
		scale = scaleY
	}
	if scale > 1 {
		scale = 1
	}

	newWidth := int(float64(width) * scale)
	newHeight := int(float64(height) * scale)
	if newWidth < 1 {
		newWidth = 1
	}
	if newHeight < 1 {
		newHeight = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, newWidth, newHeight))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: thumbnailQuality}); err != nil {
		return nil, fmt.Errorf("encode thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}

func imageOrientation(data []byte) int {
	x, err := exif.Decode(bytes.NewReader(data))
	if err != nil {
		return 1
	}
	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return 1
	}
	v, err := tag.Int(0)
	if err != nil {
		return 1
	}
	return v
}

func correctOrientation(img image.Image, orientation int) image.Image {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	switch orientation {
	case 2: // flip horizontal
		out := image.NewRGBA(image.Rect(0, 0, width, height))
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				out.Set(width-1-x, y, img.At(x, y))
			}
		}
		return out
	case 3: // rotate 180
		out := image.NewRGBA(image.Rect(0, 0, width, height))
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				out.Set(width-1-x, height-1-y, img.At(x, y))
			}
		}
		return out
	case 4: // flip vertical
		out := image.NewRGBA(image.Rect(0, 0, width, height))
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				out.Set(x, height-1-y, img.At(x, y))
			}
		}
		return out
	case 5, 6: // rotate 90 clockwise
		out := image.NewRGBA(image.Rect(0, 0, height, width))
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				out.Set(height-1-y, x, img.At(x, y))
			}
		}
		return out
	case 7, 8: // rotate 90 counter-clockwise
		out := image.NewRGBA(image.Rect(0, 0, height, width))
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				out.Set(y, width-1-x, img.At(x, y))
			}
		}
		return out
	default:
		return img
	}
}
