// Package phash computes perceptual fingerprints for raster images.
//
// The fingerprint is a 64-bit difference hash (dHash): the image is reduced
// to a 9x8 grayscale grid and each bit records whether a pixel is brighter
// than its right-hand neighbour. The hash is robust to re-encoding, resizing
// and small quality changes of the same picture.
package phash

import (
	"fmt"
	"image"
	"image/color"
	"math/bits"
	"os"
	"path/filepath"
	"strings"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

const (
	// hashWidth/hashHeight give 8 comparisons per row over 8 rows, one
	// bit each, for a 64-bit fingerprint.
	hashWidth  = 9
	hashHeight = 8

	// SimilarityThreshold is the maximum Hamming distance at which two
	// fingerprints are considered the same picture.
	SimilarityThreshold = 10
)

// imageExtensions lists the raster formats we can decode.
var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
	".bmp":  true,
	".tif":  true,
	".tiff": true,
}

// IsImageFile reports whether the path has a recognized raster image extension.
func IsImageFile(path string) bool {
	return imageExtensions[strings.ToLower(filepath.Ext(path))]
}

// FromFile computes the fingerprint of an image file.
func FromFile(path string) (uint64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open image: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return 0, fmt.Errorf("decode image: %w", err)
	}

	return FromImage(img), nil
}

// FromImage computes the dHash fingerprint of a decoded image.
func FromImage(img image.Image) uint64 {
	grid := downsample(img, hashWidth, hashHeight)

	var hash uint64
	bit := 0
	for y := 0; y < hashHeight; y++ {
		for x := 0; x < hashWidth-1; x++ {
			if grid[y][x] > grid[y][x+1] {
				hash |= 1 << uint(63-bit)
			}
			bit++
		}
	}
	return hash
}

// Distance returns the Hamming distance between two fingerprints.
func Distance(a, b uint64) int {
	return bits.OnesCount64(a ^ b)
}

// Similar reports whether two fingerprints are within the similarity threshold.
func Similar(a, b uint64) bool {
	return Distance(a, b) <= SimilarityThreshold
}

// downsample shrinks an image to a small grayscale grid by averaging the
// source pixels covered by each cell. Averaging instead of point sampling
// keeps the hash stable across different source resolutions.
func downsample(img image.Image, width, height int) [][]float64 {
	bounds := img.Bounds()
	srcW := bounds.Dx()
	srcH := bounds.Dy()

	grid := make([][]float64, height)
	for y := range grid {
		grid[y] = make([]float64, width)
	}
	if srcW == 0 || srcH == 0 {
		return grid
	}

	for y := 0; y < height; y++ {
		y0 := bounds.Min.Y + y*srcH/height
		y1 := bounds.Min.Y + (y+1)*srcH/height
		if y1 <= y0 {
			y1 = y0 + 1
		}
		for x := 0; x < width; x++ {
			x0 := bounds.Min.X + x*srcW/width
			x1 := bounds.Min.X + (x+1)*srcW/width
			if x1 <= x0 {
				x1 = x0 + 1
			}

			var sum float64
			for sy := y0; sy < y1; sy++ {
				for sx := x0; sx < x1; sx++ {
					sum += luminance(img.At(sx, sy))
				}
			}
			grid[y][x] = sum / float64((y1-y0)*(x1-x0))
		}
	}
	return grid
}

// luminance converts a color to a grayscale value using the standard
// Rec. 601 weights.
func luminance(c color.Color) float64 {
	r, g, b, _ := c.RGBA()
	return 0.299*float64(r>>8) + 0.587*float64(g>>8) + 0.114*float64(b>>8)
}
