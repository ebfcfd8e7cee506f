package ocr

import (
	"image"

	"github.com/anthonynsimon/bild/adjust"
	"github.com/anthonynsimon/bild/effect"
	"github.com/disintegration/imaging"
)

// PreprocessOptions controls the clean-up applied before recognition.
type PreprocessOptions struct {
	// Contrast is a bild contrast change in [-1, 1]; 0 leaves it untouched.
	Contrast float64
	// MinHeight upscales shorter images so small text has enough pixels.
	MinHeight int
}

// DefaultPreprocessOptions is tuned for phone photos of printed pages.
func DefaultPreprocessOptions() PreprocessOptions {
	return PreprocessOptions{
		Contrast:  0.2,
		MinHeight: 600,
	}
}

// Preprocess converts to grayscale, boosts contrast and upscales small images.
func Preprocess(img image.Image, opts PreprocessOptions) image.Image {
	var out image.Image = effect.Grayscale(img)
	if opts.Contrast != 0 {
		out = adjust.Contrast(out, opts.Contrast)
	}
	if f := upscaleFactor(img.Bounds(), opts); f > 1 {
		b := out.Bounds()
		out = imaging.Resize(out, int(float64(b.Dx())*f), int(float64(b.Dy())*f), imaging.Lanczos)
	}
	return out
}

func upscaleFactor(b image.Rectangle, opts PreprocessOptions) float64 {
	if opts.MinHeight <= 0 || b.Dy() <= 0 || b.Dy() >= opts.MinHeight {
		return 1
	}
	return float64(opts.MinHeight) / float64(b.Dy())
}
