package driven

import (
	"context"

	"github.com/custodia-labs/pagesync-cli/internal/core/domain"
)

// ImageDescription is the vision subroutine's output for one image.
type ImageDescription struct {
	// Kind classifies the image: "terminal", "diagram", or "other".
	Kind string

	// Description is the 1-2 sentence summary of the image content.
	Description string

	// Code is extracted command or code text, when present.
	Code string

	// Usage is the token consumption of the call.
	Usage domain.Usage

	// Elapsed is the wall time of the call in seconds.
	Elapsed float64
}

// VisionService turns an embedded image into indexable text. Images are
// never uploaded as opaque binary; they are always converted to text first.
type VisionService interface {
	// DescribeImage downloads the image and produces a textual description
	// using the given vision model. Failures wrap domain.ErrVisionCall.
	DescribeImage(ctx context.Context, image domain.ImageBlock, model string) (*ImageDescription, error)
}
