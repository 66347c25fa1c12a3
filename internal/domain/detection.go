package domain

import "context"

// Box is one detection in pixel coordinates of the submitted image, matching
// the xyxy layout of the model server.
type Box struct {
	XMin       float64 `json:"xmin"`
	YMin       float64 `json:"ymin"`
	XMax       float64 `json:"xmax"`
	YMax       float64 `json:"ymax"`
	Confidence float64 `json:"confidence"`
	Class      int     `json:"class"`
	Name       string  `json:"name"`
}

// Detection is the result of running the sunspot model on one image.
type Detection struct {
	Boxes    []Box
	Rendered []byte // JPEG with the boxes drawn in
}

// Count is the number of sunspots found.
func (d Detection) Count() int {
	return len(d.Boxes)
}

// Detector runs the pretrained sunspot model.
type Detector interface {
	Detect(ctx context.Context, image []byte) (Detection, error)
}

// ImageStore hosts images publicly and returns their URL.
type ImageStore interface {
	Upload(ctx context.Context, image []byte) (string, error)
}
