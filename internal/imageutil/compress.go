// Package imageutil re-encodes oversized uploads into a size-bounded JPEG
// before they are shipped upstream. The archived original is never touched.
package imageutil

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"

	_ "image/gif"
	_ "image/png"

	"promptoon-golang/server/internal/logger"
)

const (
	startQuality = 85
	qualityStep  = 10
	floorQuality = 10
)

// Normalize returns data unchanged when it already fits maxSize. Otherwise it
// decodes the image, flattens it onto a white three-channel background and
// re-encodes as JPEG, lowering quality from 85 in steps of 10 until the
// result fits or quality bottoms out at 10 (the floor encoding is returned
// even if still over budget). Any decode or encode failure is non-fatal: the
// original bytes are passed through.
func Normalize(data []byte, maxSize int) []byte {
	if len(data) <= maxSize {
		return data
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		logger.Error("图片解码失败，跳过压缩: %v", err)
		return data
	}
	logger.Debug("压缩 %s 图片: %d bytes -> 目标 %d bytes", format, len(data), maxSize)

	flat := flatten(img)

	var buf bytes.Buffer
	for quality := startQuality; ; quality -= qualityStep {
		if quality < floorQuality {
			quality = floorQuality
		}

		buf.Reset()
		if err := jpeg.Encode(&buf, flat, &jpeg.Options{Quality: quality}); err != nil {
			logger.Error("图片重编码失败，跳过压缩: %v", err)
			return data
		}

		if buf.Len() <= maxSize || quality <= floorQuality {
			return append([]byte(nil), buf.Bytes()...)
		}
	}
}

// flatten composites the image over white, discarding any alpha channel so
// the JPEG encoder sees plain three-channel color.
func flatten(img image.Image) image.Image {
	bounds := img.Bounds()
	flat := image.NewRGBA(bounds)
	draw.Draw(flat, bounds, image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.Draw(flat, bounds, img, bounds.Min, draw.Over)
	return flat
}
