package staticdriver

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/png"
	"sync"
)

const (
	placeholderWidth  = 320
	placeholderHeight = 200
)

var placeholderOnce = sync.OnceValues(func() (string, error) {
	img := image.NewGray(image.Rect(0, 0, placeholderWidth, placeholderHeight))
	for i := range img.Pix {
		img.Pix[i] = 0xee
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
})

func placeholder() (string, error) {
	return placeholderOnce()
}
