package utils

import (
	"bytes"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/nfnt/resize"
)

// RandName returns a 32 character hex token usable as a flat blob name
func RandName() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// ThumbName is the blob name of the JPEG thumbnail made for name
func ThumbName(name string) string {
	return name + "_thumb.jpg"
}

type ImageThumbConverted struct {
	ThumbSize int64
	NewX      uint16
	NewY      uint16
	OldX      uint16
	OldY      uint16
}

func CreateThumb(size uint, reader io.Reader, writer io.Writer) (result ImageThumbConverted, err error) {
	image, _, err := image.Decode(reader)
	if err != nil {
		return result, err
	}
	var newBuf bytes.Buffer
	newImage := resize.Thumbnail(size, size, image, resize.Lanczos3)
	if err = jpeg.Encode(&newBuf, newImage, &jpeg.Options{Quality: 90}); err != nil {
		return
	}
	imageRect := newImage.Bounds().Size()
	result.NewX = uint16(imageRect.X)
	result.NewY = uint16(imageRect.Y)

	imageRect = image.Bounds().Size()
	result.OldX = uint16(imageRect.X)
	result.OldY = uint16(imageRect.Y)

	result.ThumbSize, err = io.Copy(writer, &newBuf)
	return
}

// StringToUInt64Ptr returns nil for anything that is not a valid id
func StringToUInt64Ptr(in string) *uint64 {
	i, err := strconv.ParseUint(in, 10, 64)
	if err != nil {
		return nil
	}
	return &i
}

func StringToInt(in string, def int) int {
	i, err := strconv.Atoi(in)
	if err != nil {
		return def
	}
	return i
}
