// Package convert reads the packed asset formats: .tex texture containers
// and .pkg archives.
package convert

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"

	"github.com/mauserzjeh/dxt"
	"github.com/pierrec/lz4/v4"

	"stg-renderer/internal/utils"
)

// Format is the pixel format recorded in a texture header.
type Format uint32

const (
	FormatRGBA8888 Format = 0
	FormatDXT5     Format = 4
	FormatDXT3     Format = 6
	FormatDXT1     Format = 7
	FormatRG88     Format = 8
	FormatR8       Format = 9
)

func (f Format) String() string {
	switch f {
	case FormatRGBA8888:
		return "RGBA8888"
	case FormatDXT5:
		return "DXT5"
	case FormatDXT3:
		return "DXT3"
	case FormatDXT1:
		return "DXT1"
	case FormatRG88:
		return "RG88"
	case FormatR8:
		return "R8"
	}
	return fmt.Sprintf("Format(%d)", uint32(f))
}

var (
	ErrBadMagic          = errors.New("convert: bad magic")
	ErrUnsupportedFormat = errors.New("convert: unsupported texture format")
	ErrCorrupt           = errors.New("convert: corrupt data")
)

const (
	magicTexture = "TEXV0005"
	magicInfo    = "TEXI0001"
	// maxMipBytes bounds a single mip level, 16384x16384 RGBA.
	maxMipBytes = 16384 * 16384 * 4
)

// TextureHeader describes a texture container.
type TextureHeader struct {
	Format Format
	Flags  uint32
	// TextureWidth and TextureHeight are the padded storage size,
	// ImageWidth and ImageHeight the visible part.
	TextureWidth, TextureHeight uint32
	ImageWidth, ImageHeight     uint32
	Container                   string
	ImageCount                  uint32
	// FreeImageFormat is -1 for raw pixel data; other values mean each mip
	// holds an encoded image file.
	FreeImageFormat int32
}

type texReader struct {
	r   *bufio.Reader
	err error
}

func (t *texReader) u32() uint32 {
	var v uint32
	if t.err == nil {
		t.err = binary.Read(t.r, binary.LittleEndian, &v)
	}
	return v
}

// magic reads an 8 byte tag followed by a NUL.
func (t *texReader) magic() string {
	var b [9]byte
	if t.err == nil {
		_, t.err = io.ReadFull(t.r, b[:])
	}
	return string(bytes.TrimRight(b[:8], "\x00"))
}

func (t *texReader) bytes(n uint32) []byte {
	if t.err != nil {
		return nil
	}
	if n > maxMipBytes {
		t.err = fmt.Errorf("%w: block of %d bytes", ErrCorrupt, n)
		return nil
	}
	b := make([]byte, n)
	_, t.err = io.ReadFull(t.r, b)
	return b
}

func (t *texReader) header() (TextureHeader, error) {
	var h TextureHeader
	if m := t.magic(); t.err == nil && m != magicTexture {
		return h, fmt.Errorf("%w: %q", ErrBadMagic, m)
	}
	if m := t.magic(); t.err == nil && m != magicInfo {
		return h, fmt.Errorf("%w: %q", ErrBadMagic, m)
	}
	h.Format = Format(t.u32())
	h.Flags = t.u32()
	h.TextureWidth, h.TextureHeight = t.u32(), t.u32()
	h.ImageWidth, h.ImageHeight = t.u32(), t.u32()
	t.u32()
	h.Container = t.magic()
	h.ImageCount = t.u32()
	h.FreeImageFormat = -1
	switch h.Container {
	case "TEXB0001", "TEXB0002":
	case "TEXB0003":
		h.FreeImageFormat = int32(t.u32())
	default:
		if t.err == nil {
			return h, fmt.Errorf("%w: container %q", ErrUnsupportedFormat, h.Container)
		}
	}
	return h, t.err
}

// mip reads one mip level and returns its size and uncompressed payload.
func (t *texReader) mip(container string) (w, h uint32, data []byte, err error) {
	w, h = t.u32(), t.u32()
	compressed := false
	var rawSize uint32
	if container != "TEXB0001" {
		compressed = t.u32() == 1
		rawSize = t.u32()
	}
	data = t.bytes(t.u32())
	if t.err != nil {
		return 0, 0, nil, t.err
	}
	if !compressed {
		return w, h, data, nil
	}
	if rawSize > maxMipBytes {
		return 0, 0, nil, fmt.Errorf("%w: lz4 size %d", ErrCorrupt, rawSize)
	}
	raw := make([]byte, rawSize)
	n, err := lz4.UncompressBlock(data, raw)
	if err != nil {
		return 0, 0, nil, fmt.Errorf("%w: lz4: %v", ErrCorrupt, err)
	}
	utils.Debug("Texture: lz4 %d -> %d bytes", len(data), n)
	return w, h, raw[:n], nil
}

// DecodeTexture decodes the first mip of the first image in a texture
// container, cropped to the visible image size.
func DecodeTexture(r io.Reader) (image.Image, TextureHeader, error) {
	t := &texReader{r: bufio.NewReader(r)}
	h, err := t.header()
	if err != nil {
		return nil, h, err
	}
	if h.ImageCount == 0 {
		return nil, h, fmt.Errorf("%w: no images", ErrCorrupt)
	}
	if t.u32() == 0 {
		if t.err != nil {
			return nil, h, t.err
		}
		return nil, h, fmt.Errorf("%w: no mip levels", ErrCorrupt)
	}
	w, hgt, data, err := t.mip(h.Container)
	if err != nil {
		return nil, h, err
	}

	if h.FreeImageFormat != -1 {
		img, _, err := image.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, h, fmt.Errorf("convert: embedded image: %w", err)
		}
		return img, h, nil
	}

	pix, err := decodePixels(h.Format, data, w, hgt)
	if err != nil {
		return nil, h, err
	}
	img := &image.NRGBA{Pix: pix, Stride: int(w) * 4, Rect: image.Rect(0, 0, int(w), int(hgt))}
	visible := image.Rect(0, 0, int(min(h.ImageWidth, w)), int(min(h.ImageHeight, hgt)))
	if h.ImageWidth == 0 || h.ImageHeight == 0 || visible == img.Rect {
		return img, h, nil
	}
	return img.SubImage(visible), h, nil
}

// decodePixels expands mip data to 8-bit RGBA.
func decodePixels(format Format, data []byte, w, h uint32) ([]byte, error) {
	n := int(w) * int(h)
	blocks := int((w+3)/4) * int((h+3)/4)
	want := func(size int) error {
		if len(data) < size {
			return fmt.Errorf("%w: %v %dx%d needs %d bytes, have %d", ErrCorrupt, format, w, h, size, len(data))
		}
		return nil
	}

	switch format {
	case FormatRGBA8888:
		if err := want(n * 4); err != nil {
			return nil, err
		}
		return data[:n*4], nil
	case FormatDXT1:
		if err := want(blocks * 8); err != nil {
			return nil, err
		}
		return dxt.DecodeDXT1(data, uint(w), uint(h))
	case FormatDXT5:
		if err := want(blocks * 16); err != nil {
			return nil, err
		}
		return dxt.DecodeDXT5(data, uint(w), uint(h))
	case FormatRG88:
		if err := want(n * 2); err != nil {
			return nil, err
		}
		pix := make([]byte, n*4)
		for i := 0; i < n; i++ {
			l, a := data[i*2], data[i*2+1]
			pix[i*4], pix[i*4+1], pix[i*4+2], pix[i*4+3] = l, l, l, a
		}
		return pix, nil
	case FormatR8:
		if err := want(n); err != nil {
			return nil, err
		}
		pix := make([]byte, n*4)
		for i := 0; i < n; i++ {
			v := data[i]
			pix[i*4], pix[i*4+1], pix[i*4+2], pix[i*4+3] = v, v, v, 255
		}
		return pix, nil
	}
	return nil, fmt.Errorf("%w: %v", ErrUnsupportedFormat, format)
}
