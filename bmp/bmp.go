// Package bmp writes 24-bit uncompressed Windows bitmaps from RGB buffers
// and reads bitmaps back into the same layout.
package bmp

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"io"
	"os"
	"path/filepath"

	xbmp "golang.org/x/image/bmp"
)

const (
	fileHeaderSize = 14
	infoHeaderSize = 40
	// HeaderSize is the offset of the pixel array in files written by Encode.
	HeaderSize = fileHeaderSize + infoHeaderSize

	bitsPerPixel = 24
	// 72 dpi
	pixelsPerMeter = 2835
)

var (
	ErrInvalidDimensions = errors.New("bmp: width and height must be positive")
	ErrBufferSize        = errors.New("bmp: pixel buffer does not match dimensions")
)

type fileHeader struct {
	Signature  [2]byte
	FileSize   uint32
	Reserved1  uint16
	Reserved2  uint16
	DataOffset uint32
}

type infoHeader struct {
	HeaderSize      uint32
	Width           int32
	Height          int32 // positive: rows are stored bottom-up
	Planes          uint16
	BitsPerPixel    uint16
	Compression     uint32
	ImageSize       uint32
	XPixelsPerMeter int32
	YPixelsPerMeter int32
	ColorsUsed      uint32
	ImportantColors uint32
}

// RowStride is the byte length of one stored row, padded to 4 bytes.
func RowStride(width int) int {
	return (3*width + 3) &^ 3
}

// FileSize is the size of the file Encode writes for an image of width x height.
func FileSize(width, height int) int {
	return HeaderSize + RowStride(width)*height
}

func checkBuffer(width, height int, rgb []byte) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%dx%d: %w", width, height, ErrInvalidDimensions)
	}
	if len(rgb) != 3*width*height {
		return fmt.Errorf("got %d bytes for %dx%d: %w", len(rgb), width, height, ErrBufferSize)
	}
	return nil
}

// Encode writes rgb as a bitmap. rgb holds 3 bytes (R, G, B) per pixel,
// rows from top to bottom.
func Encode(w io.Writer, width, height int, rgb []byte) error {
	if err := checkBuffer(width, height, rgb); err != nil {
		return err
	}

	stride := RowStride(width)
	fh := fileHeader{
		Signature:  [2]byte{'B', 'M'},
		FileSize:   uint32(FileSize(width, height)),
		DataOffset: HeaderSize,
	}
	ih := infoHeader{
		HeaderSize:      infoHeaderSize,
		Width:           int32(width),
		Height:          int32(height),
		Planes:          1,
		BitsPerPixel:    bitsPerPixel,
		ImageSize:       uint32(stride * height),
		XPixelsPerMeter: pixelsPerMeter,
		YPixelsPerMeter: pixelsPerMeter,
	}

	bw := bufio.NewWriter(w)
	if err := binary.Write(bw, binary.LittleEndian, fh); err != nil {
		return fmt.Errorf("write file header: %w", err)
	}
	if err := binary.Write(bw, binary.LittleEndian, ih); err != nil {
		return fmt.Errorf("write info header: %w", err)
	}

	row := make([]byte, stride)
	for y := height - 1; y >= 0; y-- {
		src := rgb[3*y*width : 3*(y+1)*width]
		for x := 0; x < width; x++ {
			row[3*x] = src[3*x+2]
			row[3*x+1] = src[3*x+1]
			row[3*x+2] = src[3*x]
		}
		if _, err := bw.Write(row); err != nil {
			return fmt.Errorf("write row %d: %w", y, err)
		}
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("flush: %w", err)
	}
	return nil
}

// WriteFile encodes rgb into the file at path. The bitmap goes to a
// temporary file next to path first and is renamed over path only once it
// is complete, so a failed write never leaves a partial image behind.
func WriteFile(path string, width, height int, rgb []byte) (err error) {
	if err := checkBuffer(width, height, rgb); err != nil {
		return err
	}

	f, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			f.Close()
			os.Remove(f.Name())
		}
	}()

	if err := Encode(f, width, height, rgb); err != nil {
		return err
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("sync %q: %w", f.Name(), err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %q: %w", f.Name(), err)
	}
	if err := os.Chmod(f.Name(), 0o644); err != nil {
		return fmt.Errorf("chmod %q: %w", f.Name(), err)
	}
	if err := os.Rename(f.Name(), path); err != nil {
		return fmt.Errorf("rename to %q: %w", path, err)
	}
	return nil
}

// Decode reads any bitmap golang.org/x/image/bmp understands and returns
// its pixels in the layout Encode takes.
func Decode(r io.Reader) (width, height int, rgb []byte, err error) {
	img, err := xbmp.Decode(r)
	if err != nil {
		return 0, 0, nil, fmt.Errorf("bmp.Decode: %w", err)
	}

	b := img.Bounds()
	rgba, ok := img.(*image.RGBA)
	if !ok {
		rgba = image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	}

	width, height = b.Dx(), b.Dy()
	rgb = make([]byte, 0, 3*width*height)
	for y := 0; y < height; y++ {
		line := rgba.Pix[y*rgba.Stride : y*rgba.Stride+4*width]
		for x := 0; x < width; x++ {
			rgb = append(rgb, line[4*x], line[4*x+1], line[4*x+2])
		}
	}
	return width, height, rgb, nil
}
