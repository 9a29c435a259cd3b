package cover

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"image"
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

// pictureTypeFrontCover is the picture type code for "Cover (front)" shared
// by the FLAC picture block and ID3v2 APIC frames.
const pictureTypeFrontCover = 3

const pictureDepthBits = 24

var mimeByExtension = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".bmp":  "image/bmp",
	".webp": "image/webp",
	".tiff": "image/tiff",
}

// Picture is a decoded cover image ready for embedding.
type Picture struct {
	MIME   string
	Width  int
	Height int
	Data   []byte
}

// FromFile loads and inspects an image file. Dimensions come from the image
// header; the pixel data itself is embedded as-is.
func FromFile(path string) (Picture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Picture{}, fmt.Errorf("read cover: %w", err)
	}
	mime, ok := mimeByExtension[strings.ToLower(filepath.Ext(path))]
	if !ok {
		return Picture{}, fmt.Errorf("unsupported cover format: %s", filepath.Base(path))
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return Picture{}, fmt.Errorf("decode cover %s: %w", filepath.Base(path), err)
	}
	return Picture{MIME: mime, Width: cfg.Width, Height: cfg.Height, Data: data}, nil
}

// MetadataBlock serializes the picture as a FLAC METADATA_BLOCK_PICTURE
// structure, the payload Vorbis comments expect for embedded artwork.
func (p Picture) MetadataBlock() []byte {
	var buf bytes.Buffer
	writeUint32 := func(v uint32) {
		_ = binary.Write(&buf, binary.BigEndian, v)
	}
	writeUint32(pictureTypeFrontCover)
	writeUint32(uint32(len(p.MIME)))
	buf.WriteString(p.MIME)
	writeUint32(0) // description length
	writeUint32(uint32(p.Width))
	writeUint32(uint32(p.Height))
	writeUint32(pictureDepthBits)
	writeUint32(0) // indexed color count
	writeUint32(uint32(len(p.Data)))
	buf.Write(p.Data)
	return buf.Bytes()
}

// MetadataBlockBase64 returns the picture block in the base64 form written
// into the metadata_block_picture comment.
func (p Picture) MetadataBlockBase64() string {
	return base64.StdEncoding.EncodeToString(p.MetadataBlock())
}
