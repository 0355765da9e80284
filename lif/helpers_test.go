package lif

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/lifio/lif/internal/liftest"
)

// openBytes opens an in-memory container and fails the test on error.
func openBytes(t *testing.T, data []byte, opts ...Option) *File {
	t.Helper()
	f, err := Open(bytes.NewReader(data), int64(len(data)), opts...)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { f.Close() })
	return f
}

// headerXML wraps element declarations into a container header document.
func headerXML(version int, project string, elements ...string) string {
	return fmt.Sprintf(
		`<LMSDataContainerHeader Version="%d"><Element Name="%s"><Children>%s</Children></Element></LMSDataContainerHeader>`,
		version, project, strings.Join(elements, ""))
}

// imageElement renders one image-bearing element.
func imageElement(name, blockID string, memSize int, body ...string) string {
	return fmt.Sprintf(
		`<Element Name="%s" UniqueID="%s-id"><Data><Image>%s</Image></Data><Memory Size="%d" MemoryBlockID="%s"/></Element>`,
		name, name, strings.Join(body, ""), memSize, blockID)
}

// description wraps dimension and channel declarations.
func description(dims, channels string) string {
	return `<ImageDescription><Dimensions>` + dims + `</Dimensions><Channels>` + channels + `</Channels></ImageDescription>`
}

func dim(id, n int, inc int64) string {
	return fmt.Sprintf(
		`<DimensionDescription DimID="%d" NumberOfElements="%d" BytesInc="%d" BitInc="0"/>`,
		id, n, inc)
}

func dimGeo(id, n int, inc int64, origin, length float64, unit string) string {
	return fmt.Sprintf(
		`<DimensionDescription DimID="%d" NumberOfElements="%d" Origin="%g" Length="%g" Unit="%s" BytesInc="%d" BitInc="0"/>`,
		id, n, origin, length, unit, inc)
}

func channel(dataType, tag, resolution int, off int64) string {
	return fmt.Sprintf(
		`<ChannelDescription DataType="%d" ChannelTag="%d" Resolution="%d" BytesInc="%d" Min="0" Max="255" LUTName="Gray" NameOfMeasuredQuantity="Intensity"/>`,
		dataType, tag, resolution, off)
}

func gray8(off int64) string { return channel(0, 0, 8, off) }

// plane2x3 is a 2 rows by 3 columns uint8 image with one gray channel;
// row-major sample value is 10*(flat index + 1).
func plane2x3(name, blockID string) (element string, pixels []byte) {
	element = imageElement(name, blockID, 6,
		description(dim(1, 3, 1)+dim(2, 2, 3), gray8(0)))
	return element, []byte{10, 20, 30, 40, 50, 60}
}

// simpleLIF builds a single-image container around plane2x3.
func simpleLIF(name, blockID string) []byte {
	element, pixels := plane2x3(name, blockID)
	return liftest.LIF(headerXML(2, "Proj", element),
		[]string{blockID}, map[string][]byte{blockID: pixels})
}
