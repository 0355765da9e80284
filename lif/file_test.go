package lif

import (
	"bytes"
	"errors"
	"reflect"
	"testing"

	"github.com/lifio/lif/internal/liftest"
)

func TestOpenCatalog(t *testing.T) {
	elemA, pixA := plane2x3("Series_A", "MemBlock_10")
	elemB, pixB := plane2x3("Series_B", "MemBlock_11")
	data := liftest.LIF(headerXML(2, "Experiment", elemA+elemB),
		[]string{"MemBlock_10", "MemBlock_11"},
		map[string][]byte{"MemBlock_10": pixA, "MemBlock_11": pixB})

	f := openBytes(t, data)
	if f.Name() != "Experiment" {
		t.Errorf("Name() = %q, want Experiment", f.Name())
	}
	if f.Version() != 2 {
		t.Errorf("Version() = %d, want 2", f.Version())
	}
	if f.IsLOF() {
		t.Error("IsLOF() = true for a multi-image container")
	}

	images := f.Images()
	if len(images) != 2 {
		t.Fatalf("Images() returned %d images, want 2", len(images))
	}
	wantPaths := []string{"Experiment/Series_A", "Experiment/Series_B"}
	for i, im := range images {
		if im.Path() != wantPaths[i] {
			t.Errorf("image %d path = %q, want %q", i, im.Path(), wantPaths[i])
		}
		if im.Index() != i {
			t.Errorf("image %d Index() = %d", i, im.Index())
		}
		if err := im.Err(); err != nil {
			t.Errorf("image %d unexpectedly defective: %v", i, err)
		}
	}
	if images[0].GUID() != "Series_A-id" {
		t.Errorf("GUID() = %q, want Series_A-id", images[0].GUID())
	}

	root := f.Root()
	if root.Name() != "Experiment" {
		t.Errorf("root name = %q", root.Name())
	}
	if got := len(root.Images()); got != 2 {
		t.Errorf("root has %d images, want 2", got)
	}
	if got := len(root.Collections()); got != 0 {
		t.Errorf("root has %d sub-collections, want 0", got)
	}
}

func TestOpenNestedCollections(t *testing.T) {
	elem, pix := plane2x3("Pos_1", "MemBlock_3")
	folder := `<Element Name="Stage"><Children>` + elem + `</Children></Element>`
	data := liftest.LIF(headerXML(2, "Proj", folder),
		[]string{"MemBlock_3"}, map[string][]byte{"MemBlock_3": pix})

	f := openBytes(t, data)
	stage := f.Root().Collection("Stage")
	if stage == nil {
		t.Fatal("no Stage collection under root")
	}
	if stage.Path() != "Proj/Stage" {
		t.Errorf("stage path = %q", stage.Path())
	}
	images := stage.Images()
	if len(images) != 1 || images[0].Path() != "Proj/Stage/Pos_1" {
		t.Fatalf("stage images = %v", images)
	}
	if f.Root().Collection("Nope") != nil {
		t.Error("lookup of absent collection returned non-nil")
	}
}

func TestOpenDeterministic(t *testing.T) {
	data := simpleLIF("Series_A", "MemBlock_5")

	var summaries [][]byte
	var pixels [][]uint8
	for i := 0; i < 3; i++ {
		f := openBytes(t, data)
		s, err := f.SummaryJSON()
		if err != nil {
			t.Fatalf("SummaryJSON: %v", err)
		}
		summaries = append(summaries, s)
		arr, err := f.Images()[0].Read()
		if err != nil {
			t.Fatalf("Read: %v", err)
		}
		v, _ := arr.Uint8s()
		pixels = append(pixels, v)
		f.Close()
	}
	for i := 1; i < 3; i++ {
		if !bytes.Equal(summaries[0], summaries[i]) {
			t.Errorf("open %d produced a different summary", i)
		}
		if !reflect.DeepEqual(pixels[0], pixels[i]) {
			t.Errorf("open %d produced different pixels", i)
		}
	}
}

func TestOpenRejectsForeignFile(t *testing.T) {
	cases := map[string][]byte{
		"png":   {0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a, 0, 0, 0, 0},
		"text":  []byte("hello, this is not a container at all, promise"),
		"empty": {},
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Open(bytes.NewReader(data), int64(len(data)))
			if err == nil {
				t.Fatal("Open accepted foreign bytes")
			}
			var ferr *FormatError
			if !errors.As(err, &ferr) {
				t.Fatalf("error is %T, want *FormatError", err)
			}
			if !errors.Is(err, ErrNotLIF) {
				t.Fatalf("error %v does not wrap ErrNotLIF", err)
			}
		})
	}
}

func TestClosedFile(t *testing.T) {
	f := openBytes(t, simpleLIF("Series_A", "MemBlock_5"))
	im := f.Images()[0]
	if err := f.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
	if _, err := im.Read(); !errors.Is(err, ErrClosed) {
		t.Errorf("Read after Close = %v, want ErrClosed", err)
	}
	if _, err := f.BlockData("MemBlock_5"); !errors.Is(err, ErrClosed) {
		t.Errorf("BlockData after Close = %v, want ErrClosed", err)
	}
}

func TestOpenFileAndMemoryMapping(t *testing.T) {
	element, pixels := plane2x3("Series_A", "MemBlock_5")
	b := liftest.New()
	b.Metadata(headerXML(2, "Proj", element))
	b.Pixel("MemBlock_5", pixels)
	path := b.WriteTemp(t)

	direct, err := OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	defer direct.Close()
	mapped, err := OpenFile(path, WithMemoryMapping())
	if err != nil {
		t.Fatalf("OpenFile(mmap): %v", err)
	}
	defer mapped.Close()

	for _, f := range []*File{direct, mapped} {
		if f.Path() != path {
			t.Errorf("Path() = %q, want %q", f.Path(), path)
		}
		arr, err := f.Images()[0].Read()
		if err != nil {
			t.Fatalf("Read: %v", err)
		}
		got, _ := arr.Uint8s()
		if !bytes.Equal(got, pixels) {
			t.Errorf("pixels = %v, want %v", got, pixels)
		}
	}
}

func TestOpenLOF(t *testing.T) {
	xml := `<LMSDataContainerHeader Version="2"><Element Name="Single" UniqueID="u-1">` +
		`<Data><Image>` + description(dim(1, 3, 1)+dim(2, 2, 3), gray8(0)) + `</Image></Data>` +
		`<Memory Size="6" MemoryBlockID="MemBlock_21"/></Element></LMSDataContainerHeader>`
	pixels := []byte{1, 2, 3, 4, 5, 6}
	data := liftest.LOF("MemBlock_21", pixels, xml)

	f := openBytes(t, data)
	if !f.IsLOF() {
		t.Fatal("IsLOF() = false")
	}
	if f.Version() != 2 {
		t.Errorf("Version() = %d, want 2", f.Version())
	}
	images := f.Images()
	if len(images) != 1 {
		t.Fatalf("Images() returned %d images, want 1", len(images))
	}
	if images[0].Path() != "Single" {
		t.Errorf("image path = %q, want Single", images[0].Path())
	}
	arr, err := images[0].Read()
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	got, _ := arr.Uint8s()
	if !bytes.Equal(got, pixels) {
		t.Errorf("pixels = %v, want %v", got, pixels)
	}
}

func TestOpenLOFWithoutUsableXML(t *testing.T) {
	data := liftest.LOF("MemBlock_9", []byte{1, 2, 3, 4}, "")

	f := openBytes(t, data)
	if !f.IsLOF() {
		t.Error("IsLOF() = false")
	}
	if f.Version() != 0 {
		t.Errorf("Version() = %d, want 0", f.Version())
	}
	if n := len(f.Images()); n != 0 {
		t.Errorf("Images() returned %d images, want 0", n)
	}
	if n := len(f.MetadataErrors()); n == 0 {
		t.Error("no metadata error recorded for the unusable trailer")
	}
}

func TestBlocks(t *testing.T) {
	elemA, pixA := plane2x3("A", "MemBlock_1")
	elemB, pixB := plane2x3("B", "MemBlock_2")
	data := liftest.LIF(headerXML(2, "P", elemA+elemB),
		[]string{"MemBlock_1", "MemBlock_2"},
		map[string][]byte{"MemBlock_1": pixA, "MemBlock_2": pixB})

	f := openBytes(t, data)
	blocks := f.Blocks()
	if len(blocks) != 2 {
		t.Fatalf("Blocks() returned %d, want 2", len(blocks))
	}
	if blocks[0].ID != "MemBlock_1" || blocks[1].ID != "MemBlock_2" {
		t.Errorf("block ids = %q, %q", blocks[0].ID, blocks[1].ID)
	}
	for _, b := range blocks {
		if !b.Valid || b.Size != 6 {
			t.Errorf("block %s: valid=%v size=%d", b.ID, b.Valid, b.Size)
		}
	}

	info, err := f.Block("MemBlock_2")
	if err != nil {
		t.Fatalf("Block: %v", err)
	}
	if info.Offset == 0 {
		t.Error("block offset not resolved")
	}
	raw, err := f.BlockData("MemBlock_2")
	if err != nil {
		t.Fatalf("BlockData: %v", err)
	}
	if !bytes.Equal(raw, pixB) {
		t.Errorf("BlockData = %v, want %v", raw, pixB)
	}
	if _, err := f.Block("MemBlock_404"); err == nil {
		t.Error("Block on unknown id succeeded")
	}
}

func TestFindImages(t *testing.T) {
	elemA, pixA := plane2x3("Pos_1", "MemBlock_1")
	elemB, pixB := plane2x3("Pos_2", "MemBlock_2")
	elemC, pixC := plane2x3("Overview", "MemBlock_3")
	data := liftest.LIF(headerXML(2, "P", elemA+elemB+elemC),
		[]string{"MemBlock_1", "MemBlock_2", "MemBlock_3"},
		map[string][]byte{"MemBlock_1": pixA, "MemBlock_2": pixB, "MemBlock_3": pixC})

	f := openBytes(t, data)
	hits, err := f.FindImages(`Pos_\d+$`)
	if err != nil {
		t.Fatalf("FindImages: %v", err)
	}
	if len(hits) != 2 {
		t.Fatalf("FindImages matched %d images, want 2", len(hits))
	}
	if hits[0].Name() != "Pos_1" || hits[1].Name() != "Pos_2" {
		t.Errorf("matches = %s, %s", hits[0].Name(), hits[1].Name())
	}
	if _, err := f.FindImages(`(`); err == nil {
		t.Error("invalid pattern accepted")
	}
}

func TestWalk(t *testing.T) {
	elemA, pixA := plane2x3("A", "MemBlock_1")
	elemB, pixB := plane2x3("B", "MemBlock_2")
	data := liftest.LIF(headerXML(2, "P", elemA+elemB),
		[]string{"MemBlock_1", "MemBlock_2"},
		map[string][]byte{"MemBlock_1": pixA, "MemBlock_2": pixB})

	f := openBytes(t, data)
	var visited []string
	err := f.Walk(func(path string, im *Image) error {
		visited = append(visited, path)
		return nil
	})
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	if !reflect.DeepEqual(visited, []string{"P/A", "P/B"}) {
		t.Errorf("visited = %v", visited)
	}

	visited = nil
	err = f.Walk(func(path string, im *Image) error {
		visited = append(visited, path)
		return ErrStopWalk
	})
	if err != nil {
		t.Fatalf("Walk with stop: %v", err)
	}
	if len(visited) != 1 {
		t.Errorf("stop visited %d images, want 1", len(visited))
	}

	wantErr := errors.New("boom")
	err = f.Walk(func(path string, im *Image) error { return wantErr })
	if !errors.Is(err, wantErr) {
		t.Errorf("Walk error = %v, want boom", err)
	}
}

func TestXMLHeaderAndMetadata(t *testing.T) {
	f := openBytes(t, simpleLIF("Series_A", "MemBlock_5"))
	if f.Metadata() == nil || f.Metadata().Tag != "LMSDataContainerHeader" {
		t.Fatalf("Metadata() root = %+v", f.Metadata())
	}
	header := f.XMLHeader()
	if !bytes.Contains([]byte(header), []byte("Series_A")) {
		t.Errorf("XMLHeader does not mention the series: %q", header)
	}

	doc, err := f.BlockMetadata(0)
	if err != nil {
		t.Fatalf("BlockMetadata(0): %v", err)
	}
	if doc.Tag != "LMSDataContainerHeader" {
		t.Errorf("document 0 root = %q", doc.Tag)
	}
	for _, i := range []int{-1, 1} {
		if _, err := f.BlockMetadata(i); err == nil {
			t.Errorf("BlockMetadata(%d) succeeded, file has 1 document", i)
		}
	}
}

func TestReadImageHelper(t *testing.T) {
	element, pixels := plane2x3("Series_A", "MemBlock_5")
	b := liftest.New()
	b.Metadata(headerXML(2, "Proj", element))
	b.Pixel("MemBlock_5", pixels)
	path := b.WriteTemp(t)

	arr, err := ReadImage(path, "Proj/Series_A")
	if err != nil {
		t.Fatalf("ReadImage by path: %v", err)
	}
	got, _ := arr.Uint8s()
	if !bytes.Equal(got, pixels) {
		t.Errorf("pixels = %v", got)
	}

	if _, err := ReadImage(path, "Series_A"); err != nil {
		t.Errorf("ReadImage by unique name: %v", err)
	}
	if _, err := ReadImage(path, "Nope"); err == nil {
		t.Error("ReadImage on unknown image succeeded")
	}
}
