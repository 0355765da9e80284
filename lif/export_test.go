package lif

import (
	"testing"

	jsoniter "github.com/json-iterator/go"

	"github.com/lifio/lif/internal/liftest"
)

func TestSummaryJSON(t *testing.T) {
	elemA, pixA := plane2x3("Good", "MemBlock_1")
	elemB, _ := plane2x3("Broken", "MemBlock_2")
	data := liftest.LIF(headerXML(2, "Proj", elemA+elemB),
		[]string{"MemBlock_1"}, map[string][]byte{"MemBlock_1": pixA})

	f := openBytes(t, data)
	raw, err := f.SummaryJSON()
	if err != nil {
		t.Fatalf("SummaryJSON: %v", err)
	}

	var got Summary
	if err := jsoniter.Unmarshal(raw, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Name != "Proj" || got.Version != 2 {
		t.Errorf("summary header = %+v", got)
	}
	if len(got.Images) != 2 {
		t.Fatalf("summary lists %d images, want 2", len(got.Images))
	}
	good := got.Images[0]
	if good.Axes != "YX" || good.PixelType != "uint8" || good.Error != "" {
		t.Errorf("good image summary = %+v", good)
	}
	if good.Bytes != 6 || good.Channels != 1 || good.Block != "MemBlock_1" {
		t.Errorf("good image summary = %+v", good)
	}
	broken := got.Images[1]
	if broken.Error == "" {
		t.Error("broken image summary carries no error")
	}
}

func TestMetadataJSON(t *testing.T) {
	f := openBytes(t, simpleLIF("Series_A", "MemBlock_5"))
	raw, err := MetadataJSON(f.Metadata())
	if err != nil {
		t.Fatalf("MetadataJSON: %v", err)
	}

	var got map[string]any
	if err := jsoniter.Unmarshal(raw, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got["tag"] != "LMSDataContainerHeader" {
		t.Errorf("root tag = %v", got["tag"])
	}
	attrs, ok := got["attrs"].(map[string]any)
	if !ok || attrs["Version"] != "2" {
		t.Errorf("root attrs = %#v", got["attrs"])
	}
	if _, ok := got["children"].([]any); !ok {
		t.Errorf("children missing: %#v", got)
	}

	null, err := MetadataJSON(nil)
	if err != nil || string(null) != "null" {
		t.Errorf("MetadataJSON(nil) = %q, %v", null, err)
	}
}
