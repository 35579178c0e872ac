package media

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"testing"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return buf.Bytes()
}

func TestScaleProcessorKeepsSmallImages(t *testing.T) {
	data := encodePNG(t, 40, 20)
	p := NewScaleProcessor(100)

	res, err := p.Process(context.Background(), Upload{Reader: bytes.NewReader(data), ContentType: "image/png"}, 0)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if res.Resized {
		t.Fatalf("expected image to be left as is")
	}
	if !bytes.Equal(res.Bytes, data) {
		t.Fatalf("expected original bytes")
	}
}

func TestScaleProcessorDownscales(t *testing.T) {
	data := encodePNG(t, 200, 100)
	p := NewScaleProcessor(0)

	res, err := p.Process(context.Background(), Upload{Reader: bytes.NewReader(data), FileName: "city.png"}, 50)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if !res.Resized || res.ContentType != "image/png" {
		t.Fatalf("unexpected result: resized=%v type=%s", res.Resized, res.ContentType)
	}
	cfg, err := png.DecodeConfig(bytes.NewReader(res.Bytes))
	if err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if cfg.Width != 50 || cfg.Height != 25 {
		t.Fatalf("expected 50x25, got %dx%d", cfg.Width, cfg.Height)
	}
}

func TestScaleProcessorRejectsGarbage(t *testing.T) {
	p := NewScaleProcessor(10)
	if _, err := p.Process(context.Background(), Upload{Reader: bytes.NewReader([]byte("not an image"))}, 0); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestNormalizeContentType(t *testing.T) {
	cases := []struct {
		contentType string
		fileName    string
		want        string
	}{
		{"image/jpg", "", "image/jpeg"},
		{"image/PNG; charset=binary", "", "image/png"},
		{"", "photo.WEBP", "image/webp"},
		{"application/octet-stream", "x.jpeg", "image/jpeg"},
	}
	for _, tc := range cases {
		if got := NormalizeContentType(tc.contentType, tc.fileName); got != tc.want {
			t.Fatalf("NormalizeContentType(%q, %q) = %q, want %q", tc.contentType, tc.fileName, got, tc.want)
		}
	}
}
