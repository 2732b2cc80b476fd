package tesseract

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os/exec"
	"strings"
	"testing"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/nevindra/papyrus"
)

// ensureTesseractAvailable checks that the tesseract binary is reachable.
func ensureTesseractAvailable(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("tesseract"); err != nil {
		t.Skip("tesseract not installed in PATH")
	}
}

// renderText draws target onto a white canvas and encodes it as PNG.
func renderText(t *testing.T, target string) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 240, 80))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)

	d := &font.Drawer{
		Dst:  img,
		Src:  image.Black,
		Face: basicfont.Face7x13,
		Dot:  fixed.P(10, 50),
	}
	d.DrawString(target)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func TestEngineRecognize(t *testing.T) {
	ensureTesseractAvailable(t)

	e := New(WithLanguages("eng"))
	got, err := e.Recognize(context.Background(), papyrus.RecognizeRequest{
		Image: renderText(t, "Hello Papyrus"),
	})
	if err != nil {
		t.Fatalf("Recognize: %v", err)
	}
	lower := strings.ToLower(got)
	if !strings.Contains(lower, "hello") || !strings.Contains(lower, "papyrus") {
		t.Fatalf("unexpected OCR output: %q", got)
	}
}

func TestEngineRecognizeBadImage(t *testing.T) {
	ensureTesseractAvailable(t)

	e := New()
	_, err := e.Recognize(context.Background(), papyrus.RecognizeRequest{
		Image: []byte("definitely not an image"),
	})
	if err == nil {
		t.Fatal("expected an error for malformed image bytes")
	}
	var perr *papyrus.Error
	if !errors.As(err, &perr) || perr.Kind != papyrus.KindUnknown {
		t.Fatalf("err = %v, want KindUnknown", err)
	}
}

func TestEngineContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	e := New()
	if _, err := e.Recognize(ctx, papyrus.RecognizeRequest{Image: []byte("x")}); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}
