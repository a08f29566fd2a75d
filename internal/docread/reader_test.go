package docread

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ncrp-tools/complaints-tracker/constants"
	"github.com/ncrp-tools/complaints-tracker/internal/common"
)

type fakeRunner struct {
	stdout []byte
	err    error

	gotName string
	gotArgs []string
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) ([]byte, []byte, error) {
	f.gotName = name
	f.gotArgs = args
	return f.stdout, nil, f.err
}

func writeTestPNG(t *testing.T, dir string) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			if x < 4 {
				img.Set(x, y, color.White)
			} else {
				img.Set(x, y, color.Black)
			}
		}
	}
	path := filepath.Join(dir, "scan.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	require.NoError(t, png.Encode(f, img))
	return path
}

func TestReadImageRunsTesseract(t *testing.T) {
	path := writeTestPNG(t, t.TempDir())

	fr := &fakeRunner{stdout: []byte("Acknowledgement  Number: 123\n\n")}
	r := NewReader(Config{Tesseract: "tesseract"}, nil)
	r.runner = fr

	res, err := r.Read(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, constants.IMAGE, res.Source)
	assert.Equal(t, "Acknowledgement Number: 123", res.Text)
	assert.Equal(t, "tesseract", fr.gotName)
	assert.Contains(t, fr.gotArgs, "--psm")
	assert.Contains(t, fr.gotArgs, "6")
	assert.Contains(t, fr.gotArgs, "eng")
}

func TestReadImageUndecodable(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "broken.jpg")
	require.NoError(t, os.WriteFile(path, []byte("not an image"), 0o644))

	r := NewReader(Config{}, nil)
	r.runner = &fakeRunner{}

	_, err := r.Read(context.Background(), path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrUnreadableInput))
}

func TestReadUnsupportedExtension(t *testing.T) {
	r := NewReader(Config{}, nil)
	r.runner = &fakeRunner{}

	_, err := r.Read(context.Background(), "notes.txt")
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrUnreadableInput))
}

func TestBinarize(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	img.Set(0, 0, color.NRGBA{R: 200, G: 200, B: 200, A: 255}) // light -> white
	img.Set(1, 0, color.NRGBA{R: 40, G: 40, B: 40, A: 255})    // dark -> black

	out := binarize(img, 150)
	assert.Equal(t, uint8(255), out.GrayAt(0, 0).Y)
	assert.Equal(t, uint8(0), out.GrayAt(1, 0).Y)
}

func TestExecRunnerLogsThroughInjectedLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	r := execRunner{logger: logger}
	_, _, err := r.Run(context.Background(), "no-such-binary-f81a2c")
	require.Error(t, err)
	assert.Contains(t, buf.String(), "exec failed")
	assert.Contains(t, buf.String(), "no-such-binary-f81a2c")
}
