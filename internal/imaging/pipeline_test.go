package imaging

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/SRAS2024/About-Me/internal/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, h/2, color.NRGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

type fakeCompressor struct {
	out    []byte
	err    error
	called bool
}

func (f *fakeCompressor) Compress(ctx context.Context, data []byte) ([]byte, error) {
	f.called = true
	return f.out, f.err
}

func TestProcess_ResizesLandscape(t *testing.T) {
	p := NewPipeline(nil, nil)

	res, err := p.Process(context.Background(), encodePNG(t, 2400, 1200))
	require.NoError(t, err)
	assert.Equal(t, 1200, res.Width)
	assert.Equal(t, 600, res.Height)
	assert.Equal(t, "image/jpeg", res.MimeType)

	cfg, err := jpeg.DecodeConfig(bytes.NewReader(res.Bytes))
	require.NoError(t, err)
	assert.Equal(t, 1200, cfg.Width)
	assert.Equal(t, 600, cfg.Height)
}

func TestProcess_KeepsSmallImageSize(t *testing.T) {
	p := NewPipeline(nil, nil)

	res, err := p.Process(context.Background(), encodePNG(t, 300, 400))
	require.NoError(t, err)
	assert.Equal(t, 300, res.Width)
	assert.Equal(t, 400, res.Height)
}

func TestProcess_ValidationErrors(t *testing.T) {
	p := NewPipeline(nil, nil)
	p.MaxBytes = 64

	_, err := p.Process(context.Background(), nil)
	assert.True(t, apperror.Is(err, apperror.CodeEmptyField))

	_, err = p.Process(context.Background(), []byte("just some text, not an image"))
	assert.True(t, apperror.Is(err, apperror.CodeUnsupportedFormat))

	_, err = p.Process(context.Background(), bytes.Repeat([]byte{0xFF}, 65))
	assert.True(t, apperror.Is(err, apperror.CodeTooLarge))
}

// pngHeader returns a PNG holding only the signature and an IHDR chunk
// declaring a w×h RGBA image.
func pngHeader(w, h uint32) []byte {
	ihdr := make([]byte, 13)
	binary.BigEndian.PutUint32(ihdr[0:4], w)
	binary.BigEndian.PutUint32(ihdr[4:8], h)
	ihdr[8] = 8 // bit depth
	ihdr[9] = 6 // RGBA

	var buf bytes.Buffer
	buf.WriteString("\x89PNG\r\n\x1a\n")
	_ = binary.Write(&buf, binary.BigEndian, uint32(len(ihdr)))
	chunk := append([]byte("IHDR"), ihdr...)
	buf.Write(chunk)
	_ = binary.Write(&buf, binary.BigEndian, crc32.ChecksumIEEE(chunk))
	return buf.Bytes()
}

func TestProcess_RejectsHugeDimensions(t *testing.T) {
	p := NewPipeline(nil, nil)
	raw := pngHeader(12000, 12000)
	require.Less(t, len(raw), 100)

	_, err := p.Process(context.Background(), raw)
	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.CodeTooLarge))
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
}

func TestProcess_MaxPixelsConfigurable(t *testing.T) {
	p := NewPipeline(nil, nil)
	p.MaxPixels = 400

	_, err := p.Process(context.Background(), encodePNG(t, 21, 20))
	assert.True(t, apperror.Is(err, apperror.CodeTooLarge))

	res, err := p.Process(context.Background(), encodePNG(t, 20, 20))
	require.NoError(t, err)
	assert.Equal(t, 20, res.Width)
}

func TestProcess_CorruptImage(t *testing.T) {
	p := NewPipeline(nil, nil)
	corrupt := append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0x01}, 32)...)

	_, err := p.Process(context.Background(), corrupt)
	require.Error(t, err)
	assert.Equal(t, apperror.KindProcessing, apperror.KindOf(err))
}

func TestProcess_CompressionFailureIsSwallowed(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	compressor := &fakeCompressor{err: errors.New("tinify: 503")}
	p := NewPipeline(compressor, zap.New(core))

	res, err := p.Process(context.Background(), encodePNG(t, 1600, 1600))
	require.NoError(t, err)
	assert.True(t, compressor.called)
	assert.Equal(t, 1200, res.Width)
	assert.NotEmpty(t, res.Bytes)
	assert.Equal(t, 1, logs.FilterMessage("image compression failed, keeping resized image").Len())
}

func TestProcess_CompressionSuccess(t *testing.T) {
	compressor := &fakeCompressor{out: []byte("smaller")}
	p := NewPipeline(compressor, zap.NewNop())

	res, err := p.Process(context.Background(), encodePNG(t, 10, 10))
	require.NoError(t, err)
	assert.Equal(t, []byte("smaller"), res.Bytes)
	assert.Equal(t, 10, res.Width)
}

func TestFitWithin(t *testing.T) {
	tests := []struct {
		w, h, max, wantW, wantH int
	}{
		{2400, 1200, 1200, 1200, 600},
		{1200, 2400, 1200, 600, 1200},
		{800, 600, 1200, 800, 600},
		{5000, 1, 1200, 1200, 1},
		{100, 100, 0, 100, 100},
	}
	for _, tt := range tests {
		w, h := fitWithin(tt.w, tt.h, tt.max)
		assert.Equal(t, tt.wantW, w)
		assert.Equal(t, tt.wantH, h)
	}
}

func TestTinifyCompressor(t *testing.T) {
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || user != "api" || pass != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		switch r.Method {
		case http.MethodPost:
			w.Header().Set("Location", srv.URL+"/output/abc")
			w.WriteHeader(http.StatusCreated)
		case http.MethodGet:
			_, _ = w.Write([]byte("compressed"))
		}
	}))
	defer srv.Close()

	c := NewTinifyCompressor("secret")
	c.Endpoint = srv.URL + "/shrink"
	out, err := c.Compress(context.Background(), []byte("raw"))
	require.NoError(t, err)
	assert.Equal(t, []byte("compressed"), out)

	bad := NewTinifyCompressor("wrong")
	bad.Endpoint = srv.URL + "/shrink"
	_, err = bad.Compress(context.Background(), []byte("raw"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "shrink status 401")

	assert.Nil(t, NewTinifyCompressor(""))
}
