package orchestrator

import (
	"archive/zip"
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slidesdown/converter/internal/infra/httpclient"
	"github.com/slidesdown/converter/internal/infra/limiter"
	"github.com/slidesdown/converter/internal/infra/logger"
	"github.com/slidesdown/converter/internal/service/assembler"
	"github.com/slidesdown/converter/internal/service/fetcher"
	apperrors "github.com/slidesdown/converter/pkg/errors"
)

func pngBytes(t *testing.T, w, h int, shade uint8) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: shade, G: shade, B: shade, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func newTestOrchestrator(opts Options) *Orchestrator {
	log := logger.NewNop()
	client := httpclient.New(httpclient.Options{Timeout: 5 * time.Second})
	fetchSvc := fetcher.New(client, fetcher.Options{Timeout: 2 * time.Second}, log)
	return New(
		fetchSvc,
		assembler.NewPDF(log),
		assembler.NewPPTX(log),
		assembler.NewZIP(log),
		limiter.New(2, 100),
		opts,
		log,
	)
}

func TestConvert_EmptyImages(t *testing.T) {
	orch := newTestOrchestrator(Options{})

	_, err := orch.Convert(context.Background(), &Request{Format: "pdf"})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrCodeInvalidReq))
}

func TestConvert_UnknownFormatRejectedBeforeFetching(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write(pngBytes(t, 4, 4, 10))
	}))
	defer srv.Close()

	orch := newTestOrchestrator(Options{})
	_, err := orch.Convert(context.Background(), &Request{
		Images: []string{srv.URL + "/a.png"},
		Format: "docx",
	})

	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrCodeInvalidReq))
	assert.Zero(t, hits.Load(), "validation failure must not trigger any fetch")
}

func TestConvert_TooManyImages(t *testing.T) {
	orch := newTestOrchestrator(Options{MaxImages: 2})

	_, err := orch.Convert(context.Background(), &Request{
		Images: []string{"https://a/1", "https://a/2", "https://a/3"},
		Format: "zip",
	})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrCodeInvalidReq))
}

func TestConvert_PartialFailureStillProducesDocument(t *testing.T) {
	good := pngBytes(t, 32, 24, 42)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/a.png" {
			w.Write(good)
			return
		}
		http.NotFound(w, r)
	}))
	defer srv.Close()

	orch := newTestOrchestrator(Options{})
	result, err := orch.Convert(context.Background(), &Request{
		RequestID: "test",
		Images:    []string{srv.URL + "/a.png", srv.URL + "/bad-url"},
		Title:     "Demo",
		Format:    "pdf",
	})
	require.NoError(t, err)

	assert.Equal(t, 1, result.FailedImages)
	assert.Equal(t, "application/pdf", result.Document.ContentType)
	assert.Equal(t, "Demo.pdf", result.Document.Filename)

	pages, err := api.PageCount(bytes.NewReader(result.Document.Bytes), nil)
	require.NoError(t, err)
	assert.Equal(t, 1, pages, "only the fetchable image becomes a page")
}

func TestConvert_AllFetchesFail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	orch := newTestOrchestrator(Options{})
	_, err := orch.Convert(context.Background(), &Request{
		Images: []string{srv.URL + "/x", srv.URL + "/y"},
		Format: "zip",
	})

	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrCodeNoImages))
}

func TestConvert_OutputOrderMatchesInputOrder(t *testing.T) {
	// The slow first image finishes after the fast second one; entries must
	// still come out in request order.
	slow := pngBytes(t, 8, 8, 1)
	fast := pngBytes(t, 8, 8, 2)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/slow.png":
			time.Sleep(150 * time.Millisecond)
			w.Write(slow)
		case "/fast.png":
			w.Write(fast)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	orch := newTestOrchestrator(Options{FetchWorkers: 4})
	result, err := orch.Convert(context.Background(), &Request{
		Images: []string{srv.URL + "/slow.png", srv.URL + "/fast.png"},
		Title:  "ordered",
		Format: "zip",
	})
	require.NoError(t, err)

	zr, err := zip.NewReader(bytes.NewReader(result.Document.Bytes), int64(len(result.Document.Bytes)))
	require.NoError(t, err)
	require.Len(t, zr.File, 2)

	entry1, err := zr.File[0].Open()
	require.NoError(t, err)
	data1, err := io.ReadAll(entry1)
	require.NoError(t, err)
	entry1.Close()

	assert.Equal(t, "slide_001.png", zr.File[0].Name)
	assert.Equal(t, slow, data1, "first entry must hold the first requested image")
}

func TestConvert_Idempotent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(pngBytes(t, 16, 16, 9))
	}))
	defer srv.Close()

	orch := newTestOrchestrator(Options{})
	req := &Request{
		Images: []string{srv.URL + "/a.png", srv.URL + "/b.png"},
		Title:  "twice",
		Format: "zip",
	}

	first, err := orch.Convert(context.Background(), req)
	require.NoError(t, err)
	second, err := orch.Convert(context.Background(), req)
	require.NoError(t, err)

	names := func(data []byte) []string {
		zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
		require.NoError(t, err)
		var out []string
		for _, f := range zr.File {
			out = append(out, f.Name)
		}
		return out
	}

	assert.Equal(t, names(first.Document.Bytes), names(second.Document.Bytes))
	assert.Equal(t, first.FailedImages, second.FailedImages)
}
