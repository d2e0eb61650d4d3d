package render

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngOf(t *testing.T, width, height int) []byte {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, width, height))))
	return buf.Bytes()
}

func setupImageServer(t *testing.T) *httptest.Server {
	tall := pngOf(t, 40, 100)
	wide := pngOf(t, 100, 40)
	square := pngOf(t, 50, 50)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		switch r.URL.Path {
		case "/tall.png":
			_, _ = w.Write(tall)
		case "/wide.png":
			_, _ = w.Write(wide)
		case "/square.png":
			_, _ = w.Write(square)
		case "/broken.png":
			_, _ = w.Write([]byte("not an image"))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func TestClassFor(t *testing.T) {
	assert.Equal(t, TallClass, ClassFor(40, 100))
	assert.Equal(t, TallClass, ClassFor(89, 100))
	assert.Equal(t, "", ClassFor(90, 100))
	assert.Equal(t, "", ClassFor(100, 40))
	assert.Equal(t, "", ClassFor(0, 0))
}

func TestAspectClassifier_Classify(t *testing.T) {
	server := setupImageServer(t)
	classifier := NewAspectClassifier(server.Client(), 1)
	ctx := context.Background()

	class, err := classifier.Classify(ctx, server.URL+"/tall.png")
	require.NoError(t, err)
	assert.Equal(t, TallClass, class)

	class, err = classifier.Classify(ctx, server.URL+"/wide.png")
	require.NoError(t, err)
	assert.Equal(t, "", class)

	class, err = classifier.Classify(ctx, server.URL+"/square.png")
	require.NoError(t, err)
	assert.Equal(t, "", class)

	_, err = classifier.Classify(ctx, server.URL+"/broken.png")
	assert.Error(t, err)

	_, err = classifier.Classify(ctx, server.URL+"/missing.png")
	assert.Error(t, err)
}

func TestAspectClassifier_ClassIsDeferred(t *testing.T) {
	// given
	server := setupImageServer(t)
	classifier := NewAspectClassifier(server.Client(), 2)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(func() {
		cancel()
		classifier.Wait()
	})
	url := server.URL + "/tall.png"

	// when the first render asks, nothing is known yet
	first := classifier.Class(url)

	// then
	assert.Equal(t, "", first)

	// and once the workers run the class shows up on later renders
	classifier.Start(ctx)
	assert.Eventually(t, func() bool {
		return classifier.Class(url) == TallClass
	}, 2*time.Second, 10*time.Millisecond)
}

func TestAspectClassifier_EmptyURL(t *testing.T) {
	classifier := NewAspectClassifier(nil, 1)

	assert.Equal(t, "", classifier.Class(""))
}
