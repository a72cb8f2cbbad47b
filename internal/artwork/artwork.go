// Package artwork renders album covers in the terminal for the round reveal.
//
// Covers are downloaded, scaled down with Catmull-Rom and drawn with upper
// half-block characters, two pixel rows per text line: the top pixel is the
// foreground color and the bottom pixel the background color.
//
//	r := artwork.NewRenderer(httpClient)
//	art, err := r.Fetch(ctx, track.ArtworkURL, 24)
//	fmt.Println(art) // 24 columns, 12 lines
package artwork

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg" // JPEG decoder registration
	_ "image/png"  // PNG decoder registration
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/image/draw"

	ihttp "github.com/handiism/tunetracer/internal/http"
)

// ErrNoArtwork is returned for tracks without an artwork URL.
var ErrNoArtwork = errors.New("no artwork")

const halfBlock = "▀"

// Renderer downloads and renders covers, caching the rendered text by URL
// and width.
type Renderer struct {
	client *ihttp.Client

	mu    sync.Mutex
	cache map[string]string
}

// NewRenderer creates a Renderer.
func NewRenderer(client *ihttp.Client) *Renderer {
	return &Renderer{client: client, cache: make(map[string]string)}
}

// Fetch downloads the image at url and renders it width columns wide.
func (r *Renderer) Fetch(ctx context.Context, url string, width int) (string, error) {
	if url == "" {
		return "", ErrNoArtwork
	}

	key := fmt.Sprintf("%d:%s", width, url)
	r.mu.Lock()
	cached, ok := r.cache[key]
	r.mu.Unlock()
	if ok {
		return cached, nil
	}

	data, err := r.client.DownloadBytes(ctx, url)
	if err != nil {
		return "", fmt.Errorf("download artwork: %w", err)
	}

	img, err := Decode(data)
	if err != nil {
		return "", err
	}

	art := Render(img, width)
	r.mu.Lock()
	r.cache[key] = art
	r.mu.Unlock()

	return art, nil
}

// Decode decodes JPEG or PNG image data.
func Decode(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode artwork: %w", err)
	}
	return img, nil
}

// Scale resizes img to width columns, keeping the aspect ratio. The height in
// pixels is rounded up to an even number so every line has two pixel rows.
func Scale(img image.Image, width int) *image.RGBA {
	bounds := img.Bounds()
	if width <= 0 || bounds.Dx() == 0 || bounds.Dy() == 0 {
		return image.NewRGBA(image.Rect(0, 0, 0, 0))
	}

	height := width * bounds.Dy() / bounds.Dx()
	if height < 2 {
		height = 2
	}
	if height%2 == 1 {
		height++
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst
}

// Render draws img as width columns of half blocks.
func Render(img image.Image, width int) string {
	scaled := Scale(img, width)
	bounds := scaled.Bounds()

	var sb strings.Builder
	for y := bounds.Min.Y; y < bounds.Max.Y; y += 2 {
		if y > bounds.Min.Y {
			sb.WriteByte('\n')
		}
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			style := lipgloss.NewStyle().
				Foreground(hexColor(scaled, x, y)).
				Background(hexColor(scaled, x, y+1))
			sb.WriteString(style.Render(halfBlock))
		}
	}
	return sb.String()
}

func hexColor(img *image.RGBA, x, y int) lipgloss.Color {
	c := img.RGBAAt(x, y)
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B))
}
