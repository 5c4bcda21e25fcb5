// Package tesseract adapts gosseract to the ocr.Engine interface.
package tesseract

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"sync"

	"github.com/otiai10/gosseract"

	"uma-bot/internal/ocr"
)

// Client is a Tesseract engine. One underlying client is reused for every
// call; calls are serialized.
type Client struct {
	client *gosseract.Client
	mu     sync.Mutex
}

// New creates a client for language (empty means "eng"). Custom models are
// picked up through TESSDATA_PREFIX.
func New(language string) (*Client, error) {
	c := gosseract.NewClient()
	if language == "" {
		language = "eng"
	}
	if err := c.SetLanguage(language); err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to set OCR language: %w", err)
	}
	return &Client{client: c}, nil
}

// Close releases the Tesseract handle.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.client.Close()
}

// Recognize implements ocr.Engine.
func (c *Client) Recognize(img image.Image, opts ocr.Options) (ocr.Result, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return ocr.Result{}, fmt.Errorf("failed to encode OCR image: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	mode := gosseract.PSM_AUTO
	switch opts.Mode {
	case ocr.ModeSingleBlock:
		mode = gosseract.PSM_SINGLE_BLOCK
	case ocr.ModeSingleLine:
		mode = gosseract.PSM_SINGLE_LINE
	case ocr.ModeSingleWord:
		mode = gosseract.PSM_SINGLE_WORD
	}
	if err := c.client.SetPageSegMode(mode); err != nil {
		return ocr.Result{}, fmt.Errorf("failed to set page mode: %w", err)
	}
	if err := c.client.SetWhitelist(opts.Whitelist); err != nil {
		return ocr.Result{}, fmt.Errorf("failed to set whitelist: %w", err)
	}
	if err := c.client.SetImageFromBytes(buf.Bytes()); err != nil {
		return ocr.Result{}, fmt.Errorf("failed to set OCR image: %w", err)
	}

	text, err := c.client.Text()
	if err != nil {
		return ocr.Result{}, fmt.Errorf("failed to recognize text: %w", err)
	}

	res := ocr.Result{Text: text}
	boxes, err := c.client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return res, nil
	}
	for _, b := range boxes {
		res.Words = append(res.Words, ocr.Word{Text: b.Word, Confidence: b.Confidence})
	}
	return res, nil
}
