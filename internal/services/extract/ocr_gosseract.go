package extract

import (
	"context"
	"fmt"
	"sync"

	"github.com/otiai10/gosseract/v2"
	"github.com/ternarybob/responsum/internal/interfaces"
	"github.com/ternarybob/responsum/internal/models"
)

// GosseractClient recognizes text with a Tesseract engine via gosseract.
// The underlying client is not safe for concurrent use, so calls are
// serialized.
type GosseractClient struct {
	mu     sync.Mutex
	client *gosseract.Client
}

var _ interfaces.OCRClient = (*GosseractClient)(nil)

func NewGosseractClient() *GosseractClient {
	return &GosseractClient{client: gosseract.NewClient()}
}

func (c *GosseractClient) Recognize(ctx context.Context, image []byte) ([]models.OCRBlock, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := c.client.SetImageFromBytes(image); err != nil {
		return nil, fmt.Errorf("failed to load image: %w", err)
	}

	boxes, err := c.client.GetBoundingBoxes(gosseract.RIL_BLOCK)
	if err != nil {
		return nil, fmt.Errorf("failed to recognize text: %w", err)
	}

	blocks := make([]models.OCRBlock, 0, len(boxes))
	for _, box := range boxes {
		blocks = append(blocks, models.OCRBlock{
			Text:       box.Word,
			Confidence: box.Confidence / 100.0,
		})
	}
	return blocks, nil
}

func (c *GosseractClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.client.Close()
}
