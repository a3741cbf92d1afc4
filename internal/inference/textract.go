package inference

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/textract"
	"github.com/aws/aws-sdk-go-v2/service/textract/types"

	"github.com/docproc-labs/docproc/internal/config"
)

// TextractClient wraps AWS Textract's synchronous text detection.
type TextractClient struct {
	tx *textract.Client
}

func NewTextractClient(cfg config.TextractConfig) (*TextractClient, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(cfg.Region),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return &TextractClient{tx: textract.NewFromConfig(awsCfg)}, nil
}

// ExtractLines runs DetectDocumentText over the raw bytes and returns the
// LINE blocks in the order Textract emits them.
func (c *TextractClient) ExtractLines(ctx context.Context, raw []byte) ([]Line, error) {
	out, err := c.tx.DetectDocumentText(ctx, &textract.DetectDocumentTextInput{
		Document: &types.Document{Bytes: raw},
	})
	if err != nil {
		return nil, fmt.Errorf("detect document text: %w", err)
	}

	var lines []Line
	for _, block := range out.Blocks {
		if block.BlockType != types.BlockTypeLine {
			continue
		}
		line := Line{}
		if block.Text != nil {
			line.Text = *block.Text
		}
		if block.Confidence != nil {
			conf := float64(*block.Confidence)
			line.Confidence = &conf
		}
		lines = append(lines, line)
	}
	return lines, nil
}
