package app

import (
	"context"
	"fmt"

	"github.com/quantmind-br/gitzip-go/internal/manifest"
)

// BatchItem is the outcome of one batch source
type BatchItem struct {
	Source manifest.Source
	Result *Result
	Err    error
}

// RunBatch downloads every source in order. Without continue_on_error the
// first failure stops the batch and is returned.
func (o *Orchestrator) RunBatch(ctx context.Context, batch *manifest.Config) ([]BatchItem, error) {
	items := make([]BatchItem, 0, len(batch.Sources))
	failed := 0

	for i, src := range batch.Sources {
		if err := ctx.Err(); err != nil {
			return items, err
		}

		var (
			res *Result
			err error
		)
		if src.IsTreeURL() {
			res, err = o.ZipFromTreeURL(ctx, src.Name, src.URL)
		} else {
			res, err = o.Download(ctx, src.URL)
		}
		items = append(items, BatchItem{Source: src, Result: res, Err: err})

		if err != nil {
			failed++
			o.logger.Warn().Err(err).Int("index", i).Str("url", src.URL).Msg("Batch source failed")
			if !batch.Options.ContinueOnError {
				return items, fmt.Errorf("source %d (%s): %w", i, src.URL, err)
			}
		}
	}

	o.logger.Info().
		Int("sources", len(batch.Sources)).
		Int("failed", failed).
		Msg("Batch completed")
	if failed > 0 {
		return items, fmt.Errorf("%d of %d sources failed", failed, len(batch.Sources))
	}
	return items, nil
}
