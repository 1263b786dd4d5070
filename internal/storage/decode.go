package storage

import (
	"fmt"
	"time"

	"github.com/mitchellh/mapstructure"

	"github.com/Debarshi-Chaudhuri/news-api/internal/domain"
)

// decodeInto overlays src onto dst. Slices in src replace those in dst
// rather than being merged element by element. Date strings are parsed as
// RFC 3339.
func decodeInto(src map[string]any, dst *domain.Article) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeHookFunc(time.RFC3339Nano),
		),
		ZeroFields: true,
		Result:     dst,
	})
	if err != nil {
		return fmt.Errorf("create decoder: %w", err)
	}
	if err = decoder.Decode(src); err != nil {
		return fmt.Errorf("decode article: %w", err)
	}
	return nil
}

func decodeSource(id string, src map[string]any) (*domain.Article, error) {
	var a domain.Article
	if err := decodeInto(src, &a); err != nil {
		return nil, err
	}
	a.ID = id
	return &a, nil
}
