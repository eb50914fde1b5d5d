package player

import "context"

type Repository interface {
	// ListPositionTexts returns the distinct non-empty position texts.
	ListPositionTexts(ctx context.Context) ([]string, error)
}
