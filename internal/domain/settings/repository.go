package settings

import "context"

type Repository interface {
	GetHowToPlayLink(ctx context.Context) (HowToPlayLink, error)
	SetHowToPlayLink(ctx context.Context, link HowToPlayLink) error
	GetPromoBanner(ctx context.Context) (PromoBanner, error)
	SetPromoBanner(ctx context.Context, banner PromoBanner) error
}
