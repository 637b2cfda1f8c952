package sqlite

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/playforge/arcade-api/internal/domain/settings"
	qb "github.com/playforge/arcade-api/internal/platform/querybuilder"
)

// Both settings tables hold exactly one row with id = 1, seeded by the
// initial migration, so reads never miss and writes are plain updates.
const settingsRowID = 1

type SettingsRepository struct {
	store *Store
}

func NewSettingsRepository(store *Store) *SettingsRepository {
	return &SettingsRepository{store: store}
}

type howToPlayLinkModel struct {
	ID  int64  `db:"id"`
	URL string `db:"url"`
}

type promoBannerModel struct {
	ID       int64  `db:"id"`
	ImageSrc string `db:"image_src"`
	LinkURL  string `db:"link_url"`
}

func (r *SettingsRepository) GetHowToPlayLink(ctx context.Context) (settings.HowToPlayLink, error) {
	query, args, err := qb.Select("*").From("how_to_play_link").
		Where(qb.Eq("id", settingsRowID)).
		ToSQL()
	if err != nil {
		return settings.HowToPlayLink{}, fmt.Errorf("build get how-to-play link query: %w", err)
	}

	var row howToPlayLinkModel
	if err := sqlx.GetContext(ctx, r.store.ext(ctx), &row, query, args...); err != nil {
		return settings.HowToPlayLink{}, fmt.Errorf("get how-to-play link: %w", err)
	}
	return settings.HowToPlayLink{URL: row.URL}, nil
}

func (r *SettingsRepository) SetHowToPlayLink(ctx context.Context, link settings.HowToPlayLink) error {
	query, args, err := qb.Update("how_to_play_link").
		Set("url", link.URL).
		Where(qb.Eq("id", settingsRowID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build set how-to-play link query: %w", err)
	}
	if _, err := r.store.ext(ctx).ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("set how-to-play link: %w", err)
	}
	return nil
}

func (r *SettingsRepository) GetPromoBanner(ctx context.Context) (settings.PromoBanner, error) {
	query, args, err := qb.Select("*").From("promo_banner").
		Where(qb.Eq("id", settingsRowID)).
		ToSQL()
	if err != nil {
		return settings.PromoBanner{}, fmt.Errorf("build get promo banner query: %w", err)
	}

	var row promoBannerModel
	if err := sqlx.GetContext(ctx, r.store.ext(ctx), &row, query, args...); err != nil {
		return settings.PromoBanner{}, fmt.Errorf("get promo banner: %w", err)
	}
	return settings.PromoBanner{ImageSrc: row.ImageSrc, LinkURL: row.LinkURL}, nil
}

func (r *SettingsRepository) SetPromoBanner(ctx context.Context, banner settings.PromoBanner) error {
	query, args, err := qb.Update("promo_banner").
		Set("image_src", banner.ImageSrc).
		Set("link_url", banner.LinkURL).
		Where(qb.Eq("id", settingsRowID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build set promo banner query: %w", err)
	}
	if _, err := r.store.ext(ctx).ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("set promo banner: %w", err)
	}
	return nil
}
