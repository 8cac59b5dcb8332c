package bot

import (
	"context"
	"fmt"
	"time"

	"log/slog"

	"github.com/sotlfg/lfgbot/bot/listing"
	"github.com/sotlfg/lfgbot/core/bootstrap"
	"github.com/sotlfg/lfgbot/core/logger"
)

const demoUserID = 300240116

// DemoSeeder plants a known approved listing for manual testing. Wired in
// only under the debug profile.
func DemoSeeder() bootstrap.Seeder {
	return bootstrap.SeederFunc(func(ctx context.Context, storage bootstrap.Storage) error {
		store, ok := storage.(*listing.SQLStore)
		if !ok {
			return fmt.Errorf("seed: unexpected storage %T", storage)
		}

		replaced, err := store.DeactivateAllForUser(ctx, demoUserID)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		expires := now.Add(24 * time.Hour)
		demo := &listing.Listing{
			UserID:         demoUserID,
			Nickname:       "TestUser",
			Gender:         "Мужской",
			Age:            25,
			Experience:     100,
			Role:           "Рулевой",
			Faction:        "Торговый союз",
			Server:         "Европа",
			ShipType:       "Галеон",
			Platform:       "PC",
			AdditionalInfo: "Тестовая запись для проверки",
			Contacts:       "@test_user",
			SearchType:     "party",
			SearchGoal:     "PvE",
			ModerationType: listing.ModerationManual,
			Status:         listing.StatusApproved,
			CreatedAt:      now,
			ExpiresAt:      &expires,
			IsActive:       true,
		}
		if err := store.Create(ctx, demo, nil); err != nil {
			return err
		}

		logger.Info(ctx, "seed", "demo.listing",
			slog.String("status", "ok"),
			slog.Int64("listing_id", demo.ID),
			slog.Int64("replaced", replaced),
		)
		return nil
	})
}
