package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/shashiranjanraj/deviceexpress/app/models"
	"github.com/shashiranjanraj/deviceexpress/app/repositories"
	"github.com/shashiranjanraj/deviceexpress/config"
	"github.com/shashiranjanraj/deviceexpress/pkg/database"
)

// bootDB loads config and opens the store connection.
func bootDB(ctx context.Context) (*database.Store, error) {
	if err := config.Load(); err != nil {
		return nil, err
	}
	return database.Connect(ctx)
}

// deviceexpress db:indexes
var dbIndexesCmd = &cobra.Command{
	Use:   "db:indexes",
	Short: "Create the collection indexes",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		store, err := bootDB(ctx)
		if err != nil {
			return err
		}
		defer store.Disconnect(context.Background()) //nolint:errcheck

		if err := store.EnsureIndexes(ctx); err != nil {
			return err
		}
		fmt.Println("Indexes created.")
		return nil
	},
}

// deviceexpress db:seed — default categories plus the bootstrap admin.
var dbSeedCmd = &cobra.Command{
	Use:   "db:seed",
	Short: "Seed the default categories and the bootstrap admin user",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		store, err := bootDB(ctx)
		if err != nil {
			return err
		}
		defer store.Disconnect(context.Background()) //nolint:errcheck

		for _, name := range []string{"Apple", "Samsung", "Google Pixel", "Laptops", "Accessories"} {
			res, err := store.Categories.UpdateOne(ctx,
				bson.M{"name": name},
				bson.M{"$setOnInsert": bson.M{"name": name}},
				options.Update().SetUpsert(true),
			)
			if err != nil {
				return fmt.Errorf("seed category %s: %w", name, err)
			}
			if res.UpsertedCount > 0 {
				fmt.Printf("Seeded category %q\n", name)
			}
		}

		adminEmail := config.Get("ADMIN_EMAIL", "admin@deviceexpress.app")
		users := repositories.NewUserRepository(store)
		if _, err := users.FindByEmail(ctx, adminEmail); err == nil {
			fmt.Println("Admin user already present.")
			return nil
		}

		admin := models.User{
			Name:     "Administrator",
			Email:    adminEmail,
			Role:     models.RoleAdmin,
			Verified: true,
		}
		if err := users.Create(ctx, &admin); err != nil {
			return fmt.Errorf("seed admin: %w", err)
		}
		fmt.Printf("Seeded admin user %s\n", adminEmail)
		return nil
	},
}
