package main

import (
	"fmt"
	"os"

	"advisor-chat-be/internal/config"
	"advisor-chat-be/internal/model"
	"advisor-chat-be/pkg/database"

	"github.com/fatih/color"
)

func main() {
	cfg := config.Load()

	info := color.New(color.FgCyan).PrintfFunc()
	ok := color.New(color.FgGreen, color.Bold).PrintfFunc()
	fail := color.New(color.FgRed, color.Bold).PrintfFunc()

	info("Connecting to %s database...\n", cfg.Database.Driver)
	db, err := database.NewGormDB(database.GormConfig{
		Driver: cfg.Database.Driver,
		DSN:    cfg.Database.Connection,
	})
	if err != nil {
		fail("Error: Failed to connect to database: %v\n", err)
		os.Exit(1)
	}

	models := model.All()
	info("Running AutoMigrate for %d tables...\n", len(models))
	for _, m := range models {
		name := fmt.Sprintf("%T", m)
		if err := db.AutoMigrate(m); err != nil {
			fail("  ✗ %s: %v\n", name, err)
			os.Exit(1)
		}
		ok("  ✓ %s\n", name)
	}

	ok("✅ Success: Database migration completed successfully via GORM.\n")
}
