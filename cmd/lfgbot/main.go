package main

import (
	"log"

	"github.com/joho/godotenv"

	"github.com/sotlfg/lfgbot/bot"
	corecmd "github.com/sotlfg/lfgbot/core/cmd"
)

func main() {
	// Local runs keep secrets in .env; in production the file is absent.
	if err := godotenv.Load(); err == nil {
		log.Printf("loaded environment from .env")
	}

	err := corecmd.Run(corecmd.Options{
		ConfigEnvVar:      "CONFIG_PATH",
		DefaultConfigPath: "config.yaml",
		LoadConfig: func(path string) (corecmd.ConfigCarrier, error) {
			return bot.LoadConfig(path)
		},
		Bootstrap: func(cfg corecmd.ConfigCarrier) (corecmd.TelegramApp, error) {
			return bot.NewApp(cfg.(*bot.Config))
		},
	})
	if err != nil {
		log.Fatalf("lfgbot: %v", err)
	}
}
