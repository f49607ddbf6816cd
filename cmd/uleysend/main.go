// uleysend broadcasts one message, with optional file attachments, to every
// registered recipient. The desktop application shells out to it after the
// end-of-day report is ready.
//
//	uleysend -text "Отчет во вложении" -file report.xlsx -file summary.pdf
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"uley/internal/config"
	"uley/internal/sender"
	"uley/internal/storage/sqlite"
)

type fileList []string

func (f *fileList) String() string { return "" }

func (f *fileList) Set(value string) error {
	*f = append(*f, value)
	return nil
}

func main() {
	var files fileList
	text := flag.String("text", "", "message text (HTML)")
	flag.Var(&files, "file", "file to attach, repeatable")
	flag.Parse()

	if *text == "" {
		log.Fatal("Usage: uleysend -text <message> [-file <path>]...")
	}

	_ = godotenv.Load()

	cfg, err := config.LoadFromEnv()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	api, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
	if err != nil {
		log.Fatalf("Failed to create bot API: %v", err)
	}

	db, err := sqlite.Open(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	recipients, err := db.Recipients(ctx)
	if err != nil {
		log.Fatalf("Failed to load recipients: %v", err)
	}

	result := sender.New(api, cfg.DefaultChatID, logger).Broadcast(*text, recipients, files)
	log.Println(result.Message)
	if !result.Success {
		os.Exit(1)
	}
}
