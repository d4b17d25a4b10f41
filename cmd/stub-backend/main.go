package main

import (
	"log"

	"github.com/Sokolov69/SokolovDiplom-sub000/internal/config"
	"github.com/Sokolov69/SokolovDiplom-sub000/internal/stubs"
)

func main() {
	// Загружаем конфигурацию
	cfg := config.LoadConfig()

	// Собираем стаб-бэкенд с тестовыми данными
	app, _ := stubs.NewServer(cfg)

	// Запускаем сервер
	log.Printf("✅ Стаб-бэкенд запущен на порту %s", cfg.StubConfig.Port)
	log.Fatal(app.Listen(":" + cfg.StubConfig.Port))
}
