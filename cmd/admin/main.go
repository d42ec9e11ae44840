// The admin console works the file-backed store from a terminal: the same
// list, detail, item-edit and summary flow as the HTTP panel.
package main

import (
	"bufio"
	"fmt"
	"log"
	"os"
	"strings"

	"gitlab.ozon.dev/qwestard/orders-admin/internal/cache"
	"gitlab.ozon.dev/qwestard/orders-admin/internal/catalog"
	"gitlab.ozon.dev/qwestard/orders-admin/internal/config"
	"gitlab.ozon.dev/qwestard/orders-admin/internal/handler"
	"gitlab.ozon.dev/qwestard/orders-admin/internal/logger"
	"gitlab.ozon.dev/qwestard/orders-admin/internal/service"
	"gitlab.ozon.dev/qwestard/orders-admin/internal/storage"
	"gitlab.ozon.dev/qwestard/orders-admin/internal/summary"
)

func main() {
	cfg := config.LoadConfig()

	zaplog, err := logger.NewZapLog(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Error building logger: %v", err)
	}
	defer func() { _ = zaplog.Sync() }()

	store, err := storage.New(cfg.StoreFile)
	if err != nil {
		log.Fatalf("Error opening order store: %v", err)
	}

	svc := service.NewOrderService(store, cache.NewOrdersCache(), zaplog)
	// no system clipboard in a terminal session, summaries print to stdout
	sum := summary.NewService(nil, os.Stdout)
	h := handler.New(svc, catalog.New(), sum)

	fmt.Println("Управление заказами. Введите 'help' для справки.")
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if err := h.Execute(fields[0], fields[1:]); err != nil {
			fmt.Println(err)
		}
	}
}
