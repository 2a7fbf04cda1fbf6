package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/Amund211/fetchonce/internal/adapters/itemprovider"
	"github.com/Amund211/fetchonce/internal/constants"
	"github.com/Amund211/fetchonce/internal/domain"
	"github.com/Amund211/fetchonce/internal/strutils"
)

func main() {
	baseURL := os.Getenv("ITEMS_BASE_URL")
	if baseURL == "" {
		baseURL = constants.DEFAULT_ITEMS_BASE_URL
	}

	if len(os.Args) < 2 {
		log.Fatal("No key provided")
	}

	key := os.Args[1]
	if err := strutils.ValidateKey(key); err != nil {
		log.Fatalf("Invalid key %q: %v", key, err)
	}

	httpClient := &http.Client{
		Timeout: 10 * time.Second,
	}

	itemsAPI, err := itemprovider.NewItemsAPI(httpClient, baseURL)
	if err != nil {
		log.Fatalf("Failed to initialize items API: %v", err)
	}

	start := time.Now()
	value, err := itemsAPI.GetItem(context.Background(), key)
	elapsed := time.Since(start)

	if errors.Is(err, domain.ErrItemNotFound) {
		fmt.Printf("%s: not found (%s)\n", key, elapsed)
		os.Exit(1)
	}
	if err != nil {
		log.Fatalf("Failed to get item: %v", err)
	}

	fmt.Println(value)
	log.Printf("Fetched %s in %s", key, elapsed)
}
