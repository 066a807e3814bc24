package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"

	"track-wise-service/internal/infrastructure/config"
	"track-wise-service/internal/infrastructure/oauth"
	"track-wise-service/pkg/logger"
)

// Prints a Gmail refresh token allowed to send notification mails
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	appLogger := logger.NewLogger(cfg.LogLevel)
	defer appLogger.Sync()

	gmailOAuth := oauth.NewGmailOAuth(cfg.GmailClientID, cfg.GmailClientSecret, "", appLogger)
	gmailOAuth.SetRedirectURL("http://localhost:8090/oauth2callback")

	state := "track-wise-state"

	http.HandleFunc("/oauth2callback", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("state") != state {
			http.Error(w, "Invalid state parameter", http.StatusBadRequest)
			return
		}

		token, err := gmailOAuth.ExchangeCode(context.Background(), r.URL.Query().Get("code"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		tokenJSON, err := gmailOAuth.TokenToJSON(token)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		fmt.Printf("\nToken:\n%s\n\nSet GMAIL_REFRESH_TOKEN=%s\n\n", tokenJSON, token.RefreshToken)
		fmt.Fprintf(w, "Authentication successful! You can close this window.")
		os.Exit(0)
	})

	fmt.Printf("Open this URL in your browser:\n%s\n", gmailOAuth.GenerateAuthURL(state))

	log.Fatal(http.ListenAndServe(":8090", nil))
}
