// waggle runs the session token authority: login, refresh and logout over
// HTTP, with the credential gate in front of every route.
//
// Configuration is read from the environment; see internal/auth/app.
package main

import (
	"context"
	"log"

	"github.com/wagglex2/waggle/internal/auth/app"
)

func main() {
	cfg := app.LoadConfig()

	application, err := app.New(context.Background(), cfg)
	if err != nil {
		log.Fatalf("failed to initialize application: %v", err)
	}

	if err := application.Run(); err != nil {
		log.Fatalf("application error: %v", err)
	}
}
