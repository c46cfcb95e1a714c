package main

import (
	"context"
	"time"

	"github.com/shandysiswandi/orvio/internal/app"
)

// @title           Orvio API
// @version         1.0
// @description     Orvio delivers OTP codes to registered devices and tracks their verification.
// @termsOfService  https://orvio.app/terms
// @contact.name    Contact Support
// @contact.url     https://orvio.app/contact
// @contact.email   support@orvio.app
// @license.name    MIT
// @license.url     https://mit-license.org/
// @server          http://localhost:8080
// @server          https://localhost:8080
// @securityDefinitions.apikey  BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT.
func main() {
	application := app.New()    // Initialize the application
	wait := application.Start() // Start the application and wait for the termination signal
	<-wait                      // Wait for the application to receive a termination signal
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	application.Stop(ctx) // Stop the application gracefully
}
