// Command vapidkeys prints a fresh VAPID key pair for web push.
package main

import (
	"fmt"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/sirupsen/logrus"
)

func main() {
	privateKey, publicKey, err := webpush.GenerateVAPIDKeys()
	if err != nil {
		logrus.WithError(err).Fatal("failed to generate VAPID keys")
	}

	fmt.Println("Add these to your .env file:")
	fmt.Printf("VAPID_PUBLIC_KEY=%s\n", publicKey)
	fmt.Printf("VAPID_PRIVATE_KEY=%s\n", privateKey)
	fmt.Println("VAPID_SUBSCRIBER=mailto:you@example.com")
}
