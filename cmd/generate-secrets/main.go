package main

import (
	"fmt"
	"log"

	"github.com/henryympark/pronto2-sub002/internal/utils"
)

func main() {
	fmt.Println("===========================================")
	fmt.Println("Secret Generator for Pronto Booking Backend")
	fmt.Println("===========================================")
	fmt.Println()

	encryptionKey, err := utils.GenerateEncryptionKey()
	if err != nil {
		log.Fatalf("Failed to generate encryption key: %v", err)
	}

	accessSecret, refreshSecret, err := utils.GenerateJWTSecrets()
	if err != nil {
		log.Fatalf("Failed to generate secrets: %v", err)
	}

	fmt.Println("Add these to your .env file or deployment secrets:")
	fmt.Println()
	fmt.Printf("STAGING_ENCRYPTION_KEY=%s\n", encryptionKey)
	fmt.Printf("JWT_SECRET=%s\n", accessSecret)
	fmt.Printf("JWT_REFRESH_SECRET=%s\n", refreshSecret)
	fmt.Println()
	fmt.Println("IMPORTANT: Keep these secrets safe and never commit them to version control!")
	fmt.Println("===========================================")
}
