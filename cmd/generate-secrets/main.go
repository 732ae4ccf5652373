package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/staybook/hotel-booking-backend/internal/utils"
)

func main() {
	envOnly := flag.Bool("env", false, "print only the KEY=value lines")
	flag.Parse()

	accessSecret, refreshSecret, err := utils.GenerateJWTSecrets()
	if err != nil {
		log.Fatalf("Failed to generate secrets: %v", err)
	}

	if *envOnly {
		fmt.Printf("JWT_SECRET=%s\nJWT_REFRESH_SECRET=%s\n", accessSecret, refreshSecret)
		return
	}

	fmt.Println("===========================================")
	fmt.Println("JWT secret generator for the booking backend")
	fmt.Println("===========================================")
	fmt.Println()
	fmt.Println("Add these to your .env file or deployment secrets:")
	fmt.Println()
	fmt.Printf("JWT_SECRET=%s\n", accessSecret)
	fmt.Printf("JWT_REFRESH_SECRET=%s\n", refreshSecret)
	fmt.Println()
	fmt.Println("Keep these secrets out of version control.")
}
