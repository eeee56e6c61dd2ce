package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// LoadEnvFile loads environment variables from a specific .env file
func LoadEnvFile(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		log.Printf("No .env file found at %s, using system environment", path)
		return nil
	}

	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load .env file: %w", err)
	}

	log.Printf("Loaded environment variables from %s", path)
	return nil
}

// LoadDefaultEnvFile loads .env from the current directory or up to three
// parent directories. Variables already set in the environment win.
func LoadDefaultEnvFile() error {
	dir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("get working directory: %w", err)
	}

	for i := 0; i < 4; i++ {
		envPath := filepath.Join(dir, ".env")
		if _, err := os.Stat(envPath); err == nil {
			if err := godotenv.Load(envPath); err != nil {
				return fmt.Errorf("failed to load %s: %w", envPath, err)
			}
			log.Printf("Loaded .env file from %s", envPath)
			return nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	log.Printf("No .env file found in current or parent directories, using system environment")
	return nil
}
