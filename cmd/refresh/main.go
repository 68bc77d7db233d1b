// refresh triggers a locale index rebuild by calling the server's cron
// endpoint with the admin token, the same request the weekly job sends.
package main

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load(".env.local")

	base := os.Getenv("API_URL")
	if base == "" {
		base = "http://localhost:5050"
	}
	token := os.Getenv("ADMIN_TOKEN")
	if token == "" {
		fmt.Fprintln(os.Stderr, "ADMIN_TOKEN not set")
		os.Exit(1)
	}

	req, err := http.NewRequest(http.MethodGet, base+"/cron/weekly_refresh", nil)
	if err != nil {
		fmt.Fprintln(os.Stderr, "bad API_URL:", err)
		os.Exit(1)
	}
	req.Header.Set("x-admin-token", token)

	client := &http.Client{Timeout: 60 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		fmt.Fprintln(os.Stderr, "refresh request failed:", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	fmt.Printf("%s %s\n", resp.Status, body)
	if resp.StatusCode != http.StatusOK {
		os.Exit(1)
	}
}
