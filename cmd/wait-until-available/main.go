package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"gitlab.com/dirk.krummacker/contacts-api/pkg/model"
)

// Usage example on the command line:
// > go run main.go -url=http://localhost:8080/health -timeout=2m
func main() {
	urlPtr := flag.String("url", "http://localhost:8080/health", "the health endpoint of the service")
	intervalPtr := flag.Duration("interval", 5*time.Second, "the time between two attempts")
	timeoutPtr := flag.Duration("timeout", 5*time.Minute, "give up after this time")
	flag.Parse()

	client := &http.Client{Timeout: *intervalPtr}
	deadline := time.Now().Add(*timeoutPtr)
	var totalWaitTime time.Duration
	for {
		ready, err := isAvailable(client, *urlPtr)
		if ready {
			fmt.Println("service is available")
			return
		}
		if err != nil {
			fmt.Println(err)
		}
		if time.Now().After(deadline) {
			fmt.Printf("service not available after %s", totalWaitTime)
			fmt.Println()
			os.Exit(1)
		}
		totalWaitTime += *intervalPtr
		fmt.Printf("Waiting %s", totalWaitTime)
		fmt.Println()
		time.Sleep(*intervalPtr)
	}
}

// isAvailable reports whether the service answers the health check and is connected to its
// database.
func isAvailable(client *http.Client, url string) (bool, error) {
	res, err := client.Get(url)
	if err != nil {
		return false, err
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return false, fmt.Errorf("health check answered %s", res.Status)
	}
	var health model.Health
	if err := json.NewDecoder(res.Body).Decode(&health); err != nil {
		return false, fmt.Errorf("could not decode health check: %w", err)
	}
	if health.Database != "connected" {
		return false, fmt.Errorf("database is %s", health.Database)
	}
	return true, nil
}
