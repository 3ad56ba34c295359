// track follows one order token in the terminal, mirroring the customer
// status view: poll until the order is ready, celebrate once, allow cancel.
//
// Usage: track [-config client.yaml] STORE-123
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"quickshop/client"
	"quickshop/models"
	"quickshop/poll"
)

func main() {
	configPath := flag.String("config", "client.yaml", "client config file")
	flag.Parse()
	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: track [-config file] <order-token>")
		os.Exit(2)
	}
	token := flag.Arg(0)

	cfg, err := client.LoadConfig(*configPath)
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}
	api := client.New(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	poller := poll.NewStatusPoller(api, token, cfg.CustomerPollInterval())
	poller.OnUpdate = func(o models.Order) {
		fmt.Printf("[%s] %s  (%s, total ₹%s)\n", o.Token, o.Status, o.DeliveryType, o.Total.StringFixed(0))
	}
	poller.OnReady = func(o models.Order) {
		fmt.Println("\n*** Your order is ready! Please collect it from the counter. ***")
	}
	poller.OnNotFound = func() {
		fmt.Printf("Order %s not found. Check the token and try again.\n", token)
	}

	// Cancel command from stdin while the poller runs
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			if strings.TrimSpace(scanner.Text()) != "cancel" {
				fmt.Println("commands: cancel")
				continue
			}
			switch err := poller.Cancel(ctx); {
			case err == nil:
				fmt.Println("Order cancelled.")
			case errors.Is(err, client.ErrCancellationBlocked):
				fmt.Println("Too late to cancel — the store has already started on your order.")
			default:
				fmt.Println("Cancel failed:", err)
			}
		}
	}()

	if err := poller.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal("Tracking stopped:", err)
	}
}
