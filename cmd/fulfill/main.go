// fulfill is the staff console: it logs in, polls the order set, renders the
// three fulfillment lanes as text and accepts transition commands.
//
// Commands: advance <token> | revert <token> | deliver <token> [otp]
//           orders | customers | quit
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
	"quickshop/poll"
)

func main() {
	configPath := flag.String("config", "client.yaml", "client config file")
	username := flag.String("user", "admin", "staff username")
	password := flag.String("pass", "", "staff password")
	flag.Parse()

	cfg, err := client.LoadConfig(*configPath)
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}
	api := client.New(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	token, err := api.Login(ctx, *username, *password)
	if err != nil {
		log.Fatal("Login failed:", err)
	}
	api.SetAuthToken(token)

	dash := poll.NewDashboard(api, cfg.AdminPollInterval())
	dash.OnRefresh = func() { render(dash) }
	dash.OnSessionEnded = func() {
		fmt.Println("\nSession ended — please log in again.")
		stop()
	}

	go commandLoop(ctx, dash)

	if err := dash.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		if !errors.Is(err, client.ErrAuthExpired) {
			log.Fatal("Dashboard stopped:", err)
		}
	}
}

func render(dash *poll.Dashboard) {
	lanes := dash.Lanes()
	fmt.Println(strings.Repeat("─", 60))
	for _, status := range poll.LaneOrder() {
		fmt.Printf("%s (%d)\n", status, len(lanes[status]))
		for _, o := range lanes[status] {
			line := fmt.Sprintf("  %s  %s  ₹%s", o.Token, o.DeliveryType, o.Total.StringFixed(0))
			if dash.InFlight(o.Token) {
				line += "  [working…]"
			}
			if msg := dash.InlineError(o.Token); msg != "" {
				line += "  ! " + msg
			}
			fmt.Println(line)
		}
	}
}

func commandLoop(ctx context.Context, dash *poll.Dashboard) {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		var err error
		switch fields[0] {
		case "advance":
			if len(fields) == 2 {
				err = dash.Advance(ctx, fields[1])
			}
		case "revert":
			if len(fields) == 2 {
				err = dash.Revert(ctx, fields[1])
			}
		case "deliver":
			otp := ""
			if len(fields) == 3 {
				otp = fields[2]
			}
			if len(fields) >= 2 {
				err = dash.Deliver(ctx, fields[1], otp)
			}
		case "orders":
			dash.SetTab(poll.TabOrders)
			continue
		case "customers":
			dash.SetTab(poll.TabCustomers)
			for _, c := range dash.Customers() {
				fmt.Printf("  %s  since %s\n", c.Phone, c.CreatedAt.Format("2006-01-02"))
			}
			continue
		case "quit":
			return
		default:
			fmt.Println("commands: advance|revert|deliver <token> [otp], orders, customers, quit")
			continue
		}
		if err != nil {
			fmt.Println("!", err)
		} else {
			render(dash)
		}
	}
}
