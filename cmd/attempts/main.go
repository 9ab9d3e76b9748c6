package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/web3guy0/kujibot/internal/database"
)

func main() {
	limit := flag.Int("n", 50, "number of attempts to show")
	flag.Parse()

	_ = godotenv.Load()

	dbPath := os.Getenv("DATABASE_PATH")
	if dbPath == "" {
		fmt.Println("❌ DATABASE_PATH not set")
		os.Exit(1)
	}

	db, err := database.New(dbPath)
	if err != nil {
		fmt.Println("❌ Error opening journal:", err)
		os.Exit(1)
	}
	defer db.Close()

	attempts, err := db.RecentAttempts(*limit)
	if err != nil {
		fmt.Println("❌ Error reading attempts:", err)
		os.Exit(1)
	}

	fmt.Printf("📊 LIQUIDATION ATTEMPTS - Showing: %d\n\n", len(attempts))

	fmt.Println("═══════════════════════════════════════════════════════════════════════")
	fmt.Println("│ TIME                │ STATUS    │ ADDRS │ TX / ERROR")
	fmt.Println("═══════════════════════════════════════════════════════════════════════")

	broadcast, failed := 0, 0
	for _, a := range attempts {
		detail := a.TxHash
		if a.Status == database.StatusFailed {
			failed++
			detail = truncate(a.ErrorMessage, 60)
		} else {
			broadcast++
		}

		fmt.Printf("│ %s │ %-9s │ %5d │ %s\n",
			a.CreatedAt.Format("2006-01-02 15:04:05"),
			a.Status,
			a.Candidates,
			detail,
		)
	}

	fmt.Println("═══════════════════════════════════════════════════════════════════════")
	fmt.Printf("\n📈 SUMMARY:\n")
	fmt.Printf("   Broadcast: %d | Failed: %d\n", broadcast, failed)
}

// truncate shortens s to at most n runes, marking the cut with an ellipsis
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "…"
}
