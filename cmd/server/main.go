package main

import (
	"fmt"
	"os"
	"strings"
)

const (
	ansiReset = "\033[0m"
	ansiBold  = "\033[1m"
	ansiDim   = "\033[2m"
	ansiGreen = "\033[32m"
	ansiCyan  = "\033[36m"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func printStartupBanner() {
	fmt.Println(ansiCyan + "╔══════════════════════════════════════════════════╗" + ansiReset)
	fmt.Println(ansiCyan + "║           farm-ledger delivery service           ║" + ansiReset)
	fmt.Println(ansiCyan + "╚══════════════════════════════════════════════════╝" + ansiReset)
	fmt.Println(ansiGreen + ansiBold + "purchases · delivery tracking · batch expiry" + ansiReset)
	fmt.Println(ansiDim + "----------------------------------------------------" + ansiReset)
}

func isWeakSecret(secret string) bool {
	if len(secret) < 32 {
		return true
	}
	normalized := strings.ToLower(secret)
	if strings.Contains(normalized, "change-me") ||
		strings.Contains(normalized, "change-in-production") ||
		strings.Contains(normalized, "your-secret-key") {
		return true
	}
	return false
}
