package common

import (
	"fmt"
	"strings"

	"wallet-ledger-go/internal/models"
)

// DefaultWidth is the separator width used by the CLI reports.
const DefaultWidth = 80

// PrintSeparator prints a separator line with the specified character and width
func PrintSeparator(char string, width int) {
	fmt.Println(strings.Repeat(char, width))
}

// PrintHeader prints a report header with title between separators
func PrintHeader(title string, width int) {
	fmt.Println("\n" + strings.Repeat("=", width))
	fmt.Println(title)
	PrintSeparator("=", width)
}

// PrintFooter prints a report footer with a closing summary line
func PrintFooter(message string, width int) {
	fmt.Println("\n" + strings.Repeat("=", width))
	fmt.Println(message)
	fmt.Println(strings.Repeat("=", width) + "\n")
}

// PrintBoxSeparator prints a box-drawing separator line (for sub-sections)
func PrintBoxSeparator(width int) {
	fmt.Println("├" + strings.Repeat("─", width))
}

// BoxPrefix returns the appropriate box-drawing prefix for list items
func BoxPrefix(isLast bool) string {
	if isLast {
		return "└  "
	}
	return "│  "
}

// ShortTransactionId abbreviates a transaction id for report output. Empty
// ids render as "none" so a never-touched account is still readable.
func ShortTransactionId(txId string) string {
	if txId == "" {
		return "none"
	}
	if len(txId) > 8 {
		return txId[:8] + "..."
	}
	return txId
}

// FormatBalanceLine renders one account balance as a report line, including
// the optimistic-lock version and the last transaction that moved it.
func FormatBalanceLine(balance models.AccountBalance, isLast bool) string {
	return fmt.Sprintf("%s %-15s: %20s (v%d, last_tx: %s, updated: %s)",
		BoxPrefix(isLast),
		balance.Currency,
		balance.Balance.String(),
		balance.Version,
		ShortTransactionId(balance.LastTransactionId),
		balance.UpdatedAt.Format("2006-01-02 15:04:05"))
}
