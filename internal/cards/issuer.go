package cards

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strconv"
	"time"
)

// cardBin is the issuer prefix for generated card numbers
const cardBin = "4111"

// cardNumberLength is the full PAN length including the check digit
const cardNumberLength = 16

// Issuer generates virtual card credentials
type Issuer struct{}

func NewIssuer() *Issuer {
	return &Issuer{}
}

// CardNumber returns a random 16-digit card number with a valid Luhn
// check digit, so downstream validators accept it.
func (i *Issuer) CardNumber() (string, error) {
	number := cardBin
	for len(number) < cardNumberLength-1 {
		digit, err := randomDigit()
		if err != nil {
			return "", err
		}
		number += strconv.Itoa(digit)
	}
	return number + strconv.Itoa(luhnCheckDigit(number)), nil
}

// Cvv returns a random 3-digit security code
func (i *Issuer) Cvv() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900))
	if err != nil {
		return "", fmt.Errorf("unable to generate cvv: %w", err)
	}
	return strconv.Itoa(int(n.Int64()) + 100), nil
}

// ExpiryDate returns an expiry three years out
func (i *Issuer) ExpiryDate(now time.Time) time.Time {
	return now.AddDate(3, 0, 0)
}

func randomDigit() (int, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(10))
	if err != nil {
		return 0, fmt.Errorf("unable to generate digit: %w", err)
	}
	return int(n.Int64()), nil
}

// luhnCheckDigit computes the final digit that makes the number pass the
// standard Mod 10 check used by all card networks.
func luhnCheckDigit(partial string) int {
	sum := 0
	alternate := true
	for i := len(partial) - 1; i >= 0; i-- {
		n := int(partial[i] - '0')
		if alternate {
			n *= 2
			if n > 9 {
				n -= 9
			}
		}
		sum += n
		alternate = !alternate
	}
	return (10 - sum%10) % 10
}

// PassesLuhn reports whether a full card number has a valid check digit
func PassesLuhn(number string) bool {
	if number == "" {
		return false
	}
	sum := 0
	alternate := false
	for i := len(number) - 1; i >= 0; i-- {
		c := number[i]
		if c < '0' || c > '9' {
			return false
		}
		n := int(c - '0')
		if alternate {
			n *= 2
			if n > 9 {
				n -= 9
			}
		}
		sum += n
		alternate = !alternate
	}
	return sum%10 == 0
}
