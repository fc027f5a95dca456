package rates

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
)

func TestStaticSource_Rate(t *testing.T) {
	source, err := NewStaticSource([]RateConfig{
		{From: "BTC", To: "ETH", Rate: "14.3"},
		{From: "USD", To: "EUR", Rate: "0.85"},
	})
	if err != nil {
		t.Fatalf("NewStaticSource failed: %v", err)
	}

	rate, err := source.Rate(context.Background(), "BTC", "ETH")
	if err != nil {
		t.Fatalf("Rate failed: %v", err)
	}
	if !rate.Equal(decimal.NewFromFloat(14.3)) {
		t.Errorf("Expected rate 14.3, got %s", rate.String())
	}
}

func TestStaticSource_RatesAreDirected(t *testing.T) {
	source, err := NewStaticSource([]RateConfig{
		{From: "USD", To: "EUR", Rate: "0.85"},
	})
	if err != nil {
		t.Fatalf("NewStaticSource failed: %v", err)
	}

	_, err = source.Rate(context.Background(), "EUR", "USD")
	if !errors.Is(err, ErrRateUnavailable) {
		t.Errorf("Expected ErrRateUnavailable for reverse pair, got %v", err)
	}
}

func TestNewStaticSource_RejectsBadRates(t *testing.T) {
	cases := []RateConfig{
		{From: "USD", To: "EUR", Rate: "not-a-number"},
		{From: "USD", To: "EUR", Rate: "0"},
		{From: "USD", To: "EUR", Rate: "-1"},
		{From: "", To: "EUR", Rate: "1"},
	}

	for _, c := range cases {
		if _, err := NewStaticSource([]RateConfig{c}); err == nil {
			t.Errorf("Expected config %+v to be rejected", c)
		}
	}
}

func TestLoadStaticSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rates.yaml")
	content := `rates:
  - { from: BTC, to: ETH, rate: "14.3" }
  - { from: ETH, to: BTC, rate: "0.07" }
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("Failed to write rates file: %v", err)
	}

	source, err := LoadStaticSource(path)
	if err != nil {
		t.Fatalf("LoadStaticSource failed: %v", err)
	}

	rate, err := source.Rate(context.Background(), "ETH", "BTC")
	if err != nil {
		t.Fatalf("Rate failed: %v", err)
	}
	if !rate.Equal(decimal.NewFromFloat(0.07)) {
		t.Errorf("Expected rate 0.07, got %s", rate.String())
	}
}
