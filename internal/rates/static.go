/**
 * Copyright 2025-present Coinbase Global, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package rates

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"wallet-ledger-go/internal/wallet"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v2"
)

// ErrRateUnavailable means no rate is configured for the requested pair
var ErrRateUnavailable = errors.New("rate unavailable")

// Compile-time check: *StaticSource must satisfy wallet.RateSource.
var _ wallet.RateSource = (*StaticSource)(nil)

// RateConfig describes one directed currency pair
type RateConfig struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`
	Rate string `yaml:"rate"`
}

type ratesFile struct {
	Rates []RateConfig `yaml:"rates"`
}

// StaticSource serves exchange rates from a fixed table loaded at startup
type StaticSource struct {
	table map[string]decimal.Decimal
}

func NewStaticSource(configs []RateConfig) (*StaticSource, error) {
	table := make(map[string]decimal.Decimal, len(configs))
	for i, c := range configs {
		if c.From == "" || c.To == "" {
			return nil, fmt.Errorf("rate at index %d missing currency pair", i)
		}
		rate, err := decimal.NewFromString(c.Rate)
		if err != nil {
			return nil, fmt.Errorf("rate %s->%s is not a decimal: %w", c.From, c.To, err)
		}
		if !rate.IsPositive() {
			return nil, fmt.Errorf("rate %s->%s must be positive, got %s", c.From, c.To, rate.String())
		}
		table[pairKey(c.From, c.To)] = rate
	}
	return &StaticSource{table: table}, nil
}

// LoadStaticSource reads the rate table from a yaml file
func LoadStaticSource(ratesFilePath string) (*StaticSource, error) {
	path := ratesFilePath
	if !filepath.IsAbs(path) {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		path = filepath.Join(wd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read %s: %w", ratesFilePath, err)
	}

	var file ratesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("unable to parse %s: %w", ratesFilePath, err)
	}

	return NewStaticSource(file.Rates)
}

// Rate returns the configured rate for a directed pair
func (s *StaticSource) Rate(_ context.Context, fromCurrency, toCurrency string) (decimal.Decimal, error) {
	rate, ok := s.table[pairKey(fromCurrency, toCurrency)]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %s->%s", ErrRateUnavailable, fromCurrency, toCurrency)
	}
	return rate, nil
}

func pairKey(from, to string) string {
	return from + "/" + to
}
