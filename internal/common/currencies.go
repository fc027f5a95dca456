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

package common

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v2"
)

const (
	CurrencyKindFiat   = "fiat"
	CurrencyKindCrypto = "crypto"
)

// CurrencyConfig describes one supported currency
type CurrencyConfig struct {
	Code     string `yaml:"code"`
	Kind     string `yaml:"kind"`
	Decimals int32  `yaml:"decimals"`
}

type currenciesFile struct {
	Currencies []CurrencyConfig `yaml:"currencies"`
}

// CurrencyRegistry holds the fixed set of supported currencies. Amount
// precision is per currency class: 2 decimals for fiat, 8 for crypto.
type CurrencyRegistry struct {
	byCode map[string]CurrencyConfig
}

// DefaultCurrencies is the built-in supported set, used when no
// currencies file is configured.
func DefaultCurrencies() []CurrencyConfig {
	return []CurrencyConfig{
		{Code: "USD", Kind: CurrencyKindFiat, Decimals: 2},
		{Code: "EUR", Kind: CurrencyKindFiat, Decimals: 2},
		{Code: "BTC", Kind: CurrencyKindCrypto, Decimals: 8},
		{Code: "ETH", Kind: CurrencyKindCrypto, Decimals: 8},
	}
}

func NewCurrencyRegistry(currencies []CurrencyConfig) (*CurrencyRegistry, error) {
	byCode := make(map[string]CurrencyConfig, len(currencies))
	for i, c := range currencies {
		if c.Code == "" {
			return nil, fmt.Errorf("currency at index %d missing code", i)
		}
		if c.Kind != CurrencyKindFiat && c.Kind != CurrencyKindCrypto {
			return nil, fmt.Errorf("currency %s has unknown kind %q", c.Code, c.Kind)
		}
		if c.Decimals < 0 {
			return nil, fmt.Errorf("currency %s has negative decimals", c.Code)
		}
		byCode[c.Code] = c
	}
	return &CurrencyRegistry{byCode: byCode}, nil
}

// LoadCurrencyRegistry reads the supported currency set from a yaml file.
// An empty path falls back to the built-in defaults.
func LoadCurrencyRegistry(currenciesFilePath string) (*CurrencyRegistry, error) {
	if currenciesFilePath == "" {
		return NewCurrencyRegistry(DefaultCurrencies())
	}

	path := currenciesFilePath
	if !filepath.IsAbs(path) {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		path = filepath.Join(wd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return NewCurrencyRegistry(DefaultCurrencies())
		}
		return nil, fmt.Errorf("unable to read %s: %w", currenciesFilePath, err)
	}

	var file currenciesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("unable to parse %s: %w", currenciesFilePath, err)
	}

	return NewCurrencyRegistry(file.Currencies)
}

// IsSupported reports whether code names a supported currency
func (r *CurrencyRegistry) IsSupported(code string) bool {
	_, ok := r.byCode[code]
	return ok
}

// IsCrypto reports whether code names a crypto-class currency
func (r *CurrencyRegistry) IsCrypto(code string) bool {
	return r.byCode[code].Kind == CurrencyKindCrypto
}

// Quantize rounds amount to the currency's precision
func (r *CurrencyRegistry) Quantize(code string, amount decimal.Decimal) decimal.Decimal {
	c, ok := r.byCode[code]
	if !ok {
		return amount
	}
	return amount.Round(c.Decimals)
}

// Codes returns the supported currency codes in stable order
func (r *CurrencyRegistry) Codes() []string {
	codes := make([]string, 0, len(r.byCode))
	for code := range r.byCode {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}
