package common

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidSide       = errors.New("invalid order side")
	ErrInvalidPriceRange = errors.New("invalid price range")
)

type Side int

// See: https://go.dev/ref/spec#Iota
const (
	// Bid is an order to buy.
	Bid Side = iota
	// Ask is an order to sell.
	Ask
)

var sideName = map[Side]string{
	Bid: "Bid",
	Ask: "Ask",
}

func (s Side) String() string {
	if name, ok := sideName[s]; ok {
		return name
	}
	return fmt.Sprintf("Side(%d)", int(s))
}

// Valid reports whether the side is one of Bid or Ask.
func (s Side) Valid() bool {
	return s == Bid || s == Ask
}

// Opposite returns the counterparty side.
func (s Side) Opposite() Side {
	if s == Bid {
		return Ask
	}
	return Bid
}

// ParseSide accepts "bid"/"buy" and "ask"/"sell" in any case.
func ParseSide(s string) (Side, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "bid", "buy":
		return Bid, nil
	case "ask", "sell":
		return Ask, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidSide, s)
}

// PriceRange is the set of legal prices for a session, bounds inclusive.
type PriceRange struct {
	Min int
	Max int
}

func NewPriceRange(minPrice, maxPrice int) (PriceRange, error) {
	r := PriceRange{Min: minPrice, Max: maxPrice}
	if err := r.Validate(); err != nil {
		return PriceRange{}, err
	}
	return r, nil
}

func (r PriceRange) Validate() error {
	if r.Min > r.Max {
		return fmt.Errorf("%w: min %d > max %d", ErrInvalidPriceRange, r.Min, r.Max)
	}
	return nil
}

// Clamp pulls a price into [Min, Max].
func (r PriceRange) Clamp(price int) int {
	return max(r.Min, min(price, r.Max))
}

func (r PriceRange) Contains(price int) bool {
	return price >= r.Min && price <= r.Max
}
