// Package marketplace holds the escrowed sell offers of a company. Tokens enter the book
// already debited from the seller's balance and leave it either to a buyer or back to the
// seller.
package marketplace

import (
	"fmt"
	"sort"

	"equityrocket/engine/library"
	"golang.org/x/exp/maps"
)

type Status string

const (
	StatusOpen      Status = "open"
	StatusFilled    Status = "filled"
	StatusCancelled Status = "cancelled"
)

type SellOffer struct {
	ID             int64             `json:"id"`
	Seller         library.Account   `json:"seller"`
	TokensEscrowed library.Amount    `json:"tokens_escrowed"`
	PriceTotal     library.Amount    `json:"price_total"`
	Status         Status            `json:"status"`
	Buyer          library.Account   `json:"buyer,omitempty"`
	CreatedAt      library.Timestamp `json:"created_at"`
	ClosedAt       library.Timestamp `json:"closed_at,omitempty"`
}

func (o SellOffer) IsOpen() bool {
	return o.Status == StatusOpen
}

// Book allows at most one open offer per seller.
type Book struct {
	Offers   map[library.Account]SellOffer `json:"open"`
	Closed   []SellOffer                   `json:"closed"`
	Sequence int64                         `json:"sequence"`
}

func New() *Book {
	return &Book{Offers: make(map[library.Account]SellOffer)}
}

func (b *Book) Clone() *Book {
	c := &Book{
		Offers:   make(map[library.Account]SellOffer, len(b.Offers)),
		Closed:   make([]SellOffer, len(b.Closed)),
		Sequence: b.Sequence,
	}
	for seller, offer := range b.Offers {
		c.Offers[seller] = offer
	}
	copy(c.Closed, b.Closed)
	return c
}

// Create opens a new offer. A seller with an open offer must cancel it first.
func (b *Book) Create(seller library.Account, tokens, price library.Amount, at library.Timestamp) (SellOffer, error) {
	if existing, ok := b.Offers[seller]; ok {
		return SellOffer{}, fmt.Errorf("%s already escrows %d in offer %d: %w", seller, existing.TokensEscrowed, existing.ID, library.ErrOfferAlreadyOpen)
	}
	offer := SellOffer{
		ID:             b.Sequence,
		Seller:         seller,
		TokensEscrowed: tokens,
		PriceTotal:     price,
		Status:         StatusOpen,
		CreatedAt:      at,
	}
	b.Sequence++
	b.Offers[seller] = offer
	return offer, nil
}

func (b *Book) OpenOffer(seller library.Account) (SellOffer, error) {
	offer, ok := b.Offers[seller]
	if !ok {
		return SellOffer{}, fmt.Errorf("seller %s: %w", seller, library.ErrNoOpenOffer)
	}
	return offer, nil
}

// Fill closes the offer of seller in favour of buyer.
func (b *Book) Fill(seller, buyer library.Account, at library.Timestamp) (SellOffer, error) {
	return b.close(seller, buyer, StatusFilled, at)
}

func (b *Book) Cancel(seller library.Account, at library.Timestamp) (SellOffer, error) {
	return b.close(seller, "", StatusCancelled, at)
}

func (b *Book) close(seller, buyer library.Account, status Status, at library.Timestamp) (SellOffer, error) {
	offer, err := b.OpenOffer(seller)
	if err != nil {
		return SellOffer{}, err
	}
	delete(b.Offers, seller)
	offer.Status = status
	offer.Buyer = buyer
	offer.ClosedAt = at
	b.Closed = append(b.Closed, offer)
	return offer, nil
}

// Escrowed is what seller currently has locked in the book.
func (b *Book) Escrowed(seller library.Account) library.Amount {
	return b.Offers[seller].TokensEscrowed
}

// TotalEscrowed is the sum of all open offers.
func (b *Book) TotalEscrowed() (total library.Amount) {
	for _, offer := range b.Offers {
		total += offer.TokensEscrowed
	}
	return
}

// List returns every open offer, oldest first.
func (b *Book) List() []SellOffer {
	offers := maps.Values(b.Offers)
	sort.Slice(offers, func(i, j int) bool {
		return offers[i].ID < offers[j].ID
	})
	return offers
}
