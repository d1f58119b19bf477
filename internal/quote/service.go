// Package quote loads everything a price computation needs and runs the pricing engine.
package quote

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/Simplici0/markup/internal/pricing"
)

const maxConcurrentChannels = 8

// ProductRepository loads a product with its resolved bill of materials.
type ProductRepository interface {
	GetWithBOM(ctx context.Context, productID int64) (pricing.Product, error)
}

// CompanyRepository resolves a company's tax regime.
type CompanyRepository interface {
	GetTaxRegime(ctx context.Context, companyID int64) (pricing.Regime, error)
}

// ChannelRepository loads sales channels.
type ChannelRepository interface {
	Get(ctx context.Context, channelID int64) (pricing.SalesChannel, error)
	ListForCompany(ctx context.Context, companyID int64) ([]pricing.SalesChannel, error)
}

// ChannelPrice is a pricing result tagged with the channel it was computed for.
type ChannelPrice struct {
	ChannelID int64 `json:"channelId"`
	pricing.Result
}

// Service prices products against sales channels.
type Service struct {
	products  ProductRepository
	companies CompanyRepository
	channels  ChannelRepository
	engine    pricing.Engine
}

func NewService(products ProductRepository, companies CompanyRepository, channels ChannelRepository, engine pricing.Engine) *Service {
	return &Service{
		products:  products,
		companies: companies,
		channels:  channels,
		engine:    engine,
	}
}

// ComputePrice derives the suggested sale price of a product on one channel.
// Repository errors are returned wrapped but otherwise unchanged.
func (s *Service) ComputePrice(ctx context.Context, productID, channelID int64) (pricing.Result, error) {
	product, regime, err := s.loadProduct(ctx, productID)
	if err != nil {
		return pricing.Result{}, err
	}

	channel, err := s.channels.Get(ctx, channelID)
	if err != nil {
		return pricing.Result{}, fmt.Errorf("load sales channel: %w", err)
	}

	return s.engine.Compute(pricing.Input{Regime: regime, Product: product, Channel: channel})
}

// ComputeAllChannels prices a product on every channel available to its company,
// in the order the channels are listed.
func (s *Service) ComputeAllChannels(ctx context.Context, productID int64) ([]ChannelPrice, error) {
	product, regime, err := s.loadProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	channels, err := s.channels.ListForCompany(ctx, product.CompanyID)
	if err != nil {
		return nil, fmt.Errorf("list sales channels: %w", err)
	}

	prices := make([]ChannelPrice, len(channels))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentChannels)
	for i, ch := range channels {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := s.engine.Compute(pricing.Input{Regime: regime, Product: product, Channel: ch})
			if err != nil {
				return fmt.Errorf("price channel %d: %w", ch.ID, err)
			}
			prices[i] = ChannelPrice{ChannelID: ch.ID, Result: res}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return prices, nil
}

func (s *Service) loadProduct(ctx context.Context, productID int64) (pricing.Product, pricing.Regime, error) {
	product, err := s.products.GetWithBOM(ctx, productID)
	if err != nil {
		return pricing.Product{}, "", fmt.Errorf("load product: %w", err)
	}

	regime, err := s.companies.GetTaxRegime(ctx, product.CompanyID)
	if err != nil {
		return pricing.Product{}, "", fmt.Errorf("load tax regime: %w", err)
	}

	return product, regime, nil
}
