package ratelimit

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	"cryptoaggregator/internal/provider"
)

// Provider wraps a provider and gates every GetPrices call on a limiter.
// Concurrent calls wait their turn, or return early if the context is canceled.
type Provider struct {
	P       provider.Provider
	Limiter *rate.Limiter
}

func (l *Provider) Name() string { return l.P.Name() }

func (l *Provider) GetPrices(ctx context.Context, assets []string) ([]provider.Quote, error) {
	if l.Limiter != nil {
		if err := l.Limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}
	return l.P.GetPrices(ctx, assets)
}

// MinInterval allows one call per interval.
func MinInterval(p provider.Provider, interval time.Duration) *Provider {
	return &Provider{P: p, Limiter: rate.NewLimiter(rate.Every(interval), 1)}
}

// PerMinute allows rpm calls per minute with the given burst.
func PerMinute(p provider.Provider, rpm, burst int) *Provider {
	if burst <= 0 {
		burst = 1
	}
	return &Provider{P: p, Limiter: rate.NewLimiter(rate.Limit(float64(rpm)/60.0), burst)}
}

// Wrap applies the per-minute limit when rpm is set, otherwise the minimum
// interval, otherwise returns p unchanged.
func Wrap(p provider.Provider, rpm, burst int, minInterval time.Duration) provider.Provider {
	switch {
	case rpm > 0:
		return PerMinute(p, rpm, burst)
	case minInterval > 0:
		return MinInterval(p, minInterval)
	default:
		return p
	}
}
