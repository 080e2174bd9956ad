package main

import (
	"context"

	"calculat0r-api/internal/calculator"
	"calculat0r-api/internal/observability"
)

// initMetrics initialises the meter provider and the calculator's metric
// instruments.
func initMetrics(ctx context.Context, serviceName string) (func(context.Context) error, error) {
	shutdown, err := observability.InitMetrics(ctx, serviceName)
	if err != nil {
		return nil, err
	}

	if err := calculator.InitMetrics(); err != nil {
		return nil, err
	}

	return shutdown, nil
}
