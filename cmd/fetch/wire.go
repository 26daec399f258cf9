//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"barfeed/internal/app"
	"barfeed/internal/config"
)

// InitializeApp builds the datafeed and saver for cfg via Wire.
func InitializeApp(cfg config.Config) (*app.App, error) {
	wire.Build(
		app.ProvideHTTPClient,
		app.ProvideDatafeed,
		app.ProvideSaver,
		wire.Struct(new(app.App), "Config", "Datafeed", "Saver"),
	)
	return nil, nil
}
