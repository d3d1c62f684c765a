package cmd

import (
	"bowerbird/core"
	"bowerbird/service/block"
	btokenservice "bowerbird/service/btoken"
	oracleservice "bowerbird/service/oracle"
	tokenservice "bowerbird/service/token"
	vaultservice "bowerbird/service/vault"
)

func mustAddress(s, name string) core.Address {
	if s == "" {
		panic("config: " + name + " address required")
	}

	addr, err := core.AddressFromString(s)
	if err != nil {
		panic(err)
	}

	return addr
}

func provideBlockClock() core.BlockClock {
	return block.New(cfg.App.Genesis, cfg.App.SecondsPerBlock)
}

func provideUSDLToken(events core.EventStore, registry *core.Registry) tokenservice.Token {
	return tokenservice.New(
		mustAddress(cfg.Addresses.USDL, "usdl"),
		core.USDLSymbol,
		core.BTokenDecimals,
		provideTokenStore("usdl/"),
		events,
		registry,
	)
}

func provideBNEOToken(events core.EventStore, registry *core.Registry) tokenservice.Token {
	return tokenservice.New(
		mustAddress(cfg.Addresses.BNEO, "bneo"),
		"bNEO",
		core.BTokenDecimals,
		provideTokenStore("bneo/"),
		events,
		registry,
	)
}

func provideBTokenService(
	properties core.PropertyStore,
	events core.EventStore,
	registry *core.Registry,
	clock core.BlockClock,
) core.BTokenService {
	return btokenservice.New(
		mustAddress(cfg.Addresses.BToken, "btoken"),
		provideBTokenStore(),
		properties,
		events,
		registry,
		clock,
	)
}

func provideOracleService(requests core.OracleRequestStore, properties core.PropertyStore) core.OracleService {
	return oracleservice.New(cfg.PriceOracle.EndPoint, requests, properties)
}

func providePriceClient() *oracleservice.PriceClient {
	return &oracleservice.PriceClient{Threshold: cfg.PriceOracle.Threshold}
}

func provideVaultService(
	collaterals core.CollateralStore,
	properties core.PropertyStore,
	events core.EventStore,
	registry *core.Registry,
	oracle core.OracleService,
	btoken core.BTokenService,
) core.VaultService {
	return vaultservice.New(
		mustAddress(cfg.Addresses.Vault, "vault"),
		collaterals,
		properties,
		events,
		registry,
		oracle,
		btoken,
	)
}

// provideRegistry wires every hosted ledger and payment hook under its
// contract address.
func provideRegistry() (*core.Registry, core.BTokenService, core.VaultService, core.CollateralStore, core.EventStore) {
	registry := core.NewRegistry()

	properties := providePropertyStore()
	events := provideEventStore()
	collaterals := provideCollateralStore()
	clock := provideBlockClock()

	usdl := provideUSDLToken(events, registry)
	bneo := provideBNEOToken(events, registry)
	btoken := provideBTokenService(properties, events, registry, clock)
	oracle := provideOracleService(provideOracleRequestStore(), properties)
	vault := provideVaultService(collaterals, properties, events, registry, oracle, btoken)

	registry.AddToken(usdl)
	registry.AddToken(bneo)
	registry.AddToken(btoken)
	registry.AddReceiver(btoken.Address(), btoken)
	registry.AddReceiver(vault.Address(), vault)

	return registry, btoken, vault, collaterals, events
}
