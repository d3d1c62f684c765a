package cmd

import (
	"bowerbird/core"
	"bowerbird/pkg/kv"
	"bowerbird/store/btoken"
	"bowerbird/store/collateral"
	"bowerbird/store/event"
	"bowerbird/store/oracle"
	"bowerbird/store/output"
	"bowerbird/store/property"
	"bowerbird/store/token"
)

func provideStore() *kv.Store {
	store, err := kv.Open(cfg.DB.Path)
	if err != nil {
		panic(err)
	}

	return store
}

func providePropertyStore() core.PropertyStore {
	return property.New()
}

func provideBTokenStore() core.BTokenStore {
	return btoken.New("busdl/")
}

func provideCollateralStore() core.CollateralStore {
	return collateral.New()
}

func provideEventStore() core.EventStore {
	return event.New()
}

func provideTokenStore(prefix string) *token.Store {
	return token.New(prefix)
}

func provideOracleRequestStore() core.OracleRequestStore {
	return oracle.New()
}

func provideOracleSignerStore() core.OracleSignerStore {
	return oracle.NewSignerStore()
}

func provideOutputStore() core.OutputStore {
	return output.New()
}
