package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/orgfolio/gatekeeper/internal/config"
	"github.com/orgfolio/gatekeeper/internal/server"
	"github.com/orgfolio/gatekeeper/pkg/db"
	"github.com/orgfolio/gatekeeper/pkg/log"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		log.Module,
		fx.Provide(newSnowflake),
		db.Module,
		server.Module,
	)
	app.Run()
}

func newSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
