package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/arbiterfps/arbiter/pkg/config"
	"github.com/arbiterfps/arbiter/pkg/gameserver"
	"github.com/arbiterfps/arbiter/pkg/gameserver/replication"
	"github.com/arbiterfps/arbiter/pkg/ingress"
	"github.com/arbiterfps/arbiter/pkg/relay"
	"github.com/arbiterfps/arbiter/pkg/state"

	"github.com/rs/zerolog/log"
)

func serveCommand(configs []string) error {
	if len(configs) == 0 {
		if path, ok := os.LookupEnv(config.EnvPrefix + "CONFIG"); ok {
			configs = []string{path}
		}
	}

	conf, err := config.Process(configs)
	if err != nil {
		return fmt.Errorf("failed to load arbiter configuration: %w", err)
	}

	serverConfig := conf.Server

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	local := replication.NewLocalChannel()
	channels := replication.Channels{local}

	if serverConfig.Redis.Enabled {
		redisRelay := relay.New(relay.Settings{
			Address:  serverConfig.Redis.Address,
			Password: serverConfig.Redis.Password,
			DB:       serverConfig.Redis.DB,
			Prefix:   serverConfig.Redis.Prefix,
		})
		defer redisRelay.Close()

		if err := redisRelay.Ping(ctx); err != nil {
			log.Error().Err(err).Msg("redis is unreachable, snapshots will not be relayed until it is")
		}

		go redisRelay.Run(ctx)
		channels = append(channels, redisRelay)
	}

	var recorders []gameserver.ResultRecorder
	if serverConfig.Store.DBPath != "" {
		db, err := state.InitDB(serverConfig.Store.DBPath)
		if err != nil {
			return fmt.Errorf("failed to open results database: %w", err)
		}
		recorders = append(recorders, state.New(db, int(serverConfig.Store.KFactor)))
	}

	server, err := gameserver.New(ctx, &serverConfig.Game, channels, recorders...)
	if err != nil {
		return err
	}

	web := serverConfig.Ingress.Web
	wsIngress := ingress.NewWSIngress(ingress.Settings{
		Description: serverConfig.Description,
		HelloRate:   web.HelloRate,
		HelloBurst:  web.HelloBurst,
	})

	go wsIngress.Forward(ctx, local.Subscribe())
	go ingress.ForwardEvents(ctx, wsIngress, "scene", server.Scene.Subscribe())
	go ingress.ForwardEvents(ctx, wsIngress, "capture", server.Captures.Subscribe())
	go ingress.ForwardEvents(ctx, wsIngress, "result", server.Results.Subscribe())

	go server.Poll(ctx)

	errc := make(chan error, 1)
	go func() {
		errc <- wsIngress.Serve(ctx, web.Port, web.Path)
	}()

	log.Info().
		Str("mode", server.Machine.Mode().String()).
		Str("level", server.Machine.Level()).
		Msg("match server started")

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt)

	select {
	case err := <-errc:
		log.Error().Err(err).Msg("failed to serve")
	case sig := <-sigs:
		log.Info().Msgf("terminating: %v", sig)
	}

	shutdown, done := context.WithTimeout(context.Background(), 5*time.Second)
	defer done()
	wsIngress.Shutdown(shutdown)
	server.Cancel()

	return nil
}
