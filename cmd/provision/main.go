// Copyright (c) Stellio Hub
// SPDX-License-Identifier: Apache-2.0

// Package main provisions a sample Sensor entity in the configured context
// broker. Configuration is sourced from NGSILD_ environment variables.
package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/stellio-hub/ngsild/internal/env"
	"github.com/stellio-hub/ngsild/pkg/ngsild"
	"github.com/stellio-hub/ngsild/pkg/sdk"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	cfg := sdk.Config{}
	if err := env.Parse(&cfg); err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	cfg.Logger = logger

	entity, err := ngsild.NewEntity("urn:ngsi-ld:Sensor:001", "Sensor")
	if err != nil {
		logger.Error("failed to build entity", slog.Any("error", err))
		os.Exit(1)
	}

	temperature := ngsild.NewProperty("temperature", 21.5)
	temperature.SetUnitCode("CEL")
	temperature.SetObservedAt(time.Now())

	accuracy := ngsild.NewProperty("accuracy", 0.95)
	if err := temperature.Add(accuracy); err != nil {
		logger.Error("failed to compose attributes", slog.Any("error", err))
		os.Exit(1)
	}

	location, err := ngsild.NewGeoProperty("location", ngsild.Point(16.4077153, 39.2753478))
	if err != nil {
		logger.Error("failed to build geo property", slog.Any("error", err))
		os.Exit(1)
	}

	observedBy, err := ngsild.NewRelationship("isObservedBy", "urn:ngsi-ld:Station:042")
	if err != nil {
		logger.Error("failed to build relationship", slog.Any("error", err))
		os.Exit(1)
	}

	if err := entity.Add(temperature, location, observedBy); err != nil {
		logger.Error("failed to compose entity", slog.Any("error", err))
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	client := sdk.NewSDK(cfg)
	uri, sdkerr := client.CreateEntity(ctx, entity)
	if sdkerr != nil {
		logger.Error("failed to create entity", slog.Any("error", sdkerr))
		os.Exit(1)
	}

	logger.Info("entity created", slog.String("uri", uri))
}
