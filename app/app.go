package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/joeshaw/envdecode"

	"pantryapp"
	"pantryapp/events"
	"pantryapp/pantry"
	"pantryapp/slack"
	"pantryapp/storage"
	"pantryapp/ui"
)

// Options are everything needed to assemble the pantry stack.
type Options struct {
	Store      pantryapp.StoreConfig
	Notify     pantryapp.NotifyConfig
	Telemetry  pantryapp.Telemetry
	TracerName string
	HTTPClient pantryapp.HTTPClient
}

// App holds the constructed store client and the adapter built on it.
type App struct {
	Collection storage.Collection
	Inventory  ui.Inventory
	Telemetry  pantryapp.Telemetry

	closers []func() error
}

// OptionsFromEnv decodes store and notification config from the environment.
func OptionsFromEnv() (Options, error) {
	var opts Options
	if err := envdecode.Decode(&opts.Store); err != nil {
		return Options{}, fmt.Errorf("decode store config: %w", err)
	}
	if err := envdecode.Decode(&opts.Notify); err != nil {
		return Options{}, fmt.Errorf("decode notify config: %w", err)
	}
	opts.Telemetry = pantryapp.NoopTelemetry()
	opts.HTTPClient = http.DefaultClient
	return opts, nil
}

// New opens the collection once and injects it into an instrumented adapter.
func New(ctx context.Context, opts Options) (*App, error) {
	if opts.Telemetry.TracerProvider == nil || opts.Telemetry.MeterProvider == nil {
		opts.Telemetry = pantryapp.NoopTelemetry()
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}

	collection, closeStore, err := storage.Open(ctx, opts.Store)
	if err != nil {
		return nil, err
	}
	a := &App{Collection: collection, Telemetry: opts.Telemetry, closers: []func() error{closeStore}}

	notifiers, err := a.notifiers(opts)
	if err != nil {
		a.Close()
		return nil, err
	}

	adapter := pantry.NewAdapter(collection, notifiers...)
	a.Inventory = pantry.NewInstrumentedAdapter(adapter,
		opts.Telemetry.TracerProvider.Tracer(opts.TracerName),
		opts.Telemetry.MeterProvider.Meter(opts.TracerName),
	)
	return a, nil
}

func (a *App) notifiers(opts Options) ([]pantry.Notifier, error) {
	var notifiers []pantry.Notifier

	if opts.Notify.SlackWebhookURL != "" {
		client := slack.NewClient(opts.Notify.SlackWebhookURL, opts.HTTPClient)
		notifiers = append(notifiers, slack.NewNotifier(client, opts.Notify.SlackChannel))
		slog.Info("SETUP: Slack change notifications enabled", "channel", opts.Notify.SlackChannel)
	}

	if opts.Notify.AMQPURL != "" {
		pub, err := events.NewPublisher(opts.Notify.AMQPURL, opts.Notify.AMQPExchange, opts.Store.Collection)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, pub.Close)
		notifiers = append(notifiers, pub)
	}

	return notifiers, nil
}

// NewController builds a controller over the app's inventory and mounts it.
func (a *App) NewController(ctx context.Context, logger pantryapp.ActionLogger) (*ui.Controller, error) {
	ctrl := ui.NewController(a.Inventory, logger)
	if err := ctrl.Mount(ctx); err != nil {
		return nil, fmt.Errorf("initial refresh: %w", err)
	}
	return ctrl, nil
}

// Close releases the store and notifier connections, newest first.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	a.closers = nil
	return errors.Join(errs...)
}
