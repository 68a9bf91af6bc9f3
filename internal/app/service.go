// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/relabs-tech/racecam/internal/capture"
	"github.com/relabs-tech/racecam/internal/config"
	"github.com/relabs-tech/racecam/internal/course"
	"github.com/relabs-tech/racecam/internal/display"
	"github.com/relabs-tech/racecam/internal/drain"
	"github.com/relabs-tech/racecam/internal/gps"
	"github.com/relabs-tech/racecam/internal/publish"
	"github.com/relabs-tech/racecam/internal/store"
	"github.com/relabs-tech/racecam/internal/telemetry"
	"github.com/relabs-tech/racecam/internal/web"
)

// restartDelay is the pause before a failed background task is restarted.
const restartDelay = 5 * time.Second

// Service owns every long-lived handle of the camera and the loops that use
// them.
type Service struct {
	cfg    *config.Config
	logger *slog.Logger

	rdb     *redis.Client
	course  *course.Course
	queue   *store.MediaQueue
	state   *store.StateStore
	tracker *gps.Tracker
	hub     *web.Hub

	mqtt      mqtt.Client
	telemetry *telemetry.Publisher

	modem   *gps.Modem
	stream  *gps.StreamReader
	source  gps.Source
	display *display.Device

	drainer  *drain.Drainer
	pipeline *capture.Pipeline
	watcher  *capture.Watcher
}

// New loads the course, connects to Redis and, in production, opens the
// hardware. Close releases everything New opened.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Service, error) {
	s := &Service{cfg: cfg, logger: logger, hub: web.NewHub(logger)}
	if err := s.init(ctx); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

func (s *Service) init(ctx context.Context) error {
	cfg := s.cfg

	c, err := course.Load(cfg.CourseFile, course.LoadOptions{
		OffRouteRadiusM: cfg.OffRouteRadiusM,
		WaypointRadiusM: cfg.WaypointRadiusM,
	})
	if err != nil {
		return err
	}
	s.course = c
	s.logger.Info("course loaded", "name", c.Name, "length_km", c.LengthKm(), "waypoints", len(c.Waypoints))

	s.rdb, err = store.Connect(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		return err
	}
	s.queue = store.NewMediaQueue(s.rdb)
	s.state = store.NewStateStore(s.rdb)

	captionOpts := course.CaptionOptions{ProgressDivisorKm: cfg.ProgressDivisorKm}
	if err := captionOpts.Validate(); err != nil {
		return err
	}
	s.tracker = gps.NewTracker(c, captionOpts)
	s.tracker.AddHandler(s.onFix)

	if cfg.MQTTBroker != "" {
		s.mqtt, err = telemetry.Connect(cfg.MQTTBroker, cfg.MQTTClientID)
		if err != nil {
			// telemetry is optional; the camera works without it
			s.logger.Warn("telemetry disabled", "err", err)
		} else {
			s.telemetry = telemetry.NewPublisher(s.mqtt, telemetry.Topics{GPS: cfg.TopicGPS, Queue: cfg.TopicQueue}, s.logger)
			s.logger.Info("connected to MQTT broker", "broker", cfg.MQTTBroker)
		}
	}

	if err := s.initPosition(ctx); err != nil {
		return err
	}

	var publisher publish.Publisher = publish.LogPublisher{Logger: s.logger, Suffix: cfg.CaptionSuffix}
	if cfg.Production() {
		publisher = publish.NewClient(cfg.SocialBaseURL, cfg.SocialAccessToken, cfg.CaptionSuffix)
	}
	s.drainer = drain.New(s.queue, publisher, drain.NewDNSProber(cfg.ProbeHost, cfg.ProbeTimeout), s.logger, drain.Options{
		Interval:       cfg.DrainInterval,
		PublishTimeout: cfg.PublishTimeout,
		KeepFiles:      !cfg.Production(),
		OnPublished:    s.onPublished,
	})

	var resizer *capture.Resizer
	if cfg.ResizeMaxDimension > 0 {
		resizer = capture.NewResizer(cfg.ResizeMaxDimension, cfg.ResizeJPEGQuality)
	}
	s.pipeline = capture.NewPipeline(s.queue, s.source, s.logger, capture.Options{
		Extensions: cfg.WatchExtensions,
		Resizer:    resizer,
		OnQueued:   s.onQueued,
	})
	s.watcher = capture.NewWatcher(cfg.WatchDir, cfg.WatchSettle, s.logger)

	if cfg.Production() && cfg.DisplayEnabled {
		if s.display, err = display.Open(); err != nil {
			s.logger.Warn("display disabled", "err", err)
		}
	}
	return nil
}

// initPosition picks the position source. Outside production no serial
// port is touched: the stream reader is never created and the polling
// source answers "no fix" at once. A modem that fails to open is logged and
// treated the same way.
func (s *Service) initPosition(ctx context.Context) error {
	cfg := s.cfg

	if cfg.Production() {
		modem, err := gps.OpenModem(cfg.ModemSerialPort, cfg.ModemBaudRate, cfg.ModemReadTimeout)
		switch {
		case err != nil:
			// captures still queue, without captions when no fix arrives
			s.logger.Error("modem unavailable, GNSS not activated", "port", cfg.ModemSerialPort, "err", err)
		default:
			s.modem = modem
			if err := modem.Activate(ctx); err != nil {
				// the receiver may still come up; polls and the stream will tell
				s.logger.Warn("GNSS activation failed", "err", err)
			} else {
				s.logger.Info("GNSS engine active", "port", cfg.ModemSerialPort)
			}
		}
	}

	switch cfg.GPSMode {
	case config.GPSModePoll:
		s.source = gps.NewPollingSource(s.modem, s.tracker)
	default:
		// the last streamed fix lives in Redis so a restart keeps it
		s.source = s.state
		s.tracker.AddHandler(func(ctx context.Context, fix gps.Fix) {
			if err := s.state.SaveFix(ctx, fix); err != nil {
				s.logger.Warn("saving fix failed", "err", err)
			}
		})
		if cfg.Production() {
			s.stream = gps.NewStreamReader(cfg.GPSSerialPort, cfg.GPSBaudRate, s.logger, func(ctx context.Context, fix gps.Fix) {
				s.tracker.Update(ctx, fix)
			})
		}
	}
	return nil
}

// Run starts every loop and blocks until ctx is cancelled.
func (s *Service) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return s.supervise(ctx, "watcher", func(ctx context.Context) error {
			return s.watcher.Run(ctx, s.handleEvent)
		})
	})
	g.Go(func() error {
		return s.drainer.Run(ctx)
	})

	if s.stream != nil {
		g.Go(func() error {
			return s.supervise(ctx, "gps stream", s.stream.Run)
		})
	}
	if s.cfg.WebServerAddr != "" {
		srv := web.NewServer(s.tracker, s.queue, func() string { return s.drainer.State().String() }, s.hub, s.logger)
		g.Go(func() error {
			return s.supervise(ctx, "web server", func(ctx context.Context) error {
				return srv.ListenAndServe(ctx, s.cfg.WebServerAddr)
			})
		})
	}
	if s.display != nil {
		d := display.New(s.display, s.cfg.DisplayUpdateInterval, s.displayStatus, s.logger)
		g.Go(func() error {
			return d.Run(ctx)
		})
	}

	s.logger.Info("racecam running", "env", s.cfg.Env, "gps_mode", s.cfg.GPSMode, "watch_dir", s.cfg.WatchDir)
	return g.Wait()
}

// supervise runs fn until ctx ends, restarting it after restartDelay when
// it fails. Hardware hiccups must not take the whole camera down.
func (s *Service) supervise(ctx context.Context, name string, fn func(context.Context) error) error {
	for {
		err := fn(ctx)
		if ctx.Err() != nil {
			return nil
		}
		if err == nil {
			err = errors.New("stopped unexpectedly")
		}
		s.logger.Error(name+" failed, restarting", "err", err, "delay", restartDelay)

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(restartDelay):
		}
	}
}

func (s *Service) handleEvent(ctx context.Context, ev capture.Event) {
	if err := s.pipeline.Handle(ctx, ev); err != nil {
		s.logger.Error("capture failed", "path", ev.Path, "err", err)
	}
}

func (s *Service) onFix(_ context.Context, fix gps.Fix) {
	s.hub.Broadcast(web.Message{Type: "fix", Data: fix})
	if s.telemetry != nil {
		s.telemetry.PublishFix(fix)
	}
}

func (s *Service) onQueued(_ context.Context, path string, fix gps.Fix) {
	ev := telemetry.QueueEvent{Type: "queued", Path: path, Caption: fix.Caption, At: time.Now().UnixMilli()}
	s.hub.Broadcast(web.Message{Type: ev.Type, Data: ev})
	if s.telemetry != nil {
		s.telemetry.PublishQueueEvent(ev)
	}
}

func (s *Service) onPublished(_ context.Context, path, caption string) {
	ev := telemetry.QueueEvent{Type: "published", Path: path, Caption: caption, At: time.Now().UnixMilli()}
	s.hub.Broadcast(web.Message{Type: ev.Type, Data: ev})
	if s.telemetry != nil {
		s.telemetry.PublishQueueEvent(ev)
	}
}

func (s *Service) displayStatus(ctx context.Context) display.Status {
	st := display.Status{Drainer: s.drainer.State().String()}
	st.Fix, st.HaveFix = s.tracker.Latest()
	if n, err := s.queue.Len(ctx); err == nil {
		st.Pending = n
	}
	return st
}

// Close releases all handles. It is safe on a partially built Service.
func (s *Service) Close() error {
	var errs []error
	if s.display != nil {
		errs = append(errs, s.display.Close())
	}
	if s.modem != nil {
		errs = append(errs, s.modem.Close())
	}
	if s.telemetry != nil {
		s.telemetry.Flush()
	}
	if s.mqtt != nil {
		s.mqtt.Disconnect(250)
	}
	if s.rdb != nil {
		errs = append(errs, s.rdb.Close())
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("close: %w", err)
	}
	return nil
}

// Run builds the service from cfg and runs it until ctx is cancelled.
func Run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	s, err := New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer s.Close()
	return s.Run(ctx)
}
