package app

import (
	"errors"

	"github.com/khornSaokhouch/server/internal/cache"
	"github.com/khornSaokhouch/server/internal/config"
	"github.com/khornSaokhouch/server/internal/logger"
	"github.com/khornSaokhouch/server/internal/provider"
	"github.com/khornSaokhouch/server/internal/router"
	"github.com/khornSaokhouch/server/internal/worker"
)

// BuildRunner 构建服务运行器
func BuildRunner(cfg *config.Config, mode string) (*Runner, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}

	container := provider.NewContainer(cfg)

	var services []Service

	if mode == ModeAll || mode == ModeAPI {
		engine := router.SetupRouter(cfg, container)
		addr := cfg.Server.Host + ":" + cfg.Server.Port
		services = append(services, NewHTTPService(addr, engine))
	}

	if mode == ModeAll || mode == ModeWorker {
		handlers := worker.NewHandlers(
			container.PushSender,
			container.Telegram,
			container.DeviceTokenRepo,
			container.ShopRepo,
			container.PaymentService,
		)
		server := worker.NewServer(&cfg.Queue, handlers)
		if server != nil {
			services = append(services, NewWorkerService(server))
		} else if mode == ModeWorker {
			return nil, errors.New("queue disabled, worker mode unavailable")
		} else {
			logger.Warnw("queue_disabled_worker_skipped")
		}
	}

	if len(services) == 0 {
		return nil, errors.New("no services initialized (check mode and config)")
	}

	return NewRunner(services...), nil
}

// Run 应用启动入口
func Run(opts Options) error {
	opts = normalizeOptions(opts)
	if opts.Config == nil {
		return errors.New("config is nil")
	}

	runner, err := BuildRunner(opts.Config, opts.Mode)
	if err != nil {
		return err
	}

	addr := opts.Config.Server.Host + ":" + opts.Config.Server.Port
	opts.Logger.Infow("app_start", "addr", addr, "mode", opts.Mode)
	runErr := RunWithOptions(runner, opts)
	if err := cache.Close(); err != nil {
		opts.Logger.Warnw("redis_close_failed", "error", err)
	}
	return runErr
}
