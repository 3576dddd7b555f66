package worker

import (
	"github.com/khornSaokhouch/server/internal/config"
	"github.com/khornSaokhouch/server/internal/logger"
	"github.com/khornSaokhouch/server/internal/queue"

	"github.com/hibiken/asynq"
)

// Server 异步任务消费端
type Server struct {
	server *asynq.Server
	mux    *asynq.ServeMux
}

// NewServer 创建消费端，队列未启用时返回 nil
func NewServer(cfg *config.QueueConfig, handlers *Handlers) *Server {
	if cfg == nil || !cfg.Enabled {
		return nil
	}
	opt, serverCfg := queue.BuildServerConfig(cfg)
	serverCfg.Logger = logger.SW("component", "asynq")

	mux := asynq.NewServeMux()
	handlers.Register(mux)

	return &Server{
		server: asynq.NewServer(opt, serverCfg),
		mux:    mux,
	}
}

// Start 启动消费循环
func (s *Server) Start() error {
	if s == nil {
		return nil
	}
	logger.Infow("worker_starting")
	return s.server.Start(s.mux)
}

// Shutdown 停止消费并等待在途任务完成
func (s *Server) Shutdown() {
	if s == nil {
		return
	}
	s.server.Shutdown()
	logger.Infow("worker_stopped")
}
