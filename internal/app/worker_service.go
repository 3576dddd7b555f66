package app

import (
	"context"
	"errors"

	"github.com/khornSaokhouch/server/internal/worker"
)

// WorkerService 异步任务消费服务封装
type WorkerService struct {
	server *worker.Server
}

// NewWorkerService 封装 worker 消费端为可运行服务
func NewWorkerService(server *worker.Server) *WorkerService {
	return &WorkerService{server: server}
}

// Name 服务名称
func (s *WorkerService) Name() string {
	return "worker"
}

// Start 启动消费端；asynq 的 Start 不阻塞，这里等待上下文结束
func (s *WorkerService) Start(ctx context.Context) error {
	if s == nil || s.server == nil {
		return errors.New("worker server not initialized")
	}
	if err := s.server.Start(); err != nil {
		return err
	}
	<-ctx.Done()
	return nil
}

// Stop 停止消费并等待在途任务完成
func (s *WorkerService) Stop(ctx context.Context) error {
	if s == nil || s.server == nil {
		return nil
	}
	s.server.Shutdown()
	return nil
}
