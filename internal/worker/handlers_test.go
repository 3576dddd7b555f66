package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/khornSaokhouch/server/internal/models"
	"github.com/khornSaokhouch/server/internal/push"
	"github.com/khornSaokhouch/server/internal/queue"
	"github.com/khornSaokhouch/server/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/hibiken/asynq"
	"gorm.io/gorm"
)

func setupHandlersTest(t *testing.T, fcmResponse string) (*Handlers, repository.DeviceTokenRepository, *int) {
	t.Helper()

	dsn := fmt.Sprintf("file:worker_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("打开测试数据库失败: %v", err)
	}
	if err := db.AutoMigrate(&models.DeviceToken{}, &models.Shop{}); err != nil {
		t.Fatalf("迁移测试表失败: %v", err)
	}

	calls := 0
	fcm := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, fcmResponse)
	}))
	t.Cleanup(fcm.Close)

	sender, err := push.NewSender(push.Config{Endpoint: fcm.URL, ServerKey: "test-key"})
	if err != nil {
		t.Fatalf("创建推送客户端失败: %v", err)
	}

	tokenRepo := repository.NewDeviceTokenRepository(db)
	shopRepo := repository.NewShopRepository(db)
	return NewHandlers(sender, nil, tokenRepo, shopRepo, nil), tokenRepo, &calls
}

func TestHandleOrderStatusPushPrunesInvalidTokens(t *testing.T) {
	resp := `{"success":1,"failure":1,"results":[{},{"error":"NotRegistered"}]}`
	handlers, tokenRepo, calls := setupHandlersTest(t, resp)

	if err := tokenRepo.Upsert(&models.DeviceToken{UserID: 7, Token: "tok-live", Platform: "ios"}); err != nil {
		t.Fatalf("写入令牌失败: %v", err)
	}
	if err := tokenRepo.Upsert(&models.DeviceToken{UserID: 7, Token: "tok-dead", Platform: "android"}); err != nil {
		t.Fatalf("写入令牌失败: %v", err)
	}

	task, err := queue.NewOrderStatusPushTask(queue.OrderStatusPushPayload{OrderID: 1, UserID: 7, Status: "preparing"})
	if err != nil {
		t.Fatalf("创建任务失败: %v", err)
	}
	if err := handlers.HandleOrderStatusPush(context.Background(), task); err != nil {
		t.Fatalf("处理任务失败: %v", err)
	}
	if *calls != 1 {
		t.Fatalf("推送请求次数 want 1 got %d", *calls)
	}

	tokens, err := tokenRepo.ListTokensByUser(7)
	if err != nil {
		t.Fatalf("查询令牌失败: %v", err)
	}
	if len(tokens) != 1 || tokens[0] != "tok-live" {
		t.Fatalf("失效令牌应被清理, got %v", tokens)
	}
}

func TestHandleOrderStatusPushNoTokensSkipsSend(t *testing.T) {
	handlers, _, calls := setupHandlersTest(t, `{"success":0,"failure":0,"results":[]}`)

	task, err := queue.NewOrderStatusPushTask(queue.OrderStatusPushPayload{OrderID: 1, UserID: 99, Status: "ready"})
	if err != nil {
		t.Fatalf("创建任务失败: %v", err)
	}
	if err := handlers.HandleOrderStatusPush(context.Background(), task); err != nil {
		t.Fatalf("处理任务失败: %v", err)
	}
	if *calls != 0 {
		t.Fatalf("无令牌时不应请求推送服务, got %d", *calls)
	}
}

func TestHandleOrderStatusPushBadPayload(t *testing.T) {
	handlers, _, _ := setupHandlersTest(t, `{}`)

	// 载荷损坏时应返回错误而不是 panic
	raw, _ := json.Marshal("not-an-object")
	task := asynq.NewTask(queue.TaskOrderStatusPush, raw)
	if err := handlers.HandleOrderStatusPush(context.Background(), task); err == nil {
		t.Fatalf("损坏载荷应返回错误")
	}
}
