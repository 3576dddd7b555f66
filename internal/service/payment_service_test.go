package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/khornSaokhouch/server/internal/config"
	"github.com/khornSaokhouch/server/internal/constants"
	"github.com/khornSaokhouch/server/internal/models"
	"github.com/khornSaokhouch/server/internal/payment/payway"
	"github.com/khornSaokhouch/server/internal/payment/stripe"
	"github.com/khornSaokhouch/server/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

type paymentTestEnv struct {
	db       *gorm.DB
	svc      *PaymentService
	notifier *recordingNotifier
	user     *models.User
	order    *models.Order
	expires  []time.Duration
}

func setupPaymentServiceTest(t *testing.T) *paymentTestEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:payment_svc_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("打开测试数据库失败: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{}, &models.Shop{}, &models.Order{}, &models.OrderItem{}, &models.Payment{},
	); err != nil {
		t.Fatalf("迁移测试表失败: %v", err)
	}

	user := &models.User{Name: "payer", Email: "payer@example.com", Role: constants.UserRoleCustomer, IsActive: true}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("创建测试用户失败: %v", err)
	}
	order := &models.Order{
		UserID: user.ID, ShopID: 1, Status: constants.OrderStatusPending,
		SubtotalCents: 1250, TotalCents: 1250,
	}
	if err := db.Create(order).Error; err != nil {
		t.Fatalf("创建测试订单失败: %v", err)
	}

	cfg := &config.Config{}
	cfg.Order.PaymentExpireMinutes = 30
	cfg.PayWay = config.PayWayConfig{
		Enabled: true, MerchantID: "merchant01", HashKey: "hashkey",
		BaseURL: "https://checkout-sandbox.payway.com.kh", CallbackURL: "https://api.example.com/callback",
	}
	cfg.Stripe = config.StripeConfig{
		Enabled: true, SecretKey: "sk_test_1", WebhookSecret: "whsec_test", ToleranceSeconds: 300,
	}

	env := &paymentTestEnv{db: db, notifier: &recordingNotifier{}, user: user, order: order}
	env.svc = NewPaymentService(
		db,
		repository.NewPaymentRepository(db),
		repository.NewOrderRepository(db),
		cfg,
		env.notifier,
		func(_ uint, delay time.Duration) error {
			env.expires = append(env.expires, delay)
			return nil
		},
	)
	return env
}

func (env *paymentTestEnv) createQRPaymentRow(t *testing.T, tranID string) *models.Payment {
	t.Helper()
	amount := env.order.TotalCents
	payment := &models.Payment{
		UserID: &env.user.ID, OrderID: &env.order.ID,
		Gateway: constants.PaymentGatewayPayWay, GatewayRef: tranID,
		Status: constants.PaymentStatusInitiated, AmountCents: &amount, Currency: "USD",
		RawResponse: models.JSON{constants.RawKeyTranID: tranID},
	}
	if err := env.db.Create(payment).Error; err != nil {
		t.Fatalf("创建测试支付记录失败: %v", err)
	}
	return payment
}

func (env *paymentTestEnv) reloadPayment(t *testing.T, id uint) *models.Payment {
	t.Helper()
	var payment models.Payment
	if err := env.db.First(&payment, id).Error; err != nil {
		t.Fatalf("读取支付记录失败: %v", err)
	}
	return &payment
}

func (env *paymentTestEnv) reloadOrder(t *testing.T, id uint) *models.Order {
	t.Helper()
	var order models.Order
	if err := env.db.First(&order, id).Error; err != nil {
		t.Fatalf("读取订单失败: %v", err)
	}
	return &order
}

func TestCreateQRPaymentPersistsInitiated(t *testing.T) {
	env := setupPaymentServiceTest(t)
	env.svc.qrGenerate = func(_ context.Context, _ *payway.Config, tranID string, input payway.QRInput) (*payway.QRResult, error) {
		if input.Amount != "12.50" {
			t.Fatalf("金额 = %s, 期望 12.50", input.Amount)
		}
		return &payway.QRResult{
			TranID: tranID, QRString: "00020101021229190015khqr", QRImage: "base64img",
			Raw: map[string]interface{}{"status": map[string]interface{}{"code": "00"}},
		}, nil
	}

	result, err := env.svc.CreateQRPayment(context.Background(), env.user.ID, env.order.ID)
	if err != nil {
		t.Fatalf("创建 KHQR 支付失败: %v", err)
	}
	if result.TranID == "" || result.QRString == "" {
		t.Fatalf("二维码结果不完整: %+v", result)
	}

	payment := env.reloadPayment(t, result.Payment.ID)
	if payment.Status != constants.PaymentStatusInitiated {
		t.Fatalf("状态 = %s, 期望 initiated", payment.Status)
	}
	if payment.GatewayRef != result.TranID {
		t.Fatalf("网关引用 = %s, 期望 %s", payment.GatewayRef, result.TranID)
	}
	if payment.RawResponse[constants.RawKeyQRResponse] == nil {
		t.Fatalf("应保存二维码原始响应")
	}
	if len(env.expires) != 1 || env.expires[0] != 30*time.Minute {
		t.Fatalf("过期任务延迟 = %v, 期望 [30m]", env.expires)
	}
}

func TestCreateQRPaymentRejectsNonPendingOrder(t *testing.T) {
	env := setupPaymentServiceTest(t)
	if err := env.db.Model(env.order).Update("status", constants.OrderStatusPaid).Error; err != nil {
		t.Fatalf("更新订单状态失败: %v", err)
	}
	_, err := env.svc.CreateQRPayment(context.Background(), env.user.ID, env.order.ID)
	if !errors.Is(err, ErrOrderStatusInvalid) {
		t.Fatalf("err = %v, 期望 ErrOrderStatusInvalid", err)
	}
}

func TestHandleQRCallbackUnknownTranIgnored(t *testing.T) {
	env := setupPaymentServiceTest(t)

	result, err := env.svc.HandleQRCallback(context.Background(),
		[]byte(`{"tran_id":"20260828120000999","apv":"123","status":0}`))
	if err != nil {
		t.Fatalf("处理回调失败: %v", err)
	}
	if result != CallbackResultIgnored {
		t.Fatalf("结果 = %s, 期望 ignored", result)
	}

	var count int64
	if err := env.db.Model(&models.Payment{}).Count(&count).Error; err != nil {
		t.Fatalf("统计支付记录失败: %v", err)
	}
	if count != 0 {
		t.Fatalf("未知交易号不应产生支付记录")
	}
}

func TestHandleQRCallbackVerifiesAndMarksPaidOnce(t *testing.T) {
	env := setupPaymentServiceTest(t)
	payment := env.createQRPaymentRow(t, "20260828120000123")

	checkCalls := 0
	env.svc.qrCheck = func(_ context.Context, _ *payway.Config, tranID string) (*payway.CheckResult, error) {
		checkCalls++
		if tranID != payment.GatewayRef {
			t.Fatalf("查证交易号 = %s, 期望 %s", tranID, payment.GatewayRef)
		}
		return &payway.CheckResult{Status: payway.StatusSuccess, Raw: map[string]interface{}{"status": "00"}}, nil
	}

	body := []byte(`{"tran_id":"20260828120000123","apv":"123456","status":0}`)
	result, err := env.svc.HandleQRCallback(context.Background(), body)
	if err != nil {
		t.Fatalf("处理回调失败: %v", err)
	}
	if result != CallbackResultOK {
		t.Fatalf("结果 = %s, 期望 ok", result)
	}

	updated := env.reloadPayment(t, payment.ID)
	if updated.Status != constants.PaymentStatusPaid || updated.PaidAt == nil {
		t.Fatalf("支付未落定: status=%s paid_at=%v", updated.Status, updated.PaidAt)
	}
	if updated.RawResponse[constants.RawKeyCallback] == nil || updated.RawResponse[constants.RawKeyCheckResponse] == nil {
		t.Fatalf("回调与查证响应都应留痕: %v", updated.RawResponse)
	}
	order := env.reloadOrder(t, env.order.ID)
	if order.Status != constants.OrderStatusPaid || order.PaidAt == nil {
		t.Fatalf("订单未联动: status=%s", order.Status)
	}
	if env.notifier.paid != 1 {
		t.Fatalf("成功通知次数 = %d, 期望 1", env.notifier.paid)
	}

	// 重放回调：状态与通知都不应再变
	if _, err := env.svc.HandleQRCallback(context.Background(), body); err != nil {
		t.Fatalf("重放回调失败: %v", err)
	}
	if env.notifier.paid != 1 {
		t.Fatalf("重放不应重复通知, 次数 = %d", env.notifier.paid)
	}
	replayed := env.reloadPayment(t, payment.ID)
	if replayed.Status != constants.PaymentStatusPaid {
		t.Fatalf("重放后状态 = %s, 期望 paid", replayed.Status)
	}
}

func TestHandleQRCallbackSecondPaymentSameOrderRejected(t *testing.T) {
	env := setupPaymentServiceTest(t)
	first := env.createQRPaymentRow(t, "20260828130000111")
	second := env.createQRPaymentRow(t, "20260828130000222")

	env.svc.qrCheck = func(_ context.Context, _ *payway.Config, _ string) (*payway.CheckResult, error) {
		return &payway.CheckResult{Status: payway.StatusSuccess, Raw: map[string]interface{}{"status": "00"}}, nil
	}

	if _, err := env.svc.HandleQRCallback(context.Background(),
		[]byte(`{"tran_id":"20260828130000111","status":0}`)); err != nil {
		t.Fatalf("处理首笔回调失败: %v", err)
	}
	if _, err := env.svc.HandleQRCallback(context.Background(),
		[]byte(`{"tran_id":"20260828130000222","status":0}`)); err != nil {
		t.Fatalf("处理次笔回调失败: %v", err)
	}

	// 同一订单只允许一笔 paid，后到的一笔转 failed
	if got := env.reloadPayment(t, first.ID); got.Status != constants.PaymentStatusPaid {
		t.Fatalf("首笔状态 = %s, 期望 paid", got.Status)
	}
	settled := env.reloadPayment(t, second.ID)
	if settled.Status != constants.PaymentStatusFailed {
		t.Fatalf("次笔状态 = %s, 期望 failed", settled.Status)
	}
	if settled.RawResponse["conflict"] == nil {
		t.Fatalf("次笔应留痕冲突原因: %v", settled.RawResponse)
	}

	var paidCount int64
	if err := env.db.Model(&models.Payment{}).
		Where("order_id = ? AND status = ?", env.order.ID, constants.PaymentStatusPaid).
		Count(&paidCount).Error; err != nil {
		t.Fatalf("统计支付记录失败: %v", err)
	}
	if paidCount != 1 {
		t.Fatalf("paid 支付数 = %d, 期望 1", paidCount)
	}
	if env.notifier.paid != 1 {
		t.Fatalf("成功通知次数 = %d, 期望 1", env.notifier.paid)
	}
}

func TestHandleQRCallbackFailedCheck(t *testing.T) {
	env := setupPaymentServiceTest(t)
	payment := env.createQRPaymentRow(t, "20260828120000456")

	env.svc.qrCheck = func(_ context.Context, _ *payway.Config, _ string) (*payway.CheckResult, error) {
		return &payway.CheckResult{Status: "3", Raw: map[string]interface{}{"status": "3"}}, nil
	}

	result, err := env.svc.HandleQRCallback(context.Background(),
		[]byte(`{"tran_id":"20260828120000456","status":3}`))
	if err != nil {
		t.Fatalf("处理回调失败: %v", err)
	}
	if result != CallbackResultOK {
		t.Fatalf("结果 = %s, 期望 ok", result)
	}
	updated := env.reloadPayment(t, payment.ID)
	if updated.Status != constants.PaymentStatusFailed {
		t.Fatalf("状态 = %s, 期望 failed", updated.Status)
	}
	if env.notifier.paid != 0 {
		t.Fatalf("失败不应触发成功通知")
	}
	order := env.reloadOrder(t, env.order.ID)
	if order.Status != constants.OrderStatusPending {
		t.Fatalf("失败不应联动订单, 状态 = %s", order.Status)
	}
}

func stripeEventBody(t *testing.T, paymentID, orderID uint, eventType, intentID string) []byte {
	t.Helper()
	body, err := json.Marshal(map[string]interface{}{
		"id":   "evt_test_1",
		"type": eventType,
		"data": map[string]interface{}{
			"object": map[string]interface{}{
				"object":          "payment_intent",
				"id":              intentID,
				"amount":          1250,
				"amount_received": 1250,
				"currency":        "usd",
				"metadata": map[string]interface{}{
					"payment_id": fmt.Sprintf("%d", paymentID),
					"order_id":   fmt.Sprintf("%d", orderID),
				},
			},
		},
	})
	if err != nil {
		t.Fatalf("构造事件体失败: %v", err)
	}
	return body
}

func stripeSignedHeaders(secret string, at time.Time, body []byte) map[string]string {
	sig := stripe.ComputeSignature(secret, at.Unix(), body)
	return map[string]string{
		"Stripe-Signature": fmt.Sprintf("t=%d,v1=%s", at.Unix(), sig),
	}
}

func TestHandleStripeWebhookMarksPaid(t *testing.T) {
	env := setupPaymentServiceTest(t)
	amount := env.order.TotalCents
	payment := &models.Payment{
		UserID: &env.user.ID, OrderID: &env.order.ID,
		Gateway: constants.PaymentGatewayStripe, GatewayRef: "pi_test_1",
		Status: constants.PaymentStatusInitiated, AmountCents: &amount, Currency: "USD",
		RawResponse: models.JSON{},
	}
	if err := env.db.Create(payment).Error; err != nil {
		t.Fatalf("创建测试支付记录失败: %v", err)
	}

	body := stripeEventBody(t, payment.ID, env.order.ID, "payment_intent.succeeded", "pi_test_1")
	headers := stripeSignedHeaders("whsec_test", time.Now(), body)

	if err := env.svc.HandleStripeWebhook(context.Background(), headers, body); err != nil {
		t.Fatalf("处理 webhook 失败: %v", err)
	}

	updated := env.reloadPayment(t, payment.ID)
	if updated.Status != constants.PaymentStatusPaid || updated.PaidAt == nil {
		t.Fatalf("支付未落定: status=%s", updated.Status)
	}
	if updated.RawResponse[constants.RawKeyWebhook] == nil {
		t.Fatalf("应保存 webhook 原始事件")
	}
	order := env.reloadOrder(t, env.order.ID)
	if order.Status != constants.OrderStatusPaid {
		t.Fatalf("订单未联动: status=%s", order.Status)
	}
	if env.notifier.paid != 1 {
		t.Fatalf("成功通知次数 = %d, 期望 1", env.notifier.paid)
	}

	// 重放事件幂等
	if err := env.svc.HandleStripeWebhook(context.Background(), headers, body); err != nil {
		t.Fatalf("重放 webhook 失败: %v", err)
	}
	if env.notifier.paid != 1 {
		t.Fatalf("重放不应重复通知")
	}
}

func TestHandleStripeWebhookBadSignature(t *testing.T) {
	env := setupPaymentServiceTest(t)

	body := stripeEventBody(t, 1, env.order.ID, "payment_intent.succeeded", "pi_test_2")
	headers := stripeSignedHeaders("whsec_wrong", time.Now(), body)

	err := env.svc.HandleStripeWebhook(context.Background(), headers, body)
	if !errors.Is(err, ErrSignatureInvalid) {
		t.Fatalf("err = %v, 期望 ErrSignatureInvalid", err)
	}
}

func TestHandleStripeWebhookFailedEvent(t *testing.T) {
	env := setupPaymentServiceTest(t)
	amount := env.order.TotalCents
	payment := &models.Payment{
		UserID: &env.user.ID, OrderID: &env.order.ID,
		Gateway: constants.PaymentGatewayStripe, GatewayRef: "pi_test_3",
		Status: constants.PaymentStatusPending, AmountCents: &amount, Currency: "USD",
		RawResponse: models.JSON{},
	}
	if err := env.db.Create(payment).Error; err != nil {
		t.Fatalf("创建测试支付记录失败: %v", err)
	}

	body := stripeEventBody(t, payment.ID, env.order.ID, "payment_intent.payment_failed", "pi_test_3")
	headers := stripeSignedHeaders("whsec_test", time.Now(), body)

	if err := env.svc.HandleStripeWebhook(context.Background(), headers, body); err != nil {
		t.Fatalf("处理 webhook 失败: %v", err)
	}
	updated := env.reloadPayment(t, payment.ID)
	if updated.Status != constants.PaymentStatusFailed {
		t.Fatalf("状态 = %s, 期望 failed", updated.Status)
	}
	order := env.reloadOrder(t, env.order.ID)
	if order.Status != constants.OrderStatusPending {
		t.Fatalf("失败不应联动订单, 状态 = %s", order.Status)
	}
}

func TestExpirePaymentSkipsTerminal(t *testing.T) {
	env := setupPaymentServiceTest(t)
	payment := env.createQRPaymentRow(t, "20260828120000789")

	if err := env.svc.ExpirePayment(payment.ID); err != nil {
		t.Fatalf("过期处理失败: %v", err)
	}
	if got := env.reloadPayment(t, payment.ID); got.Status != constants.PaymentStatusFailed {
		t.Fatalf("状态 = %s, 期望 failed", got.Status)
	}

	paid := env.createQRPaymentRow(t, "20260828120000790")
	now := time.Now()
	if err := env.db.Model(paid).Updates(map[string]interface{}{
		"status": constants.PaymentStatusPaid, "paid_at": now,
	}).Error; err != nil {
		t.Fatalf("预置已支付状态失败: %v", err)
	}
	if err := env.svc.ExpirePayment(paid.ID); err != nil {
		t.Fatalf("过期处理失败: %v", err)
	}
	if got := env.reloadPayment(t, paid.ID); got.Status != constants.PaymentStatusPaid {
		t.Fatalf("终态被覆盖: %s", got.Status)
	}
}

func TestGetQRStatusVerifiesPending(t *testing.T) {
	env := setupPaymentServiceTest(t)
	payment := env.createQRPaymentRow(t, "20260828120000800")

	env.svc.qrCheck = func(_ context.Context, _ *payway.Config, _ string) (*payway.CheckResult, error) {
		return &payway.CheckResult{Status: payway.StatusSuccess, Raw: map[string]interface{}{"status": "00"}}, nil
	}

	got, err := env.svc.GetQRStatus(context.Background(), env.user.ID, payment.GatewayRef)
	if err != nil {
		t.Fatalf("查询状态失败: %v", err)
	}
	if got.Status != constants.PaymentStatusPaid {
		t.Fatalf("状态 = %s, 期望 paid", got.Status)
	}
	if env.notifier.paid != 1 {
		t.Fatalf("成功通知次数 = %d, 期望 1", env.notifier.paid)
	}
}
