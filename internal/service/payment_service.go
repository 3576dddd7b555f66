package service

import (
	"context"
	"fmt"
	"time"

	"github.com/khornSaokhouch/server/internal/config"
	"github.com/khornSaokhouch/server/internal/constants"
	"github.com/khornSaokhouch/server/internal/models"
	"github.com/khornSaokhouch/server/internal/payment/payway"
	"github.com/khornSaokhouch/server/internal/payment/stripe"
	"github.com/khornSaokhouch/server/internal/repository"

	"gorm.io/gorm"
)

// PaymentNotifier 支付事件通知出口
type PaymentNotifier interface {
	NotifyPaymentSucceeded(payment *models.Payment, order *models.Order)
}

// PaymentService 支付下单与对账
type PaymentService struct {
	db          *gorm.DB
	paymentRepo repository.PaymentRepository
	orderRepo   repository.OrderRepository
	paywayCfg      *payway.Config // nil 表示网关未启用
	stripeCfg      *stripe.Config
	stripeCurrency string
	notifier       PaymentNotifier
	expireAfter    time.Duration

	// 网关出口函数，测试时替换为桩
	qrGenerate    func(ctx context.Context, cfg *payway.Config, tranID string, input payway.QRInput) (*payway.QRResult, error)
	qrCheck       func(ctx context.Context, cfg *payway.Config, tranID string) (*payway.CheckResult, error)
	stripeIntent  func(ctx context.Context, cfg *stripe.Config, input stripe.IntentInput) (*stripe.IntentResult, error)
	stripeSession func(ctx context.Context, cfg *stripe.Config, input stripe.SessionInput) (*stripe.SessionResult, error)
	stripeQuery   func(ctx context.Context, cfg *stripe.Config, providerRef string) (*stripe.QueryResult, error)
	now           func() time.Time
	newTranID     func(now time.Time) string
	expireEnqueue func(paymentID uint, delay time.Duration) error
}

// NewPaymentService 创建支付服务
func NewPaymentService(
	db *gorm.DB,
	paymentRepo repository.PaymentRepository,
	orderRepo repository.OrderRepository,
	cfg *config.Config,
	notifier PaymentNotifier,
	expireEnqueue func(paymentID uint, delay time.Duration) error,
) *PaymentService {
	s := &PaymentService{
		db:            db,
		paymentRepo:   paymentRepo,
		orderRepo:     orderRepo,
		notifier:      notifier,
		expireAfter:   time.Duration(cfg.Order.PaymentExpireMinutes) * time.Minute,
		qrGenerate:    payway.GenerateQR,
		qrCheck:       payway.CheckTransaction,
		stripeIntent:  stripe.CreatePaymentIntent,
		stripeSession: stripe.CreateCheckoutSession,
		stripeQuery:   stripe.QueryPayment,
		now:           time.Now,
		newTranID:     payway.NewTranID,
		expireEnqueue: expireEnqueue,
	}
	if cfg.PayWay.Enabled {
		s.paywayCfg = buildPayWayConfig(cfg.PayWay)
	}
	if cfg.Stripe.Enabled {
		s.stripeCfg = buildStripeConfig(cfg.Stripe)
	}
	s.stripeCurrency = cfg.Stripe.Currency
	if s.stripeCurrency == "" {
		s.stripeCurrency = "USD"
	}
	return s
}

func buildPayWayConfig(c config.PayWayConfig) *payway.Config {
	cfg := &payway.Config{
		MerchantID:    c.MerchantID,
		HashKey:       c.HashKey,
		BaseURL:       c.BaseURL,
		CallbackURL:   c.CallbackURL,
		AndroidScheme: c.AndroidScheme,
		IOSScheme:     c.IOSScheme,
		Currency:      c.Currency,
		Lifetime:      c.LifetimeMin,
		TimeoutSec:    c.TimeoutSeconds,
	}
	cfg.Normalize()
	return cfg
}

func buildStripeConfig(c config.StripeConfig) *stripe.Config {
	cfg := &stripe.Config{
		SecretKey:               c.SecretKey,
		WebhookSecret:           c.WebhookSecret,
		APIBaseURL:              c.APIBase,
		SuccessURL:              c.SuccessURL,
		CancelURL:               c.CancelURL,
		WebhookToleranceSeconds: c.ToleranceSeconds,
		TimeoutSeconds:          c.TimeoutSeconds,
	}
	cfg.Normalize()
	return cfg
}

// QRPaymentResult KHQR 支付创建结果
type QRPaymentResult struct {
	Payment  *models.Payment `json:"payment"`
	TranID   string          `json:"tran_id"`
	QRString string          `json:"qr_string"`
	QRImage  string          `json:"qr_image"`
	Deeplink string          `json:"deeplink"`
}

// CreateQRPayment 为订单生成 ABA PayWay KHQR。
// 同一订单可重复发起，旧单通过延迟任务过期。
func (s *PaymentService) CreateQRPayment(ctx context.Context, userID, orderID uint) (*QRPaymentResult, error) {
	if s.paywayCfg == nil {
		return nil, fmt.Errorf("%w: payway", ErrGatewayDisabled)
	}
	if err := payway.ValidateConfig(s.paywayCfg); err != nil {
		return nil, fmt.Errorf("%w: payway", ErrGatewayDisabled)
	}

	order, err := s.payableOrder(userID, orderID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	tranID := s.newTranID(now)
	result, err := s.qrGenerate(ctx, s.paywayCfg, tranID, payway.QRInput{
		Amount: order.TotalCents.String(),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGatewayRequestFailed, err)
	}

	amount := order.TotalCents
	expiredAt := now.Add(s.expireAfter)
	payment := &models.Payment{
		UserID:      &userID,
		OrderID:     &orderID,
		Gateway:     constants.PaymentGatewayPayWay,
		GatewayRef:  tranID,
		Status:      constants.PaymentStatusInitiated,
		AmountCents: &amount,
		Currency:    s.paywayCfg.Currency,
		RawResponse: models.JSON{
			constants.RawKeyTranID:     tranID,
			constants.RawKeyQRResponse: result.Raw,
		},
		ExpiredAt: &expiredAt,
	}
	if err := s.paymentRepo.Create(payment); err != nil {
		return nil, err
	}

	if s.expireEnqueue != nil {
		if err := s.expireEnqueue(payment.ID, s.expireAfter); err != nil {
			// 过期兜底任务入队失败不阻断支付，留给查询路径收敛
			return &QRPaymentResult{
				Payment: payment, TranID: tranID,
				QRString: result.QRString, QRImage: result.QRImage, Deeplink: result.Deeplink,
			}, nil
		}
	}

	return &QRPaymentResult{
		Payment: payment, TranID: tranID,
		QRString: result.QRString, QRImage: result.QRImage, Deeplink: result.Deeplink,
	}, nil
}

// GetQRStatus 查询 KHQR 支付状态。
// 非终态时主动向网关查证，拉平回调丢失的情况。
func (s *PaymentService) GetQRStatus(ctx context.Context, userID uint, tranID string) (*models.Payment, error) {
	payment, err := s.paymentRepo.GetByGatewayRef(constants.PaymentGatewayPayWay, tranID)
	if err != nil {
		return nil, err
	}
	if payment == nil {
		return nil, ErrPaymentNotFound
	}
	if userID != 0 && payment.UserID != nil && *payment.UserID != userID {
		return nil, ErrPaymentNotFound
	}
	if payment.IsTerminal() || s.paywayCfg == nil {
		return payment, nil
	}

	check, err := s.qrCheck(ctx, s.paywayCfg, tranID)
	if err != nil {
		// 查证失败返回当前状态，下次查询重试
		return payment, nil
	}
	if check.Status == payway.StatusSuccess {
		if err := s.markPaid(payment, models.JSON{constants.RawKeyCheckResponse: check.Raw}); err != nil {
			return nil, err
		}
	}
	return s.paymentRepo.GetByID(payment.ID)
}

// StripeIntentResult PaymentIntent 创建结果
type StripeIntentResult struct {
	Payment      *models.Payment `json:"payment"`
	ClientSecret string          `json:"client_secret"`
}

// CreatePaymentIntent 为订单创建 Stripe PaymentIntent
func (s *PaymentService) CreatePaymentIntent(ctx context.Context, userID, orderID uint) (*StripeIntentResult, error) {
	if s.stripeCfg == nil {
		return nil, fmt.Errorf("%w: stripe", ErrGatewayDisabled)
	}
	order, err := s.payableOrder(userID, orderID)
	if err != nil {
		return nil, err
	}

	amount := order.TotalCents
	payment := &models.Payment{
		UserID:      &userID,
		OrderID:     &orderID,
		Gateway:     constants.PaymentGatewayStripe,
		Status:      constants.PaymentStatusInitiated,
		AmountCents: &amount,
		Currency:    s.stripeCurrency,
		RawResponse: models.JSON{},
	}
	if err := s.paymentRepo.Create(payment); err != nil {
		return nil, err
	}

	result, err := s.stripeIntent(ctx, s.stripeCfg, stripe.IntentInput{
		PaymentID:   payment.ID,
		OrderID:     orderID,
		AmountCents: amount.Cents(),
		Currency:    payment.Currency,
		Description: fmt.Sprintf("Order #%d", orderID),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGatewayRequestFailed, err)
	}

	payment.GatewayRef = result.PaymentIntentID
	payment.RawResponse = payment.RawResponse.Merge(models.JSON{constants.RawKeyIntent: result.Raw})
	if err := s.paymentRepo.Update(payment); err != nil {
		return nil, err
	}

	if s.expireEnqueue != nil {
		_ = s.expireEnqueue(payment.ID, s.expireAfter)
	}
	return &StripeIntentResult{Payment: payment, ClientSecret: result.ClientSecret}, nil
}

// StripeSessionResult Checkout Session 创建结果
type StripeSessionResult struct {
	Payment     *models.Payment `json:"payment"`
	CheckoutURL string          `json:"checkout_url"`
}

// CreateCheckoutSession 为订单创建 Stripe Checkout Session
func (s *PaymentService) CreateCheckoutSession(ctx context.Context, userID, orderID uint) (*StripeSessionResult, error) {
	if s.stripeCfg == nil {
		return nil, fmt.Errorf("%w: stripe", ErrGatewayDisabled)
	}
	order, err := s.payableOrder(userID, orderID)
	if err != nil {
		return nil, err
	}

	amount := order.TotalCents
	payment := &models.Payment{
		UserID:      &userID,
		OrderID:     &orderID,
		Gateway:     constants.PaymentGatewayStripe,
		Status:      constants.PaymentStatusInitiated,
		AmountCents: &amount,
		Currency:    s.stripeCurrency,
		RawResponse: models.JSON{},
	}
	if err := s.paymentRepo.Create(payment); err != nil {
		return nil, err
	}

	result, err := s.stripeSession(ctx, s.stripeCfg, stripe.SessionInput{
		PaymentID:   payment.ID,
		OrderID:     orderID,
		AmountCents: amount.Cents(),
		Currency:    payment.Currency,
		Description: fmt.Sprintf("Order #%d", orderID),
		SuccessURL:  s.stripeCfg.SuccessURL,
		CancelURL:   s.stripeCfg.CancelURL,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGatewayRequestFailed, err)
	}

	// webhook 以 payment_intent 为主键关联，落地前优先记 intent
	payment.GatewayRef = result.PaymentIntentID
	if payment.GatewayRef == "" {
		payment.GatewayRef = result.SessionID
	}
	payment.RawResponse = payment.RawResponse.Merge(models.JSON{constants.RawKeySession: result.Raw})
	if err := s.paymentRepo.Update(payment); err != nil {
		return nil, err
	}

	if s.expireEnqueue != nil {
		_ = s.expireEnqueue(payment.ID, s.expireAfter)
	}
	return &StripeSessionResult{Payment: payment, CheckoutURL: result.URL}, nil
}

// GetPayment 查询支付记录（校验归属）
func (s *PaymentService) GetPayment(paymentID, userID uint) (*models.Payment, error) {
	payment, err := s.paymentRepo.GetByID(paymentID)
	if err != nil {
		return nil, err
	}
	if payment == nil {
		return nil, ErrPaymentNotFound
	}
	if userID != 0 && (payment.UserID == nil || *payment.UserID != userID) {
		return nil, ErrPaymentNotFound
	}
	return payment, nil
}

// ListPayments 管理端支付列表
func (s *PaymentService) ListPayments(filter repository.PaymentListFilter) ([]models.Payment, int64, error) {
	return s.paymentRepo.ListAdmin(filter)
}

// ExpirePayment 将超时未支付的记录置为失败，终态不动
func (s *PaymentService) ExpirePayment(paymentID uint) error {
	payment, err := s.paymentRepo.GetByID(paymentID)
	if err != nil {
		return err
	}
	if payment == nil || payment.IsTerminal() {
		return nil
	}
	_, err = s.paymentRepo.Transition(paymentID, constants.PaymentStatusFailed, map[string]interface{}{
		"expired_at": s.now(),
	})
	return err
}

// payableOrder 校验订单可以发起支付
func (s *PaymentService) payableOrder(userID, orderID uint) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if userID != 0 && order.UserID != userID {
		return nil, ErrNotOrderOwner
	}
	if order.Status != constants.OrderStatusPending {
		return nil, fmt.Errorf("%w: order status %s", ErrOrderStatusInvalid, order.Status)
	}
	if order.TotalCents <= 0 {
		return nil, ErrPaymentAmountInvalid
	}
	return order, nil
}
