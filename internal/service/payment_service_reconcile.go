package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/khornSaokhouch/server/internal/constants"
	"github.com/khornSaokhouch/server/internal/logger"
	"github.com/khornSaokhouch/server/internal/models"
	"github.com/khornSaokhouch/server/internal/payment/payway"
	"github.com/khornSaokhouch/server/internal/payment/stripe"

	"gorm.io/gorm"
)

// 回调处理结果，handler 原样回给网关
const (
	CallbackResultOK      = "ok"
	CallbackResultIgnored = "ignored"
)

// HandleQRCallback 处理 ABA PayWay 异步回调。
// 回调本身不可信，落库后必须向网关查证再定终态；
// 未知交易号返回 ignored，网关不会重试。
func (s *PaymentService) HandleQRCallback(ctx context.Context, body []byte) (string, error) {
	cb, err := payway.ParseCallback(body)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrWebhookInvalid, err)
	}

	payment, err := s.paymentRepo.GetByGatewayRef(constants.PaymentGatewayPayWay, cb.TranID)
	if err != nil {
		return "", err
	}
	if payment == nil {
		logger.Warnw("payway_callback_unknown_tran", "tran_id", cb.TranID)
		return CallbackResultIgnored, nil
	}

	var rawCallback map[string]interface{}
	if err := json.Unmarshal(body, &rawCallback); err != nil {
		rawCallback = map[string]interface{}{"raw": string(body)}
	}
	now := s.now()

	if payment.IsTerminal() {
		// 终态后的重复回调只追加留痕
		_ = s.appendRaw(payment, models.JSON{constants.RawKeyCallback: rawCallback})
		return CallbackResultOK, nil
	}

	if _, err := s.paymentRepo.Transition(payment.ID, constants.PaymentStatusPending, map[string]interface{}{
		"callback_at":  now,
		"raw_response": payment.RawResponse.Merge(models.JSON{constants.RawKeyCallback: rawCallback}),
	}); err != nil {
		return "", err
	}

	if s.paywayCfg == nil {
		return CallbackResultOK, nil
	}
	check, err := s.qrCheck(ctx, s.paywayCfg, cb.TranID)
	if err != nil {
		// 查证失败保持 pending，状态查询路径会再次查证
		logger.Errorw("payway_check_transaction_failed", "tran_id", cb.TranID, "error", err)
		return CallbackResultOK, nil
	}

	payment, err = s.paymentRepo.GetByID(payment.ID)
	if err != nil || payment == nil {
		return "", ErrPaymentNotFound
	}
	if check.Status == payway.StatusSuccess {
		if err := s.markPaid(payment, models.JSON{constants.RawKeyCheckResponse: check.Raw}); err != nil {
			return "", err
		}
	} else {
		if err := s.markFailed(payment, models.JSON{constants.RawKeyCheckResponse: check.Raw}); err != nil {
			return "", err
		}
	}
	return CallbackResultOK, nil
}

// HandleStripeWebhook 处理 Stripe webhook。
// 验签失败必须拒收，其余未知事件返回 nil 让网关停止重试。
func (s *PaymentService) HandleStripeWebhook(ctx context.Context, headers map[string]string, body []byte) error {
	if s.stripeCfg == nil {
		return fmt.Errorf("%w: stripe", ErrGatewayDisabled)
	}

	event, err := stripe.VerifyAndParseWebhook(s.stripeCfg, headers, body, s.now())
	if err != nil {
		if errors.Is(err, stripe.ErrSignatureInvalid) {
			return fmt.Errorf("%w: %v", ErrSignatureInvalid, err)
		}
		return fmt.Errorf("%w: %v", ErrWebhookInvalid, err)
	}
	if event.Status == "" {
		logger.Debugw("stripe_webhook_event_skipped", "event_type", event.EventType)
		return nil
	}

	payment, err := s.lookupStripePayment(event)
	if err != nil {
		return err
	}
	if payment == nil {
		logger.Warnw("stripe_webhook_unknown_payment",
			"event_type", event.EventType, "provider_ref", event.ProviderRef)
		return nil
	}

	raw := models.JSON{constants.RawKeyWebhook: event.Raw}
	if payment.IsTerminal() {
		_ = s.appendRaw(payment, raw)
		return nil
	}

	// session 创建时只有 session id，intent 出现后换成稳定引用
	if event.PaymentIntentID != "" && payment.GatewayRef != event.PaymentIntentID {
		payment.GatewayRef = event.PaymentIntentID
	}

	switch event.Status {
	case constants.PaymentStatusPaid:
		return s.markPaid(payment, raw)
	case constants.PaymentStatusFailed:
		return s.markFailed(payment, raw)
	default:
		_, err := s.paymentRepo.Transition(payment.ID, constants.PaymentStatusPending, map[string]interface{}{
			"gateway_ref":  payment.GatewayRef,
			"raw_response": payment.RawResponse.Merge(raw),
		})
		return err
	}
}

// lookupStripePayment 依次用 metadata、payment_intent、session id 定位支付单
func (s *PaymentService) lookupStripePayment(event *stripe.WebhookResult) (*models.Payment, error) {
	if event.PaymentID != 0 {
		payment, err := s.paymentRepo.GetByID(event.PaymentID)
		if err != nil {
			return nil, err
		}
		if payment != nil && payment.Gateway == constants.PaymentGatewayStripe {
			return payment, nil
		}
	}
	for _, ref := range []string{event.PaymentIntentID, event.SessionID, event.ProviderRef} {
		if ref == "" {
			continue
		}
		payment, err := s.paymentRepo.GetByGatewayRef(constants.PaymentGatewayStripe, ref)
		if err != nil {
			return nil, err
		}
		if payment != nil {
			return payment, nil
		}
	}
	return nil, nil
}

// errOrderAlreadySettled 订单未能 pending→paid，本笔不得落定成功
var errOrderAlreadySettled = errors.New("order already settled")

// markPaid 原子落定支付成功并联动订单，重复调用只生效一次。
// 同一订单只允许一笔支付落定 paid：订单 pending→paid 翻不动时
// 整笔事务回滚，本笔转为 failed，成功副作用一律不触发。
// 副作用（推送、告警）仅在状态真正翻转时触发，且在事务提交之后。
func (s *PaymentService) markPaid(payment *models.Payment, raw models.JSON) error {
	now := s.now()
	applied := false
	err := s.db.Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"paid_at":      now,
			"gateway_ref":  payment.GatewayRef,
			"raw_response": payment.RawResponse.Merge(raw),
		}
		ok, err := s.paymentRepo.WithTx(tx).Transition(payment.ID, constants.PaymentStatusPaid, updates)
		if err != nil {
			return err
		}
		applied = ok
		if !ok || payment.OrderID == nil {
			return nil
		}
		orderOK, err := s.orderRepo.WithTx(tx).UpdateStatus(
			*payment.OrderID, constants.OrderStatusPending, constants.OrderStatusPaid,
			map[string]interface{}{"paid_at": now},
		)
		if err != nil {
			return err
		}
		if !orderOK {
			return errOrderAlreadySettled
		}
		return nil
	})
	if errors.Is(err, errOrderAlreadySettled) {
		logger.Warnw("payment_paid_conflict",
			"payment_id", payment.ID, "order_id", *payment.OrderID,
			"gateway", payment.Gateway, "gateway_ref", payment.GatewayRef)
		return s.markFailed(payment, raw.Merge(models.JSON{"conflict": "order_already_settled"}))
	}
	if err != nil {
		return err
	}
	if !applied {
		return nil
	}

	logger.Infow("payment_marked_paid",
		"payment_id", payment.ID, "gateway", payment.Gateway, "gateway_ref", payment.GatewayRef)

	if s.notifier != nil {
		var order *models.Order
		if payment.OrderID != nil {
			order, _ = s.orderRepo.GetByID(*payment.OrderID)
		}
		fresh, _ := s.paymentRepo.GetByID(payment.ID)
		if fresh == nil {
			fresh = payment
		}
		s.notifier.NotifyPaymentSucceeded(fresh, order)
	}
	return nil
}

// markFailed 落定支付失败，终态不覆盖
func (s *PaymentService) markFailed(payment *models.Payment, raw models.JSON) error {
	applied, err := s.paymentRepo.Transition(payment.ID, constants.PaymentStatusFailed, map[string]interface{}{
		"gateway_ref":  payment.GatewayRef,
		"raw_response": payment.RawResponse.Merge(raw),
	})
	if err != nil {
		return err
	}
	if applied {
		logger.Infow("payment_marked_failed",
			"payment_id", payment.ID, "gateway", payment.Gateway, "gateway_ref", payment.GatewayRef)
	}
	return nil
}

// appendRaw 终态后的留痕追加，不走状态机
func (s *PaymentService) appendRaw(payment *models.Payment, raw models.JSON) error {
	payment.RawResponse = payment.RawResponse.Merge(raw)
	return s.paymentRepo.Update(payment)
}
