package repository

import (
	"fmt"
	"testing"
	"time"

	"github.com/khornSaokhouch/server/internal/constants"
	"github.com/khornSaokhouch/server/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupPaymentRepositoryTest(t *testing.T) *GormPaymentRepository {
	t.Helper()

	dsn := fmt.Sprintf("file:payment_repo_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Payment{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	return NewPaymentRepository(db)
}

func TestPaymentTransitionCAS(t *testing.T) {
	repo := setupPaymentRepositoryTest(t)

	payment := &models.Payment{
		Gateway:    constants.PaymentGatewayPayWay,
		GatewayRef: "20260828120000123",
		Status:     constants.PaymentStatusInitiated,
		RawResponse: models.JSON{
			constants.RawKeyTranID: "20260828120000123",
		},
	}
	if err := repo.Create(payment); err != nil {
		t.Fatalf("create payment failed: %v", err)
	}

	applied, err := repo.Transition(payment.ID, constants.PaymentStatusPending, nil)
	if err != nil {
		t.Fatalf("transition to pending failed: %v", err)
	}
	if !applied {
		t.Fatalf("expected pending transition to apply")
	}

	now := time.Now()
	applied, err = repo.Transition(payment.ID, constants.PaymentStatusPaid, map[string]interface{}{
		"paid_at": &now,
	})
	if err != nil {
		t.Fatalf("transition to paid failed: %v", err)
	}
	if !applied {
		t.Fatalf("expected paid transition to apply")
	}

	// 终态不可被覆盖
	applied, err = repo.Transition(payment.ID, constants.PaymentStatusFailed, nil)
	if err != nil {
		t.Fatalf("transition after terminal failed: %v", err)
	}
	if applied {
		t.Fatalf("terminal status must not be overwritten")
	}

	reloaded, err := repo.GetByID(payment.ID)
	if err != nil {
		t.Fatalf("reload payment failed: %v", err)
	}
	if reloaded.Status != constants.PaymentStatusPaid {
		t.Fatalf("expected paid, got %s", reloaded.Status)
	}
	if reloaded.PaidAt == nil {
		t.Fatalf("expected paid_at to be set")
	}
}

func TestPaymentGetByGatewayRef(t *testing.T) {
	repo := setupPaymentRepositoryTest(t)

	if err := repo.Create(&models.Payment{
		Gateway:    constants.PaymentGatewayStripe,
		GatewayRef: "pi_123",
		Status:     constants.PaymentStatusInitiated,
	}); err != nil {
		t.Fatalf("create payment failed: %v", err)
	}

	found, err := repo.GetByGatewayRef(constants.PaymentGatewayStripe, "pi_123")
	if err != nil {
		t.Fatalf("get by gateway ref failed: %v", err)
	}
	if found == nil {
		t.Fatalf("expected payment to be found")
	}

	// 不同网关同流水号不得串单
	missing, err := repo.GetByGatewayRef(constants.PaymentGatewayPayWay, "pi_123")
	if err != nil {
		t.Fatalf("get by gateway ref failed: %v", err)
	}
	if missing != nil {
		t.Fatalf("expected no payment for other gateway")
	}

	missing, err = repo.GetByGatewayRef(constants.PaymentGatewayStripe, "")
	if err != nil {
		t.Fatalf("empty ref lookup failed: %v", err)
	}
	if missing != nil {
		t.Fatalf("expected nil for empty ref")
	}
}
