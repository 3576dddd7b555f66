package repository

import (
	"fmt"
	"testing"

	"github.com/khornSaokhouch/server/internal/constants"
	"github.com/khornSaokhouch/server/internal/models"
)

func TestListAdminCapsPageSize(t *testing.T) {
	repo := setupPaymentRepositoryTest(t)

	total := maxPageSize + 5
	for i := 0; i < total; i++ {
		payment := &models.Payment{
			Gateway:    constants.PaymentGatewayPayWay,
			GatewayRef: fmt.Sprintf("2026082814%04d", i),
			Status:     constants.PaymentStatusInitiated,
		}
		if err := repo.Create(payment); err != nil {
			t.Fatalf("create payment failed: %v", err)
		}
	}

	payments, count, err := repo.ListAdmin(PaymentListFilter{Page: 1, PageSize: 10000})
	if err != nil {
		t.Fatalf("list payments failed: %v", err)
	}
	if count != int64(total) {
		t.Fatalf("expected total %d, got %d", total, count)
	}
	if len(payments) != maxPageSize {
		t.Fatalf("expected page capped at %d rows, got %d", maxPageSize, len(payments))
	}
}
